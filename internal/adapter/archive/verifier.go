package archive

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zip"
)

// dumpEntry is the SQL dump Odoo places at the root of zip exports.
const dumpEntry = "dump.sql"

var pgDumpMagic = []byte("PGDMP")

// Verifier checks that a downloaded export is a readable archive.
type Verifier struct {
	format string
}

func NewVerifier(format string) *Verifier {
	return &Verifier{format: format}
}

func (v *Verifier) Verify(path string) error {
	switch v.format {
	case "zip":
		return verifyZip(path)
	case "dump":
		return verifyDump(path)
	default:
		return fmt.Errorf("unsupported archive format: %s", v.format)
	}
}

func verifyZip(path string) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("failed to open zip archive: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name != dumpEntry {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", dumpEntry, err)
		}
		defer rc.Close()

		// Reading the entry through checks its CRC.
		if _, err := io.Copy(io.Discard, rc); err != nil {
			return fmt.Errorf("corrupt %s: %w", dumpEntry, err)
		}
		return nil
	}

	return fmt.Errorf("zip archive has no %s entry", dumpEntry)
}

func verifyDump(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open dump: %w", err)
	}
	defer f.Close()

	header := make([]byte, len(pgDumpMagic))
	if _, err := io.ReadFull(f, header); err != nil {
		return fmt.Errorf("failed to read dump header: %w", err)
	}
	if !bytes.Equal(header, pgDumpMagic) {
		return fmt.Errorf("not a pg_dump custom-format archive")
	}
	return nil
}
