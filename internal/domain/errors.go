package domain

import (
	"fmt"
	"strings"
)

// BackupError aborts a run before anything is uploaded.
type BackupError struct {
	Database string
	Err      error
}

func (e *BackupError) Error() string {
	return fmt.Sprintf("backup %s: %v", e.Database, e.Err)
}

func (e *BackupError) Unwrap() error { return e.Err }

// UploadError means the artifact did not reach a target. Prune is skipped
// for that target.
type UploadError struct {
	Target string
	Err    error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload to %s: %v", e.Target, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// PruneError reports a failed listing or the records that could not be
// deleted from a target.
type PruneError struct {
	Target string
	Failed []RemoteFile
	Err    error
}

func (e *PruneError) Error() string {
	if len(e.Failed) == 0 {
		return fmt.Sprintf("prune %s: %v", e.Target, e.Err)
	}

	names := make([]string, 0, len(e.Failed))
	for _, f := range e.Failed {
		names = append(names, f.Name)
	}
	return fmt.Sprintf("prune %s: %d deletion(s) failed [%s]: %v",
		e.Target, len(e.Failed), strings.Join(names, ", "), e.Err)
}

func (e *PruneError) Unwrap() error { return e.Err }
