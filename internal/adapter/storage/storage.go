package storage

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/semmidev/odoodrive/internal/domain"
)

func hasArchiveExt(name, format string) bool {
	return strings.HasSuffix(name, "."+format)
}

// creationTime prefers the timestamp embedded in the artifact name.
func creationTime(name string, fallback time.Time) time.Time {
	if ts, err := domain.ParseArtifactTimestamp(name); err == nil {
		return ts
	}
	return fallback
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
