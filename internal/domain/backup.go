package domain

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"time"
)

// TimestampLayout is the layout of the timestamp embedded in artifact names.
const TimestampLayout = "20060102_150405"

var timestampPattern = regexp.MustCompile(`(\d{8})_(\d{6})`)

// Artifact is a database export that exists locally between the backup
// request and the end of the run.
type Artifact struct {
	Database  string
	Filename  string
	FilePath  string
	Format    string
	Size      int64
	CreatedAt time.Time
}

// RemoteFile is an entry in a backup target.
type RemoteFile struct {
	ID          string
	Name        string
	CreatedTime time.Time
	Size        int64
}

type BackupExecutor interface {
	Execute(ctx context.Context) (*Report, error)
}

// ArtifactFilename returns the name used both locally and remotely,
// e.g. adel_backup_20240101_020000.zip.
func ArtifactFilename(database, format string, at time.Time) string {
	return fmt.Sprintf("%s_backup_%s.%s", database, at.Format(TimestampLayout), format)
}

// ParseArtifactTimestamp extracts the creation timestamp from an artifact name.
func ParseArtifactTimestamp(filename string) (time.Time, error) {
	matches := timestampPattern.FindStringSubmatch(filename)
	if len(matches) < 3 {
		return time.Time{}, fmt.Errorf("invalid filename format: no timestamp found")
	}

	return time.ParseInLocation(TimestampLayout, matches[1]+"_"+matches[2], time.Local)
}

// MimeType returns the remote content type for a backup format.
func MimeType(format string) string {
	switch format {
	case "zip":
		return "application/zip"
	default:
		return "application/octet-stream"
	}
}

// SortByCreation orders files oldest first. Ties are broken by name and id
// so the order is stable across listings.
func SortByCreation(files []RemoteFile) {
	sort.SliceStable(files, func(i, j int) bool {
		a, b := files[i], files[j]
		if !a.CreatedTime.Equal(b.CreatedTime) {
			return a.CreatedTime.Before(b.CreatedTime)
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
}
