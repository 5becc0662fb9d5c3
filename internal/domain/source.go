package domain

import "context"

// Source produces a backup archive at outputPath.
type Source interface {
	Backup(ctx context.Context, outputPath string) error
	GetName() string
	GetFormat() string
}
