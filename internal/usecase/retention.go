package usecase

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/semmidev/odoodrive/internal/domain"
	"go.uber.org/multierr"
)

// PruneResult describes what one retention pass did to a target.
type PruneResult struct {
	Listed   int
	Retained int
	Deleted  []domain.RemoteFile
}

// Retention keeps the newest MaxBackups archives of each target.
type Retention struct {
	logger Logger
}

func NewRetention(logger Logger) *Retention {
	return &Retention{logger: logger}
}

// SelectExpired returns every file except the keep newest, oldest first.
// files must already be sorted by domain.SortByCreation.
func SelectExpired(files []domain.RemoteFile, keep int) []domain.RemoteFile {
	if keep < 0 {
		keep = 0
	}
	if len(files) <= keep {
		return nil
	}

	expired := make([]domain.RemoteFile, len(files)-keep)
	copy(expired, files[:len(files)-keep])
	return expired
}

// Prune deletes expired archives one by one. A failed deletion does not stop
// the remaining ones; every failure is reported in the returned PruneError.
func (uc *Retention) Prune(ctx context.Context, target UploadTarget) (PruneResult, error) {
	if target.MaxBackups <= 0 {
		return PruneResult{}, &domain.PruneError{
			Target: target.Name,
			Err:    fmt.Errorf("retention count must be a positive integer, got %d", target.MaxBackups),
		}
	}

	files, err := target.Storage.List(ctx)
	if err != nil {
		return PruneResult{}, &domain.PruneError{Target: target.Name, Err: fmt.Errorf("list files: %w", err)}
	}
	domain.SortByCreation(files)

	uc.logger.Infof("Files in %s (%d, keeping %d):", target.Name, len(files), target.MaxBackups)
	for _, f := range files {
		uc.logger.Infof("  %s, created %s, %s", f.Name, f.CreatedTime.Format("2006-01-02 15:04:05"), humanize.Bytes(uint64(f.Size)))
	}

	result := PruneResult{Listed: len(files), Retained: len(files)}

	var failed []domain.RemoteFile
	var errs error
	for _, f := range SelectExpired(files, target.MaxBackups) {
		if err := target.Storage.Delete(ctx, f); err != nil {
			uc.logger.Errorf("Failed to delete %s from %s: %v", f.Name, target.Name, err)
			failed = append(failed, f)
			errs = multierr.Append(errs, err)
			continue
		}

		uc.logger.Infof("Deleted old backup from %s: %s", target.Name, f.Name)
		result.Deleted = append(result.Deleted, f)
		result.Retained--
	}

	if len(failed) > 0 {
		return result, &domain.PruneError{Target: target.Name, Failed: failed, Err: errs}
	}

	return result, nil
}

// Execute prunes every target without uploading anything.
func (uc *Retention) Execute(ctx context.Context, targets []UploadTarget) error {
	var errs error
	for _, target := range targets {
		result, err := uc.Prune(ctx, target)
		if err != nil {
			uc.logger.Errorf("Prune failed for %s: %v", target.Name, err)
			errs = multierr.Append(errs, err)
			continue
		}
		uc.logger.Infof("Deleted %d old backup(s) from %s, %d kept", len(result.Deleted), target.Name, result.Retained)
	}
	return errs
}
