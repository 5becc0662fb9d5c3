package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/semmidev/odoodrive/internal/domain"
	"go.uber.org/multierr"
)

type Backup struct {
	source    domain.Source
	verifier  domain.Verifier
	targets   []UploadTarget
	retention *Retention
	logger    Logger
	tempDir   string
	now       func() time.Time
}

// UploadTarget is a configured storage with its retention count.
type UploadTarget struct {
	Name       string
	Storage    domain.Storage
	MaxBackups int
}

type Logger interface {
	Infof(template string, args ...interface{})
	Errorf(template string, args ...interface{})
	Warnf(template string, args ...interface{})
}

// NewBackup wires a backup run. verifier may be nil to skip archive checks.
func NewBackup(
	source domain.Source,
	verifier domain.Verifier,
	targets []UploadTarget,
	retention *Retention,
	logger Logger,
	tempDir string,
) *Backup {
	return &Backup{
		source:    source,
		verifier:  verifier,
		targets:   targets,
		retention: retention,
		logger:    logger,
		tempDir:   tempDir,
		now:       time.Now,
	}
}

// Execute runs backup, upload and prune once. The returned report is never
// nil; its Err equals the returned error.
func (uc *Backup) Execute(ctx context.Context) (*domain.Report, error) {
	dbName := uc.source.GetName()
	start := uc.now()

	report := &domain.Report{
		RunID:     uuid.NewString(),
		Database:  dbName,
		StartedAt: start,
	}
	defer func() { report.FinishedAt = uc.now() }()

	filename := domain.ArtifactFilename(dbName, uc.source.GetFormat(), start)
	tempPath := filepath.Join(uc.tempDir, filename)

	// Registered before the backup starts so a partially written file is
	// removed as well.
	defer uc.cleanup(dbName, tempPath)

	artifact, err := uc.backup(ctx, tempPath, filename, start)
	if err != nil {
		report.Err = &domain.BackupError{Database: dbName, Err: err}
		uc.logger.Errorf("[%s] Backup failed: %v", dbName, err)
		return report, report.Err
	}
	report.Artifact = artifact

	var errs error
	for _, target := range uc.targets {
		tr := uc.deliver(ctx, artifact, target)
		report.Targets = append(report.Targets, tr)
		errs = multierr.Append(errs, tr.Err)
	}
	report.Err = errs

	if errs == nil {
		uc.logger.Infof("[%s] Backup completed in %s: %s",
			dbName, uc.now().Sub(start).Round(time.Second), filename)
	}

	return report, errs
}

func (uc *Backup) backup(ctx context.Context, tempPath, filename string, start time.Time) (*domain.Artifact, error) {
	dbName := uc.source.GetName()

	uc.logger.Infof("[%s] Requesting backup to: %s", dbName, tempPath)
	if err := uc.source.Backup(ctx, tempPath); err != nil {
		return nil, err
	}

	info, err := os.Stat(tempPath)
	if err != nil {
		return nil, fmt.Errorf("stat backup file: %w", err)
	}

	if uc.verifier != nil {
		if err := uc.verifier.Verify(tempPath); err != nil {
			return nil, fmt.Errorf("verify archive: %w", err)
		}
	}

	uc.logger.Infof("[%s] Backup saved to %s, size: %s", dbName, tempPath, humanize.Bytes(uint64(info.Size())))

	return &domain.Artifact{
		Database:  dbName,
		Filename:  filename,
		FilePath:  tempPath,
		Format:    uc.source.GetFormat(),
		Size:      info.Size(),
		CreatedAt: start,
	}, nil
}

// deliver uploads to one target and, only if that worked, prunes it.
func (uc *Backup) deliver(ctx context.Context, artifact *domain.Artifact, target UploadTarget) domain.TargetReport {
	dbName := artifact.Database
	tr := domain.TargetReport{Name: target.Name}

	uc.logger.Infof("[%s] Uploading to %s...", dbName, target.Name)
	uploaded, err := target.Storage.Upload(ctx, artifact.FilePath, artifact.Filename)
	if err != nil {
		tr.Err = &domain.UploadError{Target: target.Name, Err: err}
		uc.logger.Errorf("[%s] Failed to upload to %s: %v", dbName, target.Name, err)
		return tr
	}
	tr.Uploaded = &uploaded
	uc.logger.Infof("[%s] Uploaded to %s: %s", dbName, target.Name, uploaded.ID)

	result, err := uc.retention.Prune(ctx, target)
	tr.Deleted = result.Deleted
	tr.Retained = result.Retained
	if err != nil {
		tr.Err = err
		uc.logger.Errorf("[%s] Failed to prune %s: %v", dbName, target.Name, err)
	}

	return tr
}

func (uc *Backup) cleanup(dbName, tempPath string) {
	err := os.Remove(tempPath)
	switch {
	case err == nil:
		uc.logger.Infof("[%s] Removed local file %s", dbName, tempPath)
	case errors.Is(err, os.ErrNotExist):
	default:
		uc.logger.Warnf("[%s] Failed to remove local file %s: %v", dbName, tempPath, err)
	}
}
