package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/semmidev/odoodrive/internal/adapter/archive"
	"github.com/semmidev/odoodrive/internal/adapter/notifier"
	"github.com/semmidev/odoodrive/internal/adapter/odoo"
	"github.com/semmidev/odoodrive/internal/adapter/storage"
	"github.com/semmidev/odoodrive/internal/config"
	"github.com/semmidev/odoodrive/internal/domain"
	"github.com/semmidev/odoodrive/internal/infrastructure/logger"
	"github.com/semmidev/odoodrive/internal/infrastructure/scheduler"
	"github.com/semmidev/odoodrive/internal/usecase"
	"go.uber.org/multierr"
)

type App struct {
	config    *config.Config
	logger    *logger.Logger
	scheduler *scheduler.Scheduler
	targets   []usecase.UploadTarget
	retention *usecase.Retention
	backupUC  *usecase.Backup
	notifier  domain.Notifier
}

// TargetListing is the current content of one target.
type TargetListing struct {
	Name       string
	MaxBackups int
	Files      []domain.RemoteFile
	Err        error
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log, err := logger.New(cfg.App.LogLevel, cfg.App.LogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return NewWithLogger(ctx, cfg, log)
}

// NewWithLogger wires the application around an existing logger.
func NewWithLogger(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	log.Infof("Starting %s for database %s", cfg.App.Name, cfg.Odoo.Database)

	targets, err := initializeUploadTargets(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	source := odoo.New(&cfg.Odoo, cfg.Backup.Format)

	var verifier domain.Verifier
	if cfg.Backup.Verify {
		verifier = archive.NewVerifier(cfg.Backup.Format)
	}

	retention := usecase.NewRetention(log)

	a := &App{
		config:    cfg,
		logger:    log,
		scheduler: scheduler.New(log),
		targets:   targets,
		retention: retention,
		backupUC:  usecase.NewBackup(source, verifier, targets, retention, log, cfg.Backup.TempDir),
	}

	if cfg.Telegram.Enabled {
		tg, err := notifier.NewTelegram(&cfg.Telegram)
		if err != nil {
			log.Errorf("Failed to initialize Telegram notifications: %v", err)
		} else {
			a.notifier = tg
			log.Infof("✓ Telegram notifications enabled")
		}
	}

	return a, nil
}

func initializeUploadTargets(ctx context.Context, cfg *config.Config, log *logger.Logger) ([]usecase.UploadTarget, error) {
	var targets []usecase.UploadTarget

	for _, targetCfg := range cfg.GetEnabledUploadTargets() {
		var stor domain.Storage
		name := targetCfg.DisplayName()

		switch targetCfg.Type {
		case "gdrive":
			stor = storage.NewGDrive(&targetCfg, cfg.Backup.Format)
			log.Infof("✓ Google Drive upload enabled (folder: %s)", targetCfg.FolderID)

		case "s3":
			s3, err := storage.NewS3(ctx, &targetCfg, cfg.Backup.Format)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize S3 target %s: %w", name, err)
			}
			stor = s3
			log.Infof("✓ S3 upload enabled (bucket: %s)", targetCfg.Bucket)

		case "local":
			local, err := storage.NewLocal(targetCfg.Path, cfg.Backup.Format)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize local target %s: %w", name, err)
			}
			stor = local
			log.Infof("✓ Local copy enabled (path: %s)", targetCfg.Path)

		default:
			return nil, fmt.Errorf("unknown upload target type: %s", targetCfg.Type)
		}

		targets = append(targets, usecase.UploadTarget{
			Name:       name,
			Storage:    stor,
			MaxBackups: cfg.RetentionFor(targetCfg),
		})
	}

	if len(targets) == 0 {
		return nil, errors.New("no enabled upload targets")
	}

	return targets, nil
}

// RunOnce performs a single backup run. It is the only place where run
// failures are logged by kind and reported to the notifier.
func (a *App) RunOnce(ctx context.Context) (*domain.Report, error) {
	report, err := a.backupUC.Execute(ctx)
	log := a.logger.WithRun(report.RunID)

	if err == nil {
		log.Infow("Backup run succeeded", "database", report.Database, "duration", report.Duration())
	}
	for _, e := range multierr.Errors(err) {
		logFailure(log, e)
	}

	if a.notifier != nil {
		if nerr := a.notifier.Notify(ctx, report); nerr != nil {
			log.Warnw("Failed to send notification", "error", nerr)
		}
	}

	return report, err
}

func logFailure(log *logger.Logger, err error) {
	var backupErr *domain.BackupError
	var uploadErr *domain.UploadError
	var pruneErr *domain.PruneError

	switch {
	case errors.As(err, &backupErr):
		log.Errorw("Backup phase failed", "database", backupErr.Database, "error", backupErr.Err)
	case errors.As(err, &uploadErr):
		log.Errorw("Upload phase failed", "target", uploadErr.Target, "error", err)
	case errors.As(err, &pruneErr):
		log.Errorw("Prune phase failed", "target", pruneErr.Target, "failed", len(pruneErr.Failed), "error", err)
	default:
		log.Errorw("Backup run failed", "error", err)
	}
}

// RunScheduled runs backups on backup.schedule until ctx is cancelled.
func (a *App) RunScheduled(ctx context.Context) error {
	if err := a.config.ValidateSchedule(); err != nil {
		return err
	}

	schedule := a.config.Backup.Schedule
	if err := a.scheduler.AddJob("backup", schedule, func(ctx context.Context) error {
		a.logger.Infof("=== Triggered scheduled backup for %s ===", a.config.Odoo.Database)
		_, err := a.RunOnce(ctx)
		return err
	}); err != nil {
		return fmt.Errorf("failed to schedule backup: %w", err)
	}

	a.scheduler.Start()
	a.logger.Infof("Scheduler started: %s, %d target(s)", schedule, len(a.targets))

	<-ctx.Done()
	return nil
}

// List returns the archives held by every target, oldest first.
func (a *App) List(ctx context.Context) []TargetListing {
	listings := make([]TargetListing, 0, len(a.targets))
	for _, target := range a.targets {
		files, err := target.Storage.List(ctx)
		if err == nil {
			domain.SortByCreation(files)
		}
		listings = append(listings, TargetListing{
			Name:       target.Name,
			MaxBackups: target.MaxBackups,
			Files:      files,
			Err:        err,
		})
	}
	return listings
}

// Prune applies retention to every target without uploading.
func (a *App) Prune(ctx context.Context) error {
	return a.retention.Execute(ctx, a.targets)
}

func (a *App) Shutdown() {
	a.logger.Infof("Shutting down application...")
	a.scheduler.Stop()
	a.logger.Close()
}
