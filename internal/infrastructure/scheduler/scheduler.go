package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
)

// Logger is satisfied by the application's sugared zap logger.
type Logger interface {
	Infow(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
}

type Scheduler struct {
	cron   *cron.Cron
	logger Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// cronLogger adapts Logger to cron.Logger.
type cronLogger struct {
	l Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Infow(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}

// Parser accepts five-field, six-field (with seconds) and descriptor specs.
var Parser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// New creates a scheduler whose jobs never overlap with themselves: a run
// that is still in progress when the next tick fires makes that tick a no-op.
func New(logger Logger) *Scheduler {
	cl := cronLogger{l: logger}
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron: cron.New(
			cron.WithParser(Parser),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (s *Scheduler) AddJob(name, spec string, job func(context.Context) error) error {
	_, err := s.cron.AddFunc(spec, func() {
		if err := job(s.ctx); err != nil {
			s.logger.Errorw("Scheduled job failed", "job", name, "error", err)
		}
	})
	return err
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels the context handed to running jobs and waits for them.
func (s *Scheduler) Stop() {
	s.cancel()
	ctx := s.cron.Stop()
	<-ctx.Done()
}
