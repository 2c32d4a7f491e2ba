package maintenance

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/managerate/managerate/internal/services"
	"github.com/managerate/managerate/pkg/logger"
)

const defaultPurgeSpec = "@daily"

// Cleaner periodically purges verification codes that expired without ever
// being confirmed. Confirmed rows are kept as verification history.
type Cleaner struct {
	verifications *services.VerificationService
	cron          *cron.Cron
	log           *zap.Logger
	schedule      string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithSchedule overrides the cron specification for the purge job.
func WithSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.schedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults.
func NewCleaner(verifications *services.VerificationService, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		verifications: verifications,
		schedule:      defaultPurgeSpec,
		log:           logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

// Start registers the purge job with the cron scheduler and launches it.
func (c *Cleaner) Start() error {
	if c.verifications == nil {
		return nil
	}

	if _, err := c.cron.AddFunc(c.schedule, func() {
		if err := c.RunOnce(context.Background()); err != nil {
			c.log.Warn("verification purge failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running job to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes the purge immediately. Used by the scheduler, during
// graceful shutdown, and in tests.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if c.verifications == nil {
		return nil
	}

	purged, err := c.verifications.PurgeExpired(ctx)
	if err != nil {
		return err
	}
	if purged > 0 {
		c.log.Info("purged expired verification codes", zap.Int64("count", purged))
	}
	return nil
}
