package maintenance

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/studyhub/studyhub/internal/models"
	"github.com/studyhub/studyhub/internal/services"
	"github.com/studyhub/studyhub/pkg/logger"
)

const (
	defaultIntegritySpec = "@hourly"
	defaultProgressSpec  = "@daily"
)

// Auditor runs background checks over the content hierarchy: the integrity
// audit, and removal of progress rows left behind by deleted files.
type Auditor struct {
	db        *gorm.DB
	integrity *services.IntegrityService
	cron      *cron.Cron
	log       *zap.Logger
	repair    bool

	integritySchedule string
	progressSchedule  string
}

// Option customises the Auditor.
type Option func(*Auditor)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(a *Auditor) {
		if c != nil {
			a.cron = c
		}
	}
}

// WithIntegritySchedule overrides the cron specification for the integrity audit.
func WithIntegritySchedule(spec string) Option {
	return func(a *Auditor) {
		if spec != "" {
			a.integritySchedule = spec
		}
	}
}

// WithProgressSchedule overrides the cron specification for orphaned progress cleanup.
func WithProgressSchedule(spec string) Option {
	return func(a *Auditor) {
		if spec != "" {
			a.progressSchedule = spec
		}
	}
}

// WithRepair makes the audit compact misnumbered sibling scopes it finds.
func WithRepair(enabled bool) Option {
	return func(a *Auditor) {
		a.repair = enabled
	}
}

// NewAuditor constructs an Auditor. A nil integrity service skips the audit
// job and a nil db skips the progress cleanup.
func NewAuditor(db *gorm.DB, integrity *services.IntegrityService, opts ...Option) *Auditor {
	auditor := &Auditor{
		db:                db,
		integrity:         integrity,
		integritySchedule: defaultIntegritySpec,
		progressSchedule:  defaultProgressSpec,
		log:               logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(auditor)
	}

	if auditor.cron == nil {
		auditor.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return auditor
}

// Start registers the jobs and launches the scheduler.
func (a *Auditor) Start() error {
	if a.integrity == nil && a.db == nil {
		return nil
	}

	if a.integrity != nil {
		if _, err := a.cron.AddFunc(a.integritySchedule, func() {
			if err := a.audit(context.Background()); err != nil {
				a.log.Warn("integrity audit failed", zap.Error(err))
			}
		}); err != nil {
			return fmt.Errorf("schedule integrity audit: %w", err)
		}
	}

	if a.db != nil {
		if _, err := a.cron.AddFunc(a.progressSchedule, func() {
			if _, err := CleanupOrphanProgress(context.Background(), a.db); err != nil {
				a.log.Warn("progress cleanup failed", zap.Error(err))
			}
		}); err != nil {
			return fmt.Errorf("schedule progress cleanup: %w", err)
		}
	}

	a.cron.Start()
	return nil
}

// Stop halts the scheduler, waiting for running jobs to complete.
func (a *Auditor) Stop() context.Context {
	if a.cron == nil {
		return context.Background()
	}
	return a.cron.Stop()
}

// RunOnce executes every configured job sequentially.
func (a *Auditor) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if a.integrity != nil {
		if err := a.audit(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if a.db != nil {
		if _, err := CleanupOrphanProgress(ctx, a.db); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}

func (a *Auditor) audit(ctx context.Context) error {
	report, err := a.integrity.Audit(ctx)
	if err != nil {
		return err
	}
	if report.Clean() {
		a.log.Debug("integrity audit clean")
		return nil
	}

	a.log.Warn("integrity audit found problems", zap.Int("findings", len(report.Findings)))
	if !a.repair {
		return nil
	}
	if _, err := a.integrity.Repair(ctx, report); err != nil {
		return fmt.Errorf("integrity repair: %w", err)
	}
	return nil
}

// ProgressCleanupStats captures the number of orphaned rows removed.
type ProgressCleanupStats struct {
	Bookmarks int64
	Progress  int64
}

// CleanupOrphanProgress removes bookmarks and progress rows whose file no longer exists.
func CleanupOrphanProgress(ctx context.Context, db *gorm.DB) (ProgressCleanupStats, error) {
	if db == nil {
		return ProgressCleanupStats{}, errors.New("cleanup progress: db is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	stats := ProgressCleanupStats{}
	files := db.Model(&models.File{}).Select("id")

	if result := db.WithContext(ctx).
		Where("file_id NOT IN (?)", files).
		Delete(&models.Bookmark{}); result.Error != nil {
		return stats, fmt.Errorf("cleanup progress: bookmarks: %w", result.Error)
	} else {
		stats.Bookmarks = result.RowsAffected
	}

	if result := db.WithContext(ctx).
		Where("file_id NOT IN (?)", files).
		Delete(&models.FileProgress{}); result.Error != nil {
		return stats, fmt.Errorf("cleanup progress: file progress: %w", result.Error)
	} else {
		stats.Progress = result.RowsAffected
	}

	return stats, nil
}
