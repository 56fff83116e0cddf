// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"github.com/dalemusser/leadhub/internal/app/store/sessions"
	"github.com/dalemusser/leadhub/internal/app/system/leadimport"
	"github.com/dalemusser/leadhub/internal/app/system/listview"
	"github.com/dalemusser/leadhub/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// InactiveSessionCleanupJob closes ledger sessions with no activity for
// threshold. Closing marks them ended; records are kept for the audit trail.
func InactiveSessionCleanupJob(sessStore *sessions.Store, logger *zap.Logger, threshold time.Duration) Job {
	return Job{
		Name:     "inactive-session-cleanup",
		Interval: 1 * time.Minute,
		Timeout:  30 * time.Second,
		Run: func(ctx context.Context) error {
			count, err := sessStore.CloseInactive(ctx, threshold)
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Info("closed inactive sessions",
					zap.Int64("count", count),
					zap.Duration("threshold", threshold))
			}
			return nil
		},
	}
}

// TableStateSweepJob evicts table state of sessions that went idle.
func TableStateSweepJob(reg *listview.Registry, logger *zap.Logger) Job {
	return Job{
		Name:     "table-state-sweep",
		Interval: 5 * time.Minute,
		Run: func(ctx context.Context) error {
			if n := reg.Sweep(time.Now()); n > 0 {
				logger.Debug("evicted idle table state", zap.Int("count", n))
			}
			return nil
		},
	}
}

// ImportJobSweepJob drops uploaded spreadsheets nobody confirmed.
func ImportJobSweepJob(jobs *leadimport.Jobs, logger *zap.Logger) Job {
	return Job{
		Name:     "import-job-sweep",
		Interval: 5 * time.Minute,
		Run: func(ctx context.Context) error {
			if n := jobs.Sweep(time.Now()); n > 0 {
				logger.Info("discarded unconfirmed imports", zap.Int("count", n))
			}
			return nil
		},
	}
}

// LoginLimiterSweepJob forgets expired login-attempt windows.
func LoginLimiterSweepJob(ll *ratelimit.LoginLimiter, logger *zap.Logger) Job {
	return Job{
		Name:     "login-limiter-sweep",
		Interval: 10 * time.Minute,
		Run: func(ctx context.Context) error {
			if n := ll.Sweep(); n > 0 {
				logger.Debug("swept login rate windows", zap.Int("count", n))
			}
			return nil
		},
	}
}
