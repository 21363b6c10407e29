package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/readroomapp/readroom-server/internal/logger"
	"github.com/readroomapp/readroom-server/internal/service"
)

const sessionCleanupInterval = 1 * time.Hour

// SessionCleanupJob periodically removes expired sessions from the database.
type SessionCleanupJob struct {
	sessions *service.SessionService
	logger   *logger.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

// ProvideSessionCleanupJob starts the background session cleanup loop.
func ProvideSessionCleanupJob(i do.Injector) (*SessionCleanupJob, error) {
	sessions := do.MustInvoke[*service.SessionService](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())
	job := &SessionCleanupJob{
		sessions: sessions,
		logger:   log,
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	go job.run(ctx)

	return job, nil
}

func (j *SessionCleanupJob) run(ctx context.Context) {
	defer close(j.done)

	j.cleanup(ctx)

	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.cleanup(ctx)
		}
	}
}

func (j *SessionCleanupJob) cleanup(ctx context.Context) {
	count, err := j.sessions.DeleteExpiredSessions(ctx)
	if err != nil {
		j.logger.Error("session cleanup failed", "error", err)
		return
	}
	if count > 0 {
		j.logger.Info("cleaned up expired sessions", "count", count)
	}
}

// Shutdown stops the cleanup loop.
func (j *SessionCleanupJob) Shutdown() error {
	j.cancel()
	<-j.done
	return nil
}
