package jobs

import (
	"fmt"
	"log/slog"

	"pizzaworkflow/internal/core/application/usecases/commands"
)

// Config holds the cron specs (with seconds) of the background jobs.
type Config struct {
	RecoverySchedule string
	ExpirySchedule   string

	// ExpiryEnabled is false when no validation timeout is configured, in
	// which case the expiry job is not scheduled.
	ExpiryEnabled bool
}

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	recoveryJob *InstanceRecoveryJob
	expiryJob   *ValidationExpiryJob
}

func NewJobManager(
	recoverHandler commands.RecoverInstancesCommandHandler,
	expireHandler commands.ExpireValidationsCommandHandler,
	cfg Config,
	logger *slog.Logger,
) *JobManager {
	jm := &JobManager{
		recoveryJob: NewInstanceRecoveryJob(recoverHandler, cfg.RecoverySchedule, logger),
	}
	if cfg.ExpiryEnabled {
		jm.expiryJob = NewValidationExpiryJob(expireHandler, cfg.ExpirySchedule, logger)
	}
	return jm
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.recoveryJob.Start(); err != nil {
		return fmt.Errorf("failed to start instance recovery job: %w", err)
	}

	if jm.expiryJob != nil {
		if err := jm.expiryJob.Start(); err != nil {
			// Stop already started jobs if this one fails
			jm.recoveryJob.Stop()
			return fmt.Errorf("failed to start validation expiry job: %w", err)
		}
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	if jm.expiryJob != nil {
		jm.expiryJob.Stop()
	}
	jm.recoveryJob.Stop()
}
