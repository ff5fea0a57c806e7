package jobs

import (
	"context"
	"log/slog"

	"pizzaworkflow/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// DefaultExpirySchedule checks validation deadlines every 5 seconds.
const DefaultExpirySchedule = "*/5 * * * * *"

// ValidationExpiryJob expires instances that waited for their validation
// decision longer than the configured timeout.
type ValidationExpiryJob struct {
	handler  commands.ExpireValidationsCommandHandler
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

func NewValidationExpiryJob(
	handler commands.ExpireValidationsCommandHandler,
	schedule string,
	logger *slog.Logger,
) *ValidationExpiryJob {
	if schedule == "" {
		schedule = DefaultExpirySchedule
	}
	return &ValidationExpiryJob{
		handler:  handler,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "validation_expiry_job"),
	}
}

func (j *ValidationExpiryJob) Run(ctx context.Context) {
	expired, err := j.handler.Handle(ctx, commands.NewExpireValidationsCommand())
	if err != nil {
		j.logger.ErrorContext(ctx, "Validation expiry job failed", "error", err)
		return
	}
	if expired > 0 {
		j.logger.InfoContext(ctx, "Expired workflow instances", "count", expired)
	}
}

func (j *ValidationExpiryJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.Run(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Validation expiry job started", "schedule", j.schedule)
	return nil
}

func (j *ValidationExpiryJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Validation expiry job stopped")
}
