package jobs

import (
	"context"
	"log/slog"

	"pizzaworkflow/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// DefaultRecoverySchedule re-drives orphaned instances every 30 seconds.
const DefaultRecoverySchedule = "*/30 * * * * *"

// InstanceRecoveryJob periodically restarts runners for instances that are
// persisted as Validating or Processing but have none in this process.
type InstanceRecoveryJob struct {
	handler  commands.RecoverInstancesCommandHandler
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

func NewInstanceRecoveryJob(
	handler commands.RecoverInstancesCommandHandler,
	schedule string,
	logger *slog.Logger,
) *InstanceRecoveryJob {
	if schedule == "" {
		schedule = DefaultRecoverySchedule
	}
	return &InstanceRecoveryJob{
		handler:  handler,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "instance_recovery_job"),
	}
}

// Run performs one recovery pass.
func (j *InstanceRecoveryJob) Run(ctx context.Context) {
	recovered, err := j.handler.Handle(ctx, commands.NewRecoverInstancesCommand())
	if err != nil {
		j.logger.ErrorContext(ctx, "Instance recovery job failed", "error", err)
		return
	}
	if recovered > 0 {
		j.logger.InfoContext(ctx, "Recovered workflow instances", "count", recovered)
	}
}

func (j *InstanceRecoveryJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.Run(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Instance recovery job started", "schedule", j.schedule)
	return nil
}

// Stop stops scheduling and waits for a running pass to finish.
func (j *InstanceRecoveryJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Instance recovery job stopped")
}
