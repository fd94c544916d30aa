package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/vitrine-retail/vitrine/internal/jobs"
	"github.com/vitrine-retail/vitrine/internal/quota"
)

// InstallmentRebuildJob recomputes every persisted installment schedule
// from its stored total and terms, repairing drift left by older
// writers or manual edits.
type InstallmentRebuildJob struct {
	Quota   *quota.Service
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewInstallmentRebuildJob wires dependencies for the rebuild handler.
func NewInstallmentRebuildJob(quotaSvc *quota.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *InstallmentRebuildJob {
	return &InstallmentRebuildJob{Quota: quotaSvc, Logger: logger, Metrics: metrics}
}

// Handle processes installment rebuild tasks.
func (j *InstallmentRebuildJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Quota == nil {
		return errors.New("installment rebuild: handler not configured")
	}

	tracker := j.metrics().Track(TaskInstallmentRebuild)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	logger.Info("starting installment rebuild")

	rebuilt, err := j.Quota.RebuildInstallments(ctx)
	if err != nil {
		resultErr = err
		logger.Error("rebuild installments", slog.Any("error", err))
		return resultErr
	}
	j.metrics().AddRebuilt(rebuilt)

	logger.Info("completed installment rebuild", slog.Int("rebuilt", rebuilt))
	return resultErr
}

func (j *InstallmentRebuildJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskInstallmentRebuild))
	}
	return slog.Default().With(slog.String("job", TaskInstallmentRebuild))
}

func (j *InstallmentRebuildJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
