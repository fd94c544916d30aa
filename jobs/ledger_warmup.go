package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/vitrine-retail/vitrine/internal/budget"
	jobmetrics "github.com/vitrine-retail/vitrine/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// LedgerWarmupJob pre-populates ledger window caches for every store so
// the morning dashboard load hits warm entries.
type LedgerWarmupJob struct {
	Budget  *budget.Service
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewLedgerWarmupJob wires dependencies for the warmup handler.
func NewLedgerWarmupJob(budgetSvc *budget.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *LedgerWarmupJob {
	return &LedgerWarmupJob{
		Budget:  budgetSvc,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes ledger warmup tasks.
func (j *LedgerWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Budget == nil {
		return errors.New("ledger warmup: handler not configured")
	}
	var payload LedgerWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskLedgerWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	ref := j.now()
	if payload.From != "" {
		parsed, err := time.Parse("2006-01", payload.From)
		if err != nil {
			return asynq.SkipRetry
		}
		ref = parsed
	}

	logger := j.logger().With(slog.String("from", ref.Format("2006-01")))
	logger.Info("starting ledger warmup")

	ids, err := j.Budget.StoreIDs(ctx)
	if err != nil {
		resultErr = err
		logger.Error("load store ids", slog.Any("error", err))
		return resultErr
	}
	if len(ids) == 0 {
		logger.Info("no stores discovered for warmup")
		return resultErr
	}

	started := j.now()
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(4)
	for _, id := range ids {
		storeID := id
		group.Go(func() error {
			storeCtx, cancel := context.WithTimeout(groupCtx, 20*time.Second)
			defer cancel()
			_, err := j.Budget.WindowProjection(storeCtx, storeID, ref)
			return err
		})
	}
	if err := group.Wait(); err != nil {
		resultErr = err
		logger.Error("warm store window", slog.Any("error", err))
		return resultErr
	}

	logger.Info("completed ledger warmup", slog.Int("stores", len(ids)), slog.Duration("duration", time.Since(started)))
	return resultErr
}

func (j *LedgerWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskLedgerWarmup))
	}
	return slog.Default().With(slog.String("job", TaskLedgerWarmup))
}

func (j *LedgerWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *LedgerWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
