package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerWarmup pre-populates ledger window caches for all stores.
	TaskLedgerWarmup = "budget:ledger_warmup"
	// TaskInstallmentRebuild recomputes persisted installment schedules.
	TaskInstallmentRebuild = "quota:installment_rebuild"
)

// LedgerWarmupPayload scopes a warmup run. From is the starting month
// in YYYY-MM form; empty means the current month.
type LedgerWarmupPayload struct {
	From string `json:"from,omitempty"`
}

// NewLedgerWarmupTask constructs an Asynq task for ledger warmup.
func NewLedgerWarmupTask(payload LedgerWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerWarmup, data), nil
}

// InstallmentRebuildPayload carries no options today; kept as a struct
// so future scoping fields stay wire compatible.
type InstallmentRebuildPayload struct{}

// NewInstallmentRebuildTask constructs an Asynq task for schedule rebuild.
func NewInstallmentRebuildTask() (*asynq.Task, error) {
	data, err := json.Marshal(InstallmentRebuildPayload{})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskInstallmentRebuild, data), nil
}
