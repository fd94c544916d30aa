// Package budget derives month-by-month spending availability for
// stores from budget settings, recorded debts and the installment
// schedules of open orders.
package budget

import "errors"

// Setting is the per-store monthly allowance and its split between the
// buyer and manager roles. One record per store, upsert only.
type Setting struct {
	StoreID        int64
	MonthlyBudget  float64
	ManagerPercent int
}

// Debt is a manual deduction against one store-month, applied before
// the role split.
type Debt struct {
	ID      int64
	StoreID int64
	Month   string
	Value   float64
}

// LedgerRow carries the derived availability figures for one store and
// one month. Never persisted; recomputed in full from the raw snapshot.
type LedgerRow struct {
	Month            string  `json:"month"`
	GrossBudget      float64 `json:"gross_budget"`
	DebtValue        float64 `json:"debt_value"`
	NetBudget        float64 `json:"net_budget"`
	BuyerShare       float64 `json:"buyer_share"`
	ManagerShare     float64 `json:"manager_share"`
	ConsumedBuyer    float64 `json:"consumed_buyer"`
	ConsumedManager  float64 `json:"consumed_manager"`
	ValidatedBuyer   float64 `json:"validated_buyer"`
	ValidatedManager float64 `json:"validated_manager"`
	AvailableBuyer   float64 `json:"available_buyer"`
	AvailableManager float64 `json:"available_manager"`
	TotalAvailable   float64 `json:"total_available"`
}

var (
	// ErrNotFound indicates record missing.
	ErrNotFound = errors.New("budget: not found")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("budget: invalid input")
)
