package budget

// UpsertSettingRequest is the payload of PUT /budget/stores/{storeID}/setting.
type UpsertSettingRequest struct {
	MonthlyBudget  float64 `json:"monthly_budget" validate:"gte=0"`
	ManagerPercent int     `json:"manager_percent" validate:"gte=0,lte=100"`
}

// SettingResponse echoes the stored setting.
type SettingResponse struct {
	StoreID        int64   `json:"store_id"`
	MonthlyBudget  float64 `json:"monthly_budget"`
	ManagerPercent int     `json:"manager_percent"`
}

// UpsertDebtsRequest carries month to value pairs. Only listed months
// are written.
type UpsertDebtsRequest struct {
	Debts map[string]float64 `json:"debts" validate:"required,min=1"`
}

// DebtResponse is one stored store-month deduction.
type DebtResponse struct {
	ID      int64   `json:"id"`
	StoreID int64   `json:"store_id"`
	Month   string  `json:"month"`
	Value   float64 `json:"value"`
}

// LedgerResponse wraps the 12-month window.
type LedgerResponse struct {
	StoreID int64       `json:"store_id"`
	From    string      `json:"from"`
	Rows    []LedgerRow `json:"rows"`
}

func toSettingResponse(setting Setting) SettingResponse {
	return SettingResponse{
		StoreID:        setting.StoreID,
		MonthlyBudget:  setting.MonthlyBudget,
		ManagerPercent: setting.ManagerPercent,
	}
}

func toDebtResponse(debt Debt) DebtResponse {
	return DebtResponse{ID: debt.ID, StoreID: debt.StoreID, Month: debt.Month, Value: debt.Value}
}
