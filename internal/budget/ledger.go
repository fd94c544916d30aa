package budget

import (
	"time"

	"github.com/vitrine-retail/vitrine/internal/quota"
	"github.com/vitrine-retail/vitrine/internal/shared"
)

// ComputeRow derives the full ledger row for one store and month from a
// raw snapshot. A nil setting or missing debt defaults to zero values;
// an unconfigured store shows zero availability instead of failing.
//
// Per-role availability is floored at zero so the dashboard never shows
// negative "room to spend" for a single role, while TotalAvailable is
// left unclamped so over-commitment stays visible.
func ComputeRow(storeID int64, month string, orders []quota.Order, setting *Setting, debt *Debt) LedgerRow {
	row := LedgerRow{Month: month}
	if setting != nil {
		row.GrossBudget = setting.MonthlyBudget
	}
	if debt != nil {
		row.DebtValue = debt.Value
	}
	row.NetBudget = row.GrossBudget - row.DebtValue

	managerPercent := 0
	if setting != nil {
		managerPercent = setting.ManagerPercent
	}
	row.BuyerShare = row.NetBudget * float64(100-managerPercent) / 100
	row.ManagerShare = row.NetBudget * float64(managerPercent) / 100

	liveStatuses := []quota.Status{quota.StatusPending, quota.StatusValidated}
	row.ConsumedBuyer = consumed(orders, storeID, shared.RoleBuyer, month, liveStatuses...)
	row.ConsumedManager = consumed(orders, storeID, shared.RoleManager, month, liveStatuses...)
	row.ValidatedBuyer = consumed(orders, storeID, shared.RoleBuyer, month, quota.StatusValidated)
	row.ValidatedManager = consumed(orders, storeID, shared.RoleManager, month, quota.StatusValidated)

	row.AvailableBuyer = floorZero(row.BuyerShare - row.ConsumedBuyer)
	row.AvailableManager = floorZero(row.ManagerShare - row.ConsumedManager)
	row.TotalAvailable = row.NetBudget - row.ConsumedBuyer - row.ConsumedManager
	return row
}

// ComputeWindow derives the rolling 12-month ledger starting at ref's
// month. Debts are indexed once; each row is an independent full
// computation over the same snapshot.
func ComputeWindow(storeID int64, ref time.Time, orders []quota.Order, setting *Setting, debts []Debt) []LedgerRow {
	byMonth := make(map[string]*Debt, len(debts))
	for i := range debts {
		if debts[i].StoreID == storeID {
			byMonth[debts[i].Month] = &debts[i]
		}
	}
	months := quota.Window(ref)
	rows := make([]LedgerRow, 0, len(months))
	for _, month := range months {
		rows = append(rows, ComputeRow(storeID, month, orders, setting, byMonth[month]))
	}
	return rows
}

// PartitionByStore groups orders by store so a multi-store refresh scans
// the full collection once instead of once per store.
func PartitionByStore(orders []quota.Order) map[int64][]quota.Order {
	partition := make(map[int64][]quota.Order)
	for _, order := range orders {
		partition[order.StoreID] = append(partition[order.StoreID], order)
	}
	return partition
}

func consumed(orders []quota.Order, storeID int64, role shared.Role, month string, statuses ...quota.Status) float64 {
	var total float64
	for _, order := range orders {
		if order.StoreID != storeID || order.CreatedBy != role {
			continue
		}
		if !statusIn(order.Status, statuses) {
			continue
		}
		total += order.InstallmentAt(month)
	}
	return total
}

func statusIn(status quota.Status, statuses []quota.Status) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func floorZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
