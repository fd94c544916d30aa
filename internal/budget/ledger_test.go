package budget

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vitrine-retail/vitrine/internal/quota"
	"github.com/vitrine-retail/vitrine/internal/shared"
)

func order(storeID int64, role shared.Role, status quota.Status, shipment time.Time, installments map[int]float64) quota.Order {
	return quota.Order{
		StoreID:      storeID,
		CreatedBy:    role,
		Status:       status,
		ShipmentDate: shipment,
		Installments: installments,
	}
}

func TestComputeRowSplit(t *testing.T) {
	setting := &Setting{StoreID: 1, MonthlyBudget: 10000, ManagerPercent: 30}
	debt := &Debt{StoreID: 1, Month: "2024-09", Value: 2000}

	row := ComputeRow(1, "2024-09", nil, setting, debt)

	require.Equal(t, 10000.0, row.GrossBudget)
	require.Equal(t, 2000.0, row.DebtValue)
	require.Equal(t, 8000.0, row.NetBudget)
	require.InDelta(t, 5600.0, row.BuyerShare, 1e-9)
	require.InDelta(t, 2400.0, row.ManagerShare, 1e-9)
	require.Equal(t, 8000.0, row.TotalAvailable)
}

func TestComputeRowConsumption(t *testing.T) {
	shipment := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	orders := []quota.Order{
		// Lands on 2024-09 at offset 3.
		order(1, shared.RoleBuyer, quota.StatusPending, shipment, map[int]float64{3: 1000}),
		order(1, shared.RoleBuyer, quota.StatusValidated, shipment, map[int]float64{3: 500}),
		// Different store, must not count.
		order(2, shared.RoleBuyer, quota.StatusPending, shipment, map[int]float64{3: 9999}),
		// Different role.
		order(1, shared.RoleManager, quota.StatusPending, shipment, map[int]float64{3: 700}),
	}
	setting := &Setting{StoreID: 1, MonthlyBudget: 10000, ManagerPercent: 30}

	row := ComputeRow(1, "2024-09", orders, setting, nil)

	require.InDelta(t, 1500.0, row.ConsumedBuyer, 1e-9)
	require.InDelta(t, 500.0, row.ValidatedBuyer, 1e-9)
	require.InDelta(t, 700.0, row.ConsumedManager, 1e-9)
	require.Zero(t, row.ValidatedManager)
	require.InDelta(t, 7000.0-1500.0, row.AvailableBuyer, 1e-9)
	require.InDelta(t, 3000.0-700.0, row.AvailableManager, 1e-9)
	require.InDelta(t, 10000.0-1500.0-700.0, row.TotalAvailable, 1e-9)
}

func TestComputeRowOverCommitment(t *testing.T) {
	shipment := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	orders := []quota.Order{
		order(1, shared.RoleBuyer, quota.StatusPending, shipment, map[int]float64{0: 1500}),
	}
	setting := &Setting{StoreID: 1, MonthlyBudget: 1000, ManagerPercent: 0}

	row := ComputeRow(1, "2024-01", orders, setting, nil)

	// The buyer's availability floors at zero, but the total keeps the
	// overdraft visible.
	require.Zero(t, row.AvailableBuyer)
	require.Equal(t, -500.0, row.TotalAvailable)
}

func TestComputeRowUnconfiguredStore(t *testing.T) {
	row := ComputeRow(1, "2024-01", nil, nil, nil)

	require.Zero(t, row.GrossBudget)
	require.Zero(t, row.NetBudget)
	require.Zero(t, row.AvailableBuyer)
	require.Zero(t, row.AvailableManager)
	require.Zero(t, row.TotalAvailable)
}

func TestComputeWindow(t *testing.T) {
	ref := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)
	setting := &Setting{StoreID: 1, MonthlyBudget: 1000, ManagerPercent: 50}
	debts := []Debt{
		{StoreID: 1, Month: "2024-07", Value: 200},
		{StoreID: 2, Month: "2024-07", Value: 9999}, // other store, ignored
	}

	rows := ComputeWindow(1, ref, nil, setting, debts)

	require.Len(t, rows, quota.WindowMonths)
	require.Equal(t, "2024-06", rows[0].Month)
	require.Equal(t, "2025-05", rows[len(rows)-1].Month)
	require.Zero(t, rows[0].DebtValue)
	require.Equal(t, 200.0, rows[1].DebtValue)
	require.Equal(t, 800.0, rows[1].NetBudget)
}

func TestDeletionRestoresAvailability(t *testing.T) {
	shipment := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	committed := order(1, shared.RoleBuyer, quota.StatusValidated, shipment, map[int]float64{2: 400})
	setting := &Setting{StoreID: 1, MonthlyBudget: 1000, ManagerPercent: 0}

	before := ComputeRow(1, "2024-05", []quota.Order{committed}, setting, nil)
	after := ComputeRow(1, "2024-05", nil, setting, nil)

	require.InDelta(t, 600.0, before.AvailableBuyer, 1e-9)
	require.InDelta(t, 1000.0, after.AvailableBuyer, 1e-9)
	require.Equal(t, after.AvailableBuyer, before.AvailableBuyer+400)
}

func TestPartitionByStore(t *testing.T) {
	shipment := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	orders := []quota.Order{
		order(1, shared.RoleBuyer, quota.StatusPending, shipment, nil),
		order(2, shared.RoleBuyer, quota.StatusPending, shipment, nil),
		order(1, shared.RoleManager, quota.StatusPending, shipment, nil),
	}

	partition := PartitionByStore(orders)

	require.Len(t, partition, 2)
	require.Len(t, partition[1], 2)
	require.Len(t, partition[2], 1)
}
