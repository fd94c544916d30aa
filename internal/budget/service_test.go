package budget

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vitrine-retail/vitrine/internal/quota"
	"github.com/vitrine-retail/vitrine/internal/shared"
)

type memoryBudgetRepo struct {
	settings map[int64]Setting
	debts    map[int64]Debt
	nextID   int64
}

func newMemoryBudgetRepo() *memoryBudgetRepo {
	return &memoryBudgetRepo{settings: make(map[int64]Setting), debts: make(map[int64]Debt)}
}

func (r *memoryBudgetRepo) GetSetting(ctx context.Context, storeID int64) (Setting, error) {
	setting, ok := r.settings[storeID]
	if !ok {
		return Setting{}, ErrNotFound
	}
	return setting, nil
}

func (r *memoryBudgetRepo) UpsertSetting(ctx context.Context, setting Setting) (Setting, error) {
	r.settings[setting.StoreID] = setting
	return setting, nil
}

func (r *memoryBudgetRepo) ListDebts(ctx context.Context, storeID int64) ([]Debt, error) {
	var debts []Debt
	for _, debt := range r.debts {
		if debt.StoreID == storeID {
			debts = append(debts, debt)
		}
	}
	return debts, nil
}

func (r *memoryBudgetRepo) UpsertDebts(ctx context.Context, storeID int64, values map[string]float64) error {
	for month, value := range values {
		updated := false
		for id, debt := range r.debts {
			if debt.StoreID == storeID && debt.Month == month {
				debt.Value = value
				r.debts[id] = debt
				updated = true
				break
			}
		}
		if !updated {
			r.nextID++
			r.debts[r.nextID] = Debt{ID: r.nextID, StoreID: storeID, Month: month, Value: value}
		}
	}
	return nil
}

func (r *memoryBudgetRepo) DeleteDebt(ctx context.Context, id int64) error {
	if _, ok := r.debts[id]; !ok {
		return ErrNotFound
	}
	delete(r.debts, id)
	return nil
}

func (r *memoryBudgetRepo) StoreIDs(ctx context.Context) ([]int64, error) {
	seen := make(map[int64]struct{})
	for id := range r.settings {
		seen[id] = struct{}{}
	}
	for _, debt := range r.debts {
		seen[debt.StoreID] = struct{}{}
	}
	ids := make([]int64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	return ids, nil
}

type staticOrders struct {
	orders []quota.Order
}

func (s *staticOrders) ListByStore(ctx context.Context, storeID int64) ([]quota.Order, error) {
	var out []quota.Order
	for _, order := range s.orders {
		if order.StoreID == storeID {
			out = append(out, order)
		}
	}
	return out, nil
}

func TestWindowProjection(t *testing.T) {
	repo := newMemoryBudgetRepo()
	shipment := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	orders := &staticOrders{orders: []quota.Order{
		order(7, shared.RoleBuyer, quota.StatusPending, shipment, map[int]float64{3: 3000}),
	}}
	svc := NewService(repo, orders, nil, nil)
	ctx := context.Background()

	_, err := svc.UpsertSetting(ctx, Setting{StoreID: 7, MonthlyBudget: 10000, ManagerPercent: 30})
	require.NoError(t, err)
	require.NoError(t, svc.UpsertDebts(ctx, 7, map[string]float64{"2024-09": 2000}))

	rows, err := svc.WindowProjection(ctx, 7, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, rows, quota.WindowMonths)

	sept := rows[3]
	require.Equal(t, "2024-09", sept.Month)
	require.Equal(t, 8000.0, sept.NetBudget)
	require.InDelta(t, 5600.0, sept.BuyerShare, 1e-9)
	require.InDelta(t, 3000.0, sept.ConsumedBuyer, 1e-9)
	require.InDelta(t, 2600.0, sept.AvailableBuyer, 1e-9)
	require.InDelta(t, 5000.0, sept.TotalAvailable, 1e-9)
}

func TestWindowProjectionMissingSetting(t *testing.T) {
	svc := NewService(newMemoryBudgetRepo(), &staticOrders{}, nil, nil)

	rows, err := svc.WindowProjection(context.Background(), 3, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, rows, quota.WindowMonths)
	for _, row := range rows {
		require.Zero(t, row.GrossBudget)
		require.Zero(t, row.TotalAvailable)
	}
}

func TestProjectionRow(t *testing.T) {
	repo := newMemoryBudgetRepo()
	svc := NewService(repo, &staticOrders{}, nil, nil)
	ctx := context.Background()

	_, err := svc.UpsertSetting(ctx, Setting{StoreID: 1, MonthlyBudget: 500, ManagerPercent: 20})
	require.NoError(t, err)

	row, err := svc.ProjectionRow(ctx, 1, "2024-02")
	require.NoError(t, err)
	require.Equal(t, 500.0, row.GrossBudget)
	require.InDelta(t, 400.0, row.BuyerShare, 1e-9)

	_, err = svc.ProjectionRow(ctx, 1, "feb-2024")
	require.ErrorIs(t, err, ErrValidation)
}

func TestUpsertDebtsValidation(t *testing.T) {
	svc := NewService(newMemoryBudgetRepo(), &staticOrders{}, nil, nil)
	ctx := context.Background()

	err := svc.UpsertDebts(ctx, 1, map[string]float64{"2024/01": 100})
	require.ErrorIs(t, err, ErrValidation)

	require.NoError(t, svc.UpsertDebts(ctx, 1, nil))

	err = svc.UpsertDebts(ctx, 0, map[string]float64{"2024-01": 100})
	require.ErrorIs(t, err, ErrValidation)
}

func TestUpsertDebtsTouchesOnlyGivenMonths(t *testing.T) {
	repo := newMemoryBudgetRepo()
	svc := NewService(repo, &staticOrders{}, nil, nil)
	ctx := context.Background()

	require.NoError(t, svc.UpsertDebts(ctx, 1, map[string]float64{"2024-01": 100, "2024-02": 200}))
	require.NoError(t, svc.UpsertDebts(ctx, 1, map[string]float64{"2024-02": 250}))

	debts, err := svc.ListDebts(ctx, 1)
	require.NoError(t, err)
	require.Len(t, debts, 2)
	byMonth := make(map[string]float64, len(debts))
	for _, debt := range debts {
		byMonth[debt.Month] = debt.Value
	}
	require.Equal(t, 100.0, byMonth["2024-01"])
	require.Equal(t, 250.0, byMonth["2024-02"])
}

func TestDeleteDebt(t *testing.T) {
	repo := newMemoryBudgetRepo()
	svc := NewService(repo, &staticOrders{}, nil, nil)
	ctx := context.Background()

	require.NoError(t, svc.UpsertDebts(ctx, 1, map[string]float64{"2024-01": 100}))
	debts, err := svc.ListDebts(ctx, 1)
	require.NoError(t, err)
	require.Len(t, debts, 1)

	require.NoError(t, svc.DeleteDebt(ctx, debts[0].ID))
	require.ErrorIs(t, svc.DeleteDebt(ctx, debts[0].ID), ErrNotFound)
}
