package budget

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vitrine-retail/vitrine/internal/quota"
)

// RepositoryPort describes the persistence operations used by Service.
type RepositoryPort interface {
	GetSetting(ctx context.Context, storeID int64) (Setting, error)
	UpsertSetting(ctx context.Context, setting Setting) (Setting, error)
	ListDebts(ctx context.Context, storeID int64) ([]Debt, error)
	UpsertDebts(ctx context.Context, storeID int64, values map[string]float64) error
	DeleteDebt(ctx context.Context, id int64) error
	StoreIDs(ctx context.Context) ([]int64, error)
}

// OrderSource exposes the order snapshots the ledger is computed from.
// Satisfied by the quota repository.
type OrderSource interface {
	ListByStore(ctx context.Context, storeID int64) ([]quota.Order, error)
}

// MetricsPort records ledger recompute observations.
type MetricsPort interface {
	ObserveLedgerRecompute(elapsed time.Duration)
}

// Service computes store ledgers and manages their inputs. Reads go
// through the versioned cache; writes bump the version so every reader
// sees a freshly derived window.
type Service struct {
	repo    RepositoryPort
	orders  OrderSource
	cache   *Cache
	metrics MetricsPort
}

// NewService constructs the budget service. cache and metrics may be
// nil; the service then computes uncached and unobserved.
func NewService(repo RepositoryPort, orders OrderSource, cache *Cache, metrics MetricsPort) *Service {
	return &Service{repo: repo, orders: orders, cache: cache, metrics: metrics}
}

// WindowProjection returns the 12-month ledger window for a store
// starting at ref's month. Concurrent requests for the same window
// share one recomputation.
func (s *Service) WindowProjection(ctx context.Context, storeID int64, ref time.Time) ([]LedgerRow, error) {
	if storeID <= 0 {
		return nil, fmt.Errorf("%w: store is required", ErrValidation)
	}
	from := quota.MonthLabel(ref)

	key, err := s.cache.BuildKey(ctx, keyLedger(storeID, from))
	if err != nil {
		return nil, err
	}
	var rows []LedgerRow
	err = s.cache.FetchJSON(ctx, key, &rows, func(ctx context.Context) (interface{}, error) {
		result, err, _ := coalesceWindow(ctx, key, func(ctx context.Context) (interface{}, error) {
			return s.computeWindow(ctx, storeID, ref)
		})
		return result, err
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ProjectionRow returns the ledger row of one store-month. Computed
// from the same snapshot as the full window, bypassing the cache.
func (s *Service) ProjectionRow(ctx context.Context, storeID int64, month string) (LedgerRow, error) {
	if storeID <= 0 {
		return LedgerRow{}, fmt.Errorf("%w: store is required", ErrValidation)
	}
	if _, err := time.Parse("2006-01", month); err != nil {
		return LedgerRow{}, fmt.Errorf("%w: month must be YYYY-MM", ErrValidation)
	}
	orders, setting, debts, err := s.snapshot(ctx, storeID)
	if err != nil {
		return LedgerRow{}, err
	}
	var debt *Debt
	for i := range debts {
		if debts[i].Month == month {
			debt = &debts[i]
			break
		}
	}
	return ComputeRow(storeID, month, orders, setting, debt), nil
}

func (s *Service) computeWindow(ctx context.Context, storeID int64, ref time.Time) ([]LedgerRow, error) {
	started := time.Now()
	orders, setting, debts, err := s.snapshot(ctx, storeID)
	if err != nil {
		return nil, err
	}
	rows := ComputeWindow(storeID, ref, orders, setting, debts)
	if s.metrics != nil {
		s.metrics.ObserveLedgerRecompute(time.Since(started))
	}
	return rows, nil
}

// snapshot gathers the raw inputs of one store. A store without a
// setting is treated as configured at zero, not as an error.
func (s *Service) snapshot(ctx context.Context, storeID int64) ([]quota.Order, *Setting, []Debt, error) {
	orders, err := s.orders.ListByStore(ctx, storeID)
	if err != nil {
		return nil, nil, nil, err
	}
	var setting *Setting
	found, err := s.repo.GetSetting(ctx, storeID)
	switch {
	case err == nil:
		setting = &found
	case errors.Is(err, ErrNotFound):
	default:
		return nil, nil, nil, err
	}
	debts, err := s.repo.ListDebts(ctx, storeID)
	if err != nil {
		return nil, nil, nil, err
	}
	return orders, setting, debts, nil
}

// GetSetting fetches a store's budget setting.
func (s *Service) GetSetting(ctx context.Context, storeID int64) (Setting, error) {
	return s.repo.GetSetting(ctx, storeID)
}

// UpsertSetting creates or replaces a store's setting and invalidates
// cached windows. The split percentage must already be range checked by
// the caller; stored values are applied as given.
func (s *Service) UpsertSetting(ctx context.Context, setting Setting) (Setting, error) {
	if setting.StoreID <= 0 {
		return Setting{}, fmt.Errorf("%w: store is required", ErrValidation)
	}
	saved, err := s.repo.UpsertSetting(ctx, setting)
	if err != nil {
		return Setting{}, err
	}
	s.bump(ctx)
	return saved, nil
}

// ListDebts returns all debts of a store.
func (s *Service) ListDebts(ctx context.Context, storeID int64) ([]Debt, error) {
	return s.repo.ListDebts(ctx, storeID)
}

// UpsertDebts writes the given store-month values; months not present
// in the map keep their current value.
func (s *Service) UpsertDebts(ctx context.Context, storeID int64, values map[string]float64) error {
	if storeID <= 0 {
		return fmt.Errorf("%w: store is required", ErrValidation)
	}
	for month := range values {
		if _, err := time.Parse("2006-01", month); err != nil {
			return fmt.Errorf("%w: month %q must be YYYY-MM", ErrValidation, month)
		}
	}
	if len(values) == 0 {
		return nil
	}
	if err := s.repo.UpsertDebts(ctx, storeID, values); err != nil {
		return err
	}
	s.bump(ctx)
	return nil
}

// DeleteDebt removes one debt record.
func (s *Service) DeleteDebt(ctx context.Context, id int64) error {
	if err := s.repo.DeleteDebt(ctx, id); err != nil {
		return err
	}
	s.bump(ctx)
	return nil
}

// StoreIDs lists every store with budget relevant records. Used by the
// nightly warmup job.
func (s *Service) StoreIDs(ctx context.Context) ([]int64, error) {
	return s.repo.StoreIDs(ctx)
}

func (s *Service) bump(ctx context.Context) {
	_ = s.cache.Bump(ctx)
}
