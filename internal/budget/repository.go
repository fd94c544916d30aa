package budget

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for settings and
// debts.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetSetting fetches the single budget setting of a store.
func (r *Repository) GetSetting(ctx context.Context, storeID int64) (Setting, error) {
	var (
		setting Setting
		budget  pgtype.Numeric
	)
	err := r.pool.QueryRow(ctx,
		`SELECT store_id, monthly_budget, manager_percent FROM budget_settings WHERE store_id = $1`,
		storeID,
	).Scan(&setting.StoreID, &budget, &setting.ManagerPercent)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Setting{}, ErrNotFound
		}
		return Setting{}, err
	}
	if budget.Valid {
		f, _ := budget.Float64Value()
		setting.MonthlyBudget = f.Float64
	}
	return setting, nil
}

// UpsertSetting replaces the store's setting. No history is kept.
func (r *Repository) UpsertSetting(ctx context.Context, setting Setting) (Setting, error) {
	var budget pgtype.Numeric
	_ = budget.Scan(fmt.Sprintf("%f", setting.MonthlyBudget))
	_, err := r.pool.Exec(ctx, `
		INSERT INTO budget_settings (store_id, monthly_budget, manager_percent, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (store_id)
		DO UPDATE SET monthly_budget = EXCLUDED.monthly_budget, manager_percent = EXCLUDED.manager_percent, updated_at = NOW()`,
		setting.StoreID, budget, setting.ManagerPercent)
	if err != nil {
		return Setting{}, err
	}
	return setting, nil
}

// ListDebts returns every recorded debt of a store.
func (r *Repository) ListDebts(ctx context.Context, storeID int64) ([]Debt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, store_id, month, value FROM budget_debts WHERE store_id = $1 ORDER BY month`,
		storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var debts []Debt
	for rows.Next() {
		var (
			debt  Debt
			value pgtype.Numeric
		)
		if err := rows.Scan(&debt.ID, &debt.StoreID, &debt.Month, &value); err != nil {
			return nil, err
		}
		if value.Valid {
			f, _ := value.Float64Value()
			debt.Value = f.Float64
		}
		debts = append(debts, debt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return debts, nil
}

// UpsertDebts bulk replaces-or-inserts debts for the given months only;
// months absent from the map are left untouched.
func (r *Repository) UpsertDebts(ctx context.Context, storeID int64, values map[string]float64) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	for month, amount := range values {
		var value pgtype.Numeric
		_ = value.Scan(fmt.Sprintf("%f", amount))
		_, err := tx.Exec(ctx, `
			INSERT INTO budget_debts (store_id, month, value, updated_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (store_id, month)
			DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
			storeID, month, value)
		if err != nil {
			_ = tx.Rollback(ctx)
			return err
		}
	}
	return tx.Commit(ctx)
}

// DeleteDebt removes a single store-month record.
func (r *Repository) DeleteDebt(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM budget_debts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// StoreIDs lists every store known to the budget subsystem, whether it
// has a setting, a debt or only orders. Used by the warmup job.
func (r *Repository) StoreIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT store_id FROM budget_settings
		UNION
		SELECT store_id FROM budget_debts
		UNION
		SELECT store_id FROM quota_orders
		ORDER BY store_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
