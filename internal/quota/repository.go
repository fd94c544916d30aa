package quota

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vitrine-retail/vitrine/internal/shared"
)

// Repository provides PostgreSQL backed persistence for orders.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations.
type TxRepository interface {
	CreateOrder(ctx context.Context, order Order) (int64, error)
	UpdateOrderStatus(ctx context.Context, id int64, status Status) error
	UpdateInstallments(ctx context.Context, id int64, installments map[int]float64) error
	DeleteOrder(ctx context.Context, id int64) error
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps callback in a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	if err := fn(ctx, &txRepo{tx: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

const orderColumns = `id, number, store_id, brand, classification, total_value, shipment_month, terms_days, pairs, installments, created_by, status, created_at`

// GetOrder fetches an order by ID.
func (r *Repository) GetOrder(ctx context.Context, id int64) (Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM quota_orders WHERE id = $1`, id)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}
	return order, nil
}

// ListByStore returns every order of one store, the snapshot the ledger
// recomputes from.
func (r *Repository) ListByStore(ctx context.Context, storeID int64) ([]Order, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+` FROM quota_orders WHERE store_id = $1 ORDER BY shipment_month, id`, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

// ListAll returns every order across stores, used by maintenance jobs.
func (r *Repository) ListAll(ctx context.Context) ([]Order, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+` FROM quota_orders ORDER BY store_id, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

// ListOrders returns a filtered, sorted page of orders and the total count.
func (r *Repository) ListOrders(ctx context.Context, limit, offset int, filters ListFilters) ([]Order, int, error) {
	countSQL := `SELECT COUNT(*) FROM quota_orders WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.StoreID > 0 {
		countSQL += ` AND store_id = $` + itoa(argNum)
		args = append(args, filters.StoreID)
		argNum++
	}
	if filters.Status != "" {
		countSQL += ` AND status = $` + itoa(argNum)
		args = append(args, filters.Status)
		argNum++
	}
	if filters.Search != "" {
		countSQL += ` AND (brand ILIKE $` + itoa(argNum) + ` OR number ILIKE $` + itoa(argNum) + `)`
		args = append(args, "%"+filters.Search+"%")
		argNum++
	}

	var total int
	if err := r.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataSQL := `SELECT ` + orderColumns + ` FROM quota_orders WHERE 1=1`
	args2 := []any{}
	argNum2 := 1
	if filters.StoreID > 0 {
		dataSQL += ` AND store_id = $` + itoa(argNum2)
		args2 = append(args2, filters.StoreID)
		argNum2++
	}
	if filters.Status != "" {
		dataSQL += ` AND status = $` + itoa(argNum2)
		args2 = append(args2, filters.Status)
		argNum2++
	}
	if filters.Search != "" {
		dataSQL += ` AND (brand ILIKE $` + itoa(argNum2) + ` OR number ILIKE $` + itoa(argNum2) + `)`
		args2 = append(args2, "%"+filters.Search+"%")
		argNum2++
	}

	dataSQL += ` ORDER BY ` + sortOrder(filters.SortBy, filters.SortDir) + ` LIMIT $` + itoa(argNum2) + ` OFFSET $` + itoa(argNum2+1)
	args2 = append(args2, limit, offset)

	rows, err := r.pool.Query(ctx, dataSQL, args2...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	orders, err := collectOrders(rows)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (tx *txRepo) CreateOrder(ctx context.Context, order Order) (int64, error) {
	var total pgtype.Numeric
	_ = total.Scan(fmt.Sprintf("%f", order.TotalValue))
	termsJSON, err := json.Marshal(order.TermsDays)
	if err != nil {
		return 0, err
	}
	instJSON, err := encodeInstallments(order.Installments)
	if err != nil {
		return 0, err
	}

	var id int64
	err = tx.tx.QueryRow(ctx, `
		INSERT INTO quota_orders (number, store_id, brand, classification, total_value, shipment_month, terms_days, pairs, installments, created_by, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		RETURNING id`,
		order.Number, order.StoreID, order.Brand, order.Classification, total,
		pgtype.Date{Time: order.ShipmentDate, Valid: true}, termsJSON, order.Pairs,
		instJSON, string(order.CreatedBy), string(order.Status),
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	return id, nil
}

func (tx *txRepo) UpdateOrderStatus(ctx context.Context, id int64, status Status) error {
	tag, err := tx.tx.Exec(ctx, `UPDATE quota_orders SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (tx *txRepo) UpdateInstallments(ctx context.Context, id int64, installments map[int]float64) error {
	instJSON, err := encodeInstallments(installments)
	if err != nil {
		return err
	}
	tag, err := tx.tx.Exec(ctx, `UPDATE quota_orders SET installments = $1 WHERE id = $2`, instJSON, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (tx *txRepo) DeleteOrder(ctx context.Context, id int64) error {
	tag, err := tx.tx.Exec(ctx, `DELETE FROM quota_orders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (Order, error) {
	var (
		order     Order
		total     pgtype.Numeric
		shipment  pgtype.Date
		createdAt pgtype.Timestamptz
		termsJSON []byte
		instJSON  []byte
		createdBy string
		status    string
	)
	err := row.Scan(&order.ID, &order.Number, &order.StoreID, &order.Brand, &order.Classification,
		&total, &shipment, &termsJSON, &order.Pairs, &instJSON, &createdBy, &status, &createdAt)
	if err != nil {
		return Order{}, err
	}
	if total.Valid {
		f, _ := total.Float64Value()
		order.TotalValue = f.Float64
	}
	if shipment.Valid {
		order.ShipmentDate = shipment.Time
	}
	if createdAt.Valid {
		order.CreatedAt = createdAt.Time
	}
	if len(termsJSON) > 0 {
		if err := json.Unmarshal(termsJSON, &order.TermsDays); err != nil {
			return Order{}, err
		}
	}
	order.Installments, err = decodeInstallments(instJSON)
	if err != nil {
		return Order{}, err
	}
	order.CreatedBy = shared.Role(createdBy)
	order.Status = Status(status)
	return order, nil
}

func collectOrders(rows pgx.Rows) ([]Order, error) {
	var orders []Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

// Installment maps live as JSONB objects keyed by the decimal offset.
func encodeInstallments(installments map[int]float64) ([]byte, error) {
	out := make(map[string]float64, len(installments))
	for offset, amount := range installments {
		out[strconv.Itoa(offset)] = amount
	}
	return json.Marshal(out)
}

func decodeInstallments(raw []byte) (map[int]float64, error) {
	result := map[int]float64{}
	if len(raw) == 0 {
		return result, nil
	}
	var decoded map[string]float64
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}
	for key, amount := range decoded {
		offset, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		result[offset] = amount
	}
	return result, nil
}

func itoa(i int) string {
	return fmt.Sprintf("%d", i)
}

// sortOrder returns a safe ORDER BY clause for order listings.
func sortOrder(sortBy, sortDir string) string {
	dir := "DESC"
	if sortDir == "asc" {
		dir = "ASC"
	}
	switch sortBy {
	case "number":
		return "number " + dir
	case "brand":
		return "brand " + dir
	case "shipment":
		return "shipment_month " + dir
	case "total":
		return "total_value " + dir
	case "status":
		return "status " + dir
	default:
		return "created_at DESC"
	}
}
