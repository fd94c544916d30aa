package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/vitrine-retail/vitrine/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetOrder(ctx context.Context, id int64) (Order, error)
	ListOrders(ctx context.Context, limit, offset int, filters ListFilters) ([]Order, int, error)
	ListByStore(ctx context.Context, storeID int64) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
}

// AuditPort records lifecycle events, reused from shared.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// LedgerInvalidator is notified after any mutation that changes budget
// consumption, so derived ledger caches can drop stale windows.
type LedgerInvalidator interface {
	Bump(ctx context.Context) error
}

// Service orchestrates order creation and the lifecycle state machine.
type Service struct {
	repo        RepositoryPort
	audit       AuditPort
	invalidator LedgerInvalidator
}

// NewService constructs the quota service.
func NewService(repo RepositoryPort, audit AuditPort, invalidator LedgerInvalidator) *Service {
	return &Service{repo: repo, audit: audit, invalidator: invalidator}
}

// CreateOrderInput describes the creation payload. Terms arrives as the
// raw free-text string the buyer typed; CreatedBy as a raw role token.
type CreateOrderInput struct {
	Number         string
	StoreID        int64
	Brand          string
	Classification string
	TotalValue     float64
	ShipmentDate   time.Time
	Terms          string
	Pairs          int
	CreatedBy      string
}

// CreateOrder validates input, derives the installment schedule and
// persists the order in PENDING state.
func (s *Service) CreateOrder(ctx context.Context, input CreateOrderInput) (Order, error) {
	if input.TotalValue <= 0 {
		return Order{}, fmt.Errorf("%w: total value must be positive", ErrValidation)
	}
	if input.Brand == "" {
		return Order{}, fmt.Errorf("%w: brand is required", ErrValidation)
	}
	if input.StoreID <= 0 {
		return Order{}, fmt.Errorf("%w: store is required", ErrValidation)
	}
	role, err := shared.ParseRole(input.CreatedBy)
	if err != nil {
		return Order{}, fmt.Errorf("%w: %s", ErrValidation, input.CreatedBy)
	}
	if input.Number == "" {
		input.Number = generateNumber("QT")
	}

	terms := ParseTerms(input.Terms)
	order := Order{
		Number:         input.Number,
		StoreID:        input.StoreID,
		Brand:          input.Brand,
		Classification: input.Classification,
		TotalValue:     input.TotalValue,
		ShipmentDate:   FirstOfMonth(input.ShipmentDate),
		TermsDays:      terms,
		Pairs:          input.Pairs,
		Installments:   Allocate(input.TotalValue, terms),
		CreatedBy:      role,
		Status:         StatusPending,
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.CreateOrder(ctx, order)
		if err != nil {
			return err
		}
		order.ID = id
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	s.recordAudit(ctx, "QUOTA_CREATE", order.ID, map[string]any{"number": order.Number, "store": order.StoreID, "total": order.TotalValue})
	s.bumpLedger(ctx)
	return order, nil
}

// ValidateOrder marks the commitment as confirmed. Idempotent: an
// already validated order is returned unchanged. The installment
// schedule is never recomputed here; validation is a workflow milestone,
// not a financial change.
func (s *Service) ValidateOrder(ctx context.Context, id int64) (Order, error) {
	return s.transition(ctx, id, StatusValidated, "QUOTA_VALIDATE")
}

// ReactivateOrder moves a validated order back to PENDING. Idempotent
// for orders already pending.
func (s *Service) ReactivateOrder(ctx context.Context, id int64) (Order, error) {
	return s.transition(ctx, id, StatusPending, "QUOTA_REACTIVATE")
}

func (s *Service) transition(ctx context.Context, id int64, target Status, action string) (Order, error) {
	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if order.Status == target {
		return order, nil
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.UpdateOrderStatus(ctx, id, target)
	})
	if err != nil {
		return Order{}, err
	}
	order.Status = target
	s.recordAudit(ctx, action, id, map[string]any{"number": order.Number})
	s.bumpLedger(ctx)
	return order, nil
}

// DeleteOrder removes the order; all further ledger computations simply
// exclude it. Missing orders report ErrNotFound rather than succeeding
// silently, since a swallowed delete could mask a lost commitment.
func (s *Service) DeleteOrder(ctx context.Context, id int64) error {
	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return err
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.DeleteOrder(ctx, id)
	})
	if err != nil {
		return err
	}
	s.recordAudit(ctx, "QUOTA_DELETE", id, map[string]any{"number": order.Number, "total": order.TotalValue})
	s.bumpLedger(ctx)
	return nil
}

// GetOrder fetches a single order.
func (s *Service) GetOrder(ctx context.Context, id int64) (Order, error) {
	return s.repo.GetOrder(ctx, id)
}

// ListOrders returns a filtered page of orders plus the total count.
func (s *Service) ListOrders(ctx context.Context, limit, offset int, filters ListFilters) ([]Order, int, error) {
	return s.repo.ListOrders(ctx, limit, offset, filters)
}

// RebuildInstallments recomputes the persisted installment map of every
// order from its stored total and terms, repairing drift left by older
// writers. Returns the number of orders rewritten.
func (s *Service) RebuildInstallments(ctx context.Context) (int, error) {
	orders, err := s.repo.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	rebuilt := 0
	for _, order := range orders {
		want := Allocate(order.TotalValue, order.TermsDays)
		if installmentsEqual(order.Installments, want) {
			continue
		}
		id := order.ID
		err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
			return tx.UpdateInstallments(ctx, id, want)
		})
		if err != nil {
			return rebuilt, err
		}
		rebuilt++
	}
	if rebuilt > 0 {
		s.bumpLedger(ctx)
	}
	return rebuilt, nil
}

func installmentsEqual(a, b map[int]float64) bool {
	if len(a) != len(b) {
		return false
	}
	const eps = 1e-6
	for k, v := range a {
		w, ok := b[k]
		if !ok || v-w > eps || w-v > eps {
			return false
		}
	}
	return true
}

func (s *Service) recordAudit(ctx context.Context, action string, orderID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	entityID := fmt.Sprintf("%d", orderID)
	_ = s.audit.Record(ctx, shared.AuditLog{
		Action:   action,
		Entity:   "quota",
		EntityID: entityID,
		Ref:      shared.EntityRef("quota", entityID),
		Meta:     meta,
	})
}

func (s *Service) bumpLedger(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	_ = s.invalidator.Bump(ctx)
}

func generateNumber(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
