// Package quota implements purchase commitment tracking for stores:
// order records, their payment-term amortization across future months,
// and the pending/validated lifecycle.
package quota

import (
	"errors"
	"time"

	"github.com/vitrine-retail/vitrine/internal/shared"
)

// Order lifecycle statuses. Both statuses keep consuming budget; the
// status only records whether the commitment has been confirmed.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusValidated Status = "VALIDATED"
)

// Order is a purchase commitment amortized over future months.
type Order struct {
	ID             int64
	Number         string
	StoreID        int64
	Brand          string
	Classification string
	TotalValue     float64
	// ShipmentDate is the amortization epoch, always the first day of
	// a calendar month.
	ShipmentDate time.Time
	TermsDays    []int
	Pairs        int
	// Installments maps month offsets from ShipmentDate to allocated
	// amounts. Persisted alongside the order.
	Installments map[int]float64
	CreatedBy    shared.Role
	Status       Status
	CreatedAt    time.Time
}

var (
	// ErrNotFound indicates record missing.
	ErrNotFound = errors.New("quota: not found")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("quota: invalid input")
	// ErrDuplicate indicates a conflicting order number.
	ErrDuplicate = errors.New("quota: duplicate order number")
)

// ListFilters narrows order listings.
type ListFilters struct {
	StoreID int64
	Status  string
	Search  string
	SortBy  string
	SortDir string
}
