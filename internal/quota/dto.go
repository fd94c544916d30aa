package quota

import "time"

// CreateQuotaRequest is the JSON payload for order creation. Terms stays
// free text; the tokenizer decides what survives.
type CreateQuotaRequest struct {
	Number         string  `json:"number,omitempty"`
	StoreID        int64   `json:"store_id" validate:"required,gt=0"`
	Brand          string  `json:"brand" validate:"required"`
	Classification string  `json:"classification,omitempty"`
	TotalValue     float64 `json:"total_value" validate:"required,gt=0"`
	ShipmentMonth  string  `json:"shipment_month" validate:"required"`
	Terms          string  `json:"terms,omitempty"`
	Pairs          int     `json:"pairs" validate:"gte=0"`
	CreatedBy      string  `json:"created_by" validate:"required"`
}

// OrderResponse is the JSON shape of an order.
type OrderResponse struct {
	ID             int64              `json:"id"`
	Number         string             `json:"number"`
	StoreID        int64              `json:"store_id"`
	Brand          string             `json:"brand"`
	Classification string             `json:"classification,omitempty"`
	TotalValue     float64            `json:"total_value"`
	ShipmentMonth  string             `json:"shipment_month"`
	TermsDays      []int              `json:"terms_days,omitempty"`
	Pairs          int                `json:"pairs"`
	Installments   map[string]float64 `json:"installments"`
	CreatedBy      string             `json:"created_by"`
	Status         string             `json:"status"`
	CreatedAt      time.Time          `json:"created_at"`
}

// ListOrdersResponse wraps a page of orders.
type ListOrdersResponse struct {
	Orders []OrderResponse `json:"orders"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}
