package quota

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vitrine-retail/vitrine/internal/platform/httpx"
)

// Handler manages quota endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers quota routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/quotas", h.list)
	r.Post("/quotas", h.create)
	r.Get("/quotas/{id}", h.show)
	r.Post("/quotas/{id}/validate", h.validateOrder)
	r.Post("/quotas/{id}/reactivate", h.reactivate)
	r.Delete("/quotas/{id}", h.delete)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateQuotaRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", "request body is not valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	shipment, err := time.Parse("2006-01", req.ShipmentMonth)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "shipment_month must be YYYY-MM")
		return
	}

	order, err := h.service.CreateOrder(r.Context(), CreateOrderInput{
		Number:         req.Number,
		StoreID:        req.StoreID,
		Brand:          req.Brand,
		Classification: req.Classification,
		TotalValue:     req.TotalValue,
		ShipmentDate:   shipment,
		Terms:          req.Terms,
		Pairs:          req.Pairs,
		CreatedBy:      req.CreatedBy,
	})
	if err != nil {
		h.logger.Error("create quota", slog.Any("error", err))
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toOrderResponse(order))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 20
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	storeID, _ := strconv.ParseInt(r.URL.Query().Get("store_id"), 10, 64)
	filters := ListFilters{
		StoreID: storeID,
		Status:  r.URL.Query().Get("status"),
		Search:  r.URL.Query().Get("search"),
		SortBy:  r.URL.Query().Get("sort"),
		SortDir: r.URL.Query().Get("dir"),
	}
	orders, total, err := h.service.ListOrders(r.Context(), limit, offset, filters)
	if err != nil {
		h.logger.Error("list quotas", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	resp := ListOrdersResponse{Orders: make([]OrderResponse, 0, len(orders)), Total: total, Limit: limit, Offset: offset}
	for _, order := range orders {
		resp.Orders = append(resp.Orders, toOrderResponse(order))
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return
	}
	order, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *Handler) validateOrder(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.service.ValidateOrder)
}

func (h *Handler) reactivate(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.service.ReactivateOrder)
}

func (h *Handler) lifecycle(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id int64) (Order, error)) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return
	}
	order, err := op(r.Context(), id)
	if err != nil {
		h.logger.Error("quota lifecycle", slog.Any("error", err), slog.Int64("id", id))
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return
	}
	if err := h.service.DeleteOrder(r.Context(), id); err != nil {
		h.logger.Error("delete quota", slog.Any("error", err), slog.Int64("id", id))
		h.respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// respondErr translates package sentinels onto the shared boundary
// sentinels before delegating the HTTP mapping to httpx.
func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		err = fmt.Errorf("%w: order", httpx.ErrNotFound)
	case errors.Is(err, ErrValidation):
		err = fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	case errors.Is(err, ErrDuplicate):
		err = fmt.Errorf("%w: %v", httpx.ErrDuplicate, err)
	}
	httpx.RespondError(w, err)
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func toOrderResponse(order Order) OrderResponse {
	installments := make(map[string]float64, len(order.Installments))
	for offset, amount := range order.Installments {
		installments[strconv.Itoa(offset)] = amount
	}
	return OrderResponse{
		ID:             order.ID,
		Number:         order.Number,
		StoreID:        order.StoreID,
		Brand:          order.Brand,
		Classification: order.Classification,
		TotalValue:     order.TotalValue,
		ShipmentMonth:  MonthLabel(order.ShipmentDate),
		TermsDays:      order.TermsDays,
		Pairs:          order.Pairs,
		Installments:   installments,
		CreatedBy:      string(order.CreatedBy),
		Status:         string(order.Status),
		CreatedAt:      order.CreatedAt,
	}
}
