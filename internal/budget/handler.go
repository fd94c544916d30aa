package budget

import (
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

// Handler manages budget endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers budget routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/budget/stores/{storeID}/ledger", h.ledger)
	r.Get("/budget/stores/{storeID}/setting", h.showSetting)
	r.Put("/budget/stores/{storeID}/setting", h.upsertSetting)
	r.Get("/budget/stores/{storeID}/debts", h.listDebts)
	r.Put("/budget/stores/{storeID}/debts", h.upsertDebts)
	r.Delete("/budget/debts/{id}", h.deleteDebt)
}

func (h *Handler) ledger(w http.ResponseWriter, r *http.Request) {
	storeID, err := parseStoreID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid store id")
		return
	}
	ref := time.Now()
	if from := r.URL.Query().Get("from"); from != "" {
		parsed, err := time.Parse("2006-01", from)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "from must be YYYY-MM")
			return
		}
		ref = parsed
	}
	rows, err := h.service.WindowProjection(r.Context(), storeID, ref)
	if err != nil {
		h.logger.Error("ledger window", slog.Any("error", err), slog.Int64("store_id", storeID))
		h.respondErr(w, err)
		return
	}
	resp := LedgerResponse{StoreID: storeID, Rows: rows}
	if len(rows) > 0 {
		resp.From = rows[0].Month
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) showSetting(w http.ResponseWriter, r *http.Request) {
	storeID, err := parseStoreID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid store id")
		return
	}
	setting, err := h.service.GetSetting(r.Context(), storeID)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toSettingResponse(setting))
}

func (h *Handler) upsertSetting(w http.ResponseWriter, r *http.Request) {
	storeID, err := parseStoreID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid store id")
		return
	}
	var req UpsertSettingRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", "request body is not valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	setting, err := h.service.UpsertSetting(r.Context(), Setting{
		StoreID:        storeID,
		MonthlyBudget:  req.MonthlyBudget,
		ManagerPercent: req.ManagerPercent,
	})
	if err != nil {
		h.logger.Error("upsert setting", slog.Any("error", err), slog.Int64("store_id", storeID))
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toSettingResponse(setting))
}

func (h *Handler) listDebts(w http.ResponseWriter, r *http.Request) {
	storeID, err := parseStoreID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid store id")
		return
	}
	debts, err := h.service.ListDebts(r.Context(), storeID)
	if err != nil {
		h.logger.Error("list debts", slog.Any("error", err), slog.Int64("store_id", storeID))
		h.respondErr(w, err)
		return
	}
	resp := make([]DebtResponse, 0, len(debts))
	for _, debt := range debts {
		resp = append(resp, toDebtResponse(debt))
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) upsertDebts(w http.ResponseWriter, r *http.Request) {
	storeID, err := parseStoreID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid store id")
		return
	}
	var req UpsertDebtsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", "request body is not valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.UpsertDebts(r.Context(), storeID, req.Debts); err != nil {
		h.logger.Error("upsert debts", slog.Any("error", err), slog.Int64("store_id", storeID))
		h.respondErr(w, err)
		return
	}
	debts, err := h.service.ListDebts(r.Context(), storeID)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	resp := make([]DebtResponse, 0, len(debts))
	for _, debt := range debts {
		resp = append(resp, toDebtResponse(debt))
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) deleteDebt(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return
	}
	if err := h.service.DeleteDebt(r.Context(), id); err != nil {
		h.logger.Error("delete debt", slog.Any("error", err), slog.Int64("id", id))
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
		err = fmt.Errorf("%w: record", httpx.ErrNotFound)
	case errors.Is(err, ErrValidation):
		err = fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	httpx.RespondError(w, err)
}

func parseStoreID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "storeID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("budget: invalid store id")
	}
	return id, nil
}
