package budget

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/vitrine-retail/vitrine/internal/quota"
	"github.com/vitrine-retail/vitrine/internal/shared"
)

func newTestRouter(t *testing.T, orders *staticOrders) (http.Handler, *Service) {
	t.Helper()
	if orders == nil {
		orders = &staticOrders{}
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := NewService(newMemoryBudgetRepo(), orders, nil, nil)
	router := chi.NewRouter()
	NewHandler(logger, service).MountRoutes(router)
	return router, service
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandlerSettingBounds(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rec := doJSON(t, router, http.MethodPut, "/budget/stores/1/setting", UpsertSettingRequest{
		MonthlyBudget:  10000,
		ManagerPercent: 150,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPut, "/budget/stores/1/setting", UpsertSettingRequest{
		MonthlyBudget:  10000,
		ManagerPercent: -1,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPut, "/budget/stores/1/setting", UpsertSettingRequest{
		MonthlyBudget:  -500,
		ManagerPercent: 30,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerSettingRoundTrip(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rec := doJSON(t, router, http.MethodPut, "/budget/stores/1/setting", UpsertSettingRequest{
		MonthlyBudget:  10000,
		ManagerPercent: 30,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var saved SettingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	require.Equal(t, int64(1), saved.StoreID)
	require.Equal(t, 30, saved.ManagerPercent)

	rec = doJSON(t, router, http.MethodGet, "/budget/stores/1/setting", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// A store without a setting reports not found.
	rec = doJSON(t, router, http.MethodGet, "/budget/stores/2/setting", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerLedgerRoundTrip(t *testing.T) {
	shipment := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	orders := &staticOrders{orders: []quota.Order{
		order(7, shared.RoleBuyer, quota.StatusPending, shipment, map[int]float64{3: 3000}),
	}}
	router, svc := newTestRouter(t, orders)
	ctx := context.Background()

	_, err := svc.UpsertSetting(ctx, Setting{StoreID: 7, MonthlyBudget: 10000, ManagerPercent: 30})
	require.NoError(t, err)
	require.NoError(t, svc.UpsertDebts(ctx, 7, map[string]float64{"2024-09": 2000}))

	rec := doJSON(t, router, http.MethodGet, "/budget/stores/7/ledger?from=2024-06", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp LedgerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, int64(7), resp.StoreID)
	require.Equal(t, "2024-06", resp.From)
	require.Len(t, resp.Rows, quota.WindowMonths)

	sept := resp.Rows[3]
	require.Equal(t, "2024-09", sept.Month)
	require.Equal(t, 8000.0, sept.NetBudget)
	require.InDelta(t, 2600.0, sept.AvailableBuyer, 1e-9)
	require.InDelta(t, 5000.0, sept.TotalAvailable, 1e-9)
}

func TestHandlerLedgerRejectsBadInput(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rec := doJSON(t, router, http.MethodGet, "/budget/stores/7/ledger?from=sometime", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/budget/stores/abc/ledger", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerDebts(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rec := doJSON(t, router, http.MethodPut, "/budget/stores/1/debts", UpsertDebtsRequest{
		Debts: map[string]float64{"2024-01": 100, "2024-02": 200},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var debts []DebtResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &debts))
	require.Len(t, debts, 2)

	// An empty month map fails the request tags.
	rec = doJSON(t, router, http.MethodPut, "/budget/stores/1/debts", UpsertDebtsRequest{
		Debts: map[string]float64{},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Malformed month keys are rejected by the service.
	rec = doJSON(t, router, http.MethodPut, "/budget/stores/1/debts", UpsertDebtsRequest{
		Debts: map[string]float64{"01/2024": 100},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/budget/debts/999", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/budget/debts/"+strconv.FormatInt(debts[0].ID, 10), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
}
