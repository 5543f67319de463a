package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SalesSource sums order totals over a half-open interval.
type SalesSource interface {
	TotalBetween(ctx context.Context, start, end time.Time) (decimal.Decimal, error)
}

type ReportsHandler struct {
	Ledger SalesSource
	Log    *zap.Logger
}

func (h *ReportsHandler) Register(r *chi.Mux) {
	r.Get("/reports/sales/daily", h.dailySales)
}

func (h *ReportsHandler) dailySales(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	total, err := h.Ledger.TotalBetween(ctx, start, start.AddDate(0, 0, 1))
	if err != nil {
		h.Log.Error("daily sales", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not compute daily sales")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"totalSales": total,
		"date":       start.Format("2006-01-02"),
	})
}
