package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sammade/inventory-api/internal/notify"
	"github.com/sammade/inventory-api/internal/orders"
	"github.com/sammade/inventory-api/internal/redisx"
)

// AlertDispatcher enqueues alerts without blocking on delivery.
type AlertDispatcher interface {
	Dispatch(alerts ...notify.Alert)
}

// OrderLister is the read side of the ledger used by the listing routes.
type OrderLister interface {
	List(ctx context.Context) ([]orders.OrderView, error)
	Recent(ctx context.Context, limit int) ([]orders.OrderView, error)
}

type OrdersHandler struct {
	Engine *orders.Engine
	Ledger OrderLister
	Alerts AlertDispatcher
	Redis  *redis.Client
	Log    *zap.Logger
}

type PlaceOrderReq struct {
	Customer string             `json:"customer"`
	Items    []orders.ItemInput `json:"items"`
}

type PlaceOrderResp struct {
	Message string        `json:"message"`
	Order   *orders.Order `json:"order"`
}

const recentLimit = 5

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/orders", h.placeOrder)
	r.Get("/orders", h.listOrders)
	r.Get("/orders/recent", h.recentOrders)
}

func (h *OrdersHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	placement, err := h.Engine.PlaceOrder(ctx, req.Customer, req.Items)
	if err != nil {
		code := statusFor(err)
		if code == http.StatusInternalServerError {
			h.Log.Error("order placement failed", zap.Error(err))
			writeError(w, code, "order could not be persisted")
			return
		}
		writeError(w, code, err.Error())
		return
	}

	_ = h.Redis.Del(ctx, redisx.KeyRecentOrders).Err()

	writeJSON(w, http.StatusOK, PlaceOrderResp{Message: "Order placed", Order: placement.Order})

	// response is written; alert delivery must not touch this request again
	h.Alerts.Dispatch(placement.Alerts...)
}

func statusFor(err error) int {
	var nf *orders.NotFoundError
	if errors.As(err, &nf) {
		return http.StatusNotFound
	}
	var inv *orders.InvalidRequestError
	var exp *orders.ExpiredError
	var stock *orders.InsufficientStockError
	if errors.As(err, &inv) || errors.As(err, &exp) || errors.As(err, &stock) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	out, err := h.Ledger.List(ctx)
	if err != nil {
		h.Log.Error("list orders", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not list orders")
		return
	}
	if out == nil {
		out = []orders.OrderView{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) recentOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// cache first; DB stays the source of truth
	if s, err := h.Redis.Get(ctx, redisx.KeyRecentOrders).Result(); err == nil && s != "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(s))
		return
	}

	out, err := h.Ledger.Recent(ctx, recentLimit)
	if err != nil {
		h.Log.Error("recent orders", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not list orders")
		return
	}
	if out == nil {
		out = []orders.OrderView{}
	}
	b, _ := json.Marshal(out)
	_ = h.Redis.Set(ctx, redisx.KeyRecentOrders, b, redisx.TTLRecentCache).Err()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
