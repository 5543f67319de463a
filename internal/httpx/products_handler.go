package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sammade/inventory-api/internal/inventory"
	"github.com/sammade/inventory-api/internal/notify"
)

// Products within this many days of expiry get an expiry warning enqueued
// when the catalog is listed.
const expiryWarnDays = 3

// ProductStore is the slice of the inventory store the CRUD routes need.
type ProductStore interface {
	Create(ctx context.Context, p *inventory.Product) error
	FindByID(ctx context.Context, id string) (inventory.Product, error)
	List(ctx context.Context) ([]inventory.Product, error)
	Update(ctx context.Context, p *inventory.Product) error
	Delete(ctx context.Context, id string) error
}

type ProductsHandler struct {
	Store  ProductStore
	Alerts AlertDispatcher
	Log    *zap.Logger
}

type ProductReq struct {
	Name       string           `json:"name"`
	Price      *decimal.Decimal `json:"price"`
	Quantity   *int             `json:"quantity"`
	ExpiryDate *time.Time       `json:"expiryDate"`
}

func (h *ProductsHandler) Register(r *chi.Mux) {
	r.Post("/products", h.create)
	r.Get("/products", h.list)
	r.Get("/products/{id}", h.get)
	r.Put("/products/{id}", h.update)
	r.Delete("/products/{id}", h.delete)
}

func (req *ProductReq) validate() string {
	if req.Name == "" || req.Price == nil || req.Quantity == nil || req.ExpiryDate == nil {
		return "please fill in all fields (name, price, quantity, expiryDate)"
	}
	if !req.Price.IsPositive() || *req.Quantity < 0 {
		return "price must be > 0 and quantity cannot be negative"
	}
	return ""
}

func (h *ProductsHandler) create(w http.ResponseWriter, r *http.Request) {
	var req ProductReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p := &inventory.Product{
		Name:       req.Name,
		Price:      *req.Price,
		Quantity:   *req.Quantity,
		ExpiryDate: *req.ExpiryDate,
	}
	err := h.Store.Create(ctx, p)
	if errors.Is(err, inventory.ErrNameTaken) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.Log.Error("create product", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not create product")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Product added", "product": p})
}

func (h *ProductsHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Store.List(ctx)
	if err != nil {
		h.Log.Error("list products", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not list products")
		return
	}
	if ps == nil {
		ps = []inventory.Product{}
	}

	now := time.Now()
	var warnings []notify.Alert
	for _, p := range ps {
		if p.DaysUntilExpiry(now) <= expiryWarnDays {
			warnings = append(warnings, notify.Expiring(p.Name, p.ExpiryDate))
		}
	}

	writeJSON(w, http.StatusOK, ps)
	h.Alerts.Dispatch(warnings...)
}

func (h *ProductsHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Store.FindByID(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, inventory.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.Log.Error("get product", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load product")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) update(w http.ResponseWriter, r *http.Request) {
	var req ProductReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p := &inventory.Product{
		ID:         chi.URLParam(r, "id"),
		Name:       req.Name,
		Price:      *req.Price,
		Quantity:   *req.Quantity,
		ExpiryDate: *req.ExpiryDate,
	}
	err := h.Store.Update(ctx, p)
	switch {
	case errors.Is(err, inventory.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, inventory.ErrNameTaken):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.Log.Error("update product", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not update product")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Product updated", "product": p})
}

func (h *ProductsHandler) delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	err := h.Store.Delete(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, inventory.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.Log.Error("delete product", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not delete product")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Product deleted"})
}
