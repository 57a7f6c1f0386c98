// internal/adapters/in/http/handler/cart_handler.go
package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"coplace/internal/adapters/in/http/middleware"
	usecase "coplace/internal/application/usecase"
	cartdom "coplace/internal/domain/cart"
	productdom "coplace/internal/domain/product"
)

// readyTimeout bounds the wait for the first cart snapshot of a fresh session.
const readyTimeout = 5 * time.Second

// CartHandler serves the signed-in user's cart.
//
// - GET    /cart
// - DELETE /cart
// - POST   /cart/items               {productId, quantity}
// - PUT    /cart/items/{productId}   {quantity}
// - DELETE /cart/items/{productId}
// - POST   /cart/checkout
//
// A request without a live session (no POST /session yet, or a restarted
// server) logs the user in implicitly.
type CartHandler struct {
	sessions *usecase.CartSessions
	products productGetter
	checkout *usecase.CheckoutUsecase
}

func NewCartHandler(sessions *usecase.CartSessions, products productGetter, checkout *usecase.CheckoutUsecase) *CartHandler {
	return &CartHandler{sessions: sessions, products: products, checkout: checkout}
}

type cartLineView struct {
	Product    productView `json:"product"`
	Quantity   int         `json:"quantity"`
	Subtotal   int64       `json:"subtotal"`
	TotalLabel string      `json:"subtotalLabel"`
}

type cartView struct {
	Items      []cartLineView `json:"items"`
	Total      int64          `json:"total"`
	TotalLabel string         `json:"totalLabel"`
	Count      int            `json:"count"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

func toCartView(c *cartdom.Cart) cartView {
	v := cartView{Items: []cartLineView{}}
	if c == nil {
		v.TotalLabel = productdom.FormatRupiah(0)
		return v
	}
	for _, e := range c.Items {
		v.Items = append(v.Items, toCartLineView(e))
	}
	v.Total = c.Total()
	v.Count = c.Count()
	v.TotalLabel = productdom.FormatRupiah(v.Total)
	v.UpdatedAt = c.UpdatedAt
	return v
}

func toCartLineView(e cartdom.Entry) cartLineView {
	return cartLineView{
		Product:    toProductView(e.Product),
		Quantity:   e.Quantity,
		Subtotal:   e.Subtotal(),
		TotalLabel: productdom.FormatRupiah(e.Subtotal()),
	}
}

// aggregate returns the caller's live cart, logging in when needed.
func (h *CartHandler) aggregate(w http.ResponseWriter, r *http.Request) (*usecase.CartAggregate, bool) {
	sess, ok := middleware.CurrentSession(r)
	if !ok {
		unauthorized(w)
		return nil, false
	}
	agg, err := h.sessions.Login(r.Context(), sess)
	if err != nil {
		writeErr(w, err)
		return nil, false
	}
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()
	if err := agg.WaitReady(ctx); err != nil {
		writeErr(w, err)
		return nil, false
	}
	return agg, true
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	agg, ok := h.aggregate(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toCartView(agg.Snapshot()))
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	req.ProductID = strings.TrimSpace(req.ProductID)
	if req.ProductID == "" {
		writeErr(w, cartdom.ErrInvalidProduct)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 {
		writeErr(w, cartdom.ErrInvalidQuantity)
		return
	}

	agg, ok := h.aggregate(w, r)
	if !ok {
		return
	}
	p, err := h.products.GetByID(r.Context(), req.ProductID)
	if err != nil {
		writeErr(w, err)
		return
	}
	if err := agg.AddToCart(r.Context(), p, req.Quantity); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartView(agg.Snapshot()))
}

type updateQtyRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req updateQtyRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	agg, ok := h.aggregate(w, r)
	if !ok {
		return
	}
	if err := agg.UpdateQuantity(r.Context(), chi.URLParam(r, "productId"), req.Quantity); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartView(agg.Snapshot()))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	agg, ok := h.aggregate(w, r)
	if !ok {
		return
	}
	if err := agg.RemoveFromCart(r.Context(), chi.URLParam(r, "productId")); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartView(agg.Snapshot()))
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	agg, ok := h.aggregate(w, r)
	if !ok {
		return
	}
	if err := agg.ClearCart(r.Context()); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartView(agg.Snapshot()))
}

func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	agg, ok := h.aggregate(w, r)
	if !ok {
		return
	}
	receipt, err := h.checkout.Checkout(r.Context(), agg)
	if err != nil {
		writeErr(w, err)
		return
	}
	lines := make([]cartLineView, 0, len(receipt.Lines))
	for _, e := range receipt.Lines {
		lines = append(lines, toCartLineView(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"lines":      lines,
		"total":      receipt.Total,
		"totalLabel": productdom.FormatRupiah(receipt.Total),
		"count":      receipt.Count,
		"createdAt":  receipt.CreatedAt,
	})
}
