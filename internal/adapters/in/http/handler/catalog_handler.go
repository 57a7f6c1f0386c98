// internal/adapters/in/http/handler/catalog_handler.go
package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"coplace/internal/application/query/catalog"
	usecase "coplace/internal/application/usecase"
	productdom "coplace/internal/domain/product"
)

const relatedLimit = 4

// CatalogHandler serves the public catalog and the AI endpoints.
//
// - GET  /catalog?origin=&q=
// - GET  /products/{id}
// - POST /products/{id}/story
// - GET  /products/{id}/recommendations
type CatalogHandler struct {
	proj     *catalog.Projection
	products productGetter
	story    *usecase.StoryUsecase
}

func NewCatalogHandler(proj *catalog.Projection, products productGetter, story *usecase.StoryUsecase) *CatalogHandler {
	return &CatalogHandler{proj: proj, products: products, story: story}
}

type productView struct {
	productdom.Product
	PriceLabel string `json:"priceLabel"`
	RoastLabel string `json:"roastLabel"`
}

func toProductView(p productdom.Product) productView {
	return productView{Product: p, PriceLabel: p.PriceLabel(), RoastLabel: p.RoastLevel.Label()}
}

func toProductViews(ps []productdom.Product) []productView {
	out := make([]productView, 0, len(ps))
	for _, p := range ps {
		out = append(out, toProductView(p))
	}
	return out
}

// List handles GET /catalog.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := productdom.Filter{Origin: q.Get("origin"), Search: q.Get("q")}
	writeJSON(w, http.StatusOK, map[string]any{
		"ready":    h.proj.Ready(),
		"origins":  productdom.Origins,
		"filter":   f,
		"products": toProductViews(h.proj.Products(f)),
	})
}

// Get handles GET /products/{id}.
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.lookup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"product": toProductView(p),
		"related": toProductViews(h.proj.Related(p, relatedLimit)),
	})
}

// Story handles POST /products/{id}/story.
func (h *CatalogHandler) Story(w http.ResponseWriter, r *http.Request) {
	p, err := h.lookup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	s, err := h.story.Analyze(r.Context(), p)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// Recommendations handles GET /products/{id}/recommendations.
func (h *CatalogHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	p, err := h.lookup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	recs := h.story.Recommend(r.Context(), p, h.proj.All())
	writeJSON(w, http.StatusOK, map[string]any{"products": toProductViews(recs)})
}

func (h *CatalogHandler) lookup(ctx context.Context, id string) (productdom.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return productdom.Product{}, productdom.ErrInvalidID
	}
	if p, ok := h.proj.Get(id); ok {
		return p, nil
	}
	if h.products == nil {
		return productdom.Product{}, productdom.ErrNotFound
	}
	return h.products.GetByID(ctx, id)
}
