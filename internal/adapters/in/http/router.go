// internal/adapters/in/http/router.go
package httpin

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"coplace/internal/adapters/in/http/handler"
	"coplace/internal/adapters/in/http/middleware"
)

// RouterDeps collects the handlers and middleware built by the container.
type RouterDeps struct {
	Auth        *middleware.AuthMiddleware
	CORSOrigins []string

	Catalog       *handler.CatalogHandler
	Session       *handler.SessionHandler
	Cart          *handler.CartHandler
	Thread        *handler.ThreadHandler
	SellerProduct *handler.SellerProductHandler
}

// NewRouter wires every route. Order: CORS outermost, then Recover, so a
// panic response still carries CORS headers.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.CORS(deps.CORSOrigins))
	r.Use(middleware.Recover)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// public
	r.Get("/catalog", deps.Catalog.List)
	r.Get("/products/{id}", deps.Catalog.Get)
	r.Get("/products/{id}/recommendations", deps.Catalog.Recommendations)
	r.Get("/threads", deps.Thread.List)
	r.Get("/threads/trending", deps.Thread.Trending)
	r.Get("/threads/{id}/replies", deps.Thread.Replies)

	// signed in
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Handler)

		r.Post("/products/{id}/story", deps.Catalog.Story)

		r.Post("/session", deps.Session.Login)
		r.Delete("/session", deps.Session.Logout)
		r.Get("/me", deps.Session.Me)
		r.Put("/me", deps.Session.Register)

		r.Get("/cart", deps.Cart.Get)
		r.Delete("/cart", deps.Cart.Clear)
		r.Post("/cart/items", deps.Cart.AddItem)
		r.Put("/cart/items/{productId}", deps.Cart.UpdateItem)
		r.Delete("/cart/items/{productId}", deps.Cart.RemoveItem)
		r.Post("/cart/checkout", deps.Cart.Checkout)

		r.Post("/threads", deps.Thread.Post)
		r.Put("/threads/{id}/like", deps.Thread.Like)
		r.Delete("/threads/{id}/like", deps.Thread.Unlike)

		r.Route("/seller/products", func(r chi.Router) {
			r.Use(middleware.RequireSeller)
			r.Get("/", deps.SellerProduct.List)
			r.Post("/", deps.SellerProduct.Create)
			r.Patch("/{id}", deps.SellerProduct.Update)
			r.Delete("/{id}", deps.SellerProduct.Delete)
		})
	})

	return r
}
