package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// NewRouter wires the storefront endpoints behind the session, request-id
// and access-log middleware.
func NewRouter(app *App, logger *zap.Logger) http.Handler {
	r := mux.NewRouter()

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		WriteJSONError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		WriteJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/cart", app.getCartHandler).Methods(http.MethodGet)
	api.HandleFunc("/cart", app.clearCartHandler).Methods(http.MethodDelete)
	api.HandleFunc("/cart/items", app.addToCartHandler).Methods(http.MethodPost)
	api.HandleFunc("/cart/items/{key}", app.updateCartItemHandler).Methods(http.MethodPatch)
	api.HandleFunc("/cart/items/{key}", app.removeCartItemHandler).Methods(http.MethodDelete)
	api.HandleFunc("/cart/promo", app.applyPromoHandler).Methods(http.MethodPost)

	api.HandleFunc("/products", app.listProductsHandler).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", app.getProductHandler).Methods(http.MethodGet)

	api.HandleFunc("/auth", app.authHandler).Methods(http.MethodPost)
	api.HandleFunc("/auth/me", app.currentUserHandler).Methods(http.MethodGet)

	r.HandleFunc("/healthz", app.healthHandler).Methods(http.MethodGet)

	var h http.Handler = r
	h = WithSession(h)
	h = WithLogging(logger, h)
	h = WithRequestID(h)
	return h
}
