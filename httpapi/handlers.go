package httpapi

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"gofalre.io/storefront/cart"
	"gofalre.io/storefront/catalog"
	"gofalre.io/storefront/models"
	"gofalre.io/storefront/models/enum"

	storefront "gofalre.io/storefront"
)

// App holds the handler dependencies.
type App struct {
	svc    storefront.Service
	logger *zap.Logger
}

func NewApp(svc storefront.Service, logger *zap.Logger) *App {
	return &App{svc: svc, logger: logger}
}

type cartResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Cart    *models.Cart `json:"cart"`
}

// rounded applies presentation rounding to a cart snapshot.
func rounded(c *models.Cart) *models.Cart {
	if c == nil {
		return nil
	}
	c.Totals = c.Totals.Rounded()
	return c
}

func (a *App) getCartHandler(w http.ResponseWriter, r *http.Request) {
	snapshot, err := a.svc.GetCart(r.Context(), SessionIDFromContext(r.Context()))
	if err != nil {
		a.internalError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, cartResponse{Success: true, Cart: rounded(snapshot)})
}

type addToCartRequest struct {
	ProductID string `json:"product_id"`
	Quantity  *int   `json:"quantity"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
}

func (a *App) addToCartHandler(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if req.ProductID == "" || req.Quantity == nil {
		WriteJSONError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if *req.Quantity < 1 {
		WriteJSONError(w, http.StatusBadRequest, "Quantity must be at least 1")
		return
	}

	snapshot, err := a.svc.AddToCart(r.Context(), SessionIDFromContext(r.Context()), storefront.AddToCartInput{
		ProductID: req.ProductID,
		Quantity:  *req.Quantity,
		Size:      req.Size,
		Color:     req.Color,
	})
	if err != nil {
		switch {
		case errors.Is(err, storefront.ErrProductNotFound):
			WriteJSONError(w, http.StatusNotFound, "Product not found")
		case errors.Is(err, storefront.ErrInsufficientStock):
			WriteJSONError(w, http.StatusBadRequest, "Not enough stock available")
		case errors.Is(err, cart.ErrInvalidQuantity):
			WriteJSONError(w, http.StatusBadRequest, "Quantity must be at least 1")
		default:
			a.internalError(w, err)
		}
		return
	}

	WriteJSON(w, http.StatusOK, cartResponse{
		Success: true,
		Message: "Product added to cart",
		Cart:    rounded(snapshot),
	})
}

type updateItemRequest struct {
	Quantity *int `json:"quantity,omitempty"`
	Delta    *int `json:"delta,omitempty"`
}

func (a *App) updateCartItemHandler(w http.ResponseWriter, r *http.Request) {
	itemKey := mux.Vars(r)["key"]

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	var (
		snapshot *models.Cart
		err      error
	)
	switch {
	case req.Quantity != nil:
		snapshot, err = a.svc.SetCartItemQuantity(r.Context(), SessionIDFromContext(r.Context()), itemKey, *req.Quantity)
	case req.Delta != nil:
		snapshot, err = a.svc.ChangeCartItemQuantity(r.Context(), SessionIDFromContext(r.Context()), itemKey, *req.Delta)
	default:
		WriteJSONError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	if err != nil {
		if errors.Is(err, cart.ErrItemNotFound) {
			WriteJSONError(w, http.StatusNotFound, "Cart item not found")
			return
		}
		a.internalError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, cartResponse{Success: true, Cart: rounded(snapshot)})
}

func (a *App) removeCartItemHandler(w http.ResponseWriter, r *http.Request) {
	itemKey := mux.Vars(r)["key"]

	snapshot, err := a.svc.RemoveCartItem(r.Context(), SessionIDFromContext(r.Context()), itemKey)
	if err != nil {
		a.internalError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, cartResponse{Success: true, Cart: rounded(snapshot)})
}

func (a *App) clearCartHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.ClearCart(r.Context(), SessionIDFromContext(r.Context())); err != nil {
		a.internalError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, cartResponse{Success: true, Message: "Cart cleared", Cart: &models.Cart{}})
}

type promoRequest struct {
	Code string `json:"code"`
}

type promoResponse struct {
	Promo models.PromoResult `json:"promo"`
	Cart  *models.Cart       `json:"cart"`
}

func (a *App) applyPromoHandler(w http.ResponseWriter, r *http.Request) {
	var req promoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	sid := SessionIDFromContext(r.Context())
	result, err := a.svc.ApplyPromoCode(r.Context(), sid, req.Code)
	if err != nil {
		a.internalError(w, err)
		return
	}

	snapshot, err := a.svc.GetCart(r.Context(), sid)
	if err != nil {
		a.internalError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, promoResponse{Promo: result, Cart: rounded(snapshot)})
}

func (a *App) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	page, err := a.svc.ListProducts(r.Context(), filterSpecFromQuery(r))
	if err != nil {
		a.internalError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, page)
}

func (a *App) getProductHandler(w http.ResponseWriter, r *http.Request) {
	product, err := a.svc.GetProduct(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, storefront.ErrProductNotFound) {
			WriteJSONError(w, http.StatusNotFound, "Product not found")
			return
		}
		a.internalError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, product)
}

// filterSpecFromQuery accepts both the individual price_min/price_max
// parameters and the filter widget's combined "min-max" token.
func filterSpecFromQuery(r *http.Request) models.FilterSpec {
	q := r.URL.Query()

	spec := models.FilterSpec{
		Category: q.Get("category"),
		Gender:   q.Get("gender"),
		Size:     q.Get("size"),
		PriceMax: math.Inf(1),
		Sort:     enum.ParseSortKey(q.Get("sort")),
		Page:     intQuery(q.Get("page"), 1),
		PageSize: intQuery(q.Get("limit"), catalog.DefaultPageSize),
	}

	if token := q.Get("price"); token != "" {
		spec.PriceMin, spec.PriceMax = catalog.ParsePriceRange(token)
		return spec
	}

	if v, err := strconv.ParseFloat(q.Get("price_min"), 64); err == nil {
		spec.PriceMin = v
	}
	if v, err := strconv.ParseFloat(q.Get("price_max"), 64); err == nil {
		spec.PriceMax = v
	}
	return spec
}

func intQuery(raw string, def int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}

type authRequest struct {
	Action     string `json:"action"`
	Email      string `json:"email,omitempty"`
	Password   string `json:"password,omitempty"`
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	Newsletter bool   `json:"newsletter,omitempty"`
}

type authResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    *models.User `json:"user,omitempty"`
}

func (a *App) authHandler(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	sid := SessionIDFromContext(r.Context())

	switch req.Action {
	case "login":
		if req.Email == "" || req.Password == "" {
			WriteJSONError(w, http.StatusBadRequest, "Missing required fields")
			return
		}
		user, err := a.svc.Login(r.Context(), sid, req.Email, req.Password)
		if err != nil {
			if errors.Is(err, storefront.ErrInvalidCredentials) {
				WriteJSONError(w, http.StatusUnauthorized, "Invalid email or password")
				return
			}
			a.internalError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, authResponse{Success: true, Message: "Login successful", User: user})

	case "register":
		if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.Password == "" {
			WriteJSONError(w, http.StatusBadRequest, "Missing required fields")
			return
		}
		user, err := a.svc.Register(r.Context(), sid, storefront.RegisterInput{
			FirstName:  req.FirstName,
			LastName:   req.LastName,
			Email:      req.Email,
			Password:   req.Password,
			Newsletter: req.Newsletter,
		})
		if err != nil {
			if errors.Is(err, storefront.ErrEmailTaken) {
				WriteJSONError(w, http.StatusConflict, "Email already in use")
				return
			}
			a.internalError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, authResponse{Success: true, Message: "Registration successful", User: user})

	case "logout":
		if err := a.svc.Logout(r.Context(), sid); err != nil {
			a.internalError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, authResponse{Success: true, Message: "Logout successful"})

	default:
		WriteJSONError(w, http.StatusBadRequest, "Invalid action")
	}
}

func (a *App) currentUserHandler(w http.ResponseWriter, r *http.Request) {
	user, err := a.svc.CurrentUser(r.Context(), SessionIDFromContext(r.Context()))
	if err != nil {
		a.internalError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]*models.User{"user": user})
}

func (a *App) healthHandler(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) internalError(w http.ResponseWriter, err error) {
	a.logger.Error("Request failed", zap.Error(err))
	WriteJSONError(w, http.StatusInternalServerError, "Internal server error")
}
