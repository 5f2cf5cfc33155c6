// Package storefront wires the cart, catalog, promotion, session and account
// components behind one service interface.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"gofalre.io/storefront/account"
	"gofalre.io/storefront/cart"
	"gofalre.io/storefront/catalog"
	"gofalre.io/storefront/driver"
	"gofalre.io/storefront/event"
	"gofalre.io/storefront/models"
	"gofalre.io/storefront/models/enum"
	"gofalre.io/storefront/promo"
	"gofalre.io/storefront/session"
	"gofalre.io/storefront/storage"
)

const defaultWorkerCount = 10

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrInsufficientStock  = errors.New("not enough stock available")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already in use")
)

// AddToCartInput carries one add-to-cart request. Size and color are
// optional variant selectors and become part of the line item identity.
type AddToCartInput struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
}

// RegisterInput carries a registration request. The password arrives in
// clear and is hashed here; it is never persisted as-is.
type RegisterInput struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Newsletter bool   `json:"newsletter,omitempty"`
}

type Service interface {
	GetCart(ctx context.Context, sessionID string) (*models.Cart, error)
	AddToCart(ctx context.Context, sessionID string, in AddToCartInput) (*models.Cart, error)
	SetCartItemQuantity(ctx context.Context, sessionID, itemKey string, quantity int) (*models.Cart, error)
	ChangeCartItemQuantity(ctx context.Context, sessionID, itemKey string, delta int) (*models.Cart, error)
	RemoveCartItem(ctx context.Context, sessionID, itemKey string) (*models.Cart, error)
	ClearCart(ctx context.Context, sessionID string) error
	ApplyPromoCode(ctx context.Context, sessionID, code string) (models.PromoResult, error)

	ListProducts(ctx context.Context, spec models.FilterSpec) (*models.ProductPage, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)

	Login(ctx context.Context, sessionID, email, password string) (*models.User, error)
	Register(ctx context.Context, sessionID string, in RegisterInput) (*models.User, error)
	Logout(ctx context.Context, sessionID string) error
	CurrentUser(ctx context.Context, sessionID string) (*models.User, error)

	Close()
}

type service struct {
	catalog  catalog.Repository
	account  account.Repository
	event    event.Repository
	records  storage.Adapter
	sessions *session.Manager

	transactionManager *driver.TransactionManager
	eventManager       *EventManager
	workerPool         *WorkerPool

	logger *zap.Logger
}

func NewService(
	catalogRepo catalog.Repository, accountRepo account.Repository, eventRepo event.Repository,
	records storage.Adapter, tm *driver.TransactionManager,
	natsConn *nats.Conn, workerCount int,
	logger *zap.Logger) Service {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	s := &service{
		catalog:            catalogRepo,
		account:            accountRepo,
		event:              eventRepo,
		records:            records,
		sessions:           session.NewManager(records, logger),
		transactionManager: tm,
		logger:             logger,
	}
	s.eventManager = NewEventManager(natsConn, logger)
	s.workerPool = NewWorkerPool(workerCount, s, logger)
	s.registerEventHandlers()

	if err := s.eventManager.SubscribeToCatalogEvents(s.workerPool); err != nil {
		logger.Error("Failed to subscribe to catalog events", zap.Error(err))
	}

	return s
}

// Close stops the catalog subscription, then drains the worker pool. The
// NATS connection itself is owned by the caller.
func (s *service) Close() {
	s.eventManager.Close()
	s.workerPool.Shutdown()
}

func cartKey(sessionID string) string    { return "cart:" + sessionID }
func sessionKey(sessionID string) string { return "user:" + sessionID }

// cartStore opens the session's cart. Load never fails: missing or
// unreadable records come back as an empty cart.
func (s *service) cartStore(ctx context.Context, sessionID string) *cart.Store {
	store := cart.NewStore(s.records, cartKey(sessionID), s.logger)
	store.Load(ctx)
	return store
}

func (s *service) GetCart(ctx context.Context, sessionID string) (*models.Cart, error) {
	return s.cartStore(ctx, sessionID).Snapshot(), nil
}

func (s *service) AddToCart(ctx context.Context, sessionID string, in AddToCartInput) (*models.Cart, error) {
	product, err := s.catalog.Get(ctx, in.ProductID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product %s: %w", in.ProductID, err)
	}

	if product.Stock < in.Quantity {
		return nil, ErrInsufficientStock
	}

	ref := models.ProductRef{
		ID:        product.ID,
		Name:      product.Name,
		UnitPrice: product.Price,
		SalePrice: product.SalePrice,
		Size:      in.Size,
		Color:     in.Color,
	}
	if len(product.Images) > 0 {
		ref.Image = product.Images[0]
	}

	snapshot, err := s.cartStore(ctx, sessionID).AddItem(ctx, ref, in.Quantity)
	if err != nil {
		return nil, err
	}

	s.eventManager.Publish(newEvent(enum.EventTypeCartItemAdded, product.ID, in))
	return snapshot, nil
}

func (s *service) SetCartItemQuantity(ctx context.Context, sessionID, itemKey string, quantity int) (*models.Cart, error) {
	snapshot, err := s.cartStore(ctx, sessionID).SetQuantity(ctx, itemKey, quantity)
	if err != nil {
		return nil, err
	}

	s.eventManager.Publish(newEvent(enum.EventTypeCartItemUpdated, itemKey, quantity))
	return snapshot, nil
}

func (s *service) ChangeCartItemQuantity(ctx context.Context, sessionID, itemKey string, delta int) (*models.Cart, error) {
	snapshot, err := s.cartStore(ctx, sessionID).ChangeQuantity(ctx, itemKey, delta)
	if err != nil {
		return nil, err
	}

	s.eventManager.Publish(newEvent(enum.EventTypeCartItemUpdated, itemKey, delta))
	return snapshot, nil
}

func (s *service) RemoveCartItem(ctx context.Context, sessionID, itemKey string) (*models.Cart, error) {
	snapshot, err := s.cartStore(ctx, sessionID).RemoveItem(ctx, itemKey)
	if err != nil {
		return nil, err
	}

	s.eventManager.Publish(newEvent(enum.EventTypeCartItemRemoved, itemKey, nil))
	return snapshot, nil
}

func (s *service) ClearCart(ctx context.Context, sessionID string) error {
	if err := s.cartStore(ctx, sessionID).Clear(ctx); err != nil {
		return err
	}

	s.eventManager.Publish(newEvent(enum.EventTypeCartCleared, "", nil))
	return nil
}

// ApplyPromoCode evaluates the code against the current subtotal and, when
// valid, records the discount on the cart so later totals keep it until the
// cart is cleared.
func (s *service) ApplyPromoCode(ctx context.Context, sessionID, code string) (models.PromoResult, error) {
	store := s.cartStore(ctx, sessionID)

	result := promo.Evaluate(code, store.Totals().Subtotal)
	if result.Valid {
		store.ApplyPromo(ctx, result)
		s.eventManager.Publish(newEvent(enum.EventTypePromoApplied, "", result))
	}

	return result, nil
}

func (s *service) ListProducts(ctx context.Context, spec models.FilterSpec) (*models.ProductPage, error) {
	page, err := s.catalog.List(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return page, nil
}

func (s *service) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.catalog.Get(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	return product, nil
}

func (s *service) Login(ctx context.Context, sessionID, email, password string) (*models.User, error) {
	acct, err := s.account.GetByEmail(ctx, nil, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	user := acct.User()
	if err := s.sessions.Set(ctx, sessionKey(sessionID), user); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	s.logger.Info("User logged in", zap.String("email", email))
	return &user, nil
}

// Register creates the account and signs the session in. The uniqueness
// check and the insert run serializably so two concurrent registrations of
// the same email cannot both pass the check; serialization conflicts retry.
func (s *service) Register(ctx context.Context, sessionID string, in RegisterInput) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	acct := &models.Account{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         "customer",
		Newsletter:   in.Newsletter,
		CreatedAt:    time.Now(),
	}

	err = s.transactionManager.ExecuteSerializableTransaction(ctx, func(tx pgx.Tx) error {
		_, err := s.account.GetByEmail(ctx, tx, in.Email)
		if err == nil {
			return ErrEmailTaken
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("failed to check existing account: %w", err)
		}

		return s.account.Create(ctx, tx, acct)
	})
	if err != nil {
		return nil, err
	}

	user := acct.User()
	if err := s.sessions.Set(ctx, sessionKey(sessionID), user); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	s.logger.Info("User registered", zap.String("email", in.Email))
	return &user, nil
}

func (s *service) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Clear(ctx, sessionKey(sessionID))
}

func (s *service) CurrentUser(ctx context.Context, sessionID string) (*models.User, error) {
	return s.sessions.Current(ctx, sessionKey(sessionID)), nil
}

func (s *service) registerEventHandlers() {
	s.eventManager.RegisterHandler(enum.EventTypeProductUpdated, s.handleProductChanged)
	s.eventManager.RegisterHandler(enum.EventTypeProductDeleted, s.handleProductChanged)
}

// handleProductChanged drops the stale cached copy of an updated product.
func (s *service) handleProductChanged(ctx context.Context, ev *models.Event) error {
	if ev.ProductID == "" {
		return nil
	}
	return s.catalog.Invalidate(ctx, ev.ProductID)
}

// ProcessEvent runs a bus event through its handler exactly once, using the
// event repository for redelivery dedup when one is configured.
func (s *service) ProcessEvent(ctx context.Context, ev *models.Event) error {
	if s.event != nil {
		if _, err := s.event.GetByID(ctx, ev.ID); err == nil {
			s.logger.Info("Event already processed", zap.String("event_id", ev.ID))
			return nil
		}
	}

	handler, exists := s.eventManager.GetHandler(ev.Type)
	if !exists {
		return fmt.Errorf("no handler registered for event type: %s", ev.Type)
	}

	if s.event != nil {
		if err := s.event.Create(ctx, &models.Event{
			ID:        ev.ID,
			Type:      ev.Type,
			Processed: false,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}); err != nil {
			return fmt.Errorf("failed to record event: %w", err)
		}
	}

	if err := handler(ctx, ev); err != nil {
		return err
	}

	if s.event != nil {
		if err := s.event.MarkAsProcessed(ctx, ev.ID); err != nil {
			s.logger.Warn("Failed to mark event as processed",
				zap.String("event_id", ev.ID), zap.Error(err))
		}
	}

	s.logger.Info("Catalog event processed",
		zap.String("event_id", ev.ID), zap.String("event_type", string(ev.Type)))
	return nil
}
