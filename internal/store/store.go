// Package store holds the terminal's in-memory state: the authenticated
// session, the catalog snapshot, and the active cart. Operations are
// synchronous transformations; only checkout and catalog loads cross the
// network. A failed operation never leaves partial state behind.
package store

import (
	"context"
	"errors"
	"sync"

	"github.com/asaskevich/EventBus"
	"go.uber.org/zap"

	"go-pos-terminal/internal/bus"
	"go-pos-terminal/internal/model"
	"go-pos-terminal/pkg/validator"
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrOutOfStock         = errors.New("product is out of stock")
	ErrInsufficientStock  = errors.New("insufficient stock remaining")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInsufficientTender = errors.New("cash tendered is less than the total")
	ErrInvalidPayment     = errors.New("unsupported payment method")
	ErrNoSession          = errors.New("no active session")
)

// Gateway is the backend collaborator the store needs. The concrete
// implementation lives in internal/gateway.
type Gateway interface {
	Login(ctx context.Context, username, password string) (*model.User, error)
	FetchProducts(ctx context.Context) ([]model.Product, error)
	SubmitSale(ctx context.Context, sale *model.Sale) (string, error)
	CreateProduct(ctx context.Context, p *model.Product) error
	UpdateStock(ctx context.Context, barcode string, quantity int) error
	AddStock(ctx context.Context, barcode string, delta int) error
}

// SessionStorage persists the single session record across restarts.
type SessionStorage interface {
	Save(user *model.User) error
	Load() (*model.User, error)
	Clear() error
}

type Store struct {
	gw      Gateway
	storage SessionStorage
	events  EventBus.Bus
	log     *zap.SugaredLogger

	mu      sync.RWMutex
	session *model.Session
	catalog []model.Product
	index   map[string]int // barcode -> catalog position
	cart    []model.CartLine
}

func New(gw Gateway, storage SessionStorage, events EventBus.Bus) *Store {
	return &Store{
		gw:      gw,
		storage: storage,
		events:  events,
		log:     zap.S(),
		index:   make(map[string]int),
	}
}

// LoginForm is validated locally before any network call.
type LoginForm struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// Login authenticates, installs the session, and persists it for restore.
func (s *Store) Login(ctx context.Context, username, password string) error {
	if err := validator.FirstError(&LoginForm{Username: username, Password: password}); err != nil {
		return err
	}

	user, err := s.gw.Login(ctx, username, password)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.session = &model.Session{User: *user}
	s.cart = nil
	s.mu.Unlock()

	if err := s.storage.Save(user); err != nil {
		// Login still succeeds; only restore-on-restart is lost.
		s.log.Warnw("failed to persist session", "err", err)
	}

	s.events.Publish(bus.TopicSessionChanged)
	return nil
}

// Restore installs the persisted session record, if any. Returns true when a
// session was restored.
func (s *Store) Restore() bool {
	user, err := s.storage.Load()
	if err != nil {
		return false
	}

	s.mu.Lock()
	s.session = &model.Session{User: *user}
	s.mu.Unlock()

	s.events.Publish(bus.TopicSessionChanged)
	return true
}

// Logout destroys the session, clears the cart, and removes the persisted
// record.
func (s *Store) Logout() {
	s.mu.Lock()
	s.session = nil
	s.cart = nil
	s.mu.Unlock()

	if err := s.storage.Clear(); err != nil {
		s.log.Warnw("failed to clear persisted session", "err", err)
	}

	s.events.Publish(bus.TopicSessionChanged)
	s.events.Publish(bus.TopicCartChanged)
}

// Session returns a copy of the active session, or nil.
func (s *Store) Session() *model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil
	}
	copied := *s.session
	return &copied
}

// BearerToken supplies the gateway's Authorization value: the user id, or
// empty when logged out.
func (s *Store) BearerToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return ""
	}
	return s.session.User.ID.String()
}
