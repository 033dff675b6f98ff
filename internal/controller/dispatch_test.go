package controller

import (
	"context"
	"testing"

	"github.com/asaskevich/EventBus"
	"github.com/stretchr/testify/assert"

	"go-pos-terminal/internal/bus"
	"go-pos-terminal/internal/gateway"
	"go-pos-terminal/internal/model"
	"go-pos-terminal/internal/store"
)

// stubGateway satisfies store.Gateway with canned responses. Dispatcher tests
// only need login and the catalog; everything else is unreachable here.
type stubGateway struct {
	user     *model.User
	products []model.Product
}

func (g *stubGateway) Login(ctx context.Context, username, password string) (*model.User, error) {
	return g.user, nil
}

func (g *stubGateway) FetchProducts(ctx context.Context) ([]model.Product, error) {
	return g.products, nil
}

func (g *stubGateway) SubmitSale(ctx context.Context, sale *model.Sale) (string, error) {
	return model.NewSaleReference(), nil
}

func (g *stubGateway) CreateProduct(ctx context.Context, p *model.Product) error {
	g.products = append(g.products, *p)
	return nil
}

func (g *stubGateway) UpdateStock(ctx context.Context, barcode string, quantity int) error {
	return nil
}

func (g *stubGateway) AddStock(ctx context.Context, barcode string, delta int) error { return nil }

type stubStorage struct{ user *model.User }

func (s *stubStorage) Save(user *model.User) error { s.user = user; return nil }

func (s *stubStorage) Load() (*model.User, error) {
	if s.user == nil {
		return nil, assert.AnError
	}
	return s.user, nil
}

func (s *stubStorage) Clear() error { s.user = nil; return nil }

type stubBackend struct {
	opened       float64
	closed       float64
	note         string
	createdUser  *gateway.CreateUserRequest
	backupCalled bool
}

func (b *stubBackend) OpenCash(ctx context.Context, amount float64) error {
	b.opened = amount
	return nil
}

func (b *stubBackend) CloseCash(ctx context.Context, counted float64, note string) error {
	b.closed = counted
	b.note = note
	return nil
}

func (b *stubBackend) CreateUser(ctx context.Context, req *gateway.CreateUserRequest) error {
	b.createdUser = req
	return nil
}

func (b *stubBackend) TriggerBackup(ctx context.Context) (string, error) {
	b.backupCalled = true
	return "backup-20260829-120000.json", nil
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *store.Store, *Controller, *stubBackend) {
	t.Helper()

	events := EventBus.New()
	gw := &stubGateway{
		user: &model.User{Username: "cashier", FullName: "Front Cashier", Role: model.RoleCashier},
		products: []model.Product{
			{Barcode: "111", Name: "Coffee", Price: 10.00, Quantity: 3},
		},
	}
	st := store.New(gw, &stubStorage{}, events)
	st.ReplaceCatalog(gw.products)
	ctl := New(st.Session, events)
	backend := &stubBackend{}
	return NewDispatcher(st, ctl, backend, events), st, ctl, backend
}

func TestDispatch_UnknownAction(t *testing.T) {
	d, _, _, _ := newTestDispatcher(t)

	err := d.Dispatch(context.Background(), "cart.explode")
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestDispatch_ArgumentCount(t *testing.T) {
	d, _, _, _ := newTestDispatcher(t)

	assert.Error(t, d.Dispatch(context.Background(), "cart.add"))
	assert.Error(t, d.Dispatch(context.Background(), "login", "cashier"))
	assert.Error(t, d.Dispatch(context.Background(), "cart.qty", "111", "two"))
	assert.Error(t, d.Dispatch(context.Background(), "checkout.cash", "lots"))
}

func TestDispatch_LoginFlow(t *testing.T) {
	d, st, ctl, _ := newTestDispatcher(t)

	assert.NoError(t, d.Dispatch(context.Background(), "login", "cashier", "cashier123"))
	assert.NotNil(t, st.Session())
	assert.Equal(t, TabDashboard, ctl.ActiveTab())
	assert.False(t, ctl.ModalOpen(ModalLogin))

	assert.NoError(t, d.Dispatch(context.Background(), "logout"))
	assert.Nil(t, st.Session())
	assert.True(t, ctl.ModalOpen(ModalLogin))
}

func TestDispatch_CartActions(t *testing.T) {
	d, st, _, _ := newTestDispatcher(t)
	ctx := context.Background()

	assert.NoError(t, d.Dispatch(ctx, "cart.add", "111"))
	assert.NoError(t, d.Dispatch(ctx, "cart.increment", "111"))
	assert.NoError(t, d.Dispatch(ctx, "cart.qty", "111", "1"))
	assert.Len(t, st.Cart(), 1)
	assert.Equal(t, 3, st.Cart()[0].Quantity)

	assert.NoError(t, d.Dispatch(ctx, "cart.decrement", "111"))
	assert.Equal(t, 2, st.Cart()[0].Quantity)

	assert.NoError(t, d.Dispatch(ctx, "cart.remove", "111"))
	assert.Empty(t, st.Cart())

	err := d.Dispatch(ctx, "cart.add", "999")
	assert.ErrorIs(t, err, store.ErrProductNotFound)
}

func TestDispatch_FailurePublishesNotification(t *testing.T) {
	d, _, _, _ := newTestDispatcher(t)
	events := d.events

	var level, message string
	done := make(chan struct{})
	err := events.Subscribe(bus.TopicNotify, func(lvl, msg string) {
		level = lvl
		message = msg
		close(done)
	})
	assert.NoError(t, err)

	assert.Error(t, d.Dispatch(context.Background(), "cart.add", "missing"))
	<-done
	assert.Equal(t, bus.LevelError, level)
	assert.NotEmpty(t, message)
}

func TestDispatch_CashRegister(t *testing.T) {
	d, _, _, backend := newTestDispatcher(t)
	ctx := context.Background()

	assert.NoError(t, d.Dispatch(ctx, "cash.open", "500"))
	assert.Equal(t, 500.0, backend.opened)

	assert.NoError(t, d.Dispatch(ctx, "cash.close", "612.50", "evening", "count"))
	assert.Equal(t, 612.50, backend.closed)
	assert.Equal(t, "evening count", backend.note)

	assert.Error(t, d.Dispatch(ctx, "cash.open", "plenty"))
}

func TestDispatch_CashCheckoutNotifiesChange(t *testing.T) {
	d, _, _, _ := newTestDispatcher(t)
	ctx := context.Background()

	var messages []string
	assert.NoError(t, d.events.Subscribe(bus.TopicNotify, func(level, msg string) {
		if level == bus.LevelSuccess {
			messages = append(messages, msg)
		}
	}))

	assert.NoError(t, d.Dispatch(ctx, "login", "cashier", "cashier123"))
	for i := 0; i < 3; i++ {
		assert.NoError(t, d.Dispatch(ctx, "cart.add", "111"))
	}

	// 3 × 10.00 + 18% tax = 35.40; tendering 40 returns 4.60, not the
	// tendered amount against the already-cleared cart.
	assert.NoError(t, d.Dispatch(ctx, "checkout.cash", "40"))

	assert.Len(t, messages, 1)
	assert.Contains(t, messages[0], "change 4.60")
}

func TestDispatch_ProductCreate(t *testing.T) {
	d, st, _, _ := newTestDispatcher(t)
	ctx := context.Background()

	assert.NoError(t, d.Dispatch(ctx, "product.create", "444", "12.50", "Green", "Tea"))

	p, ok := st.Product("444")
	assert.True(t, ok)
	assert.Equal(t, "Green Tea", p.Name)
	assert.Equal(t, 12.50, p.Price)

	assert.Error(t, d.Dispatch(ctx, "product.create", "555", "cheap", "Tea"))
	assert.Error(t, d.Dispatch(ctx, "product.create", "555"))
}

func TestDispatch_AdminActions(t *testing.T) {
	d, _, _, backend := newTestDispatcher(t)
	ctx := context.Background()

	assert.NoError(t, d.Dispatch(ctx, "admin.user.create", "evening", "secret99", "cashier", "Evening", "Shift"))
	assert.Equal(t, "evening", backend.createdUser.Username)
	assert.Equal(t, "cashier", backend.createdUser.Role)
	assert.Equal(t, "Evening Shift", backend.createdUser.FullName)

	assert.Error(t, d.Dispatch(ctx, "admin.user.create", "evening"))

	assert.NoError(t, d.Dispatch(ctx, "admin.backup"))
	assert.True(t, backend.backupCalled)
}

func TestScanHandler(t *testing.T) {
	d, st, _, _ := newTestDispatcher(t)

	scan := d.ScanHandler(context.Background())
	scan("111")
	scan("111")

	assert.Len(t, st.Cart(), 1)
	assert.Equal(t, 2, st.Cart()[0].Quantity)
}
