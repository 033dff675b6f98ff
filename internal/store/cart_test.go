package store

import (
	"context"
	"errors"
	"testing"

	"github.com/asaskevich/EventBus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"go-pos-terminal/internal/gateway"
	"go-pos-terminal/internal/model"
)

// MockGateway is a mock implementation of Gateway.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Login(ctx context.Context, username, password string) (*model.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockGateway) FetchProducts(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockGateway) SubmitSale(ctx context.Context, sale *model.Sale) (string, error) {
	args := m.Called(ctx, sale)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) CreateProduct(ctx context.Context, p *model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockGateway) UpdateStock(ctx context.Context, barcode string, quantity int) error {
	args := m.Called(ctx, barcode, quantity)
	return args.Error(0)
}

func (m *MockGateway) AddStock(ctx context.Context, barcode string, delta int) error {
	args := m.Called(ctx, barcode, delta)
	return args.Error(0)
}

// memStorage is an in-memory SessionStorage for tests.
type memStorage struct {
	user *model.User
}

func (m *memStorage) Save(user *model.User) error {
	copied := *user
	m.user = &copied
	return nil
}

func (m *memStorage) Load() (*model.User, error) {
	if m.user == nil {
		return nil, errors.New("no persisted session")
	}
	copied := *m.user
	return &copied, nil
}

func (m *memStorage) Clear() error {
	m.user = nil
	return nil
}

func newTestStore(gw Gateway, products ...model.Product) *Store {
	s := New(gw, &memStorage{}, EventBus.New())
	s.ReplaceCatalog(products)
	return s
}

func testCatalog() []model.Product {
	return []model.Product{
		{Barcode: "111", Name: "Coffee", Price: 10.00, Quantity: 3, KDV: 18},
		{Barcode: "222", Name: "Water", Price: 5.50, Quantity: 10, KDV: 18},
		{Barcode: "333", Name: "Gone", Price: 9.90, Quantity: 0, KDV: 18},
	}
}

func TestAddToCart(t *testing.T) {
	tests := []struct {
		name          string
		barcode       string
		repeat        int
		expectedError error
		expectedQty   int
	}{
		{name: "first add creates a line", barcode: "111", repeat: 1, expectedQty: 1},
		{name: "adds accumulate on one line", barcode: "111", repeat: 3, expectedQty: 3},
		{name: "add beyond stock fails and keeps quantity", barcode: "111", repeat: 4, expectedError: ErrInsufficientStock, expectedQty: 3},
		{name: "unknown barcode", barcode: "999", repeat: 1, expectedError: ErrProductNotFound, expectedQty: 0},
		{name: "zero stock product", barcode: "333", repeat: 1, expectedError: ErrOutOfStock, expectedQty: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(new(MockGateway), testCatalog()...)

			var lastErr error
			for i := 0; i < tt.repeat; i++ {
				lastErr = s.AddToCart(tt.barcode)
			}

			if tt.expectedError != nil {
				assert.ErrorIs(t, lastErr, tt.expectedError)
			} else {
				assert.NoError(t, lastErr)
			}

			qty := 0
			for _, line := range s.Cart() {
				if line.Barcode == tt.barcode {
					qty = line.Quantity
				}
			}
			assert.Equal(t, tt.expectedQty, qty)
		})
	}
}

func TestAddToCart_KeepsRingUpOrder(t *testing.T) {
	s := newTestStore(new(MockGateway), testCatalog()...)

	assert.NoError(t, s.AddToCart("222"))
	assert.NoError(t, s.AddToCart("111"))
	assert.NoError(t, s.AddToCart("222"))

	cart := s.Cart()
	assert.Len(t, cart, 2)
	assert.Equal(t, "222", cart[0].Barcode)
	assert.Equal(t, 2, cart[0].Quantity)
	assert.Equal(t, "111", cart[1].Barcode)
}

func TestRemoveFromCart_AbsentIsNoOp(t *testing.T) {
	s := newTestStore(new(MockGateway), testCatalog()...)
	assert.NoError(t, s.AddToCart("111"))

	before := s.Cart()
	s.RemoveFromCart("999")
	assert.Equal(t, before, s.Cart())

	s.RemoveFromCart("111")
	assert.Empty(t, s.Cart())
}

func TestUpdateQuantity(t *testing.T) {
	tests := []struct {
		name          string
		barcode       string
		delta         int
		expectedError error
		expectedQty   int // 0 means line removed / absent
	}{
		{name: "increment within stock", barcode: "111", delta: 1, expectedQty: 3},
		{name: "increment beyond stock fails unchanged", barcode: "111", delta: 5, expectedError: ErrInsufficientStock, expectedQty: 2},
		{name: "large negative delta removes the line", barcode: "111", delta: -100, expectedQty: 0},
		{name: "delta to exactly zero removes the line", barcode: "111", delta: -2, expectedQty: 0},
		{name: "absent line is a no-op", barcode: "999", delta: 1, expectedQty: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(new(MockGateway), testCatalog()...)
			assert.NoError(t, s.AddToCart("111"))
			assert.NoError(t, s.AddToCart("111")) // quantity 2

			err := s.UpdateQuantity(tt.barcode, tt.delta)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}

			qty := 0
			for _, line := range s.Cart() {
				if line.Barcode == tt.barcode {
					qty = line.Quantity
				}
			}
			assert.Equal(t, tt.expectedQty, qty)
		})
	}
}

func TestUpdateQuantity_StaleStockCeiling(t *testing.T) {
	s := newTestStore(new(MockGateway), testCatalog()...)
	for i := 0; i < 3; i++ {
		assert.NoError(t, s.AddToCart("111"))
	}

	// Another terminal sold down to 1 while 3 are rung up here. Any edit
	// that still exceeds stock fails, even a decrement.
	s.ApplyStockUpdate("111", 1)

	assert.ErrorIs(t, s.UpdateQuantity("111", -1), ErrInsufficientStock)
	assert.Equal(t, 3, s.Cart()[0].Quantity)

	assert.NoError(t, s.UpdateQuantity("111", -2))
	assert.Equal(t, 1, s.Cart()[0].Quantity)

	assert.NoError(t, s.UpdateQuantity("111", -1))
	assert.Empty(t, s.Cart())
}

func TestTotals_WorkedExample(t *testing.T) {
	s := newTestStore(new(MockGateway), testCatalog()...)

	for i := 0; i < 3; i++ {
		assert.NoError(t, s.AddToCart("111"))
	}

	totals := s.Totals()
	assert.InDelta(t, 30.00, totals.Subtotal, 1e-9)
	assert.InDelta(t, 5.40, totals.Tax, 1e-9)
	assert.InDelta(t, 35.40, totals.Total, 1e-9)
	assert.InDelta(t, 4.60, s.ChangeAmount(40), 1e-9)
}

func TestTotals_IndependentOfOperationOrder(t *testing.T) {
	// Two different edit histories ending in the same cart contents.
	a := newTestStore(new(MockGateway), testCatalog()...)
	assert.NoError(t, a.AddToCart("111"))
	assert.NoError(t, a.AddToCart("222"))
	assert.NoError(t, a.AddToCart("111"))

	b := newTestStore(new(MockGateway), testCatalog()...)
	assert.NoError(t, b.AddToCart("222"))
	assert.NoError(t, b.AddToCart("222"))
	assert.NoError(t, b.AddToCart("111"))
	assert.NoError(t, b.UpdateQuantity("222", -1))
	assert.NoError(t, b.UpdateQuantity("111", 1))

	assert.Equal(t, a.Totals(), b.Totals())
	assert.InDelta(t, a.Totals().Subtotal*1.18, a.Totals().Total, 1e-9)
}

func TestChangeAmount_MayBeNegative(t *testing.T) {
	s := newTestStore(new(MockGateway), testCatalog()...)
	assert.NoError(t, s.AddToCart("111"))

	assert.InDelta(t, -1.80, s.ChangeAmount(10), 1e-9)
}

func loggedInStore(t *testing.T, gw *MockGateway) *Store {
	t.Helper()
	user := &model.User{FullName: "Front Cashier", Role: model.RoleCashier, IsActive: true}
	gw.On("Login", mock.Anything, "cashier", "cashier123").Return(user, nil).Once()

	s := newTestStore(gw, testCatalog()...)
	assert.NoError(t, s.Login(context.Background(), "cashier", "cashier123"))
	return s
}

func TestCheckout_EmptyCartMakesNoNetworkCall(t *testing.T) {
	gw := new(MockGateway)
	s := loggedInStore(t, gw)

	_, err := s.Checkout(context.Background(), model.PaymentCash, 100)
	assert.ErrorIs(t, err, ErrEmptyCart)
	gw.AssertNotCalled(t, "SubmitSale", mock.Anything, mock.Anything)
}

func TestCheckout_NoSession(t *testing.T) {
	s := newTestStore(new(MockGateway), testCatalog()...)
	assert.NoError(t, s.AddToCart("111"))

	_, err := s.Checkout(context.Background(), model.PaymentCash, 100)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestCheckout_InsufficientTender(t *testing.T) {
	gw := new(MockGateway)
	s := loggedInStore(t, gw)

	for i := 0; i < 3; i++ {
		assert.NoError(t, s.AddToCart("111"))
	}

	_, err := s.Checkout(context.Background(), model.PaymentCash, 35.00)
	assert.ErrorIs(t, err, ErrInsufficientTender)
	assert.Len(t, s.Cart(), 1)
	gw.AssertNotCalled(t, "SubmitSale", mock.Anything, mock.Anything)
}

func TestCheckout_InvalidPaymentMethod(t *testing.T) {
	gw := new(MockGateway)
	s := loggedInStore(t, gw)
	assert.NoError(t, s.AddToCart("111"))

	_, err := s.Checkout(context.Background(), model.PaymentMethod("cheque"), 0)
	assert.ErrorIs(t, err, ErrInvalidPayment)
}

func TestCheckout_CashSuccess(t *testing.T) {
	gw := new(MockGateway)
	s := loggedInStore(t, gw)

	for i := 0; i < 3; i++ {
		assert.NoError(t, s.AddToCart("111"))
	}

	gw.On("SubmitSale", mock.Anything, mock.MatchedBy(func(sale *model.Sale) bool {
		return len(sale.Items) == 1 &&
			sale.Items[0].Quantity == 3 &&
			sale.PaymentMethod == model.PaymentCash &&
			sale.CashAmount == 40 &&
			sale.Reference != ""
	})).Return("sale-1", nil).Once()
	gw.On("FetchProducts", mock.Anything).Return([]model.Product{
		{Barcode: "111", Name: "Coffee", Price: 10.00, Quantity: 0, KDV: 18},
	}, nil).Once()

	saleID, err := s.Checkout(context.Background(), model.PaymentCash, 40)
	assert.NoError(t, err)
	assert.Equal(t, "sale-1", saleID)
	assert.Empty(t, s.Cart())

	// Catalog refreshed after the sale.
	p, ok := s.Product("111")
	assert.True(t, ok)
	assert.Equal(t, 0, p.Quantity)

	gw.AssertExpectations(t)
}

func TestCheckout_CardAmounts(t *testing.T) {
	gw := new(MockGateway)
	s := loggedInStore(t, gw)
	assert.NoError(t, s.AddToCart("222"))

	gw.On("SubmitSale", mock.Anything, mock.MatchedBy(func(sale *model.Sale) bool {
		return sale.PaymentMethod == model.PaymentCard &&
			sale.CashAmount == 0 &&
			sale.ChangeAmount == 0 &&
			sale.CardAmount == sale.Total
	})).Return("sale-2", nil).Once()
	gw.On("FetchProducts", mock.Anything).Return(testCatalog(), nil).Once()

	_, err := s.Checkout(context.Background(), model.PaymentCard, 0)
	assert.NoError(t, err)
	gw.AssertExpectations(t)
}

func TestCheckout_BackendFailureLeavesCartIntact(t *testing.T) {
	gw := new(MockGateway)
	s := loggedInStore(t, gw)
	assert.NoError(t, s.AddToCart("111"))

	backendErr := &gateway.BackendError{HTTPStatus: 400, Status: "error", Message: "register closed"}
	gw.On("SubmitSale", mock.Anything, mock.Anything).Return("", backendErr).Once()

	_, err := s.Checkout(context.Background(), model.PaymentCash, 100)
	assert.Error(t, err)

	var be *gateway.BackendError
	assert.ErrorAs(t, err, &be)
	assert.Len(t, s.Cart(), 1)

	// No automatic retry happened.
	gw.AssertNumberOfCalls(t, "SubmitSale", 1)
}
