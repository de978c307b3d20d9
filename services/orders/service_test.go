package orders

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/UnderratedBeast/UniqueFabric-Backend/apperrors"
	"github.com/UnderratedBeast/UniqueFabric-Backend/models"
	"github.com/UnderratedBeast/UniqueFabric-Backend/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeOrderRepo struct {
	orders      map[primitive.ObjectID]*models.Order
	inserted    []*models.Order
	insertFails int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[primitive.ObjectID]*models.Order)}
}

func (f *fakeOrderRepo) Insert(ctx context.Context, order *models.Order) error {
	if f.insertFails > 0 {
		f.insertFails--
		return apperrors.New(apperrors.KindConflict, "Order number conflict. Please try again.")
	}
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	copied := *order
	f.orders[order.ID] = &copied
	f.inserted = append(f.inserted, &copied)
	return nil
}

func (f *fakeOrderRepo) CountAll(ctx context.Context) (int64, error) {
	return int64(len(f.orders)), nil
}

func (f *fakeOrderRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, apperrors.New(apperrors.KindNotFound, "Order not found")
	}
	copied := *order
	return &copied, nil
}

func (f *fakeOrderRepo) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	var out []models.Order
	for _, o := range f.orders {
		if o.User == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) FindAll(ctx context.Context) ([]models.Order, error) {
	var out []models.Order
	for _, o := range f.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (f *fakeOrderRepo) TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to models.OrderStatus, event models.StatusEvent, set bson.M) error {
	order, ok := f.orders[id]
	if !ok || order.Status != from {
		return apperrors.New(apperrors.KindConflict, "Order was modified concurrently. Please try again.")
	}
	order.Status = to
	order.StatusHistory = append(order.StatusHistory, event)
	if tracking, ok := set["trackingNumber"].(string); ok {
		order.TrackingNumber = tracking
	}
	return nil
}

func (f *fakeOrderRepo) Delete(ctx context.Context, id primitive.ObjectID, from models.OrderStatus) error {
	order, ok := f.orders[id]
	if !ok || order.Status != from {
		return apperrors.New(apperrors.KindConflict, "Order was modified concurrently. Please try again.")
	}
	delete(f.orders, id)
	return nil
}

func (f *fakeOrderRepo) Stats(ctx context.Context, now time.Time) (*models.OrderStats, error) {
	return &models.OrderStats{TotalOrders: int64(len(f.orders))}, nil
}

type fakeLedger struct {
	products   map[primitive.ObjectID]*models.Product
	decrements []string
	increments []string
}

func newFakeLedger(products ...*models.Product) *fakeLedger {
	f := &fakeLedger{products: make(map[primitive.ObjectID]*models.Product)}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeLedger) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, apperrors.Newf(apperrors.KindNotFound, "Product not found: %s", id.Hex())
	}
	copied := *p
	return &copied, nil
}

func (f *fakeLedger) DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	p, ok := f.products[id]
	if !ok {
		return apperrors.Newf(apperrors.KindNotFound, "Product not found: %s", id.Hex())
	}
	if p.Stock < qty {
		return apperrors.Newf(apperrors.KindConflict,
			"Insufficient stock for %q. Available: %d, Requested: %d", p.Name, p.Stock, qty)
	}
	p.Stock -= qty
	f.decrements = append(f.decrements, fmt.Sprintf("%s:%d", id.Hex(), qty))
	return nil
}

func (f *fakeLedger) IncrementStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	p, ok := f.products[id]
	if !ok {
		return apperrors.Newf(apperrors.KindNotFound, "Product not found: %s", id.Hex())
	}
	p.Stock += qty
	f.increments = append(f.increments, fmt.Sprintf("%s:%d", id.Hex(), qty))
	return nil
}

type fakeVault struct {
	methods map[primitive.ObjectID]*models.PaymentMethod
	saved   []store.CardInput
}

func newFakeVault() *fakeVault {
	return &fakeVault{methods: make(map[primitive.ObjectID]*models.PaymentMethod)}
}

func (f *fakeVault) FindForUser(ctx context.Context, id, owner primitive.ObjectID) (*models.PaymentMethod, error) {
	pm, ok := f.methods[id]
	if !ok || pm.User != owner {
		return nil, apperrors.New(apperrors.KindNotFound, "Payment method not found")
	}
	return pm, nil
}

func (f *fakeVault) SaveCard(ctx context.Context, owner primitive.ObjectID, in store.CardInput) (*models.PaymentMethod, error) {
	f.saved = append(f.saved, in)
	pm := &models.PaymentMethod{ID: primitive.NewObjectID(), User: owner}
	f.methods[pm.ID] = pm
	return pm, nil
}

type fakeAddresses struct {
	saved []*models.Address
}

func (f *fakeAddresses) Save(ctx context.Context, address *models.Address) (*models.Address, error) {
	address.ID = primitive.NewObjectID()
	f.saved = append(f.saved, address)
	return address, nil
}

type fixture struct {
	svc    *Service
	orders *fakeOrderRepo
	ledger *fakeLedger
	vault  *fakeVault
	addrs  *fakeAddresses
	user   *models.User
}

func newFixture(products ...*models.Product) *fixture {
	orders := newFakeOrderRepo()
	ledger := newFakeLedger(products...)
	vault := newFakeVault()
	addrs := &fakeAddresses{}
	svc := NewService(orders, ledger, vault, addrs, store.NewTxnRunner(nil, false))
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return &fixture{
		svc:    svc,
		orders: orders,
		ledger: ledger,
		vault:  vault,
		addrs:  addrs,
		user:   &models.User{ID: primitive.NewObjectID(), Name: "Jordan Green", Role: models.RoleCustomer},
	}
}

func testProduct(name string, stock int) *models.Product {
	return &models.Product{
		ID:       primitive.NewObjectID(),
		Name:     name,
		Price:    25.50,
		Stock:    stock,
		ImageURL: "https://cdn.example.com/" + name + ".jpg",
	}
}

func validAddress() ShippingAddressInput {
	return ShippingAddressInput{
		FullName: "Jordan Green",
		Email:    "jordan@example.com",
		Address:  "12 Mill Lane",
		City:     "Portland",
		State:    "OR",
		ZipCode:  "97201",
	}
}

func validInput(product *models.Product, qty int) PlaceOrderInput {
	return PlaceOrderInput{
		OrderItems: []OrderItemInput{
			{Product: product.ID.Hex(), Price: product.Price, Quantity: qty},
		},
		ShippingAddress: validAddress(),
		PaymentMethod:   "credit_card",
		ItemsPrice:      product.Price * float64(qty),
		TotalPrice:      product.Price*float64(qty) + 5,
		ShippingPrice:   5,
	}
}

func TestPlaceOrderSuccess(t *testing.T) {
	product := testProduct("Linen Throw", 10)
	f := newFixture(product)

	order, err := f.svc.PlaceOrder(context.Background(), f.user, validInput(product, 3))
	require.NoError(t, err)

	assert.Equal(t, 7, f.ledger.products[product.ID].Stock)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Regexp(t, regexp.MustCompile(`^ORD-\d+-\d{6}$`), order.OrderNumber)

	require.Len(t, order.StatusHistory, 1)
	assert.Equal(t, models.StatusPending, order.StatusHistory[0].Status)
	assert.Equal(t, "Order created", order.StatusHistory[0].Note)

	require.Len(t, order.OrderItems, 1)
	item := order.OrderItems[0]
	assert.Equal(t, product.ID, item.Product)
	assert.Equal(t, "Linen Throw", item.Name, "name snapshot falls back to catalog")
	assert.Equal(t, product.ImageURL, item.Image, "image snapshot falls back to catalog")
	assert.Equal(t, 3, item.Quantity)

	assert.Equal(t, "United States", order.ShippingAddress.Country)
	require.Len(t, f.orders.inserted, 1)
}

func TestPlaceOrderValidation(t *testing.T) {
	product := testProduct("Linen Throw", 10)

	missingCity := validInput(product, 1)
	missingCity.ShippingAddress.City = ""

	badQty := validInput(product, 1)
	badQty.OrderItems[0].Quantity = 0

	badID := validInput(product, 1)
	badID.OrderItems[0].Product = "not-a-hex-id"

	tooMany := validInput(product, 11)

	cases := []struct {
		name     string
		input    PlaceOrderInput
		wantKind apperrors.Kind
		wantMsg  string
	}{
		{
			name:     "empty cart",
			input:    PlaceOrderInput{ShippingAddress: validAddress(), PaymentMethod: "credit_card"},
			wantKind: apperrors.KindInvalidInput,
			wantMsg:  "No order items provided",
		},
		{
			name: "missing payment method",
			input: PlaceOrderInput{
				OrderItems:      []OrderItemInput{{Product: product.ID.Hex(), Price: 1, Quantity: 1}},
				ShippingAddress: validAddress(),
			},
			wantKind: apperrors.KindInvalidInput,
			wantMsg:  "Shipping address and payment method are required",
		},
		{
			name: "missing shipping address",
			input: PlaceOrderInput{
				OrderItems:    []OrderItemInput{{Product: product.ID.Hex(), Price: 1, Quantity: 1}},
				PaymentMethod: "credit_card",
			},
			wantKind: apperrors.KindInvalidInput,
			wantMsg:  "Shipping address and payment method are required",
		},
		{
			name:     "missing address field",
			input:    missingCity,
			wantKind: apperrors.KindInvalidInput,
			wantMsg:  "City is required",
		},
		{
			name:     "zero quantity line",
			input:    badQty,
			wantKind: apperrors.KindInvalidInput,
			wantMsg:  "Each item must include product ID, quantity, and price",
		},
		{
			name:     "malformed product id",
			input:    badID,
			wantKind: apperrors.KindNotFound,
			wantMsg:  "Product not found: not-a-hex-id",
		},
		{
			name:     "insufficient stock",
			input:    tooMany,
			wantKind: apperrors.KindConflict,
			wantMsg:  `Insufficient stock for "Linen Throw". Available: 10, Requested: 11`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(product)
			_, err := f.svc.PlaceOrder(context.Background(), f.user, tc.input)
			require.Error(t, err)
			assert.True(t, apperrors.IsKind(err, tc.wantKind), "kind mismatch: %v", err)
			assert.Equal(t, tc.wantMsg, apperrors.Message(err))
			assert.Empty(t, f.orders.inserted, "no order persisted on validation failure")
			assert.Empty(t, f.ledger.decrements, "no stock touched on validation failure")
		})
	}
}

func TestPlaceOrderRollsBackDecrementsOnLateConflict(t *testing.T) {
	first := testProduct("Linen Throw", 10)
	second := testProduct("Wool Blanket", 10)
	f := newFixture(first, second)

	input := validInput(first, 2)
	input.OrderItems = append(input.OrderItems, OrderItemInput{
		Product: second.ID.Hex(), Price: second.Price, Quantity: 3,
	})

	// Validation sees enough stock, then a concurrent buyer drains the second
	// product before the decrement runs.
	f.ledger.products[second.ID].Stock = 1

	_, err := f.svc.PlaceOrder(context.Background(), f.user, input)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))

	assert.Equal(t, 10, f.ledger.products[first.ID].Stock, "first decrement rolled back")
	assert.Equal(t, 1, f.ledger.products[second.ID].Stock)
	assert.Empty(t, f.orders.inserted)
}

func TestPlaceOrderRetriesNumberCollisionOnce(t *testing.T) {
	product := testProduct("Linen Throw", 10)
	f := newFixture(product)
	f.orders.insertFails = 1

	order, err := f.svc.PlaceOrder(context.Background(), f.user, validInput(product, 1))
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^ORD-\d+-[0-9A-F]{6}$`), order.OrderNumber)
	assert.Equal(t, 9, f.ledger.products[product.ID].Stock)
}

func TestPlaceOrderRollsBackWhenBothInsertsFail(t *testing.T) {
	product := testProduct("Linen Throw", 10)
	f := newFixture(product)
	f.orders.insertFails = 2

	_, err := f.svc.PlaceOrder(context.Background(), f.user, validInput(product, 4))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
	assert.Equal(t, 10, f.ledger.products[product.ID].Stock, "decrement restored")
}

func TestPlaceOrderSavesPaymentAndAddress(t *testing.T) {
	product := testProduct("Linen Throw", 10)
	f := newFixture(product)

	input := validInput(product, 1)
	input.SavePaymentMethod = true
	input.PaymentDetails = &CardDetailsInput{
		CardNumber: "4111111111111111",
		CardHolder: "Jordan Green",
		ExpiryDate: "12/30",
		CVV:        "123",
	}
	input.SaveShippingAddress = true

	order, err := f.svc.PlaceOrder(context.Background(), f.user, input)
	require.NoError(t, err)

	require.Len(t, f.vault.saved, 1)
	require.NotNil(t, order.PaymentMethodRef)
	require.Len(t, f.addrs.saved, 1)
	require.NotNil(t, order.ShippingAddressRef)
	assert.Equal(t, "12 Mill Lane", f.addrs.saved[0].Street)
}

func placeTestOrder(t *testing.T, f *fixture, product *models.Product, qty int) *models.Order {
	t.Helper()
	order, err := f.svc.PlaceOrder(context.Background(), f.user, validInput(product, qty))
	require.NoError(t, err)
	f.ledger.decrements = nil
	f.ledger.increments = nil
	return order
}

func TestCancelOrderRestoresStock(t *testing.T) {
	product := testProduct("Linen Throw", 10)
	f := newFixture(product)
	order := placeTestOrder(t, f, product, 4)

	cancelled, err := f.svc.CancelOrder(context.Background(), order.ID.Hex(), f.user)
	require.NoError(t, err)

	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	assert.Equal(t, 10, f.ledger.products[product.ID].Stock)
	require.Len(t, f.ledger.increments, 1, "stock restored exactly once")

	last := cancelled.StatusHistory[len(cancelled.StatusHistory)-1]
	assert.Equal(t, "Cancelled by customer", last.Note)
}

func TestCancelOrderByAdminNote(t *testing.T) {
	product := testProduct("Linen Throw", 10)
	f := newFixture(product)
	order := placeTestOrder(t, f, product, 1)

	admin := &models.User{ID: primitive.NewObjectID(), Role: models.RoleAdmin}
	cancelled, err := f.svc.CancelOrder(context.Background(), order.ID.Hex(), admin)
	require.NoError(t, err)

	last := cancelled.StatusHistory[len(cancelled.StatusHistory)-1]
	assert.Equal(t, "Cancelled by admin", last.Note)
}

func TestCancelOrderTwiceFails(t *testing.T) {
	product := testProduct("Linen Throw", 10)
	f := newFixture(product)
	order := placeTestOrder(t, f, product, 2)

	_, err := f.svc.CancelOrder(context.Background(), order.ID.Hex(), f.user)
	require.NoError(t, err)

	_, err = f.svc.CancelOrder(context.Background(), order.ID.Hex(), f.user)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))
	assert.Equal(t, `Cannot cancel order in "cancelled" status`, apperrors.Message(err))
	assert.Equal(t, 10, f.ledger.products[product.ID].Stock, "stock not restored twice")
}

func TestCancelShippedOrderRejected(t *testing.T) {
	product := testProduct("Linen Throw", 10)
	f := newFixture(product)
	order := placeTestOrder(t, f, product, 1)
	f.orders.orders[order.ID].Status = models.StatusShipped

	_, err := f.svc.CancelOrder(context.Background(), order.ID.Hex(), f.user)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))
	assert.Equal(t, `Cannot cancel order in "shipped" status`, apperrors.Message(err))
}

func TestCancelOrderForbiddenForStranger(t *testing.T) {
	product := testProduct("Linen Throw", 10)
	f := newFixture(product)
	order := placeTestOrder(t, f, product, 1)

	stranger := &models.User{ID: primitive.NewObjectID(), Role: models.RoleCustomer}
	_, err := f.svc.CancelOrder(context.Background(), order.ID.Hex(), stranger)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
}

func TestUpdateStatusProgression(t *testing.T) {
	product := testProduct("Linen Throw", 10)
	f := newFixture(product)
	order := placeTestOrder(t, f, product, 1)

	updated, err := f.svc.UpdateStatus(context.Background(), order.ID.Hex(), UpdateStatusInput{
		Status:         "shipped",
		TrackingNumber: "TRK-001",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusShipped, updated.Status)
	assert.Equal(t, "TRK-001", updated.TrackingNumber)

	last := updated.StatusHistory[len(updated.StatusHistory)-1]
	assert.Equal(t, "Status updated to shipped", last.Note)
}

func TestUpdateStatusRejectsIllegalTransition(t *testing.T) {
	product := testProduct("Linen Throw", 10)
	f := newFixture(product)
	order := placeTestOrder(t, f, product, 1)
	f.orders.orders[order.ID].Status = models.StatusDelivered

	_, err := f.svc.UpdateStatus(context.Background(), order.ID.Hex(), UpdateStatusInput{Status: "shipped"})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))
	assert.Equal(t, `Cannot transition order from "delivered" to "shipped"`, apperrors.Message(err))
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	f := newFixture()
	_, err := f.svc.UpdateStatus(context.Background(), primitive.NewObjectID().Hex(), UpdateStatusInput{Status: "lost"})
	require.Error(t, err)
	assert.Equal(t, "Valid status required", apperrors.Message(err))
}

func TestUpdateStatusToCancelledRestoresStock(t *testing.T) {
	product := testProduct("Linen Throw", 10)
	f := newFixture(product)
	order := placeTestOrder(t, f, product, 5)

	updated, err := f.svc.UpdateStatus(context.Background(), order.ID.Hex(), UpdateStatusInput{Status: "cancelled"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, updated.Status)
	assert.Equal(t, 10, f.ledger.products[product.ID].Stock)
}

func TestDeleteOrderRestoresStockUnlessCancelled(t *testing.T) {
	product := testProduct("Linen Throw", 10)
	f := newFixture(product)
	order := placeTestOrder(t, f, product, 3)

	require.NoError(t, f.svc.DeleteOrder(context.Background(), order.ID.Hex()))
	assert.Equal(t, 10, f.ledger.products[product.ID].Stock)
	assert.Empty(t, f.orders.orders)

	// a cancelled order already restored its stock
	second := placeTestOrder(t, f, product, 3)
	_, err := f.svc.CancelOrder(context.Background(), second.ID.Hex(), f.user)
	require.NoError(t, err)
	f.ledger.increments = nil

	require.NoError(t, f.svc.DeleteOrder(context.Background(), second.ID.Hex()))
	assert.Empty(t, f.ledger.increments, "no double restore for cancelled orders")
	assert.Equal(t, 10, f.ledger.products[product.ID].Stock)
}

// interposingRunner fires a hook once before running the transaction body,
// simulating a competing writer that commits just ahead of it.
type interposingRunner struct {
	before func()
}

func (r *interposingRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if r.before != nil {
		hook := r.before
		r.before = nil
		hook()
	}
	return fn(ctx)
}

func TestDeleteOrderAfterConcurrentCancel(t *testing.T) {
	product := testProduct("Linen Throw", 10)
	f := newFixture(product)
	order := placeTestOrder(t, f, product, 3)
	require.Equal(t, 7, f.ledger.products[product.ID].Stock)

	canceller := NewService(f.orders, f.ledger, f.vault, f.addrs, store.NewTxnRunner(nil, false))
	f.svc.txn = &interposingRunner{before: func() {
		_, err := canceller.CancelOrder(context.Background(), order.ID.Hex(), f.user)
		require.NoError(t, err)
	}}

	require.NoError(t, f.svc.DeleteOrder(context.Background(), order.ID.Hex()))

	assert.Equal(t, 10, f.ledger.products[product.ID].Stock, "cancel already restored; delete must not restore again")
	require.Len(t, f.ledger.increments, 1)
	assert.Empty(t, f.orders.orders)
}

func TestGetOrderAuthorization(t *testing.T) {
	product := testProduct("Linen Throw", 10)
	f := newFixture(product)
	order := placeTestOrder(t, f, product, 1)

	got, err := f.svc.GetOrder(context.Background(), order.ID.Hex(), f.user)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	staff := &models.User{ID: primitive.NewObjectID(), Role: models.RoleStaff}
	_, err = f.svc.GetOrder(context.Background(), order.ID.Hex(), staff)
	require.NoError(t, err)

	stranger := &models.User{ID: primitive.NewObjectID(), Role: models.RoleCustomer}
	_, err = f.svc.GetOrder(context.Background(), order.ID.Hex(), stranger)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
	assert.Equal(t, "Not authorized", apperrors.Message(err))
}

func TestOrderNumberSequence(t *testing.T) {
	product := testProduct("Linen Throw", 100)
	f := newFixture(product)

	first, err := f.svc.PlaceOrder(context.Background(), f.user, validInput(product, 1))
	require.NoError(t, err)
	second, err := f.svc.PlaceOrder(context.Background(), f.user, validInput(product, 1))
	require.NoError(t, err)

	assert.NotEqual(t, first.OrderNumber, second.OrderNumber)
	assert.Regexp(t, regexp.MustCompile(`-000001$`), first.OrderNumber)
	assert.Regexp(t, regexp.MustCompile(`-000002$`), second.OrderNumber)
}
