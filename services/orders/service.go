package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/UnderratedBeast/UniqueFabric-Backend/apperrors"
	"github.com/UnderratedBeast/UniqueFabric-Backend/models"
	"github.com/UnderratedBeast/UniqueFabric-Backend/store"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Service orchestrates order placement and the status lifecycle.
type Service struct {
	orders    OrderRepository
	products  ProductLedger
	vault     PaymentVault
	addresses AddressKeeper
	txn       store.TxnRunner
	now       func() time.Time
}

func NewService(orders OrderRepository, products ProductLedger, vault PaymentVault, addresses AddressKeeper, txn store.TxnRunner) *Service {
	return &Service{
		orders:    orders,
		products:  products,
		vault:     vault,
		addresses: addresses,
		txn:       txn,
		now:       time.Now,
	}
}

type OrderItemInput struct {
	Product  string  `json:"product"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Image    string  `json:"image"`
}

type ShippingAddressInput struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	ZipCode  string `json:"zipCode"`
	Country  string `json:"country"`
}

type CardDetailsInput struct {
	CardNumber string `json:"cardNumber"`
	CardHolder string `json:"cardHolder"`
	ExpiryDate string `json:"expiryDate"`
	CVV        string `json:"cvv"`
}

type PlaceOrderInput struct {
	OrderItems          []OrderItemInput     `json:"orderItems"`
	ShippingAddress     ShippingAddressInput `json:"shippingAddress"`
	PaymentMethod       string               `json:"paymentMethod"`
	PaymentMethodID     string               `json:"paymentMethodId"`
	PaymentDetails      *CardDetailsInput    `json:"paymentDetails"`
	SavePaymentMethod   bool                 `json:"savePaymentMethod"`
	SaveShippingAddress bool                 `json:"saveShippingAddress"`
	ItemsPrice          float64              `json:"itemsPrice"`
	TaxPrice            float64              `json:"taxPrice"`
	ShippingPrice       float64              `json:"shippingPrice"`
	TotalPrice          float64              `json:"totalPrice"`
	OrderNotes          string               `json:"orderNotes"`
}

type UpdateStatusInput struct {
	Status         string `json:"status"`
	TrackingNumber string `json:"trackingNumber"`
	Note           string `json:"note"`
}

type validatedLine struct {
	id      primitive.ObjectID
	product *models.Product
	item    OrderItemInput
}

// PlaceOrder validates the cart against a stock snapshot, then runs the side
// effects inside one transactional scope: saved payment/address references,
// order number allocation, the conditional stock decrements, and the order
// insert. Any failure aborts the whole attempt with no persisted effects.
func (s *Service) PlaceOrder(ctx context.Context, user *models.User, in PlaceOrderInput) (*models.Order, error) {
	lines, err := s.validateCart(ctx, in)
	if err != nil {
		return nil, err
	}

	var order *models.Order
	err = s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		paymentRef, err := s.resolvePaymentMethod(ctx, user, in)
		if err != nil {
			return err
		}

		addressRef, err := s.saveShippingAddress(ctx, user, in)
		if err != nil {
			return err
		}

		number, err := s.nextOrderNumber(ctx)
		if err != nil {
			return err
		}

		now := s.now()
		order = s.buildOrder(user, in, lines, number, paymentRef, addressRef, now)

		// Decrement before insert. The conditional update re-checks stock,
		// closing the gap between the validation snapshot and this write.
		var decremented []validatedLine
		rollback := func() {
			for _, line := range decremented {
				if rbErr := s.products.IncrementStock(ctx, line.id, line.item.Quantity); rbErr != nil {
					log.WithFields(log.Fields{"product": line.id.Hex(), "err": rbErr}).
						Error("failed to restore stock after aborted order")
				}
			}
		}
		for _, line := range lines {
			if err := s.products.DecrementStock(ctx, line.id, line.item.Quantity); err != nil {
				rollback()
				return err
			}
			decremented = append(decremented, line)
		}

		if err := s.orders.Insert(ctx, order); err != nil {
			if apperrors.IsKind(err, apperrors.KindConflict) {
				// Rare numbering collision: one in-process regeneration with
				// a random suffix before surfacing the Conflict to the caller.
				order.OrderNumber = s.fallbackOrderNumber(now)
				err = s.orders.Insert(ctx, order)
			}
			if err != nil {
				rollback()
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"orderNumber": order.OrderNumber,
		"user":        user.ID.Hex(),
		"items":       len(order.OrderItems),
		"total":       order.TotalPrice,
	}).Info("order placed")

	return order, nil
}

// validateCart runs the fail-fast validation sequence and reads the stock
// snapshot. First violation wins.
func (s *Service) validateCart(ctx context.Context, in PlaceOrderInput) ([]validatedLine, error) {
	if len(in.OrderItems) == 0 {
		return nil, apperrors.New(apperrors.KindInvalidInput, "No order items provided")
	}

	addr := in.ShippingAddress
	if (addr == ShippingAddressInput{}) || strings.TrimSpace(in.PaymentMethod) == "" {
		return nil, apperrors.New(apperrors.KindInvalidInput, "Shipping address and payment method are required")
	}

	required := []struct {
		label string
		value string
	}{
		{"FullName", addr.FullName},
		{"Address", addr.Address},
		{"City", addr.City},
		{"State", addr.State},
		{"ZipCode", addr.ZipCode},
		{"Email", addr.Email},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return nil, apperrors.Newf(apperrors.KindInvalidInput, "%s is required", f.label)
		}
	}

	lines := make([]validatedLine, 0, len(in.OrderItems))
	for _, item := range in.OrderItems {
		if strings.TrimSpace(item.Product) == "" || item.Quantity < 1 || item.Price <= 0 {
			return nil, apperrors.New(apperrors.KindInvalidInput, "Each item must include product ID, quantity, and price")
		}

		id, err := primitive.ObjectIDFromHex(item.Product)
		if err != nil {
			return nil, apperrors.Newf(apperrors.KindNotFound, "Product not found: %s", item.Product)
		}

		product, err := s.products.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if product.Stock < item.Quantity {
			return nil, apperrors.Newf(apperrors.KindConflict,
				"Insufficient stock for %q. Available: %d, Requested: %d",
				product.Name, product.Stock, item.Quantity)
		}

		lines = append(lines, validatedLine{id: id, product: product, item: item})
	}
	return lines, nil
}

func (s *Service) resolvePaymentMethod(ctx context.Context, user *models.User, in PlaceOrderInput) (*primitive.ObjectID, error) {
	if in.PaymentMethodID != "" {
		id, err := primitive.ObjectIDFromHex(in.PaymentMethodID)
		if err != nil {
			return nil, apperrors.New(apperrors.KindNotFound, "Payment method not found")
		}
		pm, err := s.vault.FindForUser(ctx, id, user.ID)
		if err != nil {
			return nil, err
		}
		return &pm.ID, nil
	}

	if in.SavePaymentMethod && in.PaymentDetails != nil {
		pm, err := s.vault.SaveCard(ctx, user.ID, store.CardInput{
			CardNumber: in.PaymentDetails.CardNumber,
			CardHolder: in.PaymentDetails.CardHolder,
			ExpiryDate: in.PaymentDetails.ExpiryDate,
			CVV:        in.PaymentDetails.CVV,
		})
		if err != nil {
			return nil, err
		}
		return &pm.ID, nil
	}

	return nil, nil
}

func (s *Service) saveShippingAddress(ctx context.Context, user *models.User, in PlaceOrderInput) (*primitive.ObjectID, error) {
	if !in.SaveShippingAddress {
		return nil, nil
	}
	saved, err := s.addresses.Save(ctx, &models.Address{
		User:     user.ID,
		FullName: in.ShippingAddress.FullName,
		Phone:    in.ShippingAddress.Phone,
		Street:   in.ShippingAddress.Address,
		City:     in.ShippingAddress.City,
		State:    in.ShippingAddress.State,
		ZipCode:  in.ShippingAddress.ZipCode,
		Country:  in.ShippingAddress.Country,
	})
	if err != nil {
		return nil, err
	}
	return &saved.ID, nil
}

// nextOrderNumber composes a time component with a zero-padded sequence
// derived from the current order count. Uniqueness is enforced by the
// storage index, not by this format.
func (s *Service) nextOrderNumber(ctx context.Context) (string, error) {
	count, err := s.orders.CountAll(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ORD-%d-%06d", s.now().UnixMilli(), count+1), nil
}

func (s *Service) fallbackOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), suffix)
}

func (s *Service) buildOrder(user *models.User, in PlaceOrderInput, lines []validatedLine, number string, paymentRef, addressRef *primitive.ObjectID, now time.Time) *models.Order {
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		name := strings.TrimSpace(line.item.Name)
		if name == "" {
			name = line.product.Name
		}
		image := strings.TrimSpace(line.item.Image)
		if image == "" {
			image = line.product.ImageURL
		}
		items = append(items, models.OrderItem{
			Product:  line.id,
			Name:     name,
			Price:    line.item.Price,
			Quantity: line.item.Quantity,
			Image:    image,
		})
	}

	country := strings.TrimSpace(in.ShippingAddress.Country)
	if country == "" {
		country = "United States"
	}

	return &models.Order{
		OrderNumber: number,
		User:        user.ID,
		OrderItems:  items,
		ShippingAddress: models.ShippingAddress{
			FullName: strings.TrimSpace(in.ShippingAddress.FullName),
			Email:    strings.TrimSpace(in.ShippingAddress.Email),
			Phone:    strings.TrimSpace(in.ShippingAddress.Phone),
			Address:  strings.TrimSpace(in.ShippingAddress.Address),
			City:     strings.TrimSpace(in.ShippingAddress.City),
			State:    strings.TrimSpace(in.ShippingAddress.State),
			ZipCode:  strings.TrimSpace(in.ShippingAddress.ZipCode),
			Country:  country,
		},
		ShippingAddressRef: addressRef,
		PaymentMethod:      strings.TrimSpace(in.PaymentMethod),
		PaymentMethodRef:   paymentRef,
		ItemsPrice:         in.ItemsPrice,
		TaxPrice:           in.TaxPrice,
		ShippingPrice:      in.ShippingPrice,
		TotalPrice:         in.TotalPrice,
		Status:             models.StatusPending,
		StatusHistory: []models.StatusEvent{
			{Status: models.StatusPending, Date: now, Note: "Order created"},
		},
		OrderNotes: strings.TrimSpace(in.OrderNotes),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// GetOrder fetches a single order, restricted to its owner or back-office
// roles.
func (s *Service) GetOrder(ctx context.Context, orderID string, actor *models.User) (*models.Order, error) {
	id, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, apperrors.New(apperrors.KindInvalidInput, "Invalid order ID")
	}
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.User != actor.ID && !actor.IsStaffMember() {
		return nil, apperrors.New(apperrors.KindForbidden, "Not authorized")
	}
	return order, nil
}

func (s *Service) MyOrders(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return s.orders.FindByUser(ctx, userID)
}

func (s *Service) AllOrders(ctx context.Context) ([]models.Order, error) {
	return s.orders.FindAll(ctx)
}

// UpdateStatus drives the state machine. Transitions must be legal; moving
// to cancelled goes through the cancellation path so stock is restored.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, in UpdateStatusInput) (*models.Order, error) {
	target, ok := models.ParseOrderStatus(in.Status)
	if !ok {
		return nil, apperrors.New(apperrors.KindInvalidInput, "Valid status required")
	}

	id, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, apperrors.New(apperrors.KindInvalidInput, "Invalid order ID")
	}
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(target) {
		if target == models.StatusCancelled {
			return nil, apperrors.Newf(apperrors.KindInvalidState,
				"Cannot cancel order in %q status", order.Status)
		}
		return nil, apperrors.Newf(apperrors.KindInvalidState,
			"Cannot transition order from %q to %q", order.Status, target)
	}

	note := strings.TrimSpace(in.Note)
	if note == "" {
		note = fmt.Sprintf("Status updated to %s", target)
	}

	if target == models.StatusCancelled {
		if err := s.cancel(ctx, order, note); err != nil {
			return nil, err
		}
		return s.orders.FindByID(ctx, id)
	}

	set := bson.M{}
	if tracking := strings.TrimSpace(in.TrackingNumber); tracking != "" {
		set["trackingNumber"] = tracking
	}
	event := models.StatusEvent{Status: target, Date: s.now(), Note: note}
	if err := s.orders.TransitionStatus(ctx, id, order.Status, target, event, set); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"orderNumber": order.OrderNumber,
		"from":        order.Status,
		"to":          target,
	}).Info("order status updated")

	return s.orders.FindByID(ctx, id)
}

// CancelOrder cancels on behalf of the owner or an admin and restores stock.
func (s *Service) CancelOrder(ctx context.Context, orderID string, actor *models.User) (*models.Order, error) {
	id, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, apperrors.New(apperrors.KindInvalidInput, "Invalid order ID")
	}
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if order.User != actor.ID && !actor.HasRole(models.RoleAdmin) {
		return nil, apperrors.New(apperrors.KindForbidden, "Not authorized")
	}
	if !order.Status.Cancellable() {
		return nil, apperrors.Newf(apperrors.KindInvalidState,
			"Cannot cancel order in %q status", order.Status)
	}

	note := "Cancelled by customer"
	if actor.HasRole(models.RoleAdmin) && order.User != actor.ID {
		note = "Cancelled by admin"
	}
	if err := s.cancel(ctx, order, note); err != nil {
		return nil, err
	}
	return s.orders.FindByID(ctx, id)
}

// cancel flips the status with a compare-and-swap, then restores stock. The
// CAS runs first so a concurrent cancel cannot double-restore: the loser
// gets a Conflict before touching inventory.
func (s *Service) cancel(ctx context.Context, order *models.Order, note string) error {
	return s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		event := models.StatusEvent{Status: models.StatusCancelled, Date: s.now(), Note: note}
		if err := s.orders.TransitionStatus(ctx, order.ID, order.Status, models.StatusCancelled, event, nil); err != nil {
			return err
		}
		for _, item := range order.OrderItems {
			if err := s.products.IncrementStock(ctx, item.Product, item.Quantity); err != nil {
				return err
			}
		}
		log.WithFields(log.Fields{"orderNumber": order.OrderNumber}).Info("order cancelled, stock restored")
		return nil
	})
}

// DeleteOrder removes an order, restoring stock unless cancellation already
// did. The order is read inside the transactional scope and the removal is
// conditional on that observed status, so a cancel landing concurrently
// cannot make the delete restore stock a second time.
func (s *Service) DeleteOrder(ctx context.Context, orderID string) error {
	id, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return apperrors.New(apperrors.KindInvalidInput, "Invalid order ID")
	}

	return s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		order, err := s.orders.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.orders.Delete(ctx, id, order.Status); err != nil {
			return err
		}
		if order.Status != models.StatusCancelled {
			for _, item := range order.OrderItems {
				if err := s.products.IncrementStock(ctx, item.Product, item.Quantity); err != nil {
					return err
				}
			}
		}
		log.WithFields(log.Fields{"orderNumber": order.OrderNumber}).Info("order deleted")
		return nil
	})
}

func (s *Service) Stats(ctx context.Context) (*models.OrderStats, error) {
	return s.orders.Stats(ctx, s.now())
}
