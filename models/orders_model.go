package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// statusTransitions encodes the forward-only lifecycle. delivered and
// cancelled are terminal.
var statusTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusDelivered, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// ParseOrderStatus validates a raw status value.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return OrderStatus(s), true
	}
	return "", false
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return len(statusTransitions[s]) == 0
}

// Cancellable reports whether an order in this status may still be cancelled.
func (s OrderStatus) Cancellable() bool {
	return s == StatusPending || s == StatusProcessing
}

// OrderItem is a snapshot of a product at order time. Name, price and image
// are captured on placement and never resynced to the live product.
type OrderItem struct {
	Product  primitive.ObjectID `json:"product" bson:"product"`
	Name     string             `json:"name" bson:"name"`
	Price    float64            `json:"price" bson:"price"`
	Quantity int                `json:"quantity" bson:"quantity"`
	Image    string             `json:"image" bson:"image,omitempty"`
}

type ShippingAddress struct {
	FullName string `json:"fullName" bson:"fullName"`
	Email    string `json:"email" bson:"email"`
	Phone    string `json:"phone" bson:"phone,omitempty"`
	Address  string `json:"address" bson:"address"`
	City     string `json:"city" bson:"city"`
	State    string `json:"state" bson:"state"`
	ZipCode  string `json:"zipCode" bson:"zipCode"`
	Country  string `json:"country" bson:"country"`
}

// StatusEvent is one entry of the append-only status history.
type StatusEvent struct {
	Status OrderStatus `json:"status" bson:"status"`
	Date   time.Time   `json:"date" bson:"date"`
	Note   string      `json:"note" bson:"note,omitempty"`
}

type Order struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OrderNumber string             `json:"orderNumber" bson:"orderNumber"`
	User        primitive.ObjectID `json:"user" bson:"user"`
	OrderItems  []OrderItem        `json:"orderItems" bson:"orderItems"`

	// ShippingAddress is always populated inline; the optional reference
	// points at the saved address book entry when the caller asked to keep it.
	ShippingAddress    ShippingAddress     `json:"shippingAddress" bson:"shippingAddress"`
	ShippingAddressRef *primitive.ObjectID `json:"shippingAddressRef,omitempty" bson:"shippingAddressRef,omitempty"`

	PaymentMethod    string              `json:"paymentMethod" bson:"paymentMethod"`
	PaymentMethodRef *primitive.ObjectID `json:"paymentMethodRef,omitempty" bson:"paymentMethodRef,omitempty"`

	ItemsPrice    float64 `json:"itemsPrice" bson:"itemsPrice"`
	TaxPrice      float64 `json:"taxPrice" bson:"taxPrice"`
	ShippingPrice float64 `json:"shippingPrice" bson:"shippingPrice"`
	TotalPrice    float64 `json:"totalPrice" bson:"totalPrice"`

	Status        OrderStatus   `json:"status" bson:"status"`
	StatusHistory []StatusEvent `json:"statusHistory" bson:"statusHistory"`

	TrackingNumber    string     `json:"trackingNumber,omitempty" bson:"trackingNumber,omitempty"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery,omitempty" bson:"estimatedDelivery,omitempty"`
	OrderNotes        string     `json:"orderNotes,omitempty" bson:"orderNotes,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// OrderStats is the admin dashboard aggregate.
type OrderStats struct {
	TotalOrders  int64   `json:"totalOrders"`
	Pending      int64   `json:"pending"`
	Processing   int64   `json:"processing"`
	Shipped      int64   `json:"shipped"`
	Delivered    int64   `json:"delivered"`
	Cancelled    int64   `json:"cancelled"`
	TotalRevenue float64 `json:"totalRevenue"`
	RecentOrders int64   `json:"recentOrders"`
}
