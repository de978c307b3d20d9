package orders

import (
	"context"
	"time"

	"github.com/UnderratedBeast/UniqueFabric-Backend/models"
	"github.com/UnderratedBeast/UniqueFabric-Backend/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderRepository persists order aggregates.
type OrderRepository interface {
	Insert(ctx context.Context, order *models.Order) error
	CountAll(ctx context.Context) (int64, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	FindAll(ctx context.Context) ([]models.Order, error)
	TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to models.OrderStatus, event models.StatusEvent, set bson.M) error
	Delete(ctx context.Context, id primitive.ObjectID, from models.OrderStatus) error
	Stats(ctx context.Context, now time.Time) (*models.OrderStats, error)
}

// ProductLedger is the inventory collaborator. DecrementStock must be a
// conditional update that fails with Conflict when stock is short.
type ProductLedger interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) error
	IncrementStock(ctx context.Context, id primitive.ObjectID, qty int) error
}

// PaymentVault resolves or creates saved payment methods.
type PaymentVault interface {
	FindForUser(ctx context.Context, id, owner primitive.ObjectID) (*models.PaymentMethod, error)
	SaveCard(ctx context.Context, owner primitive.ObjectID, in store.CardInput) (*models.PaymentMethod, error)
}

// AddressKeeper persists shipping addresses with content dedup.
type AddressKeeper interface {
	Save(ctx context.Context, address *models.Address) (*models.Address, error)
}
