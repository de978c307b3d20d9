package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/UnderratedBeast/UniqueFabric-Backend/apperrors"
	"github.com/UnderratedBeast/UniqueFabric-Backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ProductStore struct {
	col *mongo.Collection
}

func NewProductStore(db *mongo.Database) *ProductStore {
	return &ProductStore{col: db.Collection("products")}
}

func (s *ProductStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.Newf(apperrors.KindNotFound, "Product not found: %s", id.Hex())
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "Error fetching product", err)
	}
	return &product, nil
}

// ProductFilter narrows List. Zero values mean no constraint.
type ProductFilter struct {
	Category string
	Search   string
	Featured bool
	Page     int64
	Limit    int64
}

func (s *ProductStore) List(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error) {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Featured {
		query["featured"] = true
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query["name"] = bson.M{"$regex": search, "$options": "i"}
	}

	total, err := s.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.KindInternal, "Error counting products", err)
	}

	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	findOptions := options.Find().
		SetSkip((page - 1) * limit).
		SetLimit(limit).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := s.col.Find(ctx, query, findOptions)
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.KindInternal, "Error fetching products", err)
	}
	products := make([]models.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, apperrors.Wrap(apperrors.KindInternal, "Error parsing products", err)
	}
	return products, total, nil
}

func (s *ProductStore) Insert(ctx context.Context, product *models.Product) error {
	now := time.Now()
	product.ID = primitive.NewObjectID()
	product.CreatedAt = now
	product.UpdatedAt = now
	product.SyncStockStatus()

	if _, err := s.col.InsertOne(ctx, product); err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "Error inserting product", err)
	}
	return nil
}

func (s *ProductStore) Update(ctx context.Context, product *models.Product) error {
	product.UpdatedAt = time.Now()
	product.SyncStockStatus()

	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": product.ID}, product)
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "Error updating product", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.Newf(apperrors.KindNotFound, "Product not found: %s", product.ID.Hex())
	}
	return nil
}

func (s *ProductStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "Error deleting product", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.Newf(apperrors.KindNotFound, "Product not found: %s", id.Hex())
	}
	return nil
}

// DecrementStock subtracts qty from a product's stock only if enough remains.
// The filter makes the check-and-decrement one atomic compare-and-swap, so
// stock can never go negative even when two orders race past the validation
// snapshot.
func (s *ProductStore) DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": id, "stock": bson.M{"$gte": qty}},
		bson.M{
			"$inc": bson.M{"stock": -qty},
			"$set": bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "Error updating stock", err)
	}
	if res.MatchedCount == 0 {
		product, findErr := s.FindByID(ctx, id)
		if findErr != nil {
			return findErr
		}
		return apperrors.Newf(apperrors.KindConflict,
			"Insufficient stock for %q. Available: %d, Requested: %d",
			product.Name, product.Stock, qty)
	}
	return s.syncStockStatus(ctx, id)
}

// IncrementStock returns qty units, used by cancellation and deletion.
func (s *ProductStore) IncrementStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	_, err := s.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{"stock": qty},
			"$set": bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "Error restoring stock", err)
	}
	return s.syncStockStatus(ctx, id)
}

// syncStockStatus recomputes the derived inStock/status fields server side.
func (s *ProductStore) syncStockStatus(ctx context.Context, id primitive.ObjectID) error {
	pipeline := bson.A{
		bson.M{"$set": bson.M{
			"inStock": bson.M{"$gt": bson.A{"$stock", 0}},
			"status": bson.M{"$switch": bson.M{
				"branches": bson.A{
					bson.M{"case": bson.M{"$eq": bson.A{"$stock", 0}}, "then": models.StockStatusOut},
					bson.M{"case": bson.M{"$lte": bson.A{"$stock", 10}}, "then": models.StockStatusLow},
				},
				"default": models.StockStatusIn,
			}},
		}},
	}
	if _, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, pipeline); err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "Error syncing stock status", err)
	}
	return nil
}
