package store

import (
	"context"
	"errors"
	"time"

	"github.com/UnderratedBeast/UniqueFabric-Backend/apperrors"
	"github.com/UnderratedBeast/UniqueFabric-Backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type OrderStore struct {
	col *mongo.Collection
}

func NewOrderStore(db *mongo.Database) *OrderStore {
	return &OrderStore{col: db.Collection("orders")}
}

// Insert persists a new order. A duplicate orderNumber surfaces as a
// retryable Conflict.
func (s *OrderStore) Insert(ctx context.Context, order *models.Order) error {
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	_, err := s.col.InsertOne(ctx, order)
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.Wrap(apperrors.KindConflict, "Order number conflict. Please try again.", err)
	}
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "Error saving order", err)
	}
	return nil
}

func (s *OrderStore) CountAll(ctx context.Context) (int64, error) {
	count, err := s.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, apperrors.Wrap(apperrors.KindInternal, "Error counting orders", err)
	}
	return count, nil
}

func (s *OrderStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.New(apperrors.KindNotFound, "Order not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "Error fetching order", err)
	}
	return &order, nil
}

func (s *OrderStore) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return s.find(ctx, bson.M{"user": userID})
}

func (s *OrderStore) FindAll(ctx context.Context) ([]models.Order, error) {
	return s.find(ctx, bson.M{})
}

func (s *OrderStore) find(ctx context.Context, filter bson.M) ([]models.Order, error) {
	cursor, err := s.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "Error fetching orders", err)
	}
	orders := make([]models.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "Error parsing orders", err)
	}
	return orders, nil
}

// TransitionStatus moves an order from one status to another and appends the
// history event in the same write. The status match in the filter is the
// optimistic check: a concurrent transition makes this a no-match, reported
// as Conflict rather than overwritten.
func (s *OrderStore) TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to models.OrderStatus, event models.StatusEvent, set bson.M) error {
	update := bson.M{"$set": bson.M{"status": to, "updatedAt": time.Now()}}
	for k, v := range set {
		update["$set"].(bson.M)[k] = v
	}
	update["$push"] = bson.M{"statusHistory": event}

	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id, "status": from}, update)
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "Error updating order", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.New(apperrors.KindConflict, "Order was modified concurrently. Please try again.")
	}
	return nil
}

// Delete removes an order only while it still holds the expected status. A
// no-match means the order changed under the caller, reported as Conflict the
// same way TransitionStatus does.
func (s *OrderStore) Delete(ctx context.Context, id primitive.ObjectID, from models.OrderStatus) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id, "status": from})
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "Error deleting order", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.New(apperrors.KindConflict, "Order was modified concurrently. Please try again.")
	}
	return nil
}

// Stats aggregates counts by status, revenue excluding cancelled and pending
// orders, and the 7-day order count.
func (s *OrderStore) Stats(ctx context.Context, now time.Time) (*models.OrderStats, error) {
	stats := &models.OrderStats{}

	total, err := s.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalOrders = total

	cursor, err := s.col.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "Error aggregating order statuses", err)
	}
	var counts []struct {
		Status models.OrderStatus `bson:"_id"`
		Count  int64              `bson:"count"`
	}
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "Error parsing status counts", err)
	}
	for _, c := range counts {
		switch c.Status {
		case models.StatusPending:
			stats.Pending = c.Count
		case models.StatusProcessing:
			stats.Processing = c.Count
		case models.StatusShipped:
			stats.Shipped = c.Count
		case models.StatusDelivered:
			stats.Delivered = c.Count
		case models.StatusCancelled:
			stats.Cancelled = c.Count
		}
	}

	cursor, err = s.col.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": bson.M{"$nin": bson.A{models.StatusCancelled, models.StatusPending}}}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "totalRevenue": bson.M{"$sum": "$totalPrice"}}}},
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "Error aggregating revenue", err)
	}
	var revenue []struct {
		TotalRevenue float64 `bson:"totalRevenue"`
	}
	if err := cursor.All(ctx, &revenue); err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "Error parsing revenue", err)
	}
	if len(revenue) > 0 {
		stats.TotalRevenue = float64(int64(revenue[0].TotalRevenue*100+0.5)) / 100
	}

	recent, err := s.col.CountDocuments(ctx, bson.M{
		"createdAt": bson.M{"$gte": now.AddDate(0, 0, -7)},
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "Error counting recent orders", err)
	}
	stats.RecentOrders = recent

	return stats, nil
}
