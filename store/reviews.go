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

type ReviewStore struct {
	col      *mongo.Collection
	products *mongo.Collection
}

func NewReviewStore(db *mongo.Database) *ReviewStore {
	return &ReviewStore{col: db.Collection("reviews"), products: db.Collection("products")}
}

// Insert persists a review. The unique (user, product) index rejects a second
// review of the same product by the same user.
func (s *ReviewStore) Insert(ctx context.Context, review *models.Review) error {
	now := time.Now()
	review.ID = primitive.NewObjectID()
	review.CreatedAt = now
	review.UpdatedAt = now

	_, err := s.col.InsertOne(ctx, review)
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.New(apperrors.KindConflict, "You have already reviewed this product")
	}
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "Error saving review", err)
	}
	return s.recomputeProductRating(ctx, review.Product)
}

func (s *ReviewStore) ListByProduct(ctx context.Context, productID primitive.ObjectID) ([]models.Review, error) {
	cursor, err := s.col.Find(ctx, bson.M{"product": productID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "Error fetching reviews", err)
	}
	reviews := make([]models.Review, 0)
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "Error parsing reviews", err)
	}
	return reviews, nil
}

// DeleteOwn removes a user's review and refreshes the product aggregates.
func (s *ReviewStore) DeleteOwn(ctx context.Context, id, owner primitive.ObjectID) error {
	var review models.Review
	err := s.col.FindOneAndDelete(ctx, bson.M{"_id": id, "user": owner}).Decode(&review)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperrors.New(apperrors.KindNotFound, "Review not found")
	}
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "Error deleting review", err)
	}
	return s.recomputeProductRating(ctx, review.Product)
}

func (s *ReviewStore) recomputeProductRating(ctx context.Context, productID primitive.ObjectID) error {
	cursor, err := s.col.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"product": productID}}},
		{{Key: "$group", Value: bson.M{
			"_id":    nil,
			"rating": bson.M{"$avg": "$rating"},
			"count":  bson.M{"$sum": 1},
		}}},
	})
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "Error aggregating reviews", err)
	}
	var agg []struct {
		Rating float64 `bson:"rating"`
		Count  int     `bson:"count"`
	}
	if err := cursor.All(ctx, &agg); err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "Error parsing review aggregate", err)
	}

	rating, count := 0.0, 0
	if len(agg) > 0 {
		rating, count = agg[0].Rating, agg[0].Count
	}
	_, err = s.products.UpdateOne(ctx, bson.M{"_id": productID},
		bson.M{"$set": bson.M{"rating": rating, "reviews": count}})
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "Error updating product rating", err)
	}
	return nil
}
