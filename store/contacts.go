package store

import (
	"context"
	"time"

	"github.com/UnderratedBeast/UniqueFabric-Backend/apperrors"
	"github.com/UnderratedBeast/UniqueFabric-Backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ContactStore struct {
	col *mongo.Collection
}

func NewContactStore(db *mongo.Database) *ContactStore {
	return &ContactStore{col: db.Collection("contactmessages")}
}

func (s *ContactStore) Insert(ctx context.Context, message *models.ContactMessage) error {
	message.ID = primitive.NewObjectID()
	message.CreatedAt = time.Now()
	if _, err := s.col.InsertOne(ctx, message); err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "Error saving message", err)
	}
	return nil
}

func (s *ContactStore) List(ctx context.Context) ([]models.ContactMessage, error) {
	cursor, err := s.col.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "Error fetching messages", err)
	}
	messages := make([]models.ContactMessage, 0)
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "Error parsing messages", err)
	}
	return messages, nil
}
