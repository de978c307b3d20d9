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

type AddressStore struct {
	col *mongo.Collection
	now func() time.Time
}

func NewAddressStore(db *mongo.Database) *AddressStore {
	return &AddressStore{col: db.Collection("addresses"), now: time.Now}
}

// Save dedupes by content before inserting: an existing address for the same
// owner with identical trimmed street/city/state/zip is reused, never
// duplicated.
func (s *AddressStore) Save(ctx context.Context, address *models.Address) (*models.Address, error) {
	address.Normalize()

	existing, err := s.FindMatching(ctx, address.User, address.Street, address.City, address.State, address.ZipCode)
	if err != nil && !apperrors.IsKind(err, apperrors.KindNotFound) {
		return nil, err
	}
	if existing != nil {
		if address.IsDefault && !existing.IsDefault {
			return s.SetDefault(ctx, existing.ID, existing.User)
		}
		return existing, nil
	}

	now := s.now()
	address.ID = primitive.NewObjectID()
	address.CreatedAt = now
	address.UpdatedAt = now

	err = WithRetry(ctx, 3, isConflict, func() error {
		if _, err := s.col.InsertOne(ctx, address); err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "Error creating address", err)
		}
		if address.IsDefault {
			return s.clearSiblingDefaults(ctx, address.User, address.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return address, nil
}

// FindMatching looks up an owner's address by the dedup key.
func (s *AddressStore) FindMatching(ctx context.Context, owner primitive.ObjectID, street, city, state, zip string) (*models.Address, error) {
	var address models.Address
	err := s.col.FindOne(ctx, bson.M{
		"user":    owner,
		"street":  strings.TrimSpace(street),
		"city":    strings.TrimSpace(city),
		"state":   strings.TrimSpace(state),
		"zipCode": strings.TrimSpace(zip),
	}).Decode(&address)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.New(apperrors.KindNotFound, "Address not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "Error fetching address", err)
	}
	return &address, nil
}

func (s *AddressStore) FindByUser(ctx context.Context, owner primitive.ObjectID) ([]models.Address, error) {
	cursor, err := s.col.Find(ctx, bson.M{"user": owner},
		options.Find().SetSort(bson.D{{Key: "isDefault", Value: -1}, {Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "Error fetching addresses", err)
	}
	addresses := make([]models.Address, 0)
	if err := cursor.All(ctx, &addresses); err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "Error parsing addresses", err)
	}
	return addresses, nil
}

func (s *AddressStore) FindForUser(ctx context.Context, id, owner primitive.ObjectID) (*models.Address, error) {
	var address models.Address
	err := s.col.FindOne(ctx, bson.M{"_id": id, "user": owner}).Decode(&address)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.New(apperrors.KindNotFound, "Address not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "Error fetching address", err)
	}
	return &address, nil
}

func (s *AddressStore) Update(ctx context.Context, address *models.Address) (*models.Address, error) {
	address.Normalize()
	address.UpdatedAt = s.now()

	err := WithRetry(ctx, 3, isConflict, func() error {
		res, err := s.col.ReplaceOne(ctx, bson.M{"_id": address.ID, "user": address.User}, address)
		if err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "Error updating address", err)
		}
		if res.MatchedCount == 0 {
			return apperrors.New(apperrors.KindNotFound, "Address not found")
		}
		if address.IsDefault {
			return s.clearSiblingDefaults(ctx, address.User, address.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return address, nil
}

func (s *AddressStore) Delete(ctx context.Context, id, owner primitive.ObjectID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id, "user": owner})
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "Error deleting address", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.New(apperrors.KindNotFound, "Address not found")
	}
	return nil
}

// SetDefault flips the single default flag to the given address.
func (s *AddressStore) SetDefault(ctx context.Context, id, owner primitive.ObjectID) (*models.Address, error) {
	address, err := s.FindForUser(ctx, id, owner)
	if err != nil {
		return nil, err
	}

	err = WithRetry(ctx, 3, isConflict, func() error {
		if err := s.clearSiblingDefaults(ctx, owner, id); err != nil {
			return err
		}
		res, err := s.col.UpdateOne(ctx, bson.M{"_id": id, "user": owner},
			bson.M{"$set": bson.M{"isDefault": true, "updatedAt": s.now()}})
		if err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "Error setting default address", err)
		}
		if res.MatchedCount == 0 {
			return apperrors.New(apperrors.KindNotFound, "Address not found")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	address.IsDefault = true
	return address, nil
}

func (s *AddressStore) clearSiblingDefaults(ctx context.Context, owner, keep primitive.ObjectID) error {
	_, err := s.col.UpdateMany(ctx,
		bson.M{"user": owner, "_id": bson.M{"$ne": keep}},
		bson.M{"$set": bson.M{"isDefault": false}})
	if err != nil {
		return apperrors.Wrap(apperrors.KindConflict, "Error clearing default addresses", err)
	}
	return nil
}
