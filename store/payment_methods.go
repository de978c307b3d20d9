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

type PaymentMethodStore struct {
	col *mongo.Collection
	now func() time.Time
}

func NewPaymentMethodStore(db *mongo.Database) *PaymentMethodStore {
	return &PaymentMethodStore{col: db.Collection("paymentmethods"), now: time.Now}
}

// CardInput is the raw card data accepted at the boundary. Only derived
// metadata is ever persisted.
type CardInput struct {
	CardNumber string
	CardHolder string
	ExpiryDate string
	CVV        string
	IsDefault  bool
}

// SaveCard validates card details in the vault's contract order and persists
// a tokenized record: last four digits, holder, expiry, detected network.
func (s *PaymentMethodStore) SaveCard(ctx context.Context, owner primitive.ObjectID, in CardInput) (*models.PaymentMethod, error) {
	count, err := s.CountByUser(ctx, owner)
	if err != nil {
		return nil, err
	}
	if count >= models.PaymentMethodLimit {
		return nil, apperrors.New(apperrors.KindLimitExceeded,
			"Payment method limit reached. You can only have up to 5 saved payment methods.")
	}

	if in.CardNumber == "" || in.CardHolder == "" || in.ExpiryDate == "" || in.CVV == "" {
		return nil, apperrors.New(apperrors.KindInvalidInput, "All fields are required")
	}

	cleaned, err := models.CleanCardNumber(in.CardNumber)
	if err != nil {
		return nil, err
	}

	month, year, err := models.SplitExpiry(in.ExpiryDate)
	if err != nil {
		return nil, err
	}
	if err := models.ValidateExpiry(month, year, s.now()); err != nil {
		return nil, err
	}

	cardType := models.DetectCardType(cleaned)
	if err := models.ValidateCVV(in.CVV, cardType); err != nil {
		return nil, err
	}
	if err := models.ValidateCardHolder(in.CardHolder); err != nil {
		return nil, err
	}

	now := s.now()
	pm := &models.PaymentMethod{
		ID:          primitive.NewObjectID(),
		User:        owner,
		LastFour:    cleaned[len(cleaned)-4:],
		CardHolder:  strings.TrimSpace(in.CardHolder),
		ExpiryMonth: month,
		ExpiryYear:  models.NormalizeExpiryYear(year),
		CardType:    cardType,
		IsDefault:   in.IsDefault,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = WithRetry(ctx, 3, isConflict, func() error {
		if _, err := s.col.InsertOne(ctx, pm); err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "Error adding payment method", err)
		}
		if pm.IsDefault {
			return s.clearSiblingDefaults(ctx, owner, pm.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pm, nil
}

func (s *PaymentMethodStore) CountByUser(ctx context.Context, owner primitive.ObjectID) (int64, error) {
	count, err := s.col.CountDocuments(ctx, bson.M{"user": owner})
	if err != nil {
		return 0, apperrors.Wrap(apperrors.KindInternal, "Error counting payment methods", err)
	}
	return count, nil
}

func (s *PaymentMethodStore) FindByUser(ctx context.Context, owner primitive.ObjectID) ([]models.PaymentMethod, error) {
	cursor, err := s.col.Find(ctx, bson.M{"user": owner},
		options.Find().SetSort(bson.D{{Key: "isDefault", Value: -1}, {Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "Error fetching payment methods", err)
	}
	methods := make([]models.PaymentMethod, 0)
	if err := cursor.All(ctx, &methods); err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "Error parsing payment methods", err)
	}
	return methods, nil
}

// FindForUser resolves a method only when it belongs to owner.
func (s *PaymentMethodStore) FindForUser(ctx context.Context, id, owner primitive.ObjectID) (*models.PaymentMethod, error) {
	var pm models.PaymentMethod
	err := s.col.FindOne(ctx, bson.M{"_id": id, "user": owner}).Decode(&pm)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.New(apperrors.KindNotFound, "Payment method not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "Error fetching payment method", err)
	}
	return &pm, nil
}

func (s *PaymentMethodStore) FindDefault(ctx context.Context, owner primitive.ObjectID) (*models.PaymentMethod, error) {
	var pm models.PaymentMethod
	err := s.col.FindOne(ctx, bson.M{"user": owner, "isDefault": true}).Decode(&pm)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.New(apperrors.KindNotFound, "No default payment method found")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "Error fetching default payment method", err)
	}
	return &pm, nil
}

// Update changes non-sensitive fields only: holder name and the default flag.
func (s *PaymentMethodStore) Update(ctx context.Context, id, owner primitive.ObjectID, cardHolder *string, isDefault *bool) (*models.PaymentMethod, error) {
	pm, err := s.FindForUser(ctx, id, owner)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updatedAt": s.now()}
	if cardHolder != nil {
		if err := models.ValidateCardHolder(*cardHolder); err != nil {
			return nil, err
		}
		pm.CardHolder = strings.TrimSpace(*cardHolder)
		set["cardHolder"] = pm.CardHolder
	}
	if isDefault != nil {
		pm.IsDefault = *isDefault
		set["isDefault"] = pm.IsDefault
	}

	err = WithRetry(ctx, 3, isConflict, func() error {
		if _, err := s.col.UpdateOne(ctx, bson.M{"_id": id, "user": owner}, bson.M{"$set": set}); err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "Error updating payment method", err)
		}
		if pm.IsDefault {
			return s.clearSiblingDefaults(ctx, owner, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pm, nil
}

func (s *PaymentMethodStore) Delete(ctx context.Context, id, owner primitive.ObjectID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id, "user": owner})
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "Error deleting payment method", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.New(apperrors.KindNotFound, "Payment method not found")
	}
	return nil
}

// SetDefault makes one method the owner's default, clearing the flag on
// every sibling. The two updates run under the bounded retry so interleaved
// callers converge on exactly one default.
func (s *PaymentMethodStore) SetDefault(ctx context.Context, id, owner primitive.ObjectID) (*models.PaymentMethod, error) {
	pm, err := s.FindForUser(ctx, id, owner)
	if err != nil {
		return nil, err
	}
	if pm.IsDefault {
		return pm, nil
	}

	err = WithRetry(ctx, 3, isConflict, func() error {
		if err := s.clearSiblingDefaults(ctx, owner, id); err != nil {
			return err
		}
		res, err := s.col.UpdateOne(ctx, bson.M{"_id": id, "user": owner},
			bson.M{"$set": bson.M{"isDefault": true, "updatedAt": s.now()}})
		if err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "Error setting default payment method", err)
		}
		if res.MatchedCount == 0 {
			return apperrors.New(apperrors.KindNotFound, "Payment method not found")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	pm.IsDefault = true
	return pm, nil
}

func (s *PaymentMethodStore) clearSiblingDefaults(ctx context.Context, owner, keep primitive.ObjectID) error {
	_, err := s.col.UpdateMany(ctx,
		bson.M{"user": owner, "_id": bson.M{"$ne": keep}},
		bson.M{"$set": bson.M{"isDefault": false}})
	if err != nil {
		return apperrors.Wrap(apperrors.KindConflict, "Error clearing default payment methods", err)
	}
	return nil
}

func isConflict(err error) bool {
	return apperrors.IsKind(err, apperrors.KindConflict)
}
