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

type UserStore struct {
	col *mongo.Collection
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{col: db.Collection("users")}
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.col.FindOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.New(apperrors.KindNotFound, "User not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "Error fetching user", err)
	}
	return &user, nil
}

func (s *UserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.New(apperrors.KindNotFound, "User not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "Error fetching user", err)
	}
	return &user, nil
}

func (s *UserStore) Insert(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.ID = primitive.NewObjectID()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.Role == "" {
		user.Role = models.RoleCustomer
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := s.col.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.New(apperrors.KindConflict, "User with same email already exists")
	}
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "Error creating user", err)
	}
	return nil
}

// UpdateProfile changes the mutable profile fields only.
func (s *UserStore) UpdateProfile(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.User, error) {
	set["updatedAt"] = time.Now()
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "Error updating profile", err)
	}
	if res.MatchedCount == 0 {
		return nil, apperrors.New(apperrors.KindNotFound, "User not found")
	}
	return s.FindByID(ctx, id)
}

// ListStaff returns the back-office accounts only, never customers.
func (s *UserStore) ListStaff(ctx context.Context) ([]models.User, error) {
	cursor, err := s.col.Find(ctx,
		bson.M{"role": bson.M{"$in": bson.A{models.RoleAdmin, models.RoleManager, models.RoleStaff}}},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "Error fetching users", err)
	}
	users := make([]models.User, 0)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "Error parsing users", err)
	}
	return users, nil
}

func (s *UserStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "Error deleting user", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.New(apperrors.KindNotFound, "User not found")
	}
	return nil
}

// EnsureDefaultUsers seeds the back-office accounts on first start.
func (s *UserStore) EnsureDefaultUsers(ctx context.Context, hash func(string) (string, error)) error {
	defaults := []struct {
		email    string
		password string
		name     string
		role     string
		isAdmin  bool
	}{
		{"admin@uniquefabric.com", "UniqueAdmin123", "System Administrator", models.RoleAdmin, true},
		{"manager@uniquefabric.com", "Manager123", "Store Manager", models.RoleManager, false},
		{"staff@uniquefabric.com", "Staff123", "Store Staff", models.RoleStaff, false},
	}

	for _, d := range defaults {
		_, err := s.FindByEmail(ctx, d.email)
		if err == nil {
			continue
		}
		if !apperrors.IsKind(err, apperrors.KindNotFound) {
			return err
		}
		hashed, err := hash(d.password)
		if err != nil {
			return err
		}
		user := &models.User{
			Name:     d.name,
			Email:    d.email,
			Password: hashed,
			Role:     d.role,
			IsAdmin:  d.isAdmin,
		}
		if err := s.Insert(ctx, user); err != nil && !apperrors.IsKind(err, apperrors.KindConflict) {
			return err
		}
	}
	return nil
}
