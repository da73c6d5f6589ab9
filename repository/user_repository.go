package repository

import (
	"context"
	"time"

	"citysense-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserStore is the persistence boundary for users.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, uid string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, page, limit int) ([]models.User, int64, error)
	ListAll(ctx context.Context) ([]models.User, error)
	ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error)
	UpdateRole(ctx context.Context, uid string, role models.UserRole) error
	UpdateDisplayName(ctx context.Context, uid, displayName string) error
	Delete(ctx context.Context, uid string) error
	IncIssuesReported(ctx context.Context, uid string, delta int) error
	TouchLastLogin(ctx context.Context, uid string) error
}

type mongoUserStore struct {
	users *mongo.Collection
}

// NewUserStore returns a Mongo-backed UserStore.
func NewUserStore(db *mongo.Database) UserStore {
	return &mongoUserStore{users: db.Collection("users")}
}

func (s *mongoUserStore) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	_, err := s.users.InsertOne(ctx, user)
	return err
}

func (s *mongoUserStore) GetByID(ctx context.Context, uid string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(uid)
	if err != nil {
		return nil, ErrInvalidID
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var user models.User
	err = s.users.FindOne(ctx, bson.M{"_id": objID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *mongoUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var user models.User
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *mongoUserStore) List(ctx context.Context, page, limit int) ([]models.User, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	totalCount, err := s.users.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}

	skip := (page - 1) * limit
	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cursor, err := s.users.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, 0, err
	}
	return users, totalCount, nil
}

func (s *mongoUserStore) ListAll(ctx context.Context) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cursor, err := s.users.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *mongoUserStore) ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.users.Find(ctx, bson.M{"role": role}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *mongoUserStore) UpdateRole(ctx context.Context, uid string, role models.UserRole) error {
	return s.updateOne(ctx, uid, bson.M{"$set": bson.M{"role": role}})
}

func (s *mongoUserStore) UpdateDisplayName(ctx context.Context, uid, displayName string) error {
	return s.updateOne(ctx, uid, bson.M{"$set": bson.M{"displayName": displayName}})
}

func (s *mongoUserStore) IncIssuesReported(ctx context.Context, uid string, delta int) error {
	return s.updateOne(ctx, uid, bson.M{"$inc": bson.M{"issuesReported": delta}})
}

func (s *mongoUserStore) TouchLastLogin(ctx context.Context, uid string) error {
	return s.updateOne(ctx, uid, bson.M{"$set": bson.M{"lastLoginAt": time.Now()}})
}

func (s *mongoUserStore) Delete(ctx context.Context, uid string) error {
	objID, err := primitive.ObjectIDFromHex(uid)
	if err != nil {
		return ErrInvalidID
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := s.users.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	// Issues reference users weakly; deleting a user does not cascade.
	return nil
}

func (s *mongoUserStore) updateOne(ctx context.Context, uid string, update bson.M) error {
	objID, err := primitive.ObjectIDFromHex(uid)
	if err != nil {
		return ErrInvalidID
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := s.users.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
