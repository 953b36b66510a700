package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-booking-server/users"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

var _ users.UserRepo = (*UserRepo)(nil)

type UserRepo struct {
	collection *mongo.Collection
}

func NewUserRepo(ctx context.Context, db *mongo.Database) (*UserRepo, error) {
	collection := db.Collection(userCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "created_at", Value: 1}},
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return nil, fmt.Errorf("[NewUserRepo] failed to create user indexes: %w", err)
	}

	return &UserRepo{collection: collection}, nil
}

func (r *UserRepo) Create(ctx context.Context, user *users.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = user.CreatedAt

	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("[UserRepo Create] %w", mapError(err))
	}
	return nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*users.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepo) List(ctx context.Context, offset, limit int) ([]*users.User, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "email", Value: 1}})
	if offset > 0 {
		findOptions.SetSkip(int64(offset))
	}
	if limit > 0 {
		findOptions.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("[UserRepo List] %w", mapError(err))
	}
	defer cursor.Close(ctx)

	list := make([]*users.User, 0)
	if err := cursor.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("[UserRepo List] %w", mapError(err))
	}
	return list, nil
}

func (r *UserRepo) UpdateEmail(ctx context.Context, id, email string) (*users.User, error) {
	result := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"email": email, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var user users.User
	if err := result.Decode(&user); err != nil {
		return nil, fmt.Errorf("[UserRepo UpdateEmail] %w", mapError(err))
	}
	return &user, nil
}

func (r *UserRepo) findOne(ctx context.Context, filter bson.M) (*users.User, error) {
	var user users.User
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}
