package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-booking-server/accounts"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

var _ accounts.Repo = (*AccountRepo)(nil)

type AccountRepo struct {
	collection *mongo.Collection
}

func NewAccountRepo(ctx context.Context, db *mongo.Database) (*AccountRepo, error) {
	collection := db.Collection(accountCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "provider", Value: 1}, {Key: "provider_account_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return nil, fmt.Errorf("[NewAccountRepo] failed to create account indexes: %w", err)
	}

	return &AccountRepo{collection: collection}, nil
}

func (r *AccountRepo) Create(ctx context.Context, account *accounts.Account) error {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}

	if _, err := r.collection.InsertOne(ctx, account); err != nil {
		return fmt.Errorf("[AccountRepo Create] %w", mapError(err))
	}
	return nil
}

func (r *AccountRepo) GetByProvider(ctx context.Context, provider, providerAccountID string) (*accounts.Account, error) {
	var account accounts.Account
	err := r.collection.FindOne(ctx, bson.M{
		"provider":            provider,
		"provider_account_id": providerAccountID,
	}).Decode(&account)
	if err != nil {
		return nil, mapError(err)
	}
	return &account, nil
}

func (r *AccountRepo) ListByUser(ctx context.Context, userID string) ([]*accounts.Account, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "provider", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("[AccountRepo ListByUser] %w", mapError(err))
	}
	defer cursor.Close(ctx)

	list := make([]*accounts.Account, 0)
	if err := cursor.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("[AccountRepo ListByUser] %w", mapError(err))
	}
	return list, nil
}
