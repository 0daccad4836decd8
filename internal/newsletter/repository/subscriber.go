package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	newslettererrors "naumstay/internal/newsletter/errors"
	"naumstay/pkg/config"
	"naumstay/pkg/model"
)

const CollectionName = "Subscribers"

type SubscriberRepository interface {
	Create(ctx context.Context, subscriber *model.Subscriber) error
	FindByEmail(ctx context.Context, email string) (*model.Subscriber, error)
	FindByToken(ctx context.Context, token string) (*model.Subscriber, error)
	FindActive(ctx context.Context) ([]*model.Subscriber, error)
	SetActive(ctx context.Context, id string, active bool) error
	Count(ctx context.Context) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

type mongoSubscriberRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSubscriberRepository(cfg *config.Config) SubscriberRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSubscriberRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoSubscriberRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return context.WithTimeout(ctx, time.Until(deadline))
	}
	return context.WithTimeout(ctx, timeout)
}

// EnsureIndexes makes email uniqueness a storage guarantee; the duplicate
// check in the service is only there for the friendlier error message.
func (r *mongoSubscriberRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create subscriber email index: %w", err)
	}
	return nil
}

func (r *mongoSubscriberRepository) Create(ctx context.Context, subscriber *model.Subscriber) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	subscriber.SubscribedAt = time.Now().UTC()
	result, err := r.collection.InsertOne(ctx, subscriber)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return newslettererrors.ErrDuplicate
		}
		return fmt.Errorf("failed to create subscriber: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		subscriber.ID = oid.Hex()
	}
	return nil
}

func (r *mongoSubscriberRepository) FindByEmail(ctx context.Context, email string) (*model.Subscriber, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var subscriber model.Subscriber
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&subscriber)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, newslettererrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find subscriber by email: %w", err)
	}
	return &subscriber, nil
}

func (r *mongoSubscriberRepository) FindByToken(ctx context.Context, token string) (*model.Subscriber, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var subscriber model.Subscriber
	err := r.collection.FindOne(ctx, bson.M{"unsubscribe_token": token}).Decode(&subscriber)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, newslettererrors.ErrBadToken
		}
		return nil, fmt.Errorf("failed to find subscriber by token: %w", err)
	}
	return &subscriber, nil
}

func (r *mongoSubscriberRepository) FindActive(ctx context.Context) ([]*model.Subscriber, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"active": true})
	if err != nil {
		return nil, fmt.Errorf("failed to find active subscribers: %w", err)
	}
	defer cursor.Close(ctx)

	var subscribers []*model.Subscriber
	if err = cursor.All(ctx, &subscribers); err != nil {
		return nil, fmt.Errorf("failed to decode subscribers: %w", err)
	}
	return subscribers, nil
}

func (r *mongoSubscriberRepository) SetActive(ctx context.Context, id string, active bool) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid subscriber ID %s: %w", id, err)
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": bson.M{"active": active}})
	if err != nil {
		return fmt.Errorf("failed to update subscriber: %w", err)
	}
	if result.MatchedCount == 0 {
		return newslettererrors.ErrNotFound
	}
	return nil
}

func (r *mongoSubscriberRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"active": true})
	if err != nil {
		return 0, fmt.Errorf("failed to count subscribers: %w", err)
	}
	return count, nil
}
