package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"naumstay/pkg/config"
)

const (
	CounterCollectionName = "Counters"
	bookingReferenceKey   = "booking_reference"
)

// ReferenceCounter hands out the sequence numbers behind human-facing booking
// references. A findOneAndUpdate with $inc is atomic on the counter document,
// so concurrent reservations can never mint the same number. The sequence may
// contain gaps (a reservation that minted a number and then lost its conflict
// resolution leaves a hole); gap-freedom is not a requirement, collision
// freedom is.
type ReferenceCounter interface {
	Next(ctx context.Context) (int64, error)
}

type mongoReferenceCounter struct {
	collection *mongo.Collection
}

func NewReferenceCounter(cfg *config.Config) ReferenceCounter {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoReferenceCounter{
		collection: db.Collection(CounterCollectionName),
	}
}

func (c *mongoReferenceCounter) Next(ctx context.Context) (int64, error) {
	filter := bson.M{"_id": bookingReferenceKey}
	update := bson.M{"$inc": bson.M{"value": int64(1)}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc struct {
		Value int64 `bson:"value"`
	}
	if err := c.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return 0, fmt.Errorf("failed to increment booking reference counter: %w", err)
	}
	return doc.Value, nil
}
