package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// counterDocument is the shared counter keyed by collection name
type counterDocument struct {
	Name string `bson:"_id"`
	Seq  int64  `bson:"seq"`
}

// MongoSequenceGenerator issues ids with an atomic find-and-increment on a
// counters collection. The counter document is created on first use.
type MongoSequenceGenerator struct {
	counters CollectionInterface
}

// NewMongoSequenceGenerator creates a generator over the counters collection
func NewMongoSequenceGenerator(counters CollectionInterface) *MongoSequenceGenerator {
	return &MongoSequenceGenerator{counters: counters}
}

// Next increments the counter called name and returns the new value; the first value is 1
func (g *MongoSequenceGenerator) Next(ctx context.Context, name string) (int64, error) {
	if name == "" {
		return 0, fmt.Errorf("counter name cannot be empty")
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var counter counterDocument
	err := g.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to increment counter %q: %w", name, err)
	}

	return counter.Seq, nil
}
