package rotation

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore persists rotation counters in a MongoDB collection, one
// document per rule. The $inc on FindOneAndUpdate is atomic per document,
// so concurrent Advance calls for one rule consume distinct counters.
type MongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		collection: db.Collection("rotation_state"),
	}
}

type rotationDoc struct {
	RuleID  string `bson:"_id"`
	Counter int64  `bson:"counter"`
}

func (s *MongoStore) Advance(ctx context.Context, ruleID string, poolSize int) (int, error) {
	if poolSize <= 0 {
		return 0, ErrInvalidPoolSize
	}

	filter := bson.M{"_id": ruleID}
	update := bson.M{"$inc": bson.M{"counter": 1}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.Before)

	var doc rotationDoc
	err := s.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err != nil {
		// First Advance for a rule upserts the document; there is no
		// "before" state to return, so the consumed counter is zero.
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, err
	}

	return int(doc.Counter % int64(poolSize)), nil
}

func (s *MongoStore) Peek(ctx context.Context, ruleID string, poolSize int) (int, error) {
	if poolSize <= 0 {
		return 0, ErrInvalidPoolSize
	}

	var doc rotationDoc
	err := s.collection.FindOne(ctx, bson.M{"_id": ruleID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, err
	}

	return int(doc.Counter % int64(poolSize)), nil
}
