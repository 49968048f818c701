package repository

import (
	"context"
	"time"

	"mailassign-be/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EmailRepository stores the parsed inbound email metadata written by the
// mail-ingestion layer. The assignment worker drains unprocessed records.
type EmailRepository struct {
	collection *mongo.Collection
}

func NewEmailRepository(db *mongo.Database) *EmailRepository {
	r := &EmailRepository{
		collection: db.Collection("inbound_emails"),
	}

	ctx := context.Background()
	idxView := r.collection.Indexes()
	_, _ = idxView.CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "processed", Value: 1}, {Key: "receivedAt", Value: 1}},
		Options: options.Index().SetName("idx_processed_received"),
	})
	_, _ = idxView.CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "accountId", Value: 1}, {Key: "receivedAt", Value: -1}},
		Options: options.Index().SetName("idx_account_received"),
	})

	return r
}

func (r *EmailRepository) Create(ctx context.Context, email *models.InboundEmail) error {
	result, err := r.collection.InsertOne(ctx, email)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		email.ID = oid
	}
	return nil
}

func (r *EmailRepository) GetByID(ctx context.Context, emailID string) (*models.InboundEmail, error) {
	oid, err := primitive.ObjectIDFromHex(emailID)
	if err != nil {
		return nil, err
	}

	var email models.InboundEmail
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&email)
	if err != nil {
		return nil, err
	}
	return &email, nil
}

// ListUnprocessed returns up to limit unprocessed emails in arrival order
func (r *EmailRepository) ListUnprocessed(ctx context.Context, limit int) ([]*models.InboundEmail, error) {
	findOptions := options.Find().
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "receivedAt", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"processed": false}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var emails []*models.InboundEmail
	if err = cursor.All(ctx, &emails); err != nil {
		return nil, err
	}
	return emails, nil
}

// MarkProcessed flags an email as handled so the worker never re-drains it
func (r *EmailRepository) MarkProcessed(ctx context.Context, emailID primitive.ObjectID) error {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"processed":   true,
			"processedAt": now,
		},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": emailID}, update)
	return err
}
