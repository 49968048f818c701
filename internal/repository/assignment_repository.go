package repository

import (
	"context"

	"mailassign-be/internal/models"
	"mailassign-be/internal/rules"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AssignmentRepository persists the write-once assignment records. The
// unique index on (accountId, emailIdentity) is what enforces the
// one-assignment-per-email invariant; a duplicate insert surfaces as
// rules.ErrAlreadyAssigned and never touches the first record.
type AssignmentRepository struct {
	collection *mongo.Collection
}

func NewAssignmentRepository(db *mongo.Database) *AssignmentRepository {
	r := &AssignmentRepository{
		collection: db.Collection("assignments"),
	}

	ctx := context.Background()
	idxView := r.collection.Indexes()
	_, _ = idxView.CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "accountId", Value: 1}, {Key: "emailIdentity", Value: 1}},
		Options: options.Index().SetName("idx_account_email_unique").SetUnique(true),
	})
	_, _ = idxView.CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "accountId", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("idx_account_created"),
	})

	return r
}

// Create inserts an assignment, returning rules.ErrAlreadyAssigned when one
// already exists for the same (accountId, emailIdentity)
func (r *AssignmentRepository) Create(ctx context.Context, a *models.Assignment) error {
	result, err := r.collection.InsertOne(ctx, a)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return rules.ErrAlreadyAssigned
		}
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		a.ID = oid
	}
	return nil
}

// GetByEmailIdentity returns the assignment for one email, if any
func (r *AssignmentRepository) GetByEmailIdentity(ctx context.Context, accountID, emailIdentity string) (*models.Assignment, error) {
	var a models.Assignment
	err := r.collection.FindOne(ctx, bson.M{"accountId": accountID, "emailIdentity": emailIdentity}).Decode(&a)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// List returns assignments for an account, newest first, with pagination
func (r *AssignmentRepository) List(ctx context.Context, accountID string, page, perPage int) ([]*models.Assignment, int, error) {
	skip := (page - 1) * perPage

	findOptions := options.Find()
	findOptions.SetSkip(int64(skip))
	findOptions.SetLimit(int64(perPage))
	findOptions.SetSort(bson.D{{Key: "createdAt", Value: -1}})

	filter := bson.M{"accountId": accountID}

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var assignments []*models.Assignment
	if err = cursor.All(ctx, &assignments); err != nil {
		return nil, 0, err
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return assignments, int(total), nil
}

// ListByAssignee returns assignments routed to one user, newest first
func (r *AssignmentRepository) ListByAssignee(ctx context.Context, accountID, userID string, limit int) ([]*models.Assignment, error) {
	findOptions := options.Find().
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"accountId": accountID, "assignedTo": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var assignments []*models.Assignment
	if err = cursor.All(ctx, &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}
