package repository

import (
	"context"

	"mailassign-be/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RuleRepository handles assignment-rule persistence
type RuleRepository struct {
	collection *mongo.Collection
}

// NewRuleRepository creates a new repository
func NewRuleRepository(db *mongo.Database) *RuleRepository {
	r := &RuleRepository{
		collection: db.Collection("assignment_rules"),
	}

	// Ensure indexes
	ctx := context.Background()
	idxView := r.collection.Indexes()
	_, _ = idxView.CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "accountId", Value: 1}},
		Options: options.Index().SetName("idx_account_id"),
	})
	_, _ = idxView.CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "accountId", Value: 1}, {Key: "priority", Value: 1}, {Key: "createdAt", Value: 1}},
		Options: options.Index().SetName("idx_account_priority"),
	})

	return r
}

// ListByAccount returns all rules for an account in evaluation order
func (r *RuleRepository) ListByAccount(ctx context.Context, accountID string) ([]models.Rule, error) {
	return r.list(ctx, bson.M{"accountId": accountID})
}

// ListEnabled returns the enabled rules for an account in evaluation order
// (priority ascending, creation time ascending)
func (r *RuleRepository) ListEnabled(ctx context.Context, accountID string) ([]models.Rule, error) {
	return r.list(ctx, bson.M{"accountId": accountID, "enabled": true})
}

func (r *RuleRepository) list(ctx context.Context, filter bson.M) ([]models.Rule, error) {
	findOptions := options.Find().SetSort(bson.D{
		{Key: "priority", Value: 1},
		{Key: "createdAt", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rules []models.Rule
	if err = cursor.All(ctx, &rules); err != nil {
		return nil, err
	}

	return rules, nil
}

// GetByID returns a single rule scoped to an account
func (r *RuleRepository) GetByID(ctx context.Context, accountID, ruleID string) (*models.Rule, error) {
	oid, err := primitive.ObjectIDFromHex(ruleID)
	if err != nil {
		return nil, err
	}

	var rule models.Rule
	err = r.collection.FindOne(ctx, bson.M{"_id": oid, "accountId": accountID}).Decode(&rule)
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// Create inserts a new rule
func (r *RuleRepository) Create(ctx context.Context, rule *models.Rule) error {
	result, err := r.collection.InsertOne(ctx, rule)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		rule.ID = oid
	}
	return nil
}

// Update replaces the mutable fields of a rule
func (r *RuleRepository) Update(ctx context.Context, rule *models.Rule) error {
	update := bson.M{
		"$set": bson.M{
			"name":        rule.Name,
			"description": rule.Description,
			"priority":    rule.Priority,
			"enabled":     rule.Enabled,
			"stopOnMatch": rule.StopOnMatch,
			"conditions":  rule.Conditions,
			"actions":     rule.Actions,
			"updatedAt":   rule.UpdatedAt,
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": rule.ID, "accountId": rule.AccountID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes a rule scoped to an account
func (r *RuleRepository) Delete(ctx context.Context, accountID, ruleID string) error {
	oid, err := primitive.ObjectIDFromHex(ruleID)
	if err != nil {
		return err
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid, "accountId": accountID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
