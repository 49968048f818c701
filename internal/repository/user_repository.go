package repository

import (
	"context"

	"mailassign-be/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	r := &UserRepository{
		collection: db.Collection("users"),
	}

	ctx := context.Background()
	idxView := r.collection.Indexes()
	_, _ = idxView.CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("idx_email_unique").SetUnique(true),
	})
	_, _ = idxView.CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "accountId", Value: 1}, {Key: "department", Value: 1}},
		Options: options.Index().SetName("idx_account_department"),
	})

	return r
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	var user models.User
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ExistsInAccount reports whether the user id belongs to the account
func (r *UserRepository) ExistsInAccount(ctx context.Context, accountID, userID string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		// Not a valid id, so not a member of anything.
		return false, nil
	}

	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": oid, "accountId": accountID})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// FirstAvailableInDepartment returns the longest-tenured available member
// of a department, or mongo.ErrNoDocuments
func (r *UserRepository) FirstAvailableInDepartment(ctx context.Context, accountID, department string) (*models.User, error) {
	findOptions := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	var user models.User
	err := r.collection.FindOne(ctx, bson.M{
		"accountId":  accountID,
		"department": department,
		"available":  true,
	}, findOptions).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) UpdateAvailability(ctx context.Context, userID string, available bool) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{"available": available}}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	return err
}
