package repository

import (
	"context"
	"time"

	"mailassign-be/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type StatisticsRepository struct {
	assignmentCollection *mongo.Collection
}

func NewStatisticsRepository(db *mongo.Database) *StatisticsRepository {
	return &StatisticsRepository{
		assignmentCollection: db.Collection("assignments"),
	}
}

// GetByAssignee aggregates assignment count per resolved assignee
func (r *StatisticsRepository) GetByAssignee(ctx context.Context, accountID string, days int) ([]models.AssigneeStats, error) {
	startDate := time.Now().AddDate(0, 0, -days)

	pipeline := []bson.M{
		{"$match": bson.M{
			"accountId":  accountID,
			"createdAt":  bson.M{"$gte": startDate},
			"assignedTo": bson.M{"$ne": ""},
		}},
		{"$group": bson.M{
			"_id":   "$assignedTo",
			"count": bson.M{"$sum": 1},
		}},
		{"$sort": bson.M{"count": -1}},
	}

	cursor, err := r.assignmentCollection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []models.AssigneeStats
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}

	return results, nil
}

// GetByRule aggregates assignment count per matched rule
func (r *StatisticsRepository) GetByRule(ctx context.Context, accountID string, days int) ([]models.RuleHitStats, error) {
	startDate := time.Now().AddDate(0, 0, -days)

	pipeline := []bson.M{
		{"$match": bson.M{
			"accountId":     accountID,
			"createdAt":     bson.M{"$gte": startDate},
			"matchedRuleId": bson.M{"$ne": ""},
		}},
		{"$group": bson.M{
			"_id":   "$matchedRuleId",
			"count": bson.M{"$sum": 1},
		}},
		{"$sort": bson.M{"count": -1}},
	}

	cursor, err := r.assignmentCollection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []models.RuleHitStats
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}

	return results, nil
}

// GetAssignmentTrend aggregates assignments by date for the last N days
func (r *StatisticsRepository) GetAssignmentTrend(ctx context.Context, accountID string, days int) ([]models.AssignmentTrendPoint, error) {
	startDate := time.Now().AddDate(0, 0, -days)

	pipeline := []bson.M{
		{"$match": bson.M{
			"accountId": accountID,
			"createdAt": bson.M{"$gte": startDate},
		}},
		{"$group": bson.M{
			"_id": bson.M{
				"$dateToString": bson.M{
					"format": "%Y-%m-%d",
					"date":   "$createdAt",
				},
			},
			"count": bson.M{"$sum": 1},
		}},
		{"$sort": bson.M{"_id": 1}},
	}

	cursor, err := r.assignmentCollection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []models.AssignmentTrendPoint
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}

	return results, nil
}

// GetTotals returns assigned and unassigned record counts
func (r *StatisticsRepository) GetTotals(ctx context.Context, accountID string) (assigned int, unassigned int, err error) {
	assignedCount, err := r.assignmentCollection.CountDocuments(ctx, bson.M{
		"accountId":  accountID,
		"assignedTo": bson.M{"$ne": ""},
	})
	if err != nil {
		return 0, 0, err
	}

	unassignedCount, err := r.assignmentCollection.CountDocuments(ctx, bson.M{
		"accountId":  accountID,
		"assignedTo": "",
	})
	if err != nil {
		return 0, 0, err
	}

	return int(assignedCount), int(unassignedCount), nil
}
