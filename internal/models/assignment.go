package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Assignment links one email to its resolved assignee. At most one exists
// per (accountId, emailIdentity); the collection carries a unique index on
// that pair and a second insert is a conflict, never an overwrite.
type Assignment struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	AccountID     string             `json:"accountId" bson:"accountId"`
	EmailIdentity string             `json:"emailIdentity" bson:"emailIdentity"`
	AssignedTo    string             `json:"assignedTo,omitempty" bson:"assignedTo"` // empty = left unassigned
	Priority      string             `json:"priority,omitempty" bson:"priority,omitempty"`
	DueDate       *time.Time         `json:"dueDate,omitempty" bson:"dueDate,omitempty"`
	Tags          []string           `json:"tags,omitempty" bson:"tags,omitempty"`
	Note          string             `json:"note,omitempty" bson:"note,omitempty"`
	TemplateID    string             `json:"templateId,omitempty" bson:"templateId,omitempty"`
	MatchedRuleID string             `json:"matchedRuleId,omitempty" bson:"matchedRuleId"` // empty = manual assignment
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
}

type AssignmentListResponse struct {
	Assignments []*Assignment `json:"assignments"`
	Total       int           `json:"total"`
	Page        int           `json:"page"`
	PerPage     int           `json:"perPage"`
	HasNextPage bool          `json:"hasNextPage"`
}
