package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StrategyKind discriminates the assignment strategy carried by a rule.
// Exactly one strategy is active per rule; Validate enforces that the
// payload matches the kind.
type StrategyKind string

const (
	StrategyUser       StrategyKind = "user"
	StrategyDepartment StrategyKind = "department"
	StrategyRoundRobin StrategyKind = "roundRobin"
)

// Assign names who receives a matched email.
type Assign struct {
	Kind       StrategyKind `json:"kind" bson:"kind"`
	UserID     string       `json:"userId,omitempty" bson:"userId,omitempty"`
	Department string       `json:"department,omitempty" bson:"department,omitempty"`
	Pool       []string     `json:"pool,omitempty" bson:"pool,omitempty"` // ordered round-robin candidates
}

// DueUnit is the unit of a relative due-date offset.
type DueUnit string

const (
	DueHours DueUnit = "hours"
	DueDays  DueUnit = "days"
	DueWeeks DueUnit = "weeks"
)

// DueOffset expresses a due date relative to assignment time.
type DueOffset struct {
	Amount int     `json:"amount" bson:"amount"`
	Unit   DueUnit `json:"unit" bson:"unit"`
}

// Actions holds the side effects applied when a rule matches. Assign is
// the only field that picks an assignee; the rest are independent and
// optional.
type Actions struct {
	Assign       *Assign    `json:"assign,omitempty" bson:"assign,omitempty"`
	SetPriority  string     `json:"setPriority,omitempty" bson:"setPriority,omitempty"`
	SetDueDate   *DueOffset `json:"setDueDate,omitempty" bson:"setDueDate,omitempty"`
	AddTags      []string   `json:"addTags,omitempty" bson:"addTags,omitempty"`
	SendTemplate string     `json:"sendTemplate,omitempty" bson:"sendTemplate,omitempty"`
}

// TimeWindow restricts a rule to a daily time range, evaluated in Timezone
// (UTC when empty). Start and End are "HH:MM"; a window with Start after
// End spans midnight.
type TimeWindow struct {
	Start    string `json:"start" bson:"start"`
	End      string `json:"end" bson:"end"`
	Timezone string `json:"timezone,omitempty" bson:"timezone,omitempty"`
}

// Conditions is a set of independent predicate lists. Within a category any
// entry may satisfy it (OR); across populated categories all must be
// satisfied (AND). An empty category is no constraint.
type Conditions struct {
	SubjectContains []string    `json:"subjectContains,omitempty" bson:"subjectContains,omitempty"`
	FromEmail       []string    `json:"fromEmail,omitempty" bson:"fromEmail,omitempty"`
	FromDomain      []string    `json:"fromDomain,omitempty" bson:"fromDomain,omitempty"`
	BodyContains    []string    `json:"bodyContains,omitempty" bson:"bodyContains,omitempty"`
	TimeOfDay       *TimeWindow `json:"timeOfDay,omitempty" bson:"timeOfDay,omitempty"`
}

// Rule routes inbound email for one mail account. Rules are evaluated in
// (Priority ascending, CreatedAt ascending) order.
type Rule struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	AccountID   string             `json:"accountId" bson:"accountId"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Priority    int                `json:"priority" bson:"priority"`
	Enabled     bool               `json:"enabled" bson:"enabled"`
	StopOnMatch bool               `json:"stopOnMatch" bson:"stopOnMatch"`
	Conditions  Conditions         `json:"conditions" bson:"conditions"`
	Actions     Actions            `json:"actions" bson:"actions"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

var errMalformedStrategy = errors.New("assignment strategy payload does not match its kind")

// Validate checks the rule's action shape. A rule with no Assign is valid
// (side effects only); a rule with an Assign must carry exactly the payload
// its kind names.
func (r *Rule) Validate() error {
	if r.Actions.SetDueDate != nil {
		switch r.Actions.SetDueDate.Unit {
		case DueHours, DueDays, DueWeeks:
		default:
			return errors.New("unknown due-date unit")
		}
	}
	a := r.Actions.Assign
	if a == nil {
		return nil
	}
	switch a.Kind {
	case StrategyUser:
		if a.UserID == "" || a.Department != "" || len(a.Pool) > 0 {
			return errMalformedStrategy
		}
	case StrategyDepartment:
		if a.Department == "" || a.UserID != "" || len(a.Pool) > 0 {
			return errMalformedStrategy
		}
	case StrategyRoundRobin:
		if a.UserID != "" || a.Department != "" {
			return errMalformedStrategy
		}
		// An empty pool is well-formed; it resolves to no assignee.
	default:
		return errMalformedStrategy
	}
	return nil
}
