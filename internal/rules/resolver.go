package rules

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mailassign-be/internal/models"
	"mailassign-be/internal/rotation"
)

// Directory resolves departments and validates account membership. Backed
// by the user store in production, faked in tests.
type Directory interface {
	// ResolveDepartment returns the user id of an available member, or
	// ErrDepartmentNotFound.
	ResolveDepartment(ctx context.Context, accountID, department string) (string, error)
	// IsMember reports whether the user belongs to the account.
	IsMember(ctx context.Context, accountID, userID string) (bool, error)
}

// Resolution is the outcome of resolving the matched rules for one email.
// An empty Assignee means the email is left for the manual queue; side
// effects may still be populated.
type Resolution struct {
	Assignee      string
	Priority      string
	DueDate       *time.Time
	Tags          []string
	TemplateID    string
	MatchedRuleID string
}

// Resolver turns an ordered list of matched rules into a concrete
// assignment. The assignee comes from the first matched rule that carries a
// strategy; singular side effects are first-value-wins across all matched
// rules, tags are a deduplicated union.
type Resolver struct {
	directory Directory
	rotation  rotation.Store
	now       func() time.Time
}

func NewResolver(directory Directory, store rotation.Store) *Resolver {
	return &Resolver{
		directory: directory,
		rotation:  store,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Resolve computes the assignment for the matched rules, advancing the
// rotation index when a round-robin rule wins the strategy.
func (r *Resolver) Resolve(ctx context.Context, matched []models.Rule, email *models.InboundEmail) (*Resolution, error) {
	return r.resolve(ctx, matched, email, true)
}

// Preview is Resolve without side effects: the rotation index is read but
// not consumed, so repeated previews are stable.
func (r *Resolver) Preview(ctx context.Context, matched []models.Rule, email *models.InboundEmail) (*Resolution, error) {
	return r.resolve(ctx, matched, email, false)
}

func (r *Resolver) resolve(ctx context.Context, matched []models.Rule, email *models.InboundEmail, advance bool) (*Resolution, error) {
	res := &Resolution{}
	if len(matched) == 0 {
		return res, nil
	}
	res.MatchedRuleID = matched[0].ID.Hex()

	var strategyErr error
	strategyClaimed := false
	seen := make(map[string]bool)

	for _, rule := range matched {
		a := rule.Actions

		// The first matched rule carrying a strategy owns the assignee;
		// later rules never override it, even when resolution failed.
		if a.Assign != nil && !strategyClaimed {
			strategyClaimed = true
			assignee, err := r.applyStrategy(ctx, rule, advance)
			if err != nil {
				strategyErr = err
			} else {
				res.Assignee = assignee
			}
		}

		if res.Priority == "" {
			res.Priority = a.SetPriority
		}
		if res.DueDate == nil && a.SetDueDate != nil {
			due := addOffset(r.now(), a.SetDueDate)
			res.DueDate = &due
		}
		if res.TemplateID == "" {
			res.TemplateID = a.SendTemplate
		}
		for _, tag := range a.AddTags {
			tag = strings.TrimSpace(tag)
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			res.Tags = append(res.Tags, tag)
		}
	}

	return res, strategyErr
}

func (r *Resolver) applyStrategy(ctx context.Context, rule models.Rule, advance bool) (string, error) {
	a := rule.Actions.Assign

	switch a.Kind {
	case models.StrategyUser:
		ok, err := r.directory.IsMember(ctx, rule.AccountID, a.UserID)
		if err != nil {
			return "", fmt.Errorf("validating assignee %s: %w", a.UserID, err)
		}
		if !ok {
			return "", fmt.Errorf("user %s: %w", a.UserID, ErrInvalidAssignee)
		}
		return a.UserID, nil

	case models.StrategyDepartment:
		userID, err := r.directory.ResolveDepartment(ctx, rule.AccountID, a.Department)
		if err != nil {
			return "", err
		}
		return userID, nil

	case models.StrategyRoundRobin:
		if len(a.Pool) == 0 {
			return "", ErrEmptyRoundRobinPool
		}
		idx, err := r.nextIndex(ctx, rule.ID.Hex(), len(a.Pool), advance)
		if err != nil {
			return "", err
		}
		return a.Pool[idx], nil
	}

	// Select validated the rule, so an unknown kind should not reach here.
	return "", ErrMalformedRule
}

// nextIndex consults the rotation store, retrying once on a transient
// failure before reporting the store unavailable.
func (r *Resolver) nextIndex(ctx context.Context, ruleID string, poolSize int, advance bool) (int, error) {
	read := r.rotation.Peek
	if advance {
		read = r.rotation.Advance
	}

	idx, err := read(ctx, ruleID, poolSize)
	if err == nil {
		return idx, nil
	}
	idx, err = read(ctx, ruleID, poolSize)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRotationStoreUnavailable, err)
	}
	return idx, nil
}

func addOffset(from time.Time, offset *models.DueOffset) time.Time {
	switch offset.Unit {
	case models.DueHours:
		return from.Add(time.Duration(offset.Amount) * time.Hour)
	case models.DueWeeks:
		return from.AddDate(0, 0, 7*offset.Amount)
	default:
		return from.AddDate(0, 0, offset.Amount)
	}
}
