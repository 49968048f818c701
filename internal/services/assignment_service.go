package services

import (
	"context"
	"errors"
	"log"
	"time"

	"mailassign-be/internal/models"
	"mailassign-be/internal/rules"
)

// RuleSource supplies the ordered, enabled rule set for an account. The
// service never caches rules beyond a single evaluation.
type RuleSource interface {
	ListEnabled(ctx context.Context, accountID string) ([]models.Rule, error)
}

// AssignmentSink stores the final assignment record. It must enforce
// uniqueness on (accountId, emailIdentity) and return
// rules.ErrAlreadyAssigned on conflict.
type AssignmentSink interface {
	Create(ctx context.Context, a *models.Assignment) error
}

// AssignmentService runs one email through the engine: load rules, select
// matches, resolve the assignee and side effects, write the record. Each
// email is an independent unit of work; a failure never affects other
// emails or accounts.
type AssignmentService struct {
	ruleSource RuleSource
	sink       AssignmentSink
	resolver   *rules.Resolver
	directory  rules.Directory
	now        func() time.Time
}

func NewAssignmentService(ruleSource RuleSource, sink AssignmentSink, resolver *rules.Resolver, directory rules.Directory) *AssignmentService {
	return &AssignmentService{
		ruleSource: ruleSource,
		sink:       sink,
		resolver:   resolver,
		directory:  directory,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// ProcessEmail evaluates the account's rules against one email and persists
// the resulting assignment. Returns (nil, nil) when no rule matched, which
// leaves the email for the manual queue. A pre-existing assignment for the
// same email is a benign no-op.
func (s *AssignmentService) ProcessEmail(ctx context.Context, email *models.InboundEmail) (*models.Assignment, error) {
	ruleSet, err := s.loadRules(ctx, email.AccountID)
	if err != nil {
		return nil, err
	}

	matched := rules.Select(ruleSet, email)
	if len(matched) == 0 {
		return nil, nil
	}

	res, resErr := s.resolver.Resolve(ctx, matched, email)
	if resErr != nil {
		if errors.Is(resErr, rules.ErrRotationStoreUnavailable) {
			// Nothing was consumed; the email can be reprocessed later.
			return nil, resErr
		}
		// Typed strategy failures (invalid assignee, empty pool, unknown
		// department) leave the email unassigned but keep the side effects.
		log.Printf("assignment: could not auto-assign %s: %v", email.Identity(), resErr)
	}

	a := s.buildAssignment(email, res, resErr)
	if err := s.createWithRetry(ctx, a); err != nil {
		if errors.Is(err, rules.ErrAlreadyAssigned) {
			log.Printf("assignment: %s already assigned, skipping", email.Identity())
			return a, nil
		}
		return nil, err
	}
	return a, nil
}

// Preview evaluates rules for an email without consuming rotation state or
// writing anything. Used by the rule-editor dry-run endpoint.
func (s *AssignmentService) Preview(ctx context.Context, email *models.InboundEmail) (*rules.Resolution, []models.Rule, error) {
	ruleSet, err := s.loadRules(ctx, email.AccountID)
	if err != nil {
		return nil, nil, err
	}

	matched := rules.Select(ruleSet, email)
	res, resErr := s.resolver.Preview(ctx, matched, email)
	if resErr != nil && errors.Is(resErr, rules.ErrRotationStoreUnavailable) {
		return nil, nil, resErr
	}
	return res, matched, nil
}

// AssignManually records an operator-chosen assignee for an email that no
// rule handled. MatchedRuleID stays empty on the record.
func (s *AssignmentService) AssignManually(ctx context.Context, email *models.InboundEmail, userID, note string) (*models.Assignment, error) {
	ok, err := s.directory.IsMember(ctx, email.AccountID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, rules.ErrInvalidAssignee
	}

	a := &models.Assignment{
		AccountID:     email.AccountID,
		EmailIdentity: email.Identity(),
		AssignedTo:    userID,
		Note:          note,
		CreatedAt:     s.now(),
	}
	if err := s.createWithRetry(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AssignmentService) loadRules(ctx context.Context, accountID string) ([]models.Rule, error) {
	ruleSet, err := s.ruleSource.ListEnabled(ctx, accountID)
	if err != nil {
		// Retry once on a transient storage failure.
		ruleSet, err = s.ruleSource.ListEnabled(ctx, accountID)
	}
	return ruleSet, err
}

func (s *AssignmentService) buildAssignment(email *models.InboundEmail, res *rules.Resolution, resErr error) *models.Assignment {
	a := &models.Assignment{
		AccountID:     email.AccountID,
		EmailIdentity: email.Identity(),
		AssignedTo:    res.Assignee,
		Priority:      res.Priority,
		DueDate:       res.DueDate,
		Tags:          res.Tags,
		TemplateID:    res.TemplateID,
		MatchedRuleID: res.MatchedRuleID,
		CreatedAt:     s.now(),
	}
	if resErr != nil {
		a.Note = "could not auto-assign, left unassigned"
	}
	return a
}

// createWithRetry retries the insert once on a transient failure. A
// uniqueness conflict is never retried.
func (s *AssignmentService) createWithRetry(ctx context.Context, a *models.Assignment) error {
	err := s.sink.Create(ctx, a)
	if err == nil || errors.Is(err, rules.ErrAlreadyAssigned) {
		return err
	}
	return s.sink.Create(ctx, a)
}
