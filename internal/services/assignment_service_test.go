package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"mailassign-be/internal/models"
	"mailassign-be/internal/rotation"
	"mailassign-be/internal/rules"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeRuleSource struct {
	rules        []models.Rule
	failuresLeft int
	calls        int
}

func (f *fakeRuleSource) ListEnabled(_ context.Context, _ string) ([]models.Rule, error) {
	f.calls++
	if f.failuresLeft > 0 {
		f.failuresLeft--
		return nil, errors.New("transient rule store failure")
	}
	return f.rules, nil
}

type fakeSink struct {
	created      []*models.Assignment
	existing     map[string]bool
	failuresLeft int
}

func newFakeSink() *fakeSink {
	return &fakeSink{existing: make(map[string]bool)}
}

func (f *fakeSink) Create(_ context.Context, a *models.Assignment) error {
	if f.failuresLeft > 0 {
		f.failuresLeft--
		return errors.New("transient sink failure")
	}
	key := a.AccountID + "/" + a.EmailIdentity
	if f.existing[key] {
		return rules.ErrAlreadyAssigned
	}
	f.existing[key] = true
	f.created = append(f.created, a)
	return nil
}

type fakeDir struct {
	members     map[string]bool
	departments map[string]string
}

func (f *fakeDir) ResolveDepartment(_ context.Context, _, department string) (string, error) {
	if id, ok := f.departments[department]; ok {
		return id, nil
	}
	return "", fmt.Errorf("department %q: %w", department, rules.ErrDepartmentNotFound)
}

func (f *fakeDir) IsMember(_ context.Context, _, userID string) (bool, error) {
	return f.members[userID], nil
}

func testEmail(messageID, from string) *models.InboundEmail {
	return &models.InboundEmail{
		ID:         primitive.NewObjectID(),
		AccountID:  "acct-1",
		MessageID:  messageID,
		Subject:    "hello",
		From:       models.EmailAddress{Email: from},
		ReceivedAt: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
	}
}

func catchAllRule(userID string) models.Rule {
	return models.Rule{
		ID:        primitive.NewObjectID(),
		AccountID: "acct-1",
		Name:      "catch-all",
		Priority:  10,
		Enabled:   true,
		Actions: models.Actions{
			Assign: &models.Assign{Kind: models.StrategyUser, UserID: userID},
		},
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func newTestService(source *fakeRuleSource, sink *fakeSink, dir *fakeDir) *AssignmentService {
	resolver := rules.NewResolver(dir, rotation.NewMemoryStore())
	s := NewAssignmentService(source, sink, resolver, dir)
	s.now = func() time.Time {
		return time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	}
	return s
}

func TestProcessEmailNoRuleMatched(t *testing.T) {
	source := &fakeRuleSource{}
	sink := newFakeSink()
	s := newTestService(source, sink, &fakeDir{})

	a, err := s.ProcessEmail(context.Background(), testEmail("m1", "a@b.com"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != nil {
		t.Fatalf("expected no assignment when nothing matched, got %+v", a)
	}
	if len(sink.created) != 0 {
		t.Fatalf("expected sink untouched, got %d records", len(sink.created))
	}
}

func TestProcessEmailWritesAssignment(t *testing.T) {
	rule := catchAllRule("U1")
	rule.Actions.SetPriority = "normal"
	rule.Actions.AddTags = []string{"inbox"}
	source := &fakeRuleSource{rules: []models.Rule{rule}}
	sink := newFakeSink()
	s := newTestService(source, sink, &fakeDir{members: map[string]bool{"U1": true}})

	a, err := s.ProcessEmail(context.Background(), testEmail("m1", "a@b.com"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a == nil {
		t.Fatalf("expected an assignment")
	}
	if a.AssignedTo != "U1" || a.Priority != "normal" {
		t.Fatalf("unexpected assignment: %+v", a)
	}
	if a.EmailIdentity != "m1" {
		t.Fatalf("expected message id as identity, got %q", a.EmailIdentity)
	}
	if a.MatchedRuleID != rule.ID.Hex() {
		t.Fatalf("expected matched rule id recorded")
	}
	if len(sink.created) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(sink.created))
	}
}

func TestProcessEmailUIDFallbackIdentity(t *testing.T) {
	source := &fakeRuleSource{rules: []models.Rule{catchAllRule("U1")}}
	sink := newFakeSink()
	s := newTestService(source, sink, &fakeDir{members: map[string]bool{"U1": true}})

	e := testEmail("", "a@b.com")
	e.UID = 42
	a, err := s.ProcessEmail(context.Background(), e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.EmailIdentity != "uid:42" {
		t.Fatalf("expected uid fallback identity, got %q", a.EmailIdentity)
	}
}

func TestProcessEmailAlreadyAssignedIsNoOp(t *testing.T) {
	source := &fakeRuleSource{rules: []models.Rule{catchAllRule("U1")}}
	sink := newFakeSink()
	sink.existing["acct-1/m1"] = true
	s := newTestService(source, sink, &fakeDir{members: map[string]bool{"U1": true}})

	a, err := s.ProcessEmail(context.Background(), testEmail("m1", "a@b.com"))
	if err != nil {
		t.Fatalf("expected already-assigned to be benign, got %v", err)
	}
	if a == nil {
		t.Fatalf("expected the computed assignment back")
	}
	if len(sink.created) != 0 {
		t.Fatalf("expected no new record, got %d", len(sink.created))
	}
}

func TestProcessEmailRetriesTransientSinkFailure(t *testing.T) {
	source := &fakeRuleSource{rules: []models.Rule{catchAllRule("U1")}}
	sink := newFakeSink()
	sink.failuresLeft = 1
	s := newTestService(source, sink, &fakeDir{members: map[string]bool{"U1": true}})

	if _, err := s.ProcessEmail(context.Background(), testEmail("m1", "a@b.com")); err != nil {
		t.Fatalf("expected one transient failure to be retried, got %v", err)
	}
	if len(sink.created) != 1 {
		t.Fatalf("expected record written on retry")
	}

	sink.failuresLeft = 2
	if _, err := s.ProcessEmail(context.Background(), testEmail("m2", "a@b.com")); err == nil {
		t.Fatalf("expected failure after exhausting the single retry")
	}
}

func TestProcessEmailRetriesTransientRuleLoadFailure(t *testing.T) {
	source := &fakeRuleSource{rules: []models.Rule{catchAllRule("U1")}, failuresLeft: 1}
	sink := newFakeSink()
	s := newTestService(source, sink, &fakeDir{members: map[string]bool{"U1": true}})

	if _, err := s.ProcessEmail(context.Background(), testEmail("m1", "a@b.com")); err != nil {
		t.Fatalf("expected rule load retry, got %v", err)
	}
	if source.calls != 2 {
		t.Fatalf("expected two load attempts, got %d", source.calls)
	}
}

func TestProcessEmailEmptyPoolLeftUnassigned(t *testing.T) {
	rule := catchAllRule("")
	rule.Actions.Assign = &models.Assign{Kind: models.StrategyRoundRobin}
	rule.Actions.AddTags = []string{"support"}
	source := &fakeRuleSource{rules: []models.Rule{rule}}
	sink := newFakeSink()
	s := newTestService(source, sink, &fakeDir{})

	a, err := s.ProcessEmail(context.Background(), testEmail("m1", "a@b.com"))
	if err != nil {
		t.Fatalf("expected empty pool to be non-fatal, got %v", err)
	}
	if a.AssignedTo != "" {
		t.Fatalf("expected unassigned record, got %q", a.AssignedTo)
	}
	if a.Note == "" {
		t.Fatalf("expected a could-not-assign note")
	}
	if len(a.Tags) != 1 {
		t.Fatalf("expected side effects kept, got %v", a.Tags)
	}
}

func TestProcessEmailRoundRobinDistribution(t *testing.T) {
	rule := catchAllRule("")
	rule.Actions.Assign = &models.Assign{Kind: models.StrategyRoundRobin, Pool: []string{"A", "B", "C"}}
	source := &fakeRuleSource{rules: []models.Rule{rule}}
	sink := newFakeSink()
	s := newTestService(source, sink, &fakeDir{})

	want := []string{"A", "B", "C"}
	for i, expected := range want {
		a, err := s.ProcessEmail(context.Background(), testEmail(fmt.Sprintf("m%d", i), "a@b.com"))
		if err != nil {
			t.Fatalf("email %d: unexpected error: %v", i, err)
		}
		if a.AssignedTo != expected {
			t.Fatalf("email %d: expected %s, got %s", i, expected, a.AssignedTo)
		}
	}
}

func TestPreviewDoesNotWriteOrAdvance(t *testing.T) {
	rule := catchAllRule("")
	rule.Actions.Assign = &models.Assign{Kind: models.StrategyRoundRobin, Pool: []string{"A", "B"}}
	source := &fakeRuleSource{rules: []models.Rule{rule}}
	sink := newFakeSink()
	s := newTestService(source, sink, &fakeDir{})

	for i := 0; i < 3; i++ {
		res, matched, err := s.Preview(context.Background(), testEmail("m1", "a@b.com"))
		if err != nil {
			t.Fatalf("preview %d: unexpected error: %v", i, err)
		}
		if len(matched) != 1 {
			t.Fatalf("preview %d: expected one matched rule", i)
		}
		if res.Assignee != "A" {
			t.Fatalf("preview %d: expected stable assignee A, got %s", i, res.Assignee)
		}
	}
	if len(sink.created) != 0 {
		t.Fatalf("expected preview to write nothing")
	}
}

func TestAssignManually(t *testing.T) {
	sink := newFakeSink()
	s := newTestService(&fakeRuleSource{}, sink, &fakeDir{members: map[string]bool{"U9": true}})

	a, err := s.AssignManually(context.Background(), testEmail("m1", "a@b.com"), "U9", "taking this one")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.AssignedTo != "U9" || a.MatchedRuleID != "" {
		t.Fatalf("unexpected manual assignment: %+v", a)
	}

	// A second assignment for the same email conflicts.
	if _, err := s.AssignManually(context.Background(), testEmail("m1", "a@b.com"), "U9", ""); !errors.Is(err, rules.ErrAlreadyAssigned) {
		t.Fatalf("expected ErrAlreadyAssigned, got %v", err)
	}

	// A user outside the account is rejected.
	if _, err := s.AssignManually(context.Background(), testEmail("m2", "a@b.com"), "stranger", ""); !errors.Is(err, rules.ErrInvalidAssignee) {
		t.Fatalf("expected ErrInvalidAssignee, got %v", err)
	}
}
