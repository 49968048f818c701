package rules

import (
	"testing"
	"time"

	"mailassign-be/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func makeRule(name string, priority int, createdAt time.Time) models.Rule {
	return models.Rule{
		ID:        primitive.NewObjectID(),
		AccountID: "acct-1",
		Name:      name,
		Priority:  priority,
		Enabled:   true,
		CreatedAt: createdAt,
	}
}

func ruleNames(rs []models.Rule) []string {
	names := make([]string, len(rs))
	for i, r := range rs {
		names[i] = r.Name
	}
	return names
}

func TestSortRulesByPriorityThenCreation(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rs := []models.Rule{
		makeRule("late-low", 5, t0.Add(2*time.Hour)),
		makeRule("early-low", 5, t0),
		makeRule("high", 1, t0.Add(time.Hour)),
	}

	got := ruleNames(SortRules(rs))
	want := []string{"high", "early-low", "late-low"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestSortRulesUnrelatedFieldDoesNotChangeOrder(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	a := makeRule("a", 2, t0)
	b := makeRule("b", 2, t0.Add(time.Minute))

	before := ruleNames(SortRules([]models.Rule{a, b}))

	// Changing name, description and stopOnMatch must not affect order.
	a.Name = "zzz"
	a.Description = "changed"
	a.StopOnMatch = true
	after := SortRules([]models.Rule{a, b})
	if after[0].ID != a.ID || after[1].ID != b.ID {
		t.Fatalf("expected order unchanged, before=%v after=%v", before, ruleNames(after))
	}
}

func TestSelectSkipsDisabledRules(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	disabled := makeRule("disabled", 1, t0)
	disabled.Enabled = false
	enabled := makeRule("enabled", 2, t0)

	matched := Select([]models.Rule{disabled, enabled}, email("x", "a@b.com", ""))
	if len(matched) != 1 || matched[0].Name != "enabled" {
		t.Fatalf("expected only the enabled rule, got %v", ruleNames(matched))
	}
}

func TestSelectStopOnMatchTruncates(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	first := makeRule("first", 1, t0)
	first.StopOnMatch = true
	second := makeRule("second", 2, t0)

	matched := Select([]models.Rule{second, first}, email("x", "a@b.com", ""))
	if len(matched) != 1 || matched[0].Name != "first" {
		t.Fatalf("expected stopOnMatch to truncate, got %v", ruleNames(matched))
	}
}

func TestSelectNonMatchingStopRuleDoesNotTruncate(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	stopper := makeRule("stopper", 1, t0)
	stopper.StopOnMatch = true
	stopper.Conditions = models.Conditions{FromDomain: []string{"vip.com"}}
	catchAll := makeRule("catch-all", 99, t0)

	matched := Select([]models.Rule{stopper, catchAll}, email("x", "a@other.com", ""))
	if len(matched) != 1 || matched[0].Name != "catch-all" {
		t.Fatalf("expected non-matching stop rule to be passed over, got %v", ruleNames(matched))
	}
}

func TestSelectSkipsMalformedRuleAndContinues(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	malformed := makeRule("malformed", 1, t0)
	malformed.Actions.Assign = &models.Assign{Kind: models.StrategyUser} // missing user id
	healthy := makeRule("healthy", 2, t0)

	matched := Select([]models.Rule{malformed, healthy}, email("x", "a@b.com", ""))
	if len(matched) != 1 || matched[0].Name != "healthy" {
		t.Fatalf("expected malformed rule skipped, got %v", ruleNames(matched))
	}
}

func TestSelectNoMatchReturnsEmpty(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	r := makeRule("picky", 1, t0)
	r.Conditions = models.Conditions{FromDomain: []string{"vip.com"}}

	matched := Select([]models.Rule{r}, email("x", "a@other.com", ""))
	if len(matched) != 0 {
		t.Fatalf("expected no matches, got %v", ruleNames(matched))
	}
}

func TestSelectCollectsMultipleMatchesInOrder(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rs := []models.Rule{
		makeRule("third", 3, t0),
		makeRule("first", 1, t0),
		makeRule("second", 2, t0),
	}

	matched := Select(rs, email("x", "a@b.com", ""))
	want := []string{"first", "second", "third"}
	if len(matched) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matched))
	}
	for i := range want {
		if matched[i].Name != want[i] {
			t.Fatalf("expected order %v, got %v", want, ruleNames(matched))
		}
	}
}
