package rules

import (
	"log"
	"sort"

	"mailassign-be/internal/models"
)

// SortRules orders rules by (priority ascending, createdAt ascending). The
// sort is stable, so rules sharing both keys keep their incoming order.
func SortRules(rs []models.Rule) []models.Rule {
	sorted := make([]models.Rule, len(rs))
	copy(sorted, rs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority < sorted[j].Priority
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})
	return sorted
}

// Select returns the rules matching the email, in evaluation order.
// Disabled rules are skipped. Malformed rules are skipped with a log line
// but never abort the pass. The result is truncated after the first match
// with StopOnMatch set. An empty result means no rule matched, which is a
// normal outcome, not an error.
func Select(rs []models.Rule, email *models.InboundEmail) []models.Rule {
	var matched []models.Rule
	for _, r := range SortRules(rs) {
		if !r.Enabled {
			continue
		}
		if err := r.Validate(); err != nil {
			log.Printf("rules: skipping malformed rule %s (%s): %v", r.ID.Hex(), r.Name, err)
			continue
		}
		if !Matches(r.Conditions, email) {
			continue
		}
		matched = append(matched, r)
		if r.StopOnMatch {
			break
		}
	}
	return matched
}
