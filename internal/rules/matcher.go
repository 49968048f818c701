package rules

import (
	"strings"
	"time"

	"mailassign-be/internal/models"
	"mailassign-be/internal/utils"
)

// Matches evaluates one rule's condition set against one email. Populated
// categories are ANDed; entries within a category are ORed. An empty
// category is no constraint, so a rule with no conditions at all matches
// every email (catch-all). Missing email fields behave as empty strings.
func Matches(cond models.Conditions, email *models.InboundEmail) bool {
	if email == nil {
		email = &models.InboundEmail{}
	}

	if !anySubstring(cond.SubjectContains, email.Subject) {
		return false
	}
	if !anySubstring(cond.BodyContains, email.BodyPreview) {
		return false
	}
	if !anyExact(cond.FromEmail, strings.ToLower(strings.TrimSpace(email.From.Email))) {
		return false
	}
	if !anyExact(cond.FromDomain, utils.DomainOf(email.From.Email)) {
		return false
	}
	if cond.TimeOfDay != nil && !inWindow(cond.TimeOfDay, email.ReceivedAt) {
		return false
	}
	return true
}

// anySubstring reports whether any non-blank pattern occurs in haystack,
// case- and accent-insensitively. A list with only blank entries is treated
// as unconstrained.
func anySubstring(patterns []string, haystack string) bool {
	constrained := false
	normalized := utils.NormalizeForMatch(haystack)
	for _, p := range patterns {
		p = utils.NormalizeForMatch(p)
		if p == "" {
			continue
		}
		constrained = true
		if strings.Contains(normalized, p) {
			return true
		}
	}
	return !constrained
}

func anyExact(values []string, target string) bool {
	constrained := false
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		constrained = true
		if v == target {
			return true
		}
	}
	return !constrained
}

// inWindow reports whether receivedAt falls inside the daily window,
// evaluated in the window's timezone (UTC when unset or unknown). A window
// whose start is after its end spans midnight.
func inWindow(w *models.TimeWindow, receivedAt time.Time) bool {
	start, okStart := parseClock(w.Start)
	end, okEnd := parseClock(w.End)
	if !okStart || !okEnd {
		return false
	}

	loc := time.UTC
	if w.Timezone != "" {
		if l, err := time.LoadLocation(w.Timezone); err == nil {
			loc = l
		}
	}

	local := receivedAt.In(loc)
	minute := local.Hour()*60 + local.Minute()

	if start <= end {
		return minute >= start && minute <= end
	}
	return minute >= start || minute <= end
}

// parseClock parses "HH:MM" into minutes since midnight.
func parseClock(s string) (int, bool) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}
