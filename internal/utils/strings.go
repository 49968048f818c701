package utils

import (
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Transformer chain to remove accents
var accentFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeForMatch lowercases, trims and accent-folds a string so that
// substring matching is insensitive to case and diacritics. Applied to both
// sides of every comparison, so folding never breaks an exact match.
func NormalizeForMatch(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if folded, _, err := transform.String(accentFold, s); err == nil {
		s = folded
	}
	return s
}

// DomainOf returns the lowercased domain part of an email address, or ""
// when the address has no "@".
func DomainOf(address string) string {
	address = strings.TrimSpace(address)
	at := strings.LastIndex(address, "@")
	if at < 0 || at == len(address)-1 {
		return ""
	}
	return strings.ToLower(address[at+1:])
}

// SanitizeBodyPreview strips HTML tags from a raw body and collapses
// whitespace, producing the plain-text preview stored on inbound emails.
func SanitizeBodyPreview(s string, maxLen int) string {
	p := bluemonday.StripTagsPolicy()
	s = p.Sanitize(s)
	s = strings.Join(strings.Fields(s), " ")
	if maxLen > 0 && len(s) > maxLen {
		s = s[:maxLen]
	}
	return strings.TrimSpace(s)
}
