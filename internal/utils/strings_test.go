package utils

import "testing"

func TestNormalizeForMatch(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello", "hello"},
		{"  Spaced  ", "spaced"},
		{"Café", "cafe"},
		{"RÉSUMÉ", "resume"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeForMatch(tt.in); got != tt.want {
			t.Errorf("NormalizeForMatch(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDomainOf(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"user@Example.COM", "example.com"},
		{"  user@acme.com  ", "acme.com"},
		{"weird@[corp]@acme.com", "acme.com"},
		{"no-at-sign", ""},
		{"trailing@", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := DomainOf(tt.in); got != tt.want {
			t.Errorf("DomainOf(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeBodyPreview(t *testing.T) {
	got := SanitizeBodyPreview("<p>Hello   <b>world</b></p>\n\nbye", 0)
	if got != "Hello world bye" {
		t.Errorf("expected tags stripped and whitespace collapsed, got %q", got)
	}

	got = SanitizeBodyPreview("abcdefghij", 4)
	if got != "abcd" {
		t.Errorf("expected truncation to 4, got %q", got)
	}

	if got := SanitizeBodyPreview("<script>alert(1)</script>", 0); got != "" {
		t.Errorf("expected script content removed, got %q", got)
	}
}
