package models

import "testing"

func TestNewContentRequiresModeration(t *testing.T) {
	if NewContent("").RequiresModeration() {
		t.Fatalf("empty text must not require moderation")
	}
	if NewContent("   ").RequiresModeration() {
		t.Fatalf("whitespace must not require moderation")
	}
	if NewContent("x").RequiresModeration() {
		t.Fatalf("single rune must not require moderation")
	}
	if !NewContent("hi").RequiresModeration() {
		t.Fatalf("two runes must require moderation")
	}
}

func TestContentTextRoundTrip(t *testing.T) {
	c := NewContent("  raw text  ")
	if c.Text() != "  raw text  " {
		t.Fatalf("text must be preserved verbatim: %q", c.Text())
	}
}

func TestParseAuthorRef(t *testing.T) {
	a, err := ParseAuthorRef("")
	if err != nil || !a.IsZero() {
		t.Fatalf("blank input must yield zero ref: %v %v", a, err)
	}
	if a.String() != "" {
		t.Fatalf("zero ref must stringify to empty")
	}

	if _, err := ParseAuthorRef("not-a-uuid"); err == nil {
		t.Fatalf("expected parse error")
	}

	fresh := NewAuthorRef()
	parsed, err := ParseAuthorRef(fresh.String())
	if err != nil || parsed != fresh {
		t.Fatalf("round trip failed: %v %v", parsed, err)
	}
	if parsed.IsZero() {
		t.Fatalf("fresh ref must not be zero")
	}
}
