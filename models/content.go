package models

import (
	"strings"

	"github.com/google/uuid"
)

// Content is an immutable wrapper around user-submitted text.
type Content struct {
	text               string
	requiresModeration bool
}

// NewContent wraps raw text and derives whether it carries enough signal
// to be worth moderating.
func NewContent(text string) Content {
	trimmed := strings.TrimSpace(text)
	return Content{
		text:               text,
		requiresModeration: len([]rune(trimmed)) >= 2,
	}
}

// Text returns the raw string.
func (c Content) Text() string { return c.text }

// RequiresModeration reports whether the text should enter the pipeline at all.
func (c Content) RequiresModeration() bool { return c.requiresModeration }

// AuthorRef identifies the author of a piece of content.
// The zero value is a valid sentinel meaning "unknown author".
type AuthorRef struct {
	id uuid.UUID
}

// NewAuthorRef creates a reference with a fresh random identity.
func NewAuthorRef() AuthorRef {
	return AuthorRef{id: uuid.New()}
}

// ParseAuthorRef parses a UUID string. Blank input yields the unknown-author
// sentinel without error.
func ParseAuthorRef(s string) (AuthorRef, error) {
	if strings.TrimSpace(s) == "" {
		return AuthorRef{}, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return AuthorRef{}, err
	}
	return AuthorRef{id: id}, nil
}

// IsZero reports whether the author is unknown.
func (a AuthorRef) IsZero() bool { return a.id == uuid.Nil }

// String returns the canonical UUID form, or "" for an unknown author.
func (a AuthorRef) String() string {
	if a.id == uuid.Nil {
		return ""
	}
	return a.id.String()
}
