// Package questions implements the question store and its HTTP handlers.
package questions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/askstage/backend/internal/models"
)

var (
	// ErrNotFound is returned when no question has the given id.
	ErrNotFound = errors.New("question not found")
	// ErrEmptyText is returned when the question text is empty after normalization.
	ErrEmptyText = errors.New("question text is empty")
)

const (
	maxTextLen = 500
	idAlphabet = "abcdefghijkmnopqrstuvwxyz0123456789"
	idLength   = 8
)

// Store persists questions. Every mutating operation persists the updated
// state before returning; callers must not broadcast a state the store
// failed to save.
type Store interface {
	// ListBySpeaker returns the speaker's questions ordered by votes
	// descending, then createdAt descending among equal votes.
	ListBySpeaker(ctx context.Context, speaker string) ([]models.Question, error)
	// Create validates and stores a new question with approved=false, votes=0.
	Create(ctx context.Context, speaker, text string) (*models.Question, error)
	// SetApproved replaces the approved flag. Idempotent.
	SetApproved(ctx context.Context, id string, approved bool) (*models.Question, error)
	// IncrementVotes applies delta and clamps the result at zero, so a
	// decrement on a zero-vote question succeeds without effect.
	IncrementVotes(ctx context.Context, id string, delta int) (*models.Question, error)
	// Delete removes the question and returns the removed record.
	Delete(ctx context.Context, id string) (*models.Question, error)
}

// newQuestionID generates an id like "q_x7k2m9ab".
func newQuestionID() (string, error) {
	suffix, err := gonanoid.Generate(idAlphabet, idLength)
	if err != nil {
		return "", fmt.Errorf("generate question id: %w", err)
	}
	return "q_" + suffix, nil
}

// normalizeText truncates to the length cap and then trims whitespace.
// The cap is counted in runes so truncation never splits a character.
func normalizeText(text string) (string, error) {
	if runes := []rune(text); len(runes) > maxTextLen {
		text = string(runes[:maxTextLen])
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyText
	}
	return text, nil
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
