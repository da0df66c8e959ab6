// Package draft keeps server-side attempt sessions between the moment a
// player starts a quiz and the moment the attempt is submitted.
package draft

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/quizcraft/internal/quiz"
)

var (
	ErrNotFound  = errors.New("draft not found")
	ErrSubmitted = errors.New("draft already submitted")
)

// Draft is an attempt in progress. Deadline is zero for untimed quizzes.
type Draft struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user"`
	QuizID       string    `json:"quizId"`
	TimerSeconds int       `json:"timer"`
	StartedAt    time.Time `json:"startedAt"`
	Deadline     time.Time `json:"deadline,omitzero"`
}

// Timed reports whether the draft has a deadline.
func (d *Draft) Timed() bool { return !d.Deadline.IsZero() }

// Remaining returns the countdown seconds left at now, never negative.
func (d *Draft) Remaining(now time.Time) int {
	if !d.Timed() {
		return 0
	}
	return max(int(d.Deadline.Sub(now).Seconds()), 0)
}

// Store persists drafts and their selections. Selections are keyed by
// question index, so a later one for the same question replaces the
// earlier. Claim succeeds for exactly one caller per draft.
type Store interface {
	Create(ctx context.Context, d *Draft) error
	Get(ctx context.Context, id string) (*Draft, error)
	PutSelection(ctx context.Context, id string, sel quiz.Selection) error
	Selections(ctx context.Context, id string) ([]quiz.Selection, error)

	// Claim marks the draft as being submitted. It reports false when
	// another caller got there first.
	Claim(ctx context.Context, id string) (bool, error)

	// Release undoes a Claim whose submission failed, so the draft can be
	// submitted again. A timed draft is rescheduled for Expired.
	Release(ctx context.Context, id string) error

	// Delete removes the draft. Deleting a missing draft is not an error.
	Delete(ctx context.Context, id string) error

	// Expired lists unclaimed timed drafts whose deadline is at or before
	// now.
	Expired(ctx context.Context, now time.Time) ([]string, error)
}
