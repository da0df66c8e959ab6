package store

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/quizcraft/internal/quiz"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNotOwner is returned when a caller deletes a record it does not own.
	ErrNotOwner = errors.New("not owner")
)

// QuizRepo persists quizzes.
type QuizRepo interface {
	// Create stores q, assigning an ID and creation time when unset.
	Create(ctx context.Context, q *quiz.Quiz) error

	// ListByOwner returns the owner's quizzes, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]quiz.Quiz, error)

	Get(ctx context.Context, id string) (*quiz.Quiz, error)

	// Delete removes the quiz if ownerID owns it.
	Delete(ctx context.Context, id, ownerID string) error
}

// AttemptRepo persists submitted attempts.
type AttemptRepo interface {
	// Create stores a, assigning an ID and creation time when unset.
	Create(ctx context.Context, a *quiz.Attempt) error

	// ListByUser returns the user's attempts, newest first, with the quiz
	// title and topic joined in. Attempts whose quiz was deleted keep empty
	// title and topic.
	ListByUser(ctx context.Context, userID string) ([]quiz.Attempt, error)

	Get(ctx context.Context, id string) (*quiz.Attempt, error)

	// Delete removes the attempt if userID owns it.
	Delete(ctx context.Context, id, userID string) error
}

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // id > After
	Before  int64     // id < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose string    // exact match when set
}

// LLMEvent is one recorded call to a model provider.
type LLMEvent struct {
	ID           int64
	Timestamp    time.Time
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMUsage aggregates events sharing a purpose or model.
type LLMUsage struct {
	Key          string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo records and queries LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, ev LLMEvent) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns one event or ErrNotFound.
	GetLLMEvent(ctx context.Context, id int64) (*LLMEvent, error)

	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}

// Backend bundles the repositories of one persistence implementation.
type Backend interface {
	Quizzes() QuizRepo
	Attempts() AttemptRepo
	EventRepo() EventRepo
	Ping(ctx context.Context) error
	Close() error
}
