// Package service implements the quiz use cases on top of the core
// scoring packages and the persistence, messaging and metrics adapters.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abhisek/quizcraft/internal/analytics"
	"github.com/abhisek/quizcraft/internal/difficulty"
	"github.com/abhisek/quizcraft/internal/draft"
	"github.com/abhisek/quizcraft/internal/events"
	"github.com/abhisek/quizcraft/internal/metrics"
	"github.com/abhisek/quizcraft/internal/questiongen"
	"github.com/abhisek/quizcraft/internal/quiz"
	"github.com/abhisek/quizcraft/internal/store"
)

// ErrGenerationDisabled is returned by Generate when no generator is set.
var ErrGenerationDisabled = errors.New("question generation is not configured")

// Deps are the collaborators of a Service. Only Quizzes and Attempts are
// required.
type Deps struct {
	Quizzes   store.QuizRepo
	Attempts  store.AttemptRepo
	Drafts    draft.Store
	Generator questiongen.Generator
	Publisher events.Publisher
	Metrics   *metrics.Metrics
	Adjuster  *difficulty.Adjuster
	Log       *slog.Logger
}

// Service is safe for concurrent use.
type Service struct {
	quizzes   store.QuizRepo
	attempts  store.AttemptRepo
	drafts    draft.Store
	generator questiongen.Generator
	publisher events.Publisher
	metrics   *metrics.Metrics
	adjuster  *difficulty.Adjuster
	log       *slog.Logger
	now       func() time.Time
}

// New builds a Service, filling unset optional collaborators with
// in-process defaults.
func New(d Deps) *Service {
	s := &Service{
		quizzes:   d.Quizzes,
		attempts:  d.Attempts,
		drafts:    d.Drafts,
		generator: d.Generator,
		publisher: d.Publisher,
		metrics:   d.Metrics,
		adjuster:  d.Adjuster,
		log:       d.Log,
		now:       time.Now,
	}
	if s.drafts == nil {
		s.drafts = draft.NewMemoryStore()
	}
	if s.publisher == nil {
		s.publisher = events.NopPublisher{}
	}
	if s.adjuster == nil {
		s.adjuster = difficulty.New(difficulty.DefaultThresholds())
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	return s
}

// Generate asks the configured generator for questions on a topic.
func (s *Service) Generate(ctx context.Context, in questiongen.GenerateInput) (*questiongen.Result, error) {
	if s.generator == nil {
		return nil, ErrGenerationDisabled
	}
	res, err := s.generator.Generate(ctx, in)
	switch {
	case err != nil:
		s.countGeneration("error")
		return nil, err
	case len(res.Questions) == 0:
		s.countGeneration("empty")
	default:
		s.countGeneration("ok")
	}
	if res.Dropped > 0 {
		s.log.InfoContext(ctx, "dropped malformed questions",
			"topic", in.Topic, "candidates", res.Candidates, "dropped", res.Dropped)
	}
	return res, nil
}

// CreateQuiz validates and stores a quiz owned by userID.
func (s *Service) CreateQuiz(ctx context.Context, userID string, q *quiz.Quiz) (*quiz.Quiz, error) {
	q.Title = strings.TrimSpace(q.Title)
	q.Topic = strings.TrimSpace(q.Topic)
	if err := quiz.Validate(q); err != nil {
		return nil, err
	}
	q.ID = ""
	q.OwnerID = userID
	q.CreatedAt = time.Time{}
	if err := s.quizzes.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("save quiz: %w", err)
	}
	if s.metrics != nil {
		s.metrics.QuizzesCreated.Inc()
	}
	s.publish(ctx, events.QuizCreated, map[string]any{
		"id": q.ID, "user": q.OwnerID, "title": q.Title, "topic": q.Topic, "questions": len(q.Questions),
	})
	return q, nil
}

// ListMyQuizzes returns the user's quizzes, newest first.
func (s *Service) ListMyQuizzes(ctx context.Context, userID string) ([]quiz.Quiz, error) {
	qs, err := s.quizzes.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	if qs == nil {
		qs = []quiz.Quiz{}
	}
	return qs, nil
}

// GetQuiz returns one quiz regardless of owner.
func (s *Service) GetQuiz(ctx context.Context, id string) (*quiz.Quiz, error) {
	q, err := s.quizzes.Get(ctx, id)
	if err != nil {
		return nil, translate(err, "quiz", id)
	}
	return q, nil
}

// DeleteQuiz removes a quiz owned by userID. Attempts on it are kept.
func (s *Service) DeleteQuiz(ctx context.Context, userID, id string) error {
	if err := s.quizzes.Delete(ctx, id, userID); err != nil {
		return translate(err, "quiz", id)
	}
	s.publish(ctx, events.QuizDeleted, map[string]any{"id": id, "user": userID})
	return nil
}

// Analytics builds the report over the user's own attempts.
func (s *Service) Analytics(ctx context.Context, userID string) (analytics.Report, error) {
	attempts, err := s.attempts.ListByUser(ctx, userID)
	if err != nil {
		return analytics.Report{}, fmt.Errorf("list attempts: %w", err)
	}
	return analytics.BuildReport(attempts), nil
}

// DeleteAttempt removes an attempt owned by userID.
func (s *Service) DeleteAttempt(ctx context.Context, userID, id string) error {
	if err := s.attempts.Delete(ctx, id, userID); err != nil {
		return translate(err, "attempt", id)
	}
	s.publish(ctx, events.AttemptDeleted, map[string]any{"id": id, "user": userID})
	return nil
}

// translate maps repository sentinels onto domain errors.
func translate(err error, resource, id string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return &quiz.NotFoundError{Resource: resource, ID: id}
	case errors.Is(err, store.ErrNotOwner):
		return &quiz.OwnershipError{Resource: resource, ID: id}
	default:
		return fmt.Errorf("%s %s: %w", resource, id, err)
	}
}

func (s *Service) publish(ctx context.Context, t events.Type, payload any) {
	if err := s.publisher.Publish(ctx, events.New(t, payload)); err != nil {
		s.log.WarnContext(ctx, "publish event", "type", t, "error", err)
		if s.metrics != nil {
			s.metrics.EventFailures.Inc()
		}
	}
}

func (s *Service) countGeneration(status string) {
	if s.metrics != nil {
		s.metrics.Generations.WithLabelValues(status).Inc()
	}
}
