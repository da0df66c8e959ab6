package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/quizcraft/internal/attempt"
	"github.com/abhisek/quizcraft/internal/draft"
	"github.com/abhisek/quizcraft/internal/quiz"
	"github.com/abhisek/quizcraft/internal/scoring"
)

// ErrSessionClosed is returned when a session was already submitted or
// its countdown has run out.
var ErrSessionClosed = errors.New("session is closed")

// StartSession opens a server-side attempt for userID on quizID. A timed
// quiz gets a deadline after which the reaper submits it.
func (s *Service) StartSession(ctx context.Context, userID, quizID string) (*draft.Draft, error) {
	q, err := s.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	d := &draft.Draft{
		ID:           uuid.NewString(),
		UserID:       userID,
		QuizID:       q.ID,
		TimerSeconds: q.TimerSeconds,
		StartedAt:    now,
	}
	if q.Timed() {
		d.Deadline = now.Add(time.Duration(q.TimerSeconds) * time.Second)
	}
	if err := s.drafts.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if s.metrics != nil {
		s.metrics.ActiveSessions.Inc()
	}
	return d, nil
}

// RecordAnswer stores a selection in a session, replacing any earlier one
// for the same question.
func (s *Service) RecordAnswer(ctx context.Context, userID, sessionID string, sel quiz.Selection) error {
	d, err := s.ownedDraft(ctx, userID, sessionID)
	if err != nil {
		return err
	}
	if d.Timed() && !s.now().Before(d.Deadline) {
		return ErrSessionClosed
	}
	q, err := s.GetQuiz(ctx, d.QuizID)
	if err != nil {
		return err
	}
	if sel.QuestionIndex < 0 || sel.QuestionIndex >= len(q.Questions) {
		return &quiz.ValidationError{Field: "questionIndex", Message: fmt.Sprintf("must be between 0 and %d", len(q.Questions)-1)}
	}
	sel.TimeSpentSeconds = max(sel.TimeSpentSeconds, 0)

	err = s.drafts.PutSelection(ctx, sessionID, sel)
	switch {
	case errors.Is(err, draft.ErrSubmitted):
		return ErrSessionClosed
	case errors.Is(err, draft.ErrNotFound):
		return &quiz.NotFoundError{Resource: "session", ID: sessionID}
	case err != nil:
		return fmt.Errorf("record answer: %w", err)
	}
	return nil
}

// SubmitSession grades and stores the session's selections. It succeeds
// once per session; later calls return ErrSessionClosed.
func (s *Service) SubmitSession(ctx context.Context, userID, sessionID string) (*Submitted, error) {
	d, err := s.ownedDraft(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	return s.finalize(ctx, d)
}

// Reap submits every timed session whose deadline has passed and returns
// how many were stored.
func (s *Service) Reap(ctx context.Context) (int, error) {
	ids, err := s.drafts.Expired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("list expired sessions: %w", err)
	}
	n := 0
	for _, id := range ids {
		d, err := s.drafts.Get(ctx, id)
		if errors.Is(err, draft.ErrNotFound) {
			// The draft outlived its store TTL; drop the stale schedule entry.
			if derr := s.drafts.Delete(ctx, id); derr != nil {
				s.log.WarnContext(ctx, "forget expired session", "session", id, "error", derr)
			}
			continue
		}
		if err != nil {
			s.log.WarnContext(ctx, "load expired session", "session", id, "error", err)
			continue
		}
		sub, err := s.finalize(ctx, d)
		if errors.Is(err, ErrSessionClosed) {
			continue
		}
		if err != nil {
			s.log.WarnContext(ctx, "auto-submit session", "session", id, "error", err)
			continue
		}
		s.log.InfoContext(ctx, "auto-submitted session",
			"session", id, "attempt", sub.Attempt.ID, "answered", sub.Attempt.TotalQuestions)
		n++
	}
	return n, nil
}

// Reaper returns a stopped ticker that runs Reap every interval.
func (s *Service) Reaper(interval time.Duration) *attempt.Ticker {
	return attempt.NewTicker(interval, func() {
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		defer cancel()
		if _, err := s.Reap(ctx); err != nil {
			s.log.Warn("reap sessions", "error", err)
		}
	})
}

func (s *Service) ownedDraft(ctx context.Context, userID, id string) (*draft.Draft, error) {
	d, err := s.drafts.Get(ctx, id)
	if errors.Is(err, draft.ErrNotFound) {
		return nil, &quiz.NotFoundError{Resource: "session", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if d.UserID != userID {
		return nil, &quiz.OwnershipError{Resource: "session", ID: id}
	}
	return d, nil
}

// finalize claims the draft, so only one of a manual submit and the
// reaper ever stores an attempt for it. The claimed draft is left to
// expire in the store. If the attempt cannot be stored the claim is
// released and the session stays open.
func (s *Service) finalize(ctx context.Context, d *draft.Draft) (*Submitted, error) {
	ok, err := s.drafts.Claim(ctx, d.ID)
	if errors.Is(err, draft.ErrNotFound) {
		return nil, ErrSessionClosed
	}
	if err != nil {
		return nil, fmt.Errorf("claim session: %w", err)
	}
	if !ok {
		return nil, ErrSessionClosed
	}
	if s.metrics != nil {
		s.metrics.ActiveSessions.Dec()
	}

	q, err := s.GetQuiz(ctx, d.QuizID)
	var nf *quiz.NotFoundError
	switch {
	case errors.As(err, &nf):
		// The quiz was deleted mid-session; nothing can be graded.
		if derr := s.drafts.Delete(ctx, d.ID); derr != nil {
			s.log.WarnContext(ctx, "delete session", "session", d.ID, "error", derr)
		}
		return nil, err
	case err != nil:
		s.release(ctx, d.ID)
		return nil, err
	}
	selections, err := s.drafts.Selections(ctx, d.ID)
	if err != nil {
		s.release(ctx, d.ID)
		return nil, fmt.Errorf("load selections: %w", err)
	}

	records, res := scoring.ScoreAttempt(q, selections)
	a := &quiz.Attempt{
		UserID:           d.UserID,
		QuizID:           q.ID,
		Answers:          records,
		TotalTimeSeconds: scoring.ElapsedSeconds(d.TimerSeconds, d.Remaining(s.now())),
	}
	sub, err := s.saveAttempt(ctx, PathSession, q, a, res)
	if err != nil {
		s.release(ctx, d.ID)
		return nil, err
	}
	return sub, nil
}

func (s *Service) release(ctx context.Context, id string) {
	if err := s.drafts.Release(ctx, id); err != nil {
		s.log.WarnContext(ctx, "release session claim", "session", id, "error", err)
		return
	}
	if s.metrics != nil {
		s.metrics.ActiveSessions.Inc()
	}
}
