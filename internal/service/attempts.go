package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhisek/quizcraft/internal/events"
	"github.com/abhisek/quizcraft/internal/quiz"
	"github.com/abhisek/quizcraft/internal/scoring"
)

// Submission paths, used as the metrics label and in events.
const (
	PathRegrade = "regrade"
	PathDirect  = "direct"
	PathSession = "session"
)

// Submitted is the outcome of any submission path.
type Submitted struct {
	Attempt        *quiz.Attempt
	NextDifficulty quiz.Difficulty
}

// DirectSubmission is an attempt graded by the client. Score totals sent by
// the client are not part of it; they are always recomputed.
type DirectSubmission struct {
	QuizID           string
	Answers          []quiz.AnswerRecord
	TotalTimeSeconds int
}

// AttemptQuiz grades raw selections against the stored quiz.
func (s *Service) AttemptQuiz(ctx context.Context, userID, quizID string, selections []quiz.Selection, totalTime int) (*Submitted, error) {
	if strings.TrimSpace(quizID) == "" {
		return nil, &quiz.ValidationError{Field: "quiz", Message: "Quiz ID is required"}
	}
	q, err := s.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	records, res := scoring.ScoreAttempt(q, selections)
	a := &quiz.Attempt{
		UserID:           userID,
		QuizID:           q.ID,
		Answers:          records,
		TotalTimeSeconds: max(totalTime, 0),
	}
	return s.saveAttempt(ctx, PathRegrade, q, a, res)
}

// SubmitAttempt stores an attempt whose answers were graded by the client.
// isCorrect is trusted; the totals are recomputed from it.
func (s *Service) SubmitAttempt(ctx context.Context, userID string, in DirectSubmission) (*Submitted, error) {
	if strings.TrimSpace(in.QuizID) == "" {
		return nil, &quiz.ValidationError{Field: "quizId", Message: "Quiz ID is required"}
	}
	if len(in.Answers) == 0 {
		return nil, &quiz.ValidationError{Field: "answers", Message: "Answers are required"}
	}
	q, err := s.GetQuiz(ctx, in.QuizID)
	if err != nil {
		return nil, err
	}

	records := make([]quiz.AnswerRecord, len(in.Answers))
	for i, rec := range in.Answers {
		rec.TimeSpentSeconds = max(rec.TimeSpentSeconds, 0)
		rec.Difficulty = rec.Difficulty.OrDefault()
		records[i] = rec
	}
	scoring.SortRecords(records)

	a := &quiz.Attempt{
		UserID:           userID,
		QuizID:           q.ID,
		Answers:          records,
		TotalTimeSeconds: max(in.TotalTimeSeconds, 0),
	}
	return s.saveAttempt(ctx, PathDirect, q, a, scoring.Tally(records))
}

func (s *Service) saveAttempt(ctx context.Context, path string, q *quiz.Quiz, a *quiz.Attempt, res scoring.Result) (*Submitted, error) {
	a.Score = res.Score
	a.CorrectAnswers = res.CorrectAnswers
	a.TotalQuestions = res.TotalQuestions
	a.NextDifficulty = s.adjuster.Adjust(res.Score)
	if a.Answers == nil {
		a.Answers = []quiz.AnswerRecord{}
	}

	if err := s.attempts.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("save attempt: %w", err)
	}
	a.QuizTitle = q.Title
	a.QuizTopic = q.Topic

	if s.metrics != nil {
		s.metrics.ObserveAttempt(path, a.Score)
	}
	s.publish(ctx, events.AttemptSubmitted, map[string]any{
		"id":             a.ID,
		"user":           a.UserID,
		"quiz":           a.QuizID,
		"score":          a.Score,
		"correctAnswers": a.CorrectAnswers,
		"totalQuestions": a.TotalQuestions,
		"path":           path,
	})
	return &Submitted{Attempt: a, NextDifficulty: a.NextDifficulty}, nil
}
