package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/abhisek/quizcraft/internal/analytics"
	"github.com/abhisek/quizcraft/internal/quiz"
)

func TestPrintReportEmpty(t *testing.T) {
	var out bytes.Buffer
	printReport(&out, analytics.BuildReport(nil), 10)
	assert.Equal(t, "No attempts recorded yet.\n", out.String())
}

func TestPrintReport(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	attempts := []quiz.Attempt{
		{ID: "a2", QuizID: "q1", QuizTitle: "Capitals", QuizTopic: "geography", Score: 100, CorrectAnswers: 2, TotalQuestions: 2, CreatedAt: now},
		{ID: "a1", QuizID: "q9", Score: 50, CorrectAnswers: 1, TotalQuestions: 2, CreatedAt: now.Add(-time.Hour)},
	}

	var out bytes.Buffer
	printReport(&out, analytics.BuildReport(attempts), 1)
	s := out.String()

	assert.Contains(t, s, "Attempts:    2")
	assert.Contains(t, s, "Average:     75.0%")
	assert.Contains(t, s, "Best:        100.0% on Capitals")
	assert.Contains(t, s, "geography")
	assert.Contains(t, s, "(deleted quiz)")
	assert.Contains(t, s, "Capitals")
	assert.NotContains(t, s, "q9", "limit applies to the recent list")
}

func TestTitleOr(t *testing.T) {
	assert.Equal(t, "Capitals", titleOr("Capitals", "q1"))
	assert.Equal(t, "q1", titleOr("", "q1"))
}
