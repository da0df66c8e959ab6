package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizcraft/internal/quiz"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func attempt(id string, score float64, at time.Duration, topic string) quiz.Attempt {
	return quiz.Attempt{ID: id, Score: score, CreatedAt: base.Add(at), QuizTopic: topic}
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))

	s := Summarize([]quiz.Attempt{attempt("a", 80, 0, ""), attempt("b", 100, 0, "")})
	assert.Equal(t, 2, s.TotalAttempts)
	assert.InDelta(t, 90.0, s.AvgScore, 0.001)
}

func TestBest(t *testing.T) {
	assert.Nil(t, Best(nil))

	got := Best([]quiz.Attempt{
		attempt("a", 60, 0, ""),
		attempt("b", 90, time.Minute, ""),
		attempt("c", 90, 2*time.Minute, ""),
	})
	require.NotNil(t, got)
	assert.Equal(t, "b", got.ID, "first attempt wins a tie")
}

func TestMostRecent(t *testing.T) {
	assert.Nil(t, MostRecent(nil))

	got := MostRecent([]quiz.Attempt{
		attempt("a", 60, time.Hour, ""),
		attempt("b", 90, 0, ""),
		attempt("c", 10, time.Hour, ""),
	})
	require.NotNil(t, got)
	assert.Equal(t, "c", got.ID, "later position wins a tie")
}

func TestByTopic(t *testing.T) {
	stats := ByTopic([]quiz.Attempt{
		attempt("a", 50, 0, "history"),
		attempt("b", 100, 0, "math"),
		attempt("c", 70, 0, "history"),
		attempt("d", 20, 0, "art"),
	})
	require.Len(t, stats, 3)
	assert.Equal(t, "history", stats[0].Topic)
	assert.Equal(t, 2, stats[0].Attempts)
	assert.InDelta(t, 60.0, stats[0].AvgScore, 0.001)
	assert.Equal(t, "art", stats[1].Topic)
	assert.Equal(t, "math", stats[2].Topic)
}

func TestBuildReport(t *testing.T) {
	empty := BuildReport(nil)
	assert.Equal(t, 0, empty.TotalAttempts)
	assert.Zero(t, empty.AvgScore)
	assert.Zero(t, empty.BestScore)
	assert.Nil(t, empty.Best)
	assert.NotNil(t, empty.Attempts)

	attempts := []quiz.Attempt{
		attempt("a", 80, 0, "math"),
		attempt("b", 100, -time.Hour, "math"),
	}
	r := BuildReport(attempts)
	assert.Equal(t, 2, r.TotalAttempts)
	assert.InDelta(t, 90.0, r.AvgScore, 0.001)
	assert.Equal(t, 100.0, r.BestScore)
	assert.Equal(t, "b", r.Best.ID)
	assert.Equal(t, "a", r.MostRecent.ID)
	assert.Len(t, r.Attempts, 2)
}
