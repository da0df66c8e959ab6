// Package analytics summarizes a user's attempts. Reports are derived on
// demand and never stored.
package analytics

import (
	"sort"

	"github.com/abhisek/quizcraft/internal/quiz"
)

// Summary holds the headline numbers.
type Summary struct {
	TotalAttempts int     `json:"totalAttempts"`
	AvgScore      float64 `json:"avgScore"`
}

// Summarize counts attempts and averages their scores. The average of no
// attempts is 0.
func Summarize(attempts []quiz.Attempt) Summary {
	s := Summary{TotalAttempts: len(attempts)}
	if len(attempts) == 0 {
		return s
	}
	var total float64
	for _, a := range attempts {
		total += a.Score
	}
	s.AvgScore = total / float64(len(attempts))
	return s
}

// Best returns the highest scoring attempt, the earliest one on a tie.
func Best(attempts []quiz.Attempt) *quiz.Attempt {
	if len(attempts) == 0 {
		return nil
	}
	best := 0
	for i := 1; i < len(attempts); i++ {
		if attempts[i].Score > attempts[best].Score {
			best = i
		}
	}
	a := attempts[best]
	return &a
}

// MostRecent returns the attempt with the latest CreatedAt. On a tie the
// one later in the slice wins.
func MostRecent(attempts []quiz.Attempt) *quiz.Attempt {
	if len(attempts) == 0 {
		return nil
	}
	latest := 0
	for i := 1; i < len(attempts); i++ {
		if !attempts[i].CreatedAt.Before(attempts[latest].CreatedAt) {
			latest = i
		}
	}
	a := attempts[latest]
	return &a
}

// TopicStats aggregates attempts on quizzes sharing a topic.
type TopicStats struct {
	Topic    string  `json:"topic"`
	Attempts int     `json:"attempts"`
	AvgScore float64 `json:"avgScore"`
}

// ByTopic groups attempts by quiz topic, sorted by attempt count then
// topic name. Attempts without a topic are grouped under "".
func ByTopic(attempts []quiz.Attempt) []TopicStats {
	idx := make(map[string]int)
	var stats []TopicStats
	for _, a := range attempts {
		i, ok := idx[a.QuizTopic]
		if !ok {
			i = len(stats)
			idx[a.QuizTopic] = i
			stats = append(stats, TopicStats{Topic: a.QuizTopic})
		}
		stats[i].Attempts++
		stats[i].AvgScore += a.Score
	}
	for i := range stats {
		stats[i].AvgScore /= float64(stats[i].Attempts)
	}
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].Attempts != stats[j].Attempts {
			return stats[i].Attempts > stats[j].Attempts
		}
		return stats[i].Topic < stats[j].Topic
	})
	return stats
}

// Report is the analytics view returned to a user.
type Report struct {
	TotalAttempts int            `json:"totalAttempts"`
	AvgScore      float64        `json:"avgScore"`
	BestScore     float64        `json:"bestScore"`
	Best          *quiz.Attempt  `json:"best"`
	MostRecent    *quiz.Attempt  `json:"mostRecent"`
	Topics        []TopicStats   `json:"topics"`
	Attempts      []quiz.Attempt `json:"attempts"`
}

// BuildReport assembles the full report for one user's attempts.
func BuildReport(attempts []quiz.Attempt) Report {
	s := Summarize(attempts)
	r := Report{
		TotalAttempts: s.TotalAttempts,
		AvgScore:      s.AvgScore,
		Best:          Best(attempts),
		MostRecent:    MostRecent(attempts),
		Topics:        ByTopic(attempts),
		Attempts:      attempts,
	}
	if r.Best != nil {
		r.BestScore = r.Best.Score
	}
	if r.Attempts == nil {
		r.Attempts = []quiz.Attempt{}
	}
	if r.Topics == nil {
		r.Topics = []TopicStats{}
	}
	return r
}
