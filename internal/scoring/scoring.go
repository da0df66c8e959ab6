// Package scoring grades answer records and computes attempt totals.
package scoring

import (
	"sort"

	"github.com/abhisek/quizcraft/internal/answer"
	"github.com/abhisek/quizcraft/internal/quiz"
)

// Result holds the totals for one attempt. Score is a percentage in
// [0, 100].
type Result struct {
	CorrectAnswers int     `json:"correctAnswers"`
	TotalQuestions int     `json:"totalQuestions"`
	Score          float64 `json:"score"`
}

// Tally counts records as already graded. The denominator is the number of
// records, so unanswered questions do not count against the score.
func Tally(records []quiz.AnswerRecord) Result {
	r := Result{TotalQuestions: len(records)}
	for _, rec := range records {
		if rec.IsCorrect {
			r.CorrectAnswers++
		}
	}
	if r.TotalQuestions > 0 {
		r.Score = float64(r.CorrectAnswers) / float64(r.TotalQuestions) * 100
	}
	return r
}

// Grade turns raw selections into answer records against q. A later
// selection for the same question replaces an earlier one; selections
// pointing outside the quiz are ignored. Records are ordered by index.
func Grade(q *quiz.Quiz, selections []quiz.Selection) []quiz.AnswerRecord {
	latest := make(map[int]quiz.Selection, len(selections))
	for _, s := range selections {
		if s.QuestionIndex < 0 || s.QuestionIndex >= len(q.Questions) {
			continue
		}
		latest[s.QuestionIndex] = s
	}

	records := make([]quiz.AnswerRecord, 0, len(latest))
	for idx, s := range latest {
		records = append(records, Record(q.Questions[idx], idx, s.SelectedOption, s.TimeSpentSeconds))
	}
	SortRecords(records)
	return records
}

// Record grades a single selection for question number idx.
func Record(question quiz.Question, idx int, selected string, spent int) quiz.AnswerRecord {
	return quiz.AnswerRecord{
		QuestionIndex:    idx,
		QuestionText:     question.Text,
		SelectedOption:   selected,
		IsCorrect:        answer.IsMatch(selected, answer.ResolveCanonical(question)),
		TimeSpentSeconds: max(spent, 0),
		Difficulty:       question.Difficulty.OrDefault(),
	}
}

// ScoreAttempt grades selections and tallies the result.
func ScoreAttempt(q *quiz.Quiz, selections []quiz.Selection) ([]quiz.AnswerRecord, Result) {
	records := Grade(q, selections)
	return records, Tally(records)
}

// ElapsedSeconds converts a countdown's remaining seconds into time used.
// Untimed quizzes report 0.
func ElapsedSeconds(timerSeconds, remaining int) int {
	if timerSeconds <= 0 {
		return 0
	}
	return min(max(timerSeconds-remaining, 0), timerSeconds)
}

// SortRecords orders records by question index.
func SortRecords(records []quiz.AnswerRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].QuestionIndex < records[j].QuestionIndex
	})
}
