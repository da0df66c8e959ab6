package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/quizcraft/internal/quiz"
)

// attemptRepo implements AttemptRepo on SQLite.
type attemptRepo struct {
	drv *entsql.Driver
}

var attemptColumns = []string{
	"id", "user_id", "quiz_id", "score", "correct_answers", "total_questions",
	"answers", "total_time_seconds", "next_difficulty", "created_at",
}

func (r *attemptRepo) Create(ctx context.Context, a *quiz.Attempt) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if a.Answers == nil {
		a.Answers = []quiz.AnswerRecord{}
	}
	answers, err := json.Marshal(a.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}

	query, args := builder().Insert("attempts").
		Columns(attemptColumns...).
		Values(a.ID, a.UserID, a.QuizID, a.Score, a.CorrectAnswers, a.TotalQuestions,
			string(answers), a.TotalTimeSeconds, string(a.NextDifficulty), a.CreatedAt.UnixNano()).
		Query()
	var res sql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

// selectAttempts returns a selector over attempts left-joined with their
// quiz, so deleted quizzes still list.
func selectAttempts() *entsql.Selector {
	b := builder()
	a := b.Table("attempts")
	q := b.Table("quizzes")

	cols := make([]string, 0, len(attemptColumns)+2)
	for _, c := range attemptColumns {
		cols = append(cols, a.C(c))
	}
	cols = append(cols, q.C("title"), q.C("topic"))

	return b.Select(cols...).
		From(a).
		LeftJoin(q).
		On(a.C("quiz_id"), q.C("id"))
}

func (r *attemptRepo) ListByUser(ctx context.Context, userID string) ([]quiz.Attempt, error) {
	sel := selectAttempts()
	sel.Where(entsql.EQ(sel.C("user_id"), userID)).
		OrderBy(entsql.Desc(sel.C("created_at")))
	return r.query(ctx, sel)
}

func (r *attemptRepo) Get(ctx context.Context, id string) (*quiz.Attempt, error) {
	sel := selectAttempts()
	sel.Where(entsql.EQ(sel.C("id"), id)).Limit(1)
	attempts, err := r.query(ctx, sel)
	if err != nil {
		return nil, err
	}
	if len(attempts) == 0 {
		return nil, ErrNotFound
	}
	return &attempts[0], nil
}

func (r *attemptRepo) Delete(ctx context.Context, id, userID string) error {
	a, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if a.UserID != userID {
		return ErrNotOwner
	}
	return deleteByID(ctx, r.drv, "attempts", id)
}

func (r *attemptRepo) query(ctx context.Context, sel *entsql.Selector) ([]quiz.Attempt, error) {
	query, args := sel.Query()
	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var out []quiz.Attempt
	for rows.Next() {
		var (
			a            quiz.Attempt
			answers      string
			next         string
			created      int64
			title, topic sql.NullString
		)
		err := rows.Scan(&a.ID, &a.UserID, &a.QuizID, &a.Score, &a.CorrectAnswers, &a.TotalQuestions,
			&answers, &a.TotalTimeSeconds, &next, &created, &title, &topic)
		if err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		if err := json.Unmarshal([]byte(answers), &a.Answers); err != nil {
			return nil, fmt.Errorf("decode answers of attempt %s: %w", a.ID, err)
		}
		a.NextDifficulty = quiz.Difficulty(next)
		a.CreatedAt = time.Unix(0, created).UTC()
		a.QuizTitle = title.String
		a.QuizTopic = topic.String
		out = append(out, a)
	}
	return out, rows.Err()
}
