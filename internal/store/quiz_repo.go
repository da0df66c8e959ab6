package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/quizcraft/internal/quiz"
)

func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

// quizRepo implements QuizRepo on SQLite.
type quizRepo struct {
	drv *entsql.Driver
}

var quizColumns = []string{"id", "title", "topic", "timer_seconds", "questions", "owner_id", "created_at"}

func (r *quizRepo) Create(ctx context.Context, q *quiz.Quiz) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}
	questions, err := json.Marshal(q.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}

	query, args := builder().Insert("quizzes").
		Columns(quizColumns...).
		Values(q.ID, q.Title, q.Topic, q.TimerSeconds, string(questions), q.OwnerID, q.CreatedAt.UnixNano()).
		Query()
	var res sql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}
	return nil
}

func (r *quizRepo) ListByOwner(ctx context.Context, ownerID string) ([]quiz.Quiz, error) {
	b := builder()
	sel := b.Select(quizColumns...).
		From(b.Table("quizzes")).
		Where(entsql.EQ("owner_id", ownerID)).
		OrderBy(entsql.Desc("created_at"))
	return r.query(ctx, sel)
}

func (r *quizRepo) Get(ctx context.Context, id string) (*quiz.Quiz, error) {
	b := builder()
	sel := b.Select(quizColumns...).
		From(b.Table("quizzes")).
		Where(entsql.EQ("id", id)).
		Limit(1)
	quizzes, err := r.query(ctx, sel)
	if err != nil {
		return nil, err
	}
	if len(quizzes) == 0 {
		return nil, ErrNotFound
	}
	return &quizzes[0], nil
}

func (r *quizRepo) Delete(ctx context.Context, id, ownerID string) error {
	q, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if q.OwnerID != ownerID {
		return ErrNotOwner
	}
	return deleteByID(ctx, r.drv, "quizzes", id)
}

func (r *quizRepo) query(ctx context.Context, sel *entsql.Selector) ([]quiz.Quiz, error) {
	query, args := sel.Query()
	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query quizzes: %w", err)
	}
	defer rows.Close()

	var out []quiz.Quiz
	for rows.Next() {
		var (
			q         quiz.Quiz
			questions string
			created   int64
		)
		if err := rows.Scan(&q.ID, &q.Title, &q.Topic, &q.TimerSeconds, &questions, &q.OwnerID, &created); err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		if err := json.Unmarshal([]byte(questions), &q.Questions); err != nil {
			return nil, fmt.Errorf("decode questions of quiz %s: %w", q.ID, err)
		}
		q.CreatedAt = time.Unix(0, created).UTC()
		out = append(out, q)
	}
	return out, rows.Err()
}

func deleteByID(ctx context.Context, drv *entsql.Driver, table, id string) error {
	query, args := builder().Delete(table).Where(entsql.EQ("id", id)).Query()
	var res sql.Result
	if err := drv.Exec(ctx, query, args, &res); err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	return nil
}
