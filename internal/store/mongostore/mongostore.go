// Package mongostore implements the store repositories on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/abhisek/quizcraft/internal/quiz"
	"github.com/abhisek/quizcraft/internal/store"
)

// Store is the MongoDB backend.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ store.Backend = (*Store)(nil)

// Open connects to uri, selects database name and ensures indexes.
func Open(ctx context.Context, uri, name string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := &Store{client: client, db: client.Database(name)}
	if err := s.ensureIndexes(ctx); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	byUserRecent := mongo.IndexModel{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}}
	for _, coll := range []string{"quizzes", "attempts"} {
		if _, err := s.db.Collection(coll).Indexes().CreateOne(ctx, byUserRecent); err != nil {
			return fmt.Errorf("create %s index: %w", coll, err)
		}
	}
	_, err := s.db.Collection("llm_request_events").Indexes().CreateOne(ctx,
		mongo.IndexModel{Keys: bson.D{{Key: "purpose", Value: 1}}})
	if err != nil {
		return fmt.Errorf("create llm_request_events index: %w", err)
	}
	return nil
}

// Database exposes the selected database.
func (s *Store) Database() *mongo.Database { return s.db }

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) Quizzes() store.QuizRepo {
	return &quizRepo{col: s.db.Collection("quizzes")}
}

func (s *Store) Attempts() store.AttemptRepo {
	return &attemptRepo{col: s.db.Collection("attempts")}
}

func (s *Store) EventRepo() store.EventRepo {
	return &eventRepo{
		col:      s.db.Collection("llm_request_events"),
		counters: s.db.Collection("counters"),
	}
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}}

type quizRepo struct {
	col *mongo.Collection
}

func (r *quizRepo) Create(ctx context.Context, q *quiz.Quiz) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}
	if _, err := r.col.InsertOne(ctx, q); err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}
	return nil
}

func (r *quizRepo) ListByOwner(ctx context.Context, ownerID string) ([]quiz.Quiz, error) {
	cur, err := r.col.Find(ctx, bson.M{"user": ownerID}, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, fmt.Errorf("find quizzes: %w", err)
	}
	defer cur.Close(ctx)

	var quizzes []quiz.Quiz
	for cur.Next(ctx) {
		var q quiz.Quiz
		if err := cur.Decode(&q); err != nil {
			return nil, fmt.Errorf("decode quiz: %w", err)
		}
		quizzes = append(quizzes, q)
	}
	return quizzes, cur.Err()
}

func (r *quizRepo) Get(ctx context.Context, id string) (*quiz.Quiz, error) {
	var q quiz.Quiz
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&q)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find quiz: %w", err)
	}
	return &q, nil
}

func (r *quizRepo) Delete(ctx context.Context, id, ownerID string) error {
	q, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if q.OwnerID != ownerID {
		return store.ErrNotOwner
	}
	if _, err := r.col.DeleteOne(ctx, bson.M{"_id": id, "user": ownerID}); err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	return nil
}

type attemptRepo struct {
	col *mongo.Collection
}

// attemptDoc is an attempt with its quiz looked up alongside.
type attemptDoc struct {
	quiz.Attempt `bson:",inline"`
	QuizDoc      []struct {
		Title string `bson:"title"`
		Topic string `bson:"topic"`
	} `bson:"quizDoc"`
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
	if _, err := r.col.InsertOne(ctx, a); err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (r *attemptRepo) aggregate(ctx context.Context, match bson.M) ([]quiz.Attempt, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: newestFirst}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "quizzes",
			"localField":   "quiz",
			"foreignField": "_id",
			"as":           "quizDoc",
		}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate attempts: %w", err)
	}
	defer cur.Close(ctx)

	var attempts []quiz.Attempt
	for cur.Next(ctx) {
		var doc attemptDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode attempt: %w", err)
		}
		a := doc.Attempt
		if len(doc.QuizDoc) > 0 {
			a.QuizTitle = doc.QuizDoc[0].Title
			a.QuizTopic = doc.QuizDoc[0].Topic
		}
		attempts = append(attempts, a)
	}
	return attempts, cur.Err()
}

func (r *attemptRepo) ListByUser(ctx context.Context, userID string) ([]quiz.Attempt, error) {
	return r.aggregate(ctx, bson.M{"user": userID})
}

func (r *attemptRepo) Get(ctx context.Context, id string) (*quiz.Attempt, error) {
	attempts, err := r.aggregate(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, err
	}
	if len(attempts) == 0 {
		return nil, store.ErrNotFound
	}
	return &attempts[0], nil
}

func (r *attemptRepo) Delete(ctx context.Context, id, userID string) error {
	var a quiz.Attempt
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("find attempt: %w", err)
	}
	if a.UserID != userID {
		return store.ErrNotOwner
	}
	if _, err := r.col.DeleteOne(ctx, bson.M{"_id": id, "user": userID}); err != nil {
		return fmt.Errorf("delete attempt: %w", err)
	}
	return nil
}
