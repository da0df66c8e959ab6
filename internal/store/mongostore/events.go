package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/abhisek/quizcraft/internal/store"
)

type eventRepo struct {
	col      *mongo.Collection
	counters *mongo.Collection
}

type llmEventDoc struct {
	ID           int64     `bson:"_id"`
	Timestamp    time.Time `bson:"timestamp"`
	Provider     string    `bson:"provider"`
	Model        string    `bson:"model"`
	Purpose      string    `bson:"purpose"`
	InputTokens  int       `bson:"inputTokens"`
	OutputTokens int       `bson:"outputTokens"`
	LatencyMs    int64     `bson:"latencyMs"`
	Success      bool      `bson:"success"`
	ErrorMessage string    `bson:"errorMessage,omitempty"`
	RequestBody  string    `bson:"requestBody,omitempty"`
	ResponseBody string    `bson:"responseBody,omitempty"`
}

// next increments the named counter document and returns its new value.
func (r *eventRepo) next(ctx context.Context, name string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next %s sequence: %w", name, err)
	}
	return counter.Seq, nil
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, ev store.LLMEvent) error {
	id, err := r.next(ctx, "llm_request_events")
	if err != nil {
		return err
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	doc := llmEventDoc{
		ID:           id,
		Timestamp:    ev.Timestamp,
		Provider:     ev.Provider,
		Model:        ev.Model,
		Purpose:      ev.Purpose,
		InputTokens:  ev.InputTokens,
		OutputTokens: ev.OutputTokens,
		LatencyMs:    ev.LatencyMs,
		Success:      ev.Success,
		ErrorMessage: ev.ErrorMessage,
		RequestBody:  ev.RequestBody,
		ResponseBody: ev.ResponseBody,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts store.QueryOpts) ([]store.LLMEvent, error) {
	filter := bson.M{}
	id := bson.M{}
	if opts.After > 0 {
		id["$gt"] = opts.After
	}
	if opts.Before > 0 {
		id["$lt"] = opts.Before
	}
	if len(id) > 0 {
		filter["_id"] = id
	}
	ts := bson.M{}
	if !opts.From.IsZero() {
		ts["$gte"] = opts.From
	}
	if !opts.To.IsZero() {
		ts["$lte"] = opts.To
	}
	if len(ts) > 0 {
		filter["timestamp"] = ts
	}
	if opts.Purpose != "" {
		filter["purpose"] = opts.Purpose
	}

	findOpts := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}})
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit))
	}

	cur, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("find LLM events: %w", err)
	}
	defer cur.Close(ctx)

	var out []store.LLMEvent
	for cur.Next(ctx) {
		var d llmEventDoc
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("decode LLM event: %w", err)
		}
		out = append(out, store.LLMEvent{
			ID:           d.ID,
			Timestamp:    d.Timestamp.UTC(),
			Provider:     d.Provider,
			Model:        d.Model,
			Purpose:      d.Purpose,
			InputTokens:  d.InputTokens,
			OutputTokens: d.OutputTokens,
			LatencyMs:    d.LatencyMs,
			Success:      d.Success,
			ErrorMessage: d.ErrorMessage,
			RequestBody:  d.RequestBody,
			ResponseBody: d.ResponseBody,
		})
	}
	return out, cur.Err()
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int64) (*store.LLMEvent, error) {
	events, err := r.QueryLLMEvents(ctx, store.QueryOpts{After: id - 1, Before: id + 1, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, store.ErrNotFound
	}
	return &events[0], nil
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]store.LLMUsage, error) {
	return r.usageBy(ctx, "purpose")
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]store.LLMUsage, error) {
	return r.usageBy(ctx, "model")
}

func (r *eventRepo) usageBy(ctx context.Context, field string) ([]store.LLMUsage, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":          "$" + field,
			"calls":        bson.M{"$sum": 1},
			"inputTokens":  bson.M{"$sum": "$inputTokens"},
			"outputTokens": bson.M{"$sum": "$outputTokens"},
			"avgLatency":   bson.M{"$avg": "$latencyMs"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "calls", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate LLM usage by %s: %w", field, err)
	}
	defer cur.Close(ctx)

	var out []store.LLMUsage
	for cur.Next(ctx) {
		var row struct {
			Key          string  `bson:"_id"`
			Calls        int     `bson:"calls"`
			InputTokens  int     `bson:"inputTokens"`
			OutputTokens int     `bson:"outputTokens"`
			AvgLatency   float64 `bson:"avgLatency"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, fmt.Errorf("decode LLM usage: %w", err)
		}
		out = append(out, store.LLMUsage{
			Key:          row.Key,
			Calls:        row.Calls,
			InputTokens:  row.InputTokens,
			OutputTokens: row.OutputTokens,
			AvgLatencyMs: int64(row.AvgLatency),
		})
	}
	return out, cur.Err()
}
