package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/abhisek/quizcraft/internal/quiz"
)

const (
	deadlinesKey = "draft:deadlines"

	// untimedTTL bounds how long an abandoned untimed draft lingers.
	untimedTTL = 24 * time.Hour

	// deadlineGrace keeps a timed draft around long enough for the reaper
	// to submit it.
	deadlineGrace = 10 * time.Minute
)

// RedisStore keeps drafts in Redis:
//
//	draft:<id>          JSON metadata
//	draft:<id>:answers  hash of question index to JSON selection
//	draft:<id>:claimed  submission claim, set with SETNX
//	draft:deadlines     sorted set of timed draft IDs by deadline
//
// A claimed draft leaves the deadline set but its keys live until their
// TTL, so late callers see ErrSubmitted.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore wraps an existing client.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// DialRedis connects to addr and verifies the connection.
func DialRedis(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{rdb: rdb}, nil
}

// Close closes the client.
func (r *RedisStore) Close() error { return r.rdb.Close() }

func metaKey(id string) string    { return "draft:" + id }
func answersKey(id string) string { return "draft:" + id + ":answers" }
func claimKey(id string) string   { return "draft:" + id + ":claimed" }

func (r *RedisStore) ttl(d *Draft) time.Duration {
	if d.Timed() {
		return time.Until(d.Deadline) + deadlineGrace
	}
	return untimedTTL
}

func (r *RedisStore) Create(ctx context.Context, d *Draft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}
	_, err = r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, metaKey(d.ID), data, r.ttl(d))
		if d.Timed() {
			p.ZAdd(ctx, deadlinesKey, redis.Z{Score: float64(d.Deadline.Unix()), Member: d.ID})
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("store draft: %w", err)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Draft, error) {
	raw, err := r.rdb.Get(ctx, metaKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get draft: %w", err)
	}
	var d Draft
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	return &d, nil
}

func (r *RedisStore) PutSelection(ctx context.Context, id string, sel quiz.Selection) error {
	d, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	claimed, err := r.rdb.Exists(ctx, claimKey(id)).Result()
	if err != nil {
		return fmt.Errorf("check claim: %w", err)
	}
	if claimed > 0 {
		return ErrSubmitted
	}

	data, err := json.Marshal(sel)
	if err != nil {
		return fmt.Errorf("marshal selection: %w", err)
	}
	_, err = r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, answersKey(id), strconv.Itoa(sel.QuestionIndex), data)
		p.Expire(ctx, answersKey(id), r.ttl(d))
		return nil
	})
	if err != nil {
		return fmt.Errorf("store selection: %w", err)
	}
	return nil
}

func (r *RedisStore) Selections(ctx context.Context, id string) ([]quiz.Selection, error) {
	if _, err := r.Get(ctx, id); err != nil {
		return nil, err
	}
	fields, err := r.rdb.HGetAll(ctx, answersKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("get selections: %w", err)
	}
	out := make([]quiz.Selection, 0, len(fields))
	for _, v := range fields {
		var s quiz.Selection
		if err := json.Unmarshal([]byte(v), &s); err != nil {
			return nil, fmt.Errorf("decode selection: %w", err)
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionIndex < out[j].QuestionIndex })
	return out, nil
}

func (r *RedisStore) Claim(ctx context.Context, id string) (bool, error) {
	d, err := r.Get(ctx, id)
	if err != nil {
		return false, err
	}
	ok, err := r.rdb.SetNX(ctx, claimKey(id), time.Now().UTC().Format(time.RFC3339), r.ttl(d)).Result()
	if err != nil {
		return false, fmt.Errorf("claim draft: %w", err)
	}
	if ok {
		if err := r.rdb.ZRem(ctx, deadlinesKey, id).Err(); err != nil {
			return true, fmt.Errorf("unschedule draft: %w", err)
		}
	}
	return ok, nil
}

func (r *RedisStore) Release(ctx context.Context, id string) error {
	d, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	_, err = r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, claimKey(id))
		if d.Timed() {
			p.ZAdd(ctx, deadlinesKey, redis.Z{Score: float64(d.Deadline.Unix()), Member: id})
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("release draft: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	_, err := r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, metaKey(id), answersKey(id), claimKey(id))
		p.ZRem(ctx, deadlinesKey, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

func (r *RedisStore) Expired(ctx context.Context, now time.Time) ([]string, error) {
	ids, err := r.rdb.ZRangeByScore(ctx, deadlinesKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.Unix(), 10),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("list expired drafts: %w", err)
	}
	return ids, nil
}
