package draft

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/abhisek/quizcraft/internal/quiz"
)

// storeContract exercises the behaviour every Store must share.
func storeContract(t *testing.T, s Store) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	timed := &Draft{ID: uuid.NewString(), UserID: "bob", QuizID: "q1", TimerSeconds: 60, StartedAt: now, Deadline: now.Add(time.Minute)}
	untimed := &Draft{ID: uuid.NewString(), UserID: "bob", QuizID: "q2", StartedAt: now}
	for _, d := range []*Draft{timed, untimed} {
		if err := s.Create(ctx, d); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	t.Cleanup(func() {
		s.Delete(ctx, timed.ID)
		s.Delete(ctx, untimed.ID)
	})

	got, err := s.Get(ctx, timed.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.UserID != "bob" || !got.Deadline.Equal(timed.Deadline) {
		t.Fatalf("unexpected draft: %+v", got)
	}
	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get missing error = %v", err)
	}

	for _, sel := range []quiz.Selection{
		{QuestionIndex: 2, SelectedOption: "Rome"},
		{QuestionIndex: 0, SelectedOption: "Berlin"},
		{QuestionIndex: 0, SelectedOption: "Paris", TimeSpentSeconds: 9},
	} {
		if err := s.PutSelection(ctx, timed.ID, sel); err != nil {
			t.Fatalf("put selection: %v", err)
		}
	}
	sels, err := s.Selections(ctx, timed.ID)
	if err != nil {
		t.Fatalf("selections: %v", err)
	}
	if len(sels) != 2 || sels[0].SelectedOption != "Paris" || sels[0].TimeSpentSeconds != 9 || sels[1].QuestionIndex != 2 {
		t.Fatalf("unexpected selections: %+v", sels)
	}

	expired, err := s.Expired(ctx, now.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("expired: %v", err)
	}
	found := false
	for _, id := range expired {
		if id == untimed.ID {
			t.Fatal("untimed drafts never expire")
		}
		found = found || id == timed.ID
	}
	if !found {
		t.Fatalf("timed draft missing from expired list %v", expired)
	}

	ok, err := s.Claim(ctx, timed.ID)
	if err != nil || !ok {
		t.Fatalf("first claim = %v, %v", ok, err)
	}
	ok, err = s.Claim(ctx, timed.ID)
	if err != nil || ok {
		t.Fatalf("second claim = %v, %v", ok, err)
	}

	if err := s.Release(ctx, timed.ID); err != nil {
		t.Fatalf("release: %v", err)
	}
	if err := s.PutSelection(ctx, timed.ID, quiz.Selection{QuestionIndex: 1, SelectedOption: "Madrid"}); err != nil {
		t.Fatalf("put after release: %v", err)
	}
	expired, err = s.Expired(ctx, now.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("expired after release: %v", err)
	}
	if !slices.Contains(expired, timed.ID) {
		t.Fatalf("released draft missing from expired list %v", expired)
	}
	ok, err = s.Claim(ctx, timed.ID)
	if err != nil || !ok {
		t.Fatalf("claim after release = %v, %v", ok, err)
	}
	if err := s.Release(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("release missing error = %v", err)
	}
	if err := s.PutSelection(ctx, timed.ID, quiz.Selection{QuestionIndex: 1}); !errors.Is(err, ErrSubmitted) {
		t.Fatalf("put after claim error = %v", err)
	}
	expired, err = s.Expired(ctx, now.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("expired after claim: %v", err)
	}
	for _, id := range expired {
		if id == timed.ID {
			t.Fatal("claimed draft still listed as expired")
		}
	}

	if err := s.Delete(ctx, timed.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, timed.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after delete error = %v", err)
	}
	if err := s.Delete(ctx, timed.ID); err != nil {
		t.Fatalf("delete twice: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore())
}

func TestMemoryStore_ConcurrentClaim(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	s.Create(ctx, &Draft{ID: "d1"})

	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := s.Claim(ctx, "d1"); ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	if wins.Load() != 1 {
		t.Fatalf("expected exactly one winning claim, got %d", wins.Load())
	}
}

func TestMemoryStore_PurgesOldClaims(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	s.Create(ctx, &Draft{ID: "d1"})
	s.Claim(ctx, "d1")

	s.Expired(ctx, time.Now())
	if _, err := s.Get(ctx, "d1"); err != nil {
		t.Fatalf("recently claimed draft purged: %v", err)
	}
	s.Expired(ctx, time.Now().Add(claimedRetention+time.Minute))
	if _, err := s.Get(ctx, "d1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("old claim not purged: %v", err)
	}
}

func TestDraftRemaining(t *testing.T) {
	now := time.Now()
	d := &Draft{Deadline: now.Add(30 * time.Second)}
	if got := d.Remaining(now); got != 30 {
		t.Errorf("Remaining = %d, want 30", got)
	}
	if got := d.Remaining(now.Add(time.Minute)); got != 0 {
		t.Errorf("Remaining after deadline = %d, want 0", got)
	}
	if got := (&Draft{}).Remaining(now); got != 0 {
		t.Errorf("untimed Remaining = %d, want 0", got)
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("QUIZCRAFT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("QUIZCRAFT_TEST_REDIS_ADDR not set")
	}
	s, err := DialRedis(context.Background(), addr, "", 0)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer s.Close()
	storeContract(t, s)
}

func TestRedisKeys(t *testing.T) {
	id := "abc"
	got := fmt.Sprint(metaKey(id), " ", answersKey(id), " ", claimKey(id))
	if got != "draft:abc draft:abc:answers draft:abc:claimed" {
		t.Errorf("keys = %q", got)
	}
	var _ Store = NewRedisStore(redis.NewClient(&redis.Options{}))
}
