package draft

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/abhisek/quizcraft/internal/quiz"
)

type memEntry struct {
	draft      Draft
	selections map[int]quiz.Selection
	claimedAt  time.Time
}

func (e *memEntry) claimed() bool { return !e.claimedAt.IsZero() }

// claimedRetention is how long a submitted draft stays visible so that
// late callers see ErrSubmitted rather than ErrNotFound.
const claimedRetention = 10 * time.Minute

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memEntry
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*memEntry)}
}

func (m *MemoryStore) Create(_ context.Context, d *Draft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[d.ID] = &memEntry{draft: *d, selections: make(map[int]quiz.Selection)}
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	d := e.draft
	return &d, nil
}

func (m *MemoryStore) PutSelection(_ context.Context, id string, sel quiz.Selection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return ErrNotFound
	}
	if e.claimed() {
		return ErrSubmitted
	}
	e.selections[sel.QuestionIndex] = sel
	return nil
}

func (m *MemoryStore) Selections(_ context.Context, id string) ([]quiz.Selection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]quiz.Selection, 0, len(e.selections))
	for _, s := range e.selections {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionIndex < out[j].QuestionIndex })
	return out, nil
}

func (m *MemoryStore) Claim(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return false, ErrNotFound
	}
	if e.claimed() {
		return false, nil
	}
	e.claimedAt = time.Now()
	return true, nil
}

func (m *MemoryStore) Release(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return ErrNotFound
	}
	e.claimedAt = time.Time{}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

func (m *MemoryStore) Expired(_ context.Context, now time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id, e := range m.entries {
		if e.claimed() {
			if now.Sub(e.claimedAt) > claimedRetention {
				delete(m.entries, id)
			}
			continue
		}
		if e.draft.Timed() && !e.draft.Deadline.After(now) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
