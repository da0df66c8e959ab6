// Package attempt runs an in-progress quiz attempt: navigation, answer
// recording, the countdown and per-question clocks, and submission.
package attempt

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/abhisek/quizcraft/internal/quiz"
	"github.com/abhisek/quizcraft/internal/scoring"
)

// ErrAlreadySubmitted is returned when a session is used after submission.
var ErrAlreadySubmitted = errors.New("attempt already submitted")

// State is a snapshot of a session for display.
type State struct {
	Current         int
	Total           int
	Answered        int
	Remaining       int
	QuestionElapsed int
	Timed           bool
	Submitted       bool
}

// Submission is the outcome of a finished session.
type Submission struct {
	Answers          []quiz.AnswerRecord
	TotalTimeSeconds int
	Result           scoring.Result

	// Auto is set when the countdown ended the session.
	Auto bool
}

// Session is one player's pass through a quiz. It is safe for concurrent
// use by the ticker goroutine and the owner.
type Session struct {
	mu sync.Mutex

	quiz            *quiz.Quiz
	current         int
	records         map[int]quiz.AnswerRecord
	remaining       int
	questionElapsed int
	submitted       bool

	ticker   *Ticker
	onTick   func(State)
	onSubmit func(Submission)
}

// Option configures a Session.
type Option func(*Session)

// WithInterval sets the clock resolution. One interval counts as one
// second on both clocks.
func WithInterval(d time.Duration) Option {
	return func(s *Session) {
		s.ticker = NewTicker(d, s.Tick)
	}
}

// NewSession creates a session positioned on the first question. Clocks do
// not run until Start.
func NewSession(q *quiz.Quiz, opts ...Option) *Session {
	s := &Session{
		quiz:      q,
		records:   make(map[int]quiz.AnswerRecord),
		remaining: max(q.TimerSeconds, 0),
	}
	s.ticker = NewTicker(time.Second, s.Tick)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnTick registers fn to receive the state after every tick.
func (s *Session) OnTick(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onTick = fn
}

// OnSubmit registers fn to receive the submission when the session ends,
// whether by Submit or by the countdown running out.
func (s *Session) OnSubmit(fn func(Submission)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSubmit = fn
}

// Start runs the clocks.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	submitted := s.submitted
	s.mu.Unlock()
	if !submitted {
		s.ticker.Start(ctx)
	}
}

// Stop pauses the clocks.
func (s *Session) Stop() {
	s.ticker.Stop()
}

// Quiz returns the quiz being played.
func (s *Session) Quiz() *quiz.Quiz { return s.quiz }

// Question returns the current question and its index.
func (s *Session) Question() (quiz.Question, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quiz.Questions[s.current], s.current
}

// Selected returns the recorded selection for question i.
func (s *Session) Selected(i int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[i]
	return rec.SelectedOption, ok
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	return State{
		Current:         s.current,
		Total:           len(s.quiz.Questions),
		Answered:        len(s.records),
		Remaining:       s.remaining,
		QuestionElapsed: s.questionElapsed,
		Timed:           s.quiz.Timed(),
		Submitted:       s.submitted,
	}
}

// Select records option as the answer to the current question, replacing
// any earlier answer. The time spent is the per-question clock.
func (s *Session) Select(option string) (quiz.AnswerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitted {
		return quiz.AnswerRecord{}, ErrAlreadySubmitted
	}
	rec := scoring.Record(s.quiz.Questions[s.current], s.current, option, s.questionElapsed)
	s.records[s.current] = rec
	return rec, nil
}

// Next moves to the following question. It reports false on the last one.
func (s *Session) Next() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitted || s.current >= len(s.quiz.Questions)-1 {
		return false
	}
	s.moveLocked(s.current + 1)
	return true
}

// Prev moves to the preceding question. It reports false on the first one.
func (s *Session) Prev() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitted || s.current == 0 {
		return false
	}
	s.moveLocked(s.current - 1)
	return true
}

// Goto jumps to question i.
func (s *Session) Goto(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitted {
		return ErrAlreadySubmitted
	}
	if i < 0 || i >= len(s.quiz.Questions) {
		return fmt.Errorf("question %d out of range [0, %d)", i, len(s.quiz.Questions))
	}
	s.moveLocked(i)
	return nil
}

func (s *Session) moveLocked(i int) {
	s.current = i
	s.questionElapsed = 0
	s.ticker.Reset()
}

// Tick advances both clocks by one second. When a timed quiz's countdown
// reaches zero the session submits itself with the answers recorded so far.
func (s *Session) Tick() {
	s.mu.Lock()
	if s.submitted {
		s.mu.Unlock()
		return
	}
	s.questionElapsed++
	var sub *Submission
	if s.quiz.Timed() {
		s.remaining--
		if s.remaining <= 0 {
			s.remaining = 0
			v := s.submitLocked()
			v.Auto = true
			sub = &v
		}
	}
	state := s.stateLocked()
	onTick, onSubmit := s.onTick, s.onSubmit
	s.mu.Unlock()

	if onTick != nil {
		onTick(state)
	}
	if sub != nil && onSubmit != nil {
		onSubmit(*sub)
	}
}

// Submit ends the session and scores the recorded answers.
func (s *Session) Submit() (Submission, error) {
	s.mu.Lock()
	if s.submitted {
		s.mu.Unlock()
		return Submission{}, ErrAlreadySubmitted
	}
	sub := s.submitLocked()
	onSubmit := s.onSubmit
	s.mu.Unlock()

	if onSubmit != nil {
		onSubmit(sub)
	}
	return sub, nil
}

func (s *Session) submitLocked() Submission {
	s.submitted = true
	s.ticker.Stop()

	answers := make([]quiz.AnswerRecord, 0, len(s.records))
	for _, rec := range s.records {
		answers = append(answers, rec)
	}
	scoring.SortRecords(answers)

	return Submission{
		Answers:          answers,
		TotalTimeSeconds: scoring.ElapsedSeconds(s.quiz.TimerSeconds, s.remaining),
		Result:           scoring.Tally(answers),
	}
}
