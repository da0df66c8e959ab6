package attempt

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/abhisek/quizcraft/internal/quiz"
)

func fiveQuestions(timer int) *quiz.Quiz {
	opts := []string{"Berlin", "Madrid", "Paris", "Rome"}
	return &quiz.Quiz{
		Title:        "Capitals",
		Topic:        "geography",
		TimerSeconds: timer,
		Questions: []quiz.Question{
			{Text: "France?", Options: opts, AnswerSpec: "C"},
			{Text: "Spain?", Options: opts, AnswerSpec: "B"},
			{Text: "Italy?", Options: opts, AnswerSpec: "D"},
			{Text: "Germany?", Options: opts, AnswerSpec: "A"},
			{Text: "Portugal?", Options: []string{"Lisbon", "Porto", "Faro", "Braga"}, AnswerSpec: "A"},
		},
	}
}

func TestSession_SelectAndNavigate(t *testing.T) {
	s := NewSession(fiveQuestions(0))

	s.Tick()
	s.Tick()
	rec, err := s.Select("paris")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if !rec.IsCorrect || rec.TimeSpentSeconds != 2 || rec.QuestionText != "France?" {
		t.Fatalf("unexpected record: %+v", rec)
	}

	if !s.Next() {
		t.Fatal("Next should move off the first question")
	}
	if st := s.State(); st.Current != 1 || st.QuestionElapsed != 0 {
		t.Fatalf("navigation should reset the question clock: %+v", st)
	}
	if s.Prev(); s.State().Current != 0 {
		t.Fatal("Prev should return to the first question")
	}
	if s.Prev() {
		t.Fatal("Prev on the first question should report false")
	}
	if err := s.Goto(4); err != nil {
		t.Fatalf("Goto: %v", err)
	}
	if s.Next() {
		t.Fatal("Next on the last question should report false")
	}
	if err := s.Goto(5); err == nil {
		t.Fatal("expected out of range error")
	}

	if sel, ok := s.Selected(0); !ok || sel != "paris" {
		t.Fatalf("Selected(0) = %q, %v", sel, ok)
	}
}

func TestSession_LastWriteWins(t *testing.T) {
	s := NewSession(fiveQuestions(0))
	s.Select("Berlin")
	s.Select("Paris")

	sub, err := s.Submit()
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(sub.Answers) != 1 || sub.Answers[0].SelectedOption != "Paris" || !sub.Answers[0].IsCorrect {
		t.Fatalf("unexpected answers: %+v", sub.Answers)
	}
}

func TestSession_SubmitOrdersAndScores(t *testing.T) {
	s := NewSession(fiveQuestions(60))
	s.Goto(3)
	s.Select("Berlin")
	s.Goto(1)
	s.Select("Paris")
	for range 10 {
		s.Tick()
	}

	sub, err := s.Submit()
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if sub.Answers[0].QuestionIndex != 1 || sub.Answers[1].QuestionIndex != 3 {
		t.Fatalf("answers not ordered by index: %+v", sub.Answers)
	}
	if sub.Result.TotalQuestions != 2 || sub.Result.CorrectAnswers != 1 || sub.Result.Score != 50 {
		t.Fatalf("unexpected result: %+v", sub.Result)
	}
	if sub.TotalTimeSeconds != 10 {
		t.Errorf("TotalTimeSeconds = %d, want 10", sub.TotalTimeSeconds)
	}
	if sub.Auto {
		t.Error("manual submit should not be flagged auto")
	}

	if _, err := s.Submit(); !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("second Submit error = %v, want ErrAlreadySubmitted", err)
	}
	if _, err := s.Select("Paris"); !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("Select after submit error = %v", err)
	}
}

func TestSession_UntimedTotalTimeIsZero(t *testing.T) {
	s := NewSession(fiveQuestions(0))
	for range 30 {
		s.Tick()
	}
	sub, _ := s.Submit()
	if sub.TotalTimeSeconds != 0 {
		t.Fatalf("TotalTimeSeconds = %d, want 0", sub.TotalTimeSeconds)
	}
	if s.State().Remaining != 0 {
		t.Fatal("untimed countdown should stay at zero")
	}
}

func TestSession_AutoSubmitOnTimeout(t *testing.T) {
	s := NewSession(fiveQuestions(3))
	var got []Submission
	var states []State
	s.OnSubmit(func(sub Submission) { got = append(got, sub) })
	s.OnTick(func(st State) { states = append(states, st) })

	// Three of five answered when time runs out.
	s.Select("Paris")
	s.Next()
	s.Select("Madrid")
	s.Next()
	s.Select("Paris")

	s.Tick()
	s.Tick()
	if len(got) != 0 {
		t.Fatal("submitted before the countdown ended")
	}
	s.Tick()
	s.Tick()

	if len(got) != 1 {
		t.Fatalf("expected exactly one auto submission, got %d", len(got))
	}
	sub := got[0]
	if !sub.Auto || sub.Result.TotalQuestions != 3 || sub.Result.CorrectAnswers != 2 {
		t.Fatalf("unexpected auto submission: %+v", sub)
	}
	if sub.TotalTimeSeconds != 3 {
		t.Errorf("TotalTimeSeconds = %d, want 3", sub.TotalTimeSeconds)
	}
	if last := states[len(states)-1]; !last.Submitted || last.Remaining != 0 {
		t.Errorf("final tick state = %+v", last)
	}
	if _, err := s.Submit(); !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("manual submit after timeout error = %v", err)
	}
}

func TestSession_TickerDrivesCountdown(t *testing.T) {
	s := NewSession(fiveQuestions(2), WithInterval(time.Millisecond))
	done := make(chan Submission, 1)
	var once sync.Once
	s.OnSubmit(func(sub Submission) { once.Do(func() { done <- sub }) })

	s.Select("Paris")
	s.Start(context.Background())
	defer s.Stop()

	select {
	case sub := <-done:
		if !sub.Auto || sub.Result.TotalQuestions != 1 {
			t.Fatalf("unexpected submission: %+v", sub)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("countdown never expired")
	}
	waitFor(t, func() bool { return !s.ticker.Running() })
}
