package quiz

import (
	"errors"
	"testing"
)

func validQuiz() *Quiz {
	return &Quiz{
		Title: "Capitals",
		Topic: "geography",
		Questions: []Question{
			{Text: "Capital of France?", Options: []string{"Berlin", "Madrid", "Paris", "Rome"}, AnswerSpec: "C"},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(q *Quiz)
		wantErr bool
		field   string
	}{
		{"valid", func(q *Quiz) {}, false, ""},
		{"missing title", func(q *Quiz) { q.Title = "  " }, true, ""},
		{"missing topic", func(q *Quiz) { q.Topic = "" }, true, ""},
		{"no questions", func(q *Quiz) { q.Questions = nil }, true, ""},
		{"negative timer", func(q *Quiz) { q.TimerSeconds = -1 }, true, "timerseconds"},
		{"empty question text", func(q *Quiz) { q.Questions[0].Text = "" }, true, "questions[0].text"},
		{"one option", func(q *Quiz) { q.Questions[0].Options = []string{"Paris"} }, true, "questions[0].options"},
		{"five options", func(q *Quiz) { q.Questions[0].Options = []string{"a", "b", "c", "d", "e"} }, true, "questions[0].options"},
		{"blank option", func(q *Quiz) { q.Questions[0].Options[1] = "" }, true, "questions[0].options[1]"},
		{"missing answer", func(q *Quiz) { q.Questions[0].AnswerSpec = "" }, true, "questions[0].answerspec"},
		{"bad difficulty", func(q *Quiz) { q.Questions[0].Difficulty = "extreme" }, true, "questions[0].difficulty"},
		{"known difficulty", func(q *Quiz) { q.Questions[0].Difficulty = Hard }, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validQuiz()
			tt.mutate(q)
			err := Validate(q)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error type = %T, want *ValidationError", err)
			}
			if verr.Field != tt.field {
				t.Errorf("Validate() field = %q, want %q", verr.Field, tt.field)
			}
		})
	}
}

func TestDifficultyOrDefault(t *testing.T) {
	if got := Difficulty("").OrDefault(); got != Medium {
		t.Errorf("empty.OrDefault() = %q, want %q", got, Medium)
	}
	if got := Difficulty("bogus").OrDefault(); got != Medium {
		t.Errorf("bogus.OrDefault() = %q, want %q", got, Medium)
	}
	if got := Easy.OrDefault(); got != Easy {
		t.Errorf("easy.OrDefault() = %q, want %q", got, Easy)
	}
}
