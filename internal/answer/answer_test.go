package answer

import (
	"testing"

	"github.com/abhisek/quizcraft/internal/quiz"
)

var sums = []string{"3", "4", "5", "6"}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		options []string
		want    string
	}{
		{"bare letter", "B", sums, "4"},
		{"lowercase letter", "b", sums, "4"},
		{"letter with paren", "B)", sums, "4"},
		{"answer label", "Answer: B", sums, "4"},
		{"answer label lowercase", "answer:d", sums, "6"},
		{"padded", "  Answer:   C)  ", sums, "5"},
		{"letter then text", "Answer: C) Paris", []string{"Berlin", "Madrid", "Rome", "Lisbon"}, "paris"},
		{"letter then text ignores letter", "A) Rome", []string{"Berlin", "Madrid", "Rome", "Lisbon"}, "rome"},
		{"full text", "Paris", []string{"Berlin", "Paris"}, "paris"},
		{"full text with label", "Answer:  Mount Everest ", nil, "mount everest"},
		{"letter out of range", "D", []string{"yes", "no"}, ""},
		{"letter with no options", "A", nil, ""},
		{"letter E is text", "E", sums, "e"},
		{"empty", "", sums, ""},
		{"option needs trim", "a", []string{"  Blue Whale  ", "x", "y", "z"}, "blue whale"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.spec, tt.options); got != tt.want {
				t.Errorf("Resolve(%q, %v) = %q, want %q", tt.spec, tt.options, got, tt.want)
			}
		})
	}
}

func TestResolveIdempotent(t *testing.T) {
	options := []string{"Berlin", "Madrid", "Paris", "Rome"}
	specs := []string{"C", "c)", "Answer: C", "Answer: C) Paris", "PARIS", " paris ", "Answer: Rome", "Lisbon", ""}

	for _, spec := range specs {
		once := Resolve(spec, options)
		twice := Resolve(once, options)
		if once != twice {
			t.Errorf("Resolve not idempotent for %q: %q then %q", spec, once, twice)
		}
	}
}

func TestResolveCanonical(t *testing.T) {
	q := quiz.Question{Text: "2+2?", Options: sums, AnswerSpec: "B"}
	if got := ResolveCanonical(q); got != "4" {
		t.Errorf("ResolveCanonical() = %q, want %q", got, "4")
	}
}

func TestIsMatch(t *testing.T) {
	tests := []struct {
		selected  string
		canonical string
		want      bool
	}{
		{"4 ", "4", true},
		{"Paris", "paris", true},
		{"  PARIS\t", "paris", true},
		{"Pari", "paris", false},
		{"", "", false},
		{"4", "", false},
	}

	for _, tt := range tests {
		if got := IsMatch(tt.selected, tt.canonical); got != tt.want {
			t.Errorf("IsMatch(%q, %q) = %v, want %v", tt.selected, tt.canonical, got, tt.want)
		}
	}
}

func TestLetterIndex(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"A", 0, true},
		{"d)", 3, true},
		{" c ", 2, true},
		{"E", 0, false},
		{"A) text", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := LetterIndex(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("LetterIndex(%q) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestCorrectIndex(t *testing.T) {
	tests := []struct {
		name string
		q    quiz.Question
		want int
	}{
		{"letter", quiz.Question{Options: sums, AnswerSpec: "Answer: D"}, 3},
		{"text", quiz.Question{Options: []string{"Red", "Green"}, AnswerSpec: "green"}, 1},
		{"no match", quiz.Question{Options: []string{"Red", "Green"}, AnswerSpec: "Blue"}, -1},
		{"out of range", quiz.Question{Options: []string{"Red"}, AnswerSpec: "C"}, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CorrectIndex(tt.q); got != tt.want {
				t.Errorf("CorrectIndex() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStripOptionLabel(t *testing.T) {
	if got := StripOptionLabel("b)  Lisbon "); got != "Lisbon" {
		t.Errorf("StripOptionLabel() = %q, want %q", got, "Lisbon")
	}
	if got := StripOptionLabel("Lisbon"); got != "Lisbon" {
		t.Errorf("StripOptionLabel() = %q, want %q", got, "Lisbon")
	}
}
