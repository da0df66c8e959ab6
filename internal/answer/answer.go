// Package answer resolves loosely formatted answer specs to the canonical
// option text that player selections are compared against.
package answer

import (
	"regexp"
	"strings"

	"github.com/abhisek/quizcraft/internal/quiz"
)

var (
	labelPattern       = regexp.MustCompile(`(?i)^answer:\s*`)
	bareLetterPattern  = regexp.MustCompile(`^([A-Da-d])\)?$`)
	letterTextPattern  = regexp.MustCompile(`^[A-Da-d]\)\s*(.+)$`)
	optionLabelPattern = regexp.MustCompile(`(?i)^[A-D]\)\s*`)
)

// ResolveCanonical returns the canonical answer for q: lowercase, trimmed
// and without any label or letter prefix. An empty result means the spec
// points at an option that does not exist.
func ResolveCanonical(q quiz.Question) string {
	return Resolve(q.AnswerSpec, q.Options)
}

// Resolve applies the resolution rules in order, first match wins:
//
//  1. strip a leading "Answer:" label
//  2. a bare letter A-D, optionally followed by ")", selects options[i]
//  3. "<letter>) <text>" yields <text>; the letter is not used
//  4. anything else is taken as the option text itself
func Resolve(spec string, options []string) string {
	s := strings.TrimSpace(spec)
	s = strings.TrimSpace(labelPattern.ReplaceAllString(s, ""))

	if m := bareLetterPattern.FindStringSubmatch(s); m != nil {
		idx := letterToIndex(m[1])
		if idx >= len(options) {
			return ""
		}
		return fold(options[idx])
	}

	if m := letterTextPattern.FindStringSubmatch(s); m != nil {
		return fold(m[1])
	}

	return fold(s)
}

// IsMatch reports whether a selected option equals the canonical answer
// after trimming and case folding. An empty canonical answer never matches.
func IsMatch(selected, canonical string) bool {
	return canonical != "" && fold(selected) == canonical
}

// LetterIndex maps a bare letter spec ("b", "B)") to a zero-based option
// index.
func LetterIndex(spec string) (int, bool) {
	m := bareLetterPattern.FindStringSubmatch(strings.TrimSpace(spec))
	if m == nil {
		return 0, false
	}
	return letterToIndex(m[1]), true
}

// CorrectIndex returns the position of the canonical answer among the
// question's options, or -1 when no option matches.
func CorrectIndex(q quiz.Question) int {
	canonical := ResolveCanonical(q)
	if canonical == "" {
		return -1
	}
	for i, opt := range q.Options {
		if IsMatch(opt, canonical) {
			return i
		}
	}
	return -1
}

// StripOptionLabel removes a leading "A)" style label from an option line.
func StripOptionLabel(line string) string {
	return strings.TrimSpace(optionLabelPattern.ReplaceAllString(line, ""))
}

func letterToIndex(letter string) int {
	return int(strings.ToUpper(letter)[0] - 'A')
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
