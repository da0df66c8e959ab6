package questiongen

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/abhisek/quizcraft/internal/answer"
	"github.com/abhisek/quizcraft/internal/quiz"
)

// OptionsPerQuestion is the number of options a parsed question must have.
const OptionsPerQuestion = 4

// Parser turns model output into questions. Malformed candidates are
// dropped; unparsable output yields an empty slice, never an error.
type Parser interface {
	Parse(out RawOutput) []quiz.Question
}

// Parse dispatches out to the parser for its variant.
func Parse(out RawOutput) []quiz.Question {
	return ParserFor(out).Parse(out)
}

// ParserFor returns the parser that understands out's variant.
func ParserFor(out RawOutput) Parser {
	if _, ok := out.(StructuredJSON); ok {
		return JSONParser{}
	}
	return BlockParser{}
}

var (
	blockSplit    = regexp.MustCompile(`(?i)Q:\s*`)
	optionLine    = regexp.MustCompile(`(?i)^[A-D]\)`)
	answerLine    = regexp.MustCompile(`(?i)^Answer:`)
	answerLinePfx = regexp.MustCompile(`(?i)^Answer:\s*`)
)

// BlockParser parses TextBlock output.
type BlockParser struct{}

// Parse implements Parser. Non-TextBlock input yields nil.
func (BlockParser) Parse(out RawOutput) []quiz.Question {
	text, ok := out.(TextBlock)
	if !ok {
		return nil
	}
	var questions []quiz.Question
	for _, block := range SplitBlocks(string(text)) {
		if q, ok := parseBlock(block); ok {
			questions = append(questions, q)
		}
	}
	return questions
}

// SplitBlocks splits text on the "Q:" marker and returns the non-empty,
// trimmed candidate blocks in order.
func SplitBlocks(text string) []string {
	var blocks []string
	for _, seg := range blockSplit.Split(text, -1) {
		if seg = strings.TrimSpace(seg); seg != "" {
			blocks = append(blocks, seg)
		}
	}
	return blocks
}

func parseBlock(block string) (quiz.Question, bool) {
	var lines []string
	for _, l := range strings.Split(block, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return quiz.Question{}, false
	}

	q := quiz.Question{Text: lines[0]}
	found := false
	for _, l := range lines {
		switch {
		case optionLine.MatchString(l):
			q.Options = append(q.Options, answer.StripOptionLabel(l))
		case !found && answerLine.MatchString(l):
			q.AnswerSpec = strings.TrimSpace(answerLinePfx.ReplaceAllString(l, ""))
			found = true
		}
	}
	return q, keep(q)
}

// keep is the acceptance rule shared by both parsers.
func keep(q quiz.Question) bool {
	return q.Text != "" && len(q.Options) == OptionsPerQuestion && q.AnswerSpec != ""
}

// JSONParser parses StructuredJSON output.
type JSONParser struct{}

type jsonQuestion struct {
	Question   string   `json:"question"`
	Options    []string `json:"options"`
	Answer     string   `json:"answer"`
	Difficulty string   `json:"difficulty"`
}

type jsonQuestionSet struct {
	Questions []jsonQuestion `json:"questions"`
}

// Parse implements Parser. It accepts {"questions": [...]} or a bare array.
func (JSONParser) Parse(out RawOutput) []quiz.Question {
	doc, ok := out.(StructuredJSON)
	if !ok {
		return nil
	}

	var items []jsonQuestion
	var set jsonQuestionSet
	if err := json.Unmarshal(doc, &set); err == nil && set.Questions != nil {
		items = set.Questions
	} else if err := json.Unmarshal(doc, &items); err != nil {
		return nil
	}

	var questions []quiz.Question
	for _, it := range items {
		q := quiz.Question{
			Text:       strings.TrimSpace(it.Question),
			AnswerSpec: strings.TrimSpace(it.Answer),
			Difficulty: quiz.Difficulty(it.Difficulty),
		}
		for _, opt := range it.Options {
			q.Options = append(q.Options, answer.StripOptionLabel(opt))
		}
		if !q.Difficulty.Valid() {
			q.Difficulty = ""
		}
		if keep(q) {
			questions = append(questions, q)
		}
	}
	return questions
}
