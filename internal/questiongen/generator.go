// Package questiongen turns LLM output into quiz questions.
package questiongen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/quizcraft/internal/llm"
	"github.com/abhisek/quizcraft/internal/quiz"
)

// GenerateInput describes a generation request.
type GenerateInput struct {
	Topic        string
	NumQuestions int
	Difficulty   quiz.Difficulty
}

// Result is the outcome of one generation call. Dropped counts candidates
// that did not survive parsing.
type Result struct {
	Questions  []quiz.Question
	Raw        RawOutput
	Candidates int
	Dropped    int
	Model      string
}

// Generator produces quiz questions for a topic.
type Generator interface {
	Generate(ctx context.Context, in GenerateInput) (*Result, error)
}

// LLMGenerator implements Generator on top of an llm.Provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
}

// New creates an LLMGenerator.
func New(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg}
}

// Generate asks the provider for questions and parses its output. A
// provider failure is returned as-is (an *llm.ProviderError); output that
// cannot be parsed is a successful result with no questions.
func (g *LLMGenerator) Generate(ctx context.Context, in GenerateInput) (*Result, error) {
	in.Topic = strings.TrimSpace(in.Topic)
	if in.Topic == "" {
		return nil, &quiz.ValidationError{Field: "topic", Message: "Topic is required"}
	}
	if in.Difficulty != "" && !in.Difficulty.Valid() {
		return nil, &quiz.ValidationError{Field: "difficulty", Message: "must be one of easy medium hard"}
	}
	switch {
	case in.NumQuestions <= 0:
		in.NumQuestions = g.config.DefaultQuestions
	case in.NumQuestions > g.config.MaxQuestions:
		in.NumQuestions = g.config.MaxQuestions
	}

	ctx = llm.WithPurpose(ctx, "quiz-gen")

	req := llm.Request{
		System:      systemPrompt,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}
	if g.config.Mode == ModeJSON {
		req.Schema = QuestionSetSchema
		req.Messages = []llm.Message{{Role: llm.RoleUser, Content: buildJSONPrompt(in)}}
	} else {
		req.Messages = []llm.Message{{Role: llm.RoleUser, Content: buildTextPrompt(in)}}
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}

	var raw RawOutput = TextBlock(resp.Text)
	candidates := 0
	if g.config.Mode == ModeJSON {
		raw = StructuredJSON(resp.Text)
		candidates = countJSONCandidates(resp.Text)
	} else {
		candidates = len(SplitBlocks(resp.Text))
	}

	questions := Parse(raw)
	for i := range questions {
		if questions[i].Difficulty == "" {
			questions[i].Difficulty = in.Difficulty.OrDefault()
		}
	}

	dropped := candidates - len(questions)
	if dropped < 0 {
		dropped = 0
	}

	return &Result{
		Questions:  questions,
		Raw:        raw,
		Candidates: candidates,
		Dropped:    dropped,
		Model:      resp.Model,
	}, nil
}

func countJSONCandidates(text string) int {
	var set jsonQuestionSet
	if err := json.Unmarshal([]byte(text), &set); err == nil && set.Questions != nil {
		return len(set.Questions)
	}
	var items []jsonQuestion
	if err := json.Unmarshal([]byte(text), &items); err == nil {
		return len(items)
	}
	return 0
}
