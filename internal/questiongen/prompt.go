package questiongen

import (
	"fmt"
	"strings"

	"github.com/abhisek/quizcraft/internal/quiz"
)

const systemPrompt = `You write multiple-choice quiz questions.

Rules:
- Every question has exactly 4 options and exactly one correct option.
- Distractors should be plausible, not jokes.
- Questions must be self-contained and unambiguous.
- Do not include explanations, numbering, or markdown formatting.`

// buildTextPrompt asks for the strict block format understood by BlockParser.
func buildTextPrompt(in GenerateInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d %smultiple-choice quiz questions on the topic %q.\n",
		in.NumQuestions, difficultyWord(in.Difficulty), in.Topic)
	b.WriteString("Each question should follow this strict format:\n\n")
	b.WriteString("Q: <question text>\n")
	b.WriteString("A) <option 1>\n")
	b.WriteString("B) <option 2>\n")
	b.WriteString("C) <option 3>\n")
	b.WriteString("D) <option 4>\n")
	b.WriteString("Answer: <A/B/C/D>\n")
	return b.String()
}

// buildJSONPrompt asks for a question set matching QuestionSetSchema.
func buildJSONPrompt(in GenerateInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d %smultiple-choice quiz questions on the topic %q.\n",
		in.NumQuestions, difficultyWord(in.Difficulty), in.Topic)
	b.WriteString("Return them in the \"questions\" array. ")
	b.WriteString("Set \"answer\" to the letter (A, B, C or D) of the correct option.")
	if in.Difficulty != "" {
		fmt.Fprintf(&b, " Set \"difficulty\" to %q.", in.Difficulty)
	}
	return b.String()
}

func difficultyWord(d quiz.Difficulty) string {
	if d == "" {
		return ""
	}
	return string(d) + " "
}
