package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizcraft/internal/answer"
	"github.com/abhisek/quizcraft/internal/questiongen"
	"github.com/abhisek/quizcraft/internal/quiz"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate questions for a topic",
	Long: `Generate multiple-choice questions for a topic with the configured LLM.

With --practice the questions are asked one by one on the terminal. With
--save they are stored as a quiz owned by --user.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().String("topic", "", "Quiz topic (required)")
	generateCmd.Flags().Int("count", 5, "Number of questions to generate")
	generateCmd.Flags().String("difficulty", "medium", "Difficulty: easy, medium or hard")
	generateCmd.Flags().Bool("practice", false, "Answer the generated questions interactively")
	generateCmd.Flags().Bool("save", false, "Save the questions as a quiz")
	generateCmd.Flags().String("title", "", "Quiz title when saving (defaults to the topic)")
	generateCmd.Flags().Int("timer", 0, "Quiz countdown in seconds when saving (0 = untimed)")
	generateCmd.Flags().String("user", "", "Owner of the saved quiz")
	_ = generateCmd.MarkFlagRequired("topic")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	topic, _ := cmd.Flags().GetString("topic")
	count, _ := cmd.Flags().GetInt("count")
	diffVal, _ := cmd.Flags().GetString("difficulty")
	practice, _ := cmd.Flags().GetBool("practice")
	save, _ := cmd.Flags().GetBool("save")
	title, _ := cmd.Flags().GetString("title")
	timer, _ := cmd.Flags().GetInt("timer")
	user, _ := cmd.Flags().GetString("user")

	diff := quiz.Difficulty(strings.ToLower(diffVal))
	if !diff.Valid() {
		return fmt.Errorf("invalid difficulty %q: must be easy, medium or hard", diffVal)
	}
	if save && user == "" {
		return fmt.Errorf("--user is required with --save")
	}

	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	gen, err := e.generator(ctx)
	if err != nil {
		return err
	}
	svc := e.service(gen)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Generating %d %s questions on %q...\n\n", count, diff, topic)

	res, err := svc.Generate(ctx, questiongen.GenerateInput{
		Topic:        topic,
		NumQuestions: count,
		Difficulty:   diff,
	})
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	if len(res.Questions) == 0 {
		return fmt.Errorf("the model returned no usable questions (%d candidates dropped)", res.Dropped)
	}
	if res.Dropped > 0 {
		fmt.Fprintf(out, "(%d malformed candidates dropped)\n\n", res.Dropped)
	}

	if practice {
		runPractice(cmd.InOrStdin(), out, res.Questions)
	} else {
		printQuestions(out, res.Questions)
	}

	if !save {
		return nil
	}
	if title == "" {
		title = topic
	}
	created, err := svc.CreateQuiz(ctx, user, &quiz.Quiz{
		Title:        title,
		Topic:        topic,
		TimerSeconds: timer,
		Questions:    res.Questions,
	})
	if err != nil {
		return fmt.Errorf("save quiz: %w", err)
	}
	fmt.Fprintf(out, "\nSaved quiz %s (%d questions).\n", created.ID, len(created.Questions))
	return nil
}

func printQuestions(w io.Writer, qs []quiz.Question) {
	for i, q := range qs {
		fmt.Fprintf(w, "── Question %d/%d ──\n", i+1, len(qs))
		printOptions(w, q)
		fmt.Fprintf(w, "Answer: %s\n\n", q.AnswerSpec)
	}
}

func printOptions(w io.Writer, q quiz.Question) {
	fmt.Fprintln(w, q.Text)
	for j, opt := range q.Options {
		fmt.Fprintf(w, "  %c) %s\n", 'A'+j, opt)
	}
}

// runPractice asks each question on the terminal and grades the reply the
// way a stored answer is graded.
func runPractice(in io.Reader, w io.Writer, qs []quiz.Question) {
	scanner := bufio.NewScanner(in)
	var correct, answered int

	for i, q := range qs {
		fmt.Fprintf(w, "── Question %d/%d ──\n", i+1, len(qs))
		printOptions(w, q)

		fmt.Fprint(w, "\nYour answer: ")
		if !scanner.Scan() {
			fmt.Fprintln(w, "\n(input closed)")
			break
		}
		reply := strings.TrimSpace(scanner.Text())
		if reply == "" {
			fmt.Fprintln(w, "(skipped)")
			fmt.Fprintln(w)
			continue
		}
		answered++

		idx := answer.CorrectIndex(quiz.Question{Options: q.Options, AnswerSpec: reply})
		want := answer.CorrectIndex(q)
		if idx >= 0 && idx == want {
			correct++
			fmt.Fprintln(w, "\033[32m✓ Correct!\033[0m")
		} else if want >= 0 {
			fmt.Fprintf(w, "\033[31m✗ Wrong.\033[0m Answer: %c) %s\n", 'A'+want, q.Options[want])
		} else {
			fmt.Fprintf(w, "\033[31m✗ Wrong.\033[0m Answer: %s\n", q.AnswerSpec)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Score: %d/%d answered correctly\n", correct, answered)
}
