package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizcraft/internal/answer"
	"github.com/abhisek/quizcraft/internal/quiz"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Manage stored quizzes",
}

var quizListCmd = &cobra.Command{
	Use:   "list",
	Short: "List quizzes owned by a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")

		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		quizzes, err := e.service(nil).ListMyQuizzes(cmd.Context(), user)
		if err != nil {
			return fmt.Errorf("list quizzes: %w", err)
		}
		printQuizList(cmd.OutOrStdout(), quizzes)
		return nil
	},
}

var quizShowCmd = &cobra.Command{
	Use:   "show <quiz-id>",
	Short: "Show a quiz with its answers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		q, err := e.service(nil).GetQuiz(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printQuiz(cmd.OutOrStdout(), q)
		return nil
	},
}

var quizDeleteCmd = &cobra.Command{
	Use:   "delete <quiz-id>",
	Short: "Delete a quiz owned by --user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")

		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.service(nil).DeleteQuiz(cmd.Context(), user, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted quiz %s.\n", args[0])
		return nil
	},
}

func printQuizList(w io.Writer, quizzes []quiz.Quiz) {
	if len(quizzes) == 0 {
		fmt.Fprintln(w, "No quizzes found.")
		return
	}
	fmt.Fprintf(w, "%-36s  %-24s  %-16s  %5s  %6s  %s\n",
		"ID", "Title", "Topic", "Qs", "Timer", "Created")
	fmt.Fprintln(w, strings.Repeat("─", 110))
	for _, q := range quizzes {
		timer := "-"
		if q.Timed() {
			timer = fmt.Sprintf("%ds", q.TimerSeconds)
		}
		fmt.Fprintf(w, "%-36s  %-24s  %-16s  %5d  %6s  %s\n",
			q.ID, truncate(q.Title, 24), truncate(q.Topic, 16), len(q.Questions), timer,
			q.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
}

func printQuiz(w io.Writer, q *quiz.Quiz) {
	fmt.Fprintf(w, "%s (%s)\n", q.Title, q.Topic)
	if q.Timed() {
		fmt.Fprintf(w, "Timer: %ds\n", q.TimerSeconds)
	}
	fmt.Fprintln(w)
	for i, question := range q.Questions {
		fmt.Fprintf(w, "%d. %s\n", i+1, question.Text)
		correct := answer.CorrectIndex(question)
		for j, opt := range question.Options {
			mark := " "
			if j == correct {
				mark = "*"
			}
			fmt.Fprintf(w, "  %s %c) %s\n", mark, 'A'+j, opt)
		}
		if correct < 0 {
			fmt.Fprintf(w, "  ! answer %q matches no option\n", question.AnswerSpec)
		}
		fmt.Fprintln(w)
	}
}

func init() {
	quizListCmd.Flags().String("user", "", "Owner (required)")
	_ = quizListCmd.MarkFlagRequired("user")
	quizDeleteCmd.Flags().String("user", "", "Owner (required)")
	_ = quizDeleteCmd.MarkFlagRequired("user")

	quizCmd.AddCommand(quizListCmd)
	quizCmd.AddCommand(quizShowCmd)
	quizCmd.AddCommand(quizDeleteCmd)
}
