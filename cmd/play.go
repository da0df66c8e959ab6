package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizcraft/internal/player"
	"github.com/abhisek/quizcraft/internal/quiz"
)

var playCmd = &cobra.Command{
	Use:   "play <quiz-id>",
	Short: "Take a quiz in the terminal",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlay,
}

func init() {
	playCmd.Flags().String("user", "", "Player identity the attempt is saved under (required)")
	_ = playCmd.MarkFlagRequired("user")
}

func runPlay(cmd *cobra.Command, args []string) error {
	user, _ := cmd.Flags().GetString("user")

	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.Close()
	svc := e.service(nil)
	ctx := cmd.Context()

	q, err := svc.GetQuiz(ctx, args[0])
	if err != nil {
		return err
	}

	sub, err := player.Run(ctx, q)
	if errors.Is(err, player.ErrAbandoned) {
		fmt.Fprintln(cmd.OutOrStdout(), "Attempt abandoned; nothing saved.")
		return nil
	}
	if err != nil {
		return err
	}

	selections := make([]quiz.Selection, len(sub.Answers))
	for i, rec := range sub.Answers {
		selections[i] = quiz.Selection{
			QuestionIndex:    rec.QuestionIndex,
			SelectedOption:   rec.SelectedOption,
			TimeSpentSeconds: rec.TimeSpentSeconds,
		}
	}
	saved, err := svc.AttemptQuiz(ctx, user, q.ID, selections, sub.TotalTimeSeconds)
	if err != nil {
		return fmt.Errorf("save attempt: %w", err)
	}

	out := cmd.OutOrStdout()
	a := saved.Attempt
	fmt.Fprintf(out, "Saved attempt %s\n", a.ID)
	fmt.Fprintf(out, "Score:     %.1f%% (%d/%d)\n", a.Score, a.CorrectAnswers, a.TotalQuestions)
	if q.Timed() {
		fmt.Fprintf(out, "Time:      %ds of %ds\n", a.TotalTimeSeconds, q.TimerSeconds)
	}
	fmt.Fprintf(out, "Try next:  %s\n", saved.NextDifficulty)
	return nil
}
