package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizcraft/internal/analytics"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show a user's quiz analytics",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		limit, _ := cmd.Flags().GetInt("limit")

		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		report, err := e.service(nil).Analytics(cmd.Context(), user)
		if err != nil {
			return fmt.Errorf("build report: %w", err)
		}
		printReport(cmd.OutOrStdout(), report, limit)
		return nil
	},
}

func init() {
	statsCmd.Flags().String("user", "", "User to report on (required)")
	statsCmd.Flags().IntP("limit", "n", 10, "Number of recent attempts to list")
	_ = statsCmd.MarkFlagRequired("user")
}

func printReport(w io.Writer, r analytics.Report, limit int) {
	if r.TotalAttempts == 0 {
		fmt.Fprintln(w, "No attempts recorded yet.")
		return
	}

	fmt.Fprintf(w, "Attempts:    %d\n", r.TotalAttempts)
	fmt.Fprintf(w, "Average:     %.1f%%\n", r.AvgScore)
	if r.Best != nil {
		fmt.Fprintf(w, "Best:        %.1f%% on %s\n", r.BestScore, titleOr(r.Best.QuizTitle, r.Best.QuizID))
	}
	if r.MostRecent != nil {
		fmt.Fprintf(w, "Most recent: %.1f%% on %s (%s)\n", r.MostRecent.Score,
			titleOr(r.MostRecent.QuizTitle, r.MostRecent.QuizID),
			r.MostRecent.CreatedAt.Local().Format("2006-01-02 15:04"))
	}

	if len(r.Topics) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "By Topic")
		fmt.Fprintln(w, strings.Repeat("─", 42))
		fmt.Fprintf(w, "%-24s  %8s  %8s\n", "Topic", "Attempts", "Avg")
		fmt.Fprintln(w, strings.Repeat("─", 42))
		for _, t := range r.Topics {
			topic := t.Topic
			if topic == "" {
				topic = "(deleted quiz)"
			}
			fmt.Fprintf(w, "%-24s  %8d  %7.1f%%\n", truncate(topic, 24), t.Attempts, t.AvgScore)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Recent Attempts")
	fmt.Fprintln(w, strings.Repeat("─", 72))
	fmt.Fprintf(w, "%-16s  %-28s  %7s  %7s  %6s\n", "When", "Quiz", "Score", "Correct", "Time")
	fmt.Fprintln(w, strings.Repeat("─", 72))
	for i, a := range r.Attempts {
		if limit > 0 && i >= limit {
			break
		}
		fmt.Fprintf(w, "%-16s  %-28s  %6.1f%%  %3d/%-3d  %5ds\n",
			a.CreatedAt.Local().Format("2006-01-02 15:04"),
			truncate(titleOr(a.QuizTitle, a.QuizID), 28),
			a.Score, a.CorrectAnswers, a.TotalQuestions, a.TotalTimeSeconds)
	}
}

func titleOr(title, id string) string {
	if title != "" {
		return title
	}
	return id
}
