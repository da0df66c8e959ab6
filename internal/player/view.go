package player

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizcraft/internal/answer"
	"github.com/abhisek/quizcraft/internal/ui/components"
	"github.com/abhisek/quizcraft/internal/ui/layout"
	"github.com/abhisek/quizcraft/internal/ui/theme"
)

func (m Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	header := layout.RenderHeader(m.quiz.Title, m.status(), m.width)
	footer := layout.RenderFooter(m.hints(), m.width)
	v.SetContent(layout.RenderFrame(header, m.body(), footer, m.width, m.height))
	return v
}

func (m Model) status() string {
	if !m.state.Timed {
		return theme.Dim.Render("untimed")
	}
	return theme.Clock(m.state.Remaining).Render("T " + formatClock(m.state.Remaining))
}

func (m Model) hints() []layout.KeyHint {
	switch {
	case m.result != nil:
		return []layout.KeyHint{{Key: "←/→", Description: "Review"}, {Key: "q", Description: "Done"}}
	case m.confirmQuit:
		return []layout.KeyHint{{Key: "y", Description: "Quit"}, {Key: "n", Description: "Keep playing"}}
	case m.typing:
		return []layout.KeyHint{{Key: "Enter", Description: "Answer"}, {Key: "Esc", Description: "Cancel"}}
	}
	return []layout.KeyHint{
		{Key: "A-D", Description: "Answer"},
		{Key: "←/→", Description: "Prev/Next"},
		{Key: "/", Description: "Type"},
		{Key: "s", Description: "Submit"},
		{Key: "Esc", Description: "Quit"},
	}
}

func (m Model) body() string {
	if m.result != nil {
		return m.renderSummary()
	}
	return m.renderQuestion()
}

func (m Model) renderQuestion() string {
	width := max(m.width-4, 20)
	var b strings.Builder

	progress := components.ProgressBar{
		Label: fmt.Sprintf("Question %d of %d", m.state.Current+1, m.state.Total),
		Done:  m.state.Answered,
		Total: m.state.Total,
		Width: min(width, 60),
	}
	b.WriteString("  " + progress.View())
	b.WriteString("\n")
	b.WriteString(theme.Dim.Render(fmt.Sprintf("  on this question %s", formatClock(m.state.QuestionElapsed))))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", width)))
	b.WriteString("\n\n")

	b.WriteString(indent(m.choice.View()))

	if m.typing {
		b.WriteString("\n  Answer: " + m.input.View() + "\n")
	}
	if m.notice != "" {
		b.WriteString("\n  " + theme.Incorrect.Render(m.notice) + "\n")
	}
	if m.confirmQuit {
		b.WriteString("\n  " + theme.Chosen.Render("Quit without submitting? (y/n)") + "\n")
	}
	return b.String()
}

func (m Model) renderSummary() string {
	res := m.result.Result
	var b strings.Builder

	heading := "Attempt submitted"
	if m.result.Auto {
		heading = "Time's up! Attempt submitted"
	}
	b.WriteString("  " + theme.Title.Render(heading) + "\n\n")

	scoreStyle := theme.Correct
	if res.Score < 50 {
		scoreStyle = theme.Incorrect
	}
	b.WriteString(fmt.Sprintf("  Score    %s\n", scoreStyle.Render(fmt.Sprintf("%.0f%%", res.Score))))
	b.WriteString(fmt.Sprintf("  Correct  %d of %d answered (%d questions)\n", res.CorrectAnswers, res.TotalQuestions, len(m.quiz.Questions)))
	if m.state.Timed {
		b.WriteString(fmt.Sprintf("  Time     %s\n", formatClock(m.result.TotalTimeSeconds)))
	}
	b.WriteString("\n")

	q := m.quiz.Questions[m.review]
	review := components.NewMultiChoice(
		fmt.Sprintf("%d. %s", m.review+1, q.Text), q.Options, -1)
	review.Reveal = true
	review.CorrectIndex = answer.CorrectIndex(q)

	verdict := theme.Dim.Render("not answered")
	for _, rec := range m.result.Answers {
		if rec.QuestionIndex != m.review {
			continue
		}
		review.Chosen = indexOf(q.Options, rec.SelectedOption)
		if rec.IsCorrect {
			verdict = theme.Correct.Render("correct")
		} else {
			verdict = theme.Incorrect.Render("incorrect")
		}
	}
	b.WriteString(indent(review.View()))
	b.WriteString("\n  " + verdict + "\n")
	return b.String()
}

func formatClock(seconds int) string {
	seconds = max(seconds, 0)
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n") + "\n"
}
