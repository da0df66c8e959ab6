// Package components holds reusable bubbletea widgets.
package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizcraft/internal/ui/theme"
)

var labels = []string{"A", "B", "C", "D"}

// ChosenMsg is emitted when the player picks an option.
type ChosenMsg struct {
	Index int
}

// MultiChoice is a lettered option list. Chosen and CorrectIndex are -1
// when unset; CorrectIndex is only shown once Reveal is true.
type MultiChoice struct {
	Question     string
	Options      []string
	Cursor       int
	Chosen       int
	CorrectIndex int
	Reveal       bool
}

// NewMultiChoice creates a selector with the cursor on chosen, or on the
// first option when nothing is chosen yet.
func NewMultiChoice(question string, options []string, chosen int) MultiChoice {
	if chosen < 0 || chosen >= len(options) {
		chosen = -1
	}
	return MultiChoice{
		Question:     question,
		Options:      options,
		Cursor:       max(chosen, 0),
		Chosen:       chosen,
		CorrectIndex: -1,
	}
}

// Update moves the cursor with up/down or j/k and picks with enter, a
// number 1-4 or a letter a-d.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	if m.Reveal {
		return m, nil
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
		return m, nil
	case "down", "j":
		if m.Cursor < len(m.Options)-1 {
			m.Cursor++
		}
		return m, nil
	case "enter":
		return m.choose(m.Cursor)
	}

	if idx, ok := keyIndex(key); ok && idx < len(m.Options) {
		return m.choose(idx)
	}
	return m, nil
}

func (m MultiChoice) choose(i int) (MultiChoice, tea.Cmd) {
	m.Cursor = i
	m.Chosen = i
	return m, func() tea.Msg { return ChosenMsg{Index: i} }
}

func keyIndex(key string) (int, bool) {
	if len(key) != 1 {
		return 0, false
	}
	switch c := key[0]; {
	case c >= '1' && c <= '4':
		return int(c - '1'), true
	case c >= 'a' && c <= 'd':
		return int(c - 'a'), true
	}
	return 0, false
}

// View renders the question and its options.
func (m MultiChoice) View() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(m.Question))
	b.WriteString("\n\n")

	for i, opt := range m.Options {
		prefix := "  "
		if i == m.Cursor && !m.Reveal {
			prefix = "> "
		}
		mark := " "
		if i == m.Chosen {
			mark = "*"
		}
		line := fmt.Sprintf("%s%s %s)  %s", prefix, mark, labels[i], opt)

		var style lipgloss.Style
		switch {
		case m.Reveal && i == m.CorrectIndex:
			style = theme.Correct
		case m.Reveal && i == m.Chosen:
			style = theme.Incorrect
		case m.Reveal:
			style = theme.Dim
		case i == m.Cursor:
			style = theme.Cursor
		case i == m.Chosen:
			style = theme.Chosen
		default:
			style = theme.Body
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
