// Package player runs a quiz attempt in the terminal. The attempt.Session
// owns the clocks; its callbacks are relayed into the bubbletea program as
// messages.
package player

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizcraft/internal/answer"
	"github.com/abhisek/quizcraft/internal/attempt"
	"github.com/abhisek/quizcraft/internal/quiz"
	"github.com/abhisek/quizcraft/internal/ui/components"
)

// ErrAbandoned is returned by Run when the player quits before submitting.
var ErrAbandoned = errors.New("attempt abandoned")

// TickMsg carries the session state after a clock tick.
type TickMsg attempt.State

// SubmittedMsg carries the finished attempt.
type SubmittedMsg attempt.Submission

// Model is the bubbletea model for one attempt.
type Model struct {
	session *attempt.Session
	quiz    *quiz.Quiz

	state  attempt.State
	choice components.MultiChoice
	input  textinput.Model
	typing bool
	notice string

	confirmQuit bool
	abandoned   bool

	result *attempt.Submission
	review int

	width  int
	height int
}

// New creates a model positioned on the session's current question.
func New(s *attempt.Session) Model {
	ti := textinput.New()
	ti.Placeholder = "letter or option text"
	ti.CharLimit = 200

	m := Model{
		session: s,
		quiz:    s.Quiz(),
		input:   ti,
	}
	m.syncQuestion()
	return m
}

// Run plays q until it is submitted, by the player or by the countdown.
func Run(ctx context.Context, q *quiz.Quiz, opts ...tea.ProgramOption) (attempt.Submission, error) {
	s := attempt.NewSession(q)
	p := tea.NewProgram(New(s), append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)...)

	s.OnTick(func(st attempt.State) { p.Send(TickMsg(st)) })
	s.OnSubmit(func(sub attempt.Submission) {
		// Manual submits arrive through submitCmd.
		if sub.Auto {
			p.Send(SubmittedMsg(sub))
		}
	})
	s.Start(ctx)
	defer s.Stop()

	final, err := p.Run()
	if err != nil {
		return attempt.Submission{}, fmt.Errorf("run player: %w", err)
	}
	m, ok := final.(Model)
	if !ok {
		return attempt.Submission{}, ErrAbandoned
	}
	sub, ok := m.Result()
	if !ok {
		return attempt.Submission{}, ErrAbandoned
	}
	return sub, nil
}

// Result returns the submission once the attempt has finished.
func (m Model) Result() (attempt.Submission, bool) {
	if m.result == nil {
		return attempt.Submission{}, false
	}
	return *m.result, true
}

// Abandoned reports whether the player quit without submitting.
func (m Model) Abandoned() bool { return m.abandoned }

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case TickMsg:
		m.state = attempt.State(msg)
		return m, nil

	case SubmittedMsg:
		if m.result == nil {
			sub := attempt.Submission(msg)
			m.result = &sub
			m.typing = false
			m.confirmQuit = false
			m.state = m.session.State()
			m.review = 0
		}
		return m, nil

	case components.ChosenMsg:
		return m.record(msg.Index), nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.typing {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		m.abandoned = m.result == nil
		return m, tea.Quit
	}

	if m.result != nil {
		switch key {
		case "right", "n":
			m.review = min(m.review+1, len(m.quiz.Questions)-1)
		case "left", "p":
			m.review = max(m.review-1, 0)
		case "q", "esc", "enter":
			return m, tea.Quit
		}
		return m, nil
	}

	if m.confirmQuit {
		switch key {
		case "y", "Y":
			m.abandoned = true
			return m, tea.Quit
		case "n", "N", "esc":
			m.confirmQuit = false
		}
		return m, nil
	}

	if m.typing {
		switch key {
		case "esc":
			m.typing = false
			m.input.Blur()
			return m, nil
		case "enter":
			return m.submitTyped()
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch key {
	case "esc":
		m.confirmQuit = true
		return m, nil
	case "right", "n":
		if m.session.Next() {
			m.syncQuestion()
		}
		return m, nil
	case "left", "p":
		if m.session.Prev() {
			m.syncQuestion()
		}
		return m, nil
	case "s":
		return m, m.submitCmd()
	case "/":
		m.typing = true
		m.notice = ""
		m.input.Reset()
		return m, m.input.Focus()
	}

	var cmd tea.Cmd
	m.choice, cmd = m.choice.Update(msg)
	return m, cmd
}

// submitTyped resolves typed text the same way an authored answer is
// resolved, so "b", "B)", "Answer: B" and the option text all pick B.
func (m Model) submitTyped() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	m.typing = false
	m.input.Blur()
	if text == "" {
		return m, nil
	}

	q, _ := m.session.Question()
	idx := answer.CorrectIndex(quiz.Question{Options: q.Options, AnswerSpec: text})
	if idx < 0 {
		m.notice = fmt.Sprintf("No option matches %q", text)
		return m, nil
	}
	m.choice.Cursor = idx
	m.choice.Chosen = idx
	return m.record(idx), nil
}

func (m Model) record(idx int) Model {
	if m.result != nil {
		return m
	}
	q, _ := m.session.Question()
	if idx < 0 || idx >= len(q.Options) {
		return m
	}
	if _, err := m.session.Select(q.Options[idx]); err != nil {
		m.notice = err.Error()
		return m
	}
	m.notice = ""
	m.state = m.session.State()
	return m
}

// submitCmd submits off the event loop, since the session's submit
// callback may send into the program.
func (m Model) submitCmd() tea.Cmd {
	s := m.session
	return func() tea.Msg {
		sub, err := s.Submit()
		if err != nil {
			// The countdown got there first; its message is on the way.
			return nil
		}
		return SubmittedMsg(sub)
	}
}

func (m *Model) syncQuestion() {
	q, i := m.session.Question()
	chosen := -1
	if sel, ok := m.session.Selected(i); ok {
		chosen = indexOf(q.Options, sel)
	}
	m.choice = components.NewMultiChoice(q.Text, q.Options, chosen)
	m.state = m.session.State()
	m.notice = ""
}

func indexOf(options []string, v string) int {
	for i, opt := range options {
		if opt == v {
			return i
		}
	}
	return -1
}
