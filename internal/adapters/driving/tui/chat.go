// Package tui is the interactive chat surface, built on Bubble Tea.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/calder-labs/askdoc-cli/internal/core/domain"
	"github.com/calder-labs/askdoc-cli/internal/core/ports/driving"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	questionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	contextStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
)

// answerMsg carries a finished answer (or its failure) back into Update.
type answerMsg struct {
	answer *domain.Answer
	err    error
}

// turn is one question/answer exchange in the transcript.
type turn struct {
	question string
	answer   string
	context  string
	failed   bool
}

// Model is the Bubble Tea model for the chat session.
type Model struct {
	chat     driving.ChatService
	group    string
	input    textinput.Model
	viewport viewport.Model
	turns    []turn
	waiting  bool
	ready    bool
}

// New creates a chat model. group may be empty for ungrounded chat.
func New(chat driving.ChatService, group string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0

	return Model{
		chat:     chat,
		group:    group,
		input:    ti,
		viewport: viewport.New(0, 0),
	}
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and answer events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 2 + ih + 1 // title line, hint line, input frame, status line
		m.viewport.Width = msg.Width
		m.viewport.Height = max(3, msg.Height-reserved)
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		if msg.Type == tea.KeyEnter && !m.waiting {
			question := strings.TrimSpace(m.input.Value())
			if question == "" {
				return m, nil
			}
			m.input.Reset()
			m.waiting = true
			m.turns = append(m.turns, turn{question: question})
			m.viewport.SetContent(m.renderTranscript())
			m.viewport.GotoBottom()
			return m, m.askCmd(question)
		}

	case answerMsg:
		m.waiting = false
		last := &m.turns[len(m.turns)-1]
		if msg.err != nil {
			last.answer = msg.err.Error()
			last.failed = true
		} else {
			last.answer = msg.answer.Content
			if msg.answer.Context != nil {
				last.context = fmt.Sprintf("file %s, part %d (similarity %.2f)",
					msg.answer.Context.FileID, msg.answer.Context.Part, msg.answer.Context.Similarity)
			}
		}
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// askCmd runs the blocking Ask call off the update loop.
func (m Model) askCmd(question string) tea.Cmd {
	chat, group := m.chat, m.group
	return func() tea.Msg {
		answer, err := chat.Ask(context.Background(), question, driving.AskOptions{Group: group})
		return answerMsg{answer: answer, err: err}
	}
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	title := titleStyle.Render("askdoc chat")
	if m.group != "" {
		title += hintStyle.Render("  (grounded in group " + m.group + ")")
	}
	hint := hintStyle.Render("Enter to send, Esc to quit")

	status := ""
	if m.waiting {
		status = hintStyle.Render("Thinking...")
	}

	return title + "\n" + hint + "\n" +
		m.viewport.View() + "\n" +
		inputBoxStyle.Render(m.input.View()) + "\n" +
		status
}

// renderTranscript formats all turns for the viewport.
func (m Model) renderTranscript() string {
	var b strings.Builder
	for _, t := range m.turns {
		b.WriteString(questionStyle.Render("You: " + t.question))
		b.WriteString("\n")
		switch {
		case t.answer == "":
			b.WriteString(hintStyle.Render("..."))
		case t.failed:
			b.WriteString(errorStyle.Render(t.answer))
		default:
			b.WriteString(t.answer)
			if t.context != "" {
				b.WriteString("\n")
				b.WriteString(contextStyle.Render("Context: " + t.context))
			}
		}
		b.WriteString("\n\n")
	}
	return b.String()
}

// Run starts the chat session and blocks until the user quits.
func Run(chat driving.ChatService, group string) error {
	p := tea.NewProgram(New(chat, group), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
