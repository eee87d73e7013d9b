package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/pylearn/internal/ui/theme"
)

// Choice is one lettered quiz option.
type Choice struct {
	Letter string
	Text   string
}

// ParseQuestion splits a quiz question into its prompt and lettered options.
// Option lines look like "B) print()". A question without option lines
// yields no choices.
func ParseQuestion(question string) (prompt string, choices []Choice) {
	var promptLines []string
	for _, line := range strings.Split(question, "\n") {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) >= 2 && trimmed[1] == ')' && trimmed[0] >= 'A' && trimmed[0] <= 'Z' {
			choices = append(choices, Choice{
				Letter: trimmed[:1],
				Text:   strings.TrimSpace(trimmed[2:]),
			})
			continue
		}
		if len(choices) == 0 {
			promptLines = append(promptLines, line)
		}
	}
	return strings.TrimSpace(strings.Join(promptLines, "\n")), choices
}

// MultiChoice is a lettered multiple-choice selector. It only records the
// learner's pick; correctness is decided by the caller.
type MultiChoice struct {
	Prompt    string
	Choices   []Choice
	Selected  int
	Submitted bool
	correct   bool
}

// NewMultiChoice builds a selector from a raw quiz question.
func NewMultiChoice(question string) MultiChoice {
	prompt, choices := ParseQuestion(question)
	return MultiChoice{Prompt: prompt, Choices: choices}
}

// Init returns nil.
func (m MultiChoice) Init() tea.Cmd {
	return nil
}

// Update handles arrow navigation, letter shortcuts and enter. It returns
// submit=true when the learner confirms a choice.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, bool) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || len(m.Choices) == 0 {
		return m, false
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
		m.Submitted = false
	case "down", "j":
		if m.Selected < len(m.Choices)-1 {
			m.Selected++
		}
		m.Submitted = false
	case "enter":
		return m, true
	default:
		for i, c := range m.Choices {
			if strings.EqualFold(key, c.Letter) {
				m.Selected = i
				m.Submitted = false
				return m, true
			}
		}
	}
	return m, false
}

// Letter returns the currently selected letter.
func (m MultiChoice) Letter() string {
	if m.Selected < 0 || m.Selected >= len(m.Choices) {
		return ""
	}
	return m.Choices[m.Selected].Letter
}

// Mark records the verdict for the selected choice.
func (m *MultiChoice) Mark(correct bool) {
	m.Submitted = true
	m.correct = correct
}

// View renders the prompt and the options.
func (m MultiChoice) View() string {
	s := lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(m.Prompt) + "\n\n"

	for i, c := range m.Choices {
		prefix := "  "
		if i == m.Selected {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%s)  %s", prefix, c.Letter, c.Text)

		switch {
		case i == m.Selected && m.Submitted && m.correct:
			s += theme.Correct.Render(line) + "\n"
		case i == m.Selected && m.Submitted:
			s += theme.Incorrect.Render(line) + "\n"
		case i == m.Selected:
			s += theme.Selected.Render(line) + "\n"
		default:
			s += theme.Unselected.Render(line) + "\n"
		}
	}

	return s
}
