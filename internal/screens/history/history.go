package history

import (
	"context"
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/pylearn/internal/router"
	"github.com/abhisek/pylearn/internal/screen"
	"github.com/abhisek/pylearn/internal/store"
	"github.com/abhisek/pylearn/internal/ui/layout"
	"github.com/abhisek/pylearn/internal/ui/theme"
)

// Limit is the number of submissions shown.
const Limit = 50

type historyLoadedMsg struct {
	Attempts  []store.Attempt
	TaskNames map[int64]string
	Err       error
}

// HistoryScreen displays the learner's recent submissions.
type HistoryScreen struct {
	deps      screen.Deps
	attempts  []store.Attempt
	taskNames map[int64]string
	selected  int
	expanded  map[int]bool
	loaded    bool
	errMsg    string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(deps screen.Deps) *HistoryScreen {
	return &HistoryScreen{
		deps:     deps,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	deps := s.deps
	return func() tea.Msg {
		var msg historyLoadedMsg
		err := deps.Store.View(context.Background(), func(r *store.Repo) error {
			ctx := context.Background()
			attempts, err := r.ListAttempts(ctx, deps.UserID, Limit)
			if err != nil {
				return err
			}
			tasks, err := r.ListAllTasks(ctx)
			if err != nil {
				return err
			}
			names := make(map[int64]string, len(tasks))
			for _, t := range tasks {
				names[t.ID] = t.Name
			}
			msg = historyLoadedMsg{Attempts: attempts, TaskNames: names}
			return nil
		})
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		return msg
	}
}

func (s *HistoryScreen) Title() string {
	return "Historique"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Détails"},
		{Key: "↑↓", Description: "Naviguer"},
		{Key: "Esc", Description: "Retour"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.attempts = msg.Attempts
			s.taskNames = msg.TaskNames
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.attempts)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
			return s, nil
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nErreur : %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Chargement de l'historique...")
	}
	if len(s.attempts) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  Aucune soumission pour le moment. À vous de jouer !")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, a := range s.attempts {
		mark := "✓"
		if !a.Success {
			mark = "✗"
		}
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}
		name := s.taskNames[a.TaskID]
		if name == "" {
			name = fmt.Sprintf("#%d", a.TaskID)
		}

		line := fmt.Sprintf("%s%s  %s  %-24s  %s",
			prefix, a.CreatedAt.Local().Format("02/01/2006 15:04"), mark, name, a.Message)

		style := lipgloss.NewStyle().Foreground(resultColor(a.Success))
		if i == s.selected {
			style = style.Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			input := strings.TrimSpace(a.Input)
			if input == "" {
				input = "(vide)"
			}
			for _, l := range strings.Split(input, "\n") {
				b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
					lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render("    "+l)))
				b.WriteString("\n")
			}
		}
	}

	return b.String()
}

func resultColor(ok bool) color.Color {
	if ok {
		return theme.Success
	}
	return theme.Error
}
