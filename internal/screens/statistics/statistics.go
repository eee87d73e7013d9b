package statistics

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/pylearn/internal/progression"
	"github.com/abhisek/pylearn/internal/screen"
	"github.com/abhisek/pylearn/internal/stats"
	"github.com/abhisek/pylearn/internal/ui/components"
	"github.com/abhisek/pylearn/internal/ui/layout"
	"github.com/abhisek/pylearn/internal/ui/theme"
)

type statsLoadedMsg struct {
	Global  stats.Global
	Modules []progression.ModuleView
	Err     error
}

// StatisticsScreen shows global and per-module completion.
type StatisticsScreen struct {
	deps    screen.Deps
	global  stats.Global
	modules []progression.ModuleView
	loaded  bool
	errMsg  string
}

var _ screen.Screen = (*StatisticsScreen)(nil)
var _ screen.KeyHintProvider = (*StatisticsScreen)(nil)

// New creates a new StatisticsScreen.
func New(deps screen.Deps) *StatisticsScreen {
	return &StatisticsScreen{deps: deps}
}

func (s *StatisticsScreen) Init() tea.Cmd {
	deps := s.deps
	return func() tea.Msg {
		ctx := context.Background()
		g, err := deps.Stats.GlobalProgress(ctx, deps.UserID)
		if err != nil {
			return statsLoadedMsg{Err: err}
		}
		modules, err := deps.Engine.Modules(ctx, deps.UserID)
		return statsLoadedMsg{Global: g, Modules: modules, Err: err}
	}
}

func (s *StatisticsScreen) Title() string {
	return "Statistiques"
}

func (s *StatisticsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Esc", Description: "Retour"},
	}
}

func (s *StatisticsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case statsLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.global = msg.Global
		s.modules = msg.Modules
	case screen.ProgressChangedMsg:
		return s, s.Init()
	}
	return s, nil
}

func (s *StatisticsScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nErreur : %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Chargement...")
	}

	cw := components.ContentWidth(width)
	g := s.global

	counters := strings.Join([]string{
		counter("Modules", g.CompletedModules, g.TotalModules),
		counter("Leçons", g.CompletedLessons, g.TotalLessons),
		counter("Tâches", g.CompletedTasks, g.TotalTasks),
	}, "   ")

	overall := stats.Progress{Completed: g.CompletedTasks, Total: g.TotalTasks, Percent: g.GlobalPercent}
	var b strings.Builder
	b.WriteString(theme.Title.Width(cw).Render("Progression globale"))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Render(counters))
	b.WriteString("\n\n")
	b.WriteString(components.NewProgressBar("", overall, true, cw).View())
	b.WriteString("\n\n")

	var rows []string
	for _, m := range s.modules {
		label := fmt.Sprintf("%-24s", truncate(m.Name, 24))
		rows = append(rows, components.NewProgressBar(label, m.Progress, true, cw-6).View())
	}
	if len(rows) > 0 {
		b.WriteString(components.Card(strings.Join(rows, "\n"), cw, theme.Border))
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(b.String())
}

func counter(label string, done, total int) string {
	return lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render(fmt.Sprintf("%d/%d", done, total)) +
		" " + theme.Hint.Render(label)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
