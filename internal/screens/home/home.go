package home

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/pylearn/internal/progression"
	"github.com/abhisek/pylearn/internal/router"
	"github.com/abhisek/pylearn/internal/screen"
	"github.com/abhisek/pylearn/internal/screens/browse"
	"github.com/abhisek/pylearn/internal/screens/history"
	"github.com/abhisek/pylearn/internal/screens/statistics"
	"github.com/abhisek/pylearn/internal/screens/task"
	"github.com/abhisek/pylearn/internal/stats"
	"github.com/abhisek/pylearn/internal/ui/components"
	"github.com/abhisek/pylearn/internal/ui/layout"
)

const (
	itemContinue = iota
	itemModules
	itemStats
	itemHistory
	itemQuit
)

type dashboardLoadedMsg struct {
	Global stats.Global
	Next   *progression.TaskView
	Err    error
}

// HomeScreen is the main menu with the learner's dashboard.
type HomeScreen struct {
	deps       screen.Deps
	menu       components.Menu
	menuLabels []string
	global     stats.Global
	next       *progression.TaskView
	errMsg     string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.Refresher = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(deps screen.Deps) *HomeScreen {
	h := &HomeScreen{
		deps:       deps,
		menuLabels: []string{"CONTINUER", "MODULES", "STATISTIQUES", "HISTORIQUE", "QUITTER"},
	}

	items := []components.MenuItem{
		{Label: h.menuLabels[itemContinue], Action: h.resume},
		{Label: h.menuLabels[itemModules], Action: func() tea.Cmd {
			return pushScreen(browse.Modules(deps))
		}},
		{Label: h.menuLabels[itemStats], Action: func() tea.Cmd {
			return pushScreen(statistics.New(deps))
		}},
		{Label: h.menuLabels[itemHistory], Action: func() tea.Cmd {
			return pushScreen(history.New(deps))
		}},
		{Label: h.menuLabels[itemQuit], Action: func() tea.Cmd {
			return tea.Quit
		}},
	}
	h.menu = components.NewMenu(items)
	return h
}

// resume opens the next task to work on, or the module list when the
// reachable catalog is done.
func (h *HomeScreen) resume() tea.Cmd {
	if h.next == nil {
		return pushScreen(browse.Modules(h.deps))
	}
	return pushScreen(task.New(h.deps, h.next.ID))
}

func pushScreen(s screen.Screen) tea.Cmd {
	return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.Refresh()
}

// Refresh reloads the dashboard numbers and the resume target.
func (h *HomeScreen) Refresh() tea.Cmd {
	deps := h.deps
	if deps.Stats == nil || deps.Engine == nil {
		return nil
	}
	return func() tea.Msg {
		ctx := context.Background()
		g, err := deps.Stats.GlobalProgress(ctx, deps.UserID)
		if err != nil {
			return dashboardLoadedMsg{Err: err}
		}
		next, err := deps.Engine.Resume(ctx, deps.UserID)
		return dashboardLoadedMsg{Global: g, Next: next, Err: err}
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardLoadedMsg:
		if msg.Err != nil {
			h.errMsg = msg.Err.Error()
			return h, nil
		}
		h.errMsg = ""
		h.global = msg.Global
		h.next = msg.Next
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	// height is the content area; add back header and footer
	compact := layout.IsCompactHeight(height+layout.HeaderHeight+layout.FooterHeight) ||
		layout.IsCompactWidth(width)

	cw := components.ContentWidth(width)

	var sections []string
	sections = append(sections, renderTitle(cw, compact))
	sections = append(sections, renderDashboard(h.global, h.next, cw))
	if h.errMsg != "" {
		sections = append(sections, renderError(h.errMsg, cw))
	}
	if compact {
		sections = append(sections, renderMenuCompact(h.menuLabels, h.menu.Selected, cw))
	} else {
		sections = append(sections, renderMenu(h.menuLabels, h.menu.Selected, cw))
	}

	return components.Frame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return "Accueil"
}
