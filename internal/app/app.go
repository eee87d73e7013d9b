package app

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/pylearn/internal/progression"
	"github.com/abhisek/pylearn/internal/router"
	"github.com/abhisek/pylearn/internal/screen"
	"github.com/abhisek/pylearn/internal/screens/home"
	"github.com/abhisek/pylearn/internal/stats"
	"github.com/abhisek/pylearn/internal/store"
	"github.com/abhisek/pylearn/internal/ui/layout"
	"github.com/abhisek/pylearn/internal/validator"
)

// Options holds the services the TUI works with.
type Options struct {
	Store     *store.Store
	Engine    *progression.Engine
	Validator *validator.Validator
	Stats     *stats.Service
	UserID    int64
	Logger    *zap.Logger
}

type globalLoadedMsg struct {
	Global stats.Global
	Err    error
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	opts   Options
	router *router.Router
	global stats.Global
	width  int
	height int
}

// newAppModel creates a new AppModel with the home screen.
func newAppModel(opts Options) AppModel {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	homeScreen := home.New(screen.Deps{
		Store:     opts.Store,
		Engine:    opts.Engine,
		Validator: opts.Validator,
		Stats:     opts.Stats,
		UserID:    opts.UserID,
	})
	return AppModel{
		opts:   opts,
		router: router.New(homeScreen),
	}
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.loadGlobal(), m.router.Active().Init())
}

// loadGlobal recomputes the header's global percentage.
func (m AppModel) loadGlobal() tea.Cmd {
	if m.opts.Stats == nil {
		return nil
	}
	svc, userID := m.opts.Stats, m.opts.UserID
	return func() tea.Msg {
		g, err := svc.GlobalProgress(context.Background(), userID)
		return globalLoadedMsg{Global: g, Err: err}
	}
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case globalLoadedMsg:
		if msg.Err != nil {
			m.opts.Logger.Warn("global progress", zap.Error(msg.Err))
			return m, nil
		}
		m.global = msg.Global
		return m, nil

	case screen.ProgressChangedMsg:
		return m, tea.Batch(m.loadGlobal(), m.router.Update(msg))

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	header := layout.RenderHeader(m.router.Trail(), m.global.GlobalPercent, m.width)

	var footerHints []layout.KeyHint
	if p, ok := active.(screen.KeyHintProvider); ok {
		footerHints = p.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Retour"},
			{Key: "Ctrl+C", Description: "Quitter"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "Naviguer"},
			{Key: "Enter", Description: "Choisir"},
			{Key: "Ctrl+C", Description: "Quitter"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
