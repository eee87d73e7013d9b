package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/pylearn/internal/progression"
	"github.com/abhisek/pylearn/internal/stats"
	"github.com/abhisek/pylearn/internal/store"
	"github.com/abhisek/pylearn/internal/ui/layout"
	"github.com/abhisek/pylearn/internal/validator"
)

// Deps are the services screens read from and submit to, scoped to one
// learner.
type Deps struct {
	Store     *store.Store
	Engine    *progression.Engine
	Validator *validator.Validator
	Stats     *stats.Service
	UserID    int64
}

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Refresher is an optional interface for screens that reload their data
// when they become active again after the screen above them is popped.
type Refresher interface {
	Refresh() tea.Cmd
}

// ProgressChangedMsg is emitted after a submission changed the learner's
// progression, so the header and lists can be recomputed.
type ProgressChangedMsg struct{}
