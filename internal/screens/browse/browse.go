// Package browse holds the module, lesson and task lists.
package browse

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/pylearn/internal/progression"
	"github.com/abhisek/pylearn/internal/router"
	"github.com/abhisek/pylearn/internal/screen"
	"github.com/abhisek/pylearn/internal/screens/task"
	"github.com/abhisek/pylearn/internal/store"
	"github.com/abhisek/pylearn/internal/ui/layout"
	"github.com/abhisek/pylearn/internal/ui/theme"
)

type rowsLoadedMsg struct {
	Rows []row
	Err  error
}

// loader fetches the rows of one list level.
type loader func(ctx context.Context) ([]row, error)

// opener returns the screen to push for a selected row, or nil.
type opener func(r row) screen.Screen

// ListScreen is a navigable list of modules, lessons or tasks.
type ListScreen struct {
	title   string
	heading string
	load    loader
	open    opener
	list    list
	loaded  bool
	errMsg  string
	notice  string
}

var _ screen.Screen = (*ListScreen)(nil)
var _ screen.KeyHintProvider = (*ListScreen)(nil)
var _ screen.Refresher = (*ListScreen)(nil)

// Modules lists every module with its unlock state and progress.
func Modules(deps screen.Deps) *ListScreen {
	return &ListScreen{
		title:   "Modules",
		heading: "Modules",
		load: func(ctx context.Context) ([]row, error) {
			views, err := deps.Engine.Modules(ctx, deps.UserID)
			if err != nil {
				return nil, err
			}
			rows := make([]row, 0, len(views))
			for _, m := range views {
				p := m.Progress
				r := row{id: m.ID, name: m.Name, progress: &p, state: rowOpen}
				switch {
				case !m.Unlocked:
					r.state = rowLocked
				case p.Complete():
					r.state = rowDone
				}
				r.detail = fmt.Sprintf("%d/%d", p.Completed, p.Total)
				rows = append(rows, r)
			}
			return rows, nil
		},
		open: func(r row) screen.Screen {
			return Lessons(deps, r.id, r.name)
		},
	}
}

// Lessons lists a module's lessons.
func Lessons(deps screen.Deps, moduleID int64, moduleName string) *ListScreen {
	return &ListScreen{
		title:   moduleName,
		heading: "Leçons",
		load: func(ctx context.Context) ([]row, error) {
			views, err := deps.Engine.Lessons(ctx, moduleID, deps.UserID)
			if err != nil {
				return nil, err
			}
			rows := make([]row, 0, len(views))
			for _, l := range views {
				p := l.Progress
				r := row{id: l.ID, name: l.Name, progress: &p}
				switch l.State {
				case progression.LessonCompleted:
					r.state = rowDone
				case progression.LessonInProgress:
					r.state = rowOpen
				default:
					r.state = rowLocked
				}
				r.detail = fmt.Sprintf("%d/%d", p.Completed, p.Total)
				rows = append(rows, r)
			}
			return rows, nil
		},
		open: func(r row) screen.Screen {
			return Tasks(deps, r.id, r.name)
		},
	}
}

// Tasks lists a lesson's tasks in unlock order.
func Tasks(deps screen.Deps, lessonID int64, lessonName string) *ListScreen {
	return &ListScreen{
		title:   lessonName,
		heading: "Tâches",
		load: func(ctx context.Context) ([]row, error) {
			views, err := deps.Engine.Tasks(ctx, lessonID, deps.UserID)
			if err != nil {
				return nil, err
			}
			rows := make([]row, 0, len(views))
			for _, t := range views {
				r := row{id: t.ID, name: t.Name, detail: string(t.Type)}
				switch {
				case t.Status == store.StatusCompleted:
					r.state = rowDone
				case t.Status == store.StatusFailed:
					r.state = rowFailed
				case t.Unlocked:
					r.state = rowOpen
				default:
					r.state = rowLocked
				}
				rows = append(rows, r)
			}
			return rows, nil
		},
		open: func(r row) screen.Screen {
			return task.New(deps, r.id)
		},
	}
}

func (s *ListScreen) Init() tea.Cmd {
	return s.Refresh()
}

// Refresh reloads the rows.
func (s *ListScreen) Refresh() tea.Cmd {
	load := s.load
	return func() tea.Msg {
		rows, err := load(context.Background())
		return rowsLoadedMsg{Rows: rows, Err: err}
	}
}

func (s *ListScreen) Title() string {
	return s.title
}

func (s *ListScreen) KeyHints() []layout.KeyHint {
	return listHints()
}

func (s *ListScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case rowsLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.errMsg = ""
		s.list.setRows(msg.Rows)
		return s, nil

	case tea.KeyMsg:
		s.notice = ""
		switch msg.String() {
		case "up", "k":
			s.list.move(-1)
		case "down", "j":
			s.list.move(1)
		case "enter":
			return s, s.selectRow()
		case "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *ListScreen) selectRow() tea.Cmd {
	r, ok := s.list.current()
	if !ok {
		return nil
	}
	if r.state == rowLocked {
		s.notice = "🔒 Terminez d'abord les étapes précédentes."
		return nil
	}
	next := s.open(r)
	if next == nil {
		return nil
	}
	return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
}

func (s *ListScreen) View(width, height int) string {
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

	h := height
	if s.notice != "" {
		h -= 2
	}
	v := s.list.view(s.heading, width, h)
	if s.notice != "" {
		v += "\n\n" + lipgloss.NewStyle().Foreground(theme.Warning).PaddingLeft(4).Render(s.notice)
	}
	return v
}
