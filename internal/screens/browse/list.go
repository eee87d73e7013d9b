package browse

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/pylearn/internal/stats"
	"github.com/abhisek/pylearn/internal/ui/components"
	"github.com/abhisek/pylearn/internal/ui/layout"
	"github.com/abhisek/pylearn/internal/ui/theme"
)

type rowState int

const (
	rowLocked rowState = iota
	rowOpen
	rowDone
	rowFailed
)

func (s rowState) icon() string {
	switch s {
	case rowDone:
		return "✓"
	case rowFailed:
		return "✗"
	case rowOpen:
		return "○"
	default:
		return "🔒"
	}
}

// row is one selectable line shared by the module, lesson and task lists.
type row struct {
	id       int64
	name     string
	detail   string
	state    rowState
	progress *stats.Progress
}

// list is the cursor and scroll state common to the browse screens.
type list struct {
	rows         []row
	cursor       int
	scrollOffset int
}

func (l *list) move(delta int) {
	next := l.cursor + delta
	if next >= 0 && next < len(l.rows) {
		l.cursor = next
	}
}

func (l *list) current() (row, bool) {
	if l.cursor < 0 || l.cursor >= len(l.rows) {
		return row{}, false
	}
	return l.rows[l.cursor], true
}

// setRows replaces the rows, keeping the cursor on the same id if present.
func (l *list) setRows(rows []row) {
	var id int64
	if r, ok := l.current(); ok {
		id = r.id
	}
	l.rows = rows
	l.cursor = 0
	for i, r := range rows {
		if r.id == id {
			l.cursor = i
			break
		}
	}
}

// adjustScroll keeps the cursor within a window of height rows.
func (l *list) adjustScroll(height int) {
	if height <= 0 {
		return
	}
	if l.cursor < l.scrollOffset {
		l.scrollOffset = l.cursor
	}
	if l.cursor >= l.scrollOffset+height {
		l.scrollOffset = l.cursor - height + 1
	}
}

func (l *list) view(heading string, width, height int) string {
	var lines []string
	lines = append(lines, lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Padding(1, 0, 1, 2).
		Render(strings.ToUpper(heading)))

	if len(l.rows) == 0 {
		lines = append(lines, theme.Hint.Render("    Rien ici pour le moment."))
		return strings.Join(lines, "\n")
	}

	body := height - lipgloss.Height(lines[0])
	l.adjustScroll(body)
	for i := l.scrollOffset; i < len(l.rows) && i-l.scrollOffset < body; i++ {
		lines = append(lines, renderRow(l.rows[i], i == l.cursor, width))
	}
	return strings.Join(lines, "\n")
}

func renderRow(r row, selected bool, width int) string {
	barWidth := 24
	detailWidth := 12
	nameWidth := width - 8 - detailWidth - barWidth - 4
	if nameWidth < 10 {
		nameWidth = 10
	}

	name := r.name
	if n := []rune(name); len(n) > nameWidth {
		name = string(n[:nameWidth-1]) + "…"
	}

	var style lipgloss.Style
	switch {
	case selected:
		style = theme.Selected
	case r.state == rowLocked:
		style = theme.Locked
	case r.state == rowDone:
		style = lipgloss.NewStyle().Foreground(theme.Success)
	case r.state == rowFailed:
		style = lipgloss.NewStyle().Foreground(theme.Error)
	default:
		style = theme.Unselected
	}

	cursor := "  "
	if selected {
		cursor = "▸ "
	}

	line := fmt.Sprintf("  %s%s %s  %s",
		cursor,
		r.state.icon(),
		style.Render(fmt.Sprintf("%-*s", nameWidth, name)),
		theme.Hint.Render(fmt.Sprintf("%-*s", detailWidth, r.detail)),
	)
	if r.progress != nil {
		line += "  " + components.NewProgressBar("", *r.progress, true, barWidth).View()
	}
	return line
}

func listHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Naviguer"},
		{Key: "Enter", Description: "Ouvrir"},
		{Key: "Esc", Description: "Retour"},
	}
}
