package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/pylearn/internal/ui/theme"
)

const (
	MinWidth  = 80
	MinHeight = 24

	HeaderHeight = 3
	FooterHeight = 3

	CompactWidthThreshold  = 100
	CompactHeightThreshold = 30
)

// crumbSep separates levels of the navigation trail.
const crumbSep = " › "

// gaugeCells is the width of the header's completion gauge.
const gaugeCells = 10

// KeyHint is one key binding shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

func IsCompactWidth(width int) bool {
	return width < CompactWidthThreshold
}

func IsCompactHeight(height int) bool {
	return height < CompactHeightThreshold
}

// IsTooSmall reports whether the terminal cannot fit a task screen.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage asks the learner to enlarge the terminal.
func RenderMinSizeMessage(width, height int) string {
	body := fmt.Sprintf("Terminal trop petit !\n\nAgrandissez-le à au moins\n%d x %d\n\nActuel : %d x %d",
		MinWidth, MinHeight, width, height)
	return lipgloss.NewStyle().
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Width(width).
		Height(height).
		Render(body)
}

// Breadcrumb joins the navigation trail (home, module, lesson, task) into
// one line no wider than maxWidth. The oldest levels are dropped first and
// replaced by an ellipsis; the current level is always kept.
func Breadcrumb(trail []string, maxWidth int) string {
	crumbs := make([]string, 0, len(trail))
	for _, c := range trail {
		if c != "" {
			crumbs = append(crumbs, c)
		}
	}
	if len(crumbs) == 0 {
		return ""
	}

	line := strings.Join(crumbs, crumbSep)
	for skip := 1; lipgloss.Width(line) > maxWidth && skip < len(crumbs); skip++ {
		line = "…" + crumbSep + strings.Join(crumbs[skip:], crumbSep)
	}
	return line
}

// Gauge draws the learner's global completion as a row of cells.
func Gauge(percent int) string {
	percent = max(0, min(percent, 100))
	filled := percent * gaugeCells / 100

	fill := theme.Secondary
	if percent == 100 {
		fill = theme.Success
	}
	return lipgloss.NewStyle().Foreground(fill).Render(strings.Repeat("▰", filled)) +
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(strings.Repeat("▱", gaugeCells-filled)) +
		lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(fmt.Sprintf(" %3d%%", percent))
}

// RenderHeader shows the app name, where the learner is in the catalog and
// how much of it they have completed.
func RenderHeader(trail []string, percent int, width int) string {
	brand := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render("  PyLearn")
	gauge := Gauge(percent)

	// border and padding take 4 columns
	inner := max(width-4, 0)
	room := inner - lipgloss.Width(brand) - lipgloss.Width(gauge) - 4

	var crumbs string
	if room > 0 && len(trail) > 0 {
		line := Breadcrumb(trail, room)
		if i := strings.LastIndex(line, crumbSep); i >= 0 {
			crumbs = theme.Hint.Render(line[:i+len(crumbSep)]) +
				lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(line[i+len(crumbSep):])
		} else {
			crumbs = lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(line)
		}
	}

	gap := max(inner-lipgloss.Width(brand)-lipgloss.Width(crumbs)-lipgloss.Width(gauge)-2, 1)
	content := brand + "  " + crumbs + strings.Repeat(" ", gap) + gauge

	return bar(content, width)
}

// RenderFooter lists the active screen's key hints.
func RenderFooter(hints []KeyHint, width int) string {
	key := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	desc := lipgloss.NewStyle().Foreground(theme.TextDim)

	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = key.Render(h.Key) + " " + desc.Render(h.Description)
	}
	return bar("  "+strings.Join(parts, "   "), width)
}

func bar(content string, width int) string {
	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Render(content)
}

// RenderFrame stacks header, content and footer, padding the content so
// the footer stays on the last rows.
func RenderFrame(header, content, footer string, width, height int) string {
	body := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	return header + "\n" +
		lipgloss.NewStyle().Width(width).Height(body).Render(content) + "\n" +
		footer
}
