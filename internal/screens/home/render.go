package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/pylearn/internal/progression"
	"github.com/abhisek/pylearn/internal/stats"
	"github.com/abhisek/pylearn/internal/ui/components"
	"github.com/abhisek/pylearn/internal/ui/theme"
)

const titleFull = `██████╗ ██╗   ██╗██╗     ███████╗ █████╗ ██████╗ ███╗   ██╗
██╔══██╗╚██╗ ██╔╝██║     ██╔════╝██╔══██╗██╔══██╗████╗  ██║
██████╔╝ ╚████╔╝ ██║     █████╗  ███████║██████╔╝██╔██╗ ██║
██╔═══╝   ╚██╔╝  ██║     ██╔══╝  ██╔══██║██╔══██╗██║╚██╗██║
██║        ██║   ███████╗███████╗██║  ██║██║  ██║██║ ╚████║
╚═╝        ╚═╝   ╚══════╝╚══════╝╚═╝  ╚═╝╚═╝  ╚═╝╚═╝  ╚═══╝`

const titleCompact = "P · Y · L · E · A · R · N"

// buttonWidth is the fixed width for menu buttons.
const buttonWidth = 22

// renderTitle returns the block-letter title or the compact fallback.
func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	title := titleFull
	if compact || lipgloss.Width(titleFull) > cw {
		title = titleCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(style.Render(title))
}

// renderDashboard shows global counts, a progress bar and the next task.
func renderDashboard(g stats.Global, next *progression.TaskView, cw int) string {
	num := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	line := fmt.Sprintf("%s %s   %s %s   %s %s",
		num.Render(fmt.Sprintf("%d/%d", g.CompletedModules, g.TotalModules)), theme.Hint.Render("modules"),
		num.Render(fmt.Sprintf("%d/%d", g.CompletedLessons, g.TotalLessons)), theme.Hint.Render("leçons"),
		num.Render(fmt.Sprintf("%d/%d", g.CompletedTasks, g.TotalTasks)), theme.Hint.Render("tâches"),
	)

	overall := stats.Progress{Completed: g.CompletedTasks, Total: g.TotalTasks, Percent: g.GlobalPercent}
	bar := components.NewProgressBar("", overall, true, cw-6).View()

	resume := theme.Hint.Render("Tout est terminé pour le moment !")
	if next != nil {
		resume = theme.Hint.Render("À suivre : ") + theme.Body.Render(next.Name)
	}

	return components.Card(
		lipgloss.NewStyle().Align(lipgloss.Center).Width(cw-6).Render(line+"\n"+bar+"\n"+resume),
		cw, theme.Info)
}

func renderError(msg string, cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Error).
		Width(cw).
		Align(lipgloss.Center).
		Render("Erreur : " + msg)
}

// renderMenu renders each menu item as a fixed-width button.
func renderMenu(items []string, selected int, cw int) string {
	var buttons []string
	for i, label := range items {
		buttons = append(buttons, components.MenuButton(label, i == selected, buttonWidth))
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(buttons, "\n"))
}

// renderMenuCompact renders menu items as plain lines for small terminals
// where bordered buttons would overflow.
func renderMenuCompact(items []string, selected int, cw int) string {
	var lines []string
	for i, label := range items {
		if i == selected {
			lines = append(lines, lipgloss.NewStyle().
				Foreground(theme.BgDark).
				Background(theme.Accent).
				Bold(true).
				Render(" ▸ "+label+" "))
			continue
		}
		lines = append(lines, theme.Unselected.Render("   "+label))
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(lines, "\n"))
}
