package home

import (
	"fmt"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/speakset/internal/ui/components"
	"github.com/abhisek/speakset/internal/ui/theme"
)

const titleFull = ` ___                  _            _
/ __|_ __  ___ __ _ | |__ ___ ___| |_
\__ \ '_ \/ -_) _' || / /(_-</ -_)  _|
|___/ .__/\___\__,_||_\_\/__/\___|\__|
    |_|`

const titleCompact = "S · P · E · A · K · S · E · T"

// renderTitle returns the styled title block or compact fallback.
func renderTitle(cw int, compact bool) string {
	art := titleFull
	if compact {
		art = titleCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(art))
}

// renderStatsBar renders the set counts in a bordered box matching content width.
func renderStatsBar(entries []Entry, cw int) string {
	var started int
	for _, e := range entries {
		if e.Saved != nil {
			started++
		}
	}
	setStyle := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)
	startedStyle := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)

	stats := fmt.Sprintf("%s  %s",
		setStyle.Render(fmt.Sprintf("%d SETS", len(entries))),
		startedStyle.Render(fmt.Sprintf("%d STARTED", started)),
	)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(stats)
}

func renderEmpty(cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Accent).
		Width(cw).
		Align(lipgloss.Center).
		Render("No content loaded (see speakset --help)")
}

// renderMenu centers the menu block in the content width.
func renderMenu(menu components.Menu, cw int) string {
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(menu.View())
}
