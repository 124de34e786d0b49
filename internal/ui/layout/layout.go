package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/abhisek/speakset/internal/ui/theme"
)

// A question card, the strip and one line of feedback need this much room.
const (
	MinWidth  = 60
	MinHeight = 16
)

// Brand is shown at the left of the header.
const Brand = "  Speakset"

// KeyHint represents a key binding hint shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

// IsTooSmall returns true if the terminal is below minimum size.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage renders the "terminal too small" message.
func RenderMinSizeMessage(width, height int) string {
	return lipgloss.NewStyle().
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Width(width).
		Height(height).
		Render(fmt.Sprintf(
			"Terminal too small\n\nNeeds %d x %d\nHave %d x %d",
			MinWidth, MinHeight, width, height,
		))
}

func barStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border)
}

// innerWidth is the usable width inside a bar, border and padding excluded.
func innerWidth(width int) int {
	return max(width-4, 0)
}

// RenderHeader renders the brand, the set title and a status such as the
// current slide. A title that does not fit is cut with an ellipsis.
func RenderHeader(title, status string, width int) string {
	inner := innerWidth(width)

	left := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true).
		Render(Brand)
	right := lipgloss.NewStyle().
		Foreground(theme.Accent).
		Render(status)
	leftLen := lipgloss.Width(left)
	rightLen := lipgloss.Width(right)

	room := max(inner-leftLen-rightLen-2, 0)
	center := lipgloss.NewStyle().
		Foreground(theme.Text).
		Render(ansi.Truncate(title, room, "…"))
	centerLen := lipgloss.Width(center)

	leftGap := max((inner-centerLen)/2-leftLen, 1)
	rightGap := max(inner-leftLen-leftGap-centerLen-rightLen, 1)

	return barStyle(width).Render(
		left + strings.Repeat(" ", leftGap) + center + strings.Repeat(" ", rightGap) + right,
	)
}

// RenderFooter renders the key hints. When the hints do not fit on one
// line only the keys are shown.
func RenderFooter(hints []KeyHint, width int) string {
	content := joinHints(hints, true)
	if lipgloss.Width(content) > innerWidth(width) {
		content = joinHints(hints, false)
	}
	return barStyle(width).Render(content)
}

func joinHints(hints []KeyHint, describe bool) string {
	key := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	desc := lipgloss.NewStyle().Foreground(theme.TextDim)

	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		part := key.Render(h.Key)
		if describe {
			part += " " + desc.Render(h.Description)
		}
		parts = append(parts, part)
	}
	return "  " + strings.Join(parts, "   ")
}

// RenderFrame stacks header, content and footer into exactly height lines.
// Content taller than the space between the bars is clipped.
func RenderFrame(header, content, footer string, width, height int) string {
	contentHeight := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)

	body := lipgloss.NewStyle().
		Width(width).
		Height(contentHeight).
		MaxHeight(contentHeight).
		Render(content)

	return header + "\n" + body + "\n" + footer
}
