// Package home is the start screen: a menu of the loaded quiz sets with
// their saved progress.
package home

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/speakset/internal/content"
	"github.com/abhisek/speakset/internal/router"
	"github.com/abhisek/speakset/internal/screen"
	"github.com/abhisek/speakset/internal/state"
	"github.com/abhisek/speakset/internal/ui/components"
)

// Entry is one set offered on the home screen.
type Entry struct {
	Params *content.Params

	// Saved is the view the set was left in, or nil when it has no saved
	// progress.
	Saved *state.ViewState
}

// RefreshMsg asks the home screen to reload its entries.
type RefreshMsg struct{}

// Options configures a HomeScreen.
type Options struct {
	// Entries lists the sets. It is called on creation and on RefreshMsg.
	Entries func() []Entry

	// Open creates the screen for a set.
	Open func(p *content.Params) screen.Screen
}

// HomeScreen is the main home screen of the application.
type HomeScreen struct {
	opts    Options
	entries []Entry
	menu    components.Menu
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(opts Options) *HomeScreen {
	h := &HomeScreen{opts: opts}
	h.reload()
	return h
}

func (h *HomeScreen) reload() {
	selected := h.menu.Selected
	if h.opts.Entries != nil {
		h.entries = h.opts.Entries()
	}

	items := make([]components.MenuItem, 0, len(h.entries)+1)
	for _, e := range h.entries {
		items = append(items, components.MenuItem{
			Label:  e.Params.DisplayTitle(),
			Hint:   entryHint(e),
			Action: h.openAction(e.Params),
		})
	}
	items = append(items, components.MenuItem{Label: "Exit", Action: func() tea.Cmd {
		return tea.Quit
	}})

	h.menu = components.NewMenu(items)
	if selected > 0 && selected < len(items) {
		h.menu.Selected = selected
	}
}

func (h *HomeScreen) openAction(p *content.Params) func() tea.Cmd {
	return func() tea.Cmd {
		if h.opts.Open == nil {
			return nil
		}
		s := h.opts.Open(p)
		return func() tea.Msg {
			return router.PushScreenMsg{Screen: s}
		}
	}
}

func entryHint(e Entry) string {
	n := len(e.Params.Questions)
	noun := "questions"
	if n == 1 {
		noun = "question"
	}
	hint := fmt.Sprintf("%d %s", n, noun)
	if e.Saved != nil {
		hint += " · " + savedLabel(*e.Saved)
	}
	return hint
}

func savedLabel(v state.ViewState) string {
	switch v {
	case state.ShowingResults:
		return "finished"
	case state.ShowingSolutions:
		return "reviewing"
	default:
		return "in progress"
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if _, ok := msg.(RefreshMsg); ok {
		h.reload()
		return h, nil
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var sections []string
	sections = append(sections, renderTitle(cw, height < 24))
	sections = append(sections, renderStatsBar(h.entries, cw))
	if len(h.entries) == 0 {
		sections = append(sections, renderEmpty(cw))
	}
	sections = append(sections, renderMenu(h.menu, cw))

	return components.Frame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
