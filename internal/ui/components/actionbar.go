package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
)

// Action is one entry of an ActionBar.
type Action struct {
	Label    string
	Run      func() tea.Cmd
	Disabled bool
}

// ActionBar is a horizontal row of buttons navigated with left/right.
type ActionBar struct {
	Actions  []Action
	Selected int
}

// NewActionBar creates a bar with the first enabled action selected.
func NewActionBar(actions []Action) ActionBar {
	b := ActionBar{Actions: actions}
	for i, a := range actions {
		if !a.Disabled {
			b.Selected = i
			break
		}
	}
	return b
}

// Update handles keyboard navigation and activation.
func (b ActionBar) Update(msg tea.Msg) (ActionBar, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return b, nil
	}

	switch kmsg.String() {
	case "left", "h", "shift+tab":
		for i := b.Selected - 1; i >= 0; i-- {
			if !b.Actions[i].Disabled {
				b.Selected = i
				break
			}
		}
	case "right", "l", "tab":
		for i := b.Selected + 1; i < len(b.Actions); i++ {
			if !b.Actions[i].Disabled {
				b.Selected = i
				break
			}
		}
	case "enter":
		if b.Selected >= 0 && b.Selected < len(b.Actions) {
			a := b.Actions[b.Selected]
			if a.Run != nil && !a.Disabled {
				return b, a.Run()
			}
		}
	}
	return b, nil
}

// View renders the bar.
func (b ActionBar) View() string {
	parts := make([]string, 0, len(b.Actions))
	for i, a := range b.Actions {
		if a.Disabled {
			continue
		}
		parts = append(parts, NewButton(a.Label, i == b.Selected, nil).View())
	}
	return strings.Join(parts, "  ")
}
