// Package navigation renders the slide strip below the questions: one
// control per question reflecting whether it is answered or current.
package navigation

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/speakset/internal/ui/theme"
)

// Status is the state of one slide as shown in the strip.
type Status int

const (
	Unanswered Status = iota
	Answered
	Current
)

func (s Status) String() string {
	switch s {
	case Answered:
		return "answered"
	case Current:
		return "current"
	default:
		return "unanswered"
	}
}

// Item is one control in the strip.
type Item struct {
	Slide    int
	Label    string
	Status   Status
	Answered bool
}

// Strip holds only what it is given; it owns no state of its own.
type Strip struct {
	Count    int
	Answered []int
	Current  int
	Jump     func(slide int) error
}

// Items returns one item per slide. The current slide reports Current even
// when answered; Answered is set independently.
func (s Strip) Items() []Item {
	answered := make(map[int]bool, len(s.Answered))
	for _, a := range s.Answered {
		answered[a] = true
	}
	items := make([]Item, s.Count)
	for i := range items {
		st := Unanswered
		switch {
		case i == s.Current:
			st = Current
		case answered[i]:
			st = Answered
		}
		items[i] = Item{
			Slide:    i,
			Label:    fmt.Sprintf("%d", i+1),
			Status:   st,
			Answered: answered[i],
		}
	}
	return items
}

// Activate invokes the jump callback for slide.
func (s Strip) Activate(slide int) error {
	if s.Jump == nil {
		return nil
	}
	return s.Jump(slide)
}

// Next activates the slide after the current one, if any.
func (s Strip) Next() error {
	if s.Current+1 >= s.Count {
		return nil
	}
	return s.Activate(s.Current + 1)
}

// Prev activates the slide before the current one, if any.
func (s Strip) Prev() error {
	if s.Current <= 0 {
		return nil
	}
	return s.Activate(s.Current - 1)
}

// View renders the strip as a row of numbered dots.
func (s Strip) View() string {
	var parts []string
	for _, it := range s.Items() {
		mark := "○"
		if it.Answered {
			mark = "●"
		}
		label := mark + " " + it.Label
		switch it.Status {
		case Current:
			parts = append(parts, theme.DotCurrent.Render("["+label+"]"))
		case Answered:
			parts = append(parts, theme.DotAnswered.Render(" "+label+" "))
		default:
			parts = append(parts, theme.DotUnanswered.Render(" "+label+" "))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, strings.Join(parts, " "))
}
