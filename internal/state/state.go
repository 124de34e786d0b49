// Package state defines the serialized form of a quiz set: which screen was
// showing, which slides were answered, and the slide sequence with each
// question's opaque state.
package state

import (
	"encoding/json"
	"fmt"
)

// ViewState is the coarse screen the set is showing.
type ViewState int

const (
	ShowingIntro     ViewState = iota // Introduction page
	ShowingQuestions                  // One of the questions in the set
	ShowingResults                    // Results screen
	ShowingSolutions                  // Questions with solutions revealed
)

// String returns a human-readable name.
func (v ViewState) String() string {
	switch v {
	case ShowingIntro:
		return "intro"
	case ShowingQuestions:
		return "questions"
	case ShowingResults:
		return "results"
	case ShowingSolutions:
		return "solutions"
	default:
		return fmt.Sprintf("ViewState(%d)", int(v))
	}
}

// Valid reports whether v is one of the declared view states.
func (v ViewState) Valid() bool {
	return v >= ShowingIntro && v <= ShowingSolutions
}

// FormatVersion is the version written into every encoded state.
const FormatVersion = "v1.0.0"

// SequenceState is the slide sequence part of a PersistedState.
type SequenceState struct {
	CurrentSlide int               `json:"currentSlide"`
	Children     []json.RawMessage `json:"children"`
}

// Child returns the saved state of the question at slide i, or nil when
// none was saved.
func (s SequenceState) Child(i int) json.RawMessage {
	if i < 0 || i >= len(s.Children) {
		return nil
	}
	c := s.Children[i]
	if len(c) == 0 || string(c) == "null" {
		return nil
	}
	return c
}

// UnmarshalJSON accepts both "currentSlide" and the older "progress" key.
func (s *SequenceState) UnmarshalJSON(data []byte) error {
	var raw struct {
		CurrentSlide *int            `json:"currentSlide"`
		Progress     *int            `json:"progress"`
		Children     json.RawMessage `json:"children"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Children = childArray(raw.Children)
	switch {
	case raw.CurrentSlide != nil:
		s.CurrentSlide = *raw.CurrentSlide
	case raw.Progress != nil:
		s.CurrentSlide = *raw.Progress
	default:
		s.CurrentSlide = 0
	}
	return nil
}

// childArray returns the elements of raw when it holds a JSON array and nil
// for anything else.
func childArray(raw json.RawMessage) []json.RawMessage {
	var children []json.RawMessage
	if err := json.Unmarshal(raw, &children); err != nil {
		return nil
	}
	return children
}

// PersistedState is everything needed to resume a set where it was left.
type PersistedState struct {
	Version        string        `json:"version"`
	SetViewState   ViewState     `json:"setViewState"`
	AnsweredSlides []int         `json:"answeredSlides"`
	Sequence       SequenceState `json:"sequence"`
}

// Equal reports whether two states describe the same resumable position.
// The version string is not compared; child states are compared byte-wise
// after compaction.
func (p PersistedState) Equal(o PersistedState) bool {
	if p.SetViewState != o.SetViewState || p.Sequence.CurrentSlide != o.Sequence.CurrentSlide {
		return false
	}
	if len(p.AnsweredSlides) != len(o.AnsweredSlides) {
		return false
	}
	seen := make(map[int]bool, len(p.AnsweredSlides))
	for _, s := range p.AnsweredSlides {
		seen[s] = true
	}
	for _, s := range o.AnsweredSlides {
		if !seen[s] {
			return false
		}
	}
	if len(p.Sequence.Children) != len(o.Sequence.Children) {
		return false
	}
	for i := range p.Sequence.Children {
		if !sameJSON(p.Sequence.Child(i), o.Sequence.Child(i)) {
			return false
		}
	}
	return true
}

func sameJSON(a, b json.RawMessage) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	var va, vb any
	if json.Unmarshal(a, &va) != nil || json.Unmarshal(b, &vb) != nil {
		return string(a) == string(b)
	}
	ca, _ := json.Marshal(va)
	cb, _ := json.Marshal(vb)
	return string(ca) == string(cb)
}
