package state

import (
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/mod/semver"
)

// Encode serializes a state, stamping the current format version.
func Encode(ps PersistedState) ([]byte, error) {
	ps.Version = FormatVersion
	if ps.AnsweredSlides == nil {
		ps.AnsweredSlides = []int{}
	}
	children := make([]json.RawMessage, len(ps.Sequence.Children))
	for i, c := range ps.Sequence.Children {
		if len(c) == 0 {
			c = json.RawMessage("null")
		}
		children[i] = c
	}
	ps.Sequence.Children = children
	b, err := json.Marshal(ps)
	if err != nil {
		return nil, fmt.Errorf("marshal state: %w", err)
	}
	return b, nil
}

// Decode parses saved state. Both the native layout and the layout used by
// earlier releases of the widget (speakTheWordsSet/questionSet) are accepted.
// Answered slides are de-duplicated and negative indices dropped.
func Decode(data []byte) (*PersistedState, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &DecodeError{Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, &DecodeError{Err: errors.New("state is not an object")}
	}

	if _, legacy := obj["speakTheWordsSet"]; legacy {
		return decodeLegacy(data)
	}

	if err := validate(doc); err != nil {
		return nil, &DecodeError{Err: fmt.Errorf("schema validation failed: %w", err)}
	}

	var ps PersistedState
	if err := json.Unmarshal(data, &ps); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if err := checkVersion(ps.Version); err != nil {
		return nil, err
	}
	ps.normalize()
	return &ps, nil
}

type legacyState struct {
	Set *struct {
		ViewState      ViewState `json:"viewState"`
		AnsweredSlides []int     `json:"answeredSlides"`
	} `json:"speakTheWordsSet"`
	QuestionSet *struct {
		Children json.RawMessage `json:"children"`
		Progress int             `json:"progress"`
	} `json:"questionSet"`
}

func decodeLegacy(data []byte) (*PersistedState, error) {
	var ls legacyState
	if err := json.Unmarshal(data, &ls); err != nil {
		return nil, &DecodeError{Err: fmt.Errorf("legacy layout: %w", err)}
	}
	if ls.Set == nil {
		return nil, &DecodeError{Err: errors.New("legacy layout: missing set state")}
	}
	if !ls.Set.ViewState.Valid() {
		return nil, &DecodeError{Err: fmt.Errorf("legacy layout: unknown view state %d", ls.Set.ViewState)}
	}

	ps := PersistedState{
		Version:        FormatVersion,
		SetViewState:   ls.Set.ViewState,
		AnsweredSlides: ls.Set.AnsweredSlides,
	}
	if ls.QuestionSet != nil {
		ps.Sequence = SequenceState{
			CurrentSlide: ls.QuestionSet.Progress,
			Children:     childArray(ls.QuestionSet.Children),
		}
	}
	ps.normalize()
	return &ps, nil
}

func checkVersion(v string) error {
	if v == "" {
		return nil
	}
	if !semver.IsValid(v) {
		return &DecodeError{Err: fmt.Errorf("invalid version %q", v)}
	}
	if semver.Major(v) != semver.Major(FormatVersion) {
		return fmt.Errorf("%w: %s (supported %s)", ErrIncompatibleVersion, v, semver.Major(FormatVersion))
	}
	return nil
}

func (ps *PersistedState) normalize() {
	if ps.Version == "" {
		ps.Version = FormatVersion
	}
	seen := make(map[int]bool, len(ps.AnsweredSlides))
	answered := make([]int, 0, len(ps.AnsweredSlides))
	for _, s := range ps.AnsweredSlides {
		if s < 0 || seen[s] {
			continue
		}
		seen[s] = true
		answered = append(answered, s)
	}
	ps.AnsweredSlides = answered
	if ps.Sequence.CurrentSlide < 0 {
		ps.Sequence.CurrentSlide = 0
	}
}
