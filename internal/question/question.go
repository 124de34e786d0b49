// Package question defines the contract between the slide sequence and the
// question instances it mounts, and implements the spoken-answer question
// used by the terminal host.
package question

import (
	"encoding/json"

	"github.com/abhisek/speakset/internal/bus"
	"github.com/abhisek/speakset/internal/content"
	"github.com/abhisek/speakset/internal/host"
	"github.com/abhisek/speakset/internal/xapi"
)

// Instance is a mounted question. Its state is opaque to the set and is
// passed through verbatim on save and restore.
type Instance interface {
	Score() int
	MaxScore() int
	CurrentState() json.RawMessage
}

// Stopper is implemented by instances that capture input in the background
// and must be halted when the learner navigates away.
type Stopper interface {
	Stop()
}

// XAPIProvider is implemented by instances that report analytics.
type XAPIProvider interface {
	XAPIData() xapi.Data
}

// Mount is everything a question instance receives when the sequence
// creates it.
type Mount struct {
	Slide    int
	Question content.Question
	Previous json.RawMessage
	Bus      *bus.Bus
	Host     host.Runtime
	Builder  *xapi.Builder

	// JumpToSlide asks the sequence to show another slide.
	JumpToSlide func(slide int) error

	// OnInitialized registers the created instance with the sequence.
	// Factories call it exactly once.
	OnInitialized func(Instance)
}

// Factory creates the instance for one slide and registers it through
// Mount.OnInitialized.
type Factory func(m Mount)
