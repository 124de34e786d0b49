// Package host describes what the set needs from the runtime that embeds
// it, and provides the terminal runtime used by the speakset binary.
package host

import "github.com/abhisek/speakset/internal/xapi"

// Focusable is a focus target rendered by the host.
type Focusable interface {
	Focus()
}

// Runtime is the embedding host as seen by the set and its children.
type Runtime interface {
	// ResizeWrapper asks the host to re-measure the widget container.
	ResizeWrapper()

	// ProgressAnnouncer returns the focus target announcing slide progress.
	ProgressAnnouncer(slide int) Focusable

	// Trigger hands a finished analytics record to the host for emission.
	Trigger(data xapi.Data)
}
