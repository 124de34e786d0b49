package host

import (
	"log/slog"

	"github.com/abhisek/speakset/internal/logging"
	"github.com/abhisek/speakset/internal/xapi"
)

// EmitFunc receives every analytics record triggered on the host.
type EmitFunc func(data xapi.Data)

// Terminal is the Runtime behind the terminal UI. Focus moves a cursor the
// screens highlight, resize requests are latched until the next frame, and
// triggered records are passed to the emitter.
type Terminal struct {
	focused       int
	resizePending bool
	emit          EmitFunc
	logger        *slog.Logger
}

var _ Runtime = (*Terminal)(nil)

// NewTerminal creates a terminal runtime. emit may be nil.
func NewTerminal(emit EmitFunc, logger *slog.Logger) *Terminal {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Terminal{focused: -1, emit: emit, logger: logger}
}

// ResizeWrapper marks the layout for a re-measure on the next render.
func (t *Terminal) ResizeWrapper() {
	t.resizePending = true
}

// ProgressAnnouncer returns the focus target for a slide's progress line.
func (t *Terminal) ProgressAnnouncer(slide int) Focusable {
	return terminalAnnouncer{t: t, slide: slide}
}

// Trigger logs a statement and hands it to the emit callback.
func (t *Terminal) Trigger(data xapi.Data) {
	t.logger.Debug("statement triggered",
		"object", data.Statement.Object.ID,
		"children", len(data.Children))
	if t.emit != nil {
		t.emit(data)
	}
}

// Focused returns the slide whose announcer holds focus.
func (t *Terminal) Focused() (int, bool) {
	return t.focused, t.focused >= 0
}

// TakeResize reports whether a resize was requested since the last call.
func (t *Terminal) TakeResize() bool {
	pending := t.resizePending
	t.resizePending = false
	return pending
}

type terminalAnnouncer struct {
	t     *Terminal
	slide int
}

func (a terminalAnnouncer) Focus() {
	a.t.focused = a.slide
}
