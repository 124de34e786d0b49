// Package bus is the publish/subscribe channel shared by the set, the slide
// sequence and the question instances. Delivery is synchronous and
// single-threaded: a Publish call returns after every handler registered
// before it has run. Work that must happen after the current dispatch turn
// is queued with Defer and drained when the turn ends.
package bus

import (
	"log/slog"

	"github.com/abhisek/speakset/internal/logging"
)

// Topic names a signal whose payload has type T.
type Topic[T any] struct {
	name string
}

// NewTopic declares a topic.
func NewTopic[T any](name string) Topic[T] {
	return Topic[T]{name: name}
}

// Name returns the signal name.
func (t Topic[T]) Name() string {
	return t.name
}

// Empty is the payload of signals that carry no data.
type Empty struct{}

// SlideAnsweredPayload identifies the slide a question instance was answered on.
type SlideAnsweredPayload struct {
	Slide int
}

// ShowSolutionsPayload tells listeners whether to keep the current slide
// instead of returning to the first one.
type ShowSolutionsPayload struct {
	KeepSlide bool
}

// Signals exchanged between the host runtime, the set and its children.
var (
	RetrySet          = NewTopic[Empty]("retrySet")
	ShowSolutions     = NewTopic[ShowSolutionsPayload]("showSolutions")
	SlideAnswered     = NewTopic[SlideAnsweredPayload]("slideAnswered")
	ShowResultsScreen = NewTopic[Empty]("showResultsScreen")
	XAPIAnswered      = NewTopic[Empty]("xAPIanswered")
	AnsweredAll       = NewTopic[Empty]("answeredAll")
)

type subscription struct {
	id uint64
	fn func(any)
}

// Bus routes signals to subscribers and owns the deferred task queue.
type Bus struct {
	subs     map[string][]subscription
	nextID   uint64
	deferred []func()
	inTurn   bool
	logger   *slog.Logger
}

// New creates an empty bus. A nil logger discards output.
func New(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Bus{
		subs:   make(map[string][]subscription),
		logger: logger,
	}
}

// Subscribe registers fn for topic t and returns a function that removes it.
func Subscribe[T any](b *Bus, t Topic[T], fn func(T)) func() {
	b.nextID++
	id := b.nextID
	b.subs[t.name] = append(b.subs[t.name], subscription{
		id: id,
		fn: func(v any) { fn(v.(T)) },
	})
	return func() { b.unsubscribe(t.name, id) }
}

// Publish delivers payload to every handler subscribed to t at the time of
// the call. Handlers added while the signal is being delivered do not see it.
func Publish[T any](b *Bus, t Topic[T], payload T) {
	subs := b.subs[t.name]
	if len(subs) == 0 {
		b.logger.Debug("signal without subscribers", "signal", t.name)
		return
	}
	snapshot := make([]subscription, len(subs))
	copy(snapshot, subs)

	b.logger.Debug("signal", "signal", t.name, "subscribers", len(snapshot))
	for _, s := range snapshot {
		s.fn(payload)
	}
}

func (b *Bus) unsubscribe(name string, id uint64) {
	subs := b.subs[name]
	for i, s := range subs {
		if s.id == id {
			b.subs[name] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Subscribers returns the number of handlers registered for a signal name.
func (b *Bus) Subscribers(name string) int {
	return len(b.subs[name])
}

// Defer queues fn to run once the current dispatch turn has finished.
// Outside a turn the task waits for the next Flush or Turn.
func (b *Bus) Defer(fn func()) {
	b.deferred = append(b.deferred, fn)
}

// Pending returns the number of queued deferred tasks.
func (b *Bus) Pending() int {
	return len(b.deferred)
}

// Turn runs fn as one dispatch turn and then drains the deferred queue.
// Nested calls run inline and leave draining to the outermost turn.
func (b *Bus) Turn(fn func()) {
	if b.inTurn {
		fn()
		return
	}
	b.runTurn(fn)
	b.Flush()
}

// runTurn clears the turn flag even when fn panics.
func (b *Bus) runTurn(fn func()) {
	b.inTurn = true
	defer func() { b.inTurn = false }()
	fn()
}

// Flush runs queued tasks in FIFO order, including tasks they queue.
func (b *Bus) Flush() {
	outer := b.inTurn
	defer func() { b.inTurn = outer }()
	for len(b.deferred) > 0 {
		task := b.deferred[0]
		b.deferred = b.deferred[1:]
		b.inTurn = true
		task()
	}
}
