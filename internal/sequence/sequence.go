// Package sequence owns the ordered slides of a quiz set: which slide is
// current, the question instance mounted on each slide, and the score and
// state aggregated across them.
package sequence

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/abhisek/speakset/internal/bus"
	"github.com/abhisek/speakset/internal/content"
	"github.com/abhisek/speakset/internal/host"
	"github.com/abhisek/speakset/internal/logging"
	"github.com/abhisek/speakset/internal/question"
	"github.com/abhisek/speakset/internal/state"
	"github.com/abhisek/speakset/internal/xapi"
)

// Options configures a Controller.
type Options struct {
	Questions []content.Question
	Previous  *state.SequenceState
	Bus       *bus.Bus
	Host      host.Runtime
	Builder   *xapi.Builder
	Logger    *slog.Logger
}

// Controller tracks the current slide and the question instances of a set.
// Every slide is mounted up front and stays mounted; only the current one is
// interactive, so instances that capture input are stopped explicitly when
// the learner navigates away.
type Controller struct {
	questions []content.Question
	previous  state.SequenceState
	bus       *bus.Bus
	host      host.Runtime
	builder   *xapi.Builder
	logger    *slog.Logger

	current    int
	instances  []question.Instance
	registered int
	mounted    bool
	showing    bool

	focusPending bool
	readyFns     []func()
	unsubs       []func()
}

// New creates a controller positioned on the saved slide, or slide 0.
func New(opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	c := &Controller{
		questions: opts.Questions,
		bus:       opts.Bus,
		host:      opts.Host,
		builder:   opts.Builder,
		logger:    logger,
		instances: make([]question.Instance, len(opts.Questions)),
	}
	if opts.Previous != nil {
		c.previous = *opts.Previous
		c.current = c.clamp(opts.Previous.CurrentSlide)
	}

	if c.bus != nil {
		c.unsubs = append(c.unsubs,
			bus.Subscribe(c.bus, bus.RetrySet, func(bus.Empty) {
				c.moveTo(0)
			}),
			bus.Subscribe(c.bus, bus.ShowSolutions, func(p bus.ShowSolutionsPayload) {
				if !p.KeepSlide {
					c.moveTo(0)
				}
			}),
		)
	}
	return c
}

func (c *Controller) clamp(i int) int {
	if i < 0 || len(c.questions) == 0 {
		return 0
	}
	if i >= len(c.questions) {
		return len(c.questions) - 1
	}
	return i
}

// Len returns the number of slides.
func (c *Controller) Len() int { return len(c.questions) }

// Questions returns the question parameters in slide order.
func (c *Controller) Questions() []content.Question { return c.questions }

// Mount creates an instance for every slide through factory, passing each
// its saved state. Mount is a no-op after the first call.
func (c *Controller) Mount(factory question.Factory) {
	if c.mounted {
		return
	}
	c.mounted = true
	for i, q := range c.questions {
		slide := i
		factory(question.Mount{
			Slide:       slide,
			Question:    q,
			Previous:    c.previous.Child(slide),
			Bus:         c.bus,
			Host:        c.host,
			Builder:     c.builder,
			JumpToSlide: c.JumpToSlide,
			OnInitialized: func(inst question.Instance) {
				c.Register(slide, inst)
			},
		})
	}
}

// Register records the instance mounted on slide. A slide is registered at
// most once; later registrations are ignored.
func (c *Controller) Register(slide int, inst question.Instance) {
	if slide < 0 || slide >= len(c.instances) {
		c.logger.Warn("ignoring registration for unknown slide", "slide", slide, "slides", len(c.instances))
		return
	}
	if c.instances[slide] != nil {
		c.logger.Warn("slide already registered", "slide", slide)
		return
	}
	c.instances[slide] = inst
	c.registered++

	if c.Ready() {
		fns := c.readyFns
		c.readyFns = nil
		for _, fn := range fns {
			fn()
		}
	}
}

// Ready reports whether every slide has a registered instance. Scores and
// state are only complete once the sequence is ready.
func (c *Controller) Ready() bool {
	return c.registered == len(c.questions)
}

// OnReady runs fn once the sequence is ready, immediately if it already is.
func (c *Controller) OnReady(fn func()) {
	if c.Ready() {
		fn()
		return
	}
	c.readyFns = append(c.readyFns, fn)
}

// Instance returns the instance on slide, or nil if none is registered.
func (c *Controller) Instance(slide int) question.Instance {
	if slide < 0 || slide >= len(c.instances) {
		return nil
	}
	return c.instances[slide]
}

// Current returns the index of the current slide.
func (c *Controller) Current() int { return c.current }

// JumpToSlide makes target the current slide. The instance on the slide
// being left is stopped before the index changes; a resize is requested and
// focus on the new slide's announcer is queued for the next AfterRender.
func (c *Controller) JumpToSlide(target int) error {
	if target < 0 || target >= len(c.questions) {
		c.logger.Warn("ignoring jump to unknown slide", "slide", target, "slides", len(c.questions))
		return fmt.Errorf("%w: %d not in [0, %d)", ErrSlideOutOfRange, target, len(c.questions))
	}
	if target == c.current {
		return nil
	}
	c.stopCurrent()
	if c.host != nil {
		c.host.ResizeWrapper()
	}
	c.focusPending = true
	c.current = target
	c.logger.Debug("slide changed", "slide", target)
	return nil
}

// moveTo changes the current slide without queueing focus; the set queues
// its own focus for retry and solutions.
func (c *Controller) moveTo(target int) {
	if target == c.current {
		return
	}
	c.stopCurrent()
	c.current = target
}

func (c *Controller) stopCurrent() {
	if s, ok := c.Instance(c.current).(question.Stopper); ok {
		s.Stop()
	}
}

// AfterRender runs the queued focus action, at most once per queued update.
func (c *Controller) AfterRender() {
	if !c.focusPending {
		return
	}
	c.focusPending = false
	if c.host != nil && len(c.questions) > 0 {
		c.host.ProgressAnnouncer(c.current).Focus()
	}
}

// FocusPending reports whether a focus action is queued.
func (c *Controller) FocusPending() bool { return c.focusPending }

// SetShowing toggles question visibility. Hidden slides keep their state.
func (c *Controller) SetShowing(showing bool) { c.showing = showing }

// Showing reports whether the questions are visible.
func (c *Controller) Showing() bool { return c.showing }

// Score sums the scores of the registered instances.
func (c *Controller) Score() int {
	total := 0
	for _, inst := range c.instances {
		if inst != nil {
			total += inst.Score()
		}
	}
	return total
}

// MaxScore sums the maximum scores of the registered instances.
func (c *Controller) MaxScore() int {
	total := 0
	for _, inst := range c.instances {
		if inst != nil {
			total += inst.MaxScore()
		}
	}
	return total
}

// CurrentState returns the current slide and each instance's state in
// slide order. Slides without an instance keep their saved state.
func (c *Controller) CurrentState() state.SequenceState {
	children := make([]json.RawMessage, len(c.instances))
	for i, inst := range c.instances {
		if inst != nil {
			children[i] = inst.CurrentState()
		} else {
			children[i] = c.previous.Child(i)
		}
	}
	return state.SequenceState{
		CurrentSlide: c.current,
		Children:     children,
	}
}

// XAPIFragments collects analytics from instances that report them, in
// slide order.
func (c *Controller) XAPIFragments() []xapi.Data {
	var out []xapi.Data
	for _, inst := range c.instances {
		if p, ok := inst.(question.XAPIProvider); ok {
			out = append(out, p.XAPIData())
		}
	}
	return out
}

// Slide is the render view of one slide.
type Slide struct {
	Index    int
	Question content.Question
	Active   bool
	Instance question.Instance
}

// Slides returns every slide with whether it is the active one.
func (c *Controller) Slides() []Slide {
	out := make([]Slide, len(c.questions))
	for i, q := range c.questions {
		out[i] = Slide{
			Index:    i,
			Question: q,
			Active:   i == c.current,
			Instance: c.instances[i],
		}
	}
	return out
}

// Close removes the controller's bus subscriptions.
func (c *Controller) Close() {
	for _, off := range c.unsubs {
		off()
	}
	c.unsubs = nil
}
