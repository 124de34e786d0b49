// Package set is the root of a quiz set. It owns the view state (intro,
// questions, results, solutions) and the answered slides, mediates the
// retry and solutions broadcasts, and builds the compound analytics record.
package set

import (
	"log/slog"
	"slices"

	"github.com/abhisek/speakset/internal/bus"
	"github.com/abhisek/speakset/internal/content"
	"github.com/abhisek/speakset/internal/host"
	"github.com/abhisek/speakset/internal/logging"
	"github.com/abhisek/speakset/internal/question"
	"github.com/abhisek/speakset/internal/sequence"
	"github.com/abhisek/speakset/internal/state"
	"github.com/abhisek/speakset/internal/xapi"
)

// Options configures a Controller.
type Options struct {
	Params   *content.Params
	Bus      *bus.Bus
	Host     host.Runtime
	Builder  *xapi.Builder
	Previous *state.PersistedState

	// Factory creates question instances. Defaults to SpeakTheWords.
	Factory question.Factory

	Logger *slog.Logger
}

// Controller is the root of a mounted quiz set.
type Controller struct {
	params  *content.Params
	bus     *bus.Bus
	host    host.Runtime
	builder *xapi.Builder
	factory question.Factory
	logger  *slog.Logger

	seq      *sequence.Controller
	view     state.ViewState
	answered []int

	pendingResults bool
	focusFirst     bool
	mounted        bool

	unsubs []func()
}

// New creates a set from params, restoring prev when given. A restored
// results screen is held back until every question has registered, since
// scores are read from live instances.
func New(opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	params := opts.Params
	if params == nil {
		params = &content.Params{}
	}
	b := opts.Bus
	if b == nil {
		b = bus.New(logger)
	}
	builder := opts.Builder
	if builder == nil {
		builder = xapi.NewBuilder(xapi.Actor{}, "urn:speakset:"+params.ID, "")
	}
	factory := opts.Factory
	if factory == nil {
		factory = question.SpeakTheWordsFactory
	}

	c := &Controller{
		params:   params,
		bus:      b,
		host:     opts.Host,
		builder:  builder,
		factory:  factory,
		logger:   logger,
		answered: []int{},
	}

	initial := state.ShowingQuestions
	if params.Introduction.ShowIntroPage {
		initial = state.ShowingIntro
	}
	c.view = initial

	var prevSeq *state.SequenceState
	if prev := opts.Previous; prev != nil {
		prevSeq = &prev.Sequence
		switch {
		case prev.SetViewState == state.ShowingResults:
			c.pendingResults = true
		case prev.SetViewState.Valid():
			c.view = prev.SetViewState
		default:
			logger.Warn("ignoring unknown saved view state", "view", int(prev.SetViewState))
		}
		for _, s := range prev.AnsweredSlides {
			if s < 0 || s >= len(params.Questions) {
				logger.Warn("dropping saved answer for unknown slide", "slide", s)
				continue
			}
			if !slices.Contains(c.answered, s) {
				c.answered = append(c.answered, s)
			}
		}
	}

	c.seq = sequence.New(sequence.Options{
		Questions: params.Questions,
		Previous:  prevSeq,
		Bus:       b,
		Host:      opts.Host,
		Builder:   builder,
		Logger:    logger,
	})
	c.seq.SetShowing(questionsVisible(c.view))

	c.unsubs = append(c.unsubs,
		bus.Subscribe(b, bus.SlideAnswered, func(p bus.SlideAnsweredPayload) { c.MarkSlideAnswered(p.Slide) }),
		bus.Subscribe(b, bus.ShowResultsScreen, func(bus.Empty) { c.ShowResults() }),
		bus.Subscribe(b, bus.XAPIAnswered, func(bus.Empty) { c.TriggerXAPI() }),
	)
	return c
}

func questionsVisible(v state.ViewState) bool {
	return v == state.ShowingQuestions || v == state.ShowingSolutions
}

func (c *Controller) setView(v state.ViewState) {
	if c.view != v {
		c.logger.Debug("view changed", "from", c.view.String(), "to", v.String())
	}
	c.view = v
	c.seq.SetShowing(questionsVisible(v))
}

// Mount creates the question instances and performs the checks that need
// them: the all-answered signal for a resumed set, the held-back results
// screen, and the keep-slide solutions broadcast. Mount runs once.
func (c *Controller) Mount() {
	if c.mounted {
		return
	}
	c.mounted = true
	c.seq.Mount(c.factory)

	if c.AllAnswered() {
		bus.Publish(c.bus, bus.AnsweredAll, bus.Empty{})
	}

	if c.pendingResults {
		c.seq.OnReady(func() {
			if !c.pendingResults {
				return
			}
			c.pendingResults = false
			c.setView(state.ShowingResults)
		})
	}

	if c.view == state.ShowingSolutions {
		bus.Publish(c.bus, bus.ShowSolutions, bus.ShowSolutionsPayload{KeepSlide: true})
	}
}

// Bus returns the bus shared by the set and its questions.
func (c *Controller) Bus() *bus.Bus { return c.bus }

// Sequence returns the slide sequence.
func (c *Controller) Sequence() *sequence.Controller { return c.seq }

// Params returns the content the set was built from.
func (c *Controller) Params() *content.Params { return c.params }

// ViewState returns the screen currently showing.
func (c *Controller) ViewState() state.ViewState { return c.view }

// ResultsPending reports whether a restored results screen is waiting for
// the questions to register.
func (c *Controller) ResultsPending() bool { return c.pendingResults }

// AnsweredSlides returns a copy of the answered slide indices.
func (c *Controller) AnsweredSlides() []int { return slices.Clone(c.answered) }

// AllAnswered reports whether every slide has been answered. A set without
// questions counts as fully answered.
func (c *Controller) AllAnswered() bool {
	return len(c.answered) == len(c.params.Questions)
}

// ExitIntroduction leaves the intro page for the questions and queues focus
// on the first slide.
func (c *Controller) ExitIntroduction() {
	if c.view != state.ShowingIntro {
		return
	}
	c.focusFirst = true
	c.setView(state.ShowingQuestions)
}

// MarkSlideAnswered records slide as answered. Repeated calls for the same
// slide are no-ops; the call that completes the set publishes answeredAll.
func (c *Controller) MarkSlideAnswered(slide int) {
	if slide < 0 || slide >= len(c.params.Questions) {
		c.logger.Warn("ignoring answer for unknown slide", "slide", slide)
		return
	}
	if slices.Contains(c.answered, slide) {
		return
	}
	c.answered = append(c.answered, slide)
	if len(c.answered) == len(c.params.Questions) {
		bus.Publish(c.bus, bus.AnsweredAll, bus.Empty{})
	}
}

// ShowResults switches to the results screen.
func (c *Controller) ShowResults() {
	c.pendingResults = false
	c.setView(state.ShowingResults)
}

// Retry returns to the first question with every answer cleared and
// broadcasts retrySet so the sequence and the questions reset themselves.
func (c *Controller) Retry() {
	c.pendingResults = false
	c.focusFirst = true
	c.answered = []int{}
	c.setView(state.ShowingQuestions)
	bus.Publish(c.bus, bus.RetrySet, bus.Empty{})
}

// ShowSolutions shows the questions with their solutions revealed.
func (c *Controller) ShowSolutions() {
	c.pendingResults = false
	c.focusFirst = true
	c.setView(state.ShowingSolutions)
	bus.Publish(c.bus, bus.ShowSolutions, bus.ShowSolutionsPayload{})
}

// AfterRender runs queued side effects once the view has been redrawn.
func (c *Controller) AfterRender() {
	c.seq.AfterRender()
	if c.host == nil {
		return
	}
	c.host.ResizeWrapper()
	if c.focusFirst {
		c.focusFirst = false
		if len(c.params.Questions) > 0 {
			c.host.ProgressAnnouncer(0).Focus()
		}
		c.host.ResizeWrapper()
	}
}

// Score sums the scores of every question.
func (c *Controller) Score() int { return c.seq.Score() }

// MaxScore sums the maximum scores of every question.
func (c *Controller) MaxScore() int { return c.seq.MaxScore() }

// CurrentState returns the resumable state of the set. A held-back results
// screen is saved as results.
func (c *Controller) CurrentState() state.PersistedState {
	view := c.view
	if c.pendingResults {
		view = state.ShowingResults
	}
	return state.PersistedState{
		Version:        state.FormatVersion,
		SetViewState:   view,
		AnsweredSlides: slices.Clone(c.answered),
		Sequence:       c.seq.CurrentState(),
	}
}

// Close removes every bus subscription held by the set and its sequence.
func (c *Controller) Close() {
	for _, off := range c.unsubs {
		off()
	}
	c.unsubs = nil
	c.seq.Close()
	for i := 0; i < c.seq.Len(); i++ {
		if cl, ok := c.seq.Instance(i).(interface{ Close() }); ok {
			cl.Close()
		}
	}
}
