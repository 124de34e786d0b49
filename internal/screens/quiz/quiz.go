// Package quiz is the screen that hosts one quiz set. What it shows
// follows the set's view state.
package quiz

import (
	"context"
	"fmt"
	"log/slog"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/speakset/internal/content"
	"github.com/abhisek/speakset/internal/host"
	"github.com/abhisek/speakset/internal/logging"
	"github.com/abhisek/speakset/internal/navigation"
	"github.com/abhisek/speakset/internal/question"
	"github.com/abhisek/speakset/internal/screen"
	"github.com/abhisek/speakset/internal/set"
	"github.com/abhisek/speakset/internal/state"
	"github.com/abhisek/speakset/internal/store"
	"github.com/abhisek/speakset/internal/ui/components"
	"github.com/abhisek/speakset/internal/ui/layout"
	"github.com/abhisek/speakset/internal/xapi"
)

// Options configures a QuizScreen.
type Options struct {
	Params   *content.Params
	Previous *state.PersistedState

	// States receives the set state after every settled turn. May be nil.
	States store.StateRepo

	Builder *xapi.Builder

	// Emit receives every analytics record the set triggers. May be nil.
	Emit host.EmitFunc

	Logger *slog.Logger
}

// QuizScreen implements screen.Screen for a mounted set.
type QuizScreen struct {
	ctrl    *set.Controller
	host    *host.Terminal
	states  store.StateRepo
	logger  *slog.Logger
	input   components.TextInput
	actions components.ActionBar
	errMsg  string
	closed  bool
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)
var _ screen.Closer = (*QuizScreen)(nil)
var _ screen.StatusProvider = (*QuizScreen)(nil)

const inputPlaceholder = "Say your answer... (| separates alternatives)"

// New mounts the set described by opts.
func New(opts Options) *QuizScreen {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	term := host.NewTerminal(opts.Emit, logger)
	ctrl := set.New(set.Options{
		Params:   opts.Params,
		Host:     term,
		Builder:  opts.Builder,
		Previous: opts.Previous,
		Logger:   logger,
	})

	s := &QuizScreen{
		ctrl:   ctrl,
		host:   term,
		states: opts.States,
		logger: logger,
		input:  components.NewTextInput(inputPlaceholder, 0),
	}
	ctrl.Bus().Turn(ctrl.Mount)
	s.settle()
	s.syncActions()
	s.restoreInput()
	return s
}

// Controller returns the mounted set.
func (s *QuizScreen) Controller() *set.Controller {
	return s.ctrl
}

func (s *QuizScreen) Init() tea.Cmd {
	return s.input.Init()
}

func (s *QuizScreen) Title() string {
	return s.ctrl.Params().DisplayTitle()
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	switch s.ctrl.ViewState() {
	case state.ShowingIntro:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Start"},
			{Key: "Esc", Description: "Back"},
		}
	case state.ShowingResults:
		return []layout.KeyHint{
			{Key: "←→", Description: "Choose"},
			{Key: "Enter", Description: "Select"},
			{Key: "Esc", Description: "Back"},
		}
	case state.ShowingSolutions:
		return []layout.KeyHint{
			{Key: "Tab", Description: "Next"},
			{Key: "Ctrl+R", Description: "Retry set"},
			{Key: "Ctrl+S", Description: "Results"},
			{Key: "Esc", Description: "Back"},
		}
	}
	hints := []layout.KeyHint{
		{Key: "Enter", Description: "Answer"},
		{Key: "Tab", Description: "Next"},
	}
	if q := s.current(); q != nil && q.CanRetry() {
		hints = append(hints, layout.KeyHint{Key: "Ctrl+R", Description: "Retry"})
	}
	if s.ctrl.AllAnswered() {
		hints = append(hints, layout.KeyHint{Key: "Ctrl+S", Description: "Results"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case stateSavedMsg:
		if msg.Err != nil {
			s.errMsg = "Progress could not be saved"
		} else {
			s.errMsg = ""
		}
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.inputActive() {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

// handleKey runs one key press as a single bus turn, lets the set finish
// its post-render work, and saves the resulting state.
func (s *QuizScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	s.ctrl.Bus().Turn(func() {
		cmd = s.dispatchKey(msg)
	})
	s.settle()
	s.syncActions()
	return s, tea.Batch(cmd, s.saveCmd())
}

func (s *QuizScreen) dispatchKey(msg tea.KeyMsg) tea.Cmd {
	switch s.ctrl.ViewState() {
	case state.ShowingIntro:
		if msg.String() == "enter" {
			s.ctrl.ExitIntroduction()
		}
		return nil

	case state.ShowingResults:
		var cmd tea.Cmd
		s.actions, cmd = s.actions.Update(msg)
		return cmd

	case state.ShowingSolutions:
		switch msg.String() {
		case "ctrl+r":
			s.ctrl.Retry()
			s.input.Reset()
		case "ctrl+s":
			s.ctrl.ShowResults()
		default:
			s.navigate(msg.String())
		}
		return nil
	}

	q := s.current()
	switch msg.String() {
	case "enter":
		if q == nil {
			return nil
		}
		alts := s.input.Alternatives()
		if q.Submit(alts...) {
			s.input.Submit(q.Correct())
		}
		return nil
	case "ctrl+r":
		if q != nil && q.CanRetry() {
			q.Reset()
			s.input.Reset()
		}
		return nil
	case "ctrl+s":
		if s.ctrl.AllAnswered() {
			s.ctrl.ShowResults()
		}
		return nil
	}
	if s.navigate(msg.String()) {
		return nil
	}

	if q != nil && !q.Listening() && !q.ShowingSolution() {
		q.Listen()
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return cmd
}

// navigate moves between slides. It reports whether key was a
// navigation key.
func (s *QuizScreen) navigate(key string) bool {
	strip := s.strip()
	before := strip.Current
	var err error
	switch key {
	case "tab", "pgdown":
		err = strip.Next()
	case "shift+tab", "pgup":
		err = strip.Prev()
	default:
		return false
	}
	if err != nil {
		s.logger.Debug("slide navigation ignored", "key", key, "error", err)
		return true
	}
	if s.ctrl.Sequence().Current() == before {
		return true
	}
	s.input.Reset()
	s.restoreInput()
	return true
}

// restoreInput shows the current slide's last attempt in the input.
func (s *QuizScreen) restoreInput() {
	q := s.current()
	if q == nil || !q.Answered() {
		return
	}
	s.input.Model.SetValue(joinAlternatives(q.Answers()))
	s.input.Submit(q.Correct())
}

func (s *QuizScreen) strip() navigation.Strip {
	seq := s.ctrl.Sequence()
	return navigation.Strip{
		Count:    seq.Len(),
		Answered: s.ctrl.AnsweredSlides(),
		Current:  seq.Current(),
		Jump:     seq.JumpToSlide,
	}
}

// settle runs the post-render hooks of the set. The terminal redraws every
// frame, so a pending resize needs no further work.
func (s *QuizScreen) settle() {
	s.ctrl.AfterRender()
	if s.host.TakeResize() {
		s.logger.Debug("layout refresh", "view", s.ctrl.ViewState().String())
	}
}

// syncActions builds the results actions on entering the results screen
// and drops them on leaving it.
func (s *QuizScreen) syncActions() {
	if s.ctrl.ViewState() != state.ShowingResults {
		s.actions = components.ActionBar{}
		return
	}
	if len(s.actions.Actions) > 0 {
		return
	}
	s.actions = components.NewActionBar([]components.Action{
		{Label: "Retry", Run: func() tea.Cmd {
			s.ctrl.Retry()
			s.input.Reset()
			return nil
		}},
		{Label: "Show solutions", Run: func() tea.Cmd {
			s.ctrl.ShowSolutions()
			s.input.Reset()
			s.restoreInput()
			return nil
		}},
	})
}

func (s *QuizScreen) inputActive() bool {
	if s.ctrl.ViewState() != state.ShowingQuestions {
		return false
	}
	q := s.current()
	return q != nil && !q.ShowingSolution()
}

func (s *QuizScreen) current() *question.SpeakTheWords {
	seq := s.ctrl.Sequence()
	q, _ := seq.Instance(seq.Current()).(*question.SpeakTheWords)
	return q
}

func (s *QuizScreen) saveCmd() tea.Cmd {
	if s.states == nil || s.closed {
		return nil
	}
	states := s.states
	id := s.ctrl.Params().ID
	ps := s.ctrl.CurrentState()
	logger := s.logger
	return func() tea.Msg {
		err := states.Save(context.Background(), id, ps)
		if err != nil {
			logger.Error("Failed to save set state", "content_id", id, "error", err)
		}
		return stateSavedMsg{Err: err}
	}
}

// Close saves the final state and releases the set.
func (s *QuizScreen) Close() {
	if s.closed {
		return
	}
	if cmd := s.saveCmd(); cmd != nil {
		cmd()
	}
	s.closed = true
	s.ctrl.Close()
}

// Status reports answered progress for the header.
func (s *QuizScreen) Status() string {
	switch s.ctrl.ViewState() {
	case state.ShowingIntro:
		return ""
	case state.ShowingResults:
		return fmt.Sprintf("Score %d/%d  ", s.ctrl.Score(), s.ctrl.MaxScore())
	}
	return fmt.Sprintf("%d/%d answered  ", len(s.ctrl.AnsweredSlides()), s.ctrl.Sequence().Len())
}
