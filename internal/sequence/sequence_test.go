package sequence

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/abhisek/speakset/internal/bus"
	"github.com/abhisek/speakset/internal/content"
	"github.com/abhisek/speakset/internal/host"
	"github.com/abhisek/speakset/internal/question"
	"github.com/abhisek/speakset/internal/state"
	"github.com/abhisek/speakset/internal/xapi"
)

// fakeInstance is a question instance with fixed score and a call log
// shared with the test.
type fakeInstance struct {
	slide    int
	score    int
	max      int
	state    json.RawMessage
	log      *[]string
	withXAPI bool
}

func (f *fakeInstance) Score() int                    { return f.score }
func (f *fakeInstance) MaxScore() int                 { return f.max }
func (f *fakeInstance) CurrentState() json.RawMessage { return f.state }

// stoppable adds Stop to fakeInstance.
type stoppable struct{ *fakeInstance }

func (s stoppable) Stop() { *s.log = append(*s.log, "stop") }

// reporting adds XAPIData to fakeInstance.
type reporting struct{ *fakeInstance }

func (r reporting) XAPIData() xapi.Data {
	return xapi.Data{Statement: xapi.Statement{ID: string(rune('a' + r.slide))}}
}

func questions(n int) []content.Question {
	qs := make([]content.Question, n)
	for i := range qs {
		qs[i] = content.Question{SubContentID: string(rune('a' + i)), Question: "q"}
	}
	return qs
}

type recordingHost struct {
	host.Recorder
	log *[]string
}

func (h *recordingHost) ResizeWrapper() {
	*h.log = append(*h.log, "resize")
	h.Recorder.ResizeWrapper()
}

func newMounted(t *testing.T, n int, prev *state.SequenceState) (*Controller, *bus.Bus, *recordingHost, *[]string) {
	t.Helper()
	log := &[]string{}
	b := bus.New(nil)
	h := &recordingHost{log: log}
	c := New(Options{Questions: questions(n), Previous: prev, Bus: b, Host: h})
	t.Cleanup(c.Close)

	c.Mount(func(m question.Mount) {
		f := &fakeInstance{slide: m.Slide, score: m.Slide % 2, max: 1, log: log}
		if m.Previous != nil {
			f.state = m.Previous
		} else {
			f.state = json.RawMessage(`{"slide":` + string(rune('0'+m.Slide)) + `}`)
		}
		switch m.Slide {
		case 0:
			m.OnInitialized(stoppable{f})
		case 1:
			m.OnInitialized(reporting{f})
		default:
			m.OnInitialized(f)
		}
	})
	return c, b, h, log
}

func TestJumpToSlide_StopsBeforeChange(t *testing.T) {
	c, _, h, log := newMounted(t, 3, nil)

	if err := c.JumpToSlide(2); err != nil {
		t.Fatalf("JumpToSlide: %v", err)
	}

	want := []string{"stop", "resize"}
	if len(*log) != len(want) {
		t.Fatalf("log = %v, want %v", *log, want)
	}
	for i := range want {
		if (*log)[i] != want[i] {
			t.Errorf("log[%d] = %q, want %q", i, (*log)[i], want[i])
		}
	}
	if c.Current() != 2 {
		t.Errorf("Current = %d, want 2", c.Current())
	}
	if !c.FocusPending() {
		t.Error("expected focus to be queued")
	}
	if len(h.Focused) != 0 {
		t.Error("focus must wait for AfterRender")
	}

	c.AfterRender()
	c.AfterRender()
	if len(h.Focused) != 1 || h.Focused[0] != 2 {
		t.Errorf("Focused = %v, want [2]", h.Focused)
	}
}

func TestJumpToSlide_SameSlideNoop(t *testing.T) {
	c, _, h, log := newMounted(t, 3, nil)

	if err := c.JumpToSlide(0); err != nil {
		t.Fatalf("JumpToSlide: %v", err)
	}
	if len(*log) != 0 {
		t.Errorf("expected no stop or resize, got %v", *log)
	}
	if c.FocusPending() || h.Resizes != 0 {
		t.Error("same-slide jump must not queue side effects")
	}
}

func TestJumpToSlide_OutOfRange(t *testing.T) {
	c, _, _, log := newMounted(t, 3, nil)

	for _, target := range []int{-1, 3, 10} {
		err := c.JumpToSlide(target)
		if !errors.Is(err, ErrSlideOutOfRange) {
			t.Errorf("JumpToSlide(%d) = %v, want ErrSlideOutOfRange", target, err)
		}
	}
	if c.Current() != 0 || len(*log) != 0 {
		t.Errorf("state changed: current=%d log=%v", c.Current(), *log)
	}
}

func TestJumpWithoutStopper(t *testing.T) {
	c, _, _, log := newMounted(t, 3, nil)
	c.JumpToSlide(2)
	*log = nil

	c.JumpToSlide(1)

	if len(*log) != 1 || (*log)[0] != "resize" {
		t.Errorf("log = %v, want [resize]", *log)
	}
}

func TestScoreAggregation(t *testing.T) {
	c, _, _, _ := newMounted(t, 4, nil)

	if got := c.Score(); got != 2 {
		t.Errorf("Score = %d, want 2", got)
	}
	if got := c.MaxScore(); got != 4 {
		t.Errorf("MaxScore = %d, want 4", got)
	}
}

func TestReadiness(t *testing.T) {
	c := New(Options{Questions: questions(2)})
	ready := 0
	c.OnReady(func() { ready++ })

	c.Register(0, &fakeInstance{max: 1})
	if c.Ready() || ready != 0 {
		t.Fatal("not ready with one of two slides")
	}
	c.Register(0, &fakeInstance{max: 1})
	c.Register(5, &fakeInstance{max: 1})
	if c.Ready() {
		t.Fatal("duplicate or unknown registrations must not count")
	}

	c.Register(1, &fakeInstance{max: 1})
	if !c.Ready() || ready != 1 {
		t.Errorf("Ready = %v, callbacks = %d", c.Ready(), ready)
	}

	c.OnReady(func() { ready++ })
	if ready != 2 {
		t.Error("OnReady should run immediately once ready")
	}
}

func TestRetryAndSolutionsMoveSlide(t *testing.T) {
	c, b, _, log := newMounted(t, 3, nil)
	c.JumpToSlide(2)
	*log = nil

	bus.Publish(b, bus.ShowSolutions, bus.ShowSolutionsPayload{KeepSlide: true})
	if c.Current() != 2 {
		t.Errorf("keepSlide: Current = %d, want 2", c.Current())
	}

	bus.Publish(b, bus.ShowSolutions, bus.ShowSolutionsPayload{})
	if c.Current() != 0 {
		t.Errorf("showSolutions: Current = %d, want 0", c.Current())
	}

	c.JumpToSlide(1)
	bus.Publish(b, bus.RetrySet, bus.Empty{})
	if c.Current() != 0 {
		t.Errorf("retry: Current = %d, want 0", c.Current())
	}
}

func TestCurrentStateRoundTrip(t *testing.T) {
	c, _, _, _ := newMounted(t, 3, nil)
	c.JumpToSlide(1)
	saved := c.CurrentState()

	restored, _, _, _ := newMounted(t, 3, &saved)
	got := restored.CurrentState()

	if got.CurrentSlide != 1 {
		t.Errorf("CurrentSlide = %d, want 1", got.CurrentSlide)
	}
	for i := range saved.Children {
		if string(got.Children[i]) != string(saved.Children[i]) {
			t.Errorf("child %d = %s, want %s", i, got.Children[i], saved.Children[i])
		}
	}
}

func TestRestoreClampsSlide(t *testing.T) {
	c := New(Options{Questions: questions(2), Previous: &state.SequenceState{CurrentSlide: 7}})
	if c.Current() != 1 {
		t.Errorf("Current = %d, want 1", c.Current())
	}
}

func TestMissingChildrenFallBack(t *testing.T) {
	var seen []json.RawMessage
	c := New(Options{Questions: questions(2), Previous: &state.SequenceState{CurrentSlide: 1}})
	c.Mount(func(m question.Mount) {
		seen = append(seen, m.Previous)
		m.OnInitialized(&fakeInstance{max: 1})
	})
	for i, p := range seen {
		if p != nil {
			t.Errorf("slide %d previous = %s, want nil", i, p)
		}
	}
	if c.Current() != 1 {
		t.Errorf("Current = %d, want 1", c.Current())
	}
}

func TestXAPIFragmentsOnlyFromProviders(t *testing.T) {
	c, _, _, _ := newMounted(t, 3, nil)

	frags := c.XAPIFragments()
	if len(frags) != 1 || frags[0].Statement.ID != "b" {
		t.Errorf("fragments = %+v, want one from slide 1", frags)
	}
}

func TestSlides(t *testing.T) {
	c, _, _, _ := newMounted(t, 3, nil)
	c.JumpToSlide(1)

	slides := c.Slides()
	if len(slides) != 3 {
		t.Fatalf("len = %d", len(slides))
	}
	for i, s := range slides {
		if s.Active != (i == 1) {
			t.Errorf("slide %d active = %v", i, s.Active)
		}
		if s.Instance == nil {
			t.Errorf("slide %d has no instance", i)
		}
	}
}
