package set

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/speakset/internal/bus"
	"github.com/abhisek/speakset/internal/content"
	"github.com/abhisek/speakset/internal/host"
	"github.com/abhisek/speakset/internal/question"
	"github.com/abhisek/speakset/internal/state"
	"github.com/abhisek/speakset/internal/xapi"
)

type stubQuestion struct {
	score int
	max   int
	state json.RawMessage
}

func (s *stubQuestion) Score() int                    { return s.score }
func (s *stubQuestion) MaxScore() int                 { return s.max }
func (s *stubQuestion) CurrentState() json.RawMessage { return s.state }

// stubFactory mounts stubQuestions scoring slide%2 and keeps them for the
// test to inspect.
func stubFactory(out *[]*stubQuestion) question.Factory {
	return func(m question.Mount) {
		st := m.Previous
		if st == nil {
			st = json.RawMessage(fmt.Sprintf(`{"slide":%d}`, m.Slide))
		}
		q := &stubQuestion{score: m.Slide % 2, max: 1, state: st}
		*out = append(*out, q)
		m.OnInitialized(q)
	}
}

func testParams(n int, intro bool) *content.Params {
	p := &content.Params{ID: "greetings", Title: "Greetings"}
	p.Introduction.ShowIntroPage = intro
	for i := 0; i < n; i++ {
		p.Questions = append(p.Questions, content.Question{
			SubContentID:    fmt.Sprintf("q-%d", i),
			Question:        fmt.Sprintf("Say %d", i),
			AcceptedAnswers: []string{fmt.Sprintf("answer %d", i)},
		})
	}
	return p
}

func countSignal[T any](b *bus.Bus, topic bus.Topic[T]) *int {
	n := new(int)
	bus.Subscribe(b, topic, func(T) { *n++ })
	return n
}

func TestScenario(t *testing.T) {
	rec := &host.Recorder{}
	var stubs []*stubQuestion
	c := New(Options{Params: testParams(3, true), Host: rec, Factory: stubFactory(&stubs)})
	t.Cleanup(c.Close)
	all := countSignal(c.Bus(), bus.AnsweredAll)
	c.Mount()

	assert.Equal(t, state.ShowingIntro, c.ViewState())
	assert.False(t, c.Sequence().Showing())

	c.ExitIntroduction()
	c.AfterRender()
	assert.Equal(t, state.ShowingQuestions, c.ViewState())
	assert.True(t, c.Sequence().Showing())
	assert.Equal(t, 0, rec.LastFocused())

	c.MarkSlideAnswered(0)
	c.MarkSlideAnswered(1)
	assert.Equal(t, []int{0, 1}, c.AnsweredSlides())
	assert.Equal(t, 0, *all)

	c.MarkSlideAnswered(2)
	assert.Equal(t, []int{0, 1, 2}, c.AnsweredSlides())
	assert.Equal(t, 1, *all)

	c.MarkSlideAnswered(2)
	assert.Equal(t, 1, *all, "answeredAll must fire once per completion")

	c.ShowResults()
	assert.Equal(t, state.ShowingResults, c.ViewState())
	assert.Equal(t, 1, c.Score())
	assert.Equal(t, 3, c.MaxScore())
}

func TestNoIntroStartsOnQuestions(t *testing.T) {
	c := New(Options{Params: testParams(2, false)})
	t.Cleanup(c.Close)

	assert.Equal(t, state.ShowingQuestions, c.ViewState())

	c.ExitIntroduction()
	assert.Equal(t, state.ShowingQuestions, c.ViewState())
}

func TestMarkSlideAnswered_Idempotent(t *testing.T) {
	for slide := 0; slide < 3; slide++ {
		once := New(Options{Params: testParams(3, false)})
		twice := New(Options{Params: testParams(3, false)})

		once.MarkSlideAnswered(slide)
		twice.MarkSlideAnswered(slide)
		twice.MarkSlideAnswered(slide)

		assert.Equal(t, once.AnsweredSlides(), twice.AnsweredSlides(), "slide %d", slide)
	}
}

func TestMarkSlideAnswered_OutOfRange(t *testing.T) {
	c := New(Options{Params: testParams(2, false)})
	all := countSignal(c.Bus(), bus.AnsweredAll)

	c.MarkSlideAnswered(-1)
	c.MarkSlideAnswered(2)
	c.MarkSlideAnswered(0)

	assert.Equal(t, []int{0}, c.AnsweredSlides())
	assert.Equal(t, 0, *all)
}

func TestSlideAnsweredSignal(t *testing.T) {
	c := New(Options{Params: testParams(2, false)})
	t.Cleanup(c.Close)

	bus.Publish(c.Bus(), bus.SlideAnswered, bus.SlideAnsweredPayload{Slide: 1})

	assert.Equal(t, []int{1}, c.AnsweredSlides())
}

func TestShowResultsScreenSignal(t *testing.T) {
	c := New(Options{Params: testParams(2, false)})
	t.Cleanup(c.Close)

	bus.Publish(c.Bus(), bus.ShowResultsScreen, bus.Empty{})

	assert.Equal(t, state.ShowingResults, c.ViewState())
	assert.False(t, c.Sequence().Showing())
}

func TestRetryResetsState(t *testing.T) {
	rec := &host.Recorder{}
	c := New(Options{Params: testParams(3, true), Host: rec})
	t.Cleanup(c.Close)
	retries := countSignal(c.Bus(), bus.RetrySet)
	c.Mount()
	c.ExitIntroduction()

	first := c.Sequence().Instance(0).(*question.SpeakTheWords)
	first.Submit("answer 0")
	require.NoError(t, c.Sequence().JumpToSlide(2))
	c.ShowResults()
	require.Equal(t, 1, c.Score())

	c.Retry()
	c.AfterRender()

	assert.Equal(t, state.ShowingQuestions, c.ViewState())
	assert.Empty(t, c.AnsweredSlides())
	assert.Equal(t, 0, c.Sequence().Current())
	assert.Equal(t, 0, c.Score())
	assert.False(t, first.Answered())
	assert.Equal(t, 1, *retries)
	assert.Equal(t, 0, rec.LastFocused())
}

func TestShowSolutions(t *testing.T) {
	rec := &host.Recorder{}
	c := New(Options{Params: testParams(3, false), Host: rec})
	t.Cleanup(c.Close)
	c.Mount()
	require.NoError(t, c.Sequence().JumpToSlide(2))
	c.ShowResults()

	var payloads []bus.ShowSolutionsPayload
	bus.Subscribe(c.Bus(), bus.ShowSolutions, func(p bus.ShowSolutionsPayload) { payloads = append(payloads, p) })

	c.ShowSolutions()
	c.AfterRender()

	assert.Equal(t, state.ShowingSolutions, c.ViewState())
	assert.True(t, c.Sequence().Showing())
	assert.Equal(t, []bus.ShowSolutionsPayload{{KeepSlide: false}}, payloads)
	assert.Equal(t, 0, c.Sequence().Current())
	assert.True(t, c.Sequence().Instance(1).(*question.SpeakTheWords).ShowingSolution())
	assert.Equal(t, 0, rec.LastFocused())
}

func TestAfterRenderResizes(t *testing.T) {
	rec := &host.Recorder{}
	c := New(Options{Params: testParams(2, true), Host: rec})

	c.AfterRender()
	assert.Equal(t, 1, rec.Resizes)
	assert.Empty(t, rec.Focused)

	c.ExitIntroduction()
	c.AfterRender()
	assert.Equal(t, 3, rec.Resizes)
	assert.Equal(t, []int{0}, rec.Focused)
}

func TestRoundTrip(t *testing.T) {
	var stubs []*stubQuestion
	c := New(Options{Params: testParams(3, false), Factory: stubFactory(&stubs)})
	c.Mount()
	c.MarkSlideAnswered(2)
	c.MarkSlideAnswered(0)
	require.NoError(t, c.Sequence().JumpToSlide(1))
	c.ShowSolutions()
	require.NoError(t, c.Sequence().JumpToSlide(1))
	c.Close()

	saved := c.CurrentState()
	data, err := state.Encode(saved)
	require.NoError(t, err)
	decoded, err := state.Decode(data)
	require.NoError(t, err)

	var restoredStubs []*stubQuestion
	restored := New(Options{Params: testParams(3, false), Previous: decoded, Factory: stubFactory(&restoredStubs)})
	t.Cleanup(restored.Close)
	restored.Mount()

	got := restored.CurrentState()
	assert.True(t, saved.Equal(got), "saved %+v, restored %+v", saved, got)
	assert.Equal(t, state.ShowingSolutions, got.SetViewState)
	assert.Equal(t, 1, got.Sequence.CurrentSlide)
}

func TestRestoreSolutionsKeepsSlide(t *testing.T) {
	prev := &state.PersistedState{
		SetViewState:   state.ShowingSolutions,
		AnsweredSlides: []int{0},
		Sequence:       state.SequenceState{CurrentSlide: 2},
	}
	c := New(Options{Params: testParams(3, false), Previous: prev})
	t.Cleanup(c.Close)

	var payloads []bus.ShowSolutionsPayload
	bus.Subscribe(c.Bus(), bus.ShowSolutions, func(p bus.ShowSolutionsPayload) { payloads = append(payloads, p) })
	c.Mount()

	assert.Equal(t, []bus.ShowSolutionsPayload{{KeepSlide: true}}, payloads)
	assert.Equal(t, 2, c.Sequence().Current())
	assert.True(t, c.Sequence().Instance(2).(*question.SpeakTheWords).ShowingSolution())
}

func TestRestoreResultsWaitsForReadiness(t *testing.T) {
	prev := &state.PersistedState{
		SetViewState:   state.ShowingResults,
		AnsweredSlides: []int{0, 1},
	}
	var pending []question.Mount
	c := New(Options{
		Params:   testParams(2, true),
		Previous: prev,
		Factory:  func(m question.Mount) { pending = append(pending, m) },
	})
	c.Mount()

	assert.Equal(t, state.ShowingIntro, c.ViewState())
	assert.True(t, c.ResultsPending())
	assert.Equal(t, state.ShowingResults, c.CurrentState().SetViewState)

	pending[0].OnInitialized(&stubQuestion{score: 1, max: 1})
	assert.True(t, c.ResultsPending())

	pending[1].OnInitialized(&stubQuestion{score: 0, max: 1})
	assert.False(t, c.ResultsPending())
	assert.Equal(t, state.ShowingResults, c.ViewState())
	assert.Equal(t, 1, c.Score())
	assert.Equal(t, 2, c.MaxScore())
}

func TestRestoreResultsReadyAtMount(t *testing.T) {
	prev := &state.PersistedState{SetViewState: state.ShowingResults}
	c := New(Options{Params: testParams(2, false), Previous: prev})
	t.Cleanup(c.Close)

	c.Mount()

	assert.Equal(t, state.ShowingResults, c.ViewState())
}

func TestMountSignalsAnsweredAllOnResume(t *testing.T) {
	prev := &state.PersistedState{
		SetViewState:   state.ShowingQuestions,
		AnsweredSlides: []int{1, 0},
	}
	c := New(Options{Params: testParams(2, false), Previous: prev})
	t.Cleanup(c.Close)
	all := countSignal(c.Bus(), bus.AnsweredAll)

	c.Mount()
	c.Mount()

	assert.Equal(t, 1, *all)
	assert.True(t, c.AllAnswered())
}

func TestMountSignalsAnsweredAllWithoutQuestions(t *testing.T) {
	c := New(Options{Params: testParams(0, false)})
	t.Cleanup(c.Close)
	all := countSignal(c.Bus(), bus.AnsweredAll)

	c.Mount()

	assert.Equal(t, 1, *all)
	assert.True(t, c.AllAnswered())
}

func TestXAPIData(t *testing.T) {
	builder := xapi.NewBuilder(xapi.Actor{Name: "Ana"}, "https://example.org/sets/greetings", "en-US")
	c := New(Options{Params: testParams(2, false), Builder: builder})
	t.Cleanup(c.Close)
	c.Mount()
	c.Sequence().Instance(0).(*question.SpeakTheWords).Submit("answer 0")
	c.Sequence().Instance(1).(*question.SpeakTheWords).Submit("answer 1")

	data := c.XAPIData()
	st := data.Statement

	assert.Equal(t, "https://example.org/sets/greetings", st.Object.ID)
	assert.Equal(t, xapi.InteractionCompound, st.Object.Definition.InteractionType)
	assert.Equal(t, xapi.ActivityInteraction, st.Object.Definition.Type)
	assert.Equal(t, "Greetings", st.Object.Definition.Name["en-US"])
	assert.Equal(t, "", st.Object.Definition.Description["en-US"])
	require.NotNil(t, st.Result)
	assert.Equal(t, 2.0, st.Result.Score.Raw)
	assert.Equal(t, 2.0, st.Result.Score.Max)
	assert.Equal(t, 1.0, st.Result.Score.Scaled)
	assert.True(t, *st.Result.Success)
	assert.True(t, *st.Result.Completion)
	assert.Len(t, data.Children, 2)
}

func TestXAPIChildrenOnlyFromProviders(t *testing.T) {
	var stubs []*stubQuestion
	c := New(Options{Params: testParams(2, false), Factory: stubFactory(&stubs)})
	c.Mount()

	data := c.XAPIData()

	assert.Empty(t, data.Children)
	assert.False(t, *data.Statement.Result.Success)
}

func TestAnalyticsOrdering(t *testing.T) {
	var kinds []string
	rec := &host.Recorder{OnTrigger: func(d xapi.Data) {
		kinds = append(kinds, d.Statement.Object.Definition.InteractionType)
	}}
	c := New(Options{Params: testParams(3, false), Host: rec})
	t.Cleanup(c.Close)
	c.Mount()
	q := c.Sequence().Instance(1).(*question.SpeakTheWords)

	c.Bus().Turn(func() {
		q.Submit("answer 1")
		assert.Equal(t, []string{xapi.InteractionFillIn}, kinds, "compound record must wait for the turn to end")
	})

	require.Equal(t, []string{xapi.InteractionFillIn, xapi.InteractionCompound}, kinds)
	compound := rec.Triggered[1]
	assert.Len(t, compound.Children, 3)
	assert.Equal(t, 1.0, compound.Statement.Result.Score.Raw)
	assert.Equal(t, []int{1}, c.AnsweredSlides())
}

func TestTriggerOutsideTurnWaitsForFlush(t *testing.T) {
	rec := &host.Recorder{}
	c := New(Options{Params: testParams(1, false), Host: rec})
	t.Cleanup(c.Close)

	c.TriggerXAPI()
	assert.Empty(t, rec.Triggered)
	assert.Equal(t, 1, c.Bus().Pending())

	c.Bus().Flush()
	assert.Len(t, rec.Triggered, 1)
}

func TestResultsSummary(t *testing.T) {
	var stubs []*stubQuestion
	c := New(Options{Params: testParams(3, false), Factory: stubFactory(&stubs)})
	c.Mount()
	c.MarkSlideAnswered(1)

	r := c.ResultsSummary()

	assert.Equal(t, 1, r.Score)
	assert.Equal(t, 3, r.MaxScore)
	assert.False(t, r.Passed())
	require.Len(t, r.Slides, 3)
	assert.True(t, r.Slides[1].Answered)
	assert.False(t, r.Slides[0].Answered)
	assert.Equal(t, "Say 2", r.Slides[2].Question)
}
