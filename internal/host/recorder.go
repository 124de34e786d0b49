package host

import "github.com/abhisek/speakset/internal/xapi"

// Recorder is a Runtime that records every call. It is meant for tests of
// code that drives a host.
type Recorder struct {
	Resizes   int
	Focused   []int
	Triggered []xapi.Data

	// OnTrigger, when set, runs for every triggered record.
	OnTrigger func(xapi.Data)
}

var _ Runtime = (*Recorder)(nil)

func (r *Recorder) ResizeWrapper() {
	r.Resizes++
}

func (r *Recorder) ProgressAnnouncer(slide int) Focusable {
	return recorderAnnouncer{r: r, slide: slide}
}

func (r *Recorder) Trigger(data xapi.Data) {
	r.Triggered = append(r.Triggered, data)
	if r.OnTrigger != nil {
		r.OnTrigger(data)
	}
}

// LastFocused returns the most recently focused slide, or -1.
func (r *Recorder) LastFocused() int {
	if len(r.Focused) == 0 {
		return -1
	}
	return r.Focused[len(r.Focused)-1]
}

type recorderAnnouncer struct {
	r     *Recorder
	slide int
}

func (a recorderAnnouncer) Focus() {
	a.r.Focused = append(a.r.Focused, a.slide)
}
