package set

import "slices"

// SlideResult is the outcome of one slide.
type SlideResult struct {
	Slide    int
	Question string
	Answered bool
	Score    int
	MaxScore int
}

// Results is what the results screen shows.
type Results struct {
	Score    int
	MaxScore int
	Slides   []SlideResult
}

// Passed reports whether every point was scored.
func (r Results) Passed() bool {
	return r.MaxScore > 0 && r.Score == r.MaxScore
}

// ResultsSummary returns the total and per-slide scores.
func (c *Controller) ResultsSummary() Results {
	r := Results{
		Score:    c.Score(),
		MaxScore: c.MaxScore(),
		Slides:   make([]SlideResult, len(c.params.Questions)),
	}
	for i, q := range c.params.Questions {
		sr := SlideResult{
			Slide:    i,
			Question: q.Question,
			Answered: slices.Contains(c.answered, i),
		}
		if inst := c.seq.Instance(i); inst != nil {
			sr.Score = inst.Score()
			sr.MaxScore = inst.MaxScore()
		}
		r.Slides[i] = sr
	}
	return r
}
