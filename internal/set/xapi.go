package set

import "github.com/abhisek/speakset/internal/xapi"

// XAPIData builds the compound answered record for the whole set, with the
// records of every question that reports one as children.
func (c *Controller) XAPIData() xapi.Data {
	def := xapi.Definition{
		Name:            c.builder.Text(c.params.DisplayTitle()),
		Description:     c.builder.Text(""),
		Type:            xapi.ActivityInteraction,
		InteractionType: xapi.InteractionCompound,
	}
	score, max := c.Score(), c.MaxScore()
	result := xapi.ScoredResult(float64(score), float64(max), true, score == max)

	return xapi.Data{
		Statement: c.builder.Answered(c.builder.ActivityID(), def, result),
		Children:  c.seq.XAPIFragments(),
	}
}

// TriggerXAPI hands the compound record to the host once the current turn
// has finished, so records triggered by questions in the same turn are
// emitted first.
func (c *Controller) TriggerXAPI() {
	c.bus.Defer(func() {
		if c.host != nil {
			c.host.Trigger(c.XAPIData())
		}
	})
}
