package question

import (
	"encoding/json"
	"strings"
	"unicode"

	"github.com/abhisek/speakset/internal/bus"
	"github.com/abhisek/speakset/internal/content"
	"github.com/abhisek/speakset/internal/host"
	"github.com/abhisek/speakset/internal/xapi"
)

const (
	defaultCorrectText   = "Correct!"
	defaultIncorrectText = "Incorrect answer"

	// responseDelimiter separates alternatives in an xAPI fill-in response.
	responseDelimiter = "[,]"
)

// SpeakTheWords is a question answered by saying one of the accepted
// answers. The transcript alternatives of the latest attempt are kept; the
// attempt is correct when any alternative matches an accepted answer.
type SpeakTheWords struct {
	slide   int
	cfg     content.Question
	bus     *bus.Bus
	host    host.Runtime
	builder *xapi.Builder

	answers         []string
	correct         bool
	listening       bool
	showingSolution bool

	unsubs []func()
}

var (
	_ Instance     = (*SpeakTheWords)(nil)
	_ Stopper      = (*SpeakTheWords)(nil)
	_ XAPIProvider = (*SpeakTheWords)(nil)
)

type speakState struct {
	UserAnswers []string `json:"userAnswers"`
}

// NewSpeakTheWords creates an instance, restoring m.Previous when it holds
// a readable state and ignoring it otherwise.
func NewSpeakTheWords(m Mount) *SpeakTheWords {
	b := m.Builder
	if b == nil {
		b = xapi.NewBuilder(xapi.Actor{}, "urn:speakset:"+m.Question.SubContentID, m.Question.InputLanguage)
	}
	q := &SpeakTheWords{
		slide:   m.Slide,
		cfg:     m.Question,
		bus:     m.Bus,
		host:    m.Host,
		builder: b,
	}

	if len(m.Previous) > 0 {
		var prev speakState
		if err := json.Unmarshal(m.Previous, &prev); err == nil && len(prev.UserAnswers) > 0 {
			q.answers = prev.UserAnswers
			q.correct = q.matches(prev.UserAnswers)
		}
	}

	if q.bus != nil {
		q.unsubs = append(q.unsubs,
			bus.Subscribe(q.bus, bus.RetrySet, func(bus.Empty) { q.Reset() }),
			bus.Subscribe(q.bus, bus.ShowSolutions, func(bus.ShowSolutionsPayload) { q.ShowSolution() }),
		)
	}
	return q
}

// SpeakTheWordsFactory is a Factory mounting SpeakTheWords instances.
func SpeakTheWordsFactory(m Mount) {
	m.OnInitialized(NewSpeakTheWords(m))
}

// Slide returns the slide index the instance was mounted on.
func (q *SpeakTheWords) Slide() int { return q.slide }

// Config returns the question parameters.
func (q *SpeakTheWords) Config() content.Question { return q.cfg }

// Answers returns the transcript alternatives of the latest attempt.
func (q *SpeakTheWords) Answers() []string { return q.answers }

// Answered reports whether an attempt has been recorded.
func (q *SpeakTheWords) Answered() bool { return len(q.answers) > 0 }

// Correct reports whether the latest attempt matched an accepted answer.
func (q *SpeakTheWords) Correct() bool { return q.correct }

// Listening reports whether capture is in progress.
func (q *SpeakTheWords) Listening() bool { return q.listening }

// ShowingSolution reports whether accepted answers are revealed.
func (q *SpeakTheWords) ShowingSolution() bool { return q.showingSolution }

// CanRetry reports whether the question offers its own retry affordance.
func (q *SpeakTheWords) CanRetry() bool {
	return q.Answered() && !q.correct && !q.showingSolution
}

// Feedback returns the text shown after an attempt.
func (q *SpeakTheWords) Feedback() string {
	if !q.Answered() {
		return ""
	}
	if q.correct {
		if q.cfg.CorrectAnswerText != "" {
			return q.cfg.CorrectAnswerText
		}
		return defaultCorrectText
	}
	if q.cfg.IncorrectAnswerText != "" {
		return q.cfg.IncorrectAnswerText
	}
	return defaultIncorrectText
}

// Listen starts capturing. It is a no-op while solutions are shown.
func (q *SpeakTheWords) Listen() {
	if q.showingSolution {
		return
	}
	q.listening = true
}

// Stop halts capture.
func (q *SpeakTheWords) Stop() {
	q.listening = false
}

// Submit records an attempt made of one or more transcript alternatives.
// It announces the answered slide on the bus, then signals xAPIanswered and
// triggers its own statement on the host, in that order.
func (q *SpeakTheWords) Submit(alternatives ...string) bool {
	if q.showingSolution {
		return false
	}
	cleaned := make([]string, 0, len(alternatives))
	for _, a := range alternatives {
		if a = strings.TrimSpace(a); a != "" {
			cleaned = append(cleaned, a)
		}
	}
	if len(cleaned) == 0 {
		return false
	}

	q.listening = false
	q.answers = cleaned
	q.correct = q.matches(cleaned)

	if q.bus != nil {
		bus.Publish(q.bus, bus.SlideAnswered, bus.SlideAnsweredPayload{Slide: q.slide})
		bus.Publish(q.bus, bus.XAPIAnswered, bus.Empty{})
	}
	if q.host != nil {
		q.host.Trigger(q.XAPIData())
	}
	return true
}

// Reset clears the attempt and leaves solution mode.
func (q *SpeakTheWords) Reset() {
	q.answers = nil
	q.correct = false
	q.listening = false
	q.showingSolution = false
}

// ShowSolution reveals the accepted answers and stops capture.
func (q *SpeakTheWords) ShowSolution() {
	q.showingSolution = true
	q.listening = false
}

// Score is 1 once a correct answer was heard.
func (q *SpeakTheWords) Score() int {
	if q.correct {
		return 1
	}
	return 0
}

// MaxScore is always 1.
func (q *SpeakTheWords) MaxScore() int {
	return 1
}

// CurrentState returns the heard answers as {"userAnswers":[...]}.
func (q *SpeakTheWords) CurrentState() json.RawMessage {
	answers := q.answers
	if answers == nil {
		answers = []string{}
	}
	b, err := json.Marshal(speakState{UserAnswers: answers})
	if err != nil {
		return json.RawMessage(`{"userAnswers":[]}`)
	}
	return b
}

// XAPIData builds the fill-in statement for this question.
func (q *SpeakTheWords) XAPIData() xapi.Data {
	def := xapi.Definition{
		Name:                    q.builder.Text(q.cfg.Question),
		Description:             q.builder.Text(q.cfg.Question),
		Type:                    xapi.ActivityInteraction,
		InteractionType:         xapi.InteractionFillIn,
		CorrectResponsesPattern: q.cfg.AcceptedAnswers,
	}
	result := xapi.ScoredResult(float64(q.Score()), float64(q.MaxScore()), q.Answered(), q.correct)
	result.Response = strings.Join(q.answers, responseDelimiter)

	return xapi.Data{
		Statement: q.builder.Answered(q.builder.SubContentID(q.cfg.SubContentID), def, result),
	}
}

// Close removes the instance's bus subscriptions.
func (q *SpeakTheWords) Close() {
	for _, off := range q.unsubs {
		off()
	}
	q.unsubs = nil
}

func (q *SpeakTheWords) matches(alternatives []string) bool {
	for _, alt := range alternatives {
		said := normalize(alt)
		for _, accepted := range q.cfg.AcceptedAnswers {
			if said != "" && said == normalize(accepted) {
				return true
			}
		}
	}
	return false
}

// normalize lowercases, drops punctuation and collapses whitespace.
func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsPunct(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
