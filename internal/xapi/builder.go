package xapi

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Builder fills in the parts of a statement owned by the host: who the
// learner is, which activity is being attempted and the attempt
// registration.
type Builder struct {
	actor        Actor
	activityID   string
	language     string
	registration string
	now          func() time.Time
}

// NewBuilder creates a builder for one attempt at activityID. An empty
// language falls back to DefaultLanguage.
func NewBuilder(actor Actor, activityID, language string) *Builder {
	if actor.ObjectType == "" {
		actor.ObjectType = ObjectTypeAgent
	}
	if language == "" {
		language = DefaultLanguage
	}
	return &Builder{
		actor:        actor,
		activityID:   activityID,
		language:     language,
		registration: uuid.NewString(),
		now:          time.Now,
	}
}

// ActivityID returns the IRI of the set activity.
func (b *Builder) ActivityID() string {
	return b.activityID
}

// Registration returns the attempt registration UUID.
func (b *Builder) Registration() string {
	return b.registration
}

// SubContentID returns the activity IRI of a child identified by sub.
func (b *Builder) SubContentID(sub string) string {
	if sub == "" {
		return b.activityID
	}
	if strings.Contains(b.activityID, "?") {
		return b.activityID + "&subContentId=" + sub
	}
	return b.activityID + subContentQueryPrefix + sub
}

// Text wraps s in a language map keyed by the builder's language.
func (b *Builder) Text(s string) LanguageMap {
	return LanguageMap{b.language: s}
}

// Answered builds an "answered" statement about objectID. Statements about
// children of the set carry the set as parent context activity.
func (b *Builder) Answered(objectID string, def Definition, result *Result) Statement {
	ctx := &Context{
		Registration: b.registration,
		Language:     b.language,
	}
	if objectID != b.activityID {
		ctx.ContextActivities = &ContextActivities{
			Parent: []Object{{ObjectType: ObjectTypeActivity, ID: b.activityID}},
		}
	}
	return Statement{
		ID:    uuid.NewString(),
		Actor: b.actor,
		Verb: Verb{
			ID:      VerbAnswered,
			Display: LanguageMap{DefaultLanguage: "answered"},
		},
		Object: Object{
			ObjectType: ObjectTypeActivity,
			ID:         objectID,
			Definition: &def,
		},
		Context:   ctx,
		Result:    result,
		Timestamp: b.now().UTC(),
	}
}

// ScoredResult builds a result with a score. Scaled is raw/max rounded to
// four decimals, or 0 when max is 0.
func ScoredResult(raw, max float64, completion, success bool) *Result {
	scaled := 0.0
	if max > 0 {
		scaled = math.Round(raw/max*10000) / 10000
	}
	return &Result{
		Score: &Score{
			Min:    0,
			Max:    max,
			Raw:    raw,
			Scaled: scaled,
		},
		Completion: &completion,
		Success:    &success,
	}
}
