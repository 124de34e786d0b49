// Package xapi models the analytics statements the set hands to its host:
// a compound "answered" statement for the whole set with one child
// statement per question instance.
package xapi

import "time"

// Verb and activity IRIs used by the set.
const (
	VerbAnswered          = "http://adlnet.gov/expapi/verbs/answered"
	ActivityInteraction   = "http://adlnet.gov/expapi/activities/cmi.interaction"
	InteractionCompound   = "compound"
	InteractionFillIn     = "fill-in"
	ObjectTypeActivity    = "Activity"
	ObjectTypeAgent       = "Agent"
	DefaultLanguage       = "en-US"
	subContentQueryPrefix = "?subContentId="
)

// LanguageMap maps a language tag to a display string.
type LanguageMap map[string]string

// Account identifies an actor on a home page instead of by mailbox.
type Account struct {
	HomePage string `json:"homePage"`
	Name     string `json:"name"`
}

// Actor is the learner the statement is about.
type Actor struct {
	ObjectType string   `json:"objectType"`
	Name       string   `json:"name,omitempty"`
	Mbox       string   `json:"mbox,omitempty"`
	Account    *Account `json:"account,omitempty"`
}

// Verb is the action being reported.
type Verb struct {
	ID      string      `json:"id"`
	Display LanguageMap `json:"display"`
}

// Definition describes an activity.
type Definition struct {
	Name                    LanguageMap `json:"name,omitempty"`
	Description             LanguageMap `json:"description,omitempty"`
	Type                    string      `json:"type,omitempty"`
	InteractionType         string      `json:"interactionType,omitempty"`
	CorrectResponsesPattern []string    `json:"correctResponsesPattern,omitempty"`
}

// Object is the activity acted upon.
type Object struct {
	ObjectType string      `json:"objectType"`
	ID         string      `json:"id"`
	Definition *Definition `json:"definition,omitempty"`
}

// ContextActivities links an activity to related activities.
type ContextActivities struct {
	Parent   []Object `json:"parent,omitempty"`
	Category []Object `json:"category,omitempty"`
}

// Context carries the attempt registration and related activities.
type Context struct {
	Registration      string             `json:"registration,omitempty"`
	Language          string             `json:"language,omitempty"`
	ContextActivities *ContextActivities `json:"contextActivities,omitempty"`
}

// Score is the scored part of a result.
type Score struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Raw    float64 `json:"raw"`
	Scaled float64 `json:"scaled"`
}

// Result is the outcome of the activity.
type Result struct {
	Score      *Score `json:"score,omitempty"`
	Completion *bool  `json:"completion,omitempty"`
	Success    *bool  `json:"success,omitempty"`
	Response   string `json:"response,omitempty"`
}

// Statement is a single analytics record.
type Statement struct {
	ID        string    `json:"id,omitempty"`
	Actor     Actor     `json:"actor"`
	Verb      Verb      `json:"verb"`
	Object    Object    `json:"object"`
	Context   *Context  `json:"context,omitempty"`
	Result    *Result   `json:"result,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Data is a statement together with the statements of its children, the
// shape returned by every component that reports analytics.
type Data struct {
	Statement Statement `json:"statement"`
	Children  []Data    `json:"children,omitempty"`
}

// Flatten returns the statement followed by all descendant statements in
// depth-first order.
func (d Data) Flatten() []Statement {
	out := []Statement{d.Statement}
	for _, c := range d.Children {
		out = append(out, c.Flatten()...)
	}
	return out
}
