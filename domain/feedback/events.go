// Package feedback implements the feedback aggregate, the structured
// feedback an author leaves on a PREreview. It follows the same
// fold/decide shape as the comment aggregate with a smaller field set:
// text, persona and a code-of-conduct agreement, with no competing
// interests declaration and no email verification gate.
package feedback

// Persona is the identity feedback is published under.
type Persona string

const (
	PersonaPublic    Persona = "public"
	PersonaPseudonym Persona = "pseudonym"
)

// Valid reports whether the persona is one of the known values.
func (p Persona) Valid() bool {
	return p == PersonaPublic || p == PersonaPseudonym
}

// Event is the closed set of facts that can happen to feedback.
type Event interface {
	isFeedbackEvent()
}

type FeedbackWasStarted struct {
	PrereviewID string `json:"prereviewId"`
	AuthorID    string `json:"authorId"`
}

type FeedbackWasEntered struct {
	Text string `json:"text"`
}

type PersonaWasChosen struct {
	Persona Persona `json:"persona"`
}

type CodeOfConductWasAgreed struct{}

type PublicationWasRequested struct{}

type DoiWasAssigned struct {
	ID  int    `json:"id"`
	Doi string `json:"doi"`
}

type FeedbackWasPublished struct{}

func (FeedbackWasStarted) isFeedbackEvent()      {}
func (FeedbackWasEntered) isFeedbackEvent()      {}
func (PersonaWasChosen) isFeedbackEvent()        {}
func (CodeOfConductWasAgreed) isFeedbackEvent()  {}
func (PublicationWasRequested) isFeedbackEvent() {}
func (DoiWasAssigned) isFeedbackEvent()          {}
func (FeedbackWasPublished) isFeedbackEvent()    {}

// Stored type names carry the aggregate prefix so feedback events can share
// a store with other aggregates whose events reuse the same struct names.

func (FeedbackWasStarted) EventTypeName() string      { return "feedback.FeedbackWasStarted" }
func (FeedbackWasEntered) EventTypeName() string      { return "feedback.FeedbackWasEntered" }
func (PersonaWasChosen) EventTypeName() string        { return "feedback.PersonaWasChosen" }
func (CodeOfConductWasAgreed) EventTypeName() string  { return "feedback.CodeOfConductWasAgreed" }
func (PublicationWasRequested) EventTypeName() string { return "feedback.PublicationWasRequested" }
func (DoiWasAssigned) EventTypeName() string          { return "feedback.DoiWasAssigned" }
func (FeedbackWasPublished) EventTypeName() string    { return "feedback.FeedbackWasPublished" }

// Events returns one value of every feedback event type, for registration
// with an event store's serializer.
func Events() []any {
	return []any{
		FeedbackWasStarted{},
		FeedbackWasEntered{},
		PersonaWasChosen{},
		CodeOfConductWasAgreed{},
		PublicationWasRequested{},
		DoiWasAssigned{},
		FeedbackWasPublished{},
	}
}
