// Package comment implements the comment aggregate: the events, states and
// decisions behind a reader's comment on a PREreview, from the first draft
// field through DOI assignment and publication.
//
// The aggregate is a pure state machine. Fold reduces an ordered event
// history into a State; the Decide functions validate commands against that
// state and emit new events. Neither touches storage, so both can be tested
// without any I/O harness.
package comment

// Persona is the identity a comment is published under.
type Persona string

const (
	PersonaPublic    Persona = "public"
	PersonaPseudonym Persona = "pseudonym"
)

// Valid reports whether the persona is one of the known values.
func (p Persona) Valid() bool {
	return p == PersonaPublic || p == PersonaPseudonym
}

// Event is the closed set of facts that can happen to a comment.
type Event interface {
	isCommentEvent()
}

// CommentWasStarted opens a new comment by an author on a PREreview.
type CommentWasStarted struct {
	PrereviewID string `json:"prereviewId"`
	AuthorID    string `json:"authorId"`
}

// CommentWasEntered records the comment text, replacing any earlier text.
type CommentWasEntered struct {
	Text string `json:"text"`
}

// PersonaWasChosen records which identity the comment will be published
// under, replacing any earlier choice.
type PersonaWasChosen struct {
	Persona Persona `json:"persona"`
}

// CompetingInterestsWereDeclared records the author's declaration. An empty
// statement is a valid declaration of "none".
type CompetingInterestsWereDeclared struct {
	Statement string `json:"statement"`
}

// CodeOfConductWasAgreed records the author's agreement.
type CodeOfConductWasAgreed struct{}

// VerifiedEmailAddressWasConfirmed records that the author has a verified
// email address.
type VerifiedEmailAddressWasConfirmed struct{}

// PublicationWasRequested moves a complete comment into publishing.
type PublicationWasRequested struct{}

// DoiWasAssigned records the record id and DOI minted for the comment.
type DoiWasAssigned struct {
	ID  int    `json:"id"`
	Doi string `json:"doi"`
}

// CommentWasPublished marks the comment as published.
type CommentWasPublished struct{}

func (CommentWasStarted) isCommentEvent()                {}
func (CommentWasEntered) isCommentEvent()                {}
func (PersonaWasChosen) isCommentEvent()                 {}
func (CompetingInterestsWereDeclared) isCommentEvent()   {}
func (CodeOfConductWasAgreed) isCommentEvent()           {}
func (VerifiedEmailAddressWasConfirmed) isCommentEvent() {}
func (PublicationWasRequested) isCommentEvent()          {}
func (DoiWasAssigned) isCommentEvent()                   {}
func (CommentWasPublished) isCommentEvent()              {}

// Stored type names carry the aggregate prefix so comment events can share
// a store with other aggregates whose events reuse the same struct names.

func (CommentWasStarted) EventTypeName() string { return "comment.CommentWasStarted" }
func (CommentWasEntered) EventTypeName() string { return "comment.CommentWasEntered" }
func (PersonaWasChosen) EventTypeName() string  { return "comment.PersonaWasChosen" }
func (CompetingInterestsWereDeclared) EventTypeName() string {
	return "comment.CompetingInterestsWereDeclared"
}
func (CodeOfConductWasAgreed) EventTypeName() string { return "comment.CodeOfConductWasAgreed" }
func (VerifiedEmailAddressWasConfirmed) EventTypeName() string {
	return "comment.VerifiedEmailAddressWasConfirmed"
}
func (PublicationWasRequested) EventTypeName() string { return "comment.PublicationWasRequested" }
func (DoiWasAssigned) EventTypeName() string          { return "comment.DoiWasAssigned" }
func (CommentWasPublished) EventTypeName() string     { return "comment.CommentWasPublished" }

// Events returns one value of every comment event type, for registration
// with an event store's serializer.
func Events() []any {
	return []any{
		CommentWasStarted{},
		CommentWasEntered{},
		PersonaWasChosen{},
		CompetingInterestsWereDeclared{},
		CodeOfConductWasAgreed{},
		VerifiedEmailAddressWasConfirmed{},
		PublicationWasRequested{},
		DoiWasAssigned{},
		CommentWasPublished{},
	}
}
