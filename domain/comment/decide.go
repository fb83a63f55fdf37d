package comment

import (
	"errors"

	"github.com/PREreview/eventcore"
)

// StartComment opens a new comment by an author on a PREreview.
type StartComment struct {
	CommentID   eventcore.ResourceID
	PrereviewID string
	AuthorID    string
}

func (c StartComment) CommandType() string              { return "StartComment" }
func (c StartComment) ResourceID() eventcore.ResourceID { return c.CommentID }

func (c StartComment) Validate() error {
	if c.PrereviewID == "" {
		return errors.New("prereview id cannot be empty")
	}
	if c.AuthorID == "" {
		return errors.New("author id cannot be empty")
	}
	return nil
}

// DecideStartComment starts the comment. Resubmission by the same author is
// a no-op; a different author is rejected.
func DecideStartComment(state State, cmd StartComment) ([]any, error) {
	if _, ok := state.(NotStarted); ok {
		return []any{CommentWasStarted{PrereviewID: cmd.PrereviewID, AuthorID: cmd.AuthorID}}, nil
	}

	authorID, _ := author(state)
	if authorID == cmd.AuthorID {
		return nil, nil
	}
	return nil, AlreadyStartedError{AuthorID: authorID}
}

// EnterText sets or replaces the comment text.
type EnterText struct {
	CommentID eventcore.ResourceID
	AuthorID  string
	Text      string
}

func (c EnterText) CommandType() string              { return "EnterCommentText" }
func (c EnterText) ResourceID() eventcore.ResourceID { return c.CommentID }

func (c EnterText) Validate() error {
	if c.AuthorID == "" {
		return errors.New("author id cannot be empty")
	}
	if c.Text == "" {
		return errors.New("text cannot be empty")
	}
	return nil
}

// DecideEnterText records the comment text while the comment is editable.
func DecideEnterText(state State, cmd EnterText) ([]any, error) {
	if err := checkEditable(state, cmd.AuthorID); err != nil {
		return nil, err
	}

	switch s := state.(type) {
	case InProgress:
		if s.Text != nil && *s.Text == cmd.Text {
			return nil, nil
		}
	case ReadyForPublishing:
		if s.Text == cmd.Text {
			return nil, nil
		}
	}
	return []any{CommentWasEntered{Text: cmd.Text}}, nil
}

// ChoosePersona sets or replaces the publishing identity.
type ChoosePersona struct {
	CommentID eventcore.ResourceID
	AuthorID  string
	Persona   Persona
}

func (c ChoosePersona) CommandType() string              { return "ChooseCommentPersona" }
func (c ChoosePersona) ResourceID() eventcore.ResourceID { return c.CommentID }

func (c ChoosePersona) Validate() error {
	if c.AuthorID == "" {
		return errors.New("author id cannot be empty")
	}
	if !c.Persona.Valid() {
		return errors.New("persona must be public or pseudonym")
	}
	return nil
}

// DecideChoosePersona records the chosen persona while the comment is
// editable.
func DecideChoosePersona(state State, cmd ChoosePersona) ([]any, error) {
	if err := checkEditable(state, cmd.AuthorID); err != nil {
		return nil, err
	}

	switch s := state.(type) {
	case InProgress:
		if s.Persona != nil && *s.Persona == cmd.Persona {
			return nil, nil
		}
	case ReadyForPublishing:
		if s.Persona == cmd.Persona {
			return nil, nil
		}
	}
	return []any{PersonaWasChosen{Persona: cmd.Persona}}, nil
}

// DeclareCompetingInterests records the declaration. An empty statement is
// a valid declaration of "none".
type DeclareCompetingInterests struct {
	CommentID eventcore.ResourceID
	AuthorID  string
	Statement string
}

func (c DeclareCompetingInterests) CommandType() string              { return "DeclareCommentCompetingInterests" }
func (c DeclareCompetingInterests) ResourceID() eventcore.ResourceID { return c.CommentID }

func (c DeclareCompetingInterests) Validate() error {
	if c.AuthorID == "" {
		return errors.New("author id cannot be empty")
	}
	return nil
}

// DecideDeclareCompetingInterests records the declaration while the comment
// is editable.
func DecideDeclareCompetingInterests(state State, cmd DeclareCompetingInterests) ([]any, error) {
	if err := checkEditable(state, cmd.AuthorID); err != nil {
		return nil, err
	}

	switch s := state.(type) {
	case InProgress:
		if s.CompetingInterests != nil && *s.CompetingInterests == cmd.Statement {
			return nil, nil
		}
	case ReadyForPublishing:
		if s.CompetingInterests == cmd.Statement {
			return nil, nil
		}
	}
	return []any{CompetingInterestsWereDeclared{Statement: cmd.Statement}}, nil
}

// AgreeToCodeOfConduct records the author's agreement.
type AgreeToCodeOfConduct struct {
	CommentID eventcore.ResourceID
	AuthorID  string
}

func (c AgreeToCodeOfConduct) CommandType() string              { return "AgreeToCommentCodeOfConduct" }
func (c AgreeToCodeOfConduct) ResourceID() eventcore.ResourceID { return c.CommentID }

func (c AgreeToCodeOfConduct) Validate() error {
	if c.AuthorID == "" {
		return errors.New("author id cannot be empty")
	}
	return nil
}

// DecideAgreeToCodeOfConduct records the agreement once; repeats are no-ops.
func DecideAgreeToCodeOfConduct(state State, cmd AgreeToCodeOfConduct) ([]any, error) {
	if err := checkEditable(state, cmd.AuthorID); err != nil {
		return nil, err
	}

	switch s := state.(type) {
	case InProgress:
		if s.CodeOfConductAgreed {
			return nil, nil
		}
	case ReadyForPublishing:
		return nil, nil
	}
	return []any{CodeOfConductWasAgreed{}}, nil
}

// ConfirmVerifiedEmailAddress records that the author's email address has
// been verified.
type ConfirmVerifiedEmailAddress struct {
	CommentID eventcore.ResourceID
	AuthorID  string
}

func (c ConfirmVerifiedEmailAddress) CommandType() string {
	return "ConfirmCommentVerifiedEmailAddress"
}
func (c ConfirmVerifiedEmailAddress) ResourceID() eventcore.ResourceID { return c.CommentID }

func (c ConfirmVerifiedEmailAddress) Validate() error {
	if c.AuthorID == "" {
		return errors.New("author id cannot be empty")
	}
	return nil
}

// DecideConfirmVerifiedEmailAddress records the verification once; repeats
// are no-ops.
func DecideConfirmVerifiedEmailAddress(state State, cmd ConfirmVerifiedEmailAddress) ([]any, error) {
	if err := checkEditable(state, cmd.AuthorID); err != nil {
		return nil, err
	}

	switch s := state.(type) {
	case InProgress:
		if s.EmailAddressVerified {
			return nil, nil
		}
	case ReadyForPublishing:
		if s.EmailAddressVerified {
			return nil, nil
		}
	}
	return []any{VerifiedEmailAddressWasConfirmed{}}, nil
}

// RequestPublication asks for a complete comment to be published.
type RequestPublication struct {
	CommentID eventcore.ResourceID
	AuthorID  string
}

func (c RequestPublication) CommandType() string              { return "RequestCommentPublication" }
func (c RequestPublication) ResourceID() eventcore.ResourceID { return c.CommentID }

func (c RequestPublication) Validate() error {
	if c.AuthorID == "" {
		return errors.New("author id cannot be empty")
	}
	return nil
}

// DecideRequestPublication moves a ready comment into publishing. An
// incomplete comment is rejected with the list of missing prerequisites; a
// repeated request while publishing is in flight is a no-op.
func DecideRequestPublication(state State, cmd RequestPublication) ([]any, error) {
	switch s := state.(type) {
	case NotStarted:
		return nil, NotStartedError{}
	case InProgress:
		if s.AuthorID != cmd.AuthorID {
			return nil, StartedByAnotherAuthorError{AuthorID: s.AuthorID}
		}
		return nil, IncompleteError{Missing: s.Missing}
	case ReadyForPublishing:
		if s.AuthorID != cmd.AuthorID {
			return nil, StartedByAnotherAuthorError{AuthorID: s.AuthorID}
		}
		return []any{PublicationWasRequested{}}, nil
	case BeingPublished:
		if s.AuthorID != cmd.AuthorID {
			return nil, StartedByAnotherAuthorError{AuthorID: s.AuthorID}
		}
		return nil, nil
	case Published:
		return nil, AlreadyPublishedError{}
	}
	return nil, NotStartedError{}
}

// MarkDoiAsAssigned records the record id and DOI minted for the comment.
type MarkDoiAsAssigned struct {
	CommentID eventcore.ResourceID
	ID        int
	Doi       string
}

func (c MarkDoiAsAssigned) CommandType() string              { return "MarkCommentDoiAsAssigned" }
func (c MarkDoiAsAssigned) ResourceID() eventcore.ResourceID { return c.CommentID }

func (c MarkDoiAsAssigned) Validate() error {
	if c.ID == 0 {
		return errors.New("record id cannot be zero")
	}
	if c.Doi == "" {
		return errors.New("doi cannot be empty")
	}
	return nil
}

// DecideMarkDoiAsAssigned records the DOI once publication has been
// requested. Re-assigning the same DOI is a no-op; a different DOI is
// rejected.
func DecideMarkDoiAsAssigned(state State, cmd MarkDoiAsAssigned) ([]any, error) {
	switch s := state.(type) {
	case NotStarted:
		return nil, NotStartedError{}
	case InProgress, ReadyForPublishing:
		return nil, PublicationNotRequestedError{}
	case BeingPublished:
		switch {
		case s.Doi == "":
			return []any{DoiWasAssigned{ID: cmd.ID, Doi: cmd.Doi}}, nil
		case s.ID == cmd.ID && s.Doi == cmd.Doi:
			return nil, nil
		default:
			return nil, DoiAlreadyAssignedError{Doi: s.Doi}
		}
	case Published:
		if s.ID == cmd.ID && s.Doi == cmd.Doi {
			return nil, nil
		}
		return nil, DoiAlreadyAssignedError{Doi: s.Doi}
	}
	return nil, NotStartedError{}
}

// MarkAsPublished marks the comment as published.
type MarkAsPublished struct {
	CommentID eventcore.ResourceID
}

func (c MarkAsPublished) CommandType() string              { return "MarkCommentAsPublished" }
func (c MarkAsPublished) ResourceID() eventcore.ResourceID { return c.CommentID }
func (c MarkAsPublished) Validate() error                  { return nil }

// DecideMarkAsPublished completes publication once a DOI has been assigned.
// An already published comment is a no-op.
func DecideMarkAsPublished(state State, cmd MarkAsPublished) ([]any, error) {
	switch s := state.(type) {
	case NotStarted:
		return nil, NotStartedError{}
	case InProgress, ReadyForPublishing:
		return nil, PublicationNotRequestedError{}
	case BeingPublished:
		if s.ID == 0 || s.Doi == "" {
			return nil, DoiNotAssignedError{}
		}
		return []any{CommentWasPublished{}}, nil
	case Published:
		return nil, nil
	}
	return nil, NotStartedError{}
}

// checkEditable gates field commands: the comment must be started, not yet
// publishing, and edited by its starting author.
func checkEditable(state State, authorID string) error {
	switch s := state.(type) {
	case NotStarted:
		return NotStartedError{}
	case InProgress:
		if s.AuthorID != authorID {
			return StartedByAnotherAuthorError{AuthorID: s.AuthorID}
		}
	case ReadyForPublishing:
		if s.AuthorID != authorID {
			return StartedByAnotherAuthorError{AuthorID: s.AuthorID}
		}
	case BeingPublished:
		return BeingPublishedError{}
	case Published:
		return AlreadyPublishedError{}
	}
	return nil
}
