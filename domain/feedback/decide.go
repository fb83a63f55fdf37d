package feedback

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PREreview/eventcore"
)

type NotStartedError struct{}

func (NotStartedError) Error() string { return "feedback has not been started" }
func (NotStartedError) DomainError()  {}

type AlreadyStartedError struct {
	AuthorID string
}

func (e AlreadyStartedError) Error() string {
	return fmt.Sprintf("feedback was already started by author %s", e.AuthorID)
}
func (AlreadyStartedError) DomainError() {}

type StartedByAnotherAuthorError struct {
	AuthorID string
}

func (e StartedByAnotherAuthorError) Error() string {
	return fmt.Sprintf("feedback was started by another author (%s)", e.AuthorID)
}
func (StartedByAnotherAuthorError) DomainError() {}

type IncompleteError struct {
	Missing []string
}

func (e IncompleteError) Error() string {
	return fmt.Sprintf("feedback is incomplete: missing %s", strings.Join(e.Missing, ", "))
}
func (IncompleteError) DomainError() {}

type BeingPublishedError struct{}

func (BeingPublishedError) Error() string { return "feedback is being published" }
func (BeingPublishedError) DomainError()  {}

type AlreadyPublishedError struct{}

func (AlreadyPublishedError) Error() string { return "feedback has already been published" }
func (AlreadyPublishedError) DomainError()  {}

type PublicationNotRequestedError struct{}

func (PublicationNotRequestedError) Error() string {
	return "publication of the feedback has not been requested"
}
func (PublicationNotRequestedError) DomainError() {}

type DoiAlreadyAssignedError struct {
	Doi string
}

func (e DoiAlreadyAssignedError) Error() string {
	return fmt.Sprintf("feedback was already assigned DOI %s", e.Doi)
}
func (DoiAlreadyAssignedError) DomainError() {}

type DoiNotAssignedError struct{}

func (DoiNotAssignedError) Error() string { return "feedback has not been assigned a DOI" }
func (DoiNotAssignedError) DomainError()  {}

// StartFeedback opens new feedback by an author on a PREreview.
type StartFeedback struct {
	FeedbackID  eventcore.ResourceID
	PrereviewID string
	AuthorID    string
}

func (c StartFeedback) CommandType() string              { return "StartFeedback" }
func (c StartFeedback) ResourceID() eventcore.ResourceID { return c.FeedbackID }

func (c StartFeedback) Validate() error {
	if c.PrereviewID == "" {
		return errors.New("prereview id cannot be empty")
	}
	if c.AuthorID == "" {
		return errors.New("author id cannot be empty")
	}
	return nil
}

func DecideStartFeedback(state State, cmd StartFeedback) ([]any, error) {
	if _, ok := state.(NotStarted); ok {
		return []any{FeedbackWasStarted{PrereviewID: cmd.PrereviewID, AuthorID: cmd.AuthorID}}, nil
	}

	authorID, _ := author(state)
	if authorID == cmd.AuthorID {
		return nil, nil
	}
	return nil, AlreadyStartedError{AuthorID: authorID}
}

// EnterText sets or replaces the feedback text.
type EnterText struct {
	FeedbackID eventcore.ResourceID
	AuthorID   string
	Text       string
}

func (c EnterText) CommandType() string              { return "EnterFeedbackText" }
func (c EnterText) ResourceID() eventcore.ResourceID { return c.FeedbackID }

func (c EnterText) Validate() error {
	if c.AuthorID == "" {
		return errors.New("author id cannot be empty")
	}
	if c.Text == "" {
		return errors.New("text cannot be empty")
	}
	return nil
}

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
	return []any{FeedbackWasEntered{Text: cmd.Text}}, nil
}

// ChoosePersona sets or replaces the publishing identity.
type ChoosePersona struct {
	FeedbackID eventcore.ResourceID
	AuthorID   string
	Persona    Persona
}

func (c ChoosePersona) CommandType() string              { return "ChooseFeedbackPersona" }
func (c ChoosePersona) ResourceID() eventcore.ResourceID { return c.FeedbackID }

func (c ChoosePersona) Validate() error {
	if c.AuthorID == "" {
		return errors.New("author id cannot be empty")
	}
	if !c.Persona.Valid() {
		return errors.New("persona must be public or pseudonym")
	}
	return nil
}

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

// AgreeToCodeOfConduct records the author's agreement.
type AgreeToCodeOfConduct struct {
	FeedbackID eventcore.ResourceID
	AuthorID   string
}

func (c AgreeToCodeOfConduct) CommandType() string              { return "AgreeToFeedbackCodeOfConduct" }
func (c AgreeToCodeOfConduct) ResourceID() eventcore.ResourceID { return c.FeedbackID }

func (c AgreeToCodeOfConduct) Validate() error {
	if c.AuthorID == "" {
		return errors.New("author id cannot be empty")
	}
	return nil
}

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

// RequestPublication asks for complete feedback to be published.
type RequestPublication struct {
	FeedbackID eventcore.ResourceID
	AuthorID   string
}

func (c RequestPublication) CommandType() string              { return "RequestFeedbackPublication" }
func (c RequestPublication) ResourceID() eventcore.ResourceID { return c.FeedbackID }

func (c RequestPublication) Validate() error {
	if c.AuthorID == "" {
		return errors.New("author id cannot be empty")
	}
	return nil
}

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

// MarkDoiAsAssigned records the record id and DOI minted for the feedback.
type MarkDoiAsAssigned struct {
	FeedbackID eventcore.ResourceID
	ID         int
	Doi        string
}

func (c MarkDoiAsAssigned) CommandType() string              { return "MarkFeedbackDoiAsAssigned" }
func (c MarkDoiAsAssigned) ResourceID() eventcore.ResourceID { return c.FeedbackID }

func (c MarkDoiAsAssigned) Validate() error {
	if c.ID == 0 {
		return errors.New("record id cannot be zero")
	}
	if c.Doi == "" {
		return errors.New("doi cannot be empty")
	}
	return nil
}

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

// MarkAsPublished marks the feedback as published.
type MarkAsPublished struct {
	FeedbackID eventcore.ResourceID
}

func (c MarkAsPublished) CommandType() string              { return "MarkFeedbackAsPublished" }
func (c MarkAsPublished) ResourceID() eventcore.ResourceID { return c.FeedbackID }
func (c MarkAsPublished) Validate() error                  { return nil }

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
		return []any{FeedbackWasPublished{}}, nil
	case Published:
		return nil, nil
	}
	return nil, NotStartedError{}
}

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
