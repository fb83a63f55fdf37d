package datasetreview

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PREreview/eventcore"
)

type NotStartedError struct{}

func (NotStartedError) Error() string { return "dataset review has not been started" }
func (NotStartedError) DomainError()  {}

type AlreadyStartedError struct {
	AuthorID string
}

func (e AlreadyStartedError) Error() string {
	return fmt.Sprintf("dataset review was already started by author %s", e.AuthorID)
}
func (AlreadyStartedError) DomainError() {}

type StartedByAnotherAuthorError struct {
	AuthorID string
}

func (e StartedByAnotherAuthorError) Error() string {
	return fmt.Sprintf("dataset review was started by another author (%s)", e.AuthorID)
}
func (StartedByAnotherAuthorError) DomainError() {}

type IsBeingPublishedError struct{}

func (IsBeingPublishedError) Error() string { return "dataset review is being published" }
func (IsBeingPublishedError) DomainError()  {}

type HasBeenPublishedError struct{}

func (HasBeenPublishedError) Error() string { return "dataset review has already been published" }
func (HasBeenPublishedError) DomainError()  {}

type DoiAlreadyAssignedError struct {
	Doi string
}

func (e DoiAlreadyAssignedError) Error() string {
	return fmt.Sprintf("dataset review was already assigned DOI %s", e.Doi)
}
func (DoiAlreadyAssignedError) DomainError() {}

// Prerequisite names as reported in NotReadyError.Missing.
const (
	MissingAnsweredQuestion   = "an answered question"
	MissingPublicationRequest = "a publication request"
	MissingAssignedDoi        = "an assigned DOI"
	MissingActiveDoi          = "an active DOI"
)

// NotReadyError rejects a multi-precondition command, naming every
// prerequisite that is still missing.
type NotReadyError struct {
	Missing []string
}

func (e NotReadyError) Error() string {
	return fmt.Sprintf("dataset review is not ready: missing %s", strings.Join(e.Missing, ", "))
}
func (NotReadyError) DomainError() {}

// StartDatasetReview opens a new review of a dataset by an author.
type StartDatasetReview struct {
	ReviewID  eventcore.ResourceID
	DatasetID string
	AuthorID  string
}

func (c StartDatasetReview) CommandType() string              { return "StartDatasetReview" }
func (c StartDatasetReview) ResourceID() eventcore.ResourceID { return c.ReviewID }

func (c StartDatasetReview) Validate() error {
	if c.DatasetID == "" {
		return errors.New("dataset id cannot be empty")
	}
	if c.AuthorID == "" {
		return errors.New("author id cannot be empty")
	}
	return nil
}

// DecideStartDatasetReview starts the review. Resubmission by the same
// author is a no-op; a different author is rejected.
func DecideStartDatasetReview(state State, cmd StartDatasetReview) ([]any, error) {
	if _, ok := state.(NotStarted); ok {
		return []any{DatasetReviewWasStarted{DatasetID: cmd.DatasetID, AuthorID: cmd.AuthorID}}, nil
	}

	authorID, _ := stateAuthor(state)
	if authorID == cmd.AuthorID {
		return nil, nil
	}
	return nil, AlreadyStartedError{AuthorID: authorID}
}

// AnswerQuestion records the reviewer's answer to one question. A repeat
// answer with the same value is a no-op; a different value supersedes the
// earlier answer without deleting its event.
type AnswerQuestion struct {
	ReviewID eventcore.ResourceID
	AuthorID string
	Question Question
	Answer   Answer
}

func (c AnswerQuestion) CommandType() string              { return "AnswerDatasetReviewQuestion" }
func (c AnswerQuestion) ResourceID() eventcore.ResourceID { return c.ReviewID }

func (c AnswerQuestion) Validate() error {
	if c.AuthorID == "" {
		return errors.New("author id cannot be empty")
	}
	if !c.Question.Valid() {
		return errors.New("unknown question")
	}
	if !c.Answer.Valid() {
		return errors.New("answer must be yes, no, partly or unsure")
	}
	return nil
}

// DecideAnswerQuestion validates an answer against the review's state.
func DecideAnswerQuestion(state State, cmd AnswerQuestion) ([]any, error) {
	switch s := state.(type) {
	case NotStarted:
		return nil, NotStartedError{}
	case InProgress:
		if s.AuthorID != cmd.AuthorID {
			return nil, StartedByAnotherAuthorError{AuthorID: s.AuthorID}
		}
		if existing, ok := s.Answers[cmd.Question]; ok && existing == cmd.Answer {
			return nil, nil
		}
		return []any{newAnswerEvent(cmd.Question, cmd.Answer)}, nil
	case IsBeingPublished:
		return nil, IsBeingPublishedError{}
	case HasBeenPublished:
		return nil, HasBeenPublishedError{}
	}
	return nil, NotStartedError{}
}

// RequestPublication asks for the review to be published. At least one
// question must have been answered.
type RequestPublication struct {
	ReviewID eventcore.ResourceID
	AuthorID string
}

func (c RequestPublication) CommandType() string              { return "RequestDatasetReviewPublication" }
func (c RequestPublication) ResourceID() eventcore.ResourceID { return c.ReviewID }

func (c RequestPublication) Validate() error {
	if c.AuthorID == "" {
		return errors.New("author id cannot be empty")
	}
	return nil
}

// DecideRequestPublication moves an answered review into publishing. A
// repeat request while publishing is in flight is a no-op.
func DecideRequestPublication(state State, cmd RequestPublication) ([]any, error) {
	switch s := state.(type) {
	case NotStarted:
		return nil, NotStartedError{}
	case InProgress:
		if s.AuthorID != cmd.AuthorID {
			return nil, StartedByAnotherAuthorError{AuthorID: s.AuthorID}
		}
		if len(s.Answers) == 0 {
			return nil, NotReadyError{Missing: []string{MissingAnsweredQuestion}}
		}
		return []any{PublicationWasRequested{}}, nil
	case IsBeingPublished:
		if s.AuthorID != cmd.AuthorID {
			return nil, StartedByAnotherAuthorError{AuthorID: s.AuthorID}
		}
		return nil, nil
	case HasBeenPublished:
		return nil, HasBeenPublishedError{}
	}
	return nil, NotStartedError{}
}

// MarkDoiAsAssigned records the DOI minted for the review.
type MarkDoiAsAssigned struct {
	ReviewID eventcore.ResourceID
	ID       int
	Doi      string
}

func (c MarkDoiAsAssigned) CommandType() string              { return "MarkDatasetReviewDoiAsAssigned" }
func (c MarkDoiAsAssigned) ResourceID() eventcore.ResourceID { return c.ReviewID }

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
	case InProgress:
		return nil, NotReadyError{Missing: []string{MissingPublicationRequest}}
	case IsBeingPublished:
		switch {
		case s.Doi == "":
			return []any{DoiWasAssigned{ID: cmd.ID, Doi: cmd.Doi}}, nil
		case s.ID == cmd.ID && s.Doi == cmd.Doi:
			return nil, nil
		default:
			return nil, DoiAlreadyAssignedError{Doi: s.Doi}
		}
	case HasBeenPublished:
		if s.ID == cmd.ID && s.Doi == cmd.Doi {
			return nil, nil
		}
		return nil, DoiAlreadyAssignedError{Doi: s.Doi}
	}
	return nil, NotStartedError{}
}

// MarkDoiAsActivated records that the review's DOI went live.
type MarkDoiAsActivated struct {
	ReviewID eventcore.ResourceID
}

func (c MarkDoiAsActivated) CommandType() string              { return "MarkDatasetReviewDoiAsActivated" }
func (c MarkDoiAsActivated) ResourceID() eventcore.ResourceID { return c.ReviewID }
func (c MarkDoiAsActivated) Validate() error                  { return nil }

// DecideMarkDoiAsActivated activates an assigned DOI; repeats are no-ops.
func DecideMarkDoiAsActivated(state State, cmd MarkDoiAsActivated) ([]any, error) {
	switch s := state.(type) {
	case NotStarted:
		return nil, NotStartedError{}
	case InProgress:
		return nil, NotReadyError{Missing: []string{MissingPublicationRequest, MissingAssignedDoi}}
	case IsBeingPublished:
		switch {
		case s.Doi == "":
			return nil, NotReadyError{Missing: []string{MissingAssignedDoi}}
		case s.DoiActive:
			return nil, nil
		default:
			return []any{DoiWasActivated{}}, nil
		}
	case HasBeenPublished:
		return nil, nil
	}
	return nil, NotStartedError{}
}

// MarkAsPublished completes publication once every prerequisite has been
// met: publication requested, DOI assigned, DOI active.
type MarkAsPublished struct {
	ReviewID eventcore.ResourceID
}

func (c MarkAsPublished) CommandType() string              { return "MarkDatasetReviewAsPublished" }
func (c MarkAsPublished) ResourceID() eventcore.ResourceID { return c.ReviewID }
func (c MarkAsPublished) Validate() error                  { return nil }

// DecideMarkAsPublished marks the review published, enumerating every
// prerequisite still missing otherwise. Publishing twice is a no-op.
func DecideMarkAsPublished(state State, cmd MarkAsPublished) ([]any, error) {
	switch s := state.(type) {
	case NotStarted:
		return nil, NotStartedError{}
	case InProgress:
		return nil, NotReadyError{Missing: []string{MissingPublicationRequest}}
	case IsBeingPublished:
		var missing []string
		if s.Doi == "" {
			missing = append(missing, MissingAssignedDoi)
		}
		if !s.DoiActive {
			missing = append(missing, MissingActiveDoi)
		}
		if len(missing) > 0 {
			return nil, NotReadyError{Missing: missing}
		}
		return []any{DatasetReviewWasPublished{}}, nil
	case HasBeenPublished:
		return nil, nil
	}
	return nil, NotStartedError{}
}

func stateAuthor(state State) (string, bool) {
	switch s := state.(type) {
	case InProgress:
		return s.AuthorID, true
	case IsBeingPublished:
		return s.AuthorID, true
	case HasBeenPublished:
		return s.AuthorID, true
	default:
		return "", false
	}
}
