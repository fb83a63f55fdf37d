package comment

import (
	"fmt"
	"strings"
)

// NotStartedError rejects commands on a comment that has no history.
type NotStartedError struct{}

func (NotStartedError) Error() string { return "comment has not been started" }
func (NotStartedError) DomainError()  {}

// AlreadyStartedError rejects starting a comment that another author
// already started.
type AlreadyStartedError struct {
	AuthorID string
}

func (e AlreadyStartedError) Error() string {
	return fmt.Sprintf("comment was already started by author %s", e.AuthorID)
}
func (AlreadyStartedError) DomainError() {}

// StartedByAnotherAuthorError rejects field commands from anyone but the
// starting author.
type StartedByAnotherAuthorError struct {
	AuthorID string
}

func (e StartedByAnotherAuthorError) Error() string {
	return fmt.Sprintf("comment was started by another author (%s)", e.AuthorID)
}
func (StartedByAnotherAuthorError) DomainError() {}

// IncompleteError rejects a publication request while required fields are
// still missing, naming each one.
type IncompleteError struct {
	Missing []string
}

func (e IncompleteError) Error() string {
	return fmt.Sprintf("comment is incomplete: missing %s", strings.Join(e.Missing, ", "))
}
func (IncompleteError) DomainError() {}

// BeingPublishedError rejects edits to a comment whose publication is in
// flight.
type BeingPublishedError struct{}

func (BeingPublishedError) Error() string { return "comment is being published" }
func (BeingPublishedError) DomainError()  {}

// AlreadyPublishedError rejects changes to a published comment.
type AlreadyPublishedError struct{}

func (AlreadyPublishedError) Error() string { return "comment has already been published" }
func (AlreadyPublishedError) DomainError()  {}

// PublicationNotRequestedError rejects publishing-side commands before
// publication has been requested.
type PublicationNotRequestedError struct{}

func (PublicationNotRequestedError) Error() string {
	return "publication of the comment has not been requested"
}
func (PublicationNotRequestedError) DomainError() {}

// DoiAlreadyAssignedError rejects assigning a second, different DOI.
type DoiAlreadyAssignedError struct {
	Doi string
}

func (e DoiAlreadyAssignedError) Error() string {
	return fmt.Sprintf("comment was already assigned DOI %s", e.Doi)
}
func (DoiAlreadyAssignedError) DomainError() {}

// DoiNotAssignedError rejects publishing a comment with no DOI yet.
type DoiNotAssignedError struct{}

func (DoiNotAssignedError) Error() string { return "comment has not been assigned a DOI" }
func (DoiNotAssignedError) DomainError()  {}
