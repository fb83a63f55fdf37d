// Package datasetreview implements the dataset review aggregate: a
// structured review of a dataset built from independent yes/no/partly/unsure
// answers, published with a DOI that is minted inactive and activated before
// the review is marked published.
//
// Three pure folds expose the stream at different grains: Fold for the
// review lifecycle, FoldQuestion for one question's answer slot, and
// FoldDoi for the DOI's registration state.
package datasetreview

// Answer is the value a reviewer gives to one question.
type Answer string

const (
	AnswerYes    Answer = "yes"
	AnswerNo     Answer = "no"
	AnswerPartly Answer = "partly"
	AnswerUnsure Answer = "unsure"
)

// Valid reports whether the answer is one of the known values.
func (a Answer) Valid() bool {
	switch a {
	case AnswerYes, AnswerNo, AnswerPartly, AnswerUnsure:
		return true
	}
	return false
}

// Question identifies one of the review's answer slots.
type Question string

const (
	QuestionFollowsFairAndCarePrinciples Question = "followsFairAndCarePrinciples"
	QuestionHasEnoughMetadata            Question = "hasEnoughMetadata"
	QuestionHasTrackedChanges            Question = "hasTrackedChanges"
)

// Questions returns every question in form order.
func Questions() []Question {
	return []Question{
		QuestionFollowsFairAndCarePrinciples,
		QuestionHasEnoughMetadata,
		QuestionHasTrackedChanges,
	}
}

// Valid reports whether the question is one of the known slots.
func (q Question) Valid() bool {
	switch q {
	case QuestionFollowsFairAndCarePrinciples, QuestionHasEnoughMetadata, QuestionHasTrackedChanges:
		return true
	}
	return false
}

// Event is the closed set of facts that can happen to a dataset review.
type Event interface {
	isDatasetReviewEvent()
}

type DatasetReviewWasStarted struct {
	DatasetID string `json:"datasetId"`
	AuthorID  string `json:"authorId"`
}

// AnsweredIfTheDatasetFollowsFairAndCarePrinciples records an answer; a
// later answer to the same question supersedes it.
type AnsweredIfTheDatasetFollowsFairAndCarePrinciples struct {
	Answer Answer `json:"answer"`
}

type AnsweredIfTheDatasetHasEnoughMetadata struct {
	Answer Answer `json:"answer"`
}

type AnsweredIfTheDatasetHasTrackedChanges struct {
	Answer Answer `json:"answer"`
}

type PublicationWasRequested struct{}

// DoiWasAssigned records the DOI minted for the review. The DOI starts
// inactive and must be activated before publication completes.
type DoiWasAssigned struct {
	ID  int    `json:"id"`
	Doi string `json:"doi"`
}

type DoiWasActivated struct{}

type DatasetReviewWasPublished struct{}

func (DatasetReviewWasStarted) isDatasetReviewEvent()                          {}
func (AnsweredIfTheDatasetFollowsFairAndCarePrinciples) isDatasetReviewEvent() {}
func (AnsweredIfTheDatasetHasEnoughMetadata) isDatasetReviewEvent()            {}
func (AnsweredIfTheDatasetHasTrackedChanges) isDatasetReviewEvent()            {}
func (PublicationWasRequested) isDatasetReviewEvent()                          {}
func (DoiWasAssigned) isDatasetReviewEvent()                                   {}
func (DoiWasActivated) isDatasetReviewEvent()                                  {}
func (DatasetReviewWasPublished) isDatasetReviewEvent()                        {}

// Stored type names carry the aggregate prefix so dataset review events can
// share a store with other aggregates whose events reuse the same struct
// names.

func (DatasetReviewWasStarted) EventTypeName() string {
	return "datasetreview.DatasetReviewWasStarted"
}

func (AnsweredIfTheDatasetFollowsFairAndCarePrinciples) EventTypeName() string {
	return "datasetreview.AnsweredIfTheDatasetFollowsFairAndCarePrinciples"
}

func (AnsweredIfTheDatasetHasEnoughMetadata) EventTypeName() string {
	return "datasetreview.AnsweredIfTheDatasetHasEnoughMetadata"
}

func (AnsweredIfTheDatasetHasTrackedChanges) EventTypeName() string {
	return "datasetreview.AnsweredIfTheDatasetHasTrackedChanges"
}

func (PublicationWasRequested) EventTypeName() string {
	return "datasetreview.PublicationWasRequested"
}

func (DoiWasAssigned) EventTypeName() string {
	return "datasetreview.DoiWasAssigned"
}

func (DoiWasActivated) EventTypeName() string {
	return "datasetreview.DoiWasActivated"
}

func (DatasetReviewWasPublished) EventTypeName() string {
	return "datasetreview.DatasetReviewWasPublished"
}

// answerEvent returns the question and answer carried by an answer event.
func answerEvent(event any) (Question, Answer, bool) {
	switch e := event.(type) {
	case AnsweredIfTheDatasetFollowsFairAndCarePrinciples:
		return QuestionFollowsFairAndCarePrinciples, e.Answer, true
	case AnsweredIfTheDatasetHasEnoughMetadata:
		return QuestionHasEnoughMetadata, e.Answer, true
	case AnsweredIfTheDatasetHasTrackedChanges:
		return QuestionHasTrackedChanges, e.Answer, true
	}
	return "", "", false
}

// newAnswerEvent builds the answer event for a question.
func newAnswerEvent(question Question, answer Answer) any {
	switch question {
	case QuestionFollowsFairAndCarePrinciples:
		return AnsweredIfTheDatasetFollowsFairAndCarePrinciples{Answer: answer}
	case QuestionHasEnoughMetadata:
		return AnsweredIfTheDatasetHasEnoughMetadata{Answer: answer}
	default:
		return AnsweredIfTheDatasetHasTrackedChanges{Answer: answer}
	}
}

// Events returns one value of every dataset review event type, for
// registration with an event store's serializer.
func Events() []any {
	return []any{
		DatasetReviewWasStarted{},
		AnsweredIfTheDatasetFollowsFairAndCarePrinciples{},
		AnsweredIfTheDatasetHasEnoughMetadata{},
		AnsweredIfTheDatasetHasTrackedChanges{},
		PublicationWasRequested{},
		DoiWasAssigned{},
		DoiWasActivated{},
		DatasetReviewWasPublished{},
	}
}
