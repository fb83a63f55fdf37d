package datasetreview

import "github.com/PREreview/eventcore"

// CurrentState folds a resource stream into the review's state.
func CurrentState(stream eventcore.ResourceStream) State {
	return Fold(stream.Payloads())
}

// UnansweredQuestions lists the questions a review has no answer for yet,
// in form order. Only in-progress reviews have unanswered questions.
func UnansweredQuestions(state State) []Question {
	s, ok := state.(InProgress)
	if !ok {
		return nil
	}

	var unanswered []Question
	for _, question := range Questions() {
		if _, answered := s.Answers[question]; !answered {
			unanswered = append(unanswered, question)
		}
	}
	return unanswered
}

// UnpublishedReviewsByAuthor finds every review an author has in flight:
// started but not yet published. Each resource's stream is folded
// independently; events from other aggregates fold to NotStarted and drop
// out.
func UnpublishedReviewsByAuthor(events []eventcore.Event, authorID string) map[eventcore.ResourceID]State {
	unpublished := make(map[eventcore.ResourceID]State)
	for resourceID, stream := range eventcore.GroupByResource(events) {
		state := Fold(stream.Payloads())
		switch s := state.(type) {
		case InProgress:
			if s.AuthorID == authorID {
				unpublished[resourceID] = s
			}
		case IsBeingPublished:
			if s.AuthorID == authorID {
				unpublished[resourceID] = s
			}
		}
	}
	return unpublished
}
