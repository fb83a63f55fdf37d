package comment

import "github.com/PREreview/eventcore"

// CurrentState folds a resource stream into the comment's state.
func CurrentState(stream eventcore.ResourceStream, policy Policy) State {
	return Fold(stream.Payloads(), policy)
}

// NextExpectedCommand names the command a resumed comment form should ask
// for next, or false when the comment is past data entry.
func NextExpectedCommand(state State) (string, bool) {
	s, ok := state.(InProgress)
	if !ok || len(s.Missing) == 0 {
		return "", false
	}

	switch s.Missing[0] {
	case MissingText:
		return EnterText{}.CommandType(), true
	case MissingPersona:
		return ChoosePersona{}.CommandType(), true
	case MissingCompetingInterests:
		return DeclareCompetingInterests{}.CommandType(), true
	case MissingCodeOfConduct:
		return AgreeToCodeOfConduct{}.CommandType(), true
	case MissingVerifiedEmail:
		return ConfirmVerifiedEmailAddress{}.CommandType(), true
	}
	return "", false
}

// UnpublishedCommentsByAuthor finds every comment an author has in flight
// for a PREreview: started, not yet requested for publication. Each
// resource's stream is folded independently; events from other aggregates
// sharing the global stream fold to NotStarted and drop out.
func UnpublishedCommentsByAuthor(events []eventcore.Event, authorID, prereviewID string, policy Policy) map[eventcore.ResourceID]State {
	unpublished := make(map[eventcore.ResourceID]State)
	for resourceID, stream := range eventcore.GroupByResource(events) {
		state := Fold(stream.Payloads(), policy)
		switch s := state.(type) {
		case InProgress:
			if s.AuthorID == authorID && s.PrereviewID == prereviewID {
				unpublished[resourceID] = s
			}
		case ReadyForPublishing:
			if s.AuthorID == authorID && s.PrereviewID == prereviewID {
				unpublished[resourceID] = s
			}
		}
	}
	return unpublished
}
