package datasetreview

// State is the closed set of lifecycle states a dataset review can be in.
type State interface {
	isDatasetReviewState()
}

type NotStarted struct{}

// InProgress is a started review accumulating answers. Answers holds the
// latest answer per question; unanswered questions are absent.
type InProgress struct {
	DatasetID string
	AuthorID  string
	Answers   map[Question]Answer
}

// IsBeingPublished is a review whose publication has been requested. ID and
// Doi are zero until DoiWasAssigned arrives; DoiActive flips when the DOI
// is activated.
type IsBeingPublished struct {
	DatasetID string
	AuthorID  string
	Answers   map[Question]Answer
	ID        int
	Doi       string
	DoiActive bool
}

// HasBeenPublished is terminal.
type HasBeenPublished struct {
	DatasetID string
	AuthorID  string
	ID        int
	Doi       string
}

func (NotStarted) isDatasetReviewState()       {}
func (InProgress) isDatasetReviewState()       {}
func (IsBeingPublished) isDatasetReviewState() {}
func (HasBeenPublished) isDatasetReviewState() {}

// Fold reduces an ordered event history into the review's current state.
// It is total: events that do not apply to the current state leave it
// unchanged.
func Fold(events []any) State {
	state := State(NotStarted{})
	for _, event := range events {
		state = evolve(state, event)
	}
	return state
}

func evolve(state State, event any) State {
	switch s := state.(type) {
	case NotStarted:
		if e, ok := event.(DatasetReviewWasStarted); ok {
			return InProgress{
				DatasetID: e.DatasetID,
				AuthorID:  e.AuthorID,
				Answers:   map[Question]Answer{},
			}
		}
		return s

	case InProgress:
		if question, answer, ok := answerEvent(event); ok {
			s.Answers = withAnswer(s.Answers, question, answer)
			return s
		}
		if _, ok := event.(PublicationWasRequested); ok {
			return IsBeingPublished{
				DatasetID: s.DatasetID,
				AuthorID:  s.AuthorID,
				Answers:   s.Answers,
			}
		}
		return s

	case IsBeingPublished:
		switch e := event.(type) {
		case DoiWasAssigned:
			s.ID = e.ID
			s.Doi = e.Doi
			return s
		case DoiWasActivated:
			if s.Doi != "" {
				s.DoiActive = true
			}
			return s
		case DatasetReviewWasPublished:
			if s.Doi == "" || !s.DoiActive {
				return s
			}
			return HasBeenPublished{
				DatasetID: s.DatasetID,
				AuthorID:  s.AuthorID,
				ID:        s.ID,
				Doi:       s.Doi,
			}
		default:
			return s
		}

	case HasBeenPublished:
		return s
	}

	return state
}

// withAnswer returns a fresh map so fold steps never alias earlier states.
func withAnswer(answers map[Question]Answer, question Question, answer Answer) map[Question]Answer {
	next := make(map[Question]Answer, len(answers)+1)
	for q, a := range answers {
		next[q] = a
	}
	next[question] = answer
	return next
}

// QuestionState is the closed set of states one answer slot can be in.
type QuestionState interface {
	isQuestionState()
}

type QuestionNotStarted struct{}

type NotAnswered struct{}

type HasBeenAnswered struct {
	Answer Answer
}

type QuestionIsBeingPublished struct {
	Answer *Answer
}

type QuestionHasBeenPublished struct {
	Answer *Answer
}

func (QuestionNotStarted) isQuestionState()       {}
func (NotAnswered) isQuestionState()              {}
func (HasBeenAnswered) isQuestionState()          {}
func (QuestionIsBeingPublished) isQuestionState() {}
func (QuestionHasBeenPublished) isQuestionState() {}

// FoldQuestion reduces an event history into the state of a single answer
// slot: repeat answers overwrite, and the slot freezes once publication is
// requested.
func FoldQuestion(events []any, question Question) QuestionState {
	state := QuestionState(QuestionNotStarted{})
	for _, event := range events {
		state = evolveQuestion(state, event, question)
	}
	return state
}

func evolveQuestion(state QuestionState, event any, question Question) QuestionState {
	switch s := state.(type) {
	case QuestionNotStarted:
		if _, ok := event.(DatasetReviewWasStarted); ok {
			return NotAnswered{}
		}
		return s

	case NotAnswered:
		if q, answer, ok := answerEvent(event); ok && q == question {
			return HasBeenAnswered{Answer: answer}
		}
		if _, ok := event.(PublicationWasRequested); ok {
			return QuestionIsBeingPublished{}
		}
		return s

	case HasBeenAnswered:
		if q, answer, ok := answerEvent(event); ok && q == question {
			return HasBeenAnswered{Answer: answer}
		}
		if _, ok := event.(PublicationWasRequested); ok {
			answer := s.Answer
			return QuestionIsBeingPublished{Answer: &answer}
		}
		return s

	case QuestionIsBeingPublished:
		if _, ok := event.(DatasetReviewWasPublished); ok {
			return QuestionHasBeenPublished{Answer: s.Answer}
		}
		return s

	case QuestionHasBeenPublished:
		return s
	}

	return state
}

// DoiState is the closed set of states the review's DOI can be in.
type DoiState interface {
	isDoiState()
}

type HasNotBeenAssignedADoi struct{}

type HasAnInactiveDoi struct {
	ID  int
	Doi string
}

type HasAnActiveDoi struct {
	ID  int
	Doi string
}

func (HasNotBeenAssignedADoi) isDoiState() {}
func (HasAnInactiveDoi) isDoiState()       {}
func (HasAnActiveDoi) isDoiState()         {}

// FoldDoi reduces an event history into the DOI's registration state.
func FoldDoi(events []any) DoiState {
	state := DoiState(HasNotBeenAssignedADoi{})
	for _, event := range events {
		state = evolveDoi(state, event)
	}
	return state
}

func evolveDoi(state DoiState, event any) DoiState {
	switch s := state.(type) {
	case HasNotBeenAssignedADoi:
		if e, ok := event.(DoiWasAssigned); ok {
			return HasAnInactiveDoi{ID: e.ID, Doi: e.Doi}
		}
		return s

	case HasAnInactiveDoi:
		if _, ok := event.(DoiWasActivated); ok {
			return HasAnActiveDoi{ID: s.ID, Doi: s.Doi}
		}
		return s

	case HasAnActiveDoi:
		return s
	}

	return state
}
