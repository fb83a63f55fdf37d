package feedback

// State is the closed set of lifecycle states feedback can be in.
type State interface {
	isFeedbackState()
}

type NotStarted struct{}

// InProgress is started feedback still missing at least one required field.
type InProgress struct {
	PrereviewID         string
	AuthorID            string
	Text                *string
	Persona             *Persona
	CodeOfConductAgreed bool

	// Missing lists the prerequisites still needed before publication can
	// be requested. Recomputed after every event.
	Missing []string
}

type ReadyForPublishing struct {
	PrereviewID string
	AuthorID    string
	Text        string
	Persona     Persona
}

type BeingPublished struct {
	PrereviewID string
	AuthorID    string
	Text        string
	Persona     Persona
	ID          int
	Doi         string
}

// Published is terminal.
type Published struct {
	PrereviewID string
	AuthorID    string
	ID          int
	Doi         string
}

func (NotStarted) isFeedbackState()         {}
func (InProgress) isFeedbackState()         {}
func (ReadyForPublishing) isFeedbackState() {}
func (BeingPublished) isFeedbackState()     {}
func (Published) isFeedbackState()          {}

const (
	MissingText          = "feedback text"
	MissingPersona       = "persona"
	MissingCodeOfConduct = "code of conduct"
)

// Fold reduces an ordered event history into the feedback's current state.
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
		if e, ok := event.(FeedbackWasStarted); ok {
			return deriveReadiness(InProgress{
				PrereviewID: e.PrereviewID,
				AuthorID:    e.AuthorID,
			})
		}
		return s

	case InProgress:
		return evolveDraft(s, event)

	case ReadyForPublishing:
		if _, ok := event.(PublicationWasRequested); ok {
			return BeingPublished{
				PrereviewID: s.PrereviewID,
				AuthorID:    s.AuthorID,
				Text:        s.Text,
				Persona:     s.Persona,
			}
		}
		return evolveDraft(draftOf(s), event)

	case BeingPublished:
		switch e := event.(type) {
		case DoiWasAssigned:
			s.ID = e.ID
			s.Doi = e.Doi
			return s
		case FeedbackWasPublished:
			if s.ID == 0 || s.Doi == "" {
				return s
			}
			return Published{
				PrereviewID: s.PrereviewID,
				AuthorID:    s.AuthorID,
				ID:          s.ID,
				Doi:         s.Doi,
			}
		default:
			return s
		}

	case Published:
		return s
	}

	return state
}

func evolveDraft(s InProgress, event any) State {
	switch e := event.(type) {
	case FeedbackWasEntered:
		text := e.Text
		s.Text = &text
	case PersonaWasChosen:
		persona := e.Persona
		s.Persona = &persona
	case CodeOfConductWasAgreed:
		s.CodeOfConductAgreed = true
	}
	return deriveReadiness(s)
}

func deriveReadiness(s InProgress) State {
	s.Missing = nil
	if s.Text == nil {
		s.Missing = append(s.Missing, MissingText)
	}
	if s.Persona == nil {
		s.Missing = append(s.Missing, MissingPersona)
	}
	if !s.CodeOfConductAgreed {
		s.Missing = append(s.Missing, MissingCodeOfConduct)
	}
	if len(s.Missing) > 0 {
		return s
	}
	return ReadyForPublishing{
		PrereviewID: s.PrereviewID,
		AuthorID:    s.AuthorID,
		Text:        *s.Text,
		Persona:     *s.Persona,
	}
}

func draftOf(s ReadyForPublishing) InProgress {
	text := s.Text
	persona := s.Persona
	return InProgress{
		PrereviewID:         s.PrereviewID,
		AuthorID:            s.AuthorID,
		Text:                &text,
		Persona:             &persona,
		CodeOfConductAgreed: true,
	}
}

func author(state State) (string, bool) {
	switch s := state.(type) {
	case InProgress:
		return s.AuthorID, true
	case ReadyForPublishing:
		return s.AuthorID, true
	case BeingPublished:
		return s.AuthorID, true
	case Published:
		return s.AuthorID, true
	default:
		return "", false
	}
}
