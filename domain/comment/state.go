package comment

// Policy carries deployment-time rules that gate the comment lifecycle.
// It is passed into Fold at call time, not stored in the event stream, so
// it must stay constant for the lifetime of a deployment.
type Policy struct {
	// RequireVerifiedEmail makes a confirmed email address a prerequisite
	// for publishing.
	RequireVerifiedEmail bool
}

// State is the closed set of lifecycle states a comment can be in.
type State interface {
	isCommentState()
}

// NotStarted is the initial state: the resource has no history yet.
type NotStarted struct{}

// InProgress is a started comment that is still missing at least one
// required field. Optional fields are nil until their event arrives.
type InProgress struct {
	PrereviewID          string
	AuthorID             string
	Text                 *string
	Persona              *Persona
	CompetingInterests   *string
	CodeOfConductAgreed  bool
	EmailAddressVerified bool

	// Missing lists the prerequisites still needed before publication can
	// be requested. Recomputed after every event.
	Missing []string
}

// ReadyForPublishing is a comment with every required field present.
type ReadyForPublishing struct {
	PrereviewID          string
	AuthorID             string
	Text                 string
	Persona              Persona
	CompetingInterests   string
	EmailAddressVerified bool
}

// BeingPublished is a comment whose publication has been requested. ID and
// Doi are zero until DoiWasAssigned arrives.
type BeingPublished struct {
	PrereviewID        string
	AuthorID           string
	Text               string
	Persona            Persona
	CompetingInterests string
	ID                 int
	Doi                string
}

// Published is terminal: every further event folds to the same state.
type Published struct {
	PrereviewID string
	AuthorID    string
	ID          int
	Doi         string
}

func (NotStarted) isCommentState()         {}
func (InProgress) isCommentState()         {}
func (ReadyForPublishing) isCommentState() {}
func (BeingPublished) isCommentState()     {}
func (Published) isCommentState()          {}

// Prerequisite names as reported in InProgress.Missing and IncompleteError.
const (
	MissingText               = "comment text"
	MissingPersona            = "persona"
	MissingCompetingInterests = "competing interests"
	MissingCodeOfConduct      = "code of conduct"
	MissingVerifiedEmail      = "verified email address"
)

// Fold reduces an ordered event history into the comment's current state.
// It is total: events that do not apply to the current state leave it
// unchanged.
func Fold(events []any, policy Policy) State {
	state := State(NotStarted{})
	for _, event := range events {
		state = evolve(state, event, policy)
	}
	return state
}

func evolve(state State, event any, policy Policy) State {
	switch s := state.(type) {
	case NotStarted:
		if e, ok := event.(CommentWasStarted); ok {
			return deriveReadiness(InProgress{
				PrereviewID: e.PrereviewID,
				AuthorID:    e.AuthorID,
			}, policy)
		}
		return s

	case InProgress:
		return evolveDraft(s, event, policy)

	case ReadyForPublishing:
		if _, ok := event.(PublicationWasRequested); ok {
			return BeingPublished{
				PrereviewID:        s.PrereviewID,
				AuthorID:           s.AuthorID,
				Text:               s.Text,
				Persona:            s.Persona,
				CompetingInterests: s.CompetingInterests,
			}
		}
		// Field events still apply before publication is requested.
		return evolveDraft(draftOf(s), event, policy)

	case BeingPublished:
		switch e := event.(type) {
		case DoiWasAssigned:
			s.ID = e.ID
			s.Doi = e.Doi
			return s
		case CommentWasPublished:
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

// evolveDraft applies a field event to a draft and re-derives readiness,
// since any single update may be the one that completes the set.
func evolveDraft(s InProgress, event any, policy Policy) State {
	switch e := event.(type) {
	case CommentWasEntered:
		text := e.Text
		s.Text = &text
	case PersonaWasChosen:
		persona := e.Persona
		s.Persona = &persona
	case CompetingInterestsWereDeclared:
		statement := e.Statement
		s.CompetingInterests = &statement
	case CodeOfConductWasAgreed:
		s.CodeOfConductAgreed = true
	case VerifiedEmailAddressWasConfirmed:
		s.EmailAddressVerified = true
	}
	return deriveReadiness(s, policy)
}

func deriveReadiness(s InProgress, policy Policy) State {
	s.Missing = missingFields(s, policy)
	if len(s.Missing) > 0 {
		return s
	}
	return ReadyForPublishing{
		PrereviewID:          s.PrereviewID,
		AuthorID:             s.AuthorID,
		Text:                 *s.Text,
		Persona:              *s.Persona,
		CompetingInterests:   *s.CompetingInterests,
		EmailAddressVerified: s.EmailAddressVerified,
	}
}

func missingFields(s InProgress, policy Policy) []string {
	var missing []string
	if s.Text == nil {
		missing = append(missing, MissingText)
	}
	if s.Persona == nil {
		missing = append(missing, MissingPersona)
	}
	if s.CompetingInterests == nil {
		missing = append(missing, MissingCompetingInterests)
	}
	if !s.CodeOfConductAgreed {
		missing = append(missing, MissingCodeOfConduct)
	}
	if policy.RequireVerifiedEmail && !s.EmailAddressVerified {
		missing = append(missing, MissingVerifiedEmail)
	}
	return missing
}

func draftOf(s ReadyForPublishing) InProgress {
	text := s.Text
	persona := s.Persona
	competingInterests := s.CompetingInterests
	return InProgress{
		PrereviewID:          s.PrereviewID,
		AuthorID:             s.AuthorID,
		Text:                 &text,
		Persona:              &persona,
		CompetingInterests:   &competingInterests,
		CodeOfConductAgreed:  true,
		EmailAddressVerified: s.EmailAddressVerified,
	}
}

// author returns the starting author for any started state.
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
