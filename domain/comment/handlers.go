package comment

import "github.com/PREreview/eventcore"

// NewHandler builds an executor for one comment command type, folding with
// the given policy.
func NewHandler[C eventcore.Command](store *eventcore.EventStore, policy Policy, decide func(State, C) ([]any, error), opts ...eventcore.ExecutorOption) *eventcore.Executor[State, C] {
	return eventcore.NewExecutor(store, eventcore.Decider[State, C]{
		Fold: func(events []any) State {
			return Fold(events, policy)
		},
		Decide: decide,
	}, opts...)
}

// RegisterHandlers registers the comment event types with the store and an
// executor for every comment command on the bus.
func RegisterHandlers(bus *eventcore.CommandBus, store *eventcore.EventStore, policy Policy, opts ...eventcore.ExecutorOption) error {
	if err := store.RegisterEvents(Events()...); err != nil {
		return err
	}

	bus.Register(NewHandler(store, policy, DecideStartComment, opts...))
	bus.Register(NewHandler(store, policy, DecideEnterText, opts...))
	bus.Register(NewHandler(store, policy, DecideChoosePersona, opts...))
	bus.Register(NewHandler(store, policy, DecideDeclareCompetingInterests, opts...))
	bus.Register(NewHandler(store, policy, DecideAgreeToCodeOfConduct, opts...))
	bus.Register(NewHandler(store, policy, DecideConfirmVerifiedEmailAddress, opts...))
	bus.Register(NewHandler(store, policy, DecideRequestPublication, opts...))
	bus.Register(NewHandler(store, policy, DecideMarkDoiAsAssigned, opts...))
	bus.Register(NewHandler(store, policy, DecideMarkAsPublished, opts...))

	return nil
}
