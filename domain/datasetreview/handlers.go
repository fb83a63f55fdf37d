package datasetreview

import "github.com/PREreview/eventcore"

// NewHandler builds an executor for one dataset review command type.
func NewHandler[C eventcore.Command](store *eventcore.EventStore, decide func(State, C) ([]any, error), opts ...eventcore.ExecutorOption) *eventcore.Executor[State, C] {
	return eventcore.NewExecutor(store, eventcore.Decider[State, C]{
		Fold:   Fold,
		Decide: decide,
	}, opts...)
}

// RegisterHandlers registers the dataset review event types with the store
// and an executor for every dataset review command on the bus.
func RegisterHandlers(bus *eventcore.CommandBus, store *eventcore.EventStore, opts ...eventcore.ExecutorOption) error {
	if err := store.RegisterEvents(Events()...); err != nil {
		return err
	}

	bus.Register(NewHandler(store, DecideStartDatasetReview, opts...))
	bus.Register(NewHandler(store, DecideAnswerQuestion, opts...))
	bus.Register(NewHandler(store, DecideRequestPublication, opts...))
	bus.Register(NewHandler(store, DecideMarkDoiAsAssigned, opts...))
	bus.Register(NewHandler(store, DecideMarkDoiAsActivated, opts...))
	bus.Register(NewHandler(store, DecideMarkAsPublished, opts...))

	return nil
}
