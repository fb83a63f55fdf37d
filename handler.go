package eventcore

import (
	"context"
	"errors"
	"fmt"
)

// DefaultMaxAttempts is how many times an Executor runs the full
// read-fold-decide-commit cycle before giving up on version conflicts.
const DefaultMaxAttempts = 3

// Decider bundles the two pure functions that define an aggregate's
// behavior for a command type.
//
// Fold reduces an ordered event history into the aggregate's current state.
// It must be total: events that do not apply to the current state are
// ignored, never an error.
//
// Decide validates the command against the folded state and returns the
// events to commit. Returning no events and no error means the command is a
// no-op: the resource is already in the requested state. Errors returned by
// Decide are domain rejections and are never retried.
type Decider[S any, C Command] struct {
	Fold   func(events []any) S
	Decide func(state S, cmd C) ([]any, error)
}

// Reaction is invoked synchronously after a successful commit with the
// events that were written. Reaction errors are logged, not returned: the
// commit has already happened.
type Reaction func(ctx context.Context, events []Event) error

// Executor handles commands for one aggregate type by running the
// read-fold-decide-commit cycle against an EventStore.
//
// Concurrency is optimistic: events are committed at the version observed
// during the read, and when a concurrent writer got there first the whole
// cycle is retried against the fresh stream, up to a bounded number of
// attempts. Exhausting the attempts is a storage-level failure
// (RetriesExhaustedError), not a domain rejection.
type Executor[S any, C Command] struct {
	store       *EventStore
	decider     Decider[S, C]
	maxAttempts int
	reactions   []Reaction
	logger      Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*executorConfig)

type executorConfig struct {
	maxAttempts int
	reactions   []Reaction
	logger      Logger
}

// WithMaxAttempts sets how many times the cycle is run before giving up on
// version conflicts. Values below 1 are ignored.
func WithMaxAttempts(n int) ExecutorOption {
	return func(c *executorConfig) {
		if n >= 1 {
			c.maxAttempts = n
		}
	}
}

// WithReaction registers a reaction to run after each successful commit.
func WithReaction(r Reaction) ExecutorOption {
	return func(c *executorConfig) {
		c.reactions = append(c.reactions, r)
	}
}

// WithExecutorLogger sets the executor's logger. By default the executor
// logs through its store's logger.
func WithExecutorLogger(l Logger) ExecutorOption {
	return func(c *executorConfig) {
		c.logger = l
	}
}

// NewExecutor creates an Executor for the given store and decider.
func NewExecutor[S any, C Command](store *EventStore, decider Decider[S, C], opts ...ExecutorOption) *Executor[S, C] {
	config := &executorConfig{
		maxAttempts: DefaultMaxAttempts,
		logger:      store.Logger(),
	}
	for _, opt := range opts {
		opt(config)
	}

	return &Executor[S, C]{
		store:       store,
		decider:     decider,
		maxAttempts: config.maxAttempts,
		reactions:   config.reactions,
		logger:      config.logger,
	}
}

// CommandType returns the command type this executor processes.
func (x *Executor[S, C]) CommandType() string {
	var zero C
	return zero.CommandType()
}

// Handle implements CommandHandler for dispatch through a CommandBus.
func (x *Executor[S, C]) Handle(ctx context.Context, cmd Command) (CommandResult, error) {
	typed, ok := cmd.(C)
	if !ok {
		return CommandResult{}, fmt.Errorf("eventcore: expected command type %T, got %T", *new(C), cmd)
	}
	return x.Execute(ctx, typed)
}

// Execute runs the command through the read-fold-decide-commit cycle.
//
// Domain errors from Decide are returned unchanged. ErrResourceHasChanged
// from the commit triggers a retry against the re-read stream; other
// storage errors abort immediately.
func (x *Executor[S, C]) Execute(ctx context.Context, cmd C) (CommandResult, error) {
	resourceID := cmd.ResourceID()
	if err := resourceID.Validate(); err != nil {
		return CommandResult{}, err
	}
	if err := cmd.Validate(); err != nil {
		return CommandResult{}, err
	}

	var lastConflict error
	for attempt := 1; attempt <= x.maxAttempts; attempt++ {
		stream, err := x.store.GetEvents(ctx, resourceID)
		if err != nil {
			return CommandResult{}, err
		}

		state := x.decider.Fold(stream.Payloads())

		newEvents, err := x.decider.Decide(state, cmd)
		if err != nil {
			return CommandResult{}, err
		}

		if len(newEvents) == 0 {
			return CommandResult{
				ResourceID: resourceID,
				Version:    stream.LatestVersion,
			}, nil
		}

		committed, err := x.store.CommitEvents(ctx, resourceID, stream.LatestVersion, newEvents)
		if errors.Is(err, ErrResourceHasChanged) {
			lastConflict = err
			x.logger.Debug("version conflict, retrying",
				"resource_id", resourceID.String(),
				"command", cmd.CommandType(),
				"attempt", attempt)
			continue
		}
		if err != nil {
			return CommandResult{}, err
		}

		x.notify(ctx, committed)

		return CommandResult{
			ResourceID: resourceID,
			Version:    committed[len(committed)-1].Version,
			Committed:  len(committed),
		}, nil
	}

	x.logger.Warn("retries exhausted",
		"resource_id", resourceID.String(),
		"command", cmd.CommandType(),
		"attempts", x.maxAttempts)

	return CommandResult{}, &RetriesExhaustedError{
		ResourceID: resourceID,
		Attempts:   x.maxAttempts,
		Cause:      lastConflict,
	}
}

func (x *Executor[S, C]) notify(ctx context.Context, events []Event) {
	for _, reaction := range x.reactions {
		if err := reaction(ctx, events); err != nil {
			x.logger.Error("reaction failed",
				"resource_id", events[0].ResourceID.String(),
				"error", err)
		}
	}
}
