package eventcore

import "context"

// Command represents an intent to change one resource. Commands carry the
// identifier of the resource they target; for commands that create a new
// resource the caller mints the identifier up front with NewResourceID.
type Command interface {
	// CommandType returns the type identifier for this command
	// (e.g. "StartComment").
	CommandType() string

	// ResourceID returns the resource this command targets.
	ResourceID() ResourceID

	// Validate checks the command's own payload, independent of any
	// resource state. Returns nil if valid.
	Validate() error
}

// CommandResult reports the outcome of a successfully handled command.
type CommandResult struct {
	// ResourceID is the resource the command acted on.
	ResourceID ResourceID

	// Version is the resource's latest version after handling. When no
	// events were committed it is the version that was observed.
	Version int64

	// Committed is the number of events the command produced. Zero means
	// the command was a no-op: the resource was already in the requested
	// state.
	Committed int
}

// CommandHandler handles one command type.
type CommandHandler interface {
	// CommandType returns the type of command this handler processes.
	CommandType() string

	// Handle processes the command and returns a result.
	Handle(ctx context.Context, cmd Command) (CommandResult, error)
}

// CommandHandlerFunc adapts a function to the CommandHandler interface.
type CommandHandlerFunc struct {
	cmdType string
	fn      func(ctx context.Context, cmd Command) (CommandResult, error)
}

// NewCommandHandlerFunc creates a CommandHandler from a function.
func NewCommandHandlerFunc(cmdType string, fn func(ctx context.Context, cmd Command) (CommandResult, error)) *CommandHandlerFunc {
	return &CommandHandlerFunc{
		cmdType: cmdType,
		fn:      fn,
	}
}

// CommandType returns the command type this handler processes.
func (h *CommandHandlerFunc) CommandType() string {
	return h.cmdType
}

// Handle processes the command.
func (h *CommandHandlerFunc) Handle(ctx context.Context, cmd Command) (CommandResult, error) {
	return h.fn(ctx, cmd)
}
