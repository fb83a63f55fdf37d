package eventcore

import (
	"context"
	"sync"
	"sync/atomic"
)

// MiddlewareFunc is the function shape middleware wraps: handle a command,
// return a result.
type MiddlewareFunc func(ctx context.Context, cmd Command) (CommandResult, error)

// Middleware wraps command handling with cross-cutting behavior such as
// logging, metrics or tracing.
type Middleware func(next MiddlewareFunc) MiddlewareFunc

// CommandBus routes commands to their registered handlers through a
// middleware pipeline. It is safe for concurrent use.
type CommandBus struct {
	mu         sync.RWMutex
	handlers   map[string]CommandHandler
	middleware []Middleware
	closed     atomic.Bool
}

// CommandBusOption configures a CommandBus.
type CommandBusOption func(*CommandBus)

// WithMiddleware adds middleware to the command bus. Middleware runs in the
// order it was added.
func WithMiddleware(middleware ...Middleware) CommandBusOption {
	return func(b *CommandBus) {
		b.middleware = append(b.middleware, middleware...)
	}
}

// NewCommandBus creates a CommandBus with the given options.
func NewCommandBus(opts ...CommandBusOption) *CommandBus {
	bus := &CommandBus{
		handlers: make(map[string]CommandHandler),
	}

	for _, opt := range opts {
		opt(bus)
	}

	return bus
}

// Register adds a handler, replacing any existing handler for the same
// command type.
func (b *CommandBus) Register(handler CommandHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[handler.CommandType()] = handler
}

// RegisterFunc registers a handler function for a command type.
func (b *CommandBus) RegisterFunc(cmdType string, fn func(ctx context.Context, cmd Command) (CommandResult, error)) {
	b.Register(NewCommandHandlerFunc(cmdType, fn))
}

// Use adds middleware after construction.
func (b *CommandBus) Use(middleware ...Middleware) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.middleware = append(b.middleware, middleware...)
}

// HandlerTypes returns the registered command types.
func (b *CommandBus) HandlerTypes() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	types := make([]string, 0, len(b.handlers))
	for t := range b.handlers {
		types = append(types, t)
	}
	return types
}

// Dispatch sends a command through the middleware pipeline to its handler.
func (b *CommandBus) Dispatch(ctx context.Context, cmd Command) (CommandResult, error) {
	if b.closed.Load() {
		return CommandResult{}, ErrBusClosed
	}
	if cmd == nil {
		return CommandResult{}, ErrNilCommand
	}

	b.mu.RLock()
	handler := b.handlers[cmd.CommandType()]
	middleware := make([]Middleware, len(b.middleware))
	copy(middleware, b.middleware)
	b.mu.RUnlock()

	if handler == nil {
		return CommandResult{}, &HandlerNotFoundError{CommandType: cmd.CommandType()}
	}

	chain := handler.Handle
	for i := len(middleware) - 1; i >= 0; i-- {
		chain = middleware[i](chain)
	}

	return chain(ctx, cmd)
}

// Close marks the bus closed. Subsequent dispatches fail with ErrBusClosed.
func (b *CommandBus) Close() {
	b.closed.Store(true)
}
