package eventcore

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"
)

// ValidationMiddleware validates commands before they reach the handler.
func ValidationMiddleware() Middleware {
	return func(next MiddlewareFunc) MiddlewareFunc {
		return func(ctx context.Context, cmd Command) (CommandResult, error) {
			if err := cmd.Validate(); err != nil {
				return CommandResult{}, err
			}
			return next(ctx, cmd)
		}
	}
}

// PanicError is returned when a handler panics during command execution.
type PanicError struct {
	CommandType string
	Value       any
	Stack       string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("eventcore: panic handling command %q: %v", e.CommandType, e.Value)
}

// RecoveryMiddleware recovers from handler panics and returns them as
// errors.
func RecoveryMiddleware() Middleware {
	return func(next MiddlewareFunc) MiddlewareFunc {
		return func(ctx context.Context, cmd Command) (result CommandResult, err error) {
			defer func() {
				if r := recover(); r != nil {
					err = &PanicError{
						CommandType: cmd.CommandType(),
						Value:       r,
						Stack:       string(debug.Stack()),
					}
					result = CommandResult{}
				}
			}()
			return next(ctx, cmd)
		}
	}
}

// LoggingMiddleware logs command execution through the given Logger.
func LoggingMiddleware(logger Logger) Middleware {
	return func(next MiddlewareFunc) MiddlewareFunc {
		return func(ctx context.Context, cmd Command) (CommandResult, error) {
			start := time.Now()

			logger.Debug("dispatching command",
				"type", cmd.CommandType(),
				"resource_id", cmd.ResourceID().String(),
			)

			result, err := next(ctx, cmd)
			duration := time.Since(start)

			if err != nil {
				if IsDomainError(err) {
					logger.Info("command rejected",
						"type", cmd.CommandType(),
						"resource_id", cmd.ResourceID().String(),
						"duration", duration,
						"error", err,
					)
				} else {
					logger.Error("command failed",
						"type", cmd.CommandType(),
						"resource_id", cmd.ResourceID().String(),
						"duration", duration,
						"error", err,
					)
				}
				return result, err
			}

			logger.Info("command completed",
				"type", cmd.CommandType(),
				"resource_id", result.ResourceID.String(),
				"duration", duration,
				"version", result.Version,
				"committed", result.Committed,
			)
			return result, nil
		}
	}
}

// TimeoutMiddleware bounds command execution time.
func TimeoutMiddleware(timeout time.Duration) Middleware {
	return func(next MiddlewareFunc) MiddlewareFunc {
		return func(ctx context.Context, cmd Command) (CommandResult, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return next(ctx, cmd)
		}
	}
}
