package shell

import (
	"context"
)

// Command represents the contract for all circulation commands.
// The CommandType method enables polymorphic handling and observability instrumentation.
type Command interface {
	CommandType() string
}

// Correlated is implemented by commands that carry an ID for correlating logs and traces.
type Correlated interface {
	CorrelationID() string
}

// CorrelationIDOf returns the correlation ID of command, or "" if it has none.
func CorrelationIDOf(command Command) string {
	if correlated, ok := command.(Correlated); ok {
		return correlated.CorrelationID()
	}

	return ""
}

// CoreCommandHandler defines the contract for components that process commands with pure business logic.
// Handlers orchestrate the complete workflow: Query -> Decide -> Write, with retry on conflicts.
// They return the written state R, the execution metadata and an error.
// This interface is designed to be wrapped with observability decorators.
type CoreCommandHandler[C Command, R any] interface {
	Handle(ctx context.Context, command C) (R, HandlerResult, error)
}
