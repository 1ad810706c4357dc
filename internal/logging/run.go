package logging

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// NewRunID returns a fresh random run ID.
func NewRunID() string {
	return uuid.NewString()
}

// StartRun attaches a new run ID to ctx unless it already carries one.
func StartRun(ctx context.Context) context.Context {
	if GetRunID(ctx) != "" {
		return ctx
	}
	return WithRunID(ctx, NewRunID())
}

// Stage starts timing a pipeline stage. Calling the returned function logs
// StageComplete with the elapsed time and any extra key-value pairs.
func Stage(ctx context.Context, name string) func(args ...any) {
	start := time.Now()
	return func(args ...any) {
		StageComplete(ctx, name, time.Since(start), args...)
	}
}
