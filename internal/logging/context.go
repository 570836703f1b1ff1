package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const opIDKey contextKey = "op_id"

// NewOpID returns a short identifier correlating the log lines of one
// mutation (optimistic apply, asynchronous write, failure report).
func NewOpID() string {
	return uuid.New().String()[:8]
}

// ContextWithOpID returns a context carrying the given operation id.
func ContextWithOpID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, opIDKey, id)
}

// OpIDFromContext returns the operation id, or "" if none is set.
func OpIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(opIDKey).(string); ok {
		return id
	}
	return ""
}

// Ctx returns the global logger with the context's op_id attached.
//
//	logging.Ctx(ctx).Warn().Err(err).Msg("write failed")
func Ctx(ctx context.Context) *zerolog.Logger {
	l := Logger()
	if id := OpIDFromContext(ctx); id != "" {
		l = l.With().Str("op_id", id).Logger()
	}
	return &l
}
