package core

import (
	"context"

	"github.com/vincentarsontaneli/data-processor-app/internal/logging"
)

type contextKey string

const (
	ctxKeyRunID    contextKey = "run_id"
	ctxKeyClientIP contextKey = "client_ip"
)

// ContextWithRunID tags ctx with a run id. Loggers built from the returned
// context include it as run_id.
func ContextWithRunID(ctx context.Context, id string) context.Context {
	ctx = context.WithValue(ctx, ctxKeyRunID, id)
	return logging.ContextWithAttrs(ctx, "run_id", id)
}

// RunIDFromContext extracts the run id from context.
func RunIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyRunID).(string); ok {
		return v
	}
	return ""
}

// ContextWithClientIP records the caller's address for run logging.
func ContextWithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKeyClientIP, ip)
}

// ClientIPFromContext extracts the caller's address from context.
func ClientIPFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyClientIP).(string); ok {
		return v
	}
	return ""
}
