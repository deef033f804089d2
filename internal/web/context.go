package web

import (
	"context"
	"net/http"

	"github.com/vincentarsontaneli/data-processor-app/internal/core"
)

// WithRequestMetadata adds the client IP to the run context so run logs
// can be traced back to a caller.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	return core.ContextWithClientIP(ctx, clientIP(r))
}
