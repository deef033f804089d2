package web

// errors.go provides unified error response handling for the web layer.
//
// Errors are logged server-side with the technical detail and the request
// id, then returned to the client as a user-friendly message with an action
// and a support code: JSON for /api routes and JSON clients, an HTML page
// otherwise.

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/vincentarsontaneli/data-processor-app/internal/core"
	"github.com/vincentarsontaneli/data-processor-app/internal/logging"
	"github.com/vincentarsontaneli/data-processor-app/internal/web/views"
)

// errNoFile is returned when a multipart request carries no "file" part.
var errNoFile = errors.New("no file provided")

var errRateLimited = core.MapError(errors.New("rate limit exceeded"))

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor picks the HTTP status of a failed run. Every fatal run error is
// a bad request except capacity and size limits.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, core.ErrTooManyRuns):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrFileTooLarge), errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusBadRequest
	}
}

// respondError logs err and writes the user-facing message in the format
// the client expects.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		err = core.ErrFileTooLarge
	}
	userMsg := core.MapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	if wantsJSON(r) {
		respondErrorJSON(w, userMsg, statusCode)
		return
	}
	respondErrorHTML(r.Context(), w, userMsg, statusCode)
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	}); err != nil {
		slog.Error("json encode error", "error", err)
	}
}

// respondErrorHTML renders the error page.
func respondErrorHTML(ctx context.Context, w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := views.ErrorPage(msg.Message, msg.Action, msg.Code).Render(ctx, w); err != nil {
		slog.Error("render error page", "error", err)
	}
}

// wantsJSON checks if the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
