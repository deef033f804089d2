package pipeline

import (
	"log/slog"
	"sync"
	"time"

	"github.com/vincentarsontaneli/data-processor-app/internal/inference"
)

// EventKind names a pipeline event.
type EventKind string

const (
	EventChunkRead      EventKind = "chunk_read"
	EventSchemaInferred EventKind = "schema_inferred"
	EventChunkCoerced   EventKind = "chunk_coerced"
	EventColumnFallback EventKind = "column_fallback"
	EventColumnMismatch EventKind = "column_mismatch"
	EventChunkFailed    EventKind = "chunk_failed"
	EventRunComplete    EventKind = "run_complete"
)

// Event is emitted to the Observer as the run progresses. Only the fields
// relevant to Kind are set.
type Event struct {
	Kind   EventKind
	Chunk  int
	Rows   int
	Column string
	Type   inference.SemanticType
	// Count is the mismatch count for column_mismatch and the number of
	// chunks for run_complete.
	Count int
	// Progress is the source read progress in percent, when known.
	Progress int
	Err      error
	Elapsed  time.Duration
}

// Observer receives pipeline events. It may be called from several
// goroutines at once.
type Observer func(Event)

// Observers fans an event out to every non-nil observer.
func Observers(obs ...Observer) Observer {
	return func(e Event) {
		for _, o := range obs {
			if o != nil {
				o(e)
			}
		}
	}
}

// SlogObserver logs events. Failures and fallbacks are logged at warn,
// per-chunk progress at debug.
func SlogObserver(logger *slog.Logger) Observer {
	return func(e Event) {
		switch e.Kind {
		case EventChunkRead:
			logger.Debug("chunk read", "chunk", e.Chunk, "rows", e.Rows, "progress", e.Progress)
		case EventSchemaInferred:
			logger.Debug("column classified", "column", e.Column, "type", e.Type)
		case EventChunkCoerced:
			logger.Debug("chunk coerced", "chunk", e.Chunk, "rows", e.Rows, "duration", e.Elapsed)
		case EventColumnFallback:
			logger.Warn("column kept unconverted", "chunk", e.Chunk, "column", e.Column, "type", e.Type, "error", e.Err)
		case EventColumnMismatch:
			logger.Warn("non-integral values set to missing", "chunk", e.Chunk, "column", e.Column, "count", e.Count)
		case EventChunkFailed:
			logger.Warn("chunk kept unconverted", "chunk", e.Chunk, "rows", e.Rows, "error", e.Err)
		case EventRunComplete:
			logger.Info("run complete", "rows", e.Rows, "chunks", e.Count, "duration", e.Elapsed)
		}
	}
}

// Recorder collects events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Observe records e. Pass r.Observe as an Observer.
func (r *Recorder) Observe(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Count returns how many events of kind were recorded.
func (r *Recorder) Count(kind EventKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}
