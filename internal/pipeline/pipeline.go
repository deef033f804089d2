// Package pipeline runs type inference and conversion over a chunked
// source.
//
// The schema is inferred once from the first chunk. Chunks are then
// converted concurrently by a bounded pool of workers, each owning its
// chunk exclusively, and reassembled in read order.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vincentarsontaneli/data-processor-app/internal/coerce"
	"github.com/vincentarsontaneli/data-processor-app/internal/dataset"
	"github.com/vincentarsontaneli/data-processor-app/internal/inference"
	"github.com/vincentarsontaneli/data-processor-app/internal/source"
)

// DefaultChunkSize is the number of rows per chunk.
const DefaultChunkSize = 100_000

// Options configures a Pipeline. Zero values select defaults.
type Options struct {
	ChunkSize int
	// Workers bounds concurrent chunk conversion. Defaults to GOMAXPROCS.
	Workers int
	// Timeout abandons the run when exceeded. Zero means no timeout.
	Timeout    time.Duration
	Thresholds inference.Thresholds
	// Overrides pins column types; each must pass inference.CanConvert.
	Overrides map[string]inference.SemanticType
	Observer  Observer
}

// Result is the outcome of a run.
type Result struct {
	Table  *dataset.Table
	Schema inference.Schema
	Chunks int
	// Fallbacks counts columns, per chunk, that were kept unconverted.
	Fallbacks int
	// FailedChunks counts chunks that were kept unconverted entirely.
	FailedChunks int
	// Mismatches counts integer cells set to missing, across all chunks.
	Mismatches int
}

// Pipeline infers and converts tables.
type Pipeline struct {
	opts       Options
	classifier *inference.Classifier
}

// coerceTable converts one chunk.
var coerceTable = coerce.Table

// New creates a pipeline.
func New(opts Options) *Pipeline {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Thresholds == (inference.Thresholds{}) {
		opts.Thresholds = inference.DefaultThresholds()
	}
	if opts.Observer == nil {
		opts.Observer = func(Event) {}
	}
	return &Pipeline{opts: opts, classifier: inference.NewClassifier(opts.Thresholds)}
}

// chunkSlot holds one chunk and, after its worker finishes, the converted
// table. Slots are allocated in read order before the worker starts.
type chunkSlot struct {
	index      int
	input      *dataset.Table
	output     *dataset.Table
	failed     bool
	fallbacks  int
	mismatches int
}

// Run reads src to the end, infers the schema from the first chunk and
// converts every chunk. Read errors, invalid overrides, cancellation and
// timeout are fatal; conversion failures are not.
func (p *Pipeline) Run(ctx context.Context, src source.Source) (*Result, error) {
	start := time.Now()
	if p.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()
	}

	lead, err := src.ReadChunk(p.opts.ChunkSize)
	if errors.Is(err, io.EOF) {
		return p.empty(src.Header(), start)
	}
	if err != nil {
		return nil, fmt.Errorf("read chunk 0: %w", err)
	}
	p.emit(Event{Kind: EventChunkRead, Chunk: 0, Rows: lead.Len(), Progress: progress(src)})

	schema, err := p.classifier.Classify(lead).WithOverrides(p.opts.Overrides)
	if err != nil {
		return nil, err
	}
	for _, f := range schema.Fields {
		p.emit(Event{Kind: EventSchemaInferred, Column: f.Name, Type: f.Type})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)

	var slots []*chunkSlot
	var readErr error
	next := lead
	for next != nil {
		slot := &chunkSlot{index: len(slots), input: next}
		slots = append(slots, slot)
		g.Go(func() error {
			return p.convert(gctx, slot, schema)
		})

		if gctx.Err() != nil {
			break
		}
		next, err = src.ReadChunk(p.opts.ChunkSize)
		switch {
		case errors.Is(err, io.EOF):
			next = nil
		case err != nil:
			readErr = fmt.Errorf("read chunk %d: %w", len(slots), err)
			next = nil
		default:
			p.emit(Event{Kind: EventChunkRead, Chunk: len(slots), Rows: next.Len(), Progress: progress(src)})
		}
	}

	waitErr := g.Wait()
	if readErr != nil {
		return nil, readErr
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run abandoned: %w", err)
	}
	if waitErr != nil {
		return nil, waitErr
	}

	res := &Result{Schema: schema, Chunks: len(slots)}
	parts := make([]*dataset.Table, len(slots))
	for i, s := range slots {
		parts[i] = s.output
		res.Fallbacks += s.fallbacks
		res.Mismatches += s.mismatches
		if s.failed {
			res.FailedChunks++
		}
	}
	res.Table, err = dataset.Concat(parts)
	if err != nil {
		return nil, fmt.Errorf("merge chunks: %w", err)
	}

	p.emit(Event{Kind: EventRunComplete, Rows: res.Table.Len(), Count: res.Chunks, Elapsed: time.Since(start)})
	return res, nil
}

// convert coerces one chunk into its slot. A panic keeps the chunk in its
// raw form.
func (p *Pipeline) convert(ctx context.Context, slot *chunkSlot, schema inference.Schema) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			slot.output = rawChunk(slot.input)
			slot.failed = true
			slot.fallbacks = len(slot.input.Columns)
			slot.mismatches = 0
			p.emit(Event{
				Kind:  EventChunkFailed,
				Chunk: slot.index,
				Rows:  slot.input.Len(),
				Err:   fmt.Errorf("chunk %d: %v", slot.index, r),
			})
			err = nil
		}
	}()

	out, results := coerceTable(slot.input, schema)
	for _, r := range results {
		if !r.Converted {
			slot.fallbacks++
			p.emit(Event{Kind: EventColumnFallback, Chunk: slot.index, Column: r.Name, Type: r.Type, Err: r.Err})
		}
		if r.Mismatches > 0 {
			slot.mismatches += r.Mismatches
			p.emit(Event{Kind: EventColumnMismatch, Chunk: slot.index, Column: r.Name, Type: r.Type, Count: r.Mismatches})
		}
	}
	slot.output = out

	p.emit(Event{Kind: EventChunkCoerced, Chunk: slot.index, Rows: out.Len(), Elapsed: time.Since(start)})
	return nil
}

// empty handles a source with a header and no rows.
func (p *Pipeline) empty(header []string, start time.Time) (*Result, error) {
	schema, err := inference.UnknownSchema(header).WithOverrides(p.opts.Overrides)
	if err != nil {
		return nil, err
	}
	for _, f := range schema.Fields {
		p.emit(Event{Kind: EventSchemaInferred, Column: f.Name, Type: f.Type})
	}

	table, _ := coerce.Table(dataset.New(header), schema)
	p.emit(Event{Kind: EventRunComplete, Elapsed: time.Since(start)})
	return &Result{Table: table, Schema: schema}, nil
}

func (p *Pipeline) emit(e Event) {
	p.opts.Observer(e)
}

// rawChunk copies t with every column marked unconverted.
func rawChunk(t *dataset.Table) *dataset.Table {
	out := &dataset.Table{Columns: make([]*dataset.Column, len(t.Columns))}
	for i, c := range t.Columns {
		col := c.Clone()
		col.Dtype = dataset.DtypeObject
		col.Categories = nil
		out.Columns[i] = col
	}
	return out
}

func progress(src source.Source) int {
	if p, ok := src.(source.Progresser); ok {
		return p.Progress()
	}
	return -1
}
