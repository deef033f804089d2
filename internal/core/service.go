package core

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/vincentarsontaneli/data-processor-app/internal/dataset"
	"github.com/vincentarsontaneli/data-processor-app/internal/inference"
	"github.com/vincentarsontaneli/data-processor-app/internal/logging"
	"github.com/vincentarsontaneli/data-processor-app/internal/pipeline"
	"github.com/vincentarsontaneli/data-processor-app/internal/source"
)

// Config holds the Service settings. Zero values select defaults.
type Config struct {
	MaxConcurrent int
	MaxWaitTime   time.Duration
	// MaxFileSize rejects uploads whose declared size is larger. Zero means
	// no limit.
	MaxFileSize int64
	ChunkSize   int
	Workers     int
	Timeout     time.Duration
	HeadRows    int
	Thresholds  inference.Thresholds
}

// Request carries the per-run options of a caller.
type Request struct {
	// Overrides maps column names to type names (see inference.ParseSemanticType).
	Overrides map[string]string
	Sheet     string
	Delimiter rune
	Encoding  string
	NATokens  []string
	// HeadRows overrides Config.HeadRows when positive.
	HeadRows int
	// Observer receives pipeline events in addition to the run logger.
	Observer pipeline.Observer
}

// Service runs inference and conversion over files and in-memory tables.
type Service struct {
	cfg     Config
	limiter *RunLimiter
}

// NewService creates a new Service instance.
func NewService(cfg Config) *Service {
	if cfg.HeadRows <= 0 {
		cfg.HeadRows = DefaultHeadRows
	}
	if cfg.Thresholds == (inference.Thresholds{}) {
		cfg.Thresholds = inference.DefaultThresholds()
	}
	return &Service{
		cfg:     cfg,
		limiter: NewRunLimiter(cfg.MaxConcurrent, cfg.MaxWaitTime),
	}
}

// ProcessFile runs the file at path. The extension is checked before the
// file is opened.
func (s *Service) ProcessFile(ctx context.Context, path string, req Request) (*Result, error) {
	if _, err := source.Format(path); err != nil {
		return nil, err
	}
	return s.process(ctx, path, func() (source.Source, error) {
		return source.Open(path, s.sourceOptions(req, 0))
	}, req)
}

// ProcessUpload runs an uploaded file read from r. name supplies the
// extension; size is the declared length in bytes, or zero if unknown.
func (s *Service) ProcessUpload(ctx context.Context, name string, r io.Reader, size int64, req Request) (*Result, error) {
	if _, err := source.Format(name); err != nil {
		return nil, err
	}
	if s.cfg.MaxFileSize > 0 && size > s.cfg.MaxFileSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrFileTooLarge, size, s.cfg.MaxFileSize)
	}
	return s.process(ctx, name, func() (source.Source, error) {
		return source.FromReader(name, r, s.sourceOptions(req, size))
	}, req)
}

// ProcessTable runs an in-memory table of raw values. t is not modified.
func (s *Service) ProcessTable(ctx context.Context, t *dataset.Table, req Request) (*Result, error) {
	return s.process(ctx, "memory", func() (source.Source, error) {
		return source.NewMemory(t), nil
	}, req)
}

// process acquires a run slot, opens the source and runs the pipeline.
func (s *Service) process(ctx context.Context, name string, open func() (source.Source, error), req Request) (*Result, error) {
	overrides, err := inference.ParseOverrides(req.Overrides)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	runID := uuid.NewString()
	ctx = ContextWithRunID(ctx, runID)
	logger := logging.WithFields(ctx, "file", name)
	if ip := ClientIPFromContext(ctx); ip != "" {
		logger = logger.With("client_ip", ip)
	}

	start := time.Now()
	logger.Info("run started", "chunk_size", s.cfg.ChunkSize, "overrides", len(overrides))

	src, err := open()
	if err != nil {
		logger.Warn("open failed", "error", err)
		return nil, err
	}
	defer src.Close()

	p := pipeline.New(pipeline.Options{
		ChunkSize:  s.cfg.ChunkSize,
		Workers:    s.cfg.Workers,
		Timeout:    s.cfg.Timeout,
		Thresholds: s.cfg.Thresholds,
		Overrides:  overrides,
		Observer:   pipeline.Observers(pipeline.SlogObserver(logger), req.Observer),
	})

	res, err := p.Run(ctx, src)
	if err != nil {
		logger.Warn("run failed", "error", err)
		return nil, err
	}

	headRows := s.cfg.HeadRows
	if req.HeadRows > 0 {
		headRows = req.HeadRows
	}
	return newResult(runID, res, headRows, time.Since(start)), nil
}

func (s *Service) sourceOptions(req Request, size int64) source.Options {
	return source.Options{
		Delimiter: req.Delimiter,
		Encoding:  req.Encoding,
		NATokens:  req.NATokens,
		Sheet:     req.Sheet,
		Size:      size,
	}
}

// Thresholds returns the thresholds runs are classified with.
func (s *Service) Thresholds() inference.Thresholds {
	return s.cfg.Thresholds
}

// Status returns the run limiter state.
func (s *Service) Status() LimiterStatus {
	return s.limiter.Status()
}

// Shutdown waits for in-flight runs to finish or ctx to end.
func (s *Service) Shutdown(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// TypeInfo describes a semantic type and the types a column of it may be
// overridden to.
type TypeInfo struct {
	Name        string   `json:"name"`
	Label       string   `json:"label"`
	Conversions []string `json:"conversions"`
}

// Types lists every semantic type in declaration order.
func Types() []TypeInfo {
	out := make([]TypeInfo, 0, len(inference.AllTypes))
	for _, t := range inference.AllTypes {
		info := TypeInfo{Name: t.String(), Label: t.Label()}
		for _, c := range inference.Conversions(t) {
			info.Conversions = append(info.Conversions, c.String())
		}
		out = append(out, info)
	}
	return out
}
