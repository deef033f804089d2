// Package core runs type inference and conversion for callers.
//
// This package ties the engine packages together and is independent of any
// transport. Web handlers, the CLI and tests use it unchanged.
//
// # Runs
//
// A run reads one file or in-memory table through [Service]:
//
//  1. The extension is checked before anything is read.
//  2. The caller takes a slot from the [RunLimiter]; when every slot is
//     busy it waits up to the configured time, then fails with
//     [ErrTooManyRuns].
//  3. The run gets a UUID run id that every log line carries.
//  4. The pipeline infers the schema from the first chunk and converts all
//     chunks concurrently.
//  5. The converted table is summarized into a [Result]: dtypes, column
//     descriptions, classification evidence, a head preview and metadata.
//
// Column and chunk conversion failures are never fatal; the affected data is
// kept unconverted and counted in [RunStats].
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - FILE001-FILE007: File errors (size, format, encoding, empty, sheet)
//   - INF001-INF003: Inference errors (overrides, type names, profiles)
//   - RUN001-RUN003: Run errors (cancelled, timed out, busy)
//   - RATE001: Rate limiting
package core
