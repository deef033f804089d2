package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"unicode/utf8"

	"github.com/gosuri/uiprogress"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/vincentarsontaneli/data-processor-app/internal/config"
	"github.com/vincentarsontaneli/data-processor-app/internal/core"
	"github.com/vincentarsontaneli/data-processor-app/internal/logging"
	"github.com/vincentarsontaneli/data-processor-app/internal/pipeline"
)

var inferCmd = &cobra.Command{
	Use:   "infer FILE",
	Short: "Infer column types of a file and print the result as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfer,
}

func init() {
	f := inferCmd.Flags()
	f.Int("chunk-size", 100000, "rows per chunk")
	f.Int("workers", 0, "chunks coerced in parallel (0 = number of CPUs)")
	f.Duration("timeout", 0, "abort the run after this long (0 = no limit)")
	f.String("profile", "default", "inference profile (default, strict, lenient)")
	f.String("profile-file", "", "YAML file overlaying the profile thresholds")
	f.Int("sample-size", 0, "values sampled per column (0 = profile value)")
	f.Float64("numeric-min-ratio", 0, "share of sampled values that must parse as numbers (0 = profile value)")
	f.Int("head-rows", core.DefaultHeadRows, "converted rows included in the output")
	f.StringSlice("override", nil, "force a column type, as column=type (repeatable)")
	f.String("sheet", "", "worksheet to read from spreadsheet files")
	f.String("delimiter", "", `CSV field delimiter ("tab" for tab-separated)`)
	f.String("encoding", "", "input text encoding (default utf-8)")
	f.StringSlice("na", nil, "tokens read as missing (replaces the defaults)")
	f.Bool("no-progress", false, "do not draw a progress bar")

	bindFlags(f, map[string]string{
		"process.chunk_size":          "chunk-size",
		"process.workers":             "workers",
		"process.timeout":             "timeout",
		"process.head_rows":           "head-rows",
		"inference.profile":           "profile",
		"inference.profile_file":      "profile-file",
		"inference.sample_size":       "sample-size",
		"inference.numeric_min_ratio": "numeric-min-ratio",
		"read.sheet":                  "sheet",
		"read.delimiter":              "delimiter",
		"read.encoding":               "encoding",
		"read.na":                     "na",
		"overrides":                   "override",
	})
}

// bindFlags binds each viper key to the named flag of fs.
func bindFlags(fs *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := viper.BindPFlag(key, fs.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}
}

func runInfer(cmd *cobra.Command, args []string) error {
	logger := logging.New(os.Stderr, viper.GetString("logging.level"), viper.GetString("logging.format"))
	slog.SetDefault(logger)

	th, err := core.ResolveThresholds(config.InferenceConfig{
		Profile:         viper.GetString("inference.profile"),
		ProfileFile:     viper.GetString("inference.profile_file"),
		SampleSize:      viper.GetInt("inference.sample_size"),
		NumericMinRatio: viper.GetFloat64("inference.numeric_min_ratio"),
	})
	if err != nil {
		return err
	}

	overrides, err := parseOverrides(viper.GetStringSlice("overrides"))
	if err != nil {
		return err
	}
	delim, err := parseDelimiter(viper.GetString("read.delimiter"))
	if err != nil {
		return err
	}

	svc := core.NewService(core.Config{
		MaxConcurrent: 1,
		ChunkSize:     viper.GetInt("process.chunk_size"),
		Workers:       viper.GetInt("process.workers"),
		Timeout:       viper.GetDuration("process.timeout"),
		HeadRows:      viper.GetInt("process.head_rows"),
		Thresholds:    th,
	})

	req := core.Request{
		Overrides: overrides,
		Sheet:     viper.GetString("read.sheet"),
		Delimiter: delim,
		Encoding:  viper.GetString("read.encoding"),
	}
	// An unset --na reads as an empty slice; the source defaults apply then.
	if na := viper.GetStringSlice("read.na"); len(na) > 0 {
		req.NATokens = na
	}

	noProgress, _ := cmd.Flags().GetBool("no-progress")
	if !noProgress {
		progress := uiprogress.New()
		progress.SetOut(os.Stderr)
		progress.Start()
		defer progress.Stop()
		req.Observer = progressObserver(progress.AddBar(100).AppendCompleted().PrependElapsed())
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := svc.ProcessFile(ctx, args[0], req)
	if err != nil {
		logger.Error("inference failed", "file", args[0], "error", err)
		return errors.New(core.FormatUserError(err))
	}
	logger.Info("inference complete",
		"run_id", res.RunID,
		"rows", res.Metadata.TotalRows,
		"chunks", res.Stats.Chunks,
		"duration_ms", res.DurationMS,
	)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// progressObserver moves bar with the source read progress.
func progressObserver(bar *uiprogress.Bar) pipeline.Observer {
	return func(e pipeline.Event) {
		switch e.Kind {
		case pipeline.EventChunkRead:
			if e.Progress >= 0 {
				bar.Set(e.Progress)
			}
		case pipeline.EventRunComplete:
			bar.Set(100)
		}
	}
}

// parseOverrides turns column=type pairs into an override map. Type names
// are validated by the service.
func parseOverrides(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		col, typ, ok := strings.Cut(pair, "=")
		col, typ = strings.TrimSpace(col), strings.TrimSpace(typ)
		if !ok || col == "" || typ == "" {
			return nil, fmt.Errorf("invalid override %q: want column=type", pair)
		}
		out[col] = typ
	}
	return out, nil
}

func parseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case "tab", `\t`:
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("invalid delimiter %q: want a single character", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}
