package core

import (
	"fmt"

	"github.com/vincentarsontaneli/data-processor-app/internal/config"
	"github.com/vincentarsontaneli/data-processor-app/internal/inference"
)

// ConfigFromSettings builds the Service configuration from the application
// config, loading the inference profile and applying its overrides.
func ConfigFromSettings(cfg *config.Config) (Config, error) {
	th, err := ResolveThresholds(cfg.Inference)
	if err != nil {
		return Config{}, err
	}
	return Config{
		MaxConcurrent: cfg.Process.MaxConcurrent,
		MaxWaitTime:   cfg.Process.MaxWaitTime,
		MaxFileSize:   cfg.Process.MaxFileSize,
		ChunkSize:     cfg.Process.ChunkSize,
		Workers:       cfg.Process.Workers,
		Timeout:       cfg.Process.Timeout,
		HeadRows:      cfg.Process.HeadRows,
		Thresholds:    th,
	}, nil
}

// ResolveThresholds loads the named profile, overlays the profile file and
// applies the positive overrides in ic.
func ResolveThresholds(ic config.InferenceConfig) (inference.Thresholds, error) {
	th, err := inference.LoadProfile(ic.Profile, ic.ProfileFile)
	if err != nil {
		return inference.Thresholds{}, err
	}
	if ic.SampleSize > 0 {
		th.SampleSize = ic.SampleSize
	}
	if ic.NumericMinRatio > 0 {
		th.NumericMinRatio = ic.NumericMinRatio
	}
	if err := th.Validate(); err != nil {
		return inference.Thresholds{}, fmt.Errorf("inference profile: %w", err)
	}
	return th, nil
}
