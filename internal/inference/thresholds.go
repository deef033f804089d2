package inference

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Thresholds are the tunable parameters of sampling and of the heuristic
// chain.
type Thresholds struct {
	// SampleSize bounds the number of values drawn per column.
	SampleSize int `yaml:"sample_size"`
	// Seed fixes the sampler's random source.
	Seed uint64 `yaml:"seed"`

	// BooleanMinRatio is the share of values that must be boolean tokens.
	BooleanMinRatio float64 `yaml:"boolean_min_ratio"`
	// NumericMinRatio is the share of values that must be numeric literals.
	NumericMinRatio float64 `yaml:"numeric_min_ratio"`

	// DateProbeCount is how many leading sample values the date test inspects.
	DateProbeCount int `yaml:"date_probe_count"`
	// DateMinLength skips probe values too short to be a plausible date.
	DateMinLength int `yaml:"date_min_length"`
	// DateMinRatio is the share of attempted probe values that must parse.
	DateMinRatio float64 `yaml:"date_min_ratio"`

	// IdentifierMinDistinctRatio is the distinct/size ratio identifiers need.
	IdentifierMinDistinctRatio float64 `yaml:"identifier_min_distinct_ratio"`

	// CategoricalMaxRatio is the exclusive upper bound on distinct/size.
	CategoricalMaxRatio float64 `yaml:"categorical_max_ratio"`
	// CategoricalMinCount is the exclusive lower bound on sample size.
	CategoricalMinCount int `yaml:"categorical_min_count"`
}

// Profile names accepted by ProfileByName.
const (
	ProfileDefault = "default"
	ProfileStrict  = "strict"
	ProfileLenient = "lenient"
)

// DefaultThresholds returns the default profile.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SampleSize:                 1000,
		Seed:                       42,
		BooleanMinRatio:            1.0,
		NumericMinRatio:            0.9,
		DateProbeCount:             10,
		DateMinLength:              6,
		DateMinRatio:               0.5,
		IdentifierMinDistinctRatio: 0.5,
		CategoricalMaxRatio:        0.1,
		CategoricalMinCount:        100,
	}
}

// StrictThresholds requires every sampled value to match for numeric and
// date detection.
func StrictThresholds() Thresholds {
	t := DefaultThresholds()
	t.NumericMinRatio = 1.0
	t.DateMinRatio = 1.0
	return t
}

// LenientThresholds tolerates noisier numeric columns and flags more
// columns as categorical.
func LenientThresholds() Thresholds {
	t := DefaultThresholds()
	t.NumericMinRatio = 0.8
	t.CategoricalMaxRatio = 0.3
	return t
}

// ProfileByName returns a named profile. An empty name selects the default.
func ProfileByName(name string) (Thresholds, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ProfileDefault:
		return DefaultThresholds(), nil
	case ProfileStrict:
		return StrictThresholds(), nil
	case ProfileLenient:
		return LenientThresholds(), nil
	default:
		return Thresholds{}, fmt.Errorf("unknown inference profile %q (want default, strict or lenient)", name)
	}
}

// LoadProfile starts from the named profile and overlays the YAML file at
// path, if any. Keys missing from the file keep the profile's value.
//
//	numeric_min_ratio: 1.0
//	categorical_max_ratio: 0.25
func LoadProfile(name, path string) (Thresholds, error) {
	t, err := ProfileByName(name)
	if err != nil {
		return Thresholds{}, err
	}
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Thresholds{}, fmt.Errorf("read profile %s: %w", path, err)
	}
	// Unmarshalling into the populated struct only touches keys present in the file.
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Thresholds{}, fmt.Errorf("parse profile %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return Thresholds{}, fmt.Errorf("profile %s: %w", path, err)
	}
	return t, nil
}

// Validate checks that every threshold is in range.
// Returns an error describing all validation failures.
func (t Thresholds) Validate() error {
	var errs []error

	if t.SampleSize <= 0 {
		errs = append(errs, errors.New("sample_size must be positive"))
	}
	ratios := []struct {
		name string
		v    float64
	}{
		{"boolean_min_ratio", t.BooleanMinRatio},
		{"numeric_min_ratio", t.NumericMinRatio},
		{"date_min_ratio", t.DateMinRatio},
		{"identifier_min_distinct_ratio", t.IdentifierMinDistinctRatio},
		{"categorical_max_ratio", t.CategoricalMaxRatio},
	}
	for _, r := range ratios {
		if r.v < 0 || r.v > 1 {
			errs = append(errs, fmt.Errorf("%s (%v) must be within [0, 1]", r.name, r.v))
		}
	}
	if t.DateProbeCount <= 0 {
		errs = append(errs, errors.New("date_probe_count must be positive"))
	}
	if t.DateMinLength < 0 {
		errs = append(errs, errors.New("date_min_length must be non-negative"))
	}
	if t.CategoricalMinCount < 0 {
		errs = append(errs, errors.New("categorical_min_count must be non-negative"))
	}

	return errors.Join(errs...)
}
