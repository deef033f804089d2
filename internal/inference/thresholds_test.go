package inference

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestProfileByName(t *testing.T) {
	tests := []struct {
		name        string
		wantNumeric float64
		wantCat     float64
		wantErr     bool
	}{
		{"", 0.9, 0.1, false},
		{"default", 0.9, 0.1, false},
		{"STRICT", 1.0, 0.1, false},
		{"lenient", 0.8, 0.3, false},
		{"loose", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th, err := ProfileByName(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantNumeric, th.NumericMinRatio)
			assert.Equal(t, tt.wantCat, th.CategoricalMaxRatio)
			assert.NoError(t, th.Validate())
		})
	}
}

func TestLoadProfile_OverlaysFile(t *testing.T) {
	path := writeProfile(t, "categorical_max_ratio: 0.25\nsample_size: 500\n")

	th, err := LoadProfile("strict", path)
	require.NoError(t, err)

	assert.Equal(t, 0.25, th.CategoricalMaxRatio)
	assert.Equal(t, 500, th.SampleSize)
	// Untouched keys keep the strict profile values.
	assert.Equal(t, 1.0, th.NumericMinRatio)
	assert.Equal(t, 1.0, th.DateMinRatio)
	assert.Equal(t, uint64(42), th.Seed)
}

func TestLoadProfile_NoFile(t *testing.T) {
	th, err := LoadProfile("lenient", "")
	require.NoError(t, err)
	assert.Equal(t, LenientThresholds(), th)
}

func TestLoadProfile_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadProfile("default", filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := LoadProfile("default", writeProfile(t, "sample_size: [1, 2"))
		assert.Error(t, err)
	})

	t.Run("out of range", func(t *testing.T) {
		_, err := LoadProfile("default", writeProfile(t, "numeric_min_ratio: 1.5\nsample_size: 0\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "numeric_min_ratio")
		assert.Contains(t, err.Error(), "sample_size")
	})
}
