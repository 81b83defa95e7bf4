package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/epiwave/smooth"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("EPIWAVE_INPUT_RECORDS", "cases.csv")

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Smoothing.Window)
	assert.Equal(t, "zero", cfg.Smoothing.EdgePolicy)
	assert.Equal(t, 20.0, cfg.Waves.MinPeakWidth)
	assert.Equal(t, 0.5, cfg.Waves.RelHeight)
	assert.Equal(t, "cases.csv", cfg.Input.Records)
	assert.Equal(t, ',', cfg.Delimiter())
	assert.Equal(t, int32(6), cfg.Output.Precision)
	assert.Equal(t, 4, cfg.Workers)

	assert.Equal(t, smooth.Options{Window: 7, Edge: smooth.EdgeZero}, cfg.SmoothOptions())
	assert.Equal(t, 20.0, cfg.WaveOptions().MinPeakWidth)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "epiwave.yaml")
	yaml := []byte(`
smoothing:
  window: 14
  edge_policy: raw
input:
  records: file.csv
  delimiter: ";"
workers: 2
`)
	require.NoError(t, os.WriteFile(path, yaml, 0o600))

	t.Setenv("EPIWAVE_WORKERS", "3")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--config", path, "--smoothing-window", "5"}))

	cfg, err := Load("", fs)
	require.NoError(t, err)

	// flag beats file
	assert.Equal(t, 5, cfg.Smoothing.Window)
	// file beats default
	assert.Equal(t, "raw", cfg.Smoothing.EdgePolicy)
	assert.Equal(t, "file.csv", cfg.Input.Records)
	assert.Equal(t, ';', cfg.Delimiter())
	// env beats file
	assert.Equal(t, 3, cfg.Workers)
	// unset flags keep lower layers
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Smoothing: Smoothing{Window: 7, EdgePolicy: "zero"},
			Waves:     Waves{MinPeakWidth: 20, RelHeight: 0.5},
			Input:     Input{Records: "r.csv", Delimiter: ",", DateFormat: "2006-01-02"},
			Output:    Output{Precision: 6},
			Log:       Log{Level: "info", Format: "json"},
			Workers:   1,
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero window", func(c *Config) { c.Smoothing.Window = 0 }},
		{"unknown edge policy", func(c *Config) { c.Smoothing.EdgePolicy = "mirror" }},
		{"negative width", func(c *Config) { c.Waves.MinPeakWidth = -1 }},
		{"rel height above one", func(c *Config) { c.Waves.RelHeight = 1.5 }},
		{"no records", func(c *Config) { c.Input.Records = "" }},
		{"long delimiter", func(c *Config) { c.Input.Delimiter = ";;" }},
		{"bad log level", func(c *Config) { c.Log.Level = "trace" }},
		{"no workers", func(c *Config) { c.Workers = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			assert.True(t, errors.Is(err, ErrInvalid), "got %v", err)
		})
	}
}
