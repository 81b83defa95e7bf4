// Package config loads run settings from defaults, an optional config file,
// EPIWAVE_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sartorproj/epiwave/smooth"
	"github.com/sartorproj/epiwave/wave"
)

// EnvPrefix prefixes every environment override, e.g. EPIWAVE_SMOOTHING_WINDOW.
const EnvPrefix = "EPIWAVE"

// Viper keys.
const (
	KeySmoothingWindow = "smoothing.window"
	KeySmoothingEdge   = "smoothing.edge_policy"
	KeyMinPeakWidth    = "waves.min_peak_width"
	KeyRelHeight       = "waves.rel_height"
	KeyRecords         = "input.records"
	KeyPopulation      = "input.population"
	KeyDelimiter       = "input.delimiter"
	KeyDateFormat      = "input.date_format"
	KeyOutputPath      = "output.path"
	KeyPrecision       = "output.precision"
	KeyLogLevel        = "log.level"
	KeyLogFormat       = "log.format"
	KeyWorkers         = "workers"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

type Smoothing struct {
	Window     int    `mapstructure:"window" validate:"min=1"`
	EdgePolicy string `mapstructure:"edge_policy" validate:"oneof=zero raw"`
}

type Waves struct {
	MinPeakWidth float64 `mapstructure:"min_peak_width" validate:"gte=0"`
	RelHeight    float64 `mapstructure:"rel_height" validate:"gt=0,lte=1"`
}

type Input struct {
	Records    string `mapstructure:"records" validate:"required"`
	Population string `mapstructure:"population"`
	Delimiter  string `mapstructure:"delimiter" validate:"len=1"`
	DateFormat string `mapstructure:"date_format" validate:"required"`
}

type Output struct {
	Path      string `mapstructure:"path"`
	Precision int32  `mapstructure:"precision" validate:"gte=0,lte=15"`
}

type Log struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

// Config is the full set of run settings.
type Config struct {
	Smoothing Smoothing `mapstructure:"smoothing"`
	Waves     Waves     `mapstructure:"waves"`
	Input     Input     `mapstructure:"input"`
	Output    Output    `mapstructure:"output"`
	Log       Log       `mapstructure:"log"`
	Workers   int       `mapstructure:"workers" validate:"min=1"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeySmoothingWindow, smooth.DefaultWindow)
	v.SetDefault(KeySmoothingEdge, string(smooth.EdgeZero))
	v.SetDefault(KeyMinPeakWidth, wave.DefaultMinPeakWidth)
	v.SetDefault(KeyRelHeight, 0.5)
	v.SetDefault(KeyRecords, "")
	v.SetDefault(KeyPopulation, "")
	v.SetDefault(KeyDelimiter, ",")
	v.SetDefault(KeyDateFormat, "2006-01-02")
	v.SetDefault(KeyOutputPath, "")
	v.SetDefault(KeyPrecision, 6)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "json")
	v.SetDefault(KeyWorkers, 4)
}

// RegisterFlags adds one flag per key to fs. Flag names replace dots with
// dashes, so smoothing.window becomes --smoothing-window.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a YAML, TOML or JSON config file")
	fs.Int(flagName(KeySmoothingWindow), smooth.DefaultWindow, "trailing moving-average window in days")
	fs.String(flagName(KeySmoothingEdge), string(smooth.EdgeZero), "leading-edge policy: zero or raw")
	fs.Float64(flagName(KeyMinPeakWidth), wave.DefaultMinPeakWidth, "minimum peak width in days")
	fs.Float64(flagName(KeyRelHeight), 0.5, "relative height at which peak width is measured")
	fs.String(flagName(KeyRecords), "", "raw records CSV")
	fs.String(flagName(KeyPopulation), "", "population reference CSV")
	fs.String(flagName(KeyDelimiter), ",", "CSV field delimiter")
	fs.String(flagName(KeyDateFormat), "2006-01-02", "date layout of the records file")
	fs.String(flagName(KeyOutputPath), "", "output JSON file, stdout when empty")
	fs.Int32(flagName(KeyPrecision), 6, "decimal places kept in exported ratios")
	fs.String(flagName(KeyLogLevel), "info", "log level")
	fs.String(flagName(KeyLogFormat), "json", "log encoding: json or console")
	fs.Int(KeyWorkers, 4, "goroutines used to build the tables")
}

func flagName(key string) string {
	return strings.ReplaceAll(key, ".", "-")
}

var keys = []string{
	KeySmoothingWindow, KeySmoothingEdge, KeyMinPeakWidth, KeyRelHeight,
	KeyRecords, KeyPopulation, KeyDelimiter, KeyDateFormat,
	KeyOutputPath, KeyPrecision, KeyLogLevel, KeyLogFormat, KeyWorkers,
}

// Load resolves the configuration. path may be empty; when fs is not nil
// and carries a non-empty --config flag, that file is read instead. Only
// flags that were set on the command line override lower layers.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		if f := fs.Lookup("config"); f != nil && f.Value.String() != "" {
			path = f.Value.String()
		}
		for _, key := range keys {
			f := fs.Lookup(flagName(key))
			if f == nil || !f.Changed {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", f.Name, err)
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field and reports the first failure.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s fails %q (got %v)", ErrInvalid, fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// SmoothOptions converts the smoothing section.
func (c *Config) SmoothOptions() smooth.Options {
	return smooth.Options{Window: c.Smoothing.Window, Edge: smooth.EdgePolicy(c.Smoothing.EdgePolicy)}
}

// WaveOptions converts the waves section.
func (c *Config) WaveOptions() wave.Options {
	return wave.Options{MinPeakWidth: c.Waves.MinPeakWidth, RelHeight: c.Waves.RelHeight}
}

// Delimiter returns the CSV delimiter as a rune.
func (c *Config) Delimiter() rune {
	return []rune(c.Input.Delimiter)[0]
}
