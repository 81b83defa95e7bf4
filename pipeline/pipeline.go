// Package pipeline runs the full analysis: onset trimming, smoothing, wave
// detection, cohort aggregation and table building.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sartorproj/epiwave/cohort"
	"github.com/sartorproj/epiwave/normalize"
	"github.com/sartorproj/epiwave/record"
	"github.com/sartorproj/epiwave/smooth"
	"github.com/sartorproj/epiwave/wave"
)

// Config holds configuration for a pipeline run.
type Config struct {
	Smoothing smooth.Options // SMA window and edge policy (default: 7, zero)
	Waves     wave.Options   // Peak width filter (default: 20 days at half prominence)
	Workers   int            // Goroutines used by the table stage (default: 4)
	Cache     bool           // Reuse results for identical inputs
	CacheSize int            // Maximum cached results (default: 16)
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() *Config {
	return &Config{
		Smoothing: smooth.DefaultOptions(),
		Waves:     wave.DefaultOptions(),
		Workers:   4,
		Cache:     true,
	}
}

// Result represents everything a run produces.
type Result struct {
	RunID string
	Onset time.Time

	// Smoothed national curve and per-band curves, "All Ages" last.
	Daily    []smooth.Point
	AgeDaily []cohort.AgeDailyRow
	// Raw per (band, wave) totals.
	AgeWave []cohort.AgeWaveRow

	Waves  *wave.Result
	Tables *normalize.Set
}

// Degraded reports whether fewer than two peaks were found.
func (r *Result) Degraded() bool {
	return r.Waves != nil && r.Waves.Degraded()
}

// Engine runs the pipeline with a fixed configuration.
type Engine struct {
	config *Config
	logger *zap.Logger
	cache  *cache
}

// New returns an Engine. A nil config uses DefaultConfig and a nil logger
// discards all output.
func New(config *Config, logger *zap.Logger) (*Engine, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Smoothing.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{config: config, logger: logger}
	if config.Cache {
		e.cache = newCache(config.CacheSize)
	}
	return e, nil
}

// Run analyzes records. pop may be nil, in which case no per-capita tables
// are built. With caching enabled, results for identical inputs share their
// series and tables and must be treated as read-only; only RunID differs.
func (e *Engine) Run(ctx context.Context, records []record.RawRecord, pop *record.Population) (*Result, error) {
	runID := uuid.NewString()
	log := e.logger.With(zap.String("run_id", runID))
	start := time.Now()

	var key string
	if e.cache != nil {
		key = e.cache.key(records, pop, e.config)
		if cached, ok := e.cache.get(key); ok {
			log.Debug("cache hit", zap.String("key", key), zap.String("cached_run_id", cached.RunID))
			res := *cached
			res.RunID = runID
			return &res, nil
		}
	}

	if err := record.Validate(records); err != nil {
		log.Error("invalid input", zap.Error(err))
		return nil, err
	}

	trimmed, onset, err := cohort.TrimBeforeOnset(records)
	if err != nil {
		log.Error("onset", zap.Error(err))
		return nil, err
	}
	log.Info("records trimmed to onset",
		zap.Time("onset", onset),
		zap.Int("records", len(records)),
		zap.Int("kept", len(trimmed)),
	)

	daily, err := cohort.ByDate(trimmed, e.config.Smoothing)
	if err != nil {
		return nil, fmt.Errorf("smooth daily curve: %w", err)
	}

	waves, err := wave.Detect(daily, trimmed, e.config.Waves)
	if err != nil {
		return nil, fmt.Errorf("detect waves: %w", err)
	}
	if waves.Degraded() {
		log.Warn("insufficient peak data, treating the whole period as one wave",
			zap.Int("peaks", len(waves.Peaks)),
			zap.Float64("min_peak_width", e.config.Waves.MinPeakWidth),
		)
	} else {
		log.Info("waves detected",
			zap.Int("waves", len(waves.Segments)),
			zap.Times("valleys", waves.Valleys),
		)
	}

	views, err := cohort.Aggregate(waves.Labeled, e.config.Smoothing)
	if err != nil {
		return nil, fmt.Errorf("aggregate cohorts: %w", err)
	}

	tables, err := normalize.BuildAll(ctx, views.ByAgeWave, pop, e.config.Workers)
	if err != nil {
		log.Error("build tables", zap.Error(err))
		return nil, err
	}

	res := &Result{
		RunID:    runID,
		Onset:    onset,
		Daily:    views.ByDate,
		AgeDaily: views.ByAgeDate,
		AgeWave:  views.ByAgeWave,
		Waves:    waves,
		Tables:   tables,
	}
	if e.cache != nil {
		e.cache.put(key, res)
	}

	log.Info("run finished",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("days", len(res.Daily)),
		zap.Bool("degraded", res.Degraded()),
	)
	return res, nil
}
