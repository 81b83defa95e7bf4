// Command epiwave detects epidemic waves in case records and exports the
// per age band tables as JSON for charting.
//
//	epiwave --input-records casos.csv --input-population poblacion.csv --output-path waves.json
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/bytedance/sonic"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/sartorproj/epiwave/config"
	"github.com/sartorproj/epiwave/ingest"
	"github.com/sartorproj/epiwave/pipeline"
	"github.com/sartorproj/epiwave/record"
)

func main() {
	fs := pflag.NewFlagSet("epiwave", pflag.ExitOnError)
	config.RegisterFlags(fs)
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load("", fs)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("epiwave failed", zap.Error(err))
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	csvOpts := &ingest.CSVOptions{DateFormat: cfg.Input.DateFormat, Delimiter: cfg.Delimiter()}

	records, err := ingest.LoadRecords(cfg.Input.Records, csvOpts)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}
	logger.Info("records loaded", zap.String("path", cfg.Input.Records), zap.Int("records", len(records)))

	var pop *record.Population
	if cfg.Input.Population != "" {
		if pop, err = ingest.LoadPopulation(cfg.Input.Population, csvOpts); err != nil {
			return fmt.Errorf("load population: %w", err)
		}
		logger.Info("population loaded", zap.String("path", cfg.Input.Population), zap.Int("bands", len(pop.Bands())))
	}

	engine, err := pipeline.New(&pipeline.Config{
		Smoothing: cfg.SmoothOptions(),
		Waves:     cfg.WaveOptions(),
		Workers:   cfg.Workers,
	}, logger)
	if err != nil {
		return err
	}

	res, err := engine.Run(ctx, records, pop)
	if err != nil {
		return err
	}

	data, err := sonic.ConfigStd.MarshalIndent(buildOutput(res, pop, cfg.Output.Precision), "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return write(cfg.Output.Path, data)
}

func write(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func newLogger(cfg config.Log) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	zc.Level = level
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}
