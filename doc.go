// Package epiwave splits an epidemic timeline into waves and compares age
// cohorts across them.
//
// Daily case, hospitalization, ICU and death counts reported per province,
// sex and age band are summed nationally, smoothed with a trailing 7-day
// moving average and scanned for peaks. The deepest point between each pair
// of adjacent peaks becomes a wave boundary. Every record is then labeled
// with its wave and the per age band totals are normalized into heatmap
// tables.
//
// # Features
//
//   - CSV ingestion of the ministry dataset or canonical headers
//   - Onset trimming and dense, zero-filled daily grids
//   - Trailing SMA-7 smoothing with a configurable leading edge
//   - Peak detection with a minimum width filter and valley placement
//   - Share-of-wave, share-of-band, per-capita and severity ratio tables
//   - JSON export for dashboards
//
// # Quick Start
//
//	records, _ := ingest.LoadRecords("casos.csv", nil)
//	pop, _ := ingest.LoadPopulation("poblacion.csv", nil)
//	engine, _ := pipeline.New(pipeline.DefaultConfig(), logger)
//	res, _ := engine.Run(ctx, records, pop)
//	for _, s := range res.Waves.Segments {
//		fmt.Println(s.Wave, s.Start, s.End)
//	}
//
// # Packages
//
//   - record: Record types, schema mapping, validation and population tables
//   - ingest: CSV loaders
//   - timeseries: Daily series and trailing means
//   - smooth: SMA smoothing of count records
//   - wave: Peak detection and wave labeling
//   - cohort: Daily, per band and per wave aggregation
//   - normalize: Contingency tables and severity cascade
//   - pipeline: End-to-end runs with logging and caching
//   - config: Layered configuration
package epiwave
