// Package normalize turns per (age band, wave) totals into contingency
// tables for charting.
//
// The unclassified band (NC) is dropped before any denominator is taken.
// Four normalizations are available:
//
//	share, _ := normalize.WaveShare(rows, record.Cases)  // each wave sums to 1
//	share, _ := normalize.AgeShare(rows, record.Cases)   // each band sums to 1
//	rate, _ := normalize.PopulationRate(rows, record.Deaths, pop)
//	ratio, _ := normalize.Ratio(rows, record.ICU, record.Hospitalizations)
//
// Cells that would divide by zero hold NaN; test them with Undefined.
//
// BuildAll computes every table of every outcome plus the severity cascade
// concurrently:
//
//	set, err := normalize.BuildAll(ctx, rows, pop, 4)
package normalize
