// Package timeseries provides time series data structures and utilities.
//
// This package includes the Series type for representing daily series,
// along with the window and search helpers the smoothing and wave packages
// build on.
//
// # Creating a Series
//
// Create a daily series from a start date and values:
//
//	values := []float64{100, 102, 105, 103, 108, 110}
//	series := timeseries.NewDaily(start, values)
//
// # Smoothing
//
// A trailing moving average keeps the series length. Positions before the
// window is full are filled with zero or with the raw value:
//
//	sma := series.TrailingMean(7, timeseries.FillZero)
//	sma := series.TrailingMean(7, timeseries.FillRaw)
//
// # Searching
//
//	hi := series.ArgMax() // earliest index of the maximum
//	lo := series.ArgMin() // earliest index of the minimum
//
// # Slicing
//
//	subset := series.Slice(10, 50)
package timeseries
