// Package timeseries provides core time series data structures and operations.
package timeseries

import (
	"time"
)

// Series represents a time series with timestamps and values.
type Series struct {
	Timestamps []time.Time
	Values     []float64
	Name       string
}

// NewDaily creates a series with one timestamp per consecutive day from start.
func NewDaily(start time.Time, values []float64) *Series {
	timestamps := make([]time.Time, len(values))
	for i := range timestamps {
		timestamps[i] = start.AddDate(0, 0, i)
	}
	return &Series{
		Timestamps: timestamps,
		Values:     values,
	}
}

// ArgMin returns the index of the smallest value, preferring the earliest
// on ties. It returns -1 for an empty series.
func (s *Series) ArgMin() int {
	if len(s.Values) == 0 {
		return -1
	}
	idx := 0
	for i, v := range s.Values[1:] {
		if v < s.Values[idx] {
			idx = i + 1
		}
	}
	return idx
}

// ArgMax returns the index of the largest value, preferring the earliest
// on ties. It returns -1 for an empty series.
func (s *Series) ArgMax() int {
	if len(s.Values) == 0 {
		return -1
	}
	idx := 0
	for i, v := range s.Values[1:] {
		if v > s.Values[idx] {
			idx = i + 1
		}
	}
	return idx
}

// Slice returns a slice of the series from start to end (exclusive).
func (s *Series) Slice(start, end int) *Series {
	if start < 0 {
		start = 0
	}
	if end > len(s.Values) {
		end = len(s.Values)
	}
	if start >= end {
		return &Series{Values: []float64{}}
	}

	values := make([]float64, end-start)
	copy(values, s.Values[start:end])

	timestamps := make([]time.Time, len(values))
	if len(s.Timestamps) >= end {
		copy(timestamps, s.Timestamps[start:end])
	}

	return &Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       s.Name,
	}
}

// EdgeFill selects what a trailing window reports before it is full.
type EdgeFill int

const (
	// FillZero reports 0 for positions with an incomplete window.
	FillZero EdgeFill = iota
	// FillRaw reports the unsmoothed value for those positions.
	FillRaw
)

// TrailingMean calculates a trailing simple moving average with window size.
// Unlike a plain moving average the result keeps the input length: the first
// window-1 positions are filled according to fill.
func (s *Series) TrailingMean(window int, fill EdgeFill) *Series {
	n := len(s.Values)
	result := make([]float64, n)
	if window <= 0 {
		window = 1
	}

	sum := 0.0
	for i := 0; i < n; i++ {
		sum += s.Values[i]
		if i >= window {
			sum -= s.Values[i-window]
		}
		switch {
		case i >= window-1:
			result[i] = sum / float64(window)
		case fill == FillRaw:
			result[i] = s.Values[i]
		default:
			result[i] = 0
		}
	}

	timestamps := make([]time.Time, len(s.Timestamps))
	copy(timestamps, s.Timestamps)

	return &Series{
		Timestamps: timestamps,
		Values:     result,
		Name:       s.Name + "_ma",
	}
}
