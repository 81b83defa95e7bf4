// Package smooth implements the trailing moving average applied to daily
// outcome counters.
package smooth

import (
	"fmt"
	"sort"
	"time"

	"github.com/sartorproj/epiwave/record"
	"github.com/sartorproj/epiwave/timeseries"
)

// EdgePolicy selects the value reported before the window is full.
type EdgePolicy string

const (
	// EdgeZero reports 0 for the first Window-1 days.
	EdgeZero EdgePolicy = "zero"
	// EdgeRaw reports the unsmoothed daily sum for the first Window-1 days.
	EdgeRaw EdgePolicy = "raw"
)

// DefaultWindow is the SMA-7 window.
const DefaultWindow = 7

// Options configures the smoother.
type Options struct {
	Window int
	Edge   EdgePolicy
}

// DefaultOptions returns a 7-day window with zero edge fill.
func DefaultOptions() Options {
	return Options{Window: DefaultWindow, Edge: EdgeZero}
}

// Validate rejects windows below one and unknown edge policies.
func (o Options) Validate() error {
	if o.Window < 1 {
		return fmt.Errorf("smoothing window must be positive, got %d", o.Window)
	}
	if _, err := o.fill(); err != nil {
		return err
	}
	return nil
}

func (o Options) fill() (timeseries.EdgeFill, error) {
	switch o.Edge {
	case EdgeZero, "":
		return timeseries.FillZero, nil
	case EdgeRaw:
		return timeseries.FillRaw, nil
	}
	return 0, fmt.Errorf("unknown edge policy %q", o.Edge)
}

// Point is one day of outcome counters.
type Point struct {
	Date time.Time
	record.Counts
}

// Apply smooths every counter of a single group. The result has one point
// per input point, sorted by date, with every value truncated to an integer.
func Apply(points []Point, opts Options) ([]Point, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	fill, _ := opts.fill()

	sorted := make([]Point, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	var smoothed [4][]float64
	for k := range smoothed {
		raw := make([]float64, len(sorted))
		for i, p := range sorted {
			raw[i] = float64(p.Slice()[k])
		}
		smoothed[k] = timeseries.NewDaily(time.Time{}, raw).TrailingMean(opts.Window, fill).Values
	}

	out := make([]Point, len(sorted))
	for i, p := range sorted {
		var c [4]int64
		for k := range c {
			c[k] = int64(smoothed[k][i])
		}
		out[i] = Point{Date: p.Date, Counts: record.CountsFromSlice(c)}
	}
	return out, nil
}

// CaseSeries extracts the daily case counter as a dated series.
func CaseSeries(points []Point) *timeseries.Series {
	ts := make([]time.Time, len(points))
	vs := make([]float64, len(points))
	for i, p := range points {
		ts[i] = p.Date
		vs[i] = float64(p.Cases)
	}
	return &timeseries.Series{Timestamps: ts, Values: vs, Name: "dailyCases"}
}
