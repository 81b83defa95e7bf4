// Package wave splits a daily case curve into epidemic waves.
package wave

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sartorproj/epiwave/record"
	"github.com/sartorproj/epiwave/smooth"
	"github.com/sartorproj/epiwave/timeseries"
)

var (
	// ErrEmptySeries is returned when there is nothing to segment.
	ErrEmptySeries = errors.New("wave: empty series")
	// ErrUnsorted is returned when the daily series is not strictly date-ordered.
	ErrUnsorted = errors.New("wave: daily series is not strictly increasing by date")
)

// Status reports how the partition was obtained.
type Status int

const (
	// StatusOK means at least two peaks were found.
	StatusOK Status = iota
	// StatusInsufficientPeaks means fewer than two peaks were found and the
	// whole span forms a single wave.
	StatusInsufficientPeaks
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusInsufficientPeaks:
		return "insufficient peak data"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// DefaultMinPeakWidth is the minimum peak width, in samples.
const DefaultMinPeakWidth = 20

// Options configures peak detection.
type Options struct {
	MinPeakWidth float64
	RelHeight    float64
}

// DefaultOptions returns a minimum width of 20 samples measured at half
// prominence.
func DefaultOptions() Options {
	return Options{MinPeakWidth: DefaultMinPeakWidth, RelHeight: 0.5}
}

// Segment is one wave: a closed date range.
type Segment struct {
	Wave      int
	Start     time.Time
	End       time.Time
	Days      int
	PeakDate  time.Time // day of the largest smoothed case count in the segment
	PeakValue int64
}

// Contains reports whether d falls within the segment.
func (s Segment) Contains(d time.Time) bool {
	return !d.Before(s.Start) && !d.After(s.End)
}

// Result is the outcome of Detect.
type Result struct {
	Peaks      []time.Time
	Valleys    []time.Time
	Boundaries []time.Time
	Segments   []Segment
	Status     Status
	Labeled    []record.Labeled
}

// Degraded reports whether the result fell back to a single wave.
func (r *Result) Degraded() bool {
	return r.Status == StatusInsufficientPeaks
}

// Detect finds peaks in the smoothed daily case curve, places one valley
// between each pair of adjacent peaks, and bins every record into the wave
// its date falls in. daily must be strictly increasing by date.
func Detect(daily []smooth.Point, records []record.RawRecord, opts Options) (*Result, error) {
	if len(daily) == 0 || len(records) == 0 {
		return nil, ErrEmptySeries
	}
	for i := 1; i < len(daily); i++ {
		if !daily[i-1].Date.Before(daily[i].Date) {
			return nil, ErrUnsorted
		}
	}

	curve := smooth.CaseSeries(daily)
	found := FindPeaks(curve.Values, PeakOptions{MinWidth: opts.MinPeakWidth, RelHeight: opts.RelHeight})

	res := &Result{Status: StatusOK}
	for _, p := range found {
		res.Peaks = append(res.Peaks, curve.Timestamps[p.Index])
	}
	if len(found) < 2 {
		res.Status = StatusInsufficientPeaks
	}
	for i := 1; i < len(found); i++ {
		lo, hi := found[i-1].Index, found[i].Index
		valley := lo + curve.Slice(lo, hi+1).ArgMin()
		res.Valleys = append(res.Valleys, curve.Timestamps[valley])
	}

	minDate, maxDate := span(records)
	res.Boundaries = boundaries(minDate, maxDate, res.Valleys)
	res.Segments = segments(res.Boundaries, curve)

	res.Labeled = make([]record.Labeled, len(records))
	for i, r := range records {
		res.Labeled[i] = record.Labeled{RawRecord: r, Wave: binOf(res.Boundaries, record.Day(r.Date))}
	}
	return res, nil
}

// WaveOf returns the wave number of d, or 0 if d is outside the partition.
func (r *Result) WaveOf(d time.Time) int {
	d = record.Day(d)
	if len(r.Boundaries) == 0 || d.Before(r.Boundaries[0]) || d.After(r.Boundaries[len(r.Boundaries)-1]) {
		return 0
	}
	return binOf(r.Boundaries, d)
}

func span(records []record.RawRecord) (min, max time.Time) {
	min, max = record.Day(records[0].Date), record.Day(records[0].Date)
	for _, r := range records[1:] {
		d := record.Day(r.Date)
		if d.Before(min) {
			min = d
		}
		if d.After(max) {
			max = d
		}
	}
	return min, max
}

// boundaries builds strictly increasing bin edges. A single-day span keeps
// both edges so that it still forms one wave.
func boundaries(min, max time.Time, valleys []time.Time) []time.Time {
	out := []time.Time{min}
	for _, v := range valleys {
		if v.After(out[len(out)-1]) && v.Before(max) {
			out = append(out, v)
		}
	}
	return append(out, max)
}

// binOf returns the 1-based bin of d. The first bin is closed on both ends,
// later bins are open on the left.
func binOf(edges []time.Time, d time.Time) int {
	k := sort.Search(len(edges)-1, func(i int) bool {
		return !d.After(edges[i+1])
	})
	if k == len(edges)-1 {
		k--
	}
	return k + 1
}

// segments describes each bin. PeakDate is the earliest day of the largest
// smoothed case count within it.
func segments(edges []time.Time, curve *timeseries.Series) []Segment {
	out := make([]Segment, 0, len(edges)-1)
	for k := 1; k < len(edges); k++ {
		start := edges[k-1]
		if k > 1 {
			start = record.NextDay(start)
		}
		seg := Segment{
			Wave:  k,
			Start: start,
			End:   edges[k],
			Days:  int(edges[k].Sub(start).Hours()/24) + 1,
		}
		lo := sort.Search(len(curve.Timestamps), func(i int) bool {
			return !curve.Timestamps[i].Before(seg.Start)
		})
		hi := sort.Search(len(curve.Timestamps), func(i int) bool {
			return curve.Timestamps[i].After(seg.End)
		})
		if sub := curve.Slice(lo, hi); len(sub.Values) > 0 {
			i := sub.ArgMax()
			seg.PeakDate, seg.PeakValue = sub.Timestamps[i], int64(sub.Values[i])
		}
		out = append(out, seg)
	}
	return out
}
