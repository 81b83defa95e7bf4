// Package cohort aggregates labelled records by date, by age band and date,
// and by age band and wave.
package cohort

import (
	"errors"
	"sort"
	"time"

	"github.com/sartorproj/epiwave/record"
	"github.com/sartorproj/epiwave/smooth"
)

// ErrNoOnset is returned when no day has a positive national case count.
var ErrNoOnset = errors.New("cohort: no onset found, no day has cases > 0")

// AgeDailyRow is one smoothed day of one age band.
type AgeDailyRow struct {
	AgeBand record.AgeBand
	smooth.Point
}

// AgeWaveRow is the unsmoothed total of one age band over one wave.
type AgeWaveRow struct {
	AgeBand record.AgeBand
	Wave    int
	record.Counts
}

// Views holds the three aggregate tables.
type Views struct {
	ByDate    []smooth.Point
	ByAgeDate []AgeDailyRow
	ByAgeWave []AgeWaveRow
}

// Onset returns the first date whose summed case count is positive.
func Onset(records []record.RawRecord) (time.Time, error) {
	cases := make(map[time.Time]int64)
	for _, r := range records {
		cases[record.Day(r.Date)] += r.Cases
	}

	var onset time.Time
	for d, c := range cases {
		if c > 0 && (onset.IsZero() || d.Before(onset)) {
			onset = d
		}
	}
	if onset.IsZero() {
		return time.Time{}, ErrNoOnset
	}
	return onset, nil
}

// TrimBeforeOnset drops every record dated before the onset day.
func TrimBeforeOnset(records []record.RawRecord) ([]record.RawRecord, time.Time, error) {
	onset, err := Onset(records)
	if err != nil {
		return nil, time.Time{}, err
	}
	out := make([]record.RawRecord, 0, len(records))
	for _, r := range records {
		if !record.Day(r.Date).Before(onset) {
			out = append(out, r)
		}
	}
	return out, onset, nil
}

// DailySums sums the counters per calendar day over the full span of the
// records. Days without records are present with zero counts.
func DailySums(records []record.RawRecord) []smooth.Point {
	if len(records) == 0 {
		return nil
	}
	first, last := span(records)
	sums := make(map[time.Time]record.Counts)
	for _, r := range records {
		d := record.Day(r.Date)
		sums[d] = sums[d].Add(r.Counts)
	}
	return dense(first, last, sums)
}

// ByDate returns the smoothed national daily series.
func ByDate(records []record.RawRecord, opts smooth.Options) ([]smooth.Point, error) {
	return smooth.Apply(DailySums(records), opts)
}

// ByAgeDate smooths each age band independently over the common span and
// appends the All Ages band, the per-day sum of the smoothed bands.
func ByAgeDate(records []record.RawRecord, opts smooth.Options) ([]AgeDailyRow, error) {
	if len(records) == 0 {
		return nil, nil
	}
	first, last := span(records)

	perBand := make(map[record.AgeBand]map[time.Time]record.Counts)
	for _, r := range records {
		m, ok := perBand[r.AgeBand]
		if !ok {
			m = make(map[time.Time]record.Counts)
			perBand[r.AgeBand] = m
		}
		d := record.Day(r.Date)
		m[d] = m[d].Add(r.Counts)
	}

	var out []AgeDailyRow
	allAges := make(map[time.Time]record.Counts)
	for _, band := range record.Bands {
		sums, ok := perBand[band]
		if !ok {
			continue
		}
		smoothed, err := smooth.Apply(dense(first, last, sums), opts)
		if err != nil {
			return nil, err
		}
		for _, p := range smoothed {
			out = append(out, AgeDailyRow{AgeBand: band, Point: p})
			allAges[p.Date] = allAges[p.Date].Add(p.Counts)
		}
	}
	for _, p := range dense(first, last, allAges) {
		out = append(out, AgeDailyRow{AgeBand: record.AllAges, Point: p})
	}
	return out, nil
}

// ByAgeWave totals each age band per wave, sorted by band then wave.
func ByAgeWave(labeled []record.Labeled) []AgeWaveRow {
	type key struct {
		band record.AgeBand
		wave int
	}
	sums := make(map[key]record.Counts)
	for _, l := range labeled {
		k := key{l.AgeBand, l.Wave}
		sums[k] = sums[k].Add(l.Counts)
	}

	out := make([]AgeWaveRow, 0, len(sums))
	for k, c := range sums {
		out = append(out, AgeWaveRow{AgeBand: k.band, Wave: k.wave, Counts: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AgeBand != out[j].AgeBand {
			return bandIndex(out[i].AgeBand) < bandIndex(out[j].AgeBand)
		}
		return out[i].Wave < out[j].Wave
	})
	return out
}

// Aggregate builds all three views from wave-labelled records.
func Aggregate(labeled []record.Labeled, opts smooth.Options) (*Views, error) {
	raw := make([]record.RawRecord, len(labeled))
	for i, l := range labeled {
		raw[i] = l.RawRecord
	}

	byDate, err := ByDate(raw, opts)
	if err != nil {
		return nil, err
	}
	byAgeDate, err := ByAgeDate(raw, opts)
	if err != nil {
		return nil, err
	}
	return &Views{
		ByDate:    byDate,
		ByAgeDate: byAgeDate,
		ByAgeWave: ByAgeWave(labeled),
	}, nil
}

func span(records []record.RawRecord) (first, last time.Time) {
	first, last = record.Day(records[0].Date), record.Day(records[0].Date)
	for _, r := range records[1:] {
		d := record.Day(r.Date)
		if d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
	}
	return first, last
}

func dense(first, last time.Time, sums map[time.Time]record.Counts) []smooth.Point {
	var out []smooth.Point
	for d := first; !d.After(last); d = record.NextDay(d) {
		out = append(out, smooth.Point{Date: d, Counts: sums[d]})
	}
	return out
}

func bandIndex(b record.AgeBand) int {
	for i, v := range record.Bands {
		if v == b {
			return i
		}
	}
	return len(record.Bands)
}
