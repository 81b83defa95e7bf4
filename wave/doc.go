// Package wave partitions an epidemic timeline into waves.
//
// Peaks are local maxima of the smoothed daily case curve whose width, taken
// at half of their prominence, spans at least MinPeakWidth samples. Narrow
// reporting bumps fail that test. Between each pair of adjacent peaks the
// earliest minimum of the curve becomes a valley, and the valleys, framed by
// the first and last record dates, are the bin edges:
//
//	res, err := wave.Detect(daily, records, wave.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	if res.Degraded() {
//	    // fewer than two peaks: one wave spans the whole series
//	}
//	for _, seg := range res.Segments {
//	    fmt.Println(seg.Wave, seg.Start, seg.End, seg.PeakDate)
//	}
//
// The first wave includes its left edge. Every later wave starts the day after
// the previous valley and ends on its own valley, inclusive.
package wave
