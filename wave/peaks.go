package wave

// Peak describes a local maximum of a sampled signal.
type Peak struct {
	Index      int
	Prominence float64
	LeftBase   int
	RightBase  int
	// Width is measured in samples at RelHeight of the prominence below the
	// peak, between the interpolated crossings LeftIP and RightIP.
	Width   float64
	LeftIP  float64
	RightIP float64
}

// PeakOptions filters local maxima.
type PeakOptions struct {
	MinWidth  float64 // minimum width in samples; 0 disables the filter
	RelHeight float64 // relative height at which width is measured
}

// FindPeaks returns the local maxima of x whose width is at least
// opts.MinWidth, in index order. Flat tops count once, at their midpoint;
// the first and last samples are never peaks.
func FindPeaks(x []float64, opts PeakOptions) []Peak {
	rel := opts.RelHeight
	if rel < 0 {
		rel = 0
	}

	var peaks []Peak
	for _, idx := range localMaxima(x) {
		p := Peak{Index: idx}
		p.Prominence, p.LeftBase, p.RightBase = prominence(x, idx)
		p.Width, p.LeftIP, p.RightIP = width(x, p, rel)
		if p.Width >= opts.MinWidth {
			peaks = append(peaks, p)
		}
	}
	return peaks
}

// localMaxima finds samples larger than both neighbours. A plateau is a
// maximum if the samples on both sides of it are smaller.
func localMaxima(x []float64) []int {
	var out []int
	n := len(x)
	i := 1
	for i < n-1 {
		if x[i-1] < x[i] {
			ahead := i + 1
			for ahead < n-1 && x[ahead] == x[i] {
				ahead++
			}
			if x[ahead] < x[i] {
				left, right := i, ahead-1
				out = append(out, (left+right)/2)
				i = ahead
			}
		}
		i++
	}
	return out
}

// prominence walks outwards from the peak until a higher sample or the end
// of the signal, tracking the lowest point on each side.
func prominence(x []float64, peak int) (prom float64, leftBase, rightBase int) {
	leftBase, rightBase = peak, peak

	leftMin := x[peak]
	for i := peak; i >= 0 && x[i] <= x[peak]; i-- {
		if x[i] < leftMin {
			leftMin = x[i]
			leftBase = i
		}
	}

	rightMin := x[peak]
	for i := peak; i < len(x) && x[i] <= x[peak]; i++ {
		if x[i] < rightMin {
			rightMin = x[i]
			rightBase = i
		}
	}

	base := leftMin
	if rightMin > base {
		base = rightMin
	}
	return x[peak] - base, leftBase, rightBase
}

// width measures the peak at height x[peak] - prominence*rel, interpolating
// linearly where the crossing falls between samples.
func width(x []float64, p Peak, rel float64) (w, leftIP, rightIP float64) {
	height := x[p.Index] - p.Prominence*rel

	i := p.Index
	for p.LeftBase < i && height < x[i] {
		i--
	}
	leftIP = float64(i)
	if x[i] < height {
		leftIP += (height - x[i]) / (x[i+1] - x[i])
	}

	i = p.Index
	for i < p.RightBase && height < x[i] {
		i++
	}
	rightIP = float64(i)
	if x[i] < height {
		rightIP -= (height - x[i]) / (x[i-1] - x[i])
	}

	return rightIP - leftIP, leftIP, rightIP
}
