package record

import (
	"fmt"
	"strings"
)

// TotalLabel marks the aggregate row of a population table.
const TotalLabel = "total"

// BandPopulation is the resident population of one age band.
type BandPopulation struct {
	AgeBand    AgeBand
	Population int64
}

// Population is the resident population per age band. The optional total
// row is kept apart and never used for per-capita rates.
type Population struct {
	counts   map[AgeBand]int64
	total    int64
	hasTotal bool
}

// NewPopulation returns an empty reference table.
func NewPopulation() *Population {
	return &Population{counts: make(map[AgeBand]int64)}
}

// Add accumulates n residents under label. Repeated labels are summed, as
// when the source splits a band by sex or province. NC rows are ignored.
func (p *Population) Add(label string, n int64) error {
	if n < 0 {
		return &SchemaError{Row: -1, Column: "population", Reason: fmt.Sprintf("negative population %d for %q", n, label)}
	}
	if strings.EqualFold(strings.TrimSpace(label), TotalLabel) {
		p.total += n
		p.hasTotal = true
		return nil
	}
	band, err := ParseAgeBand(label)
	if err != nil {
		return &SchemaError{Row: -1, Column: ColAgeBand, Reason: err.Error()}
	}
	if band == AgeNC {
		return nil
	}
	p.counts[band] += n
	return nil
}

// Of returns the population of b.
func (p *Population) Of(b AgeBand) (int64, bool) {
	n, ok := p.counts[b]
	return n, ok
}

// Bands lists the known bands in display order.
func (p *Population) Bands() []BandPopulation {
	var out []BandPopulation
	for _, b := range Bands {
		if n, ok := p.counts[b]; ok {
			out = append(out, BandPopulation{AgeBand: b, Population: n})
		}
	}
	return out
}

// GrandTotal returns the total row when one was supplied, otherwise the sum
// of all bands. The second result reports whether the total row was present.
func (p *Population) GrandTotal() (int64, bool) {
	if p.hasTotal {
		return p.total, true
	}
	var sum int64
	for _, n := range p.counts {
		sum += n
	}
	return sum, false
}
