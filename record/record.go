package record

import (
	"fmt"
	"time"
)

// AgeBand is a ten-year age cohort label.
type AgeBand string

// Canonical age bands. NC marks records whose age was not classified.
const (
	Age0s     AgeBand = "0s"
	Age10s    AgeBand = "10s"
	Age20s    AgeBand = "20s"
	Age30s    AgeBand = "30s"
	Age40s    AgeBand = "40s"
	Age50s    AgeBand = "50s"
	Age60s    AgeBand = "60s"
	Age70s    AgeBand = "70s"
	Age80Plus AgeBand = "80+"
	AgeNC     AgeBand = "NC"

	// AllAges is the synthetic band holding the cross-band sum.
	AllAges AgeBand = "All Ages"
)

// Bands lists every band a RawRecord may carry, in display order.
var Bands = []AgeBand{Age0s, Age10s, Age20s, Age30s, Age40s, Age50s, Age60s, Age70s, Age80Plus, AgeNC}

// Classified reports whether b is a real, classified cohort.
func (b AgeBand) Classified() bool {
	return b != AgeNC && b != AllAges && b.Valid()
}

// Valid reports whether b belongs to the record alphabet.
func (b AgeBand) Valid() bool {
	for _, v := range Bands {
		if v == b {
			return true
		}
	}
	return false
}

// ClassifiedBands returns Bands without NC.
func ClassifiedBands() []AgeBand {
	out := make([]AgeBand, 0, len(Bands)-1)
	for _, b := range Bands {
		if b != AgeNC {
			out = append(out, b)
		}
	}
	return out
}

// Sex of the reported cases.
type Sex string

const (
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
	SexUnknown Sex = "unknown"
)

// Variable names one of the four outcome counters.
type Variable string

const (
	Cases            Variable = "cases"
	Hospitalizations Variable = "hospitalizations"
	ICU              Variable = "icu"
	Deaths           Variable = "deaths"
)

// Variables lists the outcome counters in severity order.
var Variables = []Variable{Cases, Hospitalizations, ICU, Deaths}

// Counts holds the four outcome counters.
type Counts struct {
	Cases            int64 `validate:"min=0"`
	Hospitalizations int64 `validate:"min=0"`
	ICU              int64 `validate:"min=0"`
	Deaths           int64 `validate:"min=0"`
}

// Add returns the element-wise sum of c and o.
func (c Counts) Add(o Counts) Counts {
	return Counts{
		Cases:            c.Cases + o.Cases,
		Hospitalizations: c.Hospitalizations + o.Hospitalizations,
		ICU:              c.ICU + o.ICU,
		Deaths:           c.Deaths + o.Deaths,
	}
}

// Get returns the counter named by v.
func (c Counts) Get(v Variable) (int64, error) {
	switch v {
	case Cases:
		return c.Cases, nil
	case Hospitalizations:
		return c.Hospitalizations, nil
	case ICU:
		return c.ICU, nil
	case Deaths:
		return c.Deaths, nil
	}
	return 0, fmt.Errorf("unknown variable %q", v)
}

// Slice returns the counters in Variables order.
func (c Counts) Slice() [4]int64 {
	return [4]int64{c.Cases, c.Hospitalizations, c.ICU, c.Deaths}
}

// CountsFromSlice is the inverse of Counts.Slice.
func CountsFromSlice(v [4]int64) Counts {
	return Counts{Cases: v[0], Hospitalizations: v[1], ICU: v[2], Deaths: v[3]}
}

// RawRecord is one row of the daily age-stratified report. Several rows may
// share date, province, sex and band; they are disjoint sub-counts.
type RawRecord struct {
	Date     time.Time `validate:"required"`
	Province string
	Sex      Sex     `validate:"omitempty,oneof=male female unknown"`
	AgeBand  AgeBand `validate:"ageband"`
	Counts
}

// Labeled is a RawRecord with the wave it falls into.
type Labeled struct {
	RawRecord
	Wave int
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NextDay returns the calendar day after d.
func NextDay(d time.Time) time.Time {
	return d.AddDate(0, 0, 1)
}
