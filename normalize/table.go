// Package normalize builds age band by wave contingency tables.
package normalize

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/sartorproj/epiwave/cohort"
	"github.com/sartorproj/epiwave/record"
)

var (
	// ErrMissingPopulation is returned when a band in the table has no
	// population reference entry.
	ErrMissingPopulation = errors.New("normalize: missing population for age band")
	// ErrUnknownVariable is returned for a variable outside record.Variables.
	ErrUnknownVariable = errors.New("normalize: unknown variable")
)

// Mode is the normalization applied to a table.
type Mode string

const (
	ModeNone           Mode = "none"
	ModeWaveShare      Mode = "wave-share"
	ModeAgeShare       Mode = "age-share"
	ModePopulationRate Mode = "population-rate"
	ModeRatio          Mode = "ratio"
)

// Orientation says which dimension renders as rows.
type Orientation int

const (
	RowsAreWaves Orientation = iota
	RowsAreBands
)

// Table maps (age band, wave) to a value. NC never appears. Undefined cells
// hold NaN.
type Table struct {
	Name        string
	Mode        Mode
	Orientation Orientation
	Bands       []record.AgeBand
	Waves       []int

	cells [][]float64 // [band][wave]
}

// Undefined reports whether v is the undefined-cell marker.
func Undefined(v float64) bool {
	return math.IsNaN(v)
}

// At returns the cell for (b, w), or NaN when either is not in the table.
func (t *Table) At(b record.AgeBand, w int) float64 {
	i, j := t.bandIndex(b), t.waveIndex(w)
	if i < 0 || j < 0 {
		return math.NaN()
	}
	return t.cells[i][j]
}

// Defined reports whether (b, w) holds a number.
func (t *Table) Defined(b record.AgeBand, w int) bool {
	return !Undefined(t.At(b, w))
}

// Matrix lays the table out in its orientation.
func (t *Table) Matrix() (rows, cols []string, values [][]float64) {
	bands := make([]string, len(t.Bands))
	for i, b := range t.Bands {
		bands[i] = string(b)
	}
	waves := make([]string, len(t.Waves))
	for j, w := range t.Waves {
		waves[j] = strconv.Itoa(w)
	}

	if t.Orientation == RowsAreBands {
		values = make([][]float64, len(t.Bands))
		for i := range t.Bands {
			values[i] = append([]float64(nil), t.cells[i]...)
		}
		return bands, waves, values
	}

	values = make([][]float64, len(t.Waves))
	for j := range t.Waves {
		values[j] = make([]float64, len(t.Bands))
		for i := range t.Bands {
			values[j][i] = t.cells[i][j]
		}
	}
	return waves, bands, values
}

func (t *Table) bandIndex(b record.AgeBand) int {
	for i, v := range t.Bands {
		if v == b {
			return i
		}
	}
	return -1
}

func (t *Table) waveIndex(w int) int {
	idx := sort.SearchInts(t.Waves, w)
	if idx < len(t.Waves) && t.Waves[idx] == w {
		return idx
	}
	return -1
}

func (t *Table) mapCells(f func(i, j int, v float64) float64) {
	for i := range t.cells {
		for j := range t.cells[i] {
			t.cells[i][j] = f(i, j, t.cells[i][j])
		}
	}
}

// grid holds raw counters per (band, wave) for the classified bands. Waves
// come from every row, NC included, so all tables share one wave axis.
type grid struct {
	bands  []record.AgeBand
	waves  []int
	counts [][]record.Counts
}

func newGrid(rows []cohort.AgeWaveRow) *grid {
	seenBand := make(map[record.AgeBand]bool)
	seenWave := make(map[int]bool)
	for _, r := range rows {
		seenWave[r.Wave] = true
		if r.AgeBand.Classified() {
			seenBand[r.AgeBand] = true
		}
	}

	g := &grid{}
	for _, b := range record.ClassifiedBands() {
		if seenBand[b] {
			g.bands = append(g.bands, b)
		}
	}
	for w := range seenWave {
		g.waves = append(g.waves, w)
	}
	sort.Ints(g.waves)

	g.counts = make([][]record.Counts, len(g.bands))
	for i := range g.counts {
		g.counts[i] = make([]record.Counts, len(g.waves))
	}
	t := &Table{Bands: g.bands, Waves: g.waves}
	for _, r := range rows {
		i, j := t.bandIndex(r.AgeBand), t.waveIndex(r.Wave)
		if i >= 0 && j >= 0 {
			g.counts[i][j] = g.counts[i][j].Add(r.Counts)
		}
	}
	return g
}

func (g *grid) table(name string, v record.Variable) (*Table, error) {
	if _, err := (record.Counts{}).Get(v); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariable, v)
	}
	t := &Table{
		Name:  name,
		Mode:  ModeNone,
		Bands: g.bands,
		Waves: g.waves,
		cells: make([][]float64, len(g.bands)),
	}
	for i := range g.bands {
		t.cells[i] = make([]float64, len(g.waves))
		for j := range g.waves {
			n, _ := g.counts[i][j].Get(v)
			t.cells[i][j] = float64(n)
		}
	}
	return t, nil
}

func divide(num, den float64) float64 {
	if den == 0 {
		return math.NaN()
	}
	return num / den
}
