package normalize

import (
	"fmt"

	"github.com/sartorproj/epiwave/cohort"
	"github.com/sartorproj/epiwave/record"
)

// Counts returns the raw totals of v per (band, wave).
func Counts(rows []cohort.AgeWaveRow, v record.Variable) (*Table, error) {
	return newGrid(rows).table(string(v), v)
}

// WaveShare divides every cell by its wave total, so each wave sums to one.
// A wave with a zero total is undefined throughout.
func WaveShare(rows []cohort.AgeWaveRow, v record.Variable) (*Table, error) {
	t, err := Counts(rows, v)
	if err != nil {
		return nil, err
	}
	totals := make([]float64, len(t.Waves))
	for i := range t.Bands {
		for j := range t.Waves {
			totals[j] += t.cells[i][j]
		}
	}
	t.mapCells(func(_, j int, c float64) float64 { return divide(c, totals[j]) })
	t.Mode = ModeWaveShare
	t.Orientation = RowsAreWaves
	return t, nil
}

// AgeShare divides every cell by its band total, so each band sums to one
// across waves.
func AgeShare(rows []cohort.AgeWaveRow, v record.Variable) (*Table, error) {
	t, err := Counts(rows, v)
	if err != nil {
		return nil, err
	}
	totals := make([]float64, len(t.Bands))
	for i := range t.Bands {
		for j := range t.Waves {
			totals[i] += t.cells[i][j]
		}
	}
	t.mapCells(func(i, _ int, c float64) float64 { return divide(c, totals[i]) })
	t.Mode = ModeAgeShare
	t.Orientation = RowsAreBands
	return t, nil
}

// PopulationRate divides every cell by the resident population of its band.
func PopulationRate(rows []cohort.AgeWaveRow, v record.Variable, pop *record.Population) (*Table, error) {
	t, err := Counts(rows, v)
	if err != nil {
		return nil, err
	}
	if err := perCapita(t, pop); err != nil {
		return nil, err
	}
	return t, nil
}

func perCapita(t *Table, pop *record.Population) error {
	if pop == nil {
		return fmt.Errorf("%w: no population reference", ErrMissingPopulation)
	}
	dens := make([]float64, len(t.Bands))
	for i, b := range t.Bands {
		n, ok := pop.Of(b)
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingPopulation, b)
		}
		dens[i] = float64(n)
	}
	t.mapCells(func(i, _ int, c float64) float64 { return divide(c, dens[i]) })
	t.Name = t.Name + "/population"
	t.Mode = ModePopulationRate
	t.Orientation = RowsAreBands
	return nil
}

// Ratio divides num by den cell by cell. A zero denominator makes the cell
// undefined.
func Ratio(rows []cohort.AgeWaveRow, num, den record.Variable) (*Table, error) {
	g := newGrid(rows)
	n, err := g.table(string(num), num)
	if err != nil {
		return nil, err
	}
	d, err := g.table(string(den), den)
	if err != nil {
		return nil, err
	}
	n.mapCells(func(i, j int, c float64) float64 { return divide(c, d.cells[i][j]) })
	n.Name = fmt.Sprintf("%s/%s", num, den)
	n.Mode = ModeRatio
	n.Orientation = RowsAreWaves
	return n, nil
}

// CascadeStage pairs a severity ratio with the same outcome per capita.
type CascadeStage struct {
	Numerator   record.Variable
	Denominator record.Variable
	Ratio       *Table
	Rate        *Table // nil without a population reference
}

// CascadeSteps are the successive severity stages.
var CascadeSteps = [][2]record.Variable{
	{record.Hospitalizations, record.Cases},
	{record.ICU, record.Hospitalizations},
	{record.Deaths, record.ICU},
}

// Cascade computes hospitalizations/cases, ICU/hospitalizations and
// deaths/ICU. When pop is not nil each stage also carries the numerator
// per capita.
func Cascade(rows []cohort.AgeWaveRow, pop *record.Population) ([]CascadeStage, error) {
	out := make([]CascadeStage, 0, len(CascadeSteps))
	for _, step := range CascadeSteps {
		st, err := cascadeStage(rows, step[0], step[1], pop)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

func cascadeStage(rows []cohort.AgeWaveRow, num, den record.Variable, pop *record.Population) (CascadeStage, error) {
	st := CascadeStage{Numerator: num, Denominator: den}
	var err error
	if st.Ratio, err = Ratio(rows, num, den); err != nil {
		return st, err
	}
	if pop != nil {
		if st.Rate, err = PopulationRate(rows, num, pop); err != nil {
			return st, err
		}
	}
	return st, nil
}

// Total is one bar of a totals chart.
type Total struct {
	Label string
	Value int64
}

// WaveTotals sums v per wave over the classified bands.
func WaveTotals(rows []cohort.AgeWaveRow, v record.Variable) ([]Total, error) {
	t, err := Counts(rows, v)
	if err != nil {
		return nil, err
	}
	out := make([]Total, len(t.Waves))
	for j, w := range t.Waves {
		out[j].Label = fmt.Sprint(w)
		for i := range t.Bands {
			out[j].Value += int64(t.cells[i][j])
		}
	}
	return out, nil
}

// AgeTotals sums v per classified band over all waves.
func AgeTotals(rows []cohort.AgeWaveRow, v record.Variable) ([]Total, error) {
	t, err := Counts(rows, v)
	if err != nil {
		return nil, err
	}
	out := make([]Total, len(t.Bands))
	for i, b := range t.Bands {
		out[i].Label = string(b)
		for j := range t.Waves {
			out[i].Value += int64(t.cells[i][j])
		}
	}
	return out, nil
}
