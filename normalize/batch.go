package normalize

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/sartorproj/epiwave/cohort"
	"github.com/sartorproj/epiwave/record"
)

// VariableTables holds every table built for one outcome.
type VariableTables struct {
	Variable       record.Variable
	Counts         *Table
	WaveShare      *Table
	AgeShare       *Table
	PopulationRate *Table // nil without a population reference
	WaveTotals     []Total
	AgeTotals      []Total
}

// Set is the full output of the normalization stage.
type Set struct {
	Variables []VariableTables // in record.Variables order
	Cascade   []CascadeStage
}

// Tables returns the tables built for v.
func (s *Set) Tables(v record.Variable) (VariableTables, bool) {
	for _, vt := range s.Variables {
		if vt.Variable == v {
			return vt, true
		}
	}
	return VariableTables{}, false
}

// BuildAll builds the tables of every variable and the cascade. The
// computations are independent and run on up to workers goroutines.
func BuildAll(ctx context.Context, rows []cohort.AgeWaveRow, pop *record.Population, workers int) (*Set, error) {
	if workers < 1 {
		workers = 1
	}

	set := &Set{Variables: make([]VariableTables, len(record.Variables))}
	setMx := sync.Mutex{}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for i, v := range record.Variables {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			vt, err := buildVariable(rows, v, pop)
			if err != nil {
				return fmt.Errorf("build %s tables: %w", v, err)
			}

			setMx.Lock()
			defer setMx.Unlock()
			set.Variables[i] = vt
			return nil
		})
	}

	eg.Go(func() error {
		if err := egCtx.Err(); err != nil {
			return err
		}
		cascade, err := Cascade(rows, pop)
		if err != nil {
			return fmt.Errorf("build cascade: %w", err)
		}

		setMx.Lock()
		defer setMx.Unlock()
		set.Cascade = cascade
		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return set, nil
}

func buildVariable(rows []cohort.AgeWaveRow, v record.Variable, pop *record.Population) (VariableTables, error) {
	vt := VariableTables{Variable: v}
	var err error
	if vt.Counts, err = Counts(rows, v); err != nil {
		return vt, err
	}
	if vt.WaveShare, err = WaveShare(rows, v); err != nil {
		return vt, err
	}
	if vt.AgeShare, err = AgeShare(rows, v); err != nil {
		return vt, err
	}
	if pop != nil {
		if vt.PopulationRate, err = PopulationRate(rows, v, pop); err != nil {
			return vt, err
		}
	}
	if vt.WaveTotals, err = WaveTotals(rows, v); err != nil {
		return vt, err
	}
	if vt.AgeTotals, err = AgeTotals(rows, v); err != nil {
		return vt, err
	}
	return vt, nil
}
