package normalize

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/epiwave/cohort"
	"github.com/sartorproj/epiwave/record"
)

func row(band record.AgeBand, wave int, cases, hosp, icu, deaths int64) cohort.AgeWaveRow {
	return cohort.AgeWaveRow{
		AgeBand: band,
		Wave:    wave,
		Counts:  record.Counts{Cases: cases, Hospitalizations: hosp, ICU: icu, Deaths: deaths},
	}
}

func fixture() []cohort.AgeWaveRow {
	return []cohort.AgeWaveRow{
		row(record.Age20s, 1, 100, 10, 2, 0),
		row(record.Age20s, 2, 300, 12, 3, 1),
		row(record.Age50s, 1, 50, 20, 5, 2),
		row(record.Age50s, 2, 150, 30, 0, 0),
		row(record.Age80Plus, 1, 50, 40, 10, 8),
		row(record.Age80Plus, 2, 0, 5, 1, 1),
		row(record.AgeNC, 1, 1000, 1000, 1000, 1000),
		row(record.AgeNC, 3, 7, 0, 0, 0),
	}
}

func population(t *testing.T) *record.Population {
	pop := record.NewPopulation()
	require.NoError(t, pop.Add("20-29", 4000))
	require.NoError(t, pop.Add("20-29", 1000))
	require.NoError(t, pop.Add("50s", 2500))
	require.NoError(t, pop.Add("80+", 1250))
	require.NoError(t, pop.Add("NC", 99))
	require.NoError(t, pop.Add("total", 10000))
	return pop
}

func TestCountsExcludesNC(t *testing.T) {
	tbl, err := Counts(fixture(), record.Cases)
	require.NoError(t, err)

	assert.Equal(t, []record.AgeBand{record.Age20s, record.Age50s, record.Age80Plus}, tbl.Bands)
	assert.Equal(t, []int{1, 2, 3}, tbl.Waves)
	assert.Equal(t, 300.0, tbl.At(record.Age20s, 2))
	assert.Equal(t, 0.0, tbl.At(record.Age50s, 3))
	assert.True(t, Undefined(tbl.At(record.AgeNC, 1)))
	assert.False(t, tbl.Defined(record.Age20s, 9))
}

func TestWaveShareRowsSumToOne(t *testing.T) {
	tbl, err := WaveShare(fixture(), record.Cases)
	require.NoError(t, err)

	assert.Equal(t, ModeWaveShare, tbl.Mode)
	assert.InDelta(t, 0.5, tbl.At(record.Age20s, 1), 1e-12)
	assert.InDelta(t, 0.25, tbl.At(record.Age80Plus, 1), 1e-12)

	for _, w := range []int{1, 2} {
		sum := 0.0
		for _, b := range tbl.Bands {
			sum += tbl.At(b, w)
		}
		assert.InDelta(t, 1.0, sum, 1e-9, "wave %d", w)
	}

	// wave 3 only has unclassified records
	for _, b := range tbl.Bands {
		assert.True(t, Undefined(tbl.At(b, 3)))
	}

	rows, cols, values := tbl.Matrix()
	assert.Equal(t, []string{"1", "2", "3"}, rows)
	assert.Equal(t, []string{"20s", "50s", "80+"}, cols)
	assert.InDelta(t, 2.0/3.0, values[1][0], 1e-12)
}

func TestAgeShareColumnsSumToOne(t *testing.T) {
	tbl, err := AgeShare(fixture(), record.Hospitalizations)
	require.NoError(t, err)

	assert.Equal(t, RowsAreBands, tbl.Orientation)
	for _, b := range tbl.Bands {
		sum := 0.0
		for _, w := range tbl.Waves {
			sum += tbl.At(b, w)
		}
		assert.InDelta(t, 1.0, sum, 1e-9, "band %s", b)
	}
	assert.InDelta(t, 40.0/45.0, tbl.At(record.Age80Plus, 1), 1e-12)

	rows, cols, _ := tbl.Matrix()
	assert.Equal(t, []string{"20s", "50s", "80+"}, rows)
	assert.Equal(t, []string{"1", "2", "3"}, cols)
}

func TestPopulationRateRoundTrip(t *testing.T) {
	pop := population(t)
	rows := fixture()

	rate, err := PopulationRate(rows, record.Deaths, pop)
	require.NoError(t, err)
	counts, err := Counts(rows, record.Deaths)
	require.NoError(t, err)

	assert.Equal(t, ModePopulationRate, rate.Mode)
	assert.InDelta(t, 8.0/1250.0, rate.At(record.Age80Plus, 1), 1e-15)
	for _, b := range rate.Bands {
		n, ok := pop.Of(b)
		require.True(t, ok)
		for _, w := range rate.Waves {
			assert.InDelta(t, counts.At(b, w), math.Round(rate.At(b, w)*float64(n)), 1e-9)
		}
	}
}

func TestPopulationRateMissingBand(t *testing.T) {
	pop := record.NewPopulation()
	require.NoError(t, pop.Add("20s", 10))

	_, err := PopulationRate(fixture(), record.Cases, pop)
	assert.True(t, errors.Is(err, ErrMissingPopulation))

	_, err = PopulationRate(fixture(), record.Cases, nil)
	assert.True(t, errors.Is(err, ErrMissingPopulation))
}

func TestPopulationRateZeroPopulation(t *testing.T) {
	pop := population(t)
	require.NoError(t, pop.Add("30s", 0))

	rate, err := PopulationRate([]cohort.AgeWaveRow{row(record.Age30s, 1, 5, 0, 0, 0)}, record.Cases, pop)
	require.NoError(t, err)
	assert.True(t, Undefined(rate.At(record.Age30s, 1)))
}

func TestRatioUndefinedOnZeroDenominator(t *testing.T) {
	tbl, err := Ratio(fixture(), record.Hospitalizations, record.Cases)
	require.NoError(t, err)

	assert.InDelta(t, 0.1, tbl.At(record.Age20s, 1), 1e-12)
	// 80+ has no cases but five hospitalizations in wave 2
	assert.True(t, Undefined(tbl.At(record.Age80Plus, 2)))
	assert.Equal(t, "hospitalizations/cases", tbl.Name)

	// laid out like the wave by age heatmaps
	assert.Equal(t, RowsAreWaves, tbl.Orientation)
	rows, cols, values := tbl.Matrix()
	assert.Equal(t, []string{"1", "2", "3"}, rows)
	assert.Equal(t, []string{"20s", "50s", "80+"}, cols)
	assert.InDelta(t, 0.4, values[0][1], 1e-12)
	assert.True(t, Undefined(values[1][2]))

	deathsICU, err := Ratio(fixture(), record.Deaths, record.ICU)
	require.NoError(t, err)
	// 0/0
	assert.True(t, Undefined(deathsICU.At(record.Age50s, 2)))
}

func TestCascade(t *testing.T) {
	stages, err := Cascade(fixture(), population(t))
	require.NoError(t, err)
	require.Len(t, stages, 3)

	assert.Equal(t, record.Hospitalizations, stages[0].Numerator)
	assert.Equal(t, record.Cases, stages[0].Denominator)
	assert.Equal(t, record.ICU, stages[1].Numerator)
	assert.Equal(t, record.Deaths, stages[2].Numerator)
	assert.InDelta(t, 0.8, stages[2].Ratio.At(record.Age80Plus, 1), 1e-12)
	assert.InDelta(t, 40.0/1250.0, stages[0].Rate.At(record.Age80Plus, 1), 1e-12)

	stages, err = Cascade(fixture(), nil)
	require.NoError(t, err)
	assert.Nil(t, stages[0].Rate)
}

func TestUnknownVariable(t *testing.T) {
	_, err := Counts(fixture(), "tests")
	assert.True(t, errors.Is(err, ErrUnknownVariable))

	_, err = Ratio(fixture(), record.Cases, "tests")
	assert.True(t, errors.Is(err, ErrUnknownVariable))
}

func TestTotals(t *testing.T) {
	waves, err := WaveTotals(fixture(), record.Cases)
	require.NoError(t, err)
	assert.Equal(t, []Total{{"1", 200}, {"2", 450}, {"3", 0}}, waves)

	ages, err := AgeTotals(fixture(), record.Cases)
	require.NoError(t, err)
	assert.Equal(t, []Total{{"20s", 400}, {"50s", 200}, {"80+", 50}}, ages)
}

func TestBuildAll(t *testing.T) {
	set, err := BuildAll(context.Background(), fixture(), population(t), 2)
	require.NoError(t, err)

	require.Len(t, set.Variables, len(record.Variables))
	for i, v := range record.Variables {
		vt := set.Variables[i]
		assert.Equal(t, v, vt.Variable)
		assert.NotNil(t, vt.Counts)
		assert.NotNil(t, vt.WaveShare)
		assert.NotNil(t, vt.AgeShare)
		assert.NotNil(t, vt.PopulationRate)
		assert.NotEmpty(t, vt.WaveTotals)
	}
	assert.Len(t, set.Cascade, 3)

	icu, ok := set.Tables(record.ICU)
	require.True(t, ok)
	assert.Equal(t, 5.0, icu.Counts.At(record.Age50s, 1))

	set, err = BuildAll(context.Background(), fixture(), nil, 0)
	require.NoError(t, err)
	assert.Nil(t, set.Variables[0].PopulationRate)
}

func TestBuildAllPropagatesErrors(t *testing.T) {
	pop := record.NewPopulation()
	_, err := BuildAll(context.Background(), fixture(), pop, 4)
	assert.True(t, errors.Is(err, ErrMissingPopulation))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = BuildAll(ctx, fixture(), nil, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
