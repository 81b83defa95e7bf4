package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/epiwave/record"
)

const sourceCSV = `provincia_iso,sexo,grupo_edad,fecha,num_casos,num_hosp,num_uci,num_def
M,H,0-9,2020-03-01,3,0,0,0
M,M,80+,2020-03-01,5,2,1,1
B,NC,NC,2020-03-02,1,0,0,0
`

func TestLoadRecordsFromReaderSourceHeaders(t *testing.T) {
	records, err := LoadRecordsFromReader(strings.NewReader(sourceCSV), nil)
	require.NoError(t, err)
	require.Len(t, records, 3)

	first := records[0]
	assert.Equal(t, time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC), first.Date)
	assert.Equal(t, "M", first.Province)
	assert.Equal(t, record.SexMale, first.Sex)
	assert.Equal(t, record.Age0s, first.AgeBand)
	assert.Equal(t, int64(3), first.Cases)

	assert.Equal(t, record.SexFemale, records[1].Sex)
	assert.Equal(t, record.Age80Plus, records[1].AgeBand)
	assert.Equal(t, record.Counts{Cases: 5, Hospitalizations: 2, ICU: 1, Deaths: 1}, records[1].Counts)

	assert.Equal(t, record.SexUnknown, records[2].Sex)
	assert.Equal(t, record.AgeNC, records[2].AgeBand)
}

func TestLoadRecordsFromReaderCanonicalHeaders(t *testing.T) {
	data := "date;province;sex;age;cases;hospitalizations;icu;deaths\n" +
		"01/04/2020;SE;female;30s;10;1;0;0\n"

	opts := &CSVOptions{DateFormat: "02/01/2006", Delimiter: ';'}
	records, err := LoadRecordsFromReader(strings.NewReader(data), opts)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, time.Date(2020, 4, 1, 0, 0, 0, 0, time.UTC), records[0].Date)
	assert.Equal(t, record.Age30s, records[0].AgeBand)
}

func TestLoadRecordsFromReaderSchemaErrors(t *testing.T) {
	header := "provincia_iso,sexo,grupo_edad,fecha,num_casos,num_hosp,num_uci,num_def\n"

	tests := []struct {
		name   string
		data   string
		row    int
		column string
	}{
		{
			name:   "missing column",
			data:   "provincia_iso,sexo,grupo_edad,fecha,num_casos,num_hosp,num_uci\nM,H,0-9,2020-03-01,1,0,0\n",
			row:    -1,
			column: record.ColDeaths,
		},
		{
			name:   "non-numeric counter",
			data:   header + "M,H,0-9,2020-03-01,1,0,0,0\nM,H,0-9,2020-03-02,x,0,0,0\n",
			row:    1,
			column: record.ColCases,
		},
		{
			name:   "negative counter",
			data:   header + "M,H,0-9,2020-03-01,1,-2,0,0\n",
			row:    0,
			column: record.ColHospitalizations,
		},
		{
			name:   "bad date",
			data:   header + "M,H,0-9,2020-13-01,1,0,0,0\n",
			row:    0,
			column: record.ColDate,
		},
		{
			name:   "bad age band",
			data:   header + "M,H,0-5,2020-03-01,1,0,0,0\n",
			row:    0,
			column: record.ColAgeBand,
		},
		{
			name:   "bad sex",
			data:   header + "M,X,0-9,2020-03-01,1,0,0,0\n",
			row:    0,
			column: record.ColSex,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRecordsFromReader(strings.NewReader(tt.data), nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, record.ErrSchema))

			var se *record.SchemaError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.row, se.Row)
			assert.Equal(t, tt.column, se.Column)
		})
	}
}

func TestLoadRecordsFromReaderEmpty(t *testing.T) {
	_, err := LoadRecordsFromReader(strings.NewReader(strings.SplitN(sourceCSV, "\n", 2)[0]+"\n"), nil)
	assert.Error(t, err)
}

func TestLoadRecordsSkipRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "records.csv")
	require.NoError(t, os.WriteFile(path, []byte("# exported 2020-05-01\n"+sourceCSV), 0o600))

	records, err := LoadRecords(path, &CSVOptions{DateFormat: "2006-01-02", Delimiter: ',', SkipRows: 1})
	require.NoError(t, err)
	assert.Len(t, records, 3)

	_, err = LoadRecords(filepath.Join(dir, "missing.csv"), nil)
	assert.Error(t, err)
}

func TestLoadRecordsFromReaderPreamble(t *testing.T) {
	tests := []struct {
		name     string
		preamble string
		skip     int
	}{
		{"single field", "exported by ministry\n", 1},
		{"wider than header", "a,b,c,d,e,f,g,h,i,j\n", 1},
		{"two rows", "source,ministry\nversion,2\n", 2},
	}

	body := "date, province ,sex,age,cases,hospitalizations,icu,deaths\n" +
		"2020-03-01,M,male,0s,2,0,0,0\n"

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultCSVOptions()
			opts.SkipRows = tt.skip
			records, err := LoadRecordsFromReader(strings.NewReader(tt.preamble+body), opts)
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.Equal(t, "M", records[0].Province)
		})
	}
}

func TestLoadPopulationFromReader(t *testing.T) {
	data := `grupo_edad,population
0-9,1000
10-19,1200
0-9,500
NC,10
Total,5000
`
	pop, err := LoadPopulationFromReader(strings.NewReader(data), nil)
	require.NoError(t, err)

	n, ok := pop.Of(record.Age0s)
	require.True(t, ok)
	assert.Equal(t, int64(1500), n)

	_, ok = pop.Of(record.AgeNC)
	assert.False(t, ok)

	total, present := pop.GrandTotal()
	assert.True(t, present)
	assert.Equal(t, int64(5000), total)
	assert.Len(t, pop.Bands(), 2)
}

func TestLoadPopulationFromReaderErrors(t *testing.T) {
	_, err := LoadPopulationFromReader(strings.NewReader("age,people\n0-9,1\n"), nil)
	assert.True(t, errors.Is(err, record.ErrSchema))

	_, err = LoadPopulationFromReader(strings.NewReader("age,population\n0-9,1\n10-19,-4\n"), nil)
	var se *record.SchemaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 1, se.Row)

	_, err = LoadPopulationFromReader(strings.NewReader("age,population\n0-9,many\n"), nil)
	require.True(t, errors.As(err, &se))
	assert.Equal(t, ColPopulation, se.Column)
}
