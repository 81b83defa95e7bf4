// Package ingest reads the raw record and population tables from CSV.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sartorproj/epiwave/record"
)

// ColPopulation is the value column of a population table.
const ColPopulation = "population"

// CSVOptions holds options for CSV loading.
type CSVOptions struct {
	DateFormat string // Date format (default: "2006-01-02")
	Delimiter  rune   // Field delimiter (default: ',')
	SkipRows   int    // Number of rows to skip before the header
}

// DefaultCSVOptions returns default options for CSV loading.
func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		DateFormat: "2006-01-02",
		Delimiter:  ',',
	}
}

// LoadRecords loads raw records from a CSV file.
func LoadRecords(filename string, opts *CSVOptions) ([]record.RawRecord, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadRecordsFromReader(file, opts)
}

// LoadRecordsFromReader loads raw records from an io.Reader. Headers go
// through the schema mapping, so both the source dataset headers and the
// canonical names are accepted. The first malformed row aborts the load.
func LoadRecordsFromReader(r io.Reader, opts *CSVOptions) ([]record.RawRecord, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}

	reader, idx, err := open(r, opts, record.RequiredColumns)
	if err != nil {
		return nil, err
	}

	var records []record.RawRecord
	for row := 0; ; row++ {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		rec, err := parseRecord(fields, idx, opts, row)
		if err != nil {
			return nil, err
		}
		if err := record.Validate([]record.RawRecord{rec}); err != nil {
			return nil, withRow(err, row)
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, errors.New("no records found in CSV")
	}
	return records, nil
}

// LoadPopulation loads a population reference table from a CSV file.
func LoadPopulation(filename string, opts *CSVOptions) (*record.Population, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadPopulationFromReader(file, opts)
}

// LoadPopulationFromReader loads a population table with an age column and
// a population column. Repeated bands are summed; a "total" row is kept
// apart from the bands.
func LoadPopulationFromReader(r io.Reader, opts *CSVOptions) (*record.Population, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}

	reader, idx, err := open(r, opts, []string{record.ColAgeBand, ColPopulation})
	if err != nil {
		return nil, err
	}

	pop := record.NewPopulation()
	for row := 0; ; row++ {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		n, err := parseCount(fields, idx, ColPopulation, row)
		if err != nil {
			return nil, err
		}
		if err := pop.Add(field(fields, idx, record.ColAgeBand), n); err != nil {
			return nil, withRow(err, row)
		}
	}
	return pop, nil
}

func open(r io.Reader, opts *CSVOptions, required []string) (*csv.Reader, map[string]int, error) {
	reader := csv.NewReader(r)
	reader.Comma = opts.Delimiter
	reader.TrimLeadingSpace = true
	// preamble rows may have any number of fields
	reader.FieldsPerRecord = -1

	// Skip rows if needed
	for i := 0; i < opts.SkipRows; i++ {
		if _, err := reader.Read(); err != nil {
			return nil, nil, err
		}
	}

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	reader.FieldsPerRecord = len(header)

	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		idx[record.CanonicalColumn(h)] = i
	}
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			return nil, nil, &record.SchemaError{Row: -1, Column: col, Reason: "missing required column"}
		}
	}
	return reader, idx, nil
}

func field(fields []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(fields) {
		return ""
	}
	return strings.TrimSpace(strings.Trim(fields[i], "\""))
}

func parseRecord(fields []string, idx map[string]int, opts *CSVOptions, row int) (record.RawRecord, error) {
	var rec record.RawRecord

	dateStr := field(fields, idx, record.ColDate)
	date, err := time.Parse(opts.DateFormat, dateStr)
	if err != nil {
		return rec, &record.SchemaError{Row: row, Column: record.ColDate, Reason: fmt.Sprintf("invalid date %q", dateStr)}
	}
	rec.Date = record.Day(date)
	rec.Province = field(fields, idx, record.ColProvince)

	if rec.Sex, err = record.ParseSex(field(fields, idx, record.ColSex)); err != nil {
		return rec, &record.SchemaError{Row: row, Column: record.ColSex, Reason: err.Error()}
	}
	if rec.AgeBand, err = record.ParseAgeBand(field(fields, idx, record.ColAgeBand)); err != nil {
		return rec, &record.SchemaError{Row: row, Column: record.ColAgeBand, Reason: err.Error()}
	}

	var counts [4]int64
	for k, col := range []string{record.ColCases, record.ColHospitalizations, record.ColICU, record.ColDeaths} {
		if counts[k], err = parseCount(fields, idx, col, row); err != nil {
			return rec, err
		}
	}
	rec.Counts = record.CountsFromSlice(counts)
	return rec, nil
}

func parseCount(fields []string, idx map[string]int, col string, row int) (int64, error) {
	s := field(fields, idx, col)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, &record.SchemaError{Row: row, Column: col, Reason: fmt.Sprintf("non-numeric value %q", s)}
	}
	return n, nil
}

func withRow(err error, row int) error {
	var se *record.SchemaError
	if errors.As(err, &se) {
		se.Row = row
	}
	return err
}
