package main

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sartorproj/epiwave/normalize"
	"github.com/sartorproj/epiwave/pipeline"
	"github.com/sartorproj/epiwave/record"
)

const dateLayout = "2006-01-02"

// DailyPoint is one smoothed day for JSON export
type DailyPoint struct {
	Date             string `json:"date"`
	AgeBand          string `json:"age_band,omitempty"`
	Cases            int64  `json:"cases"`
	Hospitalizations int64  `json:"hospitalizations"`
	ICU              int64  `json:"icu"`
	Deaths           int64  `json:"deaths"`
}

// AgeWaveTotal is one raw (band, wave) total
type AgeWaveTotal struct {
	AgeBand          string `json:"age_band"`
	Wave             int    `json:"wave"`
	Cases            int64  `json:"cases"`
	Hospitalizations int64  `json:"hospitalizations"`
	ICU              int64  `json:"icu"`
	Deaths           int64  `json:"deaths"`
}

// SegmentResult describes one wave
type SegmentResult struct {
	Wave      int    `json:"wave"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Days      int    `json:"days"`
	PeakDate  string `json:"peak_date"`
	PeakValue int64  `json:"peak_value"`
}

// WaveResult holds the partition of the timeline
type WaveResult struct {
	Status     string          `json:"status"`
	Peaks      []string        `json:"peaks"`
	Valleys    []string        `json:"valleys"`
	Boundaries []string        `json:"boundaries"`
	Segments   []SegmentResult `json:"segments"`
}

// TableResult is a heatmap ready matrix. Undefined cells are null.
type TableResult struct {
	Name   string       `json:"name"`
	Mode   string       `json:"mode"`
	Rows   []string     `json:"rows"`
	Cols   []string     `json:"cols"`
	Values [][]*float64 `json:"values"`
}

// TotalResult is one bar
type TotalResult struct {
	Label string `json:"label"`
	Value int64  `json:"value"`
}

// VariableResult holds every table of one outcome
type VariableResult struct {
	Variable       string        `json:"variable"`
	Counts         *TableResult  `json:"counts"`
	WaveShare      *TableResult  `json:"wave_share"`
	AgeShare       *TableResult  `json:"age_share"`
	PopulationRate *TableResult  `json:"population_rate,omitempty"`
	WaveTotals     []TotalResult `json:"wave_totals"`
	AgeTotals      []TotalResult `json:"age_totals"`
}

// CascadeResult is one severity stage
type CascadeResult struct {
	Numerator   string       `json:"numerator"`
	Denominator string       `json:"denominator"`
	Ratio       *TableResult `json:"ratio"`
	Rate        *TableResult `json:"rate,omitempty"`
}

// PopulationResult echoes the population reference
type PopulationResult struct {
	Bands         []TotalResult `json:"bands"`
	GrandTotal    int64         `json:"grand_total"`
	HasTotalEntry bool          `json:"has_total_entry"`
}

// OutputData holds all results for visualization
type OutputData struct {
	RunID      string            `json:"run_id"`
	Onset      string            `json:"onset"`
	Degraded   bool              `json:"degraded"`
	Daily      []DailyPoint      `json:"daily"`
	AgeDaily   []DailyPoint      `json:"age_daily"`
	AgeWave    []AgeWaveTotal    `json:"age_wave"`
	Waves      WaveResult        `json:"waves"`
	Variables  []VariableResult  `json:"variables"`
	Cascade    []CascadeResult   `json:"cascade"`
	Population *PopulationResult `json:"population,omitempty"`
}

func buildOutput(res *pipeline.Result, pop *record.Population, precision int32) *OutputData {
	out := &OutputData{
		RunID:    res.RunID,
		Onset:    res.Onset.Format(dateLayout),
		Degraded: res.Degraded(),
	}

	for _, p := range res.Daily {
		out.Daily = append(out.Daily, DailyPoint{
			Date: p.Date.Format(dateLayout), Cases: p.Cases,
			Hospitalizations: p.Hospitalizations, ICU: p.ICU, Deaths: p.Deaths,
		})
	}
	for _, r := range res.AgeDaily {
		out.AgeDaily = append(out.AgeDaily, DailyPoint{
			Date: r.Date.Format(dateLayout), AgeBand: string(r.AgeBand), Cases: r.Cases,
			Hospitalizations: r.Hospitalizations, ICU: r.ICU, Deaths: r.Deaths,
		})
	}
	for _, r := range res.AgeWave {
		out.AgeWave = append(out.AgeWave, AgeWaveTotal{
			AgeBand: string(r.AgeBand), Wave: r.Wave, Cases: r.Cases,
			Hospitalizations: r.Hospitalizations, ICU: r.ICU, Deaths: r.Deaths,
		})
	}

	w := res.Waves
	out.Waves = WaveResult{
		Status:     w.Status.String(),
		Peaks:      dates(w.Peaks),
		Valleys:    dates(w.Valleys),
		Boundaries: dates(w.Boundaries),
	}
	for _, s := range w.Segments {
		out.Waves.Segments = append(out.Waves.Segments, SegmentResult{
			Wave: s.Wave, Start: s.Start.Format(dateLayout), End: s.End.Format(dateLayout),
			Days: s.Days, PeakDate: s.PeakDate.Format(dateLayout), PeakValue: s.PeakValue,
		})
	}

	for _, vt := range res.Tables.Variables {
		out.Variables = append(out.Variables, VariableResult{
			Variable:       string(vt.Variable),
			Counts:         exportTable(vt.Counts, precision),
			WaveShare:      exportTable(vt.WaveShare, precision),
			AgeShare:       exportTable(vt.AgeShare, precision),
			PopulationRate: exportTable(vt.PopulationRate, precision),
			WaveTotals:     totals(vt.WaveTotals),
			AgeTotals:      totals(vt.AgeTotals),
		})
	}
	for _, st := range res.Tables.Cascade {
		out.Cascade = append(out.Cascade, CascadeResult{
			Numerator:   string(st.Numerator),
			Denominator: string(st.Denominator),
			Ratio:       exportTable(st.Ratio, precision),
			Rate:        exportTable(st.Rate, precision),
		})
	}

	if pop != nil {
		pr := &PopulationResult{}
		for _, b := range pop.Bands() {
			pr.Bands = append(pr.Bands, TotalResult{Label: string(b.AgeBand), Value: b.Population})
		}
		pr.GrandTotal, pr.HasTotalEntry = pop.GrandTotal()
		out.Population = pr
	}
	return out
}

func exportTable(t *normalize.Table, precision int32) *TableResult {
	if t == nil {
		return nil
	}
	rows, cols, values := t.Matrix()
	tr := &TableResult{Name: t.Name, Mode: string(t.Mode), Rows: rows, Cols: cols}
	tr.Values = make([][]*float64, len(values))
	for i, row := range values {
		tr.Values[i] = make([]*float64, len(row))
		for j, v := range row {
			tr.Values[i][j] = round(v, precision)
		}
	}
	return tr
}

// round returns nil for undefined or infinite cells.
func round(v float64, precision int32) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	r := decimal.NewFromFloat(v).Round(precision).InexactFloat64()
	return &r
}

func totals(in []normalize.Total) []TotalResult {
	out := make([]TotalResult, len(in))
	for i, t := range in {
		out[i] = TotalResult{Label: t.Label, Value: t.Value}
	}
	return out
}

func dates(in []time.Time) []string {
	out := make([]string, len(in))
	for i, d := range in {
		out[i] = d.Format(dateLayout)
	}
	return out
}
