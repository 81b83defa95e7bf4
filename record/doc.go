// Package record defines the canonical schema of the daily, age-stratified
// case/hospitalization/ICU/death report.
//
// Source datasets use their own column headers and age codes. They are mapped
// once, at ingestion, through a fixed table:
//
//	record.CanonicalColumn("num_casos") // "cases"
//	band, _ := record.ParseAgeBand("20-29") // record.Age20s
//	sex, _ := record.ParseSex("H")          // record.SexMale
//
// Records are validated before they enter the pipeline:
//
//	if err := record.Validate(records); err != nil {
//	    var se *record.SchemaError
//	    if errors.As(err, &se) {
//	        fmt.Println(se.Row, se.Column)
//	    }
//	}
package record
