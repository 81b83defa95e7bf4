package record

import (
	"fmt"
	"strings"
)

// Canonical column names.
const (
	ColDate             = "date"
	ColProvince         = "province"
	ColSex              = "sex"
	ColAgeBand          = "age"
	ColCases            = "cases"
	ColHospitalizations = "hospitalizations"
	ColICU              = "icu"
	ColDeaths           = "deaths"
)

// RequiredColumns must all be present after header mapping.
var RequiredColumns = []string{
	ColDate, ColProvince, ColSex, ColAgeBand,
	ColCases, ColHospitalizations, ColICU, ColDeaths,
}

// sourceColumns maps the ministry dataset headers to canonical names.
var sourceColumns = map[string]string{
	"provincia_iso": ColProvince,
	"sexo":          ColSex,
	"grupo_edad":    ColAgeBand,
	"fecha":         ColDate,
	"num_casos":     ColCases,
	"num_hosp":      ColHospitalizations,
	"num_uci":       ColICU,
	"num_def":       ColDeaths,
}

var sourceAgeBands = map[string]AgeBand{
	"0-9":   Age0s,
	"10-19": Age10s,
	"20-29": Age20s,
	"30-39": Age30s,
	"40-49": Age40s,
	"50-59": Age50s,
	"60-69": Age60s,
	"70-79": Age70s,
	"80+":   Age80Plus,
	"NC":    AgeNC,
}

var sourceSexes = map[string]Sex{
	"H":  SexMale,
	"M":  SexFemale,
	"NC": SexUnknown,
}

// CanonicalColumn maps a header to its canonical name. Unknown headers are
// returned lower-cased and trimmed so extra columns pass through untouched.
func CanonicalColumn(header string) string {
	h := strings.ToLower(strings.TrimSpace(strings.Trim(strings.TrimSpace(header), "\"")))
	if c, ok := sourceColumns[h]; ok {
		return c
	}
	return h
}

// ParseAgeBand accepts a source age code or a canonical band.
func ParseAgeBand(code string) (AgeBand, error) {
	code = strings.TrimSpace(code)
	if b, ok := sourceAgeBands[code]; ok {
		return b, nil
	}
	if b := AgeBand(code); b.Valid() {
		return b, nil
	}
	return "", fmt.Errorf("unknown age band %q", code)
}

// ParseSex accepts a source sex code or a canonical value.
func ParseSex(code string) (Sex, error) {
	code = strings.TrimSpace(code)
	if s, ok := sourceSexes[code]; ok {
		return s, nil
	}
	switch s := Sex(strings.ToLower(code)); s {
	case SexMale, SexFemale, SexUnknown:
		return s, nil
	}
	return "", fmt.Errorf("unknown sex %q", code)
}
