package record

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrSchema is wrapped by every SchemaError.
var ErrSchema = errors.New("schema error")

// SchemaError reports the first malformed field of an input table.
type SchemaError struct {
	Row    int // zero-based data row, -1 for header problems
	Column string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("schema error: column %q: %s", e.Column, e.Reason)
	}
	return fmt.Sprintf("schema error: row %d, column %q: %s", e.Row, e.Column, e.Reason)
}

func (e *SchemaError) Unwrap() error {
	return ErrSchema
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("ageband", func(fl validator.FieldLevel) bool {
		return AgeBand(fl.Field().String()).Valid()
	})
	return v
}

// Validate checks one record.
func (r RawRecord) Validate() error {
	return validate.Struct(r)
}

// Validate checks every record and fails on the first malformed one.
func Validate(records []RawRecord) error {
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return toSchemaError(i, err)
		}
	}
	return nil
}

func toSchemaError(row int, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &SchemaError{
			Row:    row,
			Column: columnForField(fe.Field()),
			Reason: fmt.Sprintf("failed %q check on value %v", fe.Tag(), fe.Value()),
		}
	}
	return &SchemaError{Row: row, Reason: err.Error()}
}

func columnForField(field string) string {
	switch field {
	case "Date":
		return ColDate
	case "Sex":
		return ColSex
	case "AgeBand":
		return ColAgeBand
	case "Cases":
		return ColCases
	case "Hospitalizations":
		return ColHospitalizations
	case "ICU":
		return ColICU
	case "Deaths":
		return ColDeaths
	}
	return field
}
