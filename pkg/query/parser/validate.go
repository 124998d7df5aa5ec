package parser

import (
	"fmt"
	"strings"
	"time"
)

/*

Type-checks the untyped tree against the spacewalk columns.

Grammar rule: [prefix.]key operator value

The prefix is optional and may only be "eva" or "attribute".

"duration" takes numbers and the ordering operators.
"date" takes a quoted YYYY-MM-DD string and the ordering operators.
Text keys take quoted strings with =, !=, LIKE and ILIKE, or string lists with IN and NOT IN.

*/

type Field int

const (
	Date Field = iota
	Duration
	Country
	Vehicle
	Crew
	Purpose
)

type FieldKind int

const (
	TextField FieldKind = iota
	NumericField
	DateField
)

//nolint:gochecknoglobals
var fieldNames = [...]string{
	Date:     "date",
	Duration: "duration",
	Country:  "country",
	Vehicle:  "vehicle",
	Crew:     "crew",
	Purpose:  "purpose",
}

//nolint:gochecknoglobals
var fieldColumns = [...]string{
	Date:     "date",
	Duration: "duration_minutes",
	Country:  "country",
	Vehicle:  "vehicle",
	Crew:     "crew",
	Purpose:  "purpose",
}

func (f Field) String() string {
	return fieldNames[f]
}

// Column is the store column backing the field.
func (f Field) Column() string {
	return fieldColumns[f]
}

func (f Field) Kind() FieldKind {
	switch f {
	case Duration:
		return NumericField
	case Date:
		return DateField
	case Country, Vehicle, Crew, Purpose:
		return TextField
	}

	return TextField
}

type ValidCompareExpr struct {
	Field    Field
	Operator OperatorKind
	Value    any
}

type ValidationError struct {
	message string
}

func (e *ValidationError) Error() string {
	return e.message
}

func NewValidationError(format string, a ...any) *ValidationError {
	return &ValidationError{message: fmt.Sprintf(format, a...)}
}

func validatePrefix(prefix string) error {
	switch strings.ToLower(prefix) {
	case "", "eva", "evas", "attribute", "attributes", "attr":
		return nil
	default:
		return NewValidationError("invalid identifier %q. Allowed values are [eva, attribute]", prefix)
	}
}

// ParseField resolves a key or one of its aliases to a field.
func ParseField(key string) (Field, error) {
	switch strings.Join(strings.Fields(strings.ToLower(key)), " ") {
	case "date":
		return Date, nil
	case "duration", "duration_minutes", "duration (in minutes)", "minutes":
		return Duration, nil
	case "country":
		return Country, nil
	case "vehicle":
		return Vehicle, nil
	case "crew":
		return Crew, nil
	case "purpose":
		return Purpose, nil
	default:
		return -1, NewValidationError(
			"invalid key %q. Allowed values are %v",
			key,
			fieldNames,
		)
	}
}

func validateValue(field Field, op OperatorKind, value Value) (any, error) {
	switch field.Kind() {
	case NumericField:
		if _, ok := value.(NumberExpr); !ok || !op.IsComparison() {
			return nil, NewValidationError(
				"%s only supports numeric comparisons (=, !=, <, <=, >, >=). Found %s %s",
				field, op, value,
			)
		}

		return value.value(), nil
	case DateField:
		str, ok := value.(StringExpr)
		if !ok || !op.IsComparison() {
			return nil, NewValidationError(
				"%s only supports comparisons with a quoted YYYY-MM-DD value. Found %s %s",
				field, op, value,
			)
		}

		date, err := time.Parse(time.DateOnly, strings.TrimSpace(str.Value))
		if err != nil {
			return nil, NewValidationError("invalid %s value %q, expected YYYY-MM-DD", field, str.Value)
		}

		return date.Format(time.DateOnly), nil
	case TextField:
		switch value.(type) {
		case StringListExpr:
			if op != In && op != NotIn {
				return nil, NewValidationError("a list of values requires IN or NOT IN")
			}
		case StringExpr:
			if op != Equals && op != NotEquals && op != Like && op != ILike {
				return nil, NewValidationError(
					"%s only supports =, !=, LIKE, ILIKE, IN and NOT IN. Found %s",
					field, op,
				)
			}
		default:
			return nil, NewValidationError("expected a quoted string value for %s. Found %s", field, value)
		}

		return value.value(), nil
	}

	return nil, NewValidationError("unsupported field %s", field)
}

// ValidateExpression type-checks one comparison.
func ValidateExpression(expression *CompareExpr) (*ValidCompareExpr, error) {
	if err := validatePrefix(expression.Left.Prefix); err != nil {
		return nil, fmt.Errorf("error on parsing filter expression: %w", err)
	}

	field, err := ParseField(expression.Left.Key)
	if err != nil {
		return nil, fmt.Errorf("error on parsing filter expression: %w", err)
	}

	value, err := validateValue(field, expression.Operator, expression.Right)
	if err != nil {
		return nil, fmt.Errorf("error on parsing filter expression: %w", err)
	}

	return &ValidCompareExpr{
		Field:    field,
		Operator: expression.Operator,
		Value:    value,
	}, nil
}
