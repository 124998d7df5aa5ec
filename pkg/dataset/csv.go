package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/scarnyc/spacewalks/pkg/utils"
	"github.com/scarnyc/spacewalks/pkg/validation"
)

var dateLayouts = []string{
	time.DateOnly,
	"1/2/2006",
	time.DateTime,
	time.RFC3339,
	"2006-01-02T15:04:05",
}

var ErrMissingColumn = errors.New("missing column")

type DecodeError struct {
	Line   int
	Column string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Err)
	}

	return fmt.Sprintf("line %d, column %q: %s", e.Line, e.Column, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}

	return time.Time{}, fmt.Errorf("unsupported date %q", s)
}

// parseDuration accepts minutes as a number or H:MM clock notation.
func parseDuration(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if hours, minutes, ok := strings.Cut(s, ":"); ok {
		h, err := strconv.Atoi(hours)
		if err != nil {
			return 0, fmt.Errorf("unsupported duration %q", s)
		}

		m, err := strconv.Atoi(minutes)
		if err != nil || m >= 60 {
			return 0, fmt.Errorf("unsupported duration %q", s)
		}

		return float64(h*60 + m), nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("unsupported duration %q", s)
	}

	return v, nil
}

func columnIndex(header []string) (map[string]int, error) {
	byName := make(map[string]int, len(header))
	for i, name := range header {
		byName[utils.NormalizeHeader(strings.TrimPrefix(name, "\ufeff"))] = i
	}

	index := make(map[string]int, len(RequiredColumns))

	for _, column := range RequiredColumns {
		i, ok := byName[utils.NormalizeHeader(column)]
		if !ok {
			return nil, &DecodeError{Line: 1, Column: column, Err: ErrMissingColumn}
		}

		index[column] = i
	}

	return index, nil
}

// Decode reads a spacewalk CSV. A missing column or broken CSV syntax fails
// the decode; rows with an unusable date, duration or country are skipped,
// logged and listed in Table.Skipped.
//
//nolint:funlen
func Decode(r io.Reader, source string) (*Table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", source, err)
	}

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", source, err)
	}

	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	validate, err := validation.NewValidator()
	if err != nil {
		return nil, err
	}

	table := &Table{
		Columns:   header,
		Source:    source,
		FetchedAt: time.Now().UTC(),
		raw:       raw,
	}

	skip := func(decodeErr *DecodeError) {
		logrus.WithFields(logrus.Fields{
			"source": source,
			"line":   decodeErr.Line,
			"column": decodeErr.Column,
		}).Warnf("Skipping malformed row: %v", decodeErr.Err)

		table.Skipped = append(table.Skipped, decodeErr)
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", source, err)
		}

		line, _ := reader.FieldPos(0)

		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}

		field := func(column string) string {
			if i := index[column]; i < len(row) {
				return strings.TrimSpace(row[i])
			}

			return ""
		}

		date, err := parseDate(field(ColumnDate))
		if err != nil {
			skip(&DecodeError{Line: line, Column: ColumnDate, Err: err})

			continue
		}

		duration, err := parseDuration(field(ColumnDuration))
		if err != nil {
			skip(&DecodeError{Line: line, Column: ColumnDuration, Err: err})

			continue
		}

		record := Record{
			Ordinal:         len(table.Records) + 1,
			Date:            date,
			DurationMinutes: duration,
			Country:         field(ColumnCountry),
			Vehicle:         field(ColumnVehicle),
			Crew:            field(ColumnCrew),
			Purpose:         field(ColumnPurpose),
		}

		if err := validate.Struct(record); err != nil {
			skip(&DecodeError{Line: line, Column: validationColumn(err), Err: err})

			continue
		}

		record.ID = recordID(record.Ordinal, record.Date, record.Vehicle, record.Crew)
		table.Records = append(table.Records, record)
	}

	return table, nil
}

func validationColumn(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return ""
	}

	switch errs[0].Field() {
	case "DurationMinutes":
		return ColumnDuration
	case "Country":
		return ColumnCountry
	default:
		return errs[0].Field()
	}
}
