package dataset

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Column names of the NASA spacewalk CSV.
const (
	ColumnDate     = "Date"
	ColumnDuration = "Duration (in Minutes)"
	ColumnCountry  = "Country"
	ColumnVehicle  = "Vehicle"
	ColumnCrew     = "Crew"
	ColumnPurpose  = "Purpose"
)

var RequiredColumns = []string{
	ColumnDate,
	ColumnDuration,
	ColumnCountry,
	ColumnVehicle,
	ColumnCrew,
	ColumnPurpose,
}

// recordNamespace seeds the name-based record IDs.
var recordNamespace = uuid.MustParse("6f1c9e7a-3b0d-5c2e-9a41-2d8e7b6c5f30")

// Record is one spacewalk (EVA).
type Record struct {
	ID              string
	Ordinal         int
	Date            time.Time `validate:"required"`
	DurationMinutes float64   `validate:"gte=0"`
	Country         string    `validate:"required"`
	Vehicle         string
	Crew            string
	Purpose         string
}

func recordID(ordinal int, date time.Time, vehicle, crew string) string {
	name := fmt.Sprintf("%d|%s|%s|%s", ordinal, date.Format(time.DateOnly), vehicle, crew)

	return uuid.NewSHA1(recordNamespace, []byte(name)).String()
}

// Table is an immutable, fully decoded dataset.
type Table struct {
	Records   []Record
	Columns   []string
	Source    string
	FetchedAt time.Time
	// FromSnapshot is set when the primary source failed and the table
	// came from the last snapshot.
	FromSnapshot bool
	// Skipped lists the rows left out because they could not be plotted.
	Skipped []*DecodeError

	raw []byte
}

func (t *Table) Len() int {
	return len(t.Records)
}

// Raw returns the CSV bytes the table was decoded from.
func (t *Table) Raw() []byte {
	return t.raw
}

// Countries lists the distinct countries in order of first appearance.
func (t *Table) Countries() []string {
	seen := make(map[string]struct{})
	countries := make([]string, 0, 2)

	for _, r := range t.Records {
		if _, ok := seen[r.Country]; ok {
			continue
		}

		seen[r.Country] = struct{}{}
		countries = append(countries, r.Country)
	}

	return countries
}

// Earliest returns the first record with the minimum date, or nil for an empty table.
func (t *Table) Earliest() *Record {
	return t.pick(func(candidate, best *Record) bool {
		return candidate.Date.Before(best.Date)
	})
}

func (t *Table) Latest() *Record {
	return t.pick(func(candidate, best *Record) bool {
		return candidate.Date.After(best.Date)
	})
}

// Longest returns the first record with the maximum duration.
func (t *Table) Longest() *Record {
	return t.pick(func(candidate, best *Record) bool {
		return candidate.DurationMinutes > best.DurationMinutes
	})
}

// MaxDuration is zero for an empty table.
func (t *Table) MaxDuration() float64 {
	if r := t.Longest(); r != nil {
		return r.DurationMinutes
	}

	return 0
}

func (t *Table) DateRange() (time.Time, time.Time) {
	first, last := t.Earliest(), t.Latest()
	if first == nil {
		return time.Time{}, time.Time{}
	}

	return first.Date, last.Date
}

func (t *Table) pick(better func(candidate, best *Record) bool) *Record {
	var best *Record

	for i := range t.Records {
		if best == nil || better(&t.Records[i], best) {
			best = &t.Records[i]
		}
	}

	return best
}
