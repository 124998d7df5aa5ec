// Package datasettest provides a small, known spacewalk table for tests.
package datasettest

import (
	"bytes"
	_ "embed"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scarnyc/spacewalks/pkg/dataset"
)

//go:embed spacewalks_eva.csv
var CSV []byte

// Counts of the embedded fixture.
const (
	Rows        = 29
	RussiaRows  = 11
	USARows     = 18
	Earliest    = "1965-03-15"
	Latest      = "2013-08-16"
	LongestDate = "2001-03-15"
	LongestMins = 536
)

func Table(t *testing.T) *dataset.Table {
	t.Helper()

	table, err := dataset.Decode(bytes.NewReader(CSV), "fixture")
	require.NoError(t, err)

	return table
}
