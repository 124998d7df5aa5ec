package model

import (
	"time"

	"github.com/scarnyc/spacewalks/pkg/contract"
	"github.com/scarnyc/spacewalks/pkg/dataset"
)

// EVA mapped from table <evas>.
//
// Dates are stored as YYYY-MM-DD text so that they sort and compare the same
// way on every dialect.
type EVA struct {
	ID              string  `gorm:"column:id;primaryKey;size:36"`
	Ordinal         int     `gorm:"column:ordinal;not null;index"`
	Date            string  `gorm:"column:date;not null;size:10;index"`
	DurationMinutes float64 `gorm:"column:duration_minutes;not null"`
	Country         string  `gorm:"column:country;not null;size:64;index"`
	Vehicle         string  `gorm:"column:vehicle;not null;size:255"`
	Crew            string  `gorm:"column:crew;size:1024"`
	Purpose         string  `gorm:"column:purpose;size:4096"`
}

// TableName EVA's table name.
func (*EVA) TableName() string {
	return "evas"
}

func NewEVAFromRecord(record dataset.Record) EVA {
	return EVA{
		ID:              record.ID,
		Ordinal:         record.Ordinal,
		Date:            record.Date.Format(time.DateOnly),
		DurationMinutes: record.DurationMinutes,
		Country:         record.Country,
		Vehicle:         record.Vehicle,
		Crew:            record.Crew,
		Purpose:         record.Purpose,
	}
}

func (e EVA) ToContract() *contract.EVA {
	return &contract.EVA{
		ID:              e.ID,
		Ordinal:         e.Ordinal,
		Date:            e.Date,
		DurationMinutes: e.DurationMinutes,
		Country:         e.Country,
		Vehicle:         e.Vehicle,
		Crew:            e.Crew,
		Purpose:         e.Purpose,
	}
}

// CountryTotals is one row of the per-country aggregate.
type CountryTotals struct {
	Country      string
	Count        int64
	TotalMinutes float64
	MaxMinutes   float64
}

func (c CountryTotals) ToContract() contract.CountrySummary {
	return contract.CountrySummary{
		Country:      c.Country,
		Count:        c.Count,
		TotalMinutes: c.TotalMinutes,
		MaxMinutes:   c.MaxMinutes,
	}
}
