package api

import (
	"time"

	"ricecast/internal/forecast"
)

// Column is one selectable price column, numbered from 1.
type Column struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
}

// DatasetResponse describes a cached upload.
type DatasetResponse struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Sheet     string    `json:"sheet,omitempty"`
	Columns   []Column  `json:"columns"`
	Rows      int       `json:"rows"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ForecastResponse wraps a pipeline report.
type ForecastResponse struct {
	DatasetID string           `json:"dataset_id,omitempty"`
	Report    *forecast.Report `json:"report"`
}

// NumberColumns numbers column names from 1.
func NumberColumns(names []string) []Column {
	cols := make([]Column, len(names))
	for i, name := range names {
		cols[i] = Column{Number: i + 1, Name: name}
	}
	return cols
}
