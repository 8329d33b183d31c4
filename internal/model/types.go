// Package model defines the normalized data types used throughout aquarius.
// Entities from the API are mapped into these types; renderers and commands
// only ever see models.
package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// ─── Dam Names ────────────────────────────────────────────────────────────────

// DamName identifies one of the Paphos district dams served by the API.
type DamName string

const (
	Asprokremmos  DamName = "Asprokremmos"
	Evretou       DamName = "Evretou"
	Mavrokolympos DamName = "Mavrokolympos"
)

// KnownDams lists every dam in display order.
var KnownDams = []DamName{Asprokremmos, Evretou, Mavrokolympos}

// ParseDamName matches s against the known dams, ignoring case and an
// optional trailing " Dam".
func ParseDamName(s string) (DamName, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimSuffix(s, " Dam"), " dam")
	for _, d := range KnownDams {
		if strings.EqualFold(s, string(d)) {
			return d, nil
		}
	}
	names := make([]string, len(KnownDams))
	for i, d := range KnownDams {
		names[i] = string(d)
	}
	return "", fmt.Errorf("unknown dam %q: expected one of %s", s, strings.Join(names, ", "))
}

// ─── Summary ──────────────────────────────────────────────────────────────────

// Summary is the aggregate reading across all dams.
type Summary struct {
	DataDate           time.Time `json:"data_date"`
	FetchedAt          time.Time `json:"fetched_at"`
	TotalPercentage    float64   `json:"total_percentage"`
	LastYearPercentage float64   `json:"last_year_percentage"`
	Delta              float64   `json:"delta"`
	TotalStorageMCM    float64   `json:"total_storage_mcm"`
	TotalCapacityMCM   float64   `json:"total_capacity_mcm"`
}

// deltaTolerance absorbs the rounding the API applies to each figure.
const deltaTolerance = 0.05

// DeltaConsistent reports whether Delta equals TotalPercentage minus
// LastYearPercentage within rounding.
func (s Summary) DeltaConsistent() bool {
	return math.Abs(s.TotalPercentage-s.LastYearPercentage-s.Delta) <= deltaTolerance
}

// ─── Dam ──────────────────────────────────────────────────────────────────────

// DamInfo holds the identity, physical attributes and current reading of a dam.
type DamInfo struct {
	Name               string  `json:"name"`
	NameGreek          string  `json:"name_greek"`
	CapacityMCM        float64 `json:"capacity_mcm"`
	StorageMCM         float64 `json:"storage_mcm"`
	Percentage         float64 `json:"percentage"`
	RiskLevel          string  `json:"risk_level"`
	YearOfConstruction int     `json:"year_of_construction"`
	Height             float64 `json:"height"`
	Lat                float64 `json:"lat"`
	Lng                float64 `json:"lng"`
	ImageURL           string  `json:"image_url"`
	WikipediaURL       string  `json:"wikipedia_url"`
}

// Comparison is the year-over-year view of a dam reading.
type Comparison struct {
	LastYearPercentage float64 `json:"last_year_percentage"`
	Delta              float64 `json:"delta"`
}

// Dam is a single dam snapshot. Schema records which wire version it was
// mapped from.
type Dam struct {
	DataDate   time.Time  `json:"data_date"`
	FetchedAt  time.Time  `json:"fetched_at"`
	Info       DamInfo    `json:"dam"`
	Comparison Comparison `json:"comparison"`
	Narrative  string     `json:"narrative"`
	Schema     string     `json:"schema"`
}

// ─── Trend ────────────────────────────────────────────────────────────────────

// TrendPoint is one sample of a water-level trend.
type TrendPoint struct {
	Date       time.Time `json:"date"`
	Percentage float64   `json:"percentage"`
}

// Trend is an ordered sequence of samples.
type Trend struct {
	Points []TrendPoint `json:"data"`
}

// ─── Result Envelope ─────────────────────────────────────────────────────────

// ResultStats carries timing metadata for a command result.
type ResultStats struct {
	DurationMs int64 `json:"duration_ms"`
	Items      int   `json:"items"`
}

// Result is the uniform envelope returned by every data command.
// The Data field holds the typed payload; Kind identifies what is in it.
// Renderers switch on Kind to format output appropriately.
type Result struct {
	Kind        string      `json:"kind"`
	GeneratedAt time.Time   `json:"generated_at"`
	Command     string      `json:"command"`
	Period      string      `json:"period,omitempty"`
	Data        interface{} `json:"data"`
	Warnings    []string    `json:"warnings,omitempty"`
	Stats       ResultStats `json:"stats"`
}

// Kind constants for Result.Kind.
const (
	KindSummary   = "summary"
	KindDamDetail = "dam_detail"
	KindDams      = "dams"
	KindTrend     = "trend"
)
