package entity

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// SchemaVersion identifies which dam payload shape a body uses.
type SchemaVersion int

const (
	// SchemaNested is the v1 shape with nested "dam" and "comparison" objects.
	SchemaNested SchemaVersion = 1
	// SchemaFlat is the v2 shape with every field at the top level.
	SchemaFlat SchemaVersion = 2
)

func (v SchemaVersion) String() string {
	switch v {
	case SchemaNested:
		return "v1-nested"
	case SchemaFlat:
		return "v2-flat"
	default:
		return fmt.Sprintf("v%d", int(v))
	}
}

// DamInfo holds the per-dam attributes of the v1 "dam" object.
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

// Comparison holds the year-over-year figures of the v1 "comparison" object.
type Comparison struct {
	LastYearPercentage float64 `json:"last_year_percentage"`
	Delta              float64 `json:"delta"`
}

// DamNested is the v1 dam payload.
type DamNested struct {
	DataDate   string     `json:"data_date"`
	FetchedAt  string     `json:"fetched_at"`
	Dam        DamInfo    `json:"dam"`
	Comparison Comparison `json:"comparison"`
	Narrative  string     `json:"narrative"`
}

// DamFlat is the v2 dam payload.
type DamFlat struct {
	DataDate           string  `json:"data_date"`
	FetchedAt          string  `json:"fetched_at"`
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
	LastYearPercentage float64 `json:"last_year_percentage"`
	Delta              float64 `json:"delta"`
	Narrative          string  `json:"narrative"`
}

// Dam is a tagged union over the two dam schema versions. Exactly one of
// Nested or Flat is set, matching Version.
type Dam struct {
	Version SchemaVersion
	Nested  *DamNested
	Flat    *DamFlat
}

// UnknownSchemaError is returned when a dam body matches neither shape.
type UnknownSchemaError struct {
	Reason string
}

func (e *UnknownSchemaError) Error() string {
	return "unknown dam schema: " + e.Reason
}

// DetectDamSchema inspects body for an explicit "schema_version" marker and
// falls back to the payload shape when none is present.
func DetectDamSchema(body []byte) (SchemaVersion, error) {
	if !gjson.ValidBytes(body) {
		return 0, &UnknownSchemaError{Reason: "body is not valid JSON"}
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return 0, &UnknownSchemaError{Reason: "body is not a JSON object"}
	}

	if marker := root.Get("schema_version"); marker.Exists() {
		if marker.Type != gjson.Number || marker.Num != float64(marker.Int()) {
			return 0, &UnknownSchemaError{Reason: fmt.Sprintf("schema_version %s is not an integer", marker.Raw)}
		}
		switch SchemaVersion(marker.Int()) {
		case SchemaNested:
			return SchemaNested, nil
		case SchemaFlat:
			return SchemaFlat, nil
		default:
			return 0, &UnknownSchemaError{Reason: fmt.Sprintf("unsupported schema_version %s", marker.Raw)}
		}
	}

	if root.Get("dam").IsObject() {
		return SchemaNested, nil
	}
	if name := root.Get("name"); name.Type == gjson.String {
		return SchemaFlat, nil
	}
	return 0, &UnknownSchemaError{Reason: `neither a "dam" object nor a top-level "name"`}
}

// DecodeDam detects the schema of body and decodes it into the matching
// variant.
func DecodeDam(body []byte) (Dam, error) {
	version, err := DetectDamSchema(body)
	if err != nil {
		return Dam{}, err
	}
	switch version {
	case SchemaNested:
		var n DamNested
		if err := json.Unmarshal(body, &n); err != nil {
			return Dam{}, fmt.Errorf("decoding %s dam: %w", version, err)
		}
		return Dam{Version: version, Nested: &n}, nil
	default:
		var f DamFlat
		if err := json.Unmarshal(body, &f); err != nil {
			return Dam{}, fmt.Errorf("decoding %s dam: %w", version, err)
		}
		return Dam{Version: version, Flat: &f}, nil
	}
}
