// Package mapper converts API entities into domain models. Every function is
// pure: the same entity always yields an equal model. Numeric values pass
// through unchanged; dates are parsed and a malformed date fails the mapping.
package mapper

import (
	"fmt"
	"time"

	"github.com/derickschaefer/aquarius/internal/entity"
	"github.com/derickschaefer/aquarius/internal/model"
	"github.com/derickschaefer/aquarius/internal/util"
)

// Summary maps a summary entity to its model.
func Summary(e entity.Summary) (model.Summary, error) {
	dataDate, fetchedAt, err := stamps(e.DataDate, e.FetchedAt)
	if err != nil {
		return model.Summary{}, fmt.Errorf("summary: %w", err)
	}
	return model.Summary{
		DataDate:           dataDate,
		FetchedAt:          fetchedAt,
		TotalPercentage:    e.TotalPercentage,
		LastYearPercentage: e.LastYearPercentage,
		Delta:              e.Delta,
		TotalStorageMCM:    e.TotalStorageMCM,
		TotalCapacityMCM:   e.TotalCapacityMCM,
	}, nil
}

// Dam maps either dam schema version to the single dam model.
func Dam(e entity.Dam) (model.Dam, error) {
	switch {
	case e.Version == entity.SchemaNested && e.Nested != nil:
		return damNested(*e.Nested)
	case e.Version == entity.SchemaFlat && e.Flat != nil:
		return damFlat(*e.Flat)
	default:
		return model.Dam{}, &entity.UnknownSchemaError{Reason: fmt.Sprintf("no payload for %s", e.Version)}
	}
}

func damNested(e entity.DamNested) (model.Dam, error) {
	dataDate, fetchedAt, err := stamps(e.DataDate, e.FetchedAt)
	if err != nil {
		return model.Dam{}, fmt.Errorf("dam %s: %w", e.Dam.Name, err)
	}
	return model.Dam{
		DataDate:  dataDate,
		FetchedAt: fetchedAt,
		Info: model.DamInfo{
			Name:               e.Dam.Name,
			NameGreek:          e.Dam.NameGreek,
			CapacityMCM:        e.Dam.CapacityMCM,
			StorageMCM:         e.Dam.StorageMCM,
			Percentage:         e.Dam.Percentage,
			RiskLevel:          e.Dam.RiskLevel,
			YearOfConstruction: e.Dam.YearOfConstruction,
			Height:             e.Dam.Height,
			Lat:                e.Dam.Lat,
			Lng:                e.Dam.Lng,
			ImageURL:           e.Dam.ImageURL,
			WikipediaURL:       e.Dam.WikipediaURL,
		},
		Comparison: model.Comparison{
			LastYearPercentage: e.Comparison.LastYearPercentage,
			Delta:              e.Comparison.Delta,
		},
		Narrative: e.Narrative,
		Schema:    entity.SchemaNested.String(),
	}, nil
}

func damFlat(e entity.DamFlat) (model.Dam, error) {
	dataDate, fetchedAt, err := stamps(e.DataDate, e.FetchedAt)
	if err != nil {
		return model.Dam{}, fmt.Errorf("dam %s: %w", e.Name, err)
	}
	return model.Dam{
		DataDate:  dataDate,
		FetchedAt: fetchedAt,
		Info: model.DamInfo{
			Name:               e.Name,
			NameGreek:          e.NameGreek,
			CapacityMCM:        e.CapacityMCM,
			StorageMCM:         e.StorageMCM,
			Percentage:         e.Percentage,
			RiskLevel:          e.RiskLevel,
			YearOfConstruction: e.YearOfConstruction,
			Height:             e.Height,
			Lat:                e.Lat,
			Lng:                e.Lng,
			ImageURL:           e.ImageURL,
			WikipediaURL:       e.WikipediaURL,
		},
		Comparison: model.Comparison{
			LastYearPercentage: e.LastYearPercentage,
			Delta:              e.Delta,
		},
		Narrative: e.Narrative,
		Schema:    entity.SchemaFlat.String(),
	}, nil
}

// Trend maps a trend entity to its model, preserving sample order.
func Trend(e entity.Trend) (model.Trend, error) {
	points := make([]model.TrendPoint, len(e.Data))
	for i, p := range e.Data {
		d, err := util.ParseAPITime(fmt.Sprintf("data[%d].date", i), p.Date)
		if err != nil {
			return model.Trend{}, fmt.Errorf("trend: %w", err)
		}
		points[i] = model.TrendPoint{Date: d, Percentage: p.Percentage}
	}
	return model.Trend{Points: points}, nil
}

// stamps parses the data_date/fetched_at pair shared by summary and dam bodies.
func stamps(dataDate, fetchedAt string) (time.Time, time.Time, error) {
	d, err := util.ParseAPITime("data_date", dataDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	f, err := util.ParseAPITime("fetched_at", fetchedAt)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return d, f, nil
}
