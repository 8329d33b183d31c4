// Package dashboard holds the interactors behind each view: they call the
// dam API, decode the entity and hand back a model. Target dates are passed
// through unchanged in DD.MM.YYYY form; an empty date is left off the request
// so the API answers with its latest data.
package dashboard

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/derickschaefer/aquarius/internal/api"
	"github.com/derickschaefer/aquarius/internal/entity"
	"github.com/derickschaefer/aquarius/internal/mapper"
	"github.com/derickschaefer/aquarius/internal/model"
)

// Endpoints served under the API prefix.
const (
	EndpointSummary = "/summary"
	EndpointDam     = "/dam"
	EndpointTrend   = "/trend"
)

// Getter is the subset of *api.Client the interactors need.
type Getter interface {
	Get(ctx context.Context, endpoint string, params api.Params, out interface{}) error
	GetRaw(ctx context.Context, endpoint string, params api.Params) ([]byte, error)
}

// SummaryParams selects the summary reading.
type SummaryParams struct {
	TargetDate string
}

// DamParams selects one dam reading.
type DamParams struct {
	Name       model.DamName
	TargetDate string
}

// TrendParams bounds a trend query. Both dates are DD.MM.YYYY.
type TrendParams struct {
	StartDate string
	EndDate   string
}

// Service runs the dashboard interactors against a Getter.
type Service struct {
	api         Getter
	concurrency int
}

// New returns a Service. concurrency caps parallel requests in Dams; zero or
// less means one request per dam at once.
func New(g Getter, concurrency int) *Service {
	return &Service{api: g, concurrency: concurrency}
}

// Summary fetches the aggregate across all dams.
func (s *Service) Summary(ctx context.Context, p SummaryParams) (model.Summary, error) {
	var e entity.Summary
	err := s.api.Get(ctx, EndpointSummary, api.Params{"target_date": api.Opt(p.TargetDate)}, &e)
	if err != nil {
		return model.Summary{}, err
	}
	return mapper.Summary(e)
}

// Dam fetches one dam. The body is inspected for its schema version before
// decoding, so both wire versions produce the same model.
func (s *Service) Dam(ctx context.Context, p DamParams) (model.Dam, error) {
	body, err := s.api.GetRaw(ctx, EndpointDam, api.Params{
		"name":        api.Str(string(p.Name)),
		"target_date": api.Opt(p.TargetDate),
	})
	if err != nil {
		return model.Dam{}, err
	}
	e, err := entity.DecodeDam(body)
	if err != nil {
		return model.Dam{}, fmt.Errorf("dam %s: %w", p.Name, err)
	}
	return mapper.Dam(e)
}

// Trend fetches the sample series between two dates.
func (s *Service) Trend(ctx context.Context, p TrendParams) (model.Trend, error) {
	var e entity.Trend
	err := s.api.Get(ctx, EndpointTrend, api.Params{
		"start_date": api.Opt(p.StartDate),
		"end_date":   api.Opt(p.EndDate),
	}, &e)
	if err != nil {
		return model.Trend{}, err
	}
	return mapper.Trend(e)
}

// Dams fetches every named dam concurrently. It is all-or-nothing: the first
// failure cancels the outstanding requests and no partial result is
// returned. The result order follows names.
func (s *Service) Dams(ctx context.Context, names []model.DamName, targetDate string) ([]model.Dam, error) {
	out := make([]model.Dam, len(names))
	g, gctx := errgroup.WithContext(ctx)
	if s.concurrency > 0 {
		g.SetLimit(s.concurrency)
	}
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			d, err := s.Dam(gctx, DamParams{Name: name, TargetDate: targetDate})
			if err != nil {
				return err
			}
			out[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
