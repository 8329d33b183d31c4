// Package analytics derives dashboard figures from dam models: status
// classification, stored volume, trend direction, and a synthetic trend for
// views whose dam has no trend series yet.
package analytics

import (
	"math"
	"time"

	"github.com/derickschaefer/aquarius/internal/model"
)

// Status is the water-level classification of a reservoir.
type Status string

const (
	StatusCritical Status = "critical"
	StatusWarning  Status = "warning"
	StatusNormal   Status = "normal"
)

// Thresholds, in percent of capacity. A level below CriticalBelow is
// critical, below WarningBelow is a warning, anything else is normal.
const (
	CriticalBelow = 30.0
	WarningBelow  = 60.0
)

// Classify returns the status for a percentage.
func Classify(pct float64) Status {
	switch {
	case pct < CriticalBelow:
		return StatusCritical
	case pct < WarningBelow:
		return StatusWarning
	default:
		return StatusNormal
	}
}

// Label returns the capitalised status name.
func (s Status) Label() string {
	switch s {
	case StatusCritical:
		return "Critical"
	case StatusWarning:
		return "Warning"
	default:
		return "Normal"
	}
}

// Message returns the advisory shown next to a status.
func (s Status) Message() string {
	switch s {
	case StatusCritical:
		return "Water level is critically low. Immediate conservation measures recommended."
	case StatusWarning:
		return "Water level is below optimal. Monitor closely and prepare conservation measures."
	default:
		return "Water level is within normal operating range."
	}
}

// Range describes the percentage band of a status for legends.
func (s Status) Range() string {
	switch s {
	case StatusCritical:
		return "< 30%"
	case StatusWarning:
		return "30% - 60%"
	default:
		return ">= 60%"
	}
}

// CurrentVolume returns the stored volume in MCM for a fill percentage.
func CurrentVolume(pct, capacityMCM float64) float64 {
	return pct / 100 * capacityMCM
}

// ─── Trends ───────────────────────────────────────────────────────────────────

// Direction is the overall movement of a trend.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionFlat Direction = "flat"
)

// TrendChange compares the first and last samples of a trend.
type TrendChange struct {
	Direction Direction `json:"direction"`
	Change    float64   `json:"change"` // absolute percentage points
	From      float64   `json:"from"`
	To        float64   `json:"to"`
}

// Describe returns "decrease", "increase" or "no change".
func (c TrendChange) Describe() string {
	switch c.Direction {
	case DirectionDown:
		return "decrease"
	case DirectionUp:
		return "increase"
	default:
		return "no change"
	}
}

// Change summarises a trend. A trend with fewer than two points is flat.
func Change(t model.Trend) TrendChange {
	if len(t.Points) == 0 {
		return TrendChange{Direction: DirectionFlat}
	}
	first := t.Points[0].Percentage
	last := t.Points[len(t.Points)-1].Percentage
	c := TrendChange{From: first, To: last, Change: math.Abs(last - first)}
	switch {
	case last < first:
		c.Direction = DirectionDown
	case last > first:
		c.Direction = DirectionUp
	default:
		c.Direction = DirectionFlat
	}
	return c
}

// syntheticDrop is the total fall, in percentage points, the synthetic
// series covers from its first to its last sample.
const syntheticDrop = 23.0

// SyntheticTrend builds a placeholder series of points samples spaced step
// apart and ending at end with the value current. Earlier samples sit higher
// and fall linearly toward current; values are rounded to whole percent and
// clamped to [0, 100]. The result depends only on its arguments.
func SyntheticTrend(end time.Time, current float64, points int, step time.Duration) model.Trend {
	if points <= 0 {
		return model.Trend{Points: []model.TrendPoint{}}
	}
	out := make([]model.TrendPoint, points)
	for i := 0; i < points; i++ {
		remaining := points - 1 - i
		var frac float64
		if points > 1 {
			frac = float64(remaining) / float64(points-1)
		}
		level := clamp(math.Round(current+syntheticDrop*frac), 0, 100)
		if remaining == 0 {
			level = clamp(current, 0, 100)
		}
		out[i] = model.TrendPoint{
			Date:       end.Add(-time.Duration(remaining) * step),
			Percentage: level,
		}
	}
	return model.Trend{Points: out}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
