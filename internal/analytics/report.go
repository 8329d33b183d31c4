package analytics

import (
	"time"

	"github.com/derickschaefer/aquarius/internal/model"
)

// SummaryReport is the landing view: the aggregate reading and its status.
type SummaryReport struct {
	Summary model.Summary `json:"summary"`
	Status  Status        `json:"status"`
	Message string        `json:"message"`
}

// NewSummaryReport classifies s.
func NewSummaryReport(s model.Summary) *SummaryReport {
	st := Classify(s.TotalPercentage)
	return &SummaryReport{Summary: s, Status: st, Message: st.Message()}
}

// DamReport is one dam with its derived figures. Trend is synthetic; its
// last point is the dam's current reading.
type DamReport struct {
	Dam           model.Dam   `json:"dam"`
	Status        Status      `json:"status"`
	Message       string      `json:"message"`
	CurrentVolume float64     `json:"current_volume_mcm"`
	Trend         model.Trend `json:"trend"`
	Change        TrendChange `json:"change"`
}

// DefaultTrendPoints and DefaultTrendStep shape the synthetic series.
const (
	DefaultTrendPoints = 8
	DefaultTrendStep   = 5 * 24 * time.Hour
)

// NewDamReport derives the report for d with a synthetic trend of points
// samples ending at the dam's data date.
func NewDamReport(d model.Dam, points int) *DamReport {
	pct := d.Info.Percentage
	st := Classify(pct)
	tr := SyntheticTrend(d.DataDate, pct, points, DefaultTrendStep)
	return &DamReport{
		Dam:           d,
		Status:        st,
		Message:       st.Message(),
		CurrentVolume: CurrentVolume(pct, d.Info.CapacityMCM),
		Trend:         tr,
		Change:        Change(tr),
	}
}
