package render_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derickschaefer/aquarius/internal/analytics"
	"github.com/derickschaefer/aquarius/internal/model"
	"github.com/derickschaefer/aquarius/internal/render"
)

var jan15 = time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

func summaryResult() *model.Result {
	s := model.Summary{
		DataDate:           jan15,
		TotalPercentage:    55.2,
		LastYearPercentage: 60.1,
		Delta:              -4.9,
		TotalStorageMCM:    42.7,
		TotalCapacityMCM:   77.3,
	}
	return &model.Result{Kind: model.KindSummary, Data: analytics.NewSummaryReport(s)}
}

func damReports() []analytics.DamReport {
	mk := func(name string, pct, capacity float64) analytics.DamReport {
		return *analytics.NewDamReport(model.Dam{
			DataDate:   jan15,
			Info:       model.DamInfo{Name: name, Percentage: pct, CapacityMCM: capacity},
			Comparison: model.Comparison{LastYearPercentage: pct + 5, Delta: -5},
		}, 4)
	}
	return []analytics.DamReport{
		mk("Asprokremmos", 15, 52.375),
		mk("Evretou", 45, 24),
		mk("Mavrokolympos", 72, 2.18),
	}
}

func TestSummaryTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render.Render(&buf, summaryResult(), render.FormatTable))
	out := buf.String()

	assert.Contains(t, out, "Overall Dam Capacity")
	assert.Contains(t, out, "55.2%")
	assert.Contains(t, out, "15.01.2025")
	assert.Contains(t, out, "Warning")
	assert.Contains(t, out, "-4.9 pts")
	assert.Contains(t, out, "42.70 / 77.30 MCM")
}

func TestDamDetailTable(t *testing.T) {
	r := damReports()[0]
	r.Dam.Info.NameGreek = "Ασπρόκρεμμος"
	r.Dam.Narrative = "Critically low."
	var buf bytes.Buffer
	require.NoError(t, render.Render(&buf, &model.Result{Kind: model.KindDamDetail, Data: &r}, render.FormatTable))
	out := buf.String()

	assert.Contains(t, out, "Asprokremmos (Ασπρόκρεμμος)")
	assert.Contains(t, out, "Critical")
	assert.Contains(t, out, "7.86 MCM")
	assert.Contains(t, out, "Critically low.")
	assert.Contains(t, out, "Trend (estimated): decrease")
}

func TestDamsTableListsEveryDam(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render.Render(&buf, &model.Result{Kind: model.KindDams, Data: damReports()}, render.FormatTable))
	out := buf.String()
	for _, name := range []string{"Asprokremmos", "Evretou", "Mavrokolympos"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "Normal")
}

func TestDamsJSONL(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render.Render(&buf, &model.Result{Kind: model.KindDams, Data: damReports()}, render.FormatJSONL))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	var first struct {
		Status string `json:"status"`
		Dam    struct {
			Dam struct {
				Name string `json:"name"`
			} `json:"dam"`
		} `json:"dam"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "critical", first.Status)
	assert.Equal(t, "Asprokremmos", first.Dam.Dam.Name)
}

func TestTrendCSV(t *testing.T) {
	tr := &model.Trend{Points: []model.TrendPoint{
		{Date: jan15, Percentage: 68},
		{Date: jan15.AddDate(0, 0, 5), Percentage: 65.5},
	}}
	var buf bytes.Buffer
	require.NoError(t, render.Render(&buf, &model.Result{Kind: model.KindTrend, Data: tr}, render.FormatCSV))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"date", "percentage"},
		{"2025-01-15", "68"},
		{"2025-01-20", "65.5"},
	}, rows)
}

func TestSummaryJSONEnvelope(t *testing.T) {
	res := summaryResult()
	res.Command = "summary"
	res.Period = "15.01.2025"
	var buf bytes.Buffer
	require.NoError(t, render.Render(&buf, res, render.FormatJSON))

	var got struct {
		Kind   string `json:"kind"`
		Period string `json:"period"`
		Data   struct {
			Status  string `json:"status"`
			Summary struct {
				TotalPercentage float64 `json:"total_percentage"`
			} `json:"summary"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, model.KindSummary, got.Kind)
	assert.Equal(t, "15.01.2025", got.Period)
	assert.Equal(t, "warning", got.Data.Status)
	assert.Equal(t, 55.2, got.Data.Summary.TotalPercentage)
}

func TestMarkdownDams(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render.Render(&buf, &model.Result{Kind: model.KindDams, Data: damReports()}, render.FormatMD))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[2], "| Asprokremmos |"))
}

func TestTableRejectsWrongPayload(t *testing.T) {
	var buf bytes.Buffer
	err := render.Render(&buf, &model.Result{Kind: model.KindSummary, Data: "nope"}, render.FormatTable)
	assert.Error(t, err)
}

func TestGauge(t *testing.T) {
	lines := render.Gauge(50, 10)
	require.Len(t, lines, 11)
	assert.Contains(t, lines[5], "~")
	assert.Contains(t, lines[5], "50.0%")
	assert.NotContains(t, lines[4], "#")
	assert.Contains(t, lines[9], "#")

	empty := render.Gauge(0, 10)
	assert.NotContains(t, strings.Join(empty, "\n"), "#")
	assert.Contains(t, empty[9], "0.0%")

	full := render.Gauge(120, 10)
	assert.Contains(t, full[0], "~")
	assert.Contains(t, full[0], "120.0%")
}

func TestBar(t *testing.T) {
	assert.Equal(t, strings.Repeat("█", 5)+strings.Repeat("░", 5), render.Bar(50, 10))
	assert.Equal(t, strings.Repeat("░", 10), render.Bar(-3, 10))
}

func TestPrintFooter(t *testing.T) {
	res := &model.Result{
		GeneratedAt: jan15,
		Warnings:    []string{"delta differs"},
		Stats:       model.ResultStats{DurationMs: 12, Items: 3},
	}
	var buf bytes.Buffer
	render.PrintFooter(&buf, res, true)
	assert.Contains(t, buf.String(), "delta differs")
	assert.Contains(t, buf.String(), "3 items")
	assert.Contains(t, buf.String(), "period latest")
}
