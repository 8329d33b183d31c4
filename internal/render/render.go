// Package render converts Result values into human-readable or machine-parseable
// output. Each format is a separate function; the top-level Render dispatcher
// selects based on the format string.
package render

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/derickschaefer/aquarius/internal/analytics"
	"github.com/derickschaefer/aquarius/internal/model"
	"github.com/derickschaefer/aquarius/internal/util"
)

// Format constants matching --format flag values.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
	FormatCSV   = "csv"
	FormatMD    = "md"
)

// Formats lists every supported format.
var Formats = []string{FormatTable, FormatJSON, FormatJSONL, FormatCSV, FormatMD}

// Render writes result to w in the specified format.
func Render(w io.Writer, result *model.Result, format string) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, result)
	case FormatJSONL:
		return renderJSONL(w, result)
	case FormatCSV:
		return renderCSV(w, result)
	case FormatMD:
		return renderMarkdown(w, result)
	default:
		return renderTable(w, result)
	}
}

// RenderTo writes to stdout by default; if path is non-empty, writes to file.
func RenderTo(path string, result *model.Result, format string) error {
	if path == "" {
		return Render(os.Stdout, result, format)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()
	return Render(f, result, format)
}

// ─── JSON ─────────────────────────────────────────────────────────────────────

func renderJSON(w io.Writer, result *model.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// ─── JSONL ────────────────────────────────────────────────────────────────────

// jsonlPoint is a canonical JSONL record for trend samples.
type jsonlPoint struct {
	Date       string  `json:"date"`
	Percentage float64 `json:"percentage"`
}

func renderJSONL(w io.Writer, result *model.Result) error {
	enc := json.NewEncoder(w)
	switch data := result.Data.(type) {
	case []analytics.DamReport:
		for _, r := range data {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		return nil
	case *model.Trend:
		for _, p := range data.Points {
			if err := enc.Encode(jsonlPoint{Date: p.Date.Format(util.ISOLayout), Percentage: p.Percentage}); err != nil {
				return err
			}
		}
		return nil
	default:
		return enc.Encode(result.Data)
	}
}

// ─── Table ────────────────────────────────────────────────────────────────────

func renderTable(w io.Writer, result *model.Result) error {
	switch result.Kind {
	case model.KindSummary:
		r, ok := result.Data.(*analytics.SummaryReport)
		if !ok {
			return fmt.Errorf("unexpected data type for summary")
		}
		return renderSummaryTable(w, r)
	case model.KindDamDetail:
		r, ok := result.Data.(*analytics.DamReport)
		if !ok {
			return fmt.Errorf("unexpected data type for dam_detail")
		}
		return renderDamTable(w, r)
	case model.KindDams:
		rs, ok := result.Data.([]analytics.DamReport)
		if !ok {
			return fmt.Errorf("unexpected data type for dams")
		}
		return renderDamsTable(w, rs)
	case model.KindTrend:
		t, ok := result.Data.(*model.Trend)
		if !ok {
			return fmt.Errorf("unexpected data type for trend")
		}
		if err := renderTrendTable(w, t); err != nil {
			return err
		}
		if len(t.Points) > 1 {
			c := analytics.Change(*t)
			fmt.Fprintf(w, "%s of %s pts (%s → %s)\n", c.Describe(), util.FormatValue(c.Change),
				util.FormatPercent(c.From), util.FormatPercent(c.To))
		}
		return nil
	default:
		// Fallback: JSON
		return renderJSON(w, result)
	}
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(header)
	tw.SetBorder(true)
	tw.SetRowLine(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAutoWrapText(false)
	return tw
}

func renderSummaryTable(w io.Writer, r *analytics.SummaryReport) error {
	s := r.Summary
	fmt.Fprintln(w, "Overall Dam Capacity")
	fmt.Fprintln(w)
	for _, line := range Gauge(s.TotalPercentage, gaugeRows) {
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w)

	tw := newTable(w, []string{"FIELD", "VALUE"})
	tw.AppendBulk([][]string{
		{"Data Date", formatDate(s.DataDate)},
		{"Total Level", util.FormatPercent(s.TotalPercentage)},
		{"Status", fmt.Sprintf("%s (%s)", r.Status.Label(), r.Status.Range())},
		{"Storage", fmt.Sprintf("%s / %s MCM", mcm(s.TotalStorageMCM), mcm(s.TotalCapacityMCM))},
		{"Last Year", util.FormatPercent(s.LastYearPercentage)},
		{"Change", util.FormatSigned(s.Delta) + " pts"},
		{"Fetched At", formatStamp(s.FetchedAt)},
	})
	tw.Render()
	fmt.Fprintln(w, r.Message)
	return nil
}

func renderDamTable(w io.Writer, r *analytics.DamReport) error {
	d := r.Dam
	title := d.Info.Name
	if d.Info.NameGreek != "" {
		title += " (" + d.Info.NameGreek + ")"
	}
	fmt.Fprintln(w, title)
	fmt.Fprintln(w)

	tw := newTable(w, []string{"FIELD", "VALUE"})
	tw.SetColWidth(80)
	tw.SetAutoWrapText(true)
	rows := [][]string{
		{"Data Date", formatDate(d.DataDate)},
		{"Level", util.FormatPercent(d.Info.Percentage)},
		{"Status", r.Status.Label()},
		{"Storage", mcm(d.Info.StorageMCM) + " MCM"},
		{"Capacity", mcm(d.Info.CapacityMCM) + " MCM"},
		{"Current Volume", mcm(r.CurrentVolume) + " MCM"},
		{"Last Year", util.FormatPercent(d.Comparison.LastYearPercentage)},
		{"Change", util.FormatSigned(d.Comparison.Delta) + " pts"},
	}
	if d.Info.RiskLevel != "" {
		rows = append(rows, []string{"Risk Level", d.Info.RiskLevel})
	}
	if d.Info.YearOfConstruction > 0 {
		rows = append(rows, []string{"Built", fmt.Sprintf("%d", d.Info.YearOfConstruction)})
	}
	if d.Info.Height > 0 {
		rows = append(rows, []string{"Height", util.FormatValue(d.Info.Height) + " m"})
	}
	if d.Info.Lat != 0 || d.Info.Lng != 0 {
		rows = append(rows, []string{"Location", fmt.Sprintf("%.4f, %.4f", d.Info.Lat, d.Info.Lng)})
	}
	if d.Info.WikipediaURL != "" {
		rows = append(rows, []string{"Wikipedia", d.Info.WikipediaURL})
	}
	if d.Narrative != "" {
		rows = append(rows, []string{"Narrative", d.Narrative})
	}
	tw.AppendBulk(rows)
	tw.Render()
	fmt.Fprintln(w, r.Message)

	if len(r.Trend.Points) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Trend (estimated): %s of %s pts\n", r.Change.Describe(), util.FormatValue(r.Change.Change))
		return renderTrendTable(w, &r.Trend)
	}
	return nil
}

func renderDamsTable(w io.Writer, rs []analytics.DamReport) error {
	tw := newTable(w, []string{"DAM", "LEVEL", "STATUS", "STORAGE MCM", "CAPACITY MCM", "LAST YEAR", "CHANGE"})
	tw.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
	})
	for _, r := range rs {
		tw.Append([]string{
			r.Dam.Info.Name,
			util.FormatPercent(r.Dam.Info.Percentage),
			r.Status.Label(),
			mcm(r.CurrentVolume),
			mcm(r.Dam.Info.CapacityMCM),
			util.FormatPercent(r.Dam.Comparison.LastYearPercentage),
			util.FormatSigned(r.Dam.Comparison.Delta),
		})
	}
	tw.Render()
	return nil
}

func renderTrendTable(w io.Writer, t *model.Trend) error {
	tw := newTable(w, []string{"DATE", "LEVEL", ""})
	tw.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT})
	for _, p := range t.Points {
		tw.Append([]string{formatDate(p.Date), util.FormatPercent(p.Percentage), Bar(p.Percentage, barWidth)})
	}
	tw.Render()
	return nil
}

// ─── CSV ──────────────────────────────────────────────────────────────────────

func renderCSV(w io.Writer, result *model.Result) error {
	cw := csv.NewWriter(w)

	switch data := result.Data.(type) {
	case *analytics.SummaryReport:
		s := data.Summary
		_ = cw.Write([]string{"data_date", "total_percentage", "status", "total_storage_mcm", "total_capacity_mcm", "last_year_percentage", "delta"})
		_ = cw.Write([]string{
			s.DataDate.Format(util.ISOLayout),
			util.FormatValue(s.TotalPercentage),
			string(data.Status),
			util.FormatValue(s.TotalStorageMCM),
			util.FormatValue(s.TotalCapacityMCM),
			util.FormatValue(s.LastYearPercentage),
			util.FormatValue(s.Delta),
		})
	case *analytics.DamReport:
		writeDamRows(cw, []analytics.DamReport{*data})
	case []analytics.DamReport:
		writeDamRows(cw, data)
	case *model.Trend:
		_ = cw.Write([]string{"date", "percentage"})
		for _, p := range data.Points {
			_ = cw.Write([]string{p.Date.Format(util.ISOLayout), util.FormatValue(p.Percentage)})
		}
	default:
		// Fallback: serialize as JSON on a single line
		b, _ := json.Marshal(result.Data)
		_ = cw.Write([]string{string(b)})
	}

	cw.Flush()
	return cw.Error()
}

func writeDamRows(cw *csv.Writer, rs []analytics.DamReport) {
	_ = cw.Write([]string{"name", "data_date", "percentage", "status", "storage_mcm", "capacity_mcm", "current_volume_mcm", "last_year_percentage", "delta"})
	for _, r := range rs {
		_ = cw.Write([]string{
			r.Dam.Info.Name,
			r.Dam.DataDate.Format(util.ISOLayout),
			util.FormatValue(r.Dam.Info.Percentage),
			string(r.Status),
			util.FormatValue(r.Dam.Info.StorageMCM),
			util.FormatValue(r.Dam.Info.CapacityMCM),
			util.FormatValue(r.CurrentVolume),
			util.FormatValue(r.Dam.Comparison.LastYearPercentage),
			util.FormatValue(r.Dam.Comparison.Delta),
		})
	}
}

// ─── Markdown ─────────────────────────────────────────────────────────────────

func renderMarkdown(w io.Writer, result *model.Result) error {
	switch data := result.Data.(type) {
	case *analytics.SummaryReport:
		s := data.Summary
		fmt.Fprintf(w, "| FIELD | VALUE |\n|-------|-------|\n")
		fmt.Fprintf(w, "| Data Date | %s |\n", formatDate(s.DataDate))
		fmt.Fprintf(w, "| Total Level | %s |\n", util.FormatPercent(s.TotalPercentage))
		fmt.Fprintf(w, "| Status | %s |\n", data.Status.Label())
		fmt.Fprintf(w, "| Storage | %s / %s MCM |\n", mcm(s.TotalStorageMCM), mcm(s.TotalCapacityMCM))
		fmt.Fprintf(w, "| Change | %s pts |\n", util.FormatSigned(s.Delta))
		return nil
	case *analytics.DamReport:
		return writeDamsMarkdown(w, []analytics.DamReport{*data})
	case []analytics.DamReport:
		return writeDamsMarkdown(w, data)
	case *model.Trend:
		fmt.Fprintf(w, "| DATE | LEVEL |\n|------|-------|\n")
		for _, p := range data.Points {
			fmt.Fprintf(w, "| %s | %s |\n", formatDate(p.Date), util.FormatPercent(p.Percentage))
		}
		return nil
	default:
		return renderJSON(w, result)
	}
}

func writeDamsMarkdown(w io.Writer, rs []analytics.DamReport) error {
	fmt.Fprintf(w, "| DAM | LEVEL | STATUS | STORAGE MCM | CAPACITY MCM | CHANGE |\n|----|----|----|----|----|----|\n")
	for _, r := range rs {
		fmt.Fprintf(w, "| %s | %s | %s | %s | %s | %s |\n",
			mdEscape(r.Dam.Info.Name),
			util.FormatPercent(r.Dam.Info.Percentage),
			r.Status.Label(),
			mcm(r.CurrentVolume),
			mcm(r.Dam.Info.CapacityMCM),
			util.FormatSigned(r.Dam.Comparison.Delta),
		)
	}
	return nil
}

// ─── Warnings / Stats Footer ─────────────────────────────────────────────────

// PrintFooter writes warnings, and stats when verbose mode is on, to w.
func PrintFooter(w io.Writer, result *model.Result, verbose bool) {
	for _, warn := range result.Warnings {
		fmt.Fprintf(w, "⚠  %s\n", warn)
	}
	if verbose {
		period := result.Period
		if period == "" {
			period = "latest"
		}
		fmt.Fprintf(w, "\n[%s • %d items • %dms • period %s]\n",
			result.GeneratedAt.Format(time.RFC3339),
			result.Stats.Items,
			result.Stats.DurationMs,
			period,
		)
	}
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return util.FormatPeriod(t)
}

func formatStamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02.01.2006 15:04 MST")
}

// mcm formats a volume in million cubic metres with two decimals.
func mcm(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func mdEscape(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
