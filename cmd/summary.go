package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/aquarius/internal/analytics"
	"github.com/derickschaefer/aquarius/internal/dashboard"
	"github.com/derickschaefer/aquarius/internal/model"
	"github.com/derickschaefer/aquarius/internal/util"
)

var summaryDate string

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the overall water level across all dams",
	Long: `Show the combined reservoir level of the Paphos district dams with a
bucket gauge, status, stored volume and the change against last year.`,
	Example: `  aquarius summary
  aquarius summary --date 15.01.2025
  aquarius summary --format json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		deps, err := buildDeps(cmd)
		if err != nil {
			return err
		}
		defer closeDeps(deps, &err)

		ctx := deps.Context(cmd.Context())
		target, err := targetDate(ctx, summaryDate)
		if err != nil {
			return err
		}

		start := time.Now()
		s, err := deps.Dashboard.Summary(ctx, dashboard.SummaryParams{TargetDate: target})
		if err != nil {
			return err
		}
		return emit(cmd, deps, summaryResult(s, target, start))
	},
}

// summaryResult wraps a summary in a Result envelope. A delta that does not
// match the two percentages is reported as a warning.
func summaryResult(s model.Summary, target string, start time.Time) *model.Result {
	var warnings []string
	if !s.DeltaConsistent() {
		warnings = append(warnings, fmt.Sprintf("delta %s does not match %s - %s",
			util.FormatSigned(s.Delta), util.FormatPercent(s.TotalPercentage), util.FormatPercent(s.LastYearPercentage)))
	}
	return &model.Result{
		Kind:        model.KindSummary,
		GeneratedAt: util.Now(),
		Command:     "summary",
		Period:      target,
		Data:        analytics.NewSummaryReport(s),
		Warnings:    warnings,
		Stats:       model.ResultStats{DurationMs: time.Since(start).Milliseconds(), Items: 1},
	}
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().StringVar(&summaryDate, "date", "", "period for this command only (DD.MM.YYYY or YYYY-MM-DD)")
}
