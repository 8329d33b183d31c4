package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/aquarius/internal/dashboard"
	"github.com/derickschaefer/aquarius/internal/model"
	"github.com/derickschaefer/aquarius/internal/util"
)

var trendFlags struct {
	Start string
	End   string
	ISO   bool
}

var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Show the water-level trend between two dates",
	Example: `  aquarius trend --start 01.11.2025 --end 05.12.2025
  aquarius trend --start 01.11.2025
  aquarius trend --iso --start 2025-11-01 --end 2025-12-05 --format csv`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		startDate, err := trendDate(trendFlags.Start)
		if err != nil {
			return fmt.Errorf("--start: %w", err)
		}
		endDate := util.Today()
		if trendFlags.End != "" {
			endDate, err = trendDate(trendFlags.End)
			if err != nil {
				return fmt.Errorf("--end: %w", err)
			}
		}

		deps, err := buildDeps(cmd)
		if err != nil {
			return err
		}
		defer closeDeps(deps, &err)

		start := time.Now()
		tr, err := deps.Dashboard.Trend(deps.Context(cmd.Context()), dashboard.TrendParams{StartDate: startDate, EndDate: endDate})
		if err != nil {
			return err
		}
		return emit(cmd, deps, &model.Result{
			Kind:        model.KindTrend,
			GeneratedAt: util.Now(),
			Command:     "trend",
			Data:        &tr,
			Stats:       model.ResultStats{DurationMs: time.Since(start).Milliseconds(), Items: len(tr.Points)},
		})
	},
}

// trendDate validates a --start/--end value and returns it as DD.MM.YYYY.
func trendDate(s string) (string, error) {
	if trendFlags.ISO {
		return util.PeriodFromISO(s)
	}
	t, err := util.ParsePeriod(s)
	if err != nil {
		return "", err
	}
	return util.FormatPeriod(t), nil
}

func init() {
	rootCmd.AddCommand(trendCmd)
	f := trendCmd.Flags()
	f.StringVar(&trendFlags.Start, "start", "", "first day (DD.MM.YYYY)")
	f.StringVar(&trendFlags.End, "end", "", "last day (DD.MM.YYYY, default today)")
	f.BoolVar(&trendFlags.ISO, "iso", false, "read --start and --end as YYYY-MM-DD")
	_ = trendCmd.MarkFlagRequired("start")
}
