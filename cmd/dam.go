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

// ─── dam ──────────────────────────────────────────────────────────────────────

var damFlags struct {
	Date        string
	TrendPoints int
}

var damCmd = &cobra.Command{
	Use:   "dam <NAME>",
	Short: "Show one dam in detail",
	Long: `Show one dam's level, status, volume and year-over-year change, followed
by an estimated trend ending at the current reading.

Known dams: Asprokremmos, Evretou, Mavrokolympos (case-insensitive).`,
	Example: `  aquarius dam Asprokremmos
  aquarius dam evretou --date 01.12.2025
  aquarius dam Mavrokolympos --trend-points 0`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: damCompletions,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		name, err := model.ParseDamName(args[0])
		if err != nil {
			return err
		}
		if damFlags.TrendPoints < 0 {
			return fmt.Errorf("--trend-points must not be negative")
		}

		deps, err := buildDeps(cmd)
		if err != nil {
			return err
		}
		defer closeDeps(deps, &err)

		ctx := deps.Context(cmd.Context())
		target, err := targetDate(ctx, damFlags.Date)
		if err != nil {
			return err
		}

		start := time.Now()
		d, err := deps.Dashboard.Dam(ctx, dashboard.DamParams{Name: name, TargetDate: target})
		if err != nil {
			return err
		}
		return emit(cmd, deps, &model.Result{
			Kind:        model.KindDamDetail,
			GeneratedAt: util.Now(),
			Command:     "dam " + string(name),
			Period:      target,
			Data:        analytics.NewDamReport(d, damFlags.TrendPoints),
			Stats:       model.ResultStats{DurationMs: time.Since(start).Milliseconds(), Items: 1},
		})
	},
}

// ─── dams ─────────────────────────────────────────────────────────────────────

var damsDate string

var damsCmd = &cobra.Command{
	Use:   "dams [NAME...]",
	Short: "Compare dams side by side",
	Long: `Fetch several dams concurrently and list them side by side. With no
names every known dam is shown. If any dam fails to load nothing is shown and
the first error is reported.`,
	Example: `  aquarius dams
  aquarius dams Asprokremmos Evretou --format csv`,
	ValidArgsFunction: damCompletions,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		names, err := parseDamNames(args)
		if err != nil {
			return err
		}

		deps, err := buildDeps(cmd)
		if err != nil {
			return err
		}
		defer closeDeps(deps, &err)

		ctx := deps.Context(cmd.Context())
		target, err := targetDate(ctx, damsDate)
		if err != nil {
			return err
		}

		start := time.Now()
		dams, err := deps.Dashboard.Dams(ctx, names, target)
		if err != nil {
			return err
		}
		reports := make([]analytics.DamReport, len(dams))
		for i, d := range dams {
			reports[i] = *analytics.NewDamReport(d, 0)
		}
		return emit(cmd, deps, &model.Result{
			Kind:        model.KindDams,
			GeneratedAt: util.Now(),
			Command:     "dams",
			Period:      target,
			Data:        reports,
			Stats:       model.ResultStats{DurationMs: time.Since(start).Milliseconds(), Items: len(reports)},
		})
	},
}

func init() {
	rootCmd.AddCommand(damCmd)
	rootCmd.AddCommand(damsCmd)

	damCmd.Flags().StringVar(&damFlags.Date, "date", "", "period for this command only (DD.MM.YYYY or YYYY-MM-DD)")
	damCmd.Flags().IntVar(&damFlags.TrendPoints, "trend-points", analytics.DefaultTrendPoints, "samples in the estimated trend (0 to hide)")
	damsCmd.Flags().StringVar(&damsDate, "date", "", "period for this command only (DD.MM.YYYY or YYYY-MM-DD)")
}
