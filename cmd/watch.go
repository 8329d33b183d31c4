package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/derickschaefer/aquarius/internal/app"
	"github.com/derickschaefer/aquarius/internal/dashboard"
	"github.com/derickschaefer/aquarius/internal/model"
	"github.com/derickschaefer/aquarius/internal/period"
	"github.com/derickschaefer/aquarius/internal/refresh"
	"github.com/derickschaefer/aquarius/internal/util"
)

var watchFlags struct {
	Every    time.Duration
	Schedule string
	NoInput  bool
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the summary up to date",
	Long: `Print the summary, then print it again on a schedule and every time the
selected period changes.

Type a period (DD.MM.YYYY or YYYY-MM-DD) and press enter to select it, or
"reset" to return to latest data. Selections are saved like 'period set'.
Only the answer for the most recent selection is printed; slower answers for
earlier selections are dropped.

Watch ends at end of input, or on interrupt with --no-input.`,
	Example: `  aquarius watch
  aquarius watch --every 1m
  aquarius watch --schedule "0 7 * * *" --no-input`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		spec := watchFlags.Schedule
		if spec == "" {
			if watchFlags.Every <= 0 {
				return fmt.Errorf("--every must be positive")
			}
			spec = "@every " + watchFlags.Every.String()
		}

		deps, err := buildDeps(cmd)
		if err != nil {
			return err
		}
		defer closeDeps(deps, &err)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx = deps.Context(ctx)

		store, err := period.FromContext(ctx)
		if err != nil {
			return err
		}

		r := refresh.New(ctx, watchFetch(deps), watchApply(cmd, deps), deps.Logger, deps.Metrics)
		unbind := r.Bind(store)

		c := cron.New()
		if _, err := c.AddFunc(spec, func() { r.Trigger(store.Period()) }); err != nil {
			unbind()
			return fmt.Errorf("invalid schedule %q: %w", spec, err)
		}
		c.Start()
		deps.Logger.Info("watching summary", "api", deps.Client.BaseURL(), "schedule", spec, "period", store.Period())

		r.Trigger(store.Period())
		if watchFlags.NoInput {
			<-ctx.Done()
		} else {
			readPeriods(ctx, cmd.InOrStdin(), store, cmd.ErrOrStderr())
		}

		<-c.Stop().Done()
		unbind()
		if ctx.Err() != nil {
			r.Stop()
			return nil
		}
		r.Wait()
		return nil
	},
}

func watchFetch(deps *app.Deps) refresh.FetchFunc[*model.Result] {
	return func(ctx context.Context, p string) (*model.Result, error) {
		start := time.Now()
		s, err := deps.Dashboard.Summary(ctx, dashboard.SummaryParams{TargetDate: p})
		if err != nil {
			return nil, err
		}
		return summaryResult(s, p, start), nil
	}
}

func watchApply(cmd *cobra.Command, deps *app.Deps) refresh.ApplyFunc[*model.Result] {
	return func(p string, res *model.Result, err error) {
		if err == nil {
			err = emit(cmd, deps, res)
		}
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		}
	}
}

// readPeriods applies one period per input line until EOF or ctx ends.
func readPeriods(ctx context.Context, in io.Reader, store *period.Store, errw io.Writer) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if err := applyPeriodLine(store, line); err != nil {
				fmt.Fprintln(errw, "Error:", err)
			}
		}
	}
}

// applyPeriodLine selects the period typed on line. Blank lines are ignored.
func applyPeriodLine(store *period.Store, line string) error {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return nil
	case strings.EqualFold(line, "reset"):
		return store.Reset()
	}
	p, err := util.NormalizePeriod(line)
	if err != nil {
		return err
	}
	return store.Set(p)
}

func init() {
	rootCmd.AddCommand(watchCmd)
	f := watchCmd.Flags()
	f.DurationVar(&watchFlags.Every, "every", 5*time.Minute, "refresh interval")
	f.StringVar(&watchFlags.Schedule, "schedule", "", "cron schedule instead of --every (e.g. \"0 7 * * *\")")
	f.BoolVar(&watchFlags.NoInput, "no-input", false, "do not read periods from stdin; run until interrupted")
}
