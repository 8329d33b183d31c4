package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/derickschaefer/aquarius/internal/app"
	"github.com/derickschaefer/aquarius/internal/model"
	"github.com/derickschaefer/aquarius/internal/period"
	"github.com/derickschaefer/aquarius/internal/render"
	"github.com/derickschaefer/aquarius/internal/util"
)

// resolveFormat returns the effective format string, falling back to "table".
func resolveFormat(cfgFormat string) string {
	if globalFlags.Format != "" {
		return globalFlags.Format
	}
	if cfgFormat != "" {
		return cfgFormat
	}
	return render.FormatTable
}

// outputWriter returns the writer for command output: def, or the --out file
// when set. The returned close function must always be called.
func outputWriter(def io.Writer) (io.Writer, func() error, error) {
	if globalFlags.Out == "" {
		return def, func() error { return nil }, nil
	}
	f, err := os.Create(globalFlags.Out)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, f.Close, nil
}

// emit renders result in the configured format, followed by the footer on
// stderr.
// closeDeps closes deps and joins any teardown failure, such as an
// unwritable metrics_file, into the command's result.
func closeDeps(deps *app.Deps, err *error) {
	*err = errors.Join(*err, deps.Close())
}

func emit(cmd *cobra.Command, deps *app.Deps, result *model.Result) error {
	if deps.Config.Quiet {
		return nil
	}
	w, closeFn, err := outputWriter(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if err := render.Render(w, result, resolveFormat(deps.Config.Format)); err != nil {
		_ = closeFn()
		return err
	}
	if err := closeFn(); err != nil {
		return err
	}
	render.PrintFooter(cmd.ErrOrStderr(), result, deps.Config.Verbose)
	return nil
}

// targetDate returns the period a data command should query. A --date
// value wins for this command only and is never persisted; otherwise the
// selected period from the store in ctx is used. Either may be empty,
// meaning latest data.
func targetDate(ctx context.Context, flagDate string) (string, error) {
	if flagDate != "" {
		return util.NormalizePeriod(flagDate)
	}
	s, err := period.FromContext(ctx)
	if err != nil {
		return "", err
	}
	return s.Period(), nil
}

// parseDamNames resolves dam arguments, removing duplicates while
// preserving order. No arguments selects every known dam.
func parseDamNames(args []string) ([]model.DamName, error) {
	if len(args) == 0 {
		return append([]model.DamName(nil), model.KnownDams...), nil
	}
	seen := make(map[model.DamName]bool)
	out := make([]model.DamName, 0, len(args))
	for _, a := range args {
		name, err := model.ParseDamName(a)
		if err != nil {
			return nil, err
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out, nil
}

// damCompletions offers the known dam names for shell completion.
func damCompletions(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var out []string
	for _, d := range model.KnownDams {
		if strings.HasPrefix(strings.ToLower(string(d)), strings.ToLower(toComplete)) {
			out = append(out, string(d))
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// printSimpleTable renders a simple table with headers using tablewriter.
// The add callback is called with row values as variadic strings.
func printSimpleTable(w io.Writer, headers []string, fill func(add func(...string))) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(headers)
	tw.SetBorder(true)
	tw.SetRowLine(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAutoWrapText(false)

	fill(func(cols ...string) {
		tw.Append(cols)
	})
	tw.Render()
}

// printKVTable renders a two-column key/value listing with aligned columns.
func printKVTable(w io.Writer, rows [][]string) {
	maxKey := 0
	for _, r := range rows {
		if len(r[0]) > maxKey {
			maxKey = len(r[0])
		}
	}
	for _, r := range rows {
		padding := strings.Repeat(" ", maxKey-len(r[0]))
		fmt.Fprintf(w, "  %s%s  %s\n", r[0], padding, r[1])
	}
}
