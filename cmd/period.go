package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/aquarius/internal/period"
	"github.com/derickschaefer/aquarius/internal/util"
)

var periodCmd = &cobra.Command{
	Use:   "period",
	Short: "Show or change the selected reporting period",
	Long: `The selected period is the date every data command queries unless it is
given --date. It is saved in the settings database and survives restarts.
An empty period means latest available data.`,
}

var periodGetISO bool

var periodGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the selected period",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		deps, err := buildDeps(cmd)
		if err != nil {
			return err
		}
		defer closeDeps(deps, &err)

		s, err := period.FromContext(deps.Context(cmd.Context()))
		if err != nil {
			return err
		}
		p := s.Period()
		if p == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "(latest)")
			return nil
		}
		if periodGetISO {
			if p, err = util.PeriodToISO(p); err != nil {
				return err
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), p)
		return nil
	},
}

var periodSetCmd = &cobra.Command{
	Use:   "set <DATE>",
	Short: "Select a reporting period (DD.MM.YYYY or YYYY-MM-DD)",
	Example: `  aquarius period set 15.01.2025
  aquarius period set 2025-01-15`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		p, err := util.NormalizePeriod(args[0])
		if err != nil {
			return err
		}
		if p == "" {
			return errors.New("empty period: use 'aquarius period reset' to return to latest data")
		}

		deps, err := buildDeps(cmd)
		if err != nil {
			return err
		}
		defer closeDeps(deps, &err)

		s, err := period.FromContext(deps.Context(cmd.Context()))
		if err != nil {
			return err
		}
		if err := s.Set(p); err != nil {
			return err
		}
		if !deps.Config.Quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Period set to %s\n", p)
		}
		return nil
	},
}

var periodResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the selected period and return to latest data",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		deps, err := buildDeps(cmd)
		if err != nil {
			return err
		}
		defer closeDeps(deps, &err)

		s, err := period.FromContext(deps.Context(cmd.Context()))
		if err != nil {
			return err
		}
		if err := s.Reset(); err != nil {
			return err
		}
		if !deps.Config.Quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Period reset; using latest data")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(periodCmd)
	periodCmd.AddCommand(periodGetCmd)
	periodCmd.AddCommand(periodSetCmd)
	periodCmd.AddCommand(periodResetCmd)

	periodGetCmd.Flags().BoolVar(&periodGetISO, "iso", false, "print the period as YYYY-MM-DD")
}
