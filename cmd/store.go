package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/aquarius/internal/store"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Inspect the local settings database",
	Long: `Commands for inspecting the bbolt database that holds aquarius settings
such as the selected period. API responses are never stored.`,
}

var storeStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show bucket sizes and the schema version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		deps, err := buildDeps(cmd)
		if err != nil {
			return err
		}
		defer closeDeps(deps, &err)
		s, err := deps.RequireStore()
		if err != nil {
			return err
		}

		stats, err := s.Stats()
		if err != nil {
			return fmt.Errorf("reading store: %w", err)
		}
		version, err := s.SchemaVersion()
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}

		out := cmd.OutOrStdout()
		printSimpleTable(out, []string{"BUCKET", "KEYS", "BYTES"}, func(add func(...string)) {
			for _, b := range stats {
				add(b.Name, fmt.Sprintf("%d", b.Count), fmt.Sprintf("%d", b.Bytes))
			}
		})
		fmt.Fprintf(out, "\nschema v%s  •  %s\n", version, s.Path())
		return nil
	},
}

var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every saved setting",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		deps, err := buildDeps(cmd)
		if err != nil {
			return err
		}
		defer closeDeps(deps, &err)
		s, err := deps.RequireStore()
		if err != nil {
			return err
		}

		for _, name := range store.AllBuckets {
			if err := s.ClearBucket(name); err != nil {
				return err
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Cleared %s\n", s.Path())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(storeCmd)
	storeCmd.AddCommand(storeStatsCmd)
	storeCmd.AddCommand(storeClearCmd)
}
