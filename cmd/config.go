package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/aquarius/internal/config"
	"github.com/derickschaefer/aquarius/internal/render"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage aquarius configuration",
	Long:  `Read and write aquarius configuration stored in config.json.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a template config.json in the current directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultConfigFile
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config.json already exists at %s (delete it first to re-initialise)", path)
		}
		if err := config.WriteFile(path, config.Template()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Created %s\n", path)
		fmt.Fprintln(cmd.OutOrStdout(), "  Edit origin to point at your dam API.")
		return nil
	},
}

// configOut is the JSON shape of `config get`.
type configOut struct {
	Origin          string  `json:"origin"`
	Format          string  `json:"default_format"`
	Timeout         string  `json:"timeout"`
	Rate            float64 `json:"rate"`
	DBPath          string  `json:"db_path"`
	BreakerFailures uint32  `json:"breaker_failures"`
	Concurrency     int     `json:"concurrency"`
	MetricsFile     string  `json:"metrics_file"`
	ConfigFile      string  `json:"config_file"`
	EnvFile         string  `json:"env_file"`
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the current resolved configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(config.Overrides{
			Origin: globalFlags.Origin,
			DBPath: globalFlags.DBPath,
			Format: globalFlags.Format,
		})
		if err != nil {
			return err
		}

		out := configOut{
			Origin:          cfg.Origin,
			Format:          cfg.Format,
			Timeout:         cfg.Timeout.String(),
			Rate:            cfg.Rate,
			DBPath:          cfg.DBPath,
			BreakerFailures: cfg.BreakerFailures,
			Concurrency:     cfg.Concurrency,
			MetricsFile:     orNone(cfg.MetricsFile, "(not set)"),
			ConfigFile:      orNone(cfg.ConfigPath, "(not found)"),
			EnvFile:         orNone(cfg.EnvPath, "(not found)"),
		}

		switch resolveFormat(cfg.Format) {
		case render.FormatJSON:
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		default:
			printKVTable(cmd.OutOrStdout(), [][]string{
				{"origin", out.Origin},
				{"default_format", out.Format},
				{"timeout", out.Timeout},
				{"rate", fmt.Sprintf("%.1f req/s", out.Rate)},
				{"db_path", out.DBPath},
				{"breaker_failures", strconv.FormatUint(uint64(out.BreakerFailures), 10)},
				{"concurrency", strconv.Itoa(out.Concurrency)},
				{"metrics_file", out.MetricsFile},
				{"config_file", out.ConfigFile},
				{"env_file", out.EnvFile},
			})
			return nil
		}
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value in config.json",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]

		// Load existing file or start from template
		path := config.DefaultConfigFile
		f := config.Template()
		existing, err := config.ReadFile(path)
		switch {
		case err == nil:
			f = *existing
		case !errors.Is(err, os.ErrNotExist):
			return err
		}

		if err := f.Set(key, val); err != nil {
			return err
		}
		if err := config.WriteFile(path, f); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Set %s in %s\n", key, path)
		return nil
	},
}

func orNone(s, none string) string {
	if s == "" {
		return none
	}
	return s
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}
