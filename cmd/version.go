package cmd

import (
	"encoding/json"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/aquarius/internal/api"
	"github.com/derickschaefer/aquarius/internal/model"
	"github.com/derickschaefer/aquarius/internal/store"
)

// Version is overwritten at release time:
//
//	go build -ldflags "-X github.com/derickschaefer/aquarius/cmd.Version=v0.3.1"
var Version = "v0.3.0"

// versionInfo describes what this binary speaks: the API path prefix, the
// settings schema it writes and the dams it knows by name.
type versionInfo struct {
	Version     string   `json:"version"`
	APIPrefix   string   `json:"api_prefix"`
	StoreSchema int      `json:"store_schema"`
	Dams        []string `json:"dams"`
	Go          string   `json:"go"`
	Platform    string   `json:"platform"`
}

func currentVersion() versionInfo {
	dams := make([]string, len(model.KnownDams))
	for i, d := range model.KnownDams {
		dams[i] = string(d)
	}
	return versionInfo{
		Version:     Version,
		APIPrefix:   api.Prefix,
		StoreSchema: store.CurrentSchema,
		Dams:        dams,
		Go:          runtime.Version(),
		Platform:    runtime.GOOS + "/" + runtime.GOARCH,
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the aquarius version",
	Long: `Print the aquarius version together with the API prefix it calls, the
settings schema it writes and the dams it knows. --format json prints the
same as an object.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := currentVersion()
		out := cmd.OutOrStdout()

		if globalFlags.Format == "json" || globalFlags.Format == "jsonl" {
			enc := json.NewEncoder(out)
			if globalFlags.Format == "json" {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(info)
		}

		fmt.Fprintf(out, "aquarius %s (%s, %s)\n", info.Version, info.Go, info.Platform)
		fmt.Fprintf(out, "api      %s\n", info.APIPrefix)
		fmt.Fprintf(out, "store    schema v%d\n", info.StoreSchema)
		fmt.Fprintf(out, "dams     %s\n", strings.Join(info.Dams, ", "))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
