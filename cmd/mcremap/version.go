package main

import (
	"runtime"

	"github.com/spf13/cobra"

	"mcremap/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(cmd, &VersionResponseCLI{
			Version:   version.Version,
			Commit:    version.Revision(),
			BuildDate: version.Built(),
			GoVersion: runtime.Version(),
		})
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// VersionResponseCLI carries build information
type VersionResponseCLI struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildDate string `json:"buildDate" yaml:"buildDate"`
	GoVersion string `json:"goVersion" yaml:"goVersion"`
}
