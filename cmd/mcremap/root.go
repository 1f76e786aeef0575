package main

import (
	"github.com/spf13/cobra"

	"mcremap/internal/version"
)

var (
	// projectFlag is the CLI --project flag value
	projectFlag string
	verboseFlag int
	quietFlag   bool
	formatFlag  string
)

var rootCmd = &cobra.Command{
	Use:   "mcremap",
	Short: "mcremap - Minecraft mapping normalizer and jar remapper",
	Long: `mcremap reads Minecraft mapping archives in any of the historical formats
(tiny, SRG, TSRG, RGS and the MCP CSV tables), merges them into one namespace
graph and remaps jars between namespaces, caching every result.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("mcremap version {{.Version}}\n")
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&projectFlag, "project", "", "Project root holding .mcremap/ and remap.toml (default: current directory)")
	pf.CountVarP(&verboseFlag, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	pf.BoolVarP(&quietFlag, "quiet", "q", false, "Suppress log output")
	pf.StringVar(&formatFlag, "format", string(FormatHuman), "Output format (human, json, yaml)")
}
