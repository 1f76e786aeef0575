package main

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"mcremap/internal/remap"
	"mcremap/internal/session"
)

var (
	remapOutput      string
	remapDev         string
	remapDevFallback string
	remapProd        string
	remapClasspath   []string
)

var remapCmd = &cobra.Command{
	Use:   "remap <jar>",
	Short: "Remap a jar from the dev namespace to the prod namespace",
	Long: `Remap a jar along the shortest route through the namespace graph, one hop per
edge. Each hop sees the other classpath entries and the game jar in its source
namespace. The output keeps the input's manifest and is only written when every
hop succeeds.

Examples:
  mcremap remap build/libs/mod-dev.jar -o build/libs/mod.jar
  mcremap remap mod.jar -o mod-srg.jar --dev=named --dev-fallback=searge --prod=searge \
      --classpath=libs/forge.jar`,
	Args: cobra.ExactArgs(1),
	RunE: runRemap,
}

func init() {
	remapCmd.Flags().StringVarP(&remapOutput, "output", "o", "", "Output jar")
	remapCmd.Flags().StringVar(&remapDev, "dev", "", "Namespace the jar is in (default: remap.dev)")
	remapCmd.Flags().StringVar(&remapDevFallback, "dev-fallback", "", "Namespace of names missing from --dev (default: remap.devFallback)")
	remapCmd.Flags().StringVar(&remapProd, "prod", "", "Namespace to remap into (default: remap.prod)")
	remapCmd.Flags().StringSliceVar(&remapClasspath, "classpath", nil, "Classpath entries visible to every hop")
	_ = remapCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(remapCmd)
}

func runRemap(cmd *cobra.Command, args []string) error {
	input, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	output, err := filepath.Abs(remapOutput)
	if err != nil {
		return err
	}

	return withSession(cmd, nil, func(ctx context.Context, s *session.Session) error {
		req := remap.Request{
			Input:       input,
			Output:      output,
			Dev:         firstNonEmpty(remapDev, s.Settings.DevNamespace()),
			DevFallback: firstNonEmpty(remapDevFallback, s.Settings.DevFallbackNamespace()),
			Prod:        firstNonEmpty(remapProd, s.Settings.ProdNamespace()),
			Classpath:   remapClasspath,
		}
		s.Logger.Info("Remapping", "input", input, "dev", req.Dev, "prod", req.Prod)

		res, err := s.Provider.Pipeline().Run(ctx, req)
		if err != nil {
			return err
		}
		return printResponse(cmd, &RemapResponseCLI{
			Input:      input,
			Output:     res.Output,
			Hops:       res.Hops,
			DurationMs: res.Duration.Milliseconds(),
		})
	})
}

// RemapResponseCLI describes a completed remap
type RemapResponseCLI struct {
	Input      string      `json:"input" yaml:"input"`
	Output     string      `json:"output" yaml:"output"`
	Hops       []remap.Hop `json:"hops" yaml:"hops"`
	DurationMs int64       `json:"durationMs" yaml:"durationMs"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
