package main

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"mcremap/internal/config"
	"mcremap/internal/remap"
	"mcremap/internal/session"
)

var (
	provideFrom      string
	provideFallback  string
	provideTo        string
	provideRefresh   bool
	provideClasspath []string
)

var provideCmd = &cobra.Command{
	Use:   "provide <jar>",
	Short: "Return the cached remap of a jar, producing it when needed",
	Long: `Provide a jar in another namespace. The result is stored beside the input (or
under cache.dir) in a directory named after the mapping dependencies, and reused
until the dependencies change or --refresh is given.

Examples:
  mcremap provide libs/forge-1.12.2.jar --from=searge --to=named
  mcremap provide libs/forge-1.12.2.jar --from=searge --to=named --refresh`,
	Args: cobra.ExactArgs(1),
	RunE: runProvide,
}

func init() {
	provideCmd.Flags().StringVar(&provideFrom, "from", "", "Namespace the jar is in (default: remap.prod)")
	provideCmd.Flags().StringVar(&provideFallback, "fallback", "", "Namespace of names missing from --from")
	provideCmd.Flags().StringVar(&provideTo, "to", "", "Namespace to provide the jar in")
	provideCmd.Flags().BoolVar(&provideRefresh, "refresh", false, "Remap even when a cached result exists")
	provideCmd.Flags().StringSliceVar(&provideClasspath, "classpath", nil, "Classpath entries visible to every hop")
	_ = provideCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(provideCmd)
}

func runProvide(cmd *cobra.Command, args []string) error {
	artifact, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}

	overrides := func(c *config.Config) {
		if provideRefresh {
			c.Cache.Refresh = true
		}
	}
	return withSession(cmd, overrides, func(ctx context.Context, s *session.Session) error {
		req := remap.ProvideRequest{
			Artifact:  artifact,
			From:      firstNonEmpty(provideFrom, s.Settings.ProdNamespace()),
			Fallback:  provideFallback,
			To:        provideTo,
			Classpath: provideClasspath,
			Refresh:   s.Settings.Refresh(),
		}
		before := s.Provider.Runs()
		path, err := s.Provider.Provide(ctx, req)
		if err != nil {
			return err
		}
		return printResponse(cmd, &ProvideResponseCLI{
			Artifact: artifact,
			From:     req.From,
			To:       req.To,
			Path:     path,
			Cached:   s.Provider.Runs() == before,
		})
	})
}

// ProvideResponseCLI describes a provided artifact
type ProvideResponseCLI struct {
	Artifact string `json:"artifact" yaml:"artifact"`
	From     string `json:"from" yaml:"from"`
	To       string `json:"to" yaml:"to"`
	Path     string `json:"path" yaml:"path"`
	Cached   bool   `json:"cached" yaml:"cached"`
}
