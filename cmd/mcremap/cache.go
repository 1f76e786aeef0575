package main

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"mcremap/internal/session"
	"mcremap/internal/storage"
)

var cacheCmd = &cobra.Command{
	Use:   "cache <artifact>",
	Short: "List the cached remaps of an artifact",
	Long: `List every remapped copy of an artifact recorded in the project database, with
the namespaces, mapping dependencies and hops that produced it.`,
	Args: cobra.ExactArgs(1),
	RunE: runCache,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
}

func runCache(cmd *cobra.Command, args []string) error {
	artifact, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	return withSession(cmd, nil, func(ctx context.Context, s *session.Session) error {
		entries, err := s.Cache.Entries(artifact)
		if err != nil {
			return err
		}
		if entries == nil {
			entries = []*storage.Artifact{}
		}
		return printResponse(cmd, &CacheResponseCLI{Artifact: artifact, Entries: entries})
	})
}

// CacheResponseCLI lists the cached remaps of one artifact
type CacheResponseCLI struct {
	Artifact string              `json:"artifact" yaml:"artifact"`
	Entries  []*storage.Artifact `json:"entries" yaml:"entries"`
}
