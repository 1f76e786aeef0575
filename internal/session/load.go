package session

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"mcremap/internal/config"
	"mcremap/internal/deps"
	"mcremap/internal/formats"
	"mcremap/internal/mapping"
)

// LoadTree resolves every dependency concurrently, then parses them one by
// one in declaration order into a single tree and freezes it. Later
// dependencies see the names earlier ones added: MCP parameter and package
// tables are keyed by searge names that only an MCPConfig dependency
// provides. It returns the local path of each dependency.
func LoadTree(ctx context.Context, resolver *deps.Resolver, dependencies []deps.Dependency, settings *config.Settings, logger *slog.Logger) (*mapping.Tree, []string, error) {
	opts := formats.ParseOptions{
		Side:                  formats.Side(settings.Side()),
		SourceNamespace:       settings.SourceNamespace(),
		IntermediateNamespace: settings.IntermediateNamespace(),
		DestinationNamespace:  settings.NamedNamespace(),
		Logger:                logger,
	}

	files := make([]string, len(dependencies))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(settings.Threads())
	for i, d := range dependencies {
		i, d := i, d
		g.Go(func() error {
			path, err := resolver.Resolve(gctx, d)
			if err != nil {
				return err
			}
			files[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	// single writer
	tree := mapping.NewTree()
	for i, d := range dependencies {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		path := files[i]
		if formats.IsMappingFile(path) {
			if err := formats.ParseFile(ctx, path, tree, opts); err != nil {
				return nil, nil, err
			}
			logger.Debug("Parsed mapping file", "id", d.ID(), "path", path)
			continue
		}
		profile, err := formats.Parse(ctx, path, tree, opts)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("Parsed mapping archive", "id", d.ID(), "profile", profile.Name)
	}
	tree.Freeze()
	return tree, files, nil
}
