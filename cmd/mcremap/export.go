package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"mcremap/internal/mapping"
	"mcremap/internal/session"
)

var (
	exportFrom   string
	exportTo     []string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the merged mapping graph as tiny v2",
	Long: `Export the merged mapping graph as a tiny v2 file with --from as the first
column followed by each --to namespace. Without -o the file is written to stdout.

Examples:
  mcremap export --to=searge --to=named -o joined.tiny
  mcremap export --from=searge --to=named`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "Source column namespace (default: the configured source namespace)")
	exportCmd.Flags().StringSliceVar(&exportTo, "to", nil, "Destination column namespaces, in order")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: stdout)")
	_ = exportCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	return withSession(cmd, nil, func(ctx context.Context, s *session.Session) error {
		from := exportFrom
		if from == "" {
			from = s.Settings.SourceNamespace()
		}
		namespaces := append([]string{from}, exportTo...)

		if exportOutput == "" {
			return mapping.WriteTiny2(cmd.OutOrStdout(), s.Tree, namespaces...)
		}
		if err := writeExport(exportOutput, s.Tree, namespaces); err != nil {
			return err
		}
		return printResponse(cmd, &ExportResponseCLI{
			Output:     exportOutput,
			Namespaces: namespaces,
			Stats:      s.Tree.Stats(),
		})
	})
}

// writeExport writes the tiny file through a sibling temp file.
func writeExport(path string, tree *mapping.Tree, namespaces []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp) }()

	if err := mapping.WriteTiny2(f, tree, namespaces...); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// ExportResponseCLI describes a written tiny file
type ExportResponseCLI struct {
	Output     string        `json:"output" yaml:"output"`
	Namespaces []string      `json:"namespaces" yaml:"namespaces"`
	Stats      mapping.Stats `json:"stats" yaml:"stats"`
}
