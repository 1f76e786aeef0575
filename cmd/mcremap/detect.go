package main

import (
	"github.com/spf13/cobra"

	"mcremap/internal/archive"
	"mcremap/internal/formats"
)

var detectCmd = &cobra.Command{
	Use:   "detect <archive>",
	Short: "Identify the mapping format of an archive",
	Long: `List the signature files found in a mapping archive and the format profile
they match. Profiles are tried in a fixed order; the first whose required files
are all present, and whose excluded files are all absent, wins.

Examples:
  mcremap detect mcp_stable-39-1.12.zip
  mcremap detect --format=json yarn-1.16.5+build.1.jar`,
	Args: cobra.ExactArgs(1),
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	resp, err := detectArchive(args[0])
	if err != nil {
		return err
	}
	if err := printResponse(cmd, resp); err != nil {
		return err
	}
	return resp.err
}

// DetectResponseCLI describes a mapping archive's signature files
type DetectResponseCLI struct {
	Archive string             `json:"archive" yaml:"archive"`
	Entries []DetectedEntryCLI `json:"entries" yaml:"entries"`
	Profile string             `json:"profile,omitempty" yaml:"profile,omitempty"`
	Error   string             `json:"error,omitempty" yaml:"error,omitempty"`

	err error
}

// DetectedEntryCLI is one signature file
type DetectedEntryCLI struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

// detectArchive reports on path. A failed detection is returned in the
// response; only read failures are errors.
func detectArchive(path string) (*DetectResponseCLI, error) {
	entries, err := archive.ListEntries(path)
	if err != nil {
		return nil, err
	}

	resp := &DetectResponseCLI{Archive: path, Entries: []DetectedEntryCLI{}}
	for _, e := range entries {
		if t, ok := formats.TypeOf(e); ok {
			resp.Entries = append(resp.Entries, DetectedEntryCLI{Name: e, Type: t.String()})
		}
	}

	profile, err := formats.Detect(entries)
	if err != nil {
		resp.Error = err.Error()
		resp.err = err
		return resp, nil
	}
	resp.Profile = profile.Name
	return resp, nil
}
