package main

import (
	"context"

	"github.com/spf13/cobra"

	"mcremap/internal/mapping"
	"mcremap/internal/session"
)

var namespacesCmd = &cobra.Command{
	Use:   "namespaces",
	Short: "Show the namespaces of the merged mapping graph",
	Long: `Load every mapping dependency of the project and print the namespaces they
provide, which namespaces each one has direct mapping data to, and entry counts.`,
	Args: cobra.NoArgs,
	RunE: runNamespaces,
}

func init() {
	rootCmd.AddCommand(namespacesCmd)
}

func runNamespaces(cmd *cobra.Command, args []string) error {
	return withSession(cmd, nil, func(ctx context.Context, s *session.Session) error {
		return printResponse(cmd, describeTree(s.Tree, s.Manifest.IDs()))
	})
}

// NamespacesResponseCLI describes the merged mapping graph
type NamespacesResponseCLI struct {
	Namespaces   []NamespaceCLI `json:"namespaces" yaml:"namespaces"`
	Stats        mapping.Stats  `json:"stats" yaml:"stats"`
	Dependencies []string       `json:"dependencies" yaml:"dependencies"`
}

// NamespaceCLI is one node of the namespace graph
type NamespaceCLI struct {
	Index     int      `json:"index" yaml:"index"`
	Name      string   `json:"name" yaml:"name"`
	Neighbors []string `json:"neighbors" yaml:"neighbors"`
}

func describeTree(tree *mapping.Tree, dependencies []string) *NamespacesResponseCLI {
	resp := &NamespacesResponseCLI{
		Stats:        tree.Stats(),
		Dependencies: dependencies,
	}
	for i, name := range tree.Namespaces() {
		ns := NamespaceCLI{Index: i, Name: name, Neighbors: []string{}}
		for _, n := range tree.Neighbors(i) {
			ns.Neighbors = append(ns.Neighbors, tree.NamespaceName(n))
		}
		resp.Namespaces = append(resp.Namespaces, ns)
	}
	return resp
}
