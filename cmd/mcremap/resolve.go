package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"mcremap/internal/mapping"
	"mcremap/internal/session"
)

var (
	resolveKind     string
	resolveOwner    string
	resolveName     string
	resolveDesc     string
	resolveLv       int
	resolveStartOp  int
	resolveFrom     string
	resolveFallback string
	resolveTo       string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Translate one symbol name between namespaces",
	Long: `Look up a class, field, method, parameter or local variable in the merged
mapping graph. The answer is the destination name, else the fallback name, else
the source name. Parameters and locals with no destination or fallback name are
reported as not found.

For args and vars, --owner/--name/--desc identify the method and --lv gives the
local variable index.

Examples:
  mcremap resolve --kind=class --name=a --to=named
  mcremap resolve --kind=method --owner=a --name=b --desc="(I)V" --to=searge
  mcremap resolve --kind=arg --owner=a --name=b --desc="(I)V" --lv=1 --to=named --fallback=searge`,
	Args: cobra.NoArgs,
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&resolveKind, "kind", "class", "Symbol kind (class, field, method, arg, var)")
	resolveCmd.Flags().StringVar(&resolveOwner, "owner", "", "Owning class, in the source namespace")
	resolveCmd.Flags().StringVar(&resolveName, "name", "", "Class, field or method name, in the source namespace")
	resolveCmd.Flags().StringVar(&resolveDesc, "desc", "", "Member descriptor, in the source namespace")
	resolveCmd.Flags().IntVar(&resolveLv, "lv", 0, "Local variable index for args and vars")
	resolveCmd.Flags().IntVar(&resolveStartOp, "start-op", -1, "Start offset for vars (-1 matches any)")
	resolveCmd.Flags().StringVar(&resolveFrom, "from", "", "Source namespace (default: the configured source namespace)")
	resolveCmd.Flags().StringVar(&resolveFallback, "fallback", "", "Namespace consulted when the destination has no name")
	resolveCmd.Flags().StringVar(&resolveTo, "to", "", "Destination namespace")
	_ = resolveCmd.MarkFlagRequired("to")
	_ = resolveCmd.MarkFlagRequired("name")
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	kind, ok := mapping.ParseKind(resolveKind)
	if !ok {
		return fmt.Errorf("unknown symbol kind %q", resolveKind)
	}
	if kind != mapping.KindClass && resolveOwner == "" {
		return fmt.Errorf("--owner is required for %s lookups", kind)
	}

	return withSession(cmd, nil, func(ctx context.Context, s *session.Session) error {
		from := resolveFrom
		if from == "" {
			from = s.Settings.SourceNamespace()
		}
		q := mapping.Query{
			Kind:        kind,
			Owner:       resolveOwner,
			Name:        resolveName,
			Desc:        resolveDesc,
			LvIndex:     resolveLv,
			StartOp:     resolveStartOp,
			Source:      from,
			Fallback:    resolveFallback,
			Destination: resolveTo,
		}
		name, found, err := s.Tree.ResolveName(q)
		if err != nil {
			return err
		}
		return printResponse(cmd, &ResolveResponseCLI{
			Kind:        kind.String(),
			Owner:       q.Owner,
			Query:       q.Name,
			Desc:        q.Desc,
			Source:      q.Source,
			Fallback:    q.Fallback,
			Destination: q.Destination,
			Name:        name,
			Found:       found,
		})
	})
}

// ResolveResponseCLI is the answer to one name query
type ResolveResponseCLI struct {
	Kind        string `json:"kind" yaml:"kind"`
	Owner       string `json:"owner,omitempty" yaml:"owner,omitempty"`
	Query       string `json:"query" yaml:"query"`
	Desc        string `json:"desc,omitempty" yaml:"desc,omitempty"`
	Source      string `json:"source" yaml:"source"`
	Fallback    string `json:"fallback,omitempty" yaml:"fallback,omitempty"`
	Destination string `json:"destination" yaml:"destination"`
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Found       bool   `json:"found" yaml:"found"`
}
