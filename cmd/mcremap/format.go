package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"mcremap/internal/remap"
	"mcremap/internal/version"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
	FormatHuman OutputFormat = "human"
)

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatYAML:
		return formatYAML(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// formatJSON formats the response as JSON
func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

func formatYAML(resp interface{}) (string, error) {
	data, err := yaml.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

// formatHuman formats the response in human-readable format
func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *DetectResponseCLI:
		return formatDetectHuman(v), nil
	case *NamespacesResponseCLI:
		return formatNamespacesHuman(v), nil
	case *ResolveResponseCLI:
		return formatResolveHuman(v), nil
	case *ExportResponseCLI:
		return fmt.Sprintf("%s %s (%s)", color.GreenString("Wrote"), v.Output, strings.Join(v.Namespaces, " -> ")), nil
	case *RemapResponseCLI:
		return formatRemapHuman(v), nil
	case *ProvideResponseCLI:
		return formatProvideHuman(v), nil
	case *CacheResponseCLI:
		return formatCacheHuman(v), nil
	case *VersionResponseCLI:
		return version.Full() + "\nGo: " + v.GoVersion, nil
	default:
		// For unknown types, fall back to JSON
		return formatJSON(resp)
	}
}

func heading(b *strings.Builder, title string) {
	b.WriteString(color.CyanString(title) + "\n")
	b.WriteString(strings.Repeat("─", 60) + "\n")
}

func formatDetectHuman(resp *DetectResponseCLI) string {
	var b strings.Builder
	heading(&b, resp.Archive)

	if len(resp.Entries) == 0 {
		b.WriteString("  (no signature files)\n")
	}
	for _, e := range resp.Entries {
		fmt.Fprintf(&b, "  %-12s %s\n", e.Type, e.Name)
	}
	b.WriteString("\n")
	if resp.Profile != "" {
		fmt.Fprintf(&b, "%s %s", color.GreenString("✓ Profile:"), resp.Profile)
	} else {
		fmt.Fprintf(&b, "%s %s", color.RedString("✗"), resp.Error)
	}
	return b.String()
}

func formatNamespacesHuman(resp *NamespacesResponseCLI) string {
	var b strings.Builder
	heading(&b, "Namespaces")

	for _, ns := range resp.Namespaces {
		neighbors := "(none)"
		if len(ns.Neighbors) > 0 {
			neighbors = strings.Join(ns.Neighbors, ", ")
		}
		fmt.Fprintf(&b, "  %d. %-14s %s %s\n", ns.Index, ns.Name, color.HiBlackString("->"), neighbors)
	}

	st := resp.Stats
	fmt.Fprintf(&b, "\nClasses: %d  Fields: %d  Methods: %d  Args: %d  Vars: %d\n",
		st.Classes, st.Fields, st.Methods, st.Args, st.Vars)
	if len(resp.Dependencies) > 0 {
		fmt.Fprintf(&b, "Dependencies: %s", strings.Join(resp.Dependencies, ", "))
	} else {
		b.WriteString("Dependencies: (none)")
	}
	return b.String()
}

func formatResolveHuman(resp *ResolveResponseCLI) string {
	symbol := resp.Query
	if resp.Owner != "" {
		symbol = resp.Owner + "." + resp.Query
	}
	symbol += resp.Desc
	if !resp.Found {
		return fmt.Sprintf("%s %s %s: no name in %s", color.RedString("✗"), resp.Kind, symbol, resp.Destination)
	}
	return fmt.Sprintf("%s %s %s %s %s (%s)",
		color.GreenString("✓"), resp.Kind, symbol, color.HiBlackString("->"), resp.Name, resp.Destination)
}

func formatRemapHuman(resp *RemapResponseCLI) string {
	var b strings.Builder
	heading(&b, resp.Input)
	if len(resp.Hops) == 0 {
		b.WriteString("  (same namespace, copied)\n")
	}
	for i, h := range resp.Hops {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, hopLabel(h))
	}
	fmt.Fprintf(&b, "\n%s %s (%dms)", color.GreenString("✓ Wrote"), resp.Output, resp.DurationMs)
	return b.String()
}

func hopLabel(h remap.Hop) string {
	if h.Fallback == "" || h.Fallback == h.From {
		return h.From + " -> " + h.To
	}
	return fmt.Sprintf("%s -> %s %s", h.From, h.To, color.HiBlackString("(fallback "+h.Fallback+")"))
}

func formatProvideHuman(resp *ProvideResponseCLI) string {
	state := color.YellowString("remapped")
	if resp.Cached {
		state = color.GreenString("cached")
	}
	return fmt.Sprintf("%s -> %s [%s]\n%s", resp.From, resp.To, state, resp.Path)
}

func formatCacheHuman(resp *CacheResponseCLI) string {
	var b strings.Builder
	heading(&b, resp.Artifact)
	if len(resp.Entries) == 0 {
		b.WriteString("  (no cached remaps)")
		return b.String()
	}
	for _, e := range resp.Entries {
		fmt.Fprintf(&b, "  %s -> %s  %s\n", e.SourceNamespace, e.DestinationNamespace,
			color.HiBlackString(e.UpdatedAt.Format("2006-01-02 15:04:05")))
		fmt.Fprintf(&b, "    %s\n", e.Path)
		if len(e.Hops) > 0 {
			fmt.Fprintf(&b, "    hops: %s\n", strings.Join(e.Hops, ", "))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
