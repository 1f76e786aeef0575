package formats

import (
	"strings"

	remaperrors "mcremap/internal/errors"
)

// Profile is one known archive layout: the types it must contain, the types
// it must not contain, and the types that are present but never read.
type Profile struct {
	Name     string
	contains typeSet
	excludes typeSet
	ignore   typeSet
}

// Contains lists the required types.
func (p Profile) Contains() []LogicalType { return p.contains.types() }

// Excludes lists the forbidden types.
func (p Profile) Excludes() []LogicalType { return p.excludes.types() }

// Ignores reports whether entries of type t are skipped for this profile.
func (p Profile) Ignores(t LogicalType) bool { return p.ignore.has(t) }

func (p Profile) String() string { return p.Name }

func (p Profile) matches(present typeSet) bool {
	return present&p.contains == p.contains && present&p.excludes == 0
}

// Profiles in priority order. The first match wins.
var (
	TinyJar = Profile{
		Name:     "tiny-jar",
		contains: setOf(Tiny),
		excludes: setOf(SRGClient, SRGServer, SRGJoined, TSRG, RGSClient, RGSServer, MCPMethods, MCPParams, MCPFields, MCPClasses),
	}
	NewMCPConfig = Profile{
		Name:     "new-mcpconfig",
		contains: setOf(TSRG),
		excludes: setOf(MCPFields, MCPMethods, MCPParams, MCPClasses, RGSServer, RGSClient, SRGServer, SRGClient, SRGJoined),
	}
	MCPConfig = Profile{
		Name:     "mcpconfig",
		contains: setOf(SRGJoined),
		excludes: setOf(Tiny, TSRG, MCPFields, MCPMethods, MCPParams, MCPClasses, RGSClient, RGSServer, SRGClient, SRGServer),
	}
	NewForgeMCP = Profile{
		Name:     "newforge-mcp",
		contains: setOf(MCPMethods, MCPParams, MCPFields),
		excludes: setOf(MCPClasses, RGSServer, RGSClient, SRGServer, SRGClient, SRGJoined),
	}
	MCP = Profile{
		Name:     "mcp",
		contains: setOf(MCPMethods, MCPFields),
		excludes: setOf(RGSClient, RGSServer, MCPClasses, TSRG),
	}
	OldMCP = Profile{
		Name:     "old-mcp",
		contains: setOf(MCPMethods, MCPFields, MCPClasses),
		excludes: setOf(RGSClient, RGSServer, TSRG),
	}
	OlderMCP = Profile{
		Name:     "older-mcp",
		contains: setOf(RGSClient),
		excludes: setOf(SRGClient, SRGServer, SRGJoined, TSRG),
		ignore:   setOf(MCPClasses),
	}
)

var profiles = []Profile{TinyJar, NewMCPConfig, MCPConfig, NewForgeMCP, MCP, OldMCP, OlderMCP}

// Profiles returns the profile table in priority order.
func Profiles() []Profile {
	return append([]Profile(nil), profiles...)
}

// ProfileByName looks a profile up by name.
func ProfileByName(name string) (Profile, bool) {
	for _, p := range profiles {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}

// Present returns the logical types found among entry names, in type order.
func Present(entries []string) []LogicalType {
	return presentSet(entries).types()
}

func presentSet(entries []string) typeSet {
	var present typeSet
	for _, e := range entries {
		if t, ok := TypeOf(e); ok {
			present |= setOf(t)
		}
	}
	return present
}

// Detect picks the first profile whose required types are all present and
// none of whose excluded types are.
func Detect(entries []string) (Profile, error) {
	present := presentSet(entries)
	for _, p := range profiles {
		if p.matches(present) {
			return p, nil
		}
	}
	names := make([]string, 0)
	for _, t := range present.types() {
		names = append(names, t.String())
	}
	return Profile{}, remaperrors.Newf(remaperrors.UnrecognizedFormat,
		"no mapping profile matches signature files [%s]", strings.Join(names, ", ")).
		WithDetails(map[string]interface{}{"present": names})
}
