// Package formats detects which legacy mapping layout an archive uses and
// parses its signature files into a mapping.Tree.
package formats

import (
	"github.com/bmatcuk/doublestar/v4"

	"mcremap/internal/paths"
)

// LogicalType is the role of one signature file. Declaration order is the
// order entries are parsed in.
type LogicalType int

const (
	Tiny LogicalType = iota
	SRGClient
	SRGServer
	SRGJoined
	TSRG
	RGSClient
	RGSServer
	MCPClasses
	MCPMethods
	MCPParams
	MCPFields
	MCPPackages
	numTypes
)

var typeInfo = [numTypes]struct {
	name string
	file string
}{
	Tiny:        {"tiny", "mappings.tiny"},
	SRGClient:   {"srg-client", "client.srg"},
	SRGServer:   {"srg-server", "server.srg"},
	SRGJoined:   {"srg-joined", "joined.srg"},
	TSRG:        {"tsrg", "joined.tsrg"},
	RGSClient:   {"rgs-client", "minecraft.rgs"},
	RGSServer:   {"rgs-server", "minecraft_server.rgs"},
	MCPClasses:  {"mcp-classes", "classes.csv"},
	MCPMethods:  {"mcp-methods", "methods.csv"},
	MCPParams:   {"mcp-params", "params.csv"},
	MCPFields:   {"mcp-fields", "fields.csv"},
	MCPPackages: {"mcp-packages", "packages.csv"},
}

// AllTypes lists every logical type in parse order.
func AllTypes() []LogicalType {
	out := make([]LogicalType, 0, numTypes)
	for t := Tiny; t < numTypes; t++ {
		out = append(out, t)
	}
	return out
}

func (t LogicalType) String() string {
	if t < 0 || t >= numTypes {
		return "unknown"
	}
	return typeInfo[t].name
}

// FileName is the base name a signature file of this type must have.
func (t LogicalType) FileName() string {
	return typeInfo[t].file
}

// Pattern is the doublestar pattern matched against normalised entry names.
func (t LogicalType) Pattern() string {
	return "**/" + typeInfo[t].file
}

// Matches reports whether an archive entry name is a signature file of this type.
// The file name must match exactly, at the archive root or under any directory.
func (t LogicalType) Matches(entry string) bool {
	ok, err := doublestar.Match(t.Pattern(), paths.NormalizeEntryName(entry))
	return err == nil && ok
}

// TypeOf returns the logical type of an entry, if it has one.
func TypeOf(entry string) (LogicalType, bool) {
	for t := Tiny; t < numTypes; t++ {
		if t.Matches(entry) {
			return t, true
		}
	}
	return 0, false
}

// Side selects which environment's tables apply.
type Side string

const (
	SideClient   Side = "client"
	SideServer   Side = "server"
	SideCombined Side = "combined"
)

// typeSet is a small bit set of logical types.
type typeSet uint32

func setOf(types ...LogicalType) typeSet {
	var s typeSet
	for _, t := range types {
		s |= 1 << uint(t)
	}
	return s
}

func (s typeSet) has(t LogicalType) bool { return s&(1<<uint(t)) != 0 }

func (s typeSet) types() []LogicalType {
	var out []LogicalType
	for t := Tiny; t < numTypes; t++ {
		if s.has(t) {
			out = append(out, t)
		}
	}
	return out
}
