package formats

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"mcremap/internal/archive"
	remaperrors "mcremap/internal/errors"
	"mcremap/internal/mapping"
	"mcremap/internal/slogutil"
)

// ParseOptions names the namespaces legacy formats imply and selects the side.
type ParseOptions struct {
	Side                  Side
	SourceNamespace       string
	IntermediateNamespace string
	DestinationNamespace  string
	Logger                *slog.Logger
}

func (o ParseOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slogutil.NewDiscardLogger()
	}
	return o.Logger
}

type typedEntry struct {
	name string
	typ  LogicalType
}

// Parse detects the archive's profile and reads its signature files into tree
// in logical-type order. Only the first entry of each type is read.
func Parse(ctx context.Context, archivePath string, tree *mapping.Tree, opts ParseOptions) (Profile, error) {
	log := opts.logger()

	entries, err := archive.ListEntries(archivePath)
	if err != nil {
		return Profile{}, remaperrors.New(remaperrors.UnrecognizedFormat, "not a mapping archive", err)
	}
	profile, err := Detect(entries)
	if err != nil {
		return Profile{}, err
	}
	log.Debug("Detected mapping format", "archive", archivePath, "profile", profile.Name, "side", opts.Side)

	var typed []typedEntry
	for _, e := range entries {
		if t, ok := TypeOf(e); ok {
			typed = append(typed, typedEntry{name: e, typ: t})
		}
	}
	sort.SliceStable(typed, func(i, j int) bool { return typed[i].typ < typed[j].typ })

	var done typeSet
	for _, te := range typed {
		if err := ctx.Err(); err != nil {
			return profile, err
		}
		if profile.Ignores(te.typ) {
			log.Debug("Ignoring mapping entry", "entry", te.name, "type", te.typ.String())
			continue
		}
		if done.has(te.typ) {
			log.Debug("Skipping duplicate mapping entry", "entry", te.name, "type", te.typ.String())
			continue
		}
		done |= setOf(te.typ)

		if !sideApplies(te.typ, opts.Side) {
			log.Debug("Skipping mapping entry for other side", "entry", te.name, "side", opts.Side)
			continue
		}

		log.Debug("Reading mapping entry", "entry", te.name, "type", te.typ.String())
		found, err := archive.ReadEntry(archivePath, te.name, func(r io.Reader) error {
			return readEntry(r, te.typ, profile, tree, opts)
		})
		if err != nil {
			return profile, entryError(te.name, err)
		}
		if !found {
			return profile, remaperrors.Newf(remaperrors.MissingEntry, "entry %s not found in %s", te.name, archivePath)
		}
	}
	return profile, nil
}

// ParseFile reads a bare mapping file, choosing the reader by extension.
func ParseFile(ctx context.Context, path string, tree *mapping.Tree, opts ParseOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var typ LogicalType
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tiny":
		typ = Tiny
	case ".srg":
		typ = SRGJoined
	case ".tsrg":
		typ = TSRG
	default:
		return remaperrors.Newf(remaperrors.UnrecognizedFormat, "unsupported mapping file %s", filepath.Base(path))
	}
	f, err := os.Open(path)
	if err != nil {
		return remaperrors.New(remaperrors.MissingEntry, path, err)
	}
	defer func() { _ = f.Close() }()

	opts.logger().Debug("Reading mapping file", "path", path, "type", typ.String())
	if err := readEntry(f, typ, Profile{}, tree, opts); err != nil {
		return entryError(filepath.Base(path), err)
	}
	return nil
}

// IsMappingFile reports whether path is a bare mapping file ParseFile accepts.
func IsMappingFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tiny", ".srg", ".tsrg":
		return true
	}
	return false
}

func sideApplies(t LogicalType, side Side) bool {
	switch t {
	case SRGClient, RGSClient:
		return side == SideClient
	case SRGServer, RGSServer:
		return side == SideServer
	default:
		return true
	}
}

// entryError classifies a failure while reading an entry that exists.
// Oversized lines and corrupt compressed data are content failures too.
func entryError(entry string, err error) error {
	if line := lineOf(err); line > 0 {
		return remaperrors.New(remaperrors.MalformedEntry, fmt.Sprintf("%s:%d", entry, line), err)
	}
	if _, ok := err.(*remaperrors.RemapError); ok {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return remaperrors.New(remaperrors.MalformedEntry, fmt.Sprintf("%s cannot be read", entry), err)
}

func readEntry(r io.Reader, t LogicalType, p Profile, tree *mapping.Tree, o ParseOptions) error {
	legacy := func() *mapping.Visitor {
		return tree.Visit(o.SourceNamespace, o.IntermediateNamespace)
	}
	names := func() *mapping.Visitor {
		return tree.Visit(o.IntermediateNamespace, o.DestinationNamespace)
	}
	old := p.Name == OldMCP.Name
	older := p.Name == OlderMCP.Name

	switch t {
	case Tiny:
		return readTiny(r, tree)
	case SRGClient, SRGServer, SRGJoined:
		return readSRG(r, legacy())
	case TSRG:
		return readTSRG(r, legacy())
	case RGSClient, RGSServer:
		return readRGS(r, legacy())
	case MCPClasses:
		return readOldMCPClasses(r, tree.Visit(o.SourceNamespace, o.IntermediateNamespace, o.DestinationNamespace), o.Side)
	case MCPMethods, MCPFields:
		kind := mapping.KindMethod
		if t == MCPFields {
			kind = mapping.KindField
		}
		switch {
		case old:
			return readOldMCPMembers(r, tree.Visit(o.SourceNamespace, o.IntermediateNamespace, o.DestinationNamespace), kind, o.Side)
		case older:
			return readOlderMCPMembers(r, names(), kind, o.Side)
		default:
			return readMCPMembers(r, names(), kind, o.Side)
		}
	case MCPParams:
		return readMCPParams(r, names(), o.Side)
	case MCPPackages:
		return readMCPPackages(r, names())
	default:
		return fmt.Errorf("no reader for %s", t)
	}
}
