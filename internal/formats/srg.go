package formats

import (
	"io"
	"strconv"
	"strings"

	"mcremap/internal/mapping"
)

// readSRG reads an SRG table (PK/CL/FD/MD lines) from source to intermediate.
func readSRG(r io.Reader, v *mapping.Visitor) error {
	return scanLines(r, func(n int, line string) error {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			return nil
		}
		tag, rest, ok := strings.Cut(line, ":")
		if !ok {
			return malformed(n, "missing entry tag")
		}
		cols := strings.Fields(rest)
		switch tag {
		case "PK":
			return nil
		case "CL":
			if len(cols) != 2 {
				return malformed(n, "CL expects 2 columns, got %d", len(cols))
			}
			v.Class(cols[0], cols[1])
		case "FD":
			var src, dst, desc string
			switch len(cols) {
			case 2:
				src, dst = cols[0], cols[1]
			case 4:
				src, desc, dst = cols[0], cols[1], cols[2]
			default:
				return malformed(n, "FD expects 2 or 4 columns, got %d", len(cols))
			}
			srcOwner, srcName, ok1 := splitOwner(src)
			dstOwner, dstName, ok2 := splitOwner(dst)
			if !ok1 || !ok2 {
				return malformed(n, "FD names must be owner/name")
			}
			v.Class(srcOwner, dstOwner).Field(srcName, desc, dstName)
		case "MD":
			if len(cols) != 4 {
				return malformed(n, "MD expects 4 columns, got %d", len(cols))
			}
			srcOwner, srcName, ok1 := splitOwner(cols[0])
			dstOwner, dstName, ok2 := splitOwner(cols[2])
			if !ok1 || !ok2 {
				return malformed(n, "MD names must be owner/name")
			}
			v.Class(srcOwner, dstOwner).Method(srcName, cols[1], dstName)
		default:
			return malformed(n, "unknown SRG entry %q", tag)
		}
		return nil
	})
}

// readTSRG reads TSRG v1, or TSRG v2 when the file starts with a tsrg2
// header. Only the first two columns are used.
func readTSRG(r io.Reader, v *mapping.Visitor) error {
	var (
		v2     bool
		cols   int
		cv     *mapping.ClassVisitor
		mv     *mapping.MemberVisitor
		inside bool
	)
	return scanLines(r, func(n int, line string) error {
		if n == 1 && strings.HasPrefix(line, "tsrg2 ") {
			v2 = true
			cols = len(strings.Fields(line)) - 1
			if cols < 2 {
				return malformed(n, "tsrg2 header needs at least two namespaces")
			}
			return nil
		}
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			return nil
		}
		depth := 0
		for depth < len(line) && line[depth] == '\t' {
			depth++
		}
		// v1 files sometimes indent members with spaces
		if depth == 0 && strings.HasPrefix(line, " ") && inside {
			depth = 1
		}
		parts := strings.Fields(line)

		switch depth {
		case 0:
			if len(parts) < 2 {
				return malformed(n, "class line needs two names")
			}
			if strings.HasSuffix(parts[0], "/") {
				cv, mv, inside = nil, nil, false
				return nil
			}
			cv, mv, inside = v.Class(parts[0], parts[1]), nil, true
		case 1:
			if cv == nil {
				return malformed(n, "member outside class")
			}
			switch {
			case len(parts) >= 3 && strings.HasPrefix(parts[1], "("):
				mv = cv.Method(parts[0], parts[1], parts[2])
			case v2 && len(parts) == cols+1:
				cv.Field(parts[0], parts[1], parts[2])
				mv = nil
			case len(parts) >= 2:
				cv.Field(parts[0], "", parts[1])
				mv = nil
			default:
				return malformed(n, "member line needs two names")
			}
		case 2:
			if !v2 {
				return malformed(n, "parameters require tsrg2")
			}
			if len(parts) == 1 && parts[0] == "static" {
				return nil
			}
			if mv == nil || len(parts) < 3 {
				return malformed(n, "parameter line needs an index and two names")
			}
			lv, err := strconv.Atoi(parts[0])
			if err != nil {
				return malformed(n, "bad parameter index %q", parts[0])
			}
			mv.Arg(lv, parts[1], parts[2])
		default:
			return malformed(n, "unexpected indentation")
		}
		return nil
	})
}

// readRGS reads RetroGuard script maps. Unqualified target classes live in
// net/minecraft/src.
func readRGS(r io.Reader, v *mapping.Visitor) error {
	qualify := func(name string) string {
		if strings.Contains(name, "/") {
			return name
		}
		return "net/minecraft/src/" + name
	}
	return scanLines(r, func(n int, line string) error {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			return nil
		}
		parts := strings.Fields(line)
		switch parts[0] {
		case ".class_map":
			if len(parts) != 3 {
				return malformed(n, ".class_map expects 2 names")
			}
			v.Class(parts[1], qualify(parts[2]))
		case ".field_map":
			if len(parts) != 3 {
				return malformed(n, ".field_map expects owner/name and a name")
			}
			owner, name, ok := splitOwner(parts[1])
			if !ok {
				return malformed(n, ".field_map source must be owner/name")
			}
			v.Class(owner).Field(name, "", parts[2])
		case ".method_map":
			if len(parts) != 4 {
				return malformed(n, ".method_map expects owner/name, descriptor and a name")
			}
			owner, name, ok := splitOwner(parts[1])
			if !ok {
				return malformed(n, ".method_map source must be owner/name")
			}
			v.Class(owner).Method(name, parts[2], parts[3])
		}
		return nil
	})
}
