package formats

import (
	"io"
	"regexp"
	"strconv"
	"strings"

	"mcremap/internal/mapping"
)

// readMCPMembers reads a new-style methods.csv or fields.csv
// (searge,name,side,desc) from intermediate to destination.
func readMCPMembers(r io.Reader, v *mapping.Visitor, kind mapping.Kind, side Side) error {
	return readCSV(r, "searge", func(line int, rec []string) error {
		if len(rec) < 2 {
			return malformed(line, "expected at least searge and name columns")
		}
		if len(rec) > 2 && !keepSide(side, rec[2]) {
			return nil
		}
		v.Members(kind, strings.TrimSpace(rec[0]), strings.TrimSpace(rec[1]))
		return nil
	})
}

var paramPattern = regexp.MustCompile(`^p_(i?\d+)_(\d+)_$`)
var funcPattern = regexp.MustCompile(`^func_(\d+)_`)

// readMCPParams reads params.csv (param,name,side). A parameter p_<id>_<lv>_
// names slot lv of every method whose intermediate name is func_<id>_*.
// Constructor parameters (p_i<id>_) have no method name to attach to.
func readMCPParams(r io.Reader, v *mapping.Visitor, side Side) error {
	byID := make(map[string][]string)
	for _, name := range v.Tree().MemberNames(mapping.KindMethod, v.Source()) {
		if m := funcPattern.FindStringSubmatch(name); m != nil {
			byID[m[1]] = append(byID[m[1]], name)
		}
	}
	return readCSV(r, "param", func(line int, rec []string) error {
		if len(rec) < 2 {
			return malformed(line, "expected at least param and name columns")
		}
		if len(rec) > 2 && !keepSide(side, rec[2]) {
			return nil
		}
		param := strings.TrimSpace(rec[0])
		m := paramPattern.FindStringSubmatch(param)
		if m == nil {
			return malformed(line, "unrecognised parameter name %q", param)
		}
		if strings.HasPrefix(m[1], "i") {
			return nil
		}
		lv, _ := strconv.Atoi(m[2])
		for _, method := range byID[m[1]] {
			v.Args(method, lv, param, strings.TrimSpace(rec[1]))
		}
		return nil
	})
}

// readMCPPackages reads packages.csv (class,package) and moves every
// intermediate class with that simple name into the package in the destination.
func readMCPPackages(r io.Reader, v *mapping.Visitor) error {
	bySimple := make(map[string][]string)
	for _, name := range v.Tree().ClassNames(v.Source()) {
		simple := name[strings.LastIndexByte(name, '/')+1:]
		bySimple[simple] = append(bySimple[simple], name)
	}
	return readCSV(r, "class", func(line int, rec []string) error {
		if len(rec) < 2 {
			return malformed(line, "expected class and package columns")
		}
		class := strings.TrimSpace(rec[0])
		pkg := strings.Trim(strings.TrimSpace(rec[1]), "/")
		for _, name := range bySimple[class] {
			v.Class(name, pkg+"/"+class)
		}
		return nil
	})
}

// readOldMCPClasses reads classes.csv (name,notch,supername,package,side)
// from source to intermediate and destination.
func readOldMCPClasses(r io.Reader, v *mapping.Visitor, side Side) error {
	return readCSV(r, "name", func(line int, rec []string) error {
		if len(rec) < 5 {
			return malformed(line, "expected 5 columns, got %d", len(rec))
		}
		if !keepSide(side, rec[4]) {
			return nil
		}
		name := qualifyClass(rec[3], rec[0])
		v.Class(strings.TrimSpace(rec[1]), name, name)
		return nil
	})
}

// readOldMCPMembers reads old methods.csv/fields.csv
// (searge,name,notch,sig,notchsig,classname,classnotch,package,side).
func readOldMCPMembers(r io.Reader, v *mapping.Visitor, kind mapping.Kind, side Side) error {
	return readCSV(r, "searge", func(line int, rec []string) error {
		if len(rec) < 9 {
			return malformed(line, "expected 9 columns, got %d", len(rec))
		}
		if !keepSide(side, rec[8]) {
			return nil
		}
		class := qualifyClass(rec[7], rec[5])
		cv := v.Class(strings.TrimSpace(rec[6]), class, class)
		searge, name, notch := strings.TrimSpace(rec[0]), strings.TrimSpace(rec[1]), strings.TrimSpace(rec[2])
		desc := strings.TrimSpace(rec[4])
		if kind == mapping.KindField {
			cv.Field(notch, desc, searge, name)
		} else {
			cv.Method(notch, desc, searge, name)
		}
		return nil
	})
}

// readOlderMCPMembers reads the oldest methods.csv/fields.csv layout
// (client class, client searge, server class, server searge, name, notes)
// from intermediate to destination. Empty or "*" searge names are absent.
func readOlderMCPMembers(r io.Reader, v *mapping.Visitor, kind mapping.Kind, side Side) error {
	present := func(s string) bool {
		s = strings.TrimSpace(s)
		return s != "" && s != "*"
	}
	return readCSV(r, "", func(line int, rec []string) error {
		if line == 1 {
			return nil
		}
		if len(rec) < 5 {
			return malformed(line, "expected at least 5 columns, got %d", len(rec))
		}
		name := strings.TrimSpace(rec[4])
		if !present(name) {
			return nil
		}
		if side != SideServer && present(rec[1]) {
			v.Members(kind, strings.TrimSpace(rec[1]), name)
		}
		if side != SideClient && present(rec[3]) {
			v.Members(kind, strings.TrimSpace(rec[3]), name)
		}
		return nil
	})
}

func qualifyClass(pkg, name string) string {
	pkg = strings.Trim(strings.TrimSpace(pkg), "/")
	name = strings.TrimSpace(name)
	if pkg == "" {
		return name
	}
	return pkg + "/" + name
}
