package formats

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"mcremap/internal/mapping"
)

// readTiny reads tiny v1 or v2, choosing by the header line. The namespaces
// are the ones the header names.
func readTiny(r io.Reader, tree *mapping.Tree) error {
	br := bufio.NewReaderSize(r, 64*1024)
	head, err := br.Peek(5)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return err
	}
	switch {
	case strings.HasPrefix(string(head), "tiny\t"):
		return readTiny2(br, tree)
	case strings.HasPrefix(string(head), "v1\t"):
		return readTiny1(br, tree)
	default:
		return malformed(1, "not a tiny file header")
	}
}

func readTiny1(r io.Reader, tree *mapping.Tree) error {
	var v *mapping.Visitor
	var ns int

	return scanLines(r, func(n int, line string) error {
		if n == 1 {
			cols := strings.Split(line, "\t")
			if len(cols) < 3 || cols[0] != "v1" {
				return malformed(n, "tiny v1 header needs at least two namespaces")
			}
			ns = len(cols) - 1
			v = tree.Visit(cols[1], cols[2:]...)
			return nil
		}
		if line == "" || strings.HasPrefix(line, "#") {
			return nil
		}
		cols := strings.Split(line, "\t")
		switch cols[0] {
		case "CLASS":
			if len(cols) < 2 || len(cols) > ns+1 {
				return malformed(n, "CLASS expects %d names, got %d", ns, len(cols)-1)
			}
			names := pad(cols[1:], ns)
			v.Class(names[0], names[1:]...)
		case "FIELD", "METHOD":
			if len(cols) < 4 || len(cols) > ns+3 {
				return malformed(n, "%s expects owner, descriptor and %d names", cols[0], ns)
			}
			names := pad(cols[3:], ns)
			cv := v.Class(cols[1])
			if cols[0] == "FIELD" {
				cv.Field(names[0], cols[2], names[1:]...)
			} else {
				cv.Method(names[0], cols[2], names[1:]...)
			}
		default:
			return malformed(n, "unknown tiny v1 entry %q", cols[0])
		}
		return nil
	})
}

func readTiny2(r io.Reader, tree *mapping.Tree) error {
	var (
		v       *mapping.Visitor
		ns      int
		escaped bool
		cv      *mapping.ClassVisitor
		mv      *mapping.MemberVisitor
		inBody  bool
	)
	unescape := func(cols []string) []string {
		if !escaped {
			return cols
		}
		for i, c := range cols {
			cols[i] = unescapeTiny(c)
		}
		return cols
	}

	return scanLines(r, func(n int, line string) error {
		if n == 1 {
			cols := strings.Split(line, "\t")
			if len(cols) < 5 || cols[0] != "tiny" || cols[1] != "2" {
				return malformed(n, "tiny v2 header needs at least two namespaces")
			}
			ns = len(cols) - 3
			v = tree.Visit(cols[3], cols[4:]...)
			return nil
		}
		if line == "" {
			return nil
		}
		depth := 0
		for depth < len(line) && line[depth] == '\t' {
			depth++
		}
		cols := strings.Split(line[depth:], "\t")

		if !inBody && depth == 1 {
			if cols[0] == "escaped-names" {
				escaped = true
			}
			return nil
		}

		switch depth {
		case 0:
			inBody = true
			if cols[0] != "c" {
				return malformed(n, "unknown top-level entry %q", cols[0])
			}
			if len(cols)-1 != ns {
				return malformed(n, "class expects %d names, got %d", ns, len(cols)-1)
			}
			names := unescape(cols[1:])
			cv, mv = v.Class(names[0], names[1:]...), nil
		case 1:
			if cv == nil {
				return malformed(n, "member outside class")
			}
			switch cols[0] {
			case "c":
				return nil
			case "f", "m":
				if len(cols)-2 != ns {
					return malformed(n, "member expects descriptor and %d names, got %d columns", ns, len(cols)-1)
				}
				names := unescape(cols[2:])
				if cols[0] == "f" {
					mv = cv.Field(names[0], cols[1], names[1:]...)
				} else {
					mv = cv.Method(names[0], cols[1], names[1:]...)
				}
			default:
				return malformed(n, "unknown class member %q", cols[0])
			}
		case 2:
			switch cols[0] {
			case "c":
				return nil
			case "p":
				if mv == nil || len(cols)-2 != ns {
					return malformed(n, "parameter expects index and %d names", ns)
				}
				lv, err := strconv.Atoi(cols[1])
				if err != nil {
					return malformed(n, "bad parameter index %q", cols[1])
				}
				names := unescape(cols[2:])
				mv.Arg(lv, names[0], names[1:]...)
			case "v":
				if mv == nil || len(cols)-4 != ns {
					return malformed(n, "variable expects index, start, row and %d names", ns)
				}
				nums, err := atois(cols[1:4])
				if err != nil {
					return malformed(n, "bad variable position: %v", err)
				}
				names := unescape(cols[4:])
				mv.Var(nums[0], nums[2], nums[1], names[0], names[1:]...)
			default:
				return malformed(n, "unknown method member %q", cols[0])
			}
		default:
			if cols[0] != "c" {
				return malformed(n, "unexpected indentation")
			}
		}
		return nil
	})
}

func pad(cols []string, n int) []string {
	for len(cols) < n {
		cols = append(cols, "")
	}
	return cols
}

func atois(cols []string) ([]int, error) {
	out := make([]int, len(cols))
	for i, c := range cols {
		v, err := strconv.Atoi(c)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func unescapeTiny(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '0':
			b.WriteByte(0)
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
