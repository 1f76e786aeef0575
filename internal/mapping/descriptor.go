package mapping

import (
	"strings"
)

// MapDescriptor rewrites every class reference (L...;) in a field or method
// descriptor using fn. Malformed descriptors are returned unchanged past the
// point of the error.
func MapDescriptor(desc string, fn func(string) string) string {
	if strings.IndexByte(desc, 'L') < 0 {
		return desc
	}
	var b strings.Builder
	b.Grow(len(desc) + 16)
	for i := 0; i < len(desc); i++ {
		ch := desc[i]
		b.WriteByte(ch)
		if ch != 'L' {
			continue
		}
		end := strings.IndexByte(desc[i:], ';')
		if end < 0 {
			b.WriteString(desc[i+1:])
			return b.String()
		}
		b.WriteString(fn(desc[i+1 : i+end]))
		b.WriteByte(';')
		i += end
	}
	return b.String()
}

// mapDesc maps desc from namespace from to namespace to through the tree's
// class names, using fallback and then the original name for classes that
// have no name in to.
func (t *Tree) mapDesc(desc string, from, to, fallback int) string {
	if desc == "" || from == to || from < 0 {
		return desc
	}
	return MapDescriptor(desc, func(name string) string {
		c := t.Class(from, name)
		if c == nil {
			return name
		}
		return pick(c.names, to, fallback, name)
	})
}

// pick applies the three-tier rule: the name in to, then in fallback, then def.
func pick(names []string, to, fallback int, def string) string {
	if n := nameAt(names, to); n != "" {
		return n
	}
	if n := nameAt(names, fallback); n != "" {
		return n
	}
	return def
}
