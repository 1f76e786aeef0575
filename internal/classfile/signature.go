package classfile

import (
	"strings"
)

// MapSignature rewrites the class names in a generic Signature attribute
// (class, method or field form) using fn. Nested classes written as
// Outer<..>.Inner are looked up as Outer$Inner. A malformed signature is
// returned unchanged.
func MapSignature(sig string, fn func(string) string) string {
	if !strings.ContainsRune(sig, 'L') {
		return sig
	}
	m := &sigMapper{s: sig, fn: fn}
	i := 0
	if m.at(0) == '<' {
		i = m.formals(0)
	}
	if m.at(i) == '(' {
		m.b.WriteByte('(')
		i++
		for !m.bad && i < len(sig) && sig[i] != ')' {
			i = m.typ(i)
		}
		m.b.WriteByte(')')
		i++
		if m.at(i) == 'V' {
			m.b.WriteByte('V')
			i++
		} else {
			i = m.typ(i)
		}
		for !m.bad && m.at(i) == '^' {
			m.b.WriteByte('^')
			i = m.typ(i + 1)
		}
	} else {
		for !m.bad && i < len(sig) {
			i = m.typ(i)
		}
	}
	if m.bad || i != len(sig) {
		return sig
	}
	return m.b.String()
}

type sigMapper struct {
	s   string
	fn  func(string) string
	b   strings.Builder
	bad bool
}

func (m *sigMapper) at(i int) byte {
	if i < 0 || i >= len(m.s) {
		return 0
	}
	return m.s[i]
}

func (m *sigMapper) formals(i int) int {
	m.b.WriteByte('<')
	i++
	for !m.bad && m.at(i) != '>' {
		start := i
		for i < len(m.s) && m.s[i] != ':' {
			i++
		}
		if i == start || i >= len(m.s) {
			m.bad = true
			return i
		}
		m.b.WriteString(m.s[start:i])
		for m.at(i) == ':' {
			m.b.WriteByte(':')
			i++
			if c := m.at(i); c == 'L' || c == 'T' || c == '[' {
				i = m.typ(i)
			}
		}
	}
	m.b.WriteByte('>')
	return i + 1
}

func (m *sigMapper) typ(i int) int {
	if m.bad {
		return i
	}
	switch m.at(i) {
	case 'L':
		return m.class(i)
	case 'T':
		end := strings.IndexByte(m.s[i:], ';')
		if end < 0 {
			m.bad = true
			return len(m.s)
		}
		m.b.WriteString(m.s[i : i+end+1])
		return i + end + 1
	case '[':
		m.b.WriteByte('[')
		return m.typ(i + 1)
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z':
		m.b.WriteByte(m.s[i])
		return i + 1
	default:
		m.bad = true
		return len(m.s)
	}
}

func (m *sigMapper) ident(i int) (string, int) {
	start := i
	for i < len(m.s) && m.s[i] != '<' && m.s[i] != ';' && m.s[i] != '.' {
		i++
	}
	return m.s[start:i], i
}

func (m *sigMapper) class(i int) int {
	m.b.WriteByte('L')
	full, i := m.ident(i + 1)
	outer := m.fn(full)
	m.b.WriteString(outer)
	for !m.bad {
		switch m.at(i) {
		case '<':
			i = m.args(i)
		case '.':
			var inner string
			inner, i = m.ident(i + 1)
			full = full + "$" + inner
			mapped := m.fn(full)
			simple := inner
			if strings.HasPrefix(mapped, outer+"$") {
				simple = mapped[len(outer)+1:]
			} else if j := strings.LastIndexByte(mapped, '$'); j >= 0 && mapped != full {
				simple = mapped[j+1:]
			}
			m.b.WriteByte('.')
			m.b.WriteString(simple)
			outer = mapped
		case ';':
			m.b.WriteByte(';')
			return i + 1
		default:
			m.bad = true
			return len(m.s)
		}
	}
	return i
}

func (m *sigMapper) args(i int) int {
	m.b.WriteByte('<')
	i++
	for !m.bad && m.at(i) != '>' {
		switch m.at(i) {
		case '*':
			m.b.WriteByte('*')
			i++
		case '+', '-':
			m.b.WriteByte(m.s[i])
			i = m.typ(i + 1)
		case 0:
			m.bad = true
			return len(m.s)
		default:
			i = m.typ(i)
		}
	}
	m.b.WriteByte('>')
	return i + 1
}
