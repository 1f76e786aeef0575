package mapping

import (
	"strings"
)

// MemberKey identifies a field or method in the source namespace.
type MemberKey struct {
	Owner string
	Name  string
	Desc  string
}

// LocalKey identifies a parameter or local variable slot of a method.
type LocalKey struct {
	Owner   string
	Method  string
	Desc    string
	LvIndex int
}

// SetOptions controls what Resolver.Set includes.
type SetOptions struct {
	// Locals includes parameter and local variable names.
	Locals bool
}

// Set is the flat symbol table for one rewrite: every key is in the source
// namespace and every value is the resolved destination name. Only renames
// are stored. A Set is immutable once built.
type Set struct {
	Source      string
	Destination string

	Classes map[string]string
	Fields  map[MemberKey]string
	Methods map[MemberKey]string
	Args    map[LocalKey]string
	Locals  map[LocalKey]string
}

// Set flattens the tree into a rewrite table for this resolver's namespaces.
func (r *Resolver) Set(opts SetOptions) *Set {
	s := &Set{
		Source:      r.Source(),
		Destination: r.Destination(),
		Classes:     make(map[string]string),
		Fields:      make(map[MemberKey]string),
		Methods:     make(map[MemberKey]string),
		Args:        make(map[LocalKey]string),
		Locals:      make(map[LocalKey]string),
	}
	for _, c := range r.t.classes {
		owner := c.Name(r.src)
		if owner == "" {
			continue
		}
		if to := pick(c.names, r.dst, r.fallback, owner); to != owner {
			s.Classes[owner] = to
		}
		for _, m := range c.fields {
			r.addMember(s.Fields, owner, m)
		}
		for _, m := range c.methods {
			key, ok := r.addMember(s.Methods, owner, m)
			if !ok || !opts.Locals {
				continue
			}
			for _, a := range m.args {
				if name, ok := r.optional(a.names); ok {
					s.Args[LocalKey{Owner: owner, Method: key.Name, Desc: key.Desc, LvIndex: a.LvIndex}] = name
				}
			}
			for _, v := range m.vars {
				lk := LocalKey{Owner: owner, Method: key.Name, Desc: key.Desc, LvIndex: v.LvIndex}
				if _, taken := s.Locals[lk]; taken {
					continue
				}
				if name, ok := r.optional(v.names); ok {
					s.Locals[lk] = name
				}
			}
		}
	}
	return s
}

func (r *Resolver) addMember(into map[MemberKey]string, owner string, m *Member) (MemberKey, bool) {
	name := m.Name(r.src)
	if name == "" {
		return MemberKey{}, false
	}
	key := MemberKey{Owner: owner, Name: name, Desc: r.t.mapDesc(m.desc, m.descNs, r.src, NullNamespace)}
	if to := pick(m.names, r.dst, r.fallback, name); to != name {
		into[key] = to
	}
	return key, true
}

// Class maps a class name, resolving unknown nested classes through their outer class.
func (s *Set) Class(name string) string {
	if to, ok := s.Classes[name]; ok {
		return to
	}
	if i := strings.LastIndexByte(name, '$'); i > 0 {
		return s.Class(name[:i]) + name[i:]
	}
	return name
}

// MapDescriptor rewrites the class references of a source descriptor.
func (s *Set) MapDescriptor(desc string) string {
	return MapDescriptor(desc, s.Class)
}

// Field returns the new name of a field declared on owner. Fields recorded
// without a descriptor match any descriptor.
func (s *Set) Field(owner, name, desc string) (string, bool) {
	if to, ok := s.Fields[MemberKey{Owner: owner, Name: name, Desc: desc}]; ok {
		return to, true
	}
	to, ok := s.Fields[MemberKey{Owner: owner, Name: name}]
	return to, ok
}

// Method returns the new name of a method declared on owner.
func (s *Set) Method(owner, name, desc string) (string, bool) {
	if to, ok := s.Methods[MemberKey{Owner: owner, Name: name, Desc: desc}]; ok {
		return to, true
	}
	to, ok := s.Methods[MemberKey{Owner: owner, Name: name}]
	return to, ok
}

// Arg returns the new name of parameter slot lv.
func (s *Set) Arg(owner, method, desc string, lv int) (string, bool) {
	to, ok := s.Args[LocalKey{Owner: owner, Method: method, Desc: desc, LvIndex: lv}]
	return to, ok
}

// Local returns the new name of local variable slot lv.
func (s *Set) Local(owner, method, desc string, lv int) (string, bool) {
	to, ok := s.Locals[LocalKey{Owner: owner, Method: method, Desc: desc, LvIndex: lv}]
	return to, ok
}

// Len is the total number of renames in the set.
func (s *Set) Len() int {
	return len(s.Classes) + len(s.Fields) + len(s.Methods) + len(s.Args) + len(s.Locals)
}
