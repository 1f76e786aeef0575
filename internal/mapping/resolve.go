package mapping

import (
	"strings"

	remaperrors "mcremap/internal/errors"
)

// Query asks for the name of one symbol in Destination, given its identity in
// Source. Owner, Name and Desc are all in the Source namespace. For classes
// Name is the class name; for args and vars Name and Desc identify the method.
type Query struct {
	Kind        Kind
	Owner       string
	Name        string
	Desc        string
	LvIndex     int
	StartOp     int
	Source      string
	Fallback    string
	Destination string
}

// ResolveName answers q with the three-tier rule: the destination name, else
// the fallback name, else the source name. Classes, fields and methods always
// resolve. Args and vars with neither a destination nor a fallback name are
// reported with ok == false and should be dropped.
func (t *Tree) ResolveName(q Query) (string, bool, error) {
	r, err := NewResolver(t, q.Source, q.Fallback, q.Destination)
	if err != nil {
		return "", false, err
	}
	switch q.Kind {
	case KindClass:
		return r.Class(q.Name), true, nil
	case KindField:
		return r.Field(q.Owner, q.Name, q.Desc), true, nil
	case KindMethod:
		return r.Method(q.Owner, q.Name, q.Desc), true, nil
	case KindArg:
		name, ok := r.Arg(q.Owner, q.Name, q.Desc, q.LvIndex)
		return name, ok, nil
	case KindVar:
		name, ok := r.Var(q.Owner, q.Name, q.Desc, q.LvIndex, q.StartOp)
		return name, ok, nil
	default:
		return "", false, remaperrors.Newf(remaperrors.InternalError, "unknown symbol kind %d", q.Kind)
	}
}

// Resolver resolves names from one namespace into another over a tree.
type Resolver struct {
	t        *Tree
	src      int
	fallback int
	dst      int
}

// NewResolver binds source, fallback and destination labels. Unknown source or
// destination labels are UNKNOWN_NAMESPACE; an unknown or empty fallback label
// degrades to the source namespace.
func NewResolver(t *Tree, src, fallback, dst string) (*Resolver, error) {
	s := t.Namespace(src)
	if s == NullNamespace {
		return nil, remaperrors.Newf(remaperrors.UnknownNamespace, "namespace %q not found", src).
			WithDetails(map[string]interface{}{"namespace": src, "available": t.Namespaces()})
	}
	d := t.Namespace(dst)
	if d == NullNamespace {
		return nil, remaperrors.Newf(remaperrors.UnknownNamespace, "namespace %q not found", dst).
			WithDetails(map[string]interface{}{"namespace": dst, "available": t.Namespaces()})
	}
	f := t.Namespace(fallback)
	if f == NullNamespace {
		f = s
	}
	return &Resolver{t: t, src: s, fallback: f, dst: d}, nil
}

// Source returns the source namespace label.
func (r *Resolver) Source() string { return r.t.NamespaceName(r.src) }

// Fallback returns the fallback namespace label after degradation.
func (r *Resolver) Fallback() string { return r.t.NamespaceName(r.fallback) }

// Destination returns the destination namespace label.
func (r *Resolver) Destination() string { return r.t.NamespaceName(r.dst) }

// Class resolves a class name. Unknown nested classes resolve through their
// outer class.
func (r *Resolver) Class(name string) string {
	if c := r.t.Class(r.src, name); c != nil {
		return pick(c.names, r.dst, r.fallback, name)
	}
	if i := strings.LastIndexByte(name, '$'); i > 0 {
		return r.Class(name[:i]) + name[i:]
	}
	return name
}

// MapDescriptor rewrites the class references of a source descriptor.
func (r *Resolver) MapDescriptor(desc string) string {
	return MapDescriptor(desc, r.Class)
}

func (r *Resolver) member(kind Kind, owner, name, desc string) *Member {
	c := r.t.Class(r.src, owner)
	if c == nil {
		return nil
	}
	return r.t.findMember(c, kind, r.src, name, desc)
}

// Field resolves a field name declared directly on owner.
func (r *Resolver) Field(owner, name, desc string) string {
	if m := r.member(KindField, owner, name, desc); m != nil {
		return pick(m.names, r.dst, r.fallback, name)
	}
	return name
}

// Method resolves a method name declared directly on owner.
func (r *Resolver) Method(owner, name, desc string) string {
	if m := r.member(KindMethod, owner, name, desc); m != nil {
		return pick(m.names, r.dst, r.fallback, name)
	}
	return name
}

// Arg resolves parameter lv of a method.
func (r *Resolver) Arg(owner, method, desc string, lv int) (string, bool) {
	m := r.member(KindMethod, owner, method, desc)
	if m == nil {
		return "", false
	}
	for _, a := range m.args {
		if a.LvIndex == lv {
			return r.optional(a.names)
		}
	}
	return "", false
}

// Var resolves a local variable of a method. A negative startOp matches any
// variable in slot lv.
func (r *Resolver) Var(owner, method, desc string, lv, startOp int) (string, bool) {
	m := r.member(KindMethod, owner, method, desc)
	if m == nil {
		return "", false
	}
	for _, v := range m.vars {
		if v.LvIndex == lv && (startOp < 0 || v.StartOp == startOp) {
			return r.optional(v.names)
		}
	}
	return "", false
}

// optional applies the first two tiers only; parameters and locals with no
// destination or fallback name are not renamed at all.
func (r *Resolver) optional(names []string) (string, bool) {
	if n := pick(names, r.dst, r.fallback, ""); n != "" {
		return n, true
	}
	return "", false
}
