// Package mapping holds the unified multi-namespace symbol graph that every
// mapping format is parsed into, and resolves names out of it.
package mapping

import (
	"sort"
)

// NullNamespace is the index returned for labels the tree does not know.
const NullNamespace = -1

// Kind identifies the symbol kind of an entry or query.
type Kind int

const (
	KindClass Kind = iota
	KindField
	KindMethod
	KindArg
	KindVar
)

func (k Kind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindField:
		return "field"
	case KindMethod:
		return "method"
	case KindArg:
		return "arg"
	case KindVar:
		return "var"
	default:
		return "unknown"
	}
}

// ParseKind converts a kind name back into a Kind.
func ParseKind(s string) (Kind, bool) {
	for k := KindClass; k <= KindVar; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// Tree is the unified mapping graph. Namespaces get indices in the order they
// are first seen; index 0 is the anchor namespace. A Tree is built by a single
// writer through Visit and Merge, then frozen and shared by concurrent readers.
type Tree struct {
	namespaces []string
	nsIndex    map[string]int
	edges      map[int]map[int]bool

	classes    []*Class
	classIndex []map[string]*Class

	// tree-wide member name index per namespace, used by formats that name
	// members without their owner
	fieldIndex  []map[string][]*Member
	methodIndex []map[string][]*Member

	pending map[pendingKey][]pendingName
	frozen  bool
}

// Class is one class across all namespaces.
type Class struct {
	names   []string
	fields  []*Member
	methods []*Member
}

// Member is a field or method. Its descriptor is stored in the namespace it
// was first seen in and mapped through class names on demand.
type Member struct {
	kind   Kind
	owner  *Class
	names  []string
	desc   string
	descNs int
	args   []*Arg
	vars   []*Var
}

// Arg is a method parameter, keyed by local variable index.
type Arg struct {
	LvIndex int
	names   []string
}

// Var is a method local variable.
type Var struct {
	LvIndex int
	LvtRow  int
	StartOp int
	names   []string
}

type pendingKey struct {
	kind Kind
	ns   int
	name string
}

type pendingName struct {
	ns   int
	name string
}

// NewTree returns an empty, mutable tree.
func NewTree() *Tree {
	return &Tree{
		nsIndex: make(map[string]int),
		edges:   make(map[int]map[int]bool),
		pending: make(map[pendingKey][]pendingName),
	}
}

// Freeze ends the build phase. Any later mutation panics.
func (t *Tree) Freeze() {
	t.frozen = true
}

// Frozen reports whether Freeze was called.
func (t *Tree) Frozen() bool {
	return t.frozen
}

func (t *Tree) checkMutable() {
	if t.frozen {
		panic("mapping: tree modified after Freeze")
	}
}

// Namespaces returns the namespace labels in index order.
func (t *Tree) Namespaces() []string {
	return append([]string(nil), t.namespaces...)
}

// Namespace returns the index of label, or NullNamespace.
func (t *Tree) Namespace(label string) int {
	if i, ok := t.nsIndex[label]; ok {
		return i
	}
	return NullNamespace
}

// NamespaceName returns the label at index i.
func (t *Tree) NamespaceName(i int) string {
	if i < 0 || i >= len(t.namespaces) {
		return ""
	}
	return t.namespaces[i]
}

// Neighbors returns the namespaces directly connected to ns by mapping data,
// in index order.
func (t *Tree) Neighbors(ns int) []int {
	out := make([]int, 0, len(t.edges[ns]))
	for n := range t.edges[ns] {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

func (t *Tree) addNamespace(label string) int {
	if i, ok := t.nsIndex[label]; ok {
		return i
	}
	i := len(t.namespaces)
	t.namespaces = append(t.namespaces, label)
	t.nsIndex[label] = i
	t.classIndex = append(t.classIndex, make(map[string]*Class))
	t.fieldIndex = append(t.fieldIndex, make(map[string][]*Member))
	t.methodIndex = append(t.methodIndex, make(map[string][]*Member))
	return i
}

func (t *Tree) connect(a, b int) {
	if a == b || a < 0 || b < 0 {
		return
	}
	if t.edges[a] == nil {
		t.edges[a] = make(map[int]bool)
	}
	if t.edges[b] == nil {
		t.edges[b] = make(map[int]bool)
	}
	t.edges[a][b] = true
	t.edges[b][a] = true
}

// Class looks up a class by its name in namespace ns.
func (t *Tree) Class(ns int, name string) *Class {
	if ns < 0 || ns >= len(t.classIndex) {
		return nil
	}
	return t.classIndex[ns][name]
}

// Classes returns every class in creation order.
func (t *Tree) Classes() []*Class {
	return t.classes
}

// ClassNames returns the names of all classes known in namespace ns.
func (t *Tree) ClassNames(ns int) []string {
	var out []string
	for _, c := range t.classes {
		if n := c.Name(ns); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// MemberNames returns the distinct field or method names known in namespace ns.
func (t *Tree) MemberNames(kind Kind, ns int) []string {
	idx := t.memberIndex(kind, ns)
	out := make([]string, 0, len(idx))
	for name, ms := range idx {
		if len(ms) > 0 {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Members returns the fields or methods named name in namespace ns, across all classes.
func (t *Tree) Members(kind Kind, ns int, name string) []*Member {
	return t.memberIndex(kind, ns)[name]
}

func (t *Tree) memberIndex(kind Kind, ns int) map[string][]*Member {
	if ns < 0 || ns >= len(t.namespaces) {
		return nil
	}
	if kind == KindField {
		return t.fieldIndex[ns]
	}
	return t.methodIndex[ns]
}

func (t *Tree) newClass() *Class {
	c := &Class{}
	t.classes = append(t.classes, c)
	return c
}

func (t *Tree) setClassName(c *Class, ns int, name string) {
	if name == "" || ns < 0 {
		return
	}
	old := c.Name(ns)
	if old == name {
		return
	}
	idx := t.classIndex[ns]
	if old != "" && idx[old] == c {
		delete(idx, old)
	}
	c.names = setName(c.names, ns, name)
	idx[name] = c
}

func (t *Tree) setMemberName(m *Member, ns int, name string) {
	if name == "" || ns < 0 {
		return
	}
	old := m.Name(ns)
	if old == name {
		return
	}
	global := t.memberIndex(m.kind, ns)
	if old != "" {
		global[old] = removeMember(global[old], m)
		if len(global[old]) == 0 {
			delete(global, old)
		}
	}
	m.names = setName(m.names, ns, name)
	global[name] = append(global[name], m)

	key := pendingKey{kind: m.kind, ns: ns, name: name}
	if names, ok := t.pending[key]; ok {
		for _, pn := range names {
			if m.Name(pn.ns) == "" {
				t.setMemberName(m, pn.ns, pn.name)
			}
		}
	}
}

func (t *Tree) addPending(kind Kind, ns int, name string, others []pendingName) {
	key := pendingKey{kind: kind, ns: ns, name: name}
	t.pending[key] = append(t.pending[key], others...)
}

func removeMember(list []*Member, m *Member) []*Member {
	out := list[:0]
	for _, x := range list {
		if x != m {
			out = append(out, x)
		}
	}
	return out
}

func setName(names []string, ns int, name string) []string {
	for len(names) <= ns {
		names = append(names, "")
	}
	names[ns] = name
	return names
}

func nameAt(names []string, ns int) string {
	if ns < 0 || ns >= len(names) {
		return ""
	}
	return names[ns]
}

// Name returns the class name in namespace ns, or "".
func (c *Class) Name(ns int) string { return nameAt(c.names, ns) }

// Fields returns the class's fields.
func (c *Class) Fields() []*Member { return c.fields }

// Methods returns the class's methods.
func (c *Class) Methods() []*Member { return c.methods }

func (c *Class) members(kind Kind) []*Member {
	if kind == KindField {
		return c.fields
	}
	return c.methods
}

// Kind returns KindField or KindMethod.
func (m *Member) Kind() Kind { return m.kind }

// Owner returns the declaring class.
func (m *Member) Owner() *Class { return m.owner }

// Name returns the member name in namespace ns, or "".
func (m *Member) Name(ns int) string { return nameAt(m.names, ns) }

// Args returns the method's parameters.
func (m *Member) Args() []*Arg { return m.args }

// Vars returns the method's local variables.
func (m *Member) Vars() []*Var { return m.vars }

// Name returns the parameter name in namespace ns, or "".
func (a *Arg) Name(ns int) string { return nameAt(a.names, ns) }

// Name returns the variable name in namespace ns, or "".
func (v *Var) Name(ns int) string { return nameAt(v.names, ns) }

// Stats summarises the tree's contents.
type Stats struct {
	Namespaces []string `json:"namespaces" yaml:"namespaces"`
	Classes    int      `json:"classes" yaml:"classes"`
	Fields     int      `json:"fields" yaml:"fields"`
	Methods    int      `json:"methods" yaml:"methods"`
	Args       int      `json:"args" yaml:"args"`
	Vars       int      `json:"vars" yaml:"vars"`
}

// Stats counts the entries of the tree.
func (t *Tree) Stats() Stats {
	s := Stats{Namespaces: t.Namespaces(), Classes: len(t.classes)}
	for _, c := range t.classes {
		s.Fields += len(c.fields)
		s.Methods += len(c.methods)
		for _, m := range c.methods {
			s.Args += len(m.args)
			s.Vars += len(m.vars)
		}
	}
	return s
}
