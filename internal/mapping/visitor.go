package mapping

// Visitor adds entries to a tree. Each visit names one source namespace and
// any number of destination namespaces; names are given in that column order
// and an empty name means "absent in this namespace".
type Visitor struct {
	t  *Tree
	ns []int
}

// Visit registers the namespaces and connects every pair of them.
// Repeated labels in one visit are ignored after their first column.
func (t *Tree) Visit(src string, dst ...string) *Visitor {
	t.checkMutable()
	v := &Visitor{t: t, ns: make([]int, 0, len(dst)+1)}
	seen := make(map[string]bool, len(dst)+1)
	for _, label := range append([]string{src}, dst...) {
		if seen[label] || label == "" {
			v.ns = append(v.ns, NullNamespace)
			continue
		}
		seen[label] = true
		v.ns = append(v.ns, t.addNamespace(label))
	}
	for i, a := range v.ns {
		for _, b := range v.ns[i+1:] {
			t.connect(a, b)
		}
	}
	return v
}

// Tree returns the tree being visited.
func (v *Visitor) Tree() *Tree { return v.t }

// Source returns the index of the visit's source namespace.
func (v *Visitor) Source() int { return v.ns[0] }

func (v *Visitor) columns(src string, dst []string) []pendingName {
	out := make([]pendingName, 0, len(dst)+1)
	if v.ns[0] != NullNamespace {
		out = append(out, pendingName{ns: v.ns[0], name: src})
	}
	for i, name := range dst {
		if i+1 >= len(v.ns) || v.ns[i+1] == NullNamespace {
			continue
		}
		out = append(out, pendingName{ns: v.ns[i+1], name: name})
	}
	return out
}

// ClassVisitor adds members to one class. A ClassVisitor for a class with no
// names at all is inert.
type ClassVisitor struct {
	v *Visitor
	c *Class
}

// Class finds or creates the class named src, matching first by its source
// name and then by any destination name, and records every non-empty name.
func (v *Visitor) Class(src string, dst ...string) *ClassVisitor {
	v.t.checkMutable()
	return &ClassVisitor{v: v, c: v.t.classFor(v.columns(src, dst))}
}

func (t *Tree) classFor(cols []pendingName) *Class {
	var c *Class
	for _, col := range cols {
		if col.name == "" {
			continue
		}
		if c = t.Class(col.ns, col.name); c != nil {
			break
		}
	}
	if c == nil {
		empty := true
		for _, col := range cols {
			if col.name != "" {
				empty = false
				break
			}
		}
		if empty {
			return nil
		}
		c = t.newClass()
	}
	for _, col := range cols {
		t.setClassName(c, col.ns, col.name)
	}
	return c
}

// Class returns the visited class, or nil.
func (cv *ClassVisitor) Class() *Class { return cv.c }

// Field finds or creates a field. desc is in the source namespace and may be empty.
func (cv *ClassVisitor) Field(src, desc string, dst ...string) *MemberVisitor {
	return cv.member(KindField, src, desc, dst)
}

// Method finds or creates a method. desc is in the source namespace and may be empty.
func (cv *ClassVisitor) Method(src, desc string, dst ...string) *MemberVisitor {
	return cv.member(KindMethod, src, desc, dst)
}

func (cv *ClassVisitor) member(kind Kind, src, desc string, dst []string) *MemberVisitor {
	cv.v.t.checkMutable()
	if cv.c == nil {
		return &MemberVisitor{v: cv.v}
	}
	descNs := NullNamespace
	if desc != "" {
		descNs = cv.v.ns[0]
	}
	m := cv.v.t.memberFor(cv.c, kind, cv.v.columns(src, dst), desc, descNs)
	return &MemberVisitor{v: cv.v, m: m}
}

func (t *Tree) memberFor(c *Class, kind Kind, cols []pendingName, desc string, descNs int) *Member {
	var m *Member
	for _, col := range cols {
		if col.name == "" {
			continue
		}
		if m = t.findMember(c, kind, col.ns, col.name, t.mapDesc(desc, descNs, col.ns, NullNamespace)); m != nil {
			break
		}
	}
	if m == nil {
		empty := true
		for _, col := range cols {
			if col.name != "" {
				empty = false
				break
			}
		}
		if empty {
			return nil
		}
		m = &Member{kind: kind, owner: c, descNs: NullNamespace}
		if kind == KindField {
			c.fields = append(c.fields, m)
		} else {
			c.methods = append(c.methods, m)
		}
	}
	if m.descNs == NullNamespace && desc != "" {
		m.desc, m.descNs = desc, descNs
	}
	for _, col := range cols {
		t.setMemberName(m, col.ns, col.name)
	}
	return m
}

// findMember prefers a member whose descriptor matches; a member or query
// without a descriptor matches on name alone.
func (t *Tree) findMember(c *Class, kind Kind, ns int, name, desc string) *Member {
	var loose *Member
	for _, m := range c.members(kind) {
		if m.Name(ns) != name {
			continue
		}
		if desc == "" || m.descNs == NullNamespace {
			if loose == nil {
				loose = m
			}
			continue
		}
		if t.mapDesc(m.desc, m.descNs, ns, NullNamespace) == desc {
			return m
		}
	}
	return loose
}

// Members renames every field or method whose source name is src, across all
// classes. When none exists yet the names are held until such a member appears.
// It returns the number of members renamed.
func (v *Visitor) Members(kind Kind, src string, dst ...string) int {
	v.t.checkMutable()
	if src == "" || v.ns[0] == NullNamespace {
		return 0
	}
	cols := v.columns(src, dst)[1:]
	members := append([]*Member(nil), v.t.Members(kind, v.ns[0], src)...)
	if len(members) == 0 {
		v.t.addPending(kind, v.ns[0], src, cols)
		return 0
	}
	for _, m := range members {
		for _, col := range cols {
			v.t.setMemberName(m, col.ns, col.name)
		}
	}
	return len(members)
}

// Args names parameter lv of every method whose source name is method.
// It returns the number of methods touched.
func (v *Visitor) Args(method string, lv int, src string, dst ...string) int {
	v.t.checkMutable()
	if v.ns[0] == NullNamespace {
		return 0
	}
	methods := v.t.Members(KindMethod, v.ns[0], method)
	for _, m := range methods {
		(&MemberVisitor{v: v, m: m}).Arg(lv, src, dst...)
	}
	return len(methods)
}

// MemberVisitor adds parameters and locals to one method.
type MemberVisitor struct {
	v *Visitor
	m *Member
}

// Member returns the visited member, or nil.
func (mv *MemberVisitor) Member() *Member { return mv.m }

// Arg finds or creates a parameter by local variable index, or by source
// name when lv is negative.
func (mv *MemberVisitor) Arg(lv int, src string, dst ...string) {
	mv.v.t.checkMutable()
	if mv.m == nil {
		return
	}
	cols := mv.v.columns(src, dst)
	var a *Arg
	for _, x := range mv.m.args {
		if (lv >= 0 && x.LvIndex == lv) || (lv < 0 && src != "" && x.Name(mv.v.ns[0]) == src) {
			a = x
			break
		}
	}
	if a == nil {
		a = &Arg{LvIndex: lv}
		mv.m.args = append(mv.m.args, a)
	}
	for _, col := range cols {
		if col.name != "" {
			a.names = setName(a.names, col.ns, col.name)
		}
	}
}

// Var finds or creates a local variable by index and start, or by LVT row.
func (mv *MemberVisitor) Var(lv, lvtRow, startOp int, src string, dst ...string) {
	mv.v.t.checkMutable()
	if mv.m == nil {
		return
	}
	cols := mv.v.columns(src, dst)
	x := mv.m.findVar(lv, lvtRow, startOp)
	for _, col := range cols {
		if col.name != "" {
			x.names = setName(x.names, col.ns, col.name)
		}
	}
}

func (m *Member) findVar(lv, lvtRow, startOp int) *Var {
	for _, x := range m.vars {
		if (lvtRow >= 0 && x.LvtRow == lvtRow) || (x.LvIndex == lv && x.StartOp == startOp) {
			return x
		}
	}
	x := &Var{LvIndex: lv, LvtRow: lvtRow, StartOp: startOp}
	m.vars = append(m.vars, x)
	return x
}
