package mapping

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	remaperrors "mcremap/internal/errors"
)

// WriteTiny2 writes the tree as tiny v2 with the given namespace columns; the
// first column is the source. Classes and members without a source name, and
// members without a descriptor, cannot be expressed in tiny v2 and are skipped.
func WriteTiny2(w io.Writer, t *Tree, namespaces ...string) error {
	if len(namespaces) < 2 {
		return fmt.Errorf("tiny v2 needs at least two namespaces, got %d", len(namespaces))
	}
	cols := make([]int, len(namespaces))
	for i, label := range namespaces {
		if cols[i] = t.Namespace(label); cols[i] == NullNamespace {
			return remaperrors.Newf(remaperrors.UnknownNamespace, "namespace %q not found", label)
		}
	}
	src := cols[0]

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "tiny\t2\t0\t%s\n", strings.Join(namespaces, "\t"))
	row := func(names []string) string {
		out := make([]string, len(cols))
		for i, ns := range cols {
			out[i] = nameAt(names, ns)
		}
		return strings.Join(out, "\t")
	}

	for _, c := range t.classes {
		if c.Name(src) == "" {
			continue
		}
		fmt.Fprintf(bw, "c\t%s\n", row(c.names))
		for _, m := range c.fields {
			if m.Name(src) == "" || m.descNs == NullNamespace {
				continue
			}
			fmt.Fprintf(bw, "\tf\t%s\t%s\n", t.mapDesc(m.desc, m.descNs, src, NullNamespace), row(m.names))
		}
		for _, m := range c.methods {
			if m.Name(src) == "" || m.descNs == NullNamespace {
				continue
			}
			fmt.Fprintf(bw, "\tm\t%s\t%s\n", t.mapDesc(m.desc, m.descNs, src, NullNamespace), row(m.names))
			for _, a := range m.args {
				if a.LvIndex >= 0 {
					fmt.Fprintf(bw, "\t\tp\t%d\t%s\n", a.LvIndex, row(a.names))
				}
			}
			for _, v := range m.vars {
				fmt.Fprintf(bw, "\t\tv\t%d\t%d\t%d\t%s\n", v.LvIndex, v.StartOp, v.LvtRow, row(v.names))
			}
		}
	}
	return bw.Flush()
}

// WriteTiny2 writes the set as two-column tiny v2 (source, destination) in
// sorted order. Fields recorded without a descriptor are skipped.
func (s *Set) WriteTiny2(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "tiny\t2\t0\t%s\t%s\n", s.Source, s.Destination)

	owners := make(map[string]bool, len(s.Classes))
	for name := range s.Classes {
		owners[name] = true
	}
	byOwner := func(m map[MemberKey]string) map[string][]MemberKey {
		out := make(map[string][]MemberKey)
		for k := range m {
			if k.Desc == "" {
				continue
			}
			out[k.Owner] = append(out[k.Owner], k)
			owners[k.Owner] = true
		}
		for _, keys := range out {
			sort.Slice(keys, func(i, j int) bool {
				if keys[i].Name != keys[j].Name {
					return keys[i].Name < keys[j].Name
				}
				return keys[i].Desc < keys[j].Desc
			})
		}
		return out
	}
	args := make(map[MemberKey][]LocalKey)
	methodNames := make(map[MemberKey]string, len(s.Methods))
	for k, v := range s.Methods {
		methodNames[k] = v
	}
	for k := range s.Args {
		mk := MemberKey{Owner: k.Owner, Name: k.Method, Desc: k.Desc}
		args[mk] = append(args[mk], k)
		if _, ok := methodNames[mk]; !ok {
			methodNames[mk] = k.Method
		}
	}
	fields := byOwner(s.Fields)
	methods := byOwner(methodNames)

	sorted := make([]string, 0, len(owners))
	for name := range owners {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	for _, owner := range sorted {
		fmt.Fprintf(bw, "c\t%s\t%s\n", owner, s.Class(owner))
		for _, k := range fields[owner] {
			fmt.Fprintf(bw, "\tf\t%s\t%s\t%s\n", k.Desc, k.Name, s.Fields[k])
		}
		for _, k := range methods[owner] {
			fmt.Fprintf(bw, "\tm\t%s\t%s\t%s\n", k.Desc, k.Name, methodNames[k])
			ks := args[k]
			sort.Slice(ks, func(i, j int) bool { return ks[i].LvIndex < ks[j].LvIndex })
			for _, ak := range ks {
				fmt.Fprintf(bw, "\t\tp\t%d\t\t%s\n", ak.LvIndex, s.Args[ak])
			}
		}
	}
	return bw.Flush()
}
