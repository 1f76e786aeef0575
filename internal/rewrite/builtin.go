package rewrite

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/klauspost/compress/zip"
	"golang.org/x/sync/errgroup"

	"mcremap/internal/archive"
	"mcremap/internal/classfile"
	"mcremap/internal/mapping"
	"mcremap/internal/slogutil"
)

// signaturePattern matches jar signature files, which no longer verify after renaming.
const signaturePattern = "META-INF/*.{SF,RSA,DSA,EC}"

// Builtin rewrites class files at the constant pool level: class, member and
// descriptor references, member declarations, generic signatures, inner class
// names and local variable names. Classes are rewritten in parallel.
type Builtin struct {
	threads int
	logger  *slog.Logger
}

// NewBuiltin returns a Builtin rewriter using up to threads goroutines
// (runtime.NumCPU when threads <= 0).
func NewBuiltin(threads int, logger *slog.Logger) *Builtin {
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	return &Builtin{threads: threads, logger: logger}
}

type item struct {
	file  *zip.File
	name  string
	data  []byte
	class bool
}

// Rewrite implements Rewriter.
func (b *Builtin) Rewrite(ctx context.Context, job Job) error {
	if job.Mappings == nil {
		return fmt.Errorf("rewrite %s: no mappings", job.Input)
	}
	h := newHierarchy()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.threads)
	for _, cp := range job.Classpath {
		cp := cp
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := h.load(cp); err != nil {
				b.logger.Warn("Skipping unreadable classpath entry", "path", cp, "error", err.Error())
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var items []*item
	err := archive.Walk(job.Input, func(f *zip.File) error {
		if ok, _ := doublestar.Match(signaturePattern, f.Name); ok {
			b.logger.Debug("Dropping jar signature file", "entry", f.Name)
			return nil
		}
		it := &item{file: f, name: f.Name}
		if strings.HasSuffix(f.Name, ".class") {
			data, err := archive.ReadFile(f)
			if err != nil {
				return fmt.Errorf("reading %s: %w", f.Name, err)
			}
			it.data, it.class = data, true
			if c, err := classfile.Parse(data); err == nil {
				h.add(c)
			}
		}
		items = append(items, it)
		return nil
	})
	if err != nil {
		return err
	}

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(b.threads)
	for _, it := range items {
		if !it.class {
			continue
		}
		it := it
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			name, data, err := remapClass(it.data, job.Mappings, h)
			if err != nil {
				return fmt.Errorf("remapping %s: %w", it.name, err)
			}
			it.name = classEntryName(it.name, name)
			it.data = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	return b.write(job, items)
}

func (b *Builtin) write(job Job, items []*item) error {
	w, err := archive.Create(job.Output)
	if err != nil {
		return err
	}
	for _, it := range items {
		if it.class {
			err = w.WriteEntry(it.name, it.data)
		} else {
			err = w.CopyEntry(it.file, it.name)
		}
		if err != nil {
			_ = w.Close()
			return fmt.Errorf("writing %s: %w", it.name, err)
		}
	}
	if err := w.Close(); err != nil {
		return err
	}
	b.logger.Debug("Rewrote archive", "input", job.Input, "output", job.Output,
		"from", job.From, "to", job.To, "entries", len(items))
	return nil
}

// classEntryName keeps a multi-release prefix and replaces the class path.
func classEntryName(entry, class string) string {
	prefix := ""
	if strings.HasPrefix(entry, "META-INF/versions/") {
		rest := strings.TrimPrefix(entry, "META-INF/versions/")
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			prefix = "META-INF/versions/" + rest[:i+1]
		}
	}
	return prefix + class + ".class"
}

// remapClass renames every symbol in one class file and returns the class's
// new internal name with the encoded result.
func remapClass(data []byte, set *mapping.Set, h *hierarchy) (string, []byte, error) {
	c, err := classfile.Parse(data)
	if err != nil {
		return "", nil, err
	}
	orig := c.Pool.Clone()
	p := c.Pool
	this, err := orig.ClassName(c.This)
	if err != nil {
		return "", nil, err
	}
	mapClass := func(name string) string {
		if strings.HasPrefix(name, "[") {
			return set.MapDescriptor(name)
		}
		return set.Class(name)
	}

	var perr error
	orig.Entries(func(i uint16, k *classfile.Constant) {
		if perr != nil {
			return
		}
		switch k.Tag {
		case classfile.TagClass:
			name, err := orig.Utf8(k.A)
			if err != nil {
				perr = err
				return
			}
			if to := mapClass(name); to != name {
				p.SetClassName(i, to)
			}
		case classfile.TagFieldref, classfile.TagMethodref, classfile.TagInterfaceMethodref:
			owner, err := orig.ClassName(k.A)
			if err != nil {
				perr = err
				return
			}
			name, desc, err := orig.NameAndType(k.B)
			if err != nil {
				perr = err
				return
			}
			to := name
			switch {
			case strings.HasPrefix(owner, "["):
				// array members such as clone() keep their names
			case k.Tag == classfile.TagFieldref:
				to = h.field(set, owner, name, desc)
			default:
				to = h.method(set, owner, name, desc)
			}
			if toDesc := set.MapDescriptor(desc); to != name || toDesc != desc {
				p.Get(i).B = p.AddNameAndType(to, toDesc)
			}
		case classfile.TagInvokeDynamic, classfile.TagDynamic:
			name, desc, err := orig.NameAndType(k.B)
			if err != nil {
				perr = err
				return
			}
			if toDesc := set.MapDescriptor(desc); toDesc != desc {
				p.Get(i).B = p.AddNameAndType(name, toDesc)
			}
		case classfile.TagMethodType:
			desc, err := orig.Utf8(k.A)
			if err != nil {
				perr = err
				return
			}
			if toDesc := set.MapDescriptor(desc); toDesc != desc {
				p.Get(i).A = p.AddUtf8(toDesc)
			}
		}
	})
	if perr != nil {
		return "", nil, perr
	}

	r := &classRemapper{c: c, orig: orig, set: set, h: h, this: this}
	if err := r.members(); err != nil {
		return "", nil, err
	}
	if err := r.classAttributes(); err != nil {
		return "", nil, err
	}
	out, err := c.Bytes()
	if err != nil {
		return "", nil, err
	}
	return mapClass(this), out, nil
}

type classRemapper struct {
	c    *classfile.Class
	orig *classfile.Pool
	set  *mapping.Set
	h    *hierarchy
	this string
}

func (r *classRemapper) utf8(i uint16) (string, error) {
	return r.orig.Utf8(i)
}

func (r *classRemapper) members() error {
	p := r.c.Pool
	for _, f := range r.c.Fields {
		name, err := r.utf8(f.Name)
		if err != nil {
			return err
		}
		desc, err := r.utf8(f.Desc)
		if err != nil {
			return err
		}
		if to, ok := r.set.Field(r.this, name, desc); ok && to != name {
			f.Name = p.AddUtf8(to)
		}
		if to := r.set.MapDescriptor(desc); to != desc {
			f.Desc = p.AddUtf8(to)
		}
		if err := r.signatures(f.Attributes); err != nil {
			return err
		}
	}
	for _, m := range r.c.Methods {
		name, err := r.utf8(m.Name)
		if err != nil {
			return err
		}
		desc, err := r.utf8(m.Desc)
		if err != nil {
			return err
		}
		to, ok := r.set.Method(r.this, name, desc)
		if !ok && m.Access&(classfile.AccPrivate|classfile.AccStatic) == 0 {
			to = r.h.method(r.set, r.this, name, desc)
		}
		if to != "" && to != name {
			m.Name = p.AddUtf8(to)
		}
		if to := r.set.MapDescriptor(desc); to != desc {
			m.Desc = p.AddUtf8(to)
		}
		if err := r.signatures(m.Attributes); err != nil {
			return err
		}
		for _, a := range m.Attributes {
			if r.c.AttributeName(a) != "Code" {
				continue
			}
			if err := r.code(a, name, desc, m.Access&classfile.AccStatic != 0); err != nil {
				return fmt.Errorf("method %s%s: %w", name, desc, err)
			}
		}
	}
	return nil
}

func (r *classRemapper) signatures(attrs []*classfile.Attribute) error {
	for _, a := range attrs {
		if r.c.AttributeName(a) != "Signature" {
			continue
		}
		idx, err := classfile.U2(a.Data)
		if err != nil {
			return err
		}
		sig, err := r.utf8(idx)
		if err != nil {
			return err
		}
		if to := classfile.MapSignature(sig, r.set.Class); to != sig {
			a.Data = classfile.PutU2(r.c.Pool.AddUtf8(to))
		}
	}
	return nil
}

func (r *classRemapper) code(a *classfile.Attribute, method, desc string, static bool) error {
	code, err := classfile.DecodeCode(a.Data)
	if err != nil {
		return err
	}
	argSlots := classfile.ArgSlots(desc, static)
	changed := false
	for _, na := range code.Attributes {
		kind := r.c.AttributeName(na)
		if kind != "LocalVariableTable" && kind != "LocalVariableTypeTable" {
			continue
		}
		rows, err := classfile.DecodeLocalVariables(na.Data)
		if err != nil {
			return err
		}
		for i := range rows {
			row := &rows[i]
			var (
				to string
				ok bool
			)
			if int(row.Index) < argSlots {
				to, ok = r.set.Arg(r.this, method, desc, int(row.Index))
			} else {
				to, ok = r.set.Local(r.this, method, desc, int(row.Index))
			}
			if ok {
				row.Name = r.c.Pool.AddUtf8(to)
			}
			d, err := r.utf8(row.Desc)
			if err != nil {
				return err
			}
			var toDesc string
			if kind == "LocalVariableTable" {
				toDesc = r.set.MapDescriptor(d)
			} else {
				toDesc = classfile.MapSignature(d, r.set.Class)
			}
			if toDesc != d {
				row.Desc = r.c.Pool.AddUtf8(toDesc)
			}
		}
		na.Data = classfile.EncodeLocalVariables(rows)
		changed = true
	}
	if changed {
		a.Data = code.Encode()
	}
	return nil
}

func (r *classRemapper) classAttributes() error {
	if err := r.signatures(r.c.Attributes); err != nil {
		return err
	}
	p := r.c.Pool
	for _, a := range r.c.Attributes {
		switch r.c.AttributeName(a) {
		case "InnerClasses":
			rows, err := classfile.DecodeInnerClasses(a.Data)
			if err != nil {
				return err
			}
			for i := range rows {
				if rows[i].Name == 0 {
					continue
				}
				inner, err := r.orig.ClassName(rows[i].Inner)
				if err != nil {
					return err
				}
				to := r.set.Class(inner)
				if to == inner {
					continue
				}
				simple := to[strings.LastIndexByte(to, '/')+1:]
				if j := strings.LastIndexByte(simple, '$'); j >= 0 {
					simple = simple[j+1:]
				}
				rows[i].Name = p.AddUtf8(simple)
			}
			a.Data = classfile.EncodeInnerClasses(rows)
		case "EnclosingMethod":
			if len(a.Data) != 4 {
				return fmt.Errorf("EnclosingMethod attribute has %d bytes", len(a.Data))
			}
			classIdx, _ := classfile.U2(a.Data[:2])
			natIdx, _ := classfile.U2(a.Data[2:])
			if natIdx == 0 {
				continue
			}
			owner, err := r.orig.ClassName(classIdx)
			if err != nil {
				return err
			}
			name, desc, err := r.orig.NameAndType(natIdx)
			if err != nil {
				return err
			}
			to := r.h.method(r.set, owner, name, desc)
			if toDesc := r.set.MapDescriptor(desc); to != name || toDesc != desc {
				a.Data = append(classfile.PutU2(classIdx), classfile.PutU2(p.AddNameAndType(to, toDesc))...)
			}
		}
	}
	return nil
}
