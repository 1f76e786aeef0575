package rewrite

import (
	"strings"
	"sync"

	"github.com/klauspost/compress/zip"

	"mcremap/internal/archive"
	"mcremap/internal/classfile"
	"mcremap/internal/mapping"
)

type classInfo struct {
	super      string
	interfaces []string
}

// hierarchy knows the supertypes of every class in the input and classpath,
// by source name, so inherited member references resolve to the declaring
// class's mapping.
type hierarchy struct {
	mu      sync.Mutex
	classes map[string]classInfo
}

func newHierarchy() *hierarchy {
	return &hierarchy{classes: make(map[string]classInfo)}
}

func (h *hierarchy) add(c *classfile.Class) {
	name, err := c.Name()
	if err != nil {
		return
	}
	super, _ := c.SuperName()
	ifaces, _ := c.InterfaceNames()
	h.mu.Lock()
	if _, ok := h.classes[name]; !ok {
		h.classes[name] = classInfo{super: super, interfaces: ifaces}
	}
	h.mu.Unlock()
}

// load reads class headers from an archive. Entries that fail to parse are skipped.
func (h *hierarchy) load(path string) error {
	return archive.Walk(path, func(f *zip.File) error {
		if !strings.HasSuffix(f.Name, ".class") {
			return nil
		}
		data, err := archive.ReadFile(f)
		if err != nil {
			return err
		}
		if c, err := classfile.Parse(data); err == nil {
			h.add(c)
		}
		return nil
	})
}

// lookup walks owner, its superclasses and its interfaces breadth first and
// returns the first rename found.
func (h *hierarchy) lookup(owner string, find func(cls string) (string, bool)) (string, bool) {
	seen := map[string]bool{}
	queue := []string{owner}
	for len(queue) > 0 {
		cls := queue[0]
		queue = queue[1:]
		if cls == "" || seen[cls] {
			continue
		}
		seen[cls] = true
		if to, ok := find(cls); ok {
			return to, true
		}
		info, ok := h.classes[cls]
		if !ok {
			continue
		}
		queue = append(queue, info.super)
		queue = append(queue, info.interfaces...)
	}
	return "", false
}

func (h *hierarchy) field(set *mapping.Set, owner, name, desc string) string {
	if to, ok := h.lookup(owner, func(cls string) (string, bool) { return set.Field(cls, name, desc) }); ok {
		return to
	}
	return name
}

func (h *hierarchy) method(set *mapping.Set, owner, name, desc string) string {
	if name == "<init>" || name == "<clinit>" {
		return name
	}
	if to, ok := h.lookup(owner, func(cls string) (string, bool) { return set.Method(cls, name, desc) }); ok {
		return to
	}
	return name
}
