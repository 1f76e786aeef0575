package classfile

import (
	"errors"
	"fmt"
)

// ErrPoolOverflow is returned when a class needs more constants than a class
// file can index.
var ErrPoolOverflow = errors.New("constant pool overflow")

// Constant pool tags.
const (
	TagUtf8               = 1
	TagInteger            = 3
	TagFloat              = 4
	TagLong               = 5
	TagDouble             = 6
	TagClass              = 7
	TagString             = 8
	TagFieldref           = 9
	TagMethodref          = 10
	TagInterfaceMethodref = 11
	TagNameAndType        = 12
	TagMethodHandle       = 15
	TagMethodType         = 16
	TagDynamic            = 17
	TagInvokeDynamic      = 18
	TagModule             = 19
	TagPackage            = 20
)

// Constant is one constant pool entry. A and B hold the entry's index
// operands (class name, name-and-type, descriptor...), Kind the method handle
// reference kind, and Data the raw bytes of Utf8 and numeric entries.
type Constant struct {
	Tag  byte
	A, B uint16
	Kind byte
	Data []byte
}

// Pool is a constant pool. Index 0 and the slot after each long or double are
// nil, so indices match the class file.
type Pool struct {
	entries []*Constant
	utf8s   map[string]uint16
	nats    map[[2]uint16]uint16
	classes map[uint16]uint16
	err     error
}

// NewPool returns an empty pool.
func NewPool() *Pool {
	return &Pool{entries: []*Constant{nil}}
}

// Len is the constant_pool_count value: one more than the highest index.
func (p *Pool) Len() int { return len(p.entries) }

// Err reports whether an Add call overflowed the pool. Indices returned after
// an overflow are 0 and must not be written.
func (p *Pool) Err() error { return p.err }

// Get returns the entry at i, or nil.
func (p *Pool) Get(i uint16) *Constant {
	if int(i) >= len(p.entries) {
		return nil
	}
	return p.entries[i]
}

// Utf8 returns the string at a Utf8 index.
func (p *Pool) Utf8(i uint16) (string, error) {
	c := p.Get(i)
	if c == nil || c.Tag != TagUtf8 {
		return "", fmt.Errorf("constant %d is not Utf8", i)
	}
	return string(c.Data), nil
}

// ClassName returns the name referenced by a Class constant.
func (p *Pool) ClassName(i uint16) (string, error) {
	c := p.Get(i)
	if c == nil || c.Tag != TagClass {
		return "", fmt.Errorf("constant %d is not a Class", i)
	}
	return p.Utf8(c.A)
}

// NameAndType returns the name and descriptor of a NameAndType constant.
func (p *Pool) NameAndType(i uint16) (string, string, error) {
	c := p.Get(i)
	if c == nil || c.Tag != TagNameAndType {
		return "", "", fmt.Errorf("constant %d is not a NameAndType", i)
	}
	name, err := p.Utf8(c.A)
	if err != nil {
		return "", "", err
	}
	desc, err := p.Utf8(c.B)
	return name, desc, err
}

// Clone returns a copy whose entries can be changed without affecting p.
func (p *Pool) Clone() *Pool {
	out := &Pool{entries: make([]*Constant, len(p.entries)), err: p.err}
	for i, c := range p.entries {
		if c != nil {
			cp := *c
			out.entries[i] = &cp
		}
	}
	return out
}

func (p *Pool) add(c *Constant) uint16 {
	slots := 1
	if c.Tag == TagLong || c.Tag == TagDouble {
		slots = 2
	}
	if p.err != nil || len(p.entries)+slots > 0xFFFF {
		if p.err == nil {
			p.err = fmt.Errorf("%w: %d entries", ErrPoolOverflow, len(p.entries))
		}
		return 0
	}
	i := uint16(len(p.entries))
	p.entries = append(p.entries, c)
	if c.Tag == TagLong || c.Tag == TagDouble {
		p.entries = append(p.entries, nil)
	}
	return i
}

// AddUtf8 returns the index of a Utf8 entry for s, adding one if needed.
func (p *Pool) AddUtf8(s string) uint16 {
	if p.utf8s == nil {
		p.utf8s = make(map[string]uint16)
		for i, c := range p.entries {
			if c != nil && c.Tag == TagUtf8 {
				if _, ok := p.utf8s[string(c.Data)]; !ok {
					p.utf8s[string(c.Data)] = uint16(i)
				}
			}
		}
	}
	if i, ok := p.utf8s[s]; ok {
		return i
	}
	i := p.add(&Constant{Tag: TagUtf8, Data: []byte(s)})
	p.utf8s[s] = i
	return i
}

// AddClass returns the index of a Class entry naming name, adding one if needed.
func (p *Pool) AddClass(name string) uint16 {
	u := p.AddUtf8(name)
	if p.classes == nil {
		p.classes = make(map[uint16]uint16)
		for i, c := range p.entries {
			if c != nil && c.Tag == TagClass {
				p.classes[c.A] = uint16(i)
			}
		}
	}
	if i, ok := p.classes[u]; ok {
		return i
	}
	i := p.add(&Constant{Tag: TagClass, A: u})
	p.classes[u] = i
	return i
}

// AddNameAndType returns the index of a NameAndType entry, adding one if needed.
func (p *Pool) AddNameAndType(name, desc string) uint16 {
	key := [2]uint16{p.AddUtf8(name), p.AddUtf8(desc)}
	if p.nats == nil {
		p.nats = make(map[[2]uint16]uint16)
		for i, c := range p.entries {
			if c != nil && c.Tag == TagNameAndType {
				p.nats[[2]uint16{c.A, c.B}] = uint16(i)
			}
		}
	}
	if i, ok := p.nats[key]; ok {
		return i
	}
	i := p.add(&Constant{Tag: TagNameAndType, A: key[0], B: key[1]})
	p.nats[key] = i
	return i
}

// AddRef adds a field, method or interface method reference.
func (p *Pool) AddRef(tag byte, owner, name, desc string) uint16 {
	return p.add(&Constant{Tag: tag, A: p.AddClass(owner), B: p.AddNameAndType(name, desc)})
}

// AddString adds a String constant.
func (p *Pool) AddString(s string) uint16 {
	return p.add(&Constant{Tag: TagString, A: p.AddUtf8(s)})
}

// Entries calls fn for every non-empty entry with its index.
func (p *Pool) Entries(fn func(i uint16, c *Constant)) {
	for i, c := range p.entries {
		if c != nil {
			fn(uint16(i), c)
		}
	}
}

// SetClassName points the Class entry at i to a Utf8 for name. The old Utf8
// entry is left in place since other constants may share it.
func (p *Pool) SetClassName(i uint16, name string) {
	p.entries[i].A = p.AddUtf8(name)
	p.classes = nil
}
