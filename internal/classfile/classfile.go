// Package classfile reads and writes JVM class files at the structural level
// needed to rename symbols: constant pool, members and attributes. Bytecode is
// carried through untouched.
package classfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// Magic is the class file signature.
const Magic = 0xCAFEBABE

// Access flags used when renaming.
const (
	AccStatic  = 0x0008
	AccPrivate = 0x0002
)

// Class is a parsed class file.
type Class struct {
	Minor, Major uint16
	Pool         *Pool
	Access       uint16
	This         uint16
	Super        uint16
	Interfaces   []uint16
	Fields       []*Member
	Methods      []*Member
	Attributes   []*Attribute
}

// Member is a field_info or method_info.
type Member struct {
	Access     uint16
	Name       uint16
	Desc       uint16
	Attributes []*Attribute
}

// Attribute is an attribute with its undecoded body.
type Attribute struct {
	Name uint16
	Data []byte
}

// ErrNotClass is returned for input without the class file magic.
var ErrNotClass = errors.New("not a class file")

type reader struct {
	b   []byte
	off int
	err error
}

func (r *reader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if r.off+n > len(r.b) {
		r.err = fmt.Errorf("truncated class file at offset %d", r.off)
		return false
	}
	return true
}

func (r *reader) u1() byte {
	if !r.need(1) {
		return 0
	}
	v := r.b[r.off]
	r.off++
	return v
}

func (r *reader) u2() uint16 {
	if !r.need(2) {
		return 0
	}
	v := binary.BigEndian.Uint16(r.b[r.off:])
	r.off += 2
	return v
}

func (r *reader) u4() uint32 {
	if !r.need(4) {
		return 0
	}
	v := binary.BigEndian.Uint32(r.b[r.off:])
	r.off += 4
	return v
}

func (r *reader) bytes(n int) []byte {
	if !r.need(n) {
		return nil
	}
	v := append([]byte(nil), r.b[r.off:r.off+n]...)
	r.off += n
	return v
}

// Parse decodes a class file.
func Parse(data []byte) (*Class, error) {
	r := &reader{b: data}
	if r.u4() != Magic {
		return nil, ErrNotClass
	}
	c := &Class{Minor: r.u2(), Major: r.u2()}

	count := int(r.u2())
	c.Pool = &Pool{entries: make([]*Constant, 1, count+1)}
	for i := 1; i < count && r.err == nil; i++ {
		k := &Constant{Tag: r.u1()}
		switch k.Tag {
		case TagUtf8:
			k.Data = r.bytes(int(r.u2()))
		case TagInteger, TagFloat:
			k.Data = r.bytes(4)
		case TagLong, TagDouble:
			k.Data = r.bytes(8)
		case TagClass, TagString, TagMethodType, TagModule, TagPackage:
			k.A = r.u2()
		case TagFieldref, TagMethodref, TagInterfaceMethodref, TagNameAndType, TagDynamic, TagInvokeDynamic:
			k.A, k.B = r.u2(), r.u2()
		case TagMethodHandle:
			k.Kind, k.A = r.u1(), r.u2()
		default:
			return nil, fmt.Errorf("unknown constant tag %d at index %d", k.Tag, i)
		}
		c.Pool.entries = append(c.Pool.entries, k)
		if k.Tag == TagLong || k.Tag == TagDouble {
			c.Pool.entries = append(c.Pool.entries, nil)
			i++
		}
	}

	c.Access, c.This, c.Super = r.u2(), r.u2(), r.u2()
	c.Interfaces = make([]uint16, r.u2())
	for i := range c.Interfaces {
		c.Interfaces[i] = r.u2()
	}
	c.Fields = readMembers(r)
	c.Methods = readMembers(r)
	c.Attributes = readAttributes(r)
	if r.err != nil {
		return nil, r.err
	}
	return c, nil
}

func readMembers(r *reader) []*Member {
	n := int(r.u2())
	out := make([]*Member, 0, n)
	for i := 0; i < n && r.err == nil; i++ {
		out = append(out, &Member{Access: r.u2(), Name: r.u2(), Desc: r.u2(), Attributes: readAttributes(r)})
	}
	return out
}

func readAttributes(r *reader) []*Attribute {
	n := int(r.u2())
	out := make([]*Attribute, 0, n)
	for i := 0; i < n && r.err == nil; i++ {
		name := r.u2()
		out = append(out, &Attribute{Name: name, Data: r.bytes(int(r.u4()))})
	}
	return out
}

type writer struct {
	bytes.Buffer
}

func (w *writer) u1(v byte) { w.WriteByte(v) }

func (w *writer) u2(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	w.Write(b[:])
}

func (w *writer) u4(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.Write(b[:])
}

// Bytes encodes the class file.
func (c *Class) Bytes() ([]byte, error) {
	if err := c.Pool.Err(); err != nil {
		return nil, err
	}
	if c.Pool.Len() > 0xFFFF {
		return nil, fmt.Errorf("constant pool too large: %d entries", c.Pool.Len())
	}
	w := &writer{}
	w.u4(Magic)
	w.u2(c.Minor)
	w.u2(c.Major)
	w.u2(uint16(c.Pool.Len()))
	for _, k := range c.Pool.entries[1:] {
		if k == nil {
			continue
		}
		w.u1(k.Tag)
		switch k.Tag {
		case TagUtf8:
			if len(k.Data) > 0xFFFF {
				return nil, fmt.Errorf("utf8 constant too long")
			}
			w.u2(uint16(len(k.Data)))
			w.Write(k.Data)
		case TagInteger, TagFloat, TagLong, TagDouble:
			w.Write(k.Data)
		case TagClass, TagString, TagMethodType, TagModule, TagPackage:
			w.u2(k.A)
		case TagMethodHandle:
			w.u1(k.Kind)
			w.u2(k.A)
		default:
			w.u2(k.A)
			w.u2(k.B)
		}
	}
	w.u2(c.Access)
	w.u2(c.This)
	w.u2(c.Super)
	w.u2(uint16(len(c.Interfaces)))
	for _, i := range c.Interfaces {
		w.u2(i)
	}
	for _, ms := range [][]*Member{c.Fields, c.Methods} {
		w.u2(uint16(len(ms)))
		for _, m := range ms {
			w.u2(m.Access)
			w.u2(m.Name)
			w.u2(m.Desc)
			writeAttributes(w, m.Attributes)
		}
	}
	writeAttributes(w, c.Attributes)
	return w.Bytes(), nil
}

func writeAttributes(w *writer, attrs []*Attribute) {
	w.u2(uint16(len(attrs)))
	for _, a := range attrs {
		w.u2(a.Name)
		w.u4(uint32(len(a.Data)))
		w.Write(a.Data)
	}
}

// Name returns the class's internal name.
func (c *Class) Name() (string, error) {
	return c.Pool.ClassName(c.This)
}

// SuperName returns the superclass name, or "" for java/lang/Object.
func (c *Class) SuperName() (string, error) {
	if c.Super == 0 {
		return "", nil
	}
	return c.Pool.ClassName(c.Super)
}

// InterfaceNames returns the names of the directly implemented interfaces.
func (c *Class) InterfaceNames() ([]string, error) {
	out := make([]string, 0, len(c.Interfaces))
	for _, i := range c.Interfaces {
		n, err := c.Pool.ClassName(i)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// AttributeName returns the name of an attribute.
func (c *Class) AttributeName(a *Attribute) string {
	s, _ := c.Pool.Utf8(a.Name)
	return s
}
