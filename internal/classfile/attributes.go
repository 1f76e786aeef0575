package classfile

import (
	"fmt"
)

// Code is a decoded Code attribute. Instructions and the exception table are
// kept as raw bytes.
type Code struct {
	MaxStack       uint16
	MaxLocals      uint16
	Instructions   []byte
	ExceptionTable []byte
	Attributes     []*Attribute
}

// DecodeCode parses a Code attribute body.
func DecodeCode(data []byte) (*Code, error) {
	r := &reader{b: data}
	c := &Code{MaxStack: r.u2(), MaxLocals: r.u2()}
	c.Instructions = r.bytes(int(r.u4()))
	c.ExceptionTable = r.bytes(int(r.u2()) * 8)
	c.Attributes = readAttributes(r)
	if r.err != nil {
		return nil, fmt.Errorf("code attribute: %w", r.err)
	}
	return c, nil
}

// Encode returns the Code attribute body.
func (c *Code) Encode() []byte {
	w := &writer{}
	w.u2(c.MaxStack)
	w.u2(c.MaxLocals)
	w.u4(uint32(len(c.Instructions)))
	w.Write(c.Instructions)
	w.u2(uint16(len(c.ExceptionTable) / 8))
	w.Write(c.ExceptionTable)
	writeAttributes(w, c.Attributes)
	return w.Bytes()
}

// LocalVariable is one row of a LocalVariableTable or LocalVariableTypeTable;
// Desc holds the descriptor or signature index respectively.
type LocalVariable struct {
	StartPC uint16
	Length  uint16
	Name    uint16
	Desc    uint16
	Index   uint16
}

// DecodeLocalVariables parses a LocalVariableTable or LocalVariableTypeTable body.
func DecodeLocalVariables(data []byte) ([]LocalVariable, error) {
	r := &reader{b: data}
	out := make([]LocalVariable, r.u2())
	for i := range out {
		out[i] = LocalVariable{StartPC: r.u2(), Length: r.u2(), Name: r.u2(), Desc: r.u2(), Index: r.u2()}
	}
	if r.err != nil {
		return nil, fmt.Errorf("local variable table: %w", r.err)
	}
	return out, nil
}

// EncodeLocalVariables returns a LocalVariableTable body.
func EncodeLocalVariables(vars []LocalVariable) []byte {
	w := &writer{}
	w.u2(uint16(len(vars)))
	for _, v := range vars {
		w.u2(v.StartPC)
		w.u2(v.Length)
		w.u2(v.Name)
		w.u2(v.Desc)
		w.u2(v.Index)
	}
	return w.Bytes()
}

// InnerClass is one row of an InnerClasses attribute.
type InnerClass struct {
	Inner  uint16
	Outer  uint16
	Name   uint16
	Access uint16
}

// DecodeInnerClasses parses an InnerClasses body.
func DecodeInnerClasses(data []byte) ([]InnerClass, error) {
	r := &reader{b: data}
	out := make([]InnerClass, r.u2())
	for i := range out {
		out[i] = InnerClass{Inner: r.u2(), Outer: r.u2(), Name: r.u2(), Access: r.u2()}
	}
	if r.err != nil {
		return nil, fmt.Errorf("inner classes: %w", r.err)
	}
	return out, nil
}

// EncodeInnerClasses returns an InnerClasses body.
func EncodeInnerClasses(rows []InnerClass) []byte {
	w := &writer{}
	w.u2(uint16(len(rows)))
	for _, ic := range rows {
		w.u2(ic.Inner)
		w.u2(ic.Outer)
		w.u2(ic.Name)
		w.u2(ic.Access)
	}
	return w.Bytes()
}

// U2 decodes a two-byte attribute body such as Signature or SourceFile.
func U2(data []byte) (uint16, error) {
	if len(data) != 2 {
		return 0, fmt.Errorf("expected 2-byte attribute, got %d bytes", len(data))
	}
	return uint16(data[0])<<8 | uint16(data[1]), nil
}

// PutU2 encodes a two-byte attribute body.
func PutU2(v uint16) []byte {
	return []byte{byte(v >> 8), byte(v)}
}

// ArgSlots returns the number of local variable slots a method's parameters
// occupy, including the receiver of instance methods.
func ArgSlots(desc string, static bool) int {
	n := 0
	if !static {
		n = 1
	}
	for i := 1; i < len(desc) && desc[i] != ')'; i++ {
		switch desc[i] {
		case 'J', 'D':
			n += 2
		case 'L':
			for i < len(desc) && desc[i] != ';' {
				i++
			}
			n++
		case '[':
			for i < len(desc) && desc[i] == '[' {
				i++
			}
			if i < len(desc) && desc[i] == 'L' {
				for i < len(desc) && desc[i] != ';' {
					i++
				}
			}
			n++
		default:
			n++
		}
	}
	return n
}
