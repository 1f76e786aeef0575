package classfile

// New starts a class with the given name and superclass (java/lang/Object
// when empty), targeting Java 8.
func New(name, super string, interfaces ...string) *Class {
	if super == "" {
		super = "java/lang/Object"
	}
	p := NewPool()
	c := &Class{Major: 52, Pool: p, Access: 0x0021, This: p.AddClass(name), Super: p.AddClass(super)}
	for _, i := range interfaces {
		c.Interfaces = append(c.Interfaces, p.AddClass(i))
	}
	return c
}

// AddField declares a field.
func (c *Class) AddField(access uint16, name, desc string, attrs ...*Attribute) *Member {
	m := &Member{Access: access, Name: c.Pool.AddUtf8(name), Desc: c.Pool.AddUtf8(desc), Attributes: attrs}
	c.Fields = append(c.Fields, m)
	return m
}

// AddMethod declares a method.
func (c *Class) AddMethod(access uint16, name, desc string, attrs ...*Attribute) *Member {
	m := &Member{Access: access, Name: c.Pool.AddUtf8(name), Desc: c.Pool.AddUtf8(desc), Attributes: attrs}
	c.Methods = append(c.Methods, m)
	return m
}

// NewAttribute builds an attribute named name.
func (c *Class) NewAttribute(name string, data []byte) *Attribute {
	return &Attribute{Name: c.Pool.AddUtf8(name), Data: data}
}

// SignatureAttribute builds a Signature attribute.
func (c *Class) SignatureAttribute(sig string) *Attribute {
	return c.NewAttribute("Signature", PutU2(c.Pool.AddUtf8(sig)))
}

// Local describes a LocalVariableTable row by name and descriptor.
type Local struct {
	Index   uint16
	StartPC uint16
	Length  uint16
	Name    string
	Desc    string
}

// CodeAttribute builds a Code attribute with the given instructions and a
// LocalVariableTable for locals.
func (c *Class) CodeAttribute(maxStack, maxLocals uint16, instructions []byte, locals ...Local) *Attribute {
	code := &Code{MaxStack: maxStack, MaxLocals: maxLocals, Instructions: instructions}
	if len(locals) > 0 {
		rows := make([]LocalVariable, len(locals))
		for i, l := range locals {
			rows[i] = LocalVariable{StartPC: l.StartPC, Length: l.Length, Name: c.Pool.AddUtf8(l.Name), Desc: c.Pool.AddUtf8(l.Desc), Index: l.Index}
		}
		code.Attributes = append(code.Attributes, c.NewAttribute("LocalVariableTable", EncodeLocalVariables(rows)))
	}
	return c.NewAttribute("Code", code.Encode())
}
