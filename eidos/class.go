package eidos

import (
	"sort"
	"strings"
)

// PropertyGetter reads a property from an element.
type PropertyGetter func(e ObjectElement) (Value, error)

// PropertySetter writes a property on an element. The value has already
// passed the signature's type and count checks; the setter performs its
// own domain (range) checks.
type PropertySetter func(e ObjectElement, v Value) error

// MethodFunc implements a method. args have already been checked against
// the signature.
type MethodFunc func(e ObjectElement, args []Value, ctx *ExecContext) (Value, error)

// PropertySignature declares one property of a Class.
type PropertySignature struct {
	Name       string
	ID         StringID
	ReadOnly   bool
	Mask       ValueMask
	ValueClass *Class // element class for object-typed properties, or nil

	Get PropertyGetter
	Set PropertySetter
}

// NewPropertySignature declares a property; attach Get (and Set for
// read-write properties) before registering it.
func NewPropertySignature(name string, readOnly bool, mask ValueMask, valueClass *Class) *PropertySignature {
	return &PropertySignature{
		Name:       name,
		ID:         GlobalStringID(name),
		ReadOnly:   readOnly,
		Mask:       mask,
		ValueClass: valueClass,
	}
}

// String renders "name => (type)" for read-only and "name <–> (type)" for
// read-write properties.
func (p *PropertySignature) String() string {
	arrow := " <–> "
	if p.ReadOnly {
		arrow = " => "
	}
	return p.Name + arrow + "(" + StringForValueMask(p.Mask, p.ValueClass, "") + ")"
}

// ArgSignature declares one method argument.
type ArgSignature struct {
	Name  string
	Mask  ValueMask
	Class *Class
}

// MethodSignature declares one method of a Class.
type MethodSignature struct {
	Name        string
	ID          StringID
	ReturnMask  ValueMask
	ReturnClass *Class
	Args        []ArgSignature
	ClassMethod bool

	Impl MethodFunc
}

// NewInstanceMethod declares a method dispatched to every receiver element.
func NewInstanceMethod(name string, returnMask ValueMask, returnClass *Class, impl MethodFunc) *MethodSignature {
	return &MethodSignature{
		Name:        name,
		ID:          GlobalStringID(name),
		ReturnMask:  returnMask,
		ReturnClass: returnClass,
		Impl:        impl,
	}
}

// NewClassMethod declares a method dispatched once, to the first receiver.
func NewClassMethod(name string, returnMask ValueMask, returnClass *Class, impl MethodFunc) *MethodSignature {
	m := NewInstanceMethod(name, returnMask, returnClass, impl)
	m.ClassMethod = true
	return m
}

// AddArg appends an argument. Use MaskOptional for optional arguments;
// they must follow all required ones.
func (m *MethodSignature) AddArg(name string, mask ValueMask, class *Class) *MethodSignature {
	m.Args = append(m.Args, ArgSignature{Name: name, Mask: mask, Class: class})
	return m
}

// String renders e.g. "- (integer$)countOfMutationsOfType(io<MutationType>$ mutType)".
func (m *MethodSignature) String() string {
	var b strings.Builder
	if m.ClassMethod {
		b.WriteString("+ (")
	} else {
		b.WriteString("- (")
	}
	b.WriteString(StringForValueMask(m.ReturnMask, m.ReturnClass, ""))
	b.WriteString(")")
	b.WriteString(m.Name)
	b.WriteString("(")
	if len(m.Args) == 0 {
		b.WriteString("void")
	}
	for i, a := range m.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(StringForValueMask(a.Mask, a.Class, a.Name))
	}
	b.WriteString(")")
	return b.String()
}

// CheckArguments validates argument count, types, singleton-ness and
// object class against the signature.
func (m *MethodSignature) CheckArguments(args []Value) error {
	op := m.Name + "()"
	if len(args) > len(m.Args) {
		return newError(ErrArityMismatch, op, "too many arguments supplied (%d, at most %d allowed).", len(args), len(m.Args))
	}
	for i, a := range m.Args {
		if i >= len(args) {
			if !a.Mask.IsOptional() {
				return newError(ErrArityMismatch, op, "missing required argument %s.", a.Name)
			}
			continue
		}
		v := args[i]
		if !a.Mask.Accepts(v.Type()) {
			return newError(ErrTypeMismatch, op, "argument %d (%s) cannot be type %s.", i+1, a.Name, v.Type())
		}
		if a.Mask.IsSingleton() && v.Count() != 1 {
			return newError(ErrArityMismatch, op, "argument %d (%s) must be a singleton (size() == 1), but size() == %d.", i+1, a.Name, v.Count())
		}
		if a.Class != nil && v.Type() == TypeObject && v.Count() > 0 && v.ElementType() != a.Class.Name() {
			return newError(ErrTypeMismatch, op, "argument %d (%s) cannot be object element type %s; expected object element type %s.", i+1, a.Name, v.ElementType(), a.Class.Name())
		}
	}
	return nil
}

// Class is the data-driven dispatch table for one element type.
// Lookups walk the superclass chain; every class ultimately derives from
// ObjectBaseClass, which supplies str(), property() and method().
type Class struct {
	name       string
	superclass *Class
	properties map[StringID]*PropertySignature
	methods    map[StringID]*MethodSignature
}

// NewClass creates a class deriving from superclass (ObjectBaseClass if nil).
func NewClass(name string, superclass *Class) *Class {
	if superclass == nil {
		superclass = ObjectBaseClass
	}
	return &Class{
		name:       name,
		superclass: superclass,
		properties: make(map[StringID]*PropertySignature),
		methods:    make(map[StringID]*MethodSignature),
	}
}

func (c *Class) Name() string       { return c.name }
func (c *Class) Superclass() *Class { return c.superclass }

// AddProperty registers sig. Registering the same name twice panics.
func (c *Class) AddProperty(sig *PropertySignature) *Class {
	if _, dup := c.properties[sig.ID]; dup {
		Internalf("Class.AddProperty", "property %s registered twice on %s.", sig.Name, c.name)
	}
	c.properties[sig.ID] = sig
	return c
}

// AddMethod registers sig. Base methods cannot be shadowed.
func (c *Class) AddMethod(sig *MethodSignature) *Class {
	if _, dup := c.methods[sig.ID]; dup {
		Internalf("Class.AddMethod", "method %s registered twice on %s.", sig.Name, c.name)
	}
	if c != ObjectBaseClass && ObjectBaseClass.Method(sig.ID) != nil {
		Internalf("Class.AddMethod", "method %s on %s would shadow a base method.", sig.Name, c.name)
	}
	c.methods[sig.ID] = sig
	return c
}

// Property returns the signature for id, or nil if the class does not declare it.
func (c *Class) Property(id StringID) *PropertySignature {
	for k := c; k != nil; k = k.superclass {
		if p, ok := k.properties[id]; ok {
			return p
		}
	}
	return nil
}

// Method returns the signature for id, or nil if the class does not declare it.
func (c *Class) Method(id StringID) *MethodSignature {
	for k := c; k != nil; k = k.superclass {
		if m, ok := k.methods[id]; ok {
			return m
		}
	}
	return nil
}

// Properties returns every property signature, sorted by name.
func (c *Class) Properties() []*PropertySignature {
	var out []*PropertySignature
	for k := c; k != nil; k = k.superclass {
		for _, p := range k.properties {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Methods returns every method signature, sorted by name.
func (c *Class) Methods() []*MethodSignature {
	var out []*MethodSignature
	for k := c; k != nil; k = k.superclass {
		for _, m := range k.methods {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ReadOnlyMembers returns the sorted names of read-only properties.
func (c *Class) ReadOnlyMembers() []string {
	var names []string
	for _, p := range c.Properties() {
		if p.ReadOnly {
			names = append(names, p.Name)
		}
	}
	return names
}

// ReadWriteMembers returns the sorted names of read-write properties.
func (c *Class) ReadWriteMembers() []string {
	var names []string
	for _, p := range c.Properties() {
		if !p.ReadOnly {
			names = append(names, p.Name)
		}
	}
	return names
}

// MethodNames returns the sorted names of all methods, base methods included.
func (c *Class) MethodNames() []string {
	var names []string
	for _, m := range c.Methods() {
		names = append(names, m.Name)
	}
	return names
}
