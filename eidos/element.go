package eidos

import (
	"fmt"
	"io"
	"sort"
)

// ObjectElement is any entity exposed to the value system. Its Class
// supplies the property and method tables.
//
// Elements that print differently from their class name implement
// fmt.Stringer.
type ObjectElement interface {
	Class() *Class
}

// Retainable is implemented only by elements whose lifetime is owned by
// their references (see RefCounted). Elements owned by an external
// container (individuals in a subpopulation, genomes, mutations in the
// registry) do not implement it, so retain and release are statically
// no-ops for them.
type Retainable interface {
	ObjectElement
	Retain()
	Release()
	RefCount() int
}

// RefCounted gives an internally-owned element true reference counting.
// Embed it by value; the zero value has a count of 1.
type RefCounted struct {
	extra int
	freed bool

	// OnFree runs once when the count reaches zero.
	OnFree func()
}

func (r *RefCounted) Retain() {
	if r.freed {
		Internalf("RefCounted.Retain", "retain of a freed element.")
	}
	r.extra++
}

func (r *RefCounted) Release() {
	if r.freed {
		Internalf("RefCounted.Release", "release of a freed element.")
	}
	if r.extra > 0 {
		r.extra--
		return
	}
	r.freed = true
	if r.OnFree != nil {
		r.OnFree()
	}
}

// RefCount returns the current count; 0 once freed.
func (r *RefCounted) RefCount() int {
	if r.freed {
		return 0
	}
	return r.extra + 1
}

// Freed reports whether the count has reached zero.
func (r *RefCounted) Freed() bool { return r.freed }

func retainElement(e ObjectElement) {
	if r, ok := e.(Retainable); ok {
		r.Retain()
	}
}

func releaseElement(e ObjectElement) {
	if r, ok := e.(Retainable); ok {
		r.Release()
	}
}

// ExecContext carries what a method needs from its caller: the output
// sink for printing methods and an opaque host (the owning simulation).
type ExecContext struct {
	Output io.Writer
	Host   any
}

func (c *ExecContext) output() io.Writer {
	if c == nil || c.Output == nil {
		return io.Discard
	}
	return c.Output
}

// ElementString renders one element: its String method if it has one,
// otherwise its class name.
func ElementString(e ObjectElement) string {
	if s, ok := e.(fmt.Stringer); ok {
		return s.String()
	}
	return e.Class().Name()
}

// ReadOnlyMembers returns the sorted read-only property names of e.
func ReadOnlyMembers(e ObjectElement) []string { return e.Class().ReadOnlyMembers() }

// ReadWriteMembers returns the sorted read-write property names of e.
func ReadWriteMembers(e ObjectElement) []string { return e.Class().ReadWriteMembers() }

// Methods returns the sorted method names of e, base methods included.
func Methods(e ObjectElement) []string { return e.Class().MethodNames() }

// MemberIsReadOnly reports whether the property is read-only.
func MemberIsReadOnly(e ObjectElement, id StringID) (bool, error) {
	sig := e.Class().Property(id)
	if sig == nil {
		return false, unrecognizedProperty(e, id)
	}
	return sig.ReadOnly, nil
}

func unrecognizedProperty(e ObjectElement, id StringID) error {
	return newError(ErrUnrecognizedProperty, "GetValueForMember for "+e.Class().Name(), "unrecognized member name \"%s\".", StringForID(id))
}

// GetValueForMember reads property id of e.
func GetValueForMember(e ObjectElement, id StringID) (Value, error) {
	class := e.Class()
	sig := class.Property(id)
	if sig == nil {
		return nil, unrecognizedProperty(e, id)
	}
	if sig.Get == nil {
		Internalf("GetValueForMember for "+class.Name(), "attempt to get a value for member %s was not handled by subclass.", sig.Name)
	}
	return sig.Get(e)
}

// SetValueForMember writes property id of e after type, count and
// read-only checks.
func SetValueForMember(e ObjectElement, id StringID, v Value) error {
	sig, err := checkMemberAssignment(e.Class(), id, v)
	if err != nil {
		return err
	}
	return sig.Set(e, v)
}

// checkMemberAssignment performs every check on assigning v to property
// id of class that does not depend on the receiving element.
func checkMemberAssignment(class *Class, id StringID, v Value) (*PropertySignature, error) {
	op := "SetValueForMember for " + class.Name()
	sig := class.Property(id)
	if sig == nil {
		return nil, newError(ErrUnrecognizedProperty, op, "unrecognized member name \"%s\".", StringForID(id))
	}
	if sig.ReadOnly {
		return nil, newError(ErrReadOnlyProperty, op, "attempt to set a new value for read-only member %s.", sig.Name)
	}
	if !sig.Mask.Accepts(v.Type()) {
		return nil, newError(ErrTypeMismatch, op, "type %s is not legal for member %s.", v.Type(), sig.Name)
	}
	if sig.Mask.IsSingleton() && v.Count() != 1 {
		return nil, newError(ErrArityMismatch, op, "value of size() == 1 expected in assignment to member %s.", sig.Name)
	}
	if sig.ValueClass != nil && v.Type() == TypeObject && v.Count() > 0 && v.ElementType() != sig.ValueClass.Name() {
		return nil, newError(ErrTypeMismatch, op, "object element type %s is not legal for member %s.", v.ElementType(), sig.Name)
	}
	if sig.Set == nil || sig.Get == nil {
		Internalf(op, "setting a new value for read-write member %s was not handled by subclass.", sig.Name)
	}
	return sig, nil
}

// disposeValues releases the element references held by temporaries.
func disposeValues(values ...Value) {
	for _, v := range values {
		if d, ok := v.(interface{ Dispose() }); ok {
			d.Dispose()
		}
	}
}

// SignatureForMethod returns the signature of method id on e.
func SignatureForMethod(e ObjectElement, id StringID) (*MethodSignature, error) {
	sig := e.Class().Method(id)
	if sig == nil {
		return nil, newError(ErrUnrecognizedMethod, "SignatureForMethod for "+e.Class().Name(), "unrecognized method name %s.", StringForID(id))
	}
	return sig, nil
}

// ExecuteMethod checks args against the signature of method id and calls it on e.
func ExecuteMethod(e ObjectElement, id StringID, args []Value, ctx *ExecContext) (Value, error) {
	sig, err := SignatureForMethod(e, id)
	if err != nil {
		return nil, err
	}
	if err := sig.CheckArguments(args); err != nil {
		return nil, err
	}
	return callMethod(e, sig, args, ctx)
}

func callMethod(e ObjectElement, sig *MethodSignature, args []Value, ctx *ExecContext) (Value, error) {
	if sig.Impl == nil {
		Internalf("ExecuteMethod for "+e.Class().Name(), "method %s was not handled by subclass.", sig.Name)
	}
	return sig.Impl(e, args, ctx)
}

// === base class ===

// ObjectBaseClass is the root of every class; it declares no properties
// and the introspection methods str(), property() and method().
var ObjectBaseClass = newObjectBaseClass()

func newObjectBaseClass() *Class {
	c := &Class{
		name:       "Object",
		properties: make(map[StringID]*PropertySignature),
		methods:    make(map[StringID]*MethodSignature),
	}
	for _, m := range []*MethodSignature{
		NewClassMethod("method", MaskNULL, nil, executeMethodList).AddArg("methodName", MaskString|MaskSingleton|MaskOptional, nil),
		NewClassMethod("property", MaskNULL, nil, executePropertyList).AddArg("propertyName", MaskString|MaskSingleton|MaskOptional, nil),
		NewInstanceMethod("str", MaskNULL, nil, executeStr),
	} {
		c.methods[m.ID] = m
	}
	return c
}

func memberArrow(readOnly bool) string {
	if readOnly {
		return " => ("
	}
	return " -> ("
}

func executeStr(e ObjectElement, _ []Value, ctx *ExecContext) (Value, error) {
	w := ctx.output()
	fmt.Fprintf(w, "%s:\n", e.Class().Name())

	for _, sig := range e.Class().Properties() {
		v, err := GetValueForMember(e, sig.ID)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(w, "\t%s%s%s) ", sig.Name, memberArrow(sig.ReadOnly), v.Type())
		if v.Count() <= 2 {
			v.Print(w)
		} else {
			first, _ := v.GetValueAtIndex(0)
			second, _ := v.GetValueAtIndex(1)
			fmt.Fprintf(w, "%s %s ... (%d values)", ToString(first), ToString(second), v.Count())
		}
		io.WriteString(w, "\n")
	}
	return NULLInvisible, nil
}

func executePropertyList(e ObjectElement, args []Value, ctx *ExecContext) (Value, error) {
	w := ctx.output()
	match, hasMatch, err := optionalStringArg(args)
	if err != nil {
		return nil, err
	}

	found := false
	for _, sig := range e.Class().Properties() {
		if hasMatch && sig.Name != match {
			continue
		}
		v, err := GetValueForMember(e, sig.ID)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(w, "%s%s%s)\n", sig.Name, memberArrow(sig.ReadOnly), v.Type())
		found = true
	}
	if hasMatch && !found {
		fmt.Fprintf(w, "No property found for \"%s\".\n", match)
	}
	return NULLInvisible, nil
}

func executeMethodList(e ObjectElement, args []Value, ctx *ExecContext) (Value, error) {
	w := ctx.output()
	match, hasMatch, err := optionalStringArg(args)
	if err != nil {
		return nil, err
	}

	sigs := e.Class().Methods()
	sort.Slice(sigs, func(i, j int) bool { return sigs[i].Name < sigs[j].Name })
	found := false
	for _, sig := range sigs {
		if hasMatch && sig.Name != match {
			continue
		}
		fmt.Fprintln(w, sig.String())
		found = true
	}
	if hasMatch && !found {
		fmt.Fprintf(w, "No method signature found for \"%s\".\n", match)
	}
	return NULLInvisible, nil
}

func optionalStringArg(args []Value) (string, bool, error) {
	if len(args) == 0 || args[0].Type() == TypeNULL {
		return "", false, nil
	}
	s, err := args[0].StringAtIndex(0)
	return s, err == nil, err
}
