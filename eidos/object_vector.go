package eidos

import (
	"io"
	"sort"
)

const undefinedElementType = "undefined"

// ObjectVector is an ordered, homogeneous collection of elements. Each
// element is retained on insertion and released on removal or Dispose.
// Once non-empty, every element shares one Class.
type ObjectVector struct {
	elements []ObjectElement
	class    *Class
}

// NewObjectVector creates an empty vector. class may be nil, in which case
// the element type stays undefined until the first push.
func NewObjectVector(class *Class) *ObjectVector {
	return &ObjectVector{class: class}
}

// NewObjectVectorOf builds a vector from elements, which must share a class.
func NewObjectVectorOf(elements ...ObjectElement) (*ObjectVector, error) {
	v := &ObjectVector{}
	for _, e := range elements {
		if err := v.PushElement(e); err != nil {
			v.Dispose()
			return nil, err
		}
	}
	return v, nil
}

func (v *ObjectVector) Type() ValueType { return TypeObject }
func (v *ObjectVector) Count() int      { return len(v.elements) }
func (v *ObjectVector) Invisible() bool { return false }
func (v *ObjectVector) IsMutable() bool { return true }

func (v *ObjectVector) ElementType() string {
	if v.class == nil {
		return undefinedElementType
	}
	return v.class.Name()
}

// Class returns the element class, or nil while undefined.
func (v *ObjectVector) Class() *Class { return v.class }

// Elements returns the underlying slice; callers must not modify it.
func (v *ObjectVector) Elements() []ObjectElement { return v.elements }

func (v *ObjectVector) LogicalAtIndex(int) (bool, error) {
	return false, conversionError(TypeObject, "logical")
}
func (v *ObjectVector) StringAtIndex(int) (string, error) {
	return "", conversionError(TypeObject, "string")
}
func (v *ObjectVector) IntAtIndex(int) (int64, error) {
	return 0, conversionError(TypeObject, "integer")
}
func (v *ObjectVector) FloatAtIndex(int) (float64, error) {
	return 0, conversionError(TypeObject, "float")
}

func (v *ObjectVector) ObjectElementAtIndex(idx int) (ObjectElement, error) {
	if err := checkIndex("ObjectElementAtIndex", idx, len(v.elements)); err != nil {
		return nil, err
	}
	return v.elements[idx], nil
}

// PushElement appends e, retaining it.
func (v *ObjectVector) PushElement(e ObjectElement) error {
	if v.class != nil && e.Class() != v.class {
		return newError(ErrTypeMismatch, "ObjectVector.PushElement", "the type of an object cannot be changed.")
	}
	v.class = e.Class()
	retainElement(e)
	v.elements = append(v.elements, e)
	return nil
}

func (v *ObjectVector) GetValueAtIndex(idx int) (Value, error) {
	e, err := v.ObjectElementAtIndex(idx)
	if err != nil {
		return nil, err
	}
	return NewObjectSingleton(e), nil
}

func (v *ObjectVector) SetValueAtIndex(idx int, src Value) error {
	if err := checkIndex("SetValueAtIndex", idx, len(v.elements)); err != nil {
		return err
	}
	e, err := src.ObjectElementAtIndex(0)
	if err != nil {
		return err
	}
	if e.Class() != v.class {
		return newError(ErrTypeMismatch, "ObjectVector.SetValueAtIndex", "the type of an object cannot be changed.")
	}
	retainElement(e)
	releaseElement(v.elements[idx])
	v.elements[idx] = e
	return nil
}

func (v *ObjectVector) CopyValues() Value {
	out := &ObjectVector{class: v.class, elements: make([]ObjectElement, 0, len(v.elements))}
	for _, e := range v.elements {
		retainElement(e)
		out.elements = append(out.elements, e)
	}
	return out
}

func (v *ObjectVector) MutableCopy() Value     { return v.CopyValues() }
func (v *ObjectVector) NewMatchingType() Value { return NewObjectVector(v.class) }

func (v *ObjectVector) PushValueFromIndexOfEidosValue(idx int, src Value) error {
	if src.Type() != TypeObject {
		return newError(ErrTypeMismatch, "ObjectVector.PushValueFromIndexOfEidosValue", "type mismatch.")
	}
	e, err := src.ObjectElementAtIndex(idx)
	if err != nil {
		return err
	}
	if v.class != nil && e.Class() != v.class {
		return newError(ErrTypeMismatch, "ObjectVector.PushValueFromIndexOfEidosValue", "the type of an object cannot be changed.")
	}
	return v.PushElement(e)
}

func (v *ObjectVector) Sort(bool) error {
	return newError(ErrUndefinedOperation, "ObjectVector.Sort", "Sort() is not defined for type object.")
}

func (v *ObjectVector) Print(w io.Writer) {
	if len(v.elements) == 0 {
		io.WriteString(w, "object(0)")
		return
	}
	for i, e := range v.elements {
		if i > 0 {
			io.WriteString(w, " ")
		}
		io.WriteString(w, ElementString(e))
	}
}

// Dispose releases every element and empties the vector.
func (v *ObjectVector) Dispose() {
	for _, e := range v.elements {
		releaseElement(e)
	}
	v.elements = nil
}

// SortBy reorders the elements by the value of property, which must yield
// exactly one logical, integer, float or string per element, of a single
// type across elements. Equal keys are not guaranteed to keep their order.
func (v *ObjectVector) SortBy(property string, ascending bool) error {
	if len(v.elements) == 0 {
		return nil
	}
	const op = "ObjectVector.SortBy"
	id := GlobalStringID(property)

	first, err := GetValueForMember(v.elements[0], id)
	if err != nil {
		return err
	}
	keyType := first.Type()
	if keyType == TypeNULL || keyType == TypeObject {
		return newError(ErrTypeMismatch, op, "sorting property %s returned %s; a property that evaluates to logical, int, float, or string is required.", property, keyType)
	}

	keys := make([]Value, len(v.elements))
	for i, e := range v.elements {
		k, err := GetValueForMember(e, id)
		if err != nil {
			return err
		}
		if k.Count() != 1 {
			return newError(ErrArityMismatch, op, "sorting property %s produced %d values for a single element; a property that produces one value per element is required for sorting.", property, k.Count())
		}
		if k.Type() != keyType {
			return newError(ErrTypeMismatch, op, "sorting property %s did not produce a consistent result type; a single type is required for a sorting key.", property)
		}
		keys[i] = k
	}

	idx := make([]int, len(v.elements))
	for i := range idx {
		idx[i] = i
	}
	less := keyLess(keyType, keys)
	sort.Slice(idx, func(a, b int) bool {
		if ascending {
			return less(idx[a], idx[b])
		}
		return less(idx[b], idx[a])
	})

	sorted := make([]ObjectElement, len(idx))
	for i, j := range idx {
		sorted[i] = v.elements[j]
	}
	v.elements = sorted
	return nil
}

func keyLess(t ValueType, keys []Value) func(i, j int) bool {
	switch t {
	case TypeLogical:
		return func(i, j int) bool {
			a, _ := keys[i].LogicalAtIndex(0)
			b, _ := keys[j].LogicalAtIndex(0)
			return !a && b
		}
	case TypeInt:
		return func(i, j int) bool {
			a, _ := keys[i].IntAtIndex(0)
			b, _ := keys[j].IntAtIndex(0)
			return a < b
		}
	case TypeFloat:
		return func(i, j int) bool {
			a, _ := keys[i].FloatAtIndex(0)
			b, _ := keys[j].FloatAtIndex(0)
			return a < b
		}
	default:
		return func(i, j int) bool {
			a, _ := keys[i].StringAtIndex(0)
			b, _ := keys[j].StringAtIndex(0)
			return a < b
		}
	}
}

func (v *ObjectVector) GetValueForMemberOfElements(id StringID) (Value, error) {
	return getMemberOfElements(v.elements, id)
}

func (v *ObjectVector) GetRepresentativeValueOrNullForMemberOfElements(id StringID) Value {
	return representativeValue(v.elements, id)
}

func (v *ObjectVector) SetValueForMemberOfElements(id StringID, val Value) error {
	return setMemberOfElements(v.elements, id, val)
}

func (v *ObjectVector) ExecuteInstanceMethodOfElements(id StringID, args []Value, ctx *ExecContext) (Value, error) {
	return executeInstanceMethodOfElements(v.elements, id, args, ctx)
}

func (v *ObjectVector) ExecuteClassMethodOfElements(id StringID, args []Value, ctx *ExecContext) (Value, error) {
	return executeClassMethodOfElements(v.elements, id, args, ctx)
}

func (v *ObjectVector) ExecuteMethodOfElements(id StringID, args []Value, ctx *ExecContext) (Value, error) {
	return executeMethodOfElements(v.elements, id, args, ctx)
}

// ReadOnlyMembersOfElements returns the first element's read-only members,
// or nil when empty.
func (v *ObjectVector) ReadOnlyMembersOfElements() []string {
	if v.class == nil {
		return nil
	}
	return v.class.ReadOnlyMembers()
}

func (v *ObjectVector) ReadWriteMembersOfElements() []string {
	if v.class == nil {
		return nil
	}
	return v.class.ReadWriteMembers()
}

func (v *ObjectVector) MethodsOfElements() []string {
	if v.class == nil {
		return nil
	}
	return v.class.MethodNames()
}

// === ObjectSingleton ===

// ObjectSingleton is an immutable single element.
type ObjectSingleton struct {
	element ObjectElement
}

// NewObjectSingleton wraps e, retaining it.
func NewObjectSingleton(e ObjectElement) *ObjectSingleton {
	retainElement(e)
	return &ObjectSingleton{element: e}
}

func (s *ObjectSingleton) Type() ValueType        { return TypeObject }
func (s *ObjectSingleton) Count() int             { return 1 }
func (s *ObjectSingleton) ElementType() string    { return s.element.Class().Name() }
func (s *ObjectSingleton) Invisible() bool        { return false }
func (s *ObjectSingleton) IsMutable() bool        { return false }
func (s *ObjectSingleton) Element() ObjectElement { return s.element }

func (s *ObjectSingleton) elementSlice() []ObjectElement { return []ObjectElement{s.element} }

func (s *ObjectSingleton) LogicalAtIndex(int) (bool, error) {
	return false, conversionError(TypeObject, "logical")
}
func (s *ObjectSingleton) StringAtIndex(int) (string, error) {
	return "", conversionError(TypeObject, "string")
}
func (s *ObjectSingleton) IntAtIndex(int) (int64, error) {
	return 0, conversionError(TypeObject, "integer")
}
func (s *ObjectSingleton) FloatAtIndex(int) (float64, error) {
	return 0, conversionError(TypeObject, "float")
}

func (s *ObjectSingleton) ObjectElementAtIndex(idx int) (ObjectElement, error) {
	if err := checkIndex("ObjectElementAtIndex", idx, 1); err != nil {
		return nil, err
	}
	return s.element, nil
}

func (s *ObjectSingleton) GetValueAtIndex(idx int) (Value, error) {
	if err := checkIndex("GetValueAtIndex", idx, 1); err != nil {
		return nil, err
	}
	return NewObjectSingleton(s.element), nil
}

func (s *ObjectSingleton) SetValueAtIndex(int, Value) error {
	return newError(ErrImmutableValue, "ObjectSingleton.SetValueAtIndex", "object singleton is not modifiable.")
}

func (s *ObjectSingleton) CopyValues() Value { return s.MutableCopy() }

func (s *ObjectSingleton) MutableCopy() Value {
	v := NewObjectVector(s.element.Class())
	_ = v.PushElement(s.element)
	return v
}

func (s *ObjectSingleton) NewMatchingType() Value { return NewObjectVector(s.element.Class()) }

func (s *ObjectSingleton) PushValueFromIndexOfEidosValue(int, Value) error {
	return newError(ErrImmutableValue, "ObjectSingleton.PushValueFromIndexOfEidosValue", "object singleton is not modifiable.")
}

func (s *ObjectSingleton) Sort(bool) error {
	return newError(ErrUndefinedOperation, "ObjectSingleton.Sort", "Sort() is not defined for type object.")
}

func (s *ObjectSingleton) Print(w io.Writer) { io.WriteString(w, ElementString(s.element)) }

// Dispose releases the wrapped element.
func (s *ObjectSingleton) Dispose() { releaseElement(s.element) }

func (s *ObjectSingleton) GetValueForMemberOfElements(id StringID) (Value, error) {
	return getMemberOfElements(s.elementSlice(), id)
}

func (s *ObjectSingleton) GetRepresentativeValueOrNullForMemberOfElements(id StringID) Value {
	return representativeValue(s.elementSlice(), id)
}

func (s *ObjectSingleton) SetValueForMemberOfElements(id StringID, val Value) error {
	return setMemberOfElements(s.elementSlice(), id, val)
}

func (s *ObjectSingleton) ExecuteMethodOfElements(id StringID, args []Value, ctx *ExecContext) (Value, error) {
	return executeMethodOfElements(s.elementSlice(), id, args, ctx)
}

// === broadcasting over elements ===

func getMemberOfElements(elements []ObjectElement, id StringID) (Value, error) {
	const op = "GetValueForMemberOfElements"
	if len(elements) == 0 {
		return nil, newError(ErrUnrecognizedProperty, op, "unrecognized member name \"%s\" (no elements, thus no element type defined).", StringForID(id))
	}
	sig := elements[0].Class().Property(id)
	if sig == nil {
		return nil, unrecognizedProperty(elements[0], id)
	}

	results := make([]Value, 0, len(elements))
	for _, e := range elements {
		r, err := GetValueForMember(e, id)
		if err != nil {
			disposeValues(results...)
			return nil, err
		}
		if sig.Mask.IsSingleton() && r.Count() != 1 {
			Internalf(op, "singleton member %s produced %d values for a single element.", sig.Name, r.Count())
		}
		results = append(results, r)
	}
	return concatenateResults(results)
}

// concatenateResults joins per-element results into one value. The
// per-element temporaries are disposed; the joined value holds its own
// references.
func concatenateResults(results []Value) (Value, error) {
	if len(results) == 1 {
		return results[0], nil
	}
	defer disposeValues(results...)
	return Concatenate(results...)
}

// representativeValue never fails: undeclared members and empty receivers
// yield nil.
func representativeValue(elements []ObjectElement, id StringID) Value {
	if len(elements) == 0 {
		return nil
	}
	sig := elements[0].Class().Property(id)
	if sig == nil || sig.Get == nil {
		return nil
	}
	v, err := sig.Get(elements[0])
	if err != nil {
		return nil
	}
	return v
}

func setMemberOfElements(elements []ObjectElement, id StringID, val Value) error {
	const op = "SetValueForMemberOfElements"
	if len(elements) == 0 {
		return newError(ErrUnrecognizedProperty, op, "unrecognized member name \"%s\" (no elements, thus no element type defined).", StringForID(id))
	}
	class := elements[0].Class()
	switch val.Count() {
	case 1:
		sig, err := checkMemberAssignment(class, id, val)
		if err != nil {
			return err
		}
		return assignMember(elements, sig, func(int) Value { return val })
	case len(elements):
		items := make([]Value, len(elements))
		defer func() { disposeValues(items...) }()
		var sig *PropertySignature
		for i := range elements {
			item, err := val.GetValueAtIndex(i)
			if err != nil {
				return err
			}
			items[i] = item
			if sig, err = checkMemberAssignment(class, id, item); err != nil {
				return err
			}
		}
		return assignMember(elements, sig, func(i int) Value { return items[i] })
	}
	return newError(ErrArityMismatch, op, "assignment to a member requires an rvalue that is a singleton (multiplex assignment) or that has a .size() matching the .size of the lvalue.")
}

// assignMember writes valueAt(i) to every element. If a setter rejects a
// value, the elements already written get their previous values back, so a
// failed assignment leaves every element as it was.
func assignMember(elements []ObjectElement, sig *PropertySignature, valueAt func(int) Value) error {
	previous := make([]Value, 0, len(elements))
	defer func() { disposeValues(previous...) }()
	for i, e := range elements {
		old, err := sig.Get(e)
		if err == nil {
			err = sig.Set(e, valueAt(i))
			if err != nil {
				disposeValues(old)
			}
		}
		if err != nil {
			for j := len(previous) - 1; j >= 0; j-- {
				if rerr := sig.Set(elements[j], previous[j]); rerr != nil {
					Internalf("SetValueForMemberOfElements", "restoring member %s failed: %v", sig.Name, rerr)
				}
			}
			return err
		}
		previous = append(previous, old)
	}
	return nil
}

func executeMethodOfElements(elements []ObjectElement, id StringID, args []Value, ctx *ExecContext) (Value, error) {
	if len(elements) == 0 {
		return nil, newError(ErrUnrecognizedMethod, "ExecuteMethodOfElements", "unrecognized method name %s.", StringForID(id))
	}
	sig, err := SignatureForMethod(elements[0], id)
	if err != nil {
		return nil, err
	}
	if sig.ClassMethod {
		return executeClassMethodOfElements(elements, id, args, ctx)
	}
	return executeInstanceMethodOfElements(elements, id, args, ctx)
}

func executeClassMethodOfElements(elements []ObjectElement, id StringID, args []Value, ctx *ExecContext) (Value, error) {
	if len(elements) == 0 {
		return nil, newError(ErrUnrecognizedMethod, "ExecuteClassMethodOfElements", "unrecognized class method name %s.", StringForID(id))
	}
	return ExecuteMethod(elements[0], id, args, ctx)
}

func executeInstanceMethodOfElements(elements []ObjectElement, id StringID, args []Value, ctx *ExecContext) (Value, error) {
	if len(elements) == 0 {
		return nil, newError(ErrUnrecognizedMethod, "ExecuteInstanceMethodOfElements", "unrecognized instance method name %s.", StringForID(id))
	}
	sig, err := SignatureForMethod(elements[0], id)
	if err != nil {
		return nil, err
	}
	if err := sig.CheckArguments(args); err != nil {
		return nil, err
	}

	results := make([]Value, 0, len(elements))
	for _, e := range elements {
		r, err := callMethod(e, sig, args, ctx)
		if err != nil {
			disposeValues(results...)
			return nil, err
		}
		results = append(results, r)
	}
	return concatenateResults(results)
}
