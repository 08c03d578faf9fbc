package eidos

// TestElement is a minimal internally-owned element used to exercise the
// object model: one read-write integer property _yolk and one method
// _cubicYolk().
type TestElement struct {
	RefCounted
	yolk int64
}

// TestElementClass is the class of TestElement.
var TestElementClass = newTestElementClass()

func newTestElementClass() *Class {
	c := NewClass("_TestElement", nil)

	yolk := NewPropertySignature("_yolk", false, MaskInt|MaskSingleton, nil)
	yolk.Get = func(e ObjectElement) (Value, error) {
		return NewIntSingleton(e.(*TestElement).yolk), nil
	}
	yolk.Set = func(e ObjectElement, v Value) error {
		n, err := v.IntAtIndex(0)
		if err != nil {
			return err
		}
		e.(*TestElement).yolk = n
		return nil
	}
	c.AddProperty(yolk)

	c.AddMethod(NewInstanceMethod("_cubicYolk", MaskInt|MaskSingleton, nil,
		func(e ObjectElement, _ []Value, _ *ExecContext) (Value, error) {
			y := e.(*TestElement).yolk
			return NewIntSingleton(y * y * y), nil
		}))
	return c
}

// NewTestElement returns an element with a reference count of 1.
func NewTestElement(yolk int64) *TestElement {
	return &TestElement{yolk: yolk}
}

func (t *TestElement) Class() *Class { return TestElementClass }

// Yolk returns the current _yolk value.
func (t *TestElement) Yolk() int64 { return t.yolk }
