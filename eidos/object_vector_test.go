package eidos

import (
	"bytes"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// probe is an externally-owned element with a deliberately awkward class,
// used to drive the dispatch error paths.
type probe struct {
	name  string
	score float64
	asInt bool
}

var probeClass = newProbeClass()

func newProbeClass() *Class {
	c := NewClass("Probe", nil)

	name := NewPropertySignature("name", true, MaskString|MaskSingleton, nil)
	name.Get = func(e ObjectElement) (Value, error) { return NewString(e.(*probe).name), nil }
	c.AddProperty(name)

	self := NewPropertySignature("self", true, MaskObject|MaskSingleton, c)
	self.Get = func(e ObjectElement) (Value, error) { return NewObjectSingleton(e), nil }
	c.AddProperty(self)

	pair := NewPropertySignature("pair", true, MaskFloat, nil)
	pair.Get = func(e ObjectElement) (Value, error) {
		p := e.(*probe)
		return NewFloatVector(p.score, -p.score), nil
	}
	c.AddProperty(pair)

	// declared singleton but misbehaves
	liar := NewPropertySignature("liar", true, MaskInt|MaskSingleton, nil)
	liar.Get = func(ObjectElement) (Value, error) { return NewIntVector(1, 2), nil }
	c.AddProperty(liar)

	mixed := NewPropertySignature("mixed", true, MaskNumeric|MaskSingleton, nil)
	mixed.Get = func(e ObjectElement) (Value, error) {
		p := e.(*probe)
		if p.asInt {
			return NewIntSingleton(int64(p.score)), nil
		}
		return NewFloatSingleton(p.score), nil
	}
	c.AddProperty(mixed)

	score := NewPropertySignature("score", false, MaskFloat|MaskSingleton, nil)
	score.Get = func(e ObjectElement) (Value, error) { return NewFloatSingleton(e.(*probe).score), nil }
	score.Set = func(e ObjectElement, v Value) error {
		f, err := v.FloatAtIndex(0)
		if err != nil {
			return err
		}
		if f < 0 {
			return NewError(ErrRange, "Probe.score", "new value for member score is illegal.")
		}
		e.(*probe).score = f
		return nil
	}
	c.AddProperty(score)

	// declared without an implementation
	c.AddProperty(NewPropertySignature("ghost", true, MaskInt|MaskSingleton, nil))
	return c
}

func (p *probe) Class() *Class  { return probeClass }
func (p *probe) String() string { return "Probe<" + p.name + ">" }

func newYolkVector(t *testing.T, yolks ...int64) (*ObjectVector, []*TestElement) {
	t.Helper()
	v := NewObjectVector(nil)
	elems := make([]*TestElement, len(yolks))
	for i, y := range yolks {
		elems[i] = NewTestElement(y)
		require.NoError(t, v.PushElement(elems[i]))
	}
	return v, elems
}

func yolksOf(v *ObjectVector) []int64 {
	out := make([]int64, 0, v.Count())
	for _, e := range v.Elements() {
		out = append(out, e.(*TestElement).Yolk())
	}
	return out
}

func TestObjectVector_ElementType_UndefinedUntilFirstPush(t *testing.T) {
	v := NewObjectVector(nil)
	assert.Equal(t, "undefined", v.ElementType())

	require.NoError(t, v.PushElement(NewTestElement(1)))
	assert.Equal(t, "_TestElement", v.ElementType())

	err := v.PushElement(&probe{name: "x"})
	assert.ErrorIs(t, err, ErrTypeMismatch)
	assert.Equal(t, 1, v.Count())
}

func TestObjectVector_SetValueAtIndex_CannotChangeType(t *testing.T) {
	v, _ := newYolkVector(t, 1, 2)
	err := v.SetValueAtIndex(0, NewObjectSingleton(&probe{name: "p"}))
	assert.ErrorIs(t, err, ErrTypeMismatch)

	repl := NewTestElement(9)
	require.NoError(t, v.SetValueAtIndex(1, NewObjectSingleton(repl)))
	assert.Equal(t, []int64{1, 9}, yolksOf(v))

	assert.ErrorIs(t, v.SetValueAtIndex(2, NewObjectSingleton(repl)), ErrIndex)
}

func TestObjectVector_RetainRelease_InternalElements(t *testing.T) {
	// GIVEN an internally-owned element at refcount 1
	freed := false
	e := NewTestElement(3)
	e.OnFree = func() { freed = true }
	assert.Equal(t, 1, e.RefCount())

	// WHEN it is pushed into a vector and copied
	v := NewObjectVector(nil)
	require.NoError(t, v.PushElement(e))
	cp := v.CopyValues().(*ObjectVector)

	// THEN each holder owns a reference
	assert.Equal(t, 3, e.RefCount())

	// WHEN holders let go, the element is freed only at zero
	v.Dispose()
	cp.Dispose()
	assert.Equal(t, 1, e.RefCount())
	assert.False(t, freed)
	e.Release()
	assert.True(t, freed)
	assert.True(t, e.Freed())
	assert.Equal(t, 0, e.RefCount())

	// AND retaining a freed element is an invariant violation
	assert.Panics(t, func() { e.Retain() })
}

func TestObjectVector_ExternalElements_AreNotRefCounted(t *testing.T) {
	var e ObjectElement = &probe{name: "ext"}
	_, isRetainable := e.(Retainable)
	assert.False(t, isRetainable)

	v := NewObjectVector(nil)
	require.NoError(t, v.PushElement(e))
	v.Dispose()
	assert.Equal(t, 0, v.Count())
}

func TestObjectVector_BroadcastSet(t *testing.T) {
	yolkID := GlobalStringID("_yolk")

	t.Run("single value sets every element", func(t *testing.T) {
		v, _ := newYolkVector(t, 1, 2, 3, 4, 5)
		require.NoError(t, v.SetValueForMemberOfElements(yolkID, NewIntSingleton(7)))
		assert.Equal(t, []int64{7, 7, 7, 7, 7}, yolksOf(v))
	})

	t.Run("matching count sets positionally", func(t *testing.T) {
		v, _ := newYolkVector(t, 1, 2, 3, 4, 5)
		require.NoError(t, v.SetValueForMemberOfElements(yolkID, NewIntVector(10, 20, 30, 40, 50)))
		assert.Equal(t, []int64{10, 20, 30, 40, 50}, yolksOf(v))
	})

	t.Run("other counts fail", func(t *testing.T) {
		v, _ := newYolkVector(t, 1, 2, 3, 4, 5)
		err := v.SetValueForMemberOfElements(yolkID, NewIntVector(1, 2, 3))
		assert.ErrorIs(t, err, ErrArityMismatch)
		assert.Equal(t, []int64{1, 2, 3, 4, 5}, yolksOf(v))
	})

	t.Run("empty receiver fails", func(t *testing.T) {
		err := NewObjectVector(nil).SetValueForMemberOfElements(yolkID, NewIntSingleton(1))
		assert.ErrorIs(t, err, ErrUnrecognizedProperty)
	})
}

func TestObjectVector_SetValueForMember_Checks(t *testing.T) {
	p := &probe{name: "a", score: 1}
	v, err := NewObjectVectorOf(p)
	require.NoError(t, err)

	assert.ErrorIs(t, v.SetValueForMemberOfElements(GlobalStringID("name"), NewString("b")), ErrReadOnlyProperty)
	assert.ErrorIs(t, v.SetValueForMemberOfElements(GlobalStringID("score"), NewString("2")), ErrTypeMismatch)
	assert.ErrorIs(t, v.SetValueForMemberOfElements(GlobalStringID("score"), NewFloatSingleton(-1)), ErrRange)
	assert.ErrorIs(t, v.SetValueForMemberOfElements(GlobalStringID("nope"), NewFloatSingleton(1)), ErrUnrecognizedProperty)

	require.NoError(t, v.SetValueForMemberOfElements(GlobalStringID("score"), NewFloatSingleton(2.5)))
	assert.Equal(t, 2.5, p.score)
}

func TestObjectVector_GetValueForMemberOfElements(t *testing.T) {
	v, _ := newYolkVector(t, 1, 2, 3)

	got, err := v.GetValueForMemberOfElements(GlobalStringID("_yolk"))
	require.NoError(t, err)
	assert.Equal(t, "1 2 3", ToString(got))

	_, err = v.GetValueForMemberOfElements(GlobalStringID("nope"))
	assert.ErrorIs(t, err, ErrUnrecognizedProperty)

	_, err = NewObjectVector(nil).GetValueForMemberOfElements(GlobalStringID("_yolk"))
	assert.ErrorIs(t, err, ErrUnrecognizedProperty)
}

func TestObjectVector_GetValueForMemberOfElements_ConcatenatesMultiValued(t *testing.T) {
	v, err := NewObjectVectorOf(&probe{name: "a", score: 1}, &probe{name: "b", score: 2})
	require.NoError(t, err)

	got, err := v.GetValueForMemberOfElements(GlobalStringID("pair"))
	require.NoError(t, err)
	assert.Equal(t, "1 -1 2 -2", ToString(got))
}

func TestObjectVector_GetValueForMemberOfElements_SingletonContractViolation_Panics(t *testing.T) {
	v, err := NewObjectVectorOf(&probe{name: "a"}, &probe{name: "b"})
	require.NoError(t, err)

	assert.Panics(t, func() { _, _ = v.GetValueForMemberOfElements(GlobalStringID("liar")) })
	assert.Panics(t, func() { _, _ = v.GetValueForMemberOfElements(GlobalStringID("ghost")) })
}

func TestObjectVector_RepresentativeValue_NeverFails(t *testing.T) {
	v, err := NewObjectVectorOf(&probe{name: "a", score: 4})
	require.NoError(t, err)

	assert.Nil(t, v.GetRepresentativeValueOrNullForMemberOfElements(GlobalStringID("undeclared")))
	assert.Nil(t, v.GetRepresentativeValueOrNullForMemberOfElements(GlobalStringID("ghost")))
	assert.Nil(t, NewObjectVector(nil).GetRepresentativeValueOrNullForMemberOfElements(GlobalStringID("score")))

	got := v.GetRepresentativeValueOrNullForMemberOfElements(GlobalStringID("score"))
	require.NotNil(t, got)
	assert.Equal(t, "4", ToString(got))
}

func TestObjectVector_SortBy(t *testing.T) {
	v, _ := newYolkVector(t, 3, 1, 2)

	require.NoError(t, v.SortBy("_yolk", true))
	assert.Equal(t, []int64{1, 2, 3}, yolksOf(v))

	require.NoError(t, v.SortBy("_yolk", false))
	assert.Equal(t, []int64{3, 2, 1}, yolksOf(v))

	require.NoError(t, NewObjectVector(nil).SortBy("_yolk", true))
}

func TestObjectVector_SortBy_StringKeys(t *testing.T) {
	v, err := NewObjectVectorOf(&probe{name: "c"}, &probe{name: "a"}, &probe{name: "b"})
	require.NoError(t, err)
	require.NoError(t, v.SortBy("name", true))
	assert.Equal(t, "Probe<a> Probe<b> Probe<c>", ToString(v))
}

func TestObjectVector_SortBy_TiesKeepKeysSortedButNotNecessarilyOrder(t *testing.T) {
	// BDD: equal keys are grouped correctly; their relative order is unspecified
	yolks := []int64{2, 1, 2, 1, 2, 1, 2, 1, 2, 1, 2, 1, 2, 1, 2, 1}
	v, elems := newYolkVector(t, yolks...)

	require.NoError(t, v.SortBy("_yolk", true))

	got := yolksOf(v)
	assert.True(t, sort.SliceIsSorted(got, func(i, j int) bool { return got[i] < got[j] }))
	assert.ElementsMatch(t, elems, testElementsOf(v))
}

func testElementsOf(v *ObjectVector) []*TestElement {
	out := make([]*TestElement, 0, v.Count())
	for _, e := range v.Elements() {
		out = append(out, e.(*TestElement))
	}
	return out
}

func TestObjectVector_SortBy_IllegalKeys(t *testing.T) {
	v, err := NewObjectVectorOf(&probe{name: "a", score: 1}, &probe{name: "b", score: 2, asInt: true})
	require.NoError(t, err)

	assert.ErrorIs(t, v.SortBy("self", true), ErrTypeMismatch)
	assert.ErrorIs(t, v.SortBy("pair", true), ErrArityMismatch)
	assert.ErrorIs(t, v.SortBy("mixed", true), ErrTypeMismatch)
	assert.ErrorIs(t, v.SortBy("nope", true), ErrUnrecognizedProperty)
}

func TestObjectVector_ExecuteInstanceMethod_Concatenates(t *testing.T) {
	v, _ := newYolkVector(t, 1, 2, 3)
	got, err := v.ExecuteMethodOfElements(GlobalStringID("_cubicYolk"), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "1 8 27", ToString(got))

	_, err = v.ExecuteMethodOfElements(GlobalStringID("_cubicYolk"), []Value{NewIntSingleton(1)}, nil)
	assert.ErrorIs(t, err, ErrArityMismatch)

	_, err = v.ExecuteMethodOfElements(GlobalStringID("nope"), nil, nil)
	assert.ErrorIs(t, err, ErrUnrecognizedMethod)
}

func TestObjectVector_ExecuteClassMethod_RunsOnce(t *testing.T) {
	v, _ := newYolkVector(t, 1, 2, 3)
	var out bytes.Buffer

	got, err := v.ExecuteMethodOfElements(IDProperty, nil, &ExecContext{Output: &out})
	require.NoError(t, err)
	assert.Same(t, NULLInvisible, got)
	assert.Equal(t, "_yolk -> (integer)\n", out.String())
}

func TestObjectSingleton_IsImmutable(t *testing.T) {
	e := NewTestElement(2)
	s := NewObjectSingleton(e)
	assert.Equal(t, 2, e.RefCount())
	assert.False(t, s.IsMutable())
	assert.ErrorIs(t, s.SetValueAtIndex(0, s), ErrImmutableValue)

	mc := s.MutableCopy().(*ObjectVector)
	assert.Equal(t, 1, mc.Count())
	assert.Equal(t, 3, e.RefCount())

	require.NoError(t, s.SetValueForMemberOfElements(GlobalStringID("_yolk"), NewIntSingleton(5)))
	assert.Equal(t, int64(5), e.Yolk())
	assert.ErrorIs(t, s.SetValueForMemberOfElements(GlobalStringID("_yolk"), NewIntVector(1, 2)), ErrArityMismatch)

	mc.Dispose()
	s.Dispose()
	assert.Equal(t, 1, e.RefCount())
}

// nest is an internally-owned element that holds a reference to another
// internally-owned element.
type nest struct {
	RefCounted
	inner *TestElement
}

var nestClass = newNestClass()

func newNestClass() *Class {
	c := NewClass("Nest", nil)

	inner := NewPropertySignature("inner", false, MaskObject|MaskSingleton, TestElementClass)
	inner.Get = func(e ObjectElement) (Value, error) { return NewObjectSingleton(e.(*nest).inner), nil }
	inner.Set = func(e ObjectElement, v Value) error {
		el, err := v.ObjectElementAtIndex(0)
		if err != nil {
			return err
		}
		n := e.(*nest)
		te := el.(*TestElement)
		if te.Yolk() < 0 {
			return NewError(ErrRange, "Nest.inner", "inner element with negative yolk is illegal.")
		}
		te.Retain()
		n.inner.Release()
		n.inner = te
		return nil
	}
	c.AddProperty(inner)

	c.AddMethod(NewInstanceMethod("innerElement", MaskObject|MaskSingleton, TestElementClass,
		func(e ObjectElement, _ []Value, _ *ExecContext) (Value, error) {
			return NewObjectSingleton(e.(*nest).inner), nil
		}))
	return c
}

func newNest(inner *TestElement) *nest {
	inner.Retain()
	return &nest{inner: inner}
}

func (n *nest) Class() *Class { return nestClass }

func TestObjectVector_BroadcastGet_ReleasesTemporaries(t *testing.T) {
	// GIVEN two nests sharing one inner element
	inner := NewTestElement(1)
	v, err := NewObjectVectorOf(newNest(inner), newNest(inner))
	require.NoError(t, err)
	require.Equal(t, 3, inner.RefCount())

	// WHEN the member is read across the vector
	got, err := v.GetValueForMemberOfElements(GlobalStringID("inner"))
	require.NoError(t, err)

	// THEN only the joined result holds new references
	assert.Equal(t, 2, got.Count())
	assert.Equal(t, 5, inner.RefCount())
	got.(*ObjectVector).Dispose()
	assert.Equal(t, 3, inner.RefCount())

	// AND the same holds for method results
	res, err := v.ExecuteMethodOfElements(GlobalStringID("innerElement"), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, inner.RefCount())
	res.(*ObjectVector).Dispose()
	assert.Equal(t, 3, inner.RefCount())
}

func TestObjectVector_BroadcastSet_ReleasesTemporaries(t *testing.T) {
	old := NewTestElement(0)
	n1, n2 := newNest(old), newNest(old)
	v, err := NewObjectVectorOf(n1, n2)
	require.NoError(t, err)

	a, b := NewTestElement(1), NewTestElement(2)
	val, err := NewObjectVectorOf(a, b)
	require.NoError(t, err)

	require.NoError(t, v.SetValueForMemberOfElements(GlobalStringID("inner"), val))
	val.Dispose()

	assert.Same(t, a, n1.inner)
	assert.Same(t, b, n2.inner)
	// one reference from the creator, one from the nest
	assert.Equal(t, 2, a.RefCount())
	assert.Equal(t, 2, b.RefCount())
	assert.Equal(t, 1, old.RefCount())
}

func TestObjectVector_BroadcastSet_FailureLeavesElementsUnchanged(t *testing.T) {
	t.Run("positional", func(t *testing.T) {
		p1, p2, p3 := &probe{name: "a", score: 1}, &probe{name: "b", score: 2}, &probe{name: "c", score: 3}
		v, err := NewObjectVectorOf(p1, p2, p3)
		require.NoError(t, err)

		// WHEN the setter rejects the last value
		err = v.SetValueForMemberOfElements(GlobalStringID("score"), NewFloatVector(10, 20, -1))

		// THEN the earlier elements are restored
		assert.ErrorIs(t, err, ErrRange)
		assert.Equal(t, []float64{1, 2, 3}, []float64{p1.score, p2.score, p3.score})
	})

	t.Run("objects keep their references", func(t *testing.T) {
		old := NewTestElement(0)
		n1, n2 := newNest(old), newNest(old)
		v, err := NewObjectVectorOf(n1, n2)
		require.NoError(t, err)

		good, bad := NewTestElement(4), NewTestElement(-4)
		val, err := NewObjectVectorOf(good, bad)
		require.NoError(t, err)

		err = v.SetValueForMemberOfElements(GlobalStringID("inner"), val)
		assert.ErrorIs(t, err, ErrRange)
		val.Dispose()

		assert.Same(t, old, n1.inner)
		assert.Same(t, old, n2.inner)
		assert.Equal(t, 3, old.RefCount())
		assert.Equal(t, 1, good.RefCount())
		assert.Equal(t, 1, bad.RefCount())
	})
}
