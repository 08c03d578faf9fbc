package eidos

import (
	"bytes"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Value is a dynamically-typed scalar or vector.
//
// Singleton variants (IntSingleton, FloatSingleton, ObjectSingleton and the
// shared NULL/T/F constants) are immutable; vector variants are mutable.
// Coercing accessors fail with ErrTypeConversion when the source type
// cannot be represented in the requested type, and with ErrIndex when idx
// is out of range.
type Value interface {
	Type() ValueType
	Count() int
	// ElementType is the type name, or the class name for objects
	// ("undefined" for an empty object vector with no declared class).
	ElementType() string
	// Invisible values are not auto-printed as statement results.
	Invisible() bool
	IsMutable() bool

	LogicalAtIndex(idx int) (bool, error)
	StringAtIndex(idx int) (string, error)
	IntAtIndex(idx int) (int64, error)
	FloatAtIndex(idx int) (float64, error)
	ObjectElementAtIndex(idx int) (ObjectElement, error)

	GetValueAtIndex(idx int) (Value, error)
	SetValueAtIndex(idx int, v Value) error
	CopyValues() Value
	MutableCopy() Value
	NewMatchingType() Value
	PushValueFromIndexOfEidosValue(idx int, src Value) error
	Sort(ascending bool) error

	Print(w io.Writer)
}

// Shared constants. They must never be mutated; attempting it panics.
var (
	NULL          = &NullValue{constant: true}
	NULLInvisible = &NullValue{constant: true, invisible: true}
	T             = &LogicalValue{values: []bool{true}, constant: true}
	F             = &LogicalValue{values: []bool{false}, constant: true}
)

// ToString renders v with Print.
func ToString(v Value) string {
	var buf bytes.Buffer
	v.Print(&buf)
	return buf.String()
}

func conversionError(from ValueType, to string) error {
	return newError(ErrTypeConversion, "", "operand type %s cannot be converted to type %s.", from, to)
}

func checkIndex(op string, idx, count int) error {
	if idx < 0 || idx >= count {
		return newError(ErrIndex, op, "subscript %d out of range.", idx)
	}
	return nil
}

// formatFloat matches the default six-significant-digit stream output.
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "INF"
	case math.IsInf(f, -1):
		return "-INF"
	case math.IsNaN(f):
		return "NAN"
	}
	return strconv.FormatFloat(f, 'g', 6, 64)
}

// parseLeadingInt converts the longest leading base-10 integer prefix of s,
// ignoring leading whitespace; it yields 0 when there is no such prefix and
// saturates on overflow.
func parseLeadingInt(s string) int64 {
	s = strings.TrimLeft(s, " \t\n\v\f\r")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		if s[0] == '-' {
			return math.MinInt64
		}
		return math.MaxInt64
	}
	return n
}

// parseLeadingFloat converts the longest leading decimal float prefix of s.
func parseLeadingFloat(s string) float64 {
	s = strings.TrimLeft(s, " \t\n\v\f\r")
	lower := strings.ToLower(s)
	sign := ""
	rest := lower
	if rest != "" && (rest[0] == '+' || rest[0] == '-') {
		sign = rest[:1]
		rest = rest[1:]
	}
	switch {
	case strings.HasPrefix(rest, "infinity"), strings.HasPrefix(rest, "inf"):
		if sign == "-" {
			return math.Inf(-1)
		}
		return math.Inf(1)
	case strings.HasPrefix(rest, "nan"):
		return math.NaN()
	}

	end := len(sign)
	digits := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
		digits++
	}
	if end < len(s) && s[end] == '.' {
		end++
		for end < len(s) && s[end] >= '0' && s[end] <= '9' {
			end++
			digits++
		}
	}
	if digits == 0 {
		return 0
	}
	if end < len(s) && (s[end] == 'e' || s[end] == 'E') {
		exp := end + 1
		if exp < len(s) && (s[exp] == '+' || s[exp] == '-') {
			exp++
		}
		expDigits := exp
		for expDigits < len(s) && s[expDigits] >= '0' && s[expDigits] <= '9' {
			expDigits++
		}
		if expDigits > exp {
			end = expDigits
		}
	}
	f, _ := strconv.ParseFloat(s[:end], 64)
	return f
}

// === NULL ===

// NullValue is the NULL type. It has no elements.
type NullValue struct {
	constant  bool
	invisible bool
}

// NewNull returns a fresh, non-shared NULL.
func NewNull() *NullValue { return &NullValue{} }

func (n *NullValue) Type() ValueType     { return TypeNULL }
func (n *NullValue) Count() int          { return 0 }
func (n *NullValue) ElementType() string { return "NULL" }
func (n *NullValue) Invisible() bool     { return n.invisible }
func (n *NullValue) IsMutable() bool     { return !n.constant }

func (n *NullValue) LogicalAtIndex(int) (bool, error) {
	return false, conversionError(TypeNULL, "logical")
}
func (n *NullValue) StringAtIndex(int) (string, error) {
	return "", conversionError(TypeNULL, "string")
}
func (n *NullValue) IntAtIndex(int) (int64, error) {
	return 0, conversionError(TypeNULL, "integer")
}
func (n *NullValue) FloatAtIndex(int) (float64, error) {
	return 0, conversionError(TypeNULL, "float")
}
func (n *NullValue) ObjectElementAtIndex(int) (ObjectElement, error) {
	return nil, conversionError(TypeNULL, "object")
}

func (n *NullValue) GetValueAtIndex(int) (Value, error) { return NewNull(), nil }

func (n *NullValue) SetValueAtIndex(int, Value) error {
	if n.constant {
		Internalf("NullValue.SetValueAtIndex", "shared NULL constant is not modifiable.")
	}
	return newError(ErrImmutableValue, "SetValueAtIndex", "operand type NULL does not support setting values with the subscript operator ('[]').")
}

func (n *NullValue) CopyValues() Value      { return NewNull() }
func (n *NullValue) MutableCopy() Value     { return NewNull() }
func (n *NullValue) NewMatchingType() Value { return NewNull() }

func (n *NullValue) PushValueFromIndexOfEidosValue(_ int, src Value) error {
	if n.constant {
		Internalf("NullValue.PushValueFromIndexOfEidosValue", "shared NULL constant is not modifiable.")
	}
	if src.Type() != TypeNULL {
		return newError(ErrTypeMismatch, "PushValueFromIndexOfEidosValue", "type mismatch.")
	}
	return nil
}

func (n *NullValue) Sort(bool) error {
	return newError(ErrUndefinedOperation, "Sort", "Sort() is not defined for type NULL.")
}

func (n *NullValue) Print(w io.Writer) { io.WriteString(w, "NULL") }

// === logical ===

// LogicalValue is a vector of logicals. The shared T and F constants are
// LogicalValues flagged constant.
type LogicalValue struct {
	values   []bool
	constant bool
}

func NewLogical(values ...bool) *LogicalValue {
	return &LogicalValue{values: append([]bool(nil), values...)}
}

// LogicalFor returns the shared T or F constant.
func LogicalFor(b bool) *LogicalValue {
	if b {
		return T
	}
	return F
}

func (l *LogicalValue) Type() ValueType     { return TypeLogical }
func (l *LogicalValue) Count() int          { return len(l.values) }
func (l *LogicalValue) ElementType() string { return "logical" }
func (l *LogicalValue) Invisible() bool     { return false }
func (l *LogicalValue) IsMutable() bool     { return !l.constant }

// Values returns the underlying slice; callers must not modify it.
func (l *LogicalValue) Values() []bool { return l.values }

func (l *LogicalValue) LogicalAtIndex(idx int) (bool, error) {
	if err := checkIndex("LogicalAtIndex", idx, len(l.values)); err != nil {
		return false, err
	}
	return l.values[idx], nil
}

func (l *LogicalValue) StringAtIndex(idx int) (string, error) {
	b, err := l.LogicalAtIndex(idx)
	if err != nil {
		return "", err
	}
	if b {
		return "T", nil
	}
	return "F", nil
}

func (l *LogicalValue) IntAtIndex(idx int) (int64, error) {
	b, err := l.LogicalAtIndex(idx)
	if b {
		return 1, err
	}
	return 0, err
}

func (l *LogicalValue) FloatAtIndex(idx int) (float64, error) {
	b, err := l.LogicalAtIndex(idx)
	if b {
		return 1, err
	}
	return 0, err
}

func (l *LogicalValue) ObjectElementAtIndex(int) (ObjectElement, error) {
	return nil, conversionError(TypeLogical, "object")
}

func (l *LogicalValue) mustBeMutable(op string) {
	if l.constant {
		Internalf("LogicalValue."+op, "shared logical constant is not modifiable.")
	}
}

// PushLogical appends b.
func (l *LogicalValue) PushLogical(b bool) {
	l.mustBeMutable("PushLogical")
	l.values = append(l.values, b)
}

func (l *LogicalValue) GetValueAtIndex(idx int) (Value, error) {
	b, err := l.LogicalAtIndex(idx)
	if err != nil {
		return nil, err
	}
	return LogicalFor(b), nil
}

func (l *LogicalValue) SetValueAtIndex(idx int, v Value) error {
	l.mustBeMutable("SetValueAtIndex")
	if err := checkIndex("SetValueAtIndex", idx, len(l.values)); err != nil {
		return err
	}
	b, err := v.LogicalAtIndex(0)
	if err != nil {
		return err
	}
	l.values[idx] = b
	return nil
}

func (l *LogicalValue) CopyValues() Value      { return NewLogical(l.values...) }
func (l *LogicalValue) MutableCopy() Value     { return NewLogical(l.values...) }
func (l *LogicalValue) NewMatchingType() Value { return NewLogical() }

func (l *LogicalValue) PushValueFromIndexOfEidosValue(idx int, src Value) error {
	l.mustBeMutable("PushValueFromIndexOfEidosValue")
	if src.Type() != TypeLogical {
		return newError(ErrTypeMismatch, "PushValueFromIndexOfEidosValue", "type mismatch.")
	}
	b, err := src.LogicalAtIndex(idx)
	if err != nil {
		return err
	}
	l.values = append(l.values, b)
	return nil
}

func (l *LogicalValue) Sort(ascending bool) error {
	l.mustBeMutable("Sort")
	sort.Slice(l.values, func(i, j int) bool {
		if ascending {
			return !l.values[i] && l.values[j]
		}
		return l.values[i] && !l.values[j]
	})
	return nil
}

func (l *LogicalValue) Print(w io.Writer) {
	if len(l.values) == 0 {
		io.WriteString(w, "logical(0)")
		return
	}
	for i, b := range l.values {
		if i > 0 {
			io.WriteString(w, " ")
		}
		if b {
			io.WriteString(w, "T")
		} else {
			io.WriteString(w, "F")
		}
	}
}

// === string ===

type StringValue struct {
	values []string
}

func NewString(values ...string) *StringValue {
	return &StringValue{values: append([]string(nil), values...)}
}

func (s *StringValue) Type() ValueType     { return TypeString }
func (s *StringValue) Count() int          { return len(s.values) }
func (s *StringValue) ElementType() string { return "string" }
func (s *StringValue) Invisible() bool     { return false }
func (s *StringValue) IsMutable() bool     { return true }
func (s *StringValue) Values() []string    { return s.values }

func (s *StringValue) StringAtIndex(idx int) (string, error) {
	if err := checkIndex("StringAtIndex", idx, len(s.values)); err != nil {
		return "", err
	}
	return s.values[idx], nil
}

func (s *StringValue) LogicalAtIndex(idx int) (bool, error) {
	str, err := s.StringAtIndex(idx)
	return len(str) > 0, err
}

func (s *StringValue) IntAtIndex(idx int) (int64, error) {
	str, err := s.StringAtIndex(idx)
	if err != nil {
		return 0, err
	}
	return parseLeadingInt(str), nil
}

func (s *StringValue) FloatAtIndex(idx int) (float64, error) {
	str, err := s.StringAtIndex(idx)
	if err != nil {
		return 0, err
	}
	return parseLeadingFloat(str), nil
}

func (s *StringValue) ObjectElementAtIndex(int) (ObjectElement, error) {
	return nil, conversionError(TypeString, "object")
}

func (s *StringValue) PushString(str string) { s.values = append(s.values, str) }

func (s *StringValue) GetValueAtIndex(idx int) (Value, error) {
	str, err := s.StringAtIndex(idx)
	if err != nil {
		return nil, err
	}
	return NewString(str), nil
}

func (s *StringValue) SetValueAtIndex(idx int, v Value) error {
	if err := checkIndex("SetValueAtIndex", idx, len(s.values)); err != nil {
		return err
	}
	str, err := v.StringAtIndex(0)
	if err != nil {
		return err
	}
	s.values[idx] = str
	return nil
}

func (s *StringValue) CopyValues() Value      { return NewString(s.values...) }
func (s *StringValue) MutableCopy() Value     { return NewString(s.values...) }
func (s *StringValue) NewMatchingType() Value { return NewString() }

func (s *StringValue) PushValueFromIndexOfEidosValue(idx int, src Value) error {
	if src.Type() != TypeString {
		return newError(ErrTypeMismatch, "PushValueFromIndexOfEidosValue", "type mismatch.")
	}
	str, err := src.StringAtIndex(idx)
	if err != nil {
		return err
	}
	s.values = append(s.values, str)
	return nil
}

func (s *StringValue) Sort(ascending bool) error {
	if ascending {
		sort.Strings(s.values)
	} else {
		sort.Sort(sort.Reverse(sort.StringSlice(s.values)))
	}
	return nil
}

func (s *StringValue) Print(w io.Writer) {
	if len(s.values) == 0 {
		io.WriteString(w, "string(0)")
		return
	}
	for i, str := range s.values {
		if i > 0 {
			io.WriteString(w, " ")
		}
		io.WriteString(w, `"`+str+`"`)
	}
}

// === integer ===

// IntVector is a mutable vector of integers.
type IntVector struct {
	values []int64
}

func NewIntVector(values ...int64) *IntVector {
	return &IntVector{values: append([]int64(nil), values...)}
}

func (v *IntVector) Type() ValueType     { return TypeInt }
func (v *IntVector) Count() int          { return len(v.values) }
func (v *IntVector) ElementType() string { return "integer" }
func (v *IntVector) Invisible() bool     { return false }
func (v *IntVector) IsMutable() bool     { return true }
func (v *IntVector) Values() []int64     { return v.values }

func (v *IntVector) IntAtIndex(idx int) (int64, error) {
	if err := checkIndex("IntAtIndex", idx, len(v.values)); err != nil {
		return 0, err
	}
	return v.values[idx], nil
}

func (v *IntVector) LogicalAtIndex(idx int) (bool, error) {
	n, err := v.IntAtIndex(idx)
	return n != 0, err
}

func (v *IntVector) StringAtIndex(idx int) (string, error) {
	n, err := v.IntAtIndex(idx)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n, 10), nil
}

func (v *IntVector) FloatAtIndex(idx int) (float64, error) {
	n, err := v.IntAtIndex(idx)
	return float64(n), err
}

func (v *IntVector) ObjectElementAtIndex(int) (ObjectElement, error) {
	return nil, conversionError(TypeInt, "object")
}

func (v *IntVector) PushInt(n int64) { v.values = append(v.values, n) }

func (v *IntVector) GetValueAtIndex(idx int) (Value, error) {
	n, err := v.IntAtIndex(idx)
	if err != nil {
		return nil, err
	}
	return NewIntSingleton(n), nil
}

func (v *IntVector) SetValueAtIndex(idx int, src Value) error {
	if err := checkIndex("SetValueAtIndex", idx, len(v.values)); err != nil {
		return err
	}
	n, err := src.IntAtIndex(0)
	if err != nil {
		return err
	}
	v.values[idx] = n
	return nil
}

func (v *IntVector) CopyValues() Value      { return NewIntVector(v.values...) }
func (v *IntVector) MutableCopy() Value     { return NewIntVector(v.values...) }
func (v *IntVector) NewMatchingType() Value { return NewIntVector() }

func (v *IntVector) PushValueFromIndexOfEidosValue(idx int, src Value) error {
	if src.Type() != TypeInt {
		return newError(ErrTypeMismatch, "PushValueFromIndexOfEidosValue", "type mismatch.")
	}
	n, err := src.IntAtIndex(idx)
	if err != nil {
		return err
	}
	v.values = append(v.values, n)
	return nil
}

func (v *IntVector) Sort(ascending bool) error {
	sort.Slice(v.values, func(i, j int) bool {
		if ascending {
			return v.values[i] < v.values[j]
		}
		return v.values[i] > v.values[j]
	})
	return nil
}

func (v *IntVector) Print(w io.Writer) {
	if len(v.values) == 0 {
		io.WriteString(w, "integer(0)")
		return
	}
	for i, n := range v.values {
		if i > 0 {
			io.WriteString(w, " ")
		}
		io.WriteString(w, strconv.FormatInt(n, 10))
	}
}

// IntSingleton is an immutable single integer.
type IntSingleton struct {
	value int64
}

func NewIntSingleton(n int64) *IntSingleton { return &IntSingleton{value: n} }

func (s *IntSingleton) Type() ValueType     { return TypeInt }
func (s *IntSingleton) Count() int          { return 1 }
func (s *IntSingleton) ElementType() string { return "integer" }
func (s *IntSingleton) Invisible() bool     { return false }
func (s *IntSingleton) IsMutable() bool     { return false }

func (s *IntSingleton) IntAtIndex(idx int) (int64, error) {
	if err := checkIndex("IntAtIndex", idx, 1); err != nil {
		return 0, err
	}
	return s.value, nil
}

func (s *IntSingleton) LogicalAtIndex(idx int) (bool, error) {
	n, err := s.IntAtIndex(idx)
	return n != 0, err
}

func (s *IntSingleton) StringAtIndex(idx int) (string, error) {
	n, err := s.IntAtIndex(idx)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n, 10), nil
}

func (s *IntSingleton) FloatAtIndex(idx int) (float64, error) {
	n, err := s.IntAtIndex(idx)
	return float64(n), err
}

func (s *IntSingleton) ObjectElementAtIndex(int) (ObjectElement, error) {
	return nil, conversionError(TypeInt, "object")
}

func (s *IntSingleton) GetValueAtIndex(idx int) (Value, error) {
	if err := checkIndex("GetValueAtIndex", idx, 1); err != nil {
		return nil, err
	}
	return NewIntSingleton(s.value), nil
}

func (s *IntSingleton) SetValueAtIndex(int, Value) error {
	return newError(ErrImmutableValue, "SetValueAtIndex", "integer singleton is not modifiable.")
}

func (s *IntSingleton) CopyValues() Value      { return s.MutableCopy() }
func (s *IntSingleton) MutableCopy() Value     { return NewIntVector(s.value) }
func (s *IntSingleton) NewMatchingType() Value { return NewIntVector() }

func (s *IntSingleton) PushValueFromIndexOfEidosValue(int, Value) error {
	return newError(ErrImmutableValue, "PushValueFromIndexOfEidosValue", "integer singleton is not modifiable.")
}

func (s *IntSingleton) Sort(bool) error {
	return newError(ErrImmutableValue, "Sort", "integer singleton is not modifiable.")
}

func (s *IntSingleton) Print(w io.Writer) { io.WriteString(w, strconv.FormatInt(s.value, 10)) }

// === float ===

// FloatVector is a mutable vector of floats.
type FloatVector struct {
	values []float64
}

func NewFloatVector(values ...float64) *FloatVector {
	return &FloatVector{values: append([]float64(nil), values...)}
}

func (v *FloatVector) Type() ValueType     { return TypeFloat }
func (v *FloatVector) Count() int          { return len(v.values) }
func (v *FloatVector) ElementType() string { return "float" }
func (v *FloatVector) Invisible() bool     { return false }
func (v *FloatVector) IsMutable() bool     { return true }
func (v *FloatVector) Values() []float64   { return v.values }

func (v *FloatVector) FloatAtIndex(idx int) (float64, error) {
	if err := checkIndex("FloatAtIndex", idx, len(v.values)); err != nil {
		return 0, err
	}
	return v.values[idx], nil
}

func (v *FloatVector) LogicalAtIndex(idx int) (bool, error) {
	f, err := v.FloatAtIndex(idx)
	return f != 0, err
}

func (v *FloatVector) StringAtIndex(idx int) (string, error) {
	f, err := v.FloatAtIndex(idx)
	if err != nil {
		return "", err
	}
	return formatFloat(f), nil
}

func (v *FloatVector) IntAtIndex(idx int) (int64, error) {
	f, err := v.FloatAtIndex(idx)
	return int64(f), err
}

func (v *FloatVector) ObjectElementAtIndex(int) (ObjectElement, error) {
	return nil, conversionError(TypeFloat, "object")
}

func (v *FloatVector) PushFloat(f float64) { v.values = append(v.values, f) }

func (v *FloatVector) GetValueAtIndex(idx int) (Value, error) {
	f, err := v.FloatAtIndex(idx)
	if err != nil {
		return nil, err
	}
	return NewFloatSingleton(f), nil
}

func (v *FloatVector) SetValueAtIndex(idx int, src Value) error {
	if err := checkIndex("SetValueAtIndex", idx, len(v.values)); err != nil {
		return err
	}
	f, err := src.FloatAtIndex(0)
	if err != nil {
		return err
	}
	v.values[idx] = f
	return nil
}

func (v *FloatVector) CopyValues() Value      { return NewFloatVector(v.values...) }
func (v *FloatVector) MutableCopy() Value     { return NewFloatVector(v.values...) }
func (v *FloatVector) NewMatchingType() Value { return NewFloatVector() }

func (v *FloatVector) PushValueFromIndexOfEidosValue(idx int, src Value) error {
	if src.Type() != TypeFloat {
		return newError(ErrTypeMismatch, "PushValueFromIndexOfEidosValue", "type mismatch.")
	}
	f, err := src.FloatAtIndex(idx)
	if err != nil {
		return err
	}
	v.values = append(v.values, f)
	return nil
}

func (v *FloatVector) Sort(ascending bool) error {
	sort.Slice(v.values, func(i, j int) bool {
		if ascending {
			return v.values[i] < v.values[j]
		}
		return v.values[i] > v.values[j]
	})
	return nil
}

func (v *FloatVector) Print(w io.Writer) {
	if len(v.values) == 0 {
		io.WriteString(w, "float(0)")
		return
	}
	for i, f := range v.values {
		if i > 0 {
			io.WriteString(w, " ")
		}
		io.WriteString(w, formatFloat(f))
	}
}

// FloatSingleton is an immutable single float.
type FloatSingleton struct {
	value float64
}

func NewFloatSingleton(f float64) *FloatSingleton { return &FloatSingleton{value: f} }

func (s *FloatSingleton) Type() ValueType     { return TypeFloat }
func (s *FloatSingleton) Count() int          { return 1 }
func (s *FloatSingleton) ElementType() string { return "float" }
func (s *FloatSingleton) Invisible() bool     { return false }
func (s *FloatSingleton) IsMutable() bool     { return false }

func (s *FloatSingleton) FloatAtIndex(idx int) (float64, error) {
	if err := checkIndex("FloatAtIndex", idx, 1); err != nil {
		return 0, err
	}
	return s.value, nil
}

func (s *FloatSingleton) LogicalAtIndex(idx int) (bool, error) {
	f, err := s.FloatAtIndex(idx)
	return f != 0, err
}

func (s *FloatSingleton) StringAtIndex(idx int) (string, error) {
	f, err := s.FloatAtIndex(idx)
	if err != nil {
		return "", err
	}
	return formatFloat(f), nil
}

func (s *FloatSingleton) IntAtIndex(idx int) (int64, error) {
	f, err := s.FloatAtIndex(idx)
	return int64(f), err
}

func (s *FloatSingleton) ObjectElementAtIndex(int) (ObjectElement, error) {
	return nil, conversionError(TypeFloat, "object")
}

func (s *FloatSingleton) GetValueAtIndex(idx int) (Value, error) {
	if err := checkIndex("GetValueAtIndex", idx, 1); err != nil {
		return nil, err
	}
	return NewFloatSingleton(s.value), nil
}

func (s *FloatSingleton) SetValueAtIndex(int, Value) error {
	return newError(ErrImmutableValue, "SetValueAtIndex", "float singleton is not modifiable.")
}

func (s *FloatSingleton) CopyValues() Value      { return s.MutableCopy() }
func (s *FloatSingleton) MutableCopy() Value     { return NewFloatVector(s.value) }
func (s *FloatSingleton) NewMatchingType() Value { return NewFloatVector() }

func (s *FloatSingleton) PushValueFromIndexOfEidosValue(int, Value) error {
	return newError(ErrImmutableValue, "PushValueFromIndexOfEidosValue", "float singleton is not modifiable.")
}

func (s *FloatSingleton) Sort(bool) error {
	return newError(ErrImmutableValue, "Sort", "float singleton is not modifiable.")
}

func (s *FloatSingleton) Print(w io.Writer) { io.WriteString(w, formatFloat(s.value)) }
