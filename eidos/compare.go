package eidos

import "strings"

// CompareValues compares v1[i1] with v2[i2] and returns -1, 0 or 1.
//
// Operands are promoted to the higher of their two types in the order
// string > float > integer > logical. NULL cannot be compared. Two objects
// compare by identity only: 0 when identical, -1 otherwise; an object
// cannot be compared with any other type.
func CompareValues(v1 Value, i1 int, v2 Value, i2 int) (int, error) {
	const op = "CompareValues"
	t1, t2 := v1.Type(), v2.Type()

	if t1 == TypeNULL || t2 == TypeNULL {
		return 0, newError(ErrUndefinedOperation, op, "comparison with NULL is illegal.")
	}
	if t1 == TypeObject || t2 == TypeObject {
		if t1 != t2 {
			return 0, newError(ErrUndefinedOperation, op, "comparison involving type %s and type %s is undefined.", t1, t2)
		}
		e1, err := v1.ObjectElementAtIndex(i1)
		if err != nil {
			return 0, err
		}
		e2, err := v2.ObjectElementAtIndex(i2)
		if err != nil {
			return 0, err
		}
		if e1 == e2 {
			return 0, nil
		}
		return -1, nil
	}

	switch promote(t1, t2) {
	case TypeString:
		s1, err := v1.StringAtIndex(i1)
		if err != nil {
			return 0, err
		}
		s2, err := v2.StringAtIndex(i2)
		if err != nil {
			return 0, err
		}
		return strings.Compare(s1, s2), nil
	case TypeFloat:
		f1, err := v1.FloatAtIndex(i1)
		if err != nil {
			return 0, err
		}
		f2, err := v2.FloatAtIndex(i2)
		if err != nil {
			return 0, err
		}
		return threeWay(f1 < f2, f1 > f2), nil
	case TypeInt:
		n1, err := v1.IntAtIndex(i1)
		if err != nil {
			return 0, err
		}
		n2, err := v2.IntAtIndex(i2)
		if err != nil {
			return 0, err
		}
		return threeWay(n1 < n2, n1 > n2), nil
	default:
		b1, err := v1.LogicalAtIndex(i1)
		if err != nil {
			return 0, err
		}
		b2, err := v2.LogicalAtIndex(i2)
		if err != nil {
			return 0, err
		}
		return threeWay(!b1 && b2, b1 && !b2), nil
	}
}

func promote(t1, t2 ValueType) ValueType {
	if t1.promotionRank() >= t2.promotionRank() {
		return t1
	}
	return t2
}

func threeWay(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	}
	return 0
}

// Concatenate joins values into one vector of the highest type present.
// NULL operands contribute nothing; the result is NULL if every operand is
// NULL. Objects cannot be mixed with other types, and all object elements
// must share one class.
func Concatenate(values ...Value) (Value, error) {
	const op = "Concatenate"
	highest := TypeNULL
	hasObject, hasNonObject := false, false
	var class *Class
	total := 0

	for _, v := range values {
		t := v.Type()
		switch t {
		case TypeNULL:
			continue
		case TypeObject:
			hasObject = true
			if ov, ok := v.(*ObjectVector); ok && ov.Count() == 0 {
				if class == nil {
					class = ov.Class()
				}
				continue
			}
			for i := 0; i < v.Count(); i++ {
				e, err := v.ObjectElementAtIndex(i)
				if err != nil {
					return nil, err
				}
				if class == nil {
					class = e.Class()
				} else if e.Class() != class {
					return nil, newError(ErrTypeMismatch, op, "objects of different types cannot be mixed.")
				}
			}
		default:
			hasNonObject = true
			if t.promotionRank() > highest.promotionRank() {
				highest = t
			}
		}
		total += v.Count()
	}

	if hasObject && hasNonObject {
		return nil, newError(ErrTypeMismatch, op, "object and non-object types cannot be mixed.")
	}
	if hasObject {
		out := NewObjectVector(class)
		for _, v := range values {
			for i := 0; i < v.Count(); i++ {
				e, _ := v.ObjectElementAtIndex(i)
				if err := out.PushElement(e); err != nil {
					return nil, err
				}
			}
		}
		return out, nil
	}

	switch highest {
	case TypeNULL:
		return NewNull(), nil
	case TypeLogical:
		out := &LogicalValue{values: make([]bool, 0, total)}
		for _, v := range values {
			for i := 0; i < v.Count(); i++ {
				b, err := v.LogicalAtIndex(i)
				if err != nil {
					return nil, err
				}
				out.values = append(out.values, b)
			}
		}
		return out, nil
	case TypeInt:
		out := &IntVector{values: make([]int64, 0, total)}
		for _, v := range values {
			for i := 0; i < v.Count(); i++ {
				n, err := v.IntAtIndex(i)
				if err != nil {
					return nil, err
				}
				out.values = append(out.values, n)
			}
		}
		return out, nil
	case TypeFloat:
		out := &FloatVector{values: make([]float64, 0, total)}
		for _, v := range values {
			for i := 0; i < v.Count(); i++ {
				f, err := v.FloatAtIndex(i)
				if err != nil {
					return nil, err
				}
				out.values = append(out.values, f)
			}
		}
		return out, nil
	default:
		out := &StringValue{values: make([]string, 0, total)}
		for _, v := range values {
			for i := 0; i < v.Count(); i++ {
				s, err := v.StringAtIndex(i)
				if err != nil {
					return nil, err
				}
				out.values = append(out.values, s)
			}
		}
		return out, nil
	}
}
