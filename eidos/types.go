package eidos

import "strings"

// ValueType is the dynamic type tag carried by every Value.
type ValueType int

const (
	TypeNULL ValueType = iota
	TypeLogical
	TypeString
	TypeInt
	TypeFloat
	TypeObject
)

func (t ValueType) String() string {
	switch t {
	case TypeNULL:
		return "NULL"
	case TypeLogical:
		return "logical"
	case TypeString:
		return "string"
	case TypeInt:
		return "integer"
	case TypeFloat:
		return "float"
	case TypeObject:
		return "object"
	}
	return "undefined"
}

// promotionRank orders the non-NULL types for comparison and concatenation.
// Objects never promote; they are handled separately.
func (t ValueType) promotionRank() int {
	switch t {
	case TypeLogical:
		return 1
	case TypeInt:
		return 2
	case TypeFloat:
		return 3
	case TypeString:
		return 4
	}
	return 0
}

// ValueMask is a bit set of accepted value types plus the optional and
// singleton flags, used by property and method signatures.
type ValueMask uint32

const (
	MaskNone    ValueMask = 0
	MaskNULL    ValueMask = 1 << 0
	MaskLogical ValueMask = 1 << 1
	MaskString  ValueMask = 1 << 2
	MaskInt     ValueMask = 1 << 3
	MaskFloat   ValueMask = 1 << 4
	MaskObject  ValueMask = 1 << 5

	MaskOptional  ValueMask = 1 << 30
	MaskSingleton ValueMask = 1 << 31
	MaskFlagStrip ValueMask = 0x3FFFFFFF

	MaskNumeric ValueMask = MaskInt | MaskFloat
	MaskAnyBase ValueMask = MaskLogical | MaskString | MaskInt | MaskFloat | MaskObject
	MaskAny     ValueMask = MaskAnyBase | MaskNULL
)

// Accepts reports whether a value of type t satisfies the mask's type bits.
func (m ValueMask) Accepts(t ValueType) bool {
	switch t {
	case TypeNULL:
		return m&MaskNULL != 0
	case TypeLogical:
		return m&MaskLogical != 0
	case TypeString:
		return m&MaskString != 0
	case TypeInt:
		return m&MaskInt != 0
	case TypeFloat:
		return m&MaskFloat != 0
	case TypeObject:
		return m&MaskObject != 0
	}
	return false
}

func (m ValueMask) IsSingleton() bool { return m&MaskSingleton != 0 }
func (m ValueMask) IsOptional() bool  { return m&MaskOptional != 0 }

// StringForValueMask renders a mask the way signatures display it, for
// example "[string$ propertyName]" or "io<MutationType>$ mutType".
// class may be nil; name may be empty.
func StringForValueMask(mask ValueMask, class *Class, name string) string {
	var b strings.Builder
	typeMask := mask & MaskFlagStrip

	if mask.IsOptional() {
		b.WriteString("[")
	}

	switch typeMask {
	case MaskNone:
		b.WriteString("?")
	case MaskAny:
		b.WriteString("*")
	case MaskAnyBase:
		b.WriteString("+")
	case MaskNULL:
		b.WriteString("void")
	case MaskLogical:
		b.WriteString("logical")
	case MaskString:
		b.WriteString("string")
	case MaskInt:
		b.WriteString("integer")
	case MaskFloat:
		b.WriteString("float")
	case MaskObject:
		b.WriteString("object")
	case MaskNumeric:
		b.WriteString("numeric")
	default:
		if typeMask&MaskNULL != 0 {
			b.WriteString("N")
		}
		if typeMask&MaskLogical != 0 {
			b.WriteString("l")
		}
		if typeMask&MaskInt != 0 {
			b.WriteString("i")
		}
		if typeMask&MaskFloat != 0 {
			b.WriteString("f")
		}
		if typeMask&MaskString != 0 {
			b.WriteString("s")
		}
		if typeMask&MaskObject != 0 {
			b.WriteString("o")
		}
	}

	if class != nil && typeMask&MaskObject != 0 {
		b.WriteString("<")
		b.WriteString(class.Name())
		b.WriteString(">")
	}
	if mask.IsSingleton() {
		b.WriteString("$")
	}
	if name != "" {
		b.WriteString(" ")
		b.WriteString(name)
	}
	if mask.IsOptional() {
		b.WriteString("]")
	}
	return b.String()
}
