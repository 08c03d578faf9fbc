// Package eidos implements the dynamically-typed value system and object
// model that simulation entities are exposed through.
//
// # Reading Guide
//
//   - value.go: the Value interface and the NULL, logical, string, integer
//     and float representations (singleton and vector variants)
//   - object_vector.go: ObjectVector and ObjectSingleton, including
//     broadcast property access and SortBy
//   - class.go: data-driven Class tables with property and method signatures
//   - element.go: the ObjectElement protocol, dispatch and the reference
//     counting discipline for internally-owned elements
//   - compare.go: cross-type comparison and concatenation with promotion
//
// # Error Tiers
//
// User-level failures (bad conversions, unknown members, read-only writes,
// arity mismatches, out-of-range subscripts) are returned as *Error values
// whose Kind can be matched with errors.Is. Engine invariant violations
// (mutating a shared constant, a declared member with no implementation,
// retaining a freed element) panic with *InternalError and are never
// recovered inside this package.
package eidos
