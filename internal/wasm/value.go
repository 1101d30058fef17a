package wasm

import "github.com/tetratelabs/wazerocore/api"

// Reference is the runtime representation of a funcref or externref value:
// an opaque 64-bit cell that is either the null reference (zero) or a tagged
// pointer. Equality between two References compares the underlying bits,
// which for funcref is pointer equality on the referenced FunctionInstance
// per spec.md §3 ("Entity Handle ... Equality is pointer equality").
type Reference uint64

// RefNull is the null reference value, distinct from any valid pointer.
const RefNull Reference = 0

// IsNull reports whether r is the null reference.
func (r Reference) IsNull() bool { return r == RefNull }

// TypeCheckValues compares, element-wise, the value types in
// argTypes against expected, returning a descriptive error on the first
// mismatch. The values in args are not inspected.
func TypeCheckValues(expected []api.ValueType, args []uint64, argTypes []api.ValueType) error {
	if len(expected) != len(argTypes) {
		return &TypeMismatchError{Expected: expected, Got: argTypes}
	}
	for i, t := range expected {
		if t != argTypes[i] {
			return &TypeMismatchError{Expected: expected, Got: argTypes}
		}
	}
	return nil
}

// TypeMismatchError describes a vector-level value type mismatch, e.g.
// between a function's declared parameter types and the types of the
// arguments an embedder supplied.
type TypeMismatchError struct {
	Expected, Got []api.ValueType
}

func (e *TypeMismatchError) Error() string {
	return "argument type mismatch: expected " + valueTypesString(e.Expected) + ", got " + valueTypesString(e.Got)
}

func valueTypesString(ts []api.ValueType) string {
	out := make([]byte, 0, len(ts)*4)
	out = append(out, '(')
	for i, t := range ts {
		if i > 0 {
			out = append(out, ',')
		}
		out = append(out, api.ValueTypeName(t)...)
	}
	out = append(out, ')')
	return string(out)
}
