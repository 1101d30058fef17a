package wasm

import "github.com/tetratelabs/wazerocore/api"

// FunctionTypeID is the interned identity of a FunctionType, used by
// call_indirect to compare a table slot's actual signature against the
// instruction's declared one in O(1) (spec.md §3 "Interner<T>").
type FunctionTypeID uint32

// Interner assigns a stable, dense uint32 identity to each distinct value
// it is given, reusing the same identity for equal values. It does no
// locking of its own and is not safe for concurrent use.
type Interner[T comparable] struct {
	ids    map[T]uint32
	values []T
}

// NewInterner returns an empty Interner.
func NewInterner[T comparable]() *Interner[T] {
	return &Interner[T]{ids: map[T]uint32{}}
}

// Intern returns v's identity, assigning one the first time v is seen.
func (n *Interner[T]) Intern(v T) uint32 {
	if id, ok := n.ids[v]; ok {
		return id
	}
	id := uint32(len(n.values))
	n.values = append(n.values, v)
	n.ids[v] = id
	return id
}

// Lookup returns the value previously assigned id, or the zero value and
// false if id is out of range.
func (n *Interner[T]) Lookup(id uint32) (v T, ok bool) {
	if int(id) >= len(n.values) {
		return v, false
	}
	return n.values[id], true
}

// Len returns the number of distinct values interned so far.
func (n *Interner[T]) Len() int { return len(n.values) }

// functionTypeKey is the comparable projection of api.FunctionType used as
// an Interner key: FunctionType itself holds slices, which Go maps cannot
// key on directly.
type functionTypeKey string

func keyOf(ft api.FunctionType) functionTypeKey {
	buf := make([]byte, 0, len(ft.Params)+len(ft.Results)+1)
	buf = append(buf, ft.Params...)
	buf = append(buf, 0) // separator: param/result value types never collide with it
	buf = append(buf, ft.Results...)
	return functionTypeKey(buf)
}

// typeInterner implements wazeroir.TypeResolver by interning FunctionType
// values keyed on their flattened param/result byte sequence.
type typeInterner struct {
	keys  *Interner[functionTypeKey]
	types []api.FunctionType
}

func newTypeInterner() *typeInterner {
	return &typeInterner{keys: NewInterner[functionTypeKey]()}
}

// Intern implements wazeroir.TypeResolver.
func (t *typeInterner) Intern(ft api.FunctionType) uint32 {
	k := keyOf(ft)
	before := t.keys.Len()
	id := t.keys.Intern(k)
	if int(id) == before {
		t.types = append(t.types, ft)
	}
	return id
}

// Type returns the FunctionType previously interned as id.
func (t *typeInterner) Type(id uint32) *api.FunctionType {
	if int(id) >= len(t.types) {
		return nil
	}
	return &t.types[id]
}
