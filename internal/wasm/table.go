package wasm

import "context"

// TableInstance is a module's table: a growable array of opaque references
// (funcref or externref), addressed by i32 index (spec.md "table entities").
type TableInstance struct {
	elems      []Reference
	elemType   byte // api.ValueTypeFuncref or api.ValueTypeExternref
	max        uint32
	moduleName string
	limiter    ResourceLimiter
}

// NewTableInstance allocates a table sized min, able to grow up to max,
// every entry initialized to the null reference.
func NewTableInstance(elemType byte, min, max uint32, moduleName string, limiter ResourceLimiter) *TableInstance {
	return &TableInstance{
		elems:      make([]Reference, min),
		elemType:   elemType,
		max:        max,
		moduleName: moduleName,
		limiter:    limiter,
	}
}

// Size returns the current number of entries.
func (t *TableInstance) Size() uint32 { return uint32(len(t.elems)) }

// Get returns the entry at idx, or a trap-kind signal via ok=false if idx is
// out of bounds. Callers translate a false return into
// TrapKindOutOfBoundsTableAccess.
func (t *TableInstance) Get(idx uint32) (Reference, bool) {
	if idx >= uint32(len(t.elems)) {
		return RefNull, false
	}
	return t.elems[idx], true
}

// Set writes ref at idx, returning false if idx is out of bounds.
func (t *TableInstance) Set(idx uint32, ref Reference) bool {
	if idx >= uint32(len(t.elems)) {
		return false
	}
	t.elems[idx] = ref
	return true
}

// Grow appends delta entries set to init, returning the size before
// growth and false if the grow was rejected. Never traps.
func (t *TableInstance) Grow(ctx context.Context, delta uint32, init Reference) (uint32, bool) {
	current := t.Size()
	desired := current + delta
	if desired < current || desired > t.max {
		return 0, false
	}
	if t.limiter != nil && !t.limiter.LimitTableGrow(ctx, t.moduleName, desired) {
		return 0, false
	}
	grown := make([]Reference, delta)
	for i := range grown {
		grown[i] = init
	}
	t.elems = append(t.elems, grown...)
	return current, true
}

// Fill writes val into [offset, offset+n), returning false (no mutation) if
// the range is out of bounds.
func (t *TableInstance) Fill(offset, n uint32, val Reference) bool {
	if uint64(offset)+uint64(n) > uint64(len(t.elems)) {
		return false
	}
	for i := offset; i < offset+n; i++ {
		t.elems[i] = val
	}
	return true
}

// CopyWithin copies n entries from src to dst within (or between) tables,
// handling overlap like memmove. Returns false if either range is out of
// bounds.
func CopyWithin(dstT, srcT *TableInstance, dst, src, n uint32) bool {
	if uint64(dst)+uint64(n) > uint64(len(dstT.elems)) || uint64(src)+uint64(n) > uint64(len(srcT.elems)) {
		return false
	}
	copy(dstT.elems[dst:dst+n], srcT.elems[src:src+n])
	return true
}

// Init copies n entries from an element segment's materialized references
// (src, offset srcOffset) into the table at dst. Returns false if either
// range is out of bounds.
func (t *TableInstance) Init(dst uint32, src []Reference, srcOffset, n uint32) bool {
	if uint64(dst)+uint64(n) > uint64(len(t.elems)) || uint64(srcOffset)+uint64(n) > uint64(len(src)) {
		return false
	}
	copy(t.elems[dst:dst+n], src[srcOffset:srcOffset+n])
	return true
}
