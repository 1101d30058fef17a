package wasm

import (
	"context"
	"encoding/binary"
	"math"
)

// MemoryPageSize is the number of bytes in one unit of memory.grow/size,
// per the Core specification.
const MemoryPageSize = 65536

// MemoryInstance is a module's linear memory: a contiguous, growable byte
// buffer addressed by i32 offsets.
type MemoryInstance struct {
	buf        []byte
	max        uint32 // in pages
	moduleName string
	limiter    ResourceLimiter
}

// NewMemoryInstance allocates a memory sized minPages, able to grow up to
// maxPages.
func NewMemoryInstance(minPages, maxPages uint32, moduleName string, limiter ResourceLimiter) *MemoryInstance {
	return &MemoryInstance{
		buf:        make([]byte, minPages*MemoryPageSize),
		max:        maxPages,
		moduleName: moduleName,
		limiter:    limiter,
	}
}

// Pages returns the current size in pages.
func (m *MemoryInstance) Pages() uint32 { return uint32(len(m.buf)) / MemoryPageSize }

// Size implements api.Memory.
func (m *MemoryInstance) Size(context.Context) uint32 { return uint32(len(m.buf)) }

// Grow implements api.Memory. It never traps: growth that exceeds the
// configured max, or that a ResourceLimiter rejects, simply reports failure
// (spec.md "non-trapping growth rejection").
func (m *MemoryInstance) Grow(ctx context.Context, deltaPages uint32) (uint32, bool) {
	current := m.Pages()
	desired := current + deltaPages
	if desired < current || desired > m.max {
		return 0, false
	}
	if m.limiter != nil && !m.limiter.LimitMemoryGrow(ctx, m.moduleName, desired) {
		return 0, false
	}
	m.buf = append(m.buf, make([]byte, deltaPages*MemoryPageSize)...)
	return current, true
}

func (m *MemoryInstance) inBounds(offset, byteCount uint32) bool {
	end := uint64(offset) + uint64(byteCount)
	return end <= uint64(len(m.buf))
}

// ReadByte implements api.Memory.
func (m *MemoryInstance) ReadByte(_ context.Context, offset uint32) (byte, bool) {
	if !m.inBounds(offset, 1) {
		return 0, false
	}
	return m.buf[offset], true
}

// ReadUint16Le implements api.Memory.
func (m *MemoryInstance) ReadUint16Le(_ context.Context, offset uint32) (uint16, bool) {
	if !m.inBounds(offset, 2) {
		return 0, false
	}
	return binary.LittleEndian.Uint16(m.buf[offset:]), true
}

// ReadUint32Le implements api.Memory.
func (m *MemoryInstance) ReadUint32Le(_ context.Context, offset uint32) (uint32, bool) {
	if !m.inBounds(offset, 4) {
		return 0, false
	}
	return binary.LittleEndian.Uint32(m.buf[offset:]), true
}

// ReadUint64Le implements api.Memory.
func (m *MemoryInstance) ReadUint64Le(_ context.Context, offset uint32) (uint64, bool) {
	if !m.inBounds(offset, 8) {
		return 0, false
	}
	return binary.LittleEndian.Uint64(m.buf[offset:]), true
}

// ReadFloat32Le implements api.Memory.
func (m *MemoryInstance) ReadFloat32Le(ctx context.Context, offset uint32) (float32, bool) {
	v, ok := m.ReadUint32Le(ctx, offset)
	return math.Float32frombits(v), ok
}

// ReadFloat64Le implements api.Memory.
func (m *MemoryInstance) ReadFloat64Le(ctx context.Context, offset uint32) (float64, bool) {
	v, ok := m.ReadUint64Le(ctx, offset)
	return math.Float64frombits(v), ok
}

// Read implements api.Memory. The returned slice aliases the underlying
// buffer: writes through it are visible to wasm code, and vice versa, until
// a Grow reallocates the buffer.
func (m *MemoryInstance) Read(_ context.Context, offset, byteCount uint32) ([]byte, bool) {
	if !m.inBounds(offset, byteCount) {
		return nil, false
	}
	return m.buf[offset : offset+byteCount : offset+byteCount], true
}

// WriteByte implements api.Memory.
func (m *MemoryInstance) WriteByte(_ context.Context, offset uint32, v byte) bool {
	if !m.inBounds(offset, 1) {
		return false
	}
	m.buf[offset] = v
	return true
}

// WriteUint16Le implements api.Memory.
func (m *MemoryInstance) WriteUint16Le(_ context.Context, offset uint32, v uint16) bool {
	if !m.inBounds(offset, 2) {
		return false
	}
	binary.LittleEndian.PutUint16(m.buf[offset:], v)
	return true
}

// WriteUint32Le implements api.Memory.
func (m *MemoryInstance) WriteUint32Le(_ context.Context, offset, v uint32) bool {
	if !m.inBounds(offset, 4) {
		return false
	}
	binary.LittleEndian.PutUint32(m.buf[offset:], v)
	return true
}

// WriteUint64Le implements api.Memory.
func (m *MemoryInstance) WriteUint64Le(_ context.Context, offset uint32, v uint64) bool {
	if !m.inBounds(offset, 8) {
		return false
	}
	binary.LittleEndian.PutUint64(m.buf[offset:], v)
	return true
}

// WriteFloat32Le implements api.Memory.
func (m *MemoryInstance) WriteFloat32Le(ctx context.Context, offset uint32, v float32) bool {
	return m.WriteUint32Le(ctx, offset, math.Float32bits(v))
}

// WriteFloat64Le implements api.Memory.
func (m *MemoryInstance) WriteFloat64Le(ctx context.Context, offset uint32, v float64) bool {
	return m.WriteUint64Le(ctx, offset, math.Float64bits(v))
}

// Write implements api.Memory.
func (m *MemoryInstance) Write(_ context.Context, offset uint32, v []byte) bool {
	if !m.inBounds(offset, uint32(len(v))) {
		return false
	}
	copy(m.buf[offset:], v)
	return true
}
