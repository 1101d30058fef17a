package wasm

import "sync/atomic"

// GlobalInstance is a module's global variable. Val is stored as raw
// 64-bit bits per ValueType's encoding convention (see api.ValueType),
// accessed atomically so a host function on another goroutine reading a
// global via api.Global never observes a torn write.
type GlobalInstance struct {
	Type GlobalType
	val  atomic.Uint64
}

// NewGlobalInstance allocates a global of the given type with its initial
// value.
func NewGlobalInstance(t GlobalType, init uint64) *GlobalInstance {
	g := &GlobalInstance{Type: t}
	g.val.Store(init)
	return g
}

// Get returns the global's current value.
func (g *GlobalInstance) Get() uint64 { return g.val.Load() }

// Set overwrites the global's value. Callers are responsible for checking
// Type.Mutable before calling; an immutable global set here would violate
// validation, which is assumed to have already happened upstream.
func (g *GlobalInstance) Set(v uint64) { g.val.Store(v) }
