package wasm

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazerocore/api"
	"github.com/tetratelabs/wazerocore/internal/wazeroir"
)

// pageStartCapacity is the size of a pagedPool's first page; each
// subsequent page doubles in size, capped at pageMaxCapacity. This keeps
// small stores cheap while amortizing allocation cost for large ones.
const (
	pageStartCapacity = 8
	pageMaxCapacity   = 4096
)

// instrPageCapacity is the starting page size for instrArena. Function
// bodies land whole, so a page grows to fit an oversized body rather than
// spilling it across a page boundary.
const instrPageCapacity = 256

// instrArena is the per-store iseq arena (spec.md §4.4): a bump allocator
// that copies each finalized function body into arena-owned pages, so the
// InstructionSequence Finalize returns stays valid for the Store's entire
// life even after the Builder that produced it is discarded.
type instrArena struct {
	mu    sync.Mutex
	pages [][]wazeroir.Instruction
}

// alloc copies body into the arena and returns a sequence backed by that
// copy, implementing wazeroir.TypeResolver.AllocInstructions via Store.
func (a *instrArena) alloc(body []wazeroir.Instruction) wazeroir.InstructionSequence {
	a.mu.Lock()
	defer a.mu.Unlock()

	page := a.pageFor(len(body))
	start := len(*page)
	*page = append(*page, body...)
	return wazeroir.NewInstructionSequence((*page)[start : start+len(body) : start+len(body)])
}

// pageFor returns a page with room for n more instructions, growing the
// arena with a fresh page if the current one (or none yet) can't fit it.
func (a *instrArena) pageFor(n int) *[]wazeroir.Instruction {
	if len(a.pages) > 0 {
		last := &a.pages[len(a.pages)-1]
		if cap(*last)-len(*last) >= n {
			return last
		}
	}
	capacity := instrPageCapacity
	if n > capacity {
		capacity = n
	}
	a.pages = append(a.pages, make([]wazeroir.Instruction, 0, capacity))
	return &a.pages[len(a.pages)-1]
}

// pagedPool is a bump allocator returning stable pointers: once an element
// is appended, its address never changes, even as later pages are added.
// This is what lets FunctionInstance handles stay valid for the life of the
// Store that owns them (spec.md §3 "Entity Store").
type pagedPool[T any] struct {
	mu    sync.Mutex
	pages [][]T
	len   int
}

// Add appends v and returns a pointer to its stored copy, stable for the
// life of the pool.
func (p *pagedPool[T]) Add(v T) *T {
	p.mu.Lock()
	defer p.mu.Unlock()

	page := p.currentPage()
	if page == nil || len(*page) == cap(*page) {
		p.pages = append(p.pages, make([]T, 0, p.nextPageCapacity()))
		page = &p.pages[len(p.pages)-1]
	}
	*page = append(*page, v)
	p.len++
	return &(*page)[len(*page)-1]
}

func (p *pagedPool[T]) currentPage() *[]T {
	if len(p.pages) == 0 {
		return nil
	}
	return &p.pages[len(p.pages)-1]
}

func (p *pagedPool[T]) nextPageCapacity() int {
	if len(p.pages) == 0 {
		return pageStartCapacity
	}
	c := cap(p.pages[len(p.pages)-1]) * 2
	if c > pageMaxCapacity {
		c = pageMaxCapacity
	}
	return c
}

// Len returns the number of elements added so far.
func (p *pagedPool[T]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.len
}

// ResourceLimiter is consulted before growing a memory or table beyond its
// current size, letting an embedder reject growth without the grown entity
// ever observing a trap: Grow simply reports failure (spec.md
// "non-trapping growth rejection").
type ResourceLimiter interface {
	// LimitMemoryGrow is called before growing a memory. desiredPages is
	// the size, in 64KiB pages, memory would have after the grow. Returning
	// false rejects the grow.
	LimitMemoryGrow(ctx context.Context, moduleName string, desiredPages uint32) bool

	// LimitTableGrow is called before growing a table. desiredSize is the
	// number of elements the table would have after the grow. Returning
	// false rejects the grow.
	LimitTableGrow(ctx context.Context, moduleName string, desiredSize uint32) bool
}

// unlimitedLimiter accepts every grow request; it is the default when no
// ResourceLimiter is configured.
type unlimitedLimiter struct{}

func (unlimitedLimiter) LimitMemoryGrow(context.Context, string, uint32) bool { return true }
func (unlimitedLimiter) LimitTableGrow(context.Context, string, uint32) bool  { return true }

// Store owns every entity allocated across every module instantiated
// against it: function, table, memory and global instances, plus the
// interned function type table and instruction-sequence arena the register
// IR translator populates lazily. A Store's entities remain addressable for
// as long as the Store itself is reachable (spec.md §3).
type Store struct {
	types  *typeInterner
	instrs instrArena

	functions pagedPool[FunctionInstance]
	modules   map[string]*ModuleInstance
	modulesMu sync.RWMutex

	limiter  ResourceLimiter
	Features api.CoreFeatures
}

// NewStore returns an empty Store accepting the given feature set, with no
// resource limiter configured (growth is always accepted).
func NewStore(features api.CoreFeatures) *Store {
	return &Store{
		types:    newTypeInterner(),
		modules:  map[string]*ModuleInstance{},
		limiter:  unlimitedLimiter{},
		Features: features,
	}
}

// SetResourceLimiter installs the limiter consulted by every subsequent
// memory.grow/table.grow in instances created from this Store.
func (s *Store) SetResourceLimiter(l ResourceLimiter) {
	if l == nil {
		l = unlimitedLimiter{}
	}
	s.limiter = l
}

// Intern interns ft and returns its FunctionTypeID, implementing
// wazeroir.TypeResolver so Store can be passed directly to NewBuilder.
func (s *Store) Intern(ft api.FunctionType) uint32 {
	return s.types.Intern(ft)
}

// TypeByID returns the FunctionType previously interned as id, or nil if id
// is unknown to this Store.
func (s *Store) TypeByID(id uint32) *api.FunctionType {
	return s.types.Type(id)
}

// AllocInstructions copies body into the Store's iseq arena, implementing
// the other half of wazeroir.TypeResolver: Builder.Finalize calls this so
// the InstructionSequence it returns stays valid for the Store's life.
func (s *Store) AllocInstructions(body []wazeroir.Instruction) wazeroir.InstructionSequence {
	return s.instrs.alloc(body)
}

// Module looks up a previously-registered instance by the name it was
// instantiated with.
func (s *Store) Module(name string) (*ModuleInstance, bool) {
	s.modulesMu.RLock()
	defer s.modulesMu.RUnlock()
	m, ok := s.modules[name]
	return m, ok
}

// registerModule makes m discoverable by name for subsequent imports.
func (s *Store) registerModule(m *ModuleInstance) error {
	s.modulesMu.Lock()
	defer s.modulesMu.Unlock()
	if _, exists := s.modules[m.Name]; exists {
		return &InstanceNameConflictError{Name: m.Name}
	}
	s.modules[m.Name] = m
	return nil
}

// deregisterModule makes m's name available again, e.g. after it is closed.
func (s *Store) deregisterModule(m *ModuleInstance) {
	s.modulesMu.Lock()
	defer s.modulesMu.Unlock()
	if cur, ok := s.modules[m.Name]; ok && cur == m {
		delete(s.modules, m.Name)
	}
}

// Deregister removes m's registration, letting its name be reused by a
// later Instantiate. Called when an embedder closes a Module.
func (s *Store) Deregister(m *ModuleInstance) { s.deregisterModule(m) }

// Modules returns a snapshot of every instance currently registered. Used
// by Runtime.CloseWithExitCode to close everything instantiated against it.
func (s *Store) Modules() []*ModuleInstance {
	s.modulesMu.RLock()
	defer s.modulesMu.RUnlock()
	out := make([]*ModuleInstance, 0, len(s.modules))
	for _, m := range s.modules {
		out = append(out, m)
	}
	return out
}
