package wazero

import (
	"context"

	"github.com/tetratelabs/wazerocore/api"
	"github.com/tetratelabs/wazerocore/internal/wasm"
)

// RuntimeConfig controls the behavior of a Runtime created with
// NewRuntimeWithConfig: which Core specification features it accepts and
// how it bounds the resources a module may claim.
type RuntimeConfig struct {
	enabledFeatures api.CoreFeatures
	limiter         wasm.ResourceLimiter
}

// NewRuntimeConfig returns a RuntimeConfig accepting CoreFeaturesV2
// (everything this engine implements) with no resource limiter.
func NewRuntimeConfig() *RuntimeConfig {
	return &RuntimeConfig{enabledFeatures: api.CoreFeaturesV2}
}

// clone ensures a With* call never mutates a config another Runtime is
// already built from.
func (c *RuntimeConfig) clone() *RuntimeConfig {
	ret := *c
	return &ret
}

// WithCoreFeatures replaces the accepted feature set entirely. Most callers
// should prefer the default (CoreFeaturesV2) and narrow it only to reject
// modules that rely on a specific proposal.
func (c *RuntimeConfig) WithCoreFeatures(features api.CoreFeatures) *RuntimeConfig {
	ret := c.clone()
	ret.enabledFeatures = features
	return ret
}

// WithMemoryLimiter installs a callback consulted before growing any
// memory instantiated from this Runtime beyond its current size. A nil
// limiter (the default) accepts every grow request up to a memory's own
// max. The same ResourceLimiter also gates table growth (see
// WithTableLimiter): wasm.Store consults one limiter for both.
func (c *RuntimeConfig) WithMemoryLimiter(limiter ResourceLimiter) *RuntimeConfig {
	ret := c.clone()
	ret.limiter = limiter
	return ret
}

// WithTableLimiter installs a callback consulted before growing any table
// instantiated from this Runtime beyond its current size. See
// WithMemoryLimiter: both setters configure the same underlying limiter.
func (c *RuntimeConfig) WithTableLimiter(limiter ResourceLimiter) *RuntimeConfig {
	ret := c.clone()
	ret.limiter = limiter
	return ret
}

// ResourceLimiter is the embedder-facing form of wasm.ResourceLimiter: a
// hook consulted before memory.grow/table.grow, letting an embedder reject
// growth without the growing instance ever observing a trap.
type ResourceLimiter = wasm.ResourceLimiter

// ModuleConfig configures a single InstantiateModule call: the name the
// instance is registered under.
type ModuleConfig struct {
	name string
}

// NewModuleConfig returns a ModuleConfig with no name override: the
// instantiated module keeps the name recorded on its CompiledModule.
func NewModuleConfig() *ModuleConfig {
	return &ModuleConfig{}
}

// WithName overrides the name the module is registered under, letting the
// same CompiledModule be instantiated multiple times under distinct names.
func (c *ModuleConfig) WithName(name string) *ModuleConfig {
	ret := *c
	ret.name = name
	return &ret
}

// ctxOrBackground defaults a nil context the way every api.Module/
// api.Function method documents.
func ctxOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
