package wasm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tetratelabs/wazerocore/api"
	"github.com/tetratelabs/wazerocore/internal/wazeroir"
)

func TestReferenceFromFunction_RoundTripsAndTagsKind(t *testing.T) {
	wasmFn := &FunctionInstance{Kind: FunctionKindWasm}
	hostFn := &FunctionInstance{Kind: FunctionKindHost}

	wasmRef := ReferenceFromFunction(wasmFn)
	hostRef := ReferenceFromFunction(hostFn)
	require.False(t, wasmRef.IsNull())
	require.False(t, hostRef.IsNull())

	require.Same(t, wasmFn, FunctionFromReference(wasmRef))
	require.Same(t, hostFn, FunctionFromReference(hostRef))

	require.Nil(t, FunctionFromReference(RefNull))
	require.True(t, ReferenceFromFunction(nil).IsNull())
}

func TestCodeBody_EnsureCompiledCachesTranslation(t *testing.T) {
	ft := api.FunctionType{Params: []api.ValueType{api.ValueTypeI32}, Results: []api.ValueType{api.ValueTypeI32}}
	body := []wazeroir.Expr{
		{Op: wazeroir.OpExprLocalGet, Idx: 0},
		{Op: wazeroir.OpExprEnd},
	}
	c := NewCodeBody(ft, nil, body)
	require.False(t, c.Compiled())

	seq1, width1 := c.EnsureCompiled(stubResolver{})
	require.True(t, c.Compiled())

	seq2, width2 := c.EnsureCompiled(stubResolver{})
	require.Equal(t, width1, width2)
	require.Equal(t, seq1.Len(), seq2.Len())
}

type stubResolver struct{}

func (stubResolver) Intern(api.FunctionType) uint32 { return 0 }
