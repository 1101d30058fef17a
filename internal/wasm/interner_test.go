package wasm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tetratelabs/wazerocore/api"
)

func TestInterner_DedupesEqualValues(t *testing.T) {
	in := NewInterner[string]()
	a := in.Intern("foo")
	b := in.Intern("foo")
	c := in.Intern("bar")
	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
	require.Equal(t, 2, in.Len())

	v, ok := in.Lookup(a)
	require.True(t, ok)
	require.Equal(t, "foo", v)

	_, ok = in.Lookup(99)
	require.False(t, ok)
}

func TestTypeInterner_DedupesByShape(t *testing.T) {
	ti := newTypeInterner()
	ft1 := api.FunctionType{Params: []api.ValueType{api.ValueTypeI32}, Results: []api.ValueType{api.ValueTypeI32}}
	ft2 := api.FunctionType{Params: []api.ValueType{api.ValueTypeI32}, Results: []api.ValueType{api.ValueTypeI32}}
	ft3 := api.FunctionType{Results: []api.ValueType{api.ValueTypeI32}}

	id1 := ti.Intern(ft1)
	id2 := ti.Intern(ft2)
	id3 := ti.Intern(ft3)
	require.Equal(t, id1, id2)
	require.NotEqual(t, id1, id3)

	got := ti.Type(id1)
	require.NotNil(t, got)
	require.Equal(t, ft1.Params, got.Params)
	require.Equal(t, ft1.Results, got.Results)

	require.Nil(t, ti.Type(99))
}
