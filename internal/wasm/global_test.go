package wasm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tetratelabs/wazerocore/api"
)

func TestGlobalInstance_GetSet(t *testing.T) {
	g := NewGlobalInstance(GlobalType{ValType: api.ValueTypeI32, Mutable: true}, api.EncodeI32(5))
	require.EqualValues(t, 5, api.DecodeI32(g.Get()))

	g.Set(api.EncodeI32(9))
	require.EqualValues(t, 9, api.DecodeI32(g.Get()))
}
