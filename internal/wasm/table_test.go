package wasm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTableInstance_GetSetOutOfBounds(t *testing.T) {
	tbl := NewTableInstance(0x70, 2, 2, "m", nil)
	require.EqualValues(t, 2, tbl.Size())

	_, ok := tbl.Get(2)
	require.False(t, ok)
	require.False(t, tbl.Set(2, Reference(1)))

	require.True(t, tbl.Set(0, Reference(42)))
	v, ok := tbl.Get(0)
	require.True(t, ok)
	require.EqualValues(t, 42, v)
}

func TestTableInstance_GrowRejectsBeyondMax(t *testing.T) {
	tbl := NewTableInstance(0x70, 1, 2, "m", nil)
	before, ok := tbl.Grow(context.Background(), 1, RefNull)
	require.True(t, ok)
	require.EqualValues(t, 1, before)
	require.EqualValues(t, 2, tbl.Size())

	_, ok = tbl.Grow(context.Background(), 1, RefNull)
	require.False(t, ok)
}

func TestTableInstance_Fill(t *testing.T) {
	tbl := NewTableInstance(0x70, 4, 4, "m", nil)
	require.True(t, tbl.Fill(1, 2, Reference(7)))
	v0, _ := tbl.Get(0)
	v1, _ := tbl.Get(1)
	v2, _ := tbl.Get(2)
	v3, _ := tbl.Get(3)
	require.EqualValues(t, RefNull, v0)
	require.EqualValues(t, 7, v1)
	require.EqualValues(t, 7, v2)
	require.EqualValues(t, RefNull, v3)

	require.False(t, tbl.Fill(3, 2, Reference(9)))
}

func TestCopyWithinOverlapping(t *testing.T) {
	tbl := NewTableInstance(0x70, 5, 5, "m", nil)
	for i := uint32(0); i < 5; i++ {
		tbl.Set(i, Reference(i+1))
	}
	// Shift [0,3) to [1,4): overlapping forward copy.
	require.True(t, CopyWithin(tbl, tbl, 1, 0, 3))
	want := []Reference{1, 1, 2, 3, 5}
	for i, w := range want {
		got, _ := tbl.Get(uint32(i))
		require.Equalf(t, w, got, "index %d", i)
	}

	require.False(t, CopyWithin(tbl, tbl, 3, 0, 10))
}

func TestTableInstance_Init(t *testing.T) {
	tbl := NewTableInstance(0x70, 3, 3, "m", nil)
	src := []Reference{10, 20, 30}
	require.True(t, tbl.Init(1, src, 1, 2))
	v1, _ := tbl.Get(1)
	v2, _ := tbl.Get(2)
	require.EqualValues(t, 20, v1)
	require.EqualValues(t, 30, v2)

	require.False(t, tbl.Init(2, src, 0, 3))
}
