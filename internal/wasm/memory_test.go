package wasm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryInstance_GrowRejectsBeyondMax(t *testing.T) {
	m := NewMemoryInstance(1, 2, "m", nil)
	require.EqualValues(t, 1, m.Pages())

	before, ok := m.Grow(context.Background(), 1)
	require.True(t, ok)
	require.EqualValues(t, 1, before)
	require.EqualValues(t, 2, m.Pages())

	_, ok = m.Grow(context.Background(), 1)
	require.False(t, ok)
	require.EqualValues(t, 2, m.Pages())
}

type rejectingLimiter struct{}

func (rejectingLimiter) LimitMemoryGrow(context.Context, string, uint32) bool { return false }
func (rejectingLimiter) LimitTableGrow(context.Context, string, uint32) bool  { return false }

func TestMemoryInstance_GrowConsultsLimiter(t *testing.T) {
	m := NewMemoryInstance(1, 10, "m", rejectingLimiter{})
	_, ok := m.Grow(context.Background(), 1)
	require.False(t, ok)
	require.EqualValues(t, 1, m.Pages())
}

func TestMemoryInstance_ReadWriteRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryInstance(1, 1, "m", nil)

	require.True(t, m.WriteUint32Le(ctx, 0, 0xdeadbeef))
	v, ok := m.ReadUint32Le(ctx, 0)
	require.True(t, ok)
	require.EqualValues(t, 0xdeadbeef, v)

	require.True(t, m.WriteUint64Le(ctx, 8, 0x0102030405060708))
	v64, ok := m.ReadUint64Le(ctx, 8)
	require.True(t, ok)
	require.EqualValues(t, 0x0102030405060708, v64)

	require.True(t, m.WriteFloat32Le(ctx, 16, 3.5))
	f32, ok := m.ReadFloat32Le(ctx, 16)
	require.True(t, ok)
	require.EqualValues(t, 3.5, f32)

	require.True(t, m.WriteFloat64Le(ctx, 24, -2.25))
	f64, ok := m.ReadFloat64Le(ctx, 24)
	require.True(t, ok)
	require.EqualValues(t, -2.25, f64)
}

func TestMemoryInstance_OutOfBounds(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryInstance(1, 1, "m", nil)
	size := m.Size(ctx)

	_, ok := m.ReadByte(ctx, size)
	require.False(t, ok)
	require.False(t, m.WriteByte(ctx, size, 1))

	_, ok = m.ReadUint32Le(ctx, size-3)
	require.False(t, ok)

	_, ok = m.Read(ctx, size-1, 2)
	require.False(t, ok)
}

func TestMemoryInstance_ReadAliasesBuffer(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryInstance(1, 1, "m", nil)
	require.True(t, m.WriteByte(ctx, 0, 7))

	b, ok := m.Read(ctx, 0, 4)
	require.True(t, ok)
	b[0] = 99

	got, ok := m.ReadByte(ctx, 0)
	require.True(t, ok)
	require.EqualValues(t, 99, got)
}
