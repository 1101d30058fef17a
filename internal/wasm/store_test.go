package wasm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tetratelabs/wazerocore/api"
)

func TestPagedPool_StablePointers(t *testing.T) {
	var pool pagedPool[int]
	var ptrs []*int
	for i := 0; i < 50; i++ {
		ptrs = append(ptrs, pool.Add(i))
	}
	require.Equal(t, 50, pool.Len())
	for i, p := range ptrs {
		require.Equal(t, i, *p)
	}
}

func TestStore_InternAndTypeByID(t *testing.T) {
	s := NewStore(api.CoreFeaturesV2)
	ft := api.FunctionType{Results: []api.ValueType{api.ValueTypeI32}}
	id := s.Intern(ft)
	require.Equal(t, id, s.Intern(ft))

	got := s.TypeByID(id)
	require.NotNil(t, got)
	require.Equal(t, ft.Results, got.Results)

	require.Nil(t, s.TypeByID(id+1))
}

func TestStore_RegisterModuleConflict(t *testing.T) {
	s := NewStore(api.CoreFeaturesV2)
	m := &ModuleInstance{Name: "a"}
	require.NoError(t, s.registerModule(m))

	dup := &ModuleInstance{Name: "a"}
	err := s.registerModule(dup)
	require.Error(t, err)
	var conflict *InstanceNameConflictError
	require.ErrorAs(t, err, &conflict)

	got, ok := s.Module("a")
	require.True(t, ok)
	require.Same(t, m, got)

	s.deregisterModule(m)
	_, ok = s.Module("a")
	require.False(t, ok)
}

func TestStore_ResourceLimiterDefaultsUnlimited(t *testing.T) {
	s := NewStore(api.CoreFeaturesV2)
	require.True(t, s.limiter.LimitMemoryGrow(context.Background(), "m", 100))

	s.SetResourceLimiter(rejectingLimiter{})
	require.False(t, s.limiter.LimitMemoryGrow(context.Background(), "m", 100))

	s.SetResourceLimiter(nil)
	require.True(t, s.limiter.LimitTableGrow(context.Background(), "m", 100))
}
