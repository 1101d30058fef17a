package wasm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tetratelabs/wazerocore/api"
	"github.com/tetratelabs/wazerocore/internal/wazeroir"
)

func noneToNone() api.FunctionType { return api.FunctionType{} }

func TestInstantiate_GlobalsMemoriesTables(t *testing.T) {
	max := uint32(10)
	module := &Module{
		TypeSection:     []api.FunctionType{noneToNone()},
		FunctionSection: []uint32{0},
		CodeSection:     []Code{{Body: []wazeroir.Expr{{Op: wazeroir.OpExprEnd}}}},
		MemorySection:   []MemoryType{{Min: 1, Max: &max}},
		TableSection:    []TableType{{ElemType: api.ValueTypeFuncref, Min: 2, Max: &max}},
		GlobalSection: []GlobalInit{
			{Type: GlobalType{ValType: api.ValueTypeI32, Mutable: false}, Init: ConstantExpression{Kind: ConstantExpressionI32, I32: 7}},
		},
	}
	store := NewStore(api.CoreFeaturesV2)
	inst, err := Instantiate(store, module, "m")
	require.NoError(t, err)

	require.Len(t, inst.Functions, 1)
	require.Len(t, inst.Memories, 1)
	require.EqualValues(t, 1, inst.Memories[0].Pages())
	require.Len(t, inst.Tables, 1)
	require.EqualValues(t, 2, inst.Tables[0].Size())
	require.Len(t, inst.Globals, 1)
	require.EqualValues(t, 7, api.DecodeI32(inst.Globals[0].Get()))

	again, ok := store.Module("m")
	require.True(t, ok)
	require.Same(t, inst, again)
}

func TestInstantiate_DuplicateNameConflicts(t *testing.T) {
	module := &Module{}
	store := NewStore(api.CoreFeaturesV2)
	_, err := Instantiate(store, module, "m")
	require.NoError(t, err)

	_, err = Instantiate(store, module, "m")
	require.Error(t, err)
}

func TestInstantiate_ActiveElementSegmentPopulatesTable(t *testing.T) {
	max := uint32(4)
	module := &Module{
		TypeSection:     []api.FunctionType{noneToNone()},
		FunctionSection: []uint32{0},
		CodeSection:     []Code{{Body: []wazeroir.Expr{{Op: wazeroir.OpExprEnd}}}},
		TableSection:    []TableType{{ElemType: api.ValueTypeFuncref, Min: 4, Max: &max}},
		ElementSection: []ElementSegment{{
			TableIndex: 0,
			Offset:     ConstantExpression{Kind: ConstantExpressionI32, I32: 1},
			Init:       []uint32{0, RefNullElement},
		}},
	}
	store := NewStore(api.CoreFeaturesV2)
	inst, err := Instantiate(store, module, "m")
	require.NoError(t, err)

	ref, ok := inst.Tables[0].Get(1)
	require.True(t, ok)
	require.False(t, ref.IsNull())
	require.Same(t, inst.Functions[0], FunctionFromReference(ref))

	null, ok := inst.Tables[0].Get(2)
	require.True(t, ok)
	require.True(t, null.IsNull())
}

func TestInstantiate_ActiveElementSegmentOutOfBoundsFails(t *testing.T) {
	max := uint32(1)
	module := &Module{
		TypeSection:     []api.FunctionType{noneToNone()},
		FunctionSection: []uint32{0},
		CodeSection:     []Code{{Body: []wazeroir.Expr{{Op: wazeroir.OpExprEnd}}}},
		TableSection:    []TableType{{ElemType: api.ValueTypeFuncref, Min: 1, Max: &max}},
		ElementSection: []ElementSegment{{
			TableIndex: 0,
			Offset:     ConstantExpression{Kind: ConstantExpressionI32, I32: 0},
			Init:       []uint32{0, 0, 0},
		}},
	}
	store := NewStore(api.CoreFeaturesV2)
	_, err := Instantiate(store, module, "m")
	require.Error(t, err)
}

func TestInstantiate_PassiveDataSegmentCanBeDropped(t *testing.T) {
	module := &Module{
		DataSection: []DataSegment{{Passive: true, Init: []byte{1, 2, 3}}},
	}
	store := NewStore(api.CoreFeaturesV2)
	inst, err := Instantiate(store, module, "m")
	require.NoError(t, err)

	b, ok := inst.DataSegment(0)
	require.True(t, ok)
	require.Equal(t, []byte{1, 2, 3}, b)

	inst.DropData(0)
	_, ok = inst.DataSegment(0)
	require.False(t, ok)
}

func TestInstantiate_ImportResolution(t *testing.T) {
	exporter := &Module{
		TypeSection:     []api.FunctionType{noneToNone()},
		FunctionSection: []uint32{0},
		CodeSection:     []Code{{Body: []wazeroir.Expr{{Op: wazeroir.OpExprEnd}}}},
		ExportSection:   []Export{{Name: "f", Type: api.ExternTypeFunc, Index: 0}},
	}
	store := NewStore(api.CoreFeaturesV2)
	expInst, err := Instantiate(store, exporter, "exporter")
	require.NoError(t, err)

	importer := &Module{
		TypeSection: []api.FunctionType{noneToNone()},
		ImportSection: []Import{
			{Module: "exporter", Name: "f", Type: api.ExternTypeFunc, DescFunc: 0},
		},
	}
	impInst, err := Instantiate(store, importer, "importer")
	require.NoError(t, err)
	require.Len(t, impInst.Functions, 1)
	require.Same(t, expInst.Functions[0], impInst.Functions[0])
}

func TestInstantiate_UnknownImportFails(t *testing.T) {
	module := &Module{
		ImportSection: []Import{{Module: "missing", Name: "f", Type: api.ExternTypeFunc}},
	}
	store := NewStore(api.CoreFeaturesV2)
	_, err := Instantiate(store, module, "m")
	require.Error(t, err)
}
