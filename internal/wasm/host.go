package wasm

import "github.com/tetratelabs/wazerocore/api"

// HostFunctionDef is one function contributed to a host module: the
// signature and implementation an embedder supplied, paired with the name
// it is exported under.
type HostFunctionDef struct {
	ExportName string
	Type       api.FunctionType
	Func       HostFunctionEntity
}

// InstantiateHostModule builds a ModuleInstance wholly of host functions,
// with no tables, memories, globals or segments, and registers it with
// store under name. This is the host-function counterpart to Instantiate:
// there is no *Module/CodeSection behind a host module, so it skips
// straight to allocating FunctionInstances of FunctionKindHost.
func InstantiateHostModule(store *Store, name string, defs []HostFunctionDef) (*ModuleInstance, error) {
	m := &ModuleInstance{Name: name, Store: store, Exports: map[string]Export{}}
	m.Functions = make([]*FunctionInstance, len(defs))
	for i, d := range defs {
		idx := uint32(i)
		fn := store.functions.Add(FunctionInstance{
			Type:      d.Type,
			TypeID:    FunctionTypeID(store.Intern(d.Type)),
			Kind:      FunctionKindHost,
			Host:      d.Func,
			Module:    m,
			Idx:       idx,
			DebugName: d.ExportName,
		})
		m.Functions[i] = fn
		m.Exports[d.ExportName] = Export{Name: d.ExportName, Type: api.ExternTypeFunc, Index: idx}
	}
	if err := store.registerModule(m); err != nil {
		return nil, err
	}
	return m, nil
}
