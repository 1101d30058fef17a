package wasm

import "fmt"

// InstanceNameConflictError is returned when a module is instantiated under
// a name already registered with the same Store.
type InstanceNameConflictError struct {
	Name string
}

func (e *InstanceNameConflictError) Error() string {
	return fmt.Sprintf("module %q has already been instantiated", e.Name)
}

// UnknownImportError is returned when an import cannot be resolved against
// any registered module.
type UnknownImportError struct {
	ModuleName, Name string
	Type             byte
}

func (e *UnknownImportError) Error() string {
	return fmt.Sprintf("module[%s] not found for import %q", e.ModuleName, e.Name)
}

// ImportTypeMismatchError is returned when a resolved import's concrete type
// does not match what the importing module declared.
type ImportTypeMismatchError struct {
	ModuleName, Name string
	Expected, Actual string
}

func (e *ImportTypeMismatchError) Error() string {
	return fmt.Sprintf("import %s.%s: expected %s, but actual is %s", e.ModuleName, e.Name, e.Expected, e.Actual)
}

// ExportIndexOutOfBoundsError is returned when an export's declared index
// exceeds its own index space.
type ExportIndexOutOfBoundsError struct {
	Kind  string
	Index uint32
	Count int
}

func (e *ExportIndexOutOfBoundsError) Error() string {
	return fmt.Sprintf("%s index %d out of range, count=%d", e.Kind, e.Index, e.Count)
}

func exportIndexOutOfBounds(kind string, index uint32, count int) error {
	return &ExportIndexOutOfBoundsError{Kind: kind, Index: index, Count: count}
}
