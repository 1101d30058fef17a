package wasm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrors_MessagesNameTheOffendingEntity(t *testing.T) {
	require.Contains(t, (&InstanceNameConflictError{Name: "m"}).Error(), "m")
	require.Contains(t, (&UnknownImportError{ModuleName: "env", Name: "f"}).Error(), "env")
	require.Contains(t, (&ImportTypeMismatchError{ModuleName: "env", Name: "f", Expected: "func", Actual: "memory"}).Error(), "memory")
	require.Contains(t, exportIndexOutOfBounds("function", 3, 2).Error(), "function")
}
