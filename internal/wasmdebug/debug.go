// Package wasmdebug formats human-readable names and stack traces for
// wasm functions, without resorting to DWARF: this engine never emits a
// line-number table, so a recovered panic's frame names come from the
// module/function names and index recorded at compile time instead of an
// instruction pointer.
package wasmdebug

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tetratelabs/wazerocore/api"
	"github.com/tetratelabs/wazerocore/internal/wasmruntime"
)

// FuncName formats a function's name for use in stack traces and error
// messages. When funcName is empty (the module carries no name section
// entry for it), "$funcIdx" is used instead.
func FuncName(moduleName, funcName string, funcIdx uint32) string {
	if funcName == "" {
		funcName = fmt.Sprintf("$%d", funcIdx)
	}
	return moduleName + "." + funcName
}

func signature(name string, paramTypes, resultTypes []api.ValueType) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('(')
	for i, t := range paramTypes {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(api.ValueTypeName(t))
	}
	b.WriteByte(')')
	switch len(resultTypes) {
	case 0:
	case 1:
		b.WriteByte(' ')
		b.WriteString(api.ValueTypeName(resultTypes[0]))
	default:
		b.WriteString(" (")
		for i, t := range resultTypes {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(api.ValueTypeName(t))
		}
		b.WriteByte(')')
	}
	return b.String()
}

// ErrorBuilder accumulates the call frames active when a panic was
// recovered, innermost frame added first, then renders them into an error
// alongside the original cause.
type ErrorBuilder interface {
	AddFrame(name string, paramTypes, resultTypes []api.ValueType)
	FromRecovered(recovered error) error
}

// NewErrorBuilder returns an empty ErrorBuilder.
func NewErrorBuilder() ErrorBuilder { return &errorBuilder{} }

type errorBuilder struct {
	frames []string
}

func (b *errorBuilder) AddFrame(name string, paramTypes, resultTypes []api.ValueType) {
	b.frames = append(b.frames, signature(name, paramTypes, resultTypes))
}

func (b *errorBuilder) FromRecovered(recovered error) error {
	var sb strings.Builder
	sb.WriteString(recovered.Error())
	// Errors defined by wasmruntime already describe a wasm-level failure;
	// anything else is marked as recovered from a Go panic.
	var trap *wasmruntime.Trap
	if !errors.As(recovered, &trap) &&
		!errors.Is(recovered, wasmruntime.ErrRuntimeCallStackOverflow) &&
		!errors.Is(recovered, wasmruntime.ErrRuntimeOutOfBoundsMemoryAccess) {
		sb.WriteString(" (recovered by wazero)")
	}
	sb.WriteString("\nwasm stack trace:")
	for _, f := range b.frames {
		sb.WriteString("\n\t")
		sb.WriteString(f)
	}
	return &recoveredError{message: sb.String(), cause: recovered}
}

type recoveredError struct {
	message string
	cause   error
}

func (e *recoveredError) Error() string { return e.message }
func (e *recoveredError) Unwrap() error { return e.cause }
