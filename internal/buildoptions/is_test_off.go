//go:build !wazero_testing

package buildoptions

// IstTest true if currently running unit tests. This can be used to
// insert the "test-time" assertions in the main code as `if buildoptions.IstTest { ... }` block,
// which will be optimized out by the final binary of wazero users.
const IstTest = false

// CallStackCeiling is the maximum number of frames the interpreter's call
// stack may reach before raising TrapKindCallStackExhausted instead of
// growing further. Production default; the interpreter's tests lower the
// engine's own copy of this ceiling to exercise stack-exhaustion traps
// cheaply.
const CallStackCeiling = 5000000
