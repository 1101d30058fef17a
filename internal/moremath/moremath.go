// Package moremath fills in the float semantics the Core specification
// requires but Go's math package doesn't provide directly: NaN-propagating
// min/max and round-half-to-even ("nearest") rounding.
package moremath

import "math"

// WasmCompatMin doesn't comply with math.Min's semantics for Wasm: either
// input being NaN must produce NaN even when the other is -Inf.
// https://github.com/golang/go/blob/1d20a362d0ca4898d77865e314ef6f73582daef0/src/math/dim.go#L74-L91
func WasmCompatMin(x, y float64) float64 {
	switch {
	case math.IsNaN(x) || math.IsNaN(y):
		return math.NaN()
	case math.IsInf(x, -1) || math.IsInf(y, -1):
		return math.Inf(-1)
	case x == 0 && x == y:
		if math.Signbit(x) {
			return x
		}
		return y
	}
	if x < y {
		return x
	}
	return y
}

// WasmCompatMax doesn't comply with math.Max's semantics for Wasm: either
// input being NaN must produce NaN even when the other is +Inf.
// https://github.com/golang/go/blob/1d20a362d0ca4898d77865e314ef6f73582daef0/src/math/dim.go#L42-L59
func WasmCompatMax(x, y float64) float64 {
	switch {
	case math.IsNaN(x) || math.IsNaN(y):
		return math.NaN()
	case math.IsInf(x, 1) || math.IsInf(y, 1):
		return math.Inf(1)
	case x == 0 && x == y:
		if math.Signbit(x) {
			return y
		}
		return x
	}
	if x > y {
		return x
	}
	return y
}

// WasmCompatNearestF32 implements f32.nearest: round to the nearest integer,
// ties to even, which math.Round (ties away from zero) does not do.
func WasmCompatNearestF32(f float32) float32 {
	return float32(wasmCompatNearest(float64(f)))
}

// WasmCompatNearestF64 implements f64.nearest: round to the nearest integer,
// ties to even.
func WasmCompatNearestF64(f float64) float64 {
	return wasmCompatNearest(f)
}

func wasmCompatNearest(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f == 0 {
		return f
	}
	rounded := math.Round(f)
	if diff := math.Abs(f - math.Trunc(f)); diff == 0.5 {
		// math.Round breaks .5 ties away from zero; Wasm wants ties to even.
		if halfEven := math.Trunc(f); math.Mod(halfEven, 2) == 0 {
			rounded = halfEven
		}
	}
	return rounded
}
