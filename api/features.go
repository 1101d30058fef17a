package api

import (
	"fmt"
	"strings"
)

// CoreFeatures is a bit flag of WebAssembly Core specification features.
// Unlike api.Module, this is not per-instance state: it describes what the
// engine will accept, and is fixed for the life of a Runtime.
//
// See SPEC_FULL.md §6 for the required feature flags of this engine.
type CoreFeatures uint64

const (
	// CoreFeatureMutableGlobal allows globals to be mutable.
	CoreFeatureMutableGlobal CoreFeatures = 1 << iota
	// CoreFeatureSignExtensionOps adds i32.extend8_s, i64.extend32_s, etc.
	CoreFeatureSignExtensionOps
	// CoreFeatureMultiValue allows multiple results per function/block.
	CoreFeatureMultiValue
	// CoreFeatureNonTrappingFloatToIntConversion adds the saturating
	// trunc_sat variants of the float-to-int conversions.
	CoreFeatureNonTrappingFloatToIntConversion
	// CoreFeatureReferenceTypes adds funcref/externref, table.get/set/grow/
	// fill/copy and ref.null/ref.func/ref.is_null.
	CoreFeatureReferenceTypes
	// CoreFeatureBulkMemoryOperations adds memory.copy/fill/init,
	// table.init, elem.drop and data.drop.
	CoreFeatureBulkMemoryOperations
)

// CoreFeaturesV2 is the feature set this engine implements: the WebAssembly
// 2.0 Core feature set minus SIMD and the threads proposal, both explicit
// Non-goals.
const CoreFeaturesV2 = CoreFeatureMutableGlobal | CoreFeatureSignExtensionOps |
	CoreFeatureMultiValue | CoreFeatureNonTrappingFloatToIntConversion |
	CoreFeatureReferenceTypes | CoreFeatureBulkMemoryOperations

// IsEnabled returns true if the feature (or set of features) is enabled.
func (f CoreFeatures) IsEnabled(feature CoreFeatures) bool {
	return f&feature != 0
}

// SetEnabled toggles the feature (or set of features).
func (f CoreFeatures) SetEnabled(feature CoreFeatures, enabled bool) CoreFeatures {
	if enabled {
		return f | feature
	}
	return f &^ feature
}

// RequireEnabled returns an error if the feature is not enabled in f.
func (f CoreFeatures) RequireEnabled(feature CoreFeatures) error {
	if !f.IsEnabled(feature) {
		return fmt.Errorf("feature %q is disabled", featureName(feature))
	}
	return nil
}

var allCoreFeatures = []struct {
	bit  CoreFeatures
	name string
}{
	{CoreFeatureBulkMemoryOperations, "bulk-memory-operations"},
	{CoreFeatureMultiValue, "multi-value"},
	{CoreFeatureMutableGlobal, "mutable-global"},
	{CoreFeatureNonTrappingFloatToIntConversion, "nontrapping-float-to-int-conversion"},
	{CoreFeatureReferenceTypes, "reference-types"},
	{CoreFeatureSignExtensionOps, "sign-extension-ops"},
}

// featureName returns the canonical name of a single feature bit, used only
// for error messages: it does not attempt to decompose a multi-bit value.
func featureName(feature CoreFeatures) string {
	for _, f := range allCoreFeatures {
		if f.bit == feature {
			return f.name
		}
	}
	return fmt.Sprintf("%#x", uint64(feature))
}

// String renders the set of enabled features, alphabetically and
// pipe-delimited, e.g. "multi-value|mutable-global".
func (f CoreFeatures) String() string {
	var names []string
	for _, af := range allCoreFeatures {
		if f.IsEnabled(af.bit) {
			names = append(names, af.name)
		}
	}
	return strings.Join(names, "|")
}
