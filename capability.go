package mimeo

// Capability names a behavior a value may supply its own implementation of.
// The engine consults the registry for the relevant capability before
// applying any default strategy, for every composite it meets, the root
// included.
type Capability string

const (
	// CapabilityClone owns the value's clone behavior.
	CapabilityClone Capability = "clone"

	// CapabilityFlatten owns the value's flatten behavior.
	CapabilityFlatten Capability = "flatten"

	// CapabilityMutableClone owns the value's mutable-clone behavior.
	// Roots lacking it fall back to CapabilityClone with the freeze flag
	// stripped afterwards.
	CapabilityMutableClone Capability = "mutableClone"

	// CapabilityReadonlyClone owns the value's readonly-clone behavior.
	// Roots lacking it fall back to CapabilityClone with the freeze flag
	// applied afterwards.
	CapabilityReadonlyClone Capability = "readonlyClone"
)

// Hint selects traversal depth for the clone family of operations.
type Hint string

const (
	// HintDefault behaves as HintShallow.
	HintDefault Hint = "default"

	// HintShallow copies one level: the root shell is rebuilt and its
	// direct children are assigned by reference.
	HintShallow Hint = "shallow"

	// HintDeep copies the full reachable graph.
	HintDeep Hint = "deep"
)

// validCapabilities contains all capabilities for registration validation.
var validCapabilities = map[Capability]bool{
	CapabilityClone:         true,
	CapabilityFlatten:       true,
	CapabilityMutableClone:  true,
	CapabilityReadonlyClone: true,
}

// validHints contains all hints for argument validation.
var validHints = map[Hint]bool{
	HintDefault: true,
	HintShallow: true,
	HintDeep:    true,
}

// IsValidCapability returns true if c is a known capability.
func IsValidCapability(c Capability) bool {
	return validCapabilities[c]
}

// IsValidHint returns true if h is a known traversal hint.
func IsValidHint(h Hint) bool {
	return validHints[h]
}
