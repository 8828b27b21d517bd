package mimeo

// Override interfaces allow types to bypass the default traversal
// strategies. When a value implements one of these interfaces, the engine
// calls the interface method instead of walking the value's children.
//
// This provides two benefits:
// 1. Performance: Skip generic traversal for hot paths
// 2. Custom logic: Implement duplication semantics that the default
//    strategies can't express
//
// The method result is used verbatim as the duplicate for that subtree.
// Overrides are consulted for every value, including the root.

// Cloneable bypasses the default clone strategy.
// Implement this to control how a type is duplicated.
type Cloneable interface {
	// Clone returns a duplicate of the receiver. The hint carries the
	// caller's depth request; implementations may honor or ignore it.
	// The engine does not descend into the returned value.
	Clone(hint Hint) (any, error)
}

// Flattenable bypasses the default flatten strategy.
// Implement this to control how a type collapses to plain data.
type Flattenable interface {
	// Flatten returns a plain-data projection of the receiver built from
	// sequences, string-keyed maps, and primitives.
	Flatten() (any, error)
}

// MutableCloneable bypasses the default mutableClone strategy.
// Implement this to control how a type produces a writable duplicate.
type MutableCloneable interface {
	// MutableClone returns a duplicate whose root is writable regardless
	// of the receiver's own frozen state.
	MutableClone(hint Hint) (any, error)
}

// ReadonlyCloneable bypasses the default readonlyClone strategy.
// Implement this to control how a type produces a frozen duplicate.
type ReadonlyCloneable interface {
	// ReadonlyClone returns a duplicate whose root is frozen regardless
	// of the receiver's own frozen state.
	ReadonlyClone(hint Hint) (any, error)
}
