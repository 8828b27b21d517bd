// Package mimeo duplicates object graphs.
//
// The package clones and flattens arbitrary value graphs: deeply nested,
// aliased, cyclic, partially frozen. Graphs are built from five document
// nodes plus primitives; native Go values are absorbed into the same
// model as they are traversed. Traversal is iterative, so graph depth is
// bounded by memory rather than goroutine stack.
//
// # Document Model
//
//   - Sequence: ordered, integer-indexed items
//   - Mapping: insertion-ordered entries under any comparable key
//   - Set: value-deduplicated members in insertion order
//   - Record: named members in definition order, stored or computed
//   - Wrapper: a boxed primitive
//
// Native slices, arrays, maps, structs, and pointers absorb into these
// nodes during duplication. Primitives pass through by value.
//
// # Operations
//
//	clone, _ := mimeo.Clone(ctx, doc, mimeo.HintDeep)
//	flat, _ := mimeo.Flatten(ctx, doc)
//	rw, _ := mimeo.MutableClone(ctx, doc, mimeo.HintDeep)
//	ro, _ := mimeo.ReadonlyClone(ctx, doc, mimeo.HintDeep)
//
// Clone preserves structure: shared references stay shared, cycles stay
// cyclic, frozen nodes produce frozen duplicates. The default hint
// duplicates the top level only and references children; HintDeep
// duplicates the whole graph. MutableClone and ReadonlyClone behave as
// Clone with the result's root forced writable or frozen.
//
// Flatten collapses a graph to plain data: sequences and sets become
// []any, mappings become arrays of two-slot pairs, records become
// string-keyed maps, wrappers unbox, computed members embed snapshots.
// Sharing and cycles survive as aliased plain data.
//
// # Freezing
//
// Nodes freeze in place via Freeze; mutators on frozen nodes report false
// instead of panicking. Duplicates of frozen nodes come back frozen, each
// shell filled completely before its flag is applied.
//
// # Custom Handlers
//
// Types bypass the default strategies by implementing the override
// interfaces (Cloneable, Flattenable, MutableCloneable, ReadonlyCloneable)
// or by registering handlers:
//
//	mimeo.RegisterTag("geo.Point", mimeo.CapabilityClone, clonePoint)
//	mimeo.RegisterTypeFor[*Conn](mimeo.CapabilityClone, shareConn)
//
// Reconstructors rebuild tagged records as the same class:
//
//	mimeo.RegisterReconstructor("geo.Point", func() *mimeo.Record {
//	    return mimeo.NewRecord("geo.Point")
//	})
//
// # Struct Tags
//
// Absorbed struct fields follow the mimeo tag:
//
//	type User struct {
//	    ID    string `mimeo:"id"`
//	    Email string `mimeo:"email"`
//	    Raw   []byte `mimeo:"-"`
//	}
//
// # Export and Fingerprint
//
// Export materializes a duplicated graph back into a native struct;
// Fingerprint hashes a graph into a digest that is stable across runs and
// identical for structurally equal graphs, cycles included.
//
//	user, _ := mimeo.Export[User](ctx, doc)
//	sum, _ := mimeo.Fingerprint(ctx, doc)
//
// # Codec Providers
//
// Flatten output marshals through codec submodules:
//
//   - json - JSON encoding (application/json)
//   - yaml - YAML encoding (application/yaml)
//   - msgpack - MessagePack encoding (application/msgpack)
package mimeo

import (
	"context"
	"fmt"
	"time"
)

// Engine duplicates value graphs against a capability registry. Engines
// are stateless between operations and safe for concurrent use. The zero
// value is not usable; call New.
type Engine struct {
	registry *Registry
}

// Option configures an Engine.
type Option func(*Engine)

// WithRegistry directs the engine at a specific capability registry
// instead of the package default.
func WithRegistry(reg *Registry) Option {
	return func(e *Engine) {
		e.registry = reg
	}
}

// New builds an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{registry: defaultRegistry}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// defaultEngine backs the package-level operations.
var defaultEngine = New()

// Registry returns the capability registry the engine consults.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// normalizeHint validates hint and resolves the default depth.
func normalizeHint(hint Hint) (Hint, error) {
	if hint == HintDefault || hint == "" {
		return HintShallow, nil
	}
	if !IsValidHint(hint) {
		return "", fmt.Errorf("invalid hint %q", hint)
	}
	return hint, nil
}

// Clone duplicates v. The default hint duplicates the top level only and
// references children; HintDeep duplicates the entire graph, preserving
// sharing, cycles, and per-node frozen flags. Primitives pass through by
// value.
func (e *Engine) Clone(ctx context.Context, v any, hint Hint) (any, error) {
	return e.clone(ctx, CapabilityClone, v, hint)
}

// MutableClone duplicates v like Clone and forces the result's root to be
// writable. A registered mutableClone handler takes over the whole
// operation when present.
func (e *Engine) MutableClone(ctx context.Context, v any, hint Hint) (any, error) {
	return e.clone(ctx, CapabilityMutableClone, v, hint)
}

// ReadonlyClone duplicates v like Clone and forces the result's root to be
// frozen. A registered readonlyClone handler takes over the whole
// operation when present.
func (e *Engine) ReadonlyClone(ctx context.Context, v any, hint Hint) (any, error) {
	return e.clone(ctx, CapabilityReadonlyClone, v, hint)
}

// clone runs the clone family: resolve the mode-specific handler at the
// root, else traverse with the plain clone capability and apply the
// mode's root flag afterwards.
func (e *Engine) clone(ctx context.Context, mode Capability, v any, hint Hint) (any, error) {
	hint, err := normalizeHint(hint)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	emitCloneStart(ctx, mode, typeName(v), hint)

	var retErr error
	var nodes int
	defer func() {
		emitCloneComplete(ctx, mode, typeName(v), hint, nodes, time.Since(start), retErr)
	}()

	if mode != CapabilityClone {
		if h, ok := e.registry.Lookup(v, mode); ok {
			out, err := h(v, hint)
			if err != nil {
				retErr = newHandlerError(mode, typeName(v), err)
				return nil, retErr
			}
			return out, nil
		}
	}

	tr := newTraversal(e.registry, CapabilityClone, hint, false)
	out, err := tr.run(v)
	nodes = tr.nodes
	if err != nil {
		retErr = err
		return nil, retErr
	}

	switch mode {
	case CapabilityMutableClone:
		setFrozen(out, false)
	case CapabilityReadonlyClone:
		setFrozen(out, true)
	}
	return out, nil
}

// Flatten collapses v to plain data. The full graph is always walked;
// there is no shallow flatten. Frozen flags do not carry into the output,
// and functions are dropped rather than projected.
func (e *Engine) Flatten(ctx context.Context, v any) (any, error) {
	start := time.Now()
	emitFlattenStart(ctx, typeName(v))

	var retErr error
	var nodes int
	defer func() {
		emitFlattenComplete(ctx, typeName(v), nodes, time.Since(start), retErr)
	}()

	tr := newTraversal(e.registry, CapabilityFlatten, HintDeep, true)
	out, err := tr.run(v)
	nodes = tr.nodes
	if err != nil {
		retErr = err
		return nil, retErr
	}
	return out, nil
}

// Clone duplicates v using the default engine.
func Clone(ctx context.Context, v any, hint Hint) (any, error) {
	return defaultEngine.Clone(ctx, v, hint)
}

// MutableClone duplicates v with a writable root using the default engine.
func MutableClone(ctx context.Context, v any, hint Hint) (any, error) {
	return defaultEngine.MutableClone(ctx, v, hint)
}

// ReadonlyClone duplicates v with a frozen root using the default engine.
func ReadonlyClone(ctx context.Context, v any, hint Hint) (any, error) {
	return defaultEngine.ReadonlyClone(ctx, v, hint)
}

// Flatten collapses v to plain data using the default engine.
func Flatten(ctx context.Context, v any) (any, error) {
	return defaultEngine.Flatten(ctx, v)
}
