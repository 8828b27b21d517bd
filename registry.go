package mimeo

import (
	"reflect"
	"sync"
)

// Handler is a registered capability implementation. It receives the value
// the engine stopped at and the hint in effect, and returns the complete
// duplicate for that subtree. The engine does not descend into the result.
type Handler func(v any, hint Hint) (any, error)

// Reconstructor builds an empty record shell for a registered tag. The
// engine uses it so duplicates of tagged records come back as the same
// class of record, ready to receive children.
type Reconstructor func() *Record

// tagKey combines record tag and capability for handler lookup.
type tagKey struct {
	tag        string
	capability Capability
}

// typeKey combines Go type and capability for handler lookup.
type typeKey struct {
	typ        reflect.Type
	capability Capability
}

// Registry holds custom capability handlers and record reconstructors.
// All methods are safe for concurrent use. The zero value is not usable;
// call NewRegistry.
type Registry struct {
	mu             sync.RWMutex
	byTag          map[tagKey]Handler
	byType         map[typeKey]Handler
	reconstructors map[string]Reconstructor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byTag:          make(map[tagKey]Handler),
		byType:         make(map[typeKey]Handler),
		reconstructors: make(map[string]Reconstructor),
	}
}

// defaultRegistry backs the package-level registration functions and any
// engine built without WithRegistry.
var defaultRegistry = NewRegistry()

// RegisterTag attaches a handler to records carrying the given tag.
// Registering again for the same tag and capability replaces the handler.
func (r *Registry) RegisterTag(tag string, capability Capability, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byTag[tagKey{tag: tag, capability: capability}] = h
}

// RegisterType attaches a handler to values of the given dynamic type.
// Registering again for the same type and capability replaces the handler.
func (r *Registry) RegisterType(typ reflect.Type, capability Capability, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byType[typeKey{typ: typ, capability: capability}] = h
}

// RegisterReconstructor attaches a record shell builder to the given tag.
// Without one, duplicates of tagged records start from NewRecord(tag).
func (r *Registry) RegisterReconstructor(tag string, rc Reconstructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reconstructors[tag] = rc
}

// Lookup resolves the custom handler for v under the given capability.
// Resolution order: override interface on v, then tag handlers when v is
// a record, then type handlers for the dynamic type of v.
func (r *Registry) Lookup(v any, capability Capability) (Handler, bool) {
	switch capability {
	case CapabilityClone:
		if c, ok := v.(Cloneable); ok {
			return func(_ any, hint Hint) (any, error) { return c.Clone(hint) }, true
		}
	case CapabilityFlatten:
		if f, ok := v.(Flattenable); ok {
			return func(any, Hint) (any, error) { return f.Flatten() }, true
		}
	case CapabilityMutableClone:
		if m, ok := v.(MutableCloneable); ok {
			return func(_ any, hint Hint) (any, error) { return m.MutableClone(hint) }, true
		}
	case CapabilityReadonlyClone:
		if rc, ok := v.(ReadonlyCloneable); ok {
			return func(_ any, hint Hint) (any, error) { return rc.ReadonlyClone(hint) }, true
		}
	}

	if rec, ok := v.(*Record); ok {
		r.mu.RLock()
		h, found := r.byTag[tagKey{tag: rec.Tag(), capability: capability}]
		r.mu.RUnlock()
		if found {
			return h, true
		}
	}

	rt := reflect.TypeOf(v)
	if rt == nil {
		return nil, false
	}

	r.mu.RLock()
	h, found := r.byType[typeKey{typ: rt, capability: capability}]
	r.mu.RUnlock()
	if found {
		return h, true
	}

	return nil, false
}

// Has reports whether v resolves to a custom handler for capability.
func (r *Registry) Has(v any, capability Capability) bool {
	_, ok := r.Lookup(v, capability)
	return ok
}

// Reconstructor returns the shell builder registered for tag.
func (r *Registry) Reconstructor(tag string) (Reconstructor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rc, ok := r.reconstructors[tag]
	return rc, ok
}

// Reset clears all registered handlers and reconstructors.
// This is primarily useful for test isolation.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byTag = make(map[tagKey]Handler)
	r.byType = make(map[typeKey]Handler)
	r.reconstructors = make(map[string]Reconstructor)
}

// RegisterTag attaches a handler to records carrying the given tag on the
// default registry.
func RegisterTag(tag string, capability Capability, h Handler) {
	defaultRegistry.RegisterTag(tag, capability, h)
}

// RegisterType attaches a handler to values of the given dynamic type on
// the default registry.
func RegisterType(typ reflect.Type, capability Capability, h Handler) {
	defaultRegistry.RegisterType(typ, capability, h)
}

// RegisterTypeFor attaches a handler to values of type T on the default
// registry.
func RegisterTypeFor[T any](capability Capability, h Handler) {
	defaultRegistry.RegisterType(reflect.TypeFor[T](), capability, h)
}

// RegisterReconstructor attaches a record shell builder to the given tag
// on the default registry.
func RegisterReconstructor(tag string, rc Reconstructor) {
	defaultRegistry.RegisterReconstructor(tag, rc)
}

// Reset clears the default registry.
// This is primarily useful for test isolation.
func Reset() {
	defaultRegistry.Reset()
}
