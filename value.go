package mimeo

import (
	"fmt"
	"reflect"
)

// Getter computes a record member on demand. Flatten evaluates getters and
// embeds the result as a snapshot; clone carries the getter itself.
type Getter func() any

// Sequence is an ordered, integer-indexed composite.
type Sequence struct {
	items  []any
	frozen bool
}

// NewSequence builds a sequence from the given items in order.
func NewSequence(items ...any) *Sequence {
	s := &Sequence{}
	if len(items) > 0 {
		s.items = append(s.items, items...)
	}
	return s
}

// Len returns the number of items.
func (s *Sequence) Len() int { return len(s.items) }

// At returns the item at index i, or nil when i is out of range.
func (s *Sequence) At(i int) any {
	if i < 0 || i >= len(s.items) {
		return nil
	}
	return s.items[i]
}

// Set stores v at index i. It reports false when the sequence is frozen or
// i is out of range.
func (s *Sequence) Set(i int, v any) bool {
	if s.frozen || i < 0 || i >= len(s.items) {
		return false
	}
	s.items[i] = v
	return true
}

// Append adds items to the end. It reports false when the sequence is frozen.
func (s *Sequence) Append(items ...any) bool {
	if s.frozen {
		return false
	}
	s.items = append(s.items, items...)
	return true
}

// Items returns a copy of the item slice. The items themselves are not copied.
func (s *Sequence) Items() []any {
	out := make([]any, len(s.items))
	copy(out, s.items)
	return out
}

// Frozen reports whether the sequence is immutable.
func (s *Sequence) Frozen() bool { return s.frozen }

// Freeze marks the sequence immutable and returns it.
func (s *Sequence) Freeze() *Sequence {
	s.frozen = true
	return s
}

func (s *Sequence) String() string { return fmt.Sprintf("<sequence len=%d>", len(s.items)) }

// Mapping is a keyed composite preserving insertion order. Keys are
// unique and may be any comparable value, including composite nodes (which
// compare by identity). Uncomparable keys are rejected.
type Mapping struct {
	keys   []any
	vals   []any
	index  map[any]int
	frozen bool
}

// NewMapping builds an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{index: make(map[any]int)}
}

// Set stores v under k, appending k to the insertion order on first use.
// It reports false when the mapping is frozen or k is not comparable.
func (m *Mapping) Set(k, v any) bool {
	if m.frozen || !comparableValue(k) {
		return false
	}
	if i, ok := m.index[k]; ok {
		m.vals[i] = v
		return true
	}
	m.index[k] = len(m.keys)
	m.keys = append(m.keys, k)
	m.vals = append(m.vals, v)
	return true
}

// Get returns the value stored under k.
func (m *Mapping) Get(k any) (any, bool) {
	if !comparableValue(k) {
		return nil, false
	}
	i, ok := m.index[k]
	if !ok {
		return nil, false
	}
	return m.vals[i], true
}

// Has reports whether k is present.
func (m *Mapping) Has(k any) bool {
	if !comparableValue(k) {
		return false
	}
	_, ok := m.index[k]
	return ok
}

// Delete removes k and its value, preserving the order of remaining keys.
// It reports false when the mapping is frozen or k is absent.
func (m *Mapping) Delete(k any) bool {
	if m.frozen || !comparableValue(k) {
		return false
	}
	i, ok := m.index[k]
	if !ok {
		return false
	}
	m.keys = append(m.keys[:i], m.keys[i+1:]...)
	m.vals = append(m.vals[:i], m.vals[i+1:]...)
	delete(m.index, k)
	for j := i; j < len(m.keys); j++ {
		m.index[m.keys[j]] = j
	}
	return true
}

// Len returns the number of entries.
func (m *Mapping) Len() int { return len(m.keys) }

// Keys returns the keys in insertion order.
func (m *Mapping) Keys() []any {
	out := make([]any, len(m.keys))
	copy(out, m.keys)
	return out
}

// Range calls fn for each entry in insertion order until fn returns false.
func (m *Mapping) Range(fn func(k, v any) bool) {
	for i, k := range m.keys {
		if !fn(k, m.vals[i]) {
			return
		}
	}
}

// Frozen reports whether the mapping is immutable.
func (m *Mapping) Frozen() bool { return m.frozen }

// Freeze marks the mapping immutable and returns it.
func (m *Mapping) Freeze() *Mapping {
	m.frozen = true
	return m
}

func (m *Mapping) String() string { return fmt.Sprintf("<mapping len=%d>", len(m.keys)) }

// Set is a value-deduplicated composite. Membership is by value for
// primitives and by identity for composite nodes. Iteration follows
// insertion order. Uncomparable members are rejected.
type Set struct {
	items  []any
	index  map[any]struct{}
	frozen bool
}

// NewSet builds a set from the given items, dropping duplicates.
func NewSet(items ...any) *Set {
	s := &Set{index: make(map[any]struct{})}
	for _, v := range items {
		s.Add(v)
	}
	return s
}

// Add inserts v. It reports false when the set is frozen, v is already
// present, or v is not comparable.
func (s *Set) Add(v any) bool {
	if s.frozen || !comparableValue(v) {
		return false
	}
	if _, ok := s.index[v]; ok {
		return false
	}
	s.index[v] = struct{}{}
	s.items = append(s.items, v)
	return true
}

// Has reports whether v is a member.
func (s *Set) Has(v any) bool {
	if !comparableValue(v) {
		return false
	}
	_, ok := s.index[v]
	return ok
}

// Delete removes v. It reports false when the set is frozen or v is absent.
func (s *Set) Delete(v any) bool {
	if s.frozen || !comparableValue(v) {
		return false
	}
	if _, ok := s.index[v]; !ok {
		return false
	}
	delete(s.index, v)
	for i, item := range s.items {
		if item == v {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of members.
func (s *Set) Len() int { return len(s.items) }

// Values returns the members in insertion order.
func (s *Set) Values() []any {
	out := make([]any, len(s.items))
	copy(out, s.items)
	return out
}

// Frozen reports whether the set is immutable.
func (s *Set) Frozen() bool { return s.frozen }

// Freeze marks the set immutable and returns it.
func (s *Set) Freeze() *Set {
	s.frozen = true
	return s
}

func (s *Set) String() string { return fmt.Sprintf("<set len=%d>", len(s.items)) }

// Record is a named-field composite covering both plain structures and
// tagged class-like instances. Fields iterate in definition order. A field
// is either stored data or a computed member backed by a Getter; defining
// one replaces the other under the same name.
type Record struct {
	tag     string
	names   []string
	fields  map[string]any
	getters map[string]Getter
	frozen  bool
}

// NewRecord builds an empty record. The tag identifies a registered
// reconstructor for class-like instances; plain records use "".
func NewRecord(tag string) *Record {
	return &Record{
		tag:    tag,
		fields: make(map[string]any),
	}
}

// Tag returns the record's reconstructor tag, or "" for plain records.
func (r *Record) Tag() string { return r.tag }

// Set stores v under name, appending name to the field order on first use.
// A getter under the same name is replaced. It reports false when the
// record is frozen.
func (r *Record) Set(name string, v any) bool {
	if r.frozen {
		return false
	}
	if _, ok := r.getters[name]; ok {
		delete(r.getters, name)
		r.fields[name] = v
		return true
	}
	if _, ok := r.fields[name]; !ok {
		r.names = append(r.names, name)
	}
	r.fields[name] = v
	return true
}

// DefineGetter installs a computed member under name, replacing any stored
// field. It reports false when the record is frozen or g is nil.
func (r *Record) DefineGetter(name string, g Getter) bool {
	if r.frozen || g == nil {
		return false
	}
	if _, ok := r.fields[name]; ok {
		delete(r.fields, name)
	} else if _, ok := r.getters[name]; !ok {
		r.names = append(r.names, name)
	}
	if r.getters == nil {
		r.getters = make(map[string]Getter)
	}
	r.getters[name] = g
	return true
}

// Get returns the member under name, evaluating a getter if one is defined.
func (r *Record) Get(name string) (any, bool) {
	if g, ok := r.getters[name]; ok {
		return g(), true
	}
	v, ok := r.fields[name]
	return v, ok
}

// Getter returns the computed member under name without evaluating it.
func (r *Record) Getter(name string) (Getter, bool) {
	g, ok := r.getters[name]
	return g, ok
}

// Has reports whether a member (stored or computed) exists under name.
func (r *Record) Has(name string) bool {
	if _, ok := r.fields[name]; ok {
		return true
	}
	_, ok := r.getters[name]
	return ok
}

// Delete removes the member under name, preserving the order of the rest.
// It reports false when the record is frozen or name is absent.
func (r *Record) Delete(name string) bool {
	if r.frozen || !r.Has(name) {
		return false
	}
	delete(r.fields, name)
	delete(r.getters, name)
	for i, n := range r.names {
		if n == name {
			r.names = append(r.names[:i], r.names[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of members, computed ones included.
func (r *Record) Len() int { return len(r.names) }

// Fields returns the member names in definition order, computed ones
// included.
func (r *Record) Fields() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Frozen reports whether the record is immutable.
func (r *Record) Frozen() bool { return r.frozen }

// Freeze marks the record immutable and returns it.
func (r *Record) Freeze() *Record {
	r.frozen = true
	return r
}

func (r *Record) String() string {
	if r.tag != "" {
		return fmt.Sprintf("<record %s len=%d>", r.tag, len(r.names))
	}
	return fmt.Sprintf("<record len=%d>", len(r.names))
}

// Wrapper boxes a primitive. Cloning re-boxes the primitive into a fresh
// wrapper; the box is never shared between source and clone.
type Wrapper struct {
	value  any
	frozen bool
}

// NewWrapper boxes v.
func NewWrapper(v any) *Wrapper { return &Wrapper{value: v} }

// Value returns the boxed primitive.
func (w *Wrapper) Value() any { return w.value }

// Frozen reports whether the wrapper is immutable.
func (w *Wrapper) Frozen() bool { return w.frozen }

// Freeze marks the wrapper immutable and returns it.
func (w *Wrapper) Freeze() *Wrapper {
	w.frozen = true
	return w
}

func (w *Wrapper) String() string { return fmt.Sprintf("<wrapper %v>", w.value) }

// Freeze marks v immutable when it is a document node and returns v.
// Non-node values pass through unchanged.
func Freeze(v any) any {
	switch n := v.(type) {
	case *Sequence:
		n.Freeze()
	case *Mapping:
		n.Freeze()
	case *Set:
		n.Freeze()
	case *Record:
		n.Freeze()
	case *Wrapper:
		n.Freeze()
	}
	return v
}

// IsFrozen reports whether v is a frozen document node.
func IsFrozen(v any) bool {
	switch n := v.(type) {
	case *Sequence:
		return n.frozen
	case *Mapping:
		return n.frozen
	case *Set:
		return n.frozen
	case *Record:
		return n.frozen
	case *Wrapper:
		return n.frozen
	}
	return false
}

// setFrozen flips the flag without the public-API chaining shape. The
// traversal engine uses it to finalize outputs and to force the root flag
// for MutableClone/ReadonlyClone.
func setFrozen(v any, frozen bool) {
	switch n := v.(type) {
	case *Sequence:
		n.frozen = frozen
	case *Mapping:
		n.frozen = frozen
	case *Set:
		n.frozen = frozen
	case *Record:
		n.frozen = frozen
	case *Wrapper:
		n.frozen = frozen
	}
}

// comparableValue reports whether v can be used as a map key. Composite
// nodes are pointers and always qualify; native slices, maps, and funcs do
// not.
func comparableValue(v any) bool {
	if v == nil {
		return true
	}
	return reflect.TypeOf(v).Comparable()
}
