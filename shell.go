package mimeo

import (
	"reflect"
	"regexp"
	"time"
)

// buildShell constructs the empty duplicate of a composite value and
// enumerates its child edges in traversal order. The engine fills in
// owners and last markers when it pushes the edges; edges carrying their
// own owner (mapping pairs) are left alone. Clone shells are document
// nodes; flatten shells are plain slices and string-keyed maps.
func buildShell(v any, kind Kind, flatten bool, reg *Registry) (any, []workItem) {
	switch n := v.(type) {
	case *Sequence:
		edges := make([]workItem, len(n.items))
		for i, item := range n.items {
			edges[i] = workItem{idx: i, src: item}
		}
		if flatten {
			return make([]any, len(n.items)), edges
		}
		return NewSequence(make([]any, len(n.items))...), edges

	case *Mapping:
		if flatten {
			return mappingPairs(n.keys, n.vals)
		}
		edges := make([]workItem, len(n.keys))
		for i, k := range n.keys {
			edges[i] = workItem{key: k, idx: -1, src: n.vals[i]}
		}
		return NewMapping(), edges

	case *Set:
		if flatten {
			members := make([]any, 0, len(n.items))
			for _, item := range n.items {
				if droppedInFlatten(item) {
					continue
				}
				members = append(members, item)
			}
			edges := make([]workItem, len(members))
			for i, item := range members {
				edges[i] = workItem{idx: i, src: item}
			}
			return make([]any, len(members)), edges
		}
		edges := make([]workItem, len(n.items))
		for i, item := range n.items {
			edges[i] = workItem{idx: -1, src: item}
		}
		return NewSet(), edges

	case *Record:
		if flatten {
			edges := make([]workItem, 0, len(n.names))
			for _, name := range n.names {
				// Get evaluates getters, so computed members land as
				// snapshots of their current value.
				src, ok := n.Get(name)
				if !ok || droppedInFlatten(src) {
					continue
				}
				edges = append(edges, workItem{key: name, idx: -1, src: src})
			}
			return make(map[string]any, len(edges)), edges
		}
		edges := make([]workItem, 0, len(n.names))
		for _, name := range n.names {
			if g, ok := n.getters[name]; ok {
				edges = append(edges, workItem{key: name, idx: -1, getter: g})
				continue
			}
			edges = append(edges, workItem{key: name, idx: -1, src: n.fields[name]})
		}
		return recordShell(n.tag, reg), edges

	case *Wrapper:
		// flatten unboxes wrappers before shells are built
		return NewWrapper(nil), []workItem{{idx: -1, src: n.value}}
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		// Pointers to structs and arrays arrive undereferenced: the
		// pointer is the identity their referent lacks.
		rv = rv.Elem()
	}

	switch kind {
	case KindSequence:
		count := rv.Len()
		edges := make([]workItem, count)
		for i := 0; i < count; i++ {
			edges[i] = workItem{idx: i, src: rv.Index(i).Interface()}
		}
		if flatten {
			return make([]any, count), edges
		}
		return NewSequence(make([]any, count)...), edges

	case KindMapping:
		mapKeys := sortedMapKeys(rv)
		keys := make([]any, len(mapKeys))
		vals := make([]any, len(mapKeys))
		for i, k := range mapKeys {
			keys[i] = k.Interface()
			vals[i] = rv.MapIndex(k).Interface()
		}
		if flatten {
			return mappingPairs(keys, vals)
		}
		edges := make([]workItem, len(keys))
		for i, k := range keys {
			edges[i] = workItem{key: k, idx: -1, src: vals[i]}
		}
		return NewMapping(), edges

	case KindRecord:
		fields := structFields(rv.Type())
		if flatten {
			edges := make([]workItem, 0, len(fields))
			for _, f := range fields {
				src := rv.FieldByIndex(f.index).Interface()
				if droppedInFlatten(src) {
					continue
				}
				edges = append(edges, workItem{key: f.name, idx: -1, src: src})
			}
			return make(map[string]any, len(edges)), edges
		}
		edges := make([]workItem, 0, len(fields))
		for _, f := range fields {
			edges = append(edges, workItem{key: f.name, idx: -1, src: rv.FieldByIndex(f.index).Interface()})
		}
		return recordShell(rv.Type().String(), reg), edges

	case KindWrapper:
		// native pointer to a primitive; flatten unboxes before this point
		return NewWrapper(nil), []workItem{{idx: -1, src: rv.Interface()}}
	}

	// Classify admits only composites here
	return nil, nil
}

// mappingPairs builds the flatten projection of a mapping: an array of
// two-slot pairs, both slots traversed so keys collapse to plain data too.
func mappingPairs(keys, vals []any) (any, []workItem) {
	pairs := make([]any, len(keys))
	edges := make([]workItem, 0, len(keys)*2)
	for i, k := range keys {
		pair := make([]any, 2)
		pairs[i] = pair
		edges = append(edges,
			workItem{owner: pair, idx: 0, src: k},
			workItem{owner: pair, idx: 1, src: vals[i]},
		)
	}
	return pairs, edges
}

// recordShell builds the duplicate record, honoring a registered
// reconstructor so tagged records come back as the same class.
func recordShell(tag string, reg *Registry) *Record {
	if tag != "" {
		if rc, ok := reg.Reconstructor(tag); ok {
			if shell := rc(); shell != nil {
				return shell
			}
		}
	}
	return NewRecord(tag)
}

// opaqueCopy duplicates an opaque value by its constructor rule. Mutable
// buffers are copied; immutable values (times, regexps, errors) and values
// with no portable copy (funcs, chans) share the reference or copy by
// value.
func opaqueCopy(v any) any {
	switch o := v.(type) {
	case []byte:
		out := make([]byte, len(o))
		copy(out, o)
		return out
	case *time.Time:
		t := *o
		return &t
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		reflect.Copy(out, rv)
		return out.Interface()
	}

	return v
}

// flattenOpaque projects an opaque value onto plain data. Times render as
// RFC 3339, regexps as their pattern, errors as their message. Functions
// and channels project to nil.
func flattenOpaque(v any) any {
	switch o := v.(type) {
	case time.Time:
		return o.Format(time.RFC3339Nano)
	case *time.Time:
		return o.Format(time.RFC3339Nano)
	case *regexp.Regexp:
		return o.String()
	case []byte:
		out := make([]byte, len(o))
		copy(out, o)
		return out
	}

	if err, ok := v.(error); ok {
		return err.Error()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Func, reflect.Chan:
		return nil
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			out := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(out), rv)
			return out
		}
	}

	return v
}

// droppedInFlatten reports whether a value vanishes from flatten output
// entirely. Functions and channels have no data projection; record members
// and set entries holding them are omitted rather than nulled.
func droppedInFlatten(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}
