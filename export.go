package mimeo

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/zoobzio/sentinel"
)

var timeType = reflect.TypeOf(time.Time{})

// Export materializes a graph into a fresh T using the default engine.
// Record members map onto T's fields under the same mimeo tags absorption
// uses; see Engine.Export for the conversion rules.
func Export[T any](ctx context.Context, v any) (*T, error) {
	if reflect.TypeFor[T]().Kind() == reflect.Struct {
		// Prime sentinel so field metadata and tags come from its scan
		sentinel.Scan[T]()
	}

	out := new(T)
	if err := defaultEngine.Export(ctx, v, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Export materializes a graph into target, which must be a non-nil
// pointer. Records, mappings, and string-keyed maps fill structs by
// member name; sequences and sets fill slices and arrays; computed
// members export as snapshots. Values already of the target type transfer
// by reference. Shared sources export to shared pointers, and cycles are
// reproduced when the target shape routes them through pointers; a cycle
// forced into a value field fails with ErrExportField.
func (e *Engine) Export(ctx context.Context, v any, target any) error {
	start := time.Now()
	emitExportStart(ctx, typeName(v), typeName(target))

	var retErr error
	defer func() {
		emitExportComplete(ctx, typeName(v), typeName(target), time.Since(start), retErr)
	}()

	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		retErr = newExportError(ErrExportTarget, "", typeName(target), nil)
		return retErr
	}

	ex := &exporter{
		visited:    make(map[exportKey]reflect.Value),
		inProgress: make(map[any]bool),
	}
	if key, ok := identityKey(v); ok {
		// the target allocation backs cycles that return to the root
		ex.visited[exportKey{id: key, typ: rv.Type()}] = rv
	}
	if err := ex.exportValue(v, rv.Elem(), ""); err != nil {
		retErr = err
		return retErr
	}
	return nil
}

// exportKey pairs a source identity with a destination pointer type, so
// one source shared by fields of different pointer types exports into
// one allocation per type.
type exportKey struct {
	id  any
	typ reflect.Type
}

// exporter walks a graph alongside a destination value. visited carries
// pointer allocations for sharing and cycles; inProgress detects cycles
// that the destination shape cannot represent.
type exporter struct {
	visited    map[exportKey]reflect.Value
	inProgress map[any]bool
}

func (ex *exporter) exportValue(src any, dst reflect.Value, path string) error {
	if src == nil || isNilRef(src) {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}

	dt := dst.Type()
	sv := reflect.ValueOf(src)

	// Matching types transfer by reference; this also covers interface
	// destinations, which accept the value as-is.
	if sv.Type().AssignableTo(dt) {
		dst.Set(sv)
		return nil
	}

	if w, ok := src.(*Wrapper); ok {
		if key, hasID := identityKey(src); hasID {
			if ex.inProgress[key] {
				return newExportError(ErrExportField, path, dt.String(),
					errors.New("cycle reaches a non-pointer field"))
			}
			ex.inProgress[key] = true
			defer delete(ex.inProgress, key)
		}
		return ex.exportValue(w.Value(), dst, path)
	}

	if dt.Kind() == reflect.Pointer {
		key, hasID := identityKey(src)
		if hasID {
			if cached, ok := ex.visited[exportKey{id: key, typ: dt}]; ok {
				dst.Set(cached)
				return nil
			}
		}
		out := reflect.New(dt.Elem())
		if hasID {
			// registered before descending so cycles land on this pointer
			ex.visited[exportKey{id: key, typ: dt}] = out
		}
		if err := ex.exportValue(src, out.Elem(), path); err != nil {
			return err
		}
		dst.Set(out)
		return nil
	}

	switch dt.Kind() {
	case reflect.Struct, reflect.Slice, reflect.Array, reflect.Map:
		if key, ok := identityKey(src); ok {
			if ex.inProgress[key] {
				return newExportError(ErrExportField, path, dt.String(),
					errors.New("cycle reaches a non-pointer field"))
			}
			ex.inProgress[key] = true
			defer delete(ex.inProgress, key)
		}
	}

	switch dt.Kind() {
	case reflect.Struct:
		return ex.exportStruct(src, dst, path)
	case reflect.Slice:
		return ex.exportSlice(src, dst, path)
	case reflect.Array:
		return ex.exportArray(src, dst, path)
	case reflect.Map:
		return ex.exportMap(src, dst, path)
	}

	if convertCompatible(sv.Type(), dt) {
		dst.Set(sv.Convert(dt))
		return nil
	}

	return newExportError(ErrExportField, path, dt.String(),
		fmt.Errorf("cannot convert %s", sv.Type()))
}

func (ex *exporter) exportStruct(src any, dst reflect.Value, path string) error {
	if dst.Type() == timeType {
		if s, ok := src.(string); ok {
			parsed, err := time.Parse(time.RFC3339Nano, s)
			if err != nil {
				return newExportError(ErrExportField, path, "time.Time", err)
			}
			dst.Set(reflect.ValueOf(parsed))
			return nil
		}
		return newExportError(ErrExportField, path, "time.Time",
			fmt.Errorf("cannot convert %s", typeName(src)))
	}

	lookup := memberLookup(src)
	if lookup == nil {
		return newExportError(ErrNotComposite, path, dst.Type().String(), nil)
	}

	for _, f := range structFields(dst.Type()) {
		member, ok := lookup(f.name)
		if !ok {
			// absent members leave the field zero
			continue
		}
		fieldPath := f.name
		if path != "" {
			fieldPath = path + "." + f.name
		}
		if err := ex.exportValue(member, dst.FieldByIndex(f.index), fieldPath); err != nil {
			return err
		}
	}
	return nil
}

func (ex *exporter) exportSlice(src any, dst reflect.Value, path string) error {
	// strings land on byte slices by conversion
	if dst.Type().Elem().Kind() == reflect.Uint8 {
		if s, ok := src.(string); ok {
			bv := reflect.ValueOf([]byte(s))
			if bv.Type().ConvertibleTo(dst.Type()) {
				dst.Set(bv.Convert(dst.Type()))
				return nil
			}
		}
	}

	items, ok := sequenceItems(src)
	if !ok {
		return newExportError(ErrNotComposite, path, dst.Type().String(), nil)
	}

	out := reflect.MakeSlice(dst.Type(), len(items), len(items))
	for i, item := range items {
		if err := ex.exportValue(item, out.Index(i), fmt.Sprintf("%s[%d]", path, i)); err != nil {
			return err
		}
	}
	dst.Set(out)
	return nil
}

func (ex *exporter) exportArray(src any, dst reflect.Value, path string) error {
	items, ok := sequenceItems(src)
	if !ok {
		return newExportError(ErrNotComposite, path, dst.Type().String(), nil)
	}
	if len(items) > dst.Len() {
		return newExportError(ErrExportField, path, dst.Type().String(),
			fmt.Errorf("%d items exceed array length %d", len(items), dst.Len()))
	}
	for i, item := range items {
		if err := ex.exportValue(item, dst.Index(i), fmt.Sprintf("%s[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}

func (ex *exporter) exportMap(src any, dst reflect.Value, path string) error {
	entries, ok := mappingEntries(src)
	if !ok {
		return newExportError(ErrNotComposite, path, dst.Type().String(), nil)
	}

	out := reflect.MakeMapWithSize(dst.Type(), len(entries))
	for _, entry := range entries {
		key := reflect.New(dst.Type().Key()).Elem()
		if err := ex.exportValue(entry.key, key, fmt.Sprintf("%s[%v]", path, entry.key)); err != nil {
			return err
		}
		val := reflect.New(dst.Type().Elem()).Elem()
		if err := ex.exportValue(entry.val, val, fmt.Sprintf("%s[%v]", path, entry.key)); err != nil {
			return err
		}
		out.SetMapIndex(key, val)
	}
	dst.Set(out)
	return nil
}

// memberLookup adapts record-shaped sources to name-based member access.
// Getters resolve through Record.Get, so computed members export as
// snapshots.
func memberLookup(src any) func(string) (any, bool) {
	switch s := src.(type) {
	case *Record:
		return func(name string) (any, bool) { return s.Get(name) }
	case *Mapping:
		return func(name string) (any, bool) { return s.Get(name) }
	case map[string]any:
		return func(name string) (any, bool) {
			v, ok := s[name]
			return v, ok
		}
	}

	rv := reflect.ValueOf(src)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil
		}
		return func(name string) (any, bool) {
			mv := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
			if !mv.IsValid() {
				return nil, false
			}
			return mv.Interface(), true
		}
	case reflect.Pointer:
		if rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
			return nil
		}
		rv = rv.Elem()
		fallthrough
	case reflect.Struct:
		fields := structFields(rv.Type())
		return func(name string) (any, bool) {
			for _, f := range fields {
				if f.name == name {
					return rv.FieldByIndex(f.index).Interface(), true
				}
			}
			return nil, false
		}
	}
	return nil
}

// sequenceItems adapts sequence-shaped sources to a flat item list.
func sequenceItems(src any) ([]any, bool) {
	switch s := src.(type) {
	case *Sequence:
		return s.items, true
	case *Set:
		return s.items, true
	case []any:
		return s, true
	}

	rv := reflect.ValueOf(src)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, true
	}
	return nil, false
}

// mapEntry is one key/value pair drawn from a mapping-shaped source.
type mapEntry struct {
	key any
	val any
}

// mappingEntries adapts mapping-shaped sources to an ordered entry list.
func mappingEntries(src any) ([]mapEntry, bool) {
	if m, ok := src.(*Mapping); ok {
		out := make([]mapEntry, len(m.keys))
		for i := range m.keys {
			out[i] = mapEntry{key: m.keys[i], val: m.vals[i]}
		}
		return out, true
	}

	rv := reflect.ValueOf(src)
	if rv.Kind() == reflect.Map {
		keys := sortedMapKeys(rv)
		out := make([]mapEntry, len(keys))
		for i, k := range keys {
			out[i] = mapEntry{key: k.Interface(), val: rv.MapIndex(k).Interface()}
		}
		return out, true
	}
	return nil, false
}

// convertCompatible limits reflect conversions to value-preserving ones:
// numeric widths may change, named types may drop to their base, strings
// and byte slices interconvert. Cross-kind conversions like integer to
// string are rejected rather than producing rune strings.
func convertCompatible(st, dt reflect.Type) bool {
	if !st.ConvertibleTo(dt) {
		return false
	}
	if isNumericKind(st.Kind()) && isNumericKind(dt.Kind()) {
		return true
	}
	if st.Kind() == dt.Kind() {
		return true
	}
	if st.Kind() == reflect.String && dt.Kind() == reflect.Slice && dt.Elem().Kind() == reflect.Uint8 {
		return true
	}
	if dt.Kind() == reflect.String && st.Kind() == reflect.Slice && st.Elem().Kind() == reflect.Uint8 {
		return true
	}
	return false
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
