package mimeo

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/zoobzio/sentinel"
)

func init() {
	// Register the field tag with sentinel
	sentinel.Tag(documentTag)
}

// documentTag is the struct tag consulted when absorbing native structs.
// `mimeo:"name"` renames the field; `mimeo:"-"` drops it.
const documentTag = "mimeo"

// fieldInfo describes one absorbable struct field.
type fieldInfo struct {
	name  string // record member name after tag renames
	index []int  // reflect.Value.FieldByIndex access path
}

// structFields lists the absorbable fields of a struct type in declaration
// order. Unexported fields and fields tagged `mimeo:"-"` are excluded.
func structFields(rt reflect.Type) []fieldInfo {
	meta := lookupMetadata(rt)
	out := make([]fieldInfo, 0, len(meta.Fields))
	for _, field := range meta.Fields {
		name := field.Name
		if val, ok := field.Tags[documentTag]; ok {
			if val == "-" {
				continue
			}
			if alias, _, _ := strings.Cut(val, ","); alias != "" {
				name = alias
			}
		}
		out = append(out, fieldInfo{name: name, index: field.Index})
	}
	return out
}

// lookupMetadata returns struct metadata from sentinel when the type has
// been scanned, falling back to a direct reflection scan otherwise.
func lookupMetadata(rt reflect.Type) sentinel.Metadata {
	if meta, ok := sentinel.Lookup(rt.String()); ok {
		return meta
	}

	meta := sentinel.Metadata{
		TypeName:    rt.Name(),
		PackageName: rt.PkgPath(),
		Fields:      make([]sentinel.FieldMetadata, 0, rt.NumField()),
	}

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}

		fm := sentinel.FieldMetadata{
			Name:        sf.Name,
			Type:        sf.Type.String(),
			ReflectType: sf.Type,
			Index:       sf.Index,
			Tags:        parseDocumentTags(sf.Tag),
		}

		switch sf.Type.Kind() {
		case reflect.Struct:
			fm.Kind = sentinel.KindStruct
		case reflect.Ptr:
			fm.Kind = sentinel.KindPointer
		case reflect.Slice, reflect.Array:
			fm.Kind = sentinel.KindSlice
		case reflect.Map:
			fm.Kind = sentinel.KindMap
		case reflect.Interface:
			fm.Kind = sentinel.KindInterface
		default:
			fm.Kind = sentinel.KindScalar
		}

		meta.Fields = append(meta.Fields, fm)
	}

	return meta
}

// parseDocumentTags extracts the mimeo tag from a struct tag.
func parseDocumentTags(tag reflect.StructTag) map[string]string {
	tags := make(map[string]string)
	if val, ok := tag.Lookup(documentTag); ok {
		tags[documentTag] = val
	}
	return tags
}

// sortedMapKeys returns a native map's keys in a deterministic order so
// traversal position and last-child detection are stable across runs.
func sortedMapKeys(rv reflect.Value) []reflect.Value {
	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return valueLess(keys[i], keys[j])
	})
	return keys
}

// valueLess imposes a total order on map keys: kind first, then the
// natural order within the kind, then a formatted fallback.
func valueLess(a, b reflect.Value) bool {
	if a.Kind() == reflect.Interface {
		a = a.Elem()
	}
	if b.Kind() == reflect.Interface {
		b = b.Elem()
	}
	if a.Kind() != b.Kind() {
		return a.Kind() < b.Kind()
	}

	switch a.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return a.Int() < b.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return a.Uint() < b.Uint()
	case reflect.Float32, reflect.Float64:
		return a.Float() < b.Float()
	case reflect.String:
		return a.String() < b.String()
	case reflect.Bool:
		return !a.Bool() && b.Bool()
	default:
		return fmt.Sprint(a.Interface()) < fmt.Sprint(b.Interface())
	}
}

// refKey identifies a native reference in the visited map. Slices include
// their length so reslices of the same array keep distinct identities.
type refKey struct {
	ptr    uintptr
	length int
	typ    reflect.Type
}

// identityKey returns the visited-map key for v. Document nodes key by
// their own pointer; native pointers, maps, and slices key by referent.
// Values without identity (primitives, structs, arrays) report false and
// are duplicated fresh at every occurrence.
func identityKey(v any) (any, bool) {
	switch v.(type) {
	case nil:
		return nil, false
	case *Sequence, *Mapping, *Set, *Record, *Wrapper:
		return v, true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map:
		if rv.IsNil() {
			return nil, false
		}
		return refKey{ptr: rv.Pointer(), length: -1, typ: rv.Type()}, true
	case reflect.Slice:
		if rv.IsNil() {
			return nil, false
		}
		return refKey{ptr: rv.Pointer(), length: rv.Len(), typ: rv.Type()}, true
	default:
		return nil, false
	}
}

// normalizeNative collapses one level of pointer indirection when the
// referent carries its own identity (slices and maps). Pointers to
// structs, arrays, and primitives keep the pointer: it is the only
// identity their referent has.
func normalizeNative(v any) any {
	switch v.(type) {
	case nil, *Sequence, *Mapping, *Set, *Record, *Wrapper:
		return v
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return v
	}
	switch rv.Type().Elem().Kind() {
	case reflect.Slice, reflect.Map:
		return rv.Elem().Interface()
	}
	return v
}

// unwrapValue returns the primitive behind a wrapper node or a native
// pointer to a primitive.
func unwrapValue(v any) any {
	if w, ok := v.(*Wrapper); ok {
		return w.Value()
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		return rv.Elem().Interface()
	}
	return v
}

// typeName names v's dynamic type for signals and error context.
func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}
