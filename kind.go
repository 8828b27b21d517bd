package mimeo

import (
	"reflect"
	"regexp"
	"time"
)

// Kind is the closed structural tag over composite values. Classification
// is deterministic and total: every value maps to exactly one Kind.
type Kind int

const (
	// KindPrimitive covers atomic values: nil, booleans, strings, integer
	// and float widths. Primitives are copied by value and never traversed.
	KindPrimitive Kind = iota

	// KindSequence covers ordered, integer-indexed composites: *Sequence
	// and native slices and arrays.
	KindSequence

	// KindMapping covers keyed composites: *Mapping and native maps.
	KindMapping

	// KindSet covers value-deduplicated composites: *Set.
	KindSet

	// KindRecord covers named-field composites: *Record, native structs,
	// and pointers to structs. Unrecognized enumerable values default here.
	KindRecord

	// KindWrapper covers boxed primitives: *Wrapper and native pointers to
	// primitive types.
	KindWrapper

	// KindOpaque covers values copied atomically by a fixed constructor
	// rule (times, regexps, errors, byte blobs) or returned by identity
	// (funcs, chans).
	KindOpaque
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	case KindSet:
		return "set"
	case KindRecord:
		return "record"
	case KindWrapper:
		return "wrapper"
	case KindOpaque:
		return "opaque"
	default:
		return "unknown"
	}
}

// Classify determines the structural kind of v. Wrapper and the opaque
// built-ins are checked before generic Record so that a boxed primitive or
// a time value is never treated as a plain structure. Classification has
// no failure mode; nil references classify as primitives and pass through
// clone verbatim.
func Classify(v any) Kind {
	if v == nil || isNilRef(v) {
		return KindPrimitive
	}

	switch v.(type) {
	case *Sequence:
		return KindSequence
	case *Mapping:
		return KindMapping
	case *Set:
		return KindSet
	case *Record:
		return KindRecord
	case *Wrapper:
		return KindWrapper
	case time.Time, *time.Time, *regexp.Regexp, []byte:
		return KindOpaque
	case bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, uintptr,
		float32, float64, complex64, complex128:
		return KindPrimitive
	}

	if _, ok := v.(error); ok {
		return KindOpaque
	}

	return classifyReflect(reflect.TypeOf(v))
}

// classifyReflect handles native values outside the document model.
func classifyReflect(rt reflect.Type) Kind {
	switch rt.Kind() {
	case reflect.Slice, reflect.Array:
		if rt.Elem().Kind() == reflect.Uint8 {
			return KindOpaque // named byte blobs
		}
		return KindSequence
	case reflect.Map:
		return KindMapping
	case reflect.Struct:
		return KindRecord
	case reflect.Pointer:
		switch rt.Elem().Kind() {
		case reflect.Struct:
			return KindRecord
		case reflect.Slice, reflect.Array:
			return KindSequence
		case reflect.Map:
			return KindMapping
		case reflect.Bool, reflect.String,
			reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
			reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
			return KindWrapper
		default:
			return KindOpaque
		}
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return KindPrimitive
	default:
		// Funcs, chans, unsafe pointers: no enumerable structure. These are
		// copied by identity rather than degraded to empty records.
		return KindOpaque
	}
}

// isPrimitive reports whether v passes through the engine verbatim.
// Typed nil references count: there is nothing to traverse behind them.
func isPrimitive(v any) bool {
	return Classify(v) == KindPrimitive
}

// isNilRef reports whether v is a typed nil pointer, map, slice, func, or
// chan wrapped in a non-nil interface.
func isNilRef(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
