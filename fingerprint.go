package mimeo

import (
	"context"
	"encoding/hex"
	"fmt"
	"hash"
	"math"
	"reflect"
	"regexp"
	"time"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint returns a hex-encoded BLAKE2b-256 digest of v's structure
// and values. The digest is stable across runs and identical for
// structurally equal graphs: node kinds, member order, frozen flags,
// sharing, and cycles all contribute, while reference addresses do not.
// Native values digest as their absorbed document form, so a native
// slice and an equivalent Sequence produce the same digest.
func (e *Engine) Fingerprint(ctx context.Context, v any) (string, error) {
	start := time.Now()
	emitFingerprintStart(ctx, typeName(v))

	var retErr error
	var digest string
	defer func() {
		emitFingerprintComplete(ctx, typeName(v), digest, time.Since(start), retErr)
	}()

	h, err := blake2b.New256(nil)
	if err != nil {
		retErr = err
		return "", retErr
	}

	f := &fingerprinter{h: h, seen: make(map[any]int)}
	f.writeValue(v)

	digest = hex.EncodeToString(h.Sum(nil))
	return digest, nil
}

// Fingerprint digests v using the default engine.
func Fingerprint(ctx context.Context, v any) (string, error) {
	return defaultEngine.Fingerprint(ctx, v)
}

// fingerprinter streams a canonical encoding of a graph into a hash.
// Values with identity are numbered in first-visit order; revisits encode
// as back references, which keeps cyclic graphs finite and makes shared
// versus repeated substructure distinguishable.
type fingerprinter struct {
	h    hash.Hash
	seen map[any]int
}

func (f *fingerprinter) writeValue(v any) {
	v = normalizeNative(v)

	if k, ok := identityKey(v); ok {
		if id, visited := f.seen[k]; visited {
			fmt.Fprintf(f.h, "@%d.", id)
			return
		}
		f.seen[k] = len(f.seen)
	}

	switch Classify(v) {
	case KindPrimitive:
		f.writePrimitive(v)
	case KindOpaque:
		f.writeOpaque(v)
	case KindWrapper:
		f.writeHeader('W', IsFrozen(v), 1)
		f.writeValue(unwrapValue(v))
		fmt.Fprint(f.h, ")")
	case KindSequence:
		f.writeSequence(v)
	case KindMapping:
		f.writeMapping(v)
	case KindSet:
		n := v.(*Set)
		f.writeHeader('T', n.frozen, len(n.items))
		for _, item := range n.items {
			f.writeValue(item)
		}
		fmt.Fprint(f.h, ")")
	case KindRecord:
		f.writeRecord(v)
	}
}

// writeHeader opens a composite: kind letter, frozen marker, child count.
func (f *fingerprinter) writeHeader(kind byte, frozen bool, count int) {
	if frozen {
		fmt.Fprintf(f.h, "%c!%d(", kind, count)
		return
	}
	fmt.Fprintf(f.h, "%c%d(", kind, count)
}

// writePrimitive encodes by underlying kind, so named primitive types
// digest equal to their base values.
func (f *fingerprinter) writePrimitive(v any) {
	if v == nil || isNilRef(v) {
		fmt.Fprint(f.h, "Z.")
		return
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		if rv.Bool() {
			fmt.Fprint(f.h, "B1.")
		} else {
			fmt.Fprint(f.h, "B0.")
		}
	case reflect.String:
		s := rv.String()
		fmt.Fprintf(f.h, "S%d:%s", len(s), s)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		fmt.Fprintf(f.h, "I%d.", rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		fmt.Fprintf(f.h, "U%d.", rv.Uint())
	case reflect.Float32, reflect.Float64:
		fmt.Fprintf(f.h, "F%x.", math.Float64bits(rv.Float()))
	case reflect.Complex64, reflect.Complex128:
		c := rv.Complex()
		fmt.Fprintf(f.h, "C%x,%x.", math.Float64bits(real(c)), math.Float64bits(imag(c)))
	default:
		fmt.Fprintf(f.h, "P%s.", typeName(v))
	}
}

func (f *fingerprinter) writeOpaque(v any) {
	switch o := v.(type) {
	case time.Time:
		fmt.Fprintf(f.h, "D%s.", o.Format(time.RFC3339Nano))
		return
	case *time.Time:
		fmt.Fprintf(f.h, "D%s.", o.Format(time.RFC3339Nano))
		return
	case *regexp.Regexp:
		p := o.String()
		fmt.Fprintf(f.h, "X%d:%s", len(p), p)
		return
	case []byte:
		fmt.Fprintf(f.h, "Y%d:", len(o))
		f.h.Write(o)
		return
	}

	if err, ok := v.(error); ok {
		msg := err.Error()
		fmt.Fprintf(f.h, "E%d:%s", len(msg), msg)
		return
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
		fmt.Fprintf(f.h, "Y%d:", rv.Len())
		f.h.Write(rv.Bytes())
		return
	}

	// Funcs, chans, and other non-data opaques digest by type only:
	// their addresses are not stable across runs.
	fmt.Fprintf(f.h, "O%s.", typeName(v))
}

func (f *fingerprinter) writeSequence(v any) {
	if n, ok := v.(*Sequence); ok {
		f.writeHeader('Q', n.frozen, len(n.items))
		for _, item := range n.items {
			f.writeValue(item)
		}
		fmt.Fprint(f.h, ")")
		return
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	f.writeHeader('Q', false, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		f.writeValue(rv.Index(i).Interface())
	}
	fmt.Fprint(f.h, ")")
}

func (f *fingerprinter) writeMapping(v any) {
	if n, ok := v.(*Mapping); ok {
		f.writeHeader('M', n.frozen, len(n.keys))
		for i, k := range n.keys {
			f.writeValue(k)
			f.writeValue(n.vals[i])
		}
		fmt.Fprint(f.h, ")")
		return
	}

	rv := reflect.ValueOf(v)
	keys := sortedMapKeys(rv)
	f.writeHeader('M', false, len(keys))
	for _, k := range keys {
		f.writeValue(k.Interface())
		f.writeValue(rv.MapIndex(k).Interface())
	}
	fmt.Fprint(f.h, ")")
}

func (f *fingerprinter) writeRecord(v any) {
	if n, ok := v.(*Record); ok {
		fmt.Fprintf(f.h, "R%d:%s", len(n.tag), n.tag)
		f.writeHeader('R', n.frozen, len(n.names))
		for _, name := range n.names {
			fmt.Fprintf(f.h, "N%d:%s", len(name), name)
			// Get evaluates computed members, so digests cover values
			member, _ := n.Get(name)
			f.writeValue(member)
		}
		fmt.Fprint(f.h, ")")
		return
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	tag := rv.Type().String()
	fields := structFields(rv.Type())
	fmt.Fprintf(f.h, "R%d:%s", len(tag), tag)
	f.writeHeader('R', false, len(fields))
	for _, fd := range fields {
		fmt.Fprintf(f.h, "N%d:%s", len(fd.name), fd.name)
		f.writeValue(rv.FieldByIndex(fd.index).Interface())
	}
	fmt.Fprint(f.h, ")")
}
