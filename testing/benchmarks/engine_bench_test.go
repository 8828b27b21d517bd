package benchmarks

import (
	"context"
	"testing"

	"github.com/zoobzio/mimeo"
	"github.com/zoobzio/mimeo/json"
	mimeotest "github.com/zoobzio/mimeo/testing"
)

func wideRecord(n int) *mimeo.Record {
	rec := mimeo.NewRecord("bench.Wide")
	for i := 0; i < n; i++ {
		rec.Set(string(rune('a'+i%26))+string(rune('0'+i/26)), i)
	}
	return rec
}

func deepSequence(depth int) *mimeo.Sequence {
	node := mimeo.NewSequence("leaf")
	for i := 0; i < depth; i++ {
		node = mimeo.NewSequence(i, node)
	}
	return node
}

func BenchmarkClone_WideRecord(b *testing.B) {
	rec := wideRecord(64)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = mimeo.Clone(context.Background(), rec, mimeo.HintDeep)
	}
}

func BenchmarkClone_DeepSequence(b *testing.B) {
	seq := deepSequence(64)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = mimeo.Clone(context.Background(), seq, mimeo.HintDeep)
	}
}

func BenchmarkClone_Shallow(b *testing.B) {
	rec := wideRecord(64)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = mimeo.Clone(context.Background(), rec, mimeo.HintShallow)
	}
}

func BenchmarkClone_Ring(b *testing.B) {
	ring := mimeotest.Ring(64)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = mimeo.Clone(context.Background(), ring, mimeo.HintDeep)
	}
}

func BenchmarkFlatten(b *testing.B) {
	rec := wideRecord(64)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = mimeo.Flatten(context.Background(), rec)
	}
}

func BenchmarkFlatten_MarshalJSON(b *testing.B) {
	c := json.New()
	rec := wideRecord(64)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		flat, _ := mimeo.Flatten(context.Background(), rec)
		_, _ = c.Marshal(flat)
	}
}

func BenchmarkFingerprint(b *testing.B) {
	ring := mimeotest.Ring(64)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = mimeo.Fingerprint(context.Background(), ring)
	}
}

func BenchmarkExport(b *testing.B) {
	profile := mimeotest.Profile()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = mimeo.Export[mimeotest.TaggedProfile](context.Background(), profile)
	}
}
