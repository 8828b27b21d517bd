package mimeo_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/zoobzio/mimeo"
)

func TestFlatten_Sequence(t *testing.T) {
	flat, err := mimeo.Flatten(context.Background(), mimeo.NewSequence("a", 1, true))
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}

	if diff := cmp.Diff([]any{"a", 1, true}, flat); diff != "" {
		t.Errorf("unexpected output (-want +got):\n%s", diff)
	}
}

func TestFlatten_Record(t *testing.T) {
	addr := mimeo.NewRecord("")
	addr.Set("city", "london")

	rec := mimeo.NewRecord("acme.User")
	rec.Set("name", "ada")
	rec.Set("active", true)
	rec.Set("address", addr)
	rec.Set("tags", mimeo.NewSequence("a", "b"))

	flat, err := mimeo.Flatten(context.Background(), rec)
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}

	want := map[string]any{
		"name":    "ada",
		"active":  true,
		"address": map[string]any{"city": "london"},
		"tags":    []any{"a", "b"},
	}
	if diff := cmp.Diff(want, flat); diff != "" {
		t.Errorf("unexpected output (-want +got):\n%s", diff)
	}
}

func TestFlatten_MappingPairs(t *testing.T) {
	m := mimeo.NewMapping()
	m.Set("first", 1)
	m.Set(mimeo.NewSequence("k"), "composite")

	flat, err := mimeo.Flatten(context.Background(), m)
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}

	// pairs traverse both slots, so composite keys collapse too
	want := []any{
		[]any{"first", 1},
		[]any{[]any{"k"}, "composite"},
	}
	if diff := cmp.Diff(want, flat); diff != "" {
		t.Errorf("unexpected output (-want +got):\n%s", diff)
	}
}

func TestFlatten_SetMembers(t *testing.T) {
	flat, err := mimeo.Flatten(context.Background(), mimeo.NewSet(3, 1, 2))
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}

	if diff := cmp.Diff([]any{3, 1, 2}, flat); diff != "" {
		t.Errorf("set should flatten in insertion order (-want +got):\n%s", diff)
	}
}

func TestFlatten_WrapperUnboxes(t *testing.T) {
	flat, err := mimeo.Flatten(context.Background(), mimeo.NewWrapper(42))
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}
	if flat != 42 {
		t.Errorf("Flatten() = %v, want 42", flat)
	}

	flat, err = mimeo.Flatten(context.Background(), mimeo.NewWrapper(mimeo.NewWrapper("x")))
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}
	if flat != "x" {
		t.Errorf("nested wrappers should unbox fully, got %v", flat)
	}

	n := 5
	flat, err = mimeo.Flatten(context.Background(), &n)
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}
	if flat != 5 {
		t.Errorf("a native pointer to a primitive should unbox, got %v", flat)
	}
}

func TestFlatten_GetterSnapshot(t *testing.T) {
	rec := mimeo.NewRecord("")
	rec.Set("base", 21)
	rec.DefineGetter("doubled", func() any {
		v, _ := rec.Get("base")
		return v.(int) * 2
	})

	flat, err := mimeo.Flatten(context.Background(), rec)
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}

	m := flat.(map[string]any)
	if m["doubled"] != 42 {
		t.Errorf("computed member = %v, want 42", m["doubled"])
	}

	rec.Set("base", 50)
	if m["doubled"] != 42 {
		t.Error("earlier flatten output should hold the snapshot")
	}

	flat, err = mimeo.Flatten(context.Background(), rec)
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}
	if flat.(map[string]any)["doubled"] != 100 {
		t.Errorf("fresh flatten should see the new value, got %v", flat.(map[string]any)["doubled"])
	}
}

func TestFlatten_DropsFunctions(t *testing.T) {
	rec := mimeo.NewRecord("")
	rec.Set("keep", "v")
	rec.Set("fn", func() {})

	flat, err := mimeo.Flatten(context.Background(), rec)
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}
	m := flat.(map[string]any)
	if _, ok := m["fn"]; ok {
		t.Error("function members should be omitted, not nulled")
	}
	if m["keep"] != "v" {
		t.Errorf("member keep = %v, want %q", m["keep"], "v")
	}

	// sequences keep their positions, so functions project to nil instead
	flat, err = mimeo.Flatten(context.Background(), mimeo.NewSequence("a", func() {}))
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}
	s := flat.([]any)
	if len(s) != 2 || s[0] != "a" || s[1] != nil {
		t.Errorf("unexpected sequence output %v", s)
	}

	ch := make(chan int)
	flat, err = mimeo.Flatten(context.Background(), mimeo.NewSet("keep", ch))
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}
	if diff := cmp.Diff([]any{"keep"}, flat); diff != "" {
		t.Errorf("channel members should be omitted (-want +got):\n%s", diff)
	}
}

func TestFlatten_OpaqueProjections(t *testing.T) {
	ts := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	re := regexp.MustCompile(`^a+$`)
	src := mimeo.NewSequence(ts, &ts, re, errors.New("bad input"), []byte("raw"))

	flat, err := mimeo.Flatten(context.Background(), src)
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}

	want := []any{
		"2024-05-01T10:30:00Z",
		"2024-05-01T10:30:00Z",
		"^a+$",
		"bad input",
		[]byte("raw"),
	}
	if diff := cmp.Diff(want, flat); diff != "" {
		t.Errorf("unexpected output (-want +got):\n%s", diff)
	}
}

func TestFlatten_FrozenFlagsDropped(t *testing.T) {
	src := mimeo.NewSequence("a", mimeo.NewSequence("b").Freeze()).Freeze()

	flat, err := mimeo.Flatten(context.Background(), src)
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}

	if diff := cmp.Diff([]any{"a", []any{"b"}}, flat); diff != "" {
		t.Errorf("frozen graphs should flatten to plain data (-want +got):\n%s", diff)
	}
}

func TestFlatten_SharedStructureAliased(t *testing.T) {
	leaf := mimeo.NewRecord("")
	leaf.Set("label", "shared")
	root := mimeo.NewSequence(leaf, leaf)

	flat, err := mimeo.Flatten(context.Background(), root)
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}

	s := flat.([]any)
	m0 := s[0].(map[string]any)
	m1 := s[1].(map[string]any)
	m0["probe"] = "x"
	if m1["probe"] != "x" {
		t.Error("shared nodes should flatten to aliased output")
	}
}

func TestFlatten_CycleAliased(t *testing.T) {
	seq := mimeo.NewSequence()
	seq.Append(seq)

	flat, err := mimeo.Flatten(context.Background(), seq)
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}

	s := flat.([]any)
	if len(s) != 1 {
		t.Fatalf("output length = %d, want 1", len(s))
	}
	inner, ok := s[0].([]any)
	if !ok {
		t.Fatalf("output item = %T, want []any", s[0])
	}
	inner[0] = "probe"
	if s[0] != "probe" {
		t.Error("cyclic flatten output should alias itself")
	}
}

func TestFlatten_NativeValues(t *testing.T) {
	u := apiUser{ID: "u1", Email: "u1@example.com", Admin: true, Score: 3}
	flat, err := mimeo.Flatten(context.Background(), u)
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}
	want := map[string]any{"id": "u1", "email": "u1@example.com", "Score": 3}
	if diff := cmp.Diff(want, flat); diff != "" {
		t.Errorf("unexpected struct output (-want +got):\n%s", diff)
	}

	flat, err = mimeo.Flatten(context.Background(), map[string]int{"b": 2, "a": 1})
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}
	wantPairs := []any{[]any{"a", 1}, []any{"b", 2}}
	if diff := cmp.Diff(wantPairs, flat); diff != "" {
		t.Errorf("unexpected map output (-want +got):\n%s", diff)
	}

	flat, err = mimeo.Flatten(context.Background(), []int{1, 2})
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}
	if diff := cmp.Diff([]any{1, 2}, flat); diff != "" {
		t.Errorf("unexpected slice output (-want +got):\n%s", diff)
	}
}

type manualFlat struct{}

func (manualFlat) Flatten() (any, error) {
	return map[string]any{"custom": true}, nil
}

func TestFlattenable_Interface(_ *testing.T) {
	var _ mimeo.Flattenable = manualFlat{}
}

func TestFlattenable_Override(t *testing.T) {
	flat, err := mimeo.Flatten(context.Background(), manualFlat{})
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}
	if flat.(map[string]any)["custom"] != true {
		t.Errorf("Flatten() = %v, want the handler result", flat)
	}

	flat, err = mimeo.Flatten(context.Background(), mimeo.NewSequence(manualFlat{}))
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}
	s := flat.([]any)
	if s[0].(map[string]any)["custom"] != true {
		t.Errorf("nested override result = %v, want the handler result", s[0])
	}
}

func TestFlatten_DeepGraphIterative(t *testing.T) {
	root := mimeo.NewSequence()
	cur := root
	for i := 0; i < 5000; i++ {
		next := mimeo.NewSequence()
		cur.Append(next)
		cur = next
	}
	cur.Append("bottom")

	flat, err := mimeo.Flatten(context.Background(), root)
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}

	level := flat.([]any)
	depth := 0
	for {
		if len(level) != 1 {
			t.Fatalf("level %d has %d items, want 1", depth, len(level))
		}
		next, ok := level[0].([]any)
		if !ok {
			break
		}
		level = next
		depth++
	}
	if depth != 5000 {
		t.Errorf("walked %d levels, want 5000", depth)
	}
	if level[0] != "bottom" {
		t.Errorf("deepest item = %v, want %q", level[0], "bottom")
	}
}
