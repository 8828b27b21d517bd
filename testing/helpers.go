// Package testing provides graph fixtures for mimeo.
package testing

import (
	"github.com/zoobzio/mimeo"
)

// SimpleProfile is a test type with no document tags.
type SimpleProfile struct {
	ID   string
	Name string
}

// Contact is a nested test type reached through a pointer field.
type Contact struct {
	Email string `mimeo:"email"`
	Phone string `mimeo:"phone"`
}

// TaggedProfile demonstrates mimeo tag renames and skips.
type TaggedProfile struct {
	ID      string `mimeo:"id"`
	Name    string `mimeo:"name"`
	Secret  string `mimeo:"-"`
	Contact *Contact
}

// Ring returns n records linked in a cycle through their "next" member.
// Following "next" n times from the returned record arrives back at it.
func Ring(n int) *mimeo.Record {
	if n < 1 {
		panic("testing: ring needs at least one record")
	}

	records := make([]*mimeo.Record, n)
	for i := range records {
		records[i] = mimeo.NewRecord("test.RingNode")
		records[i].Set("seq", i)
	}
	for i := range records {
		records[i].Set("next", records[(i+1)%n])
	}
	return records[0]
}

// SharedLeaf returns a sequence whose two branches reference one leaf
// record, along with that leaf.
func SharedLeaf() (*mimeo.Sequence, *mimeo.Record) {
	leaf := mimeo.NewRecord("test.Leaf")
	leaf.Set("label", "shared")

	left := mimeo.NewSequence("left", leaf)
	right := mimeo.NewSequence("right", leaf)
	return mimeo.NewSequence(left, right), leaf
}

// FrozenCatalog returns a mapping of named sequences with every node
// frozen. Freezing is per node, so each sequence is frozen explicitly.
func FrozenCatalog() *mimeo.Mapping {
	catalog := mimeo.NewMapping()
	catalog.Set("tools", mimeo.NewSequence("hammer", "saw").Freeze())
	catalog.Set("parts", mimeo.NewSequence("bolt", "nut", "washer").Freeze())
	catalog.Freeze()
	return catalog
}

// ComputedRecord returns a record with one stored member and one
// computed member derived from it.
func ComputedRecord() *mimeo.Record {
	rec := mimeo.NewRecord("test.Computed")
	rec.Set("base", 21)
	rec.DefineGetter("doubled", func() any {
		v, _ := rec.Get("base")
		return v.(int) * 2
	})
	return rec
}

// Profile returns a record shaped like TaggedProfile, suitable for
// export round-trips.
func Profile() *mimeo.Record {
	contact := mimeo.NewRecord("test.Contact")
	contact.Set("email", "alice@example.com")
	contact.Set("phone", "555-0100")

	rec := mimeo.NewRecord("test.Profile")
	rec.Set("id", "123")
	rec.Set("name", "Alice")
	rec.Set("Contact", contact)
	return rec
}
