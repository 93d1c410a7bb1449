// Package fieldlist implements the reusable, ownership-tagged field list
// the parser fills in while scanning one record's worth of fields.
//
// Grounded on the teacher's per-record bookkeeping (record_builder.go's
// recordBuffer/fieldEnds reuse-without-reallocation pattern) generalized
// from "string produced once per record" to "each field individually
// tagged borrowed or owned", matching this engine's zero-copy contract
// (spec.md §3 field list, §9 ownership-typed field-list entry).
package fieldlist

// Entry is one field: either a borrowed view into the source region
// (Owned == false, lifetime bound to that region) or a freshly allocated
// string built while unescaping a quoted field (Owned == true).
type Entry struct {
	Value string
	Owned bool
}

// List is a reusable sequence of Entry, reset between records without
// releasing its backing array so repeated records reuse capacity — the
// same "spine survives, contents reset" idiom the teacher applies to
// recordBuffer/fieldEnds.
type List struct {
	entries []Entry
}

// New returns an empty List with a small initial spine, sized the way the
// teacher pre-sizes record slices (NewReader's record: make([]string, 0, 16)
// in the swiftcsv-style readers this was generalized from).
func New() *List {
	return &List{entries: make([]Entry, 0, 16)}
}

// Add appends a borrowed field (value's bytes live in the source region).
func (l *List) Add(value string) {
	l.entries = append(l.entries, Entry{Value: value})
}

// AddOwned appends an owned field (value was freshly allocated).
func (l *List) AddOwned(value string) {
	l.entries = append(l.entries, Entry{Value: value, Owned: true})
}

// Len reports the number of fields accumulated for the current record.
func (l *List) Len() int {
	return len(l.entries)
}

// Entries exposes the accumulated fields in order. The returned slice is
// only valid until the next call to Reset.
func (l *List) Entries() []Entry {
	return l.entries
}

// Reset clears the list for the next record while keeping its capacity.
func (l *List) Reset() {
	l.entries = l.entries[:0]
}
