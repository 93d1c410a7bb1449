package mapper

import "github.com/fieldflow/fieldflow/internal/record"

// Rename is a supplemental pass-through verb: it renames fields by an
// old-name to new-name map, leaving values, ownership, and field order
// untouched. Grounded on original_source's mapper_rename.c, one of the
// supplemental verbs SPEC_FULL.md §11 adds.
type Rename struct {
	names map[string]string
}

// NewRename builds a Rename mapper from an old-name->new-name map.
func NewRename(names map[string]string) *Rename {
	return &Rename{names: names}
}

// Process implements pipeline.Mapper.
func (r *Rename) Process(in *record.Record, ctx *record.StreamContext) []*record.Record {
	if in == nil {
		return []*record.Record{nil}
	}
	out := record.New(in.Len())
	for _, f := range in.Fields() {
		key, keyOwned := f.Key, f.KeyOwned
		if newName, ok := r.names[key]; ok {
			key, keyOwned = newName, true
		}
		out.Put(key, f.Value, keyOwned, f.ValueOwned)
	}
	return []*record.Record{out}
}
