package mapper

import (
	"strconv"

	"github.com/fieldflow/fieldflow/internal/record"
)

// Cat is a supplemental pass-through verb: it prepends a running record
// counter field to every record it sees. Not present in spec.md's core
// three mappers, but a direct, minimally-scoped reading of
// original_source's mapper_cat.c, included as one of the supplemental
// verbs SPEC_FULL.md §11 calls for so the pipeline has more than one
// non-deferred mapper to chain.
type Cat struct {
	fieldName string
	n         int
}

// NewCat builds a Cat mapper. fieldName defaults to "n" if empty.
func NewCat(fieldName string) *Cat {
	if fieldName == "" {
		fieldName = "n"
	}
	return &Cat{fieldName: fieldName}
}

// Process implements pipeline.Mapper. The counter field is inserted
// first by building a fresh record and copying the rest in afterward,
// since Record.Put appends new keys at the end.
func (c *Cat) Process(in *record.Record, ctx *record.StreamContext) []*record.Record {
	if in == nil {
		return []*record.Record{nil}
	}
	c.n++

	out := record.New(in.Len() + 1)
	out.Put(c.fieldName, strconv.Itoa(c.n), true, true)
	for _, f := range in.Fields() {
		out.Put(f.Key, f.Value, f.KeyOwned, f.ValueOwned)
	}
	return []*record.Record{out}
}
