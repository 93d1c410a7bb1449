// Package mapper implements the pipeline's built-in verbs: two-pass
// fraction-of-total, and the pass-through cat/rename verbs.
//
// fraction.go is grounded directly on
// original_source/c/mapping/mapper_fraction.c: a two-pass mapper that
// retains every record on pass one while accumulating per-group sums of
// the fraction fields, then on end-of-stream decorates each retained
// record with a "<field>_fraction" value and emits them all in original
// order, followed by the end-of-stream signal it absorbed.
package mapper

import (
	"strconv"
	"strings"

	"github.com/fieldflow/fieldflow/internal/record"
)

// Fraction is the fraction-of-total (a.k.a. ratio) mapper of spec.md §4.6.
// It never emits anything on pass one; all output is produced in one
// batch on the end-of-stream call.
type Fraction struct {
	fractionFields []string
	groupByFields  []string

	// sums maps a length-prefixed group-by key (or "" if there are no
	// group-by fields — one implicit group) to per-field running sums.
	sums map[string]map[string]float64

	records []*record.Record
}

// NewFraction builds a Fraction mapper. fractionFields must be non-empty;
// groupByFields may be empty, meaning a single implicit group over the
// whole stream.
func NewFraction(fractionFields, groupByFields []string) *Fraction {
	return &Fraction{
		fractionFields: fractionFields,
		groupByFields:  groupByFields,
		sums:           make(map[string]map[string]float64),
	}
}

// Process implements pipeline.Mapper.
func (f *Fraction) Process(in *record.Record, ctx *record.StreamContext) []*record.Record {
	if in != nil {
		f.accumulate(in)
		f.records = append(f.records, in)
		return nil
	}
	return append(f.flush(), nil)
}

func (f *Fraction) groupKey(rec *record.Record) (string, bool) {
	if len(f.groupByFields) == 0 {
		return "", true
	}
	var b strings.Builder
	for _, g := range f.groupByFields {
		v, ok := rec.Get(g)
		if !ok {
			return "", false
		}
		// Length-prefix each part: a group-by field's value is ordinary
		// field content and may itself contain any byte, including a
		// literal NUL, so a plain separator join could conflate two
		// distinct group-by tuples (see internal/header's digest for the
		// same fix applied to header keys).
		b.WriteString(strconv.Itoa(len(v)))
		b.WriteByte(':')
		b.WriteString(v)
	}
	return b.String(), true
}

func (f *Fraction) accumulate(rec *record.Record) {
	key, ok := f.groupKey(rec)
	if !ok {
		return
	}
	group, ok := f.sums[key]
	if !ok {
		group = make(map[string]float64)
		f.sums[key] = group
	}
	for _, name := range f.fractionFields {
		v, ok := rec.Get(name)
		if !ok {
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			continue
		}
		group[name] += n
	}
}

// flush implements pass 2: decorate every retained record with its
// "<field>_fraction" value and return them in original order. Process
// appends the end-of-stream nil itself after calling flush.
//
// The zero-check below is on the numerator (the record's own field
// value), not on the group's sum, matching the original's
// mv_i_nn_ne(&lrec_num_value, &pstate->zero) check exactly: a record
// whose own value is zero gets an error marker even when the group sum
// is a nonzero value that would divide cleanly to 0. This is preserved
// verbatim rather than "fixed" (see DESIGN.md Open Question 2).
func (f *Fraction) flush() []*record.Record {
	out := make([]*record.Record, 0, len(f.records))
	for _, rec := range f.records {
		key, ok := f.groupKey(rec)
		if ok {
			group := f.sums[key]
			for _, name := range f.fractionFields {
				v, ok := rec.Get(name)
				if !ok {
					continue
				}
				n, err := strconv.ParseFloat(v, 64)
				if err != nil {
					continue
				}
				outName := name + "_fraction"
				var outVal string
				if n != 0 {
					outVal = strconv.FormatFloat(n/group[name], 'g', -1, 64)
				} else {
					outVal = "(error)"
				}
				rec.Put(outName, outVal, true, true)
			}
		}
		out = append(out, rec)
	}
	f.records = nil
	f.sums = make(map[string]map[string]float64)
	return out
}
