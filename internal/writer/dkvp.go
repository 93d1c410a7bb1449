package writer

import (
	"bufio"
	"io"
	"strings"

	"github.com/fieldflow/fieldflow/internal/record"
)

// DKVP writes records in Miller's native delimited-key-value-pairs
// format: "k1=v1,k2=v2\n" — one line per record, no separate header line,
// since every record carries its own keys. A supplemental writer beyond
// spec.md's CSV-only scope (SPEC_FULL.md §11).
type DKVP struct {
	FieldSep rune
	PairSep  rune

	w   *bufio.Writer
	err error
}

// NewDKVP returns a DKVP writer over w with Miller's default separators.
func NewDKVP(w io.Writer) *DKVP {
	return &DKVP{FieldSep: ',', PairSep: '=', w: bufio.NewWriter(w)}
}

// Write implements pipeline.Writer.
func (d *DKVP) Write(rec *record.Record) error {
	if d.err != nil {
		return d.err
	}
	if rec == nil {
		d.err = d.w.Flush()
		return d.err
	}

	var b strings.Builder
	for i, f := range rec.Fields() {
		if i > 0 {
			b.WriteRune(d.FieldSep)
		}
		b.WriteString(f.Key)
		b.WriteRune(d.PairSep)
		b.WriteString(f.Value)
	}
	b.WriteByte('\n')

	_, d.err = d.w.WriteString(b.String())
	return d.err
}

// Error reports any error encountered by a previous Write call.
func (d *DKVP) Error() error { return d.err }
