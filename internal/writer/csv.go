// Package writer implements the pipeline's two output formats: CSV and
// DKVP (delimited key-value pairs, Miller's native format).
//
// csv.go is adapted from the teacher's writer.go (field quoting and line
// termination), with the SIMD fast paths dropped — this package runs on
// values already materialized as fields.Value strings, not the teacher's
// whole-buffer byte regions, so there is no bulk data to vectorize over —
// and with the field-level io.Writer extended to a record-level one that
// detects schema changes between records and reprints the header line
// when the key sequence changes, matching spec.md §6's CSV writer
// contract.
package writer

import (
	"bufio"
	"io"

	"github.com/fieldflow/fieldflow/internal/record"
)

// CSV writes records as RFC-4180 CSV, printing a new header line whenever
// the incoming record's key sequence differs from the previous one.
type CSV struct {
	Comma   rune
	UseCRLF bool

	w        *bufio.Writer
	lastKeys []string
	err      error
}

// NewCSV returns a CSV writer over w with the default field delimiter.
func NewCSV(w io.Writer) *CSV {
	return &CSV{Comma: ',', w: bufio.NewWriter(w)}
}

// Write implements pipeline.Writer. A nil record flushes any buffered
// output; callers must call Write(nil) exactly once, at the end of the
// run.
func (c *CSV) Write(rec *record.Record) error {
	if c.err != nil {
		return c.err
	}
	if rec == nil {
		c.err = c.w.Flush()
		return c.err
	}

	if c.schemaChanged(rec) {
		keys := make([]string, rec.Len())
		for i, f := range rec.Fields() {
			keys[i] = f.Key
		}
		if err := c.writeLine(keys); err != nil {
			return err
		}
		c.lastKeys = keys
	}

	values := make([]string, rec.Len())
	for i, f := range rec.Fields() {
		values[i] = f.Value
	}
	return c.writeLine(values)
}

func (c *CSV) schemaChanged(rec *record.Record) bool {
	if len(c.lastKeys) != rec.Len() {
		return true
	}
	for i, f := range rec.Fields() {
		if c.lastKeys[i] != f.Key {
			return true
		}
	}
	return false
}

func (c *CSV) writeLine(fields []string) error {
	for i, field := range fields {
		if i > 0 {
			if _, c.err = c.w.WriteRune(c.Comma); c.err != nil {
				return c.err
			}
		}
		if c.err = c.writeField(field); c.err != nil {
			return c.err
		}
	}
	if c.UseCRLF {
		_, c.err = c.w.WriteString("\r\n")
	} else {
		c.err = c.w.WriteByte('\n')
	}
	return c.err
}

func (c *CSV) writeField(field string) error {
	if !c.fieldNeedsQuotes(field) {
		_, err := c.w.WriteString(field)
		return err
	}
	if err := c.w.WriteByte('"'); err != nil {
		return err
	}
	for _, r := range field {
		if r == '"' {
			if _, err := c.w.WriteString(`""`); err != nil {
				return err
			}
			continue
		}
		if _, err := c.w.WriteRune(r); err != nil {
			return err
		}
	}
	return c.w.WriteByte('"')
}

func (c *CSV) fieldNeedsQuotes(field string) bool {
	if len(field) == 0 {
		return false
	}
	if field[0] == ' ' || field[0] == '\t' {
		return true
	}
	for _, r := range field {
		if r == c.Comma || r == '\n' || r == '\r' || r == '"' {
			return true
		}
	}
	return false
}

// Error reports any error encountered by a previous Write call.
func (c *CSV) Error() error { return c.err }
