package writer

import (
	"strings"
	"testing"

	"github.com/fieldflow/fieldflow/internal/record"
)

func rec(kv ...string) *record.Record {
	r := record.New(len(kv) / 2)
	for i := 0; i < len(kv); i += 2 {
		r.Put(kv[i], kv[i+1], false, false)
	}
	return r
}

func TestCSV_WritesHeaderOnce(t *testing.T) {
	var buf strings.Builder
	w := NewCSV(&buf)

	w.Write(rec("a", "1", "b", "2"))
	w.Write(rec("a", "3", "b", "4"))
	w.Write(nil)

	want := "a,b\n1,2\n3,4\n"
	if buf.String() != want {
		t.Fatalf("output = %q, want %q", buf.String(), want)
	}
}

func TestCSV_ReprintsHeaderOnSchemaChange(t *testing.T) {
	var buf strings.Builder
	w := NewCSV(&buf)

	w.Write(rec("a", "1"))
	w.Write(rec("x", "2", "y", "3"))
	w.Write(nil)

	want := "a\n1\nx,y\n2,3\n"
	if buf.String() != want {
		t.Fatalf("output = %q, want %q", buf.String(), want)
	}
}

func TestCSV_QuotesFieldsContainingSeparatorsOrQuotes(t *testing.T) {
	var buf strings.Builder
	w := NewCSV(&buf)

	w.Write(rec("k", `a,b`))
	w.Write(rec("k", `x"y`))
	w.Write(nil)

	want := "k\n\"a,b\"\n\"x\"\"y\"\n"
	if buf.String() != want {
		t.Fatalf("output = %q, want %q", buf.String(), want)
	}
}
