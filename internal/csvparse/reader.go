package csvparse

import (
	"io"

	"github.com/fieldflow/fieldflow/internal/mmapsrc"
	"github.com/fieldflow/fieldflow/internal/record"
)

// mmapSource adapts *mmapsrc.Region to the Source interface so parser.go
// never needs to import mmapsrc directly.
type mmapSource struct{ r *mmapsrc.Region }

func (m mmapSource) Bytes() []byte { return m.r.Bytes() }
func (m mmapSource) EOFIndex() int { return m.r.EOFIndex() }

// MmapReader is the seekable-file Reader variant of spec.md §6: each
// source file is memory-mapped, parsed in place, and unmapped on Close.
// It satisfies internal/pipeline's Reader contract structurally — this
// package never imports internal/pipeline, to avoid a cycle (pipeline
// accepts any type with this method set).
type MmapReader struct {
	parser *Parser
	cur    *Cursor
	ctx    record.StreamContext
}

// NewMmapReader builds an MmapReader for the given wire-format config.
func NewMmapReader(cfg Config) *MmapReader {
	return &MmapReader{parser: New(cfg)}
}

// Open memory-maps filename and starts a new file in the parser's header
// state machine (spec.md §4.7: explicit-header mode expects a fresh
// header line per file).
func (r *MmapReader) Open(filename string, fileNum int) error {
	region, err := mmapsrc.Open(filename)
	if err != nil {
		return err
	}
	r.cur = OpenSource(mmapSource{region}, region)
	r.parser.StartOfFile()
	r.ctx = record.StreamContext{Filename: filename, FileNum: fileNum}
	return nil
}

// NextRecord returns the next record from the currently open file, io.EOF
// at end of file, or a *SyntaxError on malformed input.
func (r *MmapReader) NextRecord() (*record.Record, error) {
	rec, err := r.parser.NextRecord(r.cur, &r.ctx)
	if err != nil {
		return nil, err
	}
	r.ctx.NR++
	r.ctx.FNR++
	return rec, nil
}

// Context reports the stream position (filename, NR, FNR) of the most
// recently returned record.
func (r *MmapReader) Context() record.StreamContext { return r.ctx }

// Close unmaps the current file.
func (r *MmapReader) Close() error {
	if r.cur == nil {
		return nil
	}
	err := r.cur.Close()
	r.cur = nil
	return err
}

// StreamReader is the arbitrary-io.Reader variant of spec.md §6: used for
// stdin and other non-seekable sources, which cannot be memory-mapped. The
// source is buffered fully into memory with an appended sentinel byte, and
// the same zero-copy parsing core as MmapReader runs over that buffer.
type StreamReader struct {
	parser *Parser
	cur    *Cursor
	ctx    record.StreamContext
}

// NewStreamReader builds a StreamReader for the given wire-format config.
func NewStreamReader(cfg Config) *StreamReader {
	return &StreamReader{parser: New(cfg)}
}

// Open reads src fully into memory, appends the sentinel byte, and starts
// a new file in the parser's header state machine.
func (r *StreamReader) Open(name string, fileNum int, src io.Reader) error {
	buf, err := io.ReadAll(src)
	if err != nil {
		return err
	}
	data := make([]byte, len(buf)+1)
	copy(data, buf)
	data[len(buf)] = mmapsrc.Sentinel

	r.cur = OpenBytes(data, nil)
	r.parser.StartOfFile()
	r.ctx = record.StreamContext{Filename: name, FileNum: fileNum}
	return nil
}

// NextRecord returns the next record from the buffered source, io.EOF at
// end of input, or a *SyntaxError on malformed input.
func (r *StreamReader) NextRecord() (*record.Record, error) {
	rec, err := r.parser.NextRecord(r.cur, &r.ctx)
	if err != nil {
		return nil, err
	}
	r.ctx.NR++
	r.ctx.FNR++
	return rec, nil
}

// Context reports the stream position of the most recently returned
// record.
func (r *StreamReader) Context() record.StreamContext { return r.ctx }

// Close releases the buffered source (a no-op; nothing needs to be freed
// beyond letting the GC reclaim the buffer).
func (r *StreamReader) Close() error {
	if r.cur == nil {
		return nil
	}
	return r.cur.Close()
}
