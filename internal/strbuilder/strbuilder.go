// Package strbuilder accumulates field bytes when zero-copy extraction is
// impossible — the only case in this engine being a quoted CSV field that
// contains an escaped quote ("").
package strbuilder

// initialCapacity mirrors the teacher's STRING_BUILDER_INIT_SIZE-equivalent
// sizing in record_builder.go (recordBuffer pre-reservation), scaled down
// since a single field is being built here rather than a whole record.
const initialCapacity = 64

// Builder accumulates bytes for one escaped field at a time. It is owned by
// the parser for its whole lifetime and reset between fields so its backing
// array is reused; Finish allocates and returns the one owned string that
// actually needs to outlive the call.
type Builder struct {
	buf []byte
}

// New returns a Builder ready to accumulate the first field.
func New() *Builder {
	return &Builder{buf: make([]byte, 0, initialCapacity)}
}

// Reset clears the builder for the next field without releasing capacity.
func (b *Builder) Reset() {
	b.buf = b.buf[:0]
}

// AppendRange copies data[from:to] into the builder, used the first time a
// field switches from contiguous (borrowed) to non-contiguous (owned) mode.
func (b *Builder) AppendRange(data []byte, from, to int) {
	b.buf = append(b.buf, data[from:to]...)
}

// AppendByte appends a single byte, used thereafter for every ordinary byte
// and for the unescaped half of a "" pair.
func (b *Builder) AppendByte(c byte) {
	b.buf = append(b.buf, c)
}

// Finish allocates and returns the accumulated bytes as an owned string,
// then resets the builder for reuse. The caller now owns the string; the
// builder's backing array is not aliased by it.
func (b *Builder) Finish() string {
	s := string(b.buf)
	b.Reset()
	return s
}

// Len reports the number of bytes accumulated so far.
func (b *Builder) Len() int {
	return len(b.buf)
}
