// Package csvparse implements the streaming CSV parser described in
// spec.md §4.2: it operates on a writable byte region carrying a one-past-
// end sentinel byte, performs in-place zero-copy field extraction for the
// unquoted case, and handles RFC-4180 quoted fields including embedded
// quote escapes, joining each record against an interned header schema
// (internal/header) or synthesizing positional keys.
//
// Grounded on original_source/c/input/lrec_reader_mmap_csv.c for the exact
// token set, control flow, and ownership rules, on the teacher's zero-copy
// field bookkeeping (field_parser.go/record_builder.go) for how to avoid
// allocating on the unescaped path, and on the pack's swiftcsv reader for
// the unsafe.String/unsafe.SliceData idiom used to build a borrowed string
// view over a byte range without copying it.
package csvparse

import (
	"io"
	"strconv"
	"strings"
	"unsafe"

	"github.com/fieldflow/fieldflow/internal/fieldlist"
	"github.com/fieldflow/fieldflow/internal/header"
	"github.com/fieldflow/fieldflow/internal/record"
	"github.com/fieldflow/fieldflow/internal/strbuilder"
	"github.com/fieldflow/fieldflow/internal/trie"
)

// Token identifiers, one pair of trie per context as spec.md §4.2 requires
// ("two tries are required because the interpretation of every pattern
// changes by context"). Named after original_source's *_STRIDX constants.
type tokenID = trie.ID

const (
	tokEOF tokenID = iota
	tokIRS
	tokIFSEOF
	tokIFS
	tokDQuote
	tokDQuoteIRS
	tokDQuoteIFS
	tokDQuoteEOF
	tokDQuoteDQuote
)

// Source presents a byte region with a sentinel EOF byte one past its
// logical end — the contract both internal/mmapsrc.Region and this
// package's in-memory buffered source satisfy.
type Source interface {
	Bytes() []byte
	EOFIndex() int
}

// Cursor is the per-file scan position into a Source: the parser's
// equivalent of the C reader's file_reader_mmap_state_t.sol. It also owns
// whatever must be released when the file is closed (the mapping, or
// nothing for an in-memory buffer).
type Cursor struct {
	src    Source
	closer io.Closer
	pos    int
}

// Close releases the cursor's underlying resource, if any.
func (c *Cursor) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

// State names the parser's position in spec.md §4.7's state machine.
type State int

const (
	AwaitingHeader State = iota
	AwaitingData
	Done
	Failed
)

// Config selects the CSV wire format: field separator, record separator,
// quote character, and header mode. Zero-value fields fall back to the
// RFC-4180 defaults (spec.md §6).
type Config struct {
	IFS             []byte
	IRS             []byte
	Quote           []byte
	ImplicitHeader  bool
}

func (c Config) normalized() Config {
	if len(c.IFS) == 0 {
		c.IFS = []byte{','}
	}
	if len(c.IRS) == 0 {
		c.IRS = []byte{'\n'}
	}
	if len(c.Quote) == 0 {
		c.Quote = []byte{'"'}
	}
	return c
}

// Parser holds everything that persists across files within one run: the
// configured separators and their token tries, the header-keeper cache,
// the current header, and the reusable field-list/string-builder scratch
// space. Position within a particular file lives in that file's Cursor,
// not here — matching spec.md §3's "a field list is owned by the parser
// for the lifetime of the parser" alongside "header keeper... destroyed
// only when the parser is destroyed."
type Parser struct {
	cfg Config

	outside *trie.Trie
	inside  *trie.Trie

	cache         *header.Cache
	currentHeader *header.Keeper
	expectHeader  bool

	fields *fieldlist.List
	sb     *strbuilder.Builder

	ilno  int64
	state State
}

// New builds a Parser for the given wire-format configuration.
func New(cfg Config) *Parser {
	cfg = cfg.normalized()
	p := &Parser{
		cfg:     cfg,
		outside: trie.New(),
		inside:  trie.New(),
		cache:   header.New(),
		fields:  fieldlist.New(),
		sb:      strbuilder.New(),
	}

	eof := []byte{trie.EOF}
	p.outside.Add(eof, tokEOF)
	p.outside.Add(cfg.IRS, tokIRS)
	p.outside.Add(concat(cfg.IFS, eof), tokIFSEOF)
	p.outside.Add(cfg.IFS, tokIFS)
	p.outside.Add(cfg.Quote, tokDQuote)

	p.inside.Add(eof, tokEOF)
	p.inside.Add(concat(cfg.Quote, cfg.IRS), tokDQuoteIRS)
	p.inside.Add(concat(cfg.Quote, cfg.IFS), tokDQuoteIFS)
	p.inside.Add(concat(cfg.Quote, eof), tokDQuoteEOF)
	p.inside.Add(concat(cfg.Quote, cfg.Quote), tokDQuoteDQuote)

	p.StartOfFile()
	return p
}

func concat(a, b []byte) []byte {
	out := make([]byte, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

// StartOfFile resets the per-file state that spec.md §4.2's "start-of-file
// hook" describes: the input line number and, for explicit-header mode,
// re-arming expect_header_line_next so every file's own header is read.
func (p *Parser) StartOfFile() {
	p.ilno = 0
	p.expectHeader = !p.cfg.ImplicitHeader
	if p.state != Failed {
		if p.cfg.ImplicitHeader {
			p.state = AwaitingData
		} else {
			p.state = AwaitingHeader
		}
	}
}

// State reports the parser's current position in spec.md §4.7's state
// machine.
func (p *Parser) State() State {
	return p.state
}

// OpenBytes wraps an in-memory buffer as a Cursor, used by the
// stream-oriented reader variant (spec.md §6) for sources that are not
// seekable regular files. data must already end with the mmapsrc.Sentinel
// byte: its last byte is always taken as the EOF sentinel, and none is
// appended.
func OpenBytes(data []byte, closer io.Closer) *Cursor {
	return &Cursor{src: bufferSource(data), closer: closer}
}

// OpenSource wraps an already-sentineled Source (e.g. an
// internal/mmapsrc.Region) as a Cursor.
func OpenSource(src Source, closer io.Closer) *Cursor {
	return &Cursor{src: src, closer: closer}
}

type bufferSource []byte

func (b bufferSource) Bytes() []byte { return b }
func (b bufferSource) EOFIndex() int { return len(b) - 1 }

// NextRecord produces the next record from cur, or io.EOF once the file is
// exhausted, or a *SyntaxError on malformed input (terminal: the Parser
// stays Failed, StartOfFile does not clear that state, and any later
// NextRecord call on it panics with an *InvariantError).
func (p *Parser) NextRecord(cur *Cursor, ctx *record.StreamContext) (*record.Record, error) {
	if p.state == Failed {
		panic(&InvariantError{Msg: "NextRecord called after a fatal parse error"})
	}

	if p.expectHeader {
		ok, err := p.scanFields(cur, ctx)
		if err != nil {
			p.state = Failed
			return nil, err
		}
		if !ok {
			p.state = Done
			return nil, io.EOF
		}
		p.ilno++

		keys := make([]string, 0, p.fields.Len())
		for _, e := range p.fields.Entries() {
			if e.Value == "" {
				p.state = Failed
				return nil, &SyntaxError{File: ctx.Filename, Line: p.ilno, Msg: "empty CSV key"}
			}
			// A header keeper can outlive the file it was read from (spec.md
			// §4.4's cache may hand the same keeper to a later file, per S5),
			// so its keys cannot borrow from this file's mapped region the way
			// an ordinary data field does: strings.Clone gives the keeper its
			// own backing, mirroring the C original's header_keeper "retains
			// the input-line backing" comment.
			keys = append(keys, strings.Clone(e.Value))
		}
		p.fields.Reset()

		p.currentHeader = p.cache.Intern(keys)
		p.expectHeader = false
		p.state = AwaitingData
	}

	ok, err := p.scanFields(cur, ctx)
	p.ilno++
	if err != nil {
		p.state = Failed
		return nil, err
	}
	if !ok {
		p.state = Done
		return nil, io.EOF
	}

	var rec *record.Record
	if p.cfg.ImplicitHeader {
		rec = pasteIndicesAndData(p.fields)
	} else {
		rec, err = p.pasteHeaderAndData(ctx)
		if err != nil {
			p.state = Failed
			return nil, err
		}
	}
	p.fields.Reset()
	p.state = AwaitingData
	return rec, nil
}

// HeaderCacheLen reports the number of distinct schemas interned so far,
// the quantity spec.md §8's "schema interning" invariant is stated over.
func (p *Parser) HeaderCacheLen() int {
	return p.cache.Len()
}

// scanFields implements spec.md §4.2's algorithm: repeatedly consume
// fields via the outside/inside-quotes tries until a record terminator
// fires. Returns (false, nil) at legitimate end of input.
func (p *Parser) scanFields(cur *Cursor, ctx *record.StreamContext) (bool, error) {
	data := cur.src.Bytes()
	eofIdx := cur.src.EOFIndex()

	if cur.pos >= eofIdx {
		return false, nil
	}

	quoteLen := len(p.cfg.Quote)
	quote0 := p.cfg.Quote[0]

	p0 := cur.pos
	e := cur.pos
	recordDone := false

	for !recordDone {
		if data[e] != quote0 {
			fieldDone := false
			for !fieldDone {
				id, n := p.outside.Match(data, e, eofIdx)
				if n > 0 {
					switch id {
					case tokEOF:
						data[e] = 0
						p.fields.Add(unsafeString(data[p0:e]))
						p0 = e + n
						fieldDone, recordDone = true, true
					case tokIFSEOF:
						return false, &SyntaxError{File: ctx.Filename, Line: p.ilno + 1, Msg: "record-ending field separator"}
					case tokIFS:
						data[e] = 0
						p.fields.Add(unsafeString(data[p0:e]))
						p0 = e + n
						fieldDone = true
					case tokIRS:
						data[e] = 0
						p.fields.Add(unsafeString(data[p0:e]))
						p0 = e + n
						fieldDone, recordDone = true, true
					case tokDQuote:
						return false, &SyntaxError{File: ctx.Filename, Line: p.ilno + 1, Msg: "unwrapped double quote"}
					default:
						panic(&InvariantError{Msg: "unexpected outside-quotes token"})
					}
					e += n
				} else if e >= eofIdx {
					data[e] = 0
					p.fields.Add(unsafeString(data[p0:e]))
					fieldDone, recordDone = true, true
				} else {
					e++
				}
			}
		} else {
			e += quoteLen
			p0 = e
			contiguous := true
			fieldDone := false
			for !fieldDone {
				id, n := p.inside.Match(data, e, eofIdx)
				if n == 0 {
					if !contiguous {
						p.sb.AppendByte(data[e])
					}
					e++
					continue
				}
				switch id {
				case tokEOF:
					return false, &SyntaxError{File: ctx.Filename, Line: p.ilno + 1, Msg: "imbalanced double-quote"}
				case tokDQuoteEOF, tokDQuoteIFS, tokDQuoteIRS:
					data[e] = 0
					if contiguous {
						p.fields.Add(unsafeString(data[p0:e]))
					} else {
						p.fields.AddOwned(p.sb.Finish())
					}
					p0 = e + n
					fieldDone = true
					if id != tokDQuoteIFS {
						recordDone = true
					}
				case tokDQuoteDQuote:
					// "" is RFC-4180's escape for one literal quote: flush
					// whatever contiguous span precedes it (if this is the
					// first escape seen in this field) and append the single
					// quote byte the pair represents, in both branches —
					// the switch to non-contiguous mode must not itself
					// swallow the quote this token stands for.
					if contiguous {
						p.sb.AppendRange(data, p0, e)
						contiguous = false
					}
					p.sb.AppendByte(quote0)
				default:
					panic(&InvariantError{Msg: "unexpected inside-quotes token"})
				}
				e += n
			}
		}
	}

	cur.pos = e
	return true, nil
}

// unsafeString builds a string view over b without copying, the borrowed
// half of spec.md §4.2's zero-copy ownership rule. b's backing array is
// the mapped (or buffered) source region, whose lifetime is at least that
// of the records referencing it.
func unsafeString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(b), len(b))
}

func pasteIndicesAndData(fields *fieldlist.List) *record.Record {
	entries := fields.Entries()
	rec := record.New(len(entries))
	for i, e := range entries {
		key := strconv.Itoa(i + 1)
		rec.Put(key, e.Value, true, e.Owned)
	}
	return rec
}

func (p *Parser) pasteHeaderAndData(ctx *record.StreamContext) (*record.Record, error) {
	entries := p.fields.Entries()
	keys := p.currentHeader.Keys()
	if len(keys) != len(entries) {
		return nil, &SyntaxError{
			File: ctx.Filename,
			Line: p.ilno,
			Msg:  "header/data length mismatch (" + strconv.Itoa(len(keys)) + " != " + strconv.Itoa(len(entries)) + ")",
		}
	}
	rec := record.New(len(entries))
	for i, e := range entries {
		rec.Put(keys[i], e.Value, false, e.Owned)
	}
	return rec, nil
}
