// Package pipeline drives one run: opening each source in turn, pulling
// records from a Reader, chaining them through a list of Mappers, and
// handing the survivors to a Writer — finishing with exactly one
// end-of-stream signal per mapper, delivered after all real records from
// every source.
//
// Grounded on original_source/c/stream/stream.c's do_stream_chained /
// do_file_chained_mmap / drive_lrec / chain_map, translated from explicit
// linked lists (sllv_t) and manual memory management into Go slices and
// garbage collection. Reader, Writer and Mapper are satisfied
// structurally: internal/csvparse's MmapReader/StreamReader and
// internal/writer's writers never import this package, avoiding a cycle,
// the same "duck typing instead of a shared interfaces package" choice
// the teacher makes between its Reader and Writer method sets.
package pipeline

import (
	"errors"
	"io"

	"github.com/fieldflow/fieldflow/internal/record"
)

// Reader produces records from one opened source at a time.
type Reader interface {
	// NextRecord returns the next record, or io.EOF once the current
	// source is exhausted, or any other error to abort the run.
	NextRecord() (*record.Record, error)
}

// FileReader is a Reader that can be pointed at a named source in turn —
// the contract internal/csvparse.MmapReader and .StreamReader satisfy.
type FileReader interface {
	Reader
	Close() error
}

// Mapper transforms one record into zero or more output records. A nil
// input record signals end-of-stream (spec.md §8 invariant 5): every
// mapper receives this exactly once, after all real records, and may use
// it to flush any output it deferred (e.g. the ratio mapper, spec.md
// §4.6). On a nil input, Process must append a nil to the end of its
// returned slice (after any flushed records) rather than return an empty
// slice — that trailing nil is what carries the end-of-stream signal on
// to the next mapper in the chain; dropping it strands every mapper
// downstream with no signal to flush on. Mappers run in the order they
// appear in the chain; each mapper's output records feed the next
// mapper's input, recursively (chain_map in the C original).
type Mapper interface {
	Process(in *record.Record, ctx *record.StreamContext) []*record.Record
}

// Writer consumes each record the chain ultimately produces and a final
// nil call to flush any buffering of its own.
type Writer interface {
	Write(rec *record.Record) error
}

// Source names one input to open: a filename, or "" for stdin.
type Source struct {
	Filename string
}

// MmapOpener opens a named file as a FileReader (internal/csvparse.MmapReader).
type MmapOpener func(filename string, fileNum int) (FileReader, error)

// StreamOpener opens an arbitrary io.Reader as a FileReader
// (internal/csvparse.StreamReader wrapping stdin or a non-seekable source).
type StreamOpener func(name string, fileNum int, src io.Reader) (FileReader, error)

// Run drives sources through mappers to writer. Each source with a
// non-empty Filename is opened via mmapOpen (spec.md §6's mmap-backed
// reader); a source with an empty Filename is treated as stdin and opened
// via streamOpen instead, since stdin cannot be memory-mapped; an empty
// sources list reads stdin alone. Run returns false if any source failed
// to open or produced a fatal parse error, matching the original's
// "ok = ... && ok" accumulation. A source that fails to open does not stop
// the remaining ones (spec.md §7's "local recovery is limited to I/O
// errors on subsequent files"); a fatal parse error does: no later source
// is opened, though the end-of-stream drive and the writer's final nil
// call below still run. The second
// return value is the first fatal error encountered across all sources
// (typically a *csvparse.SyntaxError carrying the offending file and input
// line), so the caller can report it per spec.md §7 instead of only
// learning that something, somewhere, failed.
func Run(sources []Source, mmapOpen MmapOpener, streamOpen StreamOpener, stdin io.Reader, mappers []Mapper, writer Writer) (bool, error) {
	ctx := &record.StreamContext{}
	ok := true
	var firstErr error
	parseFailed := false
	// Every source stays open until the end-of-stream drive below has run:
	// a deferred mapper (e.g. mapper.Fraction) retains zero-copy record
	// values that borrow bytes straight out of a source's mmap'd region,
	// and those values aren't read until the final nil flush — closing (and
	// unmapping) a file as soon as its own records are pumped would leave
	// such a mapper holding dangling strings by the time it finally emits
	// them.
	var opened []FileReader

	accumulate := func(r FileReader, thisOK bool, err error) {
		if r != nil {
			opened = append(opened, r)
		}
		ok = thisOK && ok
		if err != nil && firstErr == nil {
			firstErr = err
		}
		// An opened reader that still returned an error failed while
		// parsing, not while opening: that is fatal for the whole run.
		if r != nil && err != nil {
			parseFailed = true
		}
	}

	if len(sources) == 0 {
		ctx.FileNum++
		ctx.Filename = "(stdin)"
		ctx.FNR = 0
		accumulate(runOneStream(streamOpen, stdin, ctx, mappers, writer))
	} else {
		for _, src := range sources {
			ctx.FileNum++
			ctx.Filename = src.Filename
			ctx.FNR = 0
			if src.Filename == "" {
				ctx.Filename = "(stdin)"
				accumulate(runOneStream(streamOpen, stdin, ctx, mappers, writer))
			} else {
				accumulate(runOneFile(mmapOpen, src.Filename, ctx, mappers, writer))
			}
			if parseFailed {
				break
			}
		}
	}

	driveRecord(nil, ctx, mappers, writer)
	writer.Write(nil)

	for _, r := range opened {
		r.Close()
	}

	return ok, firstErr
}

func runOneFile(open MmapOpener, filename string, ctx *record.StreamContext, mappers []Mapper, writer Writer) (FileReader, bool, error) {
	r, err := open(filename, ctx.FileNum)
	if err != nil {
		return nil, false, err
	}
	ok, err := pump(r, ctx, mappers, writer)
	return r, ok, err
}

func runOneStream(open StreamOpener, src io.Reader, ctx *record.StreamContext, mappers []Mapper, writer Writer) (FileReader, bool, error) {
	r, err := open(ctx.Filename, ctx.FileNum, src)
	if err != nil {
		return nil, false, err
	}
	ok, err := pump(r, ctx, mappers, writer)
	return r, ok, err
}

func pump(r Reader, ctx *record.StreamContext, mappers []Mapper, writer Writer) (bool, error) {
	for {
		rec, err := r.NextRecord()
		if errors.Is(err, io.EOF) {
			return true, nil
		}
		if err != nil {
			return false, err
		}
		ctx.NR++
		ctx.FNR++
		driveRecord(rec, ctx, mappers, writer)
	}
}

// driveRecord pushes one record (or nil, at end-of-stream) through the
// mapper chain and writes every surviving output record.
func driveRecord(rec *record.Record, ctx *record.StreamContext, mappers []Mapper, writer Writer) {
	for _, out := range chainMap(rec, ctx, mappers) {
		if out != nil {
			writer.Write(out)
		}
	}
}

// chainMap is chain_map from the C original: mapper[0] processes rec, and
// if there is a mapper[1:] remaining, each of mapper[0]'s outputs is
// recursively pushed through the rest of the chain; the results are
// flattened. Every Mapper is required to append a literal nil to its own
// end-of-stream output (after any records it flushed) rather than return
// an empty slice, so that element — not a special case here — is what
// carries the end-of-stream signal on into mappers[1:]; a mapper that
// flushes nothing at end-of-stream still produces []*record.Record{nil},
// never a truly empty slice.
func chainMap(rec *record.Record, ctx *record.StreamContext, mappers []Mapper) []*record.Record {
	if len(mappers) == 0 {
		if rec == nil {
			return nil
		}
		return []*record.Record{rec}
	}

	outs := mappers[0].Process(rec, ctx)
	if len(mappers) == 1 {
		return outs
	}

	var next []*record.Record
	for _, out := range outs {
		next = append(next, chainMap(out, ctx, mappers[1:])...)
	}
	return next
}
