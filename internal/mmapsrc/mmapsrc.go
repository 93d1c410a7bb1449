// Package mmapsrc presents an input file as a contiguous, writable byte
// region with a one-past-end sentinel byte, backed by a private (copy on
// write) memory mapping so that the CSV parser can write field-terminating
// NUL bytes in place without touching the file on disk.
//
// Grounded on the pack's entreya-csvquery mmap scanner (os.Open -> Stat ->
// mmap) adapted from a shared, read-only mapping to a MAP_PRIVATE one sized
// one byte past the file's length. Requesting length = file-size+1 from
// mmap(2) is deliberate: POSIX mmap zero-fills the slack in the final,
// partial page of a mapping that extends past the backing file, so that
// extra byte normally reads as 0 and, being MAP_PRIVATE, is writable
// without ever reaching disk — the same trick the original C reader relied
// on by writing one byte past the mapped file into that slack. When the
// file size is an exact multiple of the page size there is no slack page
// to borrow (the next byte would fall in an entirely unbacked page and
// fault), so that one edge case falls back to a private heap copy instead.
package mmapsrc

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// MapError locates a failure to open or map a source file and wraps the
// underlying error, exposed through Error() and Unwrap().
type MapError struct {
	Filename string
	Err      error
}

func (e *MapError) Error() string {
	return fmt.Sprintf("mmapsrc: %s: %v", e.Filename, e.Err)
}

func (e *MapError) Unwrap() error { return e.Err }

// Sentinel is the byte value written one-past-end of every Region, matching
// internal/trie.EOF so the parser's tries can treat it as an ordinary,
// matchable token.
const Sentinel = 0xFF

// Region is a memory-mapped view of a file, one byte longer than the file
// itself: Bytes()[Len()-1] holds the EOF sentinel and is writable; the rest
// of the mapping mirrors the file's bytes and is writable-private
// (mutations never reach disk).
type Region struct {
	file   *os.File
	mapped []byte // non-nil only when data aliases a real mmap that must be unmapped
	data   []byte // file bytes plus one trailing sentinel byte
}

// Open maps filename MAP_PRIVATE, one byte past its length, and writes the
// sentinel into that extra byte. The returned Region must be closed with
// Close.
func Open(filename string) (*Region, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, &MapError{Filename: filename, Err: err}
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, &MapError{Filename: filename, Err: err}
	}
	size := int(info.Size())
	pageSize := os.Getpagesize()

	r := &Region{file: f}

	if size > 0 && size%pageSize != 0 {
		mapped, err := unix.Mmap(int(f.Fd()), 0, size+1, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE)
		if err != nil {
			f.Close()
			return nil, &MapError{Filename: filename, Err: err}
		}
		r.mapped = mapped
		r.data = mapped
	} else if size > 0 {
		// Page-aligned file: no zero-fill slack to borrow for the sentinel.
		// Map the file read-only for the copy, then release it immediately.
		mapped, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_PRIVATE)
		if err != nil {
			f.Close()
			return nil, &MapError{Filename: filename, Err: err}
		}
		r.data = make([]byte, size+1)
		copy(r.data, mapped)
		unix.Munmap(mapped)
	} else {
		r.data = make([]byte, 1)
	}

	r.data[size] = Sentinel
	return r, nil
}

// Bytes returns the full mapped region: file content followed by the
// sentinel byte at index Len()-1.
func (r *Region) Bytes() []byte {
	return r.data
}

// Len returns the logical length of the region, file bytes plus the one
// sentinel byte.
func (r *Region) Len() int {
	return len(r.data)
}

// EOFIndex is the index of the sentinel byte within the region
// (equivalently, Len()-1).
func (r *Region) EOFIndex() int {
	return len(r.data) - 1
}

// Close unmaps the region (when backed by a real mapping) and closes the
// underlying file.
func (r *Region) Close() error {
	var mapErr error
	if r.mapped != nil {
		mapErr = unix.Munmap(r.mapped)
		r.mapped = nil
	}
	r.data = nil
	closeErr := r.file.Close()
	if mapErr != nil {
		return mapErr
	}
	return closeErr
}
