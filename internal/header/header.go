// Package header implements the header-keeper cache: interning of the
// ordered key sequence observed on a CSV header line so every data record
// under that schema shares one stable, long-lived key list.
//
// Grounded on original_source/c/input/lrec_reader_mmap_csv.c's
// pheader_keepers hash map (lhmslv_t keyed by the header's slls_t), with
// the C original's documented double-reference problem (the key sequence
// is stored both as the hash map's key and inside the header_keeper,
// resolved there by nullifying map keys before freeing to dodge a double
// free) resolved the Go way: the Keeper owns the one canonical []string:
// the cache's map key is a separately computed digest string, never a
// second reference to that slice, so there is nothing to free twice and no
// nullification trick is needed (see DESIGN.md Open Question 1).
package header

import (
	"strconv"
	"strings"
)

// Keeper is an interned header schema: an ordered, owned key sequence.
// Immutable after construction.
type Keeper struct {
	keys []string
}

// Keys returns the keeper's key sequence. Data records under this schema
// borrow these strings directly; the returned slice must not be mutated.
func (k *Keeper) Keys() []string {
	return k.keys
}

// Len reports the number of keys in the schema.
func (k *Keeper) Len() int {
	return len(k.keys)
}

// Cache interns Keepers by content-equal key sequence: at most one Keeper
// exists per distinct schema observed over the cache's lifetime (spec.md
// §4.4's invariant). Insertion order is not tracked; it is irrelevant.
type Cache struct {
	byDigest map[string]*Keeper
}

// New returns an empty Cache.
func New() *Cache {
	return &Cache{byDigest: make(map[string]*Keeper)}
}

// Intern looks up keys by content. On a hit the existing Keeper is
// returned and keys is not retained. On a miss, a new Keeper owning keys is
// created, cached, and returned — the caller must not mutate keys
// afterward, ownership has passed to the Cache.
func (c *Cache) Intern(keys []string) *Keeper {
	digest := digest(keys)
	if k, ok := c.byDigest[digest]; ok {
		return k
	}
	k := &Keeper{keys: keys}
	c.byDigest[digest] = k
	return k
}

// Len reports the number of distinct schemas interned so far — the
// quantity spec.md §8's "schema interning" invariant is stated in terms of.
func (c *Cache) Len() int {
	return len(c.byDigest)
}

// digest builds an unambiguous encoding of the key sequence: each key is
// prefixed with its own byte length, so two distinct sequences can never
// collide to the same digest regardless of what bytes a key contains — a
// plain separator-joined digest would collide if a key's own bytes ever
// contained the separator, and header keys are ordinary field content
// (spec.md §4.2's zero-copy borrow does not filter or forbid any byte
// value, including a literal NUL from the source file).
func digest(keys []string) string {
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(strconv.Itoa(len(k)))
		b.WriteByte(':')
		b.WriteString(k)
	}
	return b.String()
}
