package header

import "testing"

func TestCache_InternDedups(t *testing.T) {
	c := New()
	k1 := c.Intern([]string{"a", "b", "c"})
	k2 := c.Intern([]string{"a", "b", "c"})

	if k1 != k2 {
		t.Fatalf("Intern() returned distinct Keepers for the same schema")
	}
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
}

func TestCache_InternDistinguishesSchemas(t *testing.T) {
	c := New()
	c.Intern([]string{"a", "b"})
	c.Intern([]string{"a", "b", "c"})
	c.Intern([]string{"x", "y"})

	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}
}

func TestCache_KeySequenceOrderMatters(t *testing.T) {
	c := New()
	k1 := c.Intern([]string{"a", "b"})
	k2 := c.Intern([]string{"b", "a"})
	if k1 == k2 {
		t.Fatalf("Intern() conflated schemas that differ only in key order")
	}
}

func TestKeeper_KeysSurviveCacheMutation(t *testing.T) {
	c := New()
	k := c.Intern([]string{"a", "b"})
	c.Intern([]string{"c", "d"})

	if len(k.Keys()) != 2 || k.Keys()[0] != "a" || k.Keys()[1] != "b" {
		t.Fatalf("Keys() = %v, want [a b]", k.Keys())
	}
}

// A CSV header key can legitimately contain a NUL byte (it is ordinary
// field content, not something the parser filters out), so a digest that
// joined keys with a NUL separator could conflate two different schemas
// whenever a key itself happened to contain one. The length-prefixed digest
// must keep these distinct.
func TestCache_InternDistinguishesSchemasWithNULInKeyContent(t *testing.T) {
	c := New()
	k1 := c.Intern([]string{"a\x00b"})
	k2 := c.Intern([]string{"a", "b"})

	if k1 == k2 {
		t.Fatalf("Intern() conflated [%q] with [a b] via a NUL-separated digest collision", "a\x00b")
	}
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
}
