package fieldlist

import "testing"

func TestList_AddAndReset(t *testing.T) {
	l := New()
	l.Add("a")
	l.AddOwned("b")

	if l.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", l.Len())
	}
	entries := l.Entries()
	if entries[0].Value != "a" || entries[0].Owned {
		t.Fatalf("entries[0] = %+v, want borrowed %q", entries[0], "a")
	}
	if entries[1].Value != "b" || !entries[1].Owned {
		t.Fatalf("entries[1] = %+v, want owned %q", entries[1], "b")
	}

	spine := cap(l.entries)
	l.Reset()
	if l.Len() != 0 {
		t.Fatalf("Len() after Reset() = %d, want 0", l.Len())
	}
	if cap(l.entries) != spine {
		t.Fatalf("Reset() reallocated the spine: cap %d, want %d", cap(l.entries), spine)
	}
}
