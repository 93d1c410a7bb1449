package mapper

import "testing"

func TestRename_RenamesMappedKeysOnly(t *testing.T) {
	r := NewRename(map[string]string{"a": "x"})
	out := r.Process(newRec(t, "a", "1", "b", "2"), nil)[0]

	if v, ok := out.Get("x"); !ok || v != "1" {
		t.Fatalf("Get(x) = (%q, %v), want (1, true)", v, ok)
	}
	if v, ok := out.Get("b"); !ok || v != "2" {
		t.Fatalf("unmapped key b should survive unchanged, got (%q, %v)", v, ok)
	}
	if _, ok := out.Get("a"); ok {
		t.Fatalf("renamed key a should no longer be present")
	}
}

func TestRename_OnlyRenamedKeysAreMarkedOwned(t *testing.T) {
	r := NewRename(map[string]string{"a": "x"})
	out := r.Process(newRec(t, "a", "1", "b", "2"), nil)[0]

	for _, f := range out.Fields() {
		switch f.Key {
		case "x":
			if !f.KeyOwned {
				t.Fatalf("renamed key x should be marked owned (freshly allocated)")
			}
		case "b":
			if f.KeyOwned {
				t.Fatalf("untouched key b should keep its original KeyOwned=false, not be relabeled owned")
			}
		default:
			t.Fatalf("unexpected field key %q", f.Key)
		}
	}
}

func TestRename_EndOfStreamEmitsNilSentinel(t *testing.T) {
	r := NewRename(nil)
	out := r.Process(nil, nil)
	if len(out) != 1 || out[0] != nil {
		t.Fatalf("Process(nil) = %v, want []*record.Record{nil}", out)
	}
}
