package trie

import "testing"

// TestMatch_LongestPrefixWins mirrors the teacher's table-driven test style
// (reader_test.go): a slice of named cases run through one assertion loop.
func TestMatch_LongestPrefixWins(t *testing.T) {
	tests := []struct {
		name     string
		patterns map[string]ID
		input    string
		pos      int
		wantID   ID
		wantLen  int
	}{
		{
			name:     "separator wins over nothing",
			patterns: map[string]ID{",": 1},
			input:    ",x\xff",
			pos:      0,
			wantID:   1,
			wantLen:  1,
		},
		{
			name:     "separator-then-eof beats separator alone",
			patterns: map[string]ID{",": 1, ",\xff": 2},
			input:    ",\xff",
			pos:      0,
			wantID:   2,
			wantLen:  2,
		},
		{
			name:     "quote-then-quote beats quote alone",
			patterns: map[string]ID{"\"": 1, "\"\"": 2},
			input:    "\"\"x",
			pos:      0,
			wantID:   2,
			wantLen:  2,
		},
		{
			name:     "no match falls through",
			patterns: map[string]ID{",": 1},
			input:    "ab\xff",
			pos:      0,
			wantID:   NoMatch,
			wantLen:  0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tr := New()
			for p, id := range tc.patterns {
				tr.Add([]byte(p), id)
			}
			data := []byte(tc.input)
			gotID, gotLen := tr.Match(data, tc.pos, len(data)-1)
			if gotID != tc.wantID || gotLen != tc.wantLen {
				t.Fatalf("Match(%q, %d) = (%d, %d), want (%d, %d)",
					tc.input, tc.pos, gotID, gotLen, tc.wantID, tc.wantLen)
			}
		})
	}
}

func TestAdd_DuplicatePatternPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate pattern registration")
		}
	}()
	tr := New()
	tr.Add([]byte(","), 1)
	tr.Add([]byte(","), 2)
}

func TestAdd_EmptyPatternPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on empty pattern registration")
		}
	}()
	tr := New()
	tr.Add(nil, 1)
}

func TestMatch_StopsAtEOFSentinel(t *testing.T) {
	tr := New()
	tr.Add([]byte{EOF}, 99)
	data := []byte{EOF}
	id, n := tr.Match(data, 0, 0)
	if id != 99 || n != 1 {
		t.Fatalf("Match at sentinel = (%d, %d), want (99, 1)", id, n)
	}
}
