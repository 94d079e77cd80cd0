package patch

import "testing"

func TestFindContext(t *testing.T) {
	t.Parallel()

	lines := []string{"alpha", "beta  ", "  gamma", "alpha", "beta"}
	tests := []struct {
		name      string
		context   []string
		start     int
		eof       bool
		wantIndex int
		wantFuzz  int
	}{
		{name: "empty context", context: nil, start: 2, wantIndex: 2, wantFuzz: FuzzExact},
		{name: "exact", context: []string{"alpha", "beta"}, start: 0, wantIndex: 3, wantFuzz: FuzzExact},
		{name: "trailing whitespace", context: []string{"beta", "  gamma"}, start: 0, wantIndex: 1, wantFuzz: FuzzTrailingWhitespace},
		{name: "surrounding whitespace", context: []string{"gamma"}, start: 0, wantIndex: 2, wantFuzz: FuzzSurroundingWhitespace},
		{name: "respects start", context: []string{"alpha"}, start: 1, wantIndex: 3, wantFuzz: FuzzExact},
		{name: "negative start", context: []string{"alpha"}, start: -4, wantIndex: 0, wantFuzz: FuzzExact},
		{name: "not found", context: []string{"delta"}, start: 0, wantIndex: -1, wantFuzz: 0},
		{name: "longer than file", context: []string{"a", "b", "c", "d", "e", "f"}, start: 0, wantIndex: -1, wantFuzz: 0},
		{name: "eof tail", context: []string{"alpha", "beta"}, start: 0, eof: true, wantIndex: 3, wantFuzz: FuzzExact},
		{name: "eof mismatch", context: []string{"alpha"}, start: 0, eof: true, wantIndex: 0, wantFuzz: FuzzEOFMismatch},
		{name: "eof not found", context: []string{"delta"}, start: 0, eof: true, wantIndex: -1, wantFuzz: 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			index, fuzz := FindContext(lines, tt.context, tt.start, tt.eof)
			if index != tt.wantIndex || fuzz != tt.wantFuzz {
				t.Fatalf("FindContext = (%d, %d), want (%d, %d)", index, fuzz, tt.wantIndex, tt.wantFuzz)
			}
		})
	}
}
