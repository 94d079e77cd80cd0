package patch

import "testing"

func TestReconstruct(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		original string
		chunks   []Chunk
		want     string
	}{
		{
			name:     "no chunks",
			original: "a\nb",
			want:     "a\nb",
		},
		{
			name:     "replace middle",
			original: "a\nb\nc",
			chunks:   []Chunk{{OrigIndex: 1, DelLines: []string{"b"}, InsLines: []string{"x", "y"}}},
			want:     "a\nx\ny\nc",
		},
		{
			name:     "insert at end",
			original: "a",
			chunks:   []Chunk{{OrigIndex: 1, InsLines: []string{"b"}}},
			want:     "a\nb",
		},
		{
			name:     "delete first",
			original: "a\nb",
			chunks:   []Chunk{{OrigIndex: 0, DelLines: []string{"a"}}},
			want:     "b",
		},
		{
			name:     "adjacent chunks",
			original: "a\nb\nc",
			chunks: []Chunk{
				{OrigIndex: 0, DelLines: []string{"a"}, InsLines: []string{"A"}},
				{OrigIndex: 1, DelLines: []string{"b"}, InsLines: []string{"B"}},
			},
			want: "A\nB\nc",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Reconstruct(tt.original, UpdateAction{Chunks: tt.chunks}, "f")
			if err != nil {
				t.Fatalf("Reconstruct returned error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestReconstructRejectsBadChunks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		chunks []Chunk
		kind   ErrorKind
	}{
		{
			name:   "index past end",
			chunks: []Chunk{{OrigIndex: 10}},
			kind:   ChunkOutOfRange,
		},
		{
			name:   "deletions past end",
			chunks: []Chunk{{OrigIndex: 2, DelLines: []string{"c", "d", "e"}}},
			kind:   ChunkOutOfRange,
		},
		{
			name: "out of order",
			chunks: []Chunk{
				{OrigIndex: 2, InsLines: []string{"x"}},
				{OrigIndex: 1, InsLines: []string{"y"}},
			},
			kind: OutOfOrderChunk,
		},
		{
			name: "overlapping",
			chunks: []Chunk{
				{OrigIndex: 0, DelLines: []string{"a", "b"}},
				{OrigIndex: 1, DelLines: []string{"b"}},
			},
			kind: OutOfOrderChunk,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Reconstruct("a\nb\nc", UpdateAction{Chunks: tt.chunks}, "f")
			assertKind(t, err, tt.kind)
		})
	}
}
