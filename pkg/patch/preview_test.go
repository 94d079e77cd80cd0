package patch

import (
	"strings"
	"testing"
)

func TestPreviewUpdate(t *testing.T) {
	t.Parallel()

	commit := &Commit{
		Changes: map[string]FileChange{
			"f.txt": {Type: ChangeUpdate, OldContent: "a\nb\nc", NewContent: "a\nx\nc"},
		},
		Order: []string{"f.txt"},
	}

	diffs := Preview(commit)
	if len(diffs) != 1 {
		t.Fatalf("expected one diff, got %d", len(diffs))
	}
	fd := diffs[0]
	if fd.Added != 1 || fd.Deleted != 1 {
		t.Fatalf("expected +1/-1, got +%d/-%d", fd.Added, fd.Deleted)
	}

	out := fd.Unified(DefaultPreviewContext)
	for _, want := range []string{"--- a/f.txt\n", "+++ b/f.txt\n", "-b\n", "+x\n", " a\n", " c"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestPreviewAddDeleteAndMoveHeaders(t *testing.T) {
	t.Parallel()

	commit := &Commit{
		Changes: map[string]FileChange{
			"new.txt":  {Type: ChangeAdd, NewContent: "hello\nworld"},
			"gone.txt": {Type: ChangeDelete, OldContent: "bye"},
			"a.go":     {Type: ChangeUpdate, OldContent: "x", NewContent: "x", MovePath: "b.go"},
		},
		Order: []string{"new.txt", "gone.txt", "a.go"},
	}

	out := RenderUnified(commit)
	for _, want := range []string{
		"--- /dev/null\n+++ b/new.txt\n@@\n+hello\n+world\n",
		"--- a/gone.txt\n+++ /dev/null\n@@\n-bye\n",
		"--- a/a.go\n+++ b/b.go\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestUnifiedCollapsesDistantContext(t *testing.T) {
	t.Parallel()

	fd := FileDiff{Path: "f", Type: ChangeUpdate}
	for i := 0; i < 10; i++ {
		fd.Lines = append(fd.Lines, DiffLine{Op: OpEqual, Text: "same"})
	}
	fd.Lines[0] = DiffLine{Op: OpDelete, Text: "first"}
	fd.Lines[9] = DiffLine{Op: OpInsert, Text: "last"}

	out := fd.Unified(1)
	if got := strings.Count(out, "@@\n"); got != 2 {
		t.Fatalf("expected two runs, got %d:\n%s", got, out)
	}
	if got := strings.Count(out, " same\n"); got != 2 {
		t.Fatalf("expected two context lines, got %d:\n%s", got, out)
	}
}

func TestPreviewNilCommit(t *testing.T) {
	t.Parallel()

	if got := Preview(nil); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}
