package patch

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestFormatErrorInvalidContext(t *testing.T) {
	t.Parallel()

	err := &DiffError{Kind: InvalidContext, Path: "src/app.go", Context: []string{"foo", "bar"}}
	got := FormatError(fmt.Errorf("apply: %w", err))

	want := strings.Join([]string{
		"Could not find context in ./src/app.go.",
		"",
		"Offending context:",
		"foo\nbar",
		"",
		"Re-read the file and resend the hunk with context lines copied verbatim.",
	}, "\n")
	if got != want {
		t.Fatalf("unexpected message:\n%s", got)
	}
}

func TestFormatErrorEndOfFile(t *testing.T) {
	t.Parallel()

	got := FormatError(&DiffError{Kind: InvalidContext, Path: "./a.txt", EOF: true})
	if !strings.HasPrefix(got, "Could not find end-of-file context in ./a.txt.") {
		t.Fatalf("unexpected message:\n%s", got)
	}
	if strings.Contains(got, "Offending context") {
		t.Fatalf("empty context should not be listed:\n%s", got)
	}
}

func TestFormatErrorOtherKinds(t *testing.T) {
	t.Parallel()

	if got := FormatError(nil); got != "Unknown error occurred." {
		t.Fatalf("unexpected nil message %q", got)
	}
	if got := FormatError(errors.New("plain")); got != "plain" {
		t.Fatalf("unexpected plain message %q", got)
	}

	err := &DiffError{Kind: MissingFile, Path: "a", Message: "file not found", Err: errors.New("no such file")}
	if got := FormatError(err); got != "missing file (a): file not found: no such file" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestIsKindUnwraps(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("outer: %w", newError(DuplicatePath, "a", "dup"))
	if !IsKind(err, DuplicatePath) {
		t.Fatalf("expected DuplicatePath through wrapping")
	}
	if IsKind(err, MissingFile) {
		t.Fatalf("kind mismatch should be false")
	}
	if IsKind(errors.New("x"), DuplicatePath) {
		t.Fatalf("non DiffError should be false")
	}
}
