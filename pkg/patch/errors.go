package patch

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a DiffError.
type ErrorKind string

const (
	DuplicatePath            ErrorKind = "duplicate path"
	MissingFile              ErrorKind = "missing file"
	FileAlreadyExists        ErrorKind = "file already exists"
	UnrecognizedDirective    ErrorKind = "unrecognized directive"
	MalformedPatch           ErrorKind = "malformed patch"
	MissingEndMarker         ErrorKind = "missing end marker"
	InvalidContext           ErrorKind = "invalid context"
	ChunkOutOfRange          ErrorKind = "chunk out of range"
	OutOfOrderChunk          ErrorKind = "out of order chunk"
	InvalidPatchEnvelope     ErrorKind = "invalid patch envelope"
	AbsolutePathNotSupported ErrorKind = "absolute path not supported"
)

// DiffError is the single error type produced by the engine. Every DiffError
// is terminal for the patch being processed.
type DiffError struct {
	Kind    ErrorKind
	Path    string
	Message string
	// Context holds the hunk context lines for InvalidContext errors.
	Context []string
	// EOF reports whether an InvalidContext hunk was anchored at end of file.
	EOF bool
	Err error
}

// Error implements the error interface.
func (e *DiffError) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Path != "" {
		b.WriteString(" (")
		b.WriteString(e.Path)
		b.WriteString(")")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause, if any.
func (e *DiffError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsKind reports whether err is a DiffError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var de *DiffError
	if !errors.As(err, &de) {
		return false
	}
	return de.Kind == kind
}

func newError(kind ErrorKind, path, format string, args ...any) *DiffError {
	return &DiffError{Kind: kind, Path: path, Message: fmt.Sprintf(format, args...)}
}

// FormatError renders err into a message suitable for handing back to the
// model that wrote the patch.
func FormatError(err error) string {
	if err == nil {
		return "Unknown error occurred."
	}
	var de *DiffError
	if !errors.As(err, &de) {
		return err.Error()
	}
	if de.Kind != InvalidContext {
		return de.Error()
	}

	displayPath := de.Path
	if displayPath == "" {
		displayPath = "unknown file"
	}
	if !strings.HasPrefix(displayPath, "./") {
		displayPath = "./" + displayPath
	}

	label := "Could not find context"
	if de.EOF {
		label = "Could not find end-of-file context"
	}
	parts := []string{fmt.Sprintf("%s in %s.", label, displayPath)}
	if len(de.Context) > 0 {
		parts = append(parts, "", "Offending context:", strings.Join(de.Context, "\n"))
	}
	parts = append(parts, "", "Re-read the file and resend the hunk with context lines copied verbatim.")
	return strings.Join(parts, "\n")
}
