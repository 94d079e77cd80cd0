package patch

import "testing"

func TestScannerReadPrefixedDistinguishesEmptyMatch(t *testing.T) {
	t.Parallel()

	s := &scanner{lines: []string{"*** Move File To: ", "other"}}

	rest, ok, err := s.readPrefixed(MoveFilePrefix)
	if err != nil {
		t.Fatalf("readPrefixed returned error: %v", err)
	}
	if !ok || rest != "" {
		t.Fatalf("expected empty match, got ok=%v rest=%q", ok, rest)
	}
	if s.index != 1 {
		t.Fatalf("match should consume the line, index=%d", s.index)
	}

	rest, ok, err = s.readPrefixed(MoveFilePrefix)
	if err != nil || ok || rest != "" {
		t.Fatalf("expected no match, got ok=%v rest=%q err=%v", ok, rest, err)
	}
	if s.index != 1 {
		t.Fatalf("a miss must not consume, index=%d", s.index)
	}
}

func TestScannerReadPrefixedOutOfRange(t *testing.T) {
	t.Parallel()

	s := &scanner{lines: []string{"only"}, index: 1}
	if _, _, err := s.readPrefixed(""); !IsKind(err, MalformedPatch) {
		t.Fatalf("expected MalformedPatch, got %v", err)
	}
}

func TestScannerIsDoneTrimsPrefixes(t *testing.T) {
	t.Parallel()

	s := &scanner{lines: []string{"*** Add File:"}}
	if !s.isDone(AddFilePrefix) {
		t.Fatalf("isDone should match a trimmed prefix")
	}
	if s.startsWith(AddFilePrefix) {
		t.Fatalf("startsWith compares the untrimmed prefix")
	}

	s.index = 1
	if !s.isDone() {
		t.Fatalf("isDone should be true past the last line")
	}
	if s.startsWith("anything") {
		t.Fatalf("startsWith should be false past the last line")
	}
}
