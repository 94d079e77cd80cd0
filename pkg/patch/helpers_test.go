package patch

import (
	"strings"
	"testing"
)

func patchText(lines ...string) string {
	return strings.Join(lines, "\n")
}

func mustParse(t *testing.T, text string, originals map[string]string) (*Patch, int) {
	t.Helper()
	p, fuzz, err := Parse(text, originals)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	return p, fuzz
}

func mustUpdate(t *testing.T, p *Patch, path string) UpdateAction {
	t.Helper()
	action, ok := p.Actions[path].(UpdateAction)
	if !ok {
		t.Fatalf("expected UpdateAction for %s, got %T", path, p.Actions[path])
	}
	return action
}

func assertKind(t *testing.T, err error, kind ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if !IsKind(err, kind) {
		t.Fatalf("expected %s error, got %v", kind, err)
	}
}
