package patch

import (
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// MemFS is an in-memory FileSystem. It is useful for previews, editors and
// tests. MemFS is not safe for concurrent use.
type MemFS struct {
	files map[string]string
}

// NewMemFS copies files into a new MemFS; the caller's map is never mutated.
func NewMemFS(files map[string]string) *MemFS {
	snapshot := make(map[string]string, len(files))
	for k, v := range files {
		snapshot[memKey(k)] = v
	}
	return &MemFS{files: snapshot}
}

func memKey(p string) string {
	return path.Clean(strings.TrimSpace(p))
}

// Files returns a copy of the current contents.
func (m *MemFS) Files() map[string]string {
	out := make(map[string]string, len(m.files))
	for k, v := range m.files {
		out[k] = v
	}
	return out
}

// Read returns the content stored for p.
func (m *MemFS) Read(p string) (string, error) {
	content, ok := m.files[memKey(p)]
	if !ok {
		return "", fmt.Errorf("read %s: %w", p, fs.ErrNotExist)
	}
	return content, nil
}

// Write stores content for p. Absolute paths are rejected.
func (m *MemFS) Write(p, content string) error {
	if err := checkRelative(p); err != nil {
		return err
	}
	key := memKey(p)
	if key == "." {
		return fmt.Errorf("invalid patch path %q", p)
	}
	m.files[key] = content
	return nil
}

// Remove deletes p. It fails if p does not exist.
func (m *MemFS) Remove(p string) error {
	key := memKey(p)
	if _, ok := m.files[key]; !ok {
		return fmt.Errorf("failed to delete file %s: %w", p, fs.ErrNotExist)
	}
	delete(m.files, key)
	return nil
}

// ApplyToMemory applies text to a copy of files and returns the updated
// snapshot together with the applied result. files is left untouched.
func ApplyToMemory(text string, files map[string]string) (map[string]string, *Result, error) {
	mem := NewMemFS(files)
	result, err := Apply(text, mem)
	if err != nil {
		return nil, nil, err
	}
	return mem.Files(), result, nil
}
