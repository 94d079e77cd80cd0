package patch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DirFS is a FileSystem rooted at a working directory on the OS filesystem.
// Every operation rejects absolute paths and paths escaping the root.
type DirFS struct {
	root string
}

// NewDirFS returns a DirFS rooted at dir. An empty dir means the current
// working directory.
func NewDirFS(dir string) (*DirFS, error) {
	root := strings.TrimSpace(dir)
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine working directory: %w", err)
		}
		root = wd
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}
	return &DirFS{root: abs}, nil
}

// Root returns the absolute directory paths are resolved against.
func (d *DirFS) Root() string {
	return d.root
}

// resolve maps a repository-relative path to an absolute path under the
// root. Absolute paths and paths escaping the root are rejected.
func (d *DirFS) resolve(path string) (string, error) {
	if err := checkRelative(path); err != nil {
		return "", err
	}
	abs := filepath.Join(d.root, filepath.Clean(strings.TrimSpace(path)))
	if rel, err := filepath.Rel(d.root, abs); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("refusing to use %s: path escapes %s", path, d.root)
	}
	return abs, nil
}

// Read returns the content of path.
func (d *DirFS) Read(path string) (string, error) {
	abs, err := d.resolve(path)
	if err != nil {
		return "", err
	}
	content, err := os.ReadFile(abs)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// Write replaces the content of path, creating parent directories as needed.
// An overwritten file keeps its permission bits.
func (d *DirFS) Write(path, content string) error {
	abs, err := d.resolve(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	var originalMode fs.FileMode
	info, statErr := os.Stat(abs)
	switch {
	case statErr == nil && info.IsDir():
		return fmt.Errorf("cannot write %s: is a directory", path)
	case statErr == nil:
		originalMode = info.Mode()
	case !errors.Is(statErr, fs.ErrNotExist):
		return fmt.Errorf("failed to stat %s: %w", path, statErr)
	}

	perm := originalMode & fs.ModePerm
	if perm == 0 {
		perm = 0o644
	}
	if err := os.WriteFile(abs, []byte(content), perm); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if originalMode != 0 {
		special := originalMode & (fs.ModeSetuid | fs.ModeSetgid | fs.ModeSticky)
		if special != 0 {
			if err := os.Chmod(abs, perm|special); err != nil {
				return fmt.Errorf("failed to restore permissions for %s: %w", path, err)
			}
		}
	}
	return nil
}

// Remove deletes a single regular file. It fails if the file does not exist.
func (d *DirFS) Remove(path string) error {
	abs, err := d.resolve(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("failed to delete file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("failed to delete file %s: is a directory", path)
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("failed to delete file %s: %w", path, err)
	}
	return nil
}

func checkRelative(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("invalid patch path")
	}
	if filepath.IsAbs(path) || strings.HasPrefix(path, "/") {
		return newError(AbsolutePathNotSupported, path, "only repository-relative paths can be written")
	}
	return nil
}
