package patch

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ReadFunc returns the current content of path.
type ReadFunc func(path string) (string, error)

// WriteFunc replaces the content of path, creating it if needed.
type WriteFunc func(path, content string) error

// RemoveFunc deletes a single file.
type RemoveFunc func(path string) error

// FileSystem is the I/O collaborator used to load originals and write
// results. Implementations must reject absolute paths in Write.
type FileSystem interface {
	Read(path string) (string, error)
	Write(path, content string) error
	Remove(path string) error
}

// Funcs adapts plain functions to the FileSystem interface.
type Funcs struct {
	ReadFile   ReadFunc
	WriteFile  WriteFunc
	RemoveFile RemoveFunc
}

func (f Funcs) Read(path string) (string, error) {
	if f.ReadFile == nil {
		return "", errors.New("read not supported")
	}
	return f.ReadFile(path)
}

func (f Funcs) Write(path, content string) error {
	if f.WriteFile == nil {
		return errors.New("write not supported")
	}
	return f.WriteFile(path, content)
}

func (f Funcs) Remove(path string) error {
	if f.RemoveFile == nil {
		return errors.New("remove not supported")
	}
	return f.RemoveFile(path)
}

// RequiredPaths lists the paths named by Update File and Delete File lines.
// It only scans line prefixes and does not validate the patch.
func RequiredPaths(text string) []string {
	return scanPaths(text, UpdateFilePrefix, DeleteFilePrefix)
}

// AddedPaths lists the paths named by Add File lines.
func AddedPaths(text string) []string {
	return scanPaths(text, AddFilePrefix)
}

func scanPaths(text string, prefixes ...string) []string {
	seen := make(map[string]struct{})
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		for _, prefix := range prefixes {
			if path, ok := strings.CutPrefix(line, prefix); ok {
				seen[path] = struct{}{}
			}
		}
	}
	paths := make([]string, 0, len(seen))
	for path := range seen {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// LoadFiles reads every path through read. Any failure is reported as a
// MissingFile error wrapping the cause.
func LoadFiles(paths []string, read ReadFunc) (map[string]string, error) {
	files := make(map[string]string, len(paths))
	for _, path := range paths {
		content, err := read(path)
		if err != nil {
			return nil, &DiffError{Kind: MissingFile, Path: path, Message: "file not found", Err: err}
		}
		files[path] = content
	}
	return files, nil
}

// ToCommit resolves every action of p against originals.
func ToCommit(p *Patch, originals map[string]string) (*Commit, error) {
	commit := &Commit{Changes: make(map[string]FileChange, len(p.Actions))}
	for _, path := range p.Order {
		var change FileChange
		switch action := p.Actions[path].(type) {
		case DeleteAction:
			change = FileChange{Type: ChangeDelete, OldContent: originals[path]}
		case AddAction:
			change = FileChange{Type: ChangeAdd, NewContent: action.Content}
		case UpdateAction:
			original, ok := originals[path]
			if !ok {
				return nil, newError(MissingFile, path, "no original content to update")
			}
			updated, err := Reconstruct(original, action, path)
			if err != nil {
				return nil, err
			}
			change = FileChange{
				Type:       ChangeUpdate,
				OldContent: original,
				NewContent: updated,
				MovePath:   action.MovePath,
			}
		default:
			return nil, fmt.Errorf("unsupported patch action for %s: %T", path, action)
		}
		commit.Changes[path] = change
		commit.Order = append(commit.Order, path)
	}
	return commit, nil
}

// ApplyCommit writes c in order. A failure stops the loop but already
// written paths are left as they are; use ApplyCommitAtomic to roll back.
func ApplyCommit(c *Commit, write WriteFunc, remove RemoveFunc) error {
	for _, path := range c.Order {
		if err := applyChange(path, c.Changes[path], write, remove); err != nil {
			return err
		}
	}
	return nil
}

func applyChange(path string, change FileChange, write WriteFunc, remove RemoveFunc) error {
	switch change.Type {
	case ChangeDelete:
		return remove(path)
	case ChangeAdd:
		return write(path, change.NewContent)
	case ChangeUpdate:
		if change.MovePath != "" && change.MovePath != path {
			if err := write(change.MovePath, change.NewContent); err != nil {
				return err
			}
			return remove(path)
		}
		return write(path, change.NewContent)
	default:
		return fmt.Errorf("unsupported change type for %s: %q", path, change.Type)
	}
}

type snapshot struct {
	path    string
	content string
	existed bool
}

// ApplyCommitAtomic applies c like ApplyCommit but records the prior state of
// every path it touches. If any write or remove fails, recorded paths are
// restored in reverse order before the error is returned.
func ApplyCommitAtomic(c *Commit, fsys FileSystem) error {
	var (
		saved []snapshot
		seen  = make(map[string]bool)
	)
	record := func(path string) {
		if seen[path] {
			return
		}
		seen[path] = true
		content, err := fsys.Read(path)
		saved = append(saved, snapshot{path: path, content: content, existed: err == nil})
	}
	write := func(path, content string) error {
		record(path)
		return fsys.Write(path, content)
	}
	remove := func(path string) error {
		record(path)
		return fsys.Remove(path)
	}

	for _, path := range c.Order {
		if err := applyChange(path, c.Changes[path], write, remove); err != nil {
			if rbErr := rollback(fsys, saved); rbErr != nil {
				return errors.Join(err, fmt.Errorf("rollback failed: %w", rbErr))
			}
			return err
		}
	}
	return nil
}

func rollback(fsys FileSystem, saved []snapshot) error {
	var errs []error
	for i := len(saved) - 1; i >= 0; i-- {
		s := saved[i]
		if s.existed {
			if err := fsys.Write(s.path, s.content); err != nil {
				errs = append(errs, err)
			}
			continue
		}
		if _, err := fsys.Read(s.path); err == nil {
			if err := fsys.Remove(s.path); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Result describes a successfully applied patch.
type Result struct {
	Commit *Commit
	Fuzz   int
}

// Build loads the originals text needs from fsys, parses text and resolves it
// into a commit without writing anything. It also returns the fuzz Parse
// needed to match the hunks.
func Build(text string, fsys FileSystem) (*Commit, int, error) {
	if !strings.HasPrefix(text, BeginMarker+"\n") {
		return nil, 0, newError(InvalidPatchEnvelope, "", "patch must start with %q", BeginMarker)
	}

	originals, err := LoadFiles(RequiredPaths(text), fsys.Read)
	if err != nil {
		return nil, 0, err
	}
	// Existing files named by Add File are loaded so Parse reports them as
	// FileAlreadyExists instead of silently overwriting them.
	for _, path := range AddedPaths(text) {
		if _, loaded := originals[path]; loaded {
			continue
		}
		if content, err := fsys.Read(path); err == nil {
			originals[path] = content
		}
	}

	p, fuzz, err := Parse(text, originals)
	if err != nil {
		return nil, 0, err
	}
	commit, err := ToCommit(p, originals)
	if err != nil {
		return nil, 0, err
	}
	return commit, fuzz, nil
}

// Apply builds the commit for text and writes it atomically.
func Apply(text string, fsys FileSystem) (*Result, error) {
	commit, fuzz, err := Build(text, fsys)
	if err != nil {
		return nil, err
	}
	if err := ApplyCommitAtomic(commit, fsys); err != nil {
		return nil, err
	}
	return &Result{Commit: commit, Fuzz: fuzz}, nil
}

// Process applies text through fsys and returns SuccessMessage.
func Process(text string, fsys FileSystem) (string, error) {
	if _, err := Apply(text, fsys); err != nil {
		return "", err
	}
	return SuccessMessage, nil
}
