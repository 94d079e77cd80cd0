package patch

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DefaultPreviewContext is the number of unchanged lines shown around edits.
const DefaultPreviewContext = 3

// DiffOp marks a preview line as kept, inserted or deleted.
type DiffOp byte

const (
	OpEqual  DiffOp = ' '
	OpInsert DiffOp = '+'
	OpDelete DiffOp = '-'
)

// DiffLine is one line of a FileDiff.
type DiffLine struct {
	Op   DiffOp
	Text string
}

// FileDiff is the line-level difference a commit makes to one path.
type FileDiff struct {
	Path     string
	MovePath string
	Type     ChangeType
	Added    int
	Deleted  int
	Lines    []DiffLine
}

// Preview computes a FileDiff for every change in c, in commit order.
func Preview(c *Commit) []FileDiff {
	if c == nil {
		return nil
	}
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0

	diffs := make([]FileDiff, 0, len(c.Order))
	for _, path := range c.Order {
		change := c.Changes[path]
		fd := FileDiff{Path: path, MovePath: change.MovePath, Type: change.Type}
		fd.Lines = lineDiff(dmp, change.OldContent, change.NewContent)
		for _, line := range fd.Lines {
			switch line.Op {
			case OpInsert:
				fd.Added++
			case OpDelete:
				fd.Deleted++
			}
		}
		diffs = append(diffs, fd)
	}
	return diffs
}

func lineDiff(dmp *diffmatchpatch.DiffMatchPatch, oldText, newText string) []DiffLine {
	a, b, lineArray := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lineArray)

	var out []DiffLine
	for _, d := range diffs {
		op := OpEqual
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = OpInsert
		case diffmatchpatch.DiffDelete:
			op = OpDelete
		}
		for _, text := range splitDiffText(d.Text) {
			out = append(out, DiffLine{Op: op, Text: text})
		}
	}
	return out
}

func splitDiffText(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

// Unified renders fd as a unified diff with context unchanged lines around
// each edit. Collapsed regions are separated by bare "@@" lines.
func (fd FileDiff) Unified(context int) string {
	oldName, newName := "a/"+fd.Path, "b/"+fd.Path
	switch fd.Type {
	case ChangeAdd:
		oldName = "/dev/null"
	case ChangeDelete:
		newName = "/dev/null"
	}
	if fd.MovePath != "" {
		newName = "b/" + fd.MovePath
	}

	var b strings.Builder
	b.WriteString("--- " + oldName + "\n")
	b.WriteString("+++ " + newName + "\n")

	visible := make([]bool, len(fd.Lines))
	for i, line := range fd.Lines {
		if line.Op == OpEqual {
			continue
		}
		for j := max(0, i-context); j <= min(len(fd.Lines)-1, i+context); j++ {
			visible[j] = true
		}
	}

	inRun := false
	for i, line := range fd.Lines {
		if !visible[i] {
			inRun = false
			continue
		}
		if !inRun {
			b.WriteString("@@\n")
			inRun = true
		}
		b.WriteByte(byte(line.Op))
		b.WriteString(line.Text)
		b.WriteByte('\n')
	}
	return b.String()
}

// RenderUnified concatenates the unified diff of every change in c.
func RenderUnified(c *Commit) string {
	var b strings.Builder
	for _, fd := range Preview(c) {
		b.WriteString(fd.Unified(DefaultPreviewContext))
	}
	return b.String()
}
