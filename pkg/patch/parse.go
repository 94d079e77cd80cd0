package patch

import (
	"errors"
	"fmt"
	"strings"
)

var (
	directiveStops = []string{EndMarker, UpdateFilePrefix, DeleteFilePrefix, AddFilePrefix}
	updateStops    = []string{EndMarker, UpdateFilePrefix, DeleteFilePrefix, AddFilePrefix, EndOfFileMarker}
	sectionStops   = []string{"@@", EndMarker, UpdateFilePrefix, DeleteFilePrefix, AddFilePrefix, EndOfFileMarker}
)

type parser struct {
	scanner
	originals map[string]string
	patch     *Patch
	fuzz      int
}

// Parse converts patch text into a Patch. originals holds the current content
// of every file the patch updates or deletes, keyed by the path exactly as it
// appears in the patch.
//
// The returned fuzz score is 0 when every hunk matched byte-for-byte; it grows
// with the leniency needed to place hunks and is informational only.
func Parse(text string, originals map[string]string) (*Patch, int, error) {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) < 2 || !strings.HasPrefix(lines[0], BeginMarker) || lines[len(lines)-1] != EndMarker {
		return nil, 0, newError(InvalidPatchEnvelope, "", "patch must start with %q and end with %q", BeginMarker, EndMarker)
	}

	p := &parser{
		scanner:   scanner{lines: lines, index: 1},
		originals: originals,
		patch:     newPatch(),
	}
	if err := p.parse(); err != nil {
		return nil, 0, err
	}
	return p.patch, p.fuzz, nil
}

func (p *parser) parse() error {
	for !p.isDone(EndMarker) {
		if path, ok, err := p.readPrefixed(UpdateFilePrefix); err != nil {
			return err
		} else if ok {
			if err := p.parseUpdateDirective(path); err != nil {
				return err
			}
			continue
		}

		if path, ok, err := p.readPrefixed(DeleteFilePrefix); err != nil {
			return err
		} else if ok {
			if err := p.checkExisting(path); err != nil {
				return err
			}
			p.patch.add(path, DeleteAction{})
			continue
		}

		if path, ok, err := p.readPrefixed(AddFilePrefix); err != nil {
			return err
		} else if ok {
			if err := p.parseAddDirective(path); err != nil {
				return err
			}
			continue
		}

		if strings.TrimSpace(p.current()) == "" {
			p.index++
			continue
		}
		return newError(UnrecognizedDirective, "", "unknown line %d: %q", p.index+1, p.current())
	}

	if p.current() != EndMarker {
		return newError(MissingEndMarker, "", "expected %q", EndMarker)
	}
	p.index++
	return nil
}

// checkExisting validates a path named by an Update or Delete directive.
func (p *parser) checkExisting(path string) error {
	if path == "" {
		return newError(MalformedPatch, "", "directive on line %d has no path", p.index)
	}
	if _, dup := p.patch.Actions[path]; dup {
		return newError(DuplicatePath, path, "path appears more than once")
	}
	if _, ok := p.originals[path]; !ok {
		return newError(MissingFile, path, "file is not available to patch")
	}
	return nil
}

func (p *parser) parseUpdateDirective(path string) error {
	if err := p.checkExisting(path); err != nil {
		return err
	}
	movePath, _, err := p.readPrefixed(MoveFilePrefix)
	if err != nil {
		return err
	}
	action, err := p.parseUpdate(path, p.originals[path])
	if err != nil {
		return err
	}
	action.MovePath = strings.TrimSpace(movePath)
	p.patch.add(path, action)
	return nil
}

func (p *parser) parseAddDirective(path string) error {
	if path == "" {
		return newError(MalformedPatch, "", "directive on line %d has no path", p.index)
	}
	if _, dup := p.patch.Actions[path]; dup {
		return newError(DuplicatePath, path, "path appears more than once")
	}
	if _, exists := p.originals[path]; exists {
		return newError(FileAlreadyExists, path, "cannot add a file that already exists")
	}

	var lines []string
	for !p.isDone(directiveStops...) {
		line, err := p.readLine()
		if err != nil {
			return err
		}
		if !strings.HasPrefix(line, "+") {
			return newError(MalformedPatch, path, "invalid add file line %q", line)
		}
		lines = append(lines, line[1:])
	}
	p.patch.add(path, AddAction{Content: strings.Join(lines, "\n")})
	return nil
}

// parseUpdate reads every hunk of one Update File body and resolves it against
// the file's current text.
func (p *parser) parseUpdate(path, text string) (UpdateAction, error) {
	var action UpdateAction
	fileLines := strings.Split(text, "\n")
	index := 0

	for !p.isDone(updateStops...) {
		start := p.index

		header, hasHeader, err := p.readPrefixed("@@ ")
		if err != nil {
			return UpdateAction{}, err
		}
		bare := false
		if !hasHeader && p.current() == "@@" {
			bare = true
			p.index++
		}
		if !hasHeader && !bare && index != 0 {
			return UpdateAction{}, newError(MalformedPatch, path, "hunk at line %d is missing an @@ marker: %q", p.index+1, p.current())
		}
		if strings.TrimSpace(header) != "" {
			var fuzz int
			index, fuzz = reanchor(fileLines, header, index)
			p.fuzz += fuzz
		}

		sec, err := peekNextSection(p.lines, p.index)
		if err != nil {
			var de *DiffError
			if errors.As(err, &de) && de.Path == "" {
				de.Path = path
			}
			return UpdateAction{}, err
		}

		found, fuzz := FindContext(fileLines, sec.context, index, sec.eof)
		if found == -1 {
			return UpdateAction{}, &DiffError{
				Kind:    InvalidContext,
				Path:    path,
				Message: invalidContextMessage(sec.eof, index, sec.context),
				Context: sec.context,
				EOF:     sec.eof,
			}
		}
		p.fuzz += fuzz

		for _, chunk := range sec.chunks {
			chunk.OrigIndex += found
			action.Chunks = append(action.Chunks, chunk)
		}
		index = found + len(sec.context)
		p.index = sec.end

		if p.index == start {
			return UpdateAction{}, newError(MalformedPatch, path, "unexpected line %d: %q", p.index+1, p.current())
		}
	}
	return action, nil
}

func invalidContextMessage(eof bool, index int, context []string) string {
	label := "context"
	if eof {
		label = "EOF context"
	}
	return fmt.Sprintf("could not find %s at or after line %d:\n%s", label, index+1, strings.Join(context, "\n"))
}

// reanchor moves index just past the line named by an "@@ " header. An exact
// match is tried first, then a whitespace-trimmed one which costs one fuzz
// point. A header that is already behind index, or not found at all, leaves
// index unchanged.
func reanchor(fileLines []string, header string, index int) (int, int) {
	if !containsLine(fileLines[:index], header, false) {
		for i := index; i < len(fileLines); i++ {
			if fileLines[i] == header {
				return i + 1, 0
			}
		}
	}
	if !containsLine(fileLines[:index], header, true) {
		want := strings.TrimSpace(header)
		for i := index; i < len(fileLines); i++ {
			if strings.TrimSpace(fileLines[i]) == want {
				return i + 1, 1
			}
		}
	}
	return index, 0
}

func containsLine(lines []string, target string, trim bool) bool {
	if trim {
		target = strings.TrimSpace(target)
	}
	for _, line := range lines {
		if trim {
			line = strings.TrimSpace(line)
		}
		if line == target {
			return true
		}
	}
	return false
}

type lineMode int

const (
	modeKeep lineMode = iota
	modeAdd
	modeDelete
)

// section is one hunk body as read by peekNextSection.
type section struct {
	// context is every kept or deleted line, i.e. the hunk's view of the
	// original file.
	context []string
	chunks  []Chunk
	// end is the patch line index just past the section.
	end int
	eof bool
}

// peekNextSection scans a hunk body starting at lines[start]. Chunk indices in
// the result are relative to the start of the section's context.
func peekNextSection(lines []string, start int) (section, error) {
	var (
		sec      section
		del, ins []string
		mode     = modeKeep
	)

	flush := func() {
		if len(del) > 0 || len(ins) > 0 {
			sec.chunks = append(sec.chunks, Chunk{
				OrigIndex: len(sec.context) - len(del),
				DelLines:  del,
				InsLines:  ins,
			})
		}
		del, ins = nil, nil
	}

	index := start
	for index < len(lines) {
		s := lines[index]
		if hasAnyPrefix(s, sectionStops) || s == "***" {
			break
		}
		if strings.HasPrefix(s, "***") {
			return section{}, newError(MalformedPatch, "", "invalid line %d: %q", index+1, s)
		}
		index++

		last := mode
		var line string
		switch {
		case strings.HasPrefix(s, "+"):
			mode, line = modeAdd, s[1:]
		case strings.HasPrefix(s, "-"):
			mode, line = modeDelete, s[1:]
		case strings.HasPrefix(s, " "):
			mode, line = modeKeep, s[1:]
		default:
			// Models regularly drop the leading space on context lines.
			mode, line = modeKeep, s
		}

		if mode == modeKeep && last != mode {
			flush()
		}

		switch mode {
		case modeDelete:
			del = append(del, line)
			sec.context = append(sec.context, line)
		case modeAdd:
			ins = append(ins, line)
		default:
			sec.context = append(sec.context, line)
		}
	}
	flush()

	if index < len(lines) && lines[index] == EndOfFileMarker {
		index++
		sec.eof = true
	}
	sec.end = index
	return sec, nil
}

func hasAnyPrefix(line string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(line, strings.TrimSpace(prefix)) {
			return true
		}
	}
	return false
}
