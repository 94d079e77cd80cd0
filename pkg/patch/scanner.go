package patch

import "strings"

// scanner is a cursor over the physical lines of a patch.
type scanner struct {
	lines []string
	index int
}

// isDone reports whether the cursor is past the last line or sits on a line
// starting with one of prefixes. Prefixes are trimmed before comparison so
// "*** Add File: " also stops at a bare "*** Add File:".
func (s *scanner) isDone(prefixes ...string) bool {
	if s.index >= len(s.lines) {
		return true
	}
	line := s.lines[s.index]
	for _, prefix := range prefixes {
		if strings.HasPrefix(line, strings.TrimSpace(prefix)) {
			return true
		}
	}
	return false
}

func (s *scanner) startsWith(prefixes ...string) bool {
	if s.index >= len(s.lines) {
		return false
	}
	line := s.lines[s.index]
	for _, prefix := range prefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

func (s *scanner) current() string {
	if s.index >= len(s.lines) {
		return ""
	}
	return s.lines[s.index]
}

// readPrefixed consumes the current line when it starts with prefix and
// returns the remainder. ok is false, and nothing is consumed, when the line
// does not match; an empty remainder with ok set is a genuine match.
func (s *scanner) readPrefixed(prefix string) (rest string, ok bool, err error) {
	if s.index >= len(s.lines) {
		return "", false, newError(MalformedPatch, "", "unexpected end of patch at line %d", s.index+1)
	}
	line := s.lines[s.index]
	if !strings.HasPrefix(line, prefix) {
		return "", false, nil
	}
	s.index++
	return line[len(prefix):], true, nil
}

// readLine consumes and returns the current line verbatim.
func (s *scanner) readLine() (string, error) {
	line, _, err := s.readPrefixed("")
	return line, err
}
