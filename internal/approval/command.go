package approval

import (
	"regexp"
	"strings"

	"github.com/kballard/go-shellquote"
)

var wordPattern = regexp.MustCompile(`([^\s"']+)|"([^"]*)"|'([^']*)'`)

// FormatCommand renders argv so that a POSIX shell would split it back into
// the same arguments.
func FormatCommand(argv []string) string {
	if len(argv) == 0 {
		return ""
	}
	return shellquote.Join(argv...)
}

// ParseCommand splits a command line into arguments using shell quoting
// rules. Input with unbalanced quotes falls back to a lenient word split that
// keeps quoted runs together.
func ParseCommand(line string) []string {
	if words, err := shellquote.Split(line); err == nil {
		return words
	}
	var words []string
	for _, m := range wordPattern.FindAllStringSubmatch(line, -1) {
		switch {
		case m[1] != "":
			words = append(words, m[1])
		case m[2] != "":
			words = append(words, m[2])
		default:
			words = append(words, m[3])
		}
	}
	return words
}

// ExplainCommand returns the explanation shown when the user asks what a
// command does.
func ExplainCommand(argv []string) string {
	var b strings.Builder
	b.WriteString("This command would execute: `")
	b.WriteString(FormatCommand(argv))
	b.WriteString("`\n\nThis might affect your system. Please review carefully.")
	return b.String()
}
