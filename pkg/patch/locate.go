package patch

import (
	"strings"
	"unicode"
)

// Fuzz costs charged by FindContext.
const (
	FuzzExact                 = 0
	FuzzTrailingWhitespace    = 1
	FuzzSurroundingWhitespace = 100
	FuzzEOFMismatch           = 10000
)

type lineNormalizer func(string) string

var matchTiers = []struct {
	cost      int
	normalize lineNormalizer
}{
	{FuzzExact, func(s string) string { return s }},
	{FuzzTrailingWhitespace, func(s string) string { return strings.TrimRightFunc(s, unicode.IsSpace) }},
	{FuzzSurroundingWhitespace, strings.TrimSpace},
}

// FindContext locates context in lines at or after start and returns the
// matching index with its fuzz cost, or -1 when no tier matches.
//
// When eof is set the window ending at the last line is tried first. If the
// context is not there the whole range from start is searched and the result
// is penalised by FuzzEOFMismatch.
func FindContext(lines, context []string, start int, eof bool) (int, int) {
	if eof {
		if index, fuzz := findContextCore(lines, context, len(lines)-len(context)); index != -1 {
			return index, fuzz
		}
		index, fuzz := findContextCore(lines, context, start)
		if index == -1 {
			return -1, 0
		}
		return index, fuzz + FuzzEOFMismatch
	}
	return findContextCore(lines, context, start)
}

func findContextCore(lines, context []string, start int) (int, int) {
	if len(context) == 0 {
		return start, FuzzExact
	}
	if start < 0 {
		start = 0
	}
	for _, tier := range matchTiers {
		for i := start; i+len(context) <= len(lines); i++ {
			if windowMatches(lines[i:i+len(context)], context, tier.normalize) {
				return i, tier.cost
			}
		}
	}
	return -1, 0
}

func windowMatches(window, context []string, normalize lineNormalizer) bool {
	for i := range context {
		if normalize(window[i]) != normalize(context[i]) {
			return false
		}
	}
	return true
}
