package patch

import "strings"

// Reconstruct replays action's chunks against original and returns the new
// file body. path is used for error messages only.
//
// Chunks must be sorted by OrigIndex and must not overlap; lines between
// chunks are copied through unchanged.
func Reconstruct(original string, action UpdateAction, path string) (string, error) {
	origLines := strings.Split(original, "\n")
	dest := make([]string, 0, len(origLines))
	cursor := 0

	for _, chunk := range action.Chunks {
		if chunk.OrigIndex > len(origLines) {
			return "", newError(ChunkOutOfRange, path, "chunk index %d > %d lines", chunk.OrigIndex, len(origLines))
		}
		if cursor > chunk.OrigIndex {
			return "", newError(OutOfOrderChunk, path, "cursor %d > chunk index %d", cursor, chunk.OrigIndex)
		}
		dest = append(dest, origLines[cursor:chunk.OrigIndex]...)
		dest = append(dest, chunk.InsLines...)
		cursor = chunk.OrigIndex + len(chunk.DelLines)
	}

	if cursor > len(origLines) {
		return "", newError(ChunkOutOfRange, path, "deletions run past end of file (%d > %d lines)", cursor, len(origLines))
	}
	dest = append(dest, origLines[cursor:]...)
	return strings.Join(dest, "\n"), nil
}
