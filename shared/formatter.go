package shared

import (
	"strings"
	"unicode"
)

const MaxSnippetLen = 10000

// NormalizeSubreddit strips an "r/" or "/r/" prefix and trailing slashes so
// subreddit names compare and store consistently.
func NormalizeSubreddit(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(name, "/")
	name = strings.TrimPrefix(name, "r/")
	return strings.TrimRight(name, "/")
}

func TruncateWithEllipsis(text string, maxLen int) string {
	// https://stackoverflow.com/a/73939904/7479498
	lastSpaceIx := -1
	count := 0
	for i, r := range text {
		if unicode.IsSpace(r) {
			lastSpaceIx = i
		}
		count++
		if count > maxLen {
			// No space seen yet: cut at the current rune boundary so
			// multi-byte characters never get split.
			if lastSpaceIx < 0 {
				lastSpaceIx = i
			}
			return text[:lastSpaceIx] + "..."
		}
	}
	// If here, string is shorter or equal to maxLen
	return text
}
