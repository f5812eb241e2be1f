// Package slug turns free text into URL-safe identifiers. Thai script is
// preserved; everything else outside the word-character set is dropped.
package slug

import (
	"regexp"
	"strings"
)

var (
	whitespaceRuns  = regexp.MustCompile(`\s+`)
	disallowedChars = regexp.MustCompile(`[^\x{0E00}-\x{0E7F}\w\-]+`)
	hyphenRuns      = regexp.MustCompile(`\-\-+`)
)

// percentWord spells out "%" in Thai so it survives the character filter.
const percentWord = "เปอร์เซนต์"

// Normalize converts text into a URL-safe token. The result is
// deterministic but not collision-free; uniqueness is enforced by the
// database, not here.
func Normalize(text string) string {
	s := whitespaceRuns.ReplaceAllString(text, "-")
	s = strings.ReplaceAll(s, "%", percentWord)
	s = disallowedChars.ReplaceAllString(s, "")
	s = hyphenRuns.ReplaceAllString(s, "-")
	s = strings.TrimLeft(s, "-")
	s = strings.TrimRight(s, "-")
	return s
}
