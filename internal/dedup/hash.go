// Package dedup implements the content-hash dedup protocol that lets
// the bridge tell whether a summary has already been written to a
// topic file, or whether a Store entry has already been synced this
// run — a stable hash, not a MAC: the goal is collision-resistant
// dedup, not authentication.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/thebtf/auto-memory-bridge/internal/markdown"
)

// HashContent returns the first sixteen hex digits of the SHA-256
// digest of text, used as a dedup key across the Store/file boundary.
func HashContent(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])[:16]
}

// HasSummaryLine reports whether fileContent already contains a
// bullet whose text (after "- ") has summary as a prefix — not a
// substring of the whole line, and not merely a substring of a longer
// bullet's text. "Use Int8" must not match a line that begins
// "- Do not use Int8...".
func HasSummaryLine(fileContent, summary string) bool {
	if summary == "" {
		return false
	}
	for _, s := range markdown.ExtractSummaries(fileContent) {
		if strings.HasPrefix(s, summary) {
			return true
		}
	}
	return false
}
