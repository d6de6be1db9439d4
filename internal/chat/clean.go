package chat

import (
	"regexp"
	"strings"
)

var (
	boldPattern   = regexp.MustCompile(`\*\*(.*?)\*\*`)
	bulletPattern = regexp.MustCompile(`(?m)^\s*\*\s+`)
)

// CleanReply strips bold markers and turns "*" bullets into "- " bullets.
func CleanReply(text string) string {
	text = boldPattern.ReplaceAllString(text, "$1")
	text = bulletPattern.ReplaceAllString(text, "- ")
	return strings.TrimSpace(text)
}
