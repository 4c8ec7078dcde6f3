package services

import (
	"regexp"
	"strings"
)

var (
	// ```json { ... } ```
	fencedObjectPattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(\\{.*\\})\\s*```")
	// greedy fallback for bare objects surrounded by prose
	bareObjectPattern    = regexp.MustCompile(`(?s)\{.*\}`)
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
)

// ExtractJSON pulls a JSON object out of a model reply. Models wrap JSON in
// markdown fences or prose even when asked not to, and sometimes leave
// trailing commas behind. Returns "" when no object is present.
func ExtractJSON(content string) string {
	content = strings.TrimSpace(content)
	raw := ""
	if m := fencedObjectPattern.FindStringSubmatch(content); len(m) > 1 {
		raw = m[1]
	} else {
		raw = bareObjectPattern.FindString(content)
	}
	if raw == "" {
		return ""
	}
	return trailingCommaPattern.ReplaceAllString(raw, "$1")
}
