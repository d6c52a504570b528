// Package wikilink provides canonical scanning of wikilinks in plain text.
//
// Wikilink grammar:
//   [[target]]
//   [[target|display text]]
//
// The target and the display text (if present) are trimmed of surrounding
// whitespace. This package intentionally does NOT understand markdown code
// fences; higher-level parsers decide whether scanning is enabled for a
// given region.
package wikilink

import (
	"regexp"
	"strings"
)

// Match represents a wikilink found in a string.
type Match struct {
	Target      string
	DisplayText string
	Start       int
	End         int
}

// re matches [[target]] or [[target|display]].
// The target cannot contain [ or ] to avoid matching nested brackets.
var re = regexp.MustCompile(`\[\[([^\]\[|]+)(?:\|([^\]]+))?\]\]`)

// FindAll finds wikilinks in a string.
func FindAll(s string) []Match {
	var out []Match

	matches := re.FindAllStringSubmatchIndex(s, -1)
	for _, m := range matches {
		target := strings.TrimSpace(s[m[2]:m[3]])
		if target == "" {
			continue
		}

		match := Match{Target: target, Start: m[0], End: m[1]}
		if m[4] >= 0 {
			match.DisplayText = strings.TrimSpace(s[m[4]:m[5]])
		}
		out = append(out, match)
	}
	return out
}

// Literal renders a wikilink back to its text form.
func Literal(target, display string) string {
	if display != "" && display != target {
		return "[[" + target + "|" + display + "]]"
	}
	return "[[" + target + "]]"
}
