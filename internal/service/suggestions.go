package service

import (
	"strings"
	"unicode"
)

// DefaultMaxSuggestions is the suggestion cap when none is configured.
const DefaultMaxSuggestions = 3

// ParseSuggestions splits a completion into distinct suggestions. Lines are
// stripped of list markers and wrapping quotes, empties and duplicates are
// dropped, order is kept and at most max entries are returned.
func ParseSuggestions(text string, max int) []string {
	if max < 1 {
		max = DefaultMaxSuggestions
	}

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, max)
	seen := make(map[string]bool, max)

	for _, line := range lines {
		s := cleanSuggestion(line)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
		if len(out) == max {
			break
		}
	}
	return out
}

func cleanSuggestion(line string) string {
	s := strings.TrimSpace(line)
	s = stripListMarker(s)
	s = stripEmphasis(s)
	s = stripQuotes(s)
	return strings.TrimSpace(s)
}

// stripListMarker removes a leading "1.", "1)", "1:", "-", "*" or "•". A
// numeric marker must be followed by whitespace so "3.5x" is kept.
func stripListMarker(s string) string {
	for _, bullet := range []string{"-", "*", "•"} {
		if s == bullet {
			return ""
		}
		if strings.HasPrefix(s, bullet+" ") || (bullet == "•" && strings.HasPrefix(s, bullet)) {
			return strings.TrimSpace(s[len(bullet):])
		}
	}

	i := 0
	for i < len(s) && i < 3 && unicode.IsDigit(rune(s[i])) {
		i++
	}
	if i > 0 && i < len(s) && (s[i] == '.' || s[i] == ')' || s[i] == ':') {
		rest := s[i+1:]
		if rest == "" {
			return ""
		}
		if unicode.IsSpace(rune(rest[0])) {
			return strings.TrimSpace(rest)
		}
	}
	return s
}

// stripEmphasis removes one matched "**...**" or "__...__" pair wrapping
// the whole line.
func stripEmphasis(s string) string {
	for _, m := range []string{"**", "__"} {
		if len(s) > 2*len(m) && strings.HasPrefix(s, m) && strings.HasSuffix(s, m) {
			inner := s[len(m) : len(s)-len(m)]
			if !strings.Contains(inner, m) {
				return strings.TrimSpace(inner)
			}
		}
	}
	return s
}

var quotePairs = [][2]string{{`"`, `"`}, {"'", "'"}, {"“", "”"}, {"‘", "’"}, {"`", "`"}}

// stripQuotes unwraps a line quoted as a whole. Lines whose inner text holds
// another quote of the same kind are left alone.
func stripQuotes(s string) string {
	for _, q := range quotePairs {
		if len(s) >= len(q[0])+len(q[1]) && strings.HasPrefix(s, q[0]) && strings.HasSuffix(s, q[1]) {
			inner := s[len(q[0]) : len(s)-len(q[1])]
			if strings.Contains(inner, q[0]) || strings.Contains(inner, q[1]) {
				return s
			}
			return inner
		}
	}
	return s
}
