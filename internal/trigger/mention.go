package trigger

import (
	"strings"
	"unicode"
)

// Mentions returns the distinct @handles of text in order of appearance,
// without the "@". Tokens are split on whitespace; a handle runs from the
// "@" to the first rune that cannot be part of a username, so "(@bob)," and
// "@bob's" both yield "bob".
func Mentions(text string) []string {
	var handles []string
	seen := make(map[string]bool)

	for _, token := range strings.Fields(text) {
		token = strings.TrimLeftFunc(token, func(r rune) bool { return r != '@' && !isHandleRune(r) })
		if !strings.HasPrefix(token, "@") {
			continue
		}
		handle := token[1:]
		if end := strings.IndexFunc(handle, func(r rune) bool { return !isHandleRune(r) }); end >= 0 {
			handle = handle[:end]
		}
		if handle == "" {
			continue
		}

		key := strings.ToLower(handle)
		if seen[key] {
			continue
		}
		seen[key] = true
		handles = append(handles, handle)
	}
	return handles
}

func isHandleRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// ContainsKeyword reports a case-insensitive substring match.
func ContainsKeyword(text, keyword string) bool {
	if keyword == "" {
		return false
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(keyword))
}
