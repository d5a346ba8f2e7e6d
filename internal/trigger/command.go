package trigger

import (
	"strings"
)

// Command is a slash command addressed to this bot.
type Command struct {
	Name string
	Arg  string
}

// ParseCommand recognizes "/name", "/name@handle" and an optional argument.
// A command with a handle is accepted only when the handle matches one of
// names (case-insensitive). Command names are lowercased.
func ParseCommand(text string, names ...string) (Command, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return Command{}, false
	}

	head, arg, _ := strings.Cut(text[1:], " ")
	name, handle, addressed := strings.Cut(head, "@")
	if name == "" || !isWord(name) {
		return Command{}, false
	}
	if addressed && !matchesAny(handle, names) {
		return Command{}, false
	}

	return Command{Name: strings.ToLower(name), Arg: strings.TrimSpace(arg)}, true
}

func isWord(s string) bool {
	for _, r := range s {
		if r != '_' && !('a' <= r && r <= 'z') && !('A' <= r && r <= 'Z') && !('0' <= r && r <= '9') {
			return false
		}
	}
	return true
}

func matchesAny(handle string, names []string) bool {
	for _, name := range names {
		name = strings.TrimPrefix(name, "@")
		if name != "" && strings.EqualFold(handle, name) {
			return true
		}
	}
	return false
}
