package command

import (
	"strings"
	"unicode"
)

// Parse splits message text into a command token and its raw argument
// remainder. It returns ok=false when the text does not start with the exact
// prefix. The command token is lowercased; the remainder keeps its internal
// whitespace (quoted poll syntax depends on it) with the edges trimmed.
func Parse(text, prefix string) (cmd, args string, ok bool) {
	if prefix == "" || !strings.HasPrefix(text, prefix) {
		return "", "", false
	}
	body := strings.TrimSpace(text[len(prefix):])

	i := strings.IndexFunc(body, unicode.IsSpace)
	if i < 0 {
		return strings.ToLower(body), "", true
	}
	return strings.ToLower(body[:i]), strings.TrimSpace(body[i:]), true
}
