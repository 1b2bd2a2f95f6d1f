// Package parse holds the small pure-text helpers the dispatcher leans on:
// splitting "remember that X is Y" strings into key/value pairs and inferring
// a list's type from its name and contents.
package parse

import (
	"regexp"
	"strings"
)

// KeyValue is the result of extracting a memory item from free text.
type KeyValue struct {
	Key   string
	Value string
}

// Pattern order is load-bearing: the "is" pattern runs before the colon
// pattern, so "Gmail password: the word is abc123" splits on "is" inside the
// colon text. Compatibility with existing stored keys depends on keeping this
// exact order.
var kvPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(.+?)\s+is\s+(.+)$`),
	regexp.MustCompile(`^(.+?):\s*(.+)$`),
	regexp.MustCompile(`(?i)^remember\s+that\s+(.+?)\s+is\s+(.+)$`),
	regexp.MustCompile(`^(.+?)\s*=\s*(.+)$`),
}

// ExtractKeyValue splits raw into a key/value pair using the first matching
// pattern. When nothing matches, the whole string becomes the key and the
// value stays empty.
func ExtractKeyValue(raw string) KeyValue {
	for _, p := range kvPatterns {
		if m := p.FindStringSubmatch(raw); m != nil {
			return KeyValue{Key: strings.TrimSpace(m[1]), Value: strings.TrimSpace(m[2])}
		}
	}
	return KeyValue{Key: raw, Value: ""}
}

var (
	shoppingHints = []string{"shop", "grocery", "milk", "bread"}
	todoHints     = []string{"todo", "task", "work"}
)

// ListType infers a list's type tag from its name and initial items.
// Total and deterministic; falls through to "custom".
func ListType(name string, items []string) string {
	lowerName := strings.ToLower(name)
	itemText := strings.ToLower(strings.Join(items, " "))

	for _, hint := range shoppingHints {
		if strings.Contains(lowerName, hint) || strings.Contains(itemText, hint) {
			return "shopping"
		}
	}
	for _, hint := range todoHints {
		if strings.Contains(lowerName, hint) {
			return "todo"
		}
	}
	return "custom"
}
