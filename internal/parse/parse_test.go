package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractKeyValue(t *testing.T) {
	cases := []struct {
		raw   string
		key   string
		value string
	}{
		{"John's phone is 555-1234", "John's phone", "555-1234"},
		{"Gmail password: abc123", "Gmail password", "abc123"},
		{"username = john123", "username", "john123"},
		{"wifi code=hunter2", "wifi code", "hunter2"},
		{"just some text", "just some text", ""},
		{"", "", ""},
		// The "is" pattern runs before the colon pattern, so the split lands
		// on "is" inside the colon text. Pinned deliberately: existing stored
		// keys depend on this exact pattern order.
		{"Gmail password: the word is abc123", "Gmail password: the word", "abc123"},
	}
	for _, tc := range cases {
		got := ExtractKeyValue(tc.raw)
		assert.Equal(t, tc.key, got.Key, "key for %q", tc.raw)
		assert.Equal(t, tc.value, got.Value, "value for %q", tc.raw)
	}
}

func TestExtractKeyValue_TrimsWhitespace(t *testing.T) {
	got := ExtractKeyValue("  the gate code   is   4471 ")
	assert.Equal(t, "the gate code", got.Key)
	assert.Equal(t, "4471", got.Value)
}

func TestListType(t *testing.T) {
	cases := []struct {
		name  string
		items []string
		want  string
	}{
		{"Grocery Run", []string{"milk", "eggs"}, "shopping"},
		{"Weekend Shopping", nil, "shopping"},
		{"Errands", []string{"buy bread"}, "shopping"},
		{"Work Tasks", nil, "todo"},
		{"My ToDo", []string{"call mom"}, "todo"},
		{"Random", []string{"foo"}, "custom"},
		{"", nil, "custom"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ListType(tc.name, tc.items), "ListType(%q, %v)", tc.name, tc.items)
	}
}
