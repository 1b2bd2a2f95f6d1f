// Package dates converts small natural-language phrases ("today", "tomorrow",
// weekday names) to formatted dates. Anything it doesn't recognize passes
// through unchanged; it never fails.
package dates

import (
	"strings"
	"time"
)

// Layout matches the long-form date the rest of the system exchanges,
// e.g. "Thursday, June 5, 2025".
const Layout = "Monday, January 2, 2006"

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// Parser resolves phrases against an injectable clock.
type Parser struct {
	now func() time.Time
}

// NewParser returns a Parser using the wall clock.
func NewParser() *Parser { return &Parser{now: time.Now} }

// NewParserAt pins the clock; tests use this.
func NewParserAt(now func() time.Time) *Parser { return &Parser{now: now} }

// Now reports the parser's current time.
func (p *Parser) Now() time.Time { return p.now() }

// Parse maps phrase to a formatted date. "today" and "tomorrow" are literal;
// a weekday name maps to its next occurrence (+7 days when today already is
// that weekday). Unrecognized input is returned unchanged.
func (p *Parser) Parse(phrase string) string {
	today := p.now()
	natural := strings.ToLower(phrase)

	switch natural {
	case "today":
		return today.Format(Layout)
	case "tomorrow":
		return today.AddDate(0, 0, 1).Format(Layout)
	}

	for name, wd := range weekdays {
		if strings.Contains(natural, name) {
			return nextWeekday(today, wd).Format(Layout)
		}
	}

	return phrase
}

func nextWeekday(from time.Time, target time.Weekday) time.Time {
	days := (int(target) - int(from.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return from.AddDate(0, 0, days)
}

// ToTime converts a formatted date string back to a timestamp. It accepts the
// package Layout and RFC 3339; anything else yields nil, mirroring the
// pass-through contract of Parse.
func ToTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{Layout, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
