package dates

import (
	"testing"
	"time"
)

// Wednesday.
var fixed = time.Date(2025, 6, 4, 15, 30, 0, 0, time.UTC)

func fixedParser() *Parser {
	return NewParserAt(func() time.Time { return fixed })
}

func TestParse_TodayTomorrow(t *testing.T) {
	p := fixedParser()
	if got := p.Parse("today"); got != "Wednesday, June 4, 2025" {
		t.Fatalf("today: got %q", got)
	}
	if got := p.Parse("Tomorrow"); got != "Thursday, June 5, 2025" {
		t.Fatalf("tomorrow: got %q", got)
	}
}

func TestParse_WeekdayNames(t *testing.T) {
	p := fixedParser()
	cases := map[string]string{
		"friday":        "Friday, June 6, 2025",
		"next Monday":   "Monday, June 9, 2025",
		"on saturday":   "Saturday, June 7, 2025",
		// Today is Wednesday; a bare "wednesday" means next week.
		"wednesday": "Wednesday, June 11, 2025",
	}
	for phrase, want := range cases {
		if got := p.Parse(phrase); got != want {
			t.Fatalf("Parse(%q) = %q, want %q", phrase, got, want)
		}
	}
}

func TestParse_PassThrough(t *testing.T) {
	p := fixedParser()
	for _, phrase := range []string{"June 20th at 3pm", "whenever", ""} {
		if got := p.Parse(phrase); got != phrase {
			t.Fatalf("Parse(%q) = %q, want pass-through", phrase, got)
		}
	}
}
