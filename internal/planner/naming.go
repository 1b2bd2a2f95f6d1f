package planner

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// SuggestName asks the model for a collection name for a create request.
// Any failure falls back to deterministic local naming so creation never
// blocks on the model.
func (p *Planner) SuggestName(ctx context.Context, request string, existing []string) string {
	content, err := p.complete(ctx, chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: buildNamingPrompt(request, existing)},
			{Role: "user", Content: request},
		},
		MaxTokens:   30,
		Temperature: 0.3,
	})
	if err != nil || content == "" {
		p.logger.Debug().Err(err).Str("request", request).Msg("name suggestion failed, using local naming")
		return FallbackName(request, time.Now())
	}
	return strings.Trim(content, `"`)
}

// FallbackName derives a name without a model: "tomorrow" becomes the
// weekday name, otherwise a keyword picks a stock name.
func FallbackName(request string, now time.Time) string {
	lower := strings.ToLower(request)
	switch {
	case strings.Contains(lower, "tomorrow"):
		return now.AddDate(0, 0, 1).Weekday().String() + " List"
	case strings.Contains(lower, "shop"):
		return "Shopping List"
	case strings.Contains(lower, "todo"), strings.Contains(lower, "task"):
		return "Todo List"
	case strings.Contains(lower, "work"):
		return "Work List"
	}
	return "New List"
}

func buildNamingPrompt(request string, existing []string) string {
	var b strings.Builder
	b.WriteString("You are a smart assistant that creates good names for lists and schedules.\n\n")
	fmt.Fprintf(&b, "USER REQUEST: %q\n", request)
	fmt.Fprintf(&b, "EXISTING NAMES: %s\n", strings.Join(existing, ", "))
	b.WriteString(`
RULES:
1. Create a clear, descriptive name in Title Case.
2. Make it different from existing names.
3. For dates like "tomorrow", convert to actual day names.

EXAMPLES:
- "list for tomorrow" (on a Wednesday) -> "Thursday List"
- "shopping stuff" -> "Shopping List"
- "work things" -> "Work Tasks"

Respond with ONLY the name, nothing else.`)
	return b.String()
}
