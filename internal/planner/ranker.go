package planner

import (
	"context"
	"fmt"
	"strings"

	"github.com/sakjin112/personal-ai-assistant/server/internal/model"
	"github.com/sakjin112/personal-ai-assistant/server/internal/resolve"
)

// Ranker asks a model which existing collection a request refers to. The
// answer is advisory; callers validate it with resolve.Pick before use.
type Ranker interface {
	Rank(ctx context.Context, request string, candidates []*model.Collection, items []string) (string, error)
}

// Rank returns the model's raw choice: a candidate name, or the CREATE_NEW
// sentinel when it thinks none fit. With one or zero candidates there is
// nothing to rank and no call is made.
func (p *Planner) Rank(ctx context.Context, request string, candidates []*model.Collection, items []string) (string, error) {
	if len(candidates) == 0 {
		return resolve.CreateNew, nil
	}
	if len(candidates) == 1 {
		return candidates[0].Name, nil
	}

	content, err := p.complete(ctx, chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: buildRankPrompt(request, candidates, items)},
			{Role: "user", Content: fmt.Sprintf("Match this request: %q", request)},
		},
		MaxTokens:   50,
		Temperature: 0.1,
	})
	if err != nil {
		return "", err
	}
	return content, nil
}

func buildRankPrompt(request string, candidates []*model.Collection, items []string) string {
	var b strings.Builder
	b.WriteString("You are a smart assistant matching a user request to the best existing collection.\n\n")
	fmt.Fprintf(&b, "USER REQUEST: %q\n", request)
	if len(items) > 0 {
		fmt.Fprintf(&b, "ITEMS TO ADD: %s\n", strings.Join(items, ", "))
	}
	b.WriteString("\nAVAILABLE OPTIONS:\n")
	for i, c := range candidates {
		fmt.Fprintf(&b, "%d. %q (%d entries)\n", i+1, c.Name, c.Len())
	}
	b.WriteString(`
RULES:
1. If the user mentions a specific name, match to it, even partially.
2. Otherwise use the content being added to determine the best match.
3. Food/grocery items usually go to shopping lists; tasks to todo/work lists.
4. If uncertain, pick the most recently used option (they are listed in that order).

Respond with ONLY the exact name from the available options, nothing else.
If a new collection should be created instead, respond with "CREATE_NEW".`)
	return b.String()
}
