// Package planner turns free-form user messages into structured assistant
// actions by calling an OpenAI-compatible chat-completions API. Model output
// is advisory: malformed JSON degrades to a locally generated action, and the
// ranker's answers are validated against real collection names by callers.
package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/sakjin112/personal-ai-assistant/server/internal/config"
	"github.com/sakjin112/personal-ai-assistant/server/internal/model"
)

// Plan is the structured result of interpreting one user message.
type Plan struct {
	Response       string         `json:"response"`
	Actions        []model.Action `json:"actions"`
	Queries        []model.Action `json:"queries"`
	Clarifications []string       `json:"clarifications,omitempty"`

	// FallbackGenerated is set when the model's output could not be parsed
	// and the actions were derived locally from the message text.
	FallbackGenerated bool `json:"-"`
}

// Snapshot carries the user's current collections into the prompt so the
// model targets names that actually exist.
type Snapshot struct {
	Lists     []*model.Collection
	Schedules []*model.Collection
	Memory    []*model.Collection
}

// Planner is the chat-completions client.
type Planner struct {
	client *resty.Client
	model  string
	logger zerolog.Logger
}

// New builds a Planner from service configuration.
func New(cfg *config.Config, logger zerolog.Logger) *Planner {
	c := resty.New().
		SetBaseURL(cfg.PlannerBaseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(time.Duration(cfg.PlannerTimeoutSeconds) * time.Second)
	if cfg.PlannerAPIKey != "" {
		c.SetAuthToken(cfg.PlannerAPIKey)
	}
	return &Planner{client: c, model: cfg.PlannerModel, logger: logger}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Plan interprets message against the user's current data. A transport or
// API failure is returned as an error; a model that answers with non-JSON is
// not, the plan is rebuilt locally from the message text instead.
func (p *Planner) Plan(ctx context.Context, message string, snap *Snapshot) (*Plan, error) {
	if snap == nil {
		snap = &Snapshot{}
	}
	content, err := p.complete(ctx, chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: buildPrompt(message, snap)},
			{Role: "user", Content: message},
		},
		MaxTokens:      1500,
		Temperature:    0.7,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, err
	}

	var plan Plan
	if err := json.Unmarshal([]byte(content), &plan); err != nil {
		p.logger.Warn().Err(err).Str("raw", truncate(content, 200)).Msg("planner returned non-JSON, generating fallback plan")
		return p.fallbackPlan(message, content, snap), nil
	}
	if plan.Response == "" {
		plan.Response = "I'm here to help!"
	}
	return &plan, nil
}

func (p *Planner) complete(ctx context.Context, req chatRequest) (string, error) {
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(&req).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("planner request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("planner status %d: %s", resp.StatusCode(), truncate(resp.String(), 200))
	}
	var cr chatResponse
	if err := json.Unmarshal(resp.Body(), &cr); err != nil {
		return "", fmt.Errorf("decode planner response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("planner returned no choices")
	}
	return strings.TrimSpace(cr.Choices[0].Message.Content), nil
}

// fallbackPlan rebuilds a usable plan when the model ignored the JSON
// contract. Add-to-list phrasing still produces a real action.
func (p *Planner) fallbackPlan(message, raw string, snap *Snapshot) *Plan {
	plan := &Plan{
		Response:          raw,
		Actions:           []model.Action{},
		Queries:           []model.Action{},
		FallbackGenerated: true,
	}
	if plan.Response == "" {
		plan.Response = "I'll help you with that!"
	}

	lower := strings.ToLower(message)
	if !strings.Contains(lower, "add") || !strings.Contains(lower, "list") {
		return plan
	}
	items := ExtractItems(message)
	if len(items) == 0 {
		return plan
	}
	target := ExtractTargetList(message, collectionNames(snap.Lists))
	if target == "" {
		target = "Shopping List"
	}
	plan.Actions = []model.Action{{
		Type:   "smart_add",
		Intent: "Adding items to list",
		Data: model.ActionData{
			Target:    target,
			Operation: "add_to_list",
			Values:    items,
			Metadata:  model.ActionMetadata{Confidence: "medium"},
		},
	}}
	plan.Response = fmt.Sprintf("I'll add %s to your %s!", strings.Join(items, ", "), target)
	return plan
}

func buildPrompt(message string, snap *Snapshot) string {
	var b strings.Builder
	b.WriteString(systemPrompt)
	b.WriteString("\n\nCURRENT USER DATA:\n")
	writeCollectionSection(&b, "EXISTING LISTS", snap.Lists, describeList)
	writeCollectionSection(&b, "EXISTING SCHEDULES", snap.Schedules, describeSchedule)
	writeCollectionSection(&b, "EXISTING MEMORY CATEGORIES", snap.Memory, describeMemory)
	b.WriteString("\nDATA SUMMARY:\n")
	fmt.Fprintf(&b, "- Lists: %d (%s)\n", len(snap.Lists), namesOrNone(snap.Lists))
	fmt.Fprintf(&b, "- Schedules: %d (%s)\n", len(snap.Schedules), namesOrNone(snap.Schedules))
	fmt.Fprintf(&b, "- Memory Categories: %d (%s)\n", len(snap.Memory), namesOrNone(snap.Memory))
	b.WriteString("\nMATCHING HINTS:\n")
	b.WriteString("- Food/grocery items usually target shopping-related lists\n")
	b.WriteString("- Work/task items usually target todo/work lists\n")
	b.WriteString("- Always use exact names from above, never create variations\n")
	fmt.Fprintf(&b, "\nUSER MESSAGE: %q\n", message)
	b.WriteString("\nCRITICAL: Respond with VALID JSON only, in the documented format.")
	return b.String()
}

func writeCollectionSection(b *strings.Builder, title string, cols []*model.Collection, describe func(*model.Collection) string) {
	fmt.Fprintf(b, "%s (%d) - USE THESE EXACT NAMES:\n", title, len(cols))
	if len(cols) == 0 {
		b.WriteString("  - None\n")
		return
	}
	for _, c := range cols {
		fmt.Fprintf(b, "  - %q (%s)\n", c.Name, describe(c))
	}
}

func describeList(c *model.Collection) string {
	recent := "empty"
	if n := len(c.Items); n > 0 {
		start := n - 3
		if start < 0 {
			start = 0
		}
		var texts []string
		for _, it := range c.Items[start:] {
			texts = append(texts, it.Text)
		}
		recent = strings.Join(texts, ", ")
	}
	return fmt.Sprintf("%s, %d items, recent: %s", c.Type, len(c.Items), recent)
}

func describeSchedule(c *model.Collection) string {
	return fmt.Sprintf("%d events", len(c.Events))
}

func describeMemory(c *model.Collection) string {
	return fmt.Sprintf("%d items", len(c.MemoryItems))
}

func collectionNames(cols []*model.Collection) []string {
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		out = append(out, c.Name)
	}
	return out
}

func namesOrNone(cols []*model.Collection) string {
	if len(cols) == 0 {
		return "none"
	}
	return strings.Join(collectionNames(cols), ", ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

const systemPrompt = `You are an intelligent multilingual personal assistant. Understand natural language and help users manage their lists, schedules and memory.

PRINCIPLES:
1. Understand intent, not just keywords. "create a list for tomorrow" on a Wednesday means a Thursday list.
2. Be context-aware: if the user has one list and says "add milk", target that list regardless of name.
3. Parse dates naturally: "tomorrow", "next Friday".
4. The matching system resolves approximate names, so focus on what the user wants to accomplish.

ACTION TYPES:
- query_data / query_schedule / query_memory: answer questions about existing data
- smart_create: create lists/schedules with intelligent naming
- smart_add: add items with smart targeting
- smart_update: update/edit items (including prepare_edit when the target item is unclear)
- smart_delete: delete with smart matching
- smart_schedule: scheduling requests with natural language dates
- smart_remember: store any information naturally

RESPONSE FORMAT - always valid JSON:
{
  "response": "natural conversational response in the user's language",
  "actions": [
    {
      "type": "action_type",
      "intent": "what you're doing",
      "data": {
        "target": "list/schedule/category name",
        "operation": "create_list|add_to_list|add_event|store_memory|update_item|delete_list|...",
        "values": ["items or values"],
        "metadata": {"smartDate": "parsed date if relevant", "confidence": "high|medium|low"}
      }
    }
  ],
  "queries": [],
  "clarifications": []
}`
