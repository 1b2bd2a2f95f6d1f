package planner

import (
	"regexp"
	"strings"
)

var (
	addPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)add\s+(.+?)\s+to`),
		regexp.MustCompile(`(?i)add\s+(.+)$`),
	}
	itemSplitter = regexp.MustCompile(`,|\sand\s|&`)

	listPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)to\s+(?:the\s+)?(.+?)\s*(?:list)?$`),
		regexp.MustCompile(`(?i)to\s+(?:my\s+)?(.+?)$`),
	}
)

// ExtractItems pulls item phrases out of an "add X to Y" message, splitting
// on commas, "and" and "&".
func ExtractItems(message string) []string {
	for _, pat := range addPatterns {
		m := pat.FindStringSubmatch(message)
		if m == nil {
			continue
		}
		var items []string
		for _, part := range itemSplitter.Split(m[1], -1) {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
		return items
	}
	return nil
}

// ExtractTargetList guesses the list the message refers to. A substring match
// against an existing name wins; otherwise the raw phrase is returned so the
// caller can create it. Empty when the message names no list at all.
func ExtractTargetList(message string, existing []string) string {
	for _, pat := range listPatterns {
		m := pat.FindStringSubmatch(message)
		if m == nil {
			continue
		}
		target := strings.TrimSpace(m[1])
		lowerTarget := strings.ToLower(target)
		for _, name := range existing {
			lowerName := strings.ToLower(name)
			if strings.Contains(lowerName, lowerTarget) || strings.Contains(lowerTarget, lowerName) {
				return name
			}
		}
		return target
	}
	return ""
}
