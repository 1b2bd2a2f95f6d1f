// Package resolve maps a free-text target name onto one of a user's existing
// collections. It is the single authoritative implementation of the fuzzy
// matching rules; every call site (dispatcher, planner ranker validation,
// HTTP handlers) goes through it rather than carrying its own variant.
package resolve

import (
	"strings"

	"github.com/sakjin112/personal-ai-assistant/server/internal/model"
)

// CreateNew is the sentinel an external ranker returns when it believes no
// existing collection fits and a new one should be created.
const CreateNew = "CREATE_NEW"

// Resolve picks the best-matching collection for target, or nil when nothing
// matches and the caller should fall back to auto-creation.
//
// Candidates must arrive sorted most-recently-updated first; the substring
// tier returns the first hit in slice order, so the ordering is what makes
// ties deterministic. Store.Collections().List provides that ordering.
//
// Precedence, first hit wins:
//  1. a candidate set of size <= 1 short-circuits: the sole candidate (or
//     nil) is returned regardless of target text
//  2. exact name match
//  3. case-insensitive exact match
//  4. bidirectional case-insensitive substring match
func Resolve(target string, candidates []*model.Collection) *model.Collection {
	if len(candidates) == 0 {
		return nil
	}
	if len(candidates) == 1 {
		return candidates[0]
	}

	for _, c := range candidates {
		if c.Name == target {
			return c
		}
	}

	lower := strings.ToLower(target)
	for _, c := range candidates {
		if strings.ToLower(c.Name) == lower {
			return c
		}
	}

	return Substring(target, candidates)
}

// Substring runs only the loosened bidirectional substring tier. The add-flow
// fallback policy uses it as its final matching pass when the user owns two or
// more collections and none resolved exactly.
func Substring(target string, candidates []*model.Collection) *model.Collection {
	lower := strings.ToLower(target)
	if lower == "" {
		return nil
	}
	for _, c := range candidates {
		name := strings.ToLower(c.Name)
		if strings.Contains(name, lower) || strings.Contains(lower, name) {
			return c
		}
	}
	return nil
}

// Pick validates an external ranker's answer against the candidate set. The
// ranker can hallucinate names, so its choice is trusted only when it is
// literally one of the candidate names (case-insensitive). CreateNew and
// anything unrecognized map to nil, leaving Resolve as ground truth.
func Pick(choice string, candidates []*model.Collection) *model.Collection {
	choice = strings.TrimSpace(choice)
	if choice == "" || choice == CreateNew {
		return nil
	}
	for _, c := range candidates {
		if strings.EqualFold(c.Name, choice) {
			return c
		}
	}
	return nil
}
