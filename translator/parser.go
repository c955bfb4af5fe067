package translator

import (
	"strings"

	"github.com/bytedance/sonic"

	"github.com/spektr-org/nexus/assistant"
)

// ============================================================================
// RESPONSE PARSER — Extracts an assistant.Response from model output
// ============================================================================
// The model is asked for JSON but may wrap it in a markdown fence or ignore
// the format entirely. Plain text becomes the answer as-is.
// ============================================================================

// maxFollowups caps suggestions taken from the model.
const maxFollowups = 3

var roleFollowups = map[string][]string{
	"CEO": {"Summarize top risks", "Revenue forecast", "Competitor updates"},
	"CFO": {"Cost breakdown", "Margin trends", "Liability analysis"},
	"COO": {"Production bottlenecks", "Downtime analysis", "Quality report"},
	"HR":  {"Safety incidents", "Training status", "Recruitment pipeline"},
}

// RoleFollowups returns the stock follow-up questions for a role.
func RoleFollowups(role string) []string {
	if f, ok := roleFollowups[strings.ToUpper(strings.TrimSpace(role))]; ok {
		return append([]string(nil), f...)
	}
	return []string{"Tell me more"}
}

// parseReply converts raw model text into a Response. It never fails:
// anything that is not the expected JSON is treated as a plain answer.
func parseReply(raw, role string) *assistant.Response {
	text := stripFence(raw)

	var resp assistant.Response
	if strings.HasPrefix(text, "{") && sonic.UnmarshalString(text, &resp) == nil && strings.TrimSpace(resp.Answer) != "" {
		resp.Answer = strings.TrimSpace(resp.Answer)
		resp.SuggestedFollowups = cleanList(resp.SuggestedFollowups, maxFollowups)
		resp.Sources = cleanList(resp.Sources, 0)
	} else {
		resp = assistant.Response{Answer: strings.TrimSpace(raw)}
	}

	if len(resp.SuggestedFollowups) == 0 {
		resp.SuggestedFollowups = RoleFollowups(role)
	}
	return &resp
}

// stripFence removes a surrounding ``` or ```json fence.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// cleanList trims entries, drops blanks and duplicates, and keeps at most
// limit entries (0 means no limit).
func cleanList(items []string, limit int) []string {
	seen := make(map[string]bool, len(items))
	var out []string
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" || seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
