package assistant

import (
	"encoding/json"
	"regexp"
	"strings"
)

// FallbackReply is sent when the model produced nothing presentable.
const FallbackReply = "Sorry, I could not put an answer together. Could you rephrase that?"

var (
	fenceRe     = regexp.MustCompile("(?s)```[A-Za-z0-9_-]*[ \t]*\n?(.*?)```")
	blankRunsRe = regexp.MustCompile(`\n{3,}`)
)

// proseKeys are the fields agents use for human readable text, in priority order.
var proseKeys = []string{"reply", "message", "explanation", "shopping_list_text", "optimized_cost_summary", "summary", "text"}

// SanitizeReply removes code fences and raw JSON from a model reply.
// JSON documents are replaced by their prose field when they have one.
func SanitizeReply(text string) string {
	text = fenceRe.ReplaceAllStringFunc(text, func(block string) string {
		inner := strings.TrimSpace(fenceRe.FindStringSubmatch(block)[1])
		if prose, isJSON := proseFromJSON(inner); isJSON {
			return prose
		}
		return inner
	})

	text = strings.TrimSpace(text)
	if prose, isJSON := proseFromJSON(text); isJSON {
		text = prose
	}

	return strings.TrimSpace(blankRunsRe.ReplaceAllString(text, "\n\n"))
}

// proseFromJSON reports whether s is a JSON document and returns its prose field, if any.
func proseFromJSON(s string) (string, bool) {
	if !strings.HasPrefix(s, "{") && !strings.HasPrefix(s, "[") {
		return "", false
	}
	var doc any
	if err := json.Unmarshal([]byte(s), &doc); err != nil {
		return "", false
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return "", true
	}
	for _, key := range proseKeys {
		if v, ok := obj[key].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), true
		}
	}
	return "", true
}
