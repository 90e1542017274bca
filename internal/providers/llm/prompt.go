package llm

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sandevgo/vaani/internal/core"
)

const classifySystemPrompt = `You are an intent classifier for a multilingual chat assistant.
Users write in English, Hindi, Hinglish and other Indian languages.
Classify the message into exactly one intent tag from the allowed list and
extract entities. Output only valid JSON:
{"intent": "<tag>", "confidence": <0..1>, "entities": {"key": "value"}}
Entity keys: city, date, train_number, pnr_number, source_city,
destination_city, search_query, sign, term, topic, time, amount.
If nothing fits, use "chat" with low confidence.`

const relationSystemPrompt = `You decide how a chat message relates to the recent conversation.
Output only valid JSON:
{"relation": "CONTINUATION"|"MODIFICATION"|"CLARIFICATION"|"NEW_TOPIC",
 "use_context": true|false, "confidence": <0..1>, "entities": {"key": "value"}}
CONTINUATION: asks for more of the same. MODIFICATION: changes one
parameter of the previous request. CLARIFICATION: answers a question the
assistant asked. NEW_TOPIC: unrelated new request. "entities" holds only
values the user changed or confirmed in this message.`

var classifyFewShot = []chatMessage{
	{Role: "user", Content: "weather in Mumbai"},
	{Role: "assistant", Content: `{"intent": "weather", "confidence": 0.95, "entities": {"city": "Mumbai"}}`},
	{Role: "user", Content: "mujhe patna se delhi jana hai"},
	{Role: "assistant", Content: `{"intent": "train_journey", "confidence": 0.9, "entities": {"source_city": "Patna", "destination_city": "Delhi"}}`},
	{Role: "user", Content: "kuch accha sa gana chahiye"},
	{Role: "assistant", Content: `{"intent": "chat", "confidence": 0.6, "entities": {}}`},
}

var (
	tokenizerOnce sync.Once
	tokenizer     *tiktoken.Tiktoken
)

func getTokenizer() *tiktoken.Tiktoken {
	tokenizerOnce.Do(func() {
		tk, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			tokenizer = tk
		}
	})
	return tokenizer
}

func countTokens(s string) int {
	if tk := getTokenizer(); tk != nil {
		return len(tk.Encode(s, nil, nil))
	}
	// Offline fallback: rough words-to-tokens estimate.
	return len(strings.Fields(s)) * 4 / 3
}

// serializeHistory renders the most recent turns, newest last, dropping
// oldest turns first to stay within the token budget.
func serializeHistory(turns []core.Turn, maxTurns, tokenBudget int) string {
	if len(turns) == 0 {
		return ""
	}
	if len(turns) > maxTurns {
		turns = turns[len(turns)-maxTurns:]
	}

	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		entities := ""
		if len(t.Entities) > 0 {
			parts := make([]string, 0, len(t.Entities))
			for k, v := range t.Entities {
				parts = append(parts, fmt.Sprintf("%s=%v", k, v))
			}
			entities = " [" + strings.Join(parts, ", ") + "]"
		}
		lines = append(lines, fmt.Sprintf("user: %s -> %s%s", t.Text, t.Intent, entities))
	}

	for len(lines) > 1 {
		joined := strings.Join(lines, "\n")
		if countTokens(joined) <= tokenBudget {
			break
		}
		lines = lines[1:]
	}
	return strings.Join(lines, "\n")
}

// extractJSON tolerates models that wrap the JSON object in prose or fences.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		return content[start : end+1]
	}
	return content
}
