package completion

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// codeBlockPattern matches markdown code fences with an optional language tag.
var codeBlockPattern = regexp.MustCompile(`(?s)` + "```" + `(\w*)\s*\n(.+?)\n` + "```")

// ExtractJSON pulls a JSON document out of model output that may be wrapped
// in markdown fences or surrounded by prose. Fenced blocks win over raw
// brace matching.
func ExtractJSON(response string) (string, error) {
	if jsonStr, found := extractFromCodeBlock(response); found {
		return jsonStr, nil
	}
	if jsonStr, found := extractRawJSON(response); found {
		return jsonStr, nil
	}
	return "", fmt.Errorf("no JSON document found in response")
}

func extractFromCodeBlock(response string) (string, bool) {
	matches := codeBlockPattern.FindAllStringSubmatch(response, -1)
	for _, match := range matches {
		if len(match) < 3 {
			continue
		}
		lang := strings.ToLower(match[1])
		content := strings.TrimSpace(match[2])

		// Accept json-tagged and untagged blocks; skip other languages.
		if lang != "" && lang != "json" {
			continue
		}
		if strings.HasPrefix(content, "{") || strings.HasPrefix(content, "[") {
			if json.Valid([]byte(content)) {
				return content, true
			}
		}
	}
	return "", false
}

func extractRawJSON(response string) (string, bool) {
	startObj := strings.Index(response, "{")
	startArr := strings.Index(response, "[")

	start := -1
	closeChar := byte('}')
	if startObj >= 0 && (startArr < 0 || startObj < startArr) {
		start = startObj
	} else if startArr >= 0 {
		start = startArr
		closeChar = ']'
	}
	if start < 0 {
		return "", false
	}

	jsonStr := matchBracket(response[start:], closeChar)
	if jsonStr != "" && json.Valid([]byte(jsonStr)) {
		return jsonStr, true
	}
	return "", false
}

// matchBracket walks s from its opening bracket to the balancing close,
// tracking string literals and escapes so braces inside values do not
// confuse the depth count. Returns "" when the brackets never balance.
func matchBracket(s string, closeChar byte) string {
	if len(s) == 0 {
		return ""
	}
	openChar := s[0]
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		if c == openChar {
			depth++
		} else if c == closeChar {
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return ""
}
