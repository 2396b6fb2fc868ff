package llm

import (
	"encoding/json"
	"strings"
)

// StripFences removes a surrounding Markdown code fence, including an
// optional language tag such as ```json or ```cpp. Text without a leading
// fence is returned trimmed but otherwise unchanged.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	body := strings.TrimPrefix(text, "```")
	nl := strings.IndexByte(body, '\n')
	if nl < 0 {
		return strings.TrimSpace(strings.Trim(body, "`"))
	}
	if tag := strings.TrimSpace(body[:nl]); tag == "" || !strings.ContainsAny(tag, " {[\"") {
		body = body[nl+1:]
	}
	if end := strings.LastIndex(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

// ExtractJSON returns the first valid JSON object in text. The whole
// (fence-stripped) text is tried first; otherwise every '{' is tried as the
// start of a brace-balanced candidate. It returns false when nothing parses.
func ExtractJSON(text string) (string, bool) {
	text = StripFences(text)
	if text == "" {
		return "", false
	}
	if json.Valid([]byte(text)) && strings.HasPrefix(text, "{") {
		return text, true
	}
	for start := strings.IndexByte(text, '{'); start >= 0; {
		if cand, ok := balanced(text[start:]); ok && json.Valid([]byte(cand)) {
			return cand, true
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

// balanced returns the prefix of s up to the brace that closes s[0].
// Braces inside JSON strings are ignored.
func balanced(s string) (string, bool) {
	depth := 0
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[:i+1], true
			}
		}
	}
	return "", false
}
