package agentloop

import (
	"encoding/json"
	"strings"
)

// ParseArguments parses a tool-call argument string defensively. Stage
// one is a strict parse; when the model wrapped or mangled the JSON
// (markdown fences, leading prose), stage two extracts the first
// brace-balanced run and strict-parses that. (nil, false) means the
// arguments are unusable.
//
// An empty or whitespace-only string parses as an empty argument object,
// since models routinely omit arguments for zero-parameter tools.
func ParseArguments(raw string) (map[string]interface{}, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return map[string]interface{}{}, true
	}

	var args map[string]interface{}
	if err := json.Unmarshal([]byte(trimmed), &args); err == nil {
		return args, true
	}

	candidate, ok := firstBalancedObject(trimmed)
	if !ok {
		return nil, false
	}
	if err := json.Unmarshal([]byte(candidate), &args); err != nil {
		return nil, false
	}
	return args, true
}

// firstBalancedObject returns the first brace-balanced {...} run in s.
// String literals and escape sequences are honored, so braces inside
// quoted values never unbalance the scan.
func firstBalancedObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		}
	}
	return "", false
}
