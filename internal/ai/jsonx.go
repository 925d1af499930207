// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeJSON extracts the JSON value from a model response and unmarshals it
// into v. Responses frequently arrive wrapped in Markdown code fences or
// surrounded by prose; DecodeJSON slices out the outermost JSON object or
// array and repairs keys that lost their opening quote before giving up.
func DecodeJSON(raw string, v any) error {
	s := sliceJSON(stripFences(raw))
	if s == "" {
		return fmt.Errorf("no JSON value in model response")
	}
	if err := json.Unmarshal([]byte(s), v); err == nil {
		return nil
	}
	if err := json.Unmarshal([]byte(repairKeys(s)), v); err != nil {
		return fmt.Errorf("parsing model response: %w", err)
	}
	return nil
}

// stripFences removes Markdown code fences (``` or ```json) around a response.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	}
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// sliceJSON returns the substring from the first opening brace or bracket to
// the matching final closing one, or "" when none exists.
func sliceJSON(s string) string {
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return ""
	}
	var end int
	if s[start] == '{' {
		end = strings.LastIndex(s, "}")
	} else {
		end = strings.LastIndex(s, "]")
	}
	if end <= start {
		return ""
	}
	return s[start : end+1]
}

// repairKeys fixes object keys that lost their opening quote, a recurring
// model formatting slip. Example: `, score": 8` becomes `, "score": 8`.
func repairKeys(s string) string {
	in := []rune(s)
	out := make([]rune, 0, len(in)+16)

	i := 0
	for i < len(in) {
		ch := in[i]
		out = append(out, ch)
		i++
		if ch != '{' && ch != ',' {
			continue
		}

		for i < len(in) && (in[i] == ' ' || in[i] == '\n' || in[i] == '\t') {
			out = append(out, in[i])
			i++
		}

		if i >= len(in) || in[i] == '"' || !isKeyRune(in[i]) {
			continue
		}

		keyStart := i
		for i < len(in) && isKeyRune(in[i]) {
			i++
		}
		// A bare word followed by `":` is a key missing its opening quote.
		if i+1 < len(in) && in[i] == '"' && in[i+1] == ':' {
			out = append(out, '"')
		}
		out = append(out, in[keyStart:i]...)
	}

	return string(out)
}

func isKeyRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
