package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrUnparseable indicates no JSON object could be recovered from the model
// response. Callers treat it as a signal to fall back, never as a panic.
var ErrUnparseable = errors.New("unparseable model response")

var jsonFenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// ParseModelResponse extracts, repairs, and parses the single JSON object
// expected in a model response. Each repair step targets one observed class
// of near-miss output; the function never panics and never returns a partial
// object.
func ParseModelResponse(raw string) (map[string]any, error) {
	candidate, ok := extractCandidate(raw)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object found", ErrUnparseable)
	}

	repaired := repairJSON(candidate)

	var parsed map[string]any
	if err := json.Unmarshal([]byte(repaired), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	return parsed, nil
}

// extractCandidate locates the JSON object within arbitrary text. A fenced
// block wins; otherwise the slice from the first { to the last } is used,
// tolerating leading and trailing commentary.
func extractCandidate(raw string) (string, bool) {
	if m := jsonFenceRe.FindStringSubmatch(raw); m != nil {
		return m[1], true
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return raw[start : end+1], true
}

// repairJSON fixes the defects models emit despite the prompt contract:
// raw control characters inside string literals, // and /* */ comments, and
// trailing commas before } or ]. The scanner tracks quoting so a URL,
// comma, or comment marker inside a string value survives untouched.
func repairJSON(s string) string {
	var out strings.Builder
	out.Grow(len(s))

	inString := false
	escaped := false
	runes := []rune(s)

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if inString {
			if escaped {
				out.WriteRune(r)
				escaped = false
				continue
			}
			switch {
			case r == '\\':
				escaped = true
				out.WriteRune(r)
			case r == '"':
				inString = false
				out.WriteRune(r)
			case r < 0x20:
				// Raw control characters are illegal inside JSON strings;
				// models emit literal newlines in narrative fields.
				out.WriteRune(' ')
			default:
				out.WriteRune(r)
			}
			continue
		}

		switch {
		case r == '"':
			inString = true
			out.WriteRune(r)

		case r == '/' && i+1 < len(runes) && runes[i+1] == '/':
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
			if i < len(runes) {
				out.WriteRune('\n')
			}

		case r == '/' && i+1 < len(runes) && runes[i+1] == '*':
			i += 2
			for i+1 < len(runes) && !(runes[i] == '*' && runes[i+1] == '/') {
				i++
			}
			i++ // skip the trailing '/'

		case r == ',':
			// Drop the comma if the next non-whitespace closes a scope.
			j := i + 1
			for j < len(runes) && isJSONSpace(runes[j]) {
				j++
			}
			if j < len(runes) && (runes[j] == '}' || runes[j] == ']') {
				continue
			}
			out.WriteRune(r)

		case r < 0x20 && r != '\t' && r != '\n' && r != '\r':
			// Strip control characters; keep legitimate whitespace.

		default:
			out.WriteRune(r)
		}
	}

	return out.String()
}

func isJSONSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
