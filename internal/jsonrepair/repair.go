// File path: internal/jsonrepair/repair.go
package jsonrepair

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrUnparsable reports that no repair strategy produced valid JSON.
var ErrUnparsable = errors.New("text could not be parsed as JSON")

// ParseError carries the original, pre-repair text for diagnostics.
type ParseError struct {
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not parse JSON after cleaning (%d bytes of input)", len(e.Input))
}

func (e *ParseError) Unwrap() error { return ErrUnparsable }

var (
	fenceLine = regexp.MustCompile("(?m)^```[a-zA-Z0-9]*[ \t]*$")
	braceSpan = regexp.MustCompile(`(?s)\{.*\}`)
)

// Repair coerces a free-form model response that is expected to contain a
// JSON object into a parsed value. Strategies are tried in order and the
// first successful parse wins: strip code fences, rewrite single quotes
// outside string spans, extract the outermost brace-delimited span. The
// routine is biased toward recovering something usable rather than rejecting
// every malformed input.
func Repair(text string) (map[string]interface{}, error) {
	cleaned := strings.TrimSpace(fenceLine.ReplaceAllString(text, ""))

	if parsed, err := parseObject(cleaned); err == nil {
		return parsed, nil
	}

	if parsed, err := parseObject(rewriteQuotes(cleaned)); err == nil {
		return parsed, nil
	}

	if span := braceSpan.FindString(cleaned); span != "" {
		if parsed, err := parseObject(span); err == nil {
			return parsed, nil
		}
	}

	return nil, &ParseError{Input: text}
}

func parseObject(text string) (map[string]interface{}, error) {
	var out map[string]interface{}
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// rewriteQuotes replaces single quotes with double quotes everywhere except
// inside a double-quoted span. A double quote not immediately preceded by a
// backslash toggles the span.
func rewriteQuotes(text string) string {
	var builder strings.Builder
	builder.Grow(len(text))
	inString := false
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if ch == '"' && (i == 0 || text[i-1] != '\\') {
			inString = !inString
		}
		if ch == '\'' && !inString {
			builder.WriteByte('"')
			continue
		}
		builder.WriteByte(ch)
	}
	return builder.String()
}
