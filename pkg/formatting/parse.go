package formatting

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrParseFailed is returned when no JSON value in content decodes into the
// target type.
var ErrParseFailed = errors.New("failed to parse response")

var fencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")

// Parse decodes a model reply as JSON into T. Replies are tried as-is, then
// from the first markdown code fence, then from the outermost JSON object or
// array embedded in surrounding prose.
func Parse[T any](content string) (T, error) {
	var result T

	for _, candidate := range candidates(strings.TrimSpace(content)) {
		if err := json.Unmarshal([]byte(candidate), &result); err == nil {
			return result, nil
		}
		result = *new(T)
	}

	return result, fmt.Errorf("%w: %s", ErrParseFailed, truncate(content, 200))
}

func candidates(content string) []string {
	out := []string{content}

	if m := fencePattern.FindStringSubmatch(content); len(m) == 2 {
		out = append(out, strings.TrimSpace(m[1]))
	}
	if s := embedded(content, '{', '}'); s != "" {
		out = append(out, s)
	}
	if s := embedded(content, '[', ']'); s != "" {
		out = append(out, s)
	}
	return out
}

func embedded(content string, open, close byte) string {
	start := strings.IndexByte(content, open)
	end := strings.LastIndexByte(content, close)
	if start < 0 || end <= start {
		return ""
	}
	return content[start : end+1]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
