// Package formatting parses configuration byte sizes, formats sizes for logs,
// and decodes JSON from model replies.
package formatting

import (
	"fmt"
	"strconv"
	"strings"
)

const unitStep = 1024

var units = []string{"B", "KB", "MB", "GB", "TB", "PB"}

// FormatBytes renders n with the largest base-1024 unit that keeps the value
// at or above one. Negative precision is treated as zero.
func FormatBytes(n int64, precision int) string {
	precision = max(precision, 0)

	size := float64(n)
	i := 0
	for size >= unitStep && i < len(units)-1 {
		size /= unitStep
		i++
	}

	if i == 0 {
		return strconv.FormatInt(n, 10) + " B"
	}
	return strconv.FormatFloat(size, 'f', precision, 64) + " " + units[i]
}

// ParseBytes parses sizes such as "1MB", "512 kb", or "2048" (bytes) into a
// byte count. Units are base-1024 and case-insensitive.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size string")
	}

	split := strings.IndexFunc(s, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	number, unit := s, ""
	if split >= 0 {
		number, unit = s[:split], strings.TrimSpace(s[split:])
	}
	if number == "" {
		return 0, fmt.Errorf("invalid byte size: %q", s)
	}

	value, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size number: %w", err)
	}

	if unit == "" {
		return int64(value), nil
	}

	for i, u := range units {
		if strings.EqualFold(u, unit) {
			for range i {
				value *= unitStep
			}
			return int64(value), nil
		}
	}
	return 0, fmt.Errorf("unknown byte size unit: %q", unit)
}
