// Package sanitize cleans user submitted step values before they reach the engine.
package sanitize

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/stitch/pkg/domain"
)

var (
	// DefaultMaxInputSize is the largest accepted string value, in bytes.
	DefaultMaxInputSize = 4096
	// EnvMaxInputSize is the environment variable to override the default.
	EnvMaxInputSize = "STITCH_MAX_INPUT_SIZE"
)

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// String enforces the size limit, validates UTF-8 and strips control
// characters other than newline, tab and carriage return.
func String(input string) (string, error) {
	limit := maxInputSize()
	if len(input) > limit {
		// Rejected, never truncated.
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	clean := true
	for _, r := range input {
		if unicode.IsControl(r) && !isSafeControl(r) {
			clean = false
			break
		}
	}
	if clean {
		return input, nil
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if !unicode.IsControl(r) || isSafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

// Values returns a copy of values with every string, including those nested
// in lists and maps, passed through String. Errors name the offending field.
func Values(values domain.Values) (domain.Values, error) {
	out := make(domain.Values, len(values))
	for k, v := range values {
		clean, err := value(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		out[k] = clean
	}
	return out, nil
}

func value(v any) (any, error) {
	switch val := v.(type) {
	case string:
		return String(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			clean, err := value(item)
			if err != nil {
				return nil, err
			}
			out[i] = clean
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			clean, err := value(item)
			if err != nil {
				return nil, err
			}
			out[k] = clean
		}
		return out, nil
	}
	return v, nil
}

func isSafeControl(r rune) bool {
	return r == '\n' || r == '\t' || r == '\r'
}

func maxInputSize() int {
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxInputSize
}
