package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Parsed is the outcome of decoding a structured model response.
// A failed parse keeps the raw text and can't be read as an empty value.
type Parsed[T any] struct {
	value T
	raw   string
	err   error
}

// Value returns the decoded value and whether decoding succeeded
func (p Parsed[T]) Value() (T, bool) {
	return p.value, p.err == nil
}

// Raw returns the text the model produced
func (p Parsed[T]) Raw() string {
	return p.raw
}

// Err returns the decode error, nil on success
func (p Parsed[T]) Err() error {
	return p.err
}

// ParseLLMJSON decodes a model response into T
func ParseLLMJSON[T any](content string) Parsed[T] {
	var v T
	if err := DecodeLLMJSON(content, &v); err != nil {
		return Parsed[T]{raw: content, err: err}
	}
	return Parsed[T]{value: v, raw: content}
}

// DecodeLLMJSON unmarshals JSON that may be wrapped in code fences or prose
func DecodeLLMJSON(content string, target any) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return errors.New("empty payload")
	}

	directErr := json.Unmarshal([]byte(trimmed), target)
	if directErr == nil {
		return nil
	}

	sanitized := sanitizeJSONPayload(trimmed)
	if sanitized == "" || sanitized == trimmed {
		return fmt.Errorf("%w (payload snippet: %s)", directErr, payloadSnippet(trimmed))
	}

	if err := json.Unmarshal([]byte(sanitized), target); err != nil {
		return fmt.Errorf("%w (sanitized payload snippet: %s)", err, payloadSnippet(sanitized))
	}
	return nil
}

func sanitizeJSONPayload(content string) string {
	trimmed := strings.TrimSpace(stripCodeFence(content))
	if trimmed == "" {
		return ""
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return trimmed
	}
	if start := strings.Index(trimmed, "{"); start >= 0 {
		if end := strings.LastIndex(trimmed, "}"); end > start {
			return strings.TrimSpace(trimmed[start : end+1])
		}
	}
	return ""
}

func stripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	// drop the opening fence line, including any language tag
	if nl := strings.Index(trimmed, "\n"); nl >= 0 {
		trimmed = trimmed[nl+1:]
	} else {
		trimmed = strings.TrimPrefix(trimmed, "```")
	}
	if end := strings.LastIndex(trimmed, "```"); end >= 0 {
		trimmed = trimmed[:end]
	}
	return strings.TrimSpace(trimmed)
}

func payloadSnippet(s string) string {
	const limit = 120
	runes := []rune(strings.Join(strings.Fields(s), " "))
	if len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit]) + "..."
}
