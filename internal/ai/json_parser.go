package ai

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// Models wrap JSON in code fences, add trailing commas, or pad it with
// prose. These patterns power the progressive cleanup strategies in Parse.
var (
	codeFenceRegex     = regexp.MustCompile("(?s)`{3}(?:json)?\\s*\n?([\\s\\S]*?)\n?`{3}")
	trailingCommaRegex = regexp.MustCompile(`,(\s*[}\]])`)
	lineCommentRegex   = regexp.MustCompile(`(?m)//.*$`)
	objectRegex        = regexp.MustCompile(`(?s)\{[\s\S]*\}`)
	arrayRegex         = regexp.MustCompile(`(?s)\[[\s\S]*\]`)
)

// maxParseInput bounds the text Parse will consider, to keep a runaway
// response from ballooning memory.
const maxParseInput = 10 * 1024 * 1024

// ParseResult reports a JSON parse outcome without panicking on failure.
type ParseResult[T any] struct {
	Success bool
	Data    T
	Error   string
}

// Parse decodes JSON out of model output, tolerating the usual formatting
// quirks. context names the call site for log messages.
//
// Strategy sequence:
//  1. direct parse
//  2. strip code fences
//  3. drop trailing commas and // comments
//  4. extract the first object or array from surrounding prose
func Parse[T any](text, context string) ParseResult[T] {
	if len(text) > maxParseInput {
		return parseFailure[T](fmt.Sprintf("input exceeds size limit (%d bytes)", len(text)), context)
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return parseFailure[T]("empty input", context)
	}

	if data, err := tryParse[T](trimmed); err == nil {
		return ParseResult[T]{Success: true, Data: data}
	}

	withoutFences := removeCodeFences(trimmed)
	if withoutFences != trimmed {
		if data, err := tryParse[T](withoutFences); err == nil {
			return ParseResult[T]{Success: true, Data: data}
		}
	}

	cleaned := cleanupJSON(withoutFences)
	if data, err := tryParse[T](cleaned); err == nil {
		return ParseResult[T]{Success: true, Data: data}
	}

	if extracted := extractJSON(cleaned); extracted != "" {
		if data, err := tryParse[T](extracted); err == nil {
			return ParseResult[T]{Success: true, Data: data}
		}
	}

	slog.Debug("all JSON parsing strategies failed",
		"context", context,
		"preview", truncate(text, 120))
	return parseFailure[T]("all JSON parsing strategies failed", context)
}

func tryParse[T any](text string) (T, error) {
	var result T
	err := json.Unmarshal([]byte(text), &result)
	return result, err
}

func removeCodeFences(text string) string {
	cleaned := codeFenceRegex.ReplaceAllString(text, "$1")
	if strings.HasPrefix(cleaned, "`") && strings.HasSuffix(cleaned, "`") {
		cleaned = strings.Trim(cleaned, "`")
	}
	return strings.TrimSpace(cleaned)
}

func cleanupJSON(text string) string {
	cleaned := trailingCommaRegex.ReplaceAllString(text, "$1")
	cleaned = lineCommentRegex.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}

// extractJSON pulls the outermost object or array out of mixed content. The
// greedy patterns capture nested structures whole; the first-character check
// keeps an array from being misread as its first element.
func extractJSON(text string) string {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "[") {
		return arrayRegex.FindString(text)
	}
	if match := objectRegex.FindString(text); match != "" {
		return match
	}
	return arrayRegex.FindString(text)
}

func parseFailure[T any](message, context string) ParseResult[T] {
	if context != "" {
		message = context + ": " + message
	}
	return ParseResult[T]{Error: message}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
