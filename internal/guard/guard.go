// Package guard validates raw thesis text before it reaches the generation
// pipeline: length limits plus a prompt-injection heuristic filter.
package guard

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/kirillm/thesis-desk/internal/domain"
)

// MaxThesisLength is the cap on a submitted thesis, in characters.
const MaxThesisLength = 600

// Patterns are matched against the lower-cased trimmed input. Matching any
// of them rejects the submission.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`ignore\s+(all\s+)?previous\s+instructions`),
	regexp.MustCompile(`disregard\s+(the\s+)?(system|developer)\s+(prompt|message)`),
	regexp.MustCompile(`reveal\s+(your|the)\s+(system|developer)\s+instructions`),
	regexp.MustCompile(`act\s+as\s+the\s+system`),
	regexp.MustCompile(`output\s+the\s+system\s+prompt`),
	regexp.MustCompile(`jailbreak`),
	regexp.MustCompile(`\breset\s+the\s+instructions\b`),
	regexp.MustCompile(`sandbox\s+escape`),
	regexp.MustCompile(`<\s*system\s*>`),
	regexp.MustCompile(`you\s+are\s+no\s+longer\s+an\s+assistant`),
}

// Sanitize trims the raw input and rejects empty, oversized, or
// injection-flavored text. On success the trimmed string is returned with
// its original casing.
func Sanitize(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)

	if trimmed == "" {
		return "", domain.NewError(domain.KindValidation, "Share a belief so we can analyze it.")
	}

	if utf8.RuneCountInString(trimmed) > MaxThesisLength {
		return "", domain.NewError(domain.KindValidation, "Please shorten your thesis before submitting.")
	}

	lowered := strings.ToLower(trimmed)
	for _, pattern := range injectionPatterns {
		if pattern.MatchString(lowered) {
			return "", domain.NewError(domain.KindInjection,
				"Detected prompt injection attempt. Please rephrase your thesis without system instructions.")
		}
	}

	return trimmed, nil
}
