// Package fields turns recognized text into labelled fields and canonical records.
package fields

import (
	"strings"

	"github.com/kirillkom/pension-intake/internal/core/domain"
)

// Parse splits rawText into lines and each line at its first colon.
// Lines without a colon or with an empty label are ignored; a later label wins.
func Parse(rawText string) domain.ParsedFields {
	parsed := domain.ParsedFields{}
	for _, line := range strings.Split(rawText, "\n") {
		label, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		parsed[label] = strings.TrimSpace(value)
	}
	return parsed
}
