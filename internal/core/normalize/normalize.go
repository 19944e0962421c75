// Package normalize canonicalizes raw recognizer values. Every function is total:
// unusable input degrades to nil instead of an error.
package normalize

import (
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode"
)

const isoDate = "2006-01-02"

var (
	dateSeparators  = regexp.MustCompile(`[\s,.\-]+`)
	phoneNoise      = regexp.MustCompile(`[\s.\-]`)
	phoneDigits     = regexp.MustCompile(`^[0-9]{7,15}$`)
	nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

// Candidate layouts, tried in order. Go layouts are strict about digit counts
// and reject out-of-range days and months.
var dateLayouts = []string{
	"02/01/2006",
	"02/01/06",
	"2006-01-02",
	"2006/01/02",
}

func absent(raw *string) bool {
	return raw == nil || *raw == "" || strings.EqualFold(*raw, "NULL")
}

// Date returns raw as YYYY-MM-DD, or nil when it is absent or matches no layout.
func Date(raw *string) *string {
	if absent(raw) {
		return nil
	}
	cleaned := dateSeparators.ReplaceAllString(*raw, "/")
	for _, layout := range dateLayouts {
		parsed, err := time.Parse(layout, cleaned)
		if err != nil {
			continue
		}
		out := parsed.Format(isoDate)
		return &out
	}
	slog.Warn("invalid date format", "value", *raw)
	return nil
}

// PhoneNumber keeps the part before a trailing "Home" label and returns it as 7-15 digits.
func PhoneNumber(raw *string) *string {
	if absent(raw) {
		return nil
	}
	beforeHome, _, _ := strings.Cut(*raw, "Home")
	cleaned := phoneNoise.ReplaceAllString(strings.TrimSpace(beforeHome), "")
	if !phoneDigits.MatchString(cleaned) {
		slog.Warn("invalid phone number format", "value", *raw)
		return nil
	}
	return &cleaned
}

// Eircode strips every character that is not an ASCII letter or digit.
func Eircode(raw *string) *string {
	if raw == nil {
		return nil
	}
	out := nonAlphanumeric.ReplaceAllString(*raw, "")
	return &out
}

// Email strips all whitespace.
func Email(raw *string) *string {
	if raw == nil {
		return nil
	}
	out := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, *raw)
	return &out
}
