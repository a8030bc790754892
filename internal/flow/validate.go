package flow

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"
)

// endDateLayout is the only accepted end-date form, e.g. "15.03.2025".
const endDateLayout = "02.01.2006"

// ParseEndDate accepts strictly DD.MM.YYYY with a real calendar date.
// Anything else, including ISO dates and impossible days, is rejected.
func ParseEndDate(input string) (time.Time, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("flow: empty date")
	}
	t, err := time.Parse(endDateLayout, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("flow: date %q must be DD.MM.YYYY: %w", trimmed, err)
	}
	// Round-trip to reject anything the parser silently tolerated.
	if t.Format(endDateLayout) != trimmed {
		return time.Time{}, fmt.Errorf("flow: date %q is not a calendar date", trimmed)
	}
	return t, nil
}

// photoInput extracts the media reference from a photo-collection
// message. Photos sent as uncompressed files arrive as documents, so
// an image-typed document counts too.
func photoInput(msg *tele.Message) (fileID string, ok bool) {
	if msg.Photo != nil {
		return msg.Photo.FileID, true
	}
	if msg.Document != nil && strings.HasPrefix(msg.Document.MIME, "image/") {
		return msg.Document.FileID, true
	}
	return "", false
}

var phoneRe = regexp.MustCompile(`^\+?[0-9]{10,15}$`)

// NormalizePhone validates a free-text phone number, stripping spaces,
// dashes and parentheses. Contact shares skip this and are trusted.
func NormalizePhone(input string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')':
			return -1
		}
		return r
	}, strings.TrimSpace(input))
	if !phoneRe.MatchString(cleaned) {
		return "", fmt.Errorf("flow: %q is not a phone number", input)
	}
	if !strings.HasPrefix(cleaned, "+") {
		cleaned = "+" + cleaned
	}
	return cleaned, nil
}
