// Package format renders user-visible text fragments for Telegram's
// HTML parse mode.
package format

import (
	"strconv"
	"strings"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// Escape escapes text for safe interpolation into HTML-mode messages.
func Escape(s string) string {
	return htmlEscaper.Replace(s)
}

// Bold wraps escaped text in bold tags.
func Bold(s string) string {
	return "<b>" + Escape(s) + "</b>"
}

// Italic wraps escaped text in italic tags.
func Italic(s string) string {
	return "<i>" + Escape(s) + "</i>"
}

// Code wraps escaped text in inline code tags.
func Code(s string) string {
	return "<code>" + Escape(s) + "</code>"
}

// Link renders an anchor with the escaped label.
func Link(label, url string) string {
	return `<a href="` + Escape(url) + `">` + Escape(label) + "</a>"
}

// Mention renders a tg://user deep link for the given user id.
func Mention(label string, userID int64) string {
	return `<a href="tg://user?id=` + strconv.FormatInt(userID, 10) + `">` + Escape(label) + "</a>"
}
