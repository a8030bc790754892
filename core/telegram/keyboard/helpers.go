// Package keyboard builds inline and reply keyboards from row
// definitions, keeping handler files free of telebot markup plumbing.
package keyboard

import (
	tele "gopkg.in/telebot.v4"
)

// Btn describes one inline button before layout.
type Btn struct {
	Text string
	Data string
	URL  string
}

// Inline lays out rows of buttons into an inline keyboard markup.
func Inline(rows ...[]Btn) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	out := make([]tele.Row, 0, len(rows))
	for _, row := range rows {
		btns := make([]tele.Btn, 0, len(row))
		for _, b := range row {
			switch {
			case b.URL != "":
				btns = append(btns, markup.URL(b.Text, b.URL))
			default:
				btns = append(btns, tele.Btn{Text: b.Text, Data: b.Data})
			}
		}
		out = append(out, markup.Row(btns...))
	}
	markup.Inline(out...)
	return markup
}

// Row is a convenience for a single row.
func Row(btns ...Btn) []Btn {
	return btns
}

// Reply lays out rows of text labels into a persistent reply
// keyboard. Labels double as routing keys on the message router.
func Reply(rows ...[]string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{ResizeKeyboard: true}
	out := make([]tele.Row, 0, len(rows))
	for _, row := range rows {
		btns := make([]tele.Btn, 0, len(row))
		for _, label := range row {
			btns = append(btns, markup.Text(label))
		}
		out = append(out, markup.Row(btns...))
	}
	markup.Reply(out...)
	return markup
}

// Contact builds a one-time reply keyboard with a single
// request-contact button.
func Contact(label string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{
		ResizeKeyboard:  true,
		OneTimeKeyboard: true,
	}
	markup.Reply(markup.Row(markup.Contact(label)))
	return markup
}

// Remove hides any active reply keyboard.
func Remove() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{RemoveKeyboard: true}
}
