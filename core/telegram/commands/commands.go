// Package commands declares the bot command surface shown in the
// Telegram client menu.
package commands

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Command describes one slash command.
type Command struct {
	Text        string
	Description string
	// Operator commands are kept out of the public menu.
	Operator bool
}

// All lists every command the bot reacts to.
var All = []Command{
	{Text: "/start", Description: "Главное меню"},
	{Text: "/cancel", Description: "Отменить текущее действие"},
	{Text: "/admin", Description: "Панель оператора", Operator: true},
	{Text: "/add_operator", Description: "Добавить оператора", Operator: true},
	{Text: "/remove_operator", Description: "Удалить оператора", Operator: true},
	{Text: "/verify_user", Description: "Подтвердить пользователя вручную", Operator: true},
}

// InitBotCommands publishes the public command menu.
func InitBotCommands(bot *tele.Bot) error {
	public := make([]tele.Command, 0, len(All))
	for _, cmd := range All {
		if cmd.Operator {
			continue
		}
		// The Bot API wants command names without the leading slash.
		public = append(public, tele.Command{
			Text:        strings.TrimPrefix(cmd.Text, "/"),
			Description: cmd.Description,
		})
	}
	return bot.SetCommands(public)
}
