package flow

// User-visible flow texts.
const (
	textCancelled       = "Действие отменено."
	textNothingToCancel = "Сейчас нечего отменять."

	textAskPhoto      = "Отправьте фотографию для публикации."
	textAskTitle      = "Отправьте название."
	textAskDate       = "Отправьте дату окончания в формате ДД.ММ.ГГГГ, например 15.03.2025."
	textAskBody       = "Отправьте текст поста."
	textBadDate       = "Неверный формат даты. Нужен формат ДД.ММ.ГГГГ, например 15.03.2025."
	textPhotoExpected = "Нужна именно фотография. Отправьте её, пожалуйста."

	textPreviewCampaign = "Проверьте публикацию. Опубликовать?"
	textPreviewAnnounce = "Проверьте пост. Опубликовать?"
	textPublished       = "Опубликовано ✅"
	textPublishFallback = "Опубликовано заново: отредактировать прежнее сообщение в канале не удалось."
	textPublishFailed   = "Не получилось опубликовать. Попробуйте ещё раз."

	textBroadcastDone = "Рассылка завершена. Отправлено: %d, не доставлено: %d."

	textNoActiveCampaign = "Сейчас нет активного розыгрыша."
	textAlreadyIn        = "Вы уже участвуете в розыгрыше 🎉"
	textJoined           = "Вы участвуете в розыгрыше! 🎉"
	textSubscribeFirst   = "Чтобы участвовать, подпишитесь на наш канал, затем нажмите «Проверить подписку»."
	textCheckFailed      = "Не удалось проверить подписку. Попробуйте ещё раз чуть позже."
	textAskContact       = "Поделитесь номером телефона кнопкой ниже или отправьте его сообщением."
	textBadPhone         = "Не похоже на номер телефона. Отправьте номер в формате +79991234567 или поделитесь контактом."

	textVerifyAskUser  = "Отправьте ID пользователя и телефон через пробел: <id> <телефон>."
	textVerifyBadInput = "Нужно два значения: числовой ID и телефон. Например: 123456789 +79991234567."
	textVerifyDone     = "Пользователь подтверждён."
	textVerifyExisted  = "Пользователь уже был подтверждён ранее."

	btnParticipate  = "Участвовать 🎁"
	btnCheckAgain   = "Проверить подписку"
	btnPublish      = "Опубликовать ✅"
	btnRestart      = "Изменить 🔄"
	btnShareContact = "Поделиться номером 📱"
)
