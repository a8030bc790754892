package app

// Menu button labels double as routing keys on the message router, so
// changing one here changes the route with it.
const (
	btnSupport = "🛟 Поддержка"
	btnGifts   = "🎁 Подарки"
	btnVideos  = "🎬 Видео"
	btnBack    = "⬅️ Назад"

	btnShareContact = "📱 Поделиться номером"
)

const (
	textGreeting = "Привет! Я бот Bazumi. Выберите раздел в меню ниже."
	textMainMenu = "Главное меню."
	textUnknown  = "Я не понял сообщение. Выберите раздел в меню или отправьте /start."
	textOops     = "Что-то пошло не так. Попробуйте ещё раз."

	textSupportIntro = "Мы на связи! Напишите нашему менеджеру: %s"
	textGiftsIntro   = "Сейчас идёт розыгрыш. Нажмите кнопку, чтобы участвовать."
	textGiftsEmpty   = "Сейчас нет активного розыгрыша. Загляните позже!"
	textVideosIntro  = "Наши видео:\n• Роботы Bazumi: %s\n• Другие ролики: %s"

	textNeedContact  = "Чтобы открыть раздел, поделитесь номером телефона кнопкой ниже."
	textContactSaved = "Спасибо, номер сохранён!"
	textBadContact   = "Не похоже на номер телефона. Поделитесь контактом кнопкой ниже."
)

// Operator panel.
const (
	textAdminMenu         = "Панель оператора. Выберите раздел."
	textAdminCampaignMenu = "Розыгрыш: выберите действие."
	textAdminAnnounceMenu = "Посты: выберите действие."
	textAdminDenied       = "Эта команда доступна только операторам."
	textSuperOnly         = "Управлять списком операторов может только главный оператор."

	textDeleteConfirm   = "Удалить активный розыгрыш «%s»? Сообщение в канале будет убрано."
	textDeleteDone      = "Розыгрыш удалён и снят с публикации."
	textDeleteCancelled = "Удаление отменено."
	textDeleteNothing   = "Удалять нечего: активного розыгрыша нет."

	textNotifyNothing = "Нет активного розыгрыша для предпросмотра."

	textExportEmpty  = "Участников пока нет."
	textExportHeader = "Участники розыгрыша «%s» (%d):"

	textOperatorUsage    = "Использование: %s <id>"
	textOperatorAdded    = "Оператор %d добавлен."
	textOperatorRemoved  = "Оператор %d удалён."
	textOperatorMissing  = "Оператор %d не найден."
	textOperatorBadInput = "Нужен числовой ID пользователя."
)

const (
	btnAdminCampaign = "Розыгрыш"
	btnAdminAnnounce = "Пост"

	btnCreate  = "Создать"
	btnEdit    = "Редактировать"
	btnDelete  = "Удалить"
	btnNotify  = "Предпросмотр"
	btnExport  = "Участники"
	btnYes     = "Да"
	btnNo      = "Нет"
	btnToAdmin = "⬅️ К панели"
)
