package telegram_command

import (
	"fmt"
	"html"

	"github.com/m04kA/SalonBookingService/internal/domain"
)

func startMessage(chatID int64) string {
	return fmt.Sprintf(`👋 <b>Вітаю у Booking Bot!</b>

Цей бот надсилатиме вам сповіщення про нові бронювання вашого салону.

📝 <b>Як підключити сповіщення:</b>

1. Зайдіть в панель управління вашого салону
2. Перейдіть в налаштування
3. Введіть ваш Telegram Chat ID: <code>%d</code>

💡 <b>Команди:</b>
/start - Показати це повідомлення
/id - Отримати ваш Chat ID
/status - Перевірити статус підключення`, chatID)
}

func idMessage(chatID int64) string {
	return fmt.Sprintf(`🆔 Ваш Chat ID: <code>%d</code>

Скопіюйте цей код та вставте в налаштуваннях салону для отримання сповіщень.`, chatID)
}

func connectedMessage(sub *domain.OwnerSubscription) string {
	state := "🔔 Сповіщення активовано"
	if !sub.NotificationsEnabled {
		state = "🔕 Сповіщення вимкнено"
	}
	return fmt.Sprintf(`✅ <b>Підключено!</b>

📧 Акаунт: %s
%s

Ви будете отримувати повідомлення про нові бронювання.`, html.EscapeString(sub.Email), state)
}

func notConnectedMessage(chatID int64) string {
	return fmt.Sprintf(`❌ <b>Не підключено</b>

Ваш Telegram ще не прив'язаний до акаунту.

Для підключення:
1. Зайдіть в панель управління
2. Перейдіть в налаштування
3. Введіть Chat ID: <code>%d</code>`, chatID)
}

const codeMessage = `🔍 Шукаємо код підтвердження...

Якщо ви намагаєтесь підключити Telegram, переконайтесь що ввели правильний код з панелі управління.`

const unknownMessage = `❓ Невідома команда.

Доступні команди:
/start - Почати
/id - Отримати Chat ID
/status - Перевірити підключення`
