package telegram_command

import "errors"

var (
	// ErrDeliveryFailed ответ не удалось отправить
	ErrDeliveryFailed = errors.New("telegram_command: failed to send reply")

	// ErrInternal внутренняя ошибка
	ErrInternal = errors.New("telegram_command: internal error")
)
