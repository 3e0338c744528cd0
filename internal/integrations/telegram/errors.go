package telegram

import "errors"

var (
	// ErrChatNotFound чат не существует или бот заблокирован
	ErrChatNotFound = errors.New("telegram client: chat not found or bot blocked")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("telegram client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе Bot API
	ErrInvalidResponse = errors.New("telegram client: invalid response")
)
