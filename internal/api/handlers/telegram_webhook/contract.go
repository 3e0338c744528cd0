package telegram_webhook

import (
	"context"

	telegramCommand "github.com/m04kA/SalonBookingService/internal/usecase/telegram_command"
)

type TelegramCommandUseCase interface {
	Execute(ctx context.Context, req *telegramCommand.Request) (*telegramCommand.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
