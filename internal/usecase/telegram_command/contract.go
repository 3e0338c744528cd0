package telegram_command

import (
	"context"

	"github.com/m04kA/SalonBookingService/internal/domain"
)

// SubscriptionRepository поиск владельца по привязанному чату
type SubscriptionRepository interface {
	GetByChatID(ctx context.Context, chatID string) (*domain.OwnerSubscription, error)
}

// Messenger отправка ответа в чат
type Messenger interface {
	SendMessage(ctx context.Context, chatID string, text string) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
