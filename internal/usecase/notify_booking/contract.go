package notify_booking

import (
	"context"

	"github.com/m04kA/SalonBookingService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetDetails(ctx context.Context, id int64) (*domain.BookingDetails, error)
	MarkNotificationSent(ctx context.Context, id int64) error
}

// SubscriptionRepository интерфейс репозитория подписок владельцев
type SubscriptionRepository interface {
	GetByOwnerID(ctx context.Context, ownerID int64) (*domain.OwnerSubscription, error)
}

// Messenger отправка сообщения владельцу (Telegram)
type Messenger interface {
	SendMessage(ctx context.Context, chatID, text string) error
}

// Metrics учет результатов отправки
type Metrics interface {
	ObserveNotification(result string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
