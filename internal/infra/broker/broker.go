package broker

import (
	"context"
	"errors"

	"github.com/m04kA/SalonBookingService/internal/domain"
)

// Заголовки сообщений, общие для Kafka и RabbitMQ
const (
	HeaderEventID     = "event_id"
	HeaderEventType   = "event_type"
	HeaderTraceparent = "traceparent"
)

var (
	// ErrPublish ошибка публикации сообщения
	ErrPublish = errors.New("broker: failed to publish message")

	// ErrClosed публикация после Close
	ErrClosed = errors.New("broker: publisher is closed")
)

// Message событие в транспорте брокера
type Message struct {
	EventID     string
	EventType   string
	AggregateID string
	Payload     []byte
	Traceparent string
}

// MessageFromEvent конвертирует событие outbox в сообщение брокера
func MessageFromEvent(event *domain.OutboxEvent) Message {
	return Message{
		EventID:     event.EventID,
		EventType:   event.EventType,
		AggregateID: event.AggregateID,
		Payload:     event.Payload,
		Traceparent: event.Traceparent,
	}
}

// Handler обработчик входящего сообщения.
// Ошибка означает, что сообщение не обработано.
type Handler func(ctx context.Context, msg Message) error

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
