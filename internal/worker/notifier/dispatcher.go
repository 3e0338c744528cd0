package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/m04kA/SalonBookingService/internal/domain"
	"github.com/m04kA/SalonBookingService/internal/infra/broker"
	notifyBooking "github.com/m04kA/SalonBookingService/internal/usecase/notify_booking"
)

// NotifyUseCase уведомление владельца о событии бронирования
type NotifyUseCase interface {
	Execute(ctx context.Context, req *notifyBooking.Request) (*notifyBooking.Response, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// ErrMalformedEvent тело события не разбирается
var ErrMalformedEvent = errors.New("notifier: malformed event payload")

// Dispatcher разбирает события бронирований из брокера и передает их в notify_booking
type Dispatcher struct {
	useCase NotifyUseCase
	logger  Logger
}

func NewDispatcher(useCase NotifyUseCase, logger Logger) *Dispatcher {
	return &Dispatcher{useCase: useCase, logger: logger}
}

// Handle реализует broker.Handler.
// Ошибку возвращает только временный сбой доставки, остальное логируется и подтверждается.
func (d *Dispatcher) Handle(ctx context.Context, msg broker.Message) error {
	var payload domain.BookingEventPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.BookingID <= 0 {
		d.logger.Error("Notifier: malformed payload of event_id=%s: %v", msg.EventID, err)
		return nil
	}

	_, err := d.useCase.Execute(ctx, &notifyBooking.Request{
		EventType: msg.EventType,
		BookingID: payload.BookingID,
	})
	if err == nil {
		return nil
	}

	if errors.Is(err, notifyBooking.ErrDeliveryFailed) || errors.Is(err, notifyBooking.ErrInternal) {
		return fmt.Errorf("event_id=%s: %w", msg.EventID, err)
	}

	d.logger.Warn("Notifier: dropping event_id=%s: %v", msg.EventID, err)
	return nil
}
