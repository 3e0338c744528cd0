package notify_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SalonBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SalonBookingService/internal/infra/storage/booking"
	subscriptionRepo "github.com/m04kA/SalonBookingService/internal/infra/storage/subscription"
	"github.com/m04kA/SalonBookingService/internal/integrations/telegram"
	"github.com/m04kA/SalonBookingService/pkg/metrics"
)

// UseCase уведомляет владельца салона о событиях бронирования.
// Ошибки доставки не влияют на само бронирование.
type UseCase struct {
	bookingRepo      BookingRepository
	subscriptionRepo SubscriptionRepository
	messenger        Messenger
	metrics          Metrics
	logger           Logger
}

func NewUseCase(
	bookingRepo BookingRepository,
	subscriptionRepo SubscriptionRepository,
	messenger Messenger,
	notifyMetrics Metrics,
	logger Logger,
) *UseCase {
	if notifyMetrics == nil {
		notifyMetrics = (*metrics.Metrics)(nil)
	}
	return &UseCase{
		bookingRepo:      bookingRepo,
		subscriptionRepo: subscriptionRepo,
		messenger:        messenger,
		metrics:          notifyMetrics,
		logger:           logger,
	}
}

func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("NotifyBooking: event=%s booking_id=%d", req.EventType, req.BookingID)

	// 1. Загружаем бронирование с названиями салона, мастера и услуг
	details, err := uc.bookingRepo.GetDetails(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Warn("NotifyBooking: booking id=%d not found", req.BookingID)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("NotifyBooking: failed to get booking id=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}

	// 2. Формируем сообщение по типу события
	var text string
	switch req.EventType {
	case domain.EventBookingCreated:
		if details.Booking.NotificationSent {
			return uc.skip(req, SkipAlreadySent), nil
		}
		text = formatCreated(details)
	case domain.EventBookingCancelled:
		text = formatCancelled(details)
	default:
		uc.logger.Warn("NotifyBooking: unknown event type %s", req.EventType)
		return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, req.EventType)
	}

	// 3. Подписка владельца. Нет подписки или выключены уведомления - ничего не делаем
	sub, err := uc.subscriptionRepo.GetByOwnerID(ctx, details.SalonOwnerID)
	if err != nil {
		if errors.Is(err, subscriptionRepo.ErrSubscriptionNotFound) {
			return uc.skip(req, SkipNoSubscription), nil
		}
		uc.logger.Error("NotifyBooking: failed to get subscription of owner=%d: %v", details.SalonOwnerID, err)
		return nil, fmt.Errorf("%w: failed to get subscription: %v", ErrInternal, err)
	}
	if !sub.CanNotify() {
		return uc.skip(req, SkipDisabled), nil
	}

	// 4. Отправляем
	if err := uc.messenger.SendMessage(ctx, *sub.TelegramChatID, text); err != nil {
		if errors.Is(err, telegram.ErrChatNotFound) {
			uc.logger.Warn("NotifyBooking: chat of owner=%d is unavailable: %v", details.SalonOwnerID, err)
			uc.metrics.ObserveNotification(metrics.ResultFailed)
			return uc.skip(req, SkipChatUnavailable), nil
		}
		uc.logger.Error("NotifyBooking: failed to send notification for booking id=%d: %v", req.BookingID, err)
		uc.metrics.ObserveNotification(metrics.ResultError)
		return nil, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	// 5. Отмечаем отправку только для нового бронирования
	if req.EventType == domain.EventBookingCreated {
		if err := uc.bookingRepo.MarkNotificationSent(ctx, req.BookingID); err != nil {
			// сообщение уже ушло, повтор даст дубль
			uc.logger.Error("NotifyBooking: failed to mark notification sent for booking id=%d: %v", req.BookingID, err)
		}
	}

	uc.metrics.ObserveNotification(metrics.ResultSent)
	uc.logger.Info("NotifyBooking: notification sent for booking id=%d", req.BookingID)
	return &Response{Sent: true}, nil
}

func (uc *UseCase) skip(req *Request, reason string) *Response {
	uc.logger.Info("NotifyBooking: skipping booking id=%d, reason=%s", req.BookingID, reason)
	if reason != SkipChatUnavailable {
		uc.metrics.ObserveNotification(metrics.ResultSkipped)
	}
	return &Response{SkipReason: reason}
}
