package notify_booking

import "errors"

var (
	// ErrBookingNotFound бронирование из события не найдено
	ErrBookingNotFound = errors.New("notify_booking: booking not found")

	// ErrUnknownEvent тип события не поддерживается
	ErrUnknownEvent = errors.New("notify_booking: unknown event type")

	// ErrDeliveryFailed временная ошибка доставки, событие можно повторить
	ErrDeliveryFailed = errors.New("notify_booking: delivery failed")

	// ErrInternal внутренняя ошибка
	ErrInternal = errors.New("notify_booking: internal error")
)
