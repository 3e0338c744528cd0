package booking_session

import "errors"

var (
	// ErrSessionNotFound сессия не найдена или истекла
	ErrSessionNotFound = errors.New("booking_session: session not found")

	// ErrSalonNotFound салон не найден или неактивен
	ErrSalonNotFound = errors.New("booking_session: salon not found")

	// ErrServiceNotFound услуга не найдена в салоне
	ErrServiceNotFound = errors.New("booking_session: service not found")

	// ErrInvalidEvent неизвестный тип события или некорректные поля
	ErrInvalidEvent = errors.New("booking_session: invalid event")

	// ErrInvalidDate дата в прошлом или за горизонтом бронирования
	ErrInvalidDate = errors.New("booking_session: invalid date")

	// ErrSlotConflict время заняли до подтверждения, сессия возвращена к выбору времени
	ErrSlotConflict = errors.New("booking_session: selected time is no longer available")

	// ErrInternal внутренняя ошибка
	ErrInternal = errors.New("booking_session: internal error")
)
