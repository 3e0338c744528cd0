package scheduling

import "errors"

var (
	// ErrMalformedHours строка рабочих часов не разбирается в интервал
	ErrMalformedHours = errors.New("scheduling: malformed working hours")

	// ErrDuplicateDay день недели указан в расписании больше одного раза
	ErrDuplicateDay = errors.New("scheduling: duplicate weekday")

	// ErrUnknownDay название дня недели не совпадает ни с одним из настроенных
	ErrUnknownDay = errors.New("scheduling: unknown weekday name")

	// ErrNoServices не выбрано ни одной услуги
	ErrNoServices = errors.New("scheduling: no services selected")

	// ErrInvalidDuration длительность услуги задана, но не положительна
	ErrInvalidDuration = errors.New("scheduling: service duration must be positive")

	// ErrInvalidInterval шаг сетки должен быть положительным
	ErrInvalidInterval = errors.New("scheduling: slot interval must be positive")

	// ErrSlotNotFound выбранное время отсутствует в сетке дня
	ErrSlotNotFound = errors.New("scheduling: slot not found")

	// ErrNotEnoughSlots не хватает подряд идущих свободных слотов
	ErrNotEnoughSlots = errors.New("scheduling: not enough consecutive free slots")
)
