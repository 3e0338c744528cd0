package create_booking

import "errors"

var (
	// ErrSalonNotFound возвращается, когда салон не найден или неактивен
	ErrSalonNotFound = errors.New("create_booking: salon not found")

	// ErrMasterNotFound возвращается, когда мастер не найден в салоне
	ErrMasterNotFound = errors.New("create_booking: master not found")

	// ErrServiceNotFound возвращается, когда одна из услуг не найдена в салоне
	ErrServiceNotFound = errors.New("create_booking: service not found")

	// ErrInvalidDuration возвращается, когда у услуги некорректная длительность
	ErrInvalidDuration = errors.New("create_booking: invalid service duration")

	// ErrInvalidDate возвращается при дате в прошлом
	ErrInvalidDate = errors.New("create_booking: invalid booking date")

	// ErrDateTooFarInFuture возвращается, когда дата дальше горизонта бронирования
	ErrDateTooFarInFuture = errors.New("create_booking: date is too far in the future")

	// ErrSalonClosed возвращается, когда салон не работает в указанную дату
	ErrSalonClosed = errors.New("create_booking: salon is closed on this date")

	// ErrInvalidTimeSlot возвращается, когда время начала не лежит на сетке слотов
	ErrInvalidTimeSlot = errors.New("create_booking: invalid time slot")

	// ErrOutsideWorkingHours возвращается, когда бронирование заканчивается после закрытия
	ErrOutsideWorkingHours = errors.New("create_booking: booking ends after closing time")

	// ErrTooLateToBook возвращается, когда время начала сегодня уже прошло
	ErrTooLateToBook = errors.New("create_booking: start time has already passed")

	// ErrSlotConflict возвращается, когда слоты заняты конкурентным бронированием.
	// Клиенту нужно обновить доступность и выбрать другое время.
	ErrSlotConflict = errors.New("create_booking: slot is already taken")

	// ErrInvalidContact возвращается при некорректных контактных данных клиента
	ErrInvalidContact = errors.New("create_booking: invalid contact data")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
