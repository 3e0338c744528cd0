package get_available_slots

import "errors"

var (
	// ErrSalonNotFound возвращается, когда салон не найден или неактивен
	ErrSalonNotFound = errors.New("get_available_slots: salon not found")

	// ErrMasterNotFound возвращается, когда мастер не найден в салоне
	ErrMasterNotFound = errors.New("get_available_slots: master not found")

	// ErrServiceNotFound возвращается, когда одна из услуг не найдена в салоне
	ErrServiceNotFound = errors.New("get_available_slots: service not found")

	// ErrInvalidDuration возвращается, когда у услуги некорректная длительность
	ErrInvalidDuration = errors.New("get_available_slots: invalid service duration")

	// ErrInvalidDate возвращается, когда дата в прошлом
	ErrInvalidDate = errors.New("get_available_slots: invalid date")

	// ErrDateTooFarInFuture возвращается, когда дата дальше горизонта бронирования
	ErrDateTooFarInFuture = errors.New("get_available_slots: date is too far in the future")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_available_slots: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_available_slots: internal error")
)
