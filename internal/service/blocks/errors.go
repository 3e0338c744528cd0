package blocks

import "errors"

var (
	// ErrBlockNotFound возвращается, когда блок не найден
	ErrBlockNotFound = errors.New("blocks: schedule block not found")

	// ErrSalonNotFound возвращается, когда салон не найден
	ErrSalonNotFound = errors.New("blocks: salon not found")

	// ErrMasterNotFound возвращается, когда мастер не найден или работает в другом салоне
	ErrMasterNotFound = errors.New("blocks: master not found")

	// ErrAccessDenied возвращается, когда пользователь не владелец салона
	ErrAccessDenied = errors.New("blocks: access denied")

	// ErrBlockOverlap возвращается, когда интервал пересекается с существующим блоком
	ErrBlockOverlap = errors.New("blocks: interval overlaps existing block")

	// ErrBookingBlock возвращается при попытке удалить блок бронирования напрямую
	ErrBookingBlock = errors.New("blocks: booking block can be released only by cancelling the booking")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("blocks: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("blocks: internal error")
)
