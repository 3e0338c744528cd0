package get_salon_status

import "errors"

var (
	// ErrSalonNotFound салон не найден или неактивен
	ErrSalonNotFound = errors.New("get_salon_status: salon not found")

	// ErrInvalidInput пустой slug
	ErrInvalidInput = errors.New("get_salon_status: invalid input")

	// ErrInternal внутренняя ошибка
	ErrInternal = errors.New("get_salon_status: internal error")
)
