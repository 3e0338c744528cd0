package pgerr

import (
	"errors"

	"github.com/lib/pq"
)

// Коды SQLSTATE, которые сервис обрабатывает отдельно
const (
	CodeSerializationFailure = "40001"
	CodeDeadlockDetected     = "40P01"
	CodeUniqueViolation      = "23505"
	CodeExclusionViolation   = "23P01"
)

var (
	// ErrSerializationFailure конкурентная транзакция изменила прочитанные данные
	ErrSerializationFailure = errors.New("pgerr: serialization failure")

	// ErrExclusionViolation нарушено ограничение EXCLUDE (пересечение интервалов)
	ErrExclusionViolation = errors.New("pgerr: exclusion constraint violation")

	// ErrUniqueViolation нарушено ограничение уникальности
	ErrUniqueViolation = errors.New("pgerr: unique constraint violation")
)

// Classify сопоставляет ошибку драйвера с sentinel-ошибкой пакета.
// Возвращает nil, если ошибка не относится к обрабатываемым кодам.
func Classify(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}

	switch string(pqErr.Code) {
	case CodeSerializationFailure, CodeDeadlockDetected:
		return ErrSerializationFailure
	case CodeExclusionViolation:
		return ErrExclusionViolation
	case CodeUniqueViolation:
		return ErrUniqueViolation
	default:
		return nil
	}
}

// IsRetryable ошибка конкурентного доступа, после которой операцию можно повторить
func IsRetryable(err error) bool {
	return errors.Is(err, ErrSerializationFailure) || errors.Is(Classify(err), ErrSerializationFailure)
}
