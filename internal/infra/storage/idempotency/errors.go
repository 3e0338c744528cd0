package idempotency

import "errors"

var (
	// ErrKeyNotFound ключ еще не использовался
	ErrKeyNotFound = errors.New("idempotency.repository: key not found")

	// ErrKeyExists ключ уже сохранен конкурентным запросом
	ErrKeyExists = errors.New("idempotency.repository: key already exists")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("idempotency.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("idempotency.repository: failed to execute query")
)
