package idempotency

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SalonBookingService/pkg/dbmetrics"
	"github.com/m04kA/SalonBookingService/pkg/pgerr"
	"github.com/m04kA/SalonBookingService/pkg/psqlbuilder"
)

// Repository ключи идемпотентности создания бронирований
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория ключей
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetBookingID бронирование, созданное с этим ключом
func (r *Repository) GetBookingID(ctx context.Context, salonID int64, key string) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("booking_id").
		From("booking_idempotency_keys").
		Where(squirrel.Eq{"salon_id": salonID, "idempotency_key": key}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: GetBookingID - build select query: %v", ErrBuildQuery, err)
	}

	var bookingID int64
	err = executor.QueryRowContext(ctx, query, args...).Scan(&bookingID)
	if err == sql.ErrNoRows {
		return 0, ErrKeyNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("%w: GetBookingID - execute query: %v", ErrExecQuery, err)
	}

	return bookingID, nil
}

// Save сохраняет ключ. Вызывается в транзакции создания бронирования.
func (r *Repository) Save(ctx context.Context, salonID int64, key string, bookingID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("booking_idempotency_keys").
		Columns("salon_id", "idempotency_key", "booking_id").
		Values(salonID, key, bookingID).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Save - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		cls := pgerr.Classify(err)
		if errors.Is(cls, pgerr.ErrUniqueViolation) {
			return ErrKeyExists
		}
		if cls != nil {
			return fmt.Errorf("%w: Save - execute insert: %v", cls, err)
		}
		return fmt.Errorf("%w: Save - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}
