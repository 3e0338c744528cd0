package block

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SalonBookingService/internal/domain"
	"github.com/m04kA/SalonBookingService/pkg/dbmetrics"
	"github.com/m04kA/SalonBookingService/pkg/pgerr"
	"github.com/m04kA/SalonBookingService/pkg/psqlbuilder"
)

var blockColumns = []string{
	"id",
	"salon_id",
	"master_id",
	"block_date",
	"time_start",
	"time_end",
	"is_blocked",
	"blocked_reason",
	"booking_id",
	"created_at",
}

// Repository репозиторий блоков расписания мастеров
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория блоков
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает блок.
// Пересечение с другим блоком мастера на ту же дату отклоняется ограничением EXCLUDE в БД.
func (r *Repository) Create(ctx context.Context, block *domain.ScheduleBlock) (*domain.ScheduleBlock, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("schedule_blocks").
		Columns(
			"salon_id",
			"master_id",
			"block_date",
			"time_start",
			"time_end",
			"is_blocked",
			"blocked_reason",
			"booking_id",
		).
		Values(
			block.SalonID,
			block.MasterID,
			block.Date,
			block.TimeStart,
			block.TimeEnd,
			block.IsBlocked,
			block.Reason,
			block.BookingID,
		).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&block.ID, &createdAt)
	if err != nil {
		cls := pgerr.Classify(err)
		if errors.Is(cls, pgerr.ErrExclusionViolation) {
			return nil, ErrBlockOverlap
		}
		if cls != nil {
			return nil, fmt.Errorf("%w: Create - execute insert: %v", cls, err)
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	block.CreatedAt = createdAt.Time

	return block, nil
}

// GetByID получает блок по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.ScheduleBlock, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(blockColumns...).
		From("schedule_blocks").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	block, err := scanBlock(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrBlockNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan block: %v", ErrScanRow, err)
	}

	return block, nil
}

// ListByMasterAndDate блоки мастера на дату.
// Внутри транзакции строки блокируются (FOR UPDATE), чтобы повторная проверка пересечений
// при бронировании видела зафиксированное состояние.
func (r *Repository) ListByMasterAndDate(ctx context.Context, salonID, masterID int64, date time.Time) ([]*domain.ScheduleBlock, error) {
	selectBuilder := psqlbuilder.Select(blockColumns...).
		From("schedule_blocks").
		Where(squirrel.Eq{
			"salon_id":   salonID,
			"master_id":  masterID,
			"block_date": date,
		}).
		OrderBy("time_start ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	return r.list(ctx, "ListByMasterAndDate", selectBuilder)
}

// ListBySalonAndDate блоки всех (или одного) мастеров салона на дату
func (r *Repository) ListBySalonAndDate(ctx context.Context, salonID int64, masterID *int64, date time.Time) ([]*domain.ScheduleBlock, error) {
	selectBuilder := psqlbuilder.Select(blockColumns...).
		From("schedule_blocks").
		Where(squirrel.Eq{
			"salon_id":   salonID,
			"block_date": date,
		}).
		OrderBy("master_id ASC", "time_start ASC")

	if masterID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"master_id": *masterID})
	}

	return r.list(ctx, "ListBySalonAndDate", selectBuilder)
}

// Delete удаляет блок по ID
func (r *Repository) Delete(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("schedule_blocks").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrBlockNotFound
	}

	return nil
}

// DeleteByBookingID удаляет блоки бронирования, возвращает количество удаленных.
// Отсутствие блоков не ошибка: повторная отмена ничего не удаляет.
func (r *Repository) DeleteByBookingID(ctx context.Context, bookingID int64) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("schedule_blocks").
		Where(squirrel.Eq{"booking_id": bookingID}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: DeleteByBookingID - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		if cls := pgerr.Classify(err); cls != nil {
			return 0, fmt.Errorf("%w: DeleteByBookingID - execute delete: %v", cls, err)
		}
		return 0, fmt.Errorf("%w: DeleteByBookingID - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteByBookingID - get rows affected: %v", ErrExecQuery, err)
	}

	return rowsAffected, nil
}

func (r *Repository) list(ctx context.Context, op string, selectBuilder squirrel.SelectBuilder) ([]*domain.ScheduleBlock, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		if cls := pgerr.Classify(err); cls != nil {
			return nil, fmt.Errorf("%w: %s - execute query: %v", cls, op, err)
		}
		return nil, fmt.Errorf("%w: %s - execute query: %v", ErrExecQuery, op, err)
	}
	defer rows.Close()

	blocks := make([]*domain.ScheduleBlock, 0)
	for rows.Next() {
		block, err := scanBlock(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %v", ErrScanRow, op, err)
		}
		blocks = append(blocks, block)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %v", ErrScanRow, op, err)
	}

	return blocks, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBlock(row rowScanner) (*domain.ScheduleBlock, error) {
	var (
		block     domain.ScheduleBlock
		bookingID sql.NullInt64
		createdAt sql.NullTime
	)

	err := row.Scan(
		&block.ID,
		&block.SalonID,
		&block.MasterID,
		&block.Date,
		&block.TimeStart,
		&block.TimeEnd,
		&block.IsBlocked,
		&block.Reason,
		&bookingID,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if bookingID.Valid {
		id := bookingID.Int64
		block.BookingID = &id
	}
	block.CreatedAt = createdAt.Time

	return &block, nil
}
