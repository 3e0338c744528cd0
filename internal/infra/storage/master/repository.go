package master

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SalonBookingService/internal/domain"
	"github.com/m04kA/SalonBookingService/pkg/dbmetrics"
	"github.com/m04kA/SalonBookingService/pkg/psqlbuilder"
)

var masterColumns = []string{"id", "salon_id", "name", "role", "sort_order", "is_active"}

// Repository чтение мастеров салона
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория мастеров
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает мастера по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Master, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(masterColumns...).
		From("masters").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var m domain.Master
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&m.ID, &m.SalonID, &m.Name, &m.Role, &m.SortOrder, &m.IsActive,
	)
	if err == sql.ErrNoRows {
		return nil, ErrMasterNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan master: %v", ErrScanRow, err)
	}

	return &m, nil
}

// ListActiveBySalon активные мастера салона в порядке отображения.
// Этот же порядок используется при выборе "любого мастера".
func (r *Repository) ListActiveBySalon(ctx context.Context, salonID int64) ([]*domain.Master, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(masterColumns...).
		From("masters").
		Where(squirrel.Eq{"salon_id": salonID, "is_active": true}).
		OrderBy("sort_order ASC", "id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveBySalon - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveBySalon - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	masters := make([]*domain.Master, 0)
	for rows.Next() {
		var m domain.Master
		if err := rows.Scan(&m.ID, &m.SalonID, &m.Name, &m.Role, &m.SortOrder, &m.IsActive); err != nil {
			return nil, fmt.Errorf("%w: ListActiveBySalon - scan row: %v", ErrScanRow, err)
		}
		masters = append(masters, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListActiveBySalon - rows error: %v", ErrScanRow, err)
	}

	return masters, nil
}
