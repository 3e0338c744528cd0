package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SalonBookingService/internal/domain"
	"github.com/m04kA/SalonBookingService/pkg/dbmetrics"
	"github.com/m04kA/SalonBookingService/pkg/psqlbuilder"
)

// Repository чтение услуг салона
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория услуг
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByIDs активные услуги салона из списка ids в порядке ids.
// Отсутствующие и чужие услуги просто не попадают в результат.
func (r *Repository) GetByIDs(ctx context.Context, salonID int64, ids []int64) ([]domain.Service, error) {
	if len(ids) == 0 {
		return []domain.Service{}, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"salon_id",
		"name",
		"duration_minutes",
		"price",
		"is_active",
	).
		From("services").
		Where(squirrel.Eq{"salon_id": salonID, "id": ids, "is_active": true}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByIDs - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByIDs - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	byID := make(map[int64]domain.Service, len(ids))
	for rows.Next() {
		var (
			svc      domain.Service
			duration sql.NullInt64
		)
		if err := rows.Scan(&svc.ID, &svc.SalonID, &svc.Name, &duration, &svc.Price, &svc.IsActive); err != nil {
			return nil, fmt.Errorf("%w: GetByIDs - scan row: %v", ErrScanRow, err)
		}
		if duration.Valid {
			d := int(duration.Int64)
			svc.DurationMinutes = &d
		}
		byID[svc.ID] = svc
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetByIDs - rows error: %v", ErrScanRow, err)
	}

	services := make([]domain.Service, 0, len(byID))
	for _, id := range ids {
		if svc, ok := byID[id]; ok {
			services = append(services, svc)
		}
	}

	return services, nil
}
