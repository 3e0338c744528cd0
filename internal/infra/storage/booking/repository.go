package booking

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SalonBookingService/internal/domain"
	"github.com/m04kA/SalonBookingService/pkg/dbmetrics"
	"github.com/m04kA/SalonBookingService/pkg/pgerr"
	"github.com/m04kA/SalonBookingService/pkg/psqlbuilder"
)

var bookingColumns = []string{
	"id",
	"salon_id",
	"master_id",
	"service_id",
	"service_ids",
	"booking_date",
	"start_time",
	"duration_minutes",
	"price",
	"client_name",
	"client_phone",
	"client_email",
	"notes",
	"status",
	"notification_sent",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование.
// Вызывается в транзакции вместе с созданием блока расписания.
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"salon_id",
			"master_id",
			"service_id",
			"service_ids",
			"booking_date",
			"start_time",
			"duration_minutes",
			"price",
			"client_name",
			"client_phone",
			"client_email",
			"notes",
			"status",
			"notification_sent",
		).
		Values(
			booking.SalonID,
			booking.MasterID,
			booking.ServiceID,
			pq.Array(booking.ServiceIDs),
			booking.BookingDate,
			booking.StartTime,
			booking.DurationMinutes,
			booking.Price,
			booking.ClientName,
			booking.ClientPhone,
			booking.ClientEmail,
			booking.Notes,
			booking.Status,
			booking.NotificationSent,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		if cls := pgerr.Classify(err); cls != nil {
			return nil, fmt.Errorf("%w: Create - execute insert: %v", cls, err)
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return booking, nil
}

// GetByID получает бронирование по ID.
// Внутри транзакции строка блокируется (FOR UPDATE).
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	return booking, nil
}

// GetBySalonWithFilter бронирования салона.
// Для конкретной даты сортируются по времени начала, иначе сначала новые.
func (r *Repository) GetBySalonWithFilter(ctx context.Context, filter domain.SalonBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"salon_id": filter.SalonID})

	if filter.MasterID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"master_id": *filter.MasterID})
	}

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeCancelled {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": domain.StatusCancelled})
	}

	if filter.Date != nil {
		selectBuilder = selectBuilder.
			Where(squirrel.Eq{"booking_date": *filter.Date}).
			OrderBy("start_time ASC", "master_id ASC")
	} else {
		selectBuilder = selectBuilder.OrderBy("booking_date DESC", "start_time DESC")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetBySalonWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetBySalonWithFilter - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// UpdateStatus меняет статус. Для отмены проставляет cancelled_at.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update("bookings").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})

	if status == domain.StatusCancelled {
		updateBuilder = updateBuilder.Set("cancelled_at", squirrel.Expr("NOW()"))
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, executor, "UpdateStatus", query, args)
}

// MarkNotificationSent отмечает, что владельцу отправлено уведомление
func (r *Repository) MarkNotificationSent(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("notification_sent", true).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: MarkNotificationSent - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, executor, "MarkNotificationSent", query, args)
}

// GetDetails бронирование с названиями салона, мастера и услуг для уведомлений
func (r *Repository) GetDetails(ctx context.Context, id int64) (*domain.BookingDetails, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	columns := make([]string, 0, len(bookingColumns)+4)
	for _, c := range bookingColumns {
		columns = append(columns, "b."+c)
	}
	columns = append(columns,
		"s.name",
		"s.owner_id",
		"m.name",
		"COALESCE((SELECT array_agg(sv.name ORDER BY array_position(b.service_ids, sv.id)) "+
			"FROM services sv WHERE sv.id = ANY(b.service_ids)), '{}')",
	)

	query, args, err := psqlbuilder.Select(columns...).
		From("bookings b").
		Join("salons s ON s.id = b.salon_id").
		Join("masters m ON m.id = b.master_id").
		Where(squirrel.Eq{"b.id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetDetails - build select query: %v", ErrBuildQuery, err)
	}

	var (
		details            domain.BookingDetails
		serviceIDs         pq.Int64Array
		serviceNames       pq.StringArray
		createdAt, updated sql.NullTime
		b                  = &details.Booking
	)

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&b.ID,
		&b.SalonID,
		&b.MasterID,
		&b.ServiceID,
		&serviceIDs,
		&b.BookingDate,
		&b.StartTime,
		&b.DurationMinutes,
		&b.Price,
		&b.ClientName,
		&b.ClientPhone,
		&b.ClientEmail,
		&b.Notes,
		&b.Status,
		&b.NotificationSent,
		&b.CancelledAt,
		&createdAt,
		&updated,
		&details.SalonName,
		&details.SalonOwnerID,
		&details.MasterName,
		&serviceNames,
	)

	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetDetails - scan row: %v", ErrScanRow, err)
	}

	b.ServiceIDs = serviceIDs
	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updated.Time
	details.ServiceNames = serviceNames

	return &details, nil
}

func (r *Repository) execAffectingOne(ctx context.Context, executor DBExecutor, op, query string, args []interface{}) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		if cls := pgerr.Classify(err); cls != nil {
			return fmt.Errorf("%w: %s - execute update: %v", cls, op, err)
		}
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var (
		booking              domain.Booking
		serviceIDs           pq.Int64Array
		cancelledAt          sql.NullTime
		createdAt, updatedAt sql.NullTime
	)

	err := row.Scan(
		&booking.ID,
		&booking.SalonID,
		&booking.MasterID,
		&booking.ServiceID,
		&serviceIDs,
		&booking.BookingDate,
		&booking.StartTime,
		&booking.DurationMinutes,
		&booking.Price,
		&booking.ClientName,
		&booking.ClientPhone,
		&booking.ClientEmail,
		&booking.Notes,
		&booking.Status,
		&booking.NotificationSent,
		&cancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	booking.ServiceIDs = serviceIDs
	if cancelledAt.Valid {
		t := cancelledAt.Time
		booking.CancelledAt = &t
	}
	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return &booking, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}
