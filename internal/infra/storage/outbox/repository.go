package outbox

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SalonBookingService/internal/domain"
	"github.com/m04kA/SalonBookingService/pkg/dbmetrics"
	"github.com/m04kA/SalonBookingService/pkg/pgerr"
	"github.com/m04kA/SalonBookingService/pkg/psqlbuilder"
)

// maxErrorLength обрезка текста последней ошибки публикации
const maxErrorLength = 1000

// Repository таблица outbox_events
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория outbox
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Insert сохраняет событие. Вызывается в транзакции бизнес-операции.
func (r *Repository) Insert(ctx context.Context, event *domain.OutboxEvent) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("outbox_events").
		Columns(
			"event_id",
			"aggregate_type",
			"aggregate_id",
			"event_type",
			"payload",
			"traceparent",
		).
		Values(
			event.EventID,
			event.AggregateType,
			event.AggregateID,
			event.EventType,
			string(event.Payload), // jsonb принимает текст, []byte lib/pq отправит как bytea
			event.Traceparent,
		).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Insert - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&event.ID, &createdAt); err != nil {
		if cls := pgerr.Classify(err); cls != nil {
			return fmt.Errorf("%w: Insert - execute insert: %v", cls, err)
		}
		return fmt.Errorf("%w: Insert - execute insert: %v", ErrExecQuery, err)
	}
	event.CreatedAt = createdAt.Time

	return nil
}

// FetchUnpublished неопубликованные и не закрепленные за другим relay события в порядке создания.
// Строки блокируются с SKIP LOCKED до конца транзакции, в которой их закрепляет Claim.
func (r *Repository) FetchUnpublished(ctx context.Context, limit int, maxAttempts int) ([]*domain.OutboxEvent, error) {
	if !dbmetrics.IsInTransaction(ctx) {
		return nil, ErrNoTransaction
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(
		"id",
		"event_id",
		"aggregate_type",
		"aggregate_id",
		"event_type",
		"payload",
		"traceparent",
		"attempts",
		"last_error",
		"created_at",
	).
		From("outbox_events").
		Where(squirrel.Eq{"published_at": nil}).
		Where(squirrel.Or{
			squirrel.Eq{"locked_until": nil},
			squirrel.Expr("locked_until < NOW()"),
		}).
		OrderBy("id ASC").
		Limit(uint64(limit)).
		Suffix("FOR UPDATE SKIP LOCKED")

	if maxAttempts > 0 {
		selectBuilder = selectBuilder.Where(squirrel.Lt{"attempts": maxAttempts})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FetchUnpublished - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: FetchUnpublished - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	events := make([]*domain.OutboxEvent, 0)
	for rows.Next() {
		var (
			ev        domain.OutboxEvent
			lastError sql.NullString
			createdAt sql.NullTime
		)
		if err := rows.Scan(
			&ev.ID,
			&ev.EventID,
			&ev.AggregateType,
			&ev.AggregateID,
			&ev.EventType,
			&ev.Payload,
			&ev.Traceparent,
			&ev.Attempts,
			&lastError,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("%w: FetchUnpublished - scan row: %v", ErrScanRow, err)
		}
		if lastError.Valid {
			msg := lastError.String
			ev.LastError = &msg
		}
		ev.CreatedAt = createdAt.Time
		events = append(events, &ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: FetchUnpublished - rows error: %v", ErrScanRow, err)
	}

	return events, nil
}

// Claim закрепляет события за relay на lease. Пока lease не истек, FetchUnpublished их не вернет.
func (r *Repository) Claim(ctx context.Context, ids []int64, lease time.Duration) error {
	if len(ids) == 0 {
		return nil
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("outbox_events").
		Set("locked_until", squirrel.Expr("NOW() + ? * INTERVAL '1 millisecond'", lease.Milliseconds())).
		Where(squirrel.Expr("id = ANY(?)", pq.Array(ids))).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Claim - build update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Claim - execute update: %v", ErrExecQuery, err)
	}

	return nil
}

// MarkPublished отмечает события опубликованными
func (r *Repository) MarkPublished(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("outbox_events").
		Set("published_at", squirrel.Expr("NOW()")).
		Where(squirrel.Expr("id = ANY(?)", pq.Array(ids))).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: MarkPublished - build update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: MarkPublished - execute update: %v", ErrExecQuery, err)
	}

	return nil
}

// MarkFailed увеличивает счетчик попыток, запоминает ошибку и снимает закрепление
func (r *Repository) MarkFailed(ctx context.Context, id int64, reason string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if len(reason) > maxErrorLength {
		reason = reason[:maxErrorLength]
	}

	query, args, err := psqlbuilder.Update("outbox_events").
		Set("attempts", squirrel.Expr("attempts + 1")).
		Set("last_error", reason).
		Set("locked_until", nil).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: MarkFailed - build update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: MarkFailed - execute update: %v", ErrExecQuery, err)
	}

	return nil
}
