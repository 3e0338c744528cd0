package subscription

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SalonBookingService/internal/domain"
	"github.com/m04kA/SalonBookingService/pkg/dbmetrics"
	"github.com/m04kA/SalonBookingService/pkg/psqlbuilder"
)

// Repository подписки владельцев салонов на уведомления
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория подписок
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByOwnerID подписка владельца
func (r *Repository) GetByOwnerID(ctx context.Context, ownerID int64) (*domain.OwnerSubscription, error) {
	return r.getOne(ctx, "GetByOwnerID", squirrel.Eq{"owner_id": ownerID})
}

// GetByChatID подписка, привязанная к чату Telegram
func (r *Repository) GetByChatID(ctx context.Context, chatID string) (*domain.OwnerSubscription, error) {
	return r.getOne(ctx, "GetByChatID", squirrel.Eq{"telegram_chat_id": chatID})
}

func (r *Repository) getOne(ctx context.Context, op string, where squirrel.Eq) (*domain.OwnerSubscription, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"owner_id",
		"email",
		"telegram_chat_id",
		"notifications_enabled",
	).
		From("owner_subscriptions").
		Where(where).
		Limit(1).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	var (
		sub    domain.OwnerSubscription
		chatID sql.NullString
	)
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&sub.OwnerID,
		&sub.Email,
		&chatID,
		&sub.NotificationsEnabled,
	)
	if err == sql.ErrNoRows {
		return nil, ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan row: %v", ErrScanRow, op, err)
	}

	if chatID.Valid {
		id := chatID.String
		sub.TelegramChatID = &id
	}

	return &sub, nil
}
