package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SalonBookingService/internal/domain"
	"github.com/m04kA/SalonBookingService/internal/infra/broker"
	"github.com/m04kA/SalonBookingService/pkg/metrics"
)

// Repository интерфейс репозитория outbox
type Repository interface {
	FetchUnpublished(ctx context.Context, limit int, maxAttempts int) ([]*domain.OutboxEvent, error)
	Claim(ctx context.Context, ids []int64, lease time.Duration) error
	MarkPublished(ctx context.Context, ids []int64) error
	MarkFailed(ctx context.Context, id int64, reason string) error
}

// Publisher транспорт событий (Kafka, RabbitMQ или in-process)
type Publisher interface {
	Publish(ctx context.Context, msg broker.Message) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics учет обработанных событий
type Metrics interface {
	ObserveOutbox(result string, count int)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Config параметры relay
type Config struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
	Lease        time.Duration // на сколько пачка закрепляется за relay
}

// Relay переносит события из outbox в брокер.
// Пачка выбирается FOR UPDATE SKIP LOCKED и закрепляется через locked_until,
// поэтому несколько экземпляров не публикуют одно событие одновременно.
type Relay struct {
	repo      Repository
	publisher Publisher
	txManager TransactionManager
	metrics   Metrics
	logger    Logger
	cfg       Config
}

func NewRelay(
	repo Repository,
	publisher Publisher,
	txManager TransactionManager,
	relayMetrics Metrics,
	logger Logger,
	cfg Config,
) *Relay {
	if relayMetrics == nil {
		relayMetrics = (*metrics.Metrics)(nil)
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.Lease <= 0 {
		cfg.Lease = time.Minute
	}
	return &Relay{
		repo:      repo,
		publisher: publisher,
		txManager: txManager,
		metrics:   relayMetrics,
		logger:    logger,
		cfg:       cfg,
	}
}

// Run опрашивает outbox до отмены ctx
func (r *Relay) Run(ctx context.Context) {
	r.logger.Info("OutboxRelay: started, poll=%s batch=%d", r.cfg.PollInterval, r.cfg.BatchSize)

	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("OutboxRelay: stopped")
			return
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil && ctx.Err() == nil {
				r.logger.Error("OutboxRelay: batch failed: %v", err)
			}
		}
	}
}

// RunOnce публикует одну пачку и возвращает число опубликованных событий.
// Пачка закрепляется за relay в короткой транзакции, публикация идет уже вне нее:
// обработчик in-process публикации может сам писать в БД и ходить в Telegram.
// Каждое событие отмечается отдельно, поэтому сбой на одном не откатывает уже отправленные.
// Неудачная публикация увеличивает attempts, событие повторится на следующем тике.
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	events, err := r.claim(ctx)
	if err != nil {
		return 0, err
	}

	var published, failed int
	var markErr error
	for _, event := range events {
		if err := r.publisher.Publish(ctx, broker.MessageFromEvent(event)); err != nil {
			r.logger.Warn("OutboxRelay: failed to publish event_id=%s (attempt %d): %v",
				event.EventID, event.Attempts+1, err)
			failed++
			if err := r.repo.MarkFailed(ctx, event.ID, err.Error()); err != nil {
				markErr = fmt.Errorf("mark failed event_id=%s: %w", event.EventID, err)
				break
			}
			continue
		}

		if err := r.repo.MarkPublished(ctx, []int64{event.ID}); err != nil {
			// событие уйдет повторно после истечения lease
			markErr = fmt.Errorf("mark published event_id=%s: %w", event.EventID, err)
			break
		}
		published++
	}

	r.metrics.ObserveOutbox(metrics.ResultPublished, published)
	r.metrics.ObserveOutbox(metrics.ResultFailed, failed)
	if published > 0 || failed > 0 {
		r.logger.Info("OutboxRelay: published=%d failed=%d", published, failed)
	}
	return published, markErr
}

// claim выбирает пачку и закрепляет ее за relay на cfg.Lease
func (r *Relay) claim(ctx context.Context) ([]*domain.OutboxEvent, error) {
	var events []*domain.OutboxEvent

	err := r.txManager.Do(ctx, func(txCtx context.Context) error {
		batch, err := r.repo.FetchUnpublished(txCtx, r.cfg.BatchSize, r.cfg.MaxAttempts)
		if err != nil {
			return fmt.Errorf("fetch unpublished: %w", err)
		}
		if len(batch) == 0 {
			return nil
		}

		ids := make([]int64, 0, len(batch))
		for _, event := range batch {
			ids = append(ids, event.ID)
		}
		if err := r.repo.Claim(txCtx, ids, r.cfg.Lease); err != nil {
			return fmt.Errorf("claim: %w", err)
		}

		events = batch
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}
