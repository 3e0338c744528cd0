package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/SalonBookingService/internal/domain"
)

// SalonRepository интерфейс репозитория салонов
type SalonRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Salon, error)
}

// MasterRepository интерфейс репозитория мастеров
type MasterRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Master, error)
	ListActiveBySalon(ctx context.Context, salonID int64) ([]*domain.Master, error)
}

// ServiceRepository интерфейс репозитория услуг
type ServiceRepository interface {
	GetByIDs(ctx context.Context, salonID int64, ids []int64) ([]domain.Service, error)
}

// BlockRepository интерфейс репозитория блоков расписания
type BlockRepository interface {
	// ListByMasterAndDate внутри транзакции блокирует строки (FOR UPDATE)
	ListByMasterAndDate(ctx context.Context, salonID, masterID int64, date time.Time) ([]*domain.ScheduleBlock, error)
	Create(ctx context.Context, block *domain.ScheduleBlock) (*domain.ScheduleBlock, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
}

// OutboxRepository интерфейс репозитория событий outbox
type OutboxRepository interface {
	Insert(ctx context.Context, event *domain.OutboxEvent) error
}

// IdempotencyRepository интерфейс репозитория ключей идемпотентности
type IdempotencyRepository interface {
	GetBookingID(ctx context.Context, salonID int64, key string) (int64, error)
	Save(ctx context.Context, salonID int64, key string, bookingID int64) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// PhoneNormalizer приводит телефон клиента к E.164
type PhoneNormalizer interface {
	Normalize(raw string) (string, error)
}

// Metrics счетчики результатов создания бронирований
type Metrics interface {
	ObserveBookingCommit(result string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени в часовом поясе салонов
type RealTimeProvider struct {
	Location *time.Location
}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	if p.Location == nil {
		return time.Now()
	}
	return time.Now().In(p.Location)
}
