package blocks

import (
	"context"
	"time"

	"github.com/m04kA/SalonBookingService/internal/domain"
)

// BlockRepository интерфейс репозитория блоков расписания
type BlockRepository interface {
	Create(ctx context.Context, block *domain.ScheduleBlock) (*domain.ScheduleBlock, error)
	GetByID(ctx context.Context, id int64) (*domain.ScheduleBlock, error)
	ListBySalonAndDate(ctx context.Context, salonID int64, masterID *int64, date time.Time) ([]*domain.ScheduleBlock, error)
	Delete(ctx context.Context, id int64) error
}

// SalonRepository интерфейс репозитория салонов
type SalonRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Salon, error)
}

// MasterRepository интерфейс репозитория мастеров
type MasterRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Master, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
