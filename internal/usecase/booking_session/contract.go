package booking_session

import (
	"context"

	"github.com/m04kA/SalonBookingService/internal/domain"
	createBooking "github.com/m04kA/SalonBookingService/internal/usecase/create_booking"
	getAvailableSlots "github.com/m04kA/SalonBookingService/internal/usecase/get_available_slots"
	"github.com/m04kA/SalonBookingService/internal/wizard"
)

// SessionStore хранилище состояний мастера бронирования
type SessionStore interface {
	Create(ctx context.Context, state wizard.State) (string, error)
	Get(ctx context.Context, id string) (wizard.State, error)
	Update(ctx context.Context, id string, fn func(wizard.State) (wizard.State, error)) (wizard.State, error)
	DeleteIf(ctx context.Context, id string, check func(wizard.State) error) error
}

// SalonRepository интерфейс репозитория салонов
type SalonRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Salon, error)
}

// ServiceRepository интерфейс репозитория услуг
type ServiceRepository interface {
	GetByIDs(ctx context.Context, salonID int64, ids []int64) ([]domain.Service, error)
}

// SlotsUseCase расчет доступности на дату
type SlotsUseCase interface {
	Execute(ctx context.Context, req *getAvailableSlots.Request) (*getAvailableSlots.Response, error)
}

// CreateBookingUseCase создание бронирования
type CreateBookingUseCase interface {
	Execute(ctx context.Context, req *createBooking.Request) (*createBooking.Response, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
