package booking_session

import (
	"context"

	bookingSession "github.com/m04kA/SalonBookingService/internal/usecase/booking_session"
)

type BookingSessionUseCase interface {
	Start(ctx context.Context, req *bookingSession.StartRequest) (*bookingSession.Response, error)
	Get(ctx context.Context, id string) (*bookingSession.Response, error)
	Apply(ctx context.Context, req *bookingSession.EventRequest) (*bookingSession.Response, error)
	Delete(ctx context.Context, id string) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
