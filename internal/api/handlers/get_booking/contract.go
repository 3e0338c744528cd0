package get_booking

import (
	"context"

	"github.com/m04kA/SalonBookingService/internal/service/bookings/models"
)

// BookingService карточка бронирования для владельца салона
type BookingService interface {
	GetCard(ctx context.Context, id int64, userID int64) (*models.BookingCardResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
