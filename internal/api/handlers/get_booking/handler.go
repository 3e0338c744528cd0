package get_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SalonBookingService/internal/api/handlers"
	"github.com/m04kA/SalonBookingService/internal/api/middleware"
	"github.com/m04kA/SalonBookingService/internal/service/bookings"
)

const (
	msgInvalidBookingID = "некорректный ID бронирования"
	msgBookingNotFound  = "бронирование не найдено"
	msgNotSalonOwner    = "бронирование принадлежит другому салону"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/bookings/{bookingId}
// Карточка записи, которую владелец открывает из уведомления в Telegram
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := strconv.ParseInt(mux.Vars(r)["bookingId"], 10, 64)
	if err != nil || bookingID <= 0 {
		h.logger.Warn("GET /bookings/{id} - Invalid booking ID: %s", mux.Vars(r)["bookingId"])
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	// Auth middleware уже отклонил запрос без пользователя
	userID, _ := middleware.GetUserID(r.Context())

	card, err := h.service.GetCard(r.Context(), bookingID, userID)
	switch {
	case err == nil:
		h.logger.Info("GET /bookings/{id} - Card returned: booking_id=%d, salon_id=%d, status=%s",
			bookingID, card.SalonID, card.Status)
		handlers.RespondJSON(w, http.StatusOK, card)

	case errors.Is(err, bookings.ErrBookingNotFound):
		h.logger.Warn("GET /bookings/{id} - Booking not found: booking_id=%d", bookingID)
		handlers.RespondNotFound(w, msgBookingNotFound)

	case errors.Is(err, bookings.ErrAccessDenied):
		h.logger.Warn("GET /bookings/{id} - Not an owner: booking_id=%d, user_id=%d", bookingID, userID)
		handlers.RespondForbidden(w, msgNotSalonOwner)

	default:
		h.logger.Error("GET /bookings/{id} - Failed to get booking card: booking_id=%d, error=%v", bookingID, err)
		handlers.RespondInternalError(w)
	}
}
