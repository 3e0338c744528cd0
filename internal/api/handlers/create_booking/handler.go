package create_booking

import (
	"errors"
	"net/http"
	"strings"

	"github.com/m04kA/SalonBookingService/internal/api/handlers"
	createBooking "github.com/m04kA/SalonBookingService/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты бронирования, ожидается YYYY-MM-DD"
	msgInvalidTime        = "некорректный формат времени начала, ожидается HH:MM"
	msgSlotConflict       = "выбранное время уже занято, обновите список слотов"
	msgSalonNotFound      = "салон не найден"
	msgMasterNotFound     = "мастер не найден"
	msgServiceNotFound    = "услуга не найдена"
	msgInvalidDuration    = "некорректная длительность услуги"
	msgSalonClosed        = "салон не работает в выбранную дату"
	msgInvalidBookingDate = "некорректная дата бронирования"
	msgDateTooFar         = "дата бронирования слишком далеко в будущем"
	msgInvalidTimeSlot    = "некорректный временной слот"
	msgOutsideHours       = "бронирование заканчивается после закрытия салона"
	msgTooLateToBook      = "слишком поздно для бронирования этого слота"
	msgInvalidContact     = "некорректные контактные данные"
	msgInvalidInput       = "некорректные данные бронирования"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
// Header: Idempotency-Key (опционально)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Конвертируем HTTP запрос в модель use case (с парсингом даты и времени)
	idempotencyKey := strings.TrimSpace(r.Header.Get(HeaderIdempotencyKey))
	useCaseReq, err := req.ToUseCaseRequest(idempotencyKey)
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse request: %v", err)
		var timeErr errInvalidTime
		if errors.As(err, &timeErr) {
			handlers.RespondBadRequest(w, msgInvalidTime)
		} else {
			handlers.RespondBadRequest(w, msgInvalidDate)
		}
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrSlotConflict):
			h.logger.Warn("POST /bookings - Slot conflict: salon_id=%d, master_id=%d, date=%s, time=%s",
				req.SalonID, req.MasterID, req.BookingDate, req.StartTime)
			handlers.RespondConflict(w, msgSlotConflict)

		case errors.Is(err, createBooking.ErrSalonNotFound):
			h.logger.Warn("POST /bookings - Salon not found: salon_id=%d", req.SalonID)
			handlers.RespondNotFound(w, msgSalonNotFound)

		case errors.Is(err, createBooking.ErrMasterNotFound):
			h.logger.Warn("POST /bookings - Master not found: salon_id=%d, master_id=%d", req.SalonID, req.MasterID)
			handlers.RespondNotFound(w, msgMasterNotFound)

		case errors.Is(err, createBooking.ErrServiceNotFound):
			h.logger.Warn("POST /bookings - Service not found: salon_id=%d, service_ids=%v", req.SalonID, req.ServiceIDs)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, createBooking.ErrInvalidDuration):
			h.logger.Warn("POST /bookings - Invalid service duration: salon_id=%d, service_ids=%v", req.SalonID, req.ServiceIDs)
			handlers.RespondUnprocessable(w, msgInvalidDuration)

		case errors.Is(err, createBooking.ErrSalonClosed):
			handlers.RespondBadRequest(w, msgSalonClosed)

		case errors.Is(err, createBooking.ErrInvalidDate):
			handlers.RespondBadRequest(w, msgInvalidBookingDate)

		case errors.Is(err, createBooking.ErrDateTooFarInFuture):
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, createBooking.ErrInvalidTimeSlot):
			handlers.RespondBadRequest(w, msgInvalidTimeSlot)

		case errors.Is(err, createBooking.ErrOutsideWorkingHours):
			handlers.RespondUnprocessable(w, msgOutsideHours)

		case errors.Is(err, createBooking.ErrTooLateToBook):
			handlers.RespondBadRequest(w, msgTooLateToBook)

		case errors.Is(err, createBooking.ErrInvalidContact):
			handlers.RespondBadRequest(w, msgInvalidContact)

		case errors.Is(err, createBooking.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: salon_id=%d, error=%v", req.SalonID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	// Повтор с тем же ключом возвращает уже созданное бронирование
	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, salon_id=%d, master_id=%d, replayed=%t",
		result.ID, result.SalonID, result.MasterID, result.Replayed)
	handlers.RespondJSON(w, status, response)
}
