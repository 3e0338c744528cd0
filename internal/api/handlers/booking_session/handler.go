package booking_session

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SalonBookingService/internal/api/handlers"
	bookingSession "github.com/m04kA/SalonBookingService/internal/usecase/booking_session"
	"github.com/m04kA/SalonBookingService/internal/wizard"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidEvent       = "некорректное событие"
	msgSessionNotFound    = "сессия не найдена или истекла"
	msgSalonNotFound      = "салон не найден"
	msgServiceNotFound    = "услуга не найдена"
	msgInvalidDate        = "дата недоступна для бронирования"
	msgSlotConflict       = "выбранное время уже занято, выберите другое"
	msgNotEnoughSlots     = "выбранное время не вмещает услуги"
	msgStepNotAllowed     = "действие недоступно на текущем шаге"
	msgIncomplete         = "текущий шаг не заполнен"
	msgInvalidContact     = "некорректные контактные данные"
)

type Handler struct {
	useCase BookingSessionUseCase
	logger  Logger
}

func NewHandler(useCase BookingSessionUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Start POST /api/v1/booking-sessions
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartSessionRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /booking-sessions - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Start(r.Context(), &bookingSession.StartRequest{SalonID: req.SalonID})
	if err != nil {
		h.respondError(w, "POST /booking-sessions", err, nil)
		return
	}

	h.logger.Info("POST /booking-sessions - Session started: session_id=%s, salon_id=%d", result.SessionID, req.SalonID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}

// Get GET /api/v1/booking-sessions/{sessionId}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	result, err := h.useCase.Get(r.Context(), sessionID)
	if err != nil {
		h.respondError(w, "GET /booking-sessions/{id}", err, nil)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}

// Apply POST /api/v1/booking-sessions/{sessionId}/events
func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	var req EventRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /booking-sessions/{id}/events - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(sessionID)
	if err != nil {
		h.logger.Warn("POST /booking-sessions/{id}/events - Invalid event fields: %v", err)
		handlers.RespondBadRequest(w, msgInvalidEvent)
		return
	}

	result, err := h.useCase.Apply(r.Context(), useCaseReq)
	if err != nil {
		h.respondError(w, "POST /booking-sessions/{id}/events", err, result)
		return
	}

	if result.State.Step == wizard.StepDone && req.Type == bookingSession.EventNext {
		h.logger.Info("POST /booking-sessions/{id}/events - Booking committed: session_id=%s, booking_id=%d",
			sessionID, result.State.BookingID)
	}
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}

// Delete DELETE /api/v1/booking-sessions/{sessionId}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	if err := h.useCase.Delete(r.Context(), sessionID); err != nil {
		h.respondError(w, "DELETE /booking-sessions/{id}", err, nil)
		return
	}

	handlers.RespondJSON(w, http.StatusNoContent, nil)
}

// respondError отвечает ошибкой. Если use case вернул состояние, оно прикладывается к ответу.
func (h *Handler) respondError(w http.ResponseWriter, op string, err error, result *bookingSession.Response) {
	status, msg := http.StatusInternalServerError, ""

	var unavailable *wizard.UnavailableError
	switch {
	case errors.Is(err, bookingSession.ErrSessionNotFound):
		status, msg = http.StatusNotFound, msgSessionNotFound

	case errors.Is(err, bookingSession.ErrSalonNotFound):
		status, msg = http.StatusNotFound, msgSalonNotFound

	case errors.Is(err, bookingSession.ErrServiceNotFound):
		status, msg = http.StatusNotFound, msgServiceNotFound

	case errors.Is(err, bookingSession.ErrInvalidEvent):
		status, msg = http.StatusBadRequest, msgInvalidEvent

	case errors.Is(err, bookingSession.ErrInvalidDate):
		status, msg = http.StatusBadRequest, msgInvalidDate

	case errors.Is(err, bookingSession.ErrSlotConflict):
		h.logger.Warn("%s - Slot conflict on commit: %v", op, err)
		status, msg = http.StatusConflict, msgSlotConflict

	case errors.As(err, &unavailable):
		status, msg = http.StatusUnprocessableEntity, unavailable.UserMessage()

	case errors.Is(err, wizard.ErrNotEnoughSlots):
		status, msg = http.StatusUnprocessableEntity, msgNotEnoughSlots

	case errors.Is(err, wizard.ErrContactInvalid):
		status, msg = http.StatusBadRequest, msgInvalidContact

	case errors.Is(err, wizard.ErrNoServices),
		errors.Is(err, wizard.ErrSpecialistRequired),
		errors.Is(err, wizard.ErrDateRequired),
		errors.Is(err, wizard.ErrTimeRequired),
		errors.Is(err, wizard.ErrInvalidSpecialist),
		errors.Is(err, wizard.ErrForeignService),
		errors.Is(err, wizard.ErrInvalidDuration):
		status, msg = http.StatusBadRequest, msgIncomplete

	case errors.Is(err, wizard.ErrStepLocked),
		errors.Is(err, wizard.ErrNavigation),
		errors.Is(err, wizard.ErrFinished),
		errors.Is(err, wizard.ErrClosed),
		errors.Is(err, wizard.ErrClosePending),
		errors.Is(err, wizard.ErrNoPendingClose),
		errors.Is(err, wizard.ErrCommitRequired):
		status, msg = http.StatusConflict, msgStepNotAllowed
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("%s - Internal error: %v", op, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Warn("%s - Rejected: status=%d, error=%v", op, status, err)
	handlers.RespondJSON(w, status, SessionErrorResponse{Error: msg, Session: FromUseCaseResponse(result)})
}
