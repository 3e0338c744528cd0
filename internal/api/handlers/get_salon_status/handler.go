package get_salon_status

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SalonBookingService/internal/api/handlers"
	getSalonStatus "github.com/m04kA/SalonBookingService/internal/usecase/get_salon_status"
)

const (
	msgInvalidSlug   = "некорректный адрес салона"
	msgSalonNotFound = "салон не найден"
)

type Handler struct {
	useCase GetSalonStatusUseCase
	logger  Logger
}

func NewHandler(useCase GetSalonStatusUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/salons/{slug}/status
// Публичный endpoint - без авторизации
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	result, err := h.useCase.Execute(r.Context(), &getSalonStatus.Request{Slug: slug})
	if err != nil {
		switch {
		case errors.Is(err, getSalonStatus.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidSlug)

		case errors.Is(err, getSalonStatus.ErrSalonNotFound):
			h.logger.Warn("GET /salons/{slug}/status - Salon not found: slug=%s", slug)
			handlers.RespondNotFound(w, msgSalonNotFound)

		default:
			h.logger.Error("GET /salons/{slug}/status - Failed to get status: slug=%s, error=%v", slug, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /salons/{slug}/status - Status retrieved: salon_id=%d, is_open=%t", result.SalonID, result.IsOpen)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
