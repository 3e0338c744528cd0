package delete_block

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SalonBookingService/internal/api/handlers"
	"github.com/m04kA/SalonBookingService/internal/api/middleware"
	"github.com/m04kA/SalonBookingService/internal/service/blocks"
	"github.com/m04kA/SalonBookingService/internal/service/blocks/models"
)

const (
	msgInvalidSalonID = "некорректный ID салона"
	msgInvalidBlockID = "некорректный ID блока"
	msgMissingUserID  = "отсутствует ID пользователя"
	msgNotFound       = "блок не найден"
	msgForbidden      = "доступ запрещен"
	msgBookingBlock   = "блок бронирования снимается только отменой бронирования"
)

type Handler struct {
	service BlockService
	logger  Logger
}

func NewHandler(service BlockService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle DELETE /api/v1/salons/{salonId}/blocks/{blockId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	salonID, err := strconv.ParseInt(vars["salonId"], 10, 64)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidSalonID)
		return
	}

	blockID, err := strconv.ParseInt(vars["blockId"], 10, 64)
	if err != nil {
		h.logger.Warn("DELETE /salons/{id}/blocks/{id} - Invalid block ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBlockID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	err = h.service.Delete(r.Context(), &models.DeleteBlockRequest{
		UserID:  userID,
		SalonID: salonID,
		BlockID: blockID,
	})
	if err != nil {
		switch {
		case errors.Is(err, blocks.ErrBlockNotFound), errors.Is(err, blocks.ErrSalonNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, blocks.ErrAccessDenied):
			h.logger.Warn("DELETE /salons/{id}/blocks/{id} - Access denied: salon_id=%d, user_id=%d", salonID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, blocks.ErrBookingBlock):
			handlers.RespondConflict(w, msgBookingBlock)

		default:
			h.logger.Error("DELETE /salons/{id}/blocks/{id} - Failed to delete block: block_id=%d, error=%v", blockID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /salons/{id}/blocks/{id} - Block deleted: salon_id=%d, block_id=%d", salonID, blockID)
	handlers.RespondJSON(w, http.StatusNoContent, nil)
}
