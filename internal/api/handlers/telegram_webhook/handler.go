package telegram_webhook

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/m04kA/SalonBookingService/internal/api/handlers"
	"github.com/m04kA/SalonBookingService/internal/integrations/telegram"
	telegramCommand "github.com/m04kA/SalonBookingService/internal/usecase/telegram_command"
)

// HeaderSecretToken секрет, заданный при регистрации webhook
const HeaderSecretToken = "X-Telegram-Bot-Api-Secret-Token"

const (
	msgInvalidSecret = "некорректный секрет webhook"
	msgInvalidUpdate = "некорректное обновление"
)

type okResponse struct {
	OK bool `json:"ok"`
}

type Handler struct {
	useCase TelegramCommandUseCase
	secret  string
	logger  Logger
}

func NewHandler(useCase TelegramCommandUseCase, secret string, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		secret:  secret,
		logger:  logger,
	}
}

// Handle POST /api/v1/telegram/webhook
// Bot API повторяет доставку, пока не получит 2xx
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.secret != "" {
		got := r.Header.Get(HeaderSecretToken)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
			h.logger.Warn("POST /telegram/webhook - Invalid secret token")
			handlers.RespondUnauthorized(w, msgInvalidSecret)
			return
		}
	}

	// Обновление содержит много полей, поэтому без DisallowUnknownFields
	var update telegram.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.logger.Warn("POST /telegram/webhook - Invalid update: %v", err)
		handlers.RespondBadRequest(w, msgInvalidUpdate)
		return
	}

	// Не сообщения (правки, callback и т.п.) подтверждаем без обработки
	if update.Message == nil || update.Message.Text == "" {
		handlers.RespondJSON(w, http.StatusOK, okResponse{OK: true})
		return
	}

	result, err := h.useCase.Execute(r.Context(), &telegramCommand.Request{
		ChatID: update.Message.Chat.ID,
		Text:   update.Message.Text,
	})
	if err != nil {
		h.logger.Error("POST /telegram/webhook - Failed to handle update_id=%d: %v", update.UpdateID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("POST /telegram/webhook - Update handled: update_id=%d, command=%s, replied=%t",
		update.UpdateID, result.Command, result.Replied)
	handlers.RespondJSON(w, http.StatusOK, okResponse{OK: true})
}
