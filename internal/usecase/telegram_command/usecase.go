package telegram_command

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	subscriptionRepo "github.com/m04kA/SalonBookingService/internal/infra/storage/subscription"
	"github.com/m04kA/SalonBookingService/internal/integrations/telegram"
)

// UseCase отвечает на команды бота уведомлений
type UseCase struct {
	subscriptionRepo SubscriptionRepository
	messenger        Messenger
	logger           Logger
}

func NewUseCase(subscriptionRepo SubscriptionRepository, messenger Messenger, logger Logger) *UseCase {
	return &UseCase{
		subscriptionRepo: subscriptionRepo,
		messenger:        messenger,
		logger:           logger,
	}
}

// Execute распознает команду и отправляет ответ в тот же чат
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	command := parseCommand(req.Text)
	if command == "" {
		return &Response{}, nil
	}

	chatID := strconv.FormatInt(req.ChatID, 10)

	var reply string
	switch command {
	case CommandStart:
		reply = startMessage(req.ChatID)
	case CommandID:
		reply = idMessage(req.ChatID)
	case CommandStatus:
		sub, err := uc.subscriptionRepo.GetByChatID(ctx, chatID)
		switch {
		case err == nil:
			reply = connectedMessage(sub)
		case errors.Is(err, subscriptionRepo.ErrSubscriptionNotFound):
			reply = notConnectedMessage(req.ChatID)
		default:
			uc.logger.Error("TelegramCommand: failed to get subscription for chat=%s: %v", chatID, err)
			return nil, fmt.Errorf("%w: failed to get subscription: %v", ErrInternal, err)
		}
	case CommandCode:
		reply = codeMessage
	default:
		reply = unknownMessage
	}

	if err := uc.messenger.SendMessage(ctx, chatID, reply); err != nil {
		if errors.Is(err, telegram.ErrChatNotFound) {
			uc.logger.Warn("TelegramCommand: chat=%s is unavailable: %v", chatID, err)
			return &Response{Command: command}, nil
		}
		uc.logger.Error("TelegramCommand: failed to reply to chat=%s: %v", chatID, err)
		return nil, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	uc.logger.Info("TelegramCommand: replied to %s in chat=%s", command, chatID)
	return &Response{Command: command, Replied: true}, nil
}

// parseCommand "/start@salon_bot payload" -> "/start"
func parseCommand(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	first := fields[0]

	if strings.HasPrefix(first, "/") {
		if at := strings.IndexByte(first, '@'); at > 0 {
			first = first[:at]
		}
		switch first {
		case CommandStart, CommandID, CommandStatus:
			return first
		}
		return CommandUnknown
	}

	if len(fields) == 1 && isCode(first) {
		return CommandCode
	}
	return CommandUnknown
}

// isCode шестизначный код подтверждения из панели управления
func isCode(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
