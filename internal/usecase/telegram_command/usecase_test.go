package telegram_command

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SalonBookingService/internal/domain"
	"github.com/m04kA/SalonBookingService/internal/integrations/telegram"
	"github.com/m04kA/SalonBookingService/internal/testutil/memstore"
	"github.com/m04kA/SalonBookingService/pkg/logger"
	"github.com/m04kA/SalonBookingService/pkg/ptr"
)

type fakeMessenger struct {
	chatID string
	text   string
	err    error
}

func (m *fakeMessenger) SendMessage(_ context.Context, chatID string, text string) error {
	m.chatID, m.text = chatID, text
	return m.err
}

func newUseCase(t *testing.T, messenger *fakeMessenger) (*UseCase, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	return NewUseCase(store.Subscriptions(), messenger, logger.NewNop()), store
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{text: "/start", want: CommandStart},
		{text: "/start@salon_bot ref", want: CommandStart},
		{text: " /id ", want: CommandID},
		{text: "/status", want: CommandStatus},
		{text: "123456", want: CommandCode},
		{text: "12345", want: CommandUnknown},
		{text: "/help", want: CommandUnknown},
		{text: "привіт", want: CommandUnknown},
		{text: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, parseCommand(tt.text))
		})
	}
}

func TestExecute_ID(t *testing.T) {
	messenger := &fakeMessenger{}
	uc, _ := newUseCase(t, messenger)

	resp, err := uc.Execute(context.Background(), &Request{ChatID: 555001, Text: "/id"})
	require.NoError(t, err)

	assert.True(t, resp.Replied)
	assert.Equal(t, "555001", messenger.chatID)
	assert.Contains(t, messenger.text, "<code>555001</code>")
}

func TestExecute_StatusConnected(t *testing.T) {
	messenger := &fakeMessenger{}
	uc, store := newUseCase(t, messenger)
	store.AddSubscription(domain.OwnerSubscription{
		OwnerID:              700,
		Email:                "owner@salon.ua",
		TelegramChatID:       ptr.Ptr("555001"),
		NotificationsEnabled: true,
	})

	_, err := uc.Execute(context.Background(), &Request{ChatID: 555001, Text: "/status"})
	require.NoError(t, err)

	assert.Contains(t, messenger.text, "Підключено")
	assert.Contains(t, messenger.text, "owner@salon.ua")
	assert.Contains(t, messenger.text, "Сповіщення активовано")
}

func TestExecute_StatusNotConnected(t *testing.T) {
	messenger := &fakeMessenger{}
	uc, _ := newUseCase(t, messenger)

	_, err := uc.Execute(context.Background(), &Request{ChatID: 42, Text: "/status"})
	require.NoError(t, err)
	assert.Contains(t, messenger.text, "Не підключено")
}

func TestExecute_EmptyTextIsIgnored(t *testing.T) {
	messenger := &fakeMessenger{}
	uc, _ := newUseCase(t, messenger)

	resp, err := uc.Execute(context.Background(), &Request{ChatID: 42})
	require.NoError(t, err)
	assert.False(t, resp.Replied)
	assert.Empty(t, messenger.chatID)
}

func TestExecute_DeliveryErrors(t *testing.T) {
	messenger := &fakeMessenger{err: telegram.ErrChatNotFound}
	uc, _ := newUseCase(t, messenger)

	resp, err := uc.Execute(context.Background(), &Request{ChatID: 42, Text: "/start"})
	require.NoError(t, err, "blocked chat is not an error")
	assert.False(t, resp.Replied)

	messenger.err = errors.New("connection reset")
	_, err = uc.Execute(context.Background(), &Request{ChatID: 42, Text: "/start"})
	assert.ErrorIs(t, err, ErrDeliveryFailed)
}
