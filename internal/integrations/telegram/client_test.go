package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SalonBookingService/pkg/logger"
)

func TestClient_SendMessage(t *testing.T) {
	var got sendMessageRequest
	var path string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "123:abc", time.Second, logger.NewNop())
	err := client.SendMessage(context.Background(), "42", "<b>Нове бронювання!</b>")
	require.NoError(t, err)

	assert.Equal(t, "/bot123:abc/sendMessage", path)
	assert.Equal(t, "42", got.ChatID)
	assert.Equal(t, ParseModeHTML, got.ParseMode)
	assert.Equal(t, "<b>Нове бронювання!</b>", got.Text)
}

func TestClient_SendMessage_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "bot blocked", status: http.StatusForbidden, body: `{"ok":false,"error_code":403,"description":"Forbidden: bot was blocked by the user"}`, wantErr: ErrChatNotFound},
		{name: "bad chat", status: http.StatusBadRequest, body: `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`, wantErr: ErrChatNotFound},
		{name: "server error", status: http.StatusBadGateway, body: `{"ok":false,"description":"Bad Gateway"}`, wantErr: ErrInvalidResponse},
		{name: "not json", status: http.StatusOK, body: `<html>`, wantErr: ErrInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient(srv.URL, "t", time.Second, logger.NewNop())
			err := client.SendMessage(context.Background(), "1", "text")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClient_SendMessage_Unreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "t", 100*time.Millisecond, logger.NewNop())
	err := client.SendMessage(context.Background(), "1", "text")
	assert.ErrorIs(t, err, ErrInternal)
}
