package telegram_webhook

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	telegramCommand "github.com/m04kA/SalonBookingService/internal/usecase/telegram_command"
	"github.com/m04kA/SalonBookingService/pkg/logger"
)

type fakeUseCase struct {
	got *telegramCommand.Request
	err error
}

func (f *fakeUseCase) Execute(_ context.Context, req *telegramCommand.Request) (*telegramCommand.Response, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &telegramCommand.Response{Command: telegramCommand.CommandID, Replied: true}, nil
}

const update = `{"update_id":1001,"message":{"message_id":7,"date":1717315200,
	"chat":{"id":555001,"type":"private"},"from":{"id":555001,"first_name":"Olena","is_bot":false},"text":"/id"}}`

func serve(h *Handler, body, secret string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/telegram/webhook", strings.NewReader(body))
	if secret != "" {
		req.Header.Set(HeaderSecretToken, secret)
	}
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandle_DispatchesMessage(t *testing.T) {
	uc := &fakeUseCase{}
	h := NewHandler(uc, "s3cret", logger.NewNop())

	rec := serve(h, update, "s3cret")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	require.NotNil(t, uc.got)
	assert.Equal(t, int64(555001), uc.got.ChatID)
	assert.Equal(t, "/id", uc.got.Text)
}

func TestHandle_RejectsWrongSecret(t *testing.T) {
	uc := &fakeUseCase{}
	h := NewHandler(uc, "s3cret", logger.NewNop())

	rec := serve(h, update, "guess")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, uc.got)
}

func TestHandle_AcknowledgesNonMessageUpdates(t *testing.T) {
	uc := &fakeUseCase{}
	h := NewHandler(uc, "", logger.NewNop())

	rec := serve(h, `{"update_id":1002,"edited_message":{"text":"x"}}`, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, uc.got)
}

func TestHandle_Errors(t *testing.T) {
	h := NewHandler(&fakeUseCase{}, "", logger.NewNop())
	assert.Equal(t, http.StatusBadRequest, serve(h, `{not json`, "").Code)

	h = NewHandler(&fakeUseCase{err: errors.New("boom")}, "", logger.NewNop())
	assert.Equal(t, http.StatusInternalServerError, serve(h, update, "").Code)
}
