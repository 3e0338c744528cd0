package get_booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SalonBookingService/internal/api/middleware"
	"github.com/m04kA/SalonBookingService/internal/service/bookings"
	"github.com/m04kA/SalonBookingService/internal/service/bookings/models"
	"github.com/m04kA/SalonBookingService/pkg/logger"
)

type fakeService struct {
	userID int64
	card   *models.BookingCardResponse
	err    error
}

func (f *fakeService) GetCard(_ context.Context, _ int64, userID int64) (*models.BookingCardResponse, error) {
	f.userID = userID
	return f.card, f.err
}

func serve(h *Handler, path string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.Use(middleware.Auth)
	r.HandleFunc("/api/v1/bookings/{bookingId}", h.Handle).Methods(http.MethodGet)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("X-User-ID", "7")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandle_ReturnsCard(t *testing.T) {
	svc := &fakeService{card: &models.BookingCardResponse{
		BookingResponse: models.BookingResponse{ID: 10, SalonID: 1, StartTime: "14:00", Status: "confirmed"},
		SalonName:       "Локон",
		MasterName:      "Анна",
		ServiceNames:    []string{"Стрижка"},
	}}
	h := NewHandler(svc, logger.NewNop())

	rec := serve(h, "/api/v1/bookings/10")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), svc.userID)

	var card models.BookingCardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &card))
	assert.Equal(t, int64(10), card.ID)
	assert.Equal(t, "Анна", card.MasterName)
	assert.Equal(t, []string{"Стрижка"}, card.ServiceNames)
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{err: bookings.ErrBookingNotFound, status: http.StatusNotFound},
		{err: bookings.ErrAccessDenied, status: http.StatusForbidden},
		{err: fmt.Errorf("%w: db down", bookings.ErrInternal), status: http.StatusInternalServerError},
		{err: errors.New("unexpected"), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			h := NewHandler(&fakeService{err: tt.err}, logger.NewNop())
			assert.Equal(t, tt.status, serve(h, "/api/v1/bookings/10").Code)
		})
	}
}

func TestHandle_InvalidID(t *testing.T) {
	h := NewHandler(&fakeService{}, logger.NewNop())

	assert.Equal(t, http.StatusBadRequest, serve(h, "/api/v1/bookings/abc").Code)
	assert.Equal(t, http.StatusBadRequest, serve(h, "/api/v1/bookings/0").Code)
}
