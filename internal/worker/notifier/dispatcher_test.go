package notifier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SalonBookingService/internal/domain"
	"github.com/m04kA/SalonBookingService/internal/infra/broker"
	notifyBooking "github.com/m04kA/SalonBookingService/internal/usecase/notify_booking"
	"github.com/m04kA/SalonBookingService/pkg/logger"
)

type stubUseCase struct {
	requests []*notifyBooking.Request
	err      error
}

func (s *stubUseCase) Execute(_ context.Context, req *notifyBooking.Request) (*notifyBooking.Response, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	return &notifyBooking.Response{Sent: true}, nil
}

func message(payload string) broker.Message {
	return broker.Message{EventID: "e1", EventType: domain.EventBookingCreated, Payload: []byte(payload)}
}

func TestDispatcher_Handle(t *testing.T) {
	uc := &stubUseCase{}
	d := NewDispatcher(uc, logger.NewNop())

	err := d.Handle(context.Background(), message(`{"bookingId":17,"salonId":1,"masterId":2,"date":"2025-06-02","time":"14:00"}`))
	require.NoError(t, err)
	require.Len(t, uc.requests, 1)
	assert.Equal(t, int64(17), uc.requests[0].BookingID)
	assert.Equal(t, domain.EventBookingCreated, uc.requests[0].EventType)
}

func TestDispatcher_Handle_Errors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		ucErr   error
		wantErr bool
	}{
		{name: "malformed json is dropped", payload: `{`},
		{name: "missing booking id is dropped", payload: `{}`},
		{name: "unknown booking is dropped", payload: `{"bookingId":1}`, ucErr: notifyBooking.ErrBookingNotFound},
		{name: "delivery failure is retried", payload: `{"bookingId":1}`, ucErr: notifyBooking.ErrDeliveryFailed, wantErr: true},
		{name: "internal failure is retried", payload: `{"bookingId":1}`, ucErr: errors.Join(notifyBooking.ErrInternal, errors.New("db")), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDispatcher(&stubUseCase{err: tt.ucErr}, logger.NewNop())
			err := d.Handle(context.Background(), message(tt.payload))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
