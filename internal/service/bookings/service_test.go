package bookings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SalonBookingService/internal/domain"
	"github.com/m04kA/SalonBookingService/internal/scheduling"
	"github.com/m04kA/SalonBookingService/internal/service/bookings/models"
	"github.com/m04kA/SalonBookingService/internal/testutil/memstore"
	getAvailableSlots "github.com/m04kA/SalonBookingService/internal/usecase/get_available_slots"
	"github.com/m04kA/SalonBookingService/pkg/logger"
	"github.com/m04kA/SalonBookingService/pkg/ptr"
	"github.com/m04kA/SalonBookingService/pkg/types"
)

const strangerID = 1

type fixture struct {
	store *memstore.Store
	seed  memstore.Seed
	svc   *Service
	owner int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	seed := store.SeedSalon()

	svc := NewService(
		store.Bookings(),
		store.Blocks(),
		store.Salons(),
		store.Outbox(),
		store.TxManager(),
		logger.NewNop(),
	)

	return &fixture{store: store, seed: seed, svc: svc, owner: seed.Salon.OwnerID}
}

// book создает бронирование с блоком, как это делает create_booking
func (f *fixture) book(t *testing.T, start, end string, status domain.BookingStatus) *domain.Booking {
	t.Helper()
	ctx := context.Background()

	booking, err := f.store.Bookings().Create(ctx, &domain.Booking{
		SalonID:         f.seed.Salon.ID,
		MasterID:        f.seed.Anna.ID,
		ServiceID:       f.seed.Haircut.ID,
		ServiceIDs:      []int64{f.seed.Haircut.ID},
		BookingDate:     memstore.Monday(),
		StartTime:       types.TimeString(start),
		DurationMinutes: types.TimeString(end).Minutes() - types.TimeString(start).Minutes(),
		ClientName:      "Ірина Коваль",
		ClientPhone:     "+380671234567",
		Status:          status,
	})
	require.NoError(t, err)

	_, err = f.store.Blocks().Create(ctx, &domain.ScheduleBlock{
		SalonID:   f.seed.Salon.ID,
		MasterID:  f.seed.Anna.ID,
		Date:      memstore.Monday(),
		TimeStart: types.TimeString(start),
		TimeEnd:   types.TimeString(end),
		IsBlocked: true,
		Reason:    domain.BlockReasonBooked,
		BookingID: ptr.Ptr(booking.ID),
	})
	require.NoError(t, err)

	return booking
}

// annaMonday доступность Анны на понедельник по времени слота
func (f *fixture) annaMonday(t *testing.T) map[types.TimeString]bool {
	t.Helper()

	grid, err := scheduling.NewGrid(domain.DefaultSlotIntervalMinutes, domain.DefaultServiceDurationMinutes)
	require.NoError(t, err)
	log := logger.NewNop()
	slots := getAvailableSlots.NewUseCase(
		f.store.Salons(), f.store.Masters(), f.store.Blocks(), f.store.Services(),
		scheduling.NewResolver(domain.DefaultWeekdayNames, domain.ClosedMarker, log), grid,
		domain.DefaultBookingHorizonDays, &memstore.Clock{At: memstore.Monday().Add(8 * time.Hour)}, log,
	)

	resp, err := slots.Execute(context.Background(), &getAvailableSlots.Request{
		SalonID:  f.seed.Salon.ID,
		MasterID: f.seed.Anna.ID,
		Date:     memstore.Monday(),
	})
	require.NoError(t, err)

	available := make(map[types.TimeString]bool, len(resp.Slots))
	for _, slot := range resp.Slots {
		available[slot.Time] = slot.Available
	}
	return available
}

func TestCancel_ReleasesBlocksAndEmitsEvent(t *testing.T) {
	f := newFixture(t)
	booking := f.book(t, "14:00", "15:30", domain.StatusConfirmed)

	before := f.annaMonday(t)
	for _, at := range []types.TimeString{"14:00", "14:30", "15:00"} {
		assert.False(t, before[at], "slot %s before cancel", at)
	}

	err := f.svc.Cancel(context.Background(), booking.ID, &models.CancelBookingRequest{UserID: f.owner})
	require.NoError(t, err)

	after := f.annaMonday(t)
	for _, at := range []types.TimeString{"14:00", "14:30", "15:00"} {
		assert.True(t, after[at], "slot %s after cancel", at)
	}

	stored, err := f.store.Bookings().GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, stored.Status)
	assert.NotNil(t, stored.CancelledAt)
	assert.Empty(t, f.store.AllBlocks())

	events := f.store.AllOutbox()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventBookingCancelled, events[0].EventType)

	// Освобожденный интервал снова можно занять
	_, err = f.store.Blocks().Create(context.Background(), &domain.ScheduleBlock{
		SalonID: f.seed.Salon.ID, MasterID: f.seed.Anna.ID, Date: memstore.Monday(),
		TimeStart: "14:00", TimeEnd: "15:00", IsBlocked: true, Reason: domain.BlockReasonManual,
	})
	assert.NoError(t, err)
}

func TestCancel_AlreadyCancelledIsNoop(t *testing.T) {
	f := newFixture(t)
	booking := f.book(t, "10:00", "11:00", domain.StatusConfirmed)
	req := &models.CancelBookingRequest{UserID: f.owner}

	require.NoError(t, f.svc.Cancel(context.Background(), booking.ID, req))
	require.NoError(t, f.svc.Cancel(context.Background(), booking.ID, req))

	assert.Len(t, f.store.AllOutbox(), 1)
}

func TestCancel_CompletedRejected(t *testing.T) {
	f := newFixture(t)
	booking := f.book(t, "10:00", "11:00", domain.StatusCompleted)

	err := f.svc.Cancel(context.Background(), booking.ID, &models.CancelBookingRequest{UserID: f.owner})
	assert.ErrorIs(t, err, ErrCannotCancel)
	assert.Len(t, f.store.AllBlocks(), 1)
}

func TestCancel_Errors(t *testing.T) {
	f := newFixture(t)
	booking := f.book(t, "10:00", "11:00", domain.StatusConfirmed)

	err := f.svc.Cancel(context.Background(), booking.ID, &models.CancelBookingRequest{UserID: strangerID})
	assert.ErrorIs(t, err, ErrAccessDenied)

	err = f.svc.Cancel(context.Background(), 9999, &models.CancelBookingRequest{UserID: f.owner})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestCancel_RollbackOnOutboxFailure(t *testing.T) {
	f := newFixture(t)
	booking := f.book(t, "10:00", "11:00", domain.StatusConfirmed)
	f.store.FailOnce("outbox.Insert", errors.New("disk full"))

	err := f.svc.Cancel(context.Background(), booking.ID, &models.CancelBookingRequest{UserID: f.owner})
	assert.ErrorIs(t, err, ErrInternal)

	stored, err := f.store.Bookings().GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, stored.Status)
	assert.Len(t, f.store.AllBlocks(), 1)
}

func TestUpdateStatus(t *testing.T) {
	tests := []struct {
		name    string
		from    domain.BookingStatus
		to      string
		wantErr error
	}{
		{name: "pending to confirmed", from: domain.StatusPending, to: "confirmed"},
		{name: "confirmed to completed", from: domain.StatusConfirmed, to: "completed"},
		{name: "same status", from: domain.StatusConfirmed, to: "confirmed"},
		{name: "completed to confirmed", from: domain.StatusCompleted, to: "confirmed", wantErr: ErrInvalidTransition},
		{name: "cancelled to completed", from: domain.StatusCancelled, to: "completed", wantErr: ErrInvalidTransition},
		{name: "unknown status", from: domain.StatusPending, to: "no_show", wantErr: ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			booking := f.book(t, "10:00", "11:00", tt.from)

			err := f.svc.UpdateStatus(context.Background(), booking.ID,
				&models.UpdateStatusRequest{UserID: f.owner, Status: tt.to})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			stored, err := f.store.Bookings().GetByID(context.Background(), booking.ID)
			require.NoError(t, err)
			assert.Equal(t, domain.BookingStatus(tt.to), stored.Status)
		})
	}
}

func TestUpdateStatus_CancelledGoesThroughCancel(t *testing.T) {
	f := newFixture(t)
	booking := f.book(t, "10:00", "11:00", domain.StatusConfirmed)

	err := f.svc.UpdateStatus(context.Background(), booking.ID,
		&models.UpdateStatusRequest{UserID: f.owner, Status: "cancelled"})
	require.NoError(t, err)

	assert.Empty(t, f.store.AllBlocks())
}

func TestGetSalonBookings(t *testing.T) {
	f := newFixture(t)
	f.book(t, "10:00", "11:00", domain.StatusConfirmed)
	f.book(t, "12:00", "13:00", domain.StatusCancelled)

	resp, err := f.svc.GetSalonBookings(context.Background(), &models.GetSalonBookingsRequest{
		UserID:  f.owner,
		SalonID: f.seed.Salon.ID,
		Date:    ptr.Ptr(memstore.Monday()),
	})
	require.NoError(t, err)
	require.Len(t, resp.Bookings, 1)
	assert.Equal(t, "10:00", resp.Bookings[0].StartTime)
	assert.Equal(t, "11:00", resp.Bookings[0].EndTime)

	resp, err = f.svc.GetSalonBookings(context.Background(), &models.GetSalonBookingsRequest{
		UserID:           f.owner,
		SalonID:          f.seed.Salon.ID,
		IncludeCancelled: true,
	})
	require.NoError(t, err)
	assert.Len(t, resp.Bookings, 2)

	_, err = f.svc.GetSalonBookings(context.Background(), &models.GetSalonBookingsRequest{
		UserID:  f.owner,
		SalonID: f.seed.Salon.ID,
		Status:  ptr.Ptr("archived"),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.GetSalonBookings(context.Background(), &models.GetSalonBookingsRequest{
		UserID:  strangerID,
		SalonID: f.seed.Salon.ID,
	})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestGetCard(t *testing.T) {
	f := newFixture(t)
	booking := f.book(t, "10:00", "11:00", domain.StatusConfirmed)

	card, err := f.svc.GetCard(context.Background(), booking.ID, f.owner)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, card.ID)
	assert.Equal(t, "2025-06-02", card.BookingDate)
	assert.Equal(t, f.seed.Salon.Name, card.SalonName)
	assert.Equal(t, f.seed.Anna.Name, card.MasterName)
	assert.Equal(t, []string{f.seed.Haircut.Name}, card.ServiceNames)

	_, err = f.svc.GetCard(context.Background(), booking.ID, strangerID)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = f.svc.GetCard(context.Background(), 9999, f.owner)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}
