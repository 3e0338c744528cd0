package create_booking

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SalonBookingService/internal/domain"
	"github.com/m04kA/SalonBookingService/internal/scheduling"
	"github.com/m04kA/SalonBookingService/internal/testutil/memstore"
	"github.com/m04kA/SalonBookingService/pkg/logger"
	"github.com/m04kA/SalonBookingService/pkg/metrics"
	"github.com/m04kA/SalonBookingService/pkg/pgerr"
	"github.com/m04kA/SalonBookingService/pkg/phone"
	"github.com/m04kA/SalonBookingService/pkg/ptr"
	"github.com/m04kA/SalonBookingService/pkg/types"
)

const clientPhone = "067 123 45 67"

type fixture struct {
	store   *memstore.Store
	seed    memstore.Seed
	clock   *memstore.Clock
	metrics *metrics.Metrics
	uc      *UseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memstore.New()
	seed := store.SeedSalon()
	clock := &memstore.Clock{At: memstore.Monday().Add(8 * time.Hour)}
	m := metrics.NewWithRegisterer("test", prometheus.NewRegistry())

	grid, err := scheduling.NewGrid(domain.DefaultSlotIntervalMinutes, domain.DefaultServiceDurationMinutes)
	require.NoError(t, err)
	log := logger.NewNop()

	uc := NewUseCase(
		store.Salons(),
		store.Masters(),
		store.Services(),
		store.Blocks(),
		store.Bookings(),
		store.Outbox(),
		store.Idempotency(),
		store.TxManager(),
		phone.NewNormalizer(domain.DefaultPhoneRegion, domain.DefaultMinPhoneDigits),
		scheduling.NewResolver(domain.DefaultWeekdayNames, domain.ClosedMarker, log),
		grid,
		domain.DefaultBookingHorizonDays,
		m,
		clock,
		log,
	)

	return &fixture{store: store, seed: seed, clock: clock, metrics: m, uc: uc}
}

func (f *fixture) request(masterID int64, start string, services ...*domain.Service) *Request {
	ids := make([]int64, len(services))
	for i, s := range services {
		ids[i] = s.ID
	}
	return &Request{
		SalonID:     f.seed.Salon.ID,
		MasterID:    masterID,
		ServiceIDs:  ids,
		Date:        memstore.Monday(),
		StartTime:   types.TimeString(start),
		ClientName:  "Ірина Коваль",
		ClientPhone: clientPhone,
	}
}

func (f *fixture) block(t *testing.T, masterID int64, start, end string) {
	t.Helper()
	_, err := f.store.Blocks().Create(context.Background(), &domain.ScheduleBlock{
		SalonID:   f.seed.Salon.ID,
		MasterID:  masterID,
		Date:      memstore.Monday(),
		TimeStart: types.TimeString(start),
		TimeEnd:   types.TimeString(end),
		IsBlocked: true,
		Reason:    domain.BlockReasonManual,
	})
	require.NoError(t, err)
}

func (f *fixture) commits(result string) float64 {
	return testutil.ToFloat64(f.metrics.BookingCommits.WithLabelValues("test", result))
}

func TestExecute_CreatesBookingBlockAndEvent(t *testing.T) {
	f := newFixture(t)

	resp, err := f.uc.Execute(context.Background(),
		f.request(f.seed.Anna.ID, "14:00", f.seed.Haircut, f.seed.Coloring))
	require.NoError(t, err)

	assert.False(t, resp.Replayed)
	assert.Equal(t, f.seed.Anna.ID, resp.MasterID)
	assert.Equal(t, types.TimeString("14:00"), resp.StartTime)
	assert.Equal(t, types.TimeString("15:30"), resp.EndTime)
	assert.Equal(t, 90, resp.DurationMinutes)
	assert.Equal(t, 1700.0, resp.Price)
	assert.Equal(t, "+380671234567", resp.ClientPhone)
	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)

	bookings := f.store.AllBookings()
	require.Len(t, bookings, 1)
	assert.Equal(t, []int64{f.seed.Haircut.ID, f.seed.Coloring.ID}, bookings[0].ServiceIDs)
	assert.Equal(t, f.seed.Haircut.ID, bookings[0].ServiceID)

	var booked []domain.ScheduleBlock
	for _, b := range f.store.AllBlocks() {
		if b.Reason == domain.BlockReasonBooked {
			booked = append(booked, b)
		}
	}
	require.Len(t, booked, 1)
	assert.Equal(t, types.TimeString("14:00"), booked[0].TimeStart)
	assert.Equal(t, types.TimeString("15:30"), booked[0].TimeEnd)
	require.NotNil(t, booked[0].BookingID)
	assert.Equal(t, resp.ID, *booked[0].BookingID)

	events := f.store.AllOutbox()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventBookingCreated, events[0].EventType)
	assert.NotEmpty(t, events[0].EventID)

	var payload domain.BookingEventPayload
	require.NoError(t, json.Unmarshal(events[0].Payload, &payload))
	assert.Equal(t, resp.ID, payload.BookingID)
	assert.Equal(t, "2025-06-02", payload.Date)
	assert.Equal(t, "14:00", payload.Time)

	assert.Equal(t, 1.0, f.commits(metrics.ResultCreated))
}

func TestExecute_ClosingBoundary(t *testing.T) {
	f := newFixture(t)

	// 45 + 30 мин округляются до 90, последний допустимый старт 18:30
	_, err := f.uc.Execute(context.Background(),
		f.request(f.seed.Anna.ID, "19:00", f.seed.Haircut, f.seed.Coloring))
	assert.ErrorIs(t, err, ErrOutsideWorkingHours)

	resp, err := f.uc.Execute(context.Background(),
		f.request(f.seed.Anna.ID, "18:30", f.seed.Haircut, f.seed.Coloring))
	require.NoError(t, err)
	assert.Equal(t, types.TimeString("20:00"), resp.EndTime)
}

func TestExecute_DefaultDurationForServiceWithoutDuration(t *testing.T) {
	f := newFixture(t)

	resp, err := f.uc.Execute(context.Background(), f.request(f.seed.Anna.ID, "19:30", f.seed.Styling))
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultServiceDurationMinutes, resp.DurationMinutes)
}

func TestExecute_OverlapIsConflict(t *testing.T) {
	f := newFixture(t)
	f.block(t, f.seed.Anna.ID, "15:00", "16:00")

	// 14:00 + 90 мин пересекается с блоком 15:00
	_, err := f.uc.Execute(context.Background(),
		f.request(f.seed.Anna.ID, "14:00", f.seed.Haircut, f.seed.Coloring))
	assert.ErrorIs(t, err, ErrSlotConflict)
	assert.Empty(t, f.store.AllBookings())
	assert.Equal(t, 1.0, f.commits(metrics.ResultConflict))

	// У Олены в это время свободно
	resp, err := f.uc.Execute(context.Background(),
		f.request(f.seed.Olena.ID, "14:00", f.seed.Haircut, f.seed.Coloring))
	require.NoError(t, err)
	assert.Equal(t, f.seed.Olena.ID, resp.MasterID)
}

func TestExecute_AnyMasterPicksFirstFreeInSortOrder(t *testing.T) {
	f := newFixture(t)

	resp, err := f.uc.Execute(context.Background(), f.request(AnyMaster, "10:00", f.seed.Haircut))
	require.NoError(t, err)
	assert.Equal(t, f.seed.Anna.ID, resp.MasterID)

	resp, err = f.uc.Execute(context.Background(), f.request(AnyMaster, "10:00", f.seed.Haircut))
	require.NoError(t, err)
	assert.Equal(t, f.seed.Olena.ID, resp.MasterID)

	_, err = f.uc.Execute(context.Background(), f.request(AnyMaster, "10:00", f.seed.Haircut))
	assert.ErrorIs(t, err, ErrSlotConflict)
}

func TestExecute_IdempotentReplay(t *testing.T) {
	f := newFixture(t)
	req := f.request(f.seed.Anna.ID, "11:00", f.seed.Haircut)
	req.IdempotencyKey = "a7f1c2"

	first, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	second, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, second.Replayed)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, f.store.AllBookings(), 1)
	assert.Len(t, f.store.AllOutbox(), 1)
	assert.Equal(t, 1.0, f.commits(metrics.ResultReplayed))
}

func TestExecute_ConcurrentSameSlotOneWins(t *testing.T) {
	f := newFixture(t)

	const clients = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)

	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.Execute(context.Background(),
				f.request(f.seed.Anna.ID, "12:00", f.seed.Haircut, f.seed.Coloring))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrSlotConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, clients-1, conflicts)
	assert.Len(t, f.store.AllBookings(), 1)
}

func TestExecute_ConcurrentSameKeyReplays(t *testing.T) {
	f := newFixture(t)

	var wg sync.WaitGroup
	ids := make([]int64, 2)
	errs := make([]error, 2)

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := f.request(f.seed.Anna.ID, "16:00", f.seed.Haircut)
			req.IdempotencyKey = "retry-1"
			resp, err := f.uc.Execute(context.Background(), req)
			errs[i] = err
			if resp != nil {
				ids[i] = resp.ID
			}
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, ids[0], ids[1])
	assert.Len(t, f.store.AllBookings(), 1)
}

func TestExecute_RollbackOnFailure(t *testing.T) {
	f := newFixture(t)
	f.store.FailOnce("outbox.Insert", errors.New("disk full"))

	_, err := f.uc.Execute(context.Background(), f.request(f.seed.Anna.ID, "10:00", f.seed.Haircut))
	assert.ErrorIs(t, err, ErrInternal)

	assert.Empty(t, f.store.AllBookings())
	assert.Empty(t, f.store.AllBlocks())
	assert.Empty(t, f.store.AllOutbox())
	assert.Equal(t, 1.0, f.commits(metrics.ResultError))
}

func TestExecute_SerializationFailureIsConflict(t *testing.T) {
	f := newFixture(t)
	f.store.FailOnce("tx.Commit", pgerr.ErrSerializationFailure)

	_, err := f.uc.Execute(context.Background(), f.request(f.seed.Anna.ID, "10:00", f.seed.Haircut))
	assert.ErrorIs(t, err, ErrSlotConflict)
	assert.Empty(t, f.store.AllBookings())
}

func TestExecute_ExclusionViolationIsConflict(t *testing.T) {
	f := newFixture(t)
	f.store.FailOnce("blocks.Create", pgerr.ErrExclusionViolation)

	_, err := f.uc.Execute(context.Background(), f.request(f.seed.Anna.ID, "10:00", f.seed.Haircut))
	assert.ErrorIs(t, err, ErrSlotConflict)
	assert.Empty(t, f.store.AllBookings())
}

func TestExecute_Rejections(t *testing.T) {
	f := newFixture(t)
	foreign := f.store.AddMaster(domain.Master{SalonID: 999, Name: "Чужий", IsActive: true})

	tests := []struct {
		name    string
		mutate  func(r *Request)
		wantErr error
	}{
		{name: "no services", mutate: func(r *Request) { r.ServiceIDs = nil }, wantErr: ErrInvalidInput},
		{name: "bad start", mutate: func(r *Request) { r.StartTime = "25:00" }, wantErr: ErrInvalidInput},
		{name: "empty name", mutate: func(r *Request) { r.ClientName = "  " }, wantErr: ErrInvalidContact},
		{name: "short phone", mutate: func(r *Request) { r.ClientPhone = "12345" }, wantErr: ErrInvalidContact},
		{name: "bad email", mutate: func(r *Request) { r.ClientEmail = ptr.Ptr("not-an-email") }, wantErr: ErrInvalidContact},
		{name: "unknown salon", mutate: func(r *Request) { r.SalonID = 4242 }, wantErr: ErrSalonNotFound},
		{name: "foreign master", mutate: func(r *Request) { r.MasterID = foreign.ID }, wantErr: ErrMasterNotFound},
		{name: "unknown service", mutate: func(r *Request) { r.ServiceIDs = []int64{777} }, wantErr: ErrServiceNotFound},
		{name: "date in past", mutate: func(r *Request) { r.Date = r.Date.AddDate(0, 0, -1) }, wantErr: ErrInvalidDate},
		{name: "beyond horizon", mutate: func(r *Request) { r.Date = r.Date.AddDate(0, 0, 40) }, wantErr: ErrDateTooFarInFuture},
		{name: "sunday closed", mutate: func(r *Request) { r.Date = r.Date.AddDate(0, 0, 6) }, wantErr: ErrSalonClosed},
		{name: "not on grid", mutate: func(r *Request) { r.StartTime = "10:15" }, wantErr: ErrInvalidTimeSlot},
		{name: "before opening", mutate: func(r *Request) { r.StartTime = "09:30" }, wantErr: ErrInvalidTimeSlot},
		{name: "at closing", mutate: func(r *Request) { r.StartTime = "20:00" }, wantErr: ErrInvalidTimeSlot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := f.request(f.seed.Anna.ID, "10:00", f.seed.Haircut)
			tt.mutate(req)

			_, err := f.uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Empty(t, f.store.AllBookings())
}

func TestExecute_TooLateToday(t *testing.T) {
	f := newFixture(t)
	f.clock.At = memstore.Monday().Add(13*time.Hour + 5*time.Minute)

	_, err := f.uc.Execute(context.Background(), f.request(f.seed.Anna.ID, "13:00", f.seed.Haircut))
	assert.ErrorIs(t, err, ErrTooLateToBook)

	_, err = f.uc.Execute(context.Background(), f.request(f.seed.Anna.ID, "13:30", f.seed.Haircut))
	assert.NoError(t, err)
}
