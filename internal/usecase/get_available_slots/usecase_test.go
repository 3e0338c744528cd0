package get_available_slots

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SalonBookingService/internal/domain"
	"github.com/m04kA/SalonBookingService/internal/scheduling"
	"github.com/m04kA/SalonBookingService/internal/testutil/memstore"
	"github.com/m04kA/SalonBookingService/pkg/logger"
	"github.com/m04kA/SalonBookingService/pkg/ptr"
	"github.com/m04kA/SalonBookingService/pkg/types"
)

type fixture struct {
	store *memstore.Store
	seed  memstore.Seed
	clock *memstore.Clock
	uc    *UseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memstore.New()
	seed := store.SeedSalon()
	clock := &memstore.Clock{At: memstore.Monday().Add(8 * time.Hour)}

	grid, err := scheduling.NewGrid(domain.DefaultSlotIntervalMinutes, domain.DefaultServiceDurationMinutes)
	require.NoError(t, err)
	log := logger.NewNop()

	uc := NewUseCase(
		store.Salons(),
		store.Masters(),
		store.Blocks(),
		store.Services(),
		scheduling.NewResolver(domain.DefaultWeekdayNames, domain.ClosedMarker, log),
		grid,
		domain.DefaultBookingHorizonDays,
		clock,
		log,
	)

	return &fixture{store: store, seed: seed, clock: clock, uc: uc}
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

func availability(slots []domain.Slot) map[types.TimeString]bool {
	result := make(map[types.TimeString]bool, len(slots))
	for _, s := range slots {
		result[s.Time] = s.Available
	}
	return result
}

func TestExecute_SingleMaster(t *testing.T) {
	f := newFixture(t)
	f.block(t, f.seed.Anna.ID, "14:00", "15:30")

	resp, err := f.uc.Execute(context.Background(), &Request{
		SalonID:  f.seed.Salon.ID,
		MasterID: f.seed.Anna.ID,
		Date:     memstore.Monday(),
	})
	require.NoError(t, err)

	assert.True(t, resp.IsOpen)
	assert.Equal(t, "Понеділок", resp.DayName)
	assert.Equal(t, types.TimeString("10:00"), resp.OpenTime)
	assert.Equal(t, types.TimeString("20:00"), resp.CloseTime)
	require.Len(t, resp.Slots, 20)
	assert.Equal(t, types.TimeString("19:30"), resp.Slots[19].Time)

	avail := availability(resp.Slots)
	assert.True(t, avail["13:30"])
	assert.False(t, avail["14:00"])
	assert.False(t, avail["14:30"])
	assert.False(t, avail["15:00"])
	assert.True(t, avail["15:30"])
	assert.Nil(t, resp.Plan)
}

func TestExecute_AnyMasterMergesAvailability(t *testing.T) {
	f := newFixture(t)
	f.block(t, f.seed.Anna.ID, "10:00", "11:00")
	f.block(t, f.seed.Olena.ID, "10:00", "10:30")

	resp, err := f.uc.Execute(context.Background(), &Request{
		SalonID:  f.seed.Salon.ID,
		MasterID: AnyMaster,
		Date:     memstore.Monday(),
	})
	require.NoError(t, err)

	avail := availability(resp.Slots)
	assert.False(t, avail["10:00"], "both masters are busy")
	assert.True(t, avail["10:30"], "Olena is free")
	assert.True(t, avail["11:00"])
}

func TestExecute_AnyMasterStartsNeedOneMasterForWholeRun(t *testing.T) {
	f := newFixture(t)
	f.block(t, f.seed.Anna.ID, "14:30", "15:00")
	f.block(t, f.seed.Olena.ID, "14:00", "14:30")

	resp, err := f.uc.Execute(context.Background(), &Request{
		SalonID:    f.seed.Salon.ID,
		MasterID:   AnyMaster,
		Date:       memstore.Monday(),
		ServiceIDs: []int64{f.seed.Haircut.ID, f.seed.Coloring.ID},
	})
	require.NoError(t, err)

	// в объединении слоты с 14:00 свободны подряд
	avail := availability(resp.Slots)
	assert.True(t, avail["14:00"])
	assert.True(t, avail["14:30"])
	assert.True(t, avail["15:00"])

	require.Len(t, resp.PerMaster, 2)
	assert.Equal(t, f.seed.Anna.ID, resp.PerMaster[0].MasterID)

	assert.Contains(t, resp.Starts, types.TimeString("13:00"))
	assert.Contains(t, resp.Starts, types.TimeString("14:30"))
	assert.Contains(t, resp.Starts, types.TimeString("18:30"))
	assert.NotContains(t, resp.Starts, types.TimeString("13:30"))
	assert.NotContains(t, resp.Starts, types.TimeString("14:00"))
	assert.NotContains(t, resp.Starts, types.TimeString("19:00"))
}

func TestExecute_ClosedDayReturnsNextOpening(t *testing.T) {
	f := newFixture(t)
	sunday := memstore.Monday().AddDate(0, 0, 6)

	resp, err := f.uc.Execute(context.Background(), &Request{
		SalonID:  f.seed.Salon.ID,
		MasterID: f.seed.Anna.ID,
		Date:     sunday,
	})
	require.NoError(t, err)

	assert.False(t, resp.IsOpen)
	assert.Empty(t, resp.Slots)
	require.NotNil(t, resp.NextOpen)
	assert.Equal(t, "Понеділок", resp.NextOpen.Day)
	assert.Equal(t, types.TimeString("10:00"), resp.NextOpen.Time)
}

func TestExecute_TodayMarksPastSlots(t *testing.T) {
	f := newFixture(t)
	f.clock.At = memstore.Monday().Add(12*time.Hour + 10*time.Minute)

	resp, err := f.uc.Execute(context.Background(), &Request{
		SalonID:  f.seed.Salon.ID,
		MasterID: f.seed.Olena.ID,
		Date:     memstore.Monday(),
	})
	require.NoError(t, err)

	avail := availability(resp.Slots)
	assert.False(t, avail["12:00"])
	assert.True(t, avail["12:30"])
}

func TestExecute_WithServicesReturnsPlan(t *testing.T) {
	f := newFixture(t)

	resp, err := f.uc.Execute(context.Background(), &Request{
		SalonID:    f.seed.Salon.ID,
		MasterID:   f.seed.Anna.ID,
		Date:       memstore.Monday(),
		ServiceIDs: []int64{f.seed.Haircut.ID, f.seed.Coloring.ID},
	})
	require.NoError(t, err)

	require.NotNil(t, resp.Plan)
	assert.Equal(t, 75, resp.Plan.TotalMinutes)
	assert.Equal(t, 3, resp.Plan.RequiredSlots)
	assert.Equal(t, 90, resp.Plan.RoundedMinutes)
}

func TestExecute_NoActiveMastersAllUnavailable(t *testing.T) {
	f := newFixture(t)
	empty := f.store.AddSalon(domain.Salon{
		Slug: "empty", Name: "Порожній", WorkingHours: memstore.WeekdaySchedule(), IsActive: true,
	})

	resp, err := f.uc.Execute(context.Background(), &Request{
		SalonID:  empty.ID,
		MasterID: AnyMaster,
		Date:     memstore.Monday(),
	})
	require.NoError(t, err)

	require.NotEmpty(t, resp.Slots)
	for _, s := range resp.Slots {
		assert.False(t, s.Available)
	}
}

func TestExecute_Errors(t *testing.T) {
	f := newFixture(t)
	foreign := f.store.AddMaster(domain.Master{SalonID: 999, Name: "Чужий", IsActive: true})
	inactive := f.store.AddSalon(domain.Salon{Slug: "closed", WorkingHours: memstore.WeekdaySchedule()})

	tests := []struct {
		name    string
		req     *Request
		wantErr error
	}{
		{
			name:    "missing salon id",
			req:     &Request{Date: memstore.Monday()},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "missing date",
			req:     &Request{SalonID: f.seed.Salon.ID},
			wantErr: ErrInvalidInput,
		},
		{
			name: "duplicate service ids",
			req: &Request{SalonID: f.seed.Salon.ID, Date: memstore.Monday(),
				ServiceIDs: []int64{f.seed.Haircut.ID, f.seed.Haircut.ID}},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "date in past",
			req:     &Request{SalonID: f.seed.Salon.ID, Date: memstore.Monday().AddDate(0, 0, -1)},
			wantErr: ErrInvalidDate,
		},
		{
			name:    "beyond horizon",
			req:     &Request{SalonID: f.seed.Salon.ID, Date: memstore.Monday().AddDate(0, 0, 31)},
			wantErr: ErrDateTooFarInFuture,
		},
		{
			name:    "unknown salon",
			req:     &Request{SalonID: 12345, Date: memstore.Monday()},
			wantErr: ErrSalonNotFound,
		},
		{
			name:    "inactive salon",
			req:     &Request{SalonID: inactive.ID, Date: memstore.Monday()},
			wantErr: ErrSalonNotFound,
		},
		{
			name:    "master of another salon",
			req:     &Request{SalonID: f.seed.Salon.ID, MasterID: foreign.ID, Date: memstore.Monday()},
			wantErr: ErrMasterNotFound,
		},
		{
			name: "unknown service",
			req: &Request{SalonID: f.seed.Salon.ID, Date: memstore.Monday(),
				ServiceIDs: []int64{f.seed.Haircut.ID, 5555}},
			wantErr: ErrServiceNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.Execute(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestExecute_RepositoryFailureIsInternal(t *testing.T) {
	f := newFixture(t)
	f.store.FailOnce("blocks.ListByMasterAndDate", errors.New("connection reset"))

	_, err := f.uc.Execute(context.Background(), &Request{
		SalonID:  f.seed.Salon.ID,
		MasterID: f.seed.Anna.ID,
		Date:     memstore.Monday(),
	})
	assert.ErrorIs(t, err, ErrInternal)
}

func TestExecute_ZeroDurationServiceRejected(t *testing.T) {
	f := newFixture(t)
	broken := f.store.AddService(domain.Service{
		SalonID: f.seed.Salon.ID, Name: "Зламана", DurationMinutes: ptr.Ptr(0), IsActive: true,
	})

	_, err := f.uc.Execute(context.Background(), &Request{
		SalonID:    f.seed.Salon.ID,
		MasterID:   f.seed.Anna.ID,
		Date:       memstore.Monday(),
		ServiceIDs: []int64{broken.ID},
	})
	assert.ErrorIs(t, err, ErrInvalidDuration)
}
