package get_salon_status

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SalonBookingService/internal/domain"
	"github.com/m04kA/SalonBookingService/internal/scheduling"
	"github.com/m04kA/SalonBookingService/internal/testutil/memstore"
	"github.com/m04kA/SalonBookingService/pkg/logger"
	"github.com/m04kA/SalonBookingService/pkg/types"
)

func TestExecute(t *testing.T) {
	store := memstore.New()
	store.SeedSalon()
	store.AddSalon(domain.Salon{Slug: "archived", WorkingHours: memstore.WeekdaySchedule()})

	clock := &memstore.Clock{}
	log := logger.NewNop()
	uc := NewUseCase(store.Salons(), scheduling.NewResolver(domain.DefaultWeekdayNames, domain.ClosedMarker, log), clock, log)

	t.Run("open now", func(t *testing.T) {
		clock.At = memstore.Monday().Add(11 * time.Hour)
		resp, err := uc.Execute(context.Background(), &Request{Slug: "lokon"})
		require.NoError(t, err)
		assert.True(t, resp.IsOpen)
		assert.Equal(t, "Понеділок", resp.Today)
		assert.Equal(t, types.TimeString("20:00"), resp.CloseTime)
		assert.Nil(t, resp.NextOpen)
	})

	t.Run("closed at closing time", func(t *testing.T) {
		clock.At = memstore.Monday().Add(20 * time.Hour)
		resp, err := uc.Execute(context.Background(), &Request{Slug: "lokon"})
		require.NoError(t, err)
		assert.False(t, resp.IsOpen)
		require.NotNil(t, resp.NextOpen)
		assert.Equal(t, "Вівторок", resp.NextOpen.Day)
	})

	t.Run("sunday points to monday", func(t *testing.T) {
		clock.At = memstore.Monday().AddDate(0, 0, 6).Add(12 * time.Hour)
		resp, err := uc.Execute(context.Background(), &Request{Slug: "lokon"})
		require.NoError(t, err)
		assert.False(t, resp.IsOpen)
		require.NotNil(t, resp.NextOpen)
		assert.Equal(t, "Понеділок", resp.NextOpen.Day)
		assert.Equal(t, types.TimeString("10:00"), resp.NextOpen.Time)
	})

	t.Run("malformed monday falls back to next open day", func(t *testing.T) {
		hours := memstore.WeekdaySchedule()
		hours[0].Hours = "10:00 20:00"
		store.AddSalon(domain.Salon{Slug: "typo", WorkingHours: hours, IsActive: true})

		clock.At = memstore.Monday().Add(11 * time.Hour)
		resp, err := uc.Execute(context.Background(), &Request{Slug: "typo"})
		require.NoError(t, err)
		assert.False(t, resp.IsOpen)
		require.NotNil(t, resp.NextOpen)
		assert.Equal(t, "Вівторок", resp.NextOpen.Day)
	})

	t.Run("errors", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), &Request{Slug: "  "})
		assert.ErrorIs(t, err, ErrInvalidInput)

		_, err = uc.Execute(context.Background(), &Request{Slug: "missing"})
		assert.ErrorIs(t, err, ErrSalonNotFound)

		_, err = uc.Execute(context.Background(), &Request{Slug: "archived"})
		assert.ErrorIs(t, err, ErrSalonNotFound)
	})
}
