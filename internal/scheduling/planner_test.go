package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SalonBookingService/internal/domain"
	"github.com/m04kA/SalonBookingService/pkg/types"
)

func TestGrid_Plan(t *testing.T) {
	g := newTestGrid(t)

	tests := []struct {
		name        string
		services    []domain.Service
		wantTotal   int
		wantSlots   int
		wantRounded int
		wantErr     error
	}{
		{
			name:        "exact multiple",
			services:    []domain.Service{service(1, minutes(60))},
			wantTotal:   60,
			wantSlots:   2,
			wantRounded: 60,
		},
		{
			name:        "rounded up",
			services:    []domain.Service{service(1, minutes(45)), service(2, minutes(30))},
			wantTotal:   75,
			wantSlots:   3,
			wantRounded: 90,
		},
		{
			name:        "missing duration defaults",
			services:    []domain.Service{service(1, nil), service(2, minutes(10))},
			wantTotal:   40,
			wantSlots:   2,
			wantRounded: 60,
		},
		{
			name:     "zero duration rejected",
			services: []domain.Service{service(1, minutes(0))},
			wantErr:  ErrInvalidDuration,
		},
		{
			name:     "negative duration rejected",
			services: []domain.Service{service(1, minutes(-15))},
			wantErr:  ErrInvalidDuration,
		},
		{
			name:    "empty selection",
			wantErr: ErrNoServices,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := g.Plan(tt.services)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, plan.TotalMinutes)
			assert.Equal(t, tt.wantSlots, plan.RequiredSlots)
			assert.Equal(t, tt.wantRounded, plan.RoundedMinutes)
			assert.GreaterOrEqual(t, plan.RoundedMinutes, plan.TotalMinutes)
			assert.Less(t, plan.RoundedMinutes-plan.TotalMinutes, g.Interval())
		})
	}
}

func TestPlan_FitsBefore(t *testing.T) {
	plan := Plan{TotalMinutes: 75, RequiredSlots: 3, RoundedMinutes: 90}

	assert.True(t, plan.FitsBefore("18:30", "20:00"))
	assert.False(t, plan.FitsBefore("19:00", "20:00"))
	assert.False(t, plan.FitsBefore("23:30", "24:00"))
}

// Салон 10:00-20:00, услуги 45+30 мин, у мастера занято 14:00-15:30
func TestAvailabilityScenario(t *testing.T) {
	g := newTestGrid(t)
	r := newTestResolver(nil)

	day := r.Resolve(weekdaySchedule(), date(2026, 10, 19))
	require.True(t, day.IsOpen)

	slots := g.Filter(g.Generate(day.OpenTime, day.CloseTime), []*domain.ScheduleBlock{block("14:00", "15:30")})
	plan, err := g.Plan([]domain.Service{service(1, minutes(45)), service(2, minutes(30))})
	require.NoError(t, err)
	require.Equal(t, 3, plan.RequiredSlots)
	require.Equal(t, 90, plan.RoundedMinutes)

	unavailable := make([]types.TimeString, 0)
	for _, s := range slots {
		if !s.Available {
			unavailable = append(unavailable, s.Time)
		}
	}
	assert.Equal(t, []types.TimeString{"14:00", "14:30", "15:00"}, unavailable)

	run, err := ContiguousRun(slots, "12:30", plan.RequiredSlots)
	require.NoError(t, err)
	assert.Equal(t, []types.TimeString{"12:30", "13:00", "13:30"}, run)

	_, err = ContiguousRun(slots, "13:00", plan.RequiredSlots)
	assert.ErrorIs(t, err, ErrNotEnoughSlots)

	_, err = ContiguousRun(slots, "19:00", plan.RequiredSlots)
	assert.ErrorIs(t, err, ErrNotEnoughSlots)

	assert.True(t, plan.FitsBefore("18:30", day.CloseTime))
}
