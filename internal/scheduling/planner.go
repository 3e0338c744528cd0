package scheduling

import (
	"fmt"

	"github.com/m04kA/SalonBookingService/internal/domain"
	"github.com/m04kA/SalonBookingService/pkg/types"
)

// Plan сколько слотов сетки занимает набор услуг
type Plan struct {
	TotalMinutes   int `json:"totalMinutes"`
	RequiredSlots  int `json:"requiredSlots"`
	RoundedMinutes int `json:"roundedMinutes"`
}

// EndTime конец бронирования с учетом округления до сетки
func (p Plan) EndTime(start types.TimeString) (types.TimeString, error) {
	return start.AddMinutes(p.RoundedMinutes)
}

// Plan суммирует длительности услуг и округляет вверх до шага сетки.
// Услуга без длительности считается длительностью по умолчанию.
func (g *Grid) Plan(services []domain.Service) (Plan, error) {
	if len(services) == 0 {
		return Plan{}, ErrNoServices
	}

	total := 0
	for _, svc := range services {
		if svc.DurationMinutes == nil {
			total += g.defaultDuration
			continue
		}
		if *svc.DurationMinutes <= 0 {
			return Plan{}, fmt.Errorf("%w: service id=%d has %d", ErrInvalidDuration, svc.ID, *svc.DurationMinutes)
		}
		total += *svc.DurationMinutes
	}

	required := (total + g.interval - 1) / g.interval

	return Plan{
		TotalMinutes:   total,
		RequiredSlots:  required,
		RoundedMinutes: required * g.interval,
	}, nil
}

// FitsBefore проверяет, что бронирование с начала start заканчивается не позже closeTime
func (p Plan) FitsBefore(start, closeTime types.TimeString) bool {
	end, err := p.EndTime(start)
	if err != nil {
		return false
	}
	return !end.IsAfter(closeTime)
}
