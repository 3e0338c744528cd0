package memstore

import (
	"time"

	"github.com/m04kA/SalonBookingService/internal/domain"
	"github.com/m04kA/SalonBookingService/pkg/ptr"
)

// WeekdaySchedule пн-пт 10:00-20:00, сб 10:00-16:00, вс выходной
func WeekdaySchedule() domain.WeeklySchedule {
	return domain.WeeklySchedule{
		{Day: "Понеділок", Hours: "10:00 - 20:00"},
		{Day: "Вівторок", Hours: "10:00 - 20:00"},
		{Day: "Середа", Hours: "10:00 - 20:00"},
		{Day: "Четвер", Hours: "10:00 - 20:00"},
		{Day: "П'ятниця", Hours: "10:00 - 20:00"},
		{Day: "Субота", Hours: "10:00 - 16:00"},
		{Day: "Неділя", Hours: domain.ClosedMarker},
	}
}

// Seed типовой салон для тестов
type Seed struct {
	Salon    *domain.Salon
	Anna     *domain.Master // SortOrder 1
	Olena    *domain.Master // SortOrder 2
	Haircut  *domain.Service
	Coloring *domain.Service
	Styling  *domain.Service // без длительности
}

// SeedSalon салон "Локон" с двумя мастерами и тремя услугами.
// Стрижка 45 мин, окрашивание 30 мин, укладка без длительности.
func (s *Store) SeedSalon() Seed {
	salon := s.AddSalon(domain.Salon{
		Slug:         "lokon",
		Name:         "Локон",
		Address:      "вул. Хрещатик, 1",
		OwnerID:      700,
		WorkingHours: WeekdaySchedule(),
		IsActive:     true,
	})

	return Seed{
		Salon: salon,
		Anna: s.AddMaster(domain.Master{
			SalonID: salon.ID, Name: "Анна", Role: "Стиліст", SortOrder: 1, IsActive: true,
		}),
		Olena: s.AddMaster(domain.Master{
			SalonID: salon.ID, Name: "Олена", Role: "Колорист", SortOrder: 2, IsActive: true,
		}),
		Haircut: s.AddService(domain.Service{
			SalonID: salon.ID, Name: "Стрижка", DurationMinutes: ptr.Ptr(45), Price: 500, IsActive: true,
		}),
		Coloring: s.AddService(domain.Service{
			SalonID: salon.ID, Name: "Окрашування", DurationMinutes: ptr.Ptr(30), Price: 1200, IsActive: true,
		}),
		Styling: s.AddService(domain.Service{
			SalonID: salon.ID, Name: "Укладка", Price: 300, IsActive: true,
		}),
	}
}

// Monday 2 июня 2025, понедельник
func Monday() time.Time {
	return time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
}

// Clock фиксированное время для TimeProvider
type Clock struct {
	At time.Time
}

func (c *Clock) Now() time.Time {
	return c.At
}
