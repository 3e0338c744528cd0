package scheduling

import (
	"fmt"
	"time"

	"github.com/m04kA/SalonBookingService/internal/domain"
	"github.com/m04kA/SalonBookingService/pkg/ptr"
	"github.com/m04kA/SalonBookingService/pkg/types"
)

type recordingLogger struct {
	warnings []string
}

func (l *recordingLogger) Warn(format string, v ...interface{}) {
	l.warnings = append(l.warnings, fmt.Sprintf(format, v...))
}

// weekdaySchedule пн-пт 10:00-20:00, сб 10:00-16:00, вс выходной
func weekdaySchedule() domain.WeeklySchedule {
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

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func block(start, end string) *domain.ScheduleBlock {
	return &domain.ScheduleBlock{
		TimeStart: types.TimeString(start),
		TimeEnd:   types.TimeString(end),
		IsBlocked: true,
		Reason:    domain.BlockReasonBooked,
	}
}

func service(id int64, duration *int) domain.Service {
	return domain.Service{ID: id, DurationMinutes: duration}
}

func minutes(m int) *int {
	return ptr.Ptr(m)
}
