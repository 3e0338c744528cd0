package scheduling

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SalonBookingService/internal/domain"
	"github.com/m04kA/SalonBookingService/pkg/types"
)

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
}

// daysInWeek сколько дней вперед ищется ближайший рабочий день
const daysInWeek = 7

// NextOpening ближайшее открытие салона
type NextOpening struct {
	Day  string
	Date time.Time
	Time types.TimeString
}

// DayStatus рабочее состояние салона на дату (или на момент времени для LiveStatus)
type DayStatus struct {
	IsOpen    bool
	OpenTime  types.TimeString
	CloseTime types.TimeString
	NextOpen  *NextOpening
}

// Resolver разбирает недельное расписание салона
type Resolver struct {
	weekdayNames [7]string
	closedMarker string
	separator    string
	logger       Logger
}

// NewResolver weekdayNames индексируются time.Weekday (воскресенье первое)
func NewResolver(weekdayNames [7]string, closedMarker string, logger Logger) *Resolver {
	return &Resolver{
		weekdayNames: weekdayNames,
		closedMarker: closedMarker,
		separator:    domain.HoursSeparator,
		logger:       logger,
	}
}

// DayName локализованное название дня недели даты
func (r *Resolver) DayName(date time.Time) string {
	return r.weekdayNames[date.Weekday()]
}

// Resolve возвращает часы работы на дату.
// Для выходного или отсутствующего дня ищет ближайший рабочий день в течение недели.
func (r *Resolver) Resolve(schedule domain.WeeklySchedule, date time.Time) DayStatus {
	open, closeTime, ok := r.hoursFor(schedule, date)
	if ok {
		return DayStatus{IsOpen: true, OpenTime: open, CloseTime: closeTime}
	}

	return DayStatus{NextOpen: r.nextOpening(schedule, date)}
}

// LiveStatus открыт ли салон в момент now.
// Время сравнивается строками HH:MM, поэтому закрытие ровно в close уже считается закрытым.
func (r *Resolver) LiveStatus(schedule domain.WeeklySchedule, now time.Time) DayStatus {
	open, closeTime, ok := r.hoursFor(schedule, now)
	if !ok {
		return DayStatus{NextOpen: r.nextOpening(schedule, now)}
	}

	current := types.NewTimeString(now)
	status := DayStatus{OpenTime: open, CloseTime: closeTime}

	switch {
	case current.IsBefore(open):
		status.NextOpen = &NextOpening{Day: r.DayName(now), Date: DateOnly(now), Time: open}
	case current.IsBefore(closeTime):
		status.IsOpen = true
	default:
		status.NextOpen = r.nextOpening(schedule, now)
	}

	return status
}

// ParseHours разбирает "HH:MM - HH:MM".
// ok=false без ошибки означает выходной.
func (r *Resolver) ParseHours(hours string) (open, closeTime types.TimeString, ok bool, err error) {
	trimmed := strings.TrimSpace(hours)
	if trimmed == "" || trimmed == r.closedMarker {
		return "", "", false, nil
	}

	parts := strings.Split(trimmed, r.separator)
	if len(parts) != 2 {
		return "", "", false, fmt.Errorf("%w: %q: missing separator", ErrMalformedHours, hours)
	}

	open, err = types.NewTimeStringFromString(strings.TrimSpace(parts[0]))
	if err != nil {
		return "", "", false, fmt.Errorf("%w: %q: %v", ErrMalformedHours, hours, err)
	}
	closeTime, err = types.NewTimeStringFromString(strings.TrimSpace(parts[1]))
	if err != nil {
		return "", "", false, fmt.Errorf("%w: %q: %v", ErrMalformedHours, hours, err)
	}
	if !open.IsBefore(closeTime) {
		return "", "", false, fmt.Errorf("%w: %q: start is not before end", ErrMalformedHours, hours)
	}

	return open, closeTime, true, nil
}

// Validate проверяет расписание целиком: известные дни, без дублей, корректные интервалы
func (r *Resolver) Validate(schedule domain.WeeklySchedule) error {
	seen := make(map[string]bool, len(schedule))
	for _, wh := range schedule {
		if !r.isKnownDay(wh.Day) {
			return fmt.Errorf("%w: %q", ErrUnknownDay, wh.Day)
		}
		if seen[wh.Day] {
			return fmt.Errorf("%w: %q", ErrDuplicateDay, wh.Day)
		}
		seen[wh.Day] = true

		if _, _, _, err := r.ParseHours(wh.Hours); err != nil {
			return err
		}
	}
	return nil
}

// hoursFor часы работы в день даты. Некорректная запись считается выходным.
func (r *Resolver) hoursFor(schedule domain.WeeklySchedule, date time.Time) (types.TimeString, types.TimeString, bool) {
	entry, found := schedule.Find(r.DayName(date))
	if !found {
		return "", "", false
	}

	open, closeTime, ok, err := r.ParseHours(entry.Hours)
	if err != nil {
		if r.logger != nil {
			r.logger.Warn("Scheduling: bad working hours for %s: %v", entry.Day, err)
		}
		return "", "", false
	}

	return open, closeTime, ok
}

func (r *Resolver) nextOpening(schedule domain.WeeklySchedule, from time.Time) *NextOpening {
	day := DateOnly(from)
	for i := 1; i <= daysInWeek; i++ {
		candidate := day.AddDate(0, 0, i)
		if open, _, ok := r.hoursFor(schedule, candidate); ok {
			return &NextOpening{Day: r.DayName(candidate), Date: candidate, Time: open}
		}
	}
	return nil
}

func (r *Resolver) isKnownDay(day string) bool {
	for _, name := range r.weekdayNames {
		if name == day {
			return true
		}
	}
	return false
}
