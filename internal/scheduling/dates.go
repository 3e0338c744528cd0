package scheduling

import "time"

// DateOnly обнуляет время, оставляя дату в той же локации
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// IsSameDay проверяет, что две даты относятся к одному и тому же дню
func IsSameDay(date1, date2 time.Time) bool {
	y1, m1, d1 := date1.Date()
	y2, m2, d2 := date2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// IsDateInPast проверяет, что дата раньше сегодняшнего дня
func IsDateInPast(date, now time.Time) bool {
	return DateOnly(date).Before(DateOnly(now))
}

// IsBeyondHorizon проверяет, что дата дальше horizonDays от сегодня. 0 - без ограничений.
func IsBeyondHorizon(date, now time.Time, horizonDays int) bool {
	if horizonDays <= 0 {
		return false
	}
	return DateOnly(date).After(DateOnly(now).AddDate(0, 0, horizonDays))
}
