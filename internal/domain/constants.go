package domain

// Default configuration values
const (
	DefaultSlotIntervalMinutes    = 30
	DefaultServiceDurationMinutes = 30
	DefaultBookingHorizonDays     = 30
	DefaultMinPhoneDigits         = 9
	DefaultPhoneRegion            = "UA"
)

// Business validation constants
const (
	MaxNotesLength      = 500
	MaxClientNameLength = 200
	MaxServicesInBundle = 10
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// Working hours notation
const (
	ClosedMarker   = "Зачинено"
	HoursSeparator = " - "
	StartOfDay     = "00:00"
	EndOfDay       = "24:00"
)

// DefaultWeekdayNames localized day names indexed by time.Weekday (Sunday first)
var DefaultWeekdayNames = [7]string{
	"Неділя",
	"Понеділок",
	"Вівторок",
	"Середа",
	"Четвер",
	"П'ятниця",
	"Субота",
}
