package domain

import "time"

// WorkingHours one weekday entry of a salon's weekly schedule.
// Hours is "HH:MM - HH:MM" or the closed marker.
type WorkingHours struct {
	Day   string `json:"day"`
	Hours string `json:"hours"`
}

// WeeklySchedule ordered list of weekday entries, at most one per day name
type WeeklySchedule []WorkingHours

// Find returns the entry for the given localized day name
func (s WeeklySchedule) Find(day string) (WorkingHours, bool) {
	for _, wh := range s {
		if wh.Day == day {
			return wh, true
		}
	}
	return WorkingHours{}, false
}

// Salon is a tenant offering services
type Salon struct {
	ID           int64
	Slug         string
	Name         string
	Address      string
	OwnerID      int64
	WorkingHours WeeklySchedule
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Service is an offering of a salon
type Service struct {
	ID              int64   `json:"id"`
	SalonID         int64   `json:"salonId"`
	Name            string  `json:"name"`
	DurationMinutes *int    `json:"durationMinutes,omitempty"` // nil means the default duration
	Price           float64 `json:"price"`
	IsActive        bool    `json:"isActive"`
}

// Master is a staff member who can be booked independently
type Master struct {
	ID        int64
	SalonID   int64
	Name      string
	Role      string
	SortOrder int
	IsActive  bool
}

// OwnerSubscription is the owner's notification channel
type OwnerSubscription struct {
	OwnerID              int64
	Email                string
	TelegramChatID       *string
	NotificationsEnabled bool
}

// CanNotify returns true if a Telegram chat is linked and notifications are on
func (s *OwnerSubscription) CanNotify() bool {
	return s != nil && s.NotificationsEnabled && s.TelegramChatID != nil && *s.TelegramChatID != ""
}
