package domain

import (
	"time"

	"github.com/m04kA/SalonBookingService/pkg/types"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
)

// IsValid reports whether the status is one of the known values
func (s BookingStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	default:
		return false
	}
}

// Booking is a client's reservation of one master for a bundle of services
type Booking struct {
	ID              int64
	SalonID         int64
	MasterID        int64
	ServiceID       int64   // primary (first selected) service
	ServiceIDs      []int64 // whole bundle, ServiceID included
	BookingDate     time.Time
	StartTime       types.TimeString
	DurationMinutes int     // rounded up to the slot grid
	Price           float64 // sum of the bundle prices

	ClientName  string
	ClientPhone string // E.164
	ClientEmail *string
	Notes       *string

	Status           BookingStatus
	NotificationSent bool
	CancelledAt      *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EndTime returns start time plus booked duration
func (b *Booking) EndTime() (types.TimeString, error) {
	return b.StartTime.AddMinutes(b.DurationMinutes)
}

// IsActive returns true if the booking still holds its slots
func (b *Booking) IsActive() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// CanBeCancelled returns true if the booking can be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// IsCancelled returns true if the booking has been cancelled
func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

// CanTransitionTo checks owner-driven status changes.
// Cancellation goes through its own path and is not allowed here.
func (b *Booking) CanTransitionTo(next BookingStatus) bool {
	switch next {
	case StatusConfirmed:
		return b.Status == StatusPending
	case StatusCompleted:
		return b.Status == StatusPending || b.Status == StatusConfirmed
	default:
		return false
	}
}

// BookingDetails booking with the names needed to render a notification
type BookingDetails struct {
	Booking      Booking
	SalonName    string
	SalonOwnerID int64
	MasterName   string
	ServiceNames []string
}

// SalonBookingsFilter фильтр для списка бронирований салона
type SalonBookingsFilter struct {
	SalonID          int64          // Обязательный параметр
	MasterID         *int64         // Фильтр по мастеру (опционально)
	Date             *time.Time     // Конкретная дата (опционально)
	Status           *BookingStatus // Фильтр по статусу (опционально)
	IncludeCancelled bool           // Включать ли отмененные бронирования
}
