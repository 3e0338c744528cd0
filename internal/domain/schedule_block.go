package domain

import (
	"time"

	"github.com/m04kA/SalonBookingService/pkg/types"
)

// BlockReason explains why a master's interval is unavailable
type BlockReason string

const (
	BlockReasonBooked BlockReason = "booked"
	BlockReasonDayOff BlockReason = "day_off"
	BlockReasonManual BlockReason = "manual"
)

// ScheduleBlock is a half-open interval [TimeStart, TimeEnd) on a date
// during which a master cannot take new bookings
type ScheduleBlock struct {
	ID        int64
	SalonID   int64
	MasterID  int64
	Date      time.Time
	TimeStart types.TimeString
	TimeEnd   types.TimeString
	IsBlocked bool
	Reason    BlockReason
	BookingID *int64
	CreatedAt time.Time
}

// Covers reports whether a slot start falls inside the block
func (b *ScheduleBlock) Covers(slot types.TimeString) bool {
	return !slot.IsBefore(b.TimeStart) && slot.IsBefore(b.TimeEnd)
}

// Overlaps reports whether [start, end) intersects the block
func (b *ScheduleBlock) Overlaps(start, end types.TimeString) bool {
	return start.IsBefore(b.TimeEnd) && b.TimeStart.IsBefore(end)
}

// IsBooking returns true if the block belongs to a booking
func (b *ScheduleBlock) IsBooking() bool {
	return b.Reason == BlockReasonBooked
}
