package domain

import (
	"encoding/json"
	"strconv"
	"time"
)

// Event types written to the outbox
const (
	EventBookingCreated   = "booking.created.v1"
	EventBookingCancelled = "booking.cancelled.v1"
)

// AggregateBooking aggregate type of booking events
const AggregateBooking = "booking"

// OutboxEvent is a pending integration event stored in the same transaction as the booking
type OutboxEvent struct {
	ID            int64
	EventID       string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
	Traceparent   string // W3C trace context of the producing request
	Attempts      int
	LastError     *string
	CreatedAt     time.Time
	PublishedAt   *time.Time
	LockedUntil   *time.Time // claimed by a relay until this moment
}

// BookingEventPayload body of booking.* events
type BookingEventPayload struct {
	BookingID int64  `json:"bookingId"`
	SalonID   int64  `json:"salonId"`
	MasterID  int64  `json:"masterId"`
	Date      string `json:"date"`
	Time      string `json:"time"`
}

// NewBookingEvent builds a booking.* outbox event for the booking
func NewBookingEvent(eventType string, b *Booking, eventID, traceparent string) (*OutboxEvent, error) {
	payload, err := json.Marshal(BookingEventPayload{
		BookingID: b.ID,
		SalonID:   b.SalonID,
		MasterID:  b.MasterID,
		Date:      b.BookingDate.Format(DateFormat),
		Time:      b.StartTime.String(),
	})
	if err != nil {
		return nil, err
	}

	return &OutboxEvent{
		EventID:       eventID,
		AggregateType: AggregateBooking,
		AggregateID:   strconv.FormatInt(b.ID, 10),
		EventType:     eventType,
		Payload:       payload,
		Traceparent:   traceparent,
	}, nil
}
