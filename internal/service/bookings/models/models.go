package models

import (
	"errors"
	"time"

	"github.com/m04kA/SalonBookingService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// CancelBookingRequest запрос на отмену бронирования владельцем салона
type CancelBookingRequest struct {
	UserID int64 `json:"userId"`
}

// UpdateStatusRequest запрос на обновление статуса бронирования
type UpdateStatusRequest struct {
	UserID int64  `json:"userId"`
	Status string `json:"status"`
}

// GetSalonBookingsRequest запрос на получение бронирований салона
type GetSalonBookingsRequest struct {
	UserID           int64      `json:"userId"`
	SalonID          int64      `json:"salonId"`
	MasterID         *int64     `json:"masterId,omitempty"`         // Фильтр по мастеру (опционально)
	Date             *time.Time `json:"date,omitempty"`             // Конкретная дата (опционально)
	Status           *string    `json:"status,omitempty"`           // Фильтр по статусу (опционально)
	IncludeCancelled bool       `json:"includeCancelled,omitempty"` // Включить отменённые бронирования
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetSalonBookingsRequest) ToDomainFilter() (domain.SalonBookingsFilter, error) {
	filter := domain.SalonBookingsFilter{
		SalonID:          r.SalonID,
		MasterID:         r.MasterID,
		Date:             r.Date,
		IncludeCancelled: r.IncludeCancelled,
	}

	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID              int64   `json:"id"`
	SalonID         int64   `json:"salonId"`
	MasterID        int64   `json:"masterId"`
	ServiceIDs      []int64 `json:"serviceIds"`
	BookingDate     string  `json:"bookingDate"` // "2025-10-15"
	StartTime       string  `json:"startTime"`   // "10:00"
	EndTime         string  `json:"endTime"`
	DurationMinutes int     `json:"durationMinutes"`
	Price           float64 `json:"price"`
	Status          string  `json:"status"`

	ClientName  string  `json:"clientName"`
	ClientPhone string  `json:"clientPhone"`
	ClientEmail *string `json:"clientEmail,omitempty"`
	Notes       *string `json:"notes,omitempty"`

	NotificationSent bool    `json:"notificationSent"`
	CancelledAt      *string `json:"cancelledAt,omitempty"` // ISO 8601 format

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// BookingCardResponse карточка бронирования для владельца: с названиями вместо ID
type BookingCardResponse struct {
	BookingResponse
	SalonName    string   `json:"salonName"`
	MasterName   string   `json:"masterName"`
	ServiceNames []string `json:"serviceNames"`
}

// FromDomainBookingDetails конвертирует бронирование с названиями в DTO
func FromDomainBookingDetails(d *domain.BookingDetails) *BookingCardResponse {
	names := d.ServiceNames
	if names == nil {
		names = []string{}
	}
	return &BookingCardResponse{
		BookingResponse: *FromDomainBooking(&d.Booking),
		SalonName:       d.SalonName,
		MasterName:      d.MasterName,
		ServiceNames:    names,
	}
}

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	end, _ := b.EndTime()
	serviceIDs := b.ServiceIDs
	if serviceIDs == nil {
		serviceIDs = []int64{}
	}

	resp := &BookingResponse{
		ID:               b.ID,
		SalonID:          b.SalonID,
		MasterID:         b.MasterID,
		ServiceIDs:       serviceIDs,
		BookingDate:      b.BookingDate.Format(domain.DateFormat),
		StartTime:        b.StartTime.String(),
		EndTime:          end.String(),
		DurationMinutes:  b.DurationMinutes,
		Price:            b.Price,
		Status:           string(b.Status),
		ClientName:       b.ClientName,
		ClientPhone:      b.ClientPhone,
		ClientEmail:      b.ClientEmail,
		Notes:            b.Notes,
		NotificationSent: b.NotificationSent,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}

	if b.CancelledAt != nil {
		cancelledStr := b.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}

	return resp
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s := domain.BookingStatus(status)
	if !s.IsValid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}
