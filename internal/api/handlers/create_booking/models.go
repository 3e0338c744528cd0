package create_booking

import (
	"time"

	"github.com/m04kA/SalonBookingService/internal/domain"
	createBooking "github.com/m04kA/SalonBookingService/internal/usecase/create_booking"
	"github.com/m04kA/SalonBookingService/pkg/types"
)

// HeaderIdempotencyKey ключ повторной отправки запроса клиентом
const HeaderIdempotencyKey = "Idempotency-Key"

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	SalonID     int64   `json:"salonId"`
	MasterID    int64   `json:"masterId"` // 0 - любой свободный мастер
	ServiceIDs  []int64 `json:"serviceIds"`
	BookingDate string  `json:"bookingDate"` // "2025-10-15"
	StartTime   string  `json:"startTime"`   // "10:00"
	ClientName  string  `json:"clientName"`
	ClientPhone string  `json:"clientPhone"`
	ClientEmail *string `json:"clientEmail,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID              int64   `json:"id"`
	SalonID         int64   `json:"salonId"`
	MasterID        int64   `json:"masterId"`
	ServiceIDs      []int64 `json:"serviceIds"`
	BookingDate     string  `json:"bookingDate"`
	StartTime       string  `json:"startTime"`
	EndTime         string  `json:"endTime"`
	DurationMinutes int     `json:"durationMinutes"`
	Price           float64 `json:"price"`
	ClientName      string  `json:"clientName"`
	ClientPhone     string  `json:"clientPhone"`
	Status          string  `json:"status"`
	CreatedAt       string  `json:"createdAt"`
}

// errInvalidTime отличает ошибку времени от ошибки даты
type errInvalidTime struct{ err error }

func (e errInvalidTime) Error() string { return e.err.Error() }

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(idempotencyKey string) (*createBooking.Request, error) {
	// Парсим дату
	bookingDate, err := time.Parse(domain.DateFormat, r.BookingDate)
	if err != nil {
		return nil, err
	}

	// Парсим время
	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, errInvalidTime{err: err}
	}

	return &createBooking.Request{
		SalonID:        r.SalonID,
		MasterID:       r.MasterID,
		ServiceIDs:     r.ServiceIDs,
		Date:           bookingDate,
		StartTime:      startTime,
		ClientName:     r.ClientName,
		ClientPhone:    r.ClientPhone,
		ClientEmail:    r.ClientEmail,
		Notes:          r.Notes,
		IdempotencyKey: idempotencyKey,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	return &BookingResponse{
		ID:              resp.ID,
		SalonID:         resp.SalonID,
		MasterID:        resp.MasterID,
		ServiceIDs:      resp.ServiceIDs,
		BookingDate:     resp.BookingDate.Format(domain.DateFormat),
		StartTime:       resp.StartTime.String(),
		EndTime:         resp.EndTime.String(),
		DurationMinutes: resp.DurationMinutes,
		Price:           resp.Price,
		ClientName:      resp.ClientName,
		ClientPhone:     resp.ClientPhone,
		Status:          resp.Status,
		CreatedAt:       resp.CreatedAt.Format(time.RFC3339),
	}
}
