package booking_session

import (
	"time"

	"github.com/m04kA/SalonBookingService/internal/domain"
	"github.com/m04kA/SalonBookingService/internal/scheduling"
	bookingSession "github.com/m04kA/SalonBookingService/internal/usecase/booking_session"
	"github.com/m04kA/SalonBookingService/internal/wizard"
	"github.com/m04kA/SalonBookingService/pkg/types"
)

// StartSessionRequest HTTP request model
type StartSessionRequest struct {
	SalonID int64 `json:"salonId"`
}

// EventRequest событие мастера бронирования
type EventRequest struct {
	Type      string          `json:"type"`
	ServiceID int64           `json:"serviceId,omitempty"`
	MasterID  int64           `json:"masterId,omitempty"` // 0 - любой свободный
	Date      string          `json:"date,omitempty"`     // "2025-10-15"
	Time      string          `json:"time,omitempty"`     // "10:00"
	Step      string          `json:"step,omitempty"`
	Contact   *ContactRequest `json:"contact,omitempty"`
}

// ContactRequest контактные данные клиента
type ContactRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Email     string `json:"email,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// SessionResponse HTTP response model
type SessionResponse struct {
	SessionID string   `json:"sessionId"`
	SalonID   int64    `json:"salonId"`
	Step      string   `json:"step"`
	Completed []string `json:"completed"`

	Services   []domain.Service `json:"services"`
	Plan       scheduling.Plan  `json:"plan"`
	Specialist *int64           `json:"specialist,omitempty"`

	Date      string        `json:"date,omitempty"`
	CloseTime string        `json:"closeTime,omitempty"`
	Slots     []domain.Slot `json:"slots"`
	Selected  []string      `json:"selected"`
	NextOpen  *NextOpening  `json:"nextOpen,omitempty"`

	Contact ContactRequest `json:"contact"`

	BookingID        int64 `json:"bookingId,omitempty"`
	AssignedMasterID int64 `json:"assignedMasterId,omitempty"`
	ConfirmDiscard   bool  `json:"confirmDiscard"`
	Closed           bool  `json:"closed"`

	Message string `json:"message,omitempty"`
}

// NextOpening ближайший рабочий день, если выбранная дата выходная
type NextOpening struct {
	Day  string `json:"day"`
	Date string `json:"date"`
	Time string `json:"time"`
}

// SessionErrorResponse ошибка вместе с актуальным состоянием сессии
type SessionErrorResponse struct {
	Error   string           `json:"error"`
	Session *SessionResponse `json:"session,omitempty"`
}

// ToUseCaseRequest конвертирует событие в модель use case
func (r *EventRequest) ToUseCaseRequest(sessionID string) (*bookingSession.EventRequest, error) {
	req := &bookingSession.EventRequest{
		SessionID: sessionID,
		Type:      r.Type,
		ServiceID: r.ServiceID,
		MasterID:  r.MasterID,
		Step:      r.Step,
	}

	if r.Date != "" {
		date, err := time.Parse(domain.DateFormat, r.Date)
		if err != nil {
			return nil, err
		}
		req.Date = date
	}

	if r.Time != "" {
		start, err := types.NewTimeStringFromString(r.Time)
		if err != nil {
			return nil, err
		}
		req.Time = start
	}

	if r.Contact != nil {
		req.Contact = wizard.Contact{
			FirstName: r.Contact.FirstName,
			LastName:  r.Contact.LastName,
			Phone:     r.Contact.Phone,
			Email:     r.Contact.Email,
			Notes:     r.Contact.Notes,
		}
	}

	return req, nil
}

// FromUseCaseResponse конвертирует состояние сессии в HTTP response
func FromUseCaseResponse(resp *bookingSession.Response) *SessionResponse {
	if resp == nil {
		return nil
	}
	s := resp.State

	result := &SessionResponse{
		SessionID:  resp.SessionID,
		SalonID:    s.SalonID,
		Step:       s.Step.String(),
		Completed:  make([]string, 0, len(s.Completed)),
		Services:   s.Services,
		Plan:       s.Plan,
		Specialist: s.Specialist,
		CloseTime:  s.CloseTime.String(),
		Slots:      s.Slots,
		Selected:   make([]string, 0, len(s.Selected)),
		Contact: ContactRequest{
			FirstName: s.Contact.FirstName,
			LastName:  s.Contact.LastName,
			Phone:     s.Contact.Phone,
			Email:     s.Contact.Email,
			Notes:     s.Contact.Notes,
		},
		BookingID:        s.BookingID,
		AssignedMasterID: s.AssignedMasterID,
		ConfirmDiscard:   s.ConfirmDiscard,
		Closed:           s.Closed,
		Message:          resp.Message,
	}

	for _, step := range s.Completed {
		result.Completed = append(result.Completed, step.String())
	}
	for _, t := range s.Selected {
		result.Selected = append(result.Selected, t.String())
	}
	if result.Services == nil {
		result.Services = []domain.Service{}
	}
	if result.Slots == nil {
		result.Slots = []domain.Slot{}
	}
	if s.Date != nil {
		result.Date = s.Date.Format(domain.DateFormat)
	}
	if resp.NextOpen != nil {
		result.NextOpen = &NextOpening{
			Day:  resp.NextOpen.Day,
			Date: resp.NextOpen.Date.Format(domain.DateFormat),
			Time: resp.NextOpen.Time.String(),
		}
	}

	return result
}
