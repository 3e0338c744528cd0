package booking_session

import (
	"time"

	"github.com/m04kA/SalonBookingService/internal/scheduling"
	"github.com/m04kA/SalonBookingService/internal/wizard"
	"github.com/m04kA/SalonBookingService/pkg/types"
)

// Типы событий сессии
const (
	EventToggleService    = "toggle_service"
	EventChooseSpecialist = "choose_specialist"
	EventSelectDate       = "select_date"
	EventPickStart        = "pick_start"
	EventSetContact       = "set_contact"
	EventNext             = "next"
	EventBack             = "back"
	EventGoTo             = "go_to"
	EventClose            = "close"
	EventConfirmClose     = "confirm_close"
	EventCancelClose      = "cancel_close"
)

// StartRequest начало бронирования в салоне
type StartRequest struct {
	SalonID int64
}

// EventRequest событие клиента. Используются только поля, нужные типу события.
type EventRequest struct {
	SessionID string
	Type      string
	ServiceID int64
	MasterID  int64
	Date      time.Time
	Time      types.TimeString
	Step      string
	Contact   wizard.Contact
}

// Response состояние сессии после операции
type Response struct {
	SessionID string
	State     wizard.State

	// NextOpen заполняется, если выбранная дата выходная
	NextOpen *scheduling.NextOpening

	// Message текст для клиента при отказе в выборе времени
	Message string
}
