package get_salon_status

import (
	"github.com/m04kA/SalonBookingService/internal/domain"
	"github.com/m04kA/SalonBookingService/internal/scheduling"
	"github.com/m04kA/SalonBookingService/pkg/types"
)

// Request запрос статуса витрины салона
type Request struct {
	Slug string
}

// Response открыт ли салон сейчас и когда откроется
type Response struct {
	SalonID      int64
	Slug         string
	Name         string
	Address      string
	IsOpen       bool
	Today        string
	OpenTime     types.TimeString
	CloseTime    types.TimeString
	NextOpen     *scheduling.NextOpening
	WorkingHours domain.WeeklySchedule
}
