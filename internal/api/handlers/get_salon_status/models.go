package get_salon_status

import (
	"github.com/m04kA/SalonBookingService/internal/domain"
	getSalonStatus "github.com/m04kA/SalonBookingService/internal/usecase/get_salon_status"
)

// SalonStatusResponse HTTP response model
type SalonStatusResponse struct {
	SalonID      int64                 `json:"salonId"`
	Slug         string                `json:"slug"`
	Name         string                `json:"name"`
	Address      string                `json:"address"`
	IsOpen       bool                  `json:"isOpen"`
	Today        string                `json:"today"`
	OpenTime     string                `json:"openTime,omitempty"`
	CloseTime    string                `json:"closeTime,omitempty"`
	NextOpen     *NextOpening          `json:"nextOpen,omitempty"`
	WorkingHours domain.WeeklySchedule `json:"workingHours"`
}

// NextOpening ближайшее открытие салона
type NextOpening struct {
	Day  string `json:"day"`
	Date string `json:"date"`
	Time string `json:"time"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getSalonStatus.Response) *SalonStatusResponse {
	result := &SalonStatusResponse{
		SalonID:      resp.SalonID,
		Slug:         resp.Slug,
		Name:         resp.Name,
		Address:      resp.Address,
		IsOpen:       resp.IsOpen,
		Today:        resp.Today,
		OpenTime:     resp.OpenTime.String(),
		CloseTime:    resp.CloseTime.String(),
		WorkingHours: resp.WorkingHours,
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
