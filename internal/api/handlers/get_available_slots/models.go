package get_available_slots

import (
	"strconv"
	"strings"
	"time"

	"github.com/m04kA/SalonBookingService/internal/domain"
	"github.com/m04kA/SalonBookingService/internal/scheduling"
	getAvailableSlots "github.com/m04kA/SalonBookingService/internal/usecase/get_available_slots"
	"github.com/m04kA/SalonBookingService/pkg/types"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	Date      string           `json:"date"`
	SalonID   int64            `json:"salonId"`
	MasterID  int64            `json:"masterId"`
	DayName   string           `json:"dayName"`
	IsOpen    bool             `json:"isOpen"`
	OpenTime  string           `json:"openTime,omitempty"`
	CloseTime string           `json:"closeTime,omitempty"`
	NextOpen  *NextOpening     `json:"nextOpen,omitempty"`
	Slots     []domain.Slot    `json:"slots"`
	Plan      *scheduling.Plan `json:"plan,omitempty"`

	// Starts начала, с которых весь набор услуг помещается у одного мастера
	Starts []types.TimeString `json:"starts"`
}

// NextOpening ближайший рабочий день
type NextOpening struct {
	Day  string `json:"day"`
	Date string `json:"date"`
	Time string `json:"time"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := resp.Slots
	if slots == nil {
		slots = []domain.Slot{}
	}

	result := &AvailableSlotsResponse{
		Date:      resp.Date.Format(domain.DateFormat),
		SalonID:   resp.SalonID,
		MasterID:  resp.MasterID,
		DayName:   resp.DayName,
		IsOpen:    resp.IsOpen,
		OpenTime:  resp.OpenTime.String(),
		CloseTime: resp.CloseTime.String(),
		Slots:     slots,
		Plan:      resp.Plan,
		Starts:    resp.Starts,
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

// ToUseCaseRequest создает запрос use case из query параметров.
// masterId не указан или 0 - любой мастер; serviceIds через запятую.
func ToUseCaseRequest(salonID int64, masterIDStr, dateStr, serviceIDsStr string) (*getAvailableSlots.Request, error) {
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, err
	}

	req := &getAvailableSlots.Request{
		SalonID:  salonID,
		MasterID: getAvailableSlots.AnyMaster,
		Date:     date,
	}

	if masterIDStr != "" {
		masterID, err := strconv.ParseInt(masterIDStr, 10, 64)
		if err != nil {
			return nil, err
		}
		req.MasterID = masterID
	}

	if serviceIDsStr != "" {
		for _, part := range strings.Split(serviceIDsStr, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				return nil, err
			}
			req.ServiceIDs = append(req.ServiceIDs, id)
		}
	}

	return req, nil
}
