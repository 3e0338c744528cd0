package create_block

import (
	"time"

	"github.com/m04kA/SalonBookingService/internal/domain"
	"github.com/m04kA/SalonBookingService/internal/service/blocks/models"
)

// CreateBlockRequest HTTP request model
type CreateBlockRequest struct {
	MasterID  int64  `json:"masterId"`
	Date      string `json:"date"`                // "2025-10-15"
	TimeStart string `json:"timeStart,omitempty"` // для day_off можно не указывать
	TimeEnd   string `json:"timeEnd,omitempty"`
	Reason    string `json:"reason"` // manual | day_off
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *CreateBlockRequest) ToServiceRequest(userID, salonID int64) (*models.CreateBlockRequest, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, err
	}

	return &models.CreateBlockRequest{
		UserID:    userID,
		SalonID:   salonID,
		MasterID:  r.MasterID,
		Date:      date,
		TimeStart: r.TimeStart,
		TimeEnd:   r.TimeEnd,
		Reason:    r.Reason,
	}, nil
}
