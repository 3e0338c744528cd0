package list_blocks

import (
	"errors"
	"strconv"
	"time"

	"github.com/m04kA/SalonBookingService/internal/domain"
	"github.com/m04kA/SalonBookingService/internal/service/blocks/models"
)

var errMissingDate = errors.New("date is required")

// ToServiceRequest формирует запрос к сервису из URL и query параметров
func ToServiceRequest(userID, salonID int64, dateStr, masterIDStr string) (*models.ListBlocksRequest, error) {
	if dateStr == "" {
		return nil, errMissingDate
	}
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, err
	}

	req := &models.ListBlocksRequest{
		UserID:   userID,
		SalonID:  salonID,
		MasterID: nil, // nil - блоки всех мастеров
		Date:     date,
	}

	if masterIDStr != "" {
		masterID, err := strconv.ParseInt(masterIDStr, 10, 64)
		if err != nil {
			return nil, err
		}
		req.MasterID = &masterID
	}

	return req, nil
}
