package models

import (
	"time"

	"github.com/m04kA/SalonBookingService/internal/domain"
	"github.com/m04kA/SalonBookingService/pkg/types"
)

// Request модели

// CreateBlockRequest запрос на создание блока расписания.
// Для day_off время можно не указывать: блокируется весь день.
type CreateBlockRequest struct {
	UserID    int64     `json:"userId"`
	SalonID   int64     `json:"salonId"`
	MasterID  int64     `json:"masterId"`
	Date      time.Time `json:"date"`
	TimeStart string    `json:"timeStart,omitempty"`
	TimeEnd   string    `json:"timeEnd,omitempty"`
	Reason    string    `json:"reason"` // manual | day_off
}

// ListBlocksRequest запрос на получение блоков салона за дату
type ListBlocksRequest struct {
	UserID   int64     `json:"userId"`
	SalonID  int64     `json:"salonId"`
	MasterID *int64    `json:"masterId,omitempty"`
	Date     time.Time `json:"date"`
}

// DeleteBlockRequest запрос на удаление блока
type DeleteBlockRequest struct {
	UserID  int64 `json:"userId"`
	SalonID int64 `json:"salonId"`
	BlockID int64 `json:"blockId"`
}

// Response модели

// BlockResponse ответ с данными блока расписания
type BlockResponse struct {
	ID        int64     `json:"id"`
	SalonID   int64     `json:"salonId"`
	MasterID  int64     `json:"masterId"`
	Date      string    `json:"date"`
	TimeStart string    `json:"timeStart"`
	TimeEnd   string    `json:"timeEnd"`
	Reason    string    `json:"reason"`
	BookingID *int64    `json:"bookingId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// BlockListResponse ответ со списком блоков
type BlockListResponse struct {
	Blocks []BlockResponse `json:"blocks"`
}

// FromDomainBlock конвертирует domain модель в response
func FromDomainBlock(b *domain.ScheduleBlock) *BlockResponse {
	return &BlockResponse{
		ID:        b.ID,
		SalonID:   b.SalonID,
		MasterID:  b.MasterID,
		Date:      b.Date.Format(domain.DateFormat),
		TimeStart: b.TimeStart.String(),
		TimeEnd:   b.TimeEnd.String(),
		Reason:    string(b.Reason),
		BookingID: b.BookingID,
		CreatedAt: b.CreatedAt,
	}
}

// FromDomainBlockList конвертирует список блоков
func FromDomainBlockList(blocks []*domain.ScheduleBlock) *BlockListResponse {
	result := &BlockListResponse{Blocks: make([]BlockResponse, 0, len(blocks))}
	for _, b := range blocks {
		result.Blocks = append(result.Blocks, *FromDomainBlock(b))
	}
	return result
}

// ToDomainReason проверяет причину блока. Причина booked недоступна владельцу.
func ToDomainReason(reason string) (domain.BlockReason, bool) {
	switch domain.BlockReason(reason) {
	case domain.BlockReasonManual, domain.BlockReasonDayOff:
		return domain.BlockReason(reason), true
	default:
		return "", false
	}
}

// DayBounds границы суток для выходного дня
func DayBounds() (types.TimeString, types.TimeString) {
	return "00:00", "24:00"
}
