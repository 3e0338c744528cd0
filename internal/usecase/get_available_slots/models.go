package get_available_slots

import (
	"time"

	"github.com/m04kA/SalonBookingService/internal/domain"
	"github.com/m04kA/SalonBookingService/internal/scheduling"
	"github.com/m04kA/SalonBookingService/pkg/types"
)

// AnyMaster запрос объединенной доступности всех мастеров салона
const AnyMaster int64 = 0

// Request модель запроса на получение слотов
type Request struct {
	SalonID    int64     // ID салона
	MasterID   int64     // ID мастера, AnyMaster - любой
	Date       time.Time // Дата (без времени)
	ServiceIDs []int64   // Услуги для расчета длительности (опционально)
}

// Response модель ответа со слотами на дату
type Response struct {
	Date      time.Time
	SalonID   int64
	MasterID  int64
	DayName   string
	IsOpen    bool
	OpenTime  types.TimeString
	CloseTime types.TimeString
	NextOpen  *scheduling.NextOpening // только для выходного дня
	Slots     []domain.Slot
	Plan      *scheduling.Plan // только если переданы услуги

	// PerMaster доступность каждого мастера, только для AnyMaster.
	// Подряд свободные слоты в Slots могут принадлежать разным мастерам.
	PerMaster []scheduling.MasterSlots

	// Starts допустимые начала для набора услуг, только если передан Plan
	Starts []types.TimeString
}
