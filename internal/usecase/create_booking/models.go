package create_booking

import (
	"time"

	"github.com/m04kA/SalonBookingService/pkg/types"
)

// AnyMaster бронирование к первому свободному мастеру
const AnyMaster int64 = 0

// Request модель запроса на создание бронирования
type Request struct {
	SalonID        int64            // ID салона
	MasterID       int64            // ID мастера, AnyMaster - любой свободный
	ServiceIDs     []int64          // Услуги в порядке выбора
	Date           time.Time        // Дата бронирования (без времени)
	StartTime      types.TimeString // Время начала (например, "10:00")
	ClientName     string           // Имя и фамилия клиента
	ClientPhone    string           // Телефон в произвольном формате
	ClientEmail    *string          // Email (опционально)
	Notes          *string          // Комментарий (опционально)
	IdempotencyKey string           // Ключ повторной отправки (опционально)
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID              int64
	SalonID         int64
	MasterID        int64
	ServiceIDs      []int64
	BookingDate     time.Time
	StartTime       types.TimeString
	EndTime         types.TimeString
	DurationMinutes int
	Price           float64
	ClientName      string
	ClientPhone     string
	Status          string
	CreatedAt       time.Time

	// Replayed бронирование уже было создано запросом с тем же ключом идемпотентности
	Replayed bool
}
