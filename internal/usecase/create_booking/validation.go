package create_booking

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/m04kA/SalonBookingService/internal/domain"
	"github.com/m04kA/SalonBookingService/internal/scheduling"
)

const maxIdempotencyKeyLength = 128

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.SalonID <= 0 {
		return fmt.Errorf("%w: salonID must be positive", ErrInvalidInput)
	}

	if req.MasterID < 0 {
		return fmt.Errorf("%w: masterID must not be negative", ErrInvalidInput)
	}

	if len(req.ServiceIDs) == 0 {
		return fmt.Errorf("%w: at least one service is required", ErrInvalidInput)
	}

	if len(req.ServiceIDs) > domain.MaxServicesInBundle {
		return fmt.Errorf("%w: too many services, max %d", ErrInvalidInput, domain.MaxServicesInBundle)
	}

	seen := make(map[int64]struct{}, len(req.ServiceIDs))
	for _, id := range req.ServiceIDs {
		if id <= 0 {
			return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: duplicate serviceID %d", ErrInvalidInput, id)
		}
		seen[id] = struct{}{}
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid start time: %v", ErrInvalidInput, err)
	}

	if len(req.IdempotencyKey) > maxIdempotencyKeyLength {
		return fmt.Errorf("%w: idempotency key is too long", ErrInvalidInput)
	}

	return validateContact(req)
}

// validateContact имя, email и комментарий. Телефон проверяет PhoneNormalizer.
func validateContact(req *Request) error {
	name := strings.TrimSpace(req.ClientName)
	if name == "" {
		return fmt.Errorf("%w: client name is required", ErrInvalidContact)
	}
	if len([]rune(name)) > domain.MaxClientNameLength {
		return fmt.Errorf("%w: client name is too long", ErrInvalidContact)
	}

	if req.ClientEmail != nil && strings.TrimSpace(*req.ClientEmail) != "" {
		if _, err := mail.ParseAddress(strings.TrimSpace(*req.ClientEmail)); err != nil {
			return fmt.Errorf("%w: invalid email: %v", ErrInvalidContact, err)
		}
	}

	if req.Notes != nil && len([]rune(*req.Notes)) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes must not exceed %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	return nil
}

// validateDate проверяет, что дата не в прошлом и в пределах горизонта
func validateDate(date, now time.Time, horizonDays int) error {
	if scheduling.IsDateInPast(date, now) {
		return ErrInvalidDate
	}

	if scheduling.IsBeyondHorizon(date, now, horizonDays) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, horizonDays)
	}

	return nil
}
