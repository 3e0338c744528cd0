package phone

import (
	"errors"
	"fmt"
	"unicode"

	"github.com/nyaruka/phonenumbers"
)

var (
	// ErrTooShort в номере меньше цифр, чем требуется
	ErrTooShort = errors.New("phone: not enough digits")

	// ErrInvalid номер не распознан как существующий
	ErrInvalid = errors.New("phone: invalid number")
)

// Normalizer приводит номера телефонов клиентов к E.164
type Normalizer struct {
	region    string
	minDigits int
}

// NewNormalizer region - регион по умолчанию для номеров без кода страны (например, "UA")
func NewNormalizer(region string, minDigits int) *Normalizer {
	return &Normalizer{region: region, minDigits: minDigits}
}

// CountDigits количество цифр в строке
func CountDigits(raw string) int {
	count := 0
	for _, r := range raw {
		if unicode.IsDigit(r) {
			count++
		}
	}
	return count
}

// Normalize проверяет количество цифр и валидность номера, возвращает номер в формате E.164
func (n *Normalizer) Normalize(raw string) (string, error) {
	if CountDigits(raw) < n.minDigits {
		return "", fmt.Errorf("%w: need at least %d", ErrTooShort, n.minDigits)
	}

	num, err := phonenumbers.Parse(raw, n.region)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalid
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}
