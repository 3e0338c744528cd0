package wizard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SalonBookingService/internal/scheduling"
)

// PhoneNormalizer проверяет и нормализует телефон клиента
type PhoneNormalizer interface {
	Normalize(raw string) (string, error)
}

// Machine переходы мастера бронирования.
// Не хранит состояние: Apply возвращает новое состояние, входное не изменяется.
type Machine struct {
	grid  *scheduling.Grid
	phone PhoneNormalizer
}

// NewMachine создает машину переходов
func NewMachine(grid *scheduling.Grid, phone PhoneNormalizer) *Machine {
	return &Machine{grid: grid, phone: phone}
}

// Event событие мастера бронирования
type Event interface {
	apply(m *Machine, s State) (State, error)
}

// Apply применяет событие.
// При ошибке возвращается состояние после отказа: обычно исходное,
// но неудачный выбор времени сбрасывает выделение.
func (m *Machine) Apply(s State, ev Event) (State, error) {
	if s.Closed {
		return s, ErrClosed
	}

	switch ev.(type) {
	case ConfirmClose, CancelClose:
	default:
		if s.ConfirmDiscard {
			return s, ErrClosePending
		}
	}

	return ev.apply(m, s.clone())
}

// ReadyToCommit проверяет все условия перед созданием бронирования
// и возвращает состояние с нормализованным телефоном
func (m *Machine) ReadyToCommit(s State) (State, error) {
	if s.Closed {
		return s, ErrClosed
	}
	if s.Step != StepConfirm {
		return s, fmt.Errorf("%w: expected %s, got %s", ErrStepLocked, StepConfirm, s.Step)
	}

	for _, step := range []Step{StepServices, StepSpecialist, StepTime} {
		if err := m.guard(s, step); err != nil {
			return s, err
		}
	}

	next := s.clone()
	normalized, err := m.validateContact(next.Contact)
	if err != nil {
		return s, err
	}
	next.NormalizedPhone = normalized

	return next, nil
}

// guard условие выхода с шага
func (m *Machine) guard(s State, step Step) error {
	switch step {
	case StepServices:
		if len(s.Services) == 0 {
			return ErrNoServices
		}
	case StepSpecialist:
		if s.Specialist == nil {
			return ErrSpecialistRequired
		}
	case StepTime:
		if s.Date == nil {
			return ErrDateRequired
		}
		if s.Plan.RequiredSlots == 0 || len(s.Selected) != s.Plan.RequiredSlots {
			return ErrTimeRequired
		}
	case StepConfirm:
		_, err := m.validateContact(s.Contact)
		return err
	}
	return nil
}

func (m *Machine) validateContact(c Contact) (string, error) {
	if strings.TrimSpace(c.FirstName) == "" {
		return "", fmt.Errorf("%w: first name is required", ErrContactInvalid)
	}
	if strings.TrimSpace(c.LastName) == "" {
		return "", fmt.Errorf("%w: last name is required", ErrContactInvalid)
	}

	normalized, err := m.phone.Normalize(c.Phone)
	if err != nil {
		return "", fmt.Errorf("%w: phone: %v", ErrContactInvalid, err)
	}

	return normalized, nil
}

func (m *Machine) replan(s State) (State, error) {
	if len(s.Services) == 0 {
		s.Plan = scheduling.Plan{}
		return s, nil
	}

	plan, err := m.grid.Plan(s.Services)
	if err != nil {
		if errors.Is(err, scheduling.ErrInvalidDuration) {
			return s, fmt.Errorf("%w: %v", ErrInvalidDuration, err)
		}
		return s, err
	}
	s.Plan = plan

	return s, nil
}

func requireStep(s State, step Step) error {
	if s.Step == StepDone {
		return ErrFinished
	}
	if s.Step != step {
		return fmt.Errorf("%w: expected %s, got %s", ErrStepLocked, step, s.Step)
	}
	return nil
}
