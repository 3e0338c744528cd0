package wizard

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SalonBookingService/internal/domain"
	"github.com/m04kA/SalonBookingService/internal/scheduling"
	"github.com/m04kA/SalonBookingService/pkg/types"
)

// Step шаг мастера бронирования
type Step int

const (
	StepServices Step = iota
	StepSpecialist
	StepTime
	StepConfirm
	StepDone
)

var stepNames = [...]string{"services", "specialist", "time", "confirm", "done"}

func (s Step) String() string {
	if s < StepServices || s > StepDone {
		return fmt.Sprintf("step(%d)", int(s))
	}
	return stepNames[s]
}

// ParseStep обратное к String
func ParseStep(name string) (Step, error) {
	for i, n := range stepNames {
		if n == name {
			return Step(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown step %q", ErrNavigation, name)
}

// AnySpecialist выбор "любой свободный мастер"
const AnySpecialist int64 = 0

// Contact данные клиента
type Contact struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Email     string `json:"email,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// FullName имя и фамилия через пробел
func (c Contact) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
}

func (c Contact) isEmpty() bool {
	return c == Contact{}
}

// State состояние мастера бронирования одного клиента.
// Хранится целиком, поэтому все поля экспортируются.
type State struct {
	SalonID   int64  `json:"salonId"`
	Step      Step   `json:"step"`
	Completed []Step `json:"completed,omitempty"`

	Services   []domain.Service `json:"services,omitempty"`
	Plan       scheduling.Plan  `json:"plan"`
	Specialist *int64           `json:"specialist,omitempty"`

	Date      *time.Time         `json:"date,omitempty"`
	CloseTime types.TimeString   `json:"closeTime,omitempty"`
	Slots     []domain.Slot      `json:"slots,omitempty"`
	Selected  []types.TimeString `json:"selected,omitempty"`

	// MasterSlots доступность по мастерам при выборе "любого мастера"
	MasterSlots []scheduling.MasterSlots `json:"masterSlots,omitempty"`

	Contact         Contact `json:"contact"`
	NormalizedPhone string  `json:"normalizedPhone,omitempty"`

	BookingID        int64 `json:"bookingId,omitempty"`
	AssignedMasterID int64 `json:"assignedMasterId,omitempty"`

	ConfirmDiscard bool `json:"confirmDiscard,omitempty"`
	Closed         bool `json:"closed,omitempty"`
}

// New начальное состояние для салона
func New(salonID int64) State {
	return State{SalonID: salonID, Step: StepServices}
}

// IsCompleted пройден ли шаг
func (s State) IsCompleted(step Step) bool {
	for _, c := range s.Completed {
		if c == step {
			return true
		}
	}
	return false
}

// ServiceIDs идентификаторы выбранных услуг в порядке выбора
func (s State) ServiceIDs() []int64 {
	ids := make([]int64, len(s.Services))
	for i, svc := range s.Services {
		ids[i] = svc.ID
	}
	return ids
}

// HasSelections выбрано ли что-нибудь, что жалко потерять при закрытии
func (s State) HasSelections() bool {
	return len(s.Services) > 0 ||
		s.Specialist != nil ||
		s.Date != nil ||
		len(s.Selected) > 0 ||
		!s.Contact.isEmpty()
}

// CanDiscard можно ли удалить сессию без потери выбора клиента.
// Несохраненный выбор удаляется только после подтверждения закрытия.
func (s State) CanDiscard() error {
	if s.Closed || s.Step == StepDone || s.ConfirmDiscard || !s.HasSelections() {
		return nil
	}
	return ErrClosePending
}

// StartTime первое выбранное время
func (s State) StartTime() (types.TimeString, bool) {
	if len(s.Selected) == 0 {
		return "", false
	}
	return s.Selected[0], true
}

func (s State) clone() State {
	c := s
	c.Completed = append([]Step(nil), s.Completed...)
	c.Services = append([]domain.Service(nil), s.Services...)
	c.Slots = append([]domain.Slot(nil), s.Slots...)
	c.Selected = append([]types.TimeString(nil), s.Selected...)
	c.MasterSlots = append([]scheduling.MasterSlots(nil), s.MasterSlots...)
	if s.Specialist != nil {
		v := *s.Specialist
		c.Specialist = &v
	}
	if s.Date != nil {
		v := *s.Date
		c.Date = &v
	}
	return c
}

func (s *State) complete(step Step) {
	if !s.IsCompleted(step) {
		s.Completed = append(s.Completed, step)
	}
}

// invalidateFrom снимает отметку о прохождении шагов начиная с from и сбрасывает выбор времени
func (s *State) invalidateFrom(from Step) {
	kept := s.Completed[:0]
	for _, c := range s.Completed {
		if c < from {
			kept = append(kept, c)
		}
	}
	s.Completed = kept
	s.Selected = nil
}

func closedState(salonID int64) State {
	s := New(salonID)
	s.Closed = true
	return s
}
