package wizard

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SalonBookingService/internal/domain"
	"github.com/m04kA/SalonBookingService/internal/scheduling"
	"github.com/m04kA/SalonBookingService/pkg/types"
)

// ToggleService добавляет услугу в набор или убирает её
type ToggleService struct {
	Service domain.Service
}

func (e ToggleService) apply(m *Machine, s State) (State, error) {
	if err := requireStep(s, StepServices); err != nil {
		return s, err
	}
	if e.Service.SalonID != s.SalonID {
		return s, ErrForeignService
	}

	removed := false
	services := make([]domain.Service, 0, len(s.Services)+1)
	for _, svc := range s.Services {
		if svc.ID == e.Service.ID {
			removed = true
			continue
		}
		services = append(services, svc)
	}
	if !removed {
		services = append(services, e.Service)
	}

	prev := s
	s.Services = services
	s, err := m.replan(s)
	if err != nil {
		return prev, err
	}

	// длительность изменилась, ранее выбранное время больше не подходит
	s.invalidateFrom(StepTime)
	return s, nil
}

// ChooseSpecialist выбор мастера, AnySpecialist - любой свободный
type ChooseSpecialist struct {
	MasterID int64
}

func (e ChooseSpecialist) apply(_ *Machine, s State) (State, error) {
	if err := requireStep(s, StepSpecialist); err != nil {
		return s, err
	}
	if e.MasterID < 0 {
		return s, ErrInvalidSpecialist
	}

	if s.Specialist != nil && *s.Specialist == e.MasterID {
		return s, nil
	}

	id := e.MasterID
	s.Specialist = &id

	// доступность считалась для другого мастера
	s.Date = nil
	s.Slots = nil
	s.MasterSlots = nil
	s.CloseTime = ""
	s.invalidateFrom(StepTime)

	return s, nil
}

// SelectDate выбор даты вместе с её доступностью.
// MasterSlots передается для "любого мастера": время выбирается у одного мастера.
type SelectDate struct {
	Date        time.Time
	Slots       []domain.Slot
	MasterSlots []scheduling.MasterSlots
	CloseTime   types.TimeString
}

func (e SelectDate) apply(_ *Machine, s State) (State, error) {
	if err := requireStep(s, StepTime); err != nil {
		return s, err
	}

	d := scheduling.DateOnly(e.Date)
	s.Date = &d
	s.Slots = append([]domain.Slot(nil), e.Slots...)
	s.MasterSlots = append([]scheduling.MasterSlots(nil), e.MasterSlots...)
	s.CloseTime = e.CloseTime
	s.Selected = nil

	return s, nil
}

// PickStart выбор времени начала: занимает RequiredSlots подряд идущих слотов
type PickStart struct {
	Time types.TimeString
}

func (e PickStart) apply(_ *Machine, s State) (State, error) {
	if err := requireStep(s, StepTime); err != nil {
		return s, err
	}
	if s.Date == nil {
		return s, ErrDateRequired
	}
	if s.Plan.RequiredSlots == 0 {
		return s, ErrNoServices
	}

	unavailable := &UnavailableError{RequiredSlots: s.Plan.RequiredSlots, Minutes: s.Plan.RoundedMinutes}

	var (
		run []types.TimeString
		err error
	)
	if len(s.MasterSlots) > 0 {
		run, _, err = scheduling.RunForAny(s.MasterSlots, e.Time, s.Plan.RequiredSlots)
	} else {
		run, err = scheduling.ContiguousRun(s.Slots, e.Time, s.Plan.RequiredSlots)
	}
	if err != nil {
		s.Selected = nil
		if errors.Is(err, scheduling.ErrNotEnoughSlots) || errors.Is(err, scheduling.ErrSlotNotFound) {
			return s, unavailable
		}
		return s, err
	}

	if s.CloseTime != "" && !s.Plan.FitsBefore(e.Time, s.CloseTime) {
		s.Selected = nil
		return s, unavailable
	}

	s.Selected = run
	return s, nil
}

// SetContact контактные данные клиента. Проверяются при подтверждении.
type SetContact struct {
	Contact Contact
}

func (e SetContact) apply(_ *Machine, s State) (State, error) {
	if err := requireStep(s, StepConfirm); err != nil {
		return s, err
	}
	s.Contact = e.Contact
	s.NormalizedPhone = ""
	return s, nil
}

// Next переход на следующий шаг при выполненном условии текущего
type Next struct{}

func (Next) apply(m *Machine, s State) (State, error) {
	switch s.Step {
	case StepDone:
		return s, ErrFinished
	case StepConfirm:
		return s, ErrCommitRequired
	}

	if err := m.guard(s, s.Step); err != nil {
		return s, err
	}

	s.complete(s.Step)
	s.Step++
	return s, nil
}

// Back возврат на предыдущий шаг
type Back struct{}

func (Back) apply(_ *Machine, s State) (State, error) {
	if s.Step == StepDone {
		return s, ErrFinished
	}
	if s.Step == StepServices {
		return s, ErrNavigation
	}
	s.Step--
	return s, nil
}

// GoTo переход на пройденный ранее шаг
type GoTo struct {
	Step Step
}

func (e GoTo) apply(_ *Machine, s State) (State, error) {
	if s.Step == StepDone {
		return s, ErrFinished
	}
	if e.Step >= s.Step || !s.IsCompleted(e.Step) {
		return s, fmt.Errorf("%w: %s -> %s", ErrNavigation, s.Step, e.Step)
	}
	s.Step = e.Step
	return s, nil
}

// MarkCommitted бронирование создано
type MarkCommitted struct {
	BookingID int64
	MasterID  int64
}

func (e MarkCommitted) apply(m *Machine, s State) (State, error) {
	ready, err := m.ReadyToCommit(s)
	if err != nil {
		return s, err
	}

	ready.complete(StepConfirm)
	ready.Step = StepDone
	ready.BookingID = e.BookingID
	ready.AssignedMasterID = e.MasterID

	return ready, nil
}

// CommitRejected время заняли, пока клиент заполнял данные.
// Возвращает на выбор времени с обновленной доступностью.
type CommitRejected struct {
	Slots       []domain.Slot
	MasterSlots []scheduling.MasterSlots
}

func (e CommitRejected) apply(_ *Machine, s State) (State, error) {
	if err := requireStep(s, StepConfirm); err != nil {
		return s, err
	}

	s.Slots = append([]domain.Slot(nil), e.Slots...)
	s.MasterSlots = append([]scheduling.MasterSlots(nil), e.MasterSlots...)
	s.invalidateFrom(StepTime)
	s.Step = StepTime

	return s, nil
}

// RequestClose закрытие мастера. При несохраненном выборе требует подтверждения.
type RequestClose struct{}

func (RequestClose) apply(_ *Machine, s State) (State, error) {
	if s.Step == StepDone || !s.HasSelections() {
		return closedState(s.SalonID), nil
	}
	s.ConfirmDiscard = true
	return s, nil
}

// ConfirmClose подтверждение закрытия с потерей выбора
type ConfirmClose struct{}

func (ConfirmClose) apply(_ *Machine, s State) (State, error) {
	if !s.ConfirmDiscard {
		return s, ErrNoPendingClose
	}
	return closedState(s.SalonID), nil
}

// CancelClose отказ от закрытия
type CancelClose struct{}

func (CancelClose) apply(_ *Machine, s State) (State, error) {
	if !s.ConfirmDiscard {
		return s, ErrNoPendingClose
	}
	s.ConfirmDiscard = false
	return s, nil
}
