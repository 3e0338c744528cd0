package wizard

import (
	"errors"
	"fmt"
)

var (
	// ErrStepLocked событие не относится к текущему шагу
	ErrStepLocked = errors.New("wizard: event is not allowed at this step")

	// ErrNavigation переход возможен только на пройденный предыдущий шаг
	ErrNavigation = errors.New("wizard: navigation is not allowed")

	// ErrFinished бронирование уже создано, мастер завершен
	ErrFinished = errors.New("wizard: booking is already done")

	// ErrClosed сессия закрыта, состояние сброшено
	ErrClosed = errors.New("wizard: session is closed")

	// ErrClosePending ожидается подтверждение закрытия
	ErrClosePending = errors.New("wizard: close confirmation is pending")

	// ErrNoPendingClose нечего подтверждать
	ErrNoPendingClose = errors.New("wizard: no close request to confirm")

	// ErrNoServices не выбрано ни одной услуги
	ErrNoServices = errors.New("wizard: no services selected")

	// ErrForeignService услуга принадлежит другому салону
	ErrForeignService = errors.New("wizard: service belongs to another salon")

	// ErrInvalidDuration у услуги некорректная длительность
	ErrInvalidDuration = errors.New("wizard: invalid service duration")

	// ErrSpecialistRequired мастер не выбран
	ErrSpecialistRequired = errors.New("wizard: specialist is not chosen")

	// ErrInvalidSpecialist некорректный идентификатор мастера
	ErrInvalidSpecialist = errors.New("wizard: invalid specialist")

	// ErrDateRequired дата не выбрана
	ErrDateRequired = errors.New("wizard: date is not selected")

	// ErrTimeRequired время не выбрано или выбрано не полностью
	ErrTimeRequired = errors.New("wizard: time is not selected")

	// ErrNotEnoughSlots не хватает подряд идущих свободных слотов
	ErrNotEnoughSlots = errors.New("wizard: not enough consecutive free slots")

	// ErrContactInvalid контактные данные не заполнены или некорректны
	ErrContactInvalid = errors.New("wizard: contact details are invalid")

	// ErrCommitRequired шаг подтверждения завершается только созданием бронирования
	ErrCommitRequired = errors.New("wizard: confirmation step requires commit")
)

// UnavailableError выбранное время не вмещает набор услуг
type UnavailableError struct {
	RequiredSlots int
	Minutes       int
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%v: need %d slots (%d min)", ErrNotEnoughSlots, e.RequiredSlots, e.Minutes)
}

func (e *UnavailableError) Unwrap() error {
	return ErrNotEnoughSlots
}

// UserMessage текст для клиента
func (e *UnavailableError) UserMessage() string {
	return fmt.Sprintf("Потрібно %d слотів підряд (%d хв). Оберіть інший час.", e.RequiredSlots, e.Minutes)
}
