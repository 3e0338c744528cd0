package booking_session

import (
	"context"
	"errors"
	"fmt"
	"time"

	sessionStore "github.com/m04kA/SalonBookingService/internal/infra/session"
	salonRepo "github.com/m04kA/SalonBookingService/internal/infra/storage/salon"
	"github.com/m04kA/SalonBookingService/internal/scheduling"
	createBooking "github.com/m04kA/SalonBookingService/internal/usecase/create_booking"
	getAvailableSlots "github.com/m04kA/SalonBookingService/internal/usecase/get_available_slots"
	"github.com/m04kA/SalonBookingService/internal/wizard"
)

// idempotencyPrefix ключ идемпотентности бронирования из сессии
const idempotencyPrefix = "session:"

// UseCase ведет мастер бронирования клиента между HTTP запросами.
// Состояние хранится в Redis, переходы выполняет wizard.Machine.
type UseCase struct {
	store         SessionStore
	machine       *wizard.Machine
	salonRepo     SalonRepository
	serviceRepo   ServiceRepository
	slots         SlotsUseCase
	createBooking CreateBookingUseCase
	logger        Logger
}

func NewUseCase(
	store SessionStore,
	machine *wizard.Machine,
	salonRepo SalonRepository,
	serviceRepo ServiceRepository,
	slots SlotsUseCase,
	createBooking CreateBookingUseCase,
	logger Logger,
) *UseCase {
	return &UseCase{
		store:         store,
		machine:       machine,
		salonRepo:     salonRepo,
		serviceRepo:   serviceRepo,
		slots:         slots,
		createBooking: createBooking,
		logger:        logger,
	}
}

// Start создает сессию для активного салона
func (uc *UseCase) Start(ctx context.Context, req *StartRequest) (*Response, error) {
	salon, err := uc.salonRepo.GetByID(ctx, req.SalonID)
	if err != nil {
		if errors.Is(err, salonRepo.ErrSalonNotFound) {
			return nil, ErrSalonNotFound
		}
		uc.logger.Error("BookingSession.Start: failed to get salon id=%d: %v", req.SalonID, err)
		return nil, fmt.Errorf("%w: failed to get salon: %v", ErrInternal, err)
	}
	if !salon.IsActive {
		return nil, ErrSalonNotFound
	}

	state := wizard.New(salon.ID)
	id, err := uc.store.Create(ctx, state)
	if err != nil {
		uc.logger.Error("BookingSession.Start: failed to create session: %v", err)
		return nil, fmt.Errorf("%w: failed to create session: %v", ErrInternal, err)
	}

	uc.logger.Info("BookingSession.Start: session=%s started for salon=%d", id, salon.ID)
	return &Response{SessionID: id, State: state}, nil
}

// Get текущее состояние сессии
func (uc *UseCase) Get(ctx context.Context, id string) (*Response, error) {
	state, err := uc.store.Get(ctx, id)
	if err != nil {
		return nil, uc.storeError("Get", id, err)
	}
	return &Response{SessionID: id, State: state}, nil
}

// Delete удаляет сессию. Сессию с несохраненным выбором сначала нужно закрыть с подтверждением.
func (uc *UseCase) Delete(ctx context.Context, id string) error {
	if err := uc.store.DeleteIf(ctx, id, wizard.State.CanDiscard); err != nil {
		if errors.Is(err, wizard.ErrClosePending) {
			uc.logger.Warn("BookingSession.Delete: session=%s has unsaved selections", id)
			return err
		}
		return uc.storeError("Delete", id, err)
	}
	uc.logger.Info("BookingSession.Delete: session=%s deleted", id)
	return nil
}

// Apply применяет событие клиента к сессии.
// При конфликте подтверждения возвращает и обновленную сессию, и ErrSlotConflict.
func (uc *UseCase) Apply(ctx context.Context, req *EventRequest) (*Response, error) {
	resp := &Response{SessionID: req.SessionID}
	var conflict error

	state, err := uc.store.Update(ctx, req.SessionID, func(s wizard.State) (wizard.State, error) {
		resp.NextOpen, resp.Message, conflict = nil, "", nil
		return uc.apply(ctx, req, s, resp, &conflict)
	})
	if err != nil {
		var unavailable *wizard.UnavailableError
		if errors.As(err, &unavailable) {
			// отказ в выборе времени сбрасывает выделение, сохраняем это
			resp.Message = unavailable.UserMessage()
			if cleared, cerr := uc.clearSelection(ctx, req.SessionID); cerr == nil {
				resp.State = cleared
			}
			return resp, err
		}
		return nil, uc.storeError("Apply", req.SessionID, err)
	}

	resp.State = state
	if conflict != nil {
		return resp, conflict
	}
	return resp, nil
}

func (uc *UseCase) apply(ctx context.Context, req *EventRequest, s wizard.State, resp *Response, conflict *error) (wizard.State, error) {
	switch req.Type {
	case EventToggleService:
		services, err := uc.serviceRepo.GetByIDs(ctx, s.SalonID, []int64{req.ServiceID})
		if err != nil {
			return s, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
		}
		if len(services) == 0 {
			return s, ErrServiceNotFound
		}
		return uc.machine.Apply(s, wizard.ToggleService{Service: services[0]})

	case EventChooseSpecialist:
		return uc.machine.Apply(s, wizard.ChooseSpecialist{MasterID: req.MasterID})

	case EventSelectDate:
		if req.Date.IsZero() {
			return s, fmt.Errorf("%w: date is required", ErrInvalidEvent)
		}
		if s.Specialist == nil || s.Step != wizard.StepTime || s.Closed || s.ConfirmDiscard {
			// сообщение об ошибке шага даст сама машина
			return uc.machine.Apply(s, wizard.SelectDate{Date: req.Date})
		}
		availability, err := uc.availability(ctx, s, *s.Specialist, scheduling.DateOnly(req.Date))
		if err != nil {
			return s, err
		}
		resp.NextOpen = availability.NextOpen
		return uc.machine.Apply(s, wizard.SelectDate{
			Date:        req.Date,
			Slots:       availability.Slots,
			MasterSlots: availability.PerMaster,
			CloseTime:   availability.CloseTime,
		})

	case EventPickStart:
		return uc.machine.Apply(s, wizard.PickStart{Time: req.Time})

	case EventSetContact:
		return uc.machine.Apply(s, wizard.SetContact{Contact: req.Contact})

	case EventNext:
		if s.Step == wizard.StepConfirm && !s.Closed && !s.ConfirmDiscard {
			return uc.commit(ctx, req.SessionID, s, conflict)
		}
		return uc.machine.Apply(s, wizard.Next{})

	case EventBack:
		return uc.machine.Apply(s, wizard.Back{})

	case EventGoTo:
		step, err := wizard.ParseStep(req.Step)
		if err != nil {
			return s, err
		}
		return uc.machine.Apply(s, wizard.GoTo{Step: step})

	case EventClose:
		return uc.machine.Apply(s, wizard.RequestClose{})

	case EventConfirmClose:
		return uc.machine.Apply(s, wizard.ConfirmClose{})

	case EventCancelClose:
		return uc.machine.Apply(s, wizard.CancelClose{})

	default:
		return s, fmt.Errorf("%w: unknown type %q", ErrInvalidEvent, req.Type)
	}
}

// commit создает бронирование из подтвержденного состояния.
// Ключ идемпотентности привязан к сессии, поэтому повтор не создаст второе бронирование.
func (uc *UseCase) commit(ctx context.Context, sessionID string, s wizard.State, conflict *error) (wizard.State, error) {
	ready, err := uc.machine.ReadyToCommit(s)
	if err != nil {
		return s, err
	}

	start, _ := ready.StartTime()
	req := &createBooking.Request{
		SalonID:        ready.SalonID,
		MasterID:       *ready.Specialist,
		ServiceIDs:     ready.ServiceIDs(),
		Date:           *ready.Date,
		StartTime:      start,
		ClientName:     ready.Contact.FullName(),
		ClientPhone:    ready.NormalizedPhone,
		IdempotencyKey: idempotencyPrefix + sessionID,
	}
	if ready.Contact.Email != "" {
		email := ready.Contact.Email
		req.ClientEmail = &email
	}
	if ready.Contact.Notes != "" {
		notes := ready.Contact.Notes
		req.Notes = &notes
	}

	result, err := uc.createBooking.Execute(ctx, req)
	if err != nil {
		if !isRejection(err) {
			return s, err
		}

		uc.logger.Warn("BookingSession.commit: session=%s rejected: %v", sessionID, err)
		availability, aerr := uc.availability(ctx, s, *s.Specialist, *s.Date)
		if aerr != nil {
			return s, aerr
		}
		rejected, rerr := uc.machine.Apply(s, wizard.CommitRejected{
			Slots:       availability.Slots,
			MasterSlots: availability.PerMaster,
		})
		if rerr != nil {
			return s, rerr
		}
		*conflict = fmt.Errorf("%w: %v", ErrSlotConflict, err)
		return rejected, nil
	}

	uc.logger.Info("BookingSession.commit: session=%s committed booking id=%d", sessionID, result.ID)
	return uc.machine.Apply(ready, wizard.MarkCommitted{BookingID: result.ID, MasterID: result.MasterID})
}

// availability доступность на дату для выбранного мастера и набора услуг
func (uc *UseCase) availability(ctx context.Context, s wizard.State, masterID int64, date time.Time) (*getAvailableSlots.Response, error) {
	result, err := uc.slots.Execute(ctx, &getAvailableSlots.Request{
		SalonID:    s.SalonID,
		MasterID:   masterID,
		Date:       date,
		ServiceIDs: s.ServiceIDs(),
	})
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrInvalidDate), errors.Is(err, getAvailableSlots.ErrDateTooFarInFuture):
			return nil, fmt.Errorf("%w: %v", ErrInvalidDate, err)
		case errors.Is(err, getAvailableSlots.ErrSalonNotFound):
			return nil, ErrSalonNotFound
		case errors.Is(err, getAvailableSlots.ErrMasterNotFound):
			return nil, fmt.Errorf("%w: %v", wizard.ErrInvalidSpecialist, err)
		case errors.Is(err, getAvailableSlots.ErrServiceNotFound):
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("%w: availability: %v", ErrInternal, err)
	}
	return result, nil
}

// clearSelection сохраняет сброс выделения после неудачного выбора времени
func (uc *UseCase) clearSelection(ctx context.Context, id string) (wizard.State, error) {
	return uc.store.Update(ctx, id, func(s wizard.State) (wizard.State, error) {
		s.Selected = nil
		return s, nil
	})
}

// isRejection отказ, после которого клиенту нужно выбрать другое время
func isRejection(err error) bool {
	return errors.Is(err, createBooking.ErrSlotConflict) ||
		errors.Is(err, createBooking.ErrTooLateToBook) ||
		errors.Is(err, createBooking.ErrOutsideWorkingHours) ||
		errors.Is(err, createBooking.ErrSalonClosed)
}

func (uc *UseCase) storeError(op, id string, err error) error {
	if errors.Is(err, sessionStore.ErrSessionNotFound) {
		uc.logger.Warn("BookingSession.%s: session=%s not found", op, id)
		return ErrSessionNotFound
	}
	if errors.Is(err, sessionStore.ErrStore) || errors.Is(err, sessionStore.ErrDecode) || errors.Is(err, sessionStore.ErrConcurrentUpdate) {
		uc.logger.Error("BookingSession.%s: session=%s store error: %v", op, id, err)
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return err
}
