package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SalonBookingService/internal/domain"
	masterRepo "github.com/m04kA/SalonBookingService/internal/infra/storage/master"
	salonRepo "github.com/m04kA/SalonBookingService/internal/infra/storage/salon"
	"github.com/m04kA/SalonBookingService/internal/scheduling"
	"github.com/m04kA/SalonBookingService/pkg/types"
)

// UseCase use case для получения слотов мастера (или любого мастера) на дату
type UseCase struct {
	salonRepo    SalonRepository
	masterRepo   MasterRepository
	blockRepo    BlockRepository
	serviceRepo  ServiceRepository
	resolver     *scheduling.Resolver
	grid         *scheduling.Grid
	horizonDays  int
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	salonRepo SalonRepository,
	masterRepo MasterRepository,
	blockRepo BlockRepository,
	serviceRepo ServiceRepository,
	resolver *scheduling.Resolver,
	grid *scheduling.Grid,
	horizonDays int,
	timeProvider TimeProvider,
	logger Logger,
) *UseCase {
	if timeProvider == nil {
		timeProvider = &RealTimeProvider{}
	}
	return &UseCase{
		salonRepo:    salonRepo,
		masterRepo:   masterRepo,
		blockRepo:    blockRepo,
		serviceRepo:  serviceRepo,
		resolver:     resolver,
		grid:         grid,
		horizonDays:  horizonDays,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Execute выполняет use case получения слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: salon=%d, master=%d, date=%s, services=%v",
		req.SalonID, req.MasterID, req.Date.Format(domain.DateFormat), req.ServiceIDs)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	// 2. Дата не в прошлом и в пределах горизонта
	if err := validateDate(req.Date, now, uc.horizonDays); err != nil {
		uc.logger.Warn("GetAvailableSlots: date validation failed: %v", err)
		return nil, err
	}

	// 3. Получаем салон
	salon, err := uc.salonRepo.GetByID(ctx, req.SalonID)
	if err != nil {
		if errors.Is(err, salonRepo.ErrSalonNotFound) {
			uc.logger.Warn("GetAvailableSlots: salon id=%d not found", req.SalonID)
			return nil, ErrSalonNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get salon id=%d: %v", req.SalonID, err)
		return nil, fmt.Errorf("%w: failed to get salon: %v", ErrInternal, err)
	}
	if !salon.IsActive {
		uc.logger.Warn("GetAvailableSlots: salon id=%d is inactive", req.SalonID)
		return nil, ErrSalonNotFound
	}

	response := &Response{
		Date:     scheduling.DateOnly(req.Date),
		SalonID:  req.SalonID,
		MasterID: req.MasterID,
		DayName:  uc.resolver.DayName(req.Date),
		Slots:    []domain.Slot{},
	}

	// 4. Длительность выбранных услуг
	if len(req.ServiceIDs) > 0 {
		plan, err := uc.plan(ctx, req)
		if err != nil {
			return nil, err
		}
		response.Plan = &plan
	}

	// 5. Определяем мастеров
	masters, err := uc.masters(ctx, req)
	if err != nil {
		return nil, err
	}

	// 6. Часы работы на дату
	day := uc.resolver.Resolve(salon.WorkingHours, req.Date)
	if !day.IsOpen {
		uc.logger.Info("GetAvailableSlots: salon id=%d is closed on %s", req.SalonID, req.Date.Format(domain.DateFormat))
		response.NextOpen = day.NextOpen
		return response, nil
	}
	response.IsOpen = true
	response.OpenTime = day.OpenTime
	response.CloseTime = day.CloseTime

	// 7. Сетка и фильтрация по блокам каждого мастера
	grid := uc.grid.Generate(day.OpenTime, day.CloseTime)
	perMaster := make([]scheduling.MasterSlots, 0, len(masters))
	for _, master := range masters {
		blocks, err := uc.blockRepo.ListByMasterAndDate(ctx, req.SalonID, master.ID, req.Date)
		if err != nil {
			uc.logger.Error("GetAvailableSlots: failed to get blocks for master id=%d: %v", master.ID, err)
			return nil, fmt.Errorf("%w: failed to get schedule blocks: %v", ErrInternal, err)
		}
		perMaster = append(perMaster, scheduling.MasterSlots{MasterID: master.ID, Slots: uc.grid.Filter(grid, blocks)})
	}

	// 8. Сегодня уже начавшиеся слоты недоступны
	if scheduling.IsSameDay(req.Date, now) {
		current := types.NewTimeString(now)
		for _, ms := range perMaster {
			scheduling.MarkPast(ms.Slots, current)
		}
	}

	// 9. Для "любого мастера" слот свободен, если свободен хоть у кого-то
	switch {
	case len(perMaster) == 0:
		response.Slots = uc.grid.Filter(grid, nil)
		for i := range response.Slots {
			response.Slots[i].Available = false
		}
	case len(perMaster) == 1:
		response.Slots = perMaster[0].Slots
	default:
		slots := make([][]domain.Slot, len(perMaster))
		for i, ms := range perMaster {
			slots[i] = ms.Slots
		}
		response.Slots = scheduling.MergeAny(slots...)
	}
	if req.MasterID == AnyMaster {
		response.PerMaster = perMaster
	}

	// 10. Начала, с которых весь набор услуг помещается у одного мастера и до закрытия
	if response.Plan != nil {
		response.Starts = make([]types.TimeString, 0)
		for _, start := range scheduling.RunStarts(perMaster, response.Plan.RequiredSlots) {
			if response.Plan.FitsBefore(start, day.CloseTime) {
				response.Starts = append(response.Starts, start)
			}
		}
	}

	uc.logger.Info("GetAvailableSlots: salon=%d, master=%d, %d slots, %d available",
		req.SalonID, req.MasterID, len(response.Slots), countAvailable(response.Slots))
	return response, nil
}

// masters возвращает выбранного мастера или всех активных мастеров салона
func (uc *UseCase) masters(ctx context.Context, req *Request) ([]*domain.Master, error) {
	if req.MasterID == AnyMaster {
		masters, err := uc.masterRepo.ListActiveBySalon(ctx, req.SalonID)
		if err != nil {
			uc.logger.Error("GetAvailableSlots: failed to list masters for salon id=%d: %v", req.SalonID, err)
			return nil, fmt.Errorf("%w: failed to list masters: %v", ErrInternal, err)
		}
		if len(masters) == 0 {
			uc.logger.Warn("GetAvailableSlots: salon id=%d has no active masters", req.SalonID)
		}
		return masters, nil
	}

	master, err := uc.masterRepo.GetByID(ctx, req.MasterID)
	if err != nil {
		if errors.Is(err, masterRepo.ErrMasterNotFound) {
			uc.logger.Warn("GetAvailableSlots: master id=%d not found", req.MasterID)
			return nil, ErrMasterNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get master id=%d: %v", req.MasterID, err)
		return nil, fmt.Errorf("%w: failed to get master: %v", ErrInternal, err)
	}
	if master.SalonID != req.SalonID || !master.IsActive {
		uc.logger.Warn("GetAvailableSlots: master id=%d is not available in salon id=%d", req.MasterID, req.SalonID)
		return nil, ErrMasterNotFound
	}

	return []*domain.Master{master}, nil
}

// plan считает длительность выбранных услуг
func (uc *UseCase) plan(ctx context.Context, req *Request) (scheduling.Plan, error) {
	services, err := uc.serviceRepo.GetByIDs(ctx, req.SalonID, req.ServiceIDs)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get services: %v", err)
		return scheduling.Plan{}, fmt.Errorf("%w: failed to get services: %v", ErrInternal, err)
	}
	if len(services) != len(req.ServiceIDs) {
		uc.logger.Warn("GetAvailableSlots: requested %d services, found %d in salon id=%d",
			len(req.ServiceIDs), len(services), req.SalonID)
		return scheduling.Plan{}, ErrServiceNotFound
	}

	plan, err := uc.grid.Plan(services)
	if err != nil {
		uc.logger.Warn("GetAvailableSlots: failed to plan services: %v", err)
		return scheduling.Plan{}, fmt.Errorf("%w: %v", ErrInvalidDuration, err)
	}

	return plan, nil
}

func countAvailable(slots []domain.Slot) int {
	count := 0
	for _, slot := range slots {
		if slot.Available {
			count++
		}
	}
	return count
}
