package blocks

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SalonBookingService/internal/domain"
	blockRepo "github.com/m04kA/SalonBookingService/internal/infra/storage/block"
	masterRepo "github.com/m04kA/SalonBookingService/internal/infra/storage/master"
	salonRepo "github.com/m04kA/SalonBookingService/internal/infra/storage/salon"
	"github.com/m04kA/SalonBookingService/internal/scheduling"
	"github.com/m04kA/SalonBookingService/internal/service/blocks/models"
	"github.com/m04kA/SalonBookingService/pkg/types"
)

// Service сервис ручных блокировок расписания мастеров
type Service struct {
	blockRepo  BlockRepository
	salonRepo  SalonRepository
	masterRepo MasterRepository
	logger     Logger
}

// NewService создает новый экземпляр сервиса блокировок
func NewService(
	blockRepo BlockRepository,
	salonRepo SalonRepository,
	masterRepo MasterRepository,
	logger Logger,
) *Service {
	return &Service{
		blockRepo:  blockRepo,
		salonRepo:  salonRepo,
		masterRepo: masterRepo,
		logger:     logger,
	}
}

// Create создает блок manual или day_off.
// Доступно только владельцу салона. Пересечение с любым блоком мастера отклоняется.
func (s *Service) Create(ctx context.Context, req *models.CreateBlockRequest) (*models.BlockResponse, error) {
	s.logger.Info("Create: creating %s block for salon=%d, master=%d, date=%s by user=%d",
		req.Reason, req.SalonID, req.MasterID, req.Date.Format(domain.DateFormat), req.UserID)

	// 1. Валидируем входные данные
	block, err := s.buildBlock(req)
	if err != nil {
		s.logger.Warn("Create: validation failed: %v", err)
		return nil, err
	}

	// 2. Проверяем права доступа
	if err := s.checkOwnerAccess(ctx, "Create", req.SalonID, req.UserID); err != nil {
		return nil, err
	}

	// 3. Мастер должен работать в этом салоне
	master, err := s.masterRepo.GetByID(ctx, req.MasterID)
	if err != nil {
		if errors.Is(err, masterRepo.ErrMasterNotFound) {
			s.logger.Warn("Create: master id=%d not found", req.MasterID)
			return nil, ErrMasterNotFound
		}
		s.logger.Error("Create: failed to get master id=%d: %v", req.MasterID, err)
		return nil, fmt.Errorf("%w: Create - failed to get master: %v", ErrInternal, err)
	}
	if master.SalonID != req.SalonID {
		s.logger.Warn("Create: master id=%d belongs to salon=%d, not %d", master.ID, master.SalonID, req.SalonID)
		return nil, ErrMasterNotFound
	}

	// 4. Создаем блок, пересечение проверяет ограничение БД
	created, err := s.blockRepo.Create(ctx, block)
	if err != nil {
		if errors.Is(err, blockRepo.ErrBlockOverlap) {
			s.logger.Warn("Create: interval %s-%s overlaps existing block of master=%d",
				block.TimeStart, block.TimeEnd, block.MasterID)
			return nil, ErrBlockOverlap
		}
		s.logger.Error("Create: repository error: %v", err)
		return nil, fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Create: successfully created block id=%d", created.ID)
	return models.FromDomainBlock(created), nil
}

// List возвращает блоки салона за дату, опционально по одному мастеру
func (s *Service) List(ctx context.Context, req *models.ListBlocksRequest) (*models.BlockListResponse, error) {
	s.logger.Info("List: fetching blocks for salon=%d, date=%s by user=%d",
		req.SalonID, req.Date.Format(domain.DateFormat), req.UserID)

	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if err := s.checkOwnerAccess(ctx, "List", req.SalonID, req.UserID); err != nil {
		return nil, err
	}

	blocks, err := s.blockRepo.ListBySalonAndDate(ctx, req.SalonID, req.MasterID, scheduling.DateOnly(req.Date))
	if err != nil {
		s.logger.Error("List: repository error for salon=%d: %v", req.SalonID, err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("List: successfully fetched %d blocks for salon=%d", len(blocks), req.SalonID)
	return models.FromDomainBlockList(blocks), nil
}

// Delete удаляет ручной блок. Блоки бронирований освобождаются только отменой бронирования.
func (s *Service) Delete(ctx context.Context, req *models.DeleteBlockRequest) error {
	s.logger.Info("Delete: deleting block id=%d of salon=%d by user=%d", req.BlockID, req.SalonID, req.UserID)

	if err := s.checkOwnerAccess(ctx, "Delete", req.SalonID, req.UserID); err != nil {
		return err
	}

	block, err := s.blockRepo.GetByID(ctx, req.BlockID)
	if err != nil {
		if errors.Is(err, blockRepo.ErrBlockNotFound) {
			s.logger.Warn("Delete: block id=%d not found", req.BlockID)
			return ErrBlockNotFound
		}
		s.logger.Error("Delete: failed to get block id=%d: %v", req.BlockID, err)
		return fmt.Errorf("%w: Delete - failed to get block: %v", ErrInternal, err)
	}

	// Блок другого салона для владельца не существует
	if block.SalonID != req.SalonID {
		s.logger.Warn("Delete: block id=%d belongs to salon=%d", req.BlockID, block.SalonID)
		return ErrBlockNotFound
	}

	if block.IsBooking() {
		s.logger.Warn("Delete: block id=%d belongs to booking, rejecting", req.BlockID)
		return ErrBookingBlock
	}

	if err := s.blockRepo.Delete(ctx, req.BlockID); err != nil {
		if errors.Is(err, blockRepo.ErrBlockNotFound) {
			return ErrBlockNotFound
		}
		s.logger.Error("Delete: repository error for block id=%d: %v", req.BlockID, err)
		return fmt.Errorf("%w: Delete - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Delete: successfully deleted block id=%d", req.BlockID)
	return nil
}

// Вспомогательные методы

func (s *Service) buildBlock(req *models.CreateBlockRequest) (*domain.ScheduleBlock, error) {
	if req.SalonID <= 0 || req.MasterID <= 0 {
		return nil, fmt.Errorf("%w: salonId and masterId are required", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	reason, ok := models.ToDomainReason(req.Reason)
	if !ok {
		return nil, fmt.Errorf("%w: reason must be manual or day_off", ErrInvalidInput)
	}

	var start, end types.TimeString
	if reason == domain.BlockReasonDayOff && req.TimeStart == "" && req.TimeEnd == "" {
		start, end = models.DayBounds()
	} else {
		var err error
		if start, err = types.NewTimeStringFromString(req.TimeStart); err != nil {
			return nil, fmt.Errorf("%w: timeStart: %v", ErrInvalidInput, err)
		}
		if end, err = types.NewTimeStringFromString(req.TimeEnd); err != nil {
			return nil, fmt.Errorf("%w: timeEnd: %v", ErrInvalidInput, err)
		}
	}

	if !start.IsBefore(end) {
		return nil, fmt.Errorf("%w: timeStart must be before timeEnd", ErrInvalidInput)
	}

	return &domain.ScheduleBlock{
		SalonID:   req.SalonID,
		MasterID:  req.MasterID,
		Date:      scheduling.DateOnly(req.Date),
		TimeStart: start,
		TimeEnd:   end,
		IsBlocked: true,
		Reason:    reason,
	}, nil
}

// checkOwnerAccess проверяет, что пользователь является владельцем салона
func (s *Service) checkOwnerAccess(ctx context.Context, op string, salonID, userID int64) error {
	salon, err := s.salonRepo.GetByID(ctx, salonID)
	if err != nil {
		if errors.Is(err, salonRepo.ErrSalonNotFound) {
			s.logger.Warn("%s: salon id=%d not found", op, salonID)
			return ErrSalonNotFound
		}
		s.logger.Error("%s: failed to get salon id=%d: %v", op, salonID, err)
		return fmt.Errorf("%w: %s - failed to get salon: %v", ErrInternal, op, err)
	}

	if salon.OwnerID != userID {
		s.logger.Warn("%s: user=%d is not the owner of salon=%d", op, userID, salonID)
		return ErrAccessDenied
	}

	return nil
}
