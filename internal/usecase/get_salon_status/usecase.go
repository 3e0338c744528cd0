package get_salon_status

import (
	"context"
	"errors"
	"fmt"
	"strings"

	salonRepo "github.com/m04kA/SalonBookingService/internal/infra/storage/salon"
	"github.com/m04kA/SalonBookingService/internal/scheduling"
)

// UseCase статус "открыто/закрыто" для витрины салона
type UseCase struct {
	salonRepo    SalonRepository
	resolver     *scheduling.Resolver
	timeProvider TimeProvider
	logger       Logger
}

func NewUseCase(
	salonRepo SalonRepository,
	resolver *scheduling.Resolver,
	timeProvider TimeProvider,
	logger Logger,
) *UseCase {
	return &UseCase{
		salonRepo:    salonRepo,
		resolver:     resolver,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		return nil, fmt.Errorf("%w: slug is required", ErrInvalidInput)
	}

	salon, err := uc.salonRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, salonRepo.ErrSalonNotFound) {
			uc.logger.Warn("GetSalonStatus: salon slug=%s not found", slug)
			return nil, ErrSalonNotFound
		}
		uc.logger.Error("GetSalonStatus: failed to get salon slug=%s: %v", slug, err)
		return nil, fmt.Errorf("%w: failed to get salon: %v", ErrInternal, err)
	}
	if !salon.IsActive {
		uc.logger.Warn("GetSalonStatus: salon slug=%s is inactive", slug)
		return nil, ErrSalonNotFound
	}

	// Кривое расписание не ломает витрину: такие дни считаются закрытыми
	if err := uc.resolver.Validate(salon.WorkingHours); err != nil {
		uc.logger.Warn("GetSalonStatus: salon slug=%s has invalid working hours: %v", slug, err)
	}

	now := uc.timeProvider.Now()
	status := uc.resolver.LiveStatus(salon.WorkingHours, now)

	return &Response{
		SalonID:      salon.ID,
		Slug:         salon.Slug,
		Name:         salon.Name,
		Address:      salon.Address,
		IsOpen:       status.IsOpen,
		Today:        uc.resolver.DayName(now),
		OpenTime:     status.OpenTime,
		CloseTime:    status.CloseTime,
		NextOpen:     status.NextOpen,
		WorkingHours: salon.WorkingHours,
	}, nil
}
