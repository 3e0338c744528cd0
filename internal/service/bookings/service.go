package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SalonBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SalonBookingService/internal/infra/storage/booking"
	salonRepo "github.com/m04kA/SalonBookingService/internal/infra/storage/salon"
	"github.com/m04kA/SalonBookingService/internal/service/bookings/models"
	"github.com/m04kA/SalonBookingService/pkg/tracing"
)

// Service сервис управления бронированиями для владельцев салонов
type Service struct {
	bookingRepo BookingRepository
	blockRepo   BlockRepository
	salonRepo   SalonRepository
	outboxRepo  OutboxRepository
	txManager   TransactionManager
	logger      Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	blockRepo BlockRepository,
	salonRepo SalonRepository,
	outboxRepo OutboxRepository,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo: bookingRepo,
		blockRepo:   blockRepo,
		salonRepo:   salonRepo,
		outboxRepo:  outboxRepo,
		txManager:   txManager,
		logger:      logger,
	}
}

// GetCard возвращает карточку бронирования с названиями салона, мастера и услуг.
// Доступно только владельцу салона, владелец берется из той же выборки.
func (s *Service) GetCard(ctx context.Context, id int64, userID int64) (*models.BookingCardResponse, error) {
	s.logger.Info("GetCard: fetching booking id=%d for user=%d", id, userID)

	details, err := s.bookingRepo.GetDetails(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetCard: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetCard: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetCard - repository error: %v", ErrInternal, err)
	}

	if details.SalonOwnerID != userID {
		s.logger.Warn("GetCard: access denied for user=%d to booking id=%d of salon=%d",
			userID, id, details.Booking.SalonID)
		return nil, ErrAccessDenied
	}

	return models.FromDomainBookingDetails(details), nil
}

// GetSalonBookings получает бронирования салона с фильтрацией по мастеру, дате и статусу.
// По умолчанию отменённые бронирования не возвращаются.
func (s *Service) GetSalonBookings(ctx context.Context, req *models.GetSalonBookingsRequest) (*models.BookingListResponse, error) {
	logMsg := fmt.Sprintf("GetSalonBookings: fetching bookings for salon=%d, user=%d", req.SalonID, req.UserID)
	if req.MasterID != nil {
		logMsg += fmt.Sprintf(", master=%d", *req.MasterID)
	}
	if req.Date != nil {
		logMsg += fmt.Sprintf(", date=%s", req.Date.Format(domain.DateFormat))
	}
	if req.Status != nil {
		logMsg += fmt.Sprintf(", status=%s", *req.Status)
	}
	s.logger.Info(logMsg)

	if err := s.checkOwnerAccess(ctx, req.SalonID, req.UserID); err != nil {
		return nil, err
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetSalonBookings: invalid filter for salon=%d: %v", req.SalonID, err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	bookings, err := s.bookingRepo.GetBySalonWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetSalonBookings: repository error for salon=%d: %v", req.SalonID, err)
		return nil, fmt.Errorf("%w: GetSalonBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetSalonBookings: successfully fetched %d bookings for salon=%d", len(bookings), req.SalonID)
	return models.FromDomainBookingList(bookings), nil
}

// Cancel отменяет бронирование и освобождает слоты мастера.
// Повторная отмена ничего не меняет, завершённое бронирование отменить нельзя.
func (s *Service) Cancel(ctx context.Context, bookingID int64, req *models.CancelBookingRequest) error {
	s.logger.Info("Cancel: cancelling booking id=%d by user=%d", bookingID, req.UserID)

	booking, err := s.getBooking(ctx, "Cancel", bookingID)
	if err != nil {
		return err
	}

	if err := s.checkOwnerAccess(ctx, booking.SalonID, req.UserID); err != nil {
		s.logger.Warn("Cancel: access denied for user=%d to cancel booking id=%d", req.UserID, bookingID)
		return err
	}

	var alreadyCancelled bool

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		// Перечитываем под блокировкой строки
		current, err := s.getBooking(txCtx, "Cancel", bookingID)
		if err != nil {
			return err
		}

		if current.IsCancelled() {
			alreadyCancelled = true
			return nil
		}

		if !current.CanBeCancelled() {
			s.logger.Warn("Cancel: booking id=%d cannot be cancelled, status=%s", bookingID, current.Status)
			return ErrCannotCancel
		}

		if err := s.bookingRepo.UpdateStatus(txCtx, bookingID, domain.StatusCancelled); err != nil {
			s.logger.Error("Cancel: failed to update status of booking id=%d: %v", bookingID, err)
			return fmt.Errorf("%w: Cancel - update status: %v", ErrInternal, err)
		}

		released, err := s.blockRepo.DeleteByBookingID(txCtx, bookingID)
		if err != nil {
			s.logger.Error("Cancel: failed to release blocks of booking id=%d: %v", bookingID, err)
			return fmt.Errorf("%w: Cancel - delete schedule blocks: %v", ErrInternal, err)
		}
		s.logger.Info("Cancel: released %d schedule blocks of booking id=%d", released, bookingID)

		event, err := domain.NewBookingEvent(domain.EventBookingCancelled, current, uuid.NewString(), tracing.Traceparent(txCtx))
		if err != nil {
			return fmt.Errorf("%w: Cancel - build outbox event: %v", ErrInternal, err)
		}
		if err := s.outboxRepo.Insert(txCtx, event); err != nil {
			s.logger.Error("Cancel: failed to insert outbox event for booking id=%d: %v", bookingID, err)
			return fmt.Errorf("%w: Cancel - insert outbox event: %v", ErrInternal, err)
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) || errors.Is(err, ErrCannotCancel) || errors.Is(err, ErrInternal) {
			return err
		}
		s.logger.Error("Cancel: transaction failed for booking id=%d: %v", bookingID, err)
		return fmt.Errorf("%w: Cancel - transaction failed: %v", ErrInternal, err)
	}

	if alreadyCancelled {
		s.logger.Info("Cancel: booking id=%d is already cancelled", bookingID)
		return nil
	}

	s.logger.Info("Cancel: successfully cancelled booking id=%d", bookingID)
	return nil
}

// UpdateStatus обновляет статус бронирования.
// Доступно только владельцу салона. Отмена выполняется через Cancel.
func (s *Service) UpdateStatus(ctx context.Context, bookingID int64, req *models.UpdateStatusRequest) error {
	s.logger.Info("UpdateStatus: updating booking id=%d to status=%s by user=%d",
		bookingID, req.Status, req.UserID)

	newStatus, err := models.ToDomainBookingStatus(req.Status)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%s for booking id=%d", req.Status, bookingID)
		return fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}

	if newStatus == domain.StatusCancelled {
		return s.Cancel(ctx, bookingID, &models.CancelBookingRequest{UserID: req.UserID})
	}

	booking, err := s.getBooking(ctx, "UpdateStatus", bookingID)
	if err != nil {
		return err
	}

	if err := s.checkOwnerAccess(ctx, booking.SalonID, req.UserID); err != nil {
		return err
	}

	if booking.Status == newStatus {
		s.logger.Info("UpdateStatus: booking id=%d already has status=%s", bookingID, newStatus)
		return nil
	}

	if !booking.CanTransitionTo(newStatus) {
		s.logger.Warn("UpdateStatus: transition %s -> %s is not allowed for booking id=%d",
			booking.Status, newStatus, bookingID)
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, booking.Status, newStatus)
	}

	if err := s.bookingRepo.UpdateStatus(ctx, bookingID, newStatus); err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("UpdateStatus: booking id=%d not found during update", bookingID)
			return ErrBookingNotFound
		}
		s.logger.Error("UpdateStatus: repository error for booking id=%d: %v", bookingID, err)
		return fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("UpdateStatus: successfully updated booking id=%d to status=%s", bookingID, newStatus)
	return nil
}

// Вспомогательные методы

func (s *Service) getBooking(ctx context.Context, op string, id int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%d not found", op, id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return booking, nil
}

// checkOwnerAccess проверяет, что пользователь является владельцем салона
func (s *Service) checkOwnerAccess(ctx context.Context, salonID int64, userID int64) error {
	salon, err := s.salonRepo.GetByID(ctx, salonID)
	if err != nil {
		if errors.Is(err, salonRepo.ErrSalonNotFound) {
			s.logger.Warn("checkOwnerAccess: salon id=%d not found", salonID)
			return ErrSalonNotFound
		}
		s.logger.Error("checkOwnerAccess: failed to get salon id=%d: %v", salonID, err)
		return fmt.Errorf("%w: checkOwnerAccess - failed to get salon: %v", ErrInternal, err)
	}

	if salon.OwnerID != userID {
		s.logger.Warn("checkOwnerAccess: user=%d is not the owner of salon=%d", userID, salonID)
		return ErrAccessDenied
	}

	return nil
}
