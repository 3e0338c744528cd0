package create_booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/m04kA/SalonBookingService/internal/domain"
	blockRepo "github.com/m04kA/SalonBookingService/internal/infra/storage/block"
	idempotencyRepo "github.com/m04kA/SalonBookingService/internal/infra/storage/idempotency"
	masterRepo "github.com/m04kA/SalonBookingService/internal/infra/storage/master"
	salonRepo "github.com/m04kA/SalonBookingService/internal/infra/storage/salon"
	"github.com/m04kA/SalonBookingService/internal/scheduling"
	"github.com/m04kA/SalonBookingService/pkg/metrics"
	"github.com/m04kA/SalonBookingService/pkg/pgerr"
	"github.com/m04kA/SalonBookingService/pkg/ptr"
	"github.com/m04kA/SalonBookingService/pkg/tracing"
	"github.com/m04kA/SalonBookingService/pkg/types"
)

const tracerName = "github.com/m04kA/SalonBookingService/internal/usecase/create_booking"

// UseCase use case для создания бронирования
type UseCase struct {
	salonRepo       SalonRepository
	masterRepo      MasterRepository
	serviceRepo     ServiceRepository
	blockRepo       BlockRepository
	bookingRepo     BookingRepository
	outboxRepo      OutboxRepository
	idempotencyRepo IdempotencyRepository
	txManager       TransactionManager
	phone           PhoneNormalizer
	resolver        *scheduling.Resolver
	grid            *scheduling.Grid
	horizonDays     int
	metrics         Metrics
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	salonRepo SalonRepository,
	masterRepo MasterRepository,
	serviceRepo ServiceRepository,
	blockRepo BlockRepository,
	bookingRepo BookingRepository,
	outboxRepo OutboxRepository,
	idempotencyRepo IdempotencyRepository,
	txManager TransactionManager,
	phone PhoneNormalizer,
	resolver *scheduling.Resolver,
	grid *scheduling.Grid,
	horizonDays int,
	commitMetrics Metrics,
	timeProvider TimeProvider,
	logger Logger,
) *UseCase {
	if timeProvider == nil {
		timeProvider = &RealTimeProvider{}
	}
	if commitMetrics == nil {
		commitMetrics = (*metrics.Metrics)(nil)
	}
	return &UseCase{
		salonRepo:       salonRepo,
		masterRepo:      masterRepo,
		serviceRepo:     serviceRepo,
		blockRepo:       blockRepo,
		bookingRepo:     bookingRepo,
		outboxRepo:      outboxRepo,
		idempotencyRepo: idempotencyRepo,
		txManager:       txManager,
		phone:           phone,
		resolver:        resolver,
		grid:            grid,
		horizonDays:     horizonDays,
		metrics:         commitMetrics,
		timeProvider:    timeProvider,
		logger:          logger,
	}
}

// Execute выполняет use case создания бронирования.
// Проверка занятости и запись бронирования с блоком расписания выполняются в одной
// сериализуемой транзакции, пересечение блоков дополнительно запрещено EXCLUDE constraint.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (resp *Response, err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "CreateBooking.Execute")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(
		attribute.Int64("salon.id", req.SalonID),
		attribute.Int64("master.id", req.MasterID),
		attribute.String("booking.date", req.Date.Format(domain.DateFormat)),
		attribute.String("booking.start", req.StartTime.String()),
	)

	uc.logger.Info("CreateBooking: salon=%d, master=%d, services=%v, date=%s, time=%s",
		req.SalonID, req.MasterID, req.ServiceIDs, req.Date.Format(domain.DateFormat), req.StartTime)

	resp, err = uc.execute(ctx, req)
	uc.metrics.ObserveBookingCommit(commitResult(resp, err))
	return resp, err
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	phone, err := uc.phone.Normalize(req.ClientPhone)
	if err != nil {
		uc.logger.Warn("CreateBooking: invalid phone: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidContact, err)
	}

	// 2. Повторная отправка с тем же ключом возвращает уже созданное бронирование
	if req.IdempotencyKey != "" {
		if replay, err := uc.replay(ctx, req); replay != nil || err != nil {
			return replay, err
		}
	}

	now := uc.timeProvider.Now()

	// 3. Получаем салон
	salon, err := uc.salonRepo.GetByID(ctx, req.SalonID)
	if err != nil {
		if errors.Is(err, salonRepo.ErrSalonNotFound) {
			uc.logger.Warn("CreateBooking: salon id=%d not found", req.SalonID)
			return nil, ErrSalonNotFound
		}
		uc.logger.Error("CreateBooking: failed to get salon id=%d: %v", req.SalonID, err)
		return nil, fmt.Errorf("%w: failed to get salon: %v", ErrInternal, err)
	}
	if !salon.IsActive {
		uc.logger.Warn("CreateBooking: salon id=%d is inactive", req.SalonID)
		return nil, ErrSalonNotFound
	}

	// 4. Получаем услуги и считаем длительность
	services, err := uc.serviceRepo.GetByIDs(ctx, req.SalonID, req.ServiceIDs)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to get services: %v", err)
		return nil, fmt.Errorf("%w: failed to get services: %v", ErrInternal, err)
	}
	if len(services) != len(req.ServiceIDs) {
		uc.logger.Warn("CreateBooking: requested %d services, found %d in salon id=%d",
			len(req.ServiceIDs), len(services), req.SalonID)
		return nil, ErrServiceNotFound
	}

	plan, err := uc.grid.Plan(services)
	if err != nil {
		uc.logger.Warn("CreateBooking: failed to plan services: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidDuration, err)
	}

	// 5. Проверяем дату и время относительно часов работы
	if err := validateDate(req.Date, now, uc.horizonDays); err != nil {
		uc.logger.Warn("CreateBooking: date validation failed: %v", err)
		return nil, err
	}

	if err := uc.checkWorkingHours(salon, req, plan, now); err != nil {
		return nil, err
	}

	end, err := plan.EndTime(req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutsideWorkingHours, err)
	}

	// 6. Кандидаты: выбранный мастер или все активные мастера по порядку
	candidates, err := uc.candidates(ctx, req)
	if err != nil {
		return nil, err
	}

	var created *domain.Booking

	// 7. Выполняем операции с БД в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 7.1. Под блокировкой ищем мастера, у которого интервал свободен
		master, err := uc.pickFreeMaster(txCtx, req, candidates, end)
		if err != nil {
			return err
		}

		// 7.2. Создаем бронирование
		booking, err := uc.bookingRepo.Create(txCtx, &domain.Booking{
			SalonID:         req.SalonID,
			MasterID:        master.ID,
			ServiceID:       req.ServiceIDs[0],
			ServiceIDs:      req.ServiceIDs,
			BookingDate:     scheduling.DateOnly(req.Date),
			StartTime:       req.StartTime,
			DurationMinutes: plan.RoundedMinutes,
			Price:           totalPrice(services),
			ClientName:      strings.TrimSpace(req.ClientName),
			ClientPhone:     phone,
			ClientEmail:     trimOptional(req.ClientEmail),
			Notes:           trimOptional(req.Notes),
			Status:          domain.StatusConfirmed,
		})
		if err != nil {
			return uc.txError("create booking", err)
		}

		// 7.3. Занимаем интервал мастера
		_, err = uc.blockRepo.Create(txCtx, &domain.ScheduleBlock{
			SalonID:   req.SalonID,
			MasterID:  master.ID,
			Date:      booking.BookingDate,
			TimeStart: req.StartTime,
			TimeEnd:   end,
			IsBlocked: true,
			Reason:    domain.BlockReasonBooked,
			BookingID: ptr.Ptr(booking.ID),
		})
		if err != nil {
			return uc.txError("create schedule block", err)
		}

		// 7.4. Событие для уведомления владельца
		event, err := domain.NewBookingEvent(domain.EventBookingCreated, booking, uuid.NewString(), tracing.Traceparent(txCtx))
		if err != nil {
			return uc.txError("build outbox event", err)
		}
		if err := uc.outboxRepo.Insert(txCtx, event); err != nil {
			return uc.txError("insert outbox event", err)
		}

		// 7.5. Запоминаем ключ идемпотентности
		if req.IdempotencyKey != "" {
			if err := uc.idempotencyRepo.Save(txCtx, req.SalonID, req.IdempotencyKey, booking.ID); err != nil {
				return uc.txError("save idempotency key", err)
			}
		}

		created = booking
		return nil
	})

	if err != nil {
		if !isConflict(err) {
			if !isUseCaseError(err) {
				uc.logger.Error("CreateBooking: transaction failed: %v", err)
				return nil, fmt.Errorf("%w: transaction failed: %v", ErrInternal, err)
			}
			return nil, err
		}

		// Конкурентный запрос с тем же ключом мог успеть раньше
		if req.IdempotencyKey != "" {
			if replay, rerr := uc.replay(ctx, req); replay != nil {
				return replay, nil
			} else if rerr != nil {
				return nil, rerr
			}
		}

		uc.logger.Warn("CreateBooking: slot conflict for salon=%d, master=%d, date=%s, time=%s: %v",
			req.SalonID, req.MasterID, req.Date.Format(domain.DateFormat), req.StartTime, err)
		if errors.Is(err, ErrSlotConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrSlotConflict, err)
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%d for master id=%d", created.ID, created.MasterID)
	return toResponse(created, false), nil
}

// checkWorkingHours салон открыт, время на сетке, бронирование заканчивается не позже закрытия
func (uc *UseCase) checkWorkingHours(salon *domain.Salon, req *Request, plan scheduling.Plan, now time.Time) error {
	day := uc.resolver.Resolve(salon.WorkingHours, req.Date)
	if !day.IsOpen {
		uc.logger.Warn("CreateBooking: salon id=%d is closed on %s", salon.ID, req.Date.Format(domain.DateFormat))
		return ErrSalonClosed
	}

	if !uc.grid.IsAligned(day.OpenTime, req.StartTime) || !req.StartTime.IsBefore(day.CloseTime) {
		uc.logger.Warn("CreateBooking: start %s is not a slot of %s - %s", req.StartTime, day.OpenTime, day.CloseTime)
		return ErrInvalidTimeSlot
	}

	if !plan.FitsBefore(req.StartTime, day.CloseTime) {
		uc.logger.Warn("CreateBooking: %d minutes from %s do not fit before %s",
			plan.RoundedMinutes, req.StartTime, day.CloseTime)
		return ErrOutsideWorkingHours
	}

	if scheduling.IsSameDay(req.Date, now) && req.StartTime.IsBefore(types.NewTimeString(now)) {
		uc.logger.Warn("CreateBooking: start %s has already passed", req.StartTime)
		return ErrTooLateToBook
	}

	return nil
}

// candidates выбранный мастер или все активные мастера салона в порядке сортировки
func (uc *UseCase) candidates(ctx context.Context, req *Request) ([]*domain.Master, error) {
	if req.MasterID == AnyMaster {
		masters, err := uc.masterRepo.ListActiveBySalon(ctx, req.SalonID)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to list masters for salon id=%d: %v", req.SalonID, err)
			return nil, fmt.Errorf("%w: failed to list masters: %v", ErrInternal, err)
		}
		if len(masters) == 0 {
			uc.logger.Warn("CreateBooking: salon id=%d has no active masters", req.SalonID)
			return nil, fmt.Errorf("%w: no active masters", ErrSlotConflict)
		}
		return masters, nil
	}

	master, err := uc.masterRepo.GetByID(ctx, req.MasterID)
	if err != nil {
		if errors.Is(err, masterRepo.ErrMasterNotFound) {
			uc.logger.Warn("CreateBooking: master id=%d not found", req.MasterID)
			return nil, ErrMasterNotFound
		}
		uc.logger.Error("CreateBooking: failed to get master id=%d: %v", req.MasterID, err)
		return nil, fmt.Errorf("%w: failed to get master: %v", ErrInternal, err)
	}
	if master.SalonID != req.SalonID || !master.IsActive {
		uc.logger.Warn("CreateBooking: master id=%d is not available in salon id=%d", req.MasterID, req.SalonID)
		return nil, ErrMasterNotFound
	}

	return []*domain.Master{master}, nil
}

// pickFreeMaster первый кандидат без пересекающихся блоков на [start, end)
func (uc *UseCase) pickFreeMaster(ctx context.Context, req *Request, candidates []*domain.Master, end types.TimeString) (*domain.Master, error) {
	for _, master := range candidates {
		blocks, err := uc.blockRepo.ListByMasterAndDate(ctx, req.SalonID, master.ID, req.Date)
		if err != nil {
			return nil, uc.txError("list schedule blocks", err)
		}
		if !scheduling.HasOverlap(blocks, req.StartTime, end) {
			return master, nil
		}
	}
	return nil, ErrSlotConflict
}

// replay возвращает бронирование, уже созданное с ключом запроса, или nil
func (uc *UseCase) replay(ctx context.Context, req *Request) (*Response, error) {
	bookingID, err := uc.idempotencyRepo.GetBookingID(ctx, req.SalonID, req.IdempotencyKey)
	if errors.Is(err, idempotencyRepo.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		uc.logger.Error("CreateBooking: failed to check idempotency key: %v", err)
		return nil, fmt.Errorf("%w: failed to check idempotency key: %v", ErrInternal, err)
	}

	booking, err := uc.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to load booking id=%d for replay: %v", bookingID, err)
		return nil, fmt.Errorf("%w: failed to load booking: %v", ErrInternal, err)
	}

	uc.logger.Info("CreateBooking: replaying booking id=%d for idempotency key", booking.ID)
	return toResponse(booking, true), nil
}

// txError превращает ошибку репозитория внутри транзакции в ошибку usecase
func (uc *UseCase) txError(op string, err error) error {
	if isConflict(err) {
		return fmt.Errorf("%w: %s: %v", ErrSlotConflict, op, err)
	}
	uc.logger.Error("CreateBooking: failed to %s: %v", op, err)
	return fmt.Errorf("%w: failed to %s: %v", ErrInternal, op, err)
}

func isConflict(err error) bool {
	return errors.Is(err, ErrSlotConflict) ||
		errors.Is(err, blockRepo.ErrBlockOverlap) ||
		errors.Is(err, idempotencyRepo.ErrKeyExists) ||
		errors.Is(err, pgerr.ErrSerializationFailure) ||
		errors.Is(err, pgerr.ErrExclusionViolation)
}

func isUseCaseError(err error) bool {
	return errors.Is(err, ErrInternal) || errors.Is(err, ErrSlotConflict)
}

func totalPrice(services []domain.Service) float64 {
	total := 0.0
	for _, svc := range services {
		total += svc.Price
	}
	return total
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func commitResult(resp *Response, err error) string {
	switch {
	case err == nil && resp.Replayed:
		return metrics.ResultReplayed
	case err == nil:
		return metrics.ResultCreated
	case errors.Is(err, ErrSlotConflict):
		return metrics.ResultConflict
	case errors.Is(err, ErrInternal):
		return metrics.ResultError
	default:
		return metrics.ResultRejected
	}
}

func toResponse(booking *domain.Booking, replayed bool) *Response {
	end, _ := booking.EndTime()
	return &Response{
		ID:              booking.ID,
		SalonID:         booking.SalonID,
		MasterID:        booking.MasterID,
		ServiceIDs:      booking.ServiceIDs,
		BookingDate:     booking.BookingDate,
		StartTime:       booking.StartTime,
		EndTime:         end,
		DurationMinutes: booking.DurationMinutes,
		Price:           booking.Price,
		ClientName:      booking.ClientName,
		ClientPhone:     booking.ClientPhone,
		Status:          string(booking.Status),
		CreatedAt:       booking.CreatedAt,
		Replayed:        replayed,
	}
}
