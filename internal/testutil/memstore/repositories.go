package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/m04kA/SalonBookingService/internal/domain"
	blockRepo "github.com/m04kA/SalonBookingService/internal/infra/storage/block"
	bookingRepo "github.com/m04kA/SalonBookingService/internal/infra/storage/booking"
	idempotencyRepo "github.com/m04kA/SalonBookingService/internal/infra/storage/idempotency"
	masterRepo "github.com/m04kA/SalonBookingService/internal/infra/storage/master"
	outboxRepo "github.com/m04kA/SalonBookingService/internal/infra/storage/outbox"
	salonRepo "github.com/m04kA/SalonBookingService/internal/infra/storage/salon"
	subscriptionRepo "github.com/m04kA/SalonBookingService/internal/infra/storage/subscription"
)

// Salons репозиторий салонов
type Salons struct{ s *Store }

func (s *Store) Salons() *Salons { return &Salons{s: s} }

func (r *Salons) GetByID(_ context.Context, id int64) (*domain.Salon, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("salons.GetByID"); err != nil {
		return nil, err
	}
	salon, ok := r.s.st.salons[id]
	if !ok {
		return nil, salonRepo.ErrSalonNotFound
	}
	c := *salon
	return &c, nil
}

func (r *Salons) GetBySlug(_ context.Context, slug string) (*domain.Salon, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, salon := range r.s.st.salons {
		if salon.Slug == slug {
			c := *salon
			return &c, nil
		}
	}
	return nil, salonRepo.ErrSalonNotFound
}

// Masters репозиторий мастеров
type Masters struct{ s *Store }

func (s *Store) Masters() *Masters { return &Masters{s: s} }

func (r *Masters) GetByID(_ context.Context, id int64) (*domain.Master, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	master, ok := r.s.st.masters[id]
	if !ok {
		return nil, masterRepo.ErrMasterNotFound
	}
	c := *master
	return &c, nil
}

func (r *Masters) ListActiveBySalon(_ context.Context, salonID int64) ([]*domain.Master, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	result := make([]*domain.Master, 0)
	for _, master := range r.s.st.masters {
		if master.SalonID == salonID && master.IsActive {
			c := *master
			result = append(result, &c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].SortOrder != result[j].SortOrder {
			return result[i].SortOrder < result[j].SortOrder
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// Services репозиторий услуг
type Services struct{ s *Store }

func (s *Store) Services() *Services { return &Services{s: s} }

func (r *Services) GetByIDs(_ context.Context, salonID int64, ids []int64) ([]domain.Service, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	result := make([]domain.Service, 0, len(ids))
	for _, id := range ids {
		svc, ok := r.s.st.services[id]
		if !ok || svc.SalonID != salonID || !svc.IsActive {
			continue
		}
		result = append(result, *svc)
	}
	return result, nil
}

// Blocks репозиторий блоков расписания
type Blocks struct{ s *Store }

func (s *Store) Blocks() *Blocks { return &Blocks{s: s} }

// Create проверяет пересечение как EXCLUDE constraint в БД
func (r *Blocks) Create(_ context.Context, block *domain.ScheduleBlock) (*domain.ScheduleBlock, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("blocks.Create"); err != nil {
		return nil, err
	}

	if block.IsBlocked {
		for _, existing := range r.s.st.blocks {
			if existing.SalonID == block.SalonID &&
				existing.MasterID == block.MasterID &&
				sameDay(existing.Date, block.Date) &&
				existing.IsBlocked &&
				existing.Overlaps(block.TimeStart, block.TimeEnd) {
				return nil, blockRepo.ErrBlockOverlap
			}
		}
	}

	c := *block
	c.ID = r.s.nextID()
	c.CreatedAt = r.s.now()
	r.s.st.blocks[c.ID] = &c

	out := c
	return &out, nil
}

func (r *Blocks) GetByID(_ context.Context, id int64) (*domain.ScheduleBlock, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	block, ok := r.s.st.blocks[id]
	if !ok {
		return nil, blockRepo.ErrBlockNotFound
	}
	c := *block
	return &c, nil
}

func (r *Blocks) ListByMasterAndDate(_ context.Context, salonID, masterID int64, date time.Time) ([]*domain.ScheduleBlock, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("blocks.ListByMasterAndDate"); err != nil {
		return nil, err
	}
	return r.list(func(b *domain.ScheduleBlock) bool {
		return b.SalonID == salonID && b.MasterID == masterID && sameDay(b.Date, date)
	}), nil
}

func (r *Blocks) ListBySalonAndDate(_ context.Context, salonID int64, masterID *int64, date time.Time) ([]*domain.ScheduleBlock, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.list(func(b *domain.ScheduleBlock) bool {
		if masterID != nil && b.MasterID != *masterID {
			return false
		}
		return b.SalonID == salonID && sameDay(b.Date, date)
	}), nil
}

func (r *Blocks) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.blocks[id]; !ok {
		return blockRepo.ErrBlockNotFound
	}
	delete(r.s.st.blocks, id)
	return nil
}

func (r *Blocks) DeleteByBookingID(_ context.Context, bookingID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var deleted int64
	for id, b := range r.s.st.blocks {
		if b.BookingID != nil && *b.BookingID == bookingID {
			delete(r.s.st.blocks, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *Blocks) list(match func(b *domain.ScheduleBlock) bool) []*domain.ScheduleBlock {
	result := make([]*domain.ScheduleBlock, 0)
	for _, b := range r.s.st.blocks {
		if match(b) {
			c := *b
			result = append(result, &c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].TimeStart != result[j].TimeStart {
			return result[i].TimeStart.IsBefore(result[j].TimeStart)
		}
		return result[i].ID < result[j].ID
	})
	return result
}

// Bookings репозиторий бронирований
type Bookings struct{ s *Store }

func (s *Store) Bookings() *Bookings { return &Bookings{s: s} }

func (r *Bookings) Create(_ context.Context, booking *domain.Booking) (*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("bookings.Create"); err != nil {
		return nil, err
	}
	c := *booking
	c.ID = r.s.nextID()
	c.CreatedAt = r.s.now()
	c.UpdatedAt = c.CreatedAt
	r.s.st.bookings[c.ID] = &c

	out := c
	return &out, nil
}

func (r *Bookings) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	booking, ok := r.s.st.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	c := *booking
	return &c, nil
}

func (r *Bookings) GetBySalonWithFilter(_ context.Context, filter domain.SalonBookingsFilter) ([]*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	result := make([]*domain.Booking, 0)
	for _, b := range r.s.st.bookings {
		if b.SalonID != filter.SalonID {
			continue
		}
		if filter.MasterID != nil && b.MasterID != *filter.MasterID {
			continue
		}
		if filter.Status != nil && b.Status != *filter.Status {
			continue
		}
		if filter.Status == nil && !filter.IncludeCancelled && b.Status == domain.StatusCancelled {
			continue
		}
		if filter.Date != nil && !sameDay(b.BookingDate, *filter.Date) {
			continue
		}
		c := *b
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool {
		if !sameDay(result[i].BookingDate, result[j].BookingDate) {
			return result[i].BookingDate.After(result[j].BookingDate)
		}
		return result[i].StartTime.IsBefore(result[j].StartTime)
	})
	return result, nil
}

func (r *Bookings) UpdateStatus(_ context.Context, id int64, status domain.BookingStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	booking, ok := r.s.st.bookings[id]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}
	booking.Status = status
	booking.UpdatedAt = r.s.now()
	if status == domain.StatusCancelled {
		at := booking.UpdatedAt
		booking.CancelledAt = &at
	}
	return nil
}

func (r *Bookings) MarkNotificationSent(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	booking, ok := r.s.st.bookings[id]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}
	booking.NotificationSent = true
	return nil
}

func (r *Bookings) GetDetails(_ context.Context, id int64) (*domain.BookingDetails, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	booking, ok := r.s.st.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	salon, ok := r.s.st.salons[booking.SalonID]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	master, ok := r.s.st.masters[booking.MasterID]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}

	details := &domain.BookingDetails{
		Booking:      *booking,
		SalonName:    salon.Name,
		SalonOwnerID: salon.OwnerID,
		MasterName:   master.Name,
		ServiceNames: make([]string, 0, len(booking.ServiceIDs)),
	}
	for _, sid := range booking.ServiceIDs {
		if svc, ok := r.s.st.services[sid]; ok {
			details.ServiceNames = append(details.ServiceNames, svc.Name)
		}
	}
	return details, nil
}

// Idempotency репозиторий ключей идемпотентности
type Idempotency struct{ s *Store }

func (s *Store) Idempotency() *Idempotency { return &Idempotency{s: s} }

func (r *Idempotency) GetBookingID(_ context.Context, salonID int64, key string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id, ok := r.s.st.idempotency[idemKey{salonID: salonID, key: key}]
	if !ok {
		return 0, idempotencyRepo.ErrKeyNotFound
	}
	return id, nil
}

func (r *Idempotency) Save(_ context.Context, salonID int64, key string, bookingID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := idemKey{salonID: salonID, key: key}
	if _, ok := r.s.st.idempotency[k]; ok {
		return idempotencyRepo.ErrKeyExists
	}
	r.s.st.idempotency[k] = bookingID
	return nil
}

// Outbox репозиторий событий outbox
type Outbox struct{ s *Store }

func (s *Store) Outbox() *Outbox { return &Outbox{s: s} }

func (r *Outbox) Insert(_ context.Context, event *domain.OutboxEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("outbox.Insert"); err != nil {
		return err
	}
	event.ID = r.s.nextID()
	event.CreatedAt = r.s.now()
	c := *event
	r.s.st.outbox = append(r.s.st.outbox, &c)
	return nil
}

func (r *Outbox) FetchUnpublished(ctx context.Context, limit int, maxAttempts int) ([]*domain.OutboxEvent, error) {
	if !inTx(ctx) {
		return nil, outboxRepo.ErrNoTransaction
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	result := make([]*domain.OutboxEvent, 0, limit)
	for _, ev := range r.s.st.outbox {
		if len(result) >= limit {
			break
		}
		if ev.PublishedAt != nil {
			continue
		}
		if maxAttempts > 0 && ev.Attempts >= maxAttempts {
			continue
		}
		if ev.LockedUntil != nil && !ev.LockedUntil.Before(r.s.now()) {
			continue
		}
		c := *ev
		result = append(result, &c)
	}
	return result, nil
}

func (r *Outbox) Claim(_ context.Context, ids []int64, lease time.Duration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("outbox.Claim"); err != nil {
		return err
	}
	until := r.s.now().Add(lease)
	for _, ev := range r.s.st.outbox {
		for _, id := range ids {
			if ev.ID == id {
				at := until
				ev.LockedUntil = &at
			}
		}
	}
	return nil
}

func (r *Outbox) MarkPublished(_ context.Context, ids []int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("outbox.MarkPublished"); err != nil {
		return err
	}
	now := r.s.now()
	for _, ev := range r.s.st.outbox {
		for _, id := range ids {
			if ev.ID == id {
				at := now
				ev.PublishedAt = &at
			}
		}
	}
	return nil
}

func (r *Outbox) MarkFailed(_ context.Context, id int64, reason string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, ev := range r.s.st.outbox {
		if ev.ID == id {
			ev.Attempts++
			msg := reason
			ev.LastError = &msg
			ev.LockedUntil = nil
		}
	}
	return nil
}

// Subscriptions репозиторий подписок владельцев
type Subscriptions struct{ s *Store }

func (s *Store) Subscriptions() *Subscriptions { return &Subscriptions{s: s} }

func (r *Subscriptions) GetByOwnerID(_ context.Context, ownerID int64) (*domain.OwnerSubscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sub, ok := r.s.st.subscriptions[ownerID]
	if !ok {
		return nil, subscriptionRepo.ErrSubscriptionNotFound
	}
	c := *sub
	return &c, nil
}

func (r *Subscriptions) GetByChatID(_ context.Context, chatID string) (*domain.OwnerSubscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sub := range r.s.st.subscriptions {
		if sub.TelegramChatID != nil && *sub.TelegramChatID == chatID {
			c := *sub
			return &c, nil
		}
	}
	return nil, subscriptionRepo.ErrSubscriptionNotFound
}
