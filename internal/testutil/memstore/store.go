// Package memstore in-memory реализация репозиториев и менеджера транзакций для тестов.
// Транзакции выполняются строго последовательно, что соответствует SERIALIZABLE.
// Ошибка внутри транзакции откатывает все изменения.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m04kA/SalonBookingService/internal/domain"
	"github.com/m04kA/SalonBookingService/internal/scheduling"
)

type txKey struct{}

type idemKey struct {
	salonID int64
	key     string
}

type state struct {
	salons        map[int64]*domain.Salon
	masters       map[int64]*domain.Master
	services      map[int64]*domain.Service
	bookings      map[int64]*domain.Booking
	blocks        map[int64]*domain.ScheduleBlock
	idempotency   map[idemKey]int64
	outbox        []*domain.OutboxEvent
	subscriptions map[int64]*domain.OwnerSubscription
	seq           int64
}

// Store общее хранилище всех репозиториев
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex

	st       state
	failures map[string]error
	now      func() time.Time
}

// New пустое хранилище
func New() *Store {
	return &Store{
		st: state{
			salons:        make(map[int64]*domain.Salon),
			masters:       make(map[int64]*domain.Master),
			services:      make(map[int64]*domain.Service),
			bookings:      make(map[int64]*domain.Booking),
			blocks:        make(map[int64]*domain.ScheduleBlock),
			idempotency:   make(map[idemKey]int64),
			subscriptions: make(map[int64]*domain.OwnerSubscription),
		},
		failures: make(map[string]error),
		now:      time.Now,
	}
}

// FailOnce следующая операция op вернет err.
// Имена операций: "<repo>.<Method>", например "blocks.Create".
func (s *Store) FailOnce(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

func (s *Store) failure(op string) error {
	err, ok := s.failures[op]
	if !ok {
		return nil
	}
	delete(s.failures, op)
	return err
}

func (s *Store) nextID() int64 {
	s.st.seq++
	return s.st.seq
}

// AddSalon добавляет салон, ID назначается если не задан
func (s *Store) AddSalon(salon domain.Salon) *domain.Salon {
	s.mu.Lock()
	defer s.mu.Unlock()
	if salon.ID == 0 {
		salon.ID = s.nextID()
	}
	s.st.salons[salon.ID] = &salon
	return &salon
}

// AddMaster добавляет мастера
func (s *Store) AddMaster(master domain.Master) *domain.Master {
	s.mu.Lock()
	defer s.mu.Unlock()
	if master.ID == 0 {
		master.ID = s.nextID()
	}
	s.st.masters[master.ID] = &master
	return &master
}

// AddService добавляет услугу
func (s *Store) AddService(service domain.Service) *domain.Service {
	s.mu.Lock()
	defer s.mu.Unlock()
	if service.ID == 0 {
		service.ID = s.nextID()
	}
	s.st.services[service.ID] = &service
	return &service
}

// AddSubscription добавляет подписку владельца
func (s *Store) AddSubscription(sub domain.OwnerSubscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.subscriptions[sub.OwnerID] = &sub
}

// AllBookings снимок всех бронирований, отсортированный по ID
func (s *Store) AllBookings() []domain.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]domain.Booking, 0, len(s.st.bookings))
	for _, b := range s.st.bookings {
		result = append(result, *b)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// AllBlocks снимок всех блоков, отсортированный по ID
func (s *Store) AllBlocks() []domain.ScheduleBlock {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]domain.ScheduleBlock, 0, len(s.st.blocks))
	for _, b := range s.st.blocks {
		result = append(result, *b)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// AllOutbox снимок событий outbox в порядке вставки
func (s *Store) AllOutbox() []domain.OutboxEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]domain.OutboxEvent, len(s.st.outbox))
	for i, ev := range s.st.outbox {
		result[i] = *ev
	}
	return result
}

func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(bool)
	return ok
}

func (s *Store) snapshot() state {
	cp := state{
		salons:        make(map[int64]*domain.Salon, len(s.st.salons)),
		masters:       make(map[int64]*domain.Master, len(s.st.masters)),
		services:      make(map[int64]*domain.Service, len(s.st.services)),
		bookings:      make(map[int64]*domain.Booking, len(s.st.bookings)),
		blocks:        make(map[int64]*domain.ScheduleBlock, len(s.st.blocks)),
		idempotency:   make(map[idemKey]int64, len(s.st.idempotency)),
		outbox:        make([]*domain.OutboxEvent, len(s.st.outbox)),
		subscriptions: make(map[int64]*domain.OwnerSubscription, len(s.st.subscriptions)),
		seq:           s.st.seq,
	}
	for k, v := range s.st.salons {
		c := *v
		cp.salons[k] = &c
	}
	for k, v := range s.st.masters {
		c := *v
		cp.masters[k] = &c
	}
	for k, v := range s.st.services {
		c := *v
		cp.services[k] = &c
	}
	for k, v := range s.st.bookings {
		c := *v
		cp.bookings[k] = &c
	}
	for k, v := range s.st.blocks {
		c := *v
		cp.blocks[k] = &c
	}
	for k, v := range s.st.idempotency {
		cp.idempotency[k] = v
	}
	for i, v := range s.st.outbox {
		c := *v
		cp.outbox[i] = &c
	}
	for k, v := range s.st.subscriptions {
		c := *v
		cp.subscriptions[k] = &c
	}
	return cp
}

func sameDay(a, b time.Time) bool {
	return scheduling.IsSameDay(a, b)
}
