package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SalonBookingService/internal/wizard"
)

const (
	keyPrefix = "booking_session:"

	// updateRetries сколько раз повторять Update при конкурентной записи
	updateRetries = 3
)

var (
	// ErrSessionNotFound сессия не найдена или истекла
	ErrSessionNotFound = errors.New("session.store: session not found")

	// ErrConcurrentUpdate сессию изменили параллельно, повторы исчерпаны
	ErrConcurrentUpdate = errors.New("session.store: concurrent update")

	// ErrStore ошибка Redis
	ErrStore = errors.New("session.store: redis error")

	// ErrDecode состояние в Redis не разбирается
	ErrDecode = errors.New("session.store: failed to decode state")
)

// Store хранит состояние мастера бронирования в Redis с TTL.
// Каждая запись продлевает TTL.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Create сохраняет новое состояние и возвращает ID сессии
func (s *Store) Create(ctx context.Context, state wizard.State) (string, error) {
	id := uuid.NewString()

	data, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}

	ok, err := s.client.SetNX(ctx, key(id), data, s.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("%w: create: %v", ErrStore, err)
	}
	if !ok {
		return "", fmt.Errorf("%w: session id collision", ErrStore)
	}
	return id, nil
}

// Get возвращает состояние сессии
func (s *Store) Get(ctx context.Context, id string) (wizard.State, error) {
	return s.get(ctx, s.client, id)
}

// Update применяет fn к состоянию под WATCH. Если ключ изменился между чтением и записью,
// fn вызывается заново с новым состоянием.
func (s *Store) Update(ctx context.Context, id string, fn func(wizard.State) (wizard.State, error)) (wizard.State, error) {
	var result wizard.State

	txf := func(tx *redis.Tx) error {
		state, err := s.get(ctx, tx, id)
		if err != nil {
			return err
		}

		next, err := fn(state)
		if err != nil {
			return err
		}

		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrDecode, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key(id), data, s.ttl)
			return nil
		})
		if err != nil {
			return err
		}

		result = next
		return nil
	}

	for i := 0; i < updateRetries; i++ {
		err := s.client.Watch(ctx, txf, key(id))
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		// ошибка fn пробрасывается как есть
		return wizard.State{}, err
	}

	return wizard.State{}, ErrConcurrentUpdate
}

// Delete удаляет сессию. Удаление несуществующей сессии не ошибка.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.DeleteIf(ctx, id, nil)
}

// DeleteIf удаляет сессию, если check разрешает это для текущего состояния.
// Проверка и удаление выполняются под WATCH. Ошибка check возвращается как есть.
func (s *Store) DeleteIf(ctx context.Context, id string, check func(wizard.State) error) error {
	txf := func(tx *redis.Tx) error {
		if check != nil {
			state, err := s.get(ctx, tx, id)
			if err != nil {
				if errors.Is(err, ErrSessionNotFound) {
					return nil
				}
				return err
			}
			if err := check(state); err != nil {
				return err
			}
		}

		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key(id))
			return nil
		})
		return err
	}

	for i := 0; i < updateRetries; i++ {
		err := s.client.Watch(ctx, txf, key(id))
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}

	return ErrConcurrentUpdate
}

// getter общий Get для клиента и транзакции WATCH
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *Store) get(ctx context.Context, cmd getter, id string) (wizard.State, error) {
	data, err := cmd.Get(ctx, key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return wizard.State{}, ErrSessionNotFound
		}
		return wizard.State{}, fmt.Errorf("%w: get: %v", ErrStore, err)
	}

	var state wizard.State
	if err := json.Unmarshal(data, &state); err != nil {
		return wizard.State{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return state, nil
}

func key(id string) string {
	return keyPrefix + id
}
