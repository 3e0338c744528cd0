package memstore

import (
	"context"
	"fmt"
)

// TxManager менеджер транзакций поверх Store
type TxManager struct {
	store *Store
}

// TxManager возвращает менеджер транзакций хранилища
func (s *Store) TxManager() *TxManager {
	return &TxManager{store: s}
}

func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	// Вложенный вызов работает в уже открытой транзакции
	if inTx(ctx) {
		return fn(ctx)
	}

	m.store.txMu.Lock()
	defer m.store.txMu.Unlock()

	m.store.mu.Lock()
	saved := m.store.snapshot()
	if ferr := m.store.failure("tx.Begin"); ferr != nil {
		m.store.mu.Unlock()
		return ferr
	}
	m.store.mu.Unlock()

	rollback := func() {
		m.store.mu.Lock()
		m.store.st = saved
		m.store.mu.Unlock()
	}

	defer func() {
		if p := recover(); p != nil {
			rollback()
			panic(p)
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		rollback()
		return err
	}

	m.store.mu.Lock()
	ferr := m.store.failure("tx.Commit")
	m.store.mu.Unlock()
	if ferr != nil {
		rollback()
		return fmt.Errorf("commit: %w", ferr)
	}

	return nil
}
