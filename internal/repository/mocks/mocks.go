package mocks

import (
	"context"

	"github.com/joaodperes/stardust/internal/repository"
	"github.com/stretchr/testify/mock"
)

// Store is a mock for repository.Store.
type Store struct {
	mock.Mock
}

var _ repository.Store = (*Store)(nil)

func (m *Store) Read(ctx context.Context, path string) ([]byte, error) {
	args := m.Called(ctx, path)
	if value, ok := args.Get(0).([]byte); ok {
		return value, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) Write(ctx context.Context, path string, value []byte) error {
	args := m.Called(ctx, path, value)
	return args.Error(0)
}

func (m *Store) Delete(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

func (m *Store) List(ctx context.Context, prefix string) ([]repository.Entry, error) {
	args := m.Called(ctx, prefix)
	if entries, ok := args.Get(0).([]repository.Entry); ok {
		return entries, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	args := m.Called(ctx, prefix)
	if keys, ok := args.Get(0).([]string); ok {
		return keys, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) TransactionalUpdate(ctx context.Context, path string, fn repository.UpdateFunc) (repository.UpdateResult, error) {
	args := m.Called(ctx, path, fn)
	return args.Get(0).(repository.UpdateResult), args.Error(1)
}

func (m *Store) BatchUpdate(ctx context.Context, writes map[string][]byte) error {
	args := m.Called(ctx, writes)
	return args.Error(0)
}

func (m *Store) Atomic(ctx context.Context, fn func(txn repository.Txn) error) error {
	args := m.Called(ctx, fn)
	return args.Error(0)
}
