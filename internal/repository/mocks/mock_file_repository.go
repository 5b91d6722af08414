package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/math-u-t/litedrive/internal/model"
)

type MockFileRepository struct {
	mock.Mock
}

func (m *MockFileRepository) Insert(ctx context.Context, rec *model.FileRecord) (string, error) {
	args := m.Called(ctx, rec)
	return args.String(0), args.Error(1)
}

func (m *MockFileRepository) FindOne(ctx context.Context, id, ownerID string) (*model.FileRecord, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FileRecord), args.Error(1)
}

func (m *MockFileRepository) DeleteOne(ctx context.Context, id, ownerID string) (int64, error) {
	args := m.Called(ctx, id, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFileRepository) FindByOwner(ctx context.Context, ownerID string) ([]model.FileRecord, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FileRecord), args.Error(1)
}

func (m *MockFileRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
