package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/math-u-t/litedrive/internal/model"
	"github.com/math-u-t/litedrive/internal/service"
)

type MockFileService struct {
	mock.Mock
}

func (m *MockFileService) Upload(ctx context.Context, in service.UploadInput) (*service.UploadResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UploadResult), args.Error(1)
}

func (m *MockFileService) Delete(ctx context.Context, in service.DeleteInput) error {
	args := m.Called(ctx, in)
	return args.Error(0)
}

func (m *MockFileService) List(ctx context.Context, ownerID string) ([]model.FileRecord, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FileRecord), args.Error(1)
}
