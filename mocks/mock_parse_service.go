package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"labparse/internal/domain"
	"labparse/internal/service"
)

// MockParseService is a mock implementation of service.ParseService.
type MockParseService struct {
	mock.Mock
}

func (m *MockParseService) Parse(ctx context.Context, input service.ParseInput) (*domain.ParseResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ParseResult), args.Error(1)
}

func (m *MockParseService) ParseObject(ctx context.Context, bucket, key, adapter string) (*domain.ParseResult, error) {
	args := m.Called(ctx, bucket, key, adapter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ParseResult), args.Error(1)
}

func (m *MockParseService) Formats() []service.FormatInfo {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]service.FormatInfo)
}
