package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"labparse/internal/domain"
	"labparse/internal/port"
)

// MockFormatAdapter is a mock implementation of port.FormatAdapter.
type MockFormatAdapter struct {
	mock.Mock
}

func (m *MockFormatAdapter) Name() string {
	return m.Called().String(0)
}

func (m *MockFormatAdapter) DisplayName() string {
	return m.Called().String(0)
}

func (m *MockFormatAdapter) Priority() int {
	return m.Called().Int(0)
}

func (m *MockFormatAdapter) CanParse(text, filename string) bool {
	return m.Called(text, filename).Bool(0)
}

func (m *MockFormatAdapter) Parse(ctx context.Context, input port.ParseInput) (*domain.ParseResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ParseResult), args.Error(1)
}
