package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"labparse/internal/port"
)

// MockTextExtractor is a mock implementation of port.TextExtractor.
type MockTextExtractor struct {
	mock.Mock
}

func (m *MockTextExtractor) Extract(ctx context.Context, fileBytes []byte, filename string) (*port.ExtractedText, error) {
	args := m.Called(ctx, fileBytes, filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.ExtractedText), args.Error(1)
}
