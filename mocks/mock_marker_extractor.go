package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"labparse/internal/port"
)

// MockMarkerExtractor is a mock implementation of port.MarkerExtractor.
type MockMarkerExtractor struct {
	mock.Mock
}

func (m *MockMarkerExtractor) Extract(ctx context.Context, req port.ExtractionRequest) (*port.ExtractionResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.ExtractionResponse), args.Error(1)
}
