package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(ctx context.Context, data []byte, filename, mimeType string) (string, error) {
	args := m.Called(ctx, data, filename, mimeType)
	return args.String(0), args.Error(1)
}
