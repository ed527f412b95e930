package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docanalyzer/internal/model"
	"docanalyzer/internal/service"
)

type MockAnalysisService struct {
	mock.Mock
}

func (m *MockAnalysisService) Analyze(ctx context.Context, req model.AnalysisRequest) (*model.AnalysisOutcome, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AnalysisOutcome), args.Error(1)
}

type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) Export(ctx context.Context, field model.OutputID, format service.ExportFormat, result model.AnalysisResult) (*service.ExportFile, error) {
	args := m.Called(ctx, field, format, result)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExportFile), args.Error(1)
}
