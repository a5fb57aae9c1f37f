package http

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/stretchr/testify/mock"

	"crpdash/internal/config"
	"crpdash/internal/dataprocessing"
	apierrors "crpdash/internal/errors"
	"crpdash/internal/middleware"
	"crpdash/internal/services"
	"crpdash/pkg/contracts/domain"
)

// MockDatasetService is a mock implementation of DatasetService
type MockDatasetService struct {
	mock.Mock
}

func (m *MockDatasetService) Options(ctx context.Context) (domain.FilterOptions, error) {
	args := m.Called()
	return args.Get(0).(domain.FilterOptions), args.Error(1)
}

func (m *MockDatasetService) Query(ctx context.Context, sel domain.Selection) (dataprocessing.View, error) {
	args := m.Called(sel)
	return args.Get(0).(dataprocessing.View), args.Error(1)
}

func (m *MockDatasetService) Summary(ctx context.Context, sel domain.Selection) (domain.Summary, dataprocessing.View, error) {
	args := m.Called(sel)
	return args.Get(0).(domain.Summary), args.Get(1).(dataprocessing.View), args.Error(2)
}

func (m *MockDatasetService) Load(ctx context.Context) (*domain.Dataset, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dataset), args.Error(1)
}

func (m *MockDatasetService) Status() services.DatasetStatus {
	return m.Called().Get(0).(services.DatasetStatus)
}

var referenceDay = time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testErrorHandler() *apierrors.ErrorHandler {
	return apierrors.NewErrorHandler(testLogger(), false)
}

func testValidator() *middleware.Validator {
	return middleware.NewValidator()
}

// testDataset holds four derived rows covering every age group
func testDataset() *domain.Dataset {
	raw := []domain.Record{
		{
			Row:            2,
			DateOfBirth:    domain.DateCell(time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC)),
			Gender:         "M",
			PresentAddress: "House 4, Sector G-9/2",
			Reg:            "CRPD-0001",
			Qualification:  "Graduate",
			MaritalStatus:  "Married",
			Disability:     "Physical",
		},
		{
			Row:            3,
			DateOfBirth:    domain.TextCell("1-1-2015"),
			Gender:         "F",
			PresentAddress: "Lahore",
			Reg:            "ncrpd-17",
			Qualification:  "Primary",
			MaritalStatus:  "Single",
			Disability:     "Visual",
		},
		{
			Row:            4,
			DateOfBirth:    domain.DateCell(time.Date(1950, 7, 9, 0, 0, 0, 0, time.UTC)),
			Gender:         "F",
			PresentAddress: "Karachi",
			Reg:            "CRPD-0002",
			Qualification:  "Graduate",
			MaritalStatus:  "Widowed",
			Disability:     "Physical",
		},
		{
			Row:            5,
			DateOfBirth:    domain.TextCell("not a date"),
			Gender:         "x",
			PresentAddress: "Quetta",
			Reg:            "",
			Qualification:  "Matric",
			MaritalStatus:  "Single",
			Disability:     "Hearing",
		},
	}
	return &domain.Dataset{
		Records:   dataprocessing.DeriveAt(raw, referenceDay),
		Headers:   config.RequiredColumns,
		Source:    "data/sample.xlsx",
		Sheet:     "Sheet1",
		LoadedAt:  referenceDay,
		Reference: referenceDay,
	}
}

func loadedStatus(ds *domain.Dataset) services.DatasetStatus {
	return services.DatasetStatus{
		Loaded:    true,
		Source:    ds.Source,
		Sheet:     ds.Sheet,
		Records:   ds.Len(),
		LoadedAt:  ds.LoadedAt,
		Reference: ds.Reference,
	}
}
