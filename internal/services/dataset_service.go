package services

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"crpdash/internal/dataprocessing"
	apierrors "crpdash/internal/errors"
	"crpdash/internal/infrastructure"
	"crpdash/pkg/contracts/domain"
)

// LoadFunc reads the raw registration sheet. dataprocessing.LoadWorkbook
// is the production implementation.
type LoadFunc func(ctx context.Context, opts dataprocessing.LoadOptions) (*dataprocessing.Sheet, error)

// DatasetStatus describes the snapshot currently being served
type DatasetStatus struct {
	Loaded      bool      `json:"loaded"`
	Source      string    `json:"source,omitempty"`
	Sheet       string    `json:"sheet,omitempty"`
	Records     int       `json:"records"`
	UnknownAges int       `json:"unknown_ages"`
	LoadedAt    time.Time `json:"loaded_at,omitempty"`
	Reference   time.Time `json:"reference_date,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
	LastAttempt time.Time `json:"last_attempt,omitempty"`
}

// snapshot pairs a dataset with the counts derived from it so readers
// never see one without the other.
type snapshot struct {
	dataset     *domain.Dataset
	unknownAges int
}

// DatasetService owns the immutable dataset snapshot. Readers get the
// current snapshot without locking; a reload builds a complete new snapshot
// and swaps it in, and concurrent reloads share one workbook read.
type DatasetService struct {
	opts    dataprocessing.LoadOptions
	load    LoadFunc
	deriver *dataprocessing.Deriver
	metrics *infrastructure.BusinessMetrics
	logger  *slog.Logger

	current atomic.Pointer[snapshot]
	group   singleflight.Group

	mu          sync.Mutex
	lastErr     error
	lastAttempt time.Time
}

// NewDatasetService creates a dataset service. Nothing is loaded until Load is called.
func NewDatasetService(opts dataprocessing.LoadOptions, deriver *dataprocessing.Deriver, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *DatasetService {
	if deriver == nil {
		deriver = dataprocessing.NewDeriver(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetService{
		opts:    opts,
		load:    dataprocessing.LoadWorkbook,
		deriver: deriver,
		metrics: metrics,
		logger:  infrastructure.WithComponent(logger, "dataset_service"),
	}
}

// WithLoader replaces the workbook reader
func (s *DatasetService) WithLoader(load LoadFunc) *DatasetService {
	s.load = load
	return s
}

// Load reads and derives the workbook, then swaps the snapshot. On failure
// the previous snapshot keeps being served and a dataset error is returned.
func (s *DatasetService) Load(ctx context.Context) (*domain.Dataset, error) {
	ch := s.group.DoChan("load", func() (interface{}, error) {
		// shared by every waiting caller, so one caller going away must not cancel it
		return s.loadOnce(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.Dataset), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *DatasetService) loadOnce(ctx context.Context) (*domain.Dataset, error) {
	start := time.Now()
	logger := s.logger.With(slog.String("path", s.opts.Path), slog.String("sheet", s.opts.Sheet))
	logger.InfoContext(ctx, "Loading dataset")

	sheet, err := s.load(ctx, s.opts)
	if err != nil {
		infrastructure.RecordDatasetLoad(ctx, s.metrics, 0, 0, time.Since(start), err)
		s.setAttempt(err)
		logger.ErrorContext(ctx, "Dataset load failed",
			slog.String("error", err.Error()),
			slog.Bool("serving_previous", s.current.Load() != nil))
		return nil, apierrors.NewDatasetError("failed to load dataset", err).
			WithContext("path", s.opts.Path)
	}

	ds := s.deriver.BuildDataset(sheet)
	unknown := dataprocessing.UnknownAges(ds)
	s.current.Store(&snapshot{dataset: ds, unknownAges: unknown})
	s.setAttempt(nil)

	infrastructure.RecordDatasetLoad(ctx, s.metrics, ds.Len(), unknown, time.Since(start), nil)
	logger.InfoContext(ctx, "Dataset loaded",
		slog.Int("records", ds.Len()),
		slog.Int("blank_rows", sheet.BlankRows),
		slog.Int("unknown_ages", unknown),
		slog.Duration("duration", time.Since(start)))

	return ds, nil
}

func (s *DatasetService) setAttempt(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
	s.lastAttempt = time.Now()
}

// Current returns the snapshot being served
func (s *DatasetService) Current() (*domain.Dataset, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, apierrors.ErrDatasetUnavailable
	}
	return snap.dataset, nil
}

// Status reports what is being served and how the last load went
func (s *DatasetService) Status() DatasetStatus {
	s.mu.Lock()
	status := DatasetStatus{LastAttempt: s.lastAttempt}
	if s.lastErr != nil {
		status.LastError = s.lastErr.Error()
	}
	s.mu.Unlock()

	if snap := s.current.Load(); snap != nil {
		ds := snap.dataset
		status.Loaded = true
		status.Source = ds.Source
		status.Sheet = ds.Sheet
		status.Records = ds.Len()
		status.UnknownAges = snap.unknownAges
		status.LoadedAt = ds.LoadedAt
		status.Reference = ds.Reference
	}
	return status
}

// Options returns the values every dashboard control can take
func (s *DatasetService) Options(ctx context.Context) (domain.FilterOptions, error) {
	ds, err := s.Current()
	if err != nil {
		return domain.FilterOptions{}, err
	}
	return dataprocessing.Options(ds), nil
}

// Query filters the current snapshot
func (s *DatasetService) Query(ctx context.Context, sel domain.Selection) (dataprocessing.View, error) {
	ds, err := s.Current()
	if err != nil {
		return dataprocessing.View{}, err
	}
	view := dataprocessing.ApplyFilters(ds, sel)
	infrastructure.RecordFilter(ctx, s.metrics, !sel.IsEmpty(), view.Len())

	infrastructure.LoggerWithContext(ctx).Debug("Filter applied",
		slog.Any("selection", sel),
		slog.Int("matched", view.Len()),
		slog.Int("total", ds.Len()))
	return view, nil
}

// Summary filters the current snapshot and aggregates the result
func (s *DatasetService) Summary(ctx context.Context, sel domain.Selection) (domain.Summary, dataprocessing.View, error) {
	view, err := s.Query(ctx, sel)
	if err != nil {
		return domain.Summary{}, view, err
	}
	return dataprocessing.Summarize(view, sel), view, nil
}
