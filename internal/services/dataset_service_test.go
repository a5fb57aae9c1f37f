package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crpdash/internal/dataprocessing"
	apierrors "crpdash/internal/errors"
	"crpdash/internal/infrastructure"
	"crpdash/pkg/contracts/domain"
)

var fixedDay = time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)

func testSheet() *dataprocessing.Sheet {
	return &dataprocessing.Sheet{
		Path:    "book.xlsx",
		Name:    "Final Data",
		Headers: []string{"Date of Birth", "Gender", "Reg", "Qualification", "Disability"},
		Records: []domain.Record{
			{Row: 2, DateOfBirth: domain.NumberCell(1990), Gender: "M", Reg: "CRPD", Qualification: "Matric", Disability: "Blind"},
			{Row: 3, DateOfBirth: domain.NumberCell(2015), Gender: "F", Reg: "NCRPD", Qualification: "Primary", Disability: "Deaf"},
			{Row: 4, DateOfBirth: domain.TextCell("?"), Gender: "F", Reg: "CRPD", Qualification: "Matric", Disability: "Blind"},
		},
	}
}

func newTestService(load LoadFunc) *DatasetService {
	deriver := dataprocessing.NewDeriver(func() time.Time { return fixedDay })
	return NewDatasetService(dataprocessing.LoadOptions{Path: "book.xlsx"}, deriver, infrastructure.NoopBusinessMetrics(), nil).
		WithLoader(load)
}

func TestDatasetServiceLoad(t *testing.T) {
	svc := newTestService(func(ctx context.Context, opts dataprocessing.LoadOptions) (*dataprocessing.Sheet, error) {
		assert.Equal(t, "book.xlsx", opts.Path)
		return testSheet(), nil
	})

	_, err := svc.Current()
	require.ErrorIs(t, err, apierrors.ErrDatasetUnavailable)
	assert.False(t, svc.Status().Loaded)

	ds, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, fixedDay, ds.Reference)

	current, err := svc.Current()
	require.NoError(t, err)
	assert.Same(t, ds, current)

	st := svc.Status()
	assert.True(t, st.Loaded)
	assert.Equal(t, 3, st.Records)
	assert.Equal(t, 1, st.UnknownAges)
	assert.Empty(t, st.LastError)
}

func TestDatasetServiceFailedReloadKeepsSnapshot(t *testing.T) {
	fail := atomic.Bool{}
	svc := newTestService(func(ctx context.Context, opts dataprocessing.LoadOptions) (*dataprocessing.Sheet, error) {
		if fail.Load() {
			return nil, dataprocessing.ErrWorkbookNotFound
		}
		return testSheet(), nil
	})

	first, err := svc.Load(context.Background())
	require.NoError(t, err)

	fail.Store(true)
	_, err = svc.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, dataprocessing.ErrWorkbookNotFound)

	var appErr *apierrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apierrors.ErrTypeDataset, appErr.Type)

	current, err := svc.Current()
	require.NoError(t, err)
	assert.Same(t, first, current)

	st := svc.Status()
	assert.True(t, st.Loaded)
	assert.Contains(t, st.LastError, "workbook not found")
}

func TestDatasetServiceStatusCountsMatchSnapshot(t *testing.T) {
	var n atomic.Int32
	svc := newTestService(func(ctx context.Context, opts dataprocessing.LoadOptions) (*dataprocessing.Sheet, error) {
		if n.Add(1)%2 == 0 {
			sheet := testSheet()
			sheet.Records = []domain.Record{
				{Row: 2, DateOfBirth: domain.TextCell("?"), Gender: "M"},
				{Row: 3, DateOfBirth: domain.Cell{}, Gender: "F"},
			}
			return sheet, nil
		}
		return testSheet(), nil
	})

	_, err := svc.Load(context.Background())
	require.NoError(t, err)

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_, _ = svc.Load(context.Background())
		}
		close(done)
	}()

	for {
		select {
		case <-done:
			wg.Wait()
			return
		default:
		}
		st := svc.Status()
		switch st.Records {
		case 3:
			require.Equal(t, 1, st.UnknownAges)
		case 2:
			require.Equal(t, 2, st.UnknownAges)
		default:
			t.Fatalf("unexpected record count %d", st.Records)
		}
	}
}

func TestDatasetServiceConcurrentReloadsShareOneRead(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	started := make(chan struct{}, 1)

	svc := newTestService(func(ctx context.Context, opts dataprocessing.LoadOptions) (*dataprocessing.Sheet, error) {
		calls.Add(1)
		started <- struct{}{}
		<-release
		return testSheet(), nil
	})

	var wg sync.WaitGroup
	results := make([]*domain.Dataset, 5)
	load := func(i int) {
		defer wg.Done()
		ds, err := svc.Load(context.Background())
		assert.NoError(t, err)
		results[i] = ds
	}

	wg.Add(1)
	go load(0)
	<-started

	for i := 1; i < len(results); i++ {
		wg.Add(1)
		go load(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, ds := range results {
		assert.Same(t, results[0], ds)
	}
}

func TestDatasetServiceLoadCallerCancelled(t *testing.T) {
	release := make(chan struct{})
	svc := newTestService(func(ctx context.Context, opts dataprocessing.LoadOptions) (*dataprocessing.Sheet, error) {
		<-release
		return testSheet(), nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	assert.Eventually(t, func() bool { return svc.Status().Loaded }, time.Second, 10*time.Millisecond)
}

func TestDatasetServiceQueryAndSummary(t *testing.T) {
	svc := newTestService(func(ctx context.Context, opts dataprocessing.LoadOptions) (*dataprocessing.Sheet, error) {
		return testSheet(), nil
	})

	_, err := svc.Query(context.Background(), domain.DefaultSelection())
	require.ErrorIs(t, err, apierrors.ErrDatasetUnavailable)

	_, err = svc.Load(context.Background())
	require.NoError(t, err)

	sel := domain.DefaultSelection()
	sel.Gender = "Female"
	summary, view, err := svc.Summary(context.Background(), sel)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Len())
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, sel, summary.Selection)

	opts, err := svc.Options(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"All", "Matric", "Primary"}, opts.Educations)
}
