package sweep

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/coursedesk/coursedesk/internal/backbone"
	"github.com/coursedesk/coursedesk/internal/catalog"
)

type stubUpstream struct {
	products map[int64]catalog.Product
	bookings map[int64][]catalog.Booking
	listing  []catalog.Product
	failFor  map[int64]error
}

func (s *stubUpstream) Products(ctx context.Context, params backbone.ListParams) (backbone.Page[catalog.Product], error) {
	return backbone.Page[catalog.Product]{Data: s.listing, Count: len(s.listing), Total: len(s.listing), Page: 1, PageCount: 1}, nil
}

func (s *stubUpstream) Product(ctx context.Context, id int64) (catalog.Product, error) {
	if err := s.failFor[id]; err != nil {
		return catalog.Product{}, err
	}
	return s.products[id], nil
}

func (s *stubUpstream) Bookings(ctx context.Context, productID int64, params backbone.BookingParams) (backbone.Page[catalog.Booking], error) {
	data := s.bookings[productID]
	return backbone.Page[catalog.Booking]{Data: data, Count: len(data), Total: len(data), Page: 1, PageCount: 1}, nil
}

func instant(raw string) catalog.Instant {
	t, ok := catalog.ParseInstant(raw)
	if !ok {
		panic("bad test instant: " + raw)
	}
	return catalog.Instant{Time: t}
}

func testCatalog() *stubUpstream {
	course := catalog.Course{ID: 1, StartDate: instant("2025-05-01"), EndDate: instant("2025-06-30")}
	return &stubUpstream{
		listing: []catalog.Product{
			{ID: 66, Title: "Badminton"},
			{ID: 67, Title: "Yoga"},
		},
		products: map[int64]catalog.Product{
			66: {ID: 66, Title: "Badminton", Courses: []catalog.Course{course}},
			67: {ID: 67, Title: "Yoga"},
		},
		bookings: map[int64][]catalog.Booking{
			66: {
				{ID: 1, StartDate: instant("2025-05-15"), CourseID: 1},
				{ID: 2, StartDate: instant("2025-04-15"), CourseID: 1},
			},
			67: {
				{ID: 3, StartDate: instant("2025-05-15")},
			},
		},
		failFor: map[int64]error{},
	}
}

func TestJobRunAggregates(t *testing.T) {
	upstream := testCatalog()
	job := NewJob(upstream, nil, nil, time.UTC)
	job.WithNow(func() time.Time { return time.Date(2025, 5, 20, 4, 30, 0, 0, time.UTC) })

	report, err := job.Run(context.Background(), 100)
	require.NoError(t, err)
	require.NotEmpty(t, report.ID)
	require.True(t, report.Today.Equal(time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)))
	require.Len(t, report.Products, 2)
	require.Zero(t, report.Failures)

	badminton := report.Products[0]
	require.Equal(t, int64(66), badminton.ProductID)
	require.Equal(t, 1, badminton.Courses)
	require.Equal(t, 1, badminton.AcceptedCourses)
	require.Equal(t, 1, badminton.Kept)
	require.Equal(t, 1, badminton.Removed)

	require.Equal(t, 2, report.TotalKept)
	require.Equal(t, 1, report.TotalRemoved)
	require.Equal(t, map[string]int{"too_early": 1}, report.RemovedByReason)
}

func TestJobRunCountsFailuresAndContinues(t *testing.T) {
	upstream := testCatalog()
	upstream.failFor[66] = errors.New("boom")
	job := NewJob(upstream, nil, nil, time.UTC)

	report, err := job.Run(context.Background(), 100)
	require.NoError(t, err)
	require.Equal(t, 1, report.Failures)
	require.Len(t, report.Products, 1)
	require.Equal(t, int64(67), report.Products[0].ProductID)
}

func TestHandleStoresReport(t *testing.T) {
	store := newTestStore(t)
	job := NewJob(testCatalog(), store, nil, time.UTC)

	task, err := NewSweepTask(100)
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	report, err := store.Latest(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Products, 2)
}

func TestNewSweepTaskRejectsBadPageSize(t *testing.T) {
	_, err := NewSweepTask(0)
	require.Error(t, err)
}

func TestReportHandler(t *testing.T) {
	store := newTestStore(t)
	handler := NewHandler(store, nil)
	router := chi.NewRouter()
	handler.MountRoutes(router)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/reports/sweep", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)

	require.NoError(t, store.Save(context.Background(), Report{ID: "run-9"}))
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/reports/sweep", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "run-9")
}
