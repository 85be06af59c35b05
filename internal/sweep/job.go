package sweep

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/coursedesk/coursedesk/internal/backbone"
	"github.com/coursedesk/coursedesk/internal/catalog"
	"github.com/coursedesk/coursedesk/internal/reconcile"
)

// Upstream is the slice of the backbone client the sweep depends on.
type Upstream interface {
	Products(ctx context.Context, params backbone.ListParams) (backbone.Page[catalog.Product], error)
	Product(ctx context.Context, id int64) (catalog.Product, error)
	Bookings(ctx context.Context, productID int64, params backbone.BookingParams) (backbone.Page[catalog.Booking], error)
}

// Job reconciles the whole catalog and stores the resulting report.
type Job struct {
	upstream Upstream
	store    *Store
	logger   *slog.Logger
	loc      *time.Location
	now      func() time.Time
}

// NewJob wires the sweep job.
func NewJob(upstream Upstream, store *Store, logger *slog.Logger, loc *time.Location) *Job {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Job{
		upstream: upstream,
		store:    store,
		logger:   logger,
		loc:      loc,
		now:      time.Now,
	}
}

// WithNow overrides the job clock for testing.
func (j *Job) WithNow(fn func() time.Time) {
	if fn != nil {
		j.now = fn
	}
}

// Run sweeps one listing page of products. The whole run shares a single
// day-start instant. Fetch failures for individual products are counted and
// logged, never fatal for the run.
func (j *Job) Run(ctx context.Context, pageSize int) (Report, error) {
	started := j.now()
	today := catalog.DayStart(started, j.loc)

	listing, err := j.upstream.Products(ctx, backbone.ListParams{Limit: pageSize})
	if err != nil {
		return Report{}, fmt.Errorf("sweep: list products: %w", err)
	}

	report := Report{
		ID:              uuid.NewString(),
		Today:           today,
		StartedAt:       started,
		RemovedByReason: make(map[string]int),
	}

	for _, item := range listing.Data {
		product, res, err := j.sweepProduct(ctx, item.ID, today)
		if err != nil {
			report.Failures++
			j.logger.Warn("sweep product failed",
				slog.Int64("product_id", item.ID),
				slog.Any("error", err))
			continue
		}
		report.Products = append(report.Products, ProductSummary{
			ProductID:       item.ID,
			Title:           item.Title,
			Courses:         len(product.Courses),
			AcceptedCourses: len(res.Courses),
			Kept:            res.Kept,
			Removed:         res.Removed,
		})
		report.TotalKept += res.Kept
		report.TotalRemoved += res.Removed
		for reason, n := range res.RemovedByReason {
			report.RemovedByReason[reason] += n
		}
	}
	report.FinishedAt = j.now()
	if len(report.RemovedByReason) == 0 {
		report.RemovedByReason = nil
	}
	return report, nil
}

func (j *Job) sweepProduct(ctx context.Context, id int64, today time.Time) (catalog.Product, reconcile.Result, error) {
	product, err := j.upstream.Product(ctx, id)
	if err != nil {
		return catalog.Product{}, reconcile.Result{}, err
	}
	bookings, err := j.upstream.Bookings(ctx, id, backbone.BookingParams{Limit: backbone.CourseBookingLimit})
	if err != nil {
		return catalog.Product{}, reconcile.Result{}, err
	}
	return product, reconcile.Reconcile(product, bookings.Data, today), nil
}

// Handle is the asynq entry point for sweep tasks.
func (j *Job) Handle(ctx context.Context, task *asynq.Task) error {
	var payload SweepPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("sweep: decode payload: %w", err)
	}
	report, err := j.Run(ctx, payload.PageSize)
	if err != nil {
		return err
	}
	if err := j.store.Save(ctx, report); err != nil {
		return fmt.Errorf("sweep: store report: %w", err)
	}
	j.logger.Info("catalog sweep finished",
		slog.String("report_id", report.ID),
		slog.Int("products", len(report.Products)),
		slog.Int("failures", report.Failures),
		slog.Int("kept", report.TotalKept),
		slog.Int("removed", report.TotalRemoved))
	return nil
}
