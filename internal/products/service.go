// Package products assembles reconciled product views from the upstream API.
package products

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/coursedesk/coursedesk/internal/backbone"
	"github.com/coursedesk/coursedesk/internal/catalog"
	"github.com/coursedesk/coursedesk/internal/reconcile"
)

// fanOutLimit caps concurrent per-course booking fetches against the
// upstream API.
const fanOutLimit = 4

// Upstream is the slice of the backbone client the service depends on.
type Upstream interface {
	Products(ctx context.Context, params backbone.ListParams) (backbone.Page[catalog.Product], error)
	Product(ctx context.Context, id int64) (catalog.Product, error)
	Bookings(ctx context.Context, productID int64, params backbone.BookingParams) (backbone.Page[catalog.Booking], error)
}

// Service fetches products and bookings and runs the reconciliation engine
// over them. It owns the evaluation time zone so that every run shares a
// single, consistently truncated "today".
type Service struct {
	upstream Upstream
	loc      *time.Location
	collator *collate.Collator
	now      func() time.Time
}

// NewService wires the upstream client with the evaluation zone.
func NewService(upstream Upstream, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		upstream: upstream,
		loc:      loc,
		collator: collate.New(language.German),
		now:      time.Now,
	}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// Today returns the day-start instant every decision of one run is anchored
// to.
func (s *Service) Today() time.Time {
	return catalog.DayStart(s.now(), s.loc)
}

// Listing is a page of products ordered for display.
type Listing struct {
	Products []catalog.Product `json:"products"`
	Page     int               `json:"page"`
	Total    int               `json:"total"`
}

// List returns the active product listing, ordered by title with German
// collation since the upstream catalog is German.
func (s *Service) List(ctx context.Context, params backbone.ListParams) (Listing, error) {
	page, err := s.upstream.Products(ctx, params)
	if err != nil {
		return Listing{}, fmt.Errorf("list products: %w", err)
	}
	items := append([]catalog.Product(nil), page.Data...)
	sort.SliceStable(items, func(i, j int) bool {
		return s.collator.CompareString(items[i].Title, items[j].Title) < 0
	})
	return Listing{Products: items, Page: page.Page, Total: page.Total}, nil
}

// View is the reconciled detail of one product.
type View struct {
	Product catalog.Product  `json:"product"`
	Result  reconcile.Result `json:"result"`
}

// View fetches a product together with its parent booking pool and
// reconciles them. The two requests run concurrently, mirroring how the
// per-course pools are fetched in Schedule.
func (s *Service) View(ctx context.Context, id int64) (View, error) {
	var (
		product  catalog.Product
		bookings backbone.Page[catalog.Booking]
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		product, err = s.upstream.Product(gctx, id)
		if err != nil {
			return fmt.Errorf("fetch product %d: %w", id, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		bookings, err = s.upstream.Bookings(gctx, id, backbone.BookingParams{})
		if err != nil {
			return fmt.Errorf("fetch bookings for product %d: %w", id, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return View{}, err
	}

	result := reconcile.Reconcile(product, bookings.Data, s.Today())
	product.Courses = result.Courses
	return View{Product: product, Result: result}, nil
}

// Schedule fetches one booking pool per course of the product, merges them
// with the parent pool and reconciles the whole set. This is the expensive
// fan-out path behind the timetable view.
func (s *Service) Schedule(ctx context.Context, id int64) (View, error) {
	product, err := s.upstream.Product(ctx, id)
	if err != nil {
		return View{}, fmt.Errorf("fetch product %d: %w", id, err)
	}

	pools := make([][]catalog.Booking, len(product.Courses)+1)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOutLimit)
	g.Go(func() error {
		page, err := s.upstream.Bookings(gctx, id, backbone.BookingParams{})
		if err != nil {
			return fmt.Errorf("fetch bookings for product %d: %w", id, err)
		}
		pools[0] = page.Data
		return nil
	})
	for i, course := range product.Courses {
		g.Go(func() error {
			page, err := s.upstream.Bookings(gctx, id, backbone.BookingParams{
				Limit:    backbone.CourseBookingLimit,
				CourseID: course.ID,
			})
			if err != nil {
				return fmt.Errorf("fetch bookings for course %d: %w", course.ID, err)
			}
			pools[i+1] = page.Data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return View{}, err
	}

	result := reconcile.Reconcile(product, mergePools(pools), s.Today())
	product.Courses = result.Courses
	return View{Product: product, Result: result}, nil
}

// mergePools flattens the fetched pools, dropping duplicates: a booking
// attached to a course shows up both in the parent pool and in its course
// pool.
func mergePools(pools [][]catalog.Booking) []catalog.Booking {
	seen := make(map[int64]bool)
	var merged []catalog.Booking
	for _, pool := range pools {
		for _, b := range pool {
			if seen[b.ID] {
				continue
			}
			seen[b.ID] = true
			merged = append(merged, b)
		}
	}
	return merged
}
