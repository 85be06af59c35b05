// Package reconcile decides which courses of a product are still offered and
// which bookings belong to which accepted course. It is a pure, synchronous
// transformation over fully materialized records; fetching them is the
// callers' business.
package reconcile

import (
	"time"

	"github.com/coursedesk/coursedesk/internal/catalog"
)

// Result is the outcome of one reconciliation run. It is a fresh snapshot and
// shares no slices or maps with the inputs.
type Result struct {
	ProductID int64     `json:"productId"`
	Today     time.Time `json:"today"`

	// Courses holds the accepted courses in their original order.
	Courses []catalog.Course `json:"courses"`
	// CourseBookings maps each accepted course to its valid bookings.
	CourseBookings map[int64][]catalog.Booking `json:"courseBookings"`
	// Residual holds the retained bookings outside any course bucket:
	// unattached, orphaned, and the survivors of rejected courses.
	Residual []catalog.Booking `json:"residual"`

	Kept            int            `json:"kept"`
	Removed         int            `json:"removed"`
	RemovedByReason map[string]int `json:"removedByReason,omitempty"`
}

// Reconcile partitions the booking pool of a product. A course is accepted
// only when it is still offered on today's date and at least one booking is
// valid for it. Bookings are dropped only for the expired, too-early and
// invalid-date reasons; everything else survives either in a course bucket or
// in the residual pool, so a caller falling back to the flat booking view
// never sees chronologically impossible entries.
//
// A zero today defaults to the start of the current UTC day. Callers that
// care about the evaluation zone compute today once via catalog.DayStart and
// pass it in; every sub-decision of the run then shares that single instant.
func Reconcile(p catalog.Product, bookings []catalog.Booking, today time.Time) Result {
	if today.IsZero() {
		today = catalog.DayStart(time.Now(), time.UTC)
	}
	courses := p.CoursesByID()

	classes := make([]Classification, len(bookings))
	valid := make(map[int64][]catalog.Booking)
	for i, b := range bookings {
		classes[i] = Classify(b, courses, today)
		if classes[i].Outcome == OutcomeValid {
			valid[classes[i].CourseID] = append(valid[classes[i].CourseID], b)
		}
	}

	res := Result{
		ProductID:       p.ID,
		Today:           today,
		CourseBookings:  make(map[int64][]catalog.Booking),
		RemovedByReason: make(map[string]int),
	}

	accepted := make(map[int64]bool, len(p.Courses))
	for _, c := range p.Courses {
		if CourseOffered(c, today) && len(valid[c.ID]) > 0 {
			accepted[c.ID] = true
			res.Courses = append(res.Courses, c)
			res.CourseBookings[c.ID] = append([]catalog.Booking(nil), valid[c.ID]...)
		}
	}

	for i, b := range bookings {
		cls := classes[i]
		switch {
		case cls.Outcome.Dropped():
			res.Removed++
			res.RemovedByReason[cls.Outcome.String()]++
		case cls.Outcome == OutcomeValid && accepted[cls.CourseID]:
			// Already counted into its course bucket.
		default:
			res.Residual = append(res.Residual, b)
		}
	}
	res.Kept = len(bookings) - res.Removed
	if len(res.RemovedByReason) == 0 {
		res.RemovedByReason = nil
	}
	return res
}
