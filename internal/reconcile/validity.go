package reconcile

import (
	"time"

	"github.com/coursedesk/coursedesk/internal/catalog"
)

// CourseOffered reports whether a course can still be booked on the given
// day. An explicit enrollment cutoff (availableTillDate) takes precedence
// over the course's own end date; a course without either bound is treated
// as open-ended and stays offered.
func CourseOffered(c catalog.Course, today time.Time) bool {
	if c.AvailableTillDate.IsSet() {
		return c.AvailableTillDate.After(today)
	}
	if c.EndDate.IsSet() {
		return c.EndDate.After(today)
	}
	return true
}
