package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/coursedesk/coursedesk/internal/catalog"
)

func mayCourse() catalog.Course {
	return catalog.Course{ID: 1, StartDate: at("2025-05-01"), EndDate: at("2025-06-30")}
}

func TestReconcileScenarioTooEarlyDropped(t *testing.T) {
	p := catalog.Product{ID: 66, Courses: []catalog.Course{mayCourse()}}
	bookings := []catalog.Booking{{ID: 1, StartDate: at("2025-04-30"), CourseID: 1}}

	res := Reconcile(p, bookings, day("2025-05-20"))
	require.Empty(t, res.Courses)
	require.Empty(t, res.Residual)
	require.Equal(t, 1, res.Removed)
	require.Equal(t, 0, res.Kept)
	require.Equal(t, map[string]int{"too_early": 1}, res.RemovedByReason)
}

func TestReconcileScenarioValidKept(t *testing.T) {
	p := catalog.Product{ID: 66, Courses: []catalog.Course{mayCourse()}}
	bookings := []catalog.Booking{{
		ID:        2,
		StartDate: at("2025-05-15"),
		EndDate:   at("2025-05-15T01:00:00Z"),
		CourseID:  1,
	}}

	res := Reconcile(p, bookings, day("2025-05-20"))
	require.Len(t, res.Courses, 1)
	require.Equal(t, int64(1), res.Courses[0].ID)
	require.Len(t, res.CourseBookings[1], 1)
	require.Equal(t, int64(2), res.CourseBookings[1][0].ID)
	require.Equal(t, 1, res.Kept)
	require.Zero(t, res.Removed)
}

func TestReconcileScenarioExpiredCourseRejected(t *testing.T) {
	p := catalog.Product{ID: 66, Courses: []catalog.Course{{ID: 1, EndDate: at("2024-01-01")}}}
	bookings := []catalog.Booking{{ID: 3, StartDate: at("2024-06-01"), CourseID: 1}}

	res := Reconcile(p, bookings, day("2025-01-01"))
	require.Empty(t, res.Courses, "expired course must never be accepted")
	require.Equal(t, 1, res.Removed)
	require.Equal(t, map[string]int{"expired": 1}, res.RemovedByReason)
}

func TestReconcileScenarioOrphanRetained(t *testing.T) {
	p := catalog.Product{ID: 66, Courses: []catalog.Course{mayCourse()}}
	orphan := catalog.Booking{ID: 4, StartDate: at("2025-05-15"), CourseID: 999}

	res := Reconcile(p, []catalog.Booking{orphan}, day("2025-05-20"))
	require.Len(t, res.Residual, 1)
	require.Equal(t, orphan, res.Residual[0], "orphaned booking is retained untouched")
	require.Equal(t, 1, res.Kept)
}

func TestReconcileScenarioPermissiveCourse(t *testing.T) {
	p := catalog.Product{ID: 66, Courses: []catalog.Course{{ID: 5}}}
	bookings := []catalog.Booking{{ID: 6, StartDate: at("2025-05-15"), CourseID: 5}}

	res := Reconcile(p, bookings, day("2025-05-20"))
	require.Len(t, res.Courses, 1)
	require.Len(t, res.CourseBookings[5], 1)
	require.Zero(t, res.Removed)
}

func TestReconcileOfferedCourseWithoutBookingsRejected(t *testing.T) {
	p := catalog.Product{ID: 66, Courses: []catalog.Course{mayCourse()}}

	res := Reconcile(p, nil, day("2025-05-20"))
	require.Empty(t, res.Courses, "a course with zero valid bookings is rejected")
	require.Empty(t, res.CourseBookings)
}

func TestReconcileCutoffRejectsCourseButKeepsBookings(t *testing.T) {
	course := mayCourse()
	course.AvailableTillDate = at("2025-05-01")
	p := catalog.Product{ID: 66, Courses: []catalog.Course{course}}
	bookings := []catalog.Booking{{ID: 7, StartDate: at("2025-05-15"), CourseID: 1}}

	res := Reconcile(p, bookings, day("2025-05-20"))
	require.Empty(t, res.Courses, "enrollment cutoff in the past rejects the course")
	// The booking itself is chronologically fine, so it falls back into the
	// residual pool rather than being dropped.
	require.Len(t, res.Residual, 1)
	require.Equal(t, 1, res.Kept)
	require.Zero(t, res.Removed)
}

func TestReconcileAcceptedCoursesKeepInputOrder(t *testing.T) {
	p := catalog.Product{ID: 66, Courses: []catalog.Course{
		{ID: 3, StartDate: at("2025-05-01"), EndDate: at("2025-06-30")},
		{ID: 1, StartDate: at("2025-05-01"), EndDate: at("2025-06-30")},
		{ID: 2, StartDate: at("2025-05-01"), EndDate: at("2025-06-30")},
	}}
	bookings := []catalog.Booking{
		{ID: 10, StartDate: at("2025-05-10"), CourseID: 2},
		{ID: 11, StartDate: at("2025-05-10"), CourseID: 3},
		{ID: 12, StartDate: at("2025-05-10"), CourseID: 1},
	}

	res := Reconcile(p, bookings, day("2025-05-20"))
	require.Len(t, res.Courses, 3)
	require.Equal(t, int64(3), res.Courses[0].ID)
	require.Equal(t, int64(1), res.Courses[1].ID)
	require.Equal(t, int64(2), res.Courses[2].ID)
}

func TestReconcilePartitionIsComplete(t *testing.T) {
	p := catalog.Product{ID: 66, Courses: []catalog.Course{
		mayCourse(),
		{ID: 2, EndDate: at("2024-01-01")},
	}}
	bookings := []catalog.Booking{
		{ID: 1, StartDate: at("2025-05-15"), CourseID: 1}, // valid
		{ID: 2, StartDate: at("2025-04-01"), CourseID: 1}, // too early
		{ID: 3, StartDate: at("2025-05-15"), CourseID: 2}, // expired course
		{ID: 4, StartDate: at("2025-05-15")},              // unattached
		{ID: 5, StartDate: at("2025-05-15"), CourseID: 77}, // orphaned
		{ID: 6, CourseID: 1},                               // invalid start
	}

	res := Reconcile(p, bookings, day("2025-05-20"))
	bucketed := 0
	for _, bs := range res.CourseBookings {
		bucketed += len(bs)
	}
	require.Equal(t, len(bookings), bucketed+len(res.Residual)+res.Removed)
	require.Equal(t, res.Kept, bucketed+len(res.Residual))
	require.Equal(t, map[string]int{"too_early": 1, "expired": 1, "invalid": 1}, res.RemovedByReason)
}

func TestReconcileResidualIsIdempotentAcrossDates(t *testing.T) {
	p := catalog.Product{ID: 66, Courses: []catalog.Course{mayCourse()}}
	unattached := catalog.Booking{ID: 4, StartDate: at("2025-05-15")}
	orphan := catalog.Booking{ID: 5, StartDate: at("1999-01-01"), CourseID: 404}

	for _, today := range []string{"2020-01-01", "2025-05-20", "2030-12-31"} {
		res := Reconcile(p, []catalog.Booking{unattached, orphan}, day(today))
		require.Equal(t, []catalog.Booking{unattached, orphan}, res.Residual, "today=%s", today)
	}
}

func TestReconcileInconsistentCourseIntervalIsUnbookable(t *testing.T) {
	// start > end is passed through, not repaired: the overlap test can then
	// never hold and the course ends up rejected for lack of valid bookings.
	p := catalog.Product{ID: 66, Courses: []catalog.Course{{
		ID:        1,
		StartDate: at("2025-06-30"),
		EndDate:   at("2025-05-01"),
	}}}
	bookings := []catalog.Booking{{ID: 1, StartDate: at("2025-07-01"), CourseID: 1}}

	res := Reconcile(p, bookings, day("2025-01-20"))
	require.Empty(t, res.Courses)
	require.Len(t, res.Residual, 1)
}

func TestReconcileResultDoesNotAliasInputs(t *testing.T) {
	p := catalog.Product{ID: 66, Courses: []catalog.Course{mayCourse()}}
	bookings := []catalog.Booking{{ID: 1, StartDate: at("2025-05-15"), CourseID: 1}}

	res := Reconcile(p, bookings, day("2025-05-20"))
	bookings[0].ID = 999
	require.Equal(t, int64(1), res.CourseBookings[1][0].ID)
}

func TestReconcileDefaultsTodayWhenZero(t *testing.T) {
	p := catalog.Product{ID: 66}
	res := Reconcile(p, nil, time.Time{})
	require.False(t, res.Today.IsZero())
	require.Equal(t, res.Today, catalog.DayStart(res.Today, time.UTC), "default today is truncated to day start")
}
