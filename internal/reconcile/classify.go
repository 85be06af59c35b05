package reconcile

import (
	"time"

	"github.com/coursedesk/coursedesk/internal/catalog"
)

// Outcome is the classification of one booking against the course set of the
// product it belongs to.
type Outcome int

const (
	// OutcomeUnattached marks a booking without a course reference. It is
	// always retained.
	OutcomeUnattached Outcome = iota
	// OutcomeOrphanedCourse marks a booking whose course reference does not
	// resolve within the current product. Retained, same as unattached.
	OutcomeOrphanedCourse
	// OutcomeExpired marks a booking on a course whose end date lies in the
	// past. Dropped.
	OutcomeExpired
	// OutcomeInvalid marks a booking whose own start date is absent or
	// unparseable. Dropped.
	OutcomeInvalid
	// OutcomeTooEarly marks a booking starting strictly before its course.
	// Dropped.
	OutcomeTooEarly
	// OutcomeOutOfWindow marks a booking that clears the expiry and
	// too-early rules but does not overlap the course interval. It never
	// lands in a course bucket, but survives in the residual pool.
	OutcomeOutOfWindow
	// OutcomeValid marks a booking that belongs to its course.
	OutcomeValid
)

var outcomeNames = map[Outcome]string{
	OutcomeUnattached:     "unattached",
	OutcomeOrphanedCourse: "orphaned_course",
	OutcomeExpired:        "expired",
	OutcomeInvalid:        "invalid",
	OutcomeTooEarly:       "too_early",
	OutcomeOutOfWindow:    "out_of_window",
	OutcomeValid:          "valid",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return "unknown"
}

// Dropped reports whether the outcome removes the booking from every view.
func (o Outcome) Dropped() bool {
	return o == OutcomeExpired || o == OutcomeTooEarly || o == OutcomeInvalid
}

// Classification pairs an outcome with the course it resolved against, when
// one resolved.
type Classification struct {
	Outcome  Outcome
	CourseID int64
}

// Classify decides a single booking. The rule order is policy: an expired
// course wins over every booking-level check, and the too-early test uses a
// strict inequality so a booking starting exactly at course start passes.
// Classify is pure; courses and today must be the ones of the current run.
func Classify(b catalog.Booking, courses map[int64]catalog.Course, today time.Time) Classification {
	if b.CourseID == 0 {
		return Classification{Outcome: OutcomeUnattached}
	}
	course, ok := courses[b.CourseID]
	if !ok {
		return Classification{Outcome: OutcomeOrphanedCourse}
	}
	cls := Classification{CourseID: course.ID}

	if course.EndDate.IsSet() && course.EndDate.Before(today) {
		cls.Outcome = OutcomeExpired
		return cls
	}
	if !b.StartDate.IsSet() {
		cls.Outcome = OutcomeInvalid
		return cls
	}
	if course.StartDate.IsSet() && b.StartDate.Time.Before(course.StartDate.Time) {
		cls.Outcome = OutcomeTooEarly
		return cls
	}
	if course.StartDate.IsSet() && course.EndDate.IsSet() {
		if !catalog.Overlaps(b.StartDate.Time, b.EffectiveEnd(), course.StartDate.Time, course.EndDate.Time) {
			cls.Outcome = OutcomeOutOfWindow
			return cls
		}
	}
	cls.Outcome = OutcomeValid
	return cls
}
