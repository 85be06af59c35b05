// Package catalog defines the product, course and booking records served by
// the backbone API, together with the date arithmetic shared by every layer
// that reasons about them.
package catalog

import (
	"encoding/json"
	"time"
)

// Instant is a point in time as delivered by the upstream API. Upstream date
// fields are frequently null, empty or malformed; decoding such a value yields
// the zero Instant instead of an error, so a single bad field never poisons a
// whole payload.
type Instant struct {
	time.Time
}

// IsSet reports whether the instant carries a usable value.
func (i Instant) IsSet() bool {
	return !i.Time.IsZero()
}

// UnmarshalJSON accepts RFC3339 timestamps with or without zone offset as well
// as plain dates. Anything else decodes as the zero Instant.
func (i *Instant) UnmarshalJSON(data []byte) error {
	i.Time = time.Time{}
	if string(data) == "null" {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	if t, ok := ParseInstant(raw); ok {
		i.Time = t
	}
	return nil
}

// MarshalJSON emits RFC3339 or null for unset instants.
func (i Instant) MarshalJSON() ([]byte, error) {
	if !i.IsSet() {
		return []byte("null"), nil
	}
	return json.Marshal(i.Time.Format(time.RFC3339))
}

// Product is the parent offering. Courses are only populated when the product
// was fetched with the courses join.
type Product struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	StartDate   Instant   `json:"startDate,omitempty"`
	EndDate     Instant   `json:"endDate,omitempty"`
	Location    *Location `json:"location,omitempty"`
	Tags        []Tag     `json:"tags,omitempty"`
	Courses     []Course  `json:"courses,omitempty"`
}

// Location is the venue a product is held at.
type Location struct {
	ID   int64  `json:"id"`
	Name string `json:"name,omitempty"`
}

// Tag categorises a product.
type Tag struct {
	ID          int64  `json:"id"`
	Title       string `json:"title,omitempty"`
	ActiveState bool   `json:"activeState,omitempty"`
}

// Course is a time-boxed session of a product. AvailableTillDate is an
// explicit enrollment cutoff and, when set, overrides EndDate for the
// still-offered decision.
type Course struct {
	ID                int64   `json:"id"`
	Title             string  `json:"title,omitempty"`
	StartDate         Instant `json:"startDate,omitempty"`
	EndDate           Instant `json:"endDate,omitempty"`
	AvailableTillDate Instant `json:"availableTillDate,omitempty"`
}

// Booking is a reservation linked to a product. CourseID is zero when the
// booking is not attached to any course.
type Booking struct {
	ID              int64   `json:"id"`
	StartDate       Instant `json:"startDate"`
	EndDate         Instant `json:"endDate,omitempty"`
	CourseID        int64   `json:"courseId,omitempty"`
	LinkedProductID int64   `json:"linkedProductId,omitempty"`
}

// CoursesByID builds the course lookup used during one reconciliation run.
func (p Product) CoursesByID() map[int64]Course {
	m := make(map[int64]Course, len(p.Courses))
	for _, c := range p.Courses {
		m[c.ID] = c
	}
	return m
}
