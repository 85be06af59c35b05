// Package sweep runs the scheduled catalog sweep: every product is
// reconciled against its booking pool and the kept/removed tallies are
// published for inspection.
package sweep

import "time"

// ProductSummary is the sweep outcome for one product.
type ProductSummary struct {
	ProductID       int64  `json:"productId"`
	Title           string `json:"title,omitempty"`
	Courses         int    `json:"courses"`
	AcceptedCourses int    `json:"acceptedCourses"`
	Kept            int    `json:"kept"`
	Removed         int    `json:"removed"`
}

// Report aggregates one sweep run.
type Report struct {
	ID         string           `json:"id"`
	Today      time.Time        `json:"today"`
	StartedAt  time.Time        `json:"startedAt"`
	FinishedAt time.Time        `json:"finishedAt"`
	Products   []ProductSummary `json:"products"`
	Failures   int              `json:"failures"`

	TotalKept    int `json:"totalKept"`
	TotalRemoved int `json:"totalRemoved"`

	RemovedByReason map[string]int `json:"removedByReason,omitempty"`
}
