package sweep

import (
	"encoding/json"
	"errors"

	"github.com/hibiken/asynq"
)

// TaskCatalogSweep is the asynq task type for a full catalog sweep.
const TaskCatalogSweep = "catalog:sweep"

// QueueDefault is the queue sweeps are processed on.
const QueueDefault = "default"

// SweepPayload parameterises one sweep run.
type SweepPayload struct {
	PageSize int `json:"pageSize"`
}

// NewSweepTask builds a catalog sweep task.
func NewSweepTask(pageSize int) (*asynq.Task, error) {
	if pageSize <= 0 {
		return nil, errors.New("sweep: page size must be positive")
	}
	payload, err := json.Marshal(SweepPayload{PageSize: pageSize})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCatalogSweep, payload), nil
}
