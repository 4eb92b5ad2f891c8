package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskIntegrityOrphanScan is the task type for the orphaned-post scan.
	TaskIntegrityOrphanScan = "integrity:orphan_scan"
)

// OrphanScanPayload bounds a single orphaned-post scan.
type OrphanScanPayload struct {
	Limit int `json:"limit"`
}

// NewOrphanScanTask constructs an Asynq task for the orphan scan.
func NewOrphanScanTask(limit int) (*asynq.Task, error) {
	data, err := json.Marshal(OrphanScanPayload{Limit: limit})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIntegrityOrphanScan, data), nil
}
