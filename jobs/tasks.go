// Package jobs defines the background tasks processed by the worker
// binary. The only task today recomputes a user's aggregate views
// after an ingestion batch so the first dashboard load after an upload
// hits a warm cache.
package jobs

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAnalyticsWarmup is the task type for aggregate cache warmup.
	TaskAnalyticsWarmup = "analytics:warmup"
)

// AnalyticsWarmupPayload identifies whose aggregates to warm.
type AnalyticsWarmupPayload struct {
	UserID uuid.UUID `json:"user_id"`
}

// NewAnalyticsWarmupTask constructs an Asynq task.
func NewAnalyticsWarmupTask(payload AnalyticsWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAnalyticsWarmup, data), nil
}

// Client enqueues tasks from the API process.
type Client struct {
	client *asynq.Client
}

// NewClient wraps an asynq.Client.
func NewClient(client *asynq.Client) *Client {
	return &Client{client: client}
}

// EnqueueWarmup schedules an aggregate warmup for one user.
func (c *Client) EnqueueWarmup(ctx context.Context, userID uuid.UUID) error {
	task, err := NewAnalyticsWarmupTask(AnalyticsWarmupPayload{UserID: userID})
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
	return err
}
