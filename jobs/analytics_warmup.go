package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/bookpulse/bookpulse/internal/analytics"
)

// AnalyticsWarmupJob repopulates a user's cached aggregates after an
// ingestion batch lands.
type AnalyticsWarmupJob struct {
	Analytics *analytics.Service
	Logger    *slog.Logger
}

// NewAnalyticsWarmupJob wires dependencies for the warmup handler.
func NewAnalyticsWarmupJob(analyticsSvc *analytics.Service, logger *slog.Logger) *AnalyticsWarmupJob {
	return &AnalyticsWarmupJob{Analytics: analyticsSvc, Logger: logger}
}

// Handle processes analytics warmup tasks. Warming the unfiltered
// overview fills the cache entry the dashboard reads first.
func (j *AnalyticsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Analytics == nil {
		return errors.New("analytics warmup: handler not configured")
	}
	var payload AnalyticsWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	logger := j.Logger.With(slog.String("user_id", payload.UserID.String()))
	logger.Info("starting analytics warmup")

	if _, err := j.Analytics.GetOverview(ctx, payload.UserID, nil, nil); err != nil {
		logger.Error("warm overview", slog.Any("error", err))
		return err
	}

	logger.Info("analytics warmup complete")
	return nil
}
