package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/spendwise/expense-tracker/internal/core/domain"
	"github.com/spendwise/expense-tracker/internal/core/ports"
)

// LogActivity is the ActivityLog used when no document store is configured:
// events go to the structured log only.
type LogActivity struct {
	log zerolog.Logger
}

func NewLogActivity(log zerolog.Logger) *LogActivity {
	return &LogActivity{log: log}
}

func (l *LogActivity) Record(_ context.Context, ev domain.ActivityEvent) error {
	l.log.Info().
		Str("action", ev.Action).
		Uint("user_id", ev.UserID).
		Uint("entity_id", ev.EntityID).
		Time("at", ev.Timestamp).
		Msg("activity")
	return nil
}

// activityRecorder writes audit events without ever failing the caller.
type activityRecorder struct {
	sink ports.ActivityLog
	log  zerolog.Logger
}

func newActivityRecorder(sink ports.ActivityLog, log zerolog.Logger) *activityRecorder {
	return &activityRecorder{sink: sink, log: log}
}

func (r *activityRecorder) record(ctx context.Context, userID uint, action string, entityID uint) {
	if r.sink == nil {
		return
	}
	ev := domain.ActivityEvent{
		UserID:    userID,
		Action:    action,
		EntityID:  entityID,
		Timestamp: time.Now().UTC(),
	}
	if err := r.sink.Record(ctx, ev); err != nil {
		r.log.Warn().Err(err).Str("action", action).Uint("user_id", userID).Msg("failed to record activity")
	}
}
