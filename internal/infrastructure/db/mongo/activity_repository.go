package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/spendwise/expense-tracker/internal/core/domain"
	"github.com/spendwise/expense-tracker/internal/core/ports"
)

const activityCollection = "activity_events"

// ActivityRepository implements ports.ActivityLog using MongoDB.
type ActivityRepository struct {
	db *mongo.Database
}

func NewActivityRepository(db *mongo.Database) ports.ActivityLog {
	return &ActivityRepository{db: db}
}

// Record appends one event to the activity_events audit collection.
func (r *ActivityRepository) Record(ctx context.Context, ev domain.ActivityEvent) error {
	if _, err := r.db.Collection(activityCollection).InsertOne(ctx, activityDocument(ev)); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func activityDocument(ev domain.ActivityEvent) bson.M {
	return bson.M{
		"user_id":     int64(ev.UserID),
		"action":      ev.Action,
		"entity_id":   int64(ev.EntityID),
		"timestamp":   ev.Timestamp.UTC(),
		"recorded_at": time.Now().UTC(),
	}
}
