package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fsrp/document-portal/internal/core/domain"
	"github.com/fsrp/document-portal/internal/core/ports"
)

const accessEventsCollection = "access_events"

var _ ports.AuditRepository = (*AuditRepository)(nil)

// AuditRepository implements ports.AuditRepository using MongoDB.
type AuditRepository struct {
	db *mongo.Database
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{db: db}
}

// EnsureIndexes creates the lookup indexes of the access_events collection.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.db.Collection(accessEventsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "storage_id", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "type", Value: 1}, {Key: "timestamp", Value: -1}}},
		{
			Keys:    bson.D{{Key: "processed_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32((90 * 24 * time.Hour).Seconds())),
		},
	})
	if err != nil {
		return fmt.Errorf("create access_events indexes: %w", err)
	}
	return nil
}

// InsertEvent persists an access event to the access_events audit collection.
func (r *AuditRepository) InsertEvent(ctx context.Context, event *domain.AccessEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	doc := bson.M{
		"_id":          event.ID,
		"type":         string(event.Type),
		"outcome":      event.Outcome,
		"storage_id":   event.StorageID,
		"timestamp":    event.Timestamp.UTC(),
		"processed_at": time.Now().UTC(),
	}
	if event.Scope != "" {
		doc["scope"] = string(event.Scope)
	}
	if event.Path != "" {
		doc["path"] = event.Path
	}
	if event.Detail != "" {
		doc["detail"] = event.Detail
	}

	_, err := r.db.Collection(accessEventsCollection).InsertOne(ctx, doc)
	return err
}

func (r *AuditRepository) Ping(ctx context.Context) error {
	return r.db.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
}
