package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"studiopm/config"
)

// EnsureIndexes creates the secondary indexes every collection relies on:
// parent-id for "list children of X", owner-uid for "list mine", and the
// unique outbox idempotency key that makes notification retries safe.
func EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := DB()
	names := config.Collections

	byStudio := mongo.IndexModel{Keys: bson.D{{Key: "studioId", Value: 1}}}
	byProject := mongo.IndexModel{Keys: bson.D{{Key: "studioId", Value: 1}, {Key: "projectId", Value: 1}}}
	byOwner := mongo.IndexModel{Keys: bson.D{{Key: "studioId", Value: 1}, {Key: "createdByUid", Value: 1}}}

	plan := map[string][]mongo.IndexModel{
		names.Users:        {byStudio, {Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)}},
		names.Proposals:    {byStudio, byOwner},
		names.Projects:     {byStudio, {Keys: bson.D{{Key: "studioId", Value: 1}, {Key: "leadUid", Value: 1}}}},
		names.Tasks:        {byProject, {Keys: bson.D{{Key: "studioId", Value: 1}, {Key: "assigneeUid", Value: 1}}}},
		names.Timesheets:   {byProject, byOwner},
		names.TimeOff:      {byStudio, byOwner},
		names.Variations:   {byProject},
		names.Invoices:     {byProject, {Keys: bson.D{{Key: "status", Value: 1}, {Key: "dueDate", Value: 1}}}},
		names.Payments:     {byProject},
		names.Deliverables: {byProject},
		names.Activities:   {byStudio, {Keys: bson.D{{Key: "studioId", Value: 1}, {Key: "actorUid", Value: 1}}}},
		names.Outbox:       {{Keys: bson.D{{Key: "idempotencyKey", Value: 1}}, Options: options.Index().SetUnique(true)}},
	}

	for coll, models := range plan {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}
