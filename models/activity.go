package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Activity is an append-only audit entry. Written only by the effect
// dispatcher, never updated or deleted.
type Activity struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	StudioID   primitive.ObjectID  `bson:"studioId" json:"studioId"`
	EntityType string              `bson:"entityType" json:"entityType"` // proposal, project, timesheet, ...
	EntityID   *primitive.ObjectID `bson:"entityId,omitempty" json:"entityId,omitempty"`
	Action     string              `bson:"action" json:"action"` // create, approve, reject, submit, ...
	FromStatus string              `bson:"fromStatus,omitempty" json:"fromStatus,omitempty"`
	ToStatus   string              `bson:"toStatus,omitempty" json:"toStatus,omitempty"`
	Detail     string              `bson:"detail" json:"detail"`
	ActorUID   primitive.ObjectID  `bson:"actorUid" json:"actorUid"`
	ActorName  string              `bson:"actorName,omitempty" json:"actorName,omitempty"`
	ActorRole  string              `bson:"actorRole,omitempty" json:"actorRole,omitempty"`
	CreatedAt  time.Time           `bson:"createdAt" json:"createdAt"`
}
