package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OutboxEntry is a durable notification row. IdempotencyKey is
// "<entityID>:<transitionID>" so a retried dispatch cannot double-send.
type OutboxEntry struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudioID       primitive.ObjectID `bson:"studioId" json:"studioId"`
	IdempotencyKey string             `bson:"idempotencyKey" json:"idempotencyKey"`
	Recipients     []string           `bson:"recipients" json:"recipients"`
	Template       string             `bson:"template" json:"template"`
	Data           map[string]string  `bson:"data,omitempty" json:"data,omitempty"`
	Status         string             `bson:"status" json:"status"` // pending, sent, failed
	LastError      string             `bson:"lastError,omitempty" json:"lastError,omitempty"`
	SentAt         *time.Time         `bson:"sentAt,omitempty" json:"sentAt,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}
