package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Studio is the tenant boundary. Every record carries a studioId and every
// query is scoped by it.
type Studio struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email,omitempty" json:"email,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
