package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review holds the metadata stamped exactly once by an approve/reject
// transition. Nil until the record is reviewed, immutable after.
type Review struct {
	ReviewerID   primitive.ObjectID `bson:"reviewerId" json:"reviewerId"`
	ReviewerName string             `bson:"reviewerName" json:"reviewerName"`
	Notes        string             `bson:"notes,omitempty" json:"notes,omitempty"`
	ReviewedAt   time.Time          `bson:"reviewedAt" json:"reviewedAt"`
}
