package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Variation is a scope-change request against a project budget. Approval
// adds approvedHours to the project's allocatedHours inside the same
// transaction that flips the status.
type Variation struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudioID       primitive.ObjectID `bson:"studioId" json:"studioId"`
	ProjectID      primitive.ObjectID `bson:"projectId" json:"projectId"`
	Title          string             `bson:"title" json:"title"`
	Description    string             `bson:"description,omitempty" json:"description,omitempty"`
	EstimatedHours float64            `bson:"estimatedHours" json:"estimatedHours"`
	ApprovedHours  float64            `bson:"approvedHours,omitempty" json:"approvedHours,omitempty"`
	Status         string             `bson:"status" json:"status"` // pending, approved, rejected
	CreatedByUID   primitive.ObjectID `bson:"createdByUid" json:"createdByUid"`
	CreatedByName  string             `bson:"createdByName,omitempty" json:"createdByName,omitempty"`
	Review         *Review            `bson:"review,omitempty" json:"review,omitempty"`
	ApprovedAt     *time.Time         `bson:"approvedAt,omitempty" json:"approvedAt,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}
