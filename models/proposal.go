package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Proposal struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudioID       primitive.ObjectID `bson:"studioId" json:"studioId"`
	Title          string             `bson:"title" json:"title"`
	ClientName     string             `bson:"clientName" json:"clientName"`
	Description    string             `bson:"description,omitempty" json:"description,omitempty"`
	EstimatedHours float64            `bson:"estimatedHours,omitempty" json:"estimatedHours,omitempty"`
	AmountCents    int64              `bson:"amountCents,omitempty" json:"amountCents,omitempty"`
	Status         string             `bson:"status" json:"status"` // pending, approved, rejected
	CreatedByUID   primitive.ObjectID `bson:"createdByUid" json:"createdByUid"`
	CreatedByName  string             `bson:"createdByName,omitempty" json:"createdByName,omitempty"`
	Review         *Review            `bson:"review,omitempty" json:"review,omitempty"`
	ApprovedAt     *time.Time         `bson:"approvedAt,omitempty" json:"approvedAt,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}
