package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Timesheet struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudioID      primitive.ObjectID `bson:"studioId" json:"studioId"`
	ProjectID     primitive.ObjectID `bson:"projectId" json:"projectId"`
	CreatedByUID  primitive.ObjectID `bson:"createdByUid" json:"createdByUid"`
	CreatedByName string             `bson:"createdByName,omitempty" json:"createdByName,omitempty"`
	Date          time.Time          `bson:"date" json:"date"`
	Hours         float64            `bson:"hours" json:"hours"`
	Notes         string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Status        string             `bson:"status" json:"status"` // pending, approved, rejected
	Review        *Review            `bson:"review,omitempty" json:"review,omitempty"`
	ApprovedAt    *time.Time         `bson:"approvedAt,omitempty" json:"approvedAt,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
