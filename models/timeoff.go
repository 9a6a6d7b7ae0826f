package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TimeOffRequest struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudioID      primitive.ObjectID `bson:"studioId" json:"studioId"`
	CreatedByUID  primitive.ObjectID `bson:"createdByUid" json:"createdByUid"`
	CreatedByName string             `bson:"createdByName,omitempty" json:"createdByName,omitempty"`
	Type          string             `bson:"type,omitempty" json:"type,omitempty"` // annual, sick, unpaid
	StartDate     time.Time          `bson:"startDate" json:"startDate"`
	EndDate       time.Time          `bson:"endDate" json:"endDate"`
	Reason        string             `bson:"reason,omitempty" json:"reason,omitempty"`
	Status        string             `bson:"status" json:"status"` // pending, approved, rejected
	Review        *Review            `bson:"review,omitempty" json:"review,omitempty"`
	ApprovedAt    *time.Time         `bson:"approvedAt,omitempty" json:"approvedAt,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
