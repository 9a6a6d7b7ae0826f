package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Deliverable struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	StudioID      primitive.ObjectID  `bson:"studioId" json:"studioId"`
	ProjectID     primitive.ObjectID  `bson:"projectId" json:"projectId"`
	Title         string              `bson:"title" json:"title"`
	Description   string              `bson:"description,omitempty" json:"description,omitempty"`
	Status        string              `bson:"status" json:"status"` // pending, submitted, approved, rejected
	AssigneeUID   *primitive.ObjectID `bson:"assigneeUid,omitempty" json:"assigneeUid,omitempty"`
	CreatedByUID  primitive.ObjectID  `bson:"createdByUid" json:"createdByUid"`
	CreatedByName string              `bson:"createdByName,omitempty" json:"createdByName,omitempty"`
	FileKey       string              `bson:"fileKey,omitempty" json:"fileKey,omitempty"`
	FileName      string              `bson:"fileName,omitempty" json:"fileName,omitempty"`
	MimeType      string              `bson:"mimeType,omitempty" json:"mimeType,omitempty"`
	Review        *Review             `bson:"review,omitempty" json:"review,omitempty"`
	SubmittedAt   *time.Time          `bson:"submittedAt,omitempty" json:"submittedAt,omitempty"`
	ApprovedAt    *time.Time          `bson:"approvedAt,omitempty" json:"approvedAt,omitempty"`
	CreatedAt     time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time           `bson:"updatedAt" json:"updatedAt"`
}
