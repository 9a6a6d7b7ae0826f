package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Task struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	StudioID      primitive.ObjectID  `bson:"studioId" json:"studioId"`
	ProjectID     primitive.ObjectID  `bson:"projectId" json:"projectId"`
	Title         string              `bson:"title" json:"title"`
	Description   string              `bson:"description,omitempty" json:"description,omitempty"`
	Status        string              `bson:"status" json:"status"` // todo, in_progress, review, completed
	Priority      string              `bson:"priority,omitempty" json:"priority,omitempty"`
	AssigneeUID   *primitive.ObjectID `bson:"assigneeUid,omitempty" json:"assigneeUid,omitempty"`
	AssigneeName  string              `bson:"assigneeName,omitempty" json:"assigneeName,omitempty"`
	CreatedByUID  primitive.ObjectID  `bson:"createdByUid" json:"createdByUid"`
	DueDate       *time.Time          `bson:"dueDate,omitempty" json:"dueDate,omitempty"`
	StartedAt     *time.Time          `bson:"startedAt,omitempty" json:"startedAt,omitempty"`
	SubmittedAt   *time.Time          `bson:"submittedAt,omitempty" json:"submittedAt,omitempty"`
	CompletedAt   *time.Time          `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt     time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time           `bson:"updatedAt" json:"updatedAt"`
}
