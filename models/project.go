package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project carries the running ledger maintained by child-entity side
// effects. usedHours, allocatedHours and totalReceivedCents are only ever
// mutated through the effect dispatcher, never by a client write.
type Project struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	StudioID     primitive.ObjectID  `bson:"studioId" json:"studioId"`
	ProposalID   *primitive.ObjectID `bson:"proposalId,omitempty" json:"proposalId,omitempty"`
	Name         string              `bson:"name" json:"name"`
	ClientName   string              `bson:"clientName,omitempty" json:"clientName,omitempty"`
	ClientUID    *primitive.ObjectID `bson:"clientUid,omitempty" json:"clientUid,omitempty"`
	ClientEmail  string              `bson:"clientEmail,omitempty" json:"clientEmail,omitempty"`
	Description  string              `bson:"description,omitempty" json:"description,omitempty"`
	LeadUID      primitive.ObjectID  `bson:"leadUid,omitempty" json:"leadUid,omitempty"`
	LeadName     string              `bson:"leadName,omitempty" json:"leadName,omitempty"`
	Status       string              `bson:"status" json:"status"` // active, on_hold, completed, cancelled
	CreatedByUID primitive.ObjectID  `bson:"createdByUid" json:"createdByUid"`

	AllocatedHours     float64 `bson:"allocatedHours" json:"allocatedHours"`
	UsedHours          float64 `bson:"usedHours" json:"usedHours"`
	RemainingHours     float64 `bson:"remainingHours" json:"remainingHours"`
	ProgressPercentage int     `bson:"progressPercentage" json:"progressPercentage"`
	TotalReceivedCents int64   `bson:"totalReceivedCents" json:"totalReceivedCents"`

	StartDate   *time.Time `bson:"startDate,omitempty" json:"startDate,omitempty"`
	EndDate     *time.Time `bson:"endDate,omitempty" json:"endDate,omitempty"`
	CompletedAt *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt   time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt" json:"updatedAt"`
}
