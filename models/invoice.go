package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Invoice amounts are stored as integer cents so ledger increments stay
// exact under $inc.
type Invoice struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudioID      primitive.ObjectID `bson:"studioId" json:"studioId"`
	ProjectID     primitive.ObjectID `bson:"projectId" json:"projectId"`
	InvoiceNumber string             `bson:"invoiceNumber" json:"invoiceNumber"`
	AmountCents   int64              `bson:"amountCents" json:"amountCents"`
	Currency      string             `bson:"currency,omitempty" json:"currency,omitempty"`
	Status        string             `bson:"status" json:"status"` // draft, sent, paid, overdue, cancelled
	DueDate       *time.Time         `bson:"dueDate,omitempty" json:"dueDate,omitempty"`
	SentAt        *time.Time         `bson:"sentAt,omitempty" json:"sentAt,omitempty"`
	PaidAt        *time.Time         `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	CreatedByUID  primitive.ObjectID `bson:"createdByUid" json:"createdByUid"`
	Notes         string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
