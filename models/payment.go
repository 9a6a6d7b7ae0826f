package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Payment struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	StudioID      primitive.ObjectID  `bson:"studioId" json:"studioId"`
	ProjectID     primitive.ObjectID  `bson:"projectId" json:"projectId"`
	InvoiceID     *primitive.ObjectID `bson:"invoiceId,omitempty" json:"invoiceId,omitempty"`
	AmountCents   int64               `bson:"amountCents" json:"amountCents"`
	Currency      string              `bson:"currency,omitempty" json:"currency,omitempty"`
	Method        string              `bson:"method,omitempty" json:"method,omitempty"`
	Reference     string              `bson:"reference,omitempty" json:"reference,omitempty"`
	CreatedByUID  primitive.ObjectID  `bson:"createdByUid" json:"createdByUid"`
	CreatedByName string              `bson:"createdByName,omitempty" json:"createdByName,omitempty"`
	CreatedAt     time.Time           `bson:"createdAt" json:"createdAt"`
}
