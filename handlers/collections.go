// handlers/collections.go
package handlers

import (
	"go.mongodb.org/mongo-driver/mongo"

	"studiopm/config"
	"studiopm/database"
	"studiopm/mailer"
	"studiopm/storage"
)

var (
	studioCollection      *mongo.Collection
	userCollection        *mongo.Collection
	proposalCollection    *mongo.Collection
	projectCollection     *mongo.Collection
	taskCollection        *mongo.Collection
	timesheetCollection   *mongo.Collection
	timeoffCollection     *mongo.Collection
	variationCollection   *mongo.Collection
	invoiceCollection     *mongo.Collection
	paymentCollection     *mongo.Collection
	deliverableCollection *mongo.Collection
	activityCollection    *mongo.Collection
	outboxCollection      *mongo.Collection

	mailSender  mailer.Sender
	objectStore *storage.LocalStore
)

func InitCollections() {
	db := database.DB()
	names := config.Collections

	studioCollection = db.Collection(names.Studios)
	userCollection = db.Collection(names.Users)
	proposalCollection = db.Collection(names.Proposals)
	projectCollection = db.Collection(names.Projects)
	taskCollection = db.Collection(names.Tasks)
	timesheetCollection = db.Collection(names.Timesheets)
	timeoffCollection = db.Collection(names.TimeOff)
	variationCollection = db.Collection(names.Variations)
	invoiceCollection = db.Collection(names.Invoices)
	paymentCollection = db.Collection(names.Payments)
	deliverableCollection = db.Collection(names.Deliverables)
	activityCollection = db.Collection(names.Activities)
	outboxCollection = db.Collection(names.Outbox)

	mailSender = mailer.Default()
	objectStore = storage.NewLocalStore()
}
