// Package policy is the authorization and state-transition core shared by
// every entity handler. Handlers load a record, ask the policy engine what a
// transition produces, persist the result with a conditional update, then
// hand the returned effects to the dispatcher.
package policy

import "go.mongodb.org/mongo-driver/bson/primitive"

// Roles recognized across the system.
const (
	RoleCOO           = "coo"
	RoleDirector      = "director"
	RoleDesignManager = "design_manager"
	RoleDesigner      = "designer"
	RoleBDM           = "bdm"
	RoleClient        = "client"
)

// Entity type names, used as transition-table keys and activity entityType
// values.
const (
	EntityProposal    = "proposal"
	EntityProject     = "project"
	EntityTask        = "task"
	EntityTimesheet   = "timesheet"
	EntityTimeOff     = "timeoff_request"
	EntityVariation   = "variation"
	EntityInvoice     = "invoice"
	EntityPayment     = "payment"
	EntityDeliverable = "deliverable"
)

// Actor is the decoded identity attached to a request by the auth
// middleware. The engine trusts it verbatim.
type Actor struct {
	UID  primitive.ObjectID
	Name string
	Role string
}

// Record is the projection of a stored record that the oracle and the state
// machine need: its status plus the identities the ownership rules check.
type Record struct {
	Entity       string
	ID           primitive.ObjectID
	StudioID     primitive.ObjectID
	Status       string
	CreatedByUID primitive.ObjectID
	AssigneeUID  primitive.ObjectID
	// ProjectID and ProjectLeadUID describe the parent project, when the
	// entity has one. ProjectLeadUID backs the delegated-ownership rule.
	ProjectID      primitive.ObjectID
	ProjectLeadUID primitive.ObjectID
	// Hours is the timesheet's logged hours; AmountCents the invoice
	// amount. Consumed by effect builders, zero elsewhere.
	Hours       float64
	AmountCents int64
}
