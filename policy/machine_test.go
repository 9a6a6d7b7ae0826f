package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func coo() Actor {
	return Actor{UID: primitive.NewObjectID(), Name: "Olivia Park", Role: RoleCOO}
}

func director() Actor {
	return Actor{UID: primitive.NewObjectID(), Name: "Sam Reyes", Role: RoleDirector}
}

func designer() Actor {
	return Actor{UID: primitive.NewObjectID(), Name: "Ana Costa", Role: RoleDesigner}
}

func pendingProposal() Record {
	return Record{
		Entity:       EntityProposal,
		ID:           primitive.NewObjectID(),
		StudioID:     primitive.NewObjectID(),
		Status:       StatusPending,
		CreatedByUID: primitive.NewObjectID(),
	}
}

func TestProposalApprove(t *testing.T) {
	rec := pendingProposal()
	actor := director()

	out, err := Transition(rec, ActionApprove, Payload{}, actor)
	require.NoError(t, err)

	assert.Equal(t, StatusPending, out.From)
	assert.Equal(t, StatusApproved, out.To)
	assert.Equal(t, ActionApprove, out.Action)
	assert.NotEmpty(t, out.TransitionID)
	assert.Equal(t, "approvedAt", out.Stamp)
	assert.False(t, out.StampAt.IsZero())

	// Reviewer metadata is attached on review transitions.
	require.NotNil(t, out.Review)
	assert.Equal(t, actor.UID, out.Review.ReviewerID)
	assert.Equal(t, actor.Name, out.Review.ReviewerName)

	// Audit entry always, notification for the submitter on approve.
	require.Len(t, out.Effects, 2)
	audit, ok := out.Effects[0].(AuditAppend)
	require.True(t, ok)
	assert.Equal(t, EntityProposal, audit.Entity)
	assert.Equal(t, rec.ID, audit.EntityID)
	assert.Equal(t, StatusPending, audit.FromStatus)
	assert.Equal(t, StatusApproved, audit.ToStatus)

	note, ok := out.Effects[1].(Notification)
	require.True(t, ok)
	assert.Equal(t, AudienceSubmitter, note.Audience)
	assert.Equal(t, "proposal_approved", note.Template)
}

func TestProposalRejectRequiresReason(t *testing.T) {
	rec := pendingProposal()

	_, err := Transition(rec, ActionReject, Payload{}, coo())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"reason"}, verr.Fields)

	out, err := Transition(rec, ActionReject, Payload{Reason: "budget too low"}, coo())
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, out.To)
	assert.Equal(t, "budget too low", out.Review.Notes)
}

func TestSecondApproveIsInvalidTransition(t *testing.T) {
	rec := pendingProposal()
	out, err := Transition(rec, ActionApprove, Payload{}, coo())
	require.NoError(t, err)

	// A second request arriving after the first committed sees the new
	// status and must get a conflict, not a second approval.
	rec.Status = out.To
	_, err = Transition(rec, ActionApprove, Payload{}, coo())
	var terr *InvalidTransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, EntityProposal, terr.Entity)
	assert.Equal(t, StatusApproved, terr.Status)
	assert.Equal(t, ActionApprove, terr.Action)
}

func TestUnknownActionIsInvalidTransition(t *testing.T) {
	rec := pendingProposal()
	_, err := Transition(rec, "archive", Payload{}, coo())
	var terr *InvalidTransitionError
	assert.ErrorAs(t, err, &terr)
}

func TestForbiddenBeforeValidation(t *testing.T) {
	// A designer rejecting without a reason gets 403, never the
	// validation hint about the missing field.
	rec := pendingProposal()
	_, err := Transition(rec, ActionReject, Payload{}, designer())
	var ferr *ForbiddenError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "access denied", ferr.Error())
}

func TestTaskAssigneeMayStart(t *testing.T) {
	assignee := designer()
	rec := Record{
		Entity:      EntityTask,
		ID:          primitive.NewObjectID(),
		Status:      StatusTodo,
		AssigneeUID: assignee.UID,
	}

	out, err := Transition(rec, ActionStart, Payload{}, assignee)
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, out.To)
	assert.Equal(t, "startedAt", out.Stamp)

	// A different designer is neither assignee nor owner.
	_, err = Transition(rec, ActionStart, Payload{}, designer())
	var ferr *ForbiddenError
	assert.ErrorAs(t, err, &ferr)
}

func TestTaskCompleteRequiresLeadOrSenior(t *testing.T) {
	lead := Actor{UID: primitive.NewObjectID(), Name: "Dana Wu", Role: RoleDesignManager}
	rec := Record{
		Entity:         EntityTask,
		ID:             primitive.NewObjectID(),
		Status:         StatusReview,
		AssigneeUID:    primitive.NewObjectID(),
		ProjectLeadUID: lead.UID,
	}

	// The assignee cannot complete their own task.
	assignee := Actor{UID: rec.AssigneeUID, Role: RoleDesigner}
	_, err := Transition(rec, ActionComplete, Payload{}, assignee)
	var ferr *ForbiddenError
	require.ErrorAs(t, err, &ferr)

	// The project lead can, but only on a project they lead.
	out, err := Transition(rec, ActionComplete, Payload{}, lead)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, out.To)

	otherManager := Actor{UID: primitive.NewObjectID(), Role: RoleDesignManager}
	_, err = Transition(rec, ActionComplete, Payload{}, otherManager)
	assert.ErrorAs(t, err, &ferr)
}

func TestTimesheetApproveEmitsLedgerAdjustment(t *testing.T) {
	rec := Record{
		Entity:    EntityTimesheet,
		ID:        primitive.NewObjectID(),
		Status:    StatusPending,
		ProjectID: primitive.NewObjectID(),
		Hours:     7.5,
	}

	out, err := Transition(rec, ActionApprove, Payload{}, coo())
	require.NoError(t, err)
	require.Len(t, out.Effects, 2)

	adj, ok := out.Effects[1].(LedgerAdjustment)
	require.True(t, ok)
	assert.Equal(t, rec.ProjectID, adj.ProjectID)
	assert.Equal(t, 7.5, adj.UsedHoursDelta)
	assert.Zero(t, adj.AllocatedHoursDelta)
	assert.False(t, adj.Transactional)
}

func TestVariationApproveRequiresPositiveHours(t *testing.T) {
	rec := Record{
		Entity:    EntityVariation,
		ID:        primitive.NewObjectID(),
		Status:    StatusPending,
		ProjectID: primitive.NewObjectID(),
	}

	_, err := Transition(rec, ActionApprove, Payload{}, coo())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"approvedHours"}, verr.Fields)

	zero := 0.0
	_, err = Transition(rec, ActionApprove, Payload{ApprovedHours: &zero}, coo())
	require.ErrorAs(t, err, &verr)

	hours := 15.0
	out, err := Transition(rec, ActionApprove, Payload{ApprovedHours: &hours}, coo())
	require.NoError(t, err)

	adj, ok := out.Effects[1].(LedgerAdjustment)
	require.True(t, ok)
	assert.Equal(t, 15.0, adj.AllocatedHoursDelta)
	assert.True(t, adj.Transactional)
}

func TestVariationApproveIsCOOOnly(t *testing.T) {
	hours := 10.0
	rec := Record{
		Entity:    EntityVariation,
		ID:        primitive.NewObjectID(),
		Status:    StatusPending,
		ProjectID: primitive.NewObjectID(),
	}

	_, err := Transition(rec, ActionApprove, Payload{ApprovedHours: &hours}, director())
	var ferr *ForbiddenError
	require.ErrorAs(t, err, &ferr)

	_, err = Transition(rec, ActionApprove, Payload{ApprovedHours: &hours}, coo())
	assert.NoError(t, err)
}

func TestInvoiceMarkPaidEffects(t *testing.T) {
	rec := Record{
		Entity:      EntityInvoice,
		ID:          primitive.NewObjectID(),
		Status:      StatusSent,
		ProjectID:   primitive.NewObjectID(),
		AmountCents: 250000,
	}

	out, err := Transition(rec, ActionMarkPaid, Payload{}, coo())
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, out.To)
	assert.Equal(t, "paidAt", out.Stamp)

	require.Len(t, out.Effects, 3)
	payment, ok := out.Effects[1].(PaymentRecord)
	require.True(t, ok)
	assert.Equal(t, rec.ID, payment.InvoiceID)
	assert.Equal(t, int64(250000), payment.AmountCents)

	adj, ok := out.Effects[2].(LedgerAdjustment)
	require.True(t, ok)
	assert.Equal(t, int64(250000), adj.ReceivedCentsDelta)
	assert.True(t, adj.Transactional)
}

func TestInvoiceMarkPaidPartialAmount(t *testing.T) {
	rec := Record{
		Entity:      EntityInvoice,
		ID:          primitive.NewObjectID(),
		Status:      StatusOverdue,
		ProjectID:   primitive.NewObjectID(),
		AmountCents: 250000,
	}

	paid := int64(100000)
	out, err := Transition(rec, ActionMarkPaid, Payload{PaidAmountCents: &paid}, director())
	require.NoError(t, err)

	payment := out.Effects[1].(PaymentRecord)
	assert.Equal(t, int64(100000), payment.AmountCents)
	adj := out.Effects[2].(LedgerAdjustment)
	assert.Equal(t, int64(100000), adj.ReceivedCentsDelta)
}

func TestInvoiceSendOnlyFromDraft(t *testing.T) {
	rec := Record{Entity: EntityInvoice, ID: primitive.NewObjectID(), Status: StatusPaid}
	_, err := Transition(rec, ActionSend, Payload{}, coo())
	var terr *InvalidTransitionError
	assert.ErrorAs(t, err, &terr)
}

func TestProjectCancelFromActiveOrHold(t *testing.T) {
	for _, from := range []string{StatusActive, StatusOnHold} {
		rec := Record{Entity: EntityProject, ID: primitive.NewObjectID(), Status: from}
		out, err := Transition(rec, ActionCancel, Payload{Reason: "client pulled out"}, coo())
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, out.To)
	}

	rec := Record{Entity: EntityProject, ID: primitive.NewObjectID(), Status: StatusCompleted}
	_, err := Transition(rec, ActionCancel, Payload{Reason: "late"}, coo())
	var terr *InvalidTransitionError
	assert.ErrorAs(t, err, &terr)
}

func TestDeliverableSubmitByOwner(t *testing.T) {
	owner := designer()
	rec := Record{
		Entity:       EntityDeliverable,
		ID:           primitive.NewObjectID(),
		Status:       StatusPending,
		CreatedByUID: owner.UID,
	}

	out, err := Transition(rec, ActionSubmit, Payload{}, owner)
	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, out.To)

	// Approval of a submitted deliverable is management only.
	rec.Status = out.To
	_, err = Transition(rec, ActionApprove, Payload{}, owner)
	var ferr *ForbiddenError
	require.ErrorAs(t, err, &ferr)

	manager := Actor{UID: primitive.NewObjectID(), Role: RoleDesignManager}
	_, err = Transition(rec, ActionApprove, Payload{}, manager)
	assert.NoError(t, err)
}

func TestRejectRequiresReasonEverywhere(t *testing.T) {
	cases := []struct {
		entity string
		status string
	}{
		{EntityProposal, StatusPending},
		{EntityTimesheet, StatusPending},
		{EntityTimeOff, StatusPending},
		{EntityVariation, StatusPending},
		{EntityDeliverable, StatusSubmitted},
	}
	for _, c := range cases {
		rec := Record{Entity: c.entity, ID: primitive.NewObjectID(), Status: c.status}
		_, err := Transition(rec, ActionReject, Payload{}, coo())
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, c.entity)
		assert.Contains(t, verr.Fields, "reason", c.entity)

		_, err = Transition(rec, ActionReject, Payload{Reason: "incomplete"}, coo())
		assert.NoError(t, err, c.entity)
	}
}

func TestTransitionIDsAreUnique(t *testing.T) {
	rec := pendingProposal()
	a, err := Transition(rec, ActionApprove, Payload{}, coo())
	require.NoError(t, err)
	b, err := Transition(rec, ActionApprove, Payload{}, coo())
	require.NoError(t, err)
	assert.NotEqual(t, a.TransitionID, b.TransitionID)
}
