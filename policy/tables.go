package policy

// Status values per entity lifecycle.
const (
	StatusPending    = "pending"
	StatusApproved   = "approved"
	StatusRejected   = "rejected"
	StatusSubmitted  = "submitted"
	StatusActive     = "active"
	StatusOnHold     = "on_hold"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusDraft      = "draft"
	StatusSent       = "sent"
	StatusPaid       = "paid"
	StatusOverdue    = "overdue"
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusReview     = "review"
)

// Transition action names.
const (
	ActionApprove  = "approve"
	ActionReject   = "reject"
	ActionSubmit   = "submit"
	ActionStart    = "start"
	ActionComplete = "complete"
	ActionHold     = "hold"
	ActionResume   = "resume"
	ActionCancel   = "cancel"
	ActionSend     = "send"
	ActionMarkPaid = "mark_paid"
)

var seniorRoles = []string{RoleCOO, RoleDirector}

// tables is the consolidated permission-and-transition matrix. One row per
// (action, eligible source statuses); the matrix replaces the per-route role
// checks a system like this otherwise accumulates.
var tables = map[string][]rule{
	EntityProposal: {
		{
			action: ActionApprove, from: []string{StatusPending}, to: StatusApproved,
			perm: Permission{Roles: seniorRoles}, review: true, stamp: "approvedAt",
			effects: func(rec Record, p Payload, a Actor) []Effect {
				return []Effect{Notification{Audience: AudienceSubmitter, Template: "proposal_approved"}}
			},
		},
		{
			action: ActionReject, from: []string{StatusPending}, to: StatusRejected,
			perm: Permission{Roles: seniorRoles}, review: true, require: requireReason,
			effects: func(rec Record, p Payload, a Actor) []Effect {
				return []Effect{Notification{Audience: AudienceSubmitter, Template: "proposal_rejected",
					Data: map[string]string{"reason": p.Reason}}}
			},
		},
	},

	EntityProject: {
		{action: ActionHold, from: []string{StatusActive}, to: StatusOnHold,
			perm: Permission{Roles: seniorRoles}},
		{action: ActionResume, from: []string{StatusOnHold}, to: StatusActive,
			perm: Permission{Roles: seniorRoles}},
		{action: ActionComplete, from: []string{StatusActive}, to: StatusCompleted,
			perm: Permission{Roles: seniorRoles}, stamp: "completedAt"},
		{action: ActionCancel, from: []string{StatusActive, StatusOnHold}, to: StatusCancelled,
			perm: Permission{Roles: seniorRoles}, require: requireReason, review: true},
	},

	EntityTask: {
		{action: ActionStart, from: []string{StatusTodo}, to: StatusInProgress,
			perm:  Permission{Roles: seniorRoles, Owner: true, Assignee: true, LeadRoles: []string{RoleDesignManager}},
			stamp: "startedAt"},
		{action: ActionSubmit, from: []string{StatusInProgress}, to: StatusReview,
			perm:  Permission{Roles: seniorRoles, Owner: true, Assignee: true, LeadRoles: []string{RoleDesignManager}},
			stamp: "submittedAt"},
		{action: ActionComplete, from: []string{StatusReview}, to: StatusCompleted,
			perm:  Permission{Roles: seniorRoles, LeadRoles: []string{RoleDesignManager}},
			stamp: "completedAt"},
	},

	EntityTimesheet: {
		{
			action: ActionApprove, from: []string{StatusPending}, to: StatusApproved,
			perm:   Permission{Roles: seniorRoles, LeadRoles: []string{RoleDesignManager}},
			review: true, stamp: "approvedAt",
			effects: func(rec Record, p Payload, a Actor) []Effect {
				return []Effect{LedgerAdjustment{ProjectID: rec.ProjectID, UsedHoursDelta: rec.Hours}}
			},
		},
		{
			action: ActionReject, from: []string{StatusPending}, to: StatusRejected,
			perm:   Permission{Roles: seniorRoles, LeadRoles: []string{RoleDesignManager}},
			review: true, require: requireReason,
		},
	},

	EntityTimeOff: {
		{
			action: ActionApprove, from: []string{StatusPending}, to: StatusApproved,
			perm: Permission{Roles: seniorRoles}, review: true, stamp: "approvedAt",
			effects: func(rec Record, p Payload, a Actor) []Effect {
				return []Effect{Notification{Audience: AudienceSubmitter, Template: "timeoff_approved"}}
			},
		},
		{
			action: ActionReject, from: []string{StatusPending}, to: StatusRejected,
			perm: Permission{Roles: seniorRoles}, review: true, require: requireReason,
			effects: func(rec Record, p Payload, a Actor) []Effect {
				return []Effect{Notification{Audience: AudienceSubmitter, Template: "timeoff_rejected",
					Data: map[string]string{"reason": p.Reason}}}
			},
		},
	},

	EntityVariation: {
		{
			action: ActionApprove, from: []string{StatusPending}, to: StatusApproved,
			perm: Permission{Roles: []string{RoleCOO}}, review: true, stamp: "approvedAt",
			require: func(p Payload) []string {
				if p.ApprovedHours == nil || *p.ApprovedHours <= 0 {
					return []string{"approvedHours"}
				}
				return nil
			},
			effects: func(rec Record, p Payload, a Actor) []Effect {
				return []Effect{
					LedgerAdjustment{ProjectID: rec.ProjectID, AllocatedHoursDelta: *p.ApprovedHours, Transactional: true},
					Notification{Audience: AudienceSubmitter, Template: "variation_approved"},
				}
			},
		},
		{
			action: ActionReject, from: []string{StatusPending}, to: StatusRejected,
			perm: Permission{Roles: []string{RoleCOO}}, review: true, require: requireReason,
			effects: func(rec Record, p Payload, a Actor) []Effect {
				return []Effect{Notification{Audience: AudienceSubmitter, Template: "variation_rejected",
					Data: map[string]string{"reason": p.Reason}}}
			},
		},
	},

	EntityInvoice: {
		{action: ActionSend, from: []string{StatusDraft}, to: StatusSent,
			perm: Permission{Roles: seniorRoles}, stamp: "sentAt"},
		{
			action: ActionMarkPaid, from: []string{StatusSent, StatusOverdue}, to: StatusPaid,
			perm: Permission{Roles: seniorRoles}, stamp: "paidAt",
			effects: func(rec Record, p Payload, a Actor) []Effect {
				amount := rec.AmountCents
				if p.PaidAmountCents != nil {
					amount = *p.PaidAmountCents
				}
				return []Effect{
					PaymentRecord{ProjectID: rec.ProjectID, InvoiceID: rec.ID, AmountCents: amount},
					LedgerAdjustment{ProjectID: rec.ProjectID, ReceivedCentsDelta: amount, Transactional: true},
				}
			},
		},
		{action: ActionCancel, from: []string{StatusDraft, StatusSent, StatusOverdue}, to: StatusCancelled,
			perm: Permission{Roles: seniorRoles}},
	},

	EntityDeliverable: {
		{action: ActionSubmit, from: []string{StatusPending}, to: StatusSubmitted,
			perm:  Permission{Roles: seniorRoles, Owner: true, Assignee: true},
			stamp: "submittedAt"},
		{action: ActionApprove, from: []string{StatusSubmitted}, to: StatusApproved,
			perm:   Permission{Roles: []string{RoleCOO, RoleDirector, RoleDesignManager}},
			review: true, stamp: "approvedAt"},
		{action: ActionReject, from: []string{StatusSubmitted}, to: StatusRejected,
			perm:   Permission{Roles: []string{RoleCOO, RoleDirector, RoleDesignManager}},
			review: true, require: requireReason},
	},
}
