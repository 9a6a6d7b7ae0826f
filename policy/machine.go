package policy

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"studiopm/models"
)

// Payload carries the transition-specific request fields. Pointer fields
// distinguish "absent" from zero.
type Payload struct {
	Reason          string
	Notes           string
	ApprovedHours   *float64
	PaidAmountCents *int64
}

// rule is one row of an entity's transition table.
type rule struct {
	action  string
	from    []string
	to      string
	perm    Permission
	require func(p Payload) []string
	stamp   string // timestamp field set exactly once by this transition
	review  bool   // attach reviewer metadata
	effects func(rec Record, p Payload, a Actor) []Effect
}

// Outcome is a computed transition: the caller persists the status flip with
// a conditional update pinned to From, then dispatches Effects.
type Outcome struct {
	Entity       string
	Action       string
	From         string
	To           string
	TransitionID string
	Stamp        string
	StampAt      time.Time
	Review       *models.Review
	Effects      []Effect
}

// Transition runs the policy steps in order: table lookup, authorization,
// payload validation, then outcome construction. It never touches storage.
func Transition(rec Record, action string, p Payload, actor Actor) (*Outcome, error) {
	var matched *rule
	for i := range tables[rec.Entity] {
		r := &tables[rec.Entity][i]
		if r.action != action {
			continue
		}
		if statusIn(rec.Status, r.from) {
			matched = r
			break
		}
	}
	if matched == nil {
		return nil, &InvalidTransitionError{Entity: rec.Entity, Status: rec.Status, Action: action}
	}

	if !CanPerform(actor, matched.perm, rec) {
		return nil, &ForbiddenError{}
	}

	if matched.require != nil {
		if fields := matched.require(p); len(fields) > 0 {
			return nil, &ValidationError{Fields: fields}
		}
	}

	now := time.Now().UTC()
	out := &Outcome{
		Entity:       rec.Entity,
		Action:       action,
		From:         rec.Status,
		To:           matched.to,
		TransitionID: uuid.NewString(),
		Stamp:        matched.stamp,
		StampAt:      now,
	}

	if matched.review {
		notes := p.Reason
		if notes == "" {
			notes = p.Notes
		}
		out.Review = &models.Review{
			ReviewerID:   actor.UID,
			ReviewerName: actor.Name,
			Notes:        notes,
			ReviewedAt:   now,
		}
	}

	// Every transition leaves an audit trail; rule-specific effects follow.
	out.Effects = append(out.Effects, AuditAppend{
		Entity:     rec.Entity,
		EntityID:   rec.ID,
		Action:     action,
		FromStatus: rec.Status,
		ToStatus:   matched.to,
		Detail:     fmt.Sprintf("%s %s by %s", rec.Entity, action, actor.Name),
	})
	if matched.effects != nil {
		out.Effects = append(out.Effects, matched.effects(rec, p, actor)...)
	}

	return out, nil
}

func statusIn(status string, set []string) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}

func requireReason(p Payload) []string {
	if p.Reason == "" {
		return []string{"reason"}
	}
	return nil
}
