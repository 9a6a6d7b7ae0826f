// handlers/dispatcher.go
//
// applyOutcome persists a computed transition and runs its effects.
// The status flip is a conditional update pinned to the source status, so
// two concurrent approvals cannot both land: the loser's update matches
// nothing and surfaces as an invalid-transition conflict. Ledger deltas are
// applied with an aggregation-pipeline update so the derived fields
// (remainingHours, progressPercentage) are recomputed inside the same
// atomic document write as the increment. Effects marked transactional
// (variation approval, invoice mark-paid / payment creation) commit in one
// session transaction with the record write; audit and notification effects
// run after, best-effort, per effect.
package handlers

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"studiopm/models"
	"studiopm/policy"
	"studiopm/websocket"
)

// applyOutcome persists the transition and dispatches effects. extraSet
// carries transition-specific record fields (e.g. approvedHours on a
// variation) into the same conditional update.
func applyOutcome(ctx context.Context, coll *mongo.Collection, rec policy.Record, out *policy.Outcome, actor policy.Actor, extraSet bson.M) error {
	set := bson.M{
		"status":    out.To,
		"updatedAt": out.StampAt,
	}
	if out.Stamp != "" {
		set[out.Stamp] = out.StampAt
	}
	if out.Review != nil {
		set["review"] = out.Review
	}
	for k, v := range extraSet {
		set[k] = v
	}

	filter := bson.M{"_id": rec.ID, "studioId": rec.StudioID, "status": out.From}

	txEffects, asyncEffects := splitEffects(out.Effects)

	if len(txEffects) > 0 {
		if err := applyTransactional(ctx, coll, filter, set, txEffects, rec, out, actor); err != nil {
			return err
		}
	} else {
		res, err := coll.UpdateOne(ctx, filter, bson.M{"$set": set})
		if err != nil {
			return &policy.DependencyError{Op: "update " + rec.Entity, Err: err}
		}
		if res.MatchedCount == 0 {
			// Lost the race: someone moved the record first.
			return &policy.InvalidTransitionError{Entity: rec.Entity, Status: "changed", Action: out.Action}
		}
	}

	dispatchEffects(ctx, asyncEffects, rec, out, actor)
	return nil
}

// splitEffects separates effects that must commit with the record write
// from the best-effort ones.
func splitEffects(effects []policy.Effect) (tx []policy.Effect, async []policy.Effect) {
	for _, e := range effects {
		switch eff := e.(type) {
		case policy.LedgerAdjustment:
			if eff.Transactional {
				tx = append(tx, e)
			} else {
				async = append(async, e)
			}
		case policy.PaymentRecord:
			tx = append(tx, e)
		default:
			async = append(async, e)
		}
	}
	return tx, async
}

func applyTransactional(ctx context.Context, coll *mongo.Collection, filter, set bson.M, txEffects []policy.Effect, rec policy.Record, out *policy.Outcome, actor policy.Actor) error {
	session, err := coll.Database().Client().StartSession()
	if err != nil {
		return &policy.DependencyError{Op: "start session", Err: err}
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		res, err := coll.UpdateOne(sc, filter, bson.M{"$set": set})
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			return nil, &policy.InvalidTransitionError{Entity: rec.Entity, Status: "changed", Action: out.Action}
		}
		for _, e := range txEffects {
			switch eff := e.(type) {
			case policy.LedgerAdjustment:
				if err := applyLedger(sc, eff, out.StampAt); err != nil {
					return nil, err
				}
			case policy.PaymentRecord:
				payment := models.Payment{
					ID:            primitive.NewObjectID(),
					StudioID:      rec.StudioID,
					ProjectID:     eff.ProjectID,
					InvoiceID:     &eff.InvoiceID,
					AmountCents:   eff.AmountCents,
					CreatedByUID:  actor.UID,
					CreatedByName: actor.Name,
					CreatedAt:     out.StampAt,
				}
				if _, err := paymentCollection.InsertOne(sc, payment); err != nil {
					return nil, err
				}
			}
		}
		return nil, nil
	})
	if err != nil {
		if _, ok := err.(*policy.InvalidTransitionError); ok {
			return err
		}
		return &policy.DependencyError{Op: "transactional update " + rec.Entity, Err: err}
	}
	return nil
}

// applyLedger runs one atomic pipeline update on the project: add the
// deltas, then recompute remaining and progress from the post-increment
// values. Round-half-up via floor(x+0.5); $round would round ties to even.
func applyLedger(ctx context.Context, adj policy.LedgerAdjustment, now time.Time) error {
	pipeline := bson.A{
		bson.M{"$set": bson.M{
			"usedHours":          bson.M{"$add": bson.A{"$usedHours", adj.UsedHoursDelta}},
			"allocatedHours":     bson.M{"$add": bson.A{"$allocatedHours", adj.AllocatedHoursDelta}},
			"totalReceivedCents": bson.M{"$add": bson.A{"$totalReceivedCents", adj.ReceivedCentsDelta}},
			"updatedAt":          now,
		}},
		bson.M{"$set": bson.M{
			"remainingHours": bson.M{"$subtract": bson.A{"$allocatedHours", "$usedHours"}},
			"progressPercentage": bson.M{"$cond": bson.A{
				bson.M{"$gt": bson.A{"$allocatedHours", 0}},
				bson.M{"$min": bson.A{
					bson.M{"$floor": bson.M{"$add": bson.A{
						bson.M{"$multiply": bson.A{
							bson.M{"$divide": bson.A{"$usedHours", "$allocatedHours"}}, 100}},
						0.5}}},
					100}},
				0,
			}},
		}},
	}
	_, err := projectCollection.UpdateOne(ctx, bson.M{"_id": adj.ProjectID}, pipeline)
	return err
}

// dispatchEffects runs the best-effort effects sequentially and
// independently. Failures are logged, never propagated; the transition has
// already committed.
func dispatchEffects(ctx context.Context, effects []policy.Effect, rec policy.Record, out *policy.Outcome, actor policy.Actor) {
	for _, e := range effects {
		switch eff := e.(type) {
		case policy.LedgerAdjustment:
			if err := applyLedger(ctx, eff, out.StampAt); err != nil {
				log.Printf("ledger adjustment failed for project %s: %v", eff.ProjectID.Hex(), err)
			}
		case policy.AuditAppend:
			appendActivity(ctx, rec.StudioID, actor, eff)
		case policy.Notification:
			sendNotification(ctx, rec, out, eff)
		}
	}
}

func appendActivity(ctx context.Context, studioID primitive.ObjectID, actor policy.Actor, eff policy.AuditAppend) {
	entityID := eff.EntityID
	activity := models.Activity{
		ID:         primitive.NewObjectID(),
		StudioID:   studioID,
		EntityType: eff.Entity,
		EntityID:   &entityID,
		Action:     eff.Action,
		FromStatus: eff.FromStatus,
		ToStatus:   eff.ToStatus,
		Detail:     eff.Detail,
		ActorUID:   actor.UID,
		ActorName:  actor.Name,
		ActorRole:  actor.Role,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := activityCollection.InsertOne(ctx, activity); err != nil {
		log.Printf("Failed to append activity: %v", err)
		return
	}
	websocket.BroadcastActivity(studioID, websocket.ActivityUpdate{
		Type:       "ACTIVITY_APPENDED",
		EntityType: eff.Entity,
		EntityID:   eff.EntityID.Hex(),
		Action:     eff.Action,
		Data:       activity,
		Timestamp:  activity.CreatedAt,
		UserID:     actor.UID.Hex(),
		UserName:   actor.Name,
	})
}

// sendNotification resolves the audience, records an outbox row keyed by
// (entity id, transition id), then attempts the send. A duplicate key means
// a retry already handled it. Mail failures are logged and swallowed.
func sendNotification(ctx context.Context, rec policy.Record, out *policy.Outcome, eff policy.Notification) {
	recipients := resolveAudience(ctx, rec, eff.Audience)
	if len(recipients) == 0 {
		log.Printf("notification %s: no recipients for audience %s", eff.Template, eff.Audience)
		return
	}

	now := time.Now().UTC()
	entry := models.OutboxEntry{
		ID:             primitive.NewObjectID(),
		StudioID:       rec.StudioID,
		IdempotencyKey: rec.ID.Hex() + ":" + out.TransitionID,
		Recipients:     recipients,
		Template:       eff.Template,
		Data:           eff.Data,
		Status:         "pending",
		CreatedAt:      now,
	}
	if _, err := outboxCollection.InsertOne(ctx, entry); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return
		}
		log.Printf("outbox insert failed: %v", err)
		// fall through and still attempt a direct send
	}

	update := bson.M{"status": "sent", "sentAt": now}
	if err := mailSender.Send(recipients, eff.Template, eff.Data); err != nil {
		log.Printf("notification %s failed: %v", eff.Template, err)
		update = bson.M{"status": "failed", "lastError": err.Error()}
	}
	if _, err := outboxCollection.UpdateOne(ctx,
		bson.M{"idempotencyKey": entry.IdempotencyKey},
		bson.M{"$set": update}); err != nil {
		log.Printf("outbox update failed: %v", err)
	}
}

func resolveAudience(ctx context.Context, rec policy.Record, audience string) []string {
	switch audience {
	case policy.AudienceSubmitter:
		var user models.User
		if err := userCollection.FindOne(ctx, bson.M{"_id": rec.CreatedByUID}).Decode(&user); err != nil {
			return nil
		}
		return []string{user.Email}
	case policy.AudienceClient:
		var project models.Project
		if err := projectCollection.FindOne(ctx, bson.M{"_id": rec.ProjectID}).Decode(&project); err != nil {
			return nil
		}
		if project.ClientEmail != "" {
			return []string{project.ClientEmail}
		}
		if project.ClientUID != nil {
			var client models.User
			if err := userCollection.FindOne(ctx, bson.M{"_id": *project.ClientUID}).Decode(&client); err == nil {
				return []string{client.Email}
			}
		}
	}
	return nil
}
