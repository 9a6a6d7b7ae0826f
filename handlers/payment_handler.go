package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"studiopm/models"
	"studiopm/policy"
	"studiopm/utils"
)

// CreatePayment records a payment and adds it to the project's
// totalReceived in one transaction, then notifies the project client.
// Creation is not a status transition, so the handler assembles the effects
// itself instead of going through the state machine.
func CreatePayment(w http.ResponseWriter, r *http.Request) {
	actor, studioID, ok := requestActor(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, policy.KindForbidden, "Not authenticated")
		return
	}
	if !policy.CanCreate(actor, policy.EntityPayment) {
		utils.RespondWithError(w, http.StatusForbidden, policy.KindForbidden, "Access denied")
		return
	}

	var req struct {
		ProjectID string `json:"projectId"`
		Amount    string `json:"amount"`
		Currency  string `json:"currency,omitempty"`
		Method    string `json:"method,omitempty"`
		Reference string `json:"reference,omitempty"`
	}
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, "Invalid payload: "+err.Error())
		return
	}

	var bad []string
	projectID, err := primitive.ObjectIDFromHex(req.ProjectID)
	if err != nil {
		bad = append(bad, "projectId")
	}
	amountCents, err := utils.ParseAmountCents(req.Amount)
	if err != nil || amountCents == 0 {
		bad = append(bad, "amount")
	}
	if len(bad) > 0 {
		utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, missingFields(bad...))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	project, err := loadProjectContext(ctx, studioID, projectID)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, policy.KindNotFound, "Project not found")
		return
	}

	now := time.Now().UTC()
	payment := models.Payment{
		ID:            primitive.NewObjectID(),
		StudioID:      studioID,
		ProjectID:     project.ID,
		AmountCents:   amountCents,
		Currency:      req.Currency,
		Method:        req.Method,
		Reference:     req.Reference,
		CreatedByUID:  actor.UID,
		CreatedByName: actor.Name,
		CreatedAt:     now,
	}

	// Payment row and ledger increment commit together.
	session, err := paymentCollection.Database().Client().StartSession()
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to record payment")
		return
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := paymentCollection.InsertOne(sc, payment); err != nil {
			return nil, err
		}
		return nil, applyLedger(sc, policy.LedgerAdjustment{
			ProjectID:          project.ID,
			ReceivedCentsDelta: amountCents,
		}, now)
	})
	if err != nil {
		log.Printf("CreatePayment - transaction failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to record payment")
		return
	}

	rec := policy.Record{
		Entity:       policy.EntityPayment,
		ID:           payment.ID,
		StudioID:     studioID,
		CreatedByUID: actor.UID,
		ProjectID:    project.ID,
	}
	out := &policy.Outcome{
		Entity:       policy.EntityPayment,
		Action:       "create",
		TransitionID: payment.ID.Hex(),
		StampAt:      now,
	}
	dispatchEffects(ctx, []policy.Effect{
		policy.AuditAppend{
			Entity:   policy.EntityPayment,
			EntityID: payment.ID,
			Action:   "create",
			Detail:   "payment of " + utils.FormatCents(amountCents) + " recorded on " + project.Name,
		},
		policy.Notification{
			Audience: policy.AudienceClient,
			Template: "payment_received",
			Data: map[string]string{
				"amount":  utils.FormatCents(amountCents),
				"project": project.Name,
			},
		},
	}, rec, out, actor)

	utils.RespondWithData(w, http.StatusCreated, payment)
}

func ListPayments(w http.ResponseWriter, r *http.Request) {
	_, studioID, ok := requestActor(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, policy.KindForbidden, "Not authenticated")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{"studioId": studioID}
	if pid := r.URL.Query().Get("projectId"); pid != "" {
		projectID, err := primitive.ObjectIDFromHex(pid)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, missingFields("projectId"))
			return
		}
		filter["projectId"] = projectID
	}

	cursor, err := paymentCollection.Find(ctx, filter)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to fetch payments")
		return
	}
	defer cursor.Close(ctx)

	var payments []models.Payment
	if err := cursor.All(ctx, &payments); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to decode payments")
		return
	}
	if payments == nil {
		payments = []models.Payment{}
	}
	utils.RespondWithData(w, http.StatusOK, payments)
}

// DeletePayment removes a payment and backs its amount out of the project
// ledger in one transaction. coo only.
func DeletePayment(w http.ResponseWriter, r *http.Request) {
	actor, studioID, ok := requestActor(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, policy.KindForbidden, "Not authenticated")
		return
	}
	if actor.Role != policy.RoleCOO {
		utils.RespondWithError(w, http.StatusForbidden, policy.KindForbidden, "Access denied")
		return
	}

	id, err := pathID(mux.Vars(r))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, "Invalid payment ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var payment models.Payment
	err = paymentCollection.FindOne(ctx, bson.M{"_id": id, "studioId": studioID}).Decode(&payment)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, policy.KindNotFound, "Payment not found")
		return
	}

	session, err := paymentCollection.Database().Client().StartSession()
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to delete payment")
		return
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		res, err := paymentCollection.DeleteOne(sc, bson.M{"_id": payment.ID, "studioId": studioID})
		if err != nil {
			return nil, err
		}
		if res.DeletedCount == 0 {
			return nil, mongo.ErrNoDocuments
		}
		return nil, applyLedger(sc, policy.LedgerAdjustment{
			ProjectID:          payment.ProjectID,
			ReceivedCentsDelta: -payment.AmountCents,
		}, time.Now().UTC())
	})
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, policy.KindNotFound, "Payment not found")
			return
		}
		log.Printf("DeletePayment - transaction failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to delete payment")
		return
	}

	appendActivity(ctx, studioID, actor, policy.AuditAppend{
		Entity:   policy.EntityPayment,
		EntityID: payment.ID,
		Action:   "delete",
		Detail:   "payment of " + utils.FormatCents(payment.AmountCents) + " removed by " + actor.Name,
	})

	utils.RespondWithData(w, http.StatusOK, map[string]bool{"deleted": true})
}
