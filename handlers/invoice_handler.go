package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"studiopm/models"
	"studiopm/policy"
	"studiopm/utils"
)

func CreateInvoice(w http.ResponseWriter, r *http.Request) {
	actor, studioID, ok := requestActor(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, policy.KindForbidden, "Not authenticated")
		return
	}
	if !policy.CanCreate(actor, policy.EntityInvoice) {
		utils.RespondWithError(w, http.StatusForbidden, policy.KindForbidden, "Access denied")
		return
	}

	var req struct {
		ProjectID string `json:"projectId"`
		Amount    string `json:"amount"`
		Currency  string `json:"currency,omitempty"`
		DueDate   string `json:"dueDate,omitempty"` // YYYY-MM-DD
		Notes     string `json:"notes,omitempty"`
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
	var dueDate *time.Time
	if req.DueDate != "" {
		d, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			bad = append(bad, "dueDate")
		} else {
			dueDate = &d
		}
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
	invoice := models.Invoice{
		ID:            primitive.NewObjectID(),
		StudioID:      studioID,
		ProjectID:     project.ID,
		InvoiceNumber: fmt.Sprintf("INV-%d", now.UnixMilli()),
		AmountCents:   amountCents,
		Currency:      req.Currency,
		Status:        policy.StatusDraft,
		DueDate:       dueDate,
		CreatedByUID:  actor.UID,
		Notes:         req.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := invoiceCollection.InsertOne(ctx, invoice); err != nil {
		log.Printf("CreateInvoice - insert failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to create invoice")
		return
	}

	appendActivity(ctx, studioID, actor, policy.AuditAppend{
		Entity:   policy.EntityInvoice,
		EntityID: invoice.ID,
		Action:   "create",
		ToStatus: policy.StatusDraft,
		Detail:   "invoice " + invoice.InvoiceNumber + " drafted for " + project.Name,
	})

	utils.RespondWithData(w, http.StatusCreated, invoice)
}

func ListInvoices(w http.ResponseWriter, r *http.Request) {
	_, studioID, ok := requestActor(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, policy.KindForbidden, "Not authenticated")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{"studioId": studioID}
	query := r.URL.Query()
	if pid := query.Get("projectId"); pid != "" {
		projectID, err := primitive.ObjectIDFromHex(pid)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, missingFields("projectId"))
			return
		}
		filter["projectId"] = projectID
	}
	if status := query.Get("status"); status != "" && status != "all" {
		filter["status"] = status
	}

	cursor, err := invoiceCollection.Find(ctx, filter)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to fetch invoices")
		return
	}
	defer cursor.Close(ctx)

	var invoices []models.Invoice
	if err := cursor.All(ctx, &invoices); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to decode invoices")
		return
	}
	if invoices == nil {
		invoices = []models.Invoice{}
	}
	utils.RespondWithData(w, http.StatusOK, invoices)
}

// ListOverdueInvoices is a pure read: sent invoices past their due date.
// The reconciliation loop, not this endpoint, flips their status.
func ListOverdueInvoices(w http.ResponseWriter, r *http.Request) {
	_, studioID, ok := requestActor(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, policy.KindForbidden, "Not authenticated")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{
		"studioId": studioID,
		"status":   bson.M{"$in": bson.A{policy.StatusSent, policy.StatusOverdue}},
		"dueDate":  bson.M{"$lt": time.Now().UTC()},
	}
	cursor, err := invoiceCollection.Find(ctx, filter)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to fetch invoices")
		return
	}
	defer cursor.Close(ctx)

	var invoices []models.Invoice
	if err := cursor.All(ctx, &invoices); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to decode invoices")
		return
	}
	if invoices == nil {
		invoices = []models.Invoice{}
	}
	utils.RespondWithData(w, http.StatusOK, invoices)
}

// TransitionInvoice handles send / mark_paid / cancel.
func TransitionInvoice(w http.ResponseWriter, r *http.Request) {
	actor, studioID, ok := requestActor(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, policy.KindForbidden, "Not authenticated")
		return
	}

	vars := mux.Vars(r)
	id, err := pathID(vars)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, "Invalid invoice ID")
		return
	}
	action := vars["action"]

	var req struct {
		PaidAmount string `json:"paidAmount,omitempty"`
	}
	_ = utils.ParseJSON(r, &req)

	var paidCents *int64
	if req.PaidAmount != "" {
		cents, err := utils.ParseAmountCents(req.PaidAmount)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, missingFields("paidAmount"))
			return
		}
		paidCents = &cents
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var invoice models.Invoice
	err = invoiceCollection.FindOne(ctx, bson.M{"_id": id, "studioId": studioID}).Decode(&invoice)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, policy.KindNotFound, "Invoice not found")
		return
	}

	rec := policy.Record{
		Entity:       policy.EntityInvoice,
		ID:           invoice.ID,
		StudioID:     studioID,
		Status:       invoice.Status,
		CreatedByUID: invoice.CreatedByUID,
		ProjectID:    invoice.ProjectID,
		AmountCents:  invoice.AmountCents,
	}
	outcome, err := policy.Transition(rec, action, policy.Payload{PaidAmountCents: paidCents}, actor)
	if err != nil {
		respondPolicyError(w, err)
		return
	}

	if err := applyOutcome(ctx, invoiceCollection, rec, outcome, actor, nil); err != nil {
		respondPolicyError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, map[string]string{"status": outcome.To})
}

// ReconcileOverdueInvoices flips sent invoices past their due date to
// overdue. Called from the background loop in main, never from a read
// endpoint. The conditional filter makes repeat runs idempotent.
func ReconcileOverdueInvoices(ctx context.Context) (int64, error) {
	res, err := invoiceCollection.UpdateMany(ctx,
		bson.M{"status": policy.StatusSent, "dueDate": bson.M{"$lt": time.Now().UTC()}},
		bson.M{"$set": bson.M{"status": policy.StatusOverdue, "updatedAt": time.Now().UTC()}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
