package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"studiopm/models"
	"studiopm/policy"
	"studiopm/utils"
)

func CreateProposal(w http.ResponseWriter, r *http.Request) {
	actor, studioID, ok := requestActor(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, policy.KindForbidden, "Not authenticated")
		return
	}
	if !policy.CanCreate(actor, policy.EntityProposal) {
		utils.RespondWithError(w, http.StatusForbidden, policy.KindForbidden, "Access denied")
		return
	}

	var req struct {
		Title          string  `json:"title"`
		ClientName     string  `json:"clientName"`
		Description    string  `json:"description,omitempty"`
		EstimatedHours float64 `json:"estimatedHours,omitempty"`
		Amount         string  `json:"amount,omitempty"`
	}
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, "Invalid payload: "+err.Error())
		return
	}

	var missing []string
	if req.Title == "" {
		missing = append(missing, "title")
	}
	if req.ClientName == "" {
		missing = append(missing, "clientName")
	}
	if len(missing) > 0 {
		utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation,
			"Missing or invalid fields: "+strings.Join(missing, ", "))
		return
	}

	var amountCents int64
	if req.Amount != "" {
		var err error
		amountCents, err = utils.ParseAmountCents(req.Amount)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, "Missing or invalid fields: amount")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	now := time.Now().UTC()
	proposal := models.Proposal{
		ID:             primitive.NewObjectID(),
		StudioID:       studioID,
		Title:          req.Title,
		ClientName:     req.ClientName,
		Description:    req.Description,
		EstimatedHours: req.EstimatedHours,
		AmountCents:    amountCents,
		Status:         policy.StatusPending,
		CreatedByUID:   actor.UID,
		CreatedByName:  actor.Name,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := proposalCollection.InsertOne(ctx, proposal); err != nil {
		log.Printf("CreateProposal - insert failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to create proposal")
		return
	}

	appendActivity(ctx, studioID, actor, policy.AuditAppend{
		Entity:   policy.EntityProposal,
		EntityID: proposal.ID,
		Action:   "create",
		ToStatus: policy.StatusPending,
		Detail:   "proposal " + req.Title + " submitted by " + actor.Name,
	})

	utils.RespondWithData(w, http.StatusCreated, proposal)
}

func ListProposals(w http.ResponseWriter, r *http.Request) {
	actor, studioID, ok := requestActor(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, policy.KindForbidden, "Not authenticated")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{"studioId": studioID}
	query := r.URL.Query()
	if status := query.Get("status"); status != "" && status != "all" {
		filter["status"] = status
	}
	if query.Get("mine") == "true" {
		filter["createdByUid"] = actor.UID
	}

	cursor, err := proposalCollection.Find(ctx, filter)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to fetch proposals")
		return
	}
	defer cursor.Close(ctx)

	var proposals []models.Proposal
	if err := cursor.All(ctx, &proposals); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to decode proposals")
		return
	}
	if proposals == nil {
		proposals = []models.Proposal{}
	}
	utils.RespondWithData(w, http.StatusOK, proposals)
}

func GetProposal(w http.ResponseWriter, r *http.Request) {
	_, studioID, ok := requestActor(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, policy.KindForbidden, "Not authenticated")
		return
	}

	id, err := pathID(mux.Vars(r))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, "Invalid proposal ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var proposal models.Proposal
	err = proposalCollection.FindOne(ctx, bson.M{"_id": id, "studioId": studioID}).Decode(&proposal)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, policy.KindNotFound, "Proposal not found")
		} else {
			utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to fetch proposal")
		}
		return
	}
	utils.RespondWithData(w, http.StatusOK, proposal)
}

// UpdateProposal lets the creator edit their own proposal while it is still
// pending. Status is never writable here.
func UpdateProposal(w http.ResponseWriter, r *http.Request) {
	actor, studioID, ok := requestActor(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, policy.KindForbidden, "Not authenticated")
		return
	}

	id, err := pathID(mux.Vars(r))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, "Invalid proposal ID")
		return
	}

	var req struct {
		Title          *string  `json:"title,omitempty"`
		ClientName     *string  `json:"clientName,omitempty"`
		Description    *string  `json:"description,omitempty"`
		EstimatedHours *float64 `json:"estimatedHours,omitempty"`
		Amount         *string  `json:"amount,omitempty"`
	}
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, "Invalid payload")
		return
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if req.Title != nil {
		set["title"] = *req.Title
	}
	if req.ClientName != nil {
		set["clientName"] = *req.ClientName
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.EstimatedHours != nil {
		set["estimatedHours"] = *req.EstimatedHours
	}
	if req.Amount != nil {
		cents, err := utils.ParseAmountCents(*req.Amount)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, "Missing or invalid fields: amount")
			return
		}
		set["amountCents"] = cents
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	// Owner-only, and only while pending; seniors may edit any pending one.
	filter := bson.M{"_id": id, "studioId": studioID, "status": policy.StatusPending}
	if actor.Role != policy.RoleCOO && actor.Role != policy.RoleDirector {
		filter["createdByUid"] = actor.UID
	}

	res, err := proposalCollection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to update proposal")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, policy.KindNotFound, "Proposal not found or not editable")
		return
	}
	utils.RespondWithData(w, http.StatusOK, map[string]bool{"updated": true})
}

// ReviewProposal approves or rejects a pending proposal through the policy
// engine. The action comes from the request body status field.
func ReviewProposal(w http.ResponseWriter, r *http.Request) {
	actor, studioID, ok := requestActor(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, policy.KindForbidden, "Not authenticated")
		return
	}

	id, err := pathID(mux.Vars(r))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, "Invalid proposal ID")
		return
	}

	var req struct {
		Status string `json:"status"` // approved | rejected
		Reason string `json:"reason,omitempty"`
		Notes  string `json:"notes,omitempty"`
	}
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, "Invalid payload")
		return
	}

	var action string
	switch req.Status {
	case policy.StatusApproved:
		action = policy.ActionApprove
	case policy.StatusRejected:
		action = policy.ActionReject
	default:
		utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, "Missing or invalid fields: status")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var proposal models.Proposal
	err = proposalCollection.FindOne(ctx, bson.M{"_id": id, "studioId": studioID}).Decode(&proposal)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, policy.KindNotFound, "Proposal not found")
		return
	}

	rec := policy.Record{
		Entity:       policy.EntityProposal,
		ID:           proposal.ID,
		StudioID:     studioID,
		Status:       proposal.Status,
		CreatedByUID: proposal.CreatedByUID,
	}
	outcome, err := policy.Transition(rec, action, policy.Payload{Reason: req.Reason, Notes: req.Notes}, actor)
	if err != nil {
		respondPolicyError(w, err)
		return
	}

	// Notification templates want the title for the subject line.
	for i, e := range outcome.Effects {
		if n, ok := e.(policy.Notification); ok {
			if n.Data == nil {
				n.Data = map[string]string{}
			}
			n.Data["title"] = proposal.Title
			outcome.Effects[i] = n
		}
	}

	if err := applyOutcome(ctx, proposalCollection, rec, outcome, actor, nil); err != nil {
		respondPolicyError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, map[string]string{"status": outcome.To})
}
