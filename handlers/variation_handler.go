package handlers

import (
	"context"
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

func CreateVariation(w http.ResponseWriter, r *http.Request) {
	actor, studioID, ok := requestActor(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, policy.KindForbidden, "Not authenticated")
		return
	}
	if !policy.CanCreate(actor, policy.EntityVariation) {
		utils.RespondWithError(w, http.StatusForbidden, policy.KindForbidden, "Access denied")
		return
	}

	var req struct {
		ProjectID      string  `json:"projectId"`
		Title          string  `json:"title"`
		Description    string  `json:"description,omitempty"`
		EstimatedHours float64 `json:"estimatedHours"`
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
	if req.Title == "" {
		bad = append(bad, "title")
	}
	if req.EstimatedHours <= 0 {
		bad = append(bad, "estimatedHours")
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
	variation := models.Variation{
		ID:             primitive.NewObjectID(),
		StudioID:       studioID,
		ProjectID:      project.ID,
		Title:          req.Title,
		Description:    req.Description,
		EstimatedHours: req.EstimatedHours,
		Status:         policy.StatusPending,
		CreatedByUID:   actor.UID,
		CreatedByName:  actor.Name,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := variationCollection.InsertOne(ctx, variation); err != nil {
		log.Printf("CreateVariation - insert failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to create variation")
		return
	}

	appendActivity(ctx, studioID, actor, policy.AuditAppend{
		Entity:   policy.EntityVariation,
		EntityID: variation.ID,
		Action:   "create",
		ToStatus: policy.StatusPending,
		Detail:   "variation " + req.Title + " raised on " + project.Name,
	})

	utils.RespondWithData(w, http.StatusCreated, variation)
}

func ListVariations(w http.ResponseWriter, r *http.Request) {
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

	cursor, err := variationCollection.Find(ctx, filter)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to fetch variations")
		return
	}
	defer cursor.Close(ctx)

	var variations []models.Variation
	if err := cursor.All(ctx, &variations); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to decode variations")
		return
	}
	if variations == nil {
		variations = []models.Variation{}
	}
	utils.RespondWithData(w, http.StatusOK, variations)
}

// ReviewVariation approves (coo only, approvedHours required) or rejects a
// variation. Approval adds approvedHours to the project allocation in the
// same transaction that flips the status.
func ReviewVariation(w http.ResponseWriter, r *http.Request) {
	actor, studioID, ok := requestActor(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, policy.KindForbidden, "Not authenticated")
		return
	}

	vars := mux.Vars(r)
	id, err := pathID(vars)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, "Invalid variation ID")
		return
	}
	action := vars["action"]

	var req struct {
		ApprovedHours *float64 `json:"approvedHours,omitempty"`
		Reason        string   `json:"reason,omitempty"`
		Notes         string   `json:"notes,omitempty"`
	}
	_ = utils.ParseJSON(r, &req)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var variation models.Variation
	err = variationCollection.FindOne(ctx, bson.M{"_id": id, "studioId": studioID}).Decode(&variation)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, policy.KindNotFound, "Variation not found")
		return
	}

	rec := policy.Record{
		Entity:       policy.EntityVariation,
		ID:           variation.ID,
		StudioID:     studioID,
		Status:       variation.Status,
		CreatedByUID: variation.CreatedByUID,
		ProjectID:    variation.ProjectID,
	}
	outcome, err := policy.Transition(rec, action,
		policy.Payload{Reason: req.Reason, Notes: req.Notes, ApprovedHours: req.ApprovedHours}, actor)
	if err != nil {
		respondPolicyError(w, err)
		return
	}

	for i, e := range outcome.Effects {
		if n, ok := e.(policy.Notification); ok {
			if n.Data == nil {
				n.Data = map[string]string{}
			}
			n.Data["title"] = variation.Title
			outcome.Effects[i] = n
		}
	}

	// Approved hours are written onto the record alongside the status flip.
	var extraSet bson.M
	if action == policy.ActionApprove && req.ApprovedHours != nil {
		extraSet = bson.M{"approvedHours": *req.ApprovedHours}
	}

	if err := applyOutcome(ctx, variationCollection, rec, outcome, actor, extraSet); err != nil {
		respondPolicyError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, map[string]string{"status": outcome.To})
}
