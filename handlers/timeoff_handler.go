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

func CreateTimeOffRequest(w http.ResponseWriter, r *http.Request) {
	actor, studioID, ok := requestActor(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, policy.KindForbidden, "Not authenticated")
		return
	}
	if !policy.CanCreate(actor, policy.EntityTimeOff) {
		utils.RespondWithError(w, http.StatusForbidden, policy.KindForbidden, "Access denied")
		return
	}

	var req struct {
		Type      string `json:"type,omitempty"`
		StartDate string `json:"startDate"` // YYYY-MM-DD
		EndDate   string `json:"endDate"`
		Reason    string `json:"reason,omitempty"`
	}
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, "Invalid payload: "+err.Error())
		return
	}

	var bad []string
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		bad = append(bad, "startDate")
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil || (len(bad) == 0 && end.Before(start)) {
		bad = append(bad, "endDate")
	}
	if len(bad) > 0 {
		utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, missingFields(bad...))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	now := time.Now().UTC()
	request := models.TimeOffRequest{
		ID:            primitive.NewObjectID(),
		StudioID:      studioID,
		CreatedByUID:  actor.UID,
		CreatedByName: actor.Name,
		Type:          req.Type,
		StartDate:     start,
		EndDate:       end,
		Reason:        req.Reason,
		Status:        policy.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := timeoffCollection.InsertOne(ctx, request); err != nil {
		log.Printf("CreateTimeOffRequest - insert failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to create request")
		return
	}

	appendActivity(ctx, studioID, actor, policy.AuditAppend{
		Entity:   policy.EntityTimeOff,
		EntityID: request.ID,
		Action:   "create",
		ToStatus: policy.StatusPending,
		Detail:   actor.Name + " requested time off",
	})

	utils.RespondWithData(w, http.StatusCreated, request)
}

func ListTimeOffRequests(w http.ResponseWriter, r *http.Request) {
	actor, studioID, ok := requestActor(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, policy.KindForbidden, "Not authenticated")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{"studioId": studioID}
	query := r.URL.Query()
	if query.Get("mine") == "true" {
		filter["createdByUid"] = actor.UID
	}
	if status := query.Get("status"); status != "" && status != "all" {
		filter["status"] = status
	}

	cursor, err := timeoffCollection.Find(ctx, filter)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to fetch requests")
		return
	}
	defer cursor.Close(ctx)

	var requests []models.TimeOffRequest
	if err := cursor.All(ctx, &requests); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to decode requests")
		return
	}
	if requests == nil {
		requests = []models.TimeOffRequest{}
	}
	utils.RespondWithData(w, http.StatusOK, requests)
}

func ReviewTimeOffRequest(w http.ResponseWriter, r *http.Request) {
	actor, studioID, ok := requestActor(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, policy.KindForbidden, "Not authenticated")
		return
	}

	vars := mux.Vars(r)
	id, err := pathID(vars)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, "Invalid request ID")
		return
	}
	action := vars["action"]

	var req struct {
		Reason string `json:"reason,omitempty"`
		Notes  string `json:"notes,omitempty"`
	}
	_ = utils.ParseJSON(r, &req)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var request models.TimeOffRequest
	err = timeoffCollection.FindOne(ctx, bson.M{"_id": id, "studioId": studioID}).Decode(&request)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, policy.KindNotFound, "Request not found")
		return
	}

	rec := policy.Record{
		Entity:       policy.EntityTimeOff,
		ID:           request.ID,
		StudioID:     studioID,
		Status:       request.Status,
		CreatedByUID: request.CreatedByUID,
	}
	outcome, err := policy.Transition(rec, action, policy.Payload{Reason: req.Reason, Notes: req.Notes}, actor)
	if err != nil {
		respondPolicyError(w, err)
		return
	}

	if err := applyOutcome(ctx, timeoffCollection, rec, outcome, actor, nil); err != nil {
		respondPolicyError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, map[string]string{"status": outcome.To})
}
